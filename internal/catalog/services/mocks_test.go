package services

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"

	"github.com/fleetsvc/cars-bills/internal/catalog/domain"
	"github.com/fleetsvc/cars-bills/internal/catalog/ports"
)

// MockCarRepository is a mock implementation of ports.CarRepository.
type MockCarRepository struct {
	mock.Mock
}

var _ ports.CarRepository = (*MockCarRepository)(nil)

func (m *MockCarRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	tx, _ := args.Get(0).(pgx.Tx)
	return tx, args.Error(1)
}

func (m *MockCarRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockCarRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockCarRepository) SaveCarInTx(ctx context.Context, tx pgx.Tx, car domain.Car) error {
	args := m.Called(ctx, tx, car)
	return args.Error(0)
}

func (m *MockCarRepository) FindCarByVIN(ctx context.Context, vin string) (*domain.Car, error) {
	args := m.Called(ctx, vin)
	car, _ := args.Get(0).(*domain.Car)
	return car, args.Error(1)
}

func (m *MockCarRepository) FindCarByLicensePlate(ctx context.Context, licensePlate string) (*domain.Car, error) {
	args := m.Called(ctx, licensePlate)
	car, _ := args.Get(0).(*domain.Car)
	return car, args.Error(1)
}

func (m *MockCarRepository) ListCars(ctx context.Context, filter ports.CarFilter, page ports.PageRequest) ([]domain.Car, int64, error) {
	args := m.Called(ctx, filter, page)
	cars, _ := args.Get(0).([]domain.Car)
	total, _ := args.Get(1).(int64)
	return cars, total, args.Error(2)
}

func (m *MockCarRepository) UpdateCar(ctx context.Context, car domain.Car) error {
	args := m.Called(ctx, car)
	return args.Error(0)
}

func (m *MockCarRepository) DeleteCarByVIN(ctx context.Context, vin string) error {
	args := m.Called(ctx, vin)
	return args.Error(0)
}

func (m *MockCarRepository) AssignDriver(ctx context.Context, licensePlate, driverID string) error {
	args := m.Called(ctx, licensePlate, driverID)
	return args.Error(0)
}

func (m *MockCarRepository) AttachDetailInTx(ctx context.Context, tx pgx.Tx, vin, detailID string) error {
	args := m.Called(ctx, tx, vin, detailID)
	return args.Error(0)
}

// MockDetailRepository is a mock implementation of ports.DetailRepository.
type MockDetailRepository struct {
	mock.Mock
}

var _ ports.DetailRepository = (*MockDetailRepository)(nil)

func (m *MockDetailRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	tx, _ := args.Get(0).(pgx.Tx)
	return tx, args.Error(1)
}

func (m *MockDetailRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockDetailRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockDetailRepository) SaveDetailInTx(ctx context.Context, tx pgx.Tx, detail domain.Detail) error {
	args := m.Called(ctx, tx, detail)
	return args.Error(0)
}

func (m *MockDetailRepository) FindDetailBySerialNumber(ctx context.Context, serialNumber string) (*domain.Detail, error) {
	args := m.Called(ctx, serialNumber)
	detail, _ := args.Get(0).(*domain.Detail)
	return detail, args.Error(1)
}

func (m *MockDetailRepository) ListDetails(ctx context.Context, filter ports.DetailFilter, page ports.PageRequest) ([]domain.Detail, int64, error) {
	args := m.Called(ctx, filter, page)
	details, _ := args.Get(0).([]domain.Detail)
	total, _ := args.Get(1).(int64)
	return details, total, args.Error(2)
}

func (m *MockDetailRepository) UpdateDetail(ctx context.Context, detail domain.Detail) error {
	args := m.Called(ctx, detail)
	return args.Error(0)
}

func (m *MockDetailRepository) DeleteDetailBySerialNumber(ctx context.Context, serialNumber string) error {
	args := m.Called(ctx, serialNumber)
	return args.Error(0)
}

// MockPublisher is a mock implementation of events.Publisher.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, topic string, payload any) error {
	args := m.Called(ctx, topic, payload)
	return args.Error(0)
}
