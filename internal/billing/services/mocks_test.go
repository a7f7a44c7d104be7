package services

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/fleetsvc/cars-bills/internal/billing/domain"
	"github.com/fleetsvc/cars-bills/internal/billing/ports"
)

// MockAccountRepository is a mock implementation of ports.AccountRepository.
type MockAccountRepository struct {
	mock.Mock
}

var _ ports.AccountRepository = (*MockAccountRepository)(nil)

func (m *MockAccountRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	tx, _ := args.Get(0).(pgx.Tx)
	return tx, args.Error(1)
}

func (m *MockAccountRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockAccountRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockAccountRepository) SaveAccountInTx(ctx context.Context, tx pgx.Tx, account domain.Account) error {
	args := m.Called(ctx, tx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	account, _ := args.Get(0).(*domain.Account)
	return account, args.Error(1)
}

func (m *MockAccountRepository) FindAccountByDriverID(ctx context.Context, driverID string) (*domain.Account, error) {
	args := m.Called(ctx, driverID)
	account, _ := args.Get(0).(*domain.Account)
	return account, args.Error(1)
}

func (m *MockAccountRepository) FindAccountByIDForUpdate(ctx context.Context, tx pgx.Tx, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, tx, accountID)
	account, _ := args.Get(0).(*domain.Account)
	return account, args.Error(1)
}

func (m *MockAccountRepository) UpdateBalancesInTx(ctx context.Context, tx pgx.Tx, accountID string, balances map[domain.Currency]decimal.Decimal, now time.Time) error {
	args := m.Called(ctx, tx, accountID, balances, now)
	return args.Error(0)
}

// MockDriverRepository is a mock implementation of ports.DriverRepository.
type MockDriverRepository struct {
	mock.Mock
}

var _ ports.DriverRepository = (*MockDriverRepository)(nil)

func (m *MockDriverRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	tx, _ := args.Get(0).(pgx.Tx)
	return tx, args.Error(1)
}

func (m *MockDriverRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockDriverRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockDriverRepository) SaveDriverInTx(ctx context.Context, tx pgx.Tx, driver domain.Driver) error {
	args := m.Called(ctx, tx, driver)
	return args.Error(0)
}

func (m *MockDriverRepository) FindDriverByPassport(ctx context.Context, passport string) (*domain.Driver, error) {
	args := m.Called(ctx, passport)
	driver, _ := args.Get(0).(*domain.Driver)
	return driver, args.Error(1)
}

func (m *MockDriverRepository) FindDriverByID(ctx context.Context, driverID string) (*domain.Driver, error) {
	args := m.Called(ctx, driverID)
	driver, _ := args.Get(0).(*domain.Driver)
	return driver, args.Error(1)
}

func (m *MockDriverRepository) ExistsByPassport(ctx context.Context, passport string) (bool, error) {
	args := m.Called(ctx, passport)
	return args.Bool(0), args.Error(1)
}

func (m *MockDriverRepository) ListDrivers(ctx context.Context, filter ports.DriverFilter, page ports.PageRequest) ([]domain.Driver, int64, error) {
	args := m.Called(ctx, filter, page)
	drivers, _ := args.Get(0).([]domain.Driver)
	total, _ := args.Get(1).(int64)
	return drivers, total, args.Error(2)
}

func (m *MockDriverRepository) UpdateDriver(ctx context.Context, driver domain.Driver) error {
	args := m.Called(ctx, driver)
	return args.Error(0)
}

func (m *MockDriverRepository) DeleteDriverByPassport(ctx context.Context, passport string) error {
	args := m.Called(ctx, passport)
	return args.Error(0)
}

func (m *MockDriverRepository) FindDriversWithBirthday(ctx context.Context, month time.Month, day int) ([]domain.Driver, error) {
	args := m.Called(ctx, month, day)
	drivers, _ := args.Get(0).([]domain.Driver)
	return drivers, args.Error(1)
}

// MockPublisher is a mock implementation of events.Publisher.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, topic string, payload any) error {
	args := m.Called(ctx, topic, payload)
	return args.Error(0)
}

// MockAccountSvc is a mock implementation of ports.AccountSvcFacade.
type MockAccountSvc struct {
	mock.Mock
}

var _ ports.AccountSvcFacade = (*MockAccountSvc)(nil)

func (m *MockAccountSvc) Credit(ctx context.Context, accountID string, amount decimal.Decimal, currency domain.Currency) error {
	args := m.Called(ctx, accountID, amount, currency)
	return args.Error(0)
}

func (m *MockAccountSvc) Debit(ctx context.Context, accountID string, amount decimal.Decimal, currency domain.Currency) error {
	args := m.Called(ctx, accountID, amount, currency)
	return args.Error(0)
}

func (m *MockAccountSvc) GetBalance(ctx context.Context, accountID string, currency domain.Currency) (decimal.Decimal, error) {
	args := m.Called(ctx, accountID, currency)
	balance, _ := args.Get(0).(decimal.Decimal)
	return balance, args.Error(1)
}

func (m *MockAccountSvc) GetAccountByDriverID(ctx context.Context, driverID string) (*domain.Account, error) {
	args := m.Called(ctx, driverID)
	account, _ := args.Get(0).(*domain.Account)
	return account, args.Error(1)
}
