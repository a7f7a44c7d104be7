package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/fleetsvc/cars-bills/internal/apperrors"
	"github.com/fleetsvc/cars-bills/internal/catalog/domain"
	"github.com/fleetsvc/cars-bills/internal/catalog/dto"
	"github.com/fleetsvc/cars-bills/internal/catalog/ports"
	"github.com/fleetsvc/cars-bills/internal/events"
	"github.com/fleetsvc/cars-bills/internal/middleware"
)

// CarService manages cars, their attached details and the catalog side of
// the purchase and billing workflows.
type CarService struct {
	carRepo    ports.CarRepository
	detailRepo ports.DetailRepository
	publisher  events.Publisher
}

// NewCarService creates a new CarService.
func NewCarService(carRepo ports.CarRepository, detailRepo ports.DetailRepository, publisher events.Publisher) *CarService {
	return &CarService{
		carRepo:    carRepo,
		detailRepo: detailRepo,
		publisher:  publisher,
	}
}

var _ ports.CarSvcFacade = (*CarService)(nil)

// RegisterCar creates a car and any nested details in one transaction.
func (s *CarService) RegisterCar(ctx context.Context, req dto.CreateCarRequest) (*domain.Car, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	now := time.Now().UTC()
	car := domain.Car{
		VIN:          req.VIN,
		LicensePlate: req.LicensePlate,
		Manufacturer: req.Manufacturer,
		Model:        req.Model,
		Year:         req.Year,
		Details:      []domain.Detail{},
		AuditFields:  domain.AuditFields{CreatedAt: now, LastUpdatedAt: now},
	}

	tx, err := s.carRepo.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer s.carRepo.Rollback(ctx, tx)

	if err := s.carRepo.SaveCarInTx(ctx, tx, car); err != nil {
		return nil, err
	}

	for _, nd := range req.Details {
		detail := domain.Detail{
			DetailID:     uuid.NewString(),
			SerialNumber: nd.SerialNumber,
			Price:        nd.Price,
			AuditFields:  domain.AuditFields{CreatedAt: now, LastUpdatedAt: now},
		}
		if err := s.detailRepo.SaveDetailInTx(ctx, tx, detail); err != nil {
			return nil, err
		}
		if err := s.carRepo.AttachDetailInTx(ctx, tx, car.VIN, detail.DetailID); err != nil {
			return nil, err
		}
		car.Details = append(car.Details, detail)
	}

	if err := s.carRepo.Commit(ctx, tx); err != nil {
		return nil, err
	}

	logger.Info("Car registered", slog.String("vin", car.VIN), slog.Int("details", len(car.Details)))
	return &car, nil
}

// GetCarByVIN retrieves a car with its details.
func (s *CarService) GetCarByVIN(ctx context.Context, vin string) (*domain.Car, error) {
	car, err := s.carRepo.FindCarByVIN(ctx, vin)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			middleware.GetLoggerFromCtx(ctx).Error("Failed to find car by vin", slog.String("error", err.Error()))
		}
		return nil, err
	}
	return car, nil
}

// GetCarByLicensePlate retrieves a car by its license plate.
func (s *CarService) GetCarByLicensePlate(ctx context.Context, licensePlate string) (*domain.Car, error) {
	car, err := s.carRepo.FindCarByLicensePlate(ctx, licensePlate)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			middleware.GetLoggerFromCtx(ctx).Error("Failed to find car by plate", slog.String("error", err.Error()))
		}
		return nil, err
	}
	return car, nil
}

// ListCars returns one page of cars matching the filter.
func (s *CarService) ListCars(ctx context.Context, filter ports.CarFilter, page ports.PageRequest) ([]domain.Car, int64, error) {
	cars, total, err := s.carRepo.ListCars(ctx, filter, page)
	if err != nil {
		middleware.GetLoggerFromCtx(ctx).Error("Failed to list cars", slog.String("error", err.Error()))
		return nil, 0, err
	}
	if cars == nil {
		cars = []domain.Car{}
	}
	return cars, total, nil
}

// UpdateCar applies patch semantics: only non-nil request fields change.
func (s *CarService) UpdateCar(ctx context.Context, vin string, req dto.UpdateCarRequest) (*domain.Car, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	car, err := s.carRepo.FindCarByVIN(ctx, vin)
	if err != nil {
		return nil, err
	}

	if req.LicensePlate != nil {
		car.LicensePlate = *req.LicensePlate
	}
	if req.Manufacturer != nil {
		car.Manufacturer = *req.Manufacturer
	}
	if req.Model != nil {
		car.Model = *req.Model
	}
	if req.Year != nil {
		car.Year = *req.Year
	}
	car.LastUpdatedAt = time.Now().UTC()

	if err := s.carRepo.UpdateCar(ctx, *car); err != nil {
		logger.Error("Failed to update car", slog.String("error", err.Error()), slog.String("vin", vin))
		return nil, err
	}

	logger.Info("Car updated", slog.String("vin", vin))
	return car, nil
}

// DeleteCar removes a car and its detail attachments.
func (s *CarService) DeleteCar(ctx context.Context, vin string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.carRepo.DeleteCarByVIN(ctx, vin); err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to delete car", slog.String("error", err.Error()))
		}
		return err
	}

	logger.Info("Car deleted", slog.String("vin", vin))
	return nil
}

// RequestDetailBilling looks up the car and detail named by the request,
// enriches the event with the car's driver and the detail's price, and
// publishes it for the billing service to consume.
func (s *CarService) RequestDetailBilling(ctx context.Context, req dto.AddDetailRequest) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	car, err := s.carRepo.FindCarByLicensePlate(ctx, req.LicensePlate)
	if err != nil {
		return err
	}
	if car.DriverID == nil {
		return fmt.Errorf("%w: car %s has no driver assigned", apperrors.ErrValidation, req.LicensePlate)
	}

	detail, err := s.detailRepo.FindDetailBySerialNumber(ctx, req.SerialNumber)
	if err != nil {
		return err
	}

	ev := events.DetailAdded{
		SerialNumber: detail.SerialNumber,
		Price:        detail.Price,
		LicensePlate: car.LicensePlate,
		DriverID:     *car.DriverID,
		Currency:     req.Currency,
	}
	if err := s.publisher.Publish(ctx, events.TopicDetailBilling, ev); err != nil {
		logger.Error("Failed to publish detail billing event", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Detail billing requested",
		slog.String("serial_number", ev.SerialNumber),
		slog.String("driver_id", ev.DriverID),
		slog.String("price", ev.Price.String()),
		slog.String("currency", ev.Currency))
	return nil
}

// AssignDriver links a purchased car to its driver.
func (s *CarService) AssignDriver(ctx context.Context, ev events.CarPurchase) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.carRepo.AssignDriver(ctx, ev.LicensePlate, ev.DriverID); err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to assign driver to car", slog.String("error", err.Error()))
		}
		return err
	}

	logger.Info("Driver assigned to car", slog.String("driver_id", ev.DriverID), slog.String("license_plate", ev.LicensePlate))
	return nil
}

// AttachPaidDetail records a paid detail on its car. Safe under event
// redelivery.
func (s *CarService) AttachPaidDetail(ctx context.Context, ev events.DetailAdded) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	car, err := s.carRepo.FindCarByLicensePlate(ctx, ev.LicensePlate)
	if err != nil {
		return err
	}
	detail, err := s.detailRepo.FindDetailBySerialNumber(ctx, ev.SerialNumber)
	if err != nil {
		return err
	}

	tx, err := s.carRepo.Begin(ctx)
	if err != nil {
		return err
	}
	defer s.carRepo.Rollback(ctx, tx)

	if err := s.carRepo.AttachDetailInTx(ctx, tx, car.VIN, detail.DetailID); err != nil {
		return err
	}
	if err := s.carRepo.Commit(ctx, tx); err != nil {
		return err
	}

	logger.Info("Paid detail attached", slog.String("vin", car.VIN), slog.String("serial_number", detail.SerialNumber))
	return nil
}
