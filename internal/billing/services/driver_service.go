package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/fleetsvc/cars-bills/internal/apperrors"
	"github.com/fleetsvc/cars-bills/internal/billing/domain"
	"github.com/fleetsvc/cars-bills/internal/billing/dto"
	"github.com/fleetsvc/cars-bills/internal/billing/ports"
	"github.com/fleetsvc/cars-bills/internal/events"
	"github.com/fleetsvc/cars-bills/internal/middleware"
)

// DriverService manages drivers and the 1:1 account bound to each of them.
type DriverService struct {
	driverRepo  ports.DriverRepository
	accountRepo ports.AccountRepository
	publisher   events.Publisher
}

// NewDriverService creates a new DriverService.
func NewDriverService(driverRepo ports.DriverRepository, accountRepo ports.AccountRepository, publisher events.Publisher) *DriverService {
	return &DriverService{
		driverRepo:  driverRepo,
		accountRepo: accountRepo,
		publisher:   publisher,
	}
}

var _ ports.DriverSvcFacade = (*DriverService)(nil)

// RegisterDriver creates a driver and its zero-initialized account in one
// transaction.
func (s *DriverService) RegisterDriver(ctx context.Context, req dto.CreateDriverRequest) (*domain.Driver, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	category, err := domain.ParseLicenseCategory(req.LicenseCategory)
	if err != nil {
		return nil, err
	}

	exists, err := s.driverRepo.ExistsByPassport(ctx, req.Passport)
	if err != nil {
		logger.Error("Failed to check passport uniqueness", slog.String("error", err.Error()))
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: driver with passport %s already exists", apperrors.ErrDuplicate, req.Passport)
	}

	now := time.Now().UTC()
	driver := domain.Driver{
		DriverID:        uuid.NewString(),
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Passport:        req.Passport,
		LicenseCategory: category,
		DateOfBirth:     req.DateOfBirth,
		Experience:      req.Experience,
		AuditFields:     domain.AuditFields{CreatedAt: now, LastUpdatedAt: now},
	}
	account := domain.Account{
		AccountID:   uuid.NewString(),
		DriverID:    driver.DriverID,
		Balances:    domain.ZeroBalances(),
		AuditFields: domain.AuditFields{CreatedAt: now, LastUpdatedAt: now},
	}

	tx, err := s.driverRepo.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer s.driverRepo.Rollback(ctx, tx)

	if err := s.driverRepo.SaveDriverInTx(ctx, tx, driver); err != nil {
		logger.Error("Failed to save driver", slog.String("error", err.Error()))
		return nil, err
	}
	if err := s.accountRepo.SaveAccountInTx(ctx, tx, account); err != nil {
		logger.Error("Failed to save account for new driver", slog.String("error", err.Error()))
		return nil, err
	}
	if err := s.driverRepo.Commit(ctx, tx); err != nil {
		return nil, err
	}

	logger.Info("Driver registered", slog.String("driver_id", driver.DriverID), slog.String("account_id", account.AccountID))
	return &driver, nil
}

// GetDriverByPassport retrieves a driver by passport.
func (s *DriverService) GetDriverByPassport(ctx context.Context, passport string) (*domain.Driver, error) {
	driver, err := s.driverRepo.FindDriverByPassport(ctx, passport)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			middleware.GetLoggerFromCtx(ctx).Error("Failed to find driver by passport", slog.String("error", err.Error()))
		}
		return nil, err
	}
	return driver, nil
}

// ListDrivers returns one page of drivers matching the filter.
func (s *DriverService) ListDrivers(ctx context.Context, filter ports.DriverFilter, page ports.PageRequest) ([]domain.Driver, int64, error) {
	drivers, total, err := s.driverRepo.ListDrivers(ctx, filter, page)
	if err != nil {
		middleware.GetLoggerFromCtx(ctx).Error("Failed to list drivers", slog.String("error", err.Error()))
		return nil, 0, err
	}
	if drivers == nil {
		drivers = []domain.Driver{}
	}
	return drivers, total, nil
}

// UpdateDriver applies patch semantics: only non-nil request fields change.
func (s *DriverService) UpdateDriver(ctx context.Context, passport string, req dto.UpdateDriverRequest) (*domain.Driver, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	driver, err := s.driverRepo.FindDriverByPassport(ctx, passport)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		driver.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		driver.LastName = *req.LastName
	}
	if req.LicenseCategory != nil {
		category, err := domain.ParseLicenseCategory(*req.LicenseCategory)
		if err != nil {
			return nil, err
		}
		driver.LicenseCategory = category
	}
	if req.DateOfBirth != nil {
		driver.DateOfBirth = *req.DateOfBirth
	}
	if req.Experience != nil {
		driver.Experience = *req.Experience
	}
	driver.LastUpdatedAt = time.Now().UTC()

	if err := s.driverRepo.UpdateDriver(ctx, *driver); err != nil {
		logger.Error("Failed to update driver", slog.String("error", err.Error()), slog.String("driver_id", driver.DriverID))
		return nil, err
	}

	logger.Info("Driver updated", slog.String("driver_id", driver.DriverID))
	return driver, nil
}

// DeleteDriver removes a driver; the account row cascades away with it.
func (s *DriverService) DeleteDriver(ctx context.Context, passport string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.driverRepo.DeleteDriverByPassport(ctx, passport); err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to delete driver", slog.String("error", err.Error()))
		}
		return err
	}

	logger.Info("Driver deleted", slog.String("passport", passport))
	return nil
}

// RequestCarPurchase forwards the purchase intent onto the bus for the
// catalog service. No ledger interaction happens here.
func (s *DriverService) RequestCarPurchase(ctx context.Context, ev events.CarPurchase) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.publisher.Publish(ctx, events.TopicCarPurchase, ev); err != nil {
		logger.Error("Failed to publish car purchase event", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Car purchase event published", slog.String("driver_id", ev.DriverID), slog.String("license_plate", ev.LicensePlate))
	return nil
}

// CongratulateBirthdays logs a greeting for every driver born today.
func (s *DriverService) CongratulateBirthdays(ctx context.Context) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	now := time.Now()
	drivers, err := s.driverRepo.FindDriversWithBirthday(ctx, now.Month(), now.Day())
	if err != nil {
		logger.Error("Failed to find drivers with birthday", slog.String("error", err.Error()))
		return err
	}

	for _, d := range drivers {
		logger.Info("Happy Birthday!", slog.String("first_name", d.FirstName), slog.String("last_name", d.LastName))
	}
	return nil
}
