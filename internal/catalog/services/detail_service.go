package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/fleetsvc/cars-bills/internal/apperrors"
	"github.com/fleetsvc/cars-bills/internal/catalog/domain"
	"github.com/fleetsvc/cars-bills/internal/catalog/dto"
	"github.com/fleetsvc/cars-bills/internal/catalog/ports"
	"github.com/fleetsvc/cars-bills/internal/middleware"
)

// DetailService manages standalone details.
type DetailService struct {
	detailRepo ports.DetailRepository
}

// NewDetailService creates a new DetailService.
func NewDetailService(detailRepo ports.DetailRepository) *DetailService {
	return &DetailService{detailRepo: detailRepo}
}

var _ ports.DetailSvcFacade = (*DetailService)(nil)

// RegisterDetail creates a detail.
func (s *DetailService) RegisterDetail(ctx context.Context, req dto.CreateDetailRequest) (*domain.Detail, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	now := time.Now().UTC()
	detail := domain.Detail{
		DetailID:     uuid.NewString(),
		SerialNumber: req.SerialNumber,
		Price:        req.Price,
		AuditFields:  domain.AuditFields{CreatedAt: now, LastUpdatedAt: now},
	}

	tx, err := s.detailRepo.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer s.detailRepo.Rollback(ctx, tx)

	if err := s.detailRepo.SaveDetailInTx(ctx, tx, detail); err != nil {
		return nil, err
	}
	if err := s.detailRepo.Commit(ctx, tx); err != nil {
		return nil, err
	}

	logger.Info("Detail registered", slog.String("detail_id", detail.DetailID), slog.String("serial_number", detail.SerialNumber))
	return &detail, nil
}

// GetDetailBySerialNumber retrieves a detail by serial number.
func (s *DetailService) GetDetailBySerialNumber(ctx context.Context, serialNumber string) (*domain.Detail, error) {
	detail, err := s.detailRepo.FindDetailBySerialNumber(ctx, serialNumber)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			middleware.GetLoggerFromCtx(ctx).Error("Failed to find detail by serial number", slog.String("error", err.Error()))
		}
		return nil, err
	}
	return detail, nil
}

// ListDetails returns one page of details matching the filter.
func (s *DetailService) ListDetails(ctx context.Context, filter ports.DetailFilter, page ports.PageRequest) ([]domain.Detail, int64, error) {
	details, total, err := s.detailRepo.ListDetails(ctx, filter, page)
	if err != nil {
		middleware.GetLoggerFromCtx(ctx).Error("Failed to list details", slog.String("error", err.Error()))
		return nil, 0, err
	}
	if details == nil {
		details = []domain.Detail{}
	}
	return details, total, nil
}

// UpdateDetail applies patch semantics: only non-nil request fields change.
func (s *DetailService) UpdateDetail(ctx context.Context, serialNumber string, req dto.UpdateDetailRequest) (*domain.Detail, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	detail, err := s.detailRepo.FindDetailBySerialNumber(ctx, serialNumber)
	if err != nil {
		return nil, err
	}

	if req.Price != nil {
		detail.Price = *req.Price
	}
	detail.LastUpdatedAt = time.Now().UTC()

	if err := s.detailRepo.UpdateDetail(ctx, *detail); err != nil {
		logger.Error("Failed to update detail", slog.String("error", err.Error()), slog.String("detail_id", detail.DetailID))
		return nil, err
	}

	logger.Info("Detail updated", slog.String("detail_id", detail.DetailID))
	return detail, nil
}

// DeleteDetail removes a detail.
func (s *DetailService) DeleteDetail(ctx context.Context, serialNumber string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.detailRepo.DeleteDetailBySerialNumber(ctx, serialNumber); err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to delete detail", slog.String("error", err.Error()))
		}
		return err
	}

	logger.Info("Detail deleted", slog.String("serial_number", serialNumber))
	return nil
}
