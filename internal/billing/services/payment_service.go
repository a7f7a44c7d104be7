package services

import (
	"context"
	"log/slog"

	"github.com/fleetsvc/cars-bills/internal/billing/domain"
	"github.com/fleetsvc/cars-bills/internal/events"
	"github.com/fleetsvc/cars-bills/internal/middleware"
	"github.com/fleetsvc/cars-bills/internal/billing/ports"
)

// PaymentService bridges inbound detail-billing events to the ledger and
// emits the payment-completed event back to the catalog side.
type PaymentService struct {
	accountSvc ports.AccountSvcFacade
	publisher  events.Publisher
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(accountSvc ports.AccountSvcFacade, publisher events.Publisher) *PaymentService {
	return &PaymentService{accountSvc: accountSvc, publisher: publisher}
}

var _ ports.PaymentSvcFacade = (*PaymentService)(nil)

// ProcessDetailAdded debits the driver's account for the detail price in the
// stated currency. Any failure (unknown currency, unknown account,
// insufficient balance) is terminal for the event: the error propagates to
// the bus consumer, which dead-letters the message without retrying.
// Redelivery of an already-debited event debits again; there is no
// deduplication key.
func (s *PaymentService) ProcessDetailAdded(ctx context.Context, ev events.DetailAdded) error {
	logger := middleware.GetLoggerFromCtx(ctx).With(
		slog.String("serial_number", ev.SerialNumber),
		slog.String("driver_id", ev.DriverID),
	)
	ctx = middleware.WithLogger(ctx, logger)

	currency, err := domain.ParseCurrency(ev.Currency)
	if err != nil {
		return err
	}

	account, err := s.accountSvc.GetAccountByDriverID(ctx, ev.DriverID)
	if err != nil {
		return err
	}

	if err := s.accountSvc.Debit(ctx, account.AccountID, ev.Price, currency); err != nil {
		return err
	}

	// Fire-and-forget back to the catalog: no confirmation is awaited from
	// the remote consumer.
	if err := s.publisher.Publish(ctx, events.TopicDetailPaid, ev); err != nil {
		logger.Error("Failed to publish payment completed event", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Detail payment completed", slog.String("price", ev.Price.String()), slog.String("currency", ev.Currency))
	return nil
}
