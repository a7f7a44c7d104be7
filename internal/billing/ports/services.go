package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/fleetsvc/cars-bills/internal/billing/domain"
	"github.com/fleetsvc/cars-bills/internal/billing/dto"
	"github.com/fleetsvc/cars-bills/internal/events"
)

// AccountSvcFacade is the ledger: signed balance mutations under strict
// non-negativity, plus cross-currency valuation.
type AccountSvcFacade interface {
	// Credit adds amount to the account's balance for currency.
	Credit(ctx context.Context, accountID string, amount decimal.Decimal, currency domain.Currency) error

	// Debit subtracts amount from the account's balance for currency.
	// Returns apperrors.ErrInsufficientBalance, with no mutation, if the
	// balance would go negative.
	Debit(ctx context.Context, accountID string, amount decimal.Decimal, currency domain.Currency) error

	// GetBalance values all three balances in the requested currency and
	// returns the sum at scale 2, rounded half-up.
	GetBalance(ctx context.Context, accountID string, currency domain.Currency) (decimal.Decimal, error)

	// GetAccountByDriverID resolves a driver's account.
	GetAccountByDriverID(ctx context.Context, driverID string) (*domain.Account, error)
}

// DriverSvcFacade covers driver CRUD and the purchase request forwarding.
type DriverSvcFacade interface {
	RegisterDriver(ctx context.Context, req dto.CreateDriverRequest) (*domain.Driver, error)
	GetDriverByPassport(ctx context.Context, passport string) (*domain.Driver, error)
	ListDrivers(ctx context.Context, filter DriverFilter, page PageRequest) ([]domain.Driver, int64, error)
	UpdateDriver(ctx context.Context, passport string, req dto.UpdateDriverRequest) (*domain.Driver, error)
	DeleteDriver(ctx context.Context, passport string) error

	// RequestCarPurchase forwards a correlating purchase event onto the
	// bus for the catalog service. No ledger interaction.
	RequestCarPurchase(ctx context.Context, ev events.CarPurchase) error

	// CongratulateBirthdays logs a greeting for every driver whose
	// birthday is today.
	CongratulateBirthdays(ctx context.Context) error
}

// PaymentSvcFacade drives the event-triggered debit workflow.
type PaymentSvcFacade interface {
	// ProcessDetailAdded debits the driver's account for the detail price
	// and emits a payment-completed event on success.
	ProcessDetailAdded(ctx context.Context, ev events.DetailAdded) error
}
