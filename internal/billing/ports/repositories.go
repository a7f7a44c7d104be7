package ports

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/fleetsvc/cars-bills/internal/billing/domain"
)

// TransactionManager exposes transaction lifecycle operations used by
// services that need multi-statement atomicity.
type TransactionManager interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Commit(ctx context.Context, tx pgx.Tx) error
	Rollback(ctx context.Context, tx pgx.Tx) error
}

// AccountRepository persists accounts and their balances.
type AccountRepository interface {
	TransactionManager

	// SaveAccountInTx persists a new account inside an open transaction
	// (accounts are created together with their driver).
	SaveAccountInTx(ctx context.Context, tx pgx.Tx, account domain.Account) error

	// FindAccountByID retrieves an account by its identifier.
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// FindAccountByDriverID retrieves the single account owned by a driver.
	FindAccountByDriverID(ctx context.Context, driverID string) (*domain.Account, error)

	// FindAccountByIDForUpdate retrieves an account and locks its row for
	// the duration of the transaction.
	FindAccountByIDForUpdate(ctx context.Context, tx pgx.Tx, accountID string) (*domain.Account, error)

	// UpdateBalancesInTx writes the full balance set of one account within
	// a transaction. The row must already be locked.
	UpdateBalancesInTx(ctx context.Context, tx pgx.Tx, accountID string, balances map[domain.Currency]decimal.Decimal, now time.Time) error
}

// DriverFilter narrows ListDrivers. The first non-zero field wins, matching
// the search endpoint's one-filter-at-a-time semantics.
type DriverFilter struct {
	FirstName  string
	LastName   string
	Passport   string
	Experience *int
}

// PageRequest describes pagination and sorting for list queries.
type PageRequest struct {
	Page   int
	Size   int
	SortBy string
}

// DriverRepository persists drivers.
type DriverRepository interface {
	TransactionManager

	SaveDriverInTx(ctx context.Context, tx pgx.Tx, driver domain.Driver) error
	FindDriverByPassport(ctx context.Context, passport string) (*domain.Driver, error)
	FindDriverByID(ctx context.Context, driverID string) (*domain.Driver, error)
	ExistsByPassport(ctx context.Context, passport string) (bool, error)
	ListDrivers(ctx context.Context, filter DriverFilter, page PageRequest) ([]domain.Driver, int64, error)
	UpdateDriver(ctx context.Context, driver domain.Driver) error
	DeleteDriverByPassport(ctx context.Context, passport string) error

	// FindDriversWithBirthday returns drivers whose birthday falls on the
	// given month and day.
	FindDriversWithBirthday(ctx context.Context, month time.Month, day int) ([]domain.Driver, error)
}
