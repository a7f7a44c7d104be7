package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/fleetsvc/cars-bills/internal/apperrors"
	"github.com/fleetsvc/cars-bills/internal/billing/domain"
	"github.com/fleetsvc/cars-bills/internal/billing/ports"
)

// PgxAccountRepository stores accounts with one column per currency balance.
type PgxAccountRepository struct {
	BaseRepository
}

// NewAccountRepository creates a new repository for account data.
func NewAccountRepository(pool *pgxpool.Pool) ports.AccountRepository {
	return &PgxAccountRepository{BaseRepository{Pool: pool}}
}

var _ ports.AccountRepository = (*PgxAccountRepository)(nil)

const accountColumns = `account_id, driver_id, red_balance, green_balance, blue_balance, created_at, last_updated_at`

// scanAccount maps one account row into the domain representation with its
// enum-keyed balance map.
func scanAccount(row pgx.Row) (*domain.Account, error) {
	var acc domain.Account
	var red, green, blue decimal.Decimal

	err := row.Scan(
		&acc.AccountID,
		&acc.DriverID,
		&red,
		&green,
		&blue,
		&acc.CreatedAt,
		&acc.LastUpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	acc.Balances = map[domain.Currency]decimal.Decimal{
		domain.Red:   red,
		domain.Green: green,
		domain.Blue:  blue,
	}
	return &acc, nil
}

// SaveAccountInTx inserts a new account inside an open transaction. Accounts
// are created together with their driver, so this never runs standalone.
func (r *PgxAccountRepository) SaveAccountInTx(ctx context.Context, tx pgx.Tx, account domain.Account) error {
	query := `
		INSERT INTO accounts (account_id, driver_id, red_balance, green_balance, blue_balance, created_at, last_updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	_, err := tx.Exec(ctx, query,
		account.AccountID,
		account.DriverID,
		account.Balances[domain.Red],
		account.Balances[domain.Green],
		account.Balances[domain.Blue],
		account.CreatedAt,
		account.LastUpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: account for driver %s already exists", apperrors.ErrDuplicate, account.DriverID)
		}
		return fmt.Errorf("failed to save account %s: %w", account.AccountID, err)
	}
	return nil
}

// FindAccountByID retrieves an account by its identifier.
func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = $1;`

	acc, err := scanAccount(r.Pool.QueryRow(ctx, query, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find account by ID %s: %w", accountID, err)
	}
	return acc, nil
}

// FindAccountByDriverID retrieves the single account owned by a driver.
func (r *PgxAccountRepository) FindAccountByDriverID(ctx context.Context, driverID string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE driver_id = $1;`

	acc, err := scanAccount(r.Pool.QueryRow(ctx, query, driverID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find account by driver ID %s: %w", driverID, err)
	}
	return acc, nil
}

// FindAccountByIDForUpdate retrieves an account and locks its row until the
// transaction ends. Every balance mutation goes through this lock so the
// check-then-act sequence in the ledger cannot race.
func (r *PgxAccountRepository) FindAccountByIDForUpdate(ctx context.Context, tx pgx.Tx, accountID string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = $1 FOR UPDATE;`

	acc, err := scanAccount(tx.QueryRow(ctx, query, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock account %s: %w", accountID, err)
	}
	return acc, nil
}

// UpdateBalancesInTx writes the full balance set of one account. The caller
// holds the row lock from FindAccountByIDForUpdate.
func (r *PgxAccountRepository) UpdateBalancesInTx(ctx context.Context, tx pgx.Tx, accountID string, balances map[domain.Currency]decimal.Decimal, now time.Time) error {
	query := `
		UPDATE accounts
		SET red_balance = $2, green_balance = $3, blue_balance = $4, last_updated_at = $5
		WHERE account_id = $1;
	`
	ct, err := tx.Exec(ctx, query,
		accountID,
		balances[domain.Red],
		balances[domain.Green],
		balances[domain.Blue],
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to update balances for account %s: %w", accountID, err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("%w: account %s not found during balance update", apperrors.ErrNotFound, accountID)
	}
	return nil
}
