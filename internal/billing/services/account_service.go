package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fleetsvc/cars-bills/internal/apperrors"
	"github.com/fleetsvc/cars-bills/internal/billing/domain"
	"github.com/fleetsvc/cars-bills/internal/billing/ports"
	"github.com/fleetsvc/cars-bills/internal/middleware"
)

// AccountService is the ledger. Every balance mutation is a transactional
// read-modify-write against the locked account row, so concurrent debits on
// the same account cannot race past the non-negativity check.
type AccountService struct {
	accountRepo ports.AccountRepository
}

// NewAccountService creates a new AccountService.
func NewAccountService(accountRepo ports.AccountRepository) *AccountService {
	return &AccountService{accountRepo: accountRepo}
}

var _ ports.AccountSvcFacade = (*AccountService)(nil)

// Credit adds amount to the balance for currency.
func (s *AccountService) Credit(ctx context.Context, accountID string, amount decimal.Decimal, currency domain.Currency) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	err := s.mutateBalance(ctx, accountID, func(account *domain.Account) error {
		account.Balances[currency] = account.Balances[currency].Add(amount)
		return nil
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to credit account", slog.String("error", err.Error()), slog.String("account_id", accountID))
		}
		return err
	}

	logger.Info("Account credited", slog.String("account_id", accountID), slog.String("amount", amount.String()), slog.String("currency", string(currency)))
	return nil
}

// Debit subtracts amount from the balance for currency. If the balance would
// go negative the account is left unchanged and ErrInsufficientBalance is
// returned.
func (s *AccountService) Debit(ctx context.Context, accountID string, amount decimal.Decimal, currency domain.Currency) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	err := s.mutateBalance(ctx, accountID, func(account *domain.Account) error {
		newBalance := account.Balances[currency].Sub(amount)
		if newBalance.IsNegative() {
			return fmt.Errorf("%w: account %s has %s %s, needs %s",
				apperrors.ErrInsufficientBalance, accountID, account.Balances[currency], currency, amount)
		}
		account.Balances[currency] = newBalance
		return nil
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) && !errors.Is(err, apperrors.ErrInsufficientBalance) {
			logger.Error("Failed to debit account", slog.String("error", err.Error()), slog.String("account_id", accountID))
		}
		return err
	}

	logger.Info("Account debited", slog.String("account_id", accountID), slog.String("amount", amount.String()), slog.String("currency", string(currency)))
	return nil
}

// mutateBalance runs mutate against the locked account row inside a single
// transaction. If mutate returns an error the transaction rolls back and
// nothing is observably committed.
func (s *AccountService) mutateBalance(ctx context.Context, accountID string, mutate func(*domain.Account) error) error {
	tx, err := s.accountRepo.Begin(ctx)
	if err != nil {
		return err
	}
	defer s.accountRepo.Rollback(ctx, tx)

	account, err := s.accountRepo.FindAccountByIDForUpdate(ctx, tx, accountID)
	if err != nil {
		return err
	}

	if err := mutate(account); err != nil {
		return err
	}

	if err := s.accountRepo.UpdateBalancesInTx(ctx, tx, account.AccountID, account.Balances, time.Now().UTC()); err != nil {
		return err
	}

	return s.accountRepo.Commit(ctx, tx)
}

// GetBalance values all three balances in the requested currency and returns
// the sum at scale 2, rounded half-up. Read-only.
func (s *AccountService) GetBalance(ctx context.Context, accountID string, currency domain.Currency) (decimal.Decimal, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to load account for valuation", slog.String("error", err.Error()), slog.String("account_id", accountID))
		}
		return decimal.Zero, err
	}

	return account.Valuation(currency), nil
}

// GetAccountByDriverID resolves a driver's account.
func (s *AccountService) GetAccountByDriverID(ctx context.Context, driverID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByDriverID(ctx, driverID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			middleware.GetLoggerFromCtx(ctx).Error("Failed to find account by driver ID", slog.String("error", err.Error()), slog.String("driver_id", driverID))
		}
		return nil, err
	}
	return account, nil
}
