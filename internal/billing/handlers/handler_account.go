package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/fleetsvc/cars-bills/internal/apperrors"
	"github.com/fleetsvc/cars-bills/internal/billing/domain"
	"github.com/fleetsvc/cars-bills/internal/billing/dto"
	"github.com/fleetsvc/cars-bills/internal/billing/ports"
	"github.com/fleetsvc/cars-bills/internal/middleware"
)

// accountHandler handles HTTP requests against the ledger.
type accountHandler struct {
	accountService ports.AccountSvcFacade
}

func newAccountHandler(as ports.AccountSvcFacade) *accountHandler {
	return &accountHandler{accountService: as}
}

// RegisterAccountRoutes registers routes related to accounts.
func RegisterAccountRoutes(rg *gin.RouterGroup, accountService ports.AccountSvcFacade) {
	h := newAccountHandler(accountService)

	accounts := rg.Group("/accounts")
	{
		accounts.POST("/:accountID/credit", h.credit)
		accounts.POST("/:accountID/debit", h.debit)
		accounts.GET("/:accountID/balance", h.getBalance)
	}
}

// bindMutation parses and validates the amount/currency query pair shared by
// credit and debit. A nil amount means the response has already been written.
func (h *accountHandler) bindMutation(c *gin.Context) (decimal.Decimal, domain.Currency, bool) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.MutationParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind mutation params", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return decimal.Zero, "", false
	}

	amount, err := decimal.NewFromString(params.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid amount: " + params.Amount})
		return decimal.Zero, "", false
	}
	if amount.IsNegative() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Amount must not be negative"})
		return decimal.Zero, "", false
	}

	currency, err := domain.ParseCurrency(params.Currency)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return decimal.Zero, "", false
	}

	return amount, currency, true
}

func (h *accountHandler) credit(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("accountID")

	amount, currency, ok := h.bindMutation(c)
	if !ok {
		return
	}

	if err := h.accountService.Credit(c.Request.Context(), accountID, amount, currency); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
		} else {
			logger.Error("Failed to credit account", slog.String("error", err.Error()), slog.String("account_id", accountID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to credit account"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Account credited"})
}

func (h *accountHandler) debit(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("accountID")

	amount, currency, ok := h.bindMutation(c)
	if !ok {
		return
	}

	if err := h.accountService.Debit(c.Request.Context(), accountID, amount, currency); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
		} else if errors.Is(err, apperrors.ErrInsufficientBalance) {
			c.JSON(http.StatusPaymentRequired, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to debit account", slog.String("error", err.Error()), slog.String("account_id", accountID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to debit account"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Account debited"})
}

func (h *accountHandler) getBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("accountID")

	var params dto.BalanceParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	currency, err := domain.ParseCurrency(params.Currency)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	balance, err := h.accountService.GetBalance(c.Request.Context(), accountID, currency)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
		} else {
			logger.Error("Failed to get account balance", slog.String("error", err.Error()), slog.String("account_id", accountID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get balance"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.BalanceResponse{
		Balance:  balance.StringFixed(2),
		Currency: string(currency),
	})
}
