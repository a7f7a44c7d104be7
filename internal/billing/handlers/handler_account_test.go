package handlers_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/fleetsvc/cars-bills/internal/apperrors"
	"github.com/fleetsvc/cars-bills/internal/billing/domain"
	"github.com/fleetsvc/cars-bills/internal/billing/handlers"
	"github.com/fleetsvc/cars-bills/internal/billing/ports"
	"github.com/fleetsvc/cars-bills/internal/middleware"
)

// --- Mock AccountService ---
type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) Credit(ctx context.Context, accountID string, amount decimal.Decimal, currency domain.Currency) error {
	args := m.Called(ctx, accountID, amount, currency)
	return args.Error(0)
}

func (m *MockAccountService) Debit(ctx context.Context, accountID string, amount decimal.Decimal, currency domain.Currency) error {
	args := m.Called(ctx, accountID, amount, currency)
	return args.Error(0)
}

func (m *MockAccountService) GetBalance(ctx context.Context, accountID string, currency domain.Currency) (decimal.Decimal, error) {
	args := m.Called(ctx, accountID, currency)
	if args.Get(0) == nil {
		return decimal.Decimal{}, args.Error(1)
	}
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockAccountService) GetAccountByDriverID(ctx context.Context, driverID string) (*domain.Account, error) {
	args := m.Called(ctx, driverID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

var _ ports.AccountSvcFacade = (*MockAccountService)(nil)

// --- Test Suite ---
type AccountHandlerTestSuite struct {
	suite.Suite
	router             *gin.Engine
	mockAccountService *MockAccountService
	jwtSecret          string
}

func TestAccountHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(AccountHandlerTestSuite))
}

func (suite *AccountHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.router = gin.New()
	suite.jwtSecret = "test-secret-key-that-is-long-enough"

	suite.router.Use(middleware.AuthMiddleware(suite.jwtSecret))

	suite.mockAccountService = new(MockAccountService)

	v1 := suite.router.Group("/api/v1")
	handlers.RegisterAccountRoutes(v1, suite.mockAccountService)
}

// generateTestToken creates a dummy JWT for testing.
func (suite *AccountHandlerTestSuite) generateTestToken(subject string) string {
	claims := jwt.RegisteredClaims{
		Issuer:    "billing-test",
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(1 * time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(suite.jwtSecret))
	if err != nil {
		suite.FailNow("Failed to sign test token", err.Error())
	}
	return signed
}

func (suite *AccountHandlerTestSuite) doRequest(method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	req.Header.Set("Authorization", "Bearer "+suite.generateTestToken(uuid.NewString()))
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

// --- Test Cases ---

func (suite *AccountHandlerTestSuite) TestCredit_Success() {
	accountID := uuid.NewString()
	suite.mockAccountService.On("Credit", mock.Anything, accountID, decimal.RequireFromString("25.50"), domain.Red).Return(nil).Once()

	w := suite.doRequest(http.MethodPost, fmt.Sprintf("/api/v1/accounts/%s/credit?amount=25.50&currency=RED", accountID))

	suite.Equal(http.StatusOK, w.Code)
	suite.mockAccountService.AssertExpectations(suite.T())
}

func (suite *AccountHandlerTestSuite) TestCredit_NegativeAmount() {
	accountID := uuid.NewString()

	w := suite.doRequest(http.MethodPost, fmt.Sprintf("/api/v1/accounts/%s/credit?amount=-5&currency=RED", accountID))

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockAccountService.AssertNotCalled(suite.T(), "Credit", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *AccountHandlerTestSuite) TestCredit_UnknownCurrency() {
	accountID := uuid.NewString()

	w := suite.doRequest(http.MethodPost, fmt.Sprintf("/api/v1/accounts/%s/credit?amount=5&currency=PURPLE", accountID))

	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *AccountHandlerTestSuite) TestCredit_MalformedAmount() {
	accountID := uuid.NewString()

	w := suite.doRequest(http.MethodPost, fmt.Sprintf("/api/v1/accounts/%s/credit?amount=abc&currency=RED", accountID))

	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *AccountHandlerTestSuite) TestCredit_AccountNotFound() {
	accountID := uuid.NewString()
	suite.mockAccountService.On("Credit", mock.Anything, accountID, mock.Anything, domain.Green).Return(apperrors.ErrNotFound).Once()

	w := suite.doRequest(http.MethodPost, fmt.Sprintf("/api/v1/accounts/%s/credit?amount=5&currency=GREEN", accountID))

	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *AccountHandlerTestSuite) TestDebit_Success() {
	accountID := uuid.NewString()
	suite.mockAccountService.On("Debit", mock.Anything, accountID, decimal.NewFromInt(40), domain.Green).Return(nil).Once()

	w := suite.doRequest(http.MethodPost, fmt.Sprintf("/api/v1/accounts/%s/debit?amount=40&currency=GREEN", accountID))

	suite.Equal(http.StatusOK, w.Code)
	suite.mockAccountService.AssertExpectations(suite.T())
}

func (suite *AccountHandlerTestSuite) TestDebit_InsufficientBalance() {
	accountID := uuid.NewString()
	suite.mockAccountService.On("Debit", mock.Anything, accountID, mock.Anything, domain.Blue).Return(apperrors.ErrInsufficientBalance).Once()

	w := suite.doRequest(http.MethodPost, fmt.Sprintf("/api/v1/accounts/%s/debit?amount=9999&currency=BLUE", accountID))

	suite.Equal(http.StatusPaymentRequired, w.Code)
}

func (suite *AccountHandlerTestSuite) TestGetBalance_Success() {
	accountID := uuid.NewString()
	suite.mockAccountService.On("GetBalance", mock.Anything, accountID, domain.Green).Return(decimal.RequireFromString("630"), nil).Once()

	w := suite.doRequest(http.MethodGet, fmt.Sprintf("/api/v1/accounts/%s/balance?currency=GREEN", accountID))

	suite.Require().Equal(http.StatusOK, w.Code)
	var resp struct {
		Balance  string `json:"balance"`
		Currency string `json:"currency"`
	}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("630.00", resp.Balance)
	suite.Equal("GREEN", resp.Currency)
}

func (suite *AccountHandlerTestSuite) TestGetBalance_MissingCurrency() {
	accountID := uuid.NewString()

	w := suite.doRequest(http.MethodGet, fmt.Sprintf("/api/v1/accounts/%s/balance", accountID))

	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *AccountHandlerTestSuite) TestUnauthorizedWithoutToken() {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts/some-id/balance?currency=RED", nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusUnauthorized, w.Code)
}
