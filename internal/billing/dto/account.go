package dto

// MessageResponse is a plain confirmation message.
type MessageResponse struct {
	Message string `json:"message"`
}

// BalanceResponse carries an account valuation in one target currency,
// formatted at scale 2.
type BalanceResponse struct {
	Balance  string `json:"balance"`
	Currency string `json:"currency"`
}

// MutationParams binds the credit/debit query string. Amount stays a string
// until the handler parses it with decimal, so no float conversion happens
// on the way in.
type MutationParams struct {
	Amount   string `form:"amount" binding:"required"`
	Currency string `form:"currency" binding:"required"`
}

// BalanceParams binds the balance query string.
type BalanceParams struct {
	Currency string `form:"currency" binding:"required"`
}
