package domain

import "github.com/shopspring/decimal"

// Account is the per-driver record holding three currency balances.
// Exactly one account exists per driver; the account's lifetime is bound to
// the driver's. Every balance stays >= 0 at all times.
type Account struct {
	AccountID string                       `json:"accountID"`
	DriverID  string                       `json:"driverID"`
	Balances  map[Currency]decimal.Decimal `json:"balances"`
	AuditFields
}

// ZeroBalances returns a fresh balance map with every denomination at zero.
func ZeroBalances() map[Currency]decimal.Decimal {
	balances := make(map[Currency]decimal.Decimal, len(Currencies))
	for _, c := range Currencies {
		balances[c] = decimal.Zero
	}
	return balances
}

// Valuation sums all balances converted into the target currency, rounded to
// 2 decimal places half-up.
func (a *Account) Valuation(target Currency) decimal.Decimal {
	total := decimal.Zero
	for _, c := range Currencies {
		total = total.Add(Convert(a.Balances[c], c, target))
	}
	return total.Round(2)
}
