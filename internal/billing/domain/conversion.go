package domain

import "github.com/shopspring/decimal"

// The conversion table is built from two anchor rates; the remaining four
// directed rates are their reciprocals and composition. The table is
// authoritative as given: rates are not derived from a common base and
// multi-hop paths are not guaranteed to round-trip.
var (
	rateRedToGreen = decimal.RequireFromString("2.5")
	rateBlueToGreen = decimal.RequireFromString("0.6")

	one = decimal.NewFromInt(1)

	conversionRates = map[Currency]map[Currency]decimal.Decimal{
		Red: {
			Green: rateRedToGreen,
			Blue:  rateRedToGreen.Div(rateBlueToGreen),
		},
		Green: {
			Red:  one.Div(rateRedToGreen),
			Blue: one.Div(rateBlueToGreen),
		},
		Blue: {
			Green: rateBlueToGreen,
			Red:   rateBlueToGreen.Div(rateRedToGreen),
		},
	}
)

// Convert values amount of the from currency in terms of the to currency
// using the fixed pairwise rates. Same-currency conversion is the identity.
// Pure function, safe for concurrent use.
func Convert(amount decimal.Decimal, from, to Currency) decimal.Decimal {
	if from == to {
		return amount
	}
	return amount.Mul(conversionRates[from][to])
}
