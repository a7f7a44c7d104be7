package domain

import (
	"fmt"
	"strings"

	"github.com/fleetsvc/cars-bills/internal/apperrors"
)

// Currency is one of three fixed denominations with no implicit
// interchangeability. Conversion between them only ever happens explicitly
// through the conversion table.
type Currency string

const (
	Red   Currency = "RED"
	Green Currency = "GREEN"
	Blue  Currency = "BLUE"
)

// Currencies lists every denomination in a stable order.
var Currencies = []Currency{Red, Green, Blue}

// ParseCurrency maps a string literal to a Currency. Unknown literals are a
// validation error and must be rejected before reaching the ledger.
func ParseCurrency(s string) (Currency, error) {
	switch Currency(strings.ToUpper(s)) {
	case Red:
		return Red, nil
	case Green:
		return Green, nil
	case Blue:
		return Blue, nil
	default:
		return "", fmt.Errorf("%w: unknown currency %q", apperrors.ErrValidation, s)
	}
}
