package domain

import (
	"fmt"
	"time"

	"github.com/fleetsvc/cars-bills/internal/apperrors"
)

// LicenseCategory is the driver's license class.
type LicenseCategory string

const (
	CategoryA LicenseCategory = "A"
	CategoryB LicenseCategory = "B"
	CategoryC LicenseCategory = "C"
	CategoryD LicenseCategory = "D"
	CategoryE LicenseCategory = "E"
)

// ParseLicenseCategory validates a license category literal.
func ParseLicenseCategory(s string) (LicenseCategory, error) {
	switch LicenseCategory(s) {
	case CategoryA, CategoryB, CategoryC, CategoryD, CategoryE:
		return LicenseCategory(s), nil
	default:
		return "", fmt.Errorf("%w: unknown license category %q", apperrors.ErrValidation, s)
	}
}

// Driver represents a registered driver. The passport number is the business
// key used by the HTTP surface; DriverID is the stable internal identifier
// carried by events.
type Driver struct {
	DriverID        string          `json:"driverID"`
	FirstName       string          `json:"firstName"`
	LastName        string          `json:"lastName"`
	Passport        string          `json:"passport"`
	LicenseCategory LicenseCategory `json:"licenseCategory"`
	DateOfBirth     time.Time       `json:"dateOfBirth"`
	Experience      int             `json:"experience"`
	AuditFields
}
