package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AuditFields holds common timestamp fields.
type AuditFields struct {
	CreatedAt     time.Time `json:"createdAt"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
}

// Car represents a catalog car. The VIN is the primary identifier; the
// license plate is a unique business key carried by events.
type Car struct {
	VIN          string   `json:"vin"`
	LicensePlate string   `json:"licensePlate"`
	Manufacturer string   `json:"manufacturer"`
	Model        string   `json:"model"`
	Year         int      `json:"year"`
	DriverID     *string  `json:"driverId"`
	Details      []Detail `json:"details"`
	AuditFields
}

// Detail represents a priced car part.
type Detail struct {
	DetailID     string          `json:"detailID"`
	SerialNumber string          `json:"serialNumber"`
	Price        decimal.Decimal `json:"price"`
	AuditFields
}
