// Package events defines the messages exchanged between the catalog and
// billing services and the topics they travel on.
package events

import (
	"context"

	"github.com/shopspring/decimal"
)

// Topic names. The catalog service consumes TopicCarPurchase and
// TopicDetailPaid; the billing service consumes TopicDetailBilling.
const (
	// TopicCarPurchase carries a driver's intent to buy a car.
	TopicCarPurchase = "car.purchase"
	// TopicDetailBilling carries a priced detail waiting to be billed.
	TopicDetailBilling = "detail.billing"
	// TopicDetailPaid confirms that a detail was paid for.
	TopicDetailPaid = "detail.paid"
)

// CarPurchase associates a driver with a car. No ledger interaction happens
// on the billing side; the catalog side performs the car/driver linkage.
type CarPurchase struct {
	DriverID     string `json:"driverId"`
	LicensePlate string `json:"licensePlate"`
}

// DetailAdded bills a driver for one priced detail, denominated in one
// currency. The catalog service enriches it with the car's driver and the
// detail's price before publishing.
type DetailAdded struct {
	SerialNumber string          `json:"serialNumber"`
	Price        decimal.Decimal `json:"price"`
	LicensePlate string          `json:"licensePlate"`
	DriverID     string          `json:"driverId"`
	Currency     string          `json:"currency"`
}

// Publisher is the narrow outbound interface services publish through.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any) error
}
