package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fleetsvc/cars-bills/internal/catalog/domain"
)

// NestedDetailRequest describes a detail created together with its car.
type NestedDetailRequest struct {
	SerialNumber string          `json:"serialNumber" binding:"required"`
	Price        decimal.Decimal `json:"price" binding:"required"`
}

// CreateCarRequest registers a car, optionally with details attached in the
// same transaction.
type CreateCarRequest struct {
	VIN          string                `json:"vin" binding:"required"`
	LicensePlate string                `json:"licensePlate" binding:"required"`
	Manufacturer string                `json:"manufacturer" binding:"required"`
	Model        string                `json:"model" binding:"required"`
	Year         int                   `json:"year" binding:"required,gte=1900"`
	Details      []NestedDetailRequest `json:"details"`
}

// UpdateCarRequest carries patch semantics: nil fields are left unchanged.
type UpdateCarRequest struct {
	LicensePlate *string `json:"licensePlate"`
	Manufacturer *string `json:"manufacturer"`
	Model        *string `json:"model"`
	Year         *int    `json:"year"`
}

// ListCarsParams binds the car list/search query string.
type ListCarsParams struct {
	Page         int    `form:"page,default=0" binding:"gte=0"`
	Size         int    `form:"size,default=10" binding:"gte=1,lte=100"`
	SortBy       string `form:"sortBy,default=manufacturer"`
	Manufacturer string `form:"manufacturer"`
	Model        string `form:"model"`
	Year         *int   `form:"year"`
}

// AddDetailRequest starts the billing workflow for one detail on one car.
type AddDetailRequest struct {
	SerialNumber string `json:"serialNumber" binding:"required"`
	LicensePlate string `json:"licensePlate" binding:"required"`
	Currency     string `json:"currency" binding:"required"`
}

// CarResponse is the outward representation of a car.
type CarResponse struct {
	VIN          string           `json:"vin"`
	LicensePlate string           `json:"licensePlate"`
	Manufacturer string           `json:"manufacturer"`
	Model        string           `json:"model"`
	Year         int              `json:"year"`
	DriverID     *string          `json:"driverId"`
	Details      []DetailResponse `json:"details"`
	CreatedAt    time.Time        `json:"createdAt"`
}

// ListCarsResponse is a page of cars.
type ListCarsResponse struct {
	Cars  []CarResponse `json:"cars"`
	Page  int           `json:"page"`
	Size  int           `json:"size"`
	Total int64         `json:"total"`
}

// MessageResponse is a plain confirmation message.
type MessageResponse struct {
	Message string `json:"message"`
}

// ToCarResponse maps a domain car to its response DTO.
func ToCarResponse(c *domain.Car) CarResponse {
	details := make([]DetailResponse, 0, len(c.Details))
	for i := range c.Details {
		details = append(details, ToDetailResponse(&c.Details[i]))
	}
	return CarResponse{
		VIN:          c.VIN,
		LicensePlate: c.LicensePlate,
		Manufacturer: c.Manufacturer,
		Model:        c.Model,
		Year:         c.Year,
		DriverID:     c.DriverID,
		Details:      details,
		CreatedAt:    c.CreatedAt,
	}
}
