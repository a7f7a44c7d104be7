package dto

import (
	"time"

	"github.com/fleetsvc/cars-bills/internal/billing/domain"
)

// CreateDriverRequest registers a new driver (and implicitly a zeroed
// account).
type CreateDriverRequest struct {
	FirstName       string    `json:"firstName" binding:"required"`
	LastName        string    `json:"lastName" binding:"required"`
	Passport        string    `json:"passport" binding:"required"`
	LicenseCategory string    `json:"licenseCategory" binding:"required"`
	DateOfBirth     time.Time `json:"dateOfBirth" binding:"required"`
	Experience      int       `json:"experience" binding:"gte=0"`
}

// UpdateDriverRequest carries patch semantics: nil fields are left unchanged.
type UpdateDriverRequest struct {
	FirstName       *string    `json:"firstName"`
	LastName        *string    `json:"lastName"`
	LicenseCategory *string    `json:"licenseCategory"`
	DateOfBirth     *time.Time `json:"dateOfBirth"`
	Experience      *int       `json:"experience"`
}

// ListDriversParams binds the list/search query string.
type ListDriversParams struct {
	Page       int    `form:"page,default=0" binding:"gte=0"`
	Size       int    `form:"size,default=10" binding:"gte=1,lte=100"`
	SortBy     string `form:"sortBy,default=firstName"`
	FirstName  string `form:"firstName"`
	LastName   string `form:"lastName"`
	Passport   string `form:"passport"`
	Experience *int   `form:"experience"`
}

// CarPurchaseRequest is the buy-car request body.
type CarPurchaseRequest struct {
	DriverID     string `json:"driverId" binding:"required"`
	LicensePlate string `json:"licensePlate" binding:"required"`
}

// DriverResponse is the outward representation of a driver.
type DriverResponse struct {
	DriverID        string    `json:"driverID"`
	FirstName       string    `json:"firstName"`
	LastName        string    `json:"lastName"`
	Passport        string    `json:"passport"`
	LicenseCategory string    `json:"licenseCategory"`
	DateOfBirth     time.Time `json:"dateOfBirth"`
	Experience      int       `json:"experience"`
	CreatedAt       time.Time `json:"createdAt"`
}

// ListDriversResponse is a page of drivers.
type ListDriversResponse struct {
	Drivers []DriverResponse `json:"drivers"`
	Page    int              `json:"page"`
	Size    int              `json:"size"`
	Total   int64            `json:"total"`
}

// ToDriverResponse maps a domain driver to its response DTO.
func ToDriverResponse(d *domain.Driver) DriverResponse {
	return DriverResponse{
		DriverID:        d.DriverID,
		FirstName:       d.FirstName,
		LastName:        d.LastName,
		Passport:        d.Passport,
		LicenseCategory: string(d.LicenseCategory),
		DateOfBirth:     d.DateOfBirth,
		Experience:      d.Experience,
		CreatedAt:       d.CreatedAt,
	}
}
