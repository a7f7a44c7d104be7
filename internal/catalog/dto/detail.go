package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fleetsvc/cars-bills/internal/catalog/domain"
)

// CreateDetailRequest registers a standalone detail.
type CreateDetailRequest struct {
	SerialNumber string          `json:"serialNumber" binding:"required"`
	Price        decimal.Decimal `json:"price" binding:"required"`
}

// UpdateDetailRequest carries patch semantics: nil fields are left unchanged.
type UpdateDetailRequest struct {
	Price *decimal.Decimal `json:"price"`
}

// ListDetailsParams binds the detail list/search query string.
type ListDetailsParams struct {
	Page         int    `form:"page,default=0" binding:"gte=0"`
	Size         int    `form:"size,default=10" binding:"gte=1,lte=100"`
	SortBy       string `form:"sortBy,default=serialNumber"`
	SerialNumber string `form:"serialNumber"`
	Price        string `form:"price"`
}

// DetailResponse is the outward representation of a detail.
type DetailResponse struct {
	DetailID     string          `json:"detailID"`
	SerialNumber string          `json:"serialNumber"`
	Price        decimal.Decimal `json:"price"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// ListDetailsResponse is a page of details.
type ListDetailsResponse struct {
	Details []DetailResponse `json:"details"`
	Page    int              `json:"page"`
	Size    int              `json:"size"`
	Total   int64            `json:"total"`
}

// ToDetailResponse maps a domain detail to its response DTO.
func ToDetailResponse(d *domain.Detail) DetailResponse {
	return DetailResponse{
		DetailID:     d.DetailID,
		SerialNumber: d.SerialNumber,
		Price:        d.Price,
		CreatedAt:    d.CreatedAt,
	}
}
