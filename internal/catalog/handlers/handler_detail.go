package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/fleetsvc/cars-bills/internal/apperrors"
	"github.com/fleetsvc/cars-bills/internal/catalog/dto"
	"github.com/fleetsvc/cars-bills/internal/catalog/ports"
	"github.com/fleetsvc/cars-bills/internal/middleware"
)

// detailHandler handles HTTP requests related to details.
type detailHandler struct {
	detailService ports.DetailSvcFacade
}

func newDetailHandler(ds ports.DetailSvcFacade) *detailHandler {
	return &detailHandler{detailService: ds}
}

// RegisterDetailRoutes registers routes related to details.
func RegisterDetailRoutes(rg *gin.RouterGroup, detailService ports.DetailSvcFacade) {
	h := newDetailHandler(detailService)

	details := rg.Group("/details")
	{
		details.POST("", h.createDetail)
		details.GET("", h.listDetails)
		details.GET("/search", h.listDetails)
		details.GET("/:serialNumber", h.getDetail)
		details.PUT("/:serialNumber", h.updateDetail)
		details.DELETE("/:serialNumber", h.deleteDetail)
	}
}

func (h *detailHandler) createDetail(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateDetailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateDetail", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	detail, err := h.detailService.RegisterDetail(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to register detail", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register detail"})
		}
		return
	}

	c.JSON(http.StatusCreated, dto.ToDetailResponse(detail))
}

func (h *detailHandler) getDetail(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	serialNumber := c.Param("serialNumber")

	detail, err := h.detailService.GetDetailBySerialNumber(c.Request.Context(), serialNumber)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Detail not found"})
		} else {
			logger.Error("Failed to get detail", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get detail"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToDetailResponse(detail))
}

func (h *detailHandler) listDetails(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.ListDetailsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	filter := ports.DetailFilter{SerialNumber: params.SerialNumber}
	if params.Price != "" {
		price, err := decimal.NewFromString(params.Price)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid price: " + params.Price})
			return
		}
		filter.Price = &price
	}
	page := ports.PageRequest{Page: params.Page, Size: params.Size, SortBy: params.SortBy}

	details, total, err := h.detailService.ListDetails(c.Request.Context(), filter, page)
	if err != nil {
		logger.Error("Failed to list details", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list details"})
		return
	}

	resp := dto.ListDetailsResponse{
		Details: make([]dto.DetailResponse, 0, len(details)),
		Page:    params.Page,
		Size:    params.Size,
		Total:   total,
	}
	for i := range details {
		resp.Details = append(resp.Details, dto.ToDetailResponse(&details[i]))
	}

	c.JSON(http.StatusOK, resp)
}

func (h *detailHandler) updateDetail(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	serialNumber := c.Param("serialNumber")

	var req dto.UpdateDetailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateDetail", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	detail, err := h.detailService.UpdateDetail(c.Request.Context(), serialNumber, req)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Detail not found"})
		} else {
			logger.Error("Failed to update detail", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update detail"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToDetailResponse(detail))
}

func (h *detailHandler) deleteDetail(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	serialNumber := c.Param("serialNumber")

	if err := h.detailService.DeleteDetail(c.Request.Context(), serialNumber); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Detail not found"})
		} else {
			logger.Error("Failed to delete detail", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete detail"})
		}
		return
	}

	c.JSON(http.StatusNoContent, nil)
}
