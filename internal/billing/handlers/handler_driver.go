package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fleetsvc/cars-bills/internal/apperrors"
	"github.com/fleetsvc/cars-bills/internal/billing/dto"
	"github.com/fleetsvc/cars-bills/internal/billing/ports"
	"github.com/fleetsvc/cars-bills/internal/events"
	"github.com/fleetsvc/cars-bills/internal/middleware"
)

// driverHandler handles HTTP requests related to drivers.
type driverHandler struct {
	driverService ports.DriverSvcFacade
}

func newDriverHandler(ds ports.DriverSvcFacade) *driverHandler {
	return &driverHandler{driverService: ds}
}

// RegisterDriverRoutes registers routes related to drivers.
func RegisterDriverRoutes(rg *gin.RouterGroup, driverService ports.DriverSvcFacade) {
	h := newDriverHandler(driverService)

	drivers := rg.Group("/drivers")
	{
		drivers.POST("", h.createDriver)
		drivers.GET("", h.listDrivers)
		drivers.GET("/search", h.listDrivers)
		drivers.POST("/buy-car", h.buyCar)
		drivers.GET("/:passport", h.getDriver)
		drivers.PUT("/:passport", h.updateDriver)
		drivers.DELETE("/:passport", h.deleteDriver)
	}
}

func (h *driverHandler) createDriver(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateDriver", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	driver, err := h.driverService.RegisterDriver(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else if errors.Is(err, apperrors.ErrDuplicate) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to register driver", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register driver"})
		}
		return
	}

	c.JSON(http.StatusCreated, dto.ToDriverResponse(driver))
}

func (h *driverHandler) getDriver(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	passport := c.Param("passport")

	driver, err := h.driverService.GetDriverByPassport(c.Request.Context(), passport)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Driver not found"})
		} else {
			logger.Error("Failed to get driver", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get driver"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToDriverResponse(driver))
}

func (h *driverHandler) listDrivers(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.ListDriversParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	filter := ports.DriverFilter{
		FirstName:  params.FirstName,
		LastName:   params.LastName,
		Passport:   params.Passport,
		Experience: params.Experience,
	}
	page := ports.PageRequest{Page: params.Page, Size: params.Size, SortBy: params.SortBy}

	drivers, total, err := h.driverService.ListDrivers(c.Request.Context(), filter, page)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to list drivers", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list drivers"})
		}
		return
	}

	resp := dto.ListDriversResponse{
		Drivers: make([]dto.DriverResponse, 0, len(drivers)),
		Page:    params.Page,
		Size:    params.Size,
		Total:   total,
	}
	for i := range drivers {
		resp.Drivers = append(resp.Drivers, dto.ToDriverResponse(&drivers[i]))
	}

	c.JSON(http.StatusOK, resp)
}

func (h *driverHandler) updateDriver(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	passport := c.Param("passport")

	var req dto.UpdateDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateDriver", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	driver, err := h.driverService.UpdateDriver(c.Request.Context(), passport, req)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Driver not found"})
		} else if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to update driver", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update driver"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToDriverResponse(driver))
}

func (h *driverHandler) deleteDriver(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	passport := c.Param("passport")

	if err := h.driverService.DeleteDriver(c.Request.Context(), passport); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Driver not found"})
		} else {
			logger.Error("Failed to delete driver", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete driver"})
		}
		return
	}

	c.JSON(http.StatusNoContent, nil)
}

// buyCar accepts a purchase intent and forwards it to the catalog service
// over the bus. The response only confirms the event was accepted.
func (h *driverHandler) buyCar(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CarPurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for BuyCar", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	ev := events.CarPurchase{DriverID: req.DriverID, LicensePlate: req.LicensePlate}
	if err := h.driverService.RequestCarPurchase(c.Request.Context(), ev); err != nil {
		logger.Error("Failed to request car purchase", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to request car purchase"})
		return
	}

	c.JSON(http.StatusAccepted, dto.MessageResponse{Message: "Car purchase requested"})
}
