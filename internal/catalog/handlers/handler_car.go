package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fleetsvc/cars-bills/internal/apperrors"
	"github.com/fleetsvc/cars-bills/internal/catalog/dto"
	"github.com/fleetsvc/cars-bills/internal/catalog/ports"
	"github.com/fleetsvc/cars-bills/internal/middleware"
)

// carHandler handles HTTP requests related to cars.
type carHandler struct {
	carService ports.CarSvcFacade
}

func newCarHandler(cs ports.CarSvcFacade) *carHandler {
	return &carHandler{carService: cs}
}

// RegisterCarRoutes registers routes related to cars.
func RegisterCarRoutes(rg *gin.RouterGroup, carService ports.CarSvcFacade) {
	h := newCarHandler(carService)

	cars := rg.Group("/cars")
	{
		cars.POST("", h.createCar)
		cars.GET("", h.listCars)
		cars.GET("/search", h.listCars)
		cars.GET("/by-plate/:licensePlate", h.getCarByPlate)
		cars.POST("/add-detail", h.addDetail)
		cars.GET("/:vin", h.getCar)
		cars.PUT("/:vin", h.updateCar)
		cars.DELETE("/:vin", h.deleteCar)
	}
}

func (h *carHandler) createCar(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateCarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateCar", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	car, err := h.carService.RegisterCar(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		} else if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to register car", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register car"})
		}
		return
	}

	c.JSON(http.StatusCreated, dto.ToCarResponse(car))
}

func (h *carHandler) getCar(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	vin := c.Param("vin")

	car, err := h.carService.GetCarByVIN(c.Request.Context(), vin)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Car not found"})
		} else {
			logger.Error("Failed to get car", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get car"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToCarResponse(car))
}

func (h *carHandler) getCarByPlate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	licensePlate := c.Param("licensePlate")

	car, err := h.carService.GetCarByLicensePlate(c.Request.Context(), licensePlate)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Car not found"})
		} else {
			logger.Error("Failed to get car by plate", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get car"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToCarResponse(car))
}

func (h *carHandler) listCars(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.ListCarsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	filter := ports.CarFilter{
		Manufacturer: params.Manufacturer,
		Model:        params.Model,
		Year:         params.Year,
	}
	page := ports.PageRequest{Page: params.Page, Size: params.Size, SortBy: params.SortBy}

	cars, total, err := h.carService.ListCars(c.Request.Context(), filter, page)
	if err != nil {
		logger.Error("Failed to list cars", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list cars"})
		return
	}

	resp := dto.ListCarsResponse{
		Cars:  make([]dto.CarResponse, 0, len(cars)),
		Page:  params.Page,
		Size:  params.Size,
		Total: total,
	}
	for i := range cars {
		resp.Cars = append(resp.Cars, dto.ToCarResponse(&cars[i]))
	}

	c.JSON(http.StatusOK, resp)
}

func (h *carHandler) updateCar(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	vin := c.Param("vin")

	var req dto.UpdateCarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateCar", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	car, err := h.carService.UpdateCar(c.Request.Context(), vin, req)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Car not found"})
		} else if errors.Is(err, apperrors.ErrDuplicate) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to update car", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update car"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToCarResponse(car))
}

func (h *carHandler) deleteCar(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	vin := c.Param("vin")

	if err := h.carService.DeleteCar(c.Request.Context(), vin); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Car not found"})
		} else {
			logger.Error("Failed to delete car", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete car"})
		}
		return
	}

	c.JSON(http.StatusNoContent, nil)
}

// addDetail starts the billing workflow for a detail on a car. The response
// confirms only that the enriched event was published.
func (h *carHandler) addDetail(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.AddDetailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for AddDetail", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	if err := h.carService.RequestDetailBilling(c.Request.Context(), req); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		} else if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to request detail billing", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to request detail billing"})
		}
		return
	}

	c.JSON(http.StatusAccepted, dto.MessageResponse{Message: "Detail billing requested"})
}
