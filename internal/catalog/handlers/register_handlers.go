package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/fleetsvc/cars-bills/internal/catalog/ports"
	"github.com/fleetsvc/cars-bills/internal/middleware"
	"github.com/fleetsvc/cars-bills/pkg/config"
)

// Services bundles the service facades the HTTP layer depends on.
type Services struct {
	Car    ports.CarSvcFacade
	Detail ports.DetailSvcFacade
}

// RegisterRoutes sets up all catalog routes.
func RegisterRoutes(r *gin.Engine, cfg *config.Config, services Services) {
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	v1 := r.Group("/api/v1", middleware.AuthMiddleware(cfg.JWTSecret))

	RegisterCarRoutes(v1, services.Car)
	RegisterDetailRoutes(v1, services.Detail)
}
