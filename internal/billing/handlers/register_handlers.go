package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/fleetsvc/cars-bills/internal/billing/ports"
	"github.com/fleetsvc/cars-bills/internal/middleware"
	"github.com/fleetsvc/cars-bills/pkg/config"
)

// Services bundles the service facades the HTTP layer depends on.
type Services struct {
	Account ports.AccountSvcFacade
	Driver  ports.DriverSvcFacade
}

// RegisterRoutes sets up all billing routes.
func RegisterRoutes(r *gin.Engine, cfg *config.Config, services Services) {
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	v1 := r.Group("/api/v1", middleware.AuthMiddleware(cfg.JWTSecret))

	RegisterAccountRoutes(v1, services.Account)
	RegisterDriverRoutes(v1, services.Driver)
}
