package server

import (
	"github.com/labstack/echo/v4"

	"github.com/tastemap/backend/internal/server/middleware"
	"github.com/tastemap/backend/internal/server/routes"
)

func RegisterRoutes(e *echo.Echo) {
	// Health check route
	e.GET("/health", func(c echo.Context) error {
		return c.String(200, "OK")
	})

	apiRoutes := e.Group("/api", middleware.AuthMiddleware)

	// Place routes
	apiRoutes.POST("/places/discover", routes.DiscoverPlacesHandler)
	apiRoutes.POST("/places/recommend", routes.RecommendPlacesHandler)
	apiRoutes.POST("/places/enrich", routes.EnrichPlaceHandler)
	apiRoutes.POST("/places/reenrich", routes.ReenrichPlaceHandler)
}
