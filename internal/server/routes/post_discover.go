package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tastemap/backend/internal/server/middleware"
	"github.com/tastemap/backend/pkg/place"
)

// DiscoverPlacesHandler fans the query out to all providers and returns
// the reconciled entities without enrichment or ranking.
func DiscoverPlacesHandler(c echo.Context) error {
	type discoverBody struct {
		Query  string `json:"query" validate:"required"`
		Region string `json:"region"`
		Theme  string `json:"theme"`
	}

	type discoverResponse struct {
		Message  string         `json:"message,omitempty"`
		Entities []place.Entity `json:"entities"`
	}

	data := new(discoverBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, discoverResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, discoverResponse{
			Message: "Invalid request body",
		})
	}

	app := c.(*middleware.AppContext).App
	entities := app.Pipeline.Discover(c.Request().Context(), place.Query{
		Text:   data.Query,
		Region: data.Region,
		Theme:  data.Theme,
	})

	return c.JSON(http.StatusOK, discoverResponse{Entities: entities})
}
