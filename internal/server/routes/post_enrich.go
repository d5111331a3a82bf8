package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tastemap/backend/internal/server/middleware"
	"github.com/tastemap/backend/pkg/logger"
	"github.com/tastemap/backend/pkg/place"
)

// EnrichPlaceHandler returns the enrichment for one place, computing and
// caching it on the first request. A place without review content yields
// a null enrichment, not an error.
func EnrichPlaceHandler(c echo.Context) error {
	type enrichBody struct {
		Name     string `json:"name" validate:"required"`
		Address  string `json:"address" validate:"required"`
		Category string `json:"category"`
	}

	type enrichResponse struct {
		Message    string                  `json:"message,omitempty"`
		EntityKey  string                  `json:"entity_key,omitempty"`
		Enrichment *place.EnrichmentRecord `json:"enrichment"`
	}

	data := new(enrichBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, enrichResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, enrichResponse{
			Message: "Invalid request body",
		})
	}

	entity := place.Entity{
		Key:      place.CanonicalKey(data.Name, data.Address, place.DefaultKeyAddressPrefix),
		Name:     data.Name,
		Address:  data.Address,
		Category: data.Category,
	}

	app := c.(*middleware.AppContext).App
	record, err := app.Pipeline.Enrich(c.Request().Context(), entity)
	if err != nil {
		logger.Error("Enrichment failed", "entity", entity.Key, "err", err)
		return c.JSON(http.StatusInternalServerError, enrichResponse{
			Message: "Internal server error",
		})
	}

	resp := enrichResponse{EntityKey: entity.Key, Enrichment: record}
	if record == nil {
		resp.Message = "No review content found for this place yet"
	}
	return c.JSON(http.StatusOK, resp)
}
