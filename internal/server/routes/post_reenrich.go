package routes

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"
	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/tastemap/backend/internal/queue"
	"github.com/tastemap/backend/internal/server/middleware"
	"github.com/tastemap/backend/pkg/logger"
	"github.com/tastemap/backend/pkg/place"
)

// ReenrichPlaceHandler queues a recomputation of one place's enrichment.
// The worker replaces the cached record; until then readers keep seeing
// the old one.
func ReenrichPlaceHandler(c echo.Context) error {
	type reenrichBody struct {
		Name     string `json:"name" validate:"required"`
		Address  string `json:"address" validate:"required"`
		Category string `json:"category"`
	}

	type reenrichResponse struct {
		Message   string `json:"message"`
		RequestID string `json:"request_id,omitempty"`
		EntityKey string `json:"entity_key,omitempty"`
	}

	data := new(reenrichBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, reenrichResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, reenrichResponse{
			Message: "Invalid request body",
		})
	}

	requestID, err := gonanoid.New()
	if err != nil {
		logger.Error("Failed to generate request id", "err", err)
		return c.JSON(http.StatusInternalServerError, reenrichResponse{
			Message: "Internal server error",
		})
	}

	entityKey := place.CanonicalKey(data.Name, data.Address, place.DefaultKeyAddressPrefix)
	msg := queue.ReenrichPlaceMsg{
		Message:   "Reenrichment requested",
		RequestID: requestID,
		EntityKey: entityKey,
		Name:      data.Name,
		Address:   data.Address,
		Category:  data.Category,
	}

	msgBytes, err := json.Marshal(msg)
	if err != nil {
		logger.Error("Failed to marshal reenrich message", "err", err)
		return c.JSON(http.StatusInternalServerError, reenrichResponse{
			Message: "Internal server error",
		})
	}

	app := c.(*middleware.AppContext).App
	if err := queue.PublishFIFO(app.Queue, queue.ReenrichQueue, msgBytes); err != nil {
		logger.Error("Failed to publish reenrich message", "entity", entityKey, "err", err)
		return c.JSON(http.StatusInternalServerError, reenrichResponse{
			Message: "Internal server error",
		})
	}

	logger.Info("Reenrichment queued", "entity", entityKey, "request_id", requestID)
	return c.JSON(http.StatusAccepted, reenrichResponse{
		Message:   "Reenrichment queued",
		RequestID: requestID,
		EntityKey: entityKey,
	})
}
