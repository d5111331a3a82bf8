package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tastemap/backend/pkg/enrich"
	"github.com/tastemap/backend/pkg/logger"
	"github.com/tastemap/backend/pkg/place"
)

// ProcessReenrichMessage recomputes the enrichment for the place named in
// the message and upserts it, replacing whatever was cached. Recomputing
// a key is idempotent, so redelivered messages are safe.
func ProcessReenrichMessage(
	ctx context.Context,
	enricher *enrich.Enricher,
	msg string,
) error {
	data := new(ReenrichPlaceMsg)
	if err := json.Unmarshal([]byte(msg), data); err != nil {
		return fmt.Errorf("failed to unmarshal reenrich message: %w", err)
	}
	if data.EntityKey == "" || data.Name == "" {
		return fmt.Errorf("reenrich message missing entity key or name")
	}

	entity := place.Entity{
		Key:      data.EntityKey,
		Name:     data.Name,
		Address:  data.Address,
		Category: data.Category,
	}

	record, err := enricher.Recompute(ctx, entity)
	if err != nil {
		return fmt.Errorf("failed to recompute enrichment: %w", err)
	}
	if record == nil {
		logger.Warn("[Queue] Reenrichment found no review content", "entity", data.EntityKey, "request_id", data.RequestID)
		return nil
	}

	logger.Info("[Queue] Reenrichment finished",
		"entity", data.EntityKey,
		"request_id", data.RequestID,
		"trust_score", record.TrustScore,
	)
	return nil
}
