package queue

// ReenrichPlaceMsg asks the worker to recompute one place's enrichment,
// bypassing the cache. The entity fields travel with the message so the
// worker does not have to rediscover the place first.
type ReenrichPlaceMsg struct {
	Message   string `json:"message"`
	RequestID string `json:"request_id"`

	EntityKey string `json:"entity_key"`
	Name      string `json:"name"`
	Address   string `json:"address"`
	Category  string `json:"category,omitempty"`
}
