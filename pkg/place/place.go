package place

import "time"

// Query is a single discovery request. Region and Theme are optional
// structured hints extracted from or supplied alongside the free text.
type Query struct {
	Text   string `json:"text"`
	Region string `json:"region,omitempty"`
	Theme  string `json:"theme,omitempty"`
}

// RawCandidate is one upstream search item normalized into the common
// shape shared by all source adapters. It is never mutated after the
// adapter produces it.
//
// Coordinates stay strings because upstream providers disagree on
// precision and projection; nobody downstream does arithmetic on them.
type RawCandidate struct {
	Name        string `json:"name"`
	Address     string `json:"address"`
	RoadAddress string `json:"road_address,omitempty"`
	Category    string `json:"category,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Lon         string `json:"lon,omitempty"`
	Lat         string `json:"lat,omitempty"`
	SourceTag   string `json:"source_tag"`
	OriginURL   string `json:"origin_url,omitempty"`
}

// Entity is one reconciled place, merged from candidates that share a
// canonical key. Sources is never empty and Corroborated is true exactly
// when at least two distinct source tags contributed.
type Entity struct {
	Key          string         `json:"key"`
	Name         string         `json:"name"`
	Address      string         `json:"address"`
	RoadAddress  string         `json:"road_address,omitempty"`
	Category     string         `json:"category,omitempty"`
	Phone        string         `json:"phone,omitempty"`
	Sources      []string       `json:"sources"`
	Corroborated bool           `json:"corroborated"`
	Candidates   []RawCandidate `json:"-"`
}

// HasSource reports whether tag already contributed to this entity.
func (e *Entity) HasSource(tag string) bool {
	for _, s := range e.Sources {
		if s == tag {
			return true
		}
	}
	return false
}

// Snippet is one mined review sentence together with its provenance.
type Snippet struct {
	Text      string `json:"text"`
	SourceURL string `json:"source_url"`
	SourceTag string `json:"source_tag"`
}

// EnrichmentFields is the structured summary the language model distills
// from mined review snippets. All fields may be empty when the model
// output could not be parsed.
type EnrichmentFields struct {
	Pros              []string `json:"pros"`
	Cons              []string `json:"cons"`
	Keywords          []string `json:"keywords"`
	SignatureMenu     string   `json:"signature_menu"`
	Phone             string   `json:"phone"`
	Parking           string   `json:"parking"`
	Price             string   `json:"price"`
	Hours             string   `json:"hours"`
	NearbyAttractions []string `json:"nearby_attractions"`
}

// EnrichmentRecord is the cached result of one enrichment computation for
// an entity. It is created on a cache miss and read-only afterwards;
// replacing it requires an explicit re-enrichment trigger.
type EnrichmentRecord struct {
	EntityKey string `json:"entity_key"`
	EnrichmentFields

	// TrustScore is a heuristic confidence value in [0,100] derived from
	// cross-source snippet corroboration and advertising penalties.
	TrustScore int `json:"trust_score"`

	Embedding      []float32 `json:"-"`
	ImageEmbedding []float32 `json:"-"`

	CreatedAt time.Time `json:"created_at"`
}

// Profile describes the acting user for ranking purposes. A zero Profile
// is the cold-start case: no embedding history and no preferences.
type Profile struct {
	// ReviewTexts are past review bodies written by the user; the
	// pipeline embeds and averages them into the ranking embedding.
	ReviewTexts []string `json:"review_texts,omitempty"`

	// Embedding is the averaged taste vector. Empty means cold start.
	Embedding []float32 `json:"-"`

	// PreferredCategories earn a fixed additive ranking bonus on match.
	PreferredCategories []string `json:"preferred_categories,omitempty"`
}

// RankedResult pairs an entity with its optional enrichment and the final
// hybrid score. Results are transient and rebuilt on every ranking call.
type RankedResult struct {
	Entity     Entity            `json:"entity"`
	Enrichment *EnrichmentRecord `json:"enrichment,omitempty"`
	Score      float64           `json:"score"`
}
