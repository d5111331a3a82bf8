// Package reconcile merges raw search candidates from multiple providers
// into deduplicated place entities.
package reconcile

import (
	"sort"

	"github.com/tastemap/backend/pkg/place"
)

// Reconciler groups candidates by canonical key and merges each group
// into one entity.
type Reconciler struct {
	addressPrefix int
}

// NewReconcilerParams configures a Reconciler. AddressPrefix is the rune
// length of the normalized address that takes part in the canonical key;
// zero uses place.DefaultKeyAddressPrefix.
type NewReconcilerParams struct {
	AddressPrefix int
}

// NewReconciler creates a Reconciler.
func NewReconciler(params NewReconcilerParams) *Reconciler {
	prefix := params.AddressPrefix
	if prefix <= 0 {
		prefix = place.DefaultKeyAddressPrefix
	}
	return &Reconciler{addressPrefix: prefix}
}

// Reconcile merges candidates into entities. Candidates missing a name or
// address are dropped before keying. The first candidate of a key seeds
// the entity; later candidates union their source tag in and replace the
// address only when theirs is strictly longer. Empty optional fields are
// filled from whichever candidate supplies them first.
//
// Output order: corroborated entities first, then by distinct source
// count descending, then by name ascending. The sort is stable, so
// entities tied on all three keep their first-seen order.
func (r *Reconciler) Reconcile(candidates []place.RawCandidate) []place.Entity {
	byKey := make(map[string]*place.Entity)
	order := make([]string, 0)

	for _, c := range candidates {
		if c.Name == "" || c.Address == "" {
			continue
		}

		key := place.CanonicalKey(c.Name, c.Address, r.addressPrefix)
		entity, seen := byKey[key]
		if !seen {
			byKey[key] = &place.Entity{
				Key:         key,
				Name:        c.Name,
				Address:     c.Address,
				RoadAddress: c.RoadAddress,
				Category:    c.Category,
				Phone:       c.Phone,
				Sources:     []string{c.SourceTag},
				Candidates:  []place.RawCandidate{c},
			}
			order = append(order, key)
			continue
		}

		if !entity.HasSource(c.SourceTag) {
			entity.Sources = append(entity.Sources, c.SourceTag)
		}
		// The longer address usually carries floor or unit detail the
		// shorter one dropped.
		if len([]rune(c.Address)) > len([]rune(entity.Address)) {
			entity.Address = c.Address
		}
		if entity.RoadAddress == "" {
			entity.RoadAddress = c.RoadAddress
		}
		if entity.Category == "" {
			entity.Category = c.Category
		}
		if entity.Phone == "" {
			entity.Phone = c.Phone
		}
		entity.Candidates = append(entity.Candidates, c)
	}

	entities := make([]place.Entity, 0, len(order))
	for _, key := range order {
		e := byKey[key]
		e.Corroborated = len(e.Sources) >= 2
		entities = append(entities, *e)
	}

	sort.SliceStable(entities, func(i, j int) bool {
		if entities[i].Corroborated != entities[j].Corroborated {
			return entities[i].Corroborated
		}
		if len(entities[i].Sources) != len(entities[j].Sources) {
			return len(entities[i].Sources) > len(entities[j].Sources)
		}
		return entities[i].Name < entities[j].Name
	})

	return entities
}
