package pgx

import (
	"strings"

	"github.com/tastemap/backend/internal/util"
)

const listSeparator = "|"

// joinList flattens a string slice into one pipe-delimited column value,
// sanitizing each element for postgres. Empty slices become the empty
// string so the column stays NOT NULL.
func joinList(items []string) string {
	sanitized := make([]string, len(items))
	for i, item := range items {
		sanitized[i] = util.SanitizePostgresText(item)
	}
	return strings.Join(sanitized, listSeparator)
}

// splitList is the inverse of joinList. The empty string round-trips to
// an empty slice, not a slice of one empty element.
func splitList(value string) []string {
	if value == "" {
		return []string{}
	}
	return strings.Split(value, listSeparator)
}
