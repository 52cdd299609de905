// Package sources fetches evidence about an entity from independent
// providers: the official website, Wikidata and Wikipedia. Providers never
// return errors to callers; a nil result means the source is unavailable.
package sources

import (
	"context"
	"strings"

	"github.com/ppiankov/coasterscan/internal/model"
)

// Query describes what to look up
type Query struct {
	Name string
	URL  string
	Kind model.Kind
	Lang string
}

// Provider is a single evidence source producing results of type R
type Provider[R any] interface {
	Name() string
	Fetch(ctx context.Context, q Query) *R
}

// NormalizeName keeps the last non-empty " - " segment of a name before
// search, so "Home - Efteling" becomes "Efteling"
func NormalizeName(name string) string {
	name = strings.TrimSpace(name)
	if !strings.Contains(name, " - ") {
		return name
	}
	parts := strings.Split(name, " - ")
	for i := len(parts) - 1; i >= 0; i-- {
		if p := strings.TrimSpace(parts[i]); p != "" {
			return p
		}
	}
	return name
}
