// Package directory holds the known set of offices, sourced once from the
// organization bootstrap call and replaced wholesale on each load.
package directory

import (
	"sync"

	"github.com/spec-kit/parcel-service/internal/domain"
)

// UnknownOffice is returned when an office id cannot be resolved. Absence is
// a representable result, not an error.
const UnknownOffice = "Unknown Office"

// Cache is a shared-read office directory. It is written only during
// bootstrap and read by both the session authority and the lifecycle engine.
type Cache struct {
	mu      sync.RWMutex
	offices []domain.Office
}

// NewCache builds an empty cache.
func NewCache() *Cache {
	return &Cache{}
}

// Replace swaps the full office set.
func (c *Cache) Replace(offices []domain.Office) {
	copied := append([]domain.Office(nil), offices...)
	c.mu.Lock()
	c.offices = copied
	c.mu.Unlock()
}

// Offices returns a snapshot of the known offices.
func (c *Cache) Offices() []domain.Office {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]domain.Office(nil), c.offices...)
}

// ResolveOfficeName returns the display name for an office id, or
// UnknownOffice when the id is not in the directory.
func (c *Cache) ResolveOfficeName(id string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, office := range c.offices {
		if office.ID == id {
			return office.DisplayName
		}
	}
	return UnknownOffice
}

// Lookup returns the office for an id when present.
func (c *Cache) Lookup(id string) (domain.Office, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, office := range c.offices {
		if office.ID == id {
			return office, true
		}
	}
	return domain.Office{}, false
}
