// internal/domain/discount/catalog.go
package discount

import (
	"sync"
	"time"
)

// Catalog holds the full discount collection fetched from the backend and
// answers which discounts are usable at a given instant. Filtering is a pure
// function of the collection and the clock; an empty result is a valid
// result, not an error.
type Catalog struct {
	mu        sync.RWMutex
	discounts []Discount
}

// NewCatalog creates an empty discount catalog
func NewCatalog() *Catalog {
	return &Catalog{}
}

// Replace swaps the whole collection for a fresh one from the backend
func (c *Catalog) Replace(discounts []Discount) {
	copied := make([]Discount, len(discounts))
	copy(copied, discounts)

	c.mu.Lock()
	c.discounts = copied
	c.mu.Unlock()
}

// All returns a copy of the full collection regardless of validity
func (c *Catalog) All() []Discount {
	c.mu.RLock()
	defer c.mu.RUnlock()

	all := make([]Discount, len(c.discounts))
	copy(all, c.discounts)
	return all
}

// ValidAt returns the discounts that are active and time-valid at now,
// preserving collection order so downstream tie-breaking stays deterministic.
func (c *Catalog) ValidAt(now time.Time) []Discount {
	c.mu.RLock()
	defer c.mu.RUnlock()

	valid := make([]Discount, 0, len(c.discounts))
	for _, d := range c.discounts {
		if d.ValidAt(now) {
			valid = append(valid, d)
		}
	}
	return valid
}

// ValidNow is a convenience wrapper over ValidAt with the current time
func (c *Catalog) ValidNow() []Discount {
	return c.ValidAt(time.Now().UTC())
}
