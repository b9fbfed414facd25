// internal/domain/discount/catalog_test.go
package discount

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscountValidAt(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 31, 23, 59, 59, 0, time.UTC)

	d := Discount{
		ID:       "ramadan",
		Kind:     KindPercentage,
		Value:    10,
		StartsAt: start,
		EndsAt:   end,
		IsActive: true,
	}

	tests := []struct {
		name  string
		now   time.Time
		valid bool
	}{
		{"before window", start.Add(-time.Second), false},
		{"exactly at start", start, true},
		{"inside window", start.AddDate(0, 0, 15), true},
		{"exactly at end", end, true},
		{"after window", end.Add(time.Second), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, d.ValidAt(tt.now))
		})
	}

	t.Run("inactive is never valid", func(t *testing.T) {
		inactive := d
		inactive.IsActive = false
		assert.False(t, inactive.ValidAt(start.AddDate(0, 0, 15)))
	})
}

func TestCatalogValidAt(t *testing.T) {
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

	catalog := NewCatalog()
	catalog.Replace([]Discount{
		{ID: "live", IsActive: true, StartsAt: now.AddDate(0, 0, -1), EndsAt: now.AddDate(0, 0, 1)},
		{ID: "expired", IsActive: true, StartsAt: now.AddDate(0, -2, 0), EndsAt: now.AddDate(0, -1, 0)},
		{ID: "upcoming", IsActive: true, StartsAt: now.AddDate(0, 0, 7), EndsAt: now.AddDate(0, 0, 14)},
		{ID: "disabled", IsActive: false, StartsAt: now.AddDate(0, 0, -1), EndsAt: now.AddDate(0, 0, 1)},
		{ID: "live-too", IsActive: true, StartsAt: now.AddDate(0, 0, -3), EndsAt: now.AddDate(0, 0, 3)},
	})

	valid := catalog.ValidAt(now)

	require.Len(t, valid, 2)
	// Collection order is preserved for deterministic tie-breaking downstream.
	assert.Equal(t, "live", valid[0].ID)
	assert.Equal(t, "live-too", valid[1].ID)
}

func TestCatalogReplaceSwapsWholeCollection(t *testing.T) {
	catalog := NewCatalog()
	catalog.Replace([]Discount{{ID: "old", IsActive: true}})
	catalog.Replace([]Discount{{ID: "new-1", IsActive: true}, {ID: "new-2", IsActive: true}})

	all := catalog.All()

	require.Len(t, all, 2)
	assert.Equal(t, "new-1", all[0].ID)
	assert.Equal(t, "new-2", all[1].ID)
}

func TestCatalogAllReturnsCopy(t *testing.T) {
	catalog := NewCatalog()
	catalog.Replace([]Discount{{ID: "a", IsActive: true}})

	all := catalog.All()
	all[0].ID = "mutated"

	assert.Equal(t, "a", catalog.All()[0].ID)
}

func TestDiscountIsGlobal(t *testing.T) {
	assert.True(t, (&Discount{}).IsGlobal())
	assert.False(t, (&Discount{ProductIDs: []string{"p1"}}).IsGlobal())
	assert.False(t, (&Discount{CategoryIDs: []string{"c1"}}).IsGlobal())
}
