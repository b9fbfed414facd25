// internal/domain/cart/entity.go
package cart

import "errors"

var (
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrInvalidProduct  = errors.New("product id is required")
)

// Line represents a single cart line. Name and UnitPrice are snapshots taken
// when the product was added; Stock is an optional snapshot used for
// client-side bound checks before the backend confirms.
type Line struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unit_price"` // In halalas
	Quantity  int    `json:"quantity"`
	Stock     *int   `json:"stock,omitempty"`
}

// TotalPrice returns the line total in halalas
func (l *Line) TotalPrice() int64 {
	return l.UnitPrice * int64(l.Quantity)
}

// State is the cart value the store reduces over. Lines never share a product
// id and never carry a quantity below one; a quantity reaching zero means the
// line is gone, not a zero-quantity line.
type State struct {
	Lines   []Line `json:"lines"`
	Loading bool   `json:"loading"`
}

// SyncStatus describes how a cart mutation ended up relative to the backend
type SyncStatus string

const (
	// SyncReconciled means the backend accepted the mutation and its snapshot
	// replaced local state.
	SyncReconciled SyncStatus = "reconciled"
	// SyncRolledBack means the backend rejected the mutation as invalid and
	// local state was never touched.
	SyncRolledBack SyncStatus = "rolled_back"
	// SyncUnsynced means the backend was unreachable and the optimistic local
	// change is retained until the next successful refresh.
	SyncUnsynced SyncStatus = "unsynced"
	// SyncLocalOnly means there is no auth session and the mutation stayed
	// local.
	SyncLocalOnly SyncStatus = "local_only"
)

// SyncResult reports the outcome of a coordinated cart mutation
type SyncResult struct {
	Status SyncStatus `json:"status"`
	Lines  []Line     `json:"lines"`
}
