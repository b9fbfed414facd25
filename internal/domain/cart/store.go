// internal/domain/cart/store.go
package cart

import "sync"

// Store is the in-memory reducer over cart lines. Every transition preserves
// the state invariants: no two lines share a product id and no line has a
// quantity below one. The store is safe for concurrent readers; there is one
// logical writer (the coordinator).
type Store struct {
	mu    sync.RWMutex
	state State
}

// NewStore creates an empty cart store
func NewStore() *Store {
	return &Store{}
}

// AddLine adds a line to the cart. If a line with the same product id already
// exists its quantity is incremented by the incoming quantity; otherwise the
// line is appended.
func (s *Store) AddLine(line Line) error {
	if line.ProductID == "" {
		return ErrInvalidProduct
	}
	if line.Quantity < 1 {
		return ErrInvalidQuantity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.state.Lines {
		if s.state.Lines[i].ProductID == line.ProductID {
			s.state.Lines[i].Quantity += line.Quantity
			return nil
		}
	}

	s.state.Lines = append(s.state.Lines, line)
	return nil
}

// RemoveLine drops the line for the given product id entirely. Removing a
// product that is not in the cart is a no-op.
func (s *Store) RemoveLine(productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(productID)
}

// SetQuantity replaces the quantity of an existing line. A quantity of zero
// or less is normalized to removal rather than raised as an error, keeping
// the reducer total. Setting a quantity for an absent product is a no-op.
func (s *Store) SetQuantity(productID string, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if quantity <= 0 {
		s.removeLocked(productID)
		return
	}

	for i := range s.state.Lines {
		if s.state.Lines[i].ProductID == productID {
			s.state.Lines[i].Quantity = quantity
			return
		}
	}
}

// Replace installs an authoritative snapshot wholesale, discarding every
// local line. Lines violating the invariants are normalized on the way in:
// non-positive quantities are dropped and duplicate product ids are merged.
func (s *Store) Replace(lines []Line) {
	next := make([]Line, 0, len(lines))
	index := make(map[string]int, len(lines))

	for _, line := range lines {
		if line.ProductID == "" || line.Quantity < 1 {
			continue
		}
		if i, ok := index[line.ProductID]; ok {
			next[i].Quantity += line.Quantity
			continue
		}
		index[line.ProductID] = len(next)
		next = append(next, line)
	}

	s.mu.Lock()
	s.state.Lines = next
	s.mu.Unlock()
}

// Clear empties all lines
func (s *Store) Clear() {
	s.mu.Lock()
	s.state.Lines = nil
	s.mu.Unlock()
}

// Snapshot returns a copy of the current lines
func (s *Store) Snapshot() []Line {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lines := make([]Line, len(s.state.Lines))
	copy(lines, s.state.Lines)
	return lines
}

// Line returns the line for a product id, if present
func (s *Store) Line(productID string) (Line, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, line := range s.state.Lines {
		if line.ProductID == productID {
			return line, true
		}
	}
	return Line{}, false
}

// Len returns the number of distinct lines
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.state.Lines)
}

// TotalQuantity returns the sum of all line quantities
func (s *Store) TotalQuantity() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := 0
	for _, line := range s.state.Lines {
		total += line.Quantity
	}
	return total
}

// Subtotal returns the cart subtotal in halalas
func (s *Store) Subtotal() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var subtotal int64
	for _, line := range s.state.Lines {
		subtotal += line.UnitPrice * int64(line.Quantity)
	}
	return subtotal
}

// SetLoading flips the loading flag
func (s *Store) SetLoading(loading bool) {
	s.mu.Lock()
	s.state.Loading = loading
	s.mu.Unlock()
}

// IsLoading reports the loading flag
func (s *Store) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Loading
}

func (s *Store) removeLocked(productID string) {
	for i := range s.state.Lines {
		if s.state.Lines[i].ProductID == productID {
			s.state.Lines = append(s.state.Lines[:i], s.state.Lines[i+1:]...)
			return
		}
	}
}
