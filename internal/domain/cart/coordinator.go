// internal/domain/cart/coordinator.go
package cart

import (
	"context"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/Ahmedelshkhwy/pharmacy-cart/internal/pkg/apperrors"
	"github.com/Ahmedelshkhwy/pharmacy-cart/internal/pkg/auth"
)

// RemoteCart is the slice of the backend API the coordinator needs. Mutations
// return the backend's refreshed cart so the coordinator can install it as
// the authoritative snapshot.
type RemoteCart interface {
	FetchCart(ctx context.Context, token string) ([]Line, error)
	AddItem(ctx context.Context, token, productID string, quantity int) ([]Line, error)
	UpdateItem(ctx context.Context, token, productID string, quantity int) ([]Line, error)
	RemoveItem(ctx context.Context, token, productID string) error
}

// SnapshotStore persists one serialized cart per session as an opaque blob,
// fully overwritten on each save.
type SnapshotStore interface {
	SaveCart(ctx context.Context, key string, lines []Line) error
	LoadCart(ctx context.Context, key string) ([]Line, error)
	DeleteCart(ctx context.Context, key string) error
}

// session carries one caller's store plus the product ids whose local state
// is ahead of the backend.
type session struct {
	store    *Store
	unsynced map[string]struct{}
	restored bool
}

// Coordinator keeps each session's cart store consistent with the backend
// cart using an optimistic-then-reconcile protocol. After a successful
// round-trip the backend snapshot wins; a business-rule rejection rolls the
// mutation back before it ever touches local state; a connectivity failure
// keeps the optimistic local change and marks it unsynced until the next
// successful refresh.
type Coordinator struct {
	remote    RemoteCart
	snapshots SnapshotStore
	log       *logrus.Logger

	mu       sync.Mutex
	sessions map[string]*session
}

// NewCoordinator creates a cart sync coordinator. snapshots may be nil, in
// which case carts live only in memory.
func NewCoordinator(remote RemoteCart, snapshots SnapshotStore, log *logrus.Logger) *Coordinator {
	if log == nil {
		log = logrus.New()
	}
	return &Coordinator{
		remote:    remote,
		snapshots: snapshots,
		log:       log,
		sessions:  make(map[string]*session),
	}
}

// Add adds a line to the session's cart and syncs it with the backend.
//
// Without an auth session the add is local only. With one, the backend "add"
// mutation runs first: on success its snapshot replaces local state; on a
// validation rejection local state is left untouched and the error is
// surfaced; on any other failure the line is added locally so the user's
// action is not silently lost.
func (c *Coordinator) Add(ctx context.Context, sess auth.Session, line Line) (SyncResult, error) {
	if line.ProductID == "" {
		return SyncResult{}, ErrInvalidProduct
	}
	if line.Quantity < 1 {
		return SyncResult{}, ErrInvalidQuantity
	}

	st := c.sessionFor(ctx, sess)

	if !sess.Authenticated() {
		if err := st.store.AddLine(line); err != nil {
			return SyncResult{}, err
		}
		c.persist(ctx, sess, st)
		return SyncResult{Status: SyncLocalOnly, Lines: st.store.Snapshot()}, nil
	}

	remoteLines, err := c.remote.AddItem(ctx, sess.Token, line.ProductID, line.Quantity)
	if err == nil {
		c.install(ctx, sess, st, remoteLines)
		return SyncResult{Status: SyncReconciled, Lines: st.store.Snapshot()}, nil
	}

	if apperrors.IsValidation(err) {
		c.log.WithFields(logrus.Fields{
			"product_id": line.ProductID,
			"quantity":   line.Quantity,
		}).WithError(err).Warn("cart add rejected by backend")
		return SyncResult{Status: SyncRolledBack, Lines: st.store.Snapshot()}, err
	}

	// Backend unreachable: keep the user's action locally.
	if addErr := st.store.AddLine(line); addErr != nil {
		return SyncResult{}, addErr
	}
	c.markUnsynced(st, line.ProductID)
	c.persist(ctx, sess, st)
	c.log.WithField("product_id", line.ProductID).WithError(err).
		Warn("cart add kept locally, backend unreachable")
	return SyncResult{Status: SyncUnsynced, Lines: st.store.Snapshot()}, nil
}

// SetQuantity updates a line's quantity with the same reconcile contract as
// Add. A quantity of zero or less is normalized to removal.
func (c *Coordinator) SetQuantity(ctx context.Context, sess auth.Session, productID string, quantity int) (SyncResult, error) {
	if productID == "" {
		return SyncResult{}, ErrInvalidProduct
	}
	if quantity <= 0 {
		return c.Remove(ctx, sess, productID), nil
	}

	st := c.sessionFor(ctx, sess)

	if !sess.Authenticated() {
		st.store.SetQuantity(productID, quantity)
		c.persist(ctx, sess, st)
		return SyncResult{Status: SyncLocalOnly, Lines: st.store.Snapshot()}, nil
	}

	remoteLines, err := c.remote.UpdateItem(ctx, sess.Token, productID, quantity)
	if err == nil {
		c.install(ctx, sess, st, remoteLines)
		return SyncResult{Status: SyncReconciled, Lines: st.store.Snapshot()}, nil
	}

	if apperrors.IsValidation(err) {
		c.log.WithFields(logrus.Fields{
			"product_id": productID,
			"quantity":   quantity,
		}).WithError(err).Warn("cart update rejected by backend")
		return SyncResult{Status: SyncRolledBack, Lines: st.store.Snapshot()}, err
	}

	st.store.SetQuantity(productID, quantity)
	c.markUnsynced(st, productID)
	c.persist(ctx, sess, st)
	c.log.WithField("product_id", productID).WithError(err).
		Warn("cart update kept locally, backend unreachable")
	return SyncResult{Status: SyncUnsynced, Lines: st.store.Snapshot()}, nil
}

// Remove drops a line locally right away, then tells the backend best-effort.
// The cart already reflects the user's intent, so a backend failure is logged
// and marked unsynced rather than surfaced.
func (c *Coordinator) Remove(ctx context.Context, sess auth.Session, productID string) SyncResult {
	st := c.sessionFor(ctx, sess)

	st.store.RemoveLine(productID)
	c.persist(ctx, sess, st)

	if !sess.Authenticated() {
		return SyncResult{Status: SyncLocalOnly, Lines: st.store.Snapshot()}
	}

	if err := c.remote.RemoveItem(ctx, sess.Token, productID); err != nil {
		c.markUnsynced(st, productID)
		c.log.WithField("product_id", productID).WithError(err).
			Warn("cart remove not confirmed by backend")
		return SyncResult{Status: SyncUnsynced, Lines: st.store.Snapshot()}
	}

	// Pull the authoritative cart after a confirmed remove.
	if remoteLines, err := c.remote.FetchCart(ctx, sess.Token); err == nil {
		c.install(ctx, sess, st, remoteLines)
	} else {
		c.log.WithError(err).Debug("post-remove cart refresh failed")
	}

	return SyncResult{Status: SyncReconciled, Lines: st.store.Snapshot()}
}

// Refresh unconditionally replaces local state with the backend snapshot.
// On failure local state is left untouched and the error is surfaced so the
// caller can decide whether to keep showing stale data. For guests the
// persisted local snapshot is already the source of truth and Refresh is a
// no-op.
func (c *Coordinator) Refresh(ctx context.Context, sess auth.Session) error {
	st := c.sessionFor(ctx, sess)

	if !sess.Authenticated() {
		return nil
	}

	st.store.SetLoading(true)
	defer st.store.SetLoading(false)

	remoteLines, err := c.remote.FetchCart(ctx, sess.Token)
	if err != nil {
		c.log.WithError(err).Warn("cart refresh failed")
		return err
	}

	c.install(ctx, sess, st, remoteLines)
	return nil
}

// Clear empties the session's cart locally and best-effort removes every line
// from the backend cart.
func (c *Coordinator) Clear(ctx context.Context, sess auth.Session) {
	st := c.sessionFor(ctx, sess)

	lines := st.store.Snapshot()
	st.store.Clear()
	c.clearUnsynced(st)

	if c.snapshots != nil {
		if err := c.snapshots.DeleteCart(ctx, sess.CacheKey()); err != nil {
			c.log.WithError(err).Warn("failed to delete cart snapshot")
		}
	}

	if !sess.Authenticated() {
		return
	}

	for _, line := range lines {
		if err := c.remote.RemoveItem(ctx, sess.Token, line.ProductID); err != nil {
			c.log.WithField("product_id", line.ProductID).WithError(err).
				Warn("cart clear could not remove backend line")
		}
	}
}

// Lines returns the session's current cart lines
func (c *Coordinator) Lines(ctx context.Context, sess auth.Session) []Line {
	return c.sessionFor(ctx, sess).store.Snapshot()
}

// Count returns the total quantity across the session's cart
func (c *Coordinator) Count(ctx context.Context, sess auth.Session) int {
	return c.sessionFor(ctx, sess).store.TotalQuantity()
}

// Subtotal returns the session's cart subtotal in halalas
func (c *Coordinator) Subtotal(ctx context.Context, sess auth.Session) int64 {
	return c.sessionFor(ctx, sess).store.Subtotal()
}

// Unsynced returns the product ids whose local state is ahead of the backend
func (c *Coordinator) Unsynced(ctx context.Context, sess auth.Session) []string {
	st := c.sessionFor(ctx, sess)

	c.mu.Lock()
	defer c.mu.Unlock()

	ids := make([]string, 0, len(st.unsynced))
	for id := range st.unsynced {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// install replaces local state with an authoritative backend snapshot. Any
// pending unsynced markers are resolved: the backend state is now the truth.
func (c *Coordinator) install(ctx context.Context, sess auth.Session, st *session, lines []Line) {
	st.store.Replace(lines)
	c.clearUnsynced(st)
	c.persist(ctx, sess, st)
}

// sessionFor returns the session's state, creating it and restoring the
// persisted snapshot on first touch.
func (c *Coordinator) sessionFor(ctx context.Context, sess auth.Session) *session {
	key := sess.CacheKey()

	c.mu.Lock()
	st, ok := c.sessions[key]
	if !ok {
		st = &session{store: NewStore(), unsynced: make(map[string]struct{})}
		c.sessions[key] = st
	}
	restore := !st.restored
	st.restored = true
	c.mu.Unlock()

	if restore && c.snapshots != nil {
		lines, err := c.snapshots.LoadCart(ctx, key)
		if err != nil {
			c.log.WithField("cache_key", key).WithError(err).
				Warn("failed to restore cart snapshot")
		} else if len(lines) > 0 {
			st.store.Replace(lines)
		}
	}

	return st
}

// persist writes the session's cart as a whole blob, last writer wins
func (c *Coordinator) persist(ctx context.Context, sess auth.Session, st *session) {
	if c.snapshots == nil {
		return
	}
	if err := c.snapshots.SaveCart(ctx, sess.CacheKey(), st.store.Snapshot()); err != nil {
		c.log.WithField("cache_key", sess.CacheKey()).WithError(err).
			Warn("failed to persist cart snapshot")
	}
}

func (c *Coordinator) markUnsynced(st *session, productID string) {
	c.mu.Lock()
	st.unsynced[productID] = struct{}{}
	c.mu.Unlock()
}

func (c *Coordinator) clearUnsynced(st *session) {
	c.mu.Lock()
	st.unsynced = make(map[string]struct{})
	c.mu.Unlock()
}
