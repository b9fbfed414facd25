// internal/domain/cart/coordinator_test.go
package cart

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ahmedelshkhwy/pharmacy-cart/internal/pkg/apperrors"
	"github.com/Ahmedelshkhwy/pharmacy-cart/internal/pkg/auth"
)

// fakeRemote scripts the backend cart per call
type fakeRemote struct {
	cart       []Line
	err        error
	addCalls   int
	fetchCalls int
}

func (f *fakeRemote) FetchCart(ctx context.Context, token string) ([]Line, error) {
	f.fetchCalls++
	if f.err != nil {
		return nil, f.err
	}
	return f.cart, nil
}

func (f *fakeRemote) AddItem(ctx context.Context, token, productID string, quantity int) ([]Line, error) {
	f.addCalls++
	if f.err != nil {
		return nil, f.err
	}
	return f.cart, nil
}

func (f *fakeRemote) UpdateItem(ctx context.Context, token, productID string, quantity int) ([]Line, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.cart, nil
}

func (f *fakeRemote) RemoveItem(ctx context.Context, token, productID string) error {
	return f.err
}

// fakeSnapshots is an in-memory snapshot store
type fakeSnapshots struct {
	carts map[string][]Line
}

func newFakeSnapshots() *fakeSnapshots {
	return &fakeSnapshots{carts: make(map[string][]Line)}
}

func (f *fakeSnapshots) SaveCart(ctx context.Context, key string, lines []Line) error {
	f.carts[key] = append([]Line(nil), lines...)
	return nil
}

func (f *fakeSnapshots) LoadCart(ctx context.Context, key string) ([]Line, error) {
	return f.carts[key], nil
}

func (f *fakeSnapshots) DeleteCart(ctx context.Context, key string) error {
	delete(f.carts, key)
	return nil
}

func userSession() auth.Session {
	return auth.Session{UserID: "u1", Token: "tok"}
}

func guestSession() auth.Session {
	return auth.Session{SessionID: "g1"}
}

func TestCoordinatorAddReconciled(t *testing.T) {
	remote := &fakeRemote{cart: []Line{{ProductID: "p1", Name: "Panadol", UnitPrice: 1500, Quantity: 3}}}
	coord := NewCoordinator(remote, newFakeSnapshots(), nil)

	result, err := coord.Add(context.Background(), userSession(), Line{ProductID: "p1", Quantity: 1})

	require.NoError(t, err)
	assert.Equal(t, SyncReconciled, result.Status)
	// The backend snapshot wins, not the local increment.
	require.Len(t, result.Lines, 1)
	assert.Equal(t, 3, result.Lines[0].Quantity)
	assert.Equal(t, int64(1500), result.Lines[0].UnitPrice)
	assert.Empty(t, coord.Unsynced(context.Background(), userSession()))
}

func TestCoordinatorAddValidationRejection(t *testing.T) {
	remote := &fakeRemote{err: apperrors.NewValidation("insufficient stock")}
	coord := NewCoordinator(remote, newFakeSnapshots(), nil)
	sess := userSession()

	result, err := coord.Add(context.Background(), sess, Line{ProductID: "p1", Quantity: 5})

	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	assert.Equal(t, SyncRolledBack, result.Status)
	// Local state was never touched.
	assert.Empty(t, coord.Lines(context.Background(), sess))
	assert.Empty(t, coord.Unsynced(context.Background(), sess))
}

func TestCoordinatorAddTransportFailureKeepsOptimisticState(t *testing.T) {
	remote := &fakeRemote{err: &apperrors.TransportError{Op: "POST /cart", Err: errors.New("connection refused")}}
	coord := NewCoordinator(remote, newFakeSnapshots(), nil)
	sess := userSession()

	result, err := coord.Add(context.Background(), sess, Line{ProductID: "p1", Quantity: 2})

	require.NoError(t, err)
	assert.Equal(t, SyncUnsynced, result.Status)
	require.Len(t, result.Lines, 1)
	assert.Equal(t, 2, result.Lines[0].Quantity)
	assert.Equal(t, []string{"p1"}, coord.Unsynced(context.Background(), sess))
}

func TestCoordinatorAddGuestIsLocalOnly(t *testing.T) {
	remote := &fakeRemote{}
	coord := NewCoordinator(remote, newFakeSnapshots(), nil)
	sess := guestSession()

	result, err := coord.Add(context.Background(), sess, Line{ProductID: "p1", Quantity: 1})

	require.NoError(t, err)
	assert.Equal(t, SyncLocalOnly, result.Status)
	assert.Equal(t, 0, remote.addCalls)
	assert.Equal(t, 1, coord.Count(context.Background(), sess))
}

func TestCoordinatorAddInvalidInput(t *testing.T) {
	coord := NewCoordinator(&fakeRemote{}, nil, nil)

	_, err := coord.Add(context.Background(), userSession(), Line{ProductID: "", Quantity: 1})
	assert.ErrorIs(t, err, ErrInvalidProduct)

	_, err = coord.Add(context.Background(), userSession(), Line{ProductID: "p1", Quantity: 0})
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestCoordinatorSetQuantityReconciled(t *testing.T) {
	remote := &fakeRemote{cart: []Line{{ProductID: "p1", Quantity: 4}}}
	coord := NewCoordinator(remote, newFakeSnapshots(), nil)
	sess := userSession()

	result, err := coord.SetQuantity(context.Background(), sess, "p1", 4)

	require.NoError(t, err)
	assert.Equal(t, SyncReconciled, result.Status)
	require.Len(t, result.Lines, 1)
	assert.Equal(t, 4, result.Lines[0].Quantity)
}

func TestCoordinatorSetQuantityZeroBecomesRemove(t *testing.T) {
	remote := &fakeRemote{cart: []Line{{ProductID: "p1", Quantity: 1}}}
	snapshots := newFakeSnapshots()
	coord := NewCoordinator(remote, snapshots, nil)
	sess := userSession()

	_, err := coord.Add(context.Background(), sess, Line{ProductID: "p1", Quantity: 1})
	require.NoError(t, err)

	remote.cart = nil
	result, err := coord.SetQuantity(context.Background(), sess, "p1", 0)

	require.NoError(t, err)
	assert.Equal(t, SyncReconciled, result.Status)
	assert.Empty(t, coord.Lines(context.Background(), sess))
}

func TestCoordinatorRemoveTransportFailureStaysRemoved(t *testing.T) {
	snapshots := newFakeSnapshots()
	remote := &fakeRemote{cart: []Line{{ProductID: "p1", Quantity: 1}}}
	coord := NewCoordinator(remote, snapshots, nil)
	sess := userSession()

	_, err := coord.Add(context.Background(), sess, Line{ProductID: "p1", Quantity: 1})
	require.NoError(t, err)

	remote.err = &apperrors.TransportError{Op: "DELETE /cart/p1", Err: errors.New("timeout")}
	result := coord.Remove(context.Background(), sess, "p1")

	// The user's removal holds locally even though the backend never heard it.
	assert.Equal(t, SyncUnsynced, result.Status)
	assert.Empty(t, coord.Lines(context.Background(), sess))
	assert.Equal(t, []string{"p1"}, coord.Unsynced(context.Background(), sess))
}

func TestCoordinatorRefreshInstallsBackendSnapshot(t *testing.T) {
	remote := &fakeRemote{err: &apperrors.TransportError{Op: "POST /cart", Err: errors.New("down")}}
	coord := NewCoordinator(remote, newFakeSnapshots(), nil)
	sess := userSession()

	_, err := coord.Add(context.Background(), sess, Line{ProductID: "p1", Quantity: 2})
	require.NoError(t, err)
	require.NotEmpty(t, coord.Unsynced(context.Background(), sess))

	// Backend comes back with a different cart.
	remote.err = nil
	remote.cart = []Line{{ProductID: "p2", Quantity: 1}}

	require.NoError(t, coord.Refresh(context.Background(), sess))

	lines := coord.Lines(context.Background(), sess)
	require.Len(t, lines, 1)
	assert.Equal(t, "p2", lines[0].ProductID)
	// A successful refresh resolves every pending marker.
	assert.Empty(t, coord.Unsynced(context.Background(), sess))
}

func TestCoordinatorRefreshFailureLeavesStateUntouched(t *testing.T) {
	remote := &fakeRemote{cart: []Line{{ProductID: "p1", Quantity: 2}}}
	coord := NewCoordinator(remote, newFakeSnapshots(), nil)
	sess := userSession()

	_, err := coord.Add(context.Background(), sess, Line{ProductID: "p1", Quantity: 2})
	require.NoError(t, err)

	remote.err = &apperrors.TransportError{Op: "GET /cart", Err: errors.New("down")}
	err = coord.Refresh(context.Background(), sess)

	require.Error(t, err)
	assert.True(t, apperrors.IsTransport(err))
	lines := coord.Lines(context.Background(), sess)
	require.Len(t, lines, 1)
	assert.Equal(t, "p1", lines[0].ProductID)
}

func TestCoordinatorRefreshGuestIsNoop(t *testing.T) {
	remote := &fakeRemote{}
	coord := NewCoordinator(remote, newFakeSnapshots(), nil)

	require.NoError(t, coord.Refresh(context.Background(), guestSession()))
	assert.Equal(t, 0, remote.fetchCalls)
}

func TestCoordinatorClear(t *testing.T) {
	snapshots := newFakeSnapshots()
	remote := &fakeRemote{cart: []Line{{ProductID: "p1", Quantity: 1}}}
	coord := NewCoordinator(remote, snapshots, nil)
	sess := userSession()

	_, err := coord.Add(context.Background(), sess, Line{ProductID: "p1", Quantity: 1})
	require.NoError(t, err)

	coord.Clear(context.Background(), sess)

	assert.Empty(t, coord.Lines(context.Background(), sess))
	assert.Empty(t, snapshots.carts[sess.CacheKey()])
}

func TestCoordinatorRestoresPersistedSnapshot(t *testing.T) {
	snapshots := newFakeSnapshots()
	sess := guestSession()
	snapshots.carts[sess.CacheKey()] = []Line{{ProductID: "p1", Quantity: 2}}

	coord := NewCoordinator(&fakeRemote{}, snapshots, nil)

	lines := coord.Lines(context.Background(), sess)
	require.Len(t, lines, 1)
	assert.Equal(t, "p1", lines[0].ProductID)
	assert.Equal(t, 2, lines[0].Quantity)
}

func TestCoordinatorSessionsAreIsolated(t *testing.T) {
	coord := NewCoordinator(&fakeRemote{}, newFakeSnapshots(), nil)
	alice := auth.Session{SessionID: "alice"}
	bob := auth.Session{SessionID: "bob"}

	_, err := coord.Add(context.Background(), alice, Line{ProductID: "p1", Quantity: 1})
	require.NoError(t, err)

	assert.Equal(t, 1, coord.Count(context.Background(), alice))
	assert.Equal(t, 0, coord.Count(context.Background(), bob))
}
