package wishlist

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andreasstove999/ecommerce-system/storefront-cart-go/internal/auth"
	"github.com/andreasstove999/ecommerce-system/storefront-cart-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/storefront-cart-go/internal/order"
)

type memStorage struct {
	mu      sync.Mutex
	lists   map[string][]string
	saveErr error
}

func newMemStorage() *memStorage {
	return &memStorage{lists: make(map[string][]string)}
}

func (m *memStorage) Load(_ context.Context, userID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.lists[userID]...), nil
}

func (m *memStorage) Save(_ context.Context, userID string, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.lists[userID] = append([]string(nil), ids...)
	return nil
}

type memCarts struct {
	mu    sync.Mutex
	items map[string][]cart.LineItem
	err   error
}

func (m *memCarts) Load(_ context.Context, userID string) ([]cart.LineItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]cart.LineItem{}, m.items[userID]...), nil
}

func (m *memCarts) Save(_ context.Context, userID string, items []cart.LineItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.items[userID] = append([]cart.LineItem{}, items...)
	return nil
}

type noLedger struct{}

func (noLedger) Append(context.Context, string, order.Order) error { return nil }
func (noLedger) List(context.Context, string) ([]order.Order, error) { return nil, nil }

func TestToggle(t *testing.T) {
	ctx := context.Background()
	session := auth.NewManager()
	session.Login("alice")
	svc := NewService(session, newMemStorage(), nil)

	added, err := svc.Toggle(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, added)
	_, err = svc.Toggle(ctx, "p2")
	require.NoError(t, err)

	ids, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2"}, ids)

	added, err = svc.Toggle(ctx, "p1")
	require.NoError(t, err)
	assert.False(t, added)

	ok, err := svc.Contains(ctx, "p1")
	require.NoError(t, err)
	assert.False(t, ok)
	ids, err = svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"p2"}, ids)
}

func TestToggle_RequiresLogin(t *testing.T) {
	svc := NewService(auth.NewManager(), newMemStorage(), nil)

	_, err := svc.Toggle(context.Background(), "p1")
	assert.ErrorIs(t, err, cart.ErrNotAuthenticated)
	_, err = svc.List(context.Background())
	assert.ErrorIs(t, err, cart.ErrNotAuthenticated)
}

func TestToggle_SaveFailureLeavesWishlist(t *testing.T) {
	ctx := context.Background()
	session := auth.NewManager()
	session.Login("alice")
	storage := newMemStorage()
	svc := NewService(session, storage, nil)

	_, err := svc.Toggle(ctx, "p1")
	require.NoError(t, err)

	storage.saveErr = errors.New("quota exceeded")
	_, err = svc.Toggle(ctx, "p1")
	require.ErrorIs(t, err, cart.ErrPersistence)

	ok, err := svc.Contains(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRemove_Missing(t *testing.T) {
	session := auth.NewManager()
	session.Login("alice")
	svc := NewService(session, newMemStorage(), nil)

	err := svc.Remove(context.Background(), "ghost")
	assert.ErrorIs(t, err, cart.ErrItemNotFound)
}

func TestPaddedProductIDs(t *testing.T) {
	ctx := context.Background()
	session := auth.NewManager()
	session.Login("alice")
	svc := NewService(session, newMemStorage(), nil)

	added, err := svc.Toggle(ctx, " p1")
	require.NoError(t, err)
	require.True(t, added)

	ok, err := svc.Contains(ctx, "p1 ")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, svc.Remove(ctx, " p1 "))
	ids, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestWishlistsArePerUser(t *testing.T) {
	ctx := context.Background()
	session := auth.NewManager()
	svc := NewService(session, newMemStorage(), nil)

	session.Login("alice")
	_, err := svc.Toggle(ctx, "p1")
	require.NoError(t, err)

	session.Login("bob")
	ids, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestMoveToCart(t *testing.T) {
	ctx := context.Background()
	session := auth.NewManager()
	session.Login("alice")
	carts := &memCarts{items: make(map[string][]cart.LineItem)}
	reg := cart.NewRegistry(session, carts, noLedger{})
	defer reg.Close()
	svc := NewService(session, newMemStorage(), nil)

	p := cart.Product{ID: "p1", Name: "Mango", Price: decimal.NewFromInt(120)}
	_, err := svc.Toggle(ctx, p.ID)
	require.NoError(t, err)

	store, err := reg.Current(ctx)
	require.NoError(t, err)

	t.Run("cart failure keeps wishlist", func(t *testing.T) {
		carts.err = errors.New("disk full")
		defer func() { carts.err = nil }()

		_, err := svc.MoveToCart(ctx, p, store)
		require.ErrorIs(t, err, cart.ErrPersistence)
		ok, err := svc.Contains(ctx, p.ID)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	totals, err := svc.MoveToCart(ctx, p, store)
	require.NoError(t, err)
	assert.Equal(t, 1, totals.Items)

	ok, err := svc.Contains(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = svc.MoveToCart(ctx, p, store)
	assert.ErrorIs(t, err, cart.ErrItemNotFound)
}
