package cart

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/storefront-cart-go/internal/auth"
	"github.com/andreasstove999/ecommerce-system/storefront-cart-go/internal/order"
)

type Option func(*Registry)

func WithLogger(l *zap.Logger) Option {
	return func(r *Registry) { r.logger = l }
}

func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

func WithOrderIDs(newID func(time.Time) string) Option {
	return func(r *Registry) { r.newID = newID }
}

func WithPublisher(p CheckoutPublisher) Option {
	return func(r *Registry) { r.publisher = p }
}

// Registry hands out the cart of whoever the session says is logged in.
// Carts are loaded from Storage on first access and cached until the
// identity changes.
type Registry struct {
	session   auth.Session
	storage   Storage
	ledger    order.Ledger
	publisher CheckoutPublisher
	logger    *zap.Logger
	now       func() time.Time
	newID     func(time.Time) string

	mu          sync.Mutex
	gen         uint64
	stores      map[string]*Store
	unsubscribe func()
}

func NewRegistry(session auth.Session, storage Storage, ledger order.Ledger, opts ...Option) *Registry {
	r := &Registry{
		session: session,
		storage: storage,
		ledger:  ledger,
		logger:  zap.NewNop(),
		now:     func() time.Time { return time.Now().UTC() },
		newID:   order.NewID,
		stores:  make(map[string]*Store),
	}
	for _, opt := range opts {
		opt(r)
	}

	if n, ok := session.(auth.Notifier); ok {
		r.unsubscribe = n.Subscribe(func(prev, next string) {
			r.logger.Info("identity changed, dropping cached carts",
				zap.String("prev_user_id", prev), zap.String("user_id", next))
			r.Invalidate()
		})
	}
	return r
}

// Current returns the cart for the session's user, loading it on first use.
func (r *Registry) Current(ctx context.Context) (*Store, error) {
	userID, ok := r.session.CurrentUserID(ctx)
	if !ok {
		return nil, ErrNotAuthenticated
	}

	r.mu.Lock()
	if s, ok := r.stores[userID]; ok {
		r.mu.Unlock()
		return s, nil
	}
	gen := r.gen
	r.mu.Unlock()

	items, err := r.storage.Load(ctx, userID)
	if err != nil {
		r.logger.Warn("cart load failed", zap.String("user_id", userID), zap.Error(err))
		return nil, NewError(KindPersistence, "failed to load cart", err)
	}
	if err := validateItems(items); err != nil {
		return nil, NewError(KindPersistence, "stored cart is corrupt", err)
	}

	s := &Store{
		userID:    userID,
		storage:   r.storage,
		ledger:    r.ledger,
		publisher: r.publisher,
		logger:    r.logger,
		now:       r.now,
		newID:     r.newID,
	}
	loaded := cloneItems(items)
	s.items.Store(&loaded)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.gen != gen {
		// identity changed while we were loading
		return nil, ErrNotAuthenticated
	}
	if existing, ok := r.stores[userID]; ok {
		return existing, nil
	}
	r.stores[userID] = s
	r.logger.Debug("cart loaded", zap.String("user_id", userID), zap.Int("lines", len(loaded)))
	return s, nil
}

// Invalidate retires every cart handed out so far. Retired carts reject
// mutations; the next Current call reloads from Storage.
func (r *Registry) Invalidate() {
	r.mu.Lock()
	stores := r.stores
	r.stores = make(map[string]*Store)
	r.gen++
	r.mu.Unlock()

	for _, s := range stores {
		s.retire()
	}
}

// Close detaches the registry from the session's identity notifications.
func (r *Registry) Close() {
	if r.unsubscribe != nil {
		r.unsubscribe()
	}
}

// Session is the identity source carts are resolved against.
func (r *Registry) Session() auth.Session { return r.session }

// Ledger exposes the order history backing checkout.
func (r *Registry) Ledger() order.Ledger { return r.ledger }
