package cart

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/storefront-cart-go/internal/order"
)

// Store owns one user's cart. Mutations are serialized and written through
// to Storage before they become visible; reads never block.
type Store struct {
	userID    string
	storage   Storage
	ledger    order.Ledger
	publisher CheckoutPublisher
	logger    *zap.Logger
	now       func() time.Time
	newID     func(time.Time) string

	mu      sync.Mutex
	items   atomic.Pointer[[]LineItem]
	retired atomic.Bool
}

func (s *Store) UserID() string { return s.userID }

func (s *Store) committed() []LineItem {
	if p := s.items.Load(); p != nil {
		return *p
	}
	return nil
}

// Items returns a copy of the committed line items in insertion order.
func (s *Store) Items() []LineItem {
	return cloneItems(s.committed())
}

// TotalItems is the sum of quantities, not the number of lines.
func (s *Store) TotalItems() int {
	return totalsOf(s.committed()).Items
}

// TotalPrice sums snapshot prices × quantities.
func (s *Store) TotalPrice() decimal.Decimal {
	return totalsOf(s.committed()).Price
}

func (s *Store) Totals() Totals {
	return totalsOf(s.committed())
}

func (s *Store) State() State {
	if len(s.committed()) == 0 {
		return StateEmpty
	}
	return StatePopulated
}

// AddItem merges quantity into the product's line, or appends a new line
// snapshotting the product's name, price and image.
func (s *Store) AddItem(ctx context.Context, p Product, quantity int) (Totals, error) {
	return s.mutate(ctx, "add_item", func(items []LineItem) ([]LineItem, error) {
		if quantity < 1 || quantity > MaxLineQuantity {
			return nil, ErrInvalidQuantity
		}
		if strings.TrimSpace(p.ID) == "" {
			return nil, NewError(KindInvalidInput, "product id is required", nil)
		}
		if p.Price.IsNegative() {
			return nil, NewError(KindInvalidInput, "product price cannot be negative", nil)
		}

		if i := indexOf(items, p.ID); i >= 0 {
			merged := items[i].Quantity + quantity
			if merged > MaxLineQuantity {
				return nil, NewError(KindInvalidQuantity, fmt.Sprintf("at most %d of one product per order", MaxLineQuantity), nil)
			}
			items[i].Quantity = merged
			return items, nil
		}

		return append(items, LineItem{
			ProductID: p.ID,
			Name:      p.Name,
			UnitPrice: p.Price,
			Quantity:  quantity,
			ImageRef:  p.Image,
		}), nil
	})
}

// UpdateQuantity replaces a line's quantity. Anything below 1 removes the line.
func (s *Store) UpdateQuantity(ctx context.Context, productID string, quantity int) (Totals, error) {
	if quantity < 1 {
		return s.RemoveItem(ctx, productID)
	}
	return s.mutate(ctx, "update_quantity", func(items []LineItem) ([]LineItem, error) {
		if quantity > MaxLineQuantity {
			return nil, ErrInvalidQuantity
		}
		i := indexOf(items, productID)
		if i < 0 {
			return nil, ErrItemNotFound
		}
		items[i].Quantity = quantity
		return items, nil
	})
}

// RemoveItem fails with ItemNotFound when the product is not in the cart.
func (s *Store) RemoveItem(ctx context.Context, productID string) (Totals, error) {
	return s.mutate(ctx, "remove_item", func(items []LineItem) ([]LineItem, error) {
		i := indexOf(items, productID)
		if i < 0 {
			return nil, ErrItemNotFound
		}
		return append(items[:i], items[i+1:]...), nil
	})
}

func (s *Store) Clear(ctx context.Context) (Totals, error) {
	return s.mutate(ctx, "clear", func([]LineItem) ([]LineItem, error) {
		return []LineItem{}, nil
	})
}

// mutate applies fn to a private copy of the cart, persists the result and
// only then publishes it. A failed save leaves the committed cart untouched.
func (s *Store) mutate(ctx context.Context, op string, fn func([]LineItem) ([]LineItem, error)) (Totals, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.retired.Load() {
		return Totals{}, ErrNotAuthenticated
	}

	next, err := fn(cloneItems(s.committed()))
	if err != nil {
		return Totals{}, err
	}

	if err := s.storage.Save(ctx, s.userID, next); err != nil {
		s.logger.Warn("cart save failed, keeping previous cart",
			zap.String("user_id", s.userID), zap.String("op", op), zap.Error(err))
		return Totals{}, NewError(KindPersistence, "failed to save cart", err)
	}

	s.items.Store(&next)
	t := totalsOf(next)
	s.logger.Debug("cart updated",
		zap.String("user_id", s.userID), zap.String("op", op),
		zap.Int("total_items", t.Items), zap.String("total_price", t.Price.String()))
	return t, nil
}

// Checkout snapshots the cart into an order, appends it to the ledger and
// empties the cart. A ledger failure leaves the cart exactly as it was.
//
// If the order is recorded but the emptied cart cannot be saved, the order is
// returned together with a persistence error and the cart keeps its items.
func (s *Store) Checkout(ctx context.Context, deliveryAddress string, method order.PaymentMethod) (order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.retired.Load() {
		return order.Order{}, ErrNotAuthenticated
	}

	items := s.committed()
	if len(items) == 0 {
		return order.Order{}, ErrEmptyCart
	}
	deliveryAddress = strings.TrimSpace(deliveryAddress)
	if deliveryAddress == "" {
		return order.Order{}, NewError(KindInvalidInput, "delivery address is required", nil)
	}
	if !method.Valid() {
		return order.Order{}, NewError(KindInvalidInput, fmt.Sprintf("unsupported payment method %q", method), nil)
	}

	now := s.now()
	orderItems := toOrderItems(items)
	o := order.Order{
		ID:                s.newID(now),
		UserID:            s.userID,
		Items:             orderItems,
		TotalAmount:       order.SumItems(orderItems),
		CreatedAt:         now,
		EstimatedDelivery: now.Add(order.DeliveryWindow),
		Status:            order.StatusConfirmed,
		DeliveryAddress:   deliveryAddress,
		PaymentMethod:     method,
	}

	if err := s.ledger.Append(ctx, s.userID, o); err != nil {
		s.logger.Warn("order ledger append failed, cart left unchanged",
			zap.String("user_id", s.userID), zap.String("order_id", o.ID), zap.Error(err))
		return order.Order{}, NewError(KindLedger, "failed to place order", err)
	}

	empty := []LineItem{}
	if err := s.storage.Save(ctx, s.userID, empty); err != nil {
		s.logger.Error("order placed but cart could not be cleared",
			zap.String("user_id", s.userID), zap.String("order_id", o.ID), zap.Error(err))
		return o, NewError(KindPersistence, "order placed but the cart could not be cleared", err)
	}
	s.items.Store(&empty)

	s.logger.Info("order placed",
		zap.String("user_id", s.userID), zap.String("order_id", o.ID),
		zap.String("total_amount", o.TotalAmount.String()), zap.Int("lines", len(o.Items)),
		zap.String("payment", o.PaymentMethod.Label()))

	if s.publisher != nil {
		if err := s.publisher.PublishOrderPlaced(ctx, o); err != nil {
			s.logger.Warn("publish order placed failed",
				zap.String("order_id", o.ID), zap.Error(err))
		}
	}
	return o, nil
}

// retire blocks until any in-flight mutation finishes, then rejects all
// further mutations on this handle.
func (s *Store) retire() {
	s.mu.Lock()
	s.retired.Store(true)
	s.mu.Unlock()
}
