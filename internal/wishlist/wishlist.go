// Package wishlist keeps the set of products a shopper has hearted.
package wishlist

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/storefront-cart-go/internal/auth"
	"github.com/andreasstove999/ecommerce-system/storefront-cart-go/internal/cart"
)

// Storage persists one user's wishlist as product ids in the order they were
// added.
type Storage interface {
	Load(ctx context.Context, userID string) ([]string, error)
	Save(ctx context.Context, userID string, productIDs []string) error
}

type Service struct {
	session auth.Session
	storage Storage
	logger  *zap.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewService(session auth.Session, storage Storage, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		session: session,
		storage: storage,
		logger:  logger,
		locks:   make(map[string]*sync.Mutex),
	}
}

func (s *Service) userLock(userID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[userID] = l
	}
	return l
}

func (s *Service) currentUser(ctx context.Context) (string, error) {
	userID, ok := s.session.CurrentUserID(ctx)
	if !ok {
		return "", cart.ErrNotAuthenticated
	}
	return userID, nil
}

func (s *Service) load(ctx context.Context, userID string) ([]string, error) {
	ids, err := s.storage.Load(ctx, userID)
	if err != nil {
		return nil, cart.NewError(cart.KindPersistence, "failed to load wishlist", err)
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

// update runs fn against the stored wishlist under the user's lock and saves
// the result. Nothing is written when fn fails.
func (s *Service) update(ctx context.Context, op string, fn func(ids []string) ([]string, error)) ([]string, error) {
	userID, err := s.currentUser(ctx)
	if err != nil {
		return nil, err
	}
	l := s.userLock(userID)
	l.Lock()
	defer l.Unlock()

	ids, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	next, err := fn(ids)
	if err != nil {
		return nil, err
	}
	if err := s.storage.Save(ctx, userID, next); err != nil {
		s.logger.Warn("wishlist save failed", zap.String("user_id", userID), zap.String("op", op), zap.Error(err))
		return nil, cart.NewError(cart.KindPersistence, "failed to save wishlist", err)
	}
	s.logger.Debug("wishlist updated", zap.String("user_id", userID), zap.String("op", op), zap.Int("size", len(next)))
	return next, nil
}

// Toggle adds productID when absent and removes it when present. It reports
// whether the product is on the wishlist afterwards.
func (s *Service) Toggle(ctx context.Context, productID string) (bool, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return false, cart.NewError(cart.KindInvalidInput, "product id is required", nil)
	}

	var added bool
	_, err := s.update(ctx, "toggle", func(ids []string) ([]string, error) {
		if i := indexOf(ids, productID); i >= 0 {
			added = false
			return append(ids[:i], ids[i+1:]...), nil
		}
		added = true
		return append(ids, productID), nil
	})
	if err != nil {
		return false, err
	}
	return added, nil
}

func (s *Service) Remove(ctx context.Context, productID string) error {
	productID = strings.TrimSpace(productID)
	_, err := s.update(ctx, "remove", func(ids []string) ([]string, error) {
		i := indexOf(ids, productID)
		if i < 0 {
			return nil, cart.NewError(cart.KindItemNotFound, "product is not on the wishlist", nil)
		}
		return append(ids[:i], ids[i+1:]...), nil
	})
	return err
}

func (s *Service) List(ctx context.Context) ([]string, error) {
	userID, err := s.currentUser(ctx)
	if err != nil {
		return nil, err
	}
	return s.load(ctx, userID)
}

func (s *Service) Contains(ctx context.Context, productID string) (bool, error) {
	ids, err := s.List(ctx)
	if err != nil {
		return false, err
	}
	return indexOf(ids, strings.TrimSpace(productID)) >= 0, nil
}

// MoveToCart adds one unit of p to the shopper's cart and then drops it from
// the wishlist. If the cart rejects the product the wishlist is left alone.
func (s *Service) MoveToCart(ctx context.Context, p cart.Product, c *cart.Store) (cart.Totals, error) {
	userID, err := s.currentUser(ctx)
	if err != nil {
		return cart.Totals{}, err
	}
	if c == nil || c.UserID() != userID {
		return cart.Totals{}, cart.ErrNotAuthenticated
	}

	onList, err := s.Contains(ctx, p.ID)
	if err != nil {
		return cart.Totals{}, err
	}
	if !onList {
		return cart.Totals{}, cart.NewError(cart.KindItemNotFound, "product is not on the wishlist", nil)
	}

	totals, err := c.AddItem(ctx, p, 1)
	if err != nil {
		return cart.Totals{}, err
	}
	if err := s.Remove(ctx, p.ID); err != nil {
		s.logger.Warn("product added to cart but still on wishlist",
			zap.String("user_id", userID), zap.String("product_id", p.ID), zap.Error(err))
		return totals, err
	}
	return totals, nil
}

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}
