package localstore

import (
	"context"

	"github.com/andreasstove999/ecommerce-system/storefront-cart-go/internal/cart"
)

// CartStorage implements cart.Storage.
type CartStorage struct{ db *DB }

func (d *DB) Carts() *CartStorage { return &CartStorage{db: d} }

func (s *CartStorage) Load(ctx context.Context, userID string) ([]cart.LineItem, error) {
	data, err := get(ctx, s.db.db, cartKey(userID))
	if err != nil {
		return nil, err
	}
	return cart.DecodeItems(data)
}

func (s *CartStorage) Save(ctx context.Context, userID string, items []cart.LineItem) error {
	data, err := cart.EncodeItems(items)
	if err != nil {
		return err
	}
	return put(ctx, s.db.db, cartKey(userID), data)
}
