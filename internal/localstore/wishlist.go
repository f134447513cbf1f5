package localstore

import (
	"context"
	"encoding/json"
	"fmt"
)

// WishlistStorage implements wishlist.Storage.
type WishlistStorage struct{ db *DB }

func (d *DB) Wishlists() *WishlistStorage { return &WishlistStorage{db: d} }

func (s *WishlistStorage) Load(ctx context.Context, userID string) ([]string, error) {
	data, err := get(ctx, s.db.db, wishlistKey(userID))
	if err != nil || len(data) == 0 {
		return []string{}, err
	}
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, fmt.Errorf("decode wishlist: %w", err)
	}
	return ids, nil
}

func (s *WishlistStorage) Save(ctx context.Context, userID string, productIDs []string) error {
	if productIDs == nil {
		productIDs = []string{}
	}
	data, err := json.Marshal(productIDs)
	if err != nil {
		return err
	}
	return put(ctx, s.db.db, wishlistKey(userID), data)
}
