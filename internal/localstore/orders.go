package localstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/andreasstove999/ecommerce-system/storefront-cart-go/internal/order"
)

// OrderLedger implements order.Ledger. The whole history for a user lives
// under one key, newest order first.
type OrderLedger struct{ db *DB }

func (d *DB) Orders() *OrderLedger { return &OrderLedger{db: d} }

func (l *OrderLedger) Append(ctx context.Context, userID string, o order.Order) error {
	return l.db.update(ctx, ordersKey(userID), func(cur []byte) ([]byte, error) {
		orders, err := decodeOrders(cur)
		if err != nil {
			return nil, err
		}
		for _, existing := range orders {
			if existing.ID == o.ID {
				return nil, fmt.Errorf("order %s already recorded", o.ID)
			}
		}
		return json.Marshal(append([]order.Order{o}, orders...))
	})
}

func (l *OrderLedger) List(ctx context.Context, userID string) ([]order.Order, error) {
	data, err := get(ctx, l.db.db, ordersKey(userID))
	if err != nil {
		return nil, err
	}
	return decodeOrders(data)
}

func decodeOrders(data []byte) ([]order.Order, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var orders []order.Order
	if err := json.Unmarshal(data, &orders); err != nil {
		return nil, fmt.Errorf("decode orders: %w", err)
	}
	return orders, nil
}
