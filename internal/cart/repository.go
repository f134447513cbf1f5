package cart

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// PostgresStorage keeps carts in the carts/cart_items tables, one cart row
// per user.
type PostgresStorage struct {
	db *sql.DB
}

func NewPostgresStorage(db *sql.DB) *PostgresStorage {
	return &PostgresStorage{db: db}
}

const (
	selectCartItemsSQL = `SELECT ci.product_id, ci.name, ci.unit_price, ci.quantity, ci.image_ref
FROM cart_items ci
JOIN carts c ON c.id = ci.cart_id
WHERE c.user_id = $1
ORDER BY ci.position`

	upsertCartSQL = `
INSERT INTO carts (id, user_id, total, updated_at)
VALUES ($1, $2, $3, NOW())
ON CONFLICT (user_id) DO UPDATE
SET total = EXCLUDED.total, updated_at = NOW()
RETURNING id
`
	deleteCartItemsSQL = `DELETE FROM cart_items WHERE cart_id = $1`
	insertCartItemSQL  = `INSERT INTO cart_items (id, cart_id, position, product_id, name, unit_price, quantity, image_ref) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
)

func (p *PostgresStorage) Load(ctx context.Context, userID string) ([]LineItem, error) {
	rows, err := p.db.QueryContext(ctx, selectCartItemsSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("select cart_items: %w", err)
	}
	defer rows.Close()

	items := []LineItem{}
	for rows.Next() {
		var it LineItem
		if err := rows.Scan(&it.ProductID, &it.Name, &it.UnitPrice, &it.Quantity, &it.ImageRef); err != nil {
			return nil, fmt.Errorf("scan cart_item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return items, nil
}

func (p *PostgresStorage) Save(ctx context.Context, userID string, items []LineItem) (err error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var cartID string
	if err = tx.QueryRowContext(ctx, upsertCartSQL, uuid.NewString(), userID, totalsOf(items).Price).Scan(&cartID); err != nil {
		return fmt.Errorf("upsert cart: %w", err)
	}

	if _, err = tx.ExecContext(ctx, deleteCartItemsSQL, cartID); err != nil {
		return fmt.Errorf("delete cart_items: %w", err)
	}

	if len(items) > 0 {
		stmt, perr := tx.PrepareContext(ctx, insertCartItemSQL)
		if perr != nil {
			err = perr
			return fmt.Errorf("prepare insert cart_item: %w", err)
		}
		defer stmt.Close()

		for i, it := range items {
			if _, err = stmt.ExecContext(ctx, uuid.NewString(), cartID, i, it.ProductID, it.Name, it.UnitPrice, it.Quantity, it.ImageRef); err != nil {
				return fmt.Errorf("insert cart_item: %w", err)
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
