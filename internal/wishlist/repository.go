package wishlist

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresStorage keeps wishlists in the wishlist_items table.
type PostgresStorage struct {
	db *sql.DB
}

func NewPostgresStorage(db *sql.DB) *PostgresStorage {
	return &PostgresStorage{db: db}
}

const (
	selectWishlistSQL = `SELECT product_id FROM wishlist_items WHERE user_id = $1 ORDER BY position`
	deleteWishlistSQL = `DELETE FROM wishlist_items WHERE user_id = $1`
	insertWishlistSQL = `INSERT INTO wishlist_items (user_id, position, product_id) VALUES ($1, $2, $3)`
)

func (p *PostgresStorage) Load(ctx context.Context, userID string) ([]string, error) {
	rows, err := p.db.QueryContext(ctx, selectWishlistSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("select wishlist_items: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan wishlist_item: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return ids, nil
}

func (p *PostgresStorage) Save(ctx context.Context, userID string, productIDs []string) (err error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, deleteWishlistSQL, userID); err != nil {
		return fmt.Errorf("delete wishlist_items: %w", err)
	}
	for i, id := range productIDs {
		if _, err = tx.ExecContext(ctx, insertWishlistSQL, userID, i, id); err != nil {
			return fmt.Errorf("insert wishlist_item: %w", err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
