package order

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

// DBPool matches the methods from *pgxpool.Pool that we use.
// This allows us to mock the database in tests.
type DBPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

// PostgresLedger stores orders in the orders/order_items tables.
type PostgresLedger struct {
	pool DBPool
}

func NewPostgresLedger(pool DBPool) *PostgresLedger {
	return &PostgresLedger{pool: pool}
}

const (
	insertOrderSQL = `INSERT INTO orders (id, user_id, total_amount, status, delivery_address, payment_method, created_at, estimated_delivery)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	insertOrderItemSQL = `INSERT INTO order_items (order_id, position, product_id, name, unit_price, quantity, image_ref)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	selectOrdersSQL = `SELECT id, user_id, total_amount::text, status, delivery_address, payment_method, created_at, estimated_delivery
		FROM orders WHERE user_id = $1 ORDER BY created_at DESC, id DESC`
	selectOrderItemsSQL = `SELECT order_id, product_id, name, unit_price::text, quantity, image_ref
		FROM order_items WHERE order_id = ANY($1) ORDER BY order_id, position`
)

func (l *PostgresLedger) Append(ctx context.Context, userID string, o Order) error {
	tx, err := l.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, insertOrderSQL,
		o.ID, userID, o.TotalAmount, string(o.Status), o.DeliveryAddress, string(o.PaymentMethod),
		o.CreatedAt, o.EstimatedDelivery,
	); err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for i, it := range o.Items {
		if _, err := tx.Exec(ctx, insertOrderItemSQL,
			o.ID, i, it.ProductID, it.Name, it.UnitPrice, it.Quantity, it.ImageRef,
		); err != nil {
			return fmt.Errorf("insert order_item: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (l *PostgresLedger) List(ctx context.Context, userID string) ([]Order, error) {
	rows, err := l.pool.Query(ctx, selectOrdersSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("select orders: %w", err)
	}

	var (
		orders []Order
		ids    []string
	)
	for rows.Next() {
		var (
			o              Order
			total          string
			status, method string
		)
		if err := rows.Scan(&o.ID, &o.UserID, &total, &status, &o.DeliveryAddress, &method, &o.CreatedAt, &o.EstimatedDelivery); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan order: %w", err)
		}
		if o.TotalAmount, err = decimal.NewFromString(total); err != nil {
			rows.Close()
			return nil, fmt.Errorf("order %s total: %w", o.ID, err)
		}
		o.Status = Status(status)
		o.PaymentMethod = PaymentMethod(method)
		orders = append(orders, o)
		ids = append(ids, o.ID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	if len(orders) == 0 {
		return nil, nil
	}

	items, err := l.loadItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Items = items[orders[i].ID]
	}
	return orders, nil
}

func (l *PostgresLedger) loadItems(ctx context.Context, orderIDs []string) (map[string][]Item, error) {
	rows, err := l.pool.Query(ctx, selectOrderItemsSQL, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("select order_items: %w", err)
	}
	defer rows.Close()

	byOrder := make(map[string][]Item, len(orderIDs))
	for rows.Next() {
		var (
			orderID string
			price   string
			it      Item
		)
		if err := rows.Scan(&orderID, &it.ProductID, &it.Name, &price, &it.Quantity, &it.ImageRef); err != nil {
			return nil, fmt.Errorf("scan order_item: %w", err)
		}
		if it.UnitPrice, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("order_item %s price: %w", it.ProductID, err)
		}
		byOrder[orderID] = append(byOrder[orderID], it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return byOrder, nil
}
