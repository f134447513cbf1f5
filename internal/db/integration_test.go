//go:build integration

package db_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap/zaptest"

	"github.com/andreasstove999/ecommerce-system/storefront-cart-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/storefront-cart-go/internal/db"
	"github.com/andreasstove999/ecommerce-system/storefront-cart-go/internal/events"
	"github.com/andreasstove999/ecommerce-system/storefront-cart-go/internal/order"
)

func startPostgres(t *testing.T) string {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	t.Cleanup(cancel)

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "cart_user",
				"POSTGRES_PASSWORD": "cart_pass",
				"POSTGRES_DB":       "carts",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(90 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		cleanupCtx, cleanupCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cleanupCancel()
		_ = container.Terminate(cleanupCtx)
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	return fmt.Sprintf("postgres://cart_user:cart_pass@%s:%s/carts?sslmode=disable", host, port.Port())
}

func TestPostgresBackends(t *testing.T) {
	dsn := startPostgres(t)
	require.NoError(t, db.RunMigrations(dsn, zaptest.NewLogger(t)))
	require.NoError(t, db.RunMigrations(dsn, zaptest.NewLogger(t)), "re-running is a no-op")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	sqlDB, err := db.Open(ctx, dsn)
	require.NoError(t, err)
	defer sqlDB.Close()

	pool, err := db.NewPool(ctx, dsn)
	require.NoError(t, err)
	defer pool.Close()

	carts := cart.NewPostgresStorage(sqlDB)
	ledger := order.NewPostgresLedger(pool)

	t.Run("cart storage", func(t *testing.T) {
		items := []cart.LineItem{
			{ProductID: "apple", Name: "Apples", UnitPrice: decimal.RequireFromString("12.5"), Quantity: 2, ImageRef: "apple.png"},
			{ProductID: "milk", Name: "Milk", UnitPrice: decimal.RequireFromString("0.99"), Quantity: 1},
		}
		require.NoError(t, carts.Save(ctx, "alice", items))
		require.NoError(t, carts.Save(ctx, "alice", items[1:]))

		loaded, err := carts.Load(ctx, "alice")
		require.NoError(t, err)
		require.Len(t, loaded, 1)
		require.Equal(t, "milk", loaded[0].ProductID)
		require.True(t, items[1].UnitPrice.Equal(loaded[0].UnitPrice))
	})

	t.Run("order ledger", func(t *testing.T) {
		now := time.Now().UTC().Truncate(time.Millisecond)
		for i, id := range []string{"ORDER-old", "ORDER-new"} {
			o := order.Order{
				ID:     id,
				UserID: "alice",
				Items: []order.Item{
					{ProductID: "apple", Name: "Apples", UnitPrice: decimal.NewFromInt(50), Quantity: 2},
				},
				TotalAmount:       decimal.NewFromInt(100),
				CreatedAt:         now.Add(time.Duration(i) * time.Minute),
				EstimatedDelivery: now.Add(order.DeliveryWindow),
				Status:            order.StatusConfirmed,
				DeliveryAddress:   "12 Market Road",
				PaymentMethod:     order.PaymentCashOnDelivery,
			}
			require.NoError(t, ledger.Append(ctx, "alice", o))
		}

		orders, err := ledger.List(ctx, "alice")
		require.NoError(t, err)
		require.Len(t, orders, 2)
		require.Equal(t, "ORDER-new", orders[0].ID)
		require.Len(t, orders[1].Items, 1)
	})

	t.Run("event sequences", func(t *testing.T) {
		seqs := events.NewPostgresSequences(sqlDB)
		first, err := seqs.NextSequence(ctx, "alice")
		require.NoError(t, err)
		second, err := seqs.NextSequence(ctx, "alice")
		require.NoError(t, err)
		require.Equal(t, first+1, second)
	})

	t.Run("rollback and reapply", func(t *testing.T) {
		require.NoError(t, db.RollbackMigrations(dsn, 1, zaptest.NewLogger(t)))
		_, err := sqlDB.ExecContext(ctx, `SELECT 1 FROM wishlist_items`)
		require.Error(t, err, "last migration dropped wishlist_items")

		require.NoError(t, db.RunMigrations(dsn, zaptest.NewLogger(t)))
		_, err = sqlDB.ExecContext(ctx, `SELECT 1 FROM wishlist_items`)
		require.NoError(t, err)
	})

	require.Error(t, db.RollbackMigrations(dsn, 0, zaptest.NewLogger(t)))
}
