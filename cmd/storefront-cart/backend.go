package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/storefront-cart-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/storefront-cart-go/internal/config"
	"github.com/andreasstove999/ecommerce-system/storefront-cart-go/internal/db"
	"github.com/andreasstove999/ecommerce-system/storefront-cart-go/internal/events"
	"github.com/andreasstove999/ecommerce-system/storefront-cart-go/internal/localstore"
	"github.com/andreasstove999/ecommerce-system/storefront-cart-go/internal/order"
	"github.com/andreasstove999/ecommerce-system/storefront-cart-go/internal/wishlist"
)

type backend struct {
	carts     cart.Storage
	ledger    order.Ledger
	wishlists wishlist.Storage
	sequences events.SequenceRepository
	close     func()
}

func openBackend(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*backend, error) {
	switch cfg.Storage.Driver {
	case config.DriverSQLite:
		store, err := localstore.Open(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, err
		}
		logger.Info("using sqlite storage", zap.String("path", store.Path()))
		return &backend{
			carts:     store.Carts(),
			ledger:    store.Orders(),
			wishlists: store.Wishlists(),
			sequences: store.Sequences(),
			close:     func() { _ = store.Close() },
		}, nil

	case config.DriverPostgres:
		if err := db.RunMigrations(cfg.Storage.DSN, logger); err != nil {
			return nil, err
		}
		sqlDB, err := db.Open(ctx, cfg.Storage.DSN)
		if err != nil {
			return nil, err
		}
		pool, err := db.NewPool(ctx, cfg.Storage.DSN)
		if err != nil {
			_ = sqlDB.Close()
			return nil, err
		}
		logger.Info("using postgres storage")
		return &backend{
			carts:     cart.NewPostgresStorage(sqlDB),
			ledger:    order.NewPostgresLedger(pool),
			wishlists: wishlist.NewPostgresStorage(sqlDB),
			sequences: events.NewPostgresSequences(sqlDB),
			close: func() {
				pool.Close()
				_ = sqlDB.Close()
			},
		}, nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
}
