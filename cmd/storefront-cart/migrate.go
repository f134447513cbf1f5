package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/andreasstove999/ecommerce-system/storefront-cart-go/internal/config"
	"github.com/andreasstove999/ecommerce-system/storefront-cart-go/internal/db"
)

func newMigrateCmd(g *globals) *cobra.Command {
	var down int

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply (or with --down, roll back) postgres schema migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := g.load()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			if cfg.Storage.Driver != config.DriverPostgres {
				return errors.New("migrate needs the postgres storage driver (CART_STORAGE_DRIVER=postgres)")
			}
			if down > 0 {
				return db.RollbackMigrations(cfg.Storage.DSN, down, logger)
			}
			return db.RunMigrations(cfg.Storage.DSN, logger)
		},
	}
	cmd.Flags().IntVar(&down, "down", 0, "number of migrations to roll back")
	return cmd
}
