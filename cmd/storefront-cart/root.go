package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/storefront-cart-go/internal/config"
	"github.com/andreasstove999/ecommerce-system/storefront-cart-go/internal/logging"
)

type globals struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	g := &globals{}

	root := &cobra.Command{
		Use:           "storefront-cart",
		Short:         "Per-user shopping carts, checkout and order history for the storefront",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          func(cmd *cobra.Command, _ []string) error { return cmd.Help() },
	}
	root.PersistentFlags().StringVar(&g.configPath, "config", "", "path to a YAML config file (env vars override it)")

	root.AddCommand(
		newServeCmd(g),
		newMigrateCmd(g),
		newInvoiceCmd(g),
	)
	return root
}

func (g *globals) load() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}
