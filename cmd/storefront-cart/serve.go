package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/andreasstove999/ecommerce-system/storefront-cart-go/internal/auth"
	"github.com/andreasstove999/ecommerce-system/storefront-cart-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/storefront-cart-go/internal/events"
	httpapi "github.com/andreasstove999/ecommerce-system/storefront-cart-go/internal/http"
	"github.com/andreasstove999/ecommerce-system/storefront-cart-go/internal/wishlist"
)

func newServeCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the cart HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := g.load()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx := cmd.Context()
			be, err := openBackend(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer be.close()

			opts := []cart.Option{cart.WithLogger(logger)}
			if cfg.Events.Enabled {
				conn, err := events.Dial(cfg.Events.RabbitMQURL)
				if err != nil {
					return err
				}
				defer conn.Close()

				pub, err := events.NewRabbitPublisher(conn, be.sequences, events.PublisherOptions{
					Producer: cfg.Events.Producer,
					Logger:   logger,
				})
				if err != nil {
					return err
				}
				defer pub.Close()
				opts = append(opts, cart.WithPublisher(pub))
			}

			session := auth.RequestSession{}
			registry := cart.NewRegistry(session, be.carts, be.ledger, opts...)
			defer registry.Close()
			wl := wishlist.NewService(session, be.wishlists, logger)

			router := httpapi.NewRouter(httpapi.NewHandler(registry, wl, logger), httpapi.RouterOptions{
				Logger:           logger,
				CORSAllowOrigins: cfg.HTTP.CORSAllowOrigins,
			})
			srv := &http.Server{
				Addr:         cfg.HTTP.Addr,
				Handler:      router,
				ReadTimeout:  5 * time.Second,
				WriteTimeout: 10 * time.Second,
			}
			return serve(ctx, srv, cfg.HTTP.ShutdownTimeout, logger)
		},
	}
}

// serve runs srv until ctx is cancelled, then drains in-flight requests.
func serve(ctx context.Context, srv *http.Server, shutdownTimeout time.Duration, logger *zap.Logger) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("storefront-cart listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
