package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/storefront-cart-go/internal/auth"
)

type RouterOptions struct {
	Logger           *zap.Logger
	CORSAllowOrigins []string
}

func NewRouter(h *Handler, opts RouterOptions) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(CorrelationID)
	if len(opts.CORSAllowOrigins) > 0 {
		r.Use(CORS(opts.CORSAllowOrigins))
	}
	r.Use(auth.UserID)

	r.Get("/health", h.Health)

	r.Route("/api/cart", func(r chi.Router) {
		r.Get("/", h.GetCart)
		r.Delete("/", h.ClearCart)
		r.Post("/items", h.AddItem)
		r.Patch("/items/{productId}", h.UpdateItem)
		r.Delete("/items/{productId}", h.RemoveItem)
		r.Post("/checkout", h.Checkout)
	})

	r.Route("/api/orders", func(r chi.Router) {
		r.Get("/", h.ListOrders)
		r.Get("/{orderId}/invoice", h.Invoice)
	})

	r.Route("/api/wishlist", func(r chi.Router) {
		r.Get("/", h.GetWishlist)
		r.Post("/{productId}", h.ToggleWishlist)
		r.Delete("/{productId}", h.RemoveFromWishlist)
		r.Post("/{productId}/cart", h.MoveToCart)
	})

	return r
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				logger.Info("http request",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("duration", time.Since(start)),
					zap.String("request_id", middleware.GetReqID(r.Context())),
					zap.String("correlation_id", ww.Header().Get(HeaderCorrelationID)),
				)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
