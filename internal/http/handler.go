package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/storefront-cart-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/storefront-cart-go/internal/order"
	"github.com/andreasstove999/ecommerce-system/storefront-cart-go/internal/wishlist"
)

// Headers the gateway forwards alongside X-User-Id. They only feed the
// customer block of invoices.
const (
	HeaderUserName  = "X-User-Name"
	HeaderUserEmail = "X-User-Email"
)

const requestTimeout = 3 * time.Second

type Handler struct {
	carts    *cart.Registry
	wishlist *wishlist.Service
	logger   *zap.Logger
}

func NewHandler(carts *cart.Registry, wl *wishlist.Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{carts: carts, wishlist: wl, logger: logger}
}

type cartView struct {
	Items      []cart.LineItem `json:"items"`
	TotalItems int             `json:"totalItems"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
	State      cart.State      `json:"state"`
}

func viewOf(s *cart.Store) cartView {
	t := s.Totals()
	return cartView{Items: s.Items(), TotalItems: t.Items, TotalPrice: t.Price, State: s.State()}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "storefront-cart"})
}

func (h *Handler) withStore(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, s *cart.Store) error) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	s, err := h.carts.Current(ctx)
	if err != nil {
		writeCartError(w, err)
		return
	}
	if err := fn(ctx, s); err != nil {
		writeCartError(w, err)
	}
}

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	h.withStore(w, r, func(_ context.Context, s *cart.Store) error {
		writeJSON(w, http.StatusOK, viewOf(s))
		return nil
	})
}

type addItemRequest struct {
	cart.Product
	ProductID string          `json:"productId"`
	Quantity  json.RawMessage `json:"quantity"`
}

// parseQuantity accepts a JSON number or a numeric string. Anything else is an
// invalid_quantity failure; a missing or null quantity yields def.
func parseQuantity(raw json.RawMessage, def int) (int, error) {
	v := strings.TrimSpace(string(raw))
	if v == "" || v == "null" {
		return def, nil
	}
	if strings.HasPrefix(v, `"`) {
		if err := json.Unmarshal(raw, &v); err != nil {
			return 0, cart.NewError(cart.KindInvalidQuantity, "quantity must be a whole number", err)
		}
	}
	return cart.ParseQuantity(v)
}

func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	var body addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if body.ID == "" {
		body.ID = body.ProductID
	}
	qty, err := parseQuantity(body.Quantity, 1)
	if err != nil {
		writeCartError(w, err)
		return
	}

	h.withStore(w, r, func(ctx context.Context, s *cart.Store) error {
		if _, err := s.AddItem(ctx, body.Product, qty); err != nil {
			return err
		}
		writeJSON(w, http.StatusOK, viewOf(s))
		return nil
	})
}

func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Quantity json.RawMessage `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if q := strings.TrimSpace(string(body.Quantity)); q == "" || q == "null" {
		writeError(w, http.StatusBadRequest, "quantity is required")
		return
	}
	qty, err := parseQuantity(body.Quantity, 0)
	if err != nil {
		writeCartError(w, err)
		return
	}

	productID := chi.URLParam(r, "productId")
	h.withStore(w, r, func(ctx context.Context, s *cart.Store) error {
		if _, err := s.UpdateQuantity(ctx, productID, qty); err != nil {
			return err
		}
		writeJSON(w, http.StatusOK, viewOf(s))
		return nil
	})
}

func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")
	h.withStore(w, r, func(ctx context.Context, s *cart.Store) error {
		if _, err := s.RemoveItem(ctx, productID); err != nil {
			return err
		}
		writeJSON(w, http.StatusOK, viewOf(s))
		return nil
	})
}

func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	h.withStore(w, r, func(ctx context.Context, s *cart.Store) error {
		if _, err := s.Clear(ctx); err != nil {
			return err
		}
		writeJSON(w, http.StatusOK, viewOf(s))
		return nil
	})
}

type checkoutResponse struct {
	Order order.Order `json:"order"`
	Error string      `json:"error,omitempty"`
}

func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	var body struct {
		DeliveryAddress string `json:"deliveryAddress"`
		PaymentMethod   string `json:"paymentMethod"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	method := order.PaymentCashOnDelivery
	if strings.TrimSpace(body.PaymentMethod) != "" {
		m, err := order.ParsePaymentMethod(body.PaymentMethod)
		if err != nil {
			writeCartError(w, cart.NewError(cart.KindInvalidInput, err.Error(), err))
			return
		}
		method = m
	}

	h.withStore(w, r, func(ctx context.Context, s *cart.Store) error {
		o, err := s.Checkout(ctx, body.DeliveryAddress, method)
		if err != nil && o.ID != "" {
			// order recorded, cart not cleared
			h.logger.Error("checkout partially failed", zap.String("order_id", o.ID), zap.Error(err))
			writeJSON(w, statusFor(cart.KindOf(err)), checkoutResponse{Order: o, Error: "order placed but the cart could not be cleared"})
			return nil
		}
		if err != nil {
			return err
		}
		writeJSON(w, http.StatusCreated, checkoutResponse{Order: o})
		return nil
	})
}

func (h *Handler) userOrders(ctx context.Context) ([]order.Order, error) {
	userID, ok := h.carts.Session().CurrentUserID(ctx)
	if !ok {
		return nil, cart.ErrNotAuthenticated
	}
	orders, err := h.carts.Ledger().List(ctx, userID)
	if err != nil {
		return nil, cart.NewError(cart.KindLedger, "failed to load orders", err)
	}
	if orders == nil {
		orders = []order.Order{}
	}
	return orders, nil
}

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	orders, err := h.userOrders(ctx)
	if err != nil {
		writeCartError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *Handler) Invoice(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	orders, err := h.userOrders(ctx)
	if err != nil {
		writeCartError(w, err)
		return
	}
	o, ok := order.Find(orders, chi.URLParam(r, "orderId"))
	if !ok {
		writeError(w, http.StatusNotFound, "order not found")
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", order.InvoiceFilename(o)))
	customer := order.Customer{Name: r.Header.Get(HeaderUserName), Email: r.Header.Get(HeaderUserEmail)}
	if err := order.WriteInvoice(w, o, customer); err != nil {
		h.logger.Warn("write invoice", zap.String("order_id", o.ID), zap.Error(err))
	}
}

type wishlistView struct {
	ProductIDs []string `json:"productIds"`
}

func (h *Handler) GetWishlist(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	ids, err := h.wishlist.List(ctx)
	if err != nil {
		writeCartError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, wishlistView{ProductIDs: ids})
}

func (h *Handler) ToggleWishlist(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	added, err := h.wishlist.Toggle(ctx, chi.URLParam(r, "productId"))
	if err != nil {
		writeCartError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"inWishlist": added})
}

func (h *Handler) RemoveFromWishlist(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := h.wishlist.Remove(ctx, chi.URLParam(r, "productId")); err != nil {
		writeCartError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) MoveToCart(w http.ResponseWriter, r *http.Request) {
	var p cart.Product
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	p.ID = chi.URLParam(r, "productId")

	h.withStore(w, r, func(ctx context.Context, s *cart.Store) error {
		if _, err := h.wishlist.MoveToCart(ctx, p, s); err != nil {
			return err
		}
		writeJSON(w, http.StatusOK, viewOf(s))
		return nil
	})
}
