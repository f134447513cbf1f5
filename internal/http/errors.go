package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/andreasstove999/ecommerce-system/storefront-cart-go/internal/cart"
)

func statusFor(kind cart.Kind) int {
	switch kind {
	case cart.KindNotAuthenticated:
		return http.StatusUnauthorized
	case cart.KindInvalidQuantity, cart.KindInvalidInput:
		return http.StatusBadRequest
	case cart.KindItemNotFound:
		return http.StatusNotFound
	case cart.KindEmptyCart:
		return http.StatusConflict
	case cart.KindLedger:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

type errorBody struct {
	Error string    `json:"error"`
	Kind  cart.Kind `json:"kind,omitempty"`
}

// writeCartError renders err with the status of its kind. Only the
// shopper-facing message is exposed; causes stay in the logs.
func writeCartError(w http.ResponseWriter, err error) {
	var ce *cart.Error
	if !errors.As(err, &ce) {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, statusFor(ce.Kind), errorBody{Error: ce.Message, Kind: ce.Kind})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}
