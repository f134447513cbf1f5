package order

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DeliveryWindow is how far after placement an order is expected to arrive.
const DeliveryWindow = 24 * time.Hour

type Item struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
	ImageRef  string          `json:"imageRef,omitempty"`
}

// LineTotal is UnitPrice × Quantity.
func (it Item) LineTotal() decimal.Decimal {
	return it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
}

// Order is an immutable snapshot of a cart taken at checkout. TotalAmount is
// fixed at creation and never recomputed.
type Order struct {
	ID                string          `json:"orderId"`
	UserID            string          `json:"userId"`
	Items             []Item          `json:"items"`
	TotalAmount       decimal.Decimal `json:"totalAmount"`
	CreatedAt         time.Time       `json:"createdAt"`
	EstimatedDelivery time.Time       `json:"estimatedDelivery"`
	Status            Status          `json:"status"`
	DeliveryAddress   string          `json:"deliveryAddress"`
	PaymentMethod     PaymentMethod   `json:"paymentMethod"`
}

// Ledger is the append-only order history, keyed by user.
type Ledger interface {
	Append(ctx context.Context, userID string, o Order) error
	// List returns the user's orders, newest first.
	List(ctx context.Context, userID string) ([]Order, error)
}

// SumItems totals the given items at their snapshot prices.
func SumItems(items []Item) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.LineTotal())
	}
	return total
}

// NewID returns an id of the form ORDER-<unix millis>-<8 hex>.
func NewID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("ORDER-%d-%s", now.UnixMilli(), suffix)
}

func Find(orders []Order, id string) (Order, bool) {
	for _, o := range orders {
		if o.ID == id {
			return o, true
		}
	}
	return Order{}, false
}
