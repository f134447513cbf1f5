package cart

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/andreasstove999/ecommerce-system/storefront-cart-go/internal/order"
)

// MaxLineQuantity caps the quantity of a single line.
const MaxLineQuantity = 9999

// Product is the catalog record a caller pushes into AddItem. The cart never
// looks products up itself.
type Product struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Image    string          `json:"image,omitempty"`
	Category string          `json:"category,omitempty"`
}

// LineItem is one product in a cart. Name, UnitPrice and ImageRef are
// captured when the product is first added and never refreshed.
type LineItem struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
	ImageRef  string          `json:"imageRef,omitempty"`
}

func (it LineItem) LineTotal() decimal.Decimal {
	return it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
}

type Totals struct {
	Items int             `json:"totalItems"`
	Price decimal.Decimal `json:"totalPrice"`
}

func totalsOf(items []LineItem) Totals {
	t := Totals{Price: decimal.Zero}
	for _, it := range items {
		t.Items += it.Quantity
		t.Price = t.Price.Add(it.LineTotal())
	}
	return t
}

type State string

const (
	StateEmpty     State = "empty"
	StatePopulated State = "populated"
)

// Storage is the durable per-user cart store. Load returns an empty slice
// when the user has no saved cart.
type Storage interface {
	Load(ctx context.Context, userID string) ([]LineItem, error)
	Save(ctx context.Context, userID string, items []LineItem) error
}

// CheckoutPublisher is told about orders after they are committed.
type CheckoutPublisher interface {
	PublishOrderPlaced(ctx context.Context, o order.Order) error
}

func indexOf(items []LineItem, productID string) int {
	for i := range items {
		if items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

func cloneItems(items []LineItem) []LineItem {
	if len(items) == 0 {
		return []LineItem{}
	}
	out := make([]LineItem, len(items))
	copy(out, items)
	return out
}

func toOrderItems(items []LineItem) []order.Item {
	out := make([]order.Item, len(items))
	for i, it := range items {
		out[i] = order.Item{
			ProductID: it.ProductID,
			Name:      it.Name,
			UnitPrice: it.UnitPrice,
			Quantity:  it.Quantity,
			ImageRef:  it.ImageRef,
		}
	}
	return out
}
