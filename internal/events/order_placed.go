package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/andreasstove999/ecommerce-system/storefront-cart-go/internal/order"
)

const (
	CartCheckedOutEventName    = "CartCheckedOut"
	CartCheckedOutEventVersion = 1
	CartCheckedOutSchemaPath   = "contracts/events/cart/CartCheckedOut.v1.enveloped.schema.json"
	StorefrontProducer         = "storefront-cart"
)

type OrderPlacedPayload struct {
	OrderID         string            `json:"orderId"`
	UserID          string            `json:"userId"`
	Items           []OrderPlacedItem `json:"items"`
	TotalAmount     decimal.Decimal   `json:"totalAmount"`
	DeliveryAddress string            `json:"deliveryAddress"`
	PaymentMethod   string            `json:"paymentMethod"`
	Timestamp       time.Time         `json:"timestamp"`
}

type OrderPlacedItem struct {
	ProductID string          `json:"productId"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

type OrderPlacedEvent = EventEnvelope[OrderPlacedPayload]

// EnvelopeOptions fills the envelope fields that do not come from the order.
// Zero values get defaults.
type EnvelopeOptions struct {
	Sequence      *int64
	Producer      string
	CorrelationID string
	CausationID   string
	EventID       string
	OccurredAt    time.Time
}

// BuildOrderPlacedEvent wraps a placed order in the CartCheckedOut envelope,
// partitioned by the shopper so consumers see one user's checkouts in order.
func BuildOrderPlacedEvent(o order.Order, opts EnvelopeOptions) OrderPlacedEvent {
	eventID := opts.EventID
	if eventID == "" {
		eventID = uuid.NewString()
	}
	occurredAt := opts.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}
	producer := opts.Producer
	if producer == "" {
		producer = StorefrontProducer
	}

	payload := OrderPlacedPayload{
		OrderID:         o.ID,
		UserID:          o.UserID,
		Items:           make([]OrderPlacedItem, 0, len(o.Items)),
		TotalAmount:     o.TotalAmount,
		DeliveryAddress: o.DeliveryAddress,
		PaymentMethod:   string(o.PaymentMethod),
		Timestamp:       o.CreatedAt,
	}
	for _, it := range o.Items {
		payload.Items = append(payload.Items, OrderPlacedItem{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     it.UnitPrice,
		})
	}

	return OrderPlacedEvent{
		EventName:     CartCheckedOutEventName,
		EventVersion:  CartCheckedOutEventVersion,
		EventID:       eventID,
		CorrelationID: opts.CorrelationID,
		CausationID:   opts.CausationID,
		Producer:      producer,
		PartitionKey:  o.UserID,
		Sequence:      opts.Sequence,
		OccurredAt:    occurredAt,
		Schema:        CartCheckedOutSchemaPath,
		Payload:       payload,
	}
}
