package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/storefront-cart-go/internal/order"
)

const publishTimeout = 3 * time.Second

type channel interface {
	exchangeDeclarer
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// RabbitPublisher announces placed orders on the events exchange. It
// satisfies cart.CheckoutPublisher.
type RabbitPublisher struct {
	ch       channel
	seq      SequenceRepository
	logger   *zap.Logger
	producer string
	now      func() time.Time
}

type PublisherOptions struct {
	Producer string
	Logger   *zap.Logger
}

func NewRabbitPublisher(conn *amqp.Connection, seq SequenceRepository, opts PublisherOptions) (*RabbitPublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}
	p, err := newRabbitPublisher(ch, seq, opts)
	if err != nil {
		_ = ch.Close()
		return nil, err
	}
	return p, nil
}

func newRabbitPublisher(ch channel, seq SequenceRepository, opts PublisherOptions) (*RabbitPublisher, error) {
	if err := declareEventsExchange(ch); err != nil {
		return nil, fmt.Errorf("declare events exchange: %w", err)
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	producer := opts.Producer
	if producer == "" {
		producer = StorefrontProducer
	}
	return &RabbitPublisher{
		ch:       ch,
		seq:      seq,
		logger:   logger,
		producer: producer,
		now:      func() time.Time { return time.Now().UTC() },
	}, nil
}

func (p *RabbitPublisher) Close() error {
	return p.ch.Close()
}

func (p *RabbitPublisher) PublishOrderPlaced(ctx context.Context, o order.Order) error {
	opts := EnvelopeOptions{
		Producer:      p.producer,
		CorrelationID: CorrelationIDFrom(ctx),
		CausationID:   o.ID,
		OccurredAt:    p.now(),
	}
	if p.seq != nil {
		seq, err := p.seq.NextSequence(ctx, o.UserID)
		if err != nil {
			return fmt.Errorf("reserve sequence: %w", err)
		}
		opts.Sequence = &seq
	}

	env := BuildOrderPlacedEvent(o, opts)
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal CartCheckedOut envelope: %w", err)
	}

	if err := p.publishJSON(ctx, CartCheckedOutRoutingKey, body); err != nil {
		return fmt.Errorf("publish CartCheckedOut: %w", err)
	}
	p.logger.Debug("published CartCheckedOut",
		zap.String("order_id", o.ID), zap.String("event_id", env.EventID))
	return nil
}

func (p *RabbitPublisher) publishJSON(ctx context.Context, routingKey string, body []byte) error {
	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	return p.ch.PublishWithContext(
		pubCtx,
		EventsExchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    p.now(),
			Body:         body,
		},
	)
}
