package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/aq2208/storefront-api/internal/usecase"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	DefaultExchange   = "storefront.events"
	DefaultRoutingKey = "cart.changed"
	publishTimeout    = 2 * time.Second
)

// Channel is the part of *amqp.Channel the producer uses.
type Channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// RabbitProducer fans cart changes out on a topic exchange.
type RabbitProducer struct {
	ch         Channel
	exchange   string
	routingKey string
	log        *slog.Logger
}

// NewRabbitProducer declares the exchange once at startup. Consumers bind
// their own queues.
func NewRabbitProducer(ch Channel, exchange, routingKey string, log *slog.Logger) (*RabbitProducer, error) {
	if exchange == "" {
		exchange = DefaultExchange
	}
	if routingKey == "" {
		routingKey = DefaultRoutingKey
	}
	if err := ch.ExchangeDeclare(
		exchange,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	if log == nil {
		log = slog.Default()
	}
	return &RabbitProducer{ch: ch, exchange: exchange, routingKey: routingKey, log: log}, nil
}

func (p *RabbitProducer) PublishCartChanged(ctx context.Context, msg CartChangedMsg) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Transient,
		Timestamp:    msg.At,
		Body:         body,
	}
	if err := p.ch.PublishWithContext(ctx, p.exchange, p.routingKey, false, false, pub); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

// Listener adapts the producer to usecase.Carts.OnChange. Failures are
// logged; the cart mutation has already been committed.
func (p *RabbitProducer) Listener() usecase.Listener {
	return func(ev usecase.CartEvent) {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := p.PublishCartChanged(ctx, NewCartChangedMsg(ev, time.Now())); err != nil {
			p.log.Warn("cart event publish failed", "session", ev.Session, "err", err)
		}
	}
}
