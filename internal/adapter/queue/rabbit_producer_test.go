package queue_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/aq2208/storefront-api/internal/adapter/queue"
	"github.com/aq2208/storefront-api/internal/usecase"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type published struct {
	exchange, key string
	msg           amqp.Publishing
}

type fakeChannel struct {
	declared   []string
	declareErr error
	publishErr error
	sent       []published
}

func (f *fakeChannel) ExchangeDeclare(name, kind string, _, _, _, _ bool, _ amqp.Table) error {
	f.declared = append(f.declared, name+"/"+kind)
	return f.declareErr
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.sent = append(f.sent, published{exchange: exchange, key: key, msg: msg})
	return nil
}

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestRabbitProducer_Defaults(t *testing.T) {
	ch := &fakeChannel{}
	_, err := queue.NewRabbitProducer(ch, "", "", quiet())
	require.NoError(t, err)
	assert.Equal(t, []string{"storefront.events/topic"}, ch.declared)
}

func TestRabbitProducer_DeclareError(t *testing.T) {
	boom := errors.New("channel closed")
	_, err := queue.NewRabbitProducer(&fakeChannel{declareErr: boom}, "x", "y", quiet())
	assert.ErrorIs(t, err, boom)
}

func TestRabbitProducer_ListenerPublishes(t *testing.T) {
	ch := &fakeChannel{}
	p, err := queue.NewRabbitProducer(ch, "shop.events", "cart.changed", quiet())
	require.NoError(t, err)

	p.Listener()(usecase.CartEvent{Session: "s1", ProductID: "beef", Quantity: 2, Items: usecase.Quantities{"beef": 2}})

	require.Len(t, ch.sent, 1)
	got := ch.sent[0]
	assert.Equal(t, "shop.events", got.exchange)
	assert.Equal(t, "cart.changed", got.key)
	assert.Equal(t, "application/json", got.msg.ContentType)

	var msg queue.CartChangedMsg
	require.NoError(t, json.Unmarshal(got.msg.Body, &msg))
	assert.Equal(t, "s1", msg.Session)
	assert.Equal(t, []queue.CartItemMsg{{ProductID: "beef", Quantity: 2}}, msg.Items)
}

func TestRabbitProducer_ListenerSwallowsErrors(t *testing.T) {
	ch := &fakeChannel{publishErr: errors.New("blocked")}
	p, err := queue.NewRabbitProducer(ch, "", "", quiet())
	require.NoError(t, err)

	assert.NotPanics(t, func() { p.Listener()(usecase.CartEvent{Session: "s1", Cleared: true}) })
	assert.Empty(t, ch.sent)
}
