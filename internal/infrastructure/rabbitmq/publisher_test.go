package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/jhoicas/sweetshop-api/internal/application/inventory"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type published struct {
	exchange string
	key      string
	msg      amqp.Publishing
}

type fakeChannel struct {
	declared   []string
	sent       []published
	publishErr error
	closed     bool
}

func (f *fakeChannel) ExchangeDeclare(name, kind string, durable, _, _, _ bool, _ amqp.Table) error {
	f.declared = append(f.declared, name+"/"+kind)
	return nil
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.sent = append(f.sent, published{exchange: exchange, key: key, msg: msg})
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func newTestPublisher(dials *int, channels *[]*fakeChannel, dialErr error) *Publisher {
	p := NewPublisher("amqp://test", "sweetshop.inventory", zerolog.Nop())
	p.dial = func(string) (channel, func() error, error) {
		*dials++
		if dialErr != nil {
			return nil, nil, dialErr
		}
		ch := &fakeChannel{}
		*channels = append(*channels, ch)
		return ch, func() error { return nil }, nil
	}
	return p
}

func sampleEvent() inventory.Event {
	return inventory.Event{
		ID:         "evt-1",
		Type:       inventory.EventPurchased,
		SweetID:    7,
		SweetName:  "Chocolate Bar",
		Category:   "Chocolate",
		Quantity:   10,
		Remaining:  90,
		OccurredAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestPublisher_PublicaJSONPersistente(t *testing.T) {
	var dials int
	var channels []*fakeChannel
	p := newTestPublisher(&dials, &channels, nil)

	require.NoError(t, p.Publish(context.Background(), sampleEvent()))
	require.NoError(t, p.Publish(context.Background(), sampleEvent()))

	assert.Equal(t, 1, dials, "la conexión se reutiliza")
	require.Len(t, channels, 1)
	assert.Equal(t, []string{"sweetshop.inventory/topic"}, channels[0].declared)
	require.Len(t, channels[0].sent, 2)

	sent := channels[0].sent[0]
	assert.Equal(t, "sweetshop.inventory", sent.exchange)
	assert.Equal(t, "sweet.purchased", sent.key)
	assert.Equal(t, amqp.Persistent, sent.msg.DeliveryMode)
	assert.Equal(t, "application/json", sent.msg.ContentType)

	var body map[string]any
	require.NoError(t, json.Unmarshal(sent.msg.Body, &body))
	assert.Equal(t, "Chocolate Bar", body["sweet_name"])
	assert.EqualValues(t, 90, body["remaining"])
}

func TestPublisher_ReconectaTrasFallo(t *testing.T) {
	var dials int
	var channels []*fakeChannel
	p := newTestPublisher(&dials, &channels, nil)

	require.NoError(t, p.Connect())
	channels[0].publishErr = errors.New("channel closed")

	assert.Error(t, p.Publish(context.Background(), sampleEvent()))
	assert.True(t, channels[0].closed)

	require.NoError(t, p.Publish(context.Background(), sampleEvent()))
	assert.Equal(t, 2, dials)
	assert.Len(t, channels[1].sent, 1)
}

func TestPublisher_SinBroker(t *testing.T) {
	var dials int
	var channels []*fakeChannel
	p := newTestPublisher(&dials, &channels, errors.New("connection refused"))

	assert.Error(t, p.Connect())
	assert.Error(t, p.Publish(context.Background(), sampleEvent()))
	assert.NoError(t, p.Close())
}

func TestPublisher_EsperaEntreReconexiones(t *testing.T) {
	clock := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	var dials int
	p := NewPublisher("amqp://test", "sweetshop.inventory", zerolog.Nop())
	p.now = func() time.Time { return clock }
	p.dial = func(string) (channel, func() error, error) {
		dials++
		return nil, nil, errors.New("connection refused")
	}

	assert.Error(t, p.Publish(context.Background(), sampleEvent()))
	for range 5 {
		assert.ErrorIs(t, p.Publish(context.Background(), sampleEvent()), ErrRedialPending)
	}
	assert.Equal(t, 1, dials, "un solo dial por intervalo")

	clock = clock.Add(redialBackoff)
	p.dial = func(string) (channel, func() error, error) {
		dials++
		return &fakeChannel{}, func() error { return nil }, nil
	}
	require.NoError(t, p.Publish(context.Background(), sampleEvent()))
	assert.Equal(t, 2, dials)
}

func TestAMQPDialer_BrokerQueNoResponde(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	held := make(chan net.Conn, 1)
	go func() {
		// Acepta el TCP pero nunca contesta el handshake AMQP.
		conn, err := ln.Accept()
		if err == nil {
			held <- conn
		}
	}()
	defer func() {
		select {
		case conn := <-held:
			conn.Close()
		default:
		}
	}()

	dial := amqpDialer(200 * time.Millisecond)
	start := time.Now()
	_, _, err = dial("amqp://guest:guest@" + ln.Addr().String() + "/")
	assert.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
}
