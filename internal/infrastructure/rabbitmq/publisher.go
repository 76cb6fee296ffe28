// Package rabbitmq publica los eventos de inventario en un exchange topic.
package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jhoicas/sweetshop-api/internal/application/inventory"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

var _ inventory.EventPublisher = (*Publisher)(nil)

// channel es la parte de *amqp.Channel que usa el publisher.
type channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

const (
	dialTimeout   = 2 * time.Second
	redialBackoff = 5 * time.Second
)

// ErrRedialPending se devuelve mientras no venza la espera tras un dial fallido.
var ErrRedialPending = errors.New("rabbitmq: reconexión en espera")

// dialFunc abre conexión + canal. Se reemplaza en tests.
type dialFunc func(url string) (channel, func() error, error)

// amqpDialer acota TCP + handshake a timeout; amqp.Dial usa 30s por defecto.
func amqpDialer(timeout time.Duration) dialFunc {
	return func(url string) (channel, func() error, error) {
		conn, err := amqp.DialConfig(url, amqp.Config{
			Heartbeat: 10 * time.Second,
			Locale:    "en_US",
			Dial:      amqp.DefaultDial(timeout),
		})
		if err != nil {
			return nil, nil, fmt.Errorf("dial: %w", err)
		}
		ch, err := conn.Channel()
		if err != nil {
			_ = conn.Close()
			return nil, nil, fmt.Errorf("abrir canal: %w", err)
		}
		return ch, conn.Close, nil
	}
}

// Publisher mantiene una conexión perezosa; si una publicación falla, la próxima vuelve a conectar.
// Tras un dial fallido no se reintenta hasta que pase backoff: mientras tanto Publish
// devuelve ErrRedialPending sin tocar la red. Los mensajes son JSON persistentes con
// routing key = tipo de evento.
type Publisher struct {
	url      string
	exchange string
	log      zerolog.Logger
	dial     dialFunc
	backoff  time.Duration
	now      func() time.Time

	mu        sync.Mutex
	ch        channel
	closeConn func() error
	nextDial  time.Time
}

// NewPublisher construye el publisher sin conectar todavía.
func NewPublisher(url, exchange string, log zerolog.Logger) *Publisher {
	return &Publisher{
		url:      url,
		exchange: exchange,
		log:      log,
		dial:     amqpDialer(dialTimeout),
		backoff:  redialBackoff,
		now:      time.Now,
	}
}

// Connect abre la conexión y declara el exchange (durable, topic).
func (p *Publisher) Connect() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, err := p.channelLocked()
	return err
}

// Publish serializa el evento y lo envía. Los errores se registran y se devuelven; el llamador puede ignorarlos.
func (p *Publisher) Publish(ctx context.Context, event inventory.Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		p.log.Error().Err(err).Str("event", event.Type).Msg("rabbitmq: serializar evento")
		return err
	}
	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.ID,
		Type:         event.Type,
		Timestamp:    event.OccurredAt,
		Body:         body,
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	ch, err := p.channelLocked()
	if err != nil {
		p.log.Warn().Err(err).Str("event", event.Type).Msg("rabbitmq: sin conexión, evento descartado")
		return err
	}
	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := ch.PublishWithContext(pubCtx, p.exchange, event.Type, false, false, msg); err != nil {
		p.log.Warn().Err(err).Str("event", event.Type).Int64("sweet_id", event.SweetID).Msg("rabbitmq: publicación fallida")
		p.resetLocked()
		return err
	}
	p.log.Debug().Str("event", event.Type).Int64("sweet_id", event.SweetID).Msg("rabbitmq: evento publicado")
	return nil
}

// Close cierra canal y conexión.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resetLocked()
	return nil
}

func (p *Publisher) channelLocked() (channel, error) {
	if p.ch != nil {
		return p.ch, nil
	}
	if now := p.now(); now.Before(p.nextDial) {
		return nil, fmt.Errorf("%w (%s)", ErrRedialPending, p.nextDial.Sub(now).Round(time.Millisecond))
	}
	ch, closeConn, err := p.dial(p.url)
	if err != nil {
		p.nextDial = p.now().Add(p.backoff)
		return nil, err
	}
	if err := ch.ExchangeDeclare(p.exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		if closeConn != nil {
			_ = closeConn()
		}
		p.nextDial = p.now().Add(p.backoff)
		return nil, fmt.Errorf("declarar exchange %s: %w", p.exchange, err)
	}
	p.ch, p.closeConn, p.nextDial = ch, closeConn, time.Time{}
	return ch, nil
}

func (p *Publisher) resetLocked() {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.closeConn != nil {
		_ = p.closeConn()
	}
	p.ch, p.closeConn = nil, nil
}
