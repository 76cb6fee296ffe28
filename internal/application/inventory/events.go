package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/sweetshop-api/internal/domain/entity"
)

// Tipos de evento (routing keys).
const (
	EventPurchased = "sweet.purchased"
	EventRestocked = "sweet.restocked"
	EventLowStock  = "sweet.low_stock"
)

// Event movimiento de stock confirmado.
type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	SweetID    int64     `json:"sweet_id"`
	SweetName  string    `json:"sweet_name"`
	Category   string    `json:"category"`
	Quantity   int       `json:"quantity"`  // unidades movidas (0 en low_stock)
	Remaining  int       `json:"remaining"` // stock luego del movimiento
	OccurredAt time.Time `json:"occurred_at"`
}

func newEvent(typ string, s *entity.Sweet, moved int, at time.Time) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       typ,
		SweetID:    s.ID,
		SweetName:  s.Name,
		Category:   s.Category,
		Quantity:   moved,
		Remaining:  s.Quantity,
		OccurredAt: at.UTC(),
	}
}

// NopPublisher descarta los eventos.
type NopPublisher struct{}

// Publish no hace nada.
func (NopPublisher) Publish(context.Context, Event) error { return nil }

// FanOut reparte cada evento a varios publishers y une sus errores.
type FanOut []EventPublisher

// Publish entrega el evento a todos los publishers aunque alguno falle.
func (f FanOut) Publish(ctx context.Context, event Event) error {
	var errs []error
	for _, p := range f {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
