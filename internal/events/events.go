package events

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Event types published after an engine mutation commits.
const (
	TypeOrderCreated       = "order.created"
	TypeOrderItemsAdded    = "order.items_added"
	TypeOrderStatusChanged = "order.status_changed"
	TypeOrderPaymentAdded  = "order.payment_added"
	TypeOrderCompleted     = "order.completed"
)

type Event struct {
	ID         uuid.UUID `json:"id"`
	Type       string    `json:"type"`
	OrderID    int64     `json:"orderId"`
	Status     string    `json:"status"`
	Balance    string    `json:"balance"`
	ActorID    int64     `json:"actorId,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

func New(eventType string, orderID int64, status, balance string, actorID int64) Event {
	return Event{
		ID:         uuid.New(),
		Type:       eventType,
		OrderID:    orderID,
		Status:     status,
		Balance:    balance,
		ActorID:    actorID,
		OccurredAt: time.Now().UTC(),
	}
}

// Publisher delivers committed order events to a sink. Implementations must be
// safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

// Multi fans an event out to every publisher and joins their errors.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, e Event) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
