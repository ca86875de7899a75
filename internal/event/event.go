// Package event publishes domain events after the owning transaction commits.
package event

import (
	"context"
	"log/slog"
	"time"
)

const (
	ReservationCreated   = "reservation.created"
	ReservationConfirmed = "reservation.confirmed"
	ReservationCompleted = "reservation.completed"
	ReservationCancelled = "reservation.cancelled"
	ReservationDeleted   = "reservation.deleted"
	PaymentRecorded      = "payment.recorded"
	PaymentStatusChanged = "payment.status_changed"
	InvoiceCreated       = "invoice.created"
)

// Event is the envelope sent to the broker. Type doubles as the routing key.
type Event struct {
	Type          string         `json:"type"`
	ReservationID int64          `json:"reservation_id"`
	OccurredAt    time.Time      `json:"occurred_at"`
	Data          map[string]any `json:"data,omitempty"`
}

// New stamps an event with the current UTC time.
func New(eventType string, reservationID int64, data map[string]any) Event {
	return Event{
		Type:          eventType,
		ReservationID: reservationID,
		OccurredAt:    time.Now().UTC(),
		Data:          data,
	}
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// NopPublisher drops every event. It is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

// PublishAfterCommit sends e and only logs a failure. Domain operations have
// already committed when this runs, so the caller must not see the error.
func PublishAfterCommit(ctx context.Context, p Publisher, e Event) {
	if err := p.Publish(ctx, e); err != nil {
		slog.WarnContext(ctx, "failed to publish event",
			"type", e.Type,
			"reservation_id", e.ReservationID,
			"error", err,
		)
	}
}
