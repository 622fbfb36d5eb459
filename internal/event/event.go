package event

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// Envelope is the wire format shared by every driver. Metadata carries the
// propagated trace context of the publisher.
type Envelope struct {
	ID         uuid.UUID         `json:"id"`
	Type       string            `json:"type"`
	OccurredAt time.Time         `json:"occurred_at"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	Payload    json.RawMessage   `json:"payload"`
}

type OrderCreated struct {
	OrderID    uuid.UUID       `json:"order_id"`
	UserID     uuid.UUID       `json:"user_id"`
	TotalPrice decimal.Decimal `json:"total_price"`
	ItemCount  int             `json:"item_count"`
	CreatedAt  time.Time       `json:"created_at"`
}

type Handler func(c context.Context, e Envelope) error

type Publisher interface {
	Publish(c context.Context, key string, e Envelope) error
	Close() error
}

type Subscriber interface {
	// Subscribe blocks, calling h for every received envelope until c is done.
	Subscribe(c context.Context, h Handler) error
	Close() error
}

func NewEnvelope(c context.Context, eventType string, payload any) (Envelope, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("failed marshaling %s payload with error=%w", eventType, err)
	}
	metadata := map[string]string{}
	otel.GetTextMapPropagator().Inject(c, propagation.MapCarrier(metadata))
	return Envelope{
		ID:         uuid.New(),
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
		Metadata:   metadata,
		Payload:    b,
	}, nil
}

func (e Envelope) Decode(v any) error {
	if err := json.Unmarshal(e.Payload, v); err != nil {
		return fmt.Errorf("failed unmarshaling %s payload with error=%w", e.Type, err)
	}
	return nil
}

// Context returns c carrying the trace context stored in the envelope metadata.
func (e Envelope) Context(c context.Context) context.Context {
	if len(e.Metadata) == 0 {
		return c
	}
	return otel.GetTextMapPropagator().Extract(c, propagation.MapCarrier(e.Metadata))
}

func Marshal(e Envelope) ([]byte, error) {
	return json.Marshal(e)
}

func Unmarshal(b []byte) (Envelope, error) {
	e := Envelope{}
	if err := json.Unmarshal(b, &e); err != nil {
		return Envelope{}, fmt.Errorf("failed unmarshaling envelope with error=%w", err)
	}
	return e, nil
}
