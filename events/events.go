// Package events announces order lifecycle changes to other systems, such
// as a kitchen display, over RabbitMQ.
package events

//go:generate mockgen -destination=mock_events/mock_publisher.go -package=mock_events pos-api/events Publisher

import (
	"context"
	"time"

	"pos-api/models"

	"github.com/shopspring/decimal"
)

// Type is the event name, also used as the AMQP routing key.
type Type string

const (
	OrderCreated Type = "order.created"
	OrderPaid    Type = "order.paid"
)

// Event is the JSON body published for an order change.
type Event struct {
	Type       Type                  `json:"type"`
	OrderID    uint                  `json:"orderId"`
	Code       string                `json:"code"`
	Status     models.OrderStatus    `json:"status"`
	Total      decimal.Decimal       `json:"total"`
	Method     *models.PaymentMethod `json:"method,omitempty"`
	ItemCount  int                   `json:"itemCount"`
	OccurredAt time.Time             `json:"occurredAt"`
}

// FromOrder builds an event of type t describing o.
func FromOrder(t Type, o *models.Order, at time.Time) Event {
	count := 0
	for _, it := range o.Items {
		count += it.Qty
	}
	return Event{
		Type:       t,
		OrderID:    o.ID,
		Code:       o.Code,
		Status:     o.Status,
		Total:      o.Total,
		Method:     o.Method,
		ItemCount:  count,
		OccurredAt: at.UTC(),
	}
}

// Publisher delivers events. Publishing happens after the database commit,
// so a failure never undoes an order or payment.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// NopPublisher drops every event. It is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
