package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	EventLeadCreated   = "lead.created"
	EventLeadAssigned  = "lead.assigned"
	EventStatusChanged = "lead.status_changed"
)

// LeadEventPayload is the message fanned out after a lead-affecting
// mutation. Notification delivery works off this payload alone; consumers
// must not need to read the lead back.
type LeadEventPayload struct {
	Event      string    `json:"event"`
	LeadID     string    `json:"lead_id"`
	LeadName   string    `json:"lead_name"`
	Phone      string    `json:"phone,omitempty"`
	Status     string    `json:"status,omitempty"`
	AssignedTo string    `json:"assigned_to,omitempty"` // user id to notify
	ActorID    string    `json:"actor_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

type RabbitMQProducer struct {
	Conn *amqp.Connection
	Ch   *amqp.Channel
}

func NewProducer(conn *amqp.Connection, ch *amqp.Channel) *RabbitMQProducer {
	return &RabbitMQProducer{Conn: conn, Ch: ch}
}

func (p *RabbitMQProducer) PublishLeadEvent(ctx context.Context, payload LeadEventPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal lead event: %w", err)
	}

	err = p.Ch.PublishWithContext(ctx,
		ExchangeName,
		RoutingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("publish lead event: %w", err)
	}
	return nil
}
