package queue

import (
	"context"
	"encoding/json"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/niveshpath/advisory-backend/internal/entity"
)

// UserDirectory resolves the user a notification should reach.
type UserDirectory interface {
	FindByID(ctx context.Context, id string) (*entity.User, error)
}

type MailNotifier interface {
	SendLeadAssigned(to, userName, leadName string) error
}

type WebhookNotifier interface {
	NotifyLeadEvent(ctx context.Context, payload LeadEventPayload) error
}

// Worker consumes lead events and fans them out to the notification
// channels. It is fully decoupled from the request path: a slow or failing
// notification never blocks a mutating request.
type Worker struct {
	Channel *amqp.Channel
	Users   UserDirectory
	Mail    MailNotifier
	Webhook WebhookNotifier
	Logger  *zap.Logger
}

func NewWorker(ch *amqp.Channel, users UserDirectory, mail MailNotifier, webhook WebhookNotifier, logger *zap.Logger) *Worker {
	return &Worker{
		Channel: ch,
		Users:   users,
		Mail:    mail,
		Webhook: webhook,
		Logger:  logger,
	}
}

func (w *Worker) Start(queueName string) {
	msgs, err := w.Channel.Consume(
		queueName,
		"",    // consumer
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		w.Logger.Fatal("rabbitmq consumer registration failed", zap.Error(err))
	}

	forever := make(chan bool)

	go func() {
		for d := range msgs {
			var payload LeadEventPayload
			if err := json.Unmarshal(d.Body, &payload); err != nil {
				w.Logger.Error("malformed lead event, sending to DLQ", zap.Error(err))
				d.Nack(false, false)
				continue
			}

			if err := w.processEvent(context.Background(), payload); err != nil {
				w.Logger.Error("lead event processing failed",
					zap.String("event", payload.Event),
					zap.String("lead_id", payload.LeadID),
					zap.Error(err))
				d.Nack(false, false)
			} else {
				d.Ack(false)
			}
		}
	}()

	w.Logger.Info("lead event worker running", zap.String("queue", queueName))
	<-forever
}

func (w *Worker) processEvent(ctx context.Context, payload LeadEventPayload) error {
	if w.Webhook != nil {
		if err := w.Webhook.NotifyLeadEvent(ctx, payload); err != nil {
			// webhook delivery is best effort, mail still goes out
			w.Logger.Warn("webhook notification failed",
				zap.String("lead_id", payload.LeadID), zap.Error(err))
		}
	}

	if w.Mail == nil || payload.AssignedTo == "" {
		return nil
	}

	user, err := w.Users.FindByID(ctx, payload.AssignedTo)
	if err != nil {
		return err
	}
	return w.Mail.SendLeadAssigned(user.Email, user.Name, payload.LeadName)
}
