package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/dannynerezov/motor-mutual-sub001/internal/models"
)

// QuoteEvent is the message body published for each finished quote workflow.
type QuoteEvent struct {
	EventType    string                  `json:"event_type"` // quote.completed | quote.failed
	QuoteNumber  string                  `json:"quote_number,omitempty"`
	Registration string                  `json:"registration"`
	State        string                  `json:"state"`
	TotalPremium float64                 `json:"total_premium,omitempty"`
	FailureCode  models.QuoteFailureCode `json:"failure_code,omitempty"`
	OccurredAt   time.Time               `json:"occurred_at"`
}

// QuotePublisher publishes quote lifecycle events to RabbitMQ
type QuotePublisher struct {
	conn              *RabbitMQConnection
	messagesPublished int64
	messagesFailed    int64
}

func NewQuotePublisher(conn *RabbitMQConnection) *QuotePublisher {
	return &QuotePublisher{conn: conn}
}

// PublishQuoteCompleted publishes a quote.completed event.
func (p *QuotePublisher) PublishQuoteCompleted(ctx context.Context, vehicle models.VehicleIdentity, result *models.QuoteResult) error {
	return p.publish(ctx, QuoteEvent{
		EventType:    "quote.completed",
		QuoteNumber:  result.QuoteNumber,
		Registration: vehicle.Registration,
		State:        vehicle.State,
		TotalPremium: result.TotalPremium,
		OccurredAt:   time.Now(),
	})
}

// PublishQuoteFailed publishes a quote.failed event with the failure
// classification.
func (p *QuotePublisher) PublishQuoteFailed(ctx context.Context, vehicle models.VehicleIdentity, result *models.QuoteResult) error {
	return p.publish(ctx, QuoteEvent{
		EventType:    "quote.failed",
		Registration: vehicle.Registration,
		State:        vehicle.State,
		FailureCode:  result.FailureCode,
		OccurredAt:   time.Now(),
	})
}

func (p *QuotePublisher) publish(ctx context.Context, event QuoteEvent) error {
	_, err := p.conn.Channel.QueueDeclare(
		QuoteEventsQueue, // queue name
		true,             // durable
		false,            // delete when unused
		false,            // exclusive
		false,            // no-wait
		nil,              // arguments
	)
	if err != nil {
		p.messagesFailed++
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	body, err := json.Marshal(event)
	if err != nil {
		p.messagesFailed++
		return fmt.Errorf("failed to marshal quote event: %w", err)
	}

	err = p.conn.Channel.PublishWithContext(
		ctx,
		"",               // exchange
		QuoteEventsQueue, // routing key (queue name)
		false,            // mandatory
		false,            // immediate
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Body:         body,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		p.messagesFailed++
		return fmt.Errorf("failed to publish quote event: %w", err)
	}

	p.messagesPublished++
	slog.Info("Quote event published",
		"queue", QuoteEventsQueue,
		"event_type", event.EventType,
		"registration", event.Registration,
	)
	return nil
}
