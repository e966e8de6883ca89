package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"property-explorer/internal/contextkeys"
	"property-explorer/internal/core/domain"
	"property-explorer/internal/core/port"
	"property-explorer/pkg/rabbitmq/rabbitmq_producer"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	searchPerformedEventType    = "SearchPerformedEvent"
	searchPerformedEventVersion = "1.0.0"
	publishTimeout              = 10 * time.Second
)

// MessagePublisher - то, что адаптеру нужно от производителя.
type MessagePublisher interface {
	Publish(ctx context.Context, routingKey string, msg amqp.Publishing) error
}

var _ MessagePublisher = (*rabbitmq_producer.Publisher)(nil)

// SearchEventPublisher отправляет события SearchPerformed в RabbitMQ.
type SearchEventPublisher struct {
	producer   MessagePublisher
	routingKey string
}

var _ port.SearchEventPublisherPort = (*SearchEventPublisher)(nil)

func NewSearchEventPublisher(producer MessagePublisher, routingKey string) (*SearchEventPublisher, error) {
	if producer == nil {
		return nil, fmt.Errorf("producer cannot be nil")
	}
	if routingKey == "" {
		return nil, fmt.Errorf("routingKey cannot be empty")
	}
	return &SearchEventPublisher{producer: producer, routingKey: routingKey}, nil
}

func (a *SearchEventPublisher) PublishSearchPerformed(ctx context.Context, event domain.SearchPerformedEvent) error {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component":   "SearchEventPublisher",
		"routing_key": a.routingKey,
		"session_id":  event.SessionID,
	})

	msg, err := buildSearchPerformedMessage(ctx, event)
	if err != nil {
		logger.Error("Failed to build search event", err, nil)
		return err
	}

	publishCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := a.producer.Publish(publishCtx, a.routingKey, msg); err != nil {
		logger.Error("Failed to publish search event", err, nil)
		return err
	}

	logger.Debug("Search event published", port.Fields{"message_id": msg.MessageId, "total_count": event.TotalCount})
	return nil
}

func buildSearchPerformedMessage(ctx context.Context, event domain.SearchPerformedEvent) (amqp.Publishing, error) {
	body, err := json.Marshal(event)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("failed to marshal search event: %w", err)
	}

	timestamp := event.OccurredAt
	if timestamp.IsZero() {
		timestamp = time.Now().UTC()
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.NewString(),
		Timestamp:    timestamp,
		Type:         searchPerformedEventType,
		Headers: amqp.Table{
			"event-type":    searchPerformedEventType,
			"event-version": searchPerformedEventVersion,
		},
	}

	if traceID := contextkeys.TraceIDFromContext(ctx); traceID != "" {
		msg.Headers["x-trace-id"] = traceID
	}
	return msg, nil
}
