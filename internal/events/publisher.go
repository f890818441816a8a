package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/roadsmart/backend/internal/logger"
	"github.com/roadsmart/backend/internal/models"
)

// StatusChanged is published after a status transition has been committed.
type StatusChanged struct {
	Entity   models.EntityKind `json:"entity"`
	EntityID uint              `json:"entity_id"`
	From     string            `json:"from"`
	To       string            `json:"to"`
	ActorID  uint              `json:"actor_id"`
	At       time.Time         `json:"at"`
}

// RoutingKey is status.<entity>.<to>, e.g. status.report.in_progress.
func (e StatusChanged) RoutingKey() string {
	to := strings.ToLower(strings.ReplaceAll(e.To, " ", "_"))
	return fmt.Sprintf("status.%s.%s", e.Entity, to)
}

type Publisher interface {
	PublishStatusChanged(ctx context.Context, evt StatusChanged) error
}

// NopPublisher drops every event. It is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) PublishStatusChanged(context.Context, StatusChanged) error { return nil }

// AMQPPublisher publishes JSON events to a durable topic exchange.
type AMQPPublisher struct {
	conn     *amqp.Connection
	mu       sync.Mutex
	channel  *amqp.Channel
	exchange string
}

// Dial connects to RabbitMQ, retrying a few times with a growing backoff, and declares
// the exchange.
func Dial(url, exchange string) (*AMQPPublisher, error) {
	var conn *amqp.Connection
	var err error

	for i := 1; i <= 5; i++ {
		conn, err = amqp.Dial(url)
		if err == nil {
			break
		}
		logger.Warn("RabbitMQ connect attempt failed", map[string]interface{}{
			"attempt": i,
			"error":   err.Error(),
		})
		time.Sleep(time.Duration(i) * 2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ after retries: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	logger.Info("Connected to RabbitMQ", map[string]interface{}{"exchange": exchange})
	return &AMQPPublisher{conn: conn, channel: ch, exchange: exchange}, nil
}

func (p *AMQPPublisher) PublishStatusChanged(ctx context.Context, evt StatusChanged) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to marshal status event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.channel.PublishWithContext(ctx, p.exchange, evt.RoutingKey(), false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    evt.At,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish status event: %w", err)
	}
	return nil
}

func (p *AMQPPublisher) Close() {
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
	logger.Info("RabbitMQ connection closed", nil)
}
