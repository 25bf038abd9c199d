package amqp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"reservation-sync/internal/core/domain"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// RoutingKeyNotificationCreated is the topic for every stored notification.
const RoutingKeyNotificationCreated = "notification.created"

// channel is the subset of *amqp.Channel the publisher needs.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher implements ports.NotificationPublisher over a RabbitMQ topic exchange.
type Publisher struct {
	conn     *amqp.Connection
	ch       channel
	exchange string
	log      zerolog.Logger
}

// NewPublisher dials the broker and declares a durable topic exchange.
func NewPublisher(url, exchange string, log zerolog.Logger) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	log.Info().Str("exchange", exchange).Msg("RabbitMQ publisher ready")
	return &Publisher{conn: conn, ch: ch, exchange: exchange, log: log}, nil
}

// notificationMessage is the wire form consumed by delivery workers.
type notificationMessage struct {
	ID        string    `json:"id"`
	UserID    *string   `json:"user_id,omitempty"`
	VenueID   *string   `json:"venue_id,omitempty"`
	Audience  string    `json:"audience"` // guest or staff
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	DeepLink  string    `json:"deep_link,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func toMessage(n *domain.Notification) notificationMessage {
	msg := notificationMessage{
		ID:        n.ID.String(),
		Audience:  "staff",
		Title:     n.Title,
		Body:      n.Body,
		DeepLink:  n.DeepLink,
		CreatedAt: n.CreatedAt,
	}
	if n.UserID != nil {
		s := n.UserID.String()
		msg.UserID = &s
		msg.Audience = "guest"
	}
	if n.VenueID != nil {
		s := n.VenueID.String()
		msg.VenueID = &s
	}
	return msg
}

// Publish sends a persistent JSON message for n.
func (p *Publisher) Publish(ctx context.Context, n *domain.Notification) error {
	body, err := json.Marshal(toMessage(n))
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	err = p.ch.PublishWithContext(ctx, p.exchange, RoutingKeyNotificationCreated, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    n.ID.String(),
		Timestamp:    n.CreatedAt,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish notification: %w", err)
	}
	p.log.Debug().Str("notification_id", n.ID.String()).Msg("notification published")
	return nil
}

// Close shuts the channel and connection down.
func (p *Publisher) Close() error {
	var errs []error
	if p.ch != nil {
		errs = append(errs, p.ch.Close())
	}
	if p.conn != nil {
		errs = append(errs, p.conn.Close())
	}
	return errors.Join(errs...)
}

// Ping reports whether the broker connection is still open.
func (p *Publisher) Ping(_ context.Context) error {
	if p.conn == nil || p.conn.IsClosed() {
		return errors.New("amqp connection closed")
	}
	return nil
}

// Name returns the dependency name.
func (p *Publisher) Name() string {
	return "amqp"
}
