package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"reservation-sync/internal/core/domain"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// ChangeFeed implements ports.ChangeFeed over Redis pub/sub. Every change to
// an external reservation is published on external_reservations:<booking_id>.
type ChangeFeed struct {
	client goredis.UniversalClient
	prefix string
	buffer int
	log    zerolog.Logger
}

// NewChangeFeed creates a Redis-backed change feed.
func NewChangeFeed(client goredis.UniversalClient, log zerolog.Logger) *ChangeFeed {
	return &ChangeFeed{
		client: client,
		prefix: "external_reservations:",
		buffer: 16,
		log:    log,
	}
}

func (f *ChangeFeed) channel(bookingID uuid.UUID) string {
	return f.prefix + bookingID.String()
}

// Publish sends the JSON form of r to its booking's channel.
// Rows without a booking have no channel and are skipped.
func (f *ChangeFeed) Publish(ctx context.Context, r *domain.ExternalReservation) error {
	if r.BookingID == nil {
		return nil
	}
	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal change: %w", err)
	}
	if err := f.client.Publish(ctx, f.channel(*r.BookingID), payload).Err(); err != nil {
		return fmt.Errorf("redis publish change: %w", err)
	}
	return nil
}

// Subscribe listens on a booking's channel. The returned channel closes when
// ctx ends or the stop function is called. Slow readers drop messages.
func (f *ChangeFeed) Subscribe(ctx context.Context, bookingID uuid.UUID) (<-chan []byte, func(), error) {
	ps := f.client.Subscribe(ctx, f.channel(bookingID))
	// Wait for the subscription to be confirmed so no publish is missed.
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, nil, fmt.Errorf("redis subscribe: %w", err)
	}

	out := make(chan []byte, f.buffer)
	done := make(chan struct{})
	var once sync.Once
	stop := func() {
		once.Do(func() {
			close(done)
			_ = ps.Close()
		})
	}

	go func() {
		defer close(out)
		msgs := ps.Channel()
		for {
			select {
			case <-ctx.Done():
				stop()
				return
			case <-done:
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				select {
				case out <- []byte(msg.Payload):
				default:
					f.log.Warn().Str("booking_id", bookingID.String()).Msg("change feed subscriber lagging, message dropped")
				}
			}
		}
	}()

	return out, stop, nil
}
