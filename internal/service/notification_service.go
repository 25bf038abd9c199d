package service

import (
	"context"
	"fmt"
	"time"

	"reservation-sync/internal/core/domain"
	"reservation-sync/internal/core/ports"
	"reservation-sync/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type notificationService struct {
	repo      ports.NotificationRepository
	publisher ports.NotificationPublisher
	log       zerolog.Logger
}

// NewNotificationService creates a notification service.
// Notifications are persisted first; publishing to delivery workers is best-effort.
// publisher may be nil when no broker is configured.
func NewNotificationService(repo ports.NotificationRepository, publisher ports.NotificationPublisher, log zerolog.Logger) ports.NotificationService {
	return &notificationService{repo: repo, publisher: publisher, log: log}
}

func (s *notificationService) CreateNotification(ctx context.Context, req ports.NotificationRequest) error {
	n := &domain.Notification{
		ID:        uuid.New(),
		UserID:    req.UserID,
		VenueID:   req.VenueID,
		Title:     req.Title,
		Body:      req.Body,
		DeepLink:  req.DeepLink,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, n); err != nil {
		return apperror.InternalError(fmt.Errorf("create notification: %w", err))
	}

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, n); err != nil {
			s.log.Warn().Err(err).Str("notification_id", n.ID.String()).Msg("notification publish failed; stored row remains for pickup")
		}
	}
	return nil
}
