package main

import (
	"context"
	"fmt"
	"time"

	"reservation-sync/config"
	"reservation-sync/internal/adapter/messaging/amqp"
	"reservation-sync/internal/adapter/provider"
	pgStorage "reservation-sync/internal/adapter/storage/postgres"
	redisStorage "reservation-sync/internal/adapter/storage/redis"
	"reservation-sync/internal/core/domain"
	"reservation-sync/internal/core/ports"
	"reservation-sync/internal/service"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// components holds the wired adapters and services.
type components struct {
	pool      *pgxpool.Pool
	rdb       *goredis.Client
	publisher *amqp.Publisher // nil when amqp.url is empty

	bookings     *pgStorage.BookingRepo
	reservations *pgStorage.ExternalReservationRepo
	feed         *redisStorage.ChangeFeed
	rateLimits   *redisStorage.RateLimitStore

	tokenSvc        ports.TokenService
	auditSvc        ports.AuditService
	mappingSvc      *service.MappingServiceImpl
	availabilitySvc ports.AvailabilityService
	syncSvc         *service.SyncServiceImpl
	webhookSvc      *service.WebhookServiceImpl

	healthCheckers []ports.HealthChecker
}

// close releases connections in reverse order of acquisition.
func (c *components) close(log zerolog.Logger) {
	if c.publisher != nil {
		if err := c.publisher.Close(); err != nil {
			log.Warn().Err(err).Msg("closing amqp publisher")
		}
	}
	if c.rdb != nil {
		if err := c.rdb.Close(); err != nil {
			log.Warn().Err(err).Msg("closing redis client")
		}
	}
	if c.pool != nil {
		c.pool.Close()
	}
}

// endpoints converts the providers config section for the adapter registry.
func endpoints(cfg *config.Config) map[domain.Provider]provider.Endpoint {
	out := make(map[domain.Provider]provider.Endpoint, len(cfg.Providers))
	for name, p := range cfg.Providers {
		if p.BaseURL == "" {
			continue
		}
		out[domain.Provider(name)] = provider.Endpoint{BaseURL: p.BaseURL, WebhookSecret: p.WebhookSecret}
	}
	return out
}

// providerClientTimeout is the ceiling for a single provider request. Callers
// set tighter context deadlines, so it must cover the longest of them.
func providerClientTimeout(cfg *config.Config) time.Duration {
	return max(cfg.Sync.ProviderTimeout, cfg.Availability.ProviderTimeout)
}

// wire connects to Postgres, Redis and (optionally) RabbitMQ and builds every service.
func wire(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*components, error) {
	c := &components{}

	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	c.pool = pool

	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		c.close(log)
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	c.rdb = rdb

	var publisher ports.NotificationPublisher
	if cfg.AMQP.URL != "" {
		p, err := amqp.NewPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange, log)
		if err != nil {
			c.close(log)
			return nil, fmt.Errorf("connect amqp: %w", err)
		}
		c.publisher = p
		publisher = p
	} else {
		log.Warn().Msg("amqp.url not set, notifications are stored but not fanned out")
	}

	// Repositories
	mappingRepo := pgStorage.NewMappingRepo(pool)
	c.reservations = pgStorage.NewExternalReservationRepo(pool)
	eventRepo := pgStorage.NewWebhookEventRepo(pool)
	c.bookings = pgStorage.NewBookingRepo(pool)
	capacityRepo := pgStorage.NewCapacityRepo(pool)
	notificationRepo := pgStorage.NewNotificationRepo(pool)
	auditRepo := pgStorage.NewAuditRepo(pool)

	// Redis stores
	cache := redisStorage.NewAvailabilityCache(rdb)
	c.feed = redisStorage.NewChangeFeed(rdb, log)
	c.rateLimits = redisStorage.NewRateLimitStore(rdb)

	// Core services
	encSvc, err := service.NewAESEncryptionService(cfg.AES.Key)
	if err != nil {
		c.close(log)
		return nil, fmt.Errorf("init encryption: %w", err)
	}
	sigSvc := service.NewHMACSignatureService()
	c.tokenSvc = service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)
	registry := provider.NewRegistry(endpoints(cfg), sigSvc, providerClientTimeout(cfg), log)

	// Business services
	c.auditSvc = service.NewAuditService(auditRepo, log)
	notifier := service.NewNotificationService(notificationRepo, publisher, log)
	c.mappingSvc = service.NewMappingService(mappingRepo, encSvc, registry, cfg.Sync.ProviderTimeout, log)
	c.availabilitySvc = service.NewAvailabilityService(
		mappingRepo, capacityRepo, c.bookings, cache, registry, encSvc,
		cfg.Availability.CacheTTL, cfg.Availability.ProviderTimeout, log,
	)
	c.syncSvc = service.NewSyncService(
		c.bookings, mappingRepo, c.reservations, registry, encSvc, notifier, c.feed,
		service.SyncOptions{
			Retry: domain.RetryPolicy{
				Base:        cfg.Sync.BackoffBase,
				Cap:         cfg.Sync.BackoffCap,
				MaxAttempts: cfg.Sync.MaxAttempts,
			},
			CallTimeout: cfg.Sync.ProviderTimeout,
			SweepBatch:  cfg.Sync.SweepBatch,
		},
		log,
	)
	c.webhookSvc = service.NewWebhookService(
		eventRepo, c.reservations, mappingRepo, c.bookings, registry, notifier, c.auditSvc, c.feed,
		service.WebhookOptions{HoldUnverified: cfg.Sync.UnverifiedPolicy == config.UnverifiedHold},
		log,
	)

	c.healthCheckers = []ports.HealthChecker{
		pgStorage.NewHealthCheck(pool),
		redisStorage.NewHealthCheck(rdb),
	}
	if c.publisher != nil {
		c.healthCheckers = append(c.healthCheckers, c.publisher)
	}

	return c, nil
}
