package handler

import (
	"reservation-sync/internal/adapter/http/middleware"
	redisStore "reservation-sync/internal/adapter/storage/redis"
	"reservation-sync/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// maxBodyBytes bounds operator and webhook request bodies.
const maxBodyBytes = 1 << 20

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	MappingSvc      ports.MappingService
	AvailabilitySvc ports.AvailabilityService
	SyncSvc         ports.SyncService
	WebhookSvc      ports.WebhookService
	TokenSvc        ports.TokenService
	Bookings        ports.BookingRepository
	Reservations    ports.ExternalReservationRepository
	ChangeFeed      ports.ChangeFeed
	RateLimitStore  *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers  []ports.HealthChecker
	AuditSvc        ports.AuditService // nil = audit logging disabled
	Mode            string
	Logger          zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	if deps.Mode != "" {
		gin.SetMode(deps.Mode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(maxBodyBytes))

	if deps.AuditSvc != nil {
		r.Use(middleware.AuditLog(deps.AuditSvc))
	}

	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	swagger := r.Group("/swagger")
	{
		swagger.GET("", SwaggerUI)
		swagger.GET("/spec", SwaggerSpec)
	}

	rules := middleware.DefaultRateLimitRules()
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	// --- Provider webhooks (signature checked by the service) ---
	webhookHandler := NewWebhookHandler(deps.WebhookSvc)
	r.POST("/webhooks/:provider", rl("webhooks"), webhookHandler.Receive)

	// --- Operator API (JWT) ---
	v1 := r.Group("/api/v1", middleware.JWTAuth(deps.TokenSvc, deps.Logger))
	read, write := rl("operator_read"), rl("operator_write")
	writeJSON := middleware.RequireJSON()

	mappingHandler := NewMappingHandler(deps.MappingSvc)
	mappings := v1.Group("/mappings")
	{
		mappings.POST("", write, writeJSON, mappingHandler.Create)
		mappings.GET("/:id", read, mappingHandler.Get)
		mappings.PATCH("/:id", write, writeJSON, mappingHandler.Update)
		mappings.DELETE("/:id", write, mappingHandler.Delete)
		mappings.POST("/:id/test", write, mappingHandler.TestConnection)
	}

	availabilityHandler := NewAvailabilityHandler(deps.AvailabilitySvc)
	syncHandler := NewSyncHandler(deps.SyncSvc, deps.Bookings, deps.Reservations, deps.ChangeFeed, deps.Logger)

	venues := v1.Group("/venues/:id")
	{
		venues.GET("/mappings", read, mappingHandler.ListByVenue)
		venues.GET("/availability", rl("availability"), availabilityHandler.Get)
		venues.GET("/external-reservations", read, syncHandler.ListByVenue)
		venues.GET("/sync-stats", read, syncHandler.Stats)
	}

	bookings := v1.Group("/bookings/:id")
	{
		bookings.POST("/sync", write, writeJSON, syncHandler.SyncBooking)
		bookings.GET("/external-reservation", read, syncHandler.GetExternalReservation)
		bookings.GET("/external-reservation/stream", read, syncHandler.StreamExternalReservation)
	}

	v1.POST("/external-reservations/:id/retry", write, syncHandler.Retry)

	events := v1.Group("/webhook-events")
	{
		events.GET("", read, webhookHandler.ListEvents)
		events.POST("/:id/replay", write, webhookHandler.Replay)
	}

	return r
}
