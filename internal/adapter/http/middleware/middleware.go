package middleware

import (
	"net/http"
	"strings"
	"time"

	"reservation-sync/internal/core/ports"
	"reservation-sync/pkg/apperror"
	"reservation-sync/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	// Context keys
	CtxOperator  = "operator"
	CtxVenueIDs  = "venue_ids"
	CtxRequestID = "request_id"
	// CtxCreatedID lets a create handler expose the new resource id to the audit log.
	CtxCreatedID = "created_id"

	HeaderRequestID = "X-Request-ID"
)

// JWTAuth validates operator bearer tokens and stores the subject and venue
// scope in the gin context.
func JWTAuth(tokenSvc ports.TokenService, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		tokenStr, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok || tokenStr == "" {
			response.Error(c, apperror.ErrInvalidToken())
			c.Abort()
			return
		}

		claims, err := tokenSvc.Validate(tokenStr)
		if err != nil {
			log.Debug().Err(err).Str("path", c.Request.URL.Path).Msg("operator token rejected")
			response.Error(c, apperror.ErrInvalidToken())
			c.Abort()
			return
		}

		c.Set(CtxOperator, claims.Subject)
		c.Set(CtxVenueIDs, claims.VenueIDs)
		c.Next()
	}
}

// Operator returns the authenticated operator subject, if any.
func Operator(c *gin.Context) (string, bool) {
	v, ok := c.Get(CtxOperator)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok && s != ""
}

// VenueAllowed reports whether the operator token covers venueID.
// A token without venue claims covers every venue.
func VenueAllowed(c *gin.Context, venueID uuid.UUID) bool {
	v, ok := c.Get(CtxVenueIDs)
	if !ok {
		return false
	}
	ids, _ := v.([]uuid.UUID)
	if len(ids) == 0 {
		return true
	}
	for _, id := range ids {
		if id == venueID {
			return true
		}
	}
	return false
}

// AllVenues reports whether the operator token is unscoped.
func AllVenues(c *gin.Context) bool {
	v, ok := c.Get(CtxVenueIDs)
	if !ok {
		return false
	}
	ids, _ := v.([]uuid.UUID)
	return len(ids) == 0
}

// RequestID propagates the caller's X-Request-ID or assigns a new one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		c.Set(CtxRequestID, id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

// RequestLogger creates a middleware that logs every HTTP request.
func RequestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		status := c.Writer.Status()

		event := log.Info()
		if status >= http.StatusInternalServerError {
			event = log.Error()
		} else if status >= http.StatusBadRequest {
			event = log.Warn()
		}

		if id, ok := c.Get(CtxRequestID); ok {
			event = event.Interface("request_id", id)
		}
		if op, ok := Operator(c); ok {
			event = event.Str("operator", op)
		}
		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Str("route", c.FullPath()).
			Int("status", status).
			Dur("latency", latency).
			Str("client_ip", c.ClientIP()).
			Msg("http request")
	}
}

// Recovery creates a panic recovery middleware.
func Recovery(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error().Interface("panic", r).Str("path", c.Request.URL.Path).Msg("panic recovered")
				if !c.Writer.Written() {
					response.Error(c, apperror.New("SYS_001", "Internal server error", http.StatusInternalServerError))
				}
				c.Abort()
			}
		}()
		c.Next()
	}
}
