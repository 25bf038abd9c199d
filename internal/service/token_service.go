package service

import (
	"fmt"
	"time"

	"reservation-sync/internal/core/ports"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// JWTTokenService implements ports.TokenService using HS256 JWT.
// Tokens authenticate venue operators and staff tooling on the operator API.
type JWTTokenService struct {
	secret []byte
	expiry time.Duration
	issuer string
}

// NewJWTTokenService creates a new JWT token service.
func NewJWTTokenService(secret string, expiry time.Duration, issuer string) *JWTTokenService {
	return &JWTTokenService{
		secret: []byte(secret),
		expiry: expiry,
		issuer: issuer,
	}
}

// operatorClaims is the JWT body of an operator token.
type operatorClaims struct {
	Venues []string `json:"venues,omitempty"`
	jwt.RegisteredClaims
}

// Generate creates a signed JWT for an operator. An empty venue list grants all venues.
func (s *JWTTokenService) Generate(subject string, venueIDs []uuid.UUID) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.expiry)

	venues := make([]string, 0, len(venueIDs))
	for _, id := range venueIDs {
		venues = append(venues, id.String())
	}

	claims := operatorClaims{
		Venues: venues,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("signing token: %w", err)
	}
	return tokenString, expiresAt, nil
}

// Validate parses and validates a JWT token, returning the claims.
func (s *JWTTokenService) Validate(tokenString string) (*ports.TokenClaims, error) {
	claims := &operatorClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithIssuer(s.issuer))
	if err != nil {
		return nil, fmt.Errorf("parsing token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("missing subject claim")
	}

	venueIDs := make([]uuid.UUID, 0, len(claims.Venues))
	for _, v := range claims.Venues {
		id, err := uuid.Parse(v)
		if err != nil {
			return nil, fmt.Errorf("invalid venue ID in token: %w", err)
		}
		venueIDs = append(venueIDs, id)
	}

	return &ports.TokenClaims{
		Subject:  claims.Subject,
		VenueIDs: venueIDs,
	}, nil
}
