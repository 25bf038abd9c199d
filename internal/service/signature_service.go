package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"strings"

	"reservation-sync/internal/core/ports"
)

// HMACSignatureService implements ports.SignatureService using HMAC-SHA256.
type HMACSignatureService struct{}

// NewHMACSignatureService creates a new HMAC-SHA256 signature service.
func NewHMACSignatureService() *HMACSignatureService {
	return &HMACSignatureService{}
}

// Sign computes HMAC-SHA256 of body using secret, encoded as requested.
// Hex output is lowercase.
func (s *HMACSignatureService) Sign(secret string, body []byte, enc ports.SignatureEncoding) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	sum := mac.Sum(nil)
	if enc == ports.SignatureBase64 {
		return base64.StdEncoding.EncodeToString(sum)
	}
	return hex.EncodeToString(sum)
}

// Verify checks signature against HMAC-SHA256(secret, body).
// A "sha256=" prefix is accepted and hex is compared case-insensitively.
// An empty secret or signature never verifies.
func (s *HMACSignatureService) Verify(secret string, body []byte, signature string, enc ports.SignatureEncoding) bool {
	if secret == "" || signature == "" {
		return false
	}
	signature = strings.TrimPrefix(strings.TrimSpace(signature), "sha256=")
	expected := s.Sign(secret, body, enc)
	if enc != ports.SignatureBase64 {
		signature = strings.ToLower(signature)
	}
	// Constant-time comparison.
	return hmac.Equal([]byte(expected), []byte(signature))
}
