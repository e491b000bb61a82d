// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrInvalidAdminKey = errors.New("invalid admin key")
	ErrInvalidToken    = errors.New("invalid token format")
)

// AdminScope is the message the admin key is derived from
const AdminScope = "celebration-admin"

// GenerateAdminKey creates an HMAC-based admin key for a scope.
// This is deterministic and verifiable
func GenerateAdminKey(scope, salt string) string {
	return sign(scope, salt)
}

// ValidateAdminKey checks if the provided admin key is valid for the scope
func ValidateAdminKey(scope, adminKey, salt string) error {
	expected := GenerateAdminKey(scope, salt)
	if !hmac.Equal([]byte(adminKey), []byte(expected)) {
		return ErrInvalidAdminKey
	}
	return nil
}

// GenerateSessionToken creates a random secure token for a browser session
func GenerateSessionToken() (string, error) {
	b := make([]byte, 24) // 192 bits
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	return strings.TrimRight(base64.URLEncoding.EncodeToString(b), "="), nil
}

// NewGuestID returns a fresh guest identifier
func NewGuestID() string {
	return uuid.NewString()
}

// SignGuest produces the cookie value "<guestID>.<mac>"
func SignGuest(guestID, salt string) string {
	return guestID + "." + sign(guestID, salt)
}

// VerifyGuest checks a SignGuest value and returns the guest ID
func VerifyGuest(token, salt string) (string, error) {
	guestID, mac, ok := strings.Cut(token, ".")
	if !ok || guestID == "" || mac == "" {
		return "", ErrInvalidToken
	}
	if _, err := uuid.Parse(guestID); err != nil {
		return "", ErrInvalidToken
	}
	if !hmac.Equal([]byte(mac), []byte(sign(guestID, salt))) {
		return "", ErrInvalidToken
	}
	return guestID, nil
}

// HashIP creates a one-way hash of an IP address for privacy
func HashIP(ip, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(ip))
	sum := h.Sum(nil)
	// first 8 bytes are enough to tell clients apart in logs
	return hex.EncodeToString(sum[:8])
}

// URL-safe base64 HMAC-SHA256 without padding
func sign(message, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(message))
	return strings.TrimRight(base64.URLEncoding.EncodeToString(h.Sum(nil)), "=")
}
