package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session is the persisted gateway session: the upstream bearer token plus
// the cached student profile, keyed by session id in Redis.
type Session struct {
	ID            string         `json:"id"`
	UpstreamToken string         `json:"upstream_token"`
	Student       StudentProfile `json:"student"`
	CreatedAt     time.Time      `json:"created_at"`
	ExpiresAt     time.Time      `json:"expires_at"`
}

// SessionClaims are the gateway-issued JWT claims.
type SessionClaims struct {
	SessionID string `json:"sid"`
	StudentID string `json:"student_id"`
	jwt.RegisteredClaims
}
