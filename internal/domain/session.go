package domain

import (
	"context"
	"time"
)

// Session is the server-side record behind a bearer token. A token is only
// honoured while its session exists, is not revoked and has not expired.
type Session struct {
	ID        string
	UserID    int64
	IssuedAt  time.Time
	ExpiresAt time.Time
	RevokedAt *time.Time
}

// Active reports whether the session can authenticate requests at now.
func (s *Session) Active(now time.Time) bool {
	return s.RevokedAt == nil && now.Before(s.ExpiresAt)
}

// Token is the credential returned by a successful login.
type Token struct {
	Value     string
	UserID    int64
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type SessionRepository interface {
	Create(ctx context.Context, session *Session) error
	GetByID(ctx context.Context, id string) (*Session, error)
	Revoke(ctx context.Context, id string, at time.Time) error
	// DeleteInactive removes sessions that expired or were revoked before the cutoff.
	DeleteInactive(ctx context.Context, cutoff time.Time) (int64, error)
}
