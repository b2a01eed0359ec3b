package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/msomdec/storefront/internal/domain"
)

// sessionRepo implements domain.SessionRepository using SQLite. Timestamps
// are stored as unix seconds so expiry can be compared in SQL.
type sessionRepo struct {
	db *sql.DB
}

func (r *sessionRepo) Create(ctx context.Context, s *domain.Session) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions (id, user_id, issued_at, expires_at) VALUES (?, ?, ?, ?)`,
		s.ID, s.UserID, s.IssuedAt.Unix(), s.ExpiresAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (r *sessionRepo) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	var (
		s                   domain.Session
		issuedAt, expiresAt int64
		revokedAt           sql.NullInt64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, issued_at, expires_at, revoked_at FROM sessions WHERE id = ?`, id,
	).Scan(&s.ID, &s.UserID, &issuedAt, &expiresAt, &revokedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("query session: %w", err)
	}

	s.IssuedAt = time.Unix(issuedAt, 0).UTC()
	s.ExpiresAt = time.Unix(expiresAt, 0).UTC()
	if revokedAt.Valid {
		t := time.Unix(revokedAt.Int64, 0).UTC()
		s.RevokedAt = &t
	}
	return &s, nil
}

// Revoke marks the session revoked. Revoking an already revoked session keeps
// the original revocation time.
func (r *sessionRepo) Revoke(ctx context.Context, id string, at time.Time) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE sessions SET revoked_at = COALESCE(revoked_at, ?) WHERE id = ?`,
		at.Unix(), id,
	)
	if err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *sessionRepo) DeleteInactive(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE expires_at <= ? OR (revoked_at IS NOT NULL AND revoked_at <= ?)`,
		cutoff.Unix(), cutoff.Unix(),
	)
	if err != nil {
		return 0, fmt.Errorf("delete inactive sessions: %w", err)
	}
	return result.RowsAffected()
}
