package domain

import (
	"context"
	"time"
)

// User represents a registered customer.
type User struct {
	ID           int64
	Username     string
	FullName     string
	PasswordHash string
	CreatedAt    time.Time
}

// UserRepository defines persistence operations for users.
type UserRepository interface {
	// Create inserts the user and returns ErrUsernameTaken when the
	// username is already registered.
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
}
