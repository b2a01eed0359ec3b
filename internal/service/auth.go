package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/msomdec/storefront/internal/domain"
	"github.com/msomdec/storefront/internal/metrics"
	"golang.org/x/crypto/bcrypt"
)

// AuthService registers users, verifies logins and resolves bearer tokens.
//
// Tokens are HS256-signed JWTs whose "jti" names a server-side session. A
// token stops working when its session expires, is revoked or is purged.
type AuthService struct {
	users      domain.UserRepository
	sessions   domain.SessionRepository
	jwtSecret  []byte
	bcryptCost int
	tokenTTL   time.Duration
	now        func() time.Time

	dummyOnce sync.Once
	dummyHash []byte
}

// NewAuthService creates a new AuthService.
func NewAuthService(users domain.UserRepository, sessions domain.SessionRepository, jwtSecret string, bcryptCost int, tokenTTL time.Duration) *AuthService {
	return &AuthService{
		users:      users,
		sessions:   sessions,
		jwtSecret:  []byte(jwtSecret),
		bcryptCost: bcryptCost,
		tokenTTL:   tokenTTL,
		now:        time.Now,
	}
}

// Register creates a new user account. Usernames are matched exactly, so
// "Alice" and "alice" are different accounts. fullName is optional.
func (s *AuthService) Register(ctx context.Context, username, fullName, password string) (*domain.User, error) {
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", domain.ErrInvalidInput)
	}
	if len(username) > 64 {
		return nil, fmt.Errorf("%w: username must be 64 characters or fewer", domain.ErrInvalidInput)
	}
	fullName = strings.TrimSpace(fullName)
	if len(fullName) > 128 {
		return nil, fmt.Errorf("%w: full name must be 128 characters or fewer", domain.ErrInvalidInput)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, fmt.Errorf("%w: password must be 72 bytes or fewer", domain.ErrInvalidInput)
		}
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Username:     username,
		FullName:     fullName,
		PasswordHash: string(hash),
	}
	if err := s.users.Create(ctx, user); err != nil {
		metrics.RecordAuthEvent("register", "rejected")
		return nil, passOr("create user", err, domain.ErrUsernameTaken)
	}

	metrics.RecordAuthEvent("register", "ok")
	return user, nil
}

// Login verifies credentials and opens a new session. Unknown usernames and
// wrong passwords both yield ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.Token, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Spend the same bcrypt work as a real comparison.
			_ = bcrypt.CompareHashAndPassword(s.dummy(), []byte(password))
			metrics.RecordAuthEvent("login", "rejected")
			return nil, domain.ErrInvalidCredentials
		}
		return nil, unavailable("get user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		metrics.RecordAuthEvent("login", "rejected")
		return nil, domain.ErrInvalidCredentials
	}

	id, err := uuid.NewRandom()
	if err != nil {
		return nil, fmt.Errorf("generate session id: %w", err)
	}

	now := s.now().UTC().Truncate(time.Second)
	session := &domain.Session{
		ID:        id.String(),
		UserID:    user.ID,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.tokenTTL),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, unavailable("create session", err)
	}

	value, err := s.sign(session)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	metrics.RecordAuthEvent("login", "ok")
	return &domain.Token{
		Value:     value,
		UserID:    user.ID,
		IssuedAt:  session.IssuedAt,
		ExpiresAt: session.ExpiresAt,
	}, nil
}

// Resolve maps a bearer token to its user. Every failure other than a storage
// outage is reported as ErrUnauthenticated.
func (s *AuthService) Resolve(ctx context.Context, token string) (*domain.User, error) {
	session, err := s.activeSession(ctx, token)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnauthenticated
		}
		return nil, unavailable("get user", err)
	}
	return user, nil
}

// Logout revokes the session behind token. Logging out twice with the same
// token fails the second time with ErrUnauthenticated.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	session, err := s.activeSession(ctx, token)
	if err != nil {
		return err
	}

	if err := s.sessions.Revoke(ctx, session.ID, s.now().UTC()); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrUnauthenticated
		}
		return unavailable("revoke session", err)
	}

	metrics.RecordAuthEvent("logout", "ok")
	return nil
}

// PurgeExpiredSessions deletes sessions that can no longer authenticate.
func (s *AuthService) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	n, err := s.sessions.DeleteInactive(ctx, s.now().UTC())
	if err != nil {
		return 0, unavailable("purge sessions", err)
	}
	metrics.AddSessionsPurged(n)
	return n, nil
}

func (s *AuthService) activeSession(ctx context.Context, token string) (*domain.Session, error) {
	if token == "" {
		return nil, domain.ErrUnauthenticated
	}

	claims, err := s.parse(token)
	if err != nil {
		return nil, domain.ErrUnauthenticated
	}

	session, err := s.sessions.GetByID(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnauthenticated
		}
		return nil, unavailable("get session", err)
	}

	if strconv.FormatInt(session.UserID, 10) != claims.Subject || !session.Active(s.now()) {
		return nil, domain.ErrUnauthenticated
	}
	return session, nil
}

func (s *AuthService) sign(session *domain.Session) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(session.UserID, 10),
		ID:        session.ID,
		IssuedAt:  jwt.NewNumericDate(session.IssuedAt),
		ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
}

func (s *AuthService) parse(token string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return s.jwtSecret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, err
	}
	if claims.ID == "" || claims.Subject == "" {
		return nil, errors.New("missing jti or sub claim")
	}
	return claims, nil
}

func (s *AuthService) dummy() []byte {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("storefront-dummy-password"), s.bcryptCost)
	})
	return s.dummyHash
}
