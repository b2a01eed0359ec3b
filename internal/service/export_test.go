package service

import "time"

// SetClock replaces the time source used for token issue and expiry checks.
func (s *AuthService) SetClock(now func() time.Time) {
	s.now = now
}
