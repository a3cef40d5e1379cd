package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRateLimiter(start time.Time) (*RateLimitService, *time.Time) {
	now := start
	s := NewRateLimitService(RateLimitConfig{
		MaxEmailFailures: 2,
		EmailWindow:      10 * time.Minute,
		MaxIPFailures:    3,
		IPWindow:         time.Hour,
	})
	s.now = func() time.Time { return now }
	return s, &now
}

func TestCheckLoginRateLimit_NoFailures(t *testing.T) {
	s, _ := newTestRateLimiter(time.Now())
	assert.NoError(t, s.CheckLoginRateLimit("admin@asgtransit.cr", "203.0.113.9"))
}

func TestCheckLoginRateLimit_EmailExceeded(t *testing.T) {
	s, _ := newTestRateLimiter(time.Now())

	s.RecordLoginFailure("Admin@asgtransit.cr", "203.0.113.9")
	assert.NoError(t, s.CheckLoginRateLimit("admin@asgtransit.cr", "203.0.113.9"))

	s.RecordLoginFailure("admin@asgtransit.cr", "203.0.113.9")
	err := s.CheckLoginRateLimit("admin@asgtransit.cr", "203.0.113.9")

	var rateErr *RateLimitError
	require.True(t, errors.As(err, &rateErr))
	assert.Equal(t, "email", rateErr.Type)
}

func TestCheckLoginRateLimit_IPExceeded(t *testing.T) {
	s, _ := newTestRateLimiter(time.Now())

	s.RecordLoginFailure("a@asgtransit.cr", "203.0.113.9")
	s.RecordLoginFailure("b@asgtransit.cr", "203.0.113.9")
	s.RecordLoginFailure("c@asgtransit.cr", "203.0.113.9")

	err := s.CheckLoginRateLimit("d@asgtransit.cr", "203.0.113.9")
	var rateErr *RateLimitError
	require.True(t, errors.As(err, &rateErr))
	assert.Equal(t, "ip", rateErr.Type)

	assert.NoError(t, s.CheckLoginRateLimit("d@asgtransit.cr", "198.51.100.7"))
}

func TestCheckLoginRateLimit_WindowExpires(t *testing.T) {
	s, now := newTestRateLimiter(time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC))

	s.RecordLoginFailure("admin@asgtransit.cr", "")
	s.RecordLoginFailure("admin@asgtransit.cr", "")
	require.Error(t, s.CheckLoginRateLimit("admin@asgtransit.cr", ""))

	*now = now.Add(11 * time.Minute)
	assert.NoError(t, s.CheckLoginRateLimit("admin@asgtransit.cr", ""))
}

func TestResetLogin(t *testing.T) {
	s, _ := newTestRateLimiter(time.Now())

	s.RecordLoginFailure("admin@asgtransit.cr", "")
	s.RecordLoginFailure("admin@asgtransit.cr", "")
	s.ResetLogin("ADMIN@asgtransit.cr")

	assert.NoError(t, s.CheckLoginRateLimit("admin@asgtransit.cr", ""))
}

func TestDefaultRateLimitConfig(t *testing.T) {
	config := DefaultRateLimitConfig()
	assert.Equal(t, 5, config.MaxEmailFailures)
	assert.Equal(t, 15*time.Minute, config.EmailWindow)
	assert.Equal(t, 20, config.MaxIPFailures)
	assert.Equal(t, time.Hour, config.IPWindow)
}
