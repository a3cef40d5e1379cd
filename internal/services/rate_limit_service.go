package services

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

// RateLimitConfig holds login rate limiting configuration
type RateLimitConfig struct {
	MaxEmailFailures int           // Max failed logins per email
	EmailWindow      time.Duration // Time window for the email limit
	MaxIPFailures    int           // Max failed logins per IP
	IPWindow         time.Duration // Time window for the IP limit
}

// DefaultRateLimitConfig returns the default rate limit configuration
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		MaxEmailFailures: 5,                // 5 failures
		EmailWindow:      15 * time.Minute, // per 15 minutes
		MaxIPFailures:    20,               // 20 failures
		IPWindow:         1 * time.Hour,    // per hour
	}
}

// RateLimitError represents a rate limit exceeded error
type RateLimitError struct {
	Message    string
	RetryAfter time.Time
	Type       string // "email" or "ip"
}

func (e *RateLimitError) Error() string {
	return e.Message
}

type failureWindow struct {
	count int
	ends  time.Time
}

// RateLimitService throttles admin login attempts. Failures are counted in
// memory per email and per client IP; a success clears the email counter.
type RateLimitService struct {
	config   RateLimitConfig
	failures *cache.Cache
	mu       sync.Mutex
	now      func() time.Time
}

// NewRateLimitService creates a new rate limit service
func NewRateLimitService(config RateLimitConfig) *RateLimitService {
	return &RateLimitService{
		config:   config,
		failures: cache.New(config.IPWindow, 10*time.Minute),
		now:      time.Now,
	}
}

// CheckLoginRateLimit returns a *RateLimitError when email or ip has too
// many recent failures
func (s *RateLimitService) CheckLoginRateLimit(email, ip string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if email != "" {
		if w := s.window(emailKey(email)); w != nil && w.count >= s.config.MaxEmailFailures {
			return &RateLimitError{
				Message:    fmt.Sprintf("Too many failed logins for this account. Please try again after %s", w.ends.Format("15:04:05")),
				RetryAfter: w.ends,
				Type:       "email",
			}
		}
	}

	if ip != "" {
		if w := s.window(ipKey(ip)); w != nil && w.count >= s.config.MaxIPFailures {
			return &RateLimitError{
				Message:    fmt.Sprintf("Too many failed logins from this IP address. Please try again after %s", w.ends.Format("15:04:05")),
				RetryAfter: w.ends,
				Type:       "ip",
			}
		}
	}

	return nil
}

// RecordLoginFailure counts a failed login against email and ip
func (s *RateLimitService) RecordLoginFailure(email, ip string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if email != "" {
		s.increment(emailKey(email), s.config.EmailWindow)
	}
	if ip != "" {
		s.increment(ipKey(ip), s.config.IPWindow)
	}
}

// ResetLogin clears the failure count of email after a successful login
func (s *RateLimitService) ResetLogin(email string) {
	s.failures.Delete(emailKey(email))
}

func (s *RateLimitService) window(key string) *failureWindow {
	value, found := s.failures.Get(key)
	if !found {
		return nil
	}
	w := value.(*failureWindow)
	if !s.now().Before(w.ends) {
		s.failures.Delete(key)
		return nil
	}
	return w
}

func (s *RateLimitService) increment(key string, window time.Duration) {
	if w := s.window(key); w != nil {
		w.count++
		return
	}
	ends := s.now().Add(window)
	s.failures.Set(key, &failureWindow{count: 1, ends: ends}, window)
}

func emailKey(email string) string {
	return "email:" + strings.ToLower(strings.TrimSpace(email))
}

func ipKey(ip string) string {
	return "ip:" + ip
}
