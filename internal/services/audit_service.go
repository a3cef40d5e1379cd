package services

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/asgtransit/website-api/internal/utils"
)

// Audit actions
const (
	AuditLoginSuccess      = "login_success"
	AuditLoginFailed       = "login_failed"
	AuditRateLimitExceeded = "rate_limit_exceeded"
	AuditRecordCreate      = "record_create"
	AuditRecordUpdate      = "record_update"
	AuditRecordDelete      = "record_delete"
	AuditMigration         = "migration"
)

// AuditService writes back-office security and change events to the
// structured log, one entry per event under the "audit" category
type AuditService struct {
	logger *logrus.Logger
}

// NewAuditService creates a new audit service
func NewAuditService(logger *logrus.Logger) *AuditService {
	return &AuditService{logger: logger}
}

// AuditEvent represents an event to be logged
type AuditEvent struct {
	Actor      string         // Admin email, empty before authentication
	Action     string         // One of the Audit* actions
	EntityType string         // Collection or "session"
	EntityID   string         // Affected record, empty when none
	IPAddress  string         // Client IP address
	UserAgent  string         // Client user agent
	Details    map[string]any // Additional details
}

// LogLogin logs a login attempt
func (s *AuditService) LogLogin(email, ipAddress, userAgent string, success bool) {
	action := AuditLoginFailed
	if success {
		action = AuditLoginSuccess
	}
	s.logEvent(AuditEvent{
		Actor:      email,
		Action:     action,
		EntityType: "session",
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
	})
}

// LogRateLimitViolation logs a throttled login
func (s *AuditService) LogRateLimitViolation(email, ipAddress, userAgent, limitType string, retryAfter time.Time) {
	s.logEvent(AuditEvent{
		Actor:      email,
		Action:     AuditRateLimitExceeded,
		EntityType: "session",
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Details: map[string]any{
			"limit_type":  limitType,
			"retry_after": retryAfter.UTC().Format(time.RFC3339),
		},
	})
}

// LogRecordChange logs a create, update or delete of a record
func (s *AuditService) LogRecordChange(actor, action, collection, id, ipAddress, userAgent string) {
	s.logEvent(AuditEvent{
		Actor:      actor,
		Action:     action,
		EntityType: collection,
		EntityID:   id,
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
	})
}

// LogMigration logs a migration run and its summary
func (s *AuditService) LogMigration(actor, ipAddress, userAgent string, result *MigrationResult) {
	s.logEvent(AuditEvent{
		Actor:      actor,
		Action:     AuditMigration,
		EntityType: "documents",
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Details: map[string]any{
			"routes":  result.Routes,
			"alerts":  result.Alerts,
			"drivers": result.Drivers,
			"skipped": result.Skipped,
		},
	})
}

func (s *AuditService) logEvent(event AuditEvent) {
	if s == nil {
		return
	}

	fields := logrus.Fields{
		"category":    "audit",
		"action":      event.Action,
		"entity_type": event.EntityType,
		"ip":          event.IPAddress,
	}
	if event.Actor != "" {
		fields["actor"] = event.Actor
	}
	if event.EntityID != "" {
		fields["entity_id"] = event.EntityID
	}
	if event.UserAgent != "" {
		device := utils.ParseUserAgent(event.UserAgent)
		fields["device_type"] = device.DeviceType
		fields["browser"] = device.Browser
	}
	for k, v := range event.Details {
		fields[k] = v
	}

	entry := s.logger.WithFields(fields)
	if event.Action == AuditLoginFailed || event.Action == AuditRateLimitExceeded {
		entry.Warn("Audit event")
		return
	}
	entry.Info("Audit event")
}
