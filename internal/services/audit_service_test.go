package services

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chromeUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

func TestAuditService_LogRecordChange(t *testing.T) {
	logger, hook := newTestLogger()
	s := NewAuditService(logger)

	s.LogRecordChange("admin@asgtransit.cr", AuditRecordUpdate, "routes", "grecia-centro", "203.0.113.9", chromeUA)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.InfoLevel, entry.Level)
	assert.Equal(t, "audit", entry.Data["category"])
	assert.Equal(t, AuditRecordUpdate, entry.Data["action"])
	assert.Equal(t, "routes", entry.Data["entity_type"])
	assert.Equal(t, "grecia-centro", entry.Data["entity_id"])
	assert.Equal(t, "admin@asgtransit.cr", entry.Data["actor"])
	assert.Equal(t, "desktop", entry.Data["device_type"])
}

func TestAuditService_LoginFailureIsWarning(t *testing.T) {
	logger, hook := newTestLogger()
	s := NewAuditService(logger)

	s.LogLogin("admin@asgtransit.cr", "203.0.113.9", "", false)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Equal(t, AuditLoginFailed, hook.LastEntry().Data["action"])

	s.LogRateLimitViolation("admin@asgtransit.cr", "203.0.113.9", "", "email", time.Date(2024, 5, 1, 8, 15, 0, 0, time.UTC))
	assert.Equal(t, "email", hook.LastEntry().Data["limit_type"])
	assert.Equal(t, "2024-05-01T08:15:00Z", hook.LastEntry().Data["retry_after"])
}

func TestAuditService_NilIsNoop(t *testing.T) {
	var s *AuditService
	assert.NotPanics(t, func() {
		s.LogMigration("admin@asgtransit.cr", "", "", &MigrationResult{Routes: 1})
	})
}
