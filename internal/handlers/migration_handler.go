package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/asgtransit/website-api/internal/services"
)

// MigrationHandler triggers the file to document store migration
type MigrationHandler struct {
	migrationService *services.MigrationService
	audit            *services.AuditService
	logger           *logrus.Logger
}

// NewMigrationHandler creates a new migration handler. A nil service means
// no document store is configured.
func NewMigrationHandler(migrationService *services.MigrationService, audit *services.AuditService, logger *logrus.Logger) *MigrationHandler {
	return &MigrationHandler{migrationService: migrationService, audit: audit, logger: logger}
}

// Migrate handles POST /api/v1/admin/migrate
func (h *MigrationHandler) Migrate(c *gin.Context) {
	if h.migrationService == nil {
		c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "migration_unavailable",
			Message: "No document store is configured, set DATABASE_URL to migrate",
		})
		return
	}

	result, err := h.migrationService.Run(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.audit.LogMigration(actor(c), c.ClientIP(), c.Request.UserAgent(), result)
	c.JSON(http.StatusOK, result)
}
