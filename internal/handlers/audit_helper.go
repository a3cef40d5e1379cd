package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/asgtransit/website-api/internal/database"
	"github.com/asgtransit/website-api/internal/middleware"
	"github.com/asgtransit/website-api/internal/services"
)

func actor(c *gin.Context) string {
	if userCtx, ok := middleware.GetUserContext(c); ok {
		return userCtx.Email
	}
	return ""
}

func auditRecord(c *gin.Context, audit *services.AuditService, action string, collection database.Collection, id string) {
	audit.LogRecordChange(actor(c), action, string(collection), id, c.ClientIP(), c.Request.UserAgent())
}

func upsertAction(id string) string {
	if id == "" {
		return services.AuditRecordCreate
	}
	return services.AuditRecordUpdate
}
