package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/asgtransit/website-api/internal/database"
	"github.com/asgtransit/website-api/internal/services"
)

// AlertHandler handles service alert HTTP requests
type AlertHandler struct {
	alertService *services.AlertService
	audit        *services.AuditService
	logger       *logrus.Logger
}

// NewAlertHandler creates a new alert handler
func NewAlertHandler(alertService *services.AlertService, audit *services.AuditService, logger *logrus.Logger) *AlertHandler {
	return &AlertHandler{alertService: alertService, audit: audit, logger: logger}
}

// ListAlerts handles GET /api/v1/alerts. With active=true only the alerts
// showing right now are returned.
func (h *AlertHandler) ListAlerts(c *gin.Context) {
	activeOnly, _ := strconv.ParseBool(c.Query("active"))

	list := h.alertService.List
	if activeOnly {
		list = h.alertService.Active
	}
	alerts, err := list(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, alerts)
}

// GetAlert handles GET /api/v1/alerts/:id
func (h *AlertHandler) GetAlert(c *gin.Context) {
	alert, err := h.alertService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, alert)
}

// CreateAlert handles POST /api/v1/admin/alerts
func (h *AlertHandler) CreateAlert(c *gin.Context) {
	h.upsert(c, "", http.StatusCreated)
}

// UpdateAlert handles PUT /api/v1/admin/alerts/:id
func (h *AlertHandler) UpdateAlert(c *gin.Context) {
	h.upsert(c, c.Param("id"), http.StatusOK)
}

func (h *AlertHandler) upsert(c *gin.Context, id string, status int) {
	in, _, err := readPayload(c, 0)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	alert, err := h.alertService.Upsert(c.Request.Context(), id, in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	auditRecord(c, h.audit, upsertAction(id), database.CollectionAlerts, alert.ID)
	h.logger.WithField("alert_id", alert.ID).Info("Alert saved")
	c.JSON(status, alert)
}

// DeleteAlert handles DELETE /api/v1/admin/alerts/:id
func (h *AlertHandler) DeleteAlert(c *gin.Context) {
	id := c.Param("id")
	if err := h.alertService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	auditRecord(c, h.audit, services.AuditRecordDelete, database.CollectionAlerts, id)
	c.Status(http.StatusNoContent)
}
