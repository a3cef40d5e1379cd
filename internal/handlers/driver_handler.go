package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/asgtransit/website-api/internal/database"
	"github.com/asgtransit/website-api/internal/services"
)

// DriverHandler handles driver HTTP requests. Every endpoint is admin only.
type DriverHandler struct {
	driverService *services.DriverService
	audit         *services.AuditService
	logger        *logrus.Logger
}

// NewDriverHandler creates a new driver handler
func NewDriverHandler(driverService *services.DriverService, audit *services.AuditService, logger *logrus.Logger) *DriverHandler {
	return &DriverHandler{driverService: driverService, audit: audit, logger: logger}
}

// ListDrivers handles GET /api/v1/admin/drivers, with route names joined in
func (h *DriverHandler) ListDrivers(c *gin.Context) {
	drivers, err := h.driverService.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, drivers)
}

// GetDriver handles GET /api/v1/admin/drivers/:id
func (h *DriverHandler) GetDriver(c *gin.Context) {
	driver, err := h.driverService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, driver)
}

// CreateDriver handles POST /api/v1/admin/drivers
func (h *DriverHandler) CreateDriver(c *gin.Context) {
	h.upsert(c, "", http.StatusCreated)
}

// UpdateDriver handles PUT /api/v1/admin/drivers/:id
func (h *DriverHandler) UpdateDriver(c *gin.Context) {
	h.upsert(c, c.Param("id"), http.StatusOK)
}

func (h *DriverHandler) upsert(c *gin.Context, id string, status int) {
	in, _, err := readPayload(c, 0)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	driver, err := h.driverService.Upsert(c.Request.Context(), id, in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	auditRecord(c, h.audit, upsertAction(id), database.CollectionDrivers, driver.ID)
	h.logger.WithField("driver_id", driver.ID).Info("Driver saved")
	c.JSON(status, driver)
}

// DeleteDriver handles DELETE /api/v1/admin/drivers/:id
func (h *DriverHandler) DeleteDriver(c *gin.Context) {
	id := c.Param("id")
	if err := h.driverService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	auditRecord(c, h.audit, services.AuditRecordDelete, database.CollectionDrivers, id)
	c.Status(http.StatusNoContent)
}
