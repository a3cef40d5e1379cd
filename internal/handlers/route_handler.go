package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/asgtransit/website-api/internal/database"
	"github.com/asgtransit/website-api/internal/services"
)

// RouteHandler handles route HTTP requests
type RouteHandler struct {
	routeService   *services.RouteService
	maxUploadBytes int64
	audit          *services.AuditService
	logger         *logrus.Logger
}

// NewRouteHandler creates a new route handler
func NewRouteHandler(routeService *services.RouteService, maxUploadBytes int64, audit *services.AuditService, logger *logrus.Logger) *RouteHandler {
	return &RouteHandler{
		routeService:   routeService,
		maxUploadBytes: maxUploadBytes,
		audit:          audit,
		logger:         logger,
	}
}

// ListRoutes handles GET /api/v1/routes
// Query: category, active (bool), search
func (h *RouteHandler) ListRoutes(c *gin.Context) {
	activeOnly, _ := strconv.ParseBool(c.Query("active"))
	routes, err := h.routeService.List(c.Request.Context(), services.RouteFilter{
		Category:   c.Query("category"),
		ActiveOnly: activeOnly,
		Search:     c.Query("search"),
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, routes)
}

// GroupedRoutes handles GET /api/v1/routes/grouped
func (h *RouteHandler) GroupedRoutes(c *gin.Context) {
	grouped, err := h.routeService.Grouped(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, grouped)
}

// GetRoute handles GET /api/v1/routes/:id
func (h *RouteHandler) GetRoute(c *gin.Context) {
	route, err := h.routeService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, route)
}

// CreateRoute handles POST /api/v1/admin/routes
func (h *RouteHandler) CreateRoute(c *gin.Context) {
	h.upsert(c, "", http.StatusCreated)
}

// UpdateRoute handles PUT /api/v1/admin/routes/:id
func (h *RouteHandler) UpdateRoute(c *gin.Context) {
	h.upsert(c, c.Param("id"), http.StatusOK)
}

func (h *RouteHandler) upsert(c *gin.Context, id string, status int) {
	in, files, err := readPayload(c, h.maxUploadBytes, services.FieldCardImage, services.FieldScheduleImage)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	route, err := h.routeService.Upsert(c.Request.Context(), id, in, files)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	auditRecord(c, h.audit, upsertAction(id), database.CollectionRoutes, route.ID)
	h.logger.WithFields(logrus.Fields{
		"route_id": route.ID,
		"uploads":  len(files),
	}).Info("Route saved")
	c.JSON(status, route)
}

// DeleteRoute handles DELETE /api/v1/admin/routes/:id
func (h *RouteHandler) DeleteRoute(c *gin.Context) {
	id := c.Param("id")
	if err := h.routeService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	auditRecord(c, h.audit, services.AuditRecordDelete, database.CollectionRoutes, id)
	c.Status(http.StatusNoContent)
}
