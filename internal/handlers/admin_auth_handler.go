package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/asgtransit/website-api/internal/models"
	"github.com/asgtransit/website-api/internal/services"
)

// SessionResponse describes the caller's back-office session
type SessionResponse struct {
	Authenticated bool     `json:"authenticated"`
	Email         string   `json:"email,omitempty"`
	Roles         []string `json:"roles,omitempty"`
	ExpiresAt     int64    `json:"expires_at,omitempty"`
}

// CookieSettings controls the session cookie set on login
type CookieSettings struct {
	Name   string
	Secure bool
}

// AdminAuthHandler handles admin authentication HTTP requests
type AdminAuthHandler struct {
	adminAuthService *services.AdminAuthService
	rateLimiter      *services.RateLimitService
	audit            *services.AuditService
	cookie           CookieSettings
	logger           *logrus.Logger
}

// NewAdminAuthHandler creates a new admin auth handler
func NewAdminAuthHandler(
	adminAuthService *services.AdminAuthService,
	rateLimiter *services.RateLimitService,
	audit *services.AuditService,
	cookie CookieSettings,
	logger *logrus.Logger,
) *AdminAuthHandler {
	return &AdminAuthHandler{
		adminAuthService: adminAuthService,
		rateLimiter:      rateLimiter,
		audit:            audit,
		cookie:           cookie,
		logger:           logger,
	}
}

// Login handles POST /api/v1/admin/auth/login
func (h *AdminAuthHandler) Login(c *gin.Context) {
	var req models.AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body",
		})
		return
	}

	ip := c.ClientIP()
	if err := h.rateLimiter.CheckLoginRateLimit(req.Email, ip); err != nil {
		var rateErr *services.RateLimitError
		if errors.As(err, &rateErr) {
			h.audit.LogRateLimitViolation(req.Email, ip, c.Request.UserAgent(), rateErr.Type, rateErr.RetryAfter)
			c.Header("Retry-After", strconv.Itoa(int(time.Until(rateErr.RetryAfter).Seconds())+1))
			c.JSON(http.StatusTooManyRequests, ErrorResponse{
				Error:   "rate_limit_exceeded",
				Message: rateErr.Message,
				Code:    "TOO_MANY_ATTEMPTS",
			})
			return
		}
	}

	response, err := h.adminAuthService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.rateLimiter.RecordLoginFailure(req.Email, ip)
		h.audit.LogLogin(req.Email, ip, c.Request.UserAgent(), false)
		h.logger.WithFields(logrus.Fields{
			"email": req.Email,
			"ip":    ip,
		}).Warn("Admin login failed")
		h.unauthorized(c, err)
		return
	}

	h.rateLimiter.ResetLogin(req.Email)
	h.audit.LogLogin(response.Email, ip, c.Request.UserAgent(), true)
	h.setSessionCookie(c, response)
	c.JSON(http.StatusOK, response)
}

// RefreshToken handles POST /api/v1/admin/auth/refresh
func (h *AdminAuthHandler) RefreshToken(c *gin.Context) {
	var req models.AdminRefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body",
		})
		return
	}

	response, err := h.adminAuthService.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		h.logger.WithError(err).Warn("Token refresh failed")
		h.unauthorized(c, err)
		return
	}

	h.setSessionCookie(c, response)
	c.JSON(http.StatusOK, response)
}

// Logout handles POST /api/v1/admin/auth/logout. Tokens are stateless, so
// logging out only clears the session cookie.
func (h *AdminAuthHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, "", -1, "/", "", h.cookie.Secure, true)
	c.JSON(http.StatusOK, SuccessResponse{Success: true, Message: "Logged out successfully"})
}

// Session handles GET /api/v1/admin/auth/session. It never fails: a missing
// or invalid token reports an anonymous session.
func (h *AdminAuthHandler) Session(c *gin.Context) {
	token := ""
	if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
		token = strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	} else if cookie, err := c.Cookie(h.cookie.Name); err == nil {
		token = cookie
	}

	if token == "" {
		c.JSON(http.StatusOK, SessionResponse{})
		return
	}

	claims, err := h.adminAuthService.Session(token)
	if err != nil {
		c.JSON(http.StatusOK, SessionResponse{})
		return
	}

	session := SessionResponse{
		Authenticated: true,
		Email:         claims.Email,
		Roles:         claims.Roles,
	}
	if claims.ExpiresAt != nil {
		session.ExpiresAt = claims.ExpiresAt.Unix()
	}
	c.JSON(http.StatusOK, session)
}

func (h *AdminAuthHandler) setSessionCookie(c *gin.Context, response *models.AdminLoginResponse) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, response.AccessToken, int(response.ExpiresIn), "/", "", h.cookie.Secure, true)
}

func (h *AdminAuthHandler) unauthorized(c *gin.Context, err error) {
	code, message := "INVALID_CREDENTIALS", services.ErrInvalidCredentials.Error()
	if errors.Is(err, services.ErrInvalidRefreshToken) {
		code, message = "INVALID_REFRESH_TOKEN", services.ErrInvalidRefreshToken.Error()
	}
	c.JSON(http.StatusUnauthorized, ErrorResponse{
		Error:   "unauthorized",
		Message: message,
		Code:    code,
	})
}
