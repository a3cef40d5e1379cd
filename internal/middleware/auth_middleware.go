package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/asgtransit/website-api/pkg/jwt"
)

// UserContextKey is the key used to store the session in the gin context
const UserContextKey = "user"

// UserContext represents the authenticated back-office user
type UserContext struct {
	Email string   `json:"email"`
	Roles []string `json:"roles"`
}

// HasRole reports whether the user holds role
func (u UserContext) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func abortUnauthorized(c *gin.Context, errCode, message, code string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error":   errCode,
		"message": message,
		"code":    code,
	})
}

// AuthMiddleware validates the access token sent as a Bearer header or,
// for browser sessions, in the session cookie
func AuthMiddleware(jwtService *jwt.Service, cookieName string, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logger.WithFields(logrus.Fields{
			"path": c.Request.URL.Path,
			"ip":   c.ClientIP(),
		})

		var tokenString string
		if authHeader := c.GetHeader("Authorization"); authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
				log.Warn("Auth failed: invalid authorization header format")
				abortUnauthorized(c, "unauthorized",
					"Invalid authorization header format. Expected: Bearer <token>", "INVALID_AUTH_FORMAT")
				return
			}
			tokenString = strings.TrimSpace(parts[1])
		} else if cookie, err := c.Cookie(cookieName); err == nil && cookie != "" {
			tokenString = cookie
		}

		if tokenString == "" {
			log.Warn("Auth failed: no credentials")
			abortUnauthorized(c, "unauthorized", "Authorization header is required", "MISSING_AUTH_HEADER")
			return
		}

		claims, err := jwtService.ValidateAccessToken(tokenString)
		if errors.Is(err, jwt.ErrExpired) {
			log.Info("Auth failed: token expired")
			abortUnauthorized(c, "token_expired", "Access token has expired. Please refresh your token.", "TOKEN_EXPIRED")
			return
		}
		if err != nil {
			log.WithError(err).Warn("Auth failed: invalid token")
			abortUnauthorized(c, "invalid_token", "Invalid access token", "INVALID_TOKEN")
			return
		}

		c.Set(UserContextKey, UserContext{Email: claims.Email, Roles: claims.Roles})
		c.Next()
	}
}

// RequireRole lets the request through when the user holds any of roles
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userCtx, exists := GetUserContext(c)
		if !exists {
			abortUnauthorized(c, "unauthorized",
				"User context not found. Auth middleware may not be applied.", "MISSING_USER_CONTEXT")
			return
		}

		for _, role := range roles {
			if userCtx.HasRole(role) {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error":   "forbidden",
			"message": "You don't have permission to access this resource",
			"code":    "INSUFFICIENT_PERMISSIONS",
		})
	}
}

// GetUserContext retrieves the session stored by AuthMiddleware
func GetUserContext(c *gin.Context) (UserContext, bool) {
	value, exists := c.Get(UserContextKey)
	if !exists {
		return UserContext{}, false
	}
	userCtx, ok := value.(UserContext)
	return userCtx, ok
}
