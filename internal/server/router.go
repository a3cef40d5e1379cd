package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/heptiolabs/healthcheck"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/asgtransit/website-api/internal/config"
	"github.com/asgtransit/website-api/internal/database"
	"github.com/asgtransit/website-api/internal/handlers"
	"github.com/asgtransit/website-api/internal/middleware"
	"github.com/asgtransit/website-api/internal/repository"
	"github.com/asgtransit/website-api/internal/services"
	"github.com/asgtransit/website-api/pkg/blob"
	"github.com/asgtransit/website-api/pkg/jwt"
	"github.com/asgtransit/website-api/pkg/validator"
)

// Version is reported by the health endpoint
var Version = "1.0.0"

const storePingTimeout = 2 * time.Second

// Deps are the clients the router is built from. Migration is nil when no
// document store is configured.
type Deps struct {
	Config    *config.Config
	Logger    *logrus.Logger
	Store     database.RecordStore
	Blobs     blob.Storage
	Migration *services.MigrationService
	Cache     *services.ListingCache
}

// NewRouter wires services, handlers and middleware into a gin engine
func NewRouter(deps Deps) *gin.Engine {
	cfg := deps.Config
	logger := deps.Logger

	jwtService := jwt.NewService(
		cfg.JWT.Secret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	recordValidator := validator.NewRecordValidator()
	routeRepo := repository.NewRouteRepository(deps.Store)
	maxUpload := cfg.Storage.MaxUploadBytes

	routeService := services.NewRouteService(routeRepo, recordValidator, deps.Blobs, deps.Cache, maxUpload, logger)
	alertService := services.NewAlertService(repository.NewAlertRepository(deps.Store), recordValidator, deps.Cache, logger)
	driverService := services.NewDriverService(repository.NewDriverRepository(deps.Store), routeRepo, recordValidator, deps.Cache, logger)
	uploadService := services.NewUploadService(deps.Blobs, maxUpload, logger)
	adminAuthService := services.NewAdminAuthService(cfg.Admin.Email, cfg.Admin.PasswordHash, jwtService)

	auditService := services.NewAuditService(logger)
	loginLimiter := services.NewRateLimitService(services.DefaultRateLimitConfig())

	routeHandler := handlers.NewRouteHandler(routeService, maxUpload, auditService, logger)
	alertHandler := handlers.NewAlertHandler(alertService, auditService, logger)
	driverHandler := handlers.NewDriverHandler(driverService, auditService, logger)
	uploadHandler := handlers.NewUploadHandler(uploadService, maxUpload, logger)
	migrationHandler := handlers.NewMigrationHandler(deps.Migration, auditService, logger)
	adminAuthHandler := handlers.NewAdminAuthHandler(adminAuthService, loginLimiter, auditService, handlers.CookieSettings{
		Name:   cfg.Admin.CookieName,
		Secure: cfg.Admin.CookieSecure,
	}, logger)

	router := gin.New()
	router.MaxMultipartMemory = 8 << 20
	// forwarding headers only count when the socket peer is a listed proxy
	if err := router.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		logger.WithError(err).Warn("Invalid trusted proxies, forwarding headers are ignored")
		_ = router.SetTrustedProxies(nil)
	}

	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.Metrics())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	router.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))

	health := healthcheck.NewHandler()
	health.AddLivenessCheck("goroutine-threshold", healthcheck.GoroutineCountCheck(1000))
	health.AddReadinessCheck("record-store", healthcheck.Timeout(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), storePingTimeout)
		defer cancel()
		return deps.Store.Ping(ctx)
	}, storePingTimeout))

	router.GET("/health", healthCheckHandler(deps.Store, cfg.Storage.Backend))
	router.GET("/live", gin.WrapF(health.LiveEndpoint))
	router.GET("/ready", gin.WrapF(health.ReadyEndpoint))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.Static(cfg.Storage.UploadURLPrefix, cfg.Storage.UploadDir)

	v1 := router.Group("/api/v1")
	{
		routes := v1.Group("/routes")
		{
			routes.GET("", routeHandler.ListRoutes)
			routes.GET("/grouped", routeHandler.GroupedRoutes)
			routes.GET("/:id", routeHandler.GetRoute)
		}

		alerts := v1.Group("/alerts")
		{
			alerts.GET("", alertHandler.ListAlerts)
			alerts.GET("/:id", alertHandler.GetAlert)
		}

		admin := v1.Group("/admin")

		// Session endpoints (public)
		auth := admin.Group("/auth")
		{
			auth.POST("/login", adminAuthHandler.Login)
			auth.POST("/refresh", adminAuthHandler.RefreshToken)
			auth.POST("/logout", adminAuthHandler.Logout)
			auth.GET("/session", adminAuthHandler.Session)
		}

		protected := admin.Group("")
		protected.Use(middleware.AuthMiddleware(jwtService, cfg.Admin.CookieName, logger))
		protected.Use(middleware.RequireRole(services.RoleAdmin))
		{
			protected.GET("/routes", routeHandler.ListRoutes)
			protected.POST("/routes", routeHandler.CreateRoute)
			protected.PUT("/routes/:id", routeHandler.UpdateRoute)
			protected.DELETE("/routes/:id", routeHandler.DeleteRoute)

			protected.GET("/alerts", alertHandler.ListAlerts)
			protected.POST("/alerts", alertHandler.CreateAlert)
			protected.PUT("/alerts/:id", alertHandler.UpdateAlert)
			protected.DELETE("/alerts/:id", alertHandler.DeleteAlert)

			protected.GET("/drivers", driverHandler.ListDrivers)
			protected.GET("/drivers/:id", driverHandler.GetDriver)
			protected.POST("/drivers", driverHandler.CreateDriver)
			protected.PUT("/drivers/:id", driverHandler.UpdateDriver)
			protected.DELETE("/drivers/:id", driverHandler.DeleteDriver)

			protected.POST("/uploads", uploadHandler.Upload)
			protected.POST("/migrate", migrationHandler.Migrate)
		}
	}

	return router
}

// healthCheckHandler reports whether the record store answers
func healthCheckHandler(store database.RecordStore, backend string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), storePingTimeout)
		defer cancel()

		if err := store.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unhealthy",
				"storage": backend,
				"error":   err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"storage":   backend,
			"version":   Version,
			"timestamp": time.Now().Unix(),
		})
	}
}
