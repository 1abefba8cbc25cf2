// Package http provides the HTTP server, routing, and admission middleware.
package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/hdtickets/admission/internal/admission"
	"github.com/hdtickets/admission/internal/config"
	deviceHTTP "github.com/hdtickets/admission/internal/device/http"
	identityHTTP "github.com/hdtickets/admission/internal/identity/http"
	rbacHTTP "github.com/hdtickets/admission/internal/rbac/http"
	"github.com/hdtickets/admission/internal/store"
)

// Server represents the HTTP server
type Server struct {
	server   *http.Server
	router   *gin.Engine
	logger   *slog.Logger
	config   *config.Config
	store    store.Store
	pipeline admission.Pipeline

	credentialHandler *identityHTTP.CredentialHandler
	tokenHandler      *identityHTTP.TokenHandler
	deviceHandler     *deviceHTTP.DeviceHandler
	permissionHandler *rbacHTTP.PermissionHandler
}

// NewServer creates a new HTTP server. Call SetupRouter before Start.
func NewServer(
	cfg *config.Config,
	kv store.Store,
	logger *slog.Logger,
	pipeline admission.Pipeline,
	credentialHandler *identityHTTP.CredentialHandler,
	tokenHandler *identityHTTP.TokenHandler,
	deviceHandler *deviceHTTP.DeviceHandler,
	permissionHandler *rbacHTTP.PermissionHandler,
) *Server {
	return &Server{
		logger:            logger,
		config:            cfg,
		store:             kv,
		pipeline:          pipeline,
		credentialHandler: credentialHandler,
		tokenHandler:      tokenHandler,
		deviceHandler:     deviceHandler,
		permissionHandler: permissionHandler,
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.ServerHost, cfg.ServerPort),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// SetupRouter builds the gin router with all routes and middleware.
func (s *Server) SetupRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if corsMiddleware := createCORSMiddleware(s.config.CORSEnabled, s.config.CORSAllowOrigins, s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	admit := func(endpoint string) gin.HandlerFunc {
		return AdmissionMiddleware(s.pipeline, endpoint, s.logger)
	}

	v1 := router.Group("/v1")
	{
		tokens := v1.Group("/auth/tokens")
		{
			// The in-process token bucket fronts the shared-store limiter so
			// credential stuffing is curbed before it touches the store.
			if s.config.RateLimitTokenEnabled {
				tokens.Use(IPRateLimitMiddleware(
					s.config.RateLimitTokenRequestsPerSec,
					s.config.RateLimitTokenBurst,
					s.logger,
				))
			}
			tokens.POST("", admit("auth.login"), s.tokenHandler.IssueHandler)
			tokens.DELETE("/:jti", admit("auth.logout"), s.tokenHandler.RevokeHandler)
		}

		apiKeys := v1.Group("/api-keys")
		{
			apiKeys.POST("", admit("api.keys"), s.credentialHandler.IssueHandler)
			apiKeys.POST("/:id/rotate", admit("api.keys"), s.credentialHandler.RotateHandler)
			apiKeys.DELETE("/:id", admit("api.keys"), s.credentialHandler.RevokeHandler)
		}

		devices := v1.Group("/devices")
		{
			devices.GET("", admit("devices.list"), s.deviceHandler.ListHandler)
			devices.DELETE("", admit("devices.revoke"), s.deviceHandler.RevokeAllHandler)
			devices.DELETE("/:fingerprint", admit("devices.revoke"), s.deviceHandler.RevokeHandler)
		}

		users := v1.Group("/users", admit("admin.users"))
		{
			users.POST("/:id/permissions", s.permissionHandler.GrantHandler)
			users.DELETE("/:id/permissions/:permission", s.permissionHandler.RevokeHandler)
			users.PUT("/:id/role", s.permissionHandler.AssignRoleHandler)
		}
	}

	s.router = router
	return router
}

// healthHandler reports process liveness.
func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler reports whether the shared store is reachable. Admission
// cannot make a single decision without it.
func (s *Server) readinessHandler(c *gin.Context) {
	components := gin.H{"store": "ok"}

	if s.store == nil {
		components["store"] = "error"
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "components": components})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if _, _, err := s.store.Get(ctx, "readiness_probe"); err != nil {
		components["store"] = "error"
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "components": components})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ready", "components": components})
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	if s.router == nil {
		s.SetupRouter()
	}
	s.server.Handler = s.router

	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	if s.router == nil {
		s.SetupRouter()
	}
	return s.router
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}
