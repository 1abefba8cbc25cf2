// Package app provides dependency injection container for assembling application components.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/hdtickets/admission/internal/admission"
	"github.com/hdtickets/admission/internal/audit"
	"github.com/hdtickets/admission/internal/config"
	deviceHTTP "github.com/hdtickets/admission/internal/device/http"
	deviceRepository "github.com/hdtickets/admission/internal/device/repository"
	deviceUsecase "github.com/hdtickets/admission/internal/device/usecase"
	"github.com/hdtickets/admission/internal/http"
	identityHTTP "github.com/hdtickets/admission/internal/identity/http"
	"github.com/hdtickets/admission/internal/logging"
	identityRepository "github.com/hdtickets/admission/internal/identity/repository"
	identityService "github.com/hdtickets/admission/internal/identity/service"
	identityUsecase "github.com/hdtickets/admission/internal/identity/usecase"
	"github.com/hdtickets/admission/internal/metrics"
	ratelimitDomain "github.com/hdtickets/admission/internal/ratelimit/domain"
	ratelimitUsecase "github.com/hdtickets/admission/internal/ratelimit/usecase"
	rbacDomain "github.com/hdtickets/admission/internal/rbac/domain"
	rbacHTTP "github.com/hdtickets/admission/internal/rbac/http"
	rbacRepository "github.com/hdtickets/admission/internal/rbac/repository"
	rbacUsecase "github.com/hdtickets/admission/internal/rbac/usecase"
	"github.com/hdtickets/admission/internal/store"
	userRepository "github.com/hdtickets/admission/internal/user/repository"
)

// Container holds all application dependencies and provides methods to access them.
// It follows the lazy initialization pattern - components are created on first access.
type Container struct {
	// Configuration
	config *config.Config

	// Infrastructure
	logger          *slog.Logger
	store           store.Store
	auditRecorder   audit.Recorder
	metricsProvider *metrics.Provider
	businessMetrics metrics.BusinessMetrics

	// Collaborators
	userDirectory *userRepository.MemoryDirectory

	// Use Cases
	credentialUseCase identityUsecase.CredentialUseCase
	tokenUseCase      identityUsecase.TokenUseCase
	trustUseCase      deviceUsecase.TrustUseCase
	resolverUseCase   rbacUsecase.ResolverUseCase
	limiterUseCase    ratelimitUsecase.LimiterUseCase

	// Pipeline and servers
	pipeline      admission.Pipeline
	httpServer    *http.Server
	metricsServer *http.MetricsServer

	// Initialization flags and mutex for thread-safety
	mu                    sync.Mutex
	loggerInit            sync.Once
	storeInit             sync.Once
	auditRecorderInit     sync.Once
	metricsProviderInit   sync.Once
	businessMetricsInit   sync.Once
	userDirectoryInit     sync.Once
	credentialUseCaseInit sync.Once
	tokenUseCaseInit      sync.Once
	trustUseCaseInit      sync.Once
	resolverUseCaseInit   sync.Once
	limiterUseCaseInit    sync.Once
	pipelineInit          sync.Once
	httpServerInit        sync.Once
	metricsServerInit     sync.Once
	initErrors            map[string]error
}

// NewContainer creates a new dependency injection container with the provided configuration.
func NewContainer(cfg *config.Config) *Container {
	return &Container{
		config:     cfg,
		initErrors: make(map[string]error),
	}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the configured logger instance.
// It creates a new logger on first access based on the log level in configuration.
func (c *Container) Logger() *slog.Logger {
	c.loggerInit.Do(func() {
		c.logger = c.initLogger()
	})
	return c.logger
}

// Store returns the shared TTL key-value store.
// Every admission decision reads and writes through this store, so its backend
// selection is the deployment's single most important choice.
func (c *Container) Store() (store.Store, error) {
	c.storeInit.Do(func() {
		kv, err := c.initStore()
		if err != nil {
			c.initErrors["store"] = err
			return
		}
		c.store = kv
	})
	if storedErr, exists := c.initErrors["store"]; exists {
		return nil, storedErr
	}
	return c.store, nil
}

// AuditRecorder returns the audit recorder instance.
func (c *Container) AuditRecorder() audit.Recorder {
	c.auditRecorderInit.Do(func() {
		c.auditRecorder = audit.NewLogRecorder(c.Logger())
	})
	return c.auditRecorder
}

// MetricsProvider returns the OpenTelemetry metrics provider.
// Returns nil when metrics are disabled.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	c.metricsProviderInit.Do(func() {
		if !c.config.MetricsEnabled {
			return
		}
		provider, err := metrics.NewProvider(c.config.MetricsNamespace)
		if err != nil {
			c.initErrors["metricsProvider"] = err
			return
		}
		c.metricsProvider = provider
	})
	if storedErr, exists := c.initErrors["metricsProvider"]; exists {
		return nil, storedErr
	}
	return c.metricsProvider, nil
}

// BusinessMetrics returns the business metrics recorder.
// Falls back to a no-op implementation when metrics are disabled.
func (c *Container) BusinessMetrics() (metrics.BusinessMetrics, error) {
	c.businessMetricsInit.Do(func() {
		provider, err := c.MetricsProvider()
		if err != nil {
			c.initErrors["businessMetrics"] = err
			return
		}
		if provider == nil {
			c.businessMetrics = metrics.NewNoOpBusinessMetrics()
			return
		}
		m, err := metrics.NewBusinessMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
		if err != nil {
			c.initErrors["businessMetrics"] = err
			return
		}
		c.businessMetrics = m
	})
	if storedErr, exists := c.initErrors["businessMetrics"]; exists {
		return nil, storedErr
	}
	return c.businessMetrics, nil
}

// UserDirectory returns the user directory collaborator.
func (c *Container) UserDirectory() *userRepository.MemoryDirectory {
	c.userDirectoryInit.Do(func() {
		c.userDirectory = userRepository.NewMemoryDirectory()
	})
	return c.userDirectory
}

// CredentialUseCase returns the API key credential use case instance.
func (c *Container) CredentialUseCase() (identityUsecase.CredentialUseCase, error) {
	c.credentialUseCaseInit.Do(func() {
		useCase, err := c.initCredentialUseCase()
		if err != nil {
			c.initErrors["credentialUseCase"] = err
			return
		}
		c.credentialUseCase = useCase
	})
	if storedErr, exists := c.initErrors["credentialUseCase"]; exists {
		return nil, storedErr
	}
	return c.credentialUseCase, nil
}

// TokenUseCase returns the session token use case instance.
func (c *Container) TokenUseCase() (identityUsecase.TokenUseCase, error) {
	c.tokenUseCaseInit.Do(func() {
		useCase, err := c.initTokenUseCase()
		if err != nil {
			c.initErrors["tokenUseCase"] = err
			return
		}
		c.tokenUseCase = useCase
	})
	if storedErr, exists := c.initErrors["tokenUseCase"]; exists {
		return nil, storedErr
	}
	return c.tokenUseCase, nil
}

// TrustUseCase returns the device trust use case instance.
func (c *Container) TrustUseCase() (deviceUsecase.TrustUseCase, error) {
	c.trustUseCaseInit.Do(func() {
		useCase, err := c.initTrustUseCase()
		if err != nil {
			c.initErrors["trustUseCase"] = err
			return
		}
		c.trustUseCase = useCase
	})
	if storedErr, exists := c.initErrors["trustUseCase"]; exists {
		return nil, storedErr
	}
	return c.trustUseCase, nil
}

// ResolverUseCase returns the permission resolver use case instance.
func (c *Container) ResolverUseCase() (rbacUsecase.ResolverUseCase, error) {
	c.resolverUseCaseInit.Do(func() {
		useCase, err := c.initResolverUseCase()
		if err != nil {
			c.initErrors["resolverUseCase"] = err
			return
		}
		c.resolverUseCase = useCase
	})
	if storedErr, exists := c.initErrors["resolverUseCase"]; exists {
		return nil, storedErr
	}
	return c.resolverUseCase, nil
}

// LimiterUseCase returns the rate limiter use case instance.
func (c *Container) LimiterUseCase() (ratelimitUsecase.LimiterUseCase, error) {
	c.limiterUseCaseInit.Do(func() {
		kv, err := c.Store()
		if err != nil {
			c.initErrors["limiterUseCase"] = err
			return
		}
		c.limiterUseCase = ratelimitUsecase.NewLimiterUseCase(c.config, kv, ratelimitDomain.DefaultTable())
	})
	if storedErr, exists := c.initErrors["limiterUseCase"]; exists {
		return nil, storedErr
	}
	return c.limiterUseCase, nil
}

// Pipeline returns the admission pipeline, wrapped with metrics when enabled.
func (c *Container) Pipeline() (admission.Pipeline, error) {
	c.pipelineInit.Do(func() {
		pipeline, err := c.initPipeline()
		if err != nil {
			c.initErrors["pipeline"] = err
			return
		}
		c.pipeline = pipeline
	})
	if storedErr, exists := c.initErrors["pipeline"]; exists {
		return nil, storedErr
	}
	return c.pipeline, nil
}

// HTTPServer returns the HTTP server instance.
func (c *Container) HTTPServer() (*http.Server, error) {
	c.httpServerInit.Do(func() {
		server, err := c.initHTTPServer()
		if err != nil {
			c.initErrors["httpServer"] = err
			return
		}
		c.httpServer = server
	})
	if storedErr, exists := c.initErrors["httpServer"]; exists {
		return nil, storedErr
	}
	return c.httpServer, nil
}

// MetricsServer returns the metrics HTTP server instance.
func (c *Container) MetricsServer() (*http.MetricsServer, error) {
	c.metricsServerInit.Do(func() {
		provider, err := c.MetricsProvider()
		if err != nil {
			c.initErrors["metricsServer"] = err
			return
		}
		c.metricsServer = http.NewMetricsServer(
			c.config.ServerHost,
			c.config.MetricsPort,
			c.Logger(),
			provider,
		)
	})
	if storedErr, exists := c.initErrors["metricsServer"]; exists {
		return nil, storedErr
	}
	return c.metricsServer, nil
}

// Shutdown performs cleanup of all initialized resources.
// It should be called when the application is shutting down.
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var shutdownErrors []error

	if c.httpServer != nil {
		if err := c.httpServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("http server shutdown: %w", err))
		}
	}

	if c.metricsServer != nil {
		if err := c.metricsServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics server shutdown: %w", err))
		}
	}

	if c.metricsProvider != nil {
		if err := c.metricsProvider.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics provider shutdown: %w", err))
		}
	}

	if closer, ok := c.store.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("store close: %w", err))
		}
	}

	if len(shutdownErrors) > 0 {
		return fmt.Errorf("shutdown errors: %v", shutdownErrors)
	}

	return nil
}

// initLogger creates and configures a structured logger based on the log level.
func (c *Container) initLogger() *slog.Logger {
	return logging.New(c.config.LogLevel)
}

// initStore creates the shared key-value store for the configured backend.
func (c *Container) initStore() (store.Store, error) {
	switch c.config.StoreBackend {
	case "redis":
		kv, err := store.NewRedis(c.config.RedisURL, c.config.StoreTimeout)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		return kv, nil
	case "memory":
		// Single-process only. Counters and revocations are not shared across
		// instances, so this backend is for development and tests.
		return store.NewMemory(), nil
	default:
		return nil, fmt.Errorf("unsupported store backend: %s", c.config.StoreBackend)
	}
}

// initCredentialUseCase creates the credential use case with all its dependencies.
func (c *Container) initCredentialUseCase() (identityUsecase.CredentialUseCase, error) {
	kv, err := c.Store()
	if err != nil {
		return nil, fmt.Errorf("failed to get store for credential use case: %w", err)
	}

	return identityUsecase.NewCredentialUseCase(
		c.config,
		identityRepository.NewStoreCredentialRepository(kv),
		c.UserDirectory(),
		identityService.NewSecretService(),
		identityService.NewSignatureService(c.config.SignatureAlgorithm, c.config.SignatureTimestampTolerance),
		c.AuditRecorder(),
	), nil
}

// initTokenUseCase creates the token use case with all its dependencies.
func (c *Container) initTokenUseCase() (identityUsecase.TokenUseCase, error) {
	kv, err := c.Store()
	if err != nil {
		return nil, fmt.Errorf("failed to get store for token use case: %w", err)
	}

	return identityUsecase.NewTokenUseCase(
		c.config,
		identityRepository.NewStoreTokenRepository(kv),
		c.UserDirectory(),
		identityService.NewJWTService(c.config.JWTSigningKey, c.config.JWTIssuer),
		c.AuditRecorder(),
	), nil
}

// initTrustUseCase creates the device trust use case with all its dependencies.
func (c *Container) initTrustUseCase() (deviceUsecase.TrustUseCase, error) {
	kv, err := c.Store()
	if err != nil {
		return nil, fmt.Errorf("failed to get store for trust use case: %w", err)
	}

	return deviceUsecase.NewTrustUseCase(
		c.config,
		deviceRepository.NewStoreDeviceRepository(kv, c.config.DeviceTrustExpiration),
		deviceUsecase.NeutralIPReputation{},
		deviceUsecase.NeutralGeolocator{},
		c.AuditRecorder(),
	), nil
}

// initResolverUseCase creates the permission resolver with all its dependencies.
func (c *Container) initResolverUseCase() (rbacUsecase.ResolverUseCase, error) {
	kv, err := c.Store()
	if err != nil {
		return nil, fmt.Errorf("failed to get store for resolver use case: %w", err)
	}

	return rbacUsecase.NewResolverUseCase(
		rbacDomain.DefaultCatalog(),
		c.UserDirectory(),
		rbacRepository.NewStoreDynamicRoleRepository(kv),
		rbacUsecase.NewStorePermissionCache(kv, c.config.PermissionCacheTTL),
		rbacUsecase.DefaultPolicies(),
		c.AuditRecorder(),
	), nil
}

// initPipeline creates the admission pipeline with all its stages.
func (c *Container) initPipeline() (admission.Pipeline, error) {
	credentials, err := c.CredentialUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get credential use case for pipeline: %w", err)
	}

	tokens, err := c.TokenUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get token use case for pipeline: %w", err)
	}

	trust, err := c.TrustUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get trust use case for pipeline: %w", err)
	}

	resolver, err := c.ResolverUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get resolver use case for pipeline: %w", err)
	}

	limiter, err := c.LimiterUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get limiter use case for pipeline: %w", err)
	}

	pipeline := admission.NewPipeline(
		credentials,
		tokens,
		trust,
		resolver,
		limiter,
		admission.DefaultEndpointPolicies(),
		c.AuditRecorder(),
	)

	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for pipeline: %w", err)
		}
		pipeline = admission.NewPipelineWithMetrics(pipeline, businessMetrics)
	}

	return pipeline, nil
}

// initHTTPServer creates the HTTP server with all its dependencies.
func (c *Container) initHTTPServer() (*http.Server, error) {
	logger := c.Logger()

	kv, err := c.Store()
	if err != nil {
		return nil, fmt.Errorf("failed to get store for http server: %w", err)
	}

	pipeline, err := c.Pipeline()
	if err != nil {
		return nil, fmt.Errorf("failed to get pipeline for http server: %w", err)
	}

	credentials, err := c.CredentialUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get credential use case for http server: %w", err)
	}

	tokens, err := c.TokenUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get token use case for http server: %w", err)
	}

	trust, err := c.TrustUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get trust use case for http server: %w", err)
	}

	resolver, err := c.ResolverUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get resolver use case for http server: %w", err)
	}

	server := http.NewServer(
		c.config,
		kv,
		logger,
		pipeline,
		identityHTTP.NewCredentialHandler(credentials, http.MustPrincipal, logger),
		identityHTTP.NewTokenHandler(tokens, logger),
		deviceHTTP.NewDeviceHandler(trust, http.MustPrincipal, logger),
		rbacHTTP.NewPermissionHandler(resolver, http.MustPrincipal, logger),
	)

	return server, nil
}
