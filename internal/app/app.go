package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/akozyrev/amazon-connect/internal/amazon"
	"github.com/akozyrev/amazon-connect/internal/config"
	"github.com/akozyrev/amazon-connect/internal/handler"
	"github.com/akozyrev/amazon-connect/internal/identity"
	"github.com/akozyrev/amazon-connect/internal/repository"
	"github.com/akozyrev/amazon-connect/internal/service"
	"github.com/akozyrev/amazon-connect/internal/utils"
	"github.com/akozyrev/amazon-connect/pkg/observability"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

const (
	shutdownTimeout   = 5 * time.Second
	partnerAPITimeout = 30 * time.Second
)

type App struct {
	infra  Infrastructure
	config *config.Config
	router *gin.Engine
	server *http.Server
}

func NewApp(infra Infrastructure, cfg *config.Config) (*App, error) {
	repos := repository.NewRepositories(infra.Postgres())

	cipherKey, err := cfg.Security.CipherKey()
	if err != nil {
		return nil, err
	}
	tokenCipher, err := utils.NewTokenCipher(cipherKey)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token cipher: %w", err)
	}

	verifier := identity.NewJWTVerifier(cfg.Auth.JWTSecret)
	rateLimiter := service.NewRateLimiter(infra.Redis())
	healthChecker := NewHealthChecker(infra)

	partnerClient := &http.Client{Timeout: partnerAPITimeout}
	lwaClient := amazon.NewLWAClient(partnerClient, cfg.Amazon.TokenEndpoint, cfg.Amazon.LWAClientID, cfg.Amazon.LWAClientSecret)
	ordersClient := amazon.NewOrdersClient(partnerClient, cfg.Amazon.APIEndpoint, amazon.Credentials{
		AccessKeyID:     cfg.Amazon.AWSAccessKeyID,
		SecretAccessKey: cfg.Amazon.AWSSecretAccessKey,
	})

	authService := service.NewAmazonAuthService(repos.Account, lwaClient, tokenCipher, cfg.Amazon, infra.Logger())
	refresher := service.NewTokenRefresher(repos.Account, lwaClient, tokenCipher, infra.Logger())
	orderSync := service.NewOrderSyncService(repos.Account, repos.Order, refresher, ordersClient, cfg.Amazon.OrdersWindow.Duration, infra.Logger())

	authHandler := handler.NewAmazonAuthHandler(authService, infra.Logger())
	dataHandler := handler.NewAmazonDataHandler(orderSync, infra.Logger())

	router := gin.Default()
	router.Use(otelgin.Middleware("amazon-connect"))
	router.Use(handler.LoggerMiddleware(infra.Logger()))
	router.Use(handler.CORSMiddleware(cfg.CORS.AllowedOrigins, cfg.CORS.AllowedMethods, cfg.CORS.AllowedHeaders))

	setupRoutes(router, cfg, verifier, authHandler, dataHandler, rateLimiter, healthChecker, infra.MetricsHandler())

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout.Duration,
		WriteTimeout: cfg.Server.WriteTimeout.Duration,
	}

	return &App{
		infra:  infra,
		config: cfg,
		router: router,
		server: srv,
	}, nil
}

func (a *App) Router() *gin.Engine {
	return a.router
}

func setupRoutes(
	router *gin.Engine,
	cfg *config.Config,
	verifier identity.Verifier,
	authHandler *handler.AmazonAuthHandler,
	dataHandler *handler.AmazonDataHandler,
	rateLimiter *service.RateLimiter,
	healthChecker *HealthChecker,
	metricsHandler http.Handler,
) {
	router.GET("/metrics", observability.PrometheusHandler(metricsHandler))
	router.GET("/health", healthChecker.Handler)

	functions := router.Group("/functions/v1")
	functions.Use(handler.AuthMiddleware(verifier))
	{
		functions.POST("/amazon-auth",
			handler.RateLimitMiddleware(rateLimiter, cfg.Security.RateLimitRequests, cfg.Security.RateLimitWindow.Duration, handler.IPBasedKey),
			authHandler.Handle,
		)
		functions.POST("/amazon-data",
			handler.RateLimitMiddleware(rateLimiter, cfg.Security.RateLimitRequests, cfg.Security.RateLimitWindow.Duration, handler.UserBasedKey),
			dataHandler.Handle,
		)
	}
}

func (a *App) Run(ctx context.Context) error {
	errChan := make(chan error, 1)

	go func() {
		a.infra.Logger().Info("Application starting",
			zap.String("host", a.config.Server.Host),
			zap.String("port", a.config.Server.Port),
		)

		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.infra.Logger().Error("Server error", zap.Error(err))
			errChan <- err
		}
	}()

	var serverErr error
	select {
	case err := <-errChan:
		a.infra.Logger().Error("Application failed to start", zap.Error(err))
		serverErr = err
	case <-ctx.Done():
		a.infra.Logger().Info("Application stopped by context")
	}

	if err := a.Shutdown(); err != nil {
		a.infra.Logger().Error("Shutdown error", zap.Error(err))
		if serverErr != nil {
			return errors.Join(serverErr, err)
		}
		return err
	}

	return serverErr
}

func (a *App) Shutdown() error {
	a.infra.Logger().Info("Application shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	errs := make(chan error, 2)

	go func() {
		errs <- a.server.Shutdown(ctx)
	}()

	go func() {
		errs <- a.infra.Shutdown(ctx)
	}()

	err := errors.Join(<-errs, <-errs)
	if err != nil {
		a.infra.Logger().Error("Shutdown failed", zap.Error(err))
		return err
	}

	a.infra.Logger().Info("Application exited successfully")
	return nil
}
