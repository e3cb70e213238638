package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	firebaseapp "firebase.google.com/go/v4"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/example/parlour/internal/api"
	"github.com/example/parlour/internal/auth"
	"github.com/example/parlour/internal/config"
	"github.com/example/parlour/internal/core"
	"github.com/example/parlour/internal/firebase"
	"github.com/example/parlour/internal/middleware"
	"github.com/example/parlour/pkg/cache"
	"github.com/example/parlour/pkg/database"
	"github.com/example/parlour/pkg/metrics"
)

const initTimeout = 15 * time.Second

func main() {
	// In production, environment variables are set directly.
	if os.Getenv("GIN_MODE") != gin.ReleaseMode {
		if err := godotenv.Load(); err != nil {
			log.Println("Warning: Error loading .env file:", err)
		}
	}

	appConfig, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("CRITICAL_ERROR: Failed to load application configuration: %v", err)
	}

	zapLogger, err := newLogger(appConfig.IsRelease())
	if err != nil {
		log.Fatalf("CRITICAL_ERROR: Failed to initialize Zap logger: %v", err)
	}
	defer zapLogger.Sync() //nolint:errcheck

	if err := run(appConfig, zapLogger); err != nil {
		zapLogger.Fatal("Server stopped with error", zap.Error(err))
	}
	zapLogger.Info("Server exiting gracefully.")
}

func newLogger(release bool) (*zap.Logger, error) {
	if release {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func run(appConfig *config.Config, logger *zap.Logger) error {
	initCtx, cancelInit := context.WithTimeout(context.Background(), initTimeout)
	defer cancelInit()

	var fbApp *firebaseapp.App
	if appConfig.FirebaseEnabled() {
		app, err := firebase.InitFirebase(initCtx, appConfig)
		if err != nil {
			return fmt.Errorf("initialize firebase: %w", err)
		}
		fbApp = app
		logger.Info("Firebase Admin SDK initialized", zap.String("projectID", appConfig.FirebaseProjectID))
	}

	verifier, err := newVerifier(initCtx, fbApp, logger)
	if err != nil {
		return err
	}

	store, err := newStore(initCtx, appConfig, fbApp)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), appConfig.ShutdownTimeout)
		defer cancel()
		if err := store.Close(closeCtx); err != nil {
			logger.Warn("Failed to close store", zap.Error(err))
		}
	}()
	logger.Info("Store connected", zap.String("driver", appConfig.DBDriver))

	var appMetrics *metrics.Metrics
	if appConfig.MetricsEnabled {
		appMetrics = metrics.New()
	}

	serviceCache := newCache(initCtx, appConfig, appMetrics, logger)
	defer serviceCache.Close() //nolint:errcheck

	catalog := core.NewCatalogService(store, serviceCache, appConfig.CacheTTL, appConfig.ServicesListLimit, logger)
	bookings := core.NewBookingService(store)
	reviews := core.NewReviewService(store)
	users := core.NewUserService(store, logger)

	if appConfig.IsRelease() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}
	router := gin.New()
	router.Use(middleware.RequestLogger(logger, appMetrics))
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.CORSMiddleware(appConfig.ClientURL))

	api.SetupRoutes(router, appConfig, logger, store, catalog, bookings, reviews, users, verifier, appMetrics)

	httpServer := &http.Server{
		Addr:              ":" + appConfig.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting HTTP server", zap.String("address", httpServer.Addr), zap.String("ginMode", gin.Mode()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), appConfig.ShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// newVerifier returns a Firebase token verifier, or one that rejects every
// token when Firebase is not configured.
func newVerifier(ctx context.Context, app *firebaseapp.App, logger *zap.Logger) (auth.TokenVerifier, error) {
	if app == nil {
		logger.Warn("FIREBASE_PROJECT_ID is not set; bearer tokens will be rejected")
		return auth.DisabledVerifier{}, nil
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase auth client: %w", err)
	}
	return auth.NewFirebaseVerifier(client), nil
}

func newStore(ctx context.Context, appConfig *config.Config, app *firebaseapp.App) (database.Store, error) {
	switch appConfig.DBDriver {
	case config.DriverFirestore:
		if app == nil {
			return nil, fmt.Errorf("%w: FIREBASE_PROJECT_ID for firestore driver", config.ErrMissingSetting)
		}
		client, err := app.Firestore(ctx)
		if err != nil {
			return nil, fmt.Errorf("firestore client: %w", err)
		}
		return database.NewFirestoreServiceFromClient(client, appConfig.FirebaseProjectID), nil
	case config.DriverMemory:
		return database.NewMemoryStore(), nil
	default:
		return database.NewMongoStore(ctx, database.NewMongoStoreConfig{
			URI:      appConfig.MongoURI(),
			Database: appConfig.DBName,
		})
	}
}

// newCache connects the service cache. An unreachable Redis degrades to no
// caching rather than stopping the server.
func newCache(ctx context.Context, appConfig *config.Config, m *metrics.Metrics, logger *zap.Logger) cache.Cache {
	if !appConfig.CacheEnabled() {
		return cache.Noop{}
	}
	cfg := cache.NewRedisCacheConfig{
		Address:  appConfig.RedisAddr,
		Password: appConfig.RedisPassword,
		DB:       appConfig.RedisDB,
	}
	if m != nil {
		cfg.Observer = m
	}
	rc, err := cache.NewRedisCache(ctx, cfg)
	if err != nil {
		logger.Warn("Service cache disabled", zap.String("address", appConfig.RedisAddr), zap.Error(err))
		return cache.Noop{}
	}
	logger.Info("Service cache connected", zap.String("address", appConfig.RedisAddr))
	return rc
}
