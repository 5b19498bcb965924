package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"infrasense-be/classifier"
	"infrasense-be/config"
	"infrasense-be/middlewares"
	"infrasense-be/routes"
	"infrasense-be/services"
	"infrasense-be/store"
	"infrasense-be/telemetry"
	"infrasense-be/uploads"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 15 * time.Second

func newServeCmd(v *viper.Viper) *cobra.Command {
	var memory bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), config.Load(v), memory)
		},
	}
	cmd.Flags().String("port", "8080", "listen port (env PORT)")
	cmd.Flags().BoolVar(&memory, "memory", false, "keep issues in memory instead of MongoDB")
	_ = v.BindPFlag(config.KeyPort, cmd.Flags().Lookup("port"))
	return cmd
}

func runServe(ctx context.Context, cfg config.Config, memory bool) error {
	logger := newLogger(cfg)
	slog.SetDefault(logger)
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.JWTSecret == "" {
		logger.Warn("JWT_SECRET is not set; authenticated routes will fail")
	}

	shutdownTelemetry, err := telemetry.Init(ctx, telemetry.Settings{
		Enabled:  cfg.OTelEnabled,
		Stdout:   cfg.OTelStdout,
		Endpoint: cfg.OTLPEndpoint,
	}, "infrasense-be", Version)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(flushCtx); err != nil {
			logger.Warn("telemetry shutdown failed", "error", err)
		}
	}()

	issueStore, closeStore, err := openStore(ctx, cfg, memory, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	limiter, closeLimiter := openLimiter(ctx, cfg, logger)
	defer closeLimiter()

	issueStore = telemetry.WrapStore(issueStore)
	router := routes.NewRouter(routes.Deps{
		Store:     issueStore,
		Issues:    services.NewIssueService(issueStore, newClassifier(cfg, logger), logger),
		Stats:     services.NewStatsService(issueStore),
		Images:    uploads.NewStore(cfg.UploadDir, cfg.MaxUploadBytes),
		Limiter:   limiter,
		JWTSecret: cfg.JWTSecret,
		Logger:    logger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server is running", "addr", srv.Addr, "persistent", issueStore.Persistent())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// openStore picks the issue store. Without MONGODB_URI the service runs in
// mock mode; an unreachable database is fatal in production only.
func openStore(ctx context.Context, cfg config.Config, memory bool, logger *slog.Logger) (store.IssueStore, func(), error) {
	noop := func() {}
	if memory {
		logger.Info("using in-memory issue store")
		return store.NewMemoryStore(), noop, nil
	}
	if cfg.MongoURI == "" {
		logger.Warn("MONGODB_URI not set; running in mock mode, submissions are not persisted")
		return store.NewNullStore(), noop, nil
	}

	client, err := config.ConnectDB(ctx, cfg.MongoURI)
	if err != nil {
		if cfg.IsProduction() {
			return nil, nil, err
		}
		logger.Error("MongoDB unavailable; running in mock mode, submissions are not persisted", "error", err)
		return store.NewNullStore(), noop, nil
	}
	logger.Info("connected to MongoDB", "database", cfg.MongoDatabase)

	mongoStore := store.NewMongoStore(client.Database(cfg.MongoDatabase))
	if err := mongoStore.EnsureIndexes(ctx); err != nil {
		logger.Warn("failed to create issue indexes", "error", err)
	}

	return mongoStore, func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Disconnect(disconnectCtx); err != nil {
			logger.Warn("MongoDB disconnect failed", "error", err)
		}
	}, nil
}

// openLimiter prefers the shared Redis counter and falls back to a
// per-process limiter.
func openLimiter(ctx context.Context, cfg config.Config, logger *slog.Logger) (middlewares.Limiter, func()) {
	local := func() (middlewares.Limiter, func()) {
		return middlewares.NewLocalLimiter(cfg.IssueDailyLimit, middlewares.DailyWindow), func() {}
	}
	if cfg.RedisAddress == "" {
		logger.Info("REDIS_ADDRESS not set; using in-process rate limiter")
		return local()
	}

	client, err := config.ConnectRedis(ctx, cfg.RedisAddress, cfg.RedisPassword)
	if err != nil {
		logger.Warn("Redis unavailable; using in-process rate limiter", "error", err)
		return local()
	}
	logger.Info("connected to Redis", "addr", cfg.RedisAddress)

	return middlewares.NewRedisLimiter(client, cfg.RedisQueue, cfg.IssueDailyLimit), func() {
		if err := client.Close(); err != nil {
			logger.Warn("Redis close failed", "error", err)
		}
	}
}

func newClassifier(cfg config.Config, logger *slog.Logger) classifier.Classifier {
	if cfg.MLServiceURL == "" {
		logger.Warn("ML_SERVICE_URL not set; every issue will be classified medium")
		return classifier.Fallback{}
	}
	return classifier.NewHTTPClassifier(cfg.MLServiceURL, classifier.WithTimeout(cfg.ClassifierTimeout))
}
