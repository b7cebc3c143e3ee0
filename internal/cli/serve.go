package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/claritytracking/claritytracking/internal/cache"
	"github.com/claritytracking/claritytracking/internal/config"
	"github.com/claritytracking/claritytracking/internal/handlers"
	"github.com/claritytracking/claritytracking/internal/logging"
	"github.com/claritytracking/claritytracking/internal/middleware"
	"github.com/claritytracking/claritytracking/internal/repository"
	"github.com/claritytracking/claritytracking/internal/server"
	"github.com/claritytracking/claritytracking/internal/service"
	"github.com/claritytracking/claritytracking/pkg/tokens"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		return runServer(cmd.Context(), cfg)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServer(ctx context.Context, cfg *config.Config) error {
	logger := logging.New(logging.ParseLevel(cfg.Logging.Level), cfg.Logging.Format)
	logging.SetDefault(logger)

	if err := migrateUp(cfg, logger); err != nil {
		return err
	}

	repo, err := repository.NewPostgresRepository(ctx, cfg.Database.Postgres.ConnString())
	if err != nil {
		return fmt.Errorf("failed to connect to postgres: %w", err)
	}
	defer repo.Close()

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			return fmt.Errorf("failed to parse redis url: %w", err)
		}
		redisClient = redis.NewClient(opts)
		defer redisClient.Close()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			// The cache degrades to recomputation; refusing to start would
			// couple availability to Redis.
			logger.WarnContext(ctx, "redis unreachable, health cache disabled", logging.Error(err))
			redisClient = nil
		}
	}
	healthCache := cache.NewHealthCache(redisClient, cfg.Redis.TTL, cfg.Redis.Enabled)

	tokenGen := tokens.NewTokenGenerator(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL)

	authService := service.NewAuthService(repo, tokenGen)
	websiteService := service.NewWebsiteService(repo)
	waitlistService := service.NewWaitlistService(repo)
	ingestService := service.NewIngestService(repo, healthCache, logger)
	insightService := service.NewInsightService(repo, healthCache, cfg.Scoring, logger)

	authMW := middleware.NewAuthMiddleware(tokenGen, repo)

	router := server.NewRouter(server.Handlers{
		Auth:      handlers.NewAuthHandler(authService),
		Websites:  handlers.NewWebsiteHandler(websiteService),
		Dashboard: handlers.NewDashboardHandler(websiteService, insightService),
		Ingest:    handlers.NewIngestHandler(websiteService, ingestService, logger),
		Waitlist:  handlers.NewWaitlistHandler(waitlistService),
		Health:    handlers.NewHealthHandler(repo),
	}, authMW, cfg.CORS.AllowedOrigins)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.InfoContext(ctx, "server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		logger.InfoContext(ctx, "shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.WriteTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}

	logger.InfoContext(ctx, "server stopped")
	return nil
}
