package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	_ "tracker/docs"
	"tracker/internal/cache"
	"tracker/internal/clock"
	"tracker/internal/config"
	"tracker/internal/handlers"
	"tracker/internal/logger"
	"tracker/internal/middleware"
	"tracker/internal/pdf"
	"tracker/internal/repositories"
	"tracker/internal/routes"
	"tracker/internal/services"
)

// FontPath is the TTF used for PDF exports; the core Helvetica font is used
// when it is missing.
const FontPath = "assets/fonts/DejaVuSans.ttf"

// Run serves the API until SIGINT or SIGTERM, then drains in-flight
// requests for at most cfg.Server.ShutdownTimeout.
func Run(cfg *config.Config) error {
	log, err := logger.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// === DB ===
	db, err := openDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Warnw("[app][db][close][err]", "err", err)
		}
	}()
	if err := repositories.Migrate(ctx, db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	// === Cache ===
	listCache := cache.Noop()
	if cfg.Redis.Addr != "" {
		client, err := cache.Dial(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		defer func() { _ = client.Close() }()
		listCache = cache.NewRedis(client, cfg.Redis.TTL)
		log.Infow("[app][cache] redis enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.TTL)
	}

	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	router := NewRouter(cfg, db, listCache, clock.Real{}, log)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infow("[app][serve] listening", "addr", srv.Addr, "driver", cfg.Database.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Infow("[app][shutdown] draining", "timeout", cfg.Server.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Infow("[app][shutdown] done")
	return nil
}

// Migrate creates or upgrades the schema and exits.
func Migrate(ctx context.Context, cfg *config.Config) error {
	db, err := openDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	return repositories.Migrate(ctx, db)
}

func openDB(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	db, err := repositories.Open(ctx, cfg.Database.Driver, cfg.Database.DSN, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Database.Driver, err)
	}
	return db, nil
}

// NewRouter wires repositories, services and handlers over db.
func NewRouter(cfg *config.Config, db *sql.DB, c cache.Cache, clk clock.Clock, log *zap.SugaredLogger) *gin.Engine {
	// === Repos ===
	taskRepo := repositories.NewTaskRepository(db)
	goalRepo := repositories.NewGoalRepository(db)
	watchlistRepo := repositories.NewWatchlistRepository(db)
	activityRepo := repositories.NewActivityRepository(db)
	userRepo := repositories.NewUserRepository(db)

	// === Services ===
	activityService := services.NewActivityService(activityRepo, taskRepo, goalRepo, clk, log)
	taskService := services.NewTaskService(taskRepo, activityService, c, clk, log)
	goalService := services.NewGoalService(goalRepo, activityService, c, clk, log)
	watchlistService := services.NewWatchlistService(watchlistRepo, activityService, c, clk, log)
	userService := services.NewUserService(services.UserDeps{
		Users:      userRepo,
		Tasks:      taskRepo,
		Goals:      goalRepo,
		Watchlist:  watchlistRepo,
		Activities: activityRepo,
	}, c, clk, log)

	// === Handlers ===
	h := routes.Handlers{
		Task:      handlers.NewTaskHandler(taskService, log),
		Goal:      handlers.NewGoalHandler(goalService, log),
		Watchlist: handlers.NewWatchlistHandler(watchlistService, log),
		Activity:  handlers.NewActivityHandler(activityService, log),
		User:      handlers.NewUserHandler(userService, pdf.NewExportGenerator(FontPath), log),
	}

	// === Gin ===
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(log))
	router.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderRequestID},
		ExposeHeaders: []string{"Content-Length", "Content-Disposition", middleware.HeaderRequestID},
		MaxAge:        12 * time.Hour,
	}))

	return routes.SetupRoutes(router, []byte(cfg.Auth.JWTSecret), h)
}
