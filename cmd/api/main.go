package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/iamasit07/reversi-online/backend/internal/config"
	"github.com/iamasit07/reversi-online/backend/internal/msgcat"
	"github.com/iamasit07/reversi-online/backend/internal/obslog"
	"github.com/iamasit07/reversi-online/backend/internal/repository/memory"
	"github.com/iamasit07/reversi-online/backend/internal/repository/postgres"
	"github.com/iamasit07/reversi-online/backend/internal/repository/redis"
	"github.com/iamasit07/reversi-online/backend/internal/service/audit"
	"github.com/iamasit07/reversi-online/backend/internal/service/cleanup"
	"github.com/iamasit07/reversi-online/backend/internal/service/game"
	"github.com/iamasit07/reversi-online/backend/internal/service/session"
	transportHttp "github.com/iamasit07/reversi-online/backend/internal/transport/http"
	"github.com/iamasit07/reversi-online/backend/internal/transport/http/middleware"
	"github.com/iamasit07/reversi-online/backend/internal/transport/websocket"
	"github.com/iamasit07/reversi-online/backend/pkg/auth"
)

func main() {
	envErr := godotenv.Load()
	if envErr != nil {
		envErr = godotenv.Load("../.env")
	}

	cfg := config.LoadConfig()
	logger, err := obslog.Init(obslog.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, File: cfg.LogFile})
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if envErr != nil {
		logger.Info("no .env file found")
	}
	for _, w := range cfg.Warnings {
		logger.Warn("config", zap.String("warning", w))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Persistence: postgres, then redis, then in-process
	var (
		auditLog audit.Log
		users    session.UserStore
		cache    session.CacheRepository
		db       *sql.DB
		rdb      *goredis.Client
	)

	if cfg.RedisURL != "" {
		rdb, err = redis.Connect(ctx, cfg.RedisURL, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			logger.Warn("redis unavailable, continuing without it", zap.Error(err))
		} else {
			defer rdb.Close()
			cache = redis.NewRedisCache(rdb)
		}
	}

	switch {
	case cfg.DatabaseURL != "":
		db, err = postgres.Open(ctx, cfg.DatabaseDriver, cfg.DatabaseURL,
			cfg.DBMaxOpenConns, cfg.DBMaxIdleConns, cfg.DBConnMaxLifetimeMin)
		if err != nil {
			logger.Fatal("database unreachable", zap.Error(err))
		}
		defer db.Close()

		logger.Info("running database migrations")
		if err := postgres.RunMigrations(ctx, db); err != nil {
			logger.Fatal("migration failed", zap.Error(err))
		}
		auditLog = postgres.NewAuditRepo(db)
		users = postgres.NewUserRepo(db)
		logger.Info("using postgres store", zap.String("driver", cfg.DatabaseDriver))

	case rdb != nil:
		store := redis.NewStore(rdb)
		auditLog, users = store, store
		logger.Info("using redis store")

	default:
		store := memory.NewStore()
		auditLog, users = store, store
		logger.Warn("no DATABASE_URL or REDIS_URL, audit data is kept in memory")
	}

	// 2. Services
	recorder := audit.NewRecorder(auditLog, cfg.AuditQueueSize, cfg.AuditTimeout, logger.Named("audit"))
	recorder.Start()
	defer recorder.Close()

	messages, err := msgcat.New(cfg.MessagesDir)
	if err != nil {
		logger.Fatal("failed to load message catalog", zap.Error(err))
	}

	sessionManager := game.NewSessionManager(recorder, logger.Named("game"))
	issuer := auth.NewIssuer(cfg.JWTSecret, cfg.TokenTTL)
	authService := session.NewAuthService(users, issuer, cache, cfg.TokenTTL, logger.Named("auth"))
	connManager := websocket.NewConnectionManager(logger.Named("conn"))

	// 3. Background workers
	cleanupWorker := cleanup.NewWorker(sessionManager, cfg.CleanupInterval, cfg.SessionIdleTimeout, logger.Named("cleanup"))
	go cleanupWorker.Start(ctx)

	// 4. Handlers
	wsHandler := websocket.NewHandler(connManager, sessionManager, authService, recorder, messages, cfg.AllowedOrigins, logger.Named("ws"))
	statusHandler := transportHttp.NewStatusHandler(sessionManager, connManager)

	// 5. Router
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(middleware.RequestLogger(logger.Named("http")), gin.Recovery())
	router.Use(middleware.CORSMiddleware(cfg.AllowedOrigins, logger.Named("http")))

	router.GET("/ws", gin.WrapF(wsHandler.HandleWebSocket))
	router.GET("/healthz", statusHandler.Health)
	router.GET("/api/members", statusHandler.GetMembers)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("server starting", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("server is shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// hijacked websocket connections are not tracked by Shutdown
	connManager.CloseAll()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exited gracefully")
}
