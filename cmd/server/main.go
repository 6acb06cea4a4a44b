package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/AnshRaj112/salvioris-journal/internal/auth"
	"github.com/AnshRaj112/salvioris-journal/internal/config"
	"github.com/AnshRaj112/salvioris-journal/internal/database"
	"github.com/AnshRaj112/salvioris-journal/internal/handlers"
	"github.com/AnshRaj112/salvioris-journal/internal/middleware"
	"github.com/AnshRaj112/salvioris-journal/internal/repository"
	"github.com/AnshRaj112/salvioris-journal/internal/routes"
	"github.com/AnshRaj112/salvioris-journal/internal/services"
	"github.com/AnshRaj112/salvioris-journal/pkg/logger"
	"github.com/AnshRaj112/salvioris-journal/pkg/utils"
)

func main() {
	// Load env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Invalid configuration: ", err)
	}
	if err := run(cfg); err != nil {
		log.Fatal(err)
	}
}

// run owns every resource it opens, so returning an error still closes the
// ones already deferred.
func run(cfg *config.Config) error {
	appLog, err := logger.New(
		logger.WithLevel(cfg.LogLevel),
		logger.WithFormat(cfg.LogFormat),
		logger.WithFile(cfg.LogFile),
		logger.WithCaller(!cfg.IsProduction()),
	)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer appLog.Sync()
	ctx := context.Background()

	cipher, err := utils.NewBodyCipher(cfg.EncryptionKey)
	if err != nil {
		return fmt.Errorf("ENCRYPTION_KEY is invalid: %w", err)
	}
	if cipher == nil {
		appLog.Warn(ctx, "ENCRYPTION_KEY not set; entry bodies are stored in plaintext")
	} else {
		log.Println("✅ Encryption key configured")
	}

	db, err := openSQL(cfg)
	if err != nil {
		return fmt.Errorf("open %s database: %w", cfg.DBDriver, err)
	}
	defer db.Close()
	store := repository.New(db, cipher)

	// Redis backs sessions, the user cache and the shared rate limit. The
	// memory session store runs without it.
	var redisClient *redis.Client
	if cfg.SessionStore == "redis" {
		redisClient, err = database.ConnectRedis(cfg.RedisURI)
		if err != nil {
			return fmt.Errorf("connect to Redis: %w", err)
		}
		defer redisClient.Close()
	}

	var sessions services.SessionManager
	var cache *services.CacheService
	var limiter *middleware.RedisRateLimiter
	if redisClient != nil {
		sessions = services.NewRedisSessionManager(redisClient, cfg.SessionTTL, appLog)
		cache = services.NewCacheService(redisClient)
		limiter = middleware.NewRedisRateLimiter(redisClient, appLog)
	} else {
		sessions = services.NewMemorySessionManager(services.MemorySessionOptions{
			TTL:           cfg.SessionTTL,
			PurgeInterval: 10 * time.Minute,
		})
		log.Println("✅ In-memory session store started")
	}
	defer sessions.Close()

	var activity services.ActivityRecorder = services.NopActivity{}
	if cfg.MongoURI != "" {
		mongoClient, mongoDB, err := database.ConnectMongo(cfg.MongoURI)
		if err != nil {
			return fmt.Errorf("connect to MongoDB: %w", err)
		}
		defer database.DisconnectMongo(mongoClient)

		activityLog := services.NewMongoActivityLog(mongoDB, appLog)
		if err := activityLog.EnsureIndexes(ctx); err != nil {
			appLog.Warn(ctx, "failed to ensure activity indexes", "error", err)
		} else {
			log.Println("✅ MongoDB activity indexes ensured")
		}
		defer activityLog.Wait()
		activity = activityLog
	}

	views, err := handlers.NewRenderer()
	if err != nil {
		return fmt.Errorf("parse templates: %w", err)
	}

	users := services.NewUserService(store, cache, appLog)
	secure := cfg.IsProduction()
	gate := auth.NewGate(
		sessions,
		users,
		store,
		auth.NewCookieCodec(cfg.SessionHashKey, cfg.SessionBlockKey, cfg.SessionTTL, secure),
		appLog,
	)
	h := handlers.New(handlers.Deps{
		Users:    users,
		Store:    store,
		Gate:     gate,
		Views:    views,
		Flash:    handlers.NewFlashStore(cfg.FlashSecret, secure),
		Activity: activity,
		Log:      appLog,
	})

	router, stopMiddleware := routes.New(h, gate, routes.Options{
		Production:     cfg.IsProduction(),
		TrustProxy:     cfg.TrustProxy,
		AllowedHost:    cfg.AllowedHost,
		AllowedOrigins: cfg.AllowedOrigins,
		RateLimiter:    limiter,
		Log:            appLog,
	})
	defer stopMiddleware()
	if cfg.IsProduction() {
		log.Println("✅ Production security enabled (host check, per-IP + login rate limiting)")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Printf("🚀 Journal server running on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serveErr:
		return fmt.Errorf("server failed: %w", err)
	case <-quit:
	}
	appLog.Info(ctx, "shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	logger.LogIfError(ctx, appLog, srv.Shutdown(shutdownCtx), "graceful shutdown failed")
	return nil
}

func openSQL(cfg *config.Config) (*sql.DB, error) {
	if cfg.DBDriver == "sqlite3" {
		return database.OpenSQLite(cfg.SQLitePath)
	}
	return database.ConnectPostgres(cfg.PostgresURI)
}
