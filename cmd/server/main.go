package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"

	"github.com/rl1809/sweet-shop/internal/adapter/auth"
	"github.com/rl1809/sweet-shop/internal/adapter/handler"
	"github.com/rl1809/sweet-shop/internal/adapter/storage"
	"github.com/rl1809/sweet-shop/internal/config"
	"github.com/rl1809/sweet-shop/internal/core/service"
	"github.com/rl1809/sweet-shop/internal/obs"
	"github.com/rl1809/sweet-shop/internal/port"
)

func main() {
	obs.InitLogger()

	cfg, err := config.Load()
	if err != nil {
		fatal("invalid configuration", err)
	}

	tokenService, err := auth.NewJWTService(cfg.JWTSecret, cfg.JWTAlgorithm, cfg.TokenTTL)
	if err != nil {
		fatal("invalid token configuration", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize MySQL
	db, err := sql.Open("mysql", cfg.DSN())
	if err != nil {
		fatal("failed to open mysql", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		fatal("failed to ping mysql", err)
	}
	obs.Logger.Info("connected to mysql", "database", cfg.MySQLDB)

	mysqlAdapter := storage.NewMySQLAdapter(db)
	if err := mysqlAdapter.InitSchema(ctx); err != nil {
		fatal("failed to init schema", err)
	}

	// Initialize Redis when configured; without it stock mutations simply
	// skip the replay guard.
	var cache port.CacheRepository
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			fatal("failed to connect redis", err)
		}
		defer rdb.Close()
		cache = storage.NewRedisAdapter(rdb)
		obs.Logger.Info("connected to redis", "addr", cfg.RedisAddr)
	}

	// Initialize services
	authService := service.NewAuthService(mysqlAdapter.Users, auth.NewBcryptHasher(), tokenService)
	categoryService := service.NewCategoryService(mysqlAdapter.Categories)
	sweetService := service.NewSweetService(mysqlAdapter.Sweets, mysqlAdapter.Categories, cache)

	// Initialize HTTP server
	httpHandler := handler.NewHTTPHandler(authService, categoryService, sweetService, tokenService)
	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: handler.NewRouter(httpHandler),
	}

	go func() {
		obs.Logger.Info("http server listening", "addr", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			obs.Logger.Error("http server error", "error", err.Error())
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	obs.Logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	httpServer.Shutdown(shutdownCtx)
	obs.Logger.Info("http server stopped")
}

func fatal(msg string, err error) {
	obs.Logger.Error(msg, "error", err.Error())
	os.Exit(1)
}
