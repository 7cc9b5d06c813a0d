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

	"storefront-service/internal/adapter/handler"
	"storefront-service/internal/adapter/metrics"
	"storefront-service/internal/adapter/storage"
	"storefront-service/internal/config"
	"storefront-service/internal/core/service"
	"storefront-service/internal/obs"
	"storefront-service/internal/port"
)

func main() {
	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		obs.Logger.Error("mysql_open_failed", "error", err)
		os.Exit(1)
	}
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		obs.Logger.Error("mysql_ping_failed", "error", err)
		os.Exit(1)
	}
	obs.Logger.Info("connected_to_mysql")

	mysqlAdapter := storage.NewMySQLAdapter(db)
	if err := mysqlAdapter.Migrate(ctx); err != nil {
		obs.Logger.Error("migrate_failed", "error", err)
		os.Exit(1)
	}
	if err := mysqlAdapter.Seed(ctx); err != nil {
		obs.Logger.Error("seed_failed", "error", err)
		os.Exit(1)
	}
	obs.Logger.Info("database_initialized")

	// Redis is optional: without it, duplicate order submissions are not
	// detected but placement still works.
	var guard port.IdempotencyGuard
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			obs.Logger.Error("redis_ping_failed", "error", err)
			os.Exit(1)
		}
		guard = storage.NewRedisAdapter(rdb)
		obs.Logger.Info("connected_to_redis", "addr", cfg.RedisAddr)
	}

	collector := metrics.NewCollector()
	orderService := service.NewOrderService(mysqlAdapter, guard, collector)
	queryService := service.NewQueryService(mysqlAdapter, collector)

	h := handler.NewHTTPHandler(orderService, queryService, collector)

	httpServer := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      handler.NewRouter(h),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		obs.Logger.Info("http_server_listening", "addr", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			obs.Logger.Error("http_server_error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	obs.Logger.Info("shutting_down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		obs.Logger.Error("shutdown_error", "error", err)
	}
	obs.Logger.Info("http_server_stopped")

	if rdb != nil {
		rdb.Close()
	}
	db.Close()
	obs.Logger.Info("connections_closed")
}
