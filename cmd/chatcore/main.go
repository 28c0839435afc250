// Command chatcore runs the chat server: Postgres-backed users and
// friendships, a Redis-backed session/message cache, the in-memory
// presence Hub, and the Gin router fronting the WebSocket edge.
package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/streamspace-dev/chatcore/internal/cache"
	"github.com/streamspace-dev/chatcore/internal/config"
	"github.com/streamspace-dev/chatcore/internal/db"
	"github.com/streamspace-dev/chatcore/internal/friendship"
	"github.com/streamspace-dev/chatcore/internal/httpserver"
	"github.com/streamspace-dev/chatcore/internal/hub"
	"github.com/streamspace-dev/chatcore/internal/logger"
	"github.com/streamspace-dev/chatcore/internal/session"
	"github.com/streamspace-dev/chatcore/internal/store"
)

func main() {
	cfg := config.Load()
	logger.Initialize(cfg.LogLevel, cfg.LogPretty)

	log.Println("Connecting to database...")
	database, err := db.NewDatabase(db.Config{DSN: cfg.DatabaseURL, MaxOpenConns: cfg.DBMaxConns})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	log.Println("Running database migrations...")
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Connecting to Redis cache...")
	redisCache, err := newCache(cfg.RedisURL)
	if err != nil {
		log.Printf("Failed to connect to Redis (continuing without caching): %v", err)
		redisCache, _ = cache.NewCache(cache.Config{Enabled: false})
	}
	defer redisCache.Close()

	chatStore := store.New(database, redisCache)
	sessions := session.New(chatStore)
	friendships := friendship.New(chatStore)
	chatHub := hub.New()

	router := httpserver.New(httpserver.Deps{
		Hub:         chatHub,
		Store:       chatStore,
		Friendships: friendships,
		Sessions:    sessions,
		Database:    database,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		log.Printf("chatcore listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Printf("received shutdown signal: %v", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server forced to shutdown: %v", err)
	}
}

// newCache parses CHAT_REDIS_URL into the Host/Port/Password/DB shape
// cache.Config expects, enabling the cache whenever a URL is configured.
func newCache(rawURL string) (*cache.Cache, error) {
	opt, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	host, port, err := net.SplitHostPort(opt.Addr)
	if err != nil {
		return nil, fmt.Errorf("splitting redis address %q: %w", opt.Addr, err)
	}
	return cache.NewCache(cache.Config{
		Host:     host,
		Port:     port,
		Password: opt.Password,
		DB:       opt.DB,
		Enabled:  true,
	})
}
