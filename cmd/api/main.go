package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	redisclient "github.com/redis/go-redis/v9"
	"github.com/selvamkrish/table-reservations-and-content/internal/adapters/crdb"
	mongoadapter "github.com/selvamkrish/table-reservations-and-content/internal/adapters/mongo"
	redisadapter "github.com/selvamkrish/table-reservations-and-content/internal/adapters/redis"
	"github.com/selvamkrish/table-reservations-and-content/internal/booking"
	"github.com/selvamkrish/table-reservations-and-content/internal/config"
	httphandler "github.com/selvamkrish/table-reservations-and-content/internal/http"
	"github.com/selvamkrish/table-reservations-and-content/internal/idempotency"
	"github.com/selvamkrish/table-reservations-and-content/internal/observability"
	"github.com/selvamkrish/table-reservations-and-content/internal/ratelimit"
	"github.com/selvamkrish/table-reservations-and-content/internal/session"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	shutdown, err := observability.SetupOTel(context.Background(), cfg)
	if err != nil {
		log.Fatalf("failed to setup otel: %v", err)
	}
	defer shutdown()

	logger := observability.NewLogger()

	pool, err := pgxpool.New(context.Background(), cfg.CRDBDSN)
	if err != nil {
		log.Fatalf("failed to connect to crdb: %v", err)
	}
	defer pool.Close()
	repo := crdb.NewRepository(pool)

	mongoClient, err := mongo.Connect(context.Background(), options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatalf("failed to connect to mongo: %v", err)
	}
	defer mongoClient.Disconnect(context.Background())
	mongoDB := mongoClient.Database("trc")
	catalog := mongoadapter.NewCatalogRepository(mongoDB, logger)
	audit := mongoadapter.NewAuditLogger(mongoDB, logger)

	redisClient := redisclient.NewClient(&redisclient.Options{Addr: cfg.RedisAddr})
	cache := redisadapter.NewCache(redisClient)
	idemp := idempotency.NewIdempotency(redisadapter.NewIdempotency(redisClient), time.Hour)
	rl := ratelimit.NewRateLimiter(cache)
	sessions := session.NewStore(redisClient, cfg.SessionTTL)

	bookings := booking.NewService(repo, logger)

	handlers := httphandler.NewHandlers(cfg, logger, bookings, sessions, repo, repo, repo, catalog, audit, cache, idemp)
	r := httphandler.SetupRouter(handlers, logger, rl)

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: r,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutdown Server ...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}
	logger.Info("Server exiting")
}
