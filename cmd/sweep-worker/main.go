package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/selvamkrish/table-reservations-and-content/internal/adapters/crdb"
	"github.com/selvamkrish/table-reservations-and-content/internal/config"
	"github.com/selvamkrish/table-reservations-and-content/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	shutdownOtel, err := observability.SetupOTel(context.Background(), cfg)
	if err != nil {
		log.Fatalf("failed to setup otel: %v", err)
	}
	defer shutdownOtel()

	logger := observability.NewLogger()

	pool, err := pgxpool.New(context.Background(), cfg.CRDBDSN)
	if err != nil {
		log.Fatalf("failed to connect to crdb: %v", err)
	}
	defer pool.Close()
	repo := crdb.NewRepository(pool)

	worker := NewSweepWorker(repo, cfg.SweepGrace, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go worker.Run(ctx, time.Minute)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.Info("Shutdown sweep worker")
}

// SweepWorker cancels pending reservations whose guest rows never landed.
// The grace period gives the dependent writes time to settle before a row
// counts as orphaned.
type SweepWorker struct {
	repo   *crdb.Repository
	grace  time.Duration
	logger observability.Logger
}

func NewSweepWorker(repo *crdb.Repository, grace time.Duration, logger observability.Logger) *SweepWorker {
	return &SweepWorker{repo: repo, grace: grace, logger: logger}
}

func (w *SweepWorker) Run(ctx context.Context, interval time.Duration) {
	w.logger.Info("Sweep worker started")
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			w.sweep(ctx, now)
		}
	}
}

func (w *SweepWorker) sweep(ctx context.Context, now time.Time) {
	ids, err := w.repo.FindOrphanedPending(ctx, now.Add(-w.grace))
	if err != nil {
		w.logger.Error("failed to find orphaned reservations", err)
		return
	}

	for _, id := range ids {
		if err := w.repo.CancelOrphan(ctx, id); err != nil {
			w.logger.WithField("reservation_id", id.String()).Error("failed to cancel orphan", err)
			continue
		}
		observability.SweepCancellations.Inc()
		w.logger.WithField("reservation_id", id.String()).Info("cancelled orphaned reservation")
	}
}
