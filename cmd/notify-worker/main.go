package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/selvamkrish/table-reservations-and-content/internal/adapters/crdb"
	"github.com/selvamkrish/table-reservations-and-content/internal/adapters/rabbit"
	"github.com/selvamkrish/table-reservations-and-content/internal/config"
	"github.com/selvamkrish/table-reservations-and-content/internal/domain"
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

	conn, err := amqp.Dial(cfg.RabbitURL)
	if err != nil {
		log.Fatalf("failed to connect to rabbitmq: %v", err)
	}
	defer conn.Close()
	consumer, err := rabbit.NewConsumer(conn, "trc.notifications")
	if err != nil {
		log.Fatalf("failed to create consumer: %v", err)
	}

	worker := NewNotifyWorker(repo, consumer, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := worker.Run(ctx); err != nil && ctx.Err() == nil {
			log.Fatalf("notify worker stopped: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.Info("Shutdown notify worker")
}

// NotifyWorker consumes reservation events. Created events turn into guest
// notifications; status changes are also the single writer of the history
// table, so the audit trail lags the transition by at most the queue delay.
type NotifyWorker struct {
	repo     *crdb.Repository
	consumer *rabbit.Consumer
	logger   observability.Logger
}

func NewNotifyWorker(repo *crdb.Repository, consumer *rabbit.Consumer, logger observability.Logger) *NotifyWorker {
	return &NotifyWorker{repo: repo, consumer: consumer, logger: logger}
}

func (w *NotifyWorker) Run(ctx context.Context) error {
	deliveries, err := w.consumer.Consume(ctx)
	if err != nil {
		return err
	}
	w.logger.Info("Notify worker started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("delivery channel closed")
			}
			if err := w.handleWithRetry(ctx, d); err != nil {
				w.logger.WithField("routing_key", d.RoutingKey).Error("failed to handle event after retries", err)
				d.Nack(false, false)
				continue
			}
			d.Ack(false)
		}
	}
}

func (w *NotifyWorker) handleWithRetry(ctx context.Context, d amqp.Delivery) error {
	maxRetries := 3
	var err error
	for i := 0; i < maxRetries; i++ {
		if err = w.handle(ctx, d); err == nil {
			return nil
		}
		backoff := time.Duration(1<<i) * time.Second
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
	return err
}

func (w *NotifyWorker) handle(ctx context.Context, d amqp.Delivery) error {
	switch d.RoutingKey {
	case "reservation.created":
		return w.handleCreated(ctx, d.Body)
	case "reservation.status_changed":
		return w.handleStatusChanged(ctx, d.Body)
	default:
		w.logger.WithField("routing_key", d.RoutingKey).Info("ignoring event")
		return nil
	}
}

func (w *NotifyWorker) handleCreated(ctx context.Context, body []byte) error {
	var evt struct {
		ReservationID uuid.UUID `json:"reservation_id"`
	}
	if err := json.Unmarshal(body, &evt); err != nil {
		return err
	}

	res, err := w.repo.GetReservation(ctx, evt.ReservationID)
	if err != nil {
		return err
	}

	// Notification delivery is a stub: the share link is logged where a
	// real WhatsApp Business API call would go.
	w.logger.WithField("reservation_id", res.ID.String()).
		WithField("share_link", domain.WhatsAppLink(*res)).
		Info("dispatching reservation confirmation")
	return nil
}

func (w *NotifyWorker) handleStatusChanged(ctx context.Context, body []byte) error {
	var evt struct {
		ReservationID uuid.UUID     `json:"reservation_id"`
		From          domain.Status `json:"from"`
		To            domain.Status `json:"to"`
		ChangedBy     string        `json:"changed_by"`
		ChangedAt     time.Time     `json:"changed_at"`
	}
	if err := json.Unmarshal(body, &evt); err != nil {
		return err
	}

	entry := domain.HistoryEntry{
		ID:            uuid.New(),
		ReservationID: evt.ReservationID,
		FromStatus:    evt.From,
		ToStatus:      evt.To,
		ChangedBy:     evt.ChangedBy,
		ChangedAt:     evt.ChangedAt,
	}
	if err := w.repo.AppendHistory(ctx, entry); err != nil {
		return err
	}

	w.logger.WithField("reservation_id", evt.ReservationID.String()).
		WithField("to", string(evt.To)).
		Info("dispatching status update notification")
	return nil
}
