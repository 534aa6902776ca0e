package integration_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	redisclient "github.com/redis/go-redis/v9"
	"github.com/selvamkrish/table-reservations-and-content/internal/adapters/crdb"
	mongoadapter "github.com/selvamkrish/table-reservations-and-content/internal/adapters/mongo"
	redisadapter "github.com/selvamkrish/table-reservations-and-content/internal/adapters/redis"
	"github.com/selvamkrish/table-reservations-and-content/internal/booking"
	"github.com/selvamkrish/table-reservations-and-content/internal/config"
	"github.com/selvamkrish/table-reservations-and-content/internal/domain"
	httphandler "github.com/selvamkrish/table-reservations-and-content/internal/http"
	"github.com/selvamkrish/table-reservations-and-content/internal/idempotency"
	"github.com/selvamkrish/table-reservations-and-content/internal/observability"
	"github.com/selvamkrish/table-reservations-and-content/internal/ratelimit"
	"github.com/selvamkrish/table-reservations-and-content/internal/session"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const schema = `
	CREATE DATABASE IF NOT EXISTS trc;
	CREATE TABLE IF NOT EXISTS trc.reservations (
		id UUID PRIMARY KEY,
		user_id UUID,
		variant TEXT NOT NULL,
		date DATE NOT NULL,
		time_slot TEXT NOT NULL,
		guest_count INT NOT NULL,
		total_amount INT8 NOT NULL,
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		phone TEXT NOT NULL,
		company_name TEXT NOT NULL DEFAULT '',
		event_type TEXT NOT NULL DEFAULT '',
		special_requests TEXT NOT NULL DEFAULT '',
		coupon_applied BOOL NOT NULL DEFAULT false,
		status TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	CREATE TABLE IF NOT EXISTS trc.reservation_guests (
		id UUID PRIMARY KEY,
		reservation_id UUID NOT NULL,
		name TEXT NOT NULL,
		gender TEXT NOT NULL,
		cover_charge INT8 NOT NULL
	);
	CREATE TABLE IF NOT EXISTS trc.reservation_amenities (
		reservation_id UUID NOT NULL,
		amenity TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS trc.booking_history (
		id UUID PRIMARY KEY,
		reservation_id UUID NOT NULL,
		from_status TEXT NOT NULL,
		to_status TEXT NOT NULL,
		changed_by TEXT NOT NULL,
		changed_at TIMESTAMPTZ NOT NULL
	);
	CREATE TABLE IF NOT EXISTS trc.outbox (
		id UUID PRIMARY KEY,
		aggregate_type TEXT NOT NULL,
		aggregate_id UUID NOT NULL,
		event_type TEXT NOT NULL,
		payload_json JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		published_at TIMESTAMPTZ,
		status TEXT NOT NULL,
		dedupe_key TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS trc.profiles (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		phone TEXT NOT NULL,
		email TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'guest',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
`

func TestIntegration_StandardBookingFlow(t *testing.T) {
	ctx := context.Background()

	crdbContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "cockroachdb/cockroach:v24.1.1",
			Cmd:          []string{"start-single-node", "--insecure"},
			ExposedPorts: []string{"26257/tcp", "8080/tcp"},
			WaitingFor:   wait.ForHTTP("/health?ready=1").WithPort("8080"),
		},
		Started: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	defer crdbContainer.Terminate(ctx)

	mongoContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "mongo:7",
			ExposedPorts: []string{"27017/tcp"},
			WaitingFor:   wait.ForExec([]string{"mongosh", "--eval", "db.runCommand('ping').ok"}),
		},
		Started: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	defer mongoContainer.Terminate(ctx)

	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForExec([]string{"redis-cli", "ping"}),
		},
		Started: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	defer redisContainer.Terminate(ctx)

	crdbDSN, err := crdbContainer.Endpoint(ctx, "postgresql")
	if err != nil {
		t.Fatal(err)
	}
	mongoHost, err := mongoContainer.Host(ctx)
	if err != nil {
		t.Fatal(err)
	}
	mongoPort, err := mongoContainer.MappedPort(ctx, "27017")
	if err != nil {
		t.Fatal(err)
	}
	redisHost, err := redisContainer.Host(ctx)
	if err != nil {
		t.Fatal(err)
	}
	redisPort, err := redisContainer.MappedPort(ctx, "6379")
	if err != nil {
		t.Fatal(err)
	}

	cfg := &config.Config{
		Addr:         ":8081",
		CRDBDSN:      crdbDSN + "/trc?sslmode=disable",
		MongoURI:     "mongodb://" + mongoHost + ":" + mongoPort.Port(),
		RedisAddr:    redisHost + ":" + redisPort.Port(),
		JWTSecret:    "integration-test-secret",
		SessionTTL:   30 * time.Minute,
		CacheTTL:     time.Minute,
		SweepGrace:   15 * time.Minute,
		OTLPEndpoint: "", // skip otel for test
	}

	pool, err := pgxpool.New(ctx, cfg.CRDBDSN)
	if err != nil {
		t.Fatal(err)
	}
	defer pool.Close()
	if _, err := pool.Exec(ctx, schema); err != nil {
		t.Fatal(err)
	}
	repo := crdb.NewRepository(pool)

	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		t.Fatal(err)
	}
	defer mongoClient.Disconnect(ctx)
	mongoDB := mongoClient.Database("trc")
	logger := observability.NewLogger()
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

	srv := &http.Server{Addr: cfg.Addr, Handler: r}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			t.Error(err)
		}
	}()
	defer srv.Shutdown(ctx)
	time.Sleep(100 * time.Millisecond)

	base := "http://localhost:8081"
	date := time.Now().AddDate(0, 0, 7).Format(domain.DateLayout)

	// Open a standard wizard.
	resp := postJSON(t, base+"/v1/booking-sessions", map[string]interface{}{"variant": "standard"}, nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create session: status %d", resp.StatusCode)
	}
	var sess struct {
		SessionID string `json:"session_id"`
	}
	decode(t, resp, &sess)

	// Step 1: details.
	resp = postJSON(t, base+"/v1/booking-sessions/"+sess.SessionID+"/advance", map[string]interface{}{
		"date":        date,
		"time_slot":   "7:00 PM",
		"guest_count": 2,
	}, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("advance details: status %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Step 2: contact.
	resp = postJSON(t, base+"/v1/booking-sessions/"+sess.SessionID+"/advance", map[string]interface{}{
		"name":  "Asha Rao",
		"email": "asha@example.com",
		"phone": "9876543210",
	}, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("advance contact: status %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Step 3: review, name the guests.
	resp = postJSON(t, base+"/v1/booking-sessions/"+sess.SessionID+"/advance", map[string]interface{}{
		"guests": []map[string]interface{}{
			{"name": "Asha Rao", "gender": "female"},
			{"name": "Vikram Rao", "gender": "male"},
		},
	}, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("advance review: status %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Submit with an idempotency key.
	key := uuid.New().String()
	headers := map[string]string{"Idempotency-Key": key}
	resp = postJSON(t, base+"/v1/booking-sessions/"+sess.SessionID+"/submit", map[string]interface{}{}, headers)
	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("submit: status %d body %s", resp.StatusCode, body)
	}
	var submitted struct {
		ReservationID uuid.UUID `json:"reservation_id"`
		Status        string    `json:"status"`
		TotalAmount   int64     `json:"total_amount"`
	}
	decode(t, resp, &submitted)
	if submitted.Status != "pending" || submitted.TotalAmount != 2000 {
		t.Errorf("expected pending / 2000, got %s / %d", submitted.Status, submitted.TotalAmount)
	}

	// Replaying the same key must return the cached response, not a second row.
	resp = postJSON(t, base+"/v1/booking-sessions/"+sess.SessionID+"/submit", map[string]interface{}{}, headers)
	var replay struct {
		ReservationID uuid.UUID `json:"reservation_id"`
	}
	decode(t, resp, &replay)
	if replay.ReservationID != submitted.ReservationID {
		t.Errorf("expected replayed reservation %s, got %s", submitted.ReservationID, replay.ReservationID)
	}

	// Confirmation view.
	getResp, err := http.Get(base + "/v1/reservations/" + submitted.ReservationID.String())
	if err != nil || getResp.StatusCode != http.StatusOK {
		t.Fatalf("get reservation failed: %v, status %d", err, getResp.StatusCode)
	}
	var view struct {
		Confirmation struct {
			ShareLink string `json:"share_link"`
		} `json:"confirmation"`
	}
	decode(t, getResp, &view)
	if view.Confirmation.ShareLink == "" {
		t.Error("expected a share link on the confirmation")
	}
}

func postJSON(t *testing.T, url string, body interface{}, headers map[string]string) *http.Response {
	t.Helper()
	data, _ := json.Marshal(body)
	req, err := http.NewRequest("POST", url, bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func decode(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatal(err)
	}
}
