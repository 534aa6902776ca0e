package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	redisclient "github.com/redis/go-redis/v9"
	"github.com/selvamkrish/table-reservations-and-content/internal/adapters/crdb"
	redisadapter "github.com/selvamkrish/table-reservations-and-content/internal/adapters/redis"
	"github.com/selvamkrish/table-reservations-and-content/internal/booking"
	"github.com/selvamkrish/table-reservations-and-content/internal/config"
	"github.com/selvamkrish/table-reservations-and-content/internal/domain"
	httphandler "github.com/selvamkrish/table-reservations-and-content/internal/http"
	"github.com/selvamkrish/table-reservations-and-content/internal/idempotency"
	"github.com/selvamkrish/table-reservations-and-content/internal/observability"
	"github.com/selvamkrish/table-reservations-and-content/internal/ratelimit"
	"github.com/selvamkrish/table-reservations-and-content/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type memStore struct {
	reservations map[uuid.UUID]domain.Reservation
	guests       map[uuid.UUID][]domain.GuestEntry
	amenities    map[uuid.UUID][]string
	history      map[uuid.UUID][]domain.HistoryEntry
	profiles     map[uuid.UUID]crdb.Profile
	failGuests   bool
}

func newMemStore() *memStore {
	return &memStore{
		reservations: map[uuid.UUID]domain.Reservation{},
		guests:       map[uuid.UUID][]domain.GuestEntry{},
		amenities:    map[uuid.UUID][]string{},
		history:      map[uuid.UUID][]domain.HistoryEntry{},
		profiles:     map[uuid.UUID]crdb.Profile{},
	}
}

func (m *memStore) CreateReservation(ctx context.Context, r domain.Reservation) error {
	m.reservations[r.ID] = r
	return nil
}

func (m *memStore) AddGuests(ctx context.Context, id uuid.UUID, guests []domain.GuestEntry) error {
	if m.failGuests {
		return errors.New("guest insert refused")
	}
	m.guests[id] = guests
	return nil
}

func (m *memStore) AddAmenities(ctx context.Context, id uuid.UUID, amenities []string) error {
	m.amenities[id] = amenities
	return nil
}

func (m *memStore) GetReservation(ctx context.Context, id uuid.UUID) (*domain.Reservation, error) {
	r, ok := m.reservations[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	r.Guests = m.guests[id]
	r.Amenities = m.amenities[id]
	return &r, nil
}

func (m *memStore) ListReservations(ctx context.Context, date *time.Time, status *domain.Status) ([]domain.Reservation, error) {
	var out []domain.Reservation
	for _, r := range m.reservations {
		if status != nil && r.Status != *status {
			continue
		}
		if date != nil && !r.Date.Equal(*date) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (m *memStore) UpdateReservationStatus(ctx context.Context, id uuid.UUID, next domain.Status, changedBy string) (domain.Status, error) {
	r, ok := m.reservations[id]
	if !ok {
		return "", domain.ErrNotFound
	}
	if !r.Status.CanTransitionTo(next) {
		return "", domain.ErrInvalidTransition
	}
	prev := r.Status
	r.Status = next
	m.reservations[id] = r
	return prev, nil
}

func (m *memStore) ListHistory(ctx context.Context, id uuid.UUID) ([]domain.HistoryEntry, error) {
	return m.history[id], nil
}

func (m *memStore) GetProfile(ctx context.Context, id uuid.UUID) (*crdb.Profile, error) {
	p, ok := m.profiles[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (m *memStore) UpsertProfile(ctx context.Context, p crdb.Profile) error {
	m.profiles[p.ID] = p
	return nil
}

func newTestServer(t *testing.T) (*httptest.Server, *memStore) {
	t.Helper()
	mr := miniredis.RunT(t)
	redisClient := redisclient.NewClient(&redisclient.Options{Addr: mr.Addr()})

	cfg := &config.Config{
		JWTSecret:  testSecret,
		SessionTTL: 30 * time.Minute,
		CacheTTL:   time.Minute,
	}
	logger := observability.NewLogger()
	store := newMemStore()
	bookings := booking.NewService(store, logger)
	sessions := session.NewStore(redisClient, cfg.SessionTTL)
	cache := redisadapter.NewCache(redisClient)
	idemp := idempotency.NewIdempotency(redisadapter.NewIdempotency(redisClient), time.Hour)
	rl := ratelimit.NewRateLimiter(cache)

	handlers := httphandler.NewHandlers(cfg, logger, bookings, sessions, store, nil, store, nil, nil, cache, idemp)
	srv := httptest.NewServer(httphandler.SetupRouter(handlers, logger, rl))
	t.Cleanup(srv.Close)
	return srv, store
}

func staffToken(t *testing.T) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  uuid.New().String(),
		"name": "Meera",
		"role": "staff",
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func do(t *testing.T, method, url string, body interface{}, headers map[string]string) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestAvailabilityEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	date := time.Now().AddDate(0, 0, 7).Format(domain.DateLayout)
	resp := do(t, "GET", srv.URL+"/v1/availability?date="+date, nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Slots []string `json:"slots"`
	}
	decodeBody(t, resp, &body)
	assert.NotEmpty(t, body.Slots)

	// Yesterday is rejected at the boundary.
	past := time.Now().AddDate(0, 0, -1).Format(domain.DateLayout)
	resp = do(t, "GET", srv.URL+"/v1/availability?date="+past, nil, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestWizardFlow_SubmitStandard(t *testing.T) {
	srv, store := newTestServer(t)
	date := time.Now().AddDate(0, 0, 7).Format(domain.DateLayout)

	resp := do(t, "POST", srv.URL+"/v1/booking-sessions", map[string]interface{}{"variant": "standard"}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var sess struct {
		SessionID string `json:"session_id"`
	}
	decodeBody(t, resp, &sess)
	base := srv.URL + "/v1/booking-sessions/" + sess.SessionID

	// Bad email keeps the wizard on the contact step.
	resp = do(t, "POST", base+"/advance", map[string]interface{}{
		"date": date, "time_slot": "7:00 PM", "guest_count": 2,
	}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = do(t, "POST", base+"/advance", map[string]interface{}{
		"name": "Asha Rao", "email": "not-an-email", "phone": "9876543210",
	}, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	var stuck struct {
		State  string            `json:"state"`
		Errors map[string]string `json:"errors"`
	}
	decodeBody(t, resp, &stuck)
	assert.Equal(t, "contact", stuck.State)
	assert.Contains(t, stuck.Errors, "email")

	resp = do(t, "POST", base+"/advance", map[string]interface{}{"email": "asha@example.com"}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = do(t, "POST", base+"/advance", map[string]interface{}{
		"guests": []map[string]string{
			{"name": "Asha Rao", "gender": "female"},
			{"name": "Vikram Rao", "gender": "male"},
		},
	}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// Submit without a key is rejected before any handler logic runs.
	resp = do(t, "POST", base+"/submit", map[string]interface{}{}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	key := uuid.New().String()
	resp = do(t, "POST", base+"/submit", map[string]interface{}{}, map[string]string{"Idempotency-Key": key})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var submitted struct {
		ReservationID uuid.UUID `json:"reservation_id"`
		Status        string    `json:"status"`
		TotalAmount   int64     `json:"total_amount"`
	}
	decodeBody(t, resp, &submitted)
	assert.Equal(t, "pending", submitted.Status)
	assert.Equal(t, int64(2000), submitted.TotalAmount)
	assert.Len(t, store.reservations, 1)

	// Same key replays the stored response without a second row.
	resp = do(t, "POST", base+"/submit", map[string]interface{}{}, map[string]string{"Idempotency-Key": key})
	var replay struct {
		ReservationID uuid.UUID `json:"reservation_id"`
	}
	decodeBody(t, resp, &replay)
	assert.Equal(t, submitted.ReservationID, replay.ReservationID)
	assert.Len(t, store.reservations, 1)

	// A fresh key on the now-complete session conflicts.
	resp = do(t, "POST", base+"/submit", map[string]interface{}{}, map[string]string{"Idempotency-Key": uuid.New().String()})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()
}

func TestSubmitCorporate_RequiresIdentity(t *testing.T) {
	srv, _ := newTestServer(t)
	date := time.Now().AddDate(0, 0, 7).Format(domain.DateLayout)

	resp := do(t, "POST", srv.URL+"/v1/booking-sessions", map[string]interface{}{"variant": "corporate"}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var sess struct {
		SessionID string `json:"session_id"`
	}
	decodeBody(t, resp, &sess)
	base := srv.URL + "/v1/booking-sessions/" + sess.SessionID

	resp = do(t, "POST", base+"/advance", map[string]interface{}{
		"date": date, "time_slot": "7:00 PM", "guest_count": 25,
	}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = do(t, "POST", base+"/advance", map[string]interface{}{
		"name": "Meera Iyer", "email": "meera@corp.example.com", "phone": "9876543210", "company_name": "Initech",
	}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// Anonymous submission of a corporate booking is forbidden.
	resp = do(t, "POST", base+"/submit", map[string]interface{}{}, map[string]string{"Idempotency-Key": uuid.New().String()})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	// With a signed-in caller it goes through, and corporate is free.
	resp = do(t, "POST", base+"/submit", map[string]interface{}{}, map[string]string{
		"Idempotency-Key": uuid.New().String(),
		"Authorization":   "Bearer " + staffToken(t),
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var submitted struct {
		TotalAmount int64 `json:"total_amount"`
	}
	decodeBody(t, resp, &submitted)
	assert.Equal(t, int64(0), submitted.TotalAmount)
}

func TestSubmitStandard_DependentWriteFailure(t *testing.T) {
	srv, store := newTestServer(t)
	date := time.Now().AddDate(0, 0, 7).Format(domain.DateLayout)

	resp := do(t, "POST", srv.URL+"/v1/booking-sessions", map[string]interface{}{"variant": "standard"}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var sess struct {
		SessionID string `json:"session_id"`
	}
	decodeBody(t, resp, &sess)
	base := srv.URL + "/v1/booking-sessions/" + sess.SessionID

	for _, patch := range []map[string]interface{}{
		{"date": date, "time_slot": "7:00 PM", "guest_count": 2},
		{"name": "Asha Rao", "email": "asha@example.com", "phone": "9876543210"},
		{"guests": []map[string]string{
			{"name": "Asha Rao", "gender": "female"},
			{"name": "Vikram Rao", "gender": "male"},
		}},
	} {
		resp = do(t, "POST", base+"/advance", patch, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		resp.Body.Close()
	}

	// Guest rows refuse to persist; the parent reservation already did.
	store.failGuests = true
	resp = do(t, "POST", base+"/submit", map[string]interface{}{}, map[string]string{"Idempotency-Key": uuid.New().String()})
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	var failed struct {
		Error string `json:"error"`
	}
	decodeBody(t, resp, &failed)
	assert.Equal(t, "something went wrong, please try again", failed.Error)
	assert.Len(t, store.reservations, 1)
	assert.Empty(t, store.guests)

	// The session survives at its final step so the guest can retry.
	resp = do(t, "GET", base, nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var view struct {
		State string `json:"state"`
	}
	decodeBody(t, resp, &view)
	assert.Equal(t, "review", view.State)
}

func TestProfileMe(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := do(t, "GET", srv.URL+"/v1/me", nil, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	token := staffToken(t)
	headers := map[string]string{"Authorization": "Bearer " + token}

	// No saved row yet: the view falls back to the token claims.
	resp = do(t, "GET", srv.URL+"/v1/me", nil, headers)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var me struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	decodeBody(t, resp, &me)
	assert.Equal(t, "Meera", me.Name)
	assert.Empty(t, me.Email)

	resp = do(t, "PUT", srv.URL+"/v1/me", map[string]interface{}{
		"name": "Meera Iyer", "phone": "9876543210", "email": "meera@example.com",
	}, headers)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = do(t, "GET", srv.URL+"/v1/me", nil, headers)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &me)
	assert.Equal(t, "Meera Iyer", me.Name)
	assert.Equal(t, "meera@example.com", me.Email)

	// A malformed phone never reaches the store.
	resp = do(t, "PUT", srv.URL+"/v1/me", map[string]interface{}{
		"name": "Meera Iyer", "phone": "12", "email": "meera@example.com",
	}, headers)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	resp.Body.Close()
}

func TestSessionExpiry(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := do(t, "GET", srv.URL+"/v1/booking-sessions/"+uuid.New().String(), nil, nil)
	assert.Equal(t, http.StatusGone, resp.StatusCode)
	resp.Body.Close()
}

func TestCancelSession(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := do(t, "POST", srv.URL+"/v1/booking-sessions", map[string]interface{}{"variant": "standard"}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var sess struct {
		SessionID string `json:"session_id"`
	}
	decodeBody(t, resp, &sess)

	resp = do(t, "DELETE", srv.URL+"/v1/booking-sessions/"+sess.SessionID, nil, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp = do(t, "GET", srv.URL+"/v1/booking-sessions/"+sess.SessionID, nil, nil)
	assert.Equal(t, http.StatusGone, resp.StatusCode)
	resp.Body.Close()
}

func TestStaffGate(t *testing.T) {
	srv, store := newTestServer(t)

	// Anonymous and non-staff callers are both turned away.
	resp := do(t, "GET", srv.URL+"/v1/reservations", nil, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	res := domain.Reservation{
		ID:      uuid.New(),
		Variant: domain.VariantStandard,
		Date:    time.Now().AddDate(0, 0, 3),
		Status:  domain.StatusPending,
	}
	store.reservations[res.ID] = res

	headers := map[string]string{"Authorization": "Bearer " + staffToken(t)}
	resp = do(t, "GET", srv.URL+"/v1/reservations", nil, headers)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = do(t, "PATCH", srv.URL+"/v1/reservations/"+res.ID.String()+"/status",
		map[string]interface{}{"status": "confirmed"}, headers)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var changed struct {
		From domain.Status `json:"from"`
		To   domain.Status `json:"to"`
	}
	decodeBody(t, resp, &changed)
	assert.Equal(t, domain.StatusPending, changed.From)
	assert.Equal(t, domain.StatusConfirmed, changed.To)

	// Rewinding confirmed back to pending surfaces as a conflict.
	resp = do(t, "PATCH", srv.URL+"/v1/reservations/"+res.ID.String()+"/status",
		map[string]interface{}{"status": "pending"}, headers)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()
}
