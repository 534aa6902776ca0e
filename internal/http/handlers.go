package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	mongoadapter "github.com/selvamkrish/table-reservations-and-content/internal/adapters/mongo"
	redisadapter "github.com/selvamkrish/table-reservations-and-content/internal/adapters/redis"
	"github.com/selvamkrish/table-reservations-and-content/internal/booking"
	"github.com/selvamkrish/table-reservations-and-content/internal/config"
	"github.com/selvamkrish/table-reservations-and-content/internal/domain"
	"github.com/selvamkrish/table-reservations-and-content/internal/idempotency"
	"github.com/selvamkrish/table-reservations-and-content/internal/observability"
	"github.com/selvamkrish/table-reservations-and-content/internal/session"
)

// ReservationStore is the reservation read/transition surface the handlers
// consume. Satisfied by the crdb repository.
type ReservationStore interface {
	GetReservation(ctx context.Context, id uuid.UUID) (*domain.Reservation, error)
	ListReservations(ctx context.Context, date *time.Time, status *domain.Status) ([]domain.Reservation, error)
	UpdateReservationStatus(ctx context.Context, id uuid.UUID, next domain.Status, changedBy string) (domain.Status, error)
	ListHistory(ctx context.Context, id uuid.UUID) ([]domain.HistoryEntry, error)
}

type Handlers struct {
	cfg          *config.Config
	logger       observability.Logger
	bookings     *booking.Service
	sessions     *session.Store
	reservations ReservationStore
	venues       VenueStore
	profiles     ProfileStore
	catalog      *mongoadapter.CatalogRepository
	audit        *mongoadapter.AuditLogger
	cache        *redisadapter.Cache
	idemp        *idempotency.Idempotency
	validate     *validator.Validate
}

func NewHandlers(cfg *config.Config, logger observability.Logger, bookings *booking.Service, sessions *session.Store, reservations ReservationStore, venues VenueStore, profiles ProfileStore, catalog *mongoadapter.CatalogRepository, audit *mongoadapter.AuditLogger, cache *redisadapter.Cache, idemp *idempotency.Idempotency) *Handlers {
	return &Handlers{
		cfg:          cfg,
		logger:       logger,
		bookings:     bookings,
		sessions:     sessions,
		reservations: reservations,
		venues:       venues,
		profiles:     profiles,
		catalog:      catalog,
		audit:        audit,
		cache:        cache,
		idemp:        idemp,
		validate:     validator.New(),
	}
}

func (h *Handlers) Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (h *Handlers) Readyz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Ready"))
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps the error taxonomy to status codes. Transport-level detail
// is logged, never shown verbatim to guests; the body carries one generic
// human-readable reason.
func (h *Handlers) writeError(w http.ResponseWriter, err error) {
	if ve, ok := domain.AsValidation(err); ok {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"error":  "validation failed",
			"fields": ve.Fields,
		})
		return
	}
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	case errors.Is(err, domain.ErrSessionExpired):
		writeJSON(w, http.StatusGone, map[string]string{"error": "booking session expired"})
	case errors.Is(err, domain.ErrIdentityRequired):
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "sign in to book this"})
	case errors.Is(err, domain.ErrSubmitInFlight):
		writeJSON(w, http.StatusConflict, map[string]string{"error": "submission already in progress"})
	case errors.Is(err, domain.ErrInvalidTransition) || errors.Is(err, domain.ErrConflict):
		writeJSON(w, http.StatusConflict, map[string]string{"error": "conflicting update"})
	case errors.Is(err, domain.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		h.logger.Error("request failed", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "something went wrong, please try again"})
	}
}

func parseDateParam(s string) (time.Time, error) {
	return time.Parse(domain.DateLayout, s)
}
