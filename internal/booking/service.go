package booking

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/selvamkrish/table-reservations-and-content/internal/domain"
	"github.com/selvamkrish/table-reservations-and-content/internal/observability"
)

// ErrDependentWrite marks a submission whose parent reservation persisted but
// whose dependent rows did not. The reservation is NOT retracted; the sweep
// worker reconciles the orphan later.
var ErrDependentWrite = errors.New("dependent records failed to persist")

// Store is the durable boundary the submission sequence writes through.
// Implemented by the crdb repository.
type Store interface {
	CreateReservation(ctx context.Context, r domain.Reservation) error
	AddGuests(ctx context.Context, reservationID uuid.UUID, guests []domain.GuestEntry) error
	AddAmenities(ctx context.Context, reservationID uuid.UUID, amenities []string) error
}

// Service turns a completed wizard into durable records. The write order is
// fixed: parent reservation (with its outbox event) first, dependent rows
// after, never the other way around.
type Service struct {
	store  Store
	logger observability.Logger
}

func NewService(store Store, logger observability.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// Submit runs the submission sequence for a wizard sitting at its final step.
// On full success the wizard is marked complete. Any failure leaves the
// wizard at its current step with all field state intact so the caller can
// retry.
func (s *Service) Submit(ctx context.Context, w *domain.Wizard, identity *domain.Identity) (*domain.Reservation, error) {
	r, err := domain.NewReservation(w, identity)
	if err != nil {
		return nil, err
	}

	if err := s.store.CreateReservation(ctx, r); err != nil {
		return nil, errors.Wrap(err, "create reservation")
	}
	observability.ReservationsCreated.WithLabelValues(string(r.Variant)).Inc()

	if len(r.Guests) > 0 {
		if err := s.store.AddGuests(ctx, r.ID, r.Guests); err != nil {
			observability.DependentWriteFailures.Inc()
			s.logger.WithField("reservation_id", r.ID.String()).Error("guest rows failed after reservation persisted", err)
			return &r, errors.Mark(err, ErrDependentWrite)
		}
	}
	if len(r.Amenities) > 0 {
		if err := s.store.AddAmenities(ctx, r.ID, r.Amenities); err != nil {
			observability.DependentWriteFailures.Inc()
			s.logger.WithField("reservation_id", r.ID.String()).Error("amenity rows failed after reservation persisted", err)
			return &r, errors.Mark(err, ErrDependentWrite)
		}
	}

	w.MarkComplete()
	return &r, nil
}
