package crdb

import (
	"context"
	"encoding/json"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/selvamkrish/table-reservations-and-content/internal/domain"
	"github.com/selvamkrish/table-reservations-and-content/internal/observability"
	"golang.org/x/sync/errgroup"
)

const (
	SerializationFailureCode = "40001"
)

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	start := time.Now()
	defer func() {
		observability.DBTxDuration.Observe(time.Since(start).Seconds())
	}()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, "SET TRANSACTION ISOLATION LEVEL SERIALIZABLE")
	if err != nil {
		return err
	}

	err = fn(tx)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == SerializationFailureCode {
			return domain.ErrSerializationFailure
		}
		return err
	}

	return tx.Commit(ctx)
}

// CreateReservation persists the parent row and its reservation.created
// outbox event in one transaction, so the confirmation event can never fire
// for a rolled-back parent. Dependent guest/amenity rows are written
// separately by AddGuests/AddAmenities and are intentionally outside this
// transaction.
func (r *Repository) CreateReservation(ctx context.Context, res domain.Reservation) error {
	payload, err := json.Marshal(map[string]interface{}{
		"reservation_id": res.ID,
		"variant":        res.Variant,
		"date":           res.Date.Format(domain.DateLayout),
		"time_slot":      res.TimeSlot,
		"guest_count":    res.GuestCount,
		"name":           res.Name,
		"phone":          res.Phone,
	})
	if err != nil {
		return errors.Wrap(err, "marshal reservation event")
	}
	outbox := NewOutboxRecord(res.ID, "reservation.created", payload)

	return r.WithTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO reservations
				(id, user_id, variant, date, time_slot, guest_count, total_amount,
				 name, email, phone, company_name, event_type, special_requests,
				 coupon_applied, status, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, now(), now())
		`, res.ID, res.UserID, res.Variant, res.Date, res.TimeSlot, res.GuestCount, res.TotalAmount,
			res.Name, res.Email, res.Phone, res.CompanyName, res.EventType, res.SpecialRequests,
			res.CouponApplied, res.Status)
		if err != nil {
			return errors.Wrap(err, "insert reservation")
		}
		return r.InsertOutbox(ctx, tx, outbox)
	})
}

// AddGuests writes the dependent guest rows for an already-persisted
// reservation. A failure here leaves the parent row in place.
func (r *Repository) AddGuests(ctx context.Context, reservationID uuid.UUID, guests []domain.GuestEntry) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, guest := range guests {
		guest := guest
		g.Go(func() error {
			_, err := r.pool.Exec(gctx, `
				INSERT INTO reservation_guests (id, reservation_id, name, gender, cover_charge)
				VALUES ($1, $2, $3, $4, $5)
			`, uuid.New(), reservationID, guest.Name, guest.Gender, guest.CoverCharge)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return errors.Wrap(err, "insert reservation guests")
	}
	return nil
}

// AddAmenities writes the dependent amenity selections for a private party.
func (r *Repository) AddAmenities(ctx context.Context, reservationID uuid.UUID, amenities []string) error {
	for _, a := range amenities {
		_, err := r.pool.Exec(ctx, `
			INSERT INTO reservation_amenities (reservation_id, amenity)
			VALUES ($1, $2)
		`, reservationID, a)
		if err != nil {
			return errors.Wrap(err, "insert reservation amenity")
		}
	}
	return nil
}

func (r *Repository) GetReservation(ctx context.Context, id uuid.UUID) (*domain.Reservation, error) {
	var res domain.Reservation
	err := r.pool.QueryRow(ctx, `
		SELECT id, user_id, variant, date, time_slot, guest_count, total_amount,
		       name, email, phone, company_name, event_type, special_requests,
		       coupon_applied, status, created_at, updated_at
		FROM reservations WHERE id = $1
	`, id).Scan(&res.ID, &res.UserID, &res.Variant, &res.Date, &res.TimeSlot, &res.GuestCount,
		&res.TotalAmount, &res.Name, &res.Email, &res.Phone, &res.CompanyName, &res.EventType,
		&res.SpecialRequests, &res.CouponApplied, &res.Status, &res.CreatedAt, &res.UpdatedAt)
	if err == pgx.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT name, gender, cover_charge FROM reservation_guests WHERE reservation_id = $1
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var g domain.GuestEntry
		if err := rows.Scan(&g.Name, &g.Gender, &g.CoverCharge); err != nil {
			return nil, err
		}
		res.Guests = append(res.Guests, g)
	}

	arows, err := r.pool.Query(ctx, `
		SELECT amenity FROM reservation_amenities WHERE reservation_id = $1
	`, id)
	if err != nil {
		return nil, err
	}
	defer arows.Close()
	for arows.Next() {
		var a string
		if err := arows.Scan(&a); err != nil {
			return nil, err
		}
		res.Amenities = append(res.Amenities, a)
	}

	return &res, nil
}

// ListReservations returns reservations filtered by optional date and status,
// newest first.
func (r *Repository) ListReservations(ctx context.Context, date *time.Time, status *domain.Status) ([]domain.Reservation, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, variant, date, time_slot, guest_count, total_amount,
		       name, email, phone, company_name, event_type, special_requests,
		       coupon_applied, status, created_at, updated_at
		FROM reservations
		WHERE ($1::date IS NULL OR date = $1)
		  AND ($2::text IS NULL OR status = $2)
		ORDER BY created_at DESC
	`, date, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Reservation
	for rows.Next() {
		var res domain.Reservation
		if err := rows.Scan(&res.ID, &res.UserID, &res.Variant, &res.Date, &res.TimeSlot, &res.GuestCount,
			&res.TotalAmount, &res.Name, &res.Email, &res.Phone, &res.CompanyName, &res.EventType,
			&res.SpecialRequests, &res.CouponApplied, &res.Status, &res.CreatedAt, &res.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

// UpdateReservationStatus applies a staff transition and queues the
// reservation.status_changed event in the same transaction. The status
// machine is checked against the current row and the update is guarded on
// it, so a concurrent change surfaces as ErrConflict. History rows are not
// written here; the notification worker appends them when the event lands.
func (r *Repository) UpdateReservationStatus(ctx context.Context, id uuid.UUID, next domain.Status, changedBy string) (domain.Status, error) {
	var current domain.Status
	err := r.WithTx(ctx, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, `SELECT status FROM reservations WHERE id = $1`, id).Scan(&current); err != nil {
			if err == pgx.ErrNoRows {
				return domain.ErrNotFound
			}
			return err
		}
		if !current.CanTransitionTo(next) {
			return errors.Wrapf(domain.ErrInvalidTransition, "%s -> %s", current, next)
		}

		result, err := tx.Exec(ctx, `
			UPDATE reservations SET status = $3, updated_at = now()
			WHERE id = $1 AND status = $2
		`, id, current, next)
		if err != nil {
			return err
		}
		if result.RowsAffected() == 0 {
			return domain.ErrConflict
		}

		payload, err := json.Marshal(map[string]interface{}{
			"reservation_id": id,
			"from":           current,
			"to":             next,
			"changed_by":     changedBy,
			"changed_at":     time.Now().UTC().Format(time.RFC3339),
		})
		if err != nil {
			return errors.Wrap(err, "marshal status event")
		}
		return r.InsertOutbox(ctx, tx, NewOutboxRecord(id, "reservation.status_changed", payload))
	})
	return current, err
}

// FindOrphanedPending returns pending reservations created before the cutoff
// whose variant expects dependent rows but has none. Input to the
// reconciliation sweep.
func (r *Repository) FindOrphanedPending(ctx context.Context, cutoff time.Time) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT res.id
		FROM reservations res
		LEFT JOIN reservation_guests g ON g.reservation_id = res.id
		WHERE res.status = 'pending'
		  AND res.variant = 'standard'
		  AND res.guest_count > 0
		  AND res.created_at <= $1
		GROUP BY res.id
		HAVING count(g.id) = 0
	`, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// CancelOrphan cancels a reservation the sweep identified, guarded on it
// still being pending.
func (r *Repository) CancelOrphan(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE reservations SET status = 'cancelled', updated_at = now()
		WHERE id = $1 AND status = 'pending'
	`, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
