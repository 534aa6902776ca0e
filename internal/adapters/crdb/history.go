package crdb

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/selvamkrish/table-reservations-and-content/internal/domain"
)

// AppendHistory inserts one immutable status-change row. Called by the
// notification worker consuming reservation.status_changed events; rows are
// never updated or deleted.
func (r *Repository) AppendHistory(ctx context.Context, entry domain.HistoryEntry) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO booking_history (id, reservation_id, from_status, to_status, changed_by, changed_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, entry.ID, entry.ReservationID, entry.FromStatus, entry.ToStatus, entry.ChangedBy, entry.ChangedAt)
	return errors.Wrap(err, "insert booking history")
}

func (r *Repository) ListHistory(ctx context.Context, reservationID uuid.UUID) ([]domain.HistoryEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, reservation_id, from_status, to_status, changed_by, changed_at
		FROM booking_history WHERE reservation_id = $1 ORDER BY changed_at ASC
	`, reservationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.HistoryEntry
	for rows.Next() {
		var e domain.HistoryEntry
		if err := rows.Scan(&e.ID, &e.ReservationID, &e.FromStatus, &e.ToStatus, &e.ChangedBy, &e.ChangedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
