package crdb

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/selvamkrish/table-reservations-and-content/internal/domain"
)

// Venue is one tenant restaurant.
type Venue struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	City      string    `json:"city"`
	Address   string    `json:"address"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Table is one physical table belonging to a venue.
type Table struct {
	ID        uuid.UUID `json:"id"`
	VenueID   uuid.UUID `json:"venue_id"`
	Label     string    `json:"label"`
	Capacity  int       `json:"capacity"`
	Section   string    `json:"section"`
	CreatedAt time.Time `json:"created_at"`
}

func (r *Repository) CreateVenue(ctx context.Context, v Venue) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO venues (id, name, city, address, phone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, now(), now())
	`, v.ID, v.Name, v.City, v.Address, v.Phone)
	return errors.Wrap(err, "insert venue")
}

func (r *Repository) ListVenues(ctx context.Context) ([]Venue, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, city, address, phone, created_at, updated_at
		FROM venues ORDER BY name ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var venues []Venue
	for rows.Next() {
		var v Venue
		if err := rows.Scan(&v.ID, &v.Name, &v.City, &v.Address, &v.Phone, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, err
		}
		venues = append(venues, v)
	}
	return venues, rows.Err()
}

func (r *Repository) GetVenue(ctx context.Context, id uuid.UUID) (*Venue, error) {
	var v Venue
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, city, address, phone, created_at, updated_at
		FROM venues WHERE id = $1
	`, id).Scan(&v.ID, &v.Name, &v.City, &v.Address, &v.Phone, &v.CreatedAt, &v.UpdatedAt)
	if err == pgx.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *Repository) UpdateVenue(ctx context.Context, v Venue) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE venues SET name = $2, city = $3, address = $4, phone = $5, updated_at = now()
		WHERE id = $1
	`, v.ID, v.Name, v.City, v.Address, v.Phone)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *Repository) DeleteVenue(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM venues WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *Repository) CreateTable(ctx context.Context, tbl Table) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO restaurant_tables (id, venue_id, label, capacity, section, created_at)
		VALUES ($1, $2, $3, $4, $5, now())
	`, tbl.ID, tbl.VenueID, tbl.Label, tbl.Capacity, tbl.Section)
	return errors.Wrap(err, "insert table")
}

func (r *Repository) ListTables(ctx context.Context, venueID uuid.UUID) ([]Table, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, venue_id, label, capacity, section, created_at
		FROM restaurant_tables WHERE venue_id = $1 ORDER BY label ASC
	`, venueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []Table
	for rows.Next() {
		var tbl Table
		if err := rows.Scan(&tbl.ID, &tbl.VenueID, &tbl.Label, &tbl.Capacity, &tbl.Section, &tbl.CreatedAt); err != nil {
			return nil, err
		}
		tables = append(tables, tbl)
	}
	return tables, rows.Err()
}

func (r *Repository) UpdateTable(ctx context.Context, tbl Table) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE restaurant_tables SET label = $2, capacity = $3, section = $4
		WHERE id = $1
	`, tbl.ID, tbl.Label, tbl.Capacity, tbl.Section)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *Repository) DeleteTable(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM restaurant_tables WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
