package domain

import (
	"time"

	"github.com/google/uuid"
)

// Identity is the resolved acting user, passed explicitly into the booking
// flow rather than read from ambient session state. A nil *Identity is the
// guest-checkout path.
type Identity struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Phone string    `json:"phone"`
	Role  string    `json:"role"`
}

// Reservation is one booking attempt. Created in StatusPending on successful
// submission, mutated only by staff transitions; never deleted by the guest
// flow.
type Reservation struct {
	ID              uuid.UUID    `json:"id"`
	UserID          *uuid.UUID   `json:"user_id,omitempty"`
	Variant         Variant      `json:"variant"`
	Date            time.Time    `json:"date"`
	TimeSlot        string       `json:"time_slot"`
	GuestCount      int          `json:"guest_count"`
	TotalAmount     int64        `json:"total_amount"`
	Name            string       `json:"name"`
	Email           string       `json:"email"`
	Phone           string       `json:"phone"`
	CompanyName     string       `json:"company_name,omitempty"`
	EventType       string       `json:"event_type,omitempty"`
	SpecialRequests string       `json:"special_requests,omitempty"`
	CouponApplied   bool         `json:"coupon_applied"`
	Status          Status       `json:"status"`
	Guests          []GuestEntry `json:"guests,omitempty"`
	Amenities       []string     `json:"amenities,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

// NewReservation builds a pending reservation from a wizard that sits at its
// final step with all steps valid. The total amount is the variant's
// deterministic pricing rule over the guest count; the coupon flag never
// feeds into it.
func NewReservation(w *Wizard, identity *Identity) (Reservation, error) {
	if w.Variant.RequiresIdentity() && identity == nil {
		return Reservation{}, ErrIdentityRequired
	}
	if !w.AtFinalStep() {
		return Reservation{}, NewValidationError(FieldErrors{"step": "wizard has not reached its final step"})
	}
	if errs := w.ValidateAll(); errs != nil {
		return Reservation{}, NewValidationError(errs)
	}

	f := w.Fields
	date, err := time.Parse(DateLayout, f.Date)
	if err != nil {
		return Reservation{}, NewValidationError(FieldErrors{"date": "date must be YYYY-MM-DD"})
	}

	guests := make([]GuestEntry, len(f.Guests))
	for i, g := range f.Guests {
		guests[i] = NewGuestEntry(g.Name, g.Gender)
	}

	r := Reservation{
		ID:              uuid.New(),
		Variant:         w.Variant,
		Date:            date,
		TimeSlot:        f.TimeSlot,
		GuestCount:      f.GuestCount,
		TotalAmount:     w.Variant.TotalAmount(f.GuestCount),
		Name:            f.Name,
		Email:           f.Email,
		Phone:           f.Phone,
		CompanyName:     f.CompanyName,
		EventType:       f.EventType,
		SpecialRequests: f.SpecialRequests,
		CouponApplied:   w.CouponApplied,
		Status:          StatusPending,
		Guests:          guests,
		Amenities:       f.Amenities,
	}
	if identity != nil {
		id := identity.ID
		r.UserID = &id
		if r.Name == "" {
			r.Name = identity.Name
		}
		if r.Phone == "" {
			r.Phone = identity.Phone
		}
	}
	return r, nil
}

// HistoryEntry is one immutable row of a reservation's status log. Entries
// are appended by the notification worker reacting to status-change events,
// never by the HTTP layer directly.
type HistoryEntry struct {
	ID            uuid.UUID `json:"id"`
	ReservationID uuid.UUID `json:"reservation_id"`
	FromStatus    Status    `json:"from_status"`
	ToStatus      Status    `json:"to_status"`
	ChangedBy     string    `json:"changed_by"`
	ChangedAt     time.Time `json:"changed_at"`
}
