package domain

import (
	"fmt"
	"net/url"
	"strings"
)

// Confirmation is the derived view of a completed reservation: a summary, a
// scannable text payload and a one-way share link. Recomputed on every
// request, never persisted.
type Confirmation struct {
	ReservationID string `json:"reservation_id"`
	Title         string `json:"title"`
	Date          string `json:"date"`
	TimeSlot      string `json:"time_slot"`
	GuestCount    int    `json:"guest_count"`
	Name          string `json:"name"`
	TotalAmount   int64  `json:"total_amount"`
	QRPayload     string `json:"qr_payload"`
	ShareLink     string `json:"share_link"`
}

func BuildConfirmation(r Reservation) Confirmation {
	return Confirmation{
		ReservationID: r.ID.String(),
		Title:         r.Variant.Title(),
		Date:          r.Date.Format(DateLayout),
		TimeSlot:      r.TimeSlot,
		GuestCount:    r.GuestCount,
		Name:          r.Name,
		TotalAmount:   r.TotalAmount,
		QRPayload:     QRPayload(r),
		ShareLink:     WhatsAppLink(r),
	}
}

// QRPayload serializes the reservation summary to the text encoded into the
// scannable code.
func QRPayload(r Reservation) string {
	lines := []string{
		r.Variant.Title(),
		"Date: " + r.Date.Format(DateLayout),
		"Time: " + r.TimeSlot,
		fmt.Sprintf("Guests: %d", r.GuestCount),
		"Name: " + r.Name,
		"Phone: " + r.Phone,
		"Ref: " + r.ID.String(),
	}
	return strings.Join(lines, "\n")
}

// ShareMessage composes the preformatted text for the outbound share.
func ShareMessage(r Reservation) string {
	return fmt.Sprintf("Hi! I booked a %s on %s at %s for %d guests under the name %s.",
		strings.ToLower(r.Variant.Title()), r.Date.Format(DateLayout), r.TimeSlot, r.GuestCount, r.Name)
}

// WhatsAppLink builds the wa.me deep link for the reservation's contact
// number. Fire and forget; no delivery confirmation exists.
func WhatsAppLink(r Reservation) string {
	digits := strings.Map(func(c rune) rune {
		if c >= '0' && c <= '9' {
			return c
		}
		return -1
	}, r.Phone)
	return "https://wa.me/91" + digits + "?text=" + url.QueryEscape(ShareMessage(r))
}
