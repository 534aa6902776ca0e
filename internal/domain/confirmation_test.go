package domain_test

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/selvamkrish/table-reservations-and-content/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReservation() domain.Reservation {
	return domain.Reservation{
		ID:          uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8"),
		Variant:     domain.VariantStandard,
		Date:        time.Date(2025, time.March, 8, 0, 0, 0, 0, time.UTC),
		TimeSlot:    "12:00 PM",
		GuestCount:  2,
		TotalAmount: 2000,
		Name:        "Asha Rao",
		Phone:       "98765 43210",
		Status:      domain.StatusPending,
	}
}

func TestQRPayload(t *testing.T) {
	p := domain.QRPayload(sampleReservation())
	for _, want := range []string{"Table Reservation", "2025-03-08", "12:00 PM", "Guests: 2", "Asha Rao", "98765 43210"} {
		assert.Contains(t, p, want)
	}
}

func TestWhatsAppLink(t *testing.T) {
	link := domain.WhatsAppLink(sampleReservation())
	require.True(t, strings.HasPrefix(link, "https://wa.me/919876543210?text="), link)
	// The preformatted message is query-escaped, so no raw spaces survive.
	assert.NotContains(t, link, " ")
	assert.Contains(t, link, "2+guests")
}

func TestBuildConfirmationDerived(t *testing.T) {
	r := sampleReservation()
	c1 := domain.BuildConfirmation(r)
	c2 := domain.BuildConfirmation(r)
	assert.Equal(t, c1, c2)
	assert.Equal(t, int64(2000), c1.TotalAmount)
	assert.NotEmpty(t, c1.QRPayload)
	assert.NotEmpty(t, c1.ShareLink)
}
