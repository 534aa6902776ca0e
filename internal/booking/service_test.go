package booking_test

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/selvamkrish/table-reservations-and-content/internal/booking"
	"github.com/selvamkrish/table-reservations-and-content/internal/domain"
	"github.com/selvamkrish/table-reservations-and-content/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	reservations []domain.Reservation
	guests       map[uuid.UUID][]domain.GuestEntry
	amenities    map[uuid.UUID][]string

	failCreate bool
	failGuests bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		guests:    map[uuid.UUID][]domain.GuestEntry{},
		amenities: map[uuid.UUID][]string{},
	}
}

func (f *fakeStore) CreateReservation(ctx context.Context, r domain.Reservation) error {
	if f.failCreate {
		return errors.New("connection refused")
	}
	f.reservations = append(f.reservations, r)
	return nil
}

func (f *fakeStore) AddGuests(ctx context.Context, id uuid.UUID, guests []domain.GuestEntry) error {
	if f.failGuests {
		return errors.New("connection refused")
	}
	f.guests[id] = guests
	return nil
}

func (f *fakeStore) AddAmenities(ctx context.Context, id uuid.UUID, amenities []string) error {
	f.amenities[id] = amenities
	return nil
}

func completedStandardWizard(t *testing.T) *domain.Wizard {
	t.Helper()
	w := domain.NewWizard(domain.VariantStandard)
	require.Nil(t, w.Advance(domain.Fields{Date: "2025-03-08", TimeSlot: "12:00 PM", GuestCount: 2}))
	require.Nil(t, w.Advance(domain.Fields{Name: "Asha Rao", Email: "asha@example.com", Phone: "9876543210"}))
	w.Fields.Guests = []domain.GuestEntry{
		{Name: "Asha Rao", Gender: domain.GenderFemale},
		{Name: "Ravi Rao", Gender: domain.GenderMale},
	}
	return w
}

func TestSubmit_SaturdayStandardBooking(t *testing.T) {
	store := newFakeStore()
	svc := booking.NewService(store, observability.NewLogger())

	w := completedStandardWizard(t)
	r, err := svc.Submit(context.Background(), w, nil)
	require.NoError(t, err)

	assert.True(t, w.Complete())
	assert.Equal(t, domain.StatusPending, r.Status)
	assert.Equal(t, int64(2000), r.TotalAmount)
	require.Len(t, store.reservations, 1)
	assert.Len(t, store.guests[r.ID], 2)
	// Guest checkout: no owning user.
	assert.Nil(t, r.UserID)
}

func TestSubmit_PrimaryWriteFailure(t *testing.T) {
	store := newFakeStore()
	store.failCreate = true
	svc := booking.NewService(store, observability.NewLogger())

	w := completedStandardWizard(t)
	_, err := svc.Submit(context.Background(), w, nil)
	require.Error(t, err)

	// Nothing persisted, no dependent writes attempted, wizard still open at
	// its last step with field state intact.
	assert.Empty(t, store.reservations)
	assert.Empty(t, store.guests)
	assert.False(t, w.Complete())
	assert.Equal(t, domain.StepReview, w.Current)
	assert.Len(t, w.Fields.Guests, 2)
}

func TestSubmit_DependentWriteFailureKeepsParent(t *testing.T) {
	store := newFakeStore()
	store.failGuests = true
	svc := booking.NewService(store, observability.NewLogger())

	w := completedStandardWizard(t)
	r, err := svc.Submit(context.Background(), w, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, booking.ErrDependentWrite))

	// The reservation is not retracted, but the wizard did not complete.
	require.NotNil(t, r)
	require.Len(t, store.reservations, 1)
	assert.False(t, w.Complete())
}

func TestSubmit_CorporateRequiresIdentity(t *testing.T) {
	store := newFakeStore()
	svc := booking.NewService(store, observability.NewLogger())

	w := domain.NewWizard(domain.VariantCorporate)
	require.Nil(t, w.Advance(domain.Fields{Date: "2025-03-04", TimeSlot: "5:00 PM", GuestCount: 25}))
	require.Nil(t, w.Advance(domain.Fields{Name: "Asha Rao", Email: "asha@example.com", Phone: "9876543210", CompanyName: "Marigold Pvt Ltd"}))

	_, err := svc.Submit(context.Background(), w, nil)
	assert.ErrorIs(t, err, domain.ErrIdentityRequired)
	assert.Empty(t, store.reservations)

	ident := &domain.Identity{ID: uuid.New(), Name: "Asha Rao", Phone: "9876543210", Role: "user"}
	r, err := svc.Submit(context.Background(), w, ident)
	require.NoError(t, err)
	require.NotNil(t, r.UserID)
	assert.Equal(t, ident.ID, *r.UserID)
	assert.Equal(t, int64(0), r.TotalAmount)
}

func TestSubmit_RejectsIncompleteWizard(t *testing.T) {
	store := newFakeStore()
	svc := booking.NewService(store, observability.NewLogger())

	w := domain.NewWizard(domain.VariantStandard)
	_, err := svc.Submit(context.Background(), w, nil)
	require.Error(t, err)
	_, ok := domain.AsValidation(err)
	assert.True(t, ok)
	assert.Empty(t, store.reservations)
}

func TestSubmit_PrivatePartyAmenities(t *testing.T) {
	store := newFakeStore()
	svc := booking.NewService(store, observability.NewLogger())

	w := domain.NewWizard(domain.VariantPrivateParty)
	require.Nil(t, w.Advance(domain.Fields{Date: "2025-03-08", TimeSlot: "7:00 PM", GuestCount: 40, EventType: "birthday"}))
	require.Nil(t, w.Advance(domain.Fields{Name: "Asha Rao", Email: "asha@example.com", Phone: "9876543210"}))
	require.Nil(t, w.Advance(domain.Fields{Amenities: []string{"decoration", "dj"}}))
	// Advance from the final step stays put; submission is the terminal move.
	assert.Equal(t, domain.StepReview, w.Current)

	r, err := svc.Submit(context.Background(), w, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(80000), r.TotalAmount)
	assert.Equal(t, []string{"decoration", "dj"}, store.amenities[r.ID])
	assert.True(t, w.Complete())
}
