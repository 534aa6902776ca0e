package domain

import "fmt"

// Variant is the closed set of booking shapes. Each carries its own field
// subset, validation rules and pricing rule; there is no shared formula.
type Variant string

const (
	VariantStandard     Variant = "standard"
	VariantCorporate    Variant = "corporate"
	VariantPrivateParty Variant = "private_party"
)

func ParseVariant(s string) (Variant, error) {
	switch Variant(s) {
	case VariantStandard, VariantCorporate, VariantPrivateParty:
		return Variant(s), nil
	}
	return "", fmt.Errorf("%w: unknown booking variant %q", ErrInvalidInput, s)
}

// Per-guest rates in rupees. Corporate bookings are priced offline and carry
// no per-guest rate.
const (
	standardRatePerGuest     int64 = 1000
	privatePartyRatePerGuest int64 = 2000
)

// CorporateSizes are the only attendee counts a corporate booking accepts.
var CorporateSizes = []int{10, 25, 50, 100}

const (
	standardMinGuests     = 1
	standardMaxGuests     = 10
	privatePartyMinGuests = 1
	privatePartyMaxGuests = 100
)

// PricePerGuest returns the variant's per-guest rate in rupees, zero for
// corporate.
func (v Variant) PricePerGuest() int64 {
	switch v {
	case VariantStandard:
		return standardRatePerGuest
	case VariantPrivateParty:
		return privatePartyRatePerGuest
	}
	return 0
}

// TotalAmount computes the deterministic total for a guest count.
func (v Variant) TotalAmount(guestCount int) int64 {
	return v.PricePerGuest() * int64(guestCount)
}

// ValidateGuestCount enforces the variant-specific bounds: standard 1-10,
// corporate one of the enumerated sizes, private party 1-100.
func (v Variant) ValidateGuestCount(n int) error {
	switch v {
	case VariantStandard:
		if n < standardMinGuests || n > standardMaxGuests {
			return fmt.Errorf("%w: standard bookings take %d-%d guests", ErrInvalidInput, standardMinGuests, standardMaxGuests)
		}
	case VariantCorporate:
		for _, size := range CorporateSizes {
			if n == size {
				return nil
			}
		}
		return fmt.Errorf("%w: corporate bookings take one of %v attendees", ErrInvalidInput, CorporateSizes)
	case VariantPrivateParty:
		if n < privatePartyMinGuests || n > privatePartyMaxGuests {
			return fmt.Errorf("%w: private parties take %d-%d guests", ErrInvalidInput, privatePartyMinGuests, privatePartyMaxGuests)
		}
	}
	return nil
}

// RequiresIdentity reports whether the variant mandates an authenticated
// acting user. Standard and private-party bookings allow guest checkout.
func (v Variant) RequiresIdentity() bool {
	return v == VariantCorporate
}

// RequiresDependents reports whether a persisted reservation of this variant
// is expected to carry dependent rows. Used by the reconciliation sweep.
func (v Variant) RequiresDependents() bool {
	return v == VariantStandard
}

// Title is the human-readable name used on confirmations.
func (v Variant) Title() string {
	switch v {
	case VariantStandard:
		return "Table Reservation"
	case VariantCorporate:
		return "Corporate Event"
	case VariantPrivateParty:
		return "Private Party"
	}
	return string(v)
}

// GuestGender classifies a named guest on a standard booking.
type GuestGender string

const (
	GenderMale   GuestGender = "male"
	GenderFemale GuestGender = "female"
	GenderOther  GuestGender = "other"
)

func (g GuestGender) Valid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}

// GuestEntry is a dependent record owned by exactly one reservation. The
// cover charge is fixed at the standard per-guest rate.
type GuestEntry struct {
	Name        string      `json:"name"`
	Gender      GuestGender `json:"gender"`
	CoverCharge int64       `json:"cover_charge"`
}

// NewGuestEntry builds a guest with the fixed cover charge applied.
func NewGuestEntry(name string, gender GuestGender) GuestEntry {
	return GuestEntry{Name: name, Gender: gender, CoverCharge: standardRatePerGuest}
}

// PartyEventTypes are the occasions a private party can be booked for.
var PartyEventTypes = []string{"birthday", "anniversary", "wedding", "other"}

// PartyAmenities is the fixed amenity menu for private parties.
var PartyAmenities = []string{"decoration", "dj", "cake", "photography", "projector"}

func memberOf(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
