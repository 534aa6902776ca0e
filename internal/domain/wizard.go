package domain

import (
	"fmt"
	"regexp"
	"time"
)

// Step names one wizard state. Transitions between steps are defined by an
// explicit per-variant table; anything outside the table is unrepresentable.
type Step string

const (
	StepDetails   Step = "details"
	StepContact   Step = "contact"
	StepReview    Step = "review"
	StateComplete Step = "complete"
)

// stepSequences is the transition table: the ordered steps each variant walks
// before reaching StateComplete. Corporate collapses review into the contact
// step.
var stepSequences = map[Variant][]Step{
	VariantStandard:     {StepDetails, StepContact, StepReview},
	VariantCorporate:    {StepDetails, StepContact},
	VariantPrivateParty: {StepDetails, StepContact, StepReview},
}

// DateLayout is the wire format for booking dates.
const DateLayout = "2006-01-02"

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
var phoneRe = regexp.MustCompile(`^[0-9]{10}$`)

// Fields is the accumulated form state for one wizard instance. All variants
// share the struct; which subset a step validates depends on the variant.
type Fields struct {
	Date            string       `json:"date"`
	TimeSlot        string       `json:"time_slot"`
	GuestCount      int          `json:"guest_count"`
	Name            string       `json:"name"`
	Email           string       `json:"email"`
	Phone           string       `json:"phone"`
	CompanyName     string       `json:"company_name,omitempty"`
	EventType       string       `json:"event_type,omitempty"`
	SpecialRequests string       `json:"special_requests,omitempty"`
	Guests          []GuestEntry `json:"guests,omitempty"`
	Amenities       []string     `json:"amenities,omitempty"`
}

// Wizard drives the multi-step booking form for one variant. It owns step
// validation, navigation and the coupon flag. It holds no remote state; the
// session layer persists snapshots between requests.
type Wizard struct {
	Variant       Variant `json:"variant"`
	Current       Step    `json:"current"`
	Fields        Fields  `json:"fields"`
	CouponCode    string  `json:"coupon_code,omitempty"`
	CouponApplied bool    `json:"coupon_applied"`
}

func NewWizard(v Variant) *Wizard {
	return &Wizard{Variant: v, Current: stepSequences[v][0]}
}

// Steps returns the wizard's step sequence.
func (w *Wizard) Steps() []Step {
	return stepSequences[w.Variant]
}

func (w *Wizard) stepIndex(s Step) int {
	for i, st := range w.Steps() {
		if st == s {
			return i
		}
	}
	return -1
}

// AtFinalStep reports whether the next forward transition is terminal.
func (w *Wizard) AtFinalStep() bool {
	seq := w.Steps()
	return w.Current == seq[len(seq)-1]
}

// Complete reports whether the wizard has reached its terminal state.
func (w *Wizard) Complete() bool {
	return w.Current == StateComplete
}

// Advance merges the patch into the fields owned by the current step, then
// validates that subset. Invalid fields block the transition and are returned
// per field; entered values are kept either way. Advancing past the final
// step is the submission boundary's job, not Advance's.
func (w *Wizard) Advance(patch Fields) FieldErrors {
	if w.Complete() {
		return nil
	}
	w.apply(patch)
	if errs := w.validateStep(w.Current); len(errs) > 0 {
		return errs
	}
	idx := w.stepIndex(w.Current)
	seq := w.Steps()
	if idx < len(seq)-1 {
		w.Current = seq[idx+1]
	}
	return nil
}

// Back moves one step backward. Always permitted, never validated, never
// discards values entered on later steps.
func (w *Wizard) Back() {
	if w.Complete() {
		return
	}
	if idx := w.stepIndex(w.Current); idx > 0 {
		w.Current = w.Steps()[idx-1]
	}
}

// ApplyCoupon flags the session when a non-empty code is confirmed. The flag
// never recomputes the total amount; the code is not checked against the
// offer's real constraints.
func (w *Wizard) ApplyCoupon(code string) error {
	if code == "" {
		return NewValidationError(FieldErrors{"coupon_code": "coupon code is required"})
	}
	w.CouponCode = code
	w.CouponApplied = true
	return nil
}

// ValidateAll runs every step's validation. Submission requires the wizard to
// sit at its final step with all steps passing.
func (w *Wizard) ValidateAll() FieldErrors {
	errs := FieldErrors{}
	for _, s := range w.Steps() {
		for k, v := range w.validateStep(s) {
			errs[k] = v
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// MarkComplete records the terminal transition. Callers invoke it only after
// the submission sequence has fully succeeded.
func (w *Wizard) MarkComplete() {
	w.Current = StateComplete
}

// apply copies only the fields owned by the current step out of the patch.
// Later-step values already entered are left untouched.
func (w *Wizard) apply(patch Fields) {
	f := &w.Fields
	switch w.Current {
	case StepDetails:
		if patch.Date != "" && patch.Date != f.Date {
			f.Date = patch.Date
			// A slot picked for the old date may not exist for the new one;
			// a stale selection is cleared, never silently retained.
			if f.TimeSlot != "" {
				if d, err := time.Parse(DateLayout, f.Date); err != nil || !SlotAvailable(d, f.TimeSlot) {
					f.TimeSlot = ""
				}
			}
		}
		if patch.TimeSlot != "" {
			f.TimeSlot = patch.TimeSlot
		}
		if patch.GuestCount != 0 {
			f.GuestCount = patch.GuestCount
		}
		if patch.EventType != "" {
			f.EventType = patch.EventType
		}
	case StepContact:
		if patch.Name != "" {
			f.Name = patch.Name
		}
		if patch.Email != "" {
			f.Email = patch.Email
		}
		if patch.Phone != "" {
			f.Phone = patch.Phone
		}
		if patch.CompanyName != "" {
			f.CompanyName = patch.CompanyName
		}
		if w.Variant == VariantCorporate && patch.SpecialRequests != "" {
			f.SpecialRequests = patch.SpecialRequests
		}
	case StepReview:
		if patch.Guests != nil {
			f.Guests = patch.Guests
		}
		if patch.Amenities != nil {
			f.Amenities = patch.Amenities
		}
		if patch.SpecialRequests != "" {
			f.SpecialRequests = patch.SpecialRequests
		}
	}
}

func (w *Wizard) validateStep(s Step) FieldErrors {
	errs := FieldErrors{}
	f := w.Fields
	switch s {
	case StepDetails:
		if f.Date == "" {
			errs["date"] = "date is required"
		} else if _, err := time.Parse(DateLayout, f.Date); err != nil {
			errs["date"] = "date must be YYYY-MM-DD"
		}
		if f.TimeSlot == "" {
			errs["time_slot"] = "time slot is required"
		} else if f.Date != "" && errs["date"] == "" {
			d, _ := time.Parse(DateLayout, f.Date)
			if !SlotAvailable(d, f.TimeSlot) {
				errs["time_slot"] = "time slot is not available on that date"
			}
		}
		if f.GuestCount == 0 {
			errs["guest_count"] = "guest count is required"
		} else if err := w.Variant.ValidateGuestCount(f.GuestCount); err != nil {
			errs["guest_count"] = guestCountMessage(w.Variant)
		}
		if w.Variant == VariantPrivateParty {
			if f.EventType == "" {
				errs["event_type"] = "event type is required"
			} else if !memberOf(PartyEventTypes, f.EventType) {
				errs["event_type"] = "unknown event type"
			}
		}
	case StepContact:
		if len(f.Name) < 2 {
			errs["name"] = "name must be at least 2 characters"
		}
		if f.Email == "" {
			errs["email"] = "email is required"
		} else if !emailRe.MatchString(f.Email) {
			errs["email"] = "enter a valid email address"
		}
		if !phoneRe.MatchString(f.Phone) {
			errs["phone"] = "phone must be 10 digits"
		}
		if w.Variant == VariantCorporate && len(f.CompanyName) < 2 {
			errs["company_name"] = "company name is required"
		}
	case StepReview:
		if w.Variant == VariantStandard {
			if len(f.Guests) == 0 {
				errs["guests"] = "name at least one guest"
			} else if len(f.Guests) > f.GuestCount {
				errs["guests"] = fmt.Sprintf("at most %d guests can be named", f.GuestCount)
			}
			for i, g := range f.Guests {
				if len(g.Name) < 2 {
					errs[fmt.Sprintf("guests[%d].name", i)] = "guest name must be at least 2 characters"
				}
				if !g.Gender.Valid() {
					errs[fmt.Sprintf("guests[%d].gender", i)] = "unknown gender"
				}
			}
		}
		if w.Variant == VariantPrivateParty {
			for i, a := range f.Amenities {
				if !memberOf(PartyAmenities, a) {
					errs[fmt.Sprintf("amenities[%d]", i)] = "unknown amenity"
				}
			}
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func guestCountMessage(v Variant) string {
	switch v {
	case VariantStandard:
		return "standard bookings take 1-10 guests"
	case VariantCorporate:
		return fmt.Sprintf("attendee count must be one of %v", CorporateSizes)
	case VariantPrivateParty:
		return "private parties take 1-100 guests"
	}
	return "invalid guest count"
}
