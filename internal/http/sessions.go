package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-chi/chi/v5"
	"github.com/selvamkrish/table-reservations-and-content/internal/booking"
	"github.com/selvamkrish/table-reservations-and-content/internal/domain"
	"github.com/selvamkrish/table-reservations-and-content/internal/idempotency"
)

type sessionView struct {
	SessionID     string            `json:"session_id"`
	Variant       domain.Variant    `json:"variant"`
	State         domain.Step       `json:"state"`
	Steps         []domain.Step     `json:"steps"`
	Fields        domain.Fields     `json:"fields"`
	CouponApplied bool              `json:"coupon_applied"`
	Availability  []string          `json:"availability,omitempty"`
	Errors        domain.FieldErrors `json:"errors,omitempty"`
}

func snapshot(id string, w *domain.Wizard, errs domain.FieldErrors) sessionView {
	view := sessionView{
		SessionID:     id,
		Variant:       w.Variant,
		State:         w.Current,
		Steps:         w.Steps(),
		Fields:        w.Fields,
		CouponApplied: w.CouponApplied,
		Errors:        errs,
	}
	if w.Fields.Date != "" {
		if d, err := time.Parse(domain.DateLayout, w.Fields.Date); err == nil {
			view.Availability = domain.AvailableSlots(d)
		}
	}
	return view
}

func (h *Handlers) CreateBookingSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Variant string `json:"variant"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, domain.ErrInvalidInput)
		return
	}
	variant, err := domain.ParseVariant(req.Variant)
	if err != nil {
		h.writeError(w, err)
		return
	}

	wiz := domain.NewWizard(variant)
	id, err := h.sessions.Create(r.Context(), wiz)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, snapshot(id, wiz, nil))
}

func (h *Handlers) GetBookingSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	wiz, err := h.sessions.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot(id, wiz, nil))
}

// AdvanceBookingSession merges the step's fields and attempts the forward
// transition. Invalid fields hold the step and come back per field.
func (h *Handlers) AdvanceBookingSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	wiz, err := h.sessions.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	var fields domain.Fields
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		h.writeError(w, domain.ErrInvalidInput)
		return
	}

	errs := wiz.Advance(fields)
	if err := h.sessions.Save(r.Context(), id, wiz); err != nil {
		h.writeError(w, err)
		return
	}
	if errs != nil {
		writeJSON(w, http.StatusUnprocessableEntity, snapshot(id, wiz, errs))
		return
	}
	writeJSON(w, http.StatusOK, snapshot(id, wiz, nil))
}

func (h *Handlers) BackBookingSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	wiz, err := h.sessions.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	wiz.Back()
	if err := h.sessions.Save(r.Context(), id, wiz); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot(id, wiz, nil))
}

func (h *Handlers) ApplyCoupon(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	wiz, err := h.sessions.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	var req struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, domain.ErrInvalidInput)
		return
	}

	if err := wiz.ApplyCoupon(req.Code); err != nil {
		h.writeError(w, err)
		return
	}
	if err := h.sessions.Save(r.Context(), id, wiz); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":        "coupon applied",
		"coupon_applied": true,
	})
}

// SubmitBookingSession is the terminal transition. The idempotency replay
// cache and the session submit guard together ensure at most one reservation
// row per double-clicked submit.
func (h *Handlers) SubmitBookingSession(w http.ResponseWriter, r *http.Request) {
	key := r.Header.Get("Idempotency-Key")
	if existing, err := h.idemp.Get(r.Context(), key); err == nil && existing != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(existing.Status)
		w.Write(existing.Result)
		return
	}

	id := chi.URLParam(r, "id")
	wiz, err := h.sessions.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if wiz.Complete() {
		h.writeError(w, domain.ErrConflict)
		return
	}

	ok, err := h.sessions.BeginSubmit(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if !ok {
		h.writeError(w, domain.ErrSubmitInFlight)
		return
	}
	defer h.sessions.EndSubmit(r.Context(), id)

	res, err := h.bookings.Submit(r.Context(), wiz, identityFrom(r.Context()))
	if err != nil {
		// Field state and step position survive for retry.
		h.sessions.Save(r.Context(), id, wiz)
		if errors.Is(err, booking.ErrDependentWrite) {
			h.logger.WithField("reservation_id", res.ID.String()).Error("dependent writes failed", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "something went wrong, please try again"})
			return
		}
		h.writeError(w, err)
		return
	}

	if err := h.sessions.Save(r.Context(), id, wiz); err != nil {
		h.logger.Error("failed to persist completed session", err)
	}

	body := map[string]interface{}{
		"reservation_id": res.ID,
		"status":         res.Status,
		"total_amount":   res.TotalAmount,
		"confirmation":   domain.BuildConfirmation(*res),
	}
	data, _ := json.Marshal(body)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	w.Write(data)

	h.idemp.Set(r.Context(), key, idempotency.Response{Status: http.StatusCreated, Result: data})
}

func (h *Handlers) CancelBookingSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.sessions.Delete(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
