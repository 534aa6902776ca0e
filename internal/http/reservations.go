package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/selvamkrish/table-reservations-and-content/internal/domain"
	qrcode "github.com/skip2/go-qrcode"
)

// GetAvailability serves the slot sequence for a date. Past dates are
// rejected here, at the request boundary, not inside the calculator.
func (h *Handlers) GetAvailability(w http.ResponseWriter, r *http.Request) {
	date, err := parseDateParam(r.URL.Query().Get("date"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "date must be YYYY-MM-DD"})
		return
	}
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, date.Location())
	if date.Before(today) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "date must be today or later"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"date":    date.Format(domain.DateLayout),
		"weekend": domain.IsWeekend(date),
		"slots":   domain.AvailableSlots(date),
	})
}

// GetReservation renders the confirmation view: summary, QR payload and the
// share deep link, all derived fresh from the stored row.
func (h *Handlers) GetReservation(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	res, err := h.reservations.GetReservation(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"reservation":  res,
		"confirmation": domain.BuildConfirmation(*res),
	})
}

// GetReservationQR encodes the confirmation payload as a scannable PNG.
func (h *Handlers) GetReservationQR(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	res, err := h.reservations.GetReservation(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	png, err := qrcode.Encode(domain.QRPayload(*res), qrcode.Medium, 256)
	if err != nil {
		h.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

// ListReservations is the staff dashboard listing with optional date/status
// filters.
func (h *Handlers) ListReservations(w http.ResponseWriter, r *http.Request) {
	var datePtr *time.Time
	if s := r.URL.Query().Get("date"); s != "" {
		d, err := parseDateParam(s)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "date must be YYYY-MM-DD"})
			return
		}
		datePtr = &d
	}
	var statusPtr *domain.Status
	if s := r.URL.Query().Get("status"); s != "" {
		st, err := domain.ParseStatus(s)
		if err != nil {
			h.writeError(w, err)
			return
		}
		statusPtr = &st
	}

	list, err := h.reservations.ListReservations(r.Context(), datePtr, statusPtr)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"reservations": list})
}

// UpdateReservationStatus applies one staff transition. The history entry is
// appended downstream by the notification worker, not here.
func (h *Handlers) UpdateReservationStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, domain.ErrInvalidInput)
		return
	}
	next, err := domain.ParseStatus(req.Status)
	if err != nil {
		h.writeError(w, err)
		return
	}

	actor := "staff"
	if ident := identityFrom(r.Context()); ident != nil {
		actor = ident.Name
	}

	prev, err := h.reservations.UpdateReservationStatus(r.Context(), id, next, actor)
	if err != nil {
		h.writeError(w, err)
		return
	}

	if h.audit != nil {
		// Best-effort; a failed audit write never fails the request.
		_ = h.audit.LogStatusChange(r.Context(), id, prev, next, actor)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"reservation_id": id,
		"from":           prev,
		"to":             next,
	})
}

func (h *Handlers) GetReservationHistory(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	entries, err := h.reservations.ListHistory(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"history": entries})
}
