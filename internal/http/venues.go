package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/selvamkrish/table-reservations-and-content/internal/adapters/crdb"
	"github.com/selvamkrish/table-reservations-and-content/internal/domain"
)

// VenueStore is the venue/table CRUD surface. Satisfied by the crdb
// repository.
type VenueStore interface {
	CreateVenue(ctx context.Context, v crdb.Venue) error
	ListVenues(ctx context.Context) ([]crdb.Venue, error)
	GetVenue(ctx context.Context, id uuid.UUID) (*crdb.Venue, error)
	UpdateVenue(ctx context.Context, v crdb.Venue) error
	DeleteVenue(ctx context.Context, id uuid.UUID) error
	CreateTable(ctx context.Context, tbl crdb.Table) error
	ListTables(ctx context.Context, venueID uuid.UUID) ([]crdb.Table, error)
	UpdateTable(ctx context.Context, tbl crdb.Table) error
	DeleteTable(ctx context.Context, id uuid.UUID) error
}

type venueRequest struct {
	Name    string `json:"name" validate:"required,min=2"`
	City    string `json:"city" validate:"required"`
	Address string `json:"address" validate:"required"`
	Phone   string `json:"phone" validate:"required,len=10,numeric"`
}

func (h *Handlers) CreateVenue(w http.ResponseWriter, r *http.Request) {
	var req venueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, domain.ErrInvalidInput)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return
	}

	v := crdb.Venue{
		ID:      uuid.New(),
		Name:    req.Name,
		City:    req.City,
		Address: req.Address,
		Phone:   req.Phone,
	}
	if err := h.venues.CreateVenue(r.Context(), v); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"id": v.ID})
}

func (h *Handlers) ListVenues(w http.ResponseWriter, r *http.Request) {
	list, err := h.venues.ListVenues(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"venues": list})
}

func (h *Handlers) GetVenue(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	v, err := h.venues.GetVenue(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *Handlers) UpdateVenue(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	var req venueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, domain.ErrInvalidInput)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return
	}

	v := crdb.Venue{
		ID:      id,
		Name:    req.Name,
		City:    req.City,
		Address: req.Address,
		Phone:   req.Phone,
	}
	if err := h.venues.UpdateVenue(r.Context(), v); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"id": id})
}

func (h *Handlers) DeleteVenue(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	if err := h.venues.DeleteVenue(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type tableRequest struct {
	Label    string `json:"label" validate:"required"`
	Capacity int    `json:"capacity" validate:"required,gte=1,lte=100"`
	Section  string `json:"section"`
}

func (h *Handlers) CreateTable(w http.ResponseWriter, r *http.Request) {
	venueID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid venue id"})
		return
	}
	var req tableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, domain.ErrInvalidInput)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return
	}

	tbl := crdb.Table{
		ID:       uuid.New(),
		VenueID:  venueID,
		Label:    req.Label,
		Capacity: req.Capacity,
		Section:  req.Section,
	}
	if err := h.venues.CreateTable(r.Context(), tbl); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"id": tbl.ID})
}

func (h *Handlers) ListTables(w http.ResponseWriter, r *http.Request) {
	venueID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid venue id"})
		return
	}
	list, err := h.venues.ListTables(r.Context(), venueID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"tables": list})
}

func (h *Handlers) UpdateTable(w http.ResponseWriter, r *http.Request) {
	venueID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid venue id"})
		return
	}
	tableID, err := uuid.Parse(chi.URLParam(r, "tableID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid table id"})
		return
	}
	var req tableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, domain.ErrInvalidInput)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return
	}

	tbl := crdb.Table{
		ID:       tableID,
		VenueID:  venueID,
		Label:    req.Label,
		Capacity: req.Capacity,
		Section:  req.Section,
	}
	if err := h.venues.UpdateTable(r.Context(), tbl); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"id": tableID})
}

func (h *Handlers) DeleteTable(w http.ResponseWriter, r *http.Request) {
	tableID, err := uuid.Parse(chi.URLParam(r, "tableID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid table id"})
		return
	}
	if err := h.venues.DeleteTable(r.Context(), tableID); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
