package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	mongoadapter "github.com/selvamkrish/table-reservations-and-content/internal/adapters/mongo"
	"github.com/selvamkrish/table-reservations-and-content/internal/domain"
)

// Public content reads go through the redis cache under the fixed staleness
// window; staff writes never invalidate synchronously, so a list may be stale
// for up to the window after a concurrent mutation.
func (h *Handlers) cachedList(w http.ResponseWriter, r *http.Request, key string, fetch func() (interface{}, error)) {
	if h.cache != nil {
		var cached json.RawMessage
		if hit, err := h.cache.GetJSON(r.Context(), key, &cached); err == nil && hit {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			w.Write(cached)
			return
		}
	}

	v, err := fetch()
	if err != nil {
		h.writeError(w, err)
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if h.cache != nil {
		_ = h.cache.SetJSON(r.Context(), key, json.RawMessage(data), h.cfg.CacheTTL)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (h *Handlers) ListEvents(w http.ResponseWriter, r *http.Request) {
	h.cachedList(w, r, "events", func() (interface{}, error) {
		docs, err := h.catalog.ListEvents(r.Context())
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"events": docs}, nil
	})
}

func (h *Handlers) ListExperiences(w http.ResponseWriter, r *http.Request) {
	h.cachedList(w, r, "experiences", func() (interface{}, error) {
		docs, err := h.catalog.ListExperiences(r.Context())
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"experiences": docs}, nil
	})
}

func (h *Handlers) ListOffers(w http.ResponseWriter, r *http.Request) {
	h.cachedList(w, r, "offers", func() (interface{}, error) {
		docs, err := h.catalog.ListOffers(r.Context())
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"offers": docs}, nil
	})
}

func (h *Handlers) ListTestimonials(w http.ResponseWriter, r *http.Request) {
	h.cachedList(w, r, "testimonials", func() (interface{}, error) {
		docs, err := h.catalog.ListTestimonials(r.Context())
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"testimonials": docs}, nil
	})
}

type eventRequest struct {
	VenueID     uuid.UUID `json:"venue_id" validate:"required"`
	Title       string    `json:"title" validate:"required,min=2"`
	Description string    `json:"description"`
	Date        time.Time `json:"date" validate:"required"`
	ImageURL    string    `json:"image_url" validate:"omitempty,url"`
}

func (h *Handlers) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, domain.ErrInvalidInput)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return
	}

	doc := mongoadapter.EventDoc{
		ID:          uuid.New(),
		VenueID:     req.VenueID,
		Title:       req.Title,
		Description: req.Description,
		Date:        req.Date,
		ImageURL:    req.ImageURL,
	}
	if err := h.catalog.CreateEvent(r.Context(), doc); err != nil {
		h.writeError(w, err)
		return
	}
	h.logContentAudit(r, "events", "created", doc.ID)
	writeJSON(w, http.StatusCreated, map[string]interface{}{"id": doc.ID})
}

func (h *Handlers) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, domain.ErrInvalidInput)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return
	}
	if err := h.catalog.UpdateEvent(r.Context(), id, req.Title, req.Description, req.ImageURL, req.Date); err != nil {
		h.writeError(w, err)
		return
	}
	h.logContentAudit(r, "events", "updated", id)
	writeJSON(w, http.StatusOK, map[string]interface{}{"id": id})
}

func (h *Handlers) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	h.deleteCatalogDoc(w, r, "events", h.catalog.DeleteEvent)
}

type experienceRequest struct {
	VenueID      uuid.UUID `json:"venue_id" validate:"required"`
	Title        string    `json:"title" validate:"required,min=2"`
	Description  string    `json:"description"`
	PricePerHead int64     `json:"price_per_head" validate:"gte=0"`
	ImageURL     string    `json:"image_url" validate:"omitempty,url"`
}

func (h *Handlers) CreateExperience(w http.ResponseWriter, r *http.Request) {
	var req experienceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, domain.ErrInvalidInput)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return
	}

	doc := mongoadapter.ExperienceDoc{
		ID:           uuid.New(),
		VenueID:      req.VenueID,
		Title:        req.Title,
		Description:  req.Description,
		PricePerHead: req.PricePerHead,
		ImageURL:     req.ImageURL,
	}
	if err := h.catalog.CreateExperience(r.Context(), doc); err != nil {
		h.writeError(w, err)
		return
	}
	h.logContentAudit(r, "experiences", "created", doc.ID)
	writeJSON(w, http.StatusCreated, map[string]interface{}{"id": doc.ID})
}

func (h *Handlers) UpdateExperience(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	var req experienceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, domain.ErrInvalidInput)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return
	}
	if err := h.catalog.UpdateExperience(r.Context(), id, req.Title, req.Description, req.ImageURL, req.PricePerHead); err != nil {
		h.writeError(w, err)
		return
	}
	h.logContentAudit(r, "experiences", "updated", id)
	writeJSON(w, http.StatusOK, map[string]interface{}{"id": id})
}

func (h *Handlers) DeleteExperience(w http.ResponseWriter, r *http.Request) {
	h.deleteCatalogDoc(w, r, "experiences", h.catalog.DeleteExperience)
}

type offerRequest struct {
	Title       string    `json:"title" validate:"required,min=2"`
	Description string    `json:"description"`
	CouponCode  string    `json:"coupon_code" validate:"required,min=3"`
	ValidFrom   time.Time `json:"valid_from" validate:"required"`
	ValidTo     time.Time `json:"valid_to" validate:"required,gtfield=ValidFrom"`
}

func (h *Handlers) CreateOffer(w http.ResponseWriter, r *http.Request) {
	var req offerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, domain.ErrInvalidInput)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return
	}

	doc := mongoadapter.OfferDoc{
		ID:          uuid.New(),
		Title:       req.Title,
		Description: req.Description,
		CouponCode:  req.CouponCode,
		ValidFrom:   req.ValidFrom,
		ValidTo:     req.ValidTo,
	}
	if err := h.catalog.CreateOffer(r.Context(), doc); err != nil {
		h.writeError(w, err)
		return
	}
	h.logContentAudit(r, "offers", "created", doc.ID)
	writeJSON(w, http.StatusCreated, map[string]interface{}{"id": doc.ID})
}

func (h *Handlers) UpdateOffer(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	var req offerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, domain.ErrInvalidInput)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return
	}
	if err := h.catalog.UpdateOffer(r.Context(), id, req.Title, req.Description, req.CouponCode, req.ValidFrom, req.ValidTo); err != nil {
		h.writeError(w, err)
		return
	}
	h.logContentAudit(r, "offers", "updated", id)
	writeJSON(w, http.StatusOK, map[string]interface{}{"id": id})
}

func (h *Handlers) DeleteOffer(w http.ResponseWriter, r *http.Request) {
	h.deleteCatalogDoc(w, r, "offers", h.catalog.DeleteOffer)
}

type testimonialRequest struct {
	Author string `json:"author" validate:"required,min=2"`
	Quote  string `json:"quote" validate:"required,min=10"`
	Rating int    `json:"rating" validate:"required,gte=1,lte=5"`
}

func (h *Handlers) CreateTestimonial(w http.ResponseWriter, r *http.Request) {
	var req testimonialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, domain.ErrInvalidInput)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return
	}

	doc := mongoadapter.TestimonialDoc{
		ID:     uuid.New(),
		Author: req.Author,
		Quote:  req.Quote,
		Rating: req.Rating,
	}
	if err := h.catalog.CreateTestimonial(r.Context(), doc); err != nil {
		h.writeError(w, err)
		return
	}
	h.logContentAudit(r, "testimonials", "created", doc.ID)
	writeJSON(w, http.StatusCreated, map[string]interface{}{"id": doc.ID})
}

func (h *Handlers) UpdateTestimonial(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	var req testimonialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, domain.ErrInvalidInput)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return
	}
	if err := h.catalog.UpdateTestimonial(r.Context(), id, req.Author, req.Quote, req.Rating); err != nil {
		h.writeError(w, err)
		return
	}
	h.logContentAudit(r, "testimonials", "updated", id)
	writeJSON(w, http.StatusOK, map[string]interface{}{"id": id})
}

func (h *Handlers) DeleteTestimonial(w http.ResponseWriter, r *http.Request) {
	h.deleteCatalogDoc(w, r, "testimonials", h.catalog.DeleteTestimonial)
}

func (h *Handlers) deleteCatalogDoc(w http.ResponseWriter, r *http.Request, collection string, del func(ctx context.Context, id uuid.UUID) error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	if err := del(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	h.logContentAudit(r, collection, "deleted", id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) logContentAudit(r *http.Request, collection, action string, id uuid.UUID) {
	if h.audit == nil {
		return
	}
	actor := "staff"
	if ident := identityFrom(r.Context()); ident != nil {
		actor = ident.Name
	}
	_ = h.audit.LogContentChange(r.Context(), collection, action, id, actor)
}
