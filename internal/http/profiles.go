package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/selvamkrish/table-reservations-and-content/internal/adapters/crdb"
	"github.com/selvamkrish/table-reservations-and-content/internal/domain"
)

// ProfileStore is the profile read/write surface. Satisfied by the crdb
// repository.
type ProfileStore interface {
	GetProfile(ctx context.Context, id uuid.UUID) (*crdb.Profile, error)
	UpsertProfile(ctx context.Context, p crdb.Profile) error
}

type profileRequest struct {
	Name  string `json:"name" validate:"required,min=2"`
	Phone string `json:"phone" validate:"required,len=10,numeric"`
	Email string `json:"email" validate:"required,email"`
}

// GetMe serves the caller's profile row. A signed-in guest who has never
// saved one gets a view assembled from the token claims instead of a 404.
func (h *Handlers) GetMe(w http.ResponseWriter, r *http.Request) {
	ident := identityFrom(r.Context())
	if ident == nil {
		h.writeError(w, domain.ErrIdentityRequired)
		return
	}

	p, err := h.profiles.GetProfile(r.Context(), ident.ID)
	if errors.Is(err, domain.ErrNotFound) {
		writeJSON(w, http.StatusOK, crdb.Profile{
			ID:    ident.ID,
			Name:  ident.Name,
			Phone: ident.Phone,
			Role:  ident.Role,
		})
		return
	}
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handlers) UpdateMe(w http.ResponseWriter, r *http.Request) {
	ident := identityFrom(r.Context())
	if ident == nil {
		h.writeError(w, domain.ErrIdentityRequired)
		return
	}

	var req profileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, domain.ErrInvalidInput)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return
	}

	role := ident.Role
	if role == "" {
		role = "guest"
	}
	p := crdb.Profile{
		ID:    ident.ID,
		Name:  req.Name,
		Phone: req.Phone,
		Email: req.Email,
		Role:  role,
	}
	if err := h.profiles.UpsertProfile(r.Context(), p); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}
