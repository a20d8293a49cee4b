// File: internal/handlers/profile_handler.go
package handlers

import (
	"net/http"

	"github.com/collabers/backend/internal/domain"
	"github.com/collabers/backend/internal/dtos"
	"github.com/collabers/backend/internal/middleware"
	"github.com/collabers/backend/internal/services/user_services"
)

type ProfileHandler struct {
	Profiles *user_services.ProfileService
	Accounts *user_services.AccountService
}

func NewProfileHandler(profiles *user_services.ProfileService, accounts *user_services.AccountService) *ProfileHandler {
	return &ProfileHandler{Profiles: profiles, Accounts: accounts}
}

// GetMine returns the caller's own profile, with its completeness score.
func (h *ProfileHandler) GetMine(w http.ResponseWriter, r *http.Request) {
	account := middleware.UserFromContext(r.Context())
	p, err := h.Profiles.Get(r.Context(), account.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load profile")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"profile":      p,
		"completeness": p.Completeness(),
	})
}

// Get returns another user's public view: profile plus join date, no email.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(r, "user_id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	account, err := h.Accounts.GetByID(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	p, err := h.Profiles.Get(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load profile")
		return
	}
	writeJSON(w, http.StatusOK, dtos.ToPublic(account, p))
}

// UpdateMine replaces the caller's profile fields.
func (h *ProfileHandler) UpdateMine(w http.ResponseWriter, r *http.Request) {
	account := middleware.UserFromContext(r.Context())

	var p domain.Profile
	if !decodeBody(w, r, &p) {
		return
	}

	updated, err := h.Profiles.Update(r.Context(), account.ID, &p)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"profile":      updated,
		"completeness": updated.Completeness(),
	})
}
