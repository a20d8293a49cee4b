// File: internal/handlers/application_handler.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/collabers/backend/internal/middleware"
	applicationrepo "github.com/collabers/backend/internal/repository/application"
	"github.com/collabers/backend/internal/services"
)

type ApplicationHandler struct {
	Applications *services.ApplicationService
}

func NewApplicationHandler(applications *services.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{Applications: applications}
}

func (h *ApplicationHandler) Apply(w http.ResponseWriter, r *http.Request) {
	account := middleware.UserFromContext(r.Context())
	projectID, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid project id")
		return
	}

	var req struct {
		ProposedRole string `json:"proposed_role"`
		CoverLetter  string `json:"cover_letter"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	app, err := h.Applications.Apply(r.Context(), account.ID, projectID, req.ProposedRole, req.CoverLetter)
	if err != nil {
		writeApplicationError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, app)
}

// ListForProject returns a project's applications to its owner.
func (h *ApplicationHandler) ListForProject(w http.ResponseWriter, r *http.Request) {
	account := middleware.UserFromContext(r.Context())
	projectID, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid project id")
		return
	}

	apps, err := h.Applications.ListForProject(r.Context(), projectID, account.ID)
	if err != nil {
		writeApplicationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"applications": apps})
}

// ListMine returns the caller's submitted applications.
func (h *ApplicationHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	account := middleware.UserFromContext(r.Context())
	apps, err := h.Applications.ListForApplicant(r.Context(), account.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list applications")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"applications": apps})
}

func (h *ApplicationHandler) Accept(w http.ResponseWriter, r *http.Request) {
	account := middleware.UserFromContext(r.Context())
	applicationID, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid application id")
		return
	}

	collab, err := h.Applications.Accept(r.Context(), applicationID, account.ID)
	if err != nil {
		writeApplicationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, collab)
}

func (h *ApplicationHandler) Reject(w http.ResponseWriter, r *http.Request) {
	account := middleware.UserFromContext(r.Context())
	applicationID, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid application id")
		return
	}

	app, err := h.Applications.Reject(r.Context(), applicationID, account.ID)
	if err != nil {
		writeApplicationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, app)
}

func (h *ApplicationHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	account := middleware.UserFromContext(r.Context())
	applicationID, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid application id")
		return
	}

	if err := h.Applications.Withdraw(r.Context(), applicationID, account.ID); err != nil {
		writeApplicationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "application withdrawn"})
}

// Discuss opens (or returns) the conversation between the project owner and
// the applicant about this application.
func (h *ApplicationHandler) Discuss(w http.ResponseWriter, r *http.Request) {
	account := middleware.UserFromContext(r.Context())
	applicationID, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid application id")
		return
	}

	conv, err := h.Applications.Discuss(r.Context(), applicationID, account.ID)
	if err != nil {
		writeApplicationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, conv)
}

// Roster returns the active collaborators on a project.
func (h *ApplicationHandler) Roster(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid project id")
		return
	}

	roster, err := h.Applications.TeamRoster(r.Context(), projectID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load team roster")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"collaborators": roster})
}

// Leave ends the caller's collaboration on a project.
func (h *ApplicationHandler) Leave(w http.ResponseWriter, r *http.Request) {
	account := middleware.UserFromContext(r.Context())
	projectID, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid project id")
		return
	}

	if err := h.Applications.Leave(r.Context(), projectID, account.ID); err != nil {
		writeApplicationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "left project"})
}

// RemoveCollaborator ends another user's collaboration; owner only.
func (h *ApplicationHandler) RemoveCollaborator(w http.ResponseWriter, r *http.Request) {
	account := middleware.UserFromContext(r.Context())
	projectID, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid project id")
		return
	}
	collaboratorID, ok := pathID(r, "user_id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	if err := h.Applications.RemoveCollaborator(r.Context(), projectID, account.ID, collaboratorID); err != nil {
		writeApplicationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "collaborator removed"})
}

func writeApplicationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, applicationrepo.ErrApplicationNotFound):
		writeError(w, http.StatusNotFound, "application not found")
	case errors.Is(err, services.ErrNotProjectOwner),
		errors.Is(err, services.ErrNotApplicant):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, services.ErrOwnProject),
		errors.Is(err, services.ErrAlreadyApplied),
		errors.Is(err, services.ErrProjectClosed),
		errors.Is(err, services.ErrApplicationClosed),
		errors.Is(err, services.ErrAlreadyCollaborator):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusBadRequest, err.Error())
	}
}
