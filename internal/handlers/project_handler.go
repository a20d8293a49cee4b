// File: internal/handlers/project_handler.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/collabers/backend/internal/domain"
	"github.com/collabers/backend/internal/middleware"
	projectrepo "github.com/collabers/backend/internal/repository/project"
	"github.com/collabers/backend/internal/services"
)

type ProjectHandler struct {
	Projects *services.ProjectService
}

func NewProjectHandler(projects *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{Projects: projects}
}

func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	account := middleware.UserFromContext(r.Context())

	var p domain.ProjectPost
	if !decodeBody(w, r, &p) {
		return
	}

	created, err := h.Projects.Create(r.Context(), account.ID, &p)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	account := middleware.UserFromContext(r.Context())
	q := r.URL.Query()

	filter := projectrepo.Filter{
		Category: domain.ProjectCategory(q.Get("category")),
		Status:   domain.ProjectStatus(q.Get("status")),
		Search:   q.Get("search"),
		Page:     queryInt(r, "page", 1),
		Limit:    queryInt(r, "limit", 20),
	}
	if q.Get("mine") == "true" {
		filter.CreatorID = account.ID
	}

	projects, total, err := h.Projects.List(r.Context(), filter, account.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list projects")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"projects": projects,
		"total":    total,
		"page":     filter.Page,
		"limit":    filter.Limit,
	})
}

func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	account := middleware.UserFromContext(r.Context())
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid project id")
		return
	}

	p, err := h.Projects.Get(r.Context(), id, account.ID)
	if err != nil {
		writeProjectError(w, err)
		return
	}

	html, err := h.Projects.RenderDetailedDescription(p)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to render project")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"project":                   p,
		"detailed_description_html": html,
	})
}

func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	account := middleware.UserFromContext(r.Context())
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid project id")
		return
	}

	var p domain.ProjectPost
	if !decodeBody(w, r, &p) {
		return
	}

	updated, err := h.Projects.Update(r.Context(), id, account.ID, &p)
	if err != nil {
		writeProjectError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *ProjectHandler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	account := middleware.UserFromContext(r.Context())
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid project id")
		return
	}

	var req struct {
		Status domain.ProjectStatus `json:"status"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	updated, err := h.Projects.ChangeStatus(r.Context(), id, account.ID, req.Status)
	if err != nil {
		writeProjectError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	account := middleware.UserFromContext(r.Context())
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid project id")
		return
	}

	if err := h.Projects.Delete(r.Context(), id, account.ID); err != nil {
		writeProjectError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "project deleted"})
}

func writeProjectError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, projectrepo.ErrProjectNotFound), errors.Is(err, services.ErrProjectNotVisible):
		writeError(w, http.StatusNotFound, "project not found")
	case errors.Is(err, services.ErrProjectForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, services.ErrBadStatusChange):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusBadRequest, err.Error())
	}
}
