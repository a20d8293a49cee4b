// File: internal/handlers/notification_handler.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/collabers/backend/internal/middleware"
	"github.com/collabers/backend/internal/services"
)

type NotificationHandler struct {
	Notifications *services.NotificationService
}

func NewNotificationHandler(notifications *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{Notifications: notifications}
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	account := middleware.UserFromContext(r.Context())
	unreadOnly := r.URL.Query().Get("unread") == "true"

	items, err := h.Notifications.List(r.Context(), account.ID, unreadOnly,
		queryInt(r, "limit", 20), queryInt(r, "offset", 0))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list notifications")
		return
	}

	unread, err := h.Notifications.UnreadCount(r.Context(), account.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to count notifications")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"notifications": items,
		"unread_count":  unread,
	})
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	account := middleware.UserFromContext(r.Context())
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid notification id")
		return
	}

	if err := h.Notifications.MarkRead(r.Context(), id, account.ID); err != nil {
		if errors.Is(err, services.ErrNotYourNotification) {
			writeError(w, http.StatusForbidden, err.Error())
			return
		}
		writeError(w, http.StatusNotFound, "notification not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "notification marked read"})
}

func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	account := middleware.UserFromContext(r.Context())
	if err := h.Notifications.MarkAllRead(r.Context(), account.ID); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to mark notifications read")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "all notifications marked read"})
}
