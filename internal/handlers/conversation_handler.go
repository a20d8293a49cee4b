// File: internal/handlers/conversation_handler.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/collabers/backend/internal/middleware"
	"github.com/collabers/backend/internal/services"
)

type ConversationHandler struct {
	Messaging *services.MessagingService
}

func NewConversationHandler(messaging *services.MessagingService) *ConversationHandler {
	return &ConversationHandler{Messaging: messaging}
}

// StartDirect opens or reuses a direct conversation with another user.
func (h *ConversationHandler) StartDirect(w http.ResponseWriter, r *http.Request) {
	account := middleware.UserFromContext(r.Context())

	var req struct {
		UserID uint `json:"user_id"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	conv, err := h.Messaging.StartDirect(r.Context(), account.ID, req.UserID)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, conv)
}

func (h *ConversationHandler) List(w http.ResponseWriter, r *http.Request) {
	account := middleware.UserFromContext(r.Context())
	conversations, err := h.Messaging.ListConversations(r.Context(), account.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list conversations")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"conversations": conversations})
}

func (h *ConversationHandler) Send(w http.ResponseWriter, r *http.Request) {
	account := middleware.UserFromContext(r.Context())
	conversationID, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid conversation id")
		return
	}

	var req struct {
		Content string `json:"content"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	msg, err := h.Messaging.Send(r.Context(), conversationID, account.ID, req.Content)
	if err != nil {
		writeMessagingError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}

func (h *ConversationHandler) Messages(w http.ResponseWriter, r *http.Request) {
	account := middleware.UserFromContext(r.Context())
	conversationID, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid conversation id")
		return
	}

	msgs, err := h.Messaging.ListMessages(r.Context(), conversationID, account.ID,
		queryInt(r, "limit", 50), queryInt(r, "offset", 0))
	if err != nil {
		writeMessagingError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"messages": msgs})
}

func writeMessagingError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrNotParticipant):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, services.ErrEmptyMessage):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusBadRequest, err.Error())
	}
}
