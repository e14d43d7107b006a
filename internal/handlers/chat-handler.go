package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"casr-tracker/internal/logging"
	"casr-tracker/internal/models"
	"casr-tracker/internal/validation"
)

// ChatBackend is implemented by services.ChatService.
type ChatBackend interface {
	Send(ctx context.Context, tenant, senderID, roomID, text string) (models.ChatMessage, error)
	Messages(ctx context.Context, tenant, roomID string, limit int) ([]models.ChatMessage, error)
	MarkRoomRead(ctx context.Context, tenant, roomID, userID string) (int, error)
	Unread(ctx context.Context, tenant, roomID, userID string) ([]string, error)
	Heartbeat(ctx context.Context, tenant, userID string) (models.PresenceView, error)
	Presence(ctx context.Context, tenant, userID string) (models.PresenceView, error)
}

type ChatHandler struct {
	Chat      ChatBackend
	Validator *validation.Validator
}

func NewChatHandler(chat ChatBackend, v *validation.Validator) *ChatHandler {
	return &ChatHandler{Chat: chat, Validator: v}
}

// chatUser is the caller's username; chat needs an identity, not a role.
func chatUser(w http.ResponseWriter, r *http.Request) (tenant, user string, ok bool) {
	tenant, user, ok = caller(w, r, anyRole)
	if !ok {
		return "", "", false
	}
	if user == "" {
		http.Error(w, "Missing Username header", http.StatusBadRequest)
		return "", "", false
	}
	return tenant, user, true
}

func (h *ChatHandler) GetMessages(w http.ResponseWriter, r *http.Request) {
	tenant, _, ok := chatUser(w, r)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	msgs, err := h.Chat.Messages(r.Context(), tenant, mux.Vars(r)["roomId"], limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, msgs)
}

func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	tenant, user, ok := chatUser(w, r)
	if !ok {
		return
	}
	var req struct {
		Text string `json:"text" validate:"required,max=4000"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(w, r, err)
		return
	}
	roomID := mux.Vars(r)["roomId"]
	msg, err := h.Chat.Send(r.Context(), tenant, user, roomID, req.Text)
	if err != nil {
		writeError(w, r, err)
		return
	}
	logging.Logger.Debugf("Event ID: MESSAGE_SENT, Description: %s posted %s in %s", user, msg.ID, roomID)
	writeJSON(w, http.StatusCreated, msg)
}

func (h *ChatHandler) MarkRoomRead(w http.ResponseWriter, r *http.Request) {
	tenant, user, ok := chatUser(w, r)
	if !ok {
		return
	}
	n, err := h.Chat.MarkRoomRead(r.Context(), tenant, mux.Vars(r)["roomId"], user)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"marked": n})
}

func (h *ChatHandler) GetUnread(w http.ResponseWriter, r *http.Request) {
	tenant, user, ok := chatUser(w, r)
	if !ok {
		return
	}
	ids, err := h.Chat.Unread(r.Context(), tenant, mux.Vars(r)["roomId"], user)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"count": len(ids), "messageIds": ids})
}

func (h *ChatHandler) GetPresence(w http.ResponseWriter, r *http.Request) {
	tenant, _, ok := chatUser(w, r)
	if !ok {
		return
	}
	view, err := h.Chat.Presence(r.Context(), tenant, mux.Vars(r)["userId"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Heartbeat is only accepted for the caller's own user id.
func (h *ChatHandler) Heartbeat(w http.ResponseWriter, r *http.Request) {
	tenant, user, ok := chatUser(w, r)
	if !ok {
		return
	}
	if target := mux.Vars(r)["userId"]; target != user {
		http.Error(w, "Cannot update presence of another user", http.StatusForbidden)
		return
	}
	view, err := h.Chat.Heartbeat(r.Context(), tenant, user)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}
