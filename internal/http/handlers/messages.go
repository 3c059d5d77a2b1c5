package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// MessagesHandler serves the patient/doctor messaging inbox.
type MessagesHandler struct {
	proxy *Proxy
}

// NewMessagesHandler creates the messaging surface.
func NewMessagesHandler(proxy *Proxy) *MessagesHandler {
	return &MessagesHandler{proxy: proxy}
}

// Inbox handles GET /messages: conversation list with unread counts.
func (h *MessagesHandler) Inbox(w http.ResponseWriter, r *http.Request) {
	h.proxy.Forward(w, r, http.MethodGet, "/api/messages", "messages")
}

// Thread handles GET /messages/{userID}: the conversation with one user.
func (h *MessagesHandler) Thread(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	h.proxy.Forward(w, r, http.MethodGet, "/api/messages/"+userID, "messages")
}

// Send handles POST /messages.
func (h *MessagesHandler) Send(w http.ResponseWriter, r *http.Request) {
	h.proxy.Forward(w, r, http.MethodPost, "/api/messages", "messages")
}
