package notifier

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Handler exposes the notification management JSON API consumed by the
// admin surface: listing, unread count and read-state changes.
type Handler struct {
	manager *Manager
}

// NewHandler creates a Handler over the manager.
func NewHandler(manager *Manager) *Handler {
	return &Handler{manager: manager}
}

// Routes mounts the management endpoints on a chi router.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/notifications", h.list)
	r.Get("/notifications/unread-count", h.unreadCount)
	r.Get("/notifications/{id}", h.view)
	r.Post("/notifications/{id}/read", h.markRead)
	r.Post("/notifications/{id}/unread", h.markUnread)
	r.Post("/notifications/read-all", h.markAllRead)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	opts := ListOptions{}
	if r.URL.Query().Get("unread") == "true" {
		opts.OnlyUnread = true
	}
	if id := r.URL.Query().Get("reservation_id"); id != "" {
		opts.ReservationID = id
	}

	notifications, err := h.manager.List(r.Context(), opts)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list notifications")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"notifications": notifications})
}

func (h *Handler) unreadCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.manager.CountUnread(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to count unread notifications")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"unread": count})
}

// view returns the notification detail and marks it operator-read.
func (h *Handler) view(w http.ResponseWriter, r *http.Request) {
	notif, err := h.manager.View(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "notification not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load notification")
		return
	}
	writeJSON(w, http.StatusOK, notif)
}

func (h *Handler) markRead(w http.ResponseWriter, r *http.Request) {
	if err := h.manager.MarkRead(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to mark notification read")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *Handler) markUnread(w http.ResponseWriter, r *http.Request) {
	if err := h.manager.MarkUnread(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to mark notification unread")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *Handler) markAllRead(w http.ResponseWriter, r *http.Request) {
	if err := h.manager.MarkAllRead(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to mark all notifications read")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
