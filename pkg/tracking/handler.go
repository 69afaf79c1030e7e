package tracking

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// pixelGIF is a transparent 1x1 GIF, the smallest thing an email client
// will happily render.
var pixelGIF = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, // GIF89a
	0x01, 0x00, 0x01, 0x00, 0x80, 0x00, 0x00,
	0x00, 0x00, 0x00, 0xff, 0xff, 0xff,
	0x21, 0xf9, 0x04, 0x01, 0x00, 0x00, 0x00, 0x00,
	0x2c, 0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x01, 0x00, 0x00,
	0x02, 0x02, 0x44, 0x01, 0x00, 0x3b,
}

// Handler serves the tracking endpoints consumed by links embedded in
// outbound emails.
type Handler struct {
	service *Service
}

// NewHandler creates a Handler over the tracking service.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes mounts the tracking endpoints on a chi router.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/track/{token}", h.resolve)
	r.Get("/track/{token}/", h.resolve)
	r.Get("/track/{token}/{action}", h.resolve)
	r.Get("/track/{token}/{action}/", h.resolve)
}

func (h *Handler) resolve(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	action := Action(chi.URLParam(r, "action"))
	client := Client{
		IP:        ClientIP(r),
		UserAgent: r.UserAgent(),
	}

	res, err := h.service.Resolve(r.Context(), token, action, client)
	if err != nil {
		if errors.Is(err, ErrTokenNotFound) {
			http.NotFound(w, r)
			return
		}
		http.Error(w, "tracking resolution failed", http.StatusInternalServerError)
		return
	}

	switch res.Action {
	case ActionView:
		h.writeView(w, res)
	case ActionConfirm:
		h.writeConfirm(w, res)
	default:
		h.writePixel(w)
	}
}

// writePixel returns the invisible open-detection image. Cache headers
// force every open to hit the server rather than an intermediary cache.
func (h *Handler) writePixel(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "image/gif")
	w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, private")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Expires", "0")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pixelGIF)
}

func (h *Handler) writeView(w http.ResponseWriter, res *Resolution) {
	payload := map[string]any{
		"title":        res.Notification.Title,
		"notification": res.Notification,
	}
	if res.Reservation != nil {
		payload["reservation"] = res.Reservation
	}
	writeJSON(w, http.StatusOK, payload)
}

func (h *Handler) writeConfirm(w http.ResponseWriter, res *Resolution) {
	payload := map[string]any{
		"confirmed": true,
		"message":   "Thank you, your reservation is acknowledged.",
	}
	if res.Reservation != nil {
		payload["reservation"] = res.Reservation
	}
	writeJSON(w, http.StatusOK, payload)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
