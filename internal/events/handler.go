package events

import (
	"crypto/subtle"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

// maxBodyBytes caps an ingestion request body.
const maxBodyBytes = 1 << 20

// Handler accepts events over HTTP: POST a JSON Event, get 202 once it has
// been queued for delivery.
type Handler struct {
	notifier Notifier
	token    string
	logger   *slog.Logger
}

// NewHandler creates an ingestion handler. A non-empty token requires
// "Authorization: Bearer <token>" on every request.
func NewHandler(notifier Notifier, token string, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		notifier: notifier,
		token:    token,
		logger:   logger.With("component", "events_api"),
	}
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if !h.authorized(r) {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read body")
		return
	}

	ev, err := Decode(body)
	if err == nil {
		err = Dispatch(h.notifier, ev)
	}
	if err != nil {
		h.logger.Warn("rejected event", "event", ev.Event, "error", err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.logger.Debug("event accepted", "event", ev.Event)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]string{"status": "accepted"})
}

func (h *Handler) authorized(r *http.Request) bool {
	if h.token == "" {
		return true
	}
	got, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(h.token)) == 1
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
