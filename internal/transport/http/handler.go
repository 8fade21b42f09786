package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
)

type Handler struct {
	log     *slog.Logger
	started time.Time
}

func NewHandler(log *slog.Logger) *Handler {
	return &Handler{
		log:     log,
		started: time.Now(),
	}
}

// healthCheck - хендлер для проверки состояния сервиса
func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.log.Warn("method not allowed", slog.String("op", "transport.http/healthCheck"))
		respondWithError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"uptime": time.Since(h.started).Round(time.Second).String(),
	})
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Failed to marshal JSON response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
