package handlers

import (
	"net/http"

	"taskFlow/internal/logger"
)

type HealthHandler struct {
	Health HealthService
}

func NewHealthHandler(health HealthService) HealthHandler {
	return HealthHandler{Health: health}
}

// HealthCheck отдаёт режим хранения; 503, если бэкенд не отвечает.
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	mode := h.Health.Mode()

	if err := h.Health.HealthCheck(r.Context()); err != nil {
		logger.Error("HTTP: Проверка здоровья не прошла", err)
		responseWithJSON(w, http.StatusServiceUnavailable,
			toPayload("status", "unavailable"),
			toPayload("mode", mode),
			toPayload("offline", mode.Offline()),
			toPayload("error", err.Error()),
		)
		return
	}

	responseWithJSON(w, http.StatusOK,
		toPayload("status", "ok"),
		toPayload("mode", mode),
		toPayload("offline", mode.Offline()),
	)
}
