package handlers

import (
	"errors"
	"net/http"

	"taskFlow/internal/logger"
	"taskFlow/internal/service"

	"go.uber.org/zap"
)

func handleBusinessError(w http.ResponseWriter, err error) bool {
	var businessErr *service.BusinessError
	if !errors.As(err, &businessErr) {
		return false
	}

	statusCode := mapBusinessErrorToHTTP(businessErr.Code)
	logger.Warn("HTTP: Бизнес-ошибка",
		zap.String("error_code", businessErr.Code),
		zap.Int("http_status", statusCode))

	responseWithJSON(w, statusCode,
		toPayload("error", businessErr.Code),
		toPayload("message", businessErr.Message),
		toPayload("details", businessErr.Details),
	)
	return true
}

func mapBusinessErrorToHTTP(code string) int {
	switch code {
	case service.CodeNotFound:
		return http.StatusNotFound
	case service.CodeValidation:
		return http.StatusBadRequest
	case service.CodeBackendUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadRequest
	}
}

// outcomeError переводит результат записи в ответ; nil - запись применена.
func outcomeError(outcome service.Outcome, resource, id, operation string) error {
	switch outcome {
	case service.Applied:
		return nil
	case service.Missing:
		return service.NewNotFound(resource, id)
	default:
		return service.NewBackendUnavailable(operation)
	}
}
