package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"taskFlow/internal/handlers/dto"
	"taskFlow/internal/logger"
	"taskFlow/internal/models/task"
	"taskFlow/internal/schedule"
	"taskFlow/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// в ошибках - имена полей из json
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("datekey", func(fl validator.FieldLevel) bool {
		return schedule.ValidDateKey(fl.Field().String())
	})
	return v
}

func checkContentType(r *http.Request, target string) bool {
	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		return false
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == target
}

// decodeJSON проверяет тип контента и читает тело. false - ответ уже отправлен.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if !checkContentType(r, "application/json") {
		logger.Warn("HTTP: Неверный тип контента",
			zap.String("expected", "application/json"),
			zap.String("received", r.Header.Get("Content-Type")),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusUnsupportedMediaType, "Content-Type должен быть application/json")
		return false
	}

	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	defer r.Body.Close()

	if err := decoder.Decode(dst); err != nil {
		logger.Warn("HTTP: Ошибка чтения JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, "неверное тело запроса: "+err.Error())
		return false
	}
	return true
}

func validationError(err error) error {
	var errs validator.ValidationErrors
	if errors.As(err, &errs) && len(errs) > 0 {
		first := errs[0]
		reason := first.Tag()
		if first.Param() != "" {
			reason += "=" + first.Param()
		}
		return service.NewValidationError(first.Field(), reason)
	}
	return service.NewValidationError("body", err.Error())
}

// validateTaskRequest: теги плюс правило "поле расписания обязано соответствовать частоте".
func validateTaskRequest(req *dto.TaskRequest) error {
	req.Title = strings.TrimSpace(req.Title)
	if err := validate.Struct(req); err != nil {
		return validationError(err)
	}

	switch task.Frequency(req.Frequency) {
	case task.FrequencyOnce:
		if req.ScheduledDate == nil {
			return service.NewValidationError("scheduled_date", "required for Once")
		}
	case task.FrequencyWeekly:
		if req.WeekDay == nil {
			return service.NewValidationError("week_day", "required for Weekly")
		}
	case task.FrequencyMonthly:
		if req.MonthDay == nil {
			return service.NewValidationError("month_day", "required for Monthly")
		}
	}
	return nil
}

// validateBulkRequest возвращает очищенный список пунктов.
func validateBulkRequest(req *dto.BulkTaskRequest) ([]string, error) {
	req.Title = strings.TrimSpace(req.Title)
	if err := validate.Struct(req); err != nil {
		return nil, validationError(err)
	}

	items := service.CleanTitles(req.Items)
	if len(items) == 0 {
		return nil, service.NewValidationError("items", "at least one non-empty item")
	}
	return items, nil
}

func parseID(r *http.Request, param string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		return uuid.Nil, service.NewValidationError(param, "invalid uuid")
	}
	if id == uuid.Nil {
		return uuid.Nil, service.NewValidationError(param, "empty uuid")
	}
	return id, nil
}

// parseDays читает ?days=; пусто - def, допустимо 1..max.
func parseDays(r *http.Request, def, max int) (int, error) {
	raw := r.URL.Query().Get("days")
	if raw == "" {
		return def, nil
	}
	days, err := strconv.Atoi(raw)
	if err != nil || days < 1 || days > max {
		return 0, service.NewValidationError("days", fmt.Sprintf("integer between 1 and %d", max))
	}
	return days, nil
}
