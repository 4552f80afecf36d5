package handlers

import (
	"net/http"
	"time"

	"taskFlow/internal/handlers/dto"
	"taskFlow/internal/logger"
	"taskFlow/internal/models/task"
	"taskFlow/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type TaskHandler struct {
	TaskService TaskService
}

func NewTaskHandler(taskService TaskService) TaskHandler {
	return TaskHandler{
		TaskService: taskService,
	}
}

func (h *TaskHandler) Routes(r chi.Router) {
	r.Get("/", h.GetTasks)
	r.Post("/", h.PostTask)
	r.Put("/{id}", h.UpdateTask)
	r.Delete("/{id}", h.DeleteTask)
	r.Post("/{id}/toggle", h.ToggleTask)
}

func (h *TaskHandler) GetTasks(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	tasks := h.TaskService.GetTasks(r.Context())

	logger.Info("HTTP_OUT: Задачи получены",
		zap.Int("count", len(tasks)),
		zap.Duration("ms", time.Since(start)))

	responseWithJSON(w, http.StatusOK, toPayload("tasks", dto.FromTaskList(tasks)))
}

func (h *TaskHandler) PostTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var request dto.TaskRequest
	if !decodeJSON(w, r, &request) {
		return
	}
	if err := validateTaskRequest(&request); err != nil {
		handleBusinessError(w, err)
		return
	}

	created := h.TaskService.AddTask(r.Context(), request.Title, task.Frequency(request.Frequency), request.Options()...)
	if created == nil {
		handleBusinessError(w, service.NewBackendUnavailable("create_task"))
		return
	}

	logger.Info("HTTP_OUT: Задача создана",
		zap.String("task_id", created.ID.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusCreated))

	responseWithJSON(w, http.StatusCreated, toPayload("task", dto.FromTask(created)))
}

func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	id, err := parseID(r, "id")
	if err != nil {
		handleBusinessError(w, err)
		return
	}

	var request dto.TaskRequest
	if !decodeJSON(w, r, &request) {
		return
	}
	if err := validateTaskRequest(&request); err != nil {
		handleBusinessError(w, err)
		return
	}

	updated, outcome := h.TaskService.UpdateTask(r.Context(), id, request.Title, task.Frequency(request.Frequency), request.Options()...)
	if err := outcomeError(outcome, "задача", id.String(), "update_task"); err != nil {
		handleBusinessError(w, err)
		return
	}

	logger.Info("HTTP_OUT: Задача обновлена",
		zap.String("task_id", id.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK, toPayload("task", dto.FromTask(updated)))
}

// DeleteTask идемпотентен: отсутствующая задача - тоже 204.
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	id, err := parseID(r, "id")
	if err != nil {
		handleBusinessError(w, err)
		return
	}

	if outcome := h.TaskService.DeleteTask(r.Context(), id); outcome == service.Failed {
		handleBusinessError(w, service.NewBackendUnavailable("delete_task"))
		return
	}

	logger.Info("HTTP_OUT: Задача удалена",
		zap.String("task_id", id.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusNoContent))

	responseWithJSON(w, http.StatusNoContent)
}

func (h *TaskHandler) ToggleTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	id, err := parseID(r, "id")
	if err != nil {
		handleBusinessError(w, err)
		return
	}

	toggled, outcome := h.TaskService.ToggleTaskStatus(r.Context(), id)
	if err := outcomeError(outcome, "задача", id.String(), "toggle_task"); err != nil {
		handleBusinessError(w, err)
		return
	}

	logger.Info("HTTP_OUT: Статус задачи переключён",
		zap.String("task_id", id.String()),
		zap.Bool("is_done_today", toggled.IsDoneToday),
		zap.Duration("ms", time.Since(start)))

	responseWithJSON(w, http.StatusOK, toPayload("task", dto.FromTask(toggled)))
}
