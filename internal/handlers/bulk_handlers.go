package handlers

import (
	"net/http"
	"time"

	"taskFlow/internal/handlers/dto"
	"taskFlow/internal/logger"
	"taskFlow/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type BulkHandler struct {
	BulkService BulkService
}

func NewBulkHandler(bulkService BulkService) BulkHandler {
	return BulkHandler{BulkService: bulkService}
}

func (h *BulkHandler) Routes(r chi.Router) {
	r.Get("/", h.GetProjects)
	r.Post("/", h.PostProject)
	r.Delete("/{id}", h.DeleteProject)
	r.Post("/{id}/items/{itemId}/toggle", h.ToggleItem)
}

func (h *BulkHandler) GetProjects(w http.ResponseWriter, r *http.Request) {
	projects := h.BulkService.GetBulkTasks(r.Context())
	responseWithJSON(w, http.StatusOK, toPayload("projects", dto.FromBulkTaskList(projects)))
}

func (h *BulkHandler) PostProject(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var request dto.BulkTaskRequest
	if !decodeJSON(w, r, &request) {
		return
	}
	items, err := validateBulkRequest(&request)
	if err != nil {
		handleBusinessError(w, err)
		return
	}

	project := h.BulkService.AddBulkTask(r.Context(), request.Title, items)
	if project == nil {
		handleBusinessError(w, service.NewBackendUnavailable("create_bulk_task"))
		return
	}

	logger.Info("HTTP_OUT: Проект создан",
		zap.String("bulk_task_id", project.ID.String()),
		zap.Int("items", len(project.SubTasks)),
		zap.Duration("ms", time.Since(start)))

	responseWithJSON(w, http.StatusCreated, toPayload("project", dto.FromBulkTask(project)))
}

func (h *BulkHandler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		handleBusinessError(w, err)
		return
	}

	if outcome := h.BulkService.DeleteBulkTask(r.Context(), id); outcome == service.Failed {
		handleBusinessError(w, service.NewBackendUnavailable("delete_bulk_task"))
		return
	}
	responseWithJSON(w, http.StatusNoContent)
}

func (h *BulkHandler) ToggleItem(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	bulkID, err := parseID(r, "id")
	if err != nil {
		handleBusinessError(w, err)
		return
	}
	itemID, err := parseID(r, "itemId")
	if err != nil {
		handleBusinessError(w, err)
		return
	}

	project, outcome := h.BulkService.ToggleBulkSubTask(r.Context(), bulkID, itemID)
	if err := outcomeError(outcome, "пункт проекта", itemID.String(), "toggle_sub_task"); err != nil {
		handleBusinessError(w, err)
		return
	}

	logger.Info("HTTP_OUT: Пункт проекта переключён",
		zap.String("bulk_task_id", bulkID.String()),
		zap.String("sub_task_id", itemID.String()),
		zap.Duration("ms", time.Since(start)))

	responseWithJSON(w, http.StatusOK, toPayload("project", dto.FromBulkTask(project)))
}
