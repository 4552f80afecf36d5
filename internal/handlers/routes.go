package handlers

import "github.com/go-chi/chi/v5"

type Handlers struct {
	Tasks   TaskHandler
	Bulk    BulkHandler
	Reports ReportHandler
	Health  HealthHandler
}

func (h *Handlers) Register(r chi.Router) {
	r.Route("/tasks", h.Tasks.Routes)     // GET/POST /tasks, PUT/DELETE /tasks/{id}, POST /tasks/{id}/toggle
	r.Route("/projects", h.Bulk.Routes)   // проекты и их пункты
	r.Get("/activity", h.Reports.GetActivity)
	r.Get("/performance", h.Reports.GetPerformance)
	r.Get("/performance/insight", h.Reports.GetInsight)
	r.Get("/health", h.Health.HealthCheck)
}
