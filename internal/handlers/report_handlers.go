package handlers

import (
	"net/http"
	"time"

	"taskFlow/internal/handlers/dto"
	"taskFlow/internal/logger"
	"taskFlow/internal/models/performance"
	"taskFlow/internal/service"

	"go.uber.org/zap"
)

const (
	maxHistoryDays     = 366
	defaultInsightDays = service.InsightWindow
)

// ReportHandler - журнал действий, история выполнения и инсайт.
type ReportHandler struct {
	Activity    ActivityService
	Performance PerformanceService
	Insight     InsightService
}

func NewReportHandler(activity ActivityService, performance PerformanceService, insight InsightService) ReportHandler {
	return ReportHandler{
		Activity:    activity,
		Performance: performance,
		Insight:     insight,
	}
}

func (h *ReportHandler) GetActivity(w http.ResponseWriter, r *http.Request) {
	entries := h.Activity.GetActivities(r.Context())
	responseWithJSON(w, http.StatusOK, toPayload("activity", entries))
}

func (h *ReportHandler) GetPerformance(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	days, err := parseDays(r, service.DefaultHistoryDays, maxHistoryDays)
	if err != nil {
		handleBusinessError(w, err)
		return
	}

	history := h.Performance.GetPerformanceHistory(r.Context(), days)

	logger.Info("HTTP_OUT: История выполнения построена",
		zap.Int("days", days),
		zap.Duration("ms", time.Since(start)))

	responseWithJSON(w, http.StatusOK, toPayload("history", history))
}

func (h *ReportHandler) GetInsight(w http.ResponseWriter, r *http.Request) {
	days, err := parseDays(r, defaultInsightDays, maxHistoryDays)
	if err != nil {
		handleBusinessError(w, err)
		return
	}

	history := h.Performance.GetPerformanceHistory(r.Context(), days)
	insight := h.Insight.Insight(r.Context(), history)

	res := dto.InsightResponse{
		History:     history,
		AverageRate: performance.AverageRate(performance.Series(history)),
		Insight:     insight,
	}
	responseWithJSON(w, http.StatusOK,
		toPayload("history", res.History),
		toPayload("average_rate", res.AverageRate),
		toPayload("insight", res.Insight),
	)
}
