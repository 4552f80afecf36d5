package handlers

import (
	"context"

	"taskFlow/internal/models/activity"
	"taskFlow/internal/models/bulk"
	"taskFlow/internal/models/performance"
	"taskFlow/internal/models/task"
	"taskFlow/internal/service"

	"github.com/google/uuid"
)

type TaskService interface {
	GetTasks(context.Context) []*task.Task
	AddTask(context.Context, string, task.Frequency, ...task.TaskOption) *task.Task
	UpdateTask(context.Context, uuid.UUID, string, task.Frequency, ...task.TaskOption) (*task.Task, service.Outcome)
	DeleteTask(context.Context, uuid.UUID) service.Outcome
	ToggleTaskStatus(context.Context, uuid.UUID) (*task.Task, service.Outcome)
}

type BulkService interface {
	GetBulkTasks(context.Context) []*bulk.BulkTask
	AddBulkTask(ctx context.Context, title string, items []string) *bulk.BulkTask
	ToggleBulkSubTask(ctx context.Context, bulkID, subID uuid.UUID) (*bulk.BulkTask, service.Outcome)
	DeleteBulkTask(context.Context, uuid.UUID) service.Outcome
}

type ActivityService interface {
	GetActivities(context.Context) []*activity.Entry
}

type PerformanceService interface {
	GetPerformanceHistory(ctx context.Context, days int) []performance.DailyPerformance
}

type InsightService interface {
	Insight(context.Context, []performance.DailyPerformance) string
}

type HealthService interface {
	HealthCheck(context.Context) error
	Mode() service.RepoType
}
