package service

import (
	"context"

	"taskFlow/internal/models/activity"
	"taskFlow/internal/models/bulk"
	"taskFlow/internal/models/task"

	"github.com/google/uuid"
)

type TaskRepository interface {
	ListTasks(context.Context) ([]*task.Task, error)
	GetTask(context.Context, uuid.UUID) (*task.Task, error)
	CreateTask(context.Context, *task.Task) error
	UpdateTask(context.Context, *task.Task) error
	DeleteTask(context.Context, uuid.UUID) error

	ListCompletions(context.Context) ([]*task.CompletionRecord, error)
	ListCompletionsOn(ctx context.Context, dateKey string) ([]*task.CompletionRecord, error)
	FindCompletion(ctx context.Context, taskID uuid.UUID, dateKey string) (*task.CompletionRecord, error)
	CreateCompletion(context.Context, *task.CompletionRecord) error
	DeleteCompletion(context.Context, uuid.UUID) error
}

type BulkTaskRepository interface {
	ListBulkTasks(context.Context) ([]*bulk.BulkTask, error)
	GetBulkTask(context.Context, uuid.UUID) (*bulk.BulkTask, error)
	CreateBulkTask(context.Context, *bulk.BulkTask) error
	UpdateSubTask(context.Context, *bulk.SubTask) error
	DeleteBulkTask(context.Context, uuid.UUID) error
}

type ActivityRepository interface {
	AppendActivity(context.Context, *activity.Entry) error
	RecentActivities(ctx context.Context, limit int) ([]*activity.Entry, error)
}

// Store - полный набор возможностей бэкенда. Реализуют postgres.Storage и local.Store.
type Store interface {
	TaskRepository
	BulkTaskRepository
	ActivityRepository
	HealthCheck(context.Context) error
	Close() error
}

// ActivityRecorder - то, чем репозитории пишут журнал. Ошибок не возвращает.
type ActivityRecorder interface {
	Log(ctx context.Context, action activity.Action, target activity.TargetType, title string)
}

// RepoType - активный режим хранения, выбирается один раз при старте.
type RepoType string

const (
	RemoteType RepoType = "remote"
	LocalType  RepoType = "local"
)

func (r RepoType) Offline() bool {
	return r == LocalType
}
