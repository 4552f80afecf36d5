package dto

import (
	"time"

	"taskFlow/internal/models/activity"
	"taskFlow/internal/models/bulk"
	"taskFlow/internal/models/performance"
	"taskFlow/internal/models/task"

	"github.com/google/uuid"
)

// TaskRequest - тело POST /tasks и PUT /tasks/{id}: PUT перезаписывает задачу целиком.
type TaskRequest struct {
	Title         string  `json:"title" validate:"required,max=200"`
	Description   string  `json:"description" validate:"max=2000"`
	Frequency     string  `json:"frequency" validate:"required,oneof=Daily Weekly Monthly Once"`
	ScheduledDate *string `json:"scheduled_date,omitempty" validate:"omitempty,datekey"`
	WeekDay       *int    `json:"week_day,omitempty" validate:"omitempty,min=0,max=6"`
	MonthDay      *int    `json:"month_day,omitempty" validate:"omitempty,min=1,max=31"`
}

// Options переводит запрос в опции модели; поля не по частоте отбросит Normalize.
func (r TaskRequest) Options() []task.TaskOption {
	opts := []task.TaskOption{
		task.WithDescription(r.Description),
		task.WithWeekDay(r.WeekDay),
		task.WithMonthDay(r.MonthDay),
	}
	if r.ScheduledDate != nil {
		opts = append(opts, task.WithScheduledDate(*r.ScheduledDate))
	}
	return opts
}

type BulkTaskRequest struct {
	Title string   `json:"title" validate:"required,max=200"`
	Items []string `json:"items" validate:"required,min=1,max=100,dive,max=200"`
}

type TaskResponse struct {
	ID            uuid.UUID `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Frequency     string    `json:"frequency"`
	CreatedAt     time.Time `json:"created_at"`
	CreatedBy     string    `json:"created_by"`
	ScheduledDate *string   `json:"scheduled_date,omitempty"`
	WeekDay       *int      `json:"week_day,omitempty"`
	MonthDay      *int      `json:"month_day,omitempty"`
	IsDoneToday   bool      `json:"is_done_today"`
}

func FromTask(t *task.Task) TaskResponse {
	return TaskResponse{
		ID:            t.ID,
		Title:         t.Title,
		Description:   t.Description,
		Frequency:     string(t.Frequency),
		CreatedAt:     t.CreatedAt,
		CreatedBy:     t.CreatedBy,
		ScheduledDate: t.ScheduledDate,
		WeekDay:       t.WeekDay,
		MonthDay:      t.MonthDay,
		IsDoneToday:   t.IsDoneToday,
	}
}

func FromTaskList(tasks []*task.Task) []TaskResponse {
	result := make([]TaskResponse, len(tasks))
	for i, t := range tasks {
		result[i] = FromTask(t)
	}
	return result
}

type SubTaskResponse struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	IsCompleted bool       `json:"is_completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CompletedBy *string    `json:"completed_by,omitempty"`
}

type BulkTaskResponse struct {
	ID        uuid.UUID         `json:"id"`
	Title     string            `json:"title"`
	CreatedAt time.Time         `json:"created_at"`
	CreatedBy string            `json:"created_by"`
	SubTasks  []SubTaskResponse `json:"sub_tasks"`
	Done      int               `json:"done"`
	Total     int               `json:"total"`
}

func FromBulkTask(b *bulk.BulkTask) BulkTaskResponse {
	res := BulkTaskResponse{
		ID:        b.ID,
		Title:     b.Title,
		CreatedAt: b.CreatedAt,
		CreatedBy: b.CreatedBy,
		SubTasks:  make([]SubTaskResponse, len(b.SubTasks)),
		Total:     len(b.SubTasks),
	}
	for i, st := range b.SubTasks {
		res.SubTasks[i] = SubTaskResponse{
			ID:          st.ID,
			Title:       st.Title,
			IsCompleted: st.IsCompleted,
			CompletedAt: st.CompletedAt,
			CompletedBy: st.CompletedBy,
		}
		if st.IsCompleted {
			res.Done++
		}
	}
	return res
}

func FromBulkTaskList(projects []*bulk.BulkTask) []BulkTaskResponse {
	result := make([]BulkTaskResponse, len(projects))
	for i, p := range projects {
		result[i] = FromBulkTask(p)
	}
	return result
}

type ActivityResponse = activity.Entry

type InsightResponse struct {
	History     []performance.DailyPerformance `json:"history"`
	AverageRate int                            `json:"average_rate"`
	Insight     string                         `json:"insight"`
}
