// Package rows описывает схему хранения (snake_case колонки таблиц) и
// переводит её в доменные модели и обратно. Это единственное место, где
// встречаются имена колонок: и PostgreSQL, и локальное зеркало хранят
// записи именно в этом виде.
package rows

import (
	"time"

	"taskFlow/internal/models/activity"
	"taskFlow/internal/models/bulk"
	"taskFlow/internal/models/task"

	"github.com/google/uuid"
)

// имена коллекций совпадают с таблицами удалённой базы
const (
	TasksTable       = "tasks"
	CompletionsTable = "completions"
	BulkTasksTable   = "bulk_tasks"
	SubTasksTable    = "sub_tasks"
	ActivityTable    = "activity_log"
)

type TaskRow struct {
	ID            uuid.UUID `json:"id" db:"id"`
	Title         string    `json:"title" db:"title"`
	Description   string    `json:"description" db:"description"`
	Frequency     string    `json:"frequency" db:"frequency"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	CreatedBy     string    `json:"created_by" db:"created_by"`
	ScheduledDate *string   `json:"scheduled_date" db:"scheduled_date"`
	WeekDay       *int      `json:"week_day" db:"week_day"`
	MonthDay      *int      `json:"month_day" db:"month_day"`
}

type CompletionRow struct {
	ID          uuid.UUID `json:"id" db:"id"`
	TaskID      uuid.UUID `json:"task_id" db:"task_id"`
	DateKey     string    `json:"date_key" db:"date_key"`
	CompletedAt time.Time `json:"completed_at" db:"completed_at"`
	CompletedBy string    `json:"completed_by" db:"completed_by"`
}

type BulkTaskRow struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	CreatedBy string    `json:"created_by" db:"created_by"`
}

type SubTaskRow struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	BulkTaskID  uuid.UUID  `json:"bulk_task_id" db:"bulk_task_id"`
	Title       string     `json:"title" db:"title"`
	IsCompleted bool       `json:"is_completed" db:"is_completed"`
	CompletedAt *time.Time `json:"completed_at" db:"completed_at"`
	CompletedBy *string    `json:"completed_by" db:"completed_by"`
	Position    int        `json:"position" db:"position"`
}

type ActivityRow struct {
	ID          uuid.UUID `json:"id" db:"id"`
	UserName    string    `json:"user_name" db:"user_name"`
	Action      string    `json:"action" db:"action"`
	TargetType  string    `json:"target_type" db:"target_type"`
	TargetTitle string    `json:"target_title" db:"target_title"`
	Timestamp   time.Time `json:"timestamp" db:"timestamp"`
}

func FromTask(t *task.Task) TaskRow {
	c := t.Clone()
	return TaskRow{
		ID:            c.ID,
		Title:         c.Title,
		Description:   c.Description,
		Frequency:     string(c.Frequency),
		CreatedAt:     c.CreatedAt,
		CreatedBy:     c.CreatedBy,
		ScheduledDate: c.ScheduledDate,
		WeekDay:       c.WeekDay,
		MonthDay:      c.MonthDay,
	}
}

func (r TaskRow) ToTask() *task.Task {
	t := &task.Task{
		ID:            r.ID,
		Title:         r.Title,
		Description:   r.Description,
		Frequency:     task.Frequency(r.Frequency),
		CreatedAt:     r.CreatedAt,
		CreatedBy:     r.CreatedBy,
		ScheduledDate: r.ScheduledDate,
		WeekDay:       r.WeekDay,
		MonthDay:      r.MonthDay,
	}
	return t.Clone()
}

func FromCompletion(c *task.CompletionRecord) CompletionRow {
	return CompletionRow{
		ID:          c.ID,
		TaskID:      c.TaskID,
		DateKey:     c.DateKey,
		CompletedAt: c.CompletedAt,
		CompletedBy: c.CompletedBy,
	}
}

func (r CompletionRow) ToCompletion() *task.CompletionRecord {
	return &task.CompletionRecord{
		ID:          r.ID,
		TaskID:      r.TaskID,
		DateKey:     r.DateKey,
		CompletedAt: r.CompletedAt,
		CompletedBy: r.CompletedBy,
	}
}

func FromBulkTask(b *bulk.BulkTask) BulkTaskRow {
	return BulkTaskRow{
		ID:        b.ID,
		Title:     b.Title,
		CreatedAt: b.CreatedAt,
		CreatedBy: b.CreatedBy,
	}
}

func (r BulkTaskRow) ToBulkTask() *bulk.BulkTask {
	return &bulk.BulkTask{
		ID:        r.ID,
		Title:     r.Title,
		CreatedAt: r.CreatedAt,
		CreatedBy: r.CreatedBy,
		SubTasks:  []*bulk.SubTask{},
	}
}

func FromSubTask(s *bulk.SubTask, position int) SubTaskRow {
	row := SubTaskRow{
		ID:          s.ID,
		BulkTaskID:  s.BulkTaskID,
		Title:       s.Title,
		IsCompleted: s.IsCompleted,
		Position:    position,
	}
	if s.CompletedAt != nil {
		v := *s.CompletedAt
		row.CompletedAt = &v
	}
	if s.CompletedBy != nil {
		v := *s.CompletedBy
		row.CompletedBy = &v
	}
	return row
}

func (r SubTaskRow) ToSubTask() *bulk.SubTask {
	st := &bulk.SubTask{
		ID:          r.ID,
		BulkTaskID:  r.BulkTaskID,
		Title:       r.Title,
		IsCompleted: r.IsCompleted,
	}
	// строки с нарушенным инвариантом читаем как невыполненные
	if r.IsCompleted && r.CompletedAt != nil {
		at := *r.CompletedAt
		st.CompletedAt = &at
		by := ""
		if r.CompletedBy != nil {
			by = *r.CompletedBy
		}
		st.CompletedBy = &by
	} else {
		st.IsCompleted = false
	}
	return st
}

// JoinBulkTasks раскладывает подзадачи по родителям, порядок подзадач - по Position.
func JoinBulkTasks(parents []BulkTaskRow, children []SubTaskRow) []*bulk.BulkTask {
	byID := make(map[uuid.UUID]*bulk.BulkTask, len(parents))
	res := make([]*bulk.BulkTask, 0, len(parents))
	for _, p := range parents {
		bt := p.ToBulkTask()
		byID[p.ID] = bt
		res = append(res, bt)
	}

	sorted := make([]SubTaskRow, len(children))
	copy(sorted, children)
	sortSubTasks(sorted)

	for _, c := range sorted {
		if parent, ok := byID[c.BulkTaskID]; ok {
			parent.SubTasks = append(parent.SubTasks, c.ToSubTask())
		}
	}
	return res
}

func FromActivity(e *activity.Entry) ActivityRow {
	return ActivityRow{
		ID:          e.ID,
		UserName:    e.User,
		Action:      string(e.Action),
		TargetType:  string(e.TargetType),
		TargetTitle: e.TargetTitle,
		Timestamp:   e.Timestamp,
	}
}

func (r ActivityRow) ToActivity() *activity.Entry {
	return &activity.Entry{
		ID:          r.ID,
		User:        r.UserName,
		Action:      activity.Action(r.Action),
		TargetType:  activity.TargetType(r.TargetType),
		TargetTitle: r.TargetTitle,
		Timestamp:   r.Timestamp,
	}
}
