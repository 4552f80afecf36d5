package task

import (
	"time"

	"github.com/google/uuid"
)

type Task struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Frequency   Frequency `json:"frequency"`
	CreatedAt   time.Time `json:"created_at"`
	CreatedBy   string    `json:"created_by"`

	// заполнено ровно одно поле, в зависимости от Frequency
	ScheduledDate *string `json:"scheduled_date,omitempty"`
	WeekDay       *int    `json:"week_day,omitempty"`
	MonthDay      *int    `json:"month_day,omitempty"`

	// вычисляется по CompletionRecord за сегодня, не хранится
	IsDoneToday bool `json:"is_done_today"`
}

type Frequency string

const FrequencyDaily Frequency = "Daily"
const FrequencyWeekly Frequency = "Weekly"
const FrequencyMonthly Frequency = "Monthly"
const FrequencyOnce Frequency = "Once"

func (f Frequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyOnce:
		return true
	}
	return false
}

// CompletionRecord - отметка о выполнении задачи в конкретный день.
// На пару (TaskID, DateKey) допускается не больше одной записи.
type CompletionRecord struct {
	ID          uuid.UUID `json:"id"`
	TaskID      uuid.UUID `json:"task_id"`
	DateKey     string    `json:"date_key"`
	CompletedAt time.Time `json:"completed_at"`
	CompletedBy string    `json:"completed_by"`
}

// Normalize обнуляет поля расписания, которые не относятся к Frequency.
func (t *Task) Normalize() {
	switch t.Frequency {
	case FrequencyDaily:
		t.ScheduledDate, t.WeekDay, t.MonthDay = nil, nil, nil
	case FrequencyWeekly:
		t.ScheduledDate, t.MonthDay = nil, nil
	case FrequencyMonthly:
		t.ScheduledDate, t.WeekDay = nil, nil
	case FrequencyOnce:
		t.WeekDay, t.MonthDay = nil, nil
	}
}

// Clone возвращает копию без общих указателей.
func (t *Task) Clone() *Task {
	c := *t
	if t.ScheduledDate != nil {
		v := *t.ScheduledDate
		c.ScheduledDate = &v
	}
	if t.WeekDay != nil {
		v := *t.WeekDay
		c.WeekDay = &v
	}
	if t.MonthDay != nil {
		v := *t.MonthDay
		c.MonthDay = &v
	}
	return &c
}
