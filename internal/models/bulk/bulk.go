package bulk

import (
	"time"

	"github.com/google/uuid"
)

// BulkTask - проект: именованный чек-лист. Подзадачи живут только внутри него.
type BulkTask struct {
	ID        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	CreatedAt time.Time  `json:"created_at"`
	CreatedBy string     `json:"created_by"`
	SubTasks  []*SubTask `json:"sub_tasks"`
}

type SubTask struct {
	ID          uuid.UUID  `json:"id"`
	BulkTaskID  uuid.UUID  `json:"bulk_task_id"`
	Title       string     `json:"title"`
	IsCompleted bool       `json:"is_completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CompletedBy *string    `json:"completed_by,omitempty"`
}

// Toggle переключает статус. CompletedAt и CompletedBy ставятся и снимаются вместе.
func (s *SubTask) Toggle(user string, now time.Time) {
	if s.IsCompleted {
		s.IsCompleted = false
		s.CompletedAt = nil
		s.CompletedBy = nil
		return
	}
	s.IsCompleted = true
	s.CompletedAt = &now
	s.CompletedBy = &user
}

func (b *BulkTask) SubTask(id uuid.UUID) (*SubTask, bool) {
	for _, st := range b.SubTasks {
		if st.ID == id {
			return st, true
		}
	}
	return nil, false
}
