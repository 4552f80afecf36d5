package service

import (
	"context"

	"taskFlow/internal/models/bulk"
	"taskFlow/internal/models/performance"
	"taskFlow/internal/models/task"
	"taskFlow/internal/schedule"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

const DefaultHistoryDays = 30

type PerformanceService struct {
	tasks    TaskRepository
	projects BulkTaskRepository
	calendar schedule.Calendar
	settings
}

func NewPerformanceService(tasks TaskRepository, projects BulkTaskRepository, calendar schedule.Calendar, opts ...Option) *PerformanceService {
	return &PerformanceService{
		tasks:    tasks,
		projects: projects,
		calendar: calendar,
		settings: newSettings(opts),
	}
}

type snapshot struct {
	tasks       []*task.Task
	completions []*task.CompletionRecord
	projects    []*bulk.BulkTask
}

// GetPerformanceHistory строит ряд по дням [today-(days-1), today], от старых к новым.
//
// Для дня d: видимые задачи считаются заново, пункты проектов учитываются только
// в день их выполнения и входят и в числитель, и в знаменатель.
func (s *PerformanceService) GetPerformanceHistory(ctx context.Context, days int) []performance.DailyPerformance {
	window := s.calendar.Window(s.now(), days)
	if len(window) == 0 {
		return []performance.DailyPerformance{}
	}

	snap, err := s.load(ctx)
	if err != nil {
		storeFailed("performance_history", err, zap.Int("days", days))
		return []performance.DailyPerformance{}
	}

	done := make(map[string]struct{}, len(snap.completions))
	for _, c := range snap.completions {
		done[completionKey(c.TaskID, c.DateKey)] = struct{}{}
	}

	bulkDone := make(map[string]int)
	for _, p := range snap.projects {
		for _, st := range p.SubTasks {
			if st.IsCompleted && st.CompletedAt != nil {
				bulkDone[s.calendar.DateKey(*st.CompletedAt)]++
			}
		}
	}

	history := make([]performance.DailyPerformance, 0, len(window))
	for _, day := range window {
		key := s.calendar.DateKey(day)

		recurringTotal, recurringDone := 0, 0
		for _, t := range snap.tasks {
			if !s.calendar.IsVisibleOnDate(t, day) {
				continue
			}
			recurringTotal++
			if _, ok := done[completionKey(t.ID, key)]; ok {
				recurringDone++
			}
		}

		total := recurringTotal + bulkDone[key]
		completed := recurringDone + bulkDone[key]

		history = append(history, performance.DailyPerformance{
			Date:           key,
			FormattedDate:  day.Format(schedule.DisplayLayout),
			CompletionRate: completionRate(completed, total),
			TotalTasks:     total,
			CompletedTasks: completed,
		})
	}
	return history
}

// load читает три коллекции параллельно; первая ошибка отменяет остальные.
func (s *PerformanceService) load(ctx context.Context) (*snapshot, error) {
	ctx, cancel := s.bounded(ctx)
	defer cancel()

	snap := &snapshot{}
	p := pool.New().WithContext(ctx).WithCancelOnError()

	p.Go(func(ctx context.Context) error {
		var err error
		snap.tasks, err = s.tasks.ListTasks(ctx)
		return err
	})
	p.Go(func(ctx context.Context) error {
		var err error
		snap.completions, err = s.tasks.ListCompletions(ctx)
		return err
	})
	p.Go(func(ctx context.Context) error {
		var err error
		snap.projects, err = s.projects.ListBulkTasks(ctx)
		return err
	})

	if err := p.Wait(); err != nil {
		return nil, err
	}
	return snap, nil
}

// completionRate - round(100*completed/total), 0 для пустого дня.
func completionRate(completed, total int) int {
	if total == 0 {
		return 0
	}
	return (200*completed + total) / (2 * total)
}

func completionKey(taskID uuid.UUID, dateKey string) string {
	return taskID.String() + "|" + dateKey
}
