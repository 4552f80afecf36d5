package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskFlow/internal/logger"
	"taskFlow/internal/models/task"
	repo "taskFlow/internal/repository"
	"taskFlow/internal/repository/rows"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const taskColumns = `id, title, description, frequency, created_at, created_by, scheduled_date, week_day, month_day`

const completionColumns = `id, task_id, date_key, completed_at, completed_by`

func (s *Storage) ListTasks(ctx context.Context) ([]*task.Task, error) {
	start := time.Now()
	defer warnIfSlow(start, time.Millisecond*100, "list_tasks")

	query := `SELECT ` + taskColumns + ` FROM tasks ORDER BY created_at, id`

	dbRows, err := s.pool.Query(ctx, query)
	if err != nil {
		logger.Error("Repository: Не удалось получить задачи", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("получение задач: %w", err)
	}
	collected, err := pgx.CollectRows(dbRows, pgx.RowToStructByName[rows.TaskRow])
	if err != nil {
		logger.Error("Repository: Ошибка сканирования задач", err)
		return nil, fmt.Errorf("сканирование задач: %w", err)
	}

	tasks := make([]*task.Task, 0, len(collected))
	for _, r := range collected {
		tasks = append(tasks, r.ToTask())
	}
	return tasks, nil
}

func (s *Storage) GetTask(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	start := time.Now()
	defer warnIfSlow(start, time.Millisecond*100, "get_task")

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`

	dbRows, err := s.pool.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("получение задачи: %w", err)
	}
	row, err := pgx.CollectExactlyOneRow(dbRows, pgx.RowToStructByName[rows.TaskRow])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось получить задачу", err, zap.String("task_id", id.String()))
		return nil, fmt.Errorf("получение задачи: %w", err)
	}
	return row.ToTask(), nil
}

func (s *Storage) CreateTask(ctx context.Context, taskToCreate *task.Task) error {
	start := time.Now()
	defer warnIfSlow(start, time.Millisecond*50, "create_task")

	r := rows.FromTask(taskToCreate)
	query := `INSERT INTO tasks (` + taskColumns + `)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
				ON CONFLICT (id) DO NOTHING`

	tag, err := s.pool.Exec(ctx, query,
		r.ID, r.Title, r.Description, r.Frequency, r.CreatedAt, r.CreatedBy,
		r.ScheduledDate, r.WeekDay, r.MonthDay,
	)
	if err != nil {
		logger.Error("Repository: Не удалось добавить задачу", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("добавление задачи: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrDuplicate
	}
	return nil
}

// UpdateTask - полная перезапись редактируемых полей, без проверки версий.
func (s *Storage) UpdateTask(ctx context.Context, taskToUpdate *task.Task) error {
	start := time.Now()
	defer warnIfSlow(start, time.Millisecond*100, "update_task")

	r := rows.FromTask(taskToUpdate)
	query := `UPDATE tasks
			SET title = $1,
				description = $2,
				frequency = $3,
				scheduled_date = $4,
				week_day = $5,
				month_day = $6
			WHERE id = $7`

	tag, err := s.pool.Exec(ctx, query,
		r.Title, r.Description, r.Frequency, r.ScheduledDate, r.WeekDay, r.MonthDay, r.ID,
	)
	if err != nil {
		logger.Error("Repository: Не удалось обновить задачу", err)
		return fmt.Errorf("обновление задачи: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// DeleteTask удаляет отметки и саму задачу в одной транзакции: каскада в схеме нет.
func (s *Storage) DeleteTask(ctx context.Context, id uuid.UUID) error {
	start := time.Now()
	defer warnIfSlow(start, time.Millisecond*100, "delete_task")

	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM completions WHERE task_id = $1`, id); err != nil {
			return fmt.Errorf("удаление отметок: %w", err)
		}
		tag, err := tx.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("удаление задачи: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return repo.ErrNotFound
		}
		return nil
	})
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		logger.Error("Repository: Не удалось удалить задачу", err, zap.String("task_id", id.String()))
	}
	return err
}

func (s *Storage) ListCompletions(ctx context.Context) ([]*task.CompletionRecord, error) {
	return s.queryCompletions(ctx, `SELECT `+completionColumns+` FROM completions`)
}

func (s *Storage) ListCompletionsOn(ctx context.Context, dateKey string) ([]*task.CompletionRecord, error) {
	return s.queryCompletions(ctx, `SELECT `+completionColumns+` FROM completions WHERE date_key = $1`, dateKey)
}

func (s *Storage) queryCompletions(ctx context.Context, query string, args ...any) ([]*task.CompletionRecord, error) {
	start := time.Now()
	defer warnIfSlow(start, time.Millisecond*100, "list_completions")

	dbRows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		logger.Error("Repository: Не удалось получить отметки", err)
		return nil, fmt.Errorf("получение отметок: %w", err)
	}
	collected, err := pgx.CollectRows(dbRows, pgx.RowToStructByName[rows.CompletionRow])
	if err != nil {
		return nil, fmt.Errorf("сканирование отметок: %w", err)
	}

	res := make([]*task.CompletionRecord, 0, len(collected))
	for _, c := range collected {
		res = append(res, c.ToCompletion())
	}
	return res, nil
}

func (s *Storage) FindCompletion(ctx context.Context, taskID uuid.UUID, dateKey string) (*task.CompletionRecord, error) {
	query := `SELECT ` + completionColumns + ` FROM completions WHERE task_id = $1 AND date_key = $2`

	dbRows, err := s.pool.Query(ctx, query, taskID, dateKey)
	if err != nil {
		return nil, fmt.Errorf("поиск отметки: %w", err)
	}
	row, err := pgx.CollectExactlyOneRow(dbRows, pgx.RowToStructByName[rows.CompletionRow])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		return nil, fmt.Errorf("поиск отметки: %w", err)
	}
	return row.ToCompletion(), nil
}

// CreateCompletion опирается на UNIQUE (task_id, date_key): повтор возвращает ErrDuplicate.
func (s *Storage) CreateCompletion(ctx context.Context, record *task.CompletionRecord) error {
	start := time.Now()
	defer warnIfSlow(start, time.Millisecond*50, "create_completion")

	r := rows.FromCompletion(record)
	query := `INSERT INTO completions (` + completionColumns + `)
				VALUES ($1, $2, $3, $4, $5)
				ON CONFLICT (task_id, date_key) DO NOTHING`

	tag, err := s.pool.Exec(ctx, query, r.ID, r.TaskID, r.DateKey, r.CompletedAt, r.CompletedBy)
	if err != nil {
		logger.Error("Repository: Не удалось добавить отметку", err)
		return fmt.Errorf("добавление отметки: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrDuplicate
	}
	return nil
}

func (s *Storage) DeleteCompletion(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM completions WHERE id = $1`, id)
	if err != nil {
		logger.Error("Repository: Не удалось удалить отметку", err)
		return fmt.Errorf("удаление отметки: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}
