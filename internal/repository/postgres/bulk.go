package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskFlow/internal/logger"
	"taskFlow/internal/models/bulk"
	repo "taskFlow/internal/repository"
	"taskFlow/internal/repository/rows"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const bulkColumns = `id, title, created_at, created_by`

const subTaskColumns = `id, bulk_task_id, title, is_completed, completed_at, completed_by, position`

func (s *Storage) ListBulkTasks(ctx context.Context) ([]*bulk.BulkTask, error) {
	start := time.Now()
	defer warnIfSlow(start, time.Millisecond*100, "list_bulk_tasks")

	parentRows, err := s.pool.Query(ctx, `SELECT `+bulkColumns+` FROM bulk_tasks ORDER BY created_at, id`)
	if err != nil {
		logger.Error("Repository: Не удалось получить проекты", err)
		return nil, fmt.Errorf("получение проектов: %w", err)
	}
	parents, err := pgx.CollectRows(parentRows, pgx.RowToStructByName[rows.BulkTaskRow])
	if err != nil {
		return nil, fmt.Errorf("сканирование проектов: %w", err)
	}

	childRows, err := s.pool.Query(ctx, `SELECT `+subTaskColumns+` FROM sub_tasks`)
	if err != nil {
		logger.Error("Repository: Не удалось получить подзадачи", err)
		return nil, fmt.Errorf("получение подзадач: %w", err)
	}
	children, err := pgx.CollectRows(childRows, pgx.RowToStructByName[rows.SubTaskRow])
	if err != nil {
		return nil, fmt.Errorf("сканирование подзадач: %w", err)
	}

	return rows.JoinBulkTasks(parents, children), nil
}

func (s *Storage) GetBulkTask(ctx context.Context, id uuid.UUID) (*bulk.BulkTask, error) {
	parentRows, err := s.pool.Query(ctx, `SELECT `+bulkColumns+` FROM bulk_tasks WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("получение проекта: %w", err)
	}
	parent, err := pgx.CollectExactlyOneRow(parentRows, pgx.RowToStructByName[rows.BulkTaskRow])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		return nil, fmt.Errorf("получение проекта: %w", err)
	}

	childRows, err := s.pool.Query(ctx, `SELECT `+subTaskColumns+` FROM sub_tasks WHERE bulk_task_id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("получение подзадач: %w", err)
	}
	children, err := pgx.CollectRows(childRows, pgx.RowToStructByName[rows.SubTaskRow])
	if err != nil {
		return nil, fmt.Errorf("сканирование подзадач: %w", err)
	}

	return rows.JoinBulkTasks([]rows.BulkTaskRow{parent}, children)[0], nil
}

// CreateBulkTask вставляет проект и подзадачи в одной транзакции.
func (s *Storage) CreateBulkTask(ctx context.Context, bt *bulk.BulkTask) error {
	start := time.Now()
	defer warnIfSlow(start, time.Millisecond*100, "create_bulk_task")

	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		p := rows.FromBulkTask(bt)
		tag, err := tx.Exec(ctx,
			`INSERT INTO bulk_tasks (`+bulkColumns+`) VALUES ($1, $2, $3, $4) ON CONFLICT (id) DO NOTHING`,
			p.ID, p.Title, p.CreatedAt, p.CreatedBy)
		if err != nil {
			return fmt.Errorf("добавление проекта: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return repo.ErrDuplicate
		}

		batch := &pgx.Batch{}
		for i, st := range bt.SubTasks {
			c := rows.FromSubTask(st, i)
			batch.Queue(`INSERT INTO sub_tasks (`+subTaskColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				c.ID, c.BulkTaskID, c.Title, c.IsCompleted, c.CompletedAt, c.CompletedBy, c.Position)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("добавление подзадач: %w", err)
		}
		return nil
	})
	if err != nil && !errors.Is(err, repo.ErrDuplicate) {
		logger.Error("Repository: Не удалось создать проект", err, zap.String("bulk_task_id", bt.ID.String()))
	}
	return err
}

func (s *Storage) UpdateSubTask(ctx context.Context, st *bulk.SubTask) error {
	start := time.Now()
	defer warnIfSlow(start, time.Millisecond*100, "update_sub_task")

	c := rows.FromSubTask(st, 0)
	query := `UPDATE sub_tasks
			SET is_completed = $1,
				completed_at = $2,
				completed_by = $3
			WHERE id = $4 AND bulk_task_id = $5`

	tag, err := s.pool.Exec(ctx, query, c.IsCompleted, c.CompletedAt, c.CompletedBy, c.ID, c.BulkTaskID)
	if err != nil {
		logger.Error("Repository: Не удалось обновить подзадачу", err)
		return fmt.Errorf("обновление подзадачи: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// DeleteBulkTask удаляет подзадачи явно, не полагаясь на ON DELETE CASCADE.
func (s *Storage) DeleteBulkTask(ctx context.Context, id uuid.UUID) error {
	start := time.Now()
	defer warnIfSlow(start, time.Millisecond*100, "delete_bulk_task")

	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM sub_tasks WHERE bulk_task_id = $1`, id); err != nil {
			return fmt.Errorf("удаление подзадач: %w", err)
		}
		tag, err := tx.Exec(ctx, `DELETE FROM bulk_tasks WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("удаление проекта: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return repo.ErrNotFound
		}
		return nil
	})
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		logger.Error("Repository: Не удалось удалить проект", err, zap.String("bulk_task_id", id.String()))
	}
	return err
}
