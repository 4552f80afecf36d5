package local

import (
	"context"

	"taskFlow/internal/models/task"
	repo "taskFlow/internal/repository"
	"taskFlow/internal/repository/rows"

	"github.com/google/uuid"
)

func (s *Store) ListTasks(ctx context.Context) ([]*task.Task, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	stored, err := load[rows.TaskRow](ctx, s.mirror, rows.TasksTable)
	if err != nil {
		return nil, err
	}
	res := make([]*task.Task, 0, len(stored))
	for _, r := range stored {
		res = append(res, r.ToTask())
	}
	return res, nil
}

func (s *Store) GetTask(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	stored, err := load[rows.TaskRow](ctx, s.mirror, rows.TasksTable)
	if err != nil {
		return nil, err
	}
	for _, r := range stored {
		if r.ID == id {
			return r.ToTask(), nil
		}
	}
	return nil, repo.ErrNotFound
}

func (s *Store) CreateTask(ctx context.Context, taskToCreate *task.Task) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	stored, err := load[rows.TaskRow](ctx, s.mirror, rows.TasksTable)
	if err != nil {
		return err
	}
	for _, r := range stored {
		if r.ID == taskToCreate.ID {
			return repo.ErrDuplicate
		}
	}
	stored = append(stored, rows.FromTask(taskToCreate))

	b := batch{}
	if err := b.put(rows.TasksTable, stored); err != nil {
		return err
	}
	return s.commit(ctx, b)
}

// UpdateTask перезаписывает редактируемые поля; создатель и время создания не меняются.
func (s *Store) UpdateTask(ctx context.Context, taskToUpdate *task.Task) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	stored, err := load[rows.TaskRow](ctx, s.mirror, rows.TasksTable)
	if err != nil {
		return err
	}
	found := false
	for i, r := range stored {
		if r.ID != taskToUpdate.ID {
			continue
		}
		updated := rows.FromTask(taskToUpdate)
		updated.CreatedAt = r.CreatedAt
		updated.CreatedBy = r.CreatedBy
		stored[i] = updated
		found = true
		break
	}
	if !found {
		return repo.ErrNotFound
	}

	b := batch{}
	if err := b.put(rows.TasksTable, stored); err != nil {
		return err
	}
	return s.commit(ctx, b)
}

// DeleteTask удаляет задачу вместе со всеми её отметками о выполнении.
func (s *Store) DeleteTask(ctx context.Context, id uuid.UUID) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	tasks, err := load[rows.TaskRow](ctx, s.mirror, rows.TasksTable)
	if err != nil {
		return err
	}
	completions, err := load[rows.CompletionRow](ctx, s.mirror, rows.CompletionsTable)
	if err != nil {
		return err
	}

	keptTasks := tasks[:0]
	found := false
	for _, r := range tasks {
		if r.ID == id {
			found = true
			continue
		}
		keptTasks = append(keptTasks, r)
	}
	if !found {
		return repo.ErrNotFound
	}

	keptCompletions := completions[:0]
	for _, c := range completions {
		if c.TaskID != id {
			keptCompletions = append(keptCompletions, c)
		}
	}

	b := batch{}
	if err := b.put(rows.TasksTable, keptTasks); err != nil {
		return err
	}
	if err := b.put(rows.CompletionsTable, keptCompletions); err != nil {
		return err
	}
	return s.commit(ctx, b)
}

func (s *Store) ListCompletions(ctx context.Context) ([]*task.CompletionRecord, error) {
	return s.filterCompletions(ctx, func(rows.CompletionRow) bool { return true })
}

func (s *Store) ListCompletionsOn(ctx context.Context, dateKey string) ([]*task.CompletionRecord, error) {
	return s.filterCompletions(ctx, func(c rows.CompletionRow) bool { return c.DateKey == dateKey })
}

func (s *Store) filterCompletions(ctx context.Context, keep func(rows.CompletionRow) bool) ([]*task.CompletionRecord, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	stored, err := load[rows.CompletionRow](ctx, s.mirror, rows.CompletionsTable)
	if err != nil {
		return nil, err
	}
	res := []*task.CompletionRecord{}
	for _, c := range stored {
		if keep(c) {
			res = append(res, c.ToCompletion())
		}
	}
	return res, nil
}

func (s *Store) FindCompletion(ctx context.Context, taskID uuid.UUID, dateKey string) (*task.CompletionRecord, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	stored, err := load[rows.CompletionRow](ctx, s.mirror, rows.CompletionsTable)
	if err != nil {
		return nil, err
	}
	for _, c := range stored {
		if c.TaskID == taskID && c.DateKey == dateKey {
			return c.ToCompletion(), nil
		}
	}
	return nil, repo.ErrNotFound
}

// CreateCompletion соблюдает уникальность (task_id, date_key) так же, как индекс в PostgreSQL.
func (s *Store) CreateCompletion(ctx context.Context, record *task.CompletionRecord) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	stored, err := load[rows.CompletionRow](ctx, s.mirror, rows.CompletionsTable)
	if err != nil {
		return err
	}
	for _, c := range stored {
		if c.TaskID == record.TaskID && c.DateKey == record.DateKey {
			return repo.ErrDuplicate
		}
	}
	stored = append(stored, rows.FromCompletion(record))

	b := batch{}
	if err := b.put(rows.CompletionsTable, stored); err != nil {
		return err
	}
	return s.commit(ctx, b)
}

func (s *Store) DeleteCompletion(ctx context.Context, id uuid.UUID) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	stored, err := load[rows.CompletionRow](ctx, s.mirror, rows.CompletionsTable)
	if err != nil {
		return err
	}
	kept := stored[:0]
	found := false
	for _, c := range stored {
		if c.ID == id {
			found = true
			continue
		}
		kept = append(kept, c)
	}
	if !found {
		return repo.ErrNotFound
	}

	b := batch{}
	if err := b.put(rows.CompletionsTable, kept); err != nil {
		return err
	}
	return s.commit(ctx, b)
}
