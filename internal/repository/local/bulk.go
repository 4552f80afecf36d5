package local

import (
	"context"

	"taskFlow/internal/models/bulk"
	repo "taskFlow/internal/repository"
	"taskFlow/internal/repository/rows"

	"github.com/google/uuid"
)

func (s *Store) ListBulkTasks(ctx context.Context) ([]*bulk.BulkTask, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	parents, err := load[rows.BulkTaskRow](ctx, s.mirror, rows.BulkTasksTable)
	if err != nil {
		return nil, err
	}
	children, err := load[rows.SubTaskRow](ctx, s.mirror, rows.SubTasksTable)
	if err != nil {
		return nil, err
	}
	return rows.JoinBulkTasks(parents, children), nil
}

func (s *Store) GetBulkTask(ctx context.Context, id uuid.UUID) (*bulk.BulkTask, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	parents, err := load[rows.BulkTaskRow](ctx, s.mirror, rows.BulkTasksTable)
	if err != nil {
		return nil, err
	}
	var parent []rows.BulkTaskRow
	for _, p := range parents {
		if p.ID == id {
			parent = append(parent, p)
			break
		}
	}
	if len(parent) == 0 {
		return nil, repo.ErrNotFound
	}

	children, err := load[rows.SubTaskRow](ctx, s.mirror, rows.SubTasksTable)
	if err != nil {
		return nil, err
	}
	return rows.JoinBulkTasks(parent, children)[0], nil
}

// CreateBulkTask записывает проект и все его подзадачи одной пачкой.
func (s *Store) CreateBulkTask(ctx context.Context, bt *bulk.BulkTask) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	parents, err := load[rows.BulkTaskRow](ctx, s.mirror, rows.BulkTasksTable)
	if err != nil {
		return err
	}
	children, err := load[rows.SubTaskRow](ctx, s.mirror, rows.SubTasksTable)
	if err != nil {
		return err
	}
	for _, p := range parents {
		if p.ID == bt.ID {
			return repo.ErrDuplicate
		}
	}

	parents = append(parents, rows.FromBulkTask(bt))
	for i, st := range bt.SubTasks {
		children = append(children, rows.FromSubTask(st, i))
	}

	b := batch{}
	if err := b.put(rows.BulkTasksTable, parents); err != nil {
		return err
	}
	if err := b.put(rows.SubTasksTable, children); err != nil {
		return err
	}
	return s.commit(ctx, b)
}

func (s *Store) UpdateSubTask(ctx context.Context, st *bulk.SubTask) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	children, err := load[rows.SubTaskRow](ctx, s.mirror, rows.SubTasksTable)
	if err != nil {
		return err
	}
	found := false
	for i, c := range children {
		if c.ID != st.ID || c.BulkTaskID != st.BulkTaskID {
			continue
		}
		children[i] = rows.FromSubTask(st, c.Position)
		found = true
		break
	}
	if !found {
		return repo.ErrNotFound
	}

	b := batch{}
	if err := b.put(rows.SubTasksTable, children); err != nil {
		return err
	}
	return s.commit(ctx, b)
}

// DeleteBulkTask удаляет проект и все его подзадачи.
func (s *Store) DeleteBulkTask(ctx context.Context, id uuid.UUID) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	parents, err := load[rows.BulkTaskRow](ctx, s.mirror, rows.BulkTasksTable)
	if err != nil {
		return err
	}
	children, err := load[rows.SubTaskRow](ctx, s.mirror, rows.SubTasksTable)
	if err != nil {
		return err
	}

	keptParents := parents[:0]
	found := false
	for _, p := range parents {
		if p.ID == id {
			found = true
			continue
		}
		keptParents = append(keptParents, p)
	}
	if !found {
		return repo.ErrNotFound
	}

	keptChildren := children[:0]
	for _, c := range children {
		if c.BulkTaskID != id {
			keptChildren = append(keptChildren, c)
		}
	}

	b := batch{}
	if err := b.put(rows.BulkTasksTable, keptParents); err != nil {
		return err
	}
	if err := b.put(rows.SubTasksTable, keptChildren); err != nil {
		return err
	}
	return s.commit(ctx, b)
}
