package local

import (
	"context"
	"slices"

	"taskFlow/internal/models/activity"
	"taskFlow/internal/repository/rows"
)

func (s *Store) AppendActivity(ctx context.Context, entry *activity.Entry) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	stored, err := load[rows.ActivityRow](ctx, s.mirror, rows.ActivityTable)
	if err != nil {
		return err
	}
	stored = append(stored, rows.FromActivity(entry))
	stored = s.trimActivity(stored)

	b := batch{}
	if err := b.put(rows.ActivityTable, stored); err != nil {
		return err
	}
	return s.commit(ctx, b)
}

func (s *Store) RecentActivities(ctx context.Context, limit int) ([]*activity.Entry, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	stored, err := load[rows.ActivityRow](ctx, s.mirror, rows.ActivityTable)
	if err != nil {
		return nil, err
	}
	rows.SortActivityNewestFirst(stored)
	if limit > 0 && len(stored) > limit {
		stored = stored[:limit]
	}

	res := make([]*activity.Entry, 0, len(stored))
	for _, r := range stored {
		res = append(res, r.ToActivity())
	}
	return res, nil
}

// trimActivity оставляет activityRetention самых новых записей в порядке добавления,
// иначе коллекция растёт без предела и каждая запись перекодирует её целиком.
func (s *Store) trimActivity(stored []rows.ActivityRow) []rows.ActivityRow {
	if len(stored) <= s.activityRetention {
		return stored
	}
	rows.SortActivityNewestFirst(stored)
	stored = stored[:s.activityRetention]
	slices.Reverse(stored)
	return stored
}
