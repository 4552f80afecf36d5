package postgres

import (
	"context"
	"fmt"
	"time"

	"taskFlow/internal/logger"
	"taskFlow/internal/models/activity"
	"taskFlow/internal/repository/rows"

	"github.com/jackc/pgx/v5"
)

func (s *Storage) AppendActivity(ctx context.Context, entry *activity.Entry) error {
	start := time.Now()
	defer warnIfSlow(start, time.Millisecond*50, "append_activity")

	r := rows.FromActivity(entry)
	query := `INSERT INTO activity_log (id, user_name, action, target_type, target_title, timestamp)
				VALUES ($1, $2, $3, $4, $5, $6)`

	if _, err := s.pool.Exec(ctx, query, r.ID, r.UserName, r.Action, r.TargetType, r.TargetTitle, r.Timestamp); err != nil {
		logger.Error("Repository: Не удалось записать действие", err)
		return fmt.Errorf("запись журнала: %w", err)
	}
	return nil
}

func (s *Storage) RecentActivities(ctx context.Context, limit int) ([]*activity.Entry, error) {
	start := time.Now()
	defer warnIfSlow(start, time.Millisecond*100, "recent_activities")

	query := `SELECT id, user_name, action, target_type, target_title, timestamp
				FROM activity_log
				ORDER BY timestamp DESC, seq DESC
				LIMIT $1`

	dbRows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		logger.Error("Repository: Не удалось получить журнал", err)
		return nil, fmt.Errorf("получение журнала: %w", err)
	}
	collected, err := pgx.CollectRows(dbRows, pgx.RowToStructByName[rows.ActivityRow])
	if err != nil {
		return nil, fmt.Errorf("сканирование журнала: %w", err)
	}

	res := make([]*activity.Entry, 0, len(collected))
	for _, r := range collected {
		res = append(res, r.ToActivity())
	}
	return res, nil
}
