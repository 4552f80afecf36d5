package service

import (
	"context"
	"errors"
	"strings"

	"taskFlow/internal/identity"
	"taskFlow/internal/logger"
	"taskFlow/internal/metrics"
	"taskFlow/internal/models/activity"
	"taskFlow/internal/models/bulk"
	rep "taskFlow/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type BulkService struct {
	repo     BulkTaskRepository
	activity ActivityRecorder
	locks    *KeyLock
	settings
}

func NewBulkService(repo BulkTaskRepository, recorder ActivityRecorder, opts ...Option) *BulkService {
	return &BulkService{
		repo:     repo,
		activity: recorder,
		locks:    NewKeyLock(),
		settings: newSettings(opts),
	}
}

func (s *BulkService) GetBulkTasks(ctx context.Context) []*bulk.BulkTask {
	ctx, cancel := s.bounded(ctx)
	defer cancel()

	projects, err := s.repo.ListBulkTasks(ctx)
	if err != nil {
		storeFailed("list_bulk_tasks", err)
		return []*bulk.BulkTask{}
	}
	return projects
}

// CleanTitles отбрасывает пустые пункты. Вызывается до AddBulkTask при валидации.
func CleanTitles(titles []string) []string {
	res := make([]string, 0, len(titles))
	for _, t := range titles {
		if t = strings.TrimSpace(t); t != "" {
			res = append(res, t)
		}
	}
	return res
}

// AddBulkTask создаёт проект с пунктами. Вход уже проверен: заголовок и хотя бы один пункт.
// В журнал пишется одна запись на проект.
func (s *BulkService) AddBulkTask(ctx context.Context, title string, subTitles []string) *bulk.BulkTask {
	project := &bulk.BulkTask{
		ID:        uuid.New(),
		Title:     title,
		CreatedAt: s.now().UTC(),
		CreatedBy: identity.UserOr(ctx, identity.DefaultUser),
		SubTasks:  make([]*bulk.SubTask, 0, len(subTitles)),
	}
	for _, st := range CleanTitles(subTitles) {
		project.SubTasks = append(project.SubTasks, &bulk.SubTask{
			ID:         uuid.New(),
			BulkTaskID: project.ID,
			Title:      st,
		})
	}

	opCtx, cancel := s.bounded(ctx)
	defer cancel()

	if err := s.repo.CreateBulkTask(opCtx, project); err != nil {
		storeFailed("create_bulk_task", err, zap.String("bulk_task_id", project.ID.String()))
		return nil
	}

	logger.Info("Service: Проект создан", zap.String("bulk_task_id", project.ID.String()), zap.Int("items", len(project.SubTasks)))
	s.activity.Log(ctx, activity.ActionCreated, activity.TargetProject, title)
	return project
}

// ToggleBulkSubTask переключает пункт проекта и возвращает проект целиком.
func (s *BulkService) ToggleBulkSubTask(ctx context.Context, bulkID, subID uuid.UUID) (*bulk.BulkTask, Outcome) {
	unlock := s.locks.Lock(subID.String())
	defer unlock()

	opCtx, cancel := s.bounded(ctx)
	defer cancel()

	project, err := s.repo.GetBulkTask(opCtx, bulkID)
	if err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			logger.Info("Service: Проект не найден", zap.String("target_id", bulkID.String()))
			return nil, Missing
		}
		storeFailed("get_bulk_task", err, zap.String("bulk_task_id", bulkID.String()))
		return nil, Failed
	}

	item, ok := project.SubTask(subID)
	if !ok {
		logger.Info("Service: Пункт проекта не найден", zap.String("bulk_task_id", bulkID.String()), zap.String("target_id", subID.String()))
		return nil, Missing
	}

	item.Toggle(identity.UserOr(ctx, identity.DefaultUser), s.now().UTC())
	if err := s.repo.UpdateSubTask(opCtx, item); err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			return nil, Missing
		}
		storeFailed("update_sub_task", err, zap.String("sub_task_id", subID.String()))
		return nil, Failed
	}

	action, result := activity.ActionUndo, "undo"
	if item.IsCompleted {
		action, result = activity.ActionCompleted, "completed"
	}
	metrics.Toggles.WithLabelValues("subtask", result).Inc()
	s.activity.Log(ctx, action, activity.TargetProject, project.Title+": "+item.Title)
	return project, Applied
}

// DeleteBulkTask удаляет проект с пунктами. Если проекта уже нет - no-op без записи в журнал.
func (s *BulkService) DeleteBulkTask(ctx context.Context, id uuid.UUID) Outcome {
	opCtx, cancel := s.bounded(ctx)
	defer cancel()

	project, err := s.repo.GetBulkTask(opCtx, id)
	if err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			logger.Info("Service: Проект для удаления не найден", zap.String("target_id", id.String()))
			return Missing
		}
		storeFailed("get_bulk_task", err, zap.String("bulk_task_id", id.String()))
		return Failed
	}

	if err := s.repo.DeleteBulkTask(opCtx, id); err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			return Missing
		}
		storeFailed("delete_bulk_task", err, zap.String("bulk_task_id", id.String()))
		return Failed
	}

	s.activity.Log(ctx, activity.ActionDeleted, activity.TargetProject, project.Title)
	return Applied
}
