package service

import (
	"context"
	"errors"

	"taskFlow/internal/identity"
	"taskFlow/internal/logger"
	"taskFlow/internal/metrics"
	"taskFlow/internal/models/activity"
	"taskFlow/internal/models/task"
	rep "taskFlow/internal/repository"
	"taskFlow/internal/schedule"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// здесь граница ошибок: всё, что ниже, может падать, наружу уходят пустые значения

type TaskService struct {
	repo     TaskRepository
	activity ActivityRecorder
	calendar schedule.Calendar
	locks    *KeyLock
	settings
}

func NewTaskService(repo TaskRepository, recorder ActivityRecorder, calendar schedule.Calendar, opts ...Option) *TaskService {
	return &TaskService{
		repo:     repo,
		activity: recorder,
		calendar: calendar,
		locks:    NewKeyLock(),
		settings: newSettings(opts),
	}
}

// GetTasks возвращает все задачи с IsDoneToday. При ошибке хранилища - пустой список.
func (s *TaskService) GetTasks(ctx context.Context) []*task.Task {
	ctx, cancel := s.bounded(ctx)
	defer cancel()

	tasks, err := s.repo.ListTasks(ctx)
	if err != nil {
		storeFailed("list_tasks", err)
		return []*task.Task{}
	}

	todayKey := s.calendar.DateKey(s.now())
	completions, err := s.repo.ListCompletionsOn(ctx, todayKey)
	if err != nil {
		storeFailed("list_completions", err, zap.String("date_key", todayKey))
		return []*task.Task{}
	}

	done := make(map[uuid.UUID]struct{}, len(completions))
	for _, c := range completions {
		done[c.TaskID] = struct{}{}
	}
	for _, t := range tasks {
		_, t.IsDoneToday = done[t.ID]
	}
	return tasks
}

// AddTask присваивает id, время и автора, сохраняет задачу. nil - сохранить не удалось.
func (s *TaskService) AddTask(ctx context.Context, title string, frequency task.Frequency, options ...task.TaskOption) *task.Task {
	newTask := task.New(title, frequency, options...)
	newTask.ID = uuid.New()
	newTask.CreatedAt = s.now().UTC()
	newTask.CreatedBy = identity.UserOr(ctx, identity.DefaultUser)

	opCtx, cancel := s.bounded(ctx)
	defer cancel()

	if err := s.repo.CreateTask(opCtx, newTask); err != nil {
		storeFailed("create_task", err, zap.String("task_id", newTask.ID.String()))
		return nil
	}

	logger.Info("Service: Задача создана", zap.String("task_id", newTask.ID.String()), zap.String("frequency", string(frequency)))
	s.activity.Log(ctx, activity.ActionCreated, activity.TargetTask, newTask.Title)
	return newTask
}

// UpdateTask - полная перезапись по id, последний пишущий побеждает.
func (s *TaskService) UpdateTask(ctx context.Context, id uuid.UUID, title string, frequency task.Frequency, options ...task.TaskOption) (*task.Task, Outcome) {
	updated := task.New(title, frequency, options...)
	updated.ID = id

	opCtx, cancel := s.bounded(ctx)
	defer cancel()

	if err := s.repo.UpdateTask(opCtx, updated); err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			logger.Info("Service: Задача не найдена", zap.String("target_id", id.String()))
			return nil, Missing
		}
		storeFailed("update_task", err, zap.String("task_id", id.String()))
		return nil, Failed
	}

	s.activity.Log(ctx, activity.ActionUpdated, activity.TargetTask, updated.Title)

	stored, err := s.repo.GetTask(opCtx, id)
	if err != nil {
		// запись прошла, вернём то, что писали
		stored = updated
	}
	if _, err := s.repo.FindCompletion(opCtx, id, s.calendar.DateKey(s.now())); err == nil {
		stored.IsDoneToday = true
	}
	return stored, Applied
}

// DeleteTask удаляет задачу вместе с отметками. Отсутствующий id - no-op.
func (s *TaskService) DeleteTask(ctx context.Context, id uuid.UUID) Outcome {
	opCtx, cancel := s.bounded(ctx)
	defer cancel()

	existing, err := s.repo.GetTask(opCtx, id)
	if err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			logger.Info("Service: Задача для удаления не найдена", zap.String("target_id", id.String()))
			return Missing
		}
		storeFailed("get_task", err, zap.String("task_id", id.String()))
		return Failed
	}

	if err := s.repo.DeleteTask(opCtx, id); err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			return Missing
		}
		storeFailed("delete_task", err, zap.String("task_id", id.String()))
		return Failed
	}

	s.activity.Log(ctx, activity.ActionDeleted, activity.TargetTask, existing.Title)
	return Applied
}

// ToggleTaskStatus переключает выполнение задачи за сегодня.
// Переключения одной пары (задача, день) идут строго по очереди.
// Возвращает задачу с новым IsDoneToday.
func (s *TaskService) ToggleTaskStatus(ctx context.Context, id uuid.UUID) (*task.Task, Outcome) {
	now := s.now()
	dateKey := s.calendar.DateKey(now)

	unlock := s.locks.Lock(id.String() + "|" + dateKey)
	defer unlock()

	opCtx, cancel := s.bounded(ctx)
	defer cancel()

	target, err := s.repo.GetTask(opCtx, id)
	if err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			logger.Info("Service: Переключение несуществующей задачи", zap.String("target_id", id.String()))
			return nil, Missing
		}
		storeFailed("get_task", err, zap.String("task_id", id.String()))
		return nil, Failed
	}

	existing, err := s.repo.FindCompletion(opCtx, id, dateKey)
	switch {
	case err == nil:
		if err := s.repo.DeleteCompletion(opCtx, existing.ID); err != nil && !errors.Is(err, rep.ErrNotFound) {
			storeFailed("delete_completion", err, zap.String("task_id", id.String()), zap.String("date_key", dateKey))
			return nil, Failed
		}
		target.IsDoneToday = false
		metrics.Toggles.WithLabelValues("task", "undo").Inc()
		s.activity.Log(ctx, activity.ActionUndo, activity.TargetTask, target.Title)

	case errors.Is(err, rep.ErrNotFound):
		record := &task.CompletionRecord{
			ID:          uuid.New(),
			TaskID:      id,
			DateKey:     dateKey,
			CompletedAt: now.UTC(),
			CompletedBy: identity.UserOr(ctx, identity.DefaultUser),
		}
		if err := s.repo.CreateCompletion(opCtx, record); err != nil {
			if !errors.Is(err, rep.ErrDuplicate) {
				storeFailed("create_completion", err, zap.String("task_id", id.String()), zap.String("date_key", dateKey))
				return nil, Failed
			}
			// другой процесс успел отметить раньше: результат тот же
			logger.Info("Service: Задача уже отмечена сегодня", zap.String("task_id", id.String()), zap.String("date_key", dateKey))
			target.IsDoneToday = true
			return target, Applied
		}
		target.IsDoneToday = true
		metrics.Toggles.WithLabelValues("task", "completed").Inc()
		s.activity.Log(ctx, activity.ActionCompleted, activity.TargetTask, target.Title)

	default:
		storeFailed("find_completion", err, zap.String("task_id", id.String()), zap.String("date_key", dateKey))
		return nil, Failed
	}

	return target, Applied
}
