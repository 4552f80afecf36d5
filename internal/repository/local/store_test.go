package local_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"taskFlow/internal/models/activity"
	"taskFlow/internal/models/bulk"
	"taskFlow/internal/models/task"
	"taskFlow/internal/repository"
	"taskFlow/internal/repository/local"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mirrors прогоняет каждый тест на обеих реализациях зеркала
func mirrors() map[string]func(t *testing.T) local.Mirror {
	return map[string]func(t *testing.T) local.Mirror{
		"memory": func(*testing.T) local.Mirror { return local.NewMemoryMirror() },
		"sqlite": func(t *testing.T) local.Mirror {
			m, err := local.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "mirror.db"))
			require.NoError(t, err)
			t.Cleanup(func() { m.Close() })
			return m
		},
	}
}

func newDailyTask(title string) *task.Task {
	return &task.Task{
		ID:        uuid.New(),
		Title:     title,
		Frequency: task.FrequencyDaily,
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
		CreatedBy: "alice",
	}
}

func TestStore_HealthCheck(t *testing.T) {
	for name, newMirror := range mirrors() {
		t.Run(name, func(t *testing.T) {
			store := local.New(newMirror(t))
			assert.NoError(t, store.HealthCheck(context.Background()))
		})
	}
}

// TestStore_TaskCRUD тестирует создание, чтение, обновление и удаление задач
func TestStore_TaskCRUD(t *testing.T) {
	ctx := context.Background()

	for name, newMirror := range mirrors() {
		t.Run(name, func(t *testing.T) {
			store := local.New(newMirror(t))

			weekDay := 3
			tsk := newDailyTask("Test Task")
			require.NoError(t, store.CreateTask(ctx, tsk))
			assert.ErrorIs(t, store.CreateTask(ctx, tsk), repository.ErrDuplicate)

			got, err := store.GetTask(ctx, tsk.ID)
			require.NoError(t, err)
			assert.Equal(t, "Test Task", got.Title)
			assert.Equal(t, "alice", got.CreatedBy)

			got.Title = "Renamed"
			got.Frequency = task.FrequencyWeekly
			got.WeekDay = &weekDay
			got.CreatedBy = "mallory"
			require.NoError(t, store.UpdateTask(ctx, got))

			updated, err := store.GetTask(ctx, tsk.ID)
			require.NoError(t, err)
			assert.Equal(t, "Renamed", updated.Title)
			assert.Equal(t, task.FrequencyWeekly, updated.Frequency)
			require.NotNil(t, updated.WeekDay)
			assert.Equal(t, 3, *updated.WeekDay)
			assert.Equal(t, "alice", updated.CreatedBy, "создатель не перезаписывается")

			list, err := store.ListTasks(ctx)
			require.NoError(t, err)
			assert.Len(t, list, 1)

			require.NoError(t, store.DeleteTask(ctx, tsk.ID))
			_, err = store.GetTask(ctx, tsk.ID)
			assert.ErrorIs(t, err, repository.ErrNotFound)
			assert.ErrorIs(t, store.DeleteTask(ctx, tsk.ID), repository.ErrNotFound)
			assert.ErrorIs(t, store.UpdateTask(ctx, tsk), repository.ErrNotFound)
		})
	}
}

// TestStore_DeleteTaskRemovesCompletions тестирует явную очистку отметок при удалении задачи
func TestStore_DeleteTaskRemovesCompletions(t *testing.T) {
	ctx := context.Background()

	for name, newMirror := range mirrors() {
		t.Run(name, func(t *testing.T) {
			store := local.New(newMirror(t))
			doomed := newDailyTask("doomed")
			kept := newDailyTask("kept")
			require.NoError(t, store.CreateTask(ctx, doomed))
			require.NoError(t, store.CreateTask(ctx, kept))

			for _, key := range []string{"2026-10-18", "2026-10-19"} {
				require.NoError(t, store.CreateCompletion(ctx, &task.CompletionRecord{ID: uuid.New(), TaskID: doomed.ID, DateKey: key, CompletedAt: time.Now()}))
			}
			require.NoError(t, store.CreateCompletion(ctx, &task.CompletionRecord{ID: uuid.New(), TaskID: kept.ID, DateKey: "2026-10-19", CompletedAt: time.Now()}))

			require.NoError(t, store.DeleteTask(ctx, doomed.ID))

			all, err := store.ListCompletions(ctx)
			require.NoError(t, err)
			require.Len(t, all, 1)
			assert.Equal(t, kept.ID, all[0].TaskID)
		})
	}
}

// TestStore_CompletionUniqueness тестирует уникальность отметки на пару (задача, день)
func TestStore_CompletionUniqueness(t *testing.T) {
	ctx := context.Background()

	for name, newMirror := range mirrors() {
		t.Run(name, func(t *testing.T) {
			store := local.New(newMirror(t))
			taskID := uuid.New()

			first := &task.CompletionRecord{ID: uuid.New(), TaskID: taskID, DateKey: "2026-10-19", CompletedAt: time.Now(), CompletedBy: "alice"}
			require.NoError(t, store.CreateCompletion(ctx, first))

			second := &task.CompletionRecord{ID: uuid.New(), TaskID: taskID, DateKey: "2026-10-19", CompletedAt: time.Now()}
			assert.ErrorIs(t, store.CreateCompletion(ctx, second), repository.ErrDuplicate)

			other := &task.CompletionRecord{ID: uuid.New(), TaskID: taskID, DateKey: "2026-10-20", CompletedAt: time.Now()}
			require.NoError(t, store.CreateCompletion(ctx, other))

			found, err := store.FindCompletion(ctx, taskID, "2026-10-19")
			require.NoError(t, err)
			assert.Equal(t, first.ID, found.ID)
			assert.Equal(t, "alice", found.CompletedBy)

			onDay, err := store.ListCompletionsOn(ctx, "2026-10-20")
			require.NoError(t, err)
			assert.Len(t, onDay, 1)

			require.NoError(t, store.DeleteCompletion(ctx, first.ID))
			_, err = store.FindCompletion(ctx, taskID, "2026-10-19")
			assert.ErrorIs(t, err, repository.ErrNotFound)
			assert.ErrorIs(t, store.DeleteCompletion(ctx, first.ID), repository.ErrNotFound)
		})
	}
}

// TestStore_BulkTasks тестирует проекты: порядок подзадач, обновление и каскадное удаление
func TestStore_BulkTasks(t *testing.T) {
	ctx := context.Background()

	for name, newMirror := range mirrors() {
		t.Run(name, func(t *testing.T) {
			store := local.New(newMirror(t))

			project := &bulk.BulkTask{ID: uuid.New(), Title: "Move", CreatedAt: time.Now().UTC(), CreatedBy: "alice"}
			for _, title := range []string{"pack", "ship", "unpack"} {
				project.SubTasks = append(project.SubTasks, &bulk.SubTask{ID: uuid.New(), BulkTaskID: project.ID, Title: title})
			}
			other := &bulk.BulkTask{ID: uuid.New(), Title: "Other", CreatedAt: time.Now().UTC()}
			other.SubTasks = []*bulk.SubTask{{ID: uuid.New(), BulkTaskID: other.ID, Title: "only"}}

			require.NoError(t, store.CreateBulkTask(ctx, project))
			require.NoError(t, store.CreateBulkTask(ctx, other))

			got, err := store.GetBulkTask(ctx, project.ID)
			require.NoError(t, err)
			require.Len(t, got.SubTasks, 3)
			assert.Equal(t, []string{"pack", "ship", "unpack"}, []string{got.SubTasks[0].Title, got.SubTasks[1].Title, got.SubTasks[2].Title})

			item := got.SubTasks[1]
			item.Toggle("bob", time.Now().UTC())
			require.NoError(t, store.UpdateSubTask(ctx, item))

			got, err = store.GetBulkTask(ctx, project.ID)
			require.NoError(t, err)
			assert.True(t, got.SubTasks[1].IsCompleted)
			require.NotNil(t, got.SubTasks[1].CompletedBy)
			assert.Equal(t, "bob", *got.SubTasks[1].CompletedBy)
			assert.Equal(t, "ship", got.SubTasks[1].Title, "порядок сохраняется после обновления")

			stray := &bulk.SubTask{ID: item.ID, BulkTaskID: other.ID}
			assert.ErrorIs(t, store.UpdateSubTask(ctx, stray), repository.ErrNotFound)

			require.NoError(t, store.DeleteBulkTask(ctx, project.ID))
			list, err := store.ListBulkTasks(ctx)
			require.NoError(t, err)
			require.Len(t, list, 1)
			assert.Equal(t, other.ID, list[0].ID)
			assert.Len(t, list[0].SubTasks, 1)

			_, err = store.GetBulkTask(ctx, project.ID)
			assert.ErrorIs(t, err, repository.ErrNotFound)
			assert.ErrorIs(t, store.DeleteBulkTask(ctx, project.ID), repository.ErrNotFound)
		})
	}
}

// TestStore_RecentActivities тестирует порядок и предел выдачи журнала
func TestStore_RecentActivities(t *testing.T) {
	ctx := context.Background()

	for name, newMirror := range mirrors() {
		t.Run(name, func(t *testing.T) {
			store := local.New(newMirror(t))
			base := time.Date(2026, time.October, 19, 8, 0, 0, 0, time.UTC)

			for i := 0; i < 60; i++ {
				require.NoError(t, store.AppendActivity(ctx, &activity.Entry{
					ID:          uuid.New(),
					User:        "alice",
					Action:      activity.ActionCreated,
					TargetType:  activity.TargetTask,
					TargetTitle: time.Duration(i).String(),
					Timestamp:   base.Add(time.Duration(i) * time.Second),
				}))
			}

			recent, err := store.RecentActivities(ctx, activity.RecentLimit)
			require.NoError(t, err)
			require.Len(t, recent, 50)
			assert.Equal(t, base.Add(59*time.Second), recent[0].Timestamp.UTC())
			assert.Equal(t, base.Add(10*time.Second), recent[49].Timestamp.UTC())
		})
	}
}

// TestStore_ActivityRetention - зеркало хранит только последние записи журнала
func TestStore_ActivityRetention(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2026, time.October, 19, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		retention int
		appended  int
		kept      int
	}{
		{"под пределом", 60, 40, 40},
		{"сверх предела", 60, 80, 60},
		{"предел не ниже выдачи", 10, 70, activity.RecentLimit},
	}

	for name, newMirror := range mirrors() {
		for _, tt := range tests {
			t.Run(name+"/"+tt.name, func(t *testing.T) {
				store := local.New(newMirror(t), local.WithActivityRetention(tt.retention))

				for i := 0; i < tt.appended; i++ {
					require.NoError(t, store.AppendActivity(ctx, &activity.Entry{
						ID:          uuid.New(),
						User:        "alice",
						Action:      activity.ActionCompleted,
						TargetType:  activity.TargetTask,
						TargetTitle: "task",
						Timestamp:   base.Add(time.Duration(i) * time.Second),
					}))
				}

				all, err := store.RecentActivities(ctx, 0)
				require.NoError(t, err)
				require.Len(t, all, tt.kept)
				assert.Equal(t, base.Add(time.Duration(tt.appended-1)*time.Second), all[0].Timestamp.UTC())
				assert.Equal(t, base.Add(time.Duration(tt.appended-tt.kept)*time.Second), all[tt.kept-1].Timestamp.UTC())
			})
		}
	}
}

// TestStore_ConcurrentWrites тестирует, что параллельные записи не теряются
func TestStore_ConcurrentWrites(t *testing.T) {
	ctx := context.Background()
	store := local.New(local.NewMemoryMirror())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, store.CreateTask(ctx, newDailyTask("parallel")))
		}()
	}
	wg.Wait()

	list, err := store.ListTasks(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 50)
}

// TestSQLiteMirror_Persists тестирует, что файл зеркала переживает переоткрытие
func TestSQLiteMirror_Persists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "mirror.db")

	m, err := local.OpenSQLite(ctx, path)
	require.NoError(t, err)
	tsk := newDailyTask("survivor")
	require.NoError(t, local.New(m).CreateTask(ctx, tsk))
	require.NoError(t, m.Close())

	reopened, err := local.OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := local.New(reopened).GetTask(ctx, tsk.ID)
	require.NoError(t, err)
	assert.Equal(t, "survivor", got.Title)
}

func TestOpenSQLite_EmptyPath(t *testing.T) {
	_, err := local.OpenSQLite(context.Background(), "")
	assert.Error(t, err)
}
