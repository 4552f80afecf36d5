package postgres_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"taskFlow/internal/models/activity"
	"taskFlow/internal/models/bulk"
	"taskFlow/internal/models/task"
	"taskFlow/internal/repository"
	"taskFlow/internal/repository/postgres"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// PostgresTestSuite для интеграционных тестов с PostgreSQL
type PostgresTestSuite struct {
	suite.Suite
	container  testcontainers.Container
	storage    *postgres.Storage
	connString string
	ctx        context.Context
}

func (s *PostgresTestSuite) SetupSuite() {
	s.ctx = context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:15-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(s.ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(s.T(), err)
	s.container = container

	host, err := container.Host(s.ctx)
	require.NoError(s.T(), err)
	port, err := container.MappedPort(s.ctx, "5432")
	require.NoError(s.T(), err)

	s.connString = fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, port.Port())

	s.storage, err = postgres.New(s.ctx, s.connString, postgres.Options{})
	require.NoError(s.T(), err)
	require.NoError(s.T(), s.storage.Migrate(s.ctx))
}

func (s *PostgresTestSuite) TearDownSuite() {
	if s.storage != nil {
		s.storage.Close()
	}
	if s.container != nil {
		s.container.Terminate(s.ctx)
	}
}

// SetupTest очищает таблицы перед каждым тестом
func (s *PostgresTestSuite) SetupTest() {
	conn, err := pgx.Connect(s.ctx, s.connString)
	require.NoError(s.T(), err)
	defer conn.Close(s.ctx)

	_, err = conn.Exec(s.ctx, "TRUNCATE tasks, completions, sub_tasks, bulk_tasks, activity_log")
	require.NoError(s.T(), err)
}

func newTask(title string, frequency task.Frequency) *task.Task {
	return &task.Task{
		ID:        uuid.New(),
		Title:     title,
		Frequency: frequency,
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
		CreatedBy: "alice",
	}
}

func (s *PostgresTestSuite) TestTaskCRUD() {
	t := s.T()

	day := 15
	tsk := newTask("Pay rent", task.FrequencyMonthly)
	tsk.MonthDay = &day
	tsk.Description = "before the 15th"

	require.NoError(t, s.storage.CreateTask(s.ctx, tsk))
	assert.ErrorIs(t, s.storage.CreateTask(s.ctx, tsk), repository.ErrDuplicate)

	got, err := s.storage.GetTask(s.ctx, tsk.ID)
	require.NoError(t, err)
	assert.Equal(t, "Pay rent", got.Title)
	assert.Equal(t, "before the 15th", got.Description)
	require.NotNil(t, got.MonthDay)
	assert.Equal(t, 15, *got.MonthDay)
	assert.Nil(t, got.WeekDay)
	assert.True(t, tsk.CreatedAt.Equal(got.CreatedAt))

	got.Title = "Pay rent and bills"
	got.CreatedBy = "mallory"
	require.NoError(t, s.storage.UpdateTask(s.ctx, got))

	updated, err := s.storage.GetTask(s.ctx, tsk.ID)
	require.NoError(t, err)
	assert.Equal(t, "Pay rent and bills", updated.Title)
	assert.Equal(t, "alice", updated.CreatedBy)

	list, err := s.storage.ListTasks(s.ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, s.storage.DeleteTask(s.ctx, tsk.ID))
	_, err = s.storage.GetTask(s.ctx, tsk.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.ErrorIs(t, s.storage.DeleteTask(s.ctx, tsk.ID), repository.ErrNotFound)
	assert.ErrorIs(t, s.storage.UpdateTask(s.ctx, tsk), repository.ErrNotFound)
}

func (s *PostgresTestSuite) TestCompletions() {
	t := s.T()

	tsk := newTask("Stretch", task.FrequencyDaily)
	require.NoError(t, s.storage.CreateTask(s.ctx, tsk))

	first := &task.CompletionRecord{ID: uuid.New(), TaskID: tsk.ID, DateKey: "2026-10-19", CompletedAt: time.Now().UTC(), CompletedBy: "alice"}
	require.NoError(t, s.storage.CreateCompletion(s.ctx, first))

	dup := &task.CompletionRecord{ID: uuid.New(), TaskID: tsk.ID, DateKey: "2026-10-19", CompletedAt: time.Now().UTC(), CompletedBy: "bob"}
	assert.ErrorIs(t, s.storage.CreateCompletion(s.ctx, dup), repository.ErrDuplicate)

	require.NoError(t, s.storage.CreateCompletion(s.ctx, &task.CompletionRecord{ID: uuid.New(), TaskID: tsk.ID, DateKey: "2026-10-18", CompletedAt: time.Now().UTC(), CompletedBy: "alice"}))

	found, err := s.storage.FindCompletion(s.ctx, tsk.ID, "2026-10-19")
	require.NoError(t, err)
	assert.Equal(t, first.ID, found.ID)
	assert.Equal(t, "alice", found.CompletedBy)

	onDay, err := s.storage.ListCompletionsOn(s.ctx, "2026-10-18")
	require.NoError(t, err)
	assert.Len(t, onDay, 1)

	require.NoError(t, s.storage.DeleteCompletion(s.ctx, first.ID))
	assert.ErrorIs(t, s.storage.DeleteCompletion(s.ctx, first.ID), repository.ErrNotFound)

	require.NoError(t, s.storage.DeleteTask(s.ctx, tsk.ID))
	all, err := s.storage.ListCompletions(s.ctx)
	require.NoError(t, err)
	assert.Empty(t, all, "удаление задачи очищает её отметки")
}

func (s *PostgresTestSuite) TestBulkTasks() {
	t := s.T()

	project := &bulk.BulkTask{ID: uuid.New(), Title: "Launch", CreatedAt: time.Now().UTC(), CreatedBy: "alice"}
	for _, title := range []string{"design", "build", "ship"} {
		project.SubTasks = append(project.SubTasks, &bulk.SubTask{ID: uuid.New(), BulkTaskID: project.ID, Title: title})
	}
	require.NoError(t, s.storage.CreateBulkTask(s.ctx, project))
	assert.ErrorIs(t, s.storage.CreateBulkTask(s.ctx, project), repository.ErrDuplicate)

	got, err := s.storage.GetBulkTask(s.ctx, project.ID)
	require.NoError(t, err)
	require.Len(t, got.SubTasks, 3)
	assert.Equal(t, "design", got.SubTasks[0].Title)
	assert.Equal(t, "ship", got.SubTasks[2].Title)

	item := got.SubTasks[0]
	item.Toggle("bob", time.Now().UTC())
	require.NoError(t, s.storage.UpdateSubTask(s.ctx, item))

	list, err := s.storage.ListBulkTasks(s.ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].SubTasks[0].IsCompleted)
	require.NotNil(t, list[0].SubTasks[0].CompletedBy)
	assert.Equal(t, "bob", *list[0].SubTasks[0].CompletedBy)

	require.NoError(t, s.storage.DeleteBulkTask(s.ctx, project.ID))
	_, err = s.storage.GetBulkTask(s.ctx, project.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.ErrorIs(t, s.storage.DeleteBulkTask(s.ctx, project.ID), repository.ErrNotFound)
}

func (s *PostgresTestSuite) TestRecentActivities() {
	t := s.T()
	base := time.Date(2026, time.October, 19, 8, 0, 0, 0, time.UTC)

	for i := 0; i < 55; i++ {
		require.NoError(t, s.storage.AppendActivity(s.ctx, &activity.Entry{
			ID:          uuid.New(),
			User:        "alice",
			Action:      activity.ActionCompleted,
			TargetType:  activity.TargetTask,
			TargetTitle: fmt.Sprintf("task %d", i),
			Timestamp:   base.Add(time.Duration(i) * time.Second),
		}))
	}

	recent, err := s.storage.RecentActivities(s.ctx, activity.RecentLimit)
	require.NoError(t, err)
	require.Len(t, recent, activity.RecentLimit)
	assert.Equal(t, "task 54", recent[0].TargetTitle)
	assert.Equal(t, "task 5", recent[49].TargetTitle)
}

func (s *PostgresTestSuite) TestHealthCheck() {
	assert.NoError(s.T(), s.storage.HealthCheck(s.ctx))
}

func TestPostgresSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Пропуск интеграционных тестов в коротком режиме")
	}
	suite.Run(t, new(PostgresTestSuite))
}
