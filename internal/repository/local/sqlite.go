package local

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"taskFlow/internal/logger"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// SQLiteMirror хранит коллекции в одном файле SQLite: строка на коллекцию.
type SQLiteMirror struct {
	db *sql.DB
}

func OpenSQLite(ctx context.Context, path string) (*SQLiteMirror, error) {
	if path == "" {
		return nil, errors.New("путь к файлу зеркала пуст")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("создание каталога зеркала: %w", err)
	}

	db, err := sql.Open("sqlite", sqliteDSN(path))
	if err != nil {
		return nil, fmt.Errorf("открытие sqlite: %w", err)
	}
	// один писатель: чтение-изменение-запись коллекций не должно перемежаться
	db.SetMaxOpenConns(1)

	m := &SQLiteMirror{db: db}
	if err := m.ensureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("Repository: Локальное зеркало открыто", zap.String("path", path))
	return m, nil
}

func sqliteDSN(path string) string {
	q := url.Values{}
	q.Add("_pragma", "busy_timeout(5000)")
	q.Add("_pragma", "journal_mode(WAL)")
	return "file:" + path + "?" + q.Encode()
}

func (m *SQLiteMirror) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS collections (
	name TEXT PRIMARY KEY,
	data TEXT NOT NULL,
	updated_at TEXT NOT NULL
);`
	if _, err := m.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("создание схемы зеркала: %w", err)
	}
	return nil
}

func (m *SQLiteMirror) Load(ctx context.Context, collection string) ([]byte, error) {
	var data string
	err := m.db.QueryRowContext(ctx, `SELECT data FROM collections WHERE name = ?`, collection).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("чтение коллекции %s: %w", collection, err)
	}
	return []byte(data), nil
}

func (m *SQLiteMirror) Save(ctx context.Context, batch map[string][]byte) error {
	start := time.Now()

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("начало транзакции: %w", err)
	}
	defer tx.Rollback()

	const upsert = `INSERT INTO collections (name, data, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`

	now := time.Now().UTC().Format(time.RFC3339Nano)
	for name, data := range batch {
		if _, err := tx.ExecContext(ctx, upsert, name, string(data), now); err != nil {
			return fmt.Errorf("запись коллекции %s: %w", name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("фиксация транзакции: %w", err)
	}

	if time.Since(start) > time.Millisecond*100 {
		logger.Warn("Repository: Медленная запись зеркала", zap.Duration("ms", time.Since(start)))
	}
	return nil
}

func (m *SQLiteMirror) Ping(ctx context.Context) error {
	if err := m.db.PingContext(ctx); err != nil {
		return fmt.Errorf("проверка sqlite: %w", err)
	}
	return nil
}

func (m *SQLiteMirror) Close() error {
	if m.db == nil {
		return nil
	}
	logger.Info("Repository: Закрытие локального зеркала")
	return m.db.Close()
}
