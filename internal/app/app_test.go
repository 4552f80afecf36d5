package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"taskFlow/internal/config"
	"taskFlow/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(repoType string) *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Host:            "127.0.0.1",
			Port:            "0",
			ShutdownTimeout: time.Second,
			CORSOrigins:     []string{"*"},
		},
		Database: config.DatabaseConfig{
			ConnectTimeout: 500 * time.Millisecond,
		},
		Repository: config.RepositoryConfig{
			Type:             repoType,
			OperationTimeout: time.Second,
		},
		Schedule: config.ScheduleConfig{Timezone: "UTC"},
		Insight:  config.InsightConfig{Model: "gemini-2.5-flash"},
		Digest:   config.DigestConfig{At: "21:00", Days: 7},
	}
}

func TestOpenStore(t *testing.T) {
	tests := []struct {
		name     string
		repoType string
		url      string
		path     string
		wantMode service.RepoType
		wantErr  bool
	}{
		{"local в памяти", config.RepositoryLocal, "", "", service.LocalType, false},
		{"local в файле", config.RepositoryLocal, "", "mirror.db", service.LocalType, false},
		{"auto без url", config.RepositoryAuto, "", "", service.LocalType, false},
		{"auto с недоступной базой", config.RepositoryAuto, "postgres://u:p@127.0.0.1:1/db?sslmode=disable", "", service.LocalType, false},
		{"remote с недоступной базой", config.RepositoryRemote, "postgres://u:p@127.0.0.1:1/db?sslmode=disable", "", "", true},
		{"неизвестный тип", "cloud", "", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(tt.repoType)
			cfg.Database.URL = tt.url
			if tt.path != "" {
				cfg.Local.Path = filepath.Join(t.TempDir(), tt.path)
			}

			store, mode, err := openStore(context.Background(), cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			defer store.Close()

			assert.Equal(t, tt.wantMode, mode)
			assert.NoError(t, store.HealthCheck(context.Background()))
		})
	}
}

func TestApp_OfflineEndToEnd(t *testing.T) {
	a, err := New(testConfig(config.RepositoryLocal)).Init(context.Background())
	require.NoError(t, err)
	defer a.Shutdown()
	assert.Equal(t, service.LocalType, a.Mode())

	h := a.Handler()

	req := httptest.NewRequest(http.MethodPost, "/tasks", strings.NewReader(`{"title":"Зарядка","frequency":"Daily"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User", "anna")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"created_by":"anna"`)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/activity", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"user":"anna"`)
	assert.Contains(t, rec.Body.String(), `"action":"CREATED"`)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"offline":true`)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/performance/insight", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), service.FallbackUnconfigured)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "taskflow_http_requests_total")
}

func TestApp_RunStopsDigestBeforeStore(t *testing.T) {
	cfg := testConfig(config.RepositoryLocal)
	cfg.Digest.Enabled = true

	a, err := New(cfg).Init(context.Background())
	require.NoError(t, err)
	require.NotNil(t, a.worker)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	assert.False(t, a.worker.Stopped())
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run не завершился")
	}
	assert.True(t, a.worker.Stopped())
	assert.Nil(t, a.shutdowns)
}
