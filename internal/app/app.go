package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"taskFlow/internal/ai"
	"taskFlow/internal/cache"
	"taskFlow/internal/config"
	"taskFlow/internal/handlers"
	"taskFlow/internal/logger"
	"taskFlow/internal/middleware"
	"taskFlow/internal/schedule"
	"taskFlow/internal/service"
	"taskFlow/internal/worker"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

const requestTimeout = 30 * time.Second

type App struct {
	config     *config.Config
	server     *http.Server
	router     *chi.Mux
	repository service.Store // интерфейс!
	mode       service.RepoType
	calendar   schedule.Calendar
	activity   *service.ActivityLogger
	handlers   handlers.Handlers
	worker     *worker.DigestWorker
	shutdowns  []func() // функции для graceful shutdown, выполняются в обратном порядке
}

func New(cfg *config.Config) *App {
	return &App{
		config:    cfg,
		shutdowns: make([]func(), 0),
	}
}

func (a *App) Init(ctx context.Context) (*App, error) {
	if err := logger.Init(a.config.Logging.Development); err != nil {
		return nil, fmt.Errorf("инициализация логгера: %w", err)
	}
	a.shutdowns = append(a.shutdowns, func() {
		logger.Info("App: Завершение работы логгирования...")
		logger.Sync()
	})

	calendar, err := schedule.LoadCalendar(a.config.Schedule.Timezone)
	if err != nil {
		return nil, fmt.Errorf("часовой пояс: %w", err)
	}
	a.calendar = calendar

	store, mode, err := openStore(ctx, a.config)
	if err != nil {
		a.Shutdown()
		return nil, err
	}
	a.repository, a.mode = store, mode
	a.shutdowns = append(a.shutdowns, func() {
		if err := store.Close(); err != nil {
			logger.Error("App: Ошибка закрытия хранилища", err)
		}
	})
	logger.Info("App: Хранилище выбрано", zap.String("mode", string(mode)))

	a.initServices(ctx)
	a.initRouter()

	a.server = &http.Server{
		Addr:         a.config.GetServerAddr(),
		Handler:      otelhttp.NewHandler(a.router, "taskflow"),
		ReadTimeout:  a.config.Server.ReadTimeout,
		WriteTimeout: a.config.Server.WriteTimeout,
	}
	return a, nil
}

func (a *App) initServices(ctx context.Context) {
	timeout := service.WithTimeout(a.config.Repository.OperationTimeout)

	a.activity = service.NewActivityLogger(a.repository, service.ActivityConfig{
		QueueSize:  a.config.Activity.QueueSize,
		MaxRetries: a.config.Activity.MaxRetries,
	}, timeout)
	a.shutdowns = append(a.shutdowns, func() {
		logger.Info("App: Дописываем журнал действий...")
		a.activity.Close()
	})

	tasks := service.NewTaskService(a.repository, a.activity, a.calendar, timeout)
	projects := service.NewBulkService(a.repository, a.activity, timeout)
	performance := service.NewPerformanceService(a.repository, a.repository, a.calendar, timeout)
	insight := service.NewInsightService(a.insightGenerator(ctx), a.insightCache(ctx), service.InsightConfig{
		Timeout:  a.config.Insight.Timeout,
		CacheTTL: a.config.Insight.CacheTTL,
	})
	health := service.NewHealthService(a.repository, a.mode, timeout)

	a.handlers = handlers.Handlers{
		Tasks:   handlers.NewTaskHandler(tasks),
		Bulk:    handlers.NewBulkHandler(projects),
		Reports: handlers.NewReportHandler(a.activity, performance, insight),
		Health:  handlers.NewHealthHandler(health),
	}

	if a.config.Digest.Enabled {
		days := a.config.Digest.Days
		a.worker = worker.NewDigestWorker(performance, insight, a.calendar.Location(), &days)
		// останавливается раньше журнала и хранилища: прогон дочитывает данные
		a.shutdowns = append(a.shutdowns, a.worker.Stop)
	}
}

// insightGenerator возвращает nil-интерфейс, если ключа нет: сервис ответит заглушкой.
func (a *App) insightGenerator(ctx context.Context) service.InsightGenerator {
	gemini, err := ai.NewGemini(ctx, a.config.Insight.APIKey, a.config.Insight.Model)
	if err != nil {
		if errors.Is(err, ai.ErrNoAPIKey) {
			logger.Info("App: Ключ Gemini не задан, инсайты отключены")
		} else {
			logger.Error("App: Gemini недоступен, инсайты отключены", err)
		}
		return nil
	}
	return gemini
}

func (a *App) insightCache(ctx context.Context) service.InsightCache {
	if a.config.Redis.Addr == "" {
		return nil
	}
	redisCache, err := cache.NewInsightCache(ctx, a.config.Redis.Addr, a.config.Redis.Password, a.config.Redis.DB)
	if err != nil {
		logger.Warn("App: Redis недоступен, инсайты без кэша", zap.Error(err))
		return nil
	}
	a.shutdowns = append(a.shutdowns, func() {
		if err := redisCache.Close(); err != nil {
			logger.Error("App: Ошибка закрытия Redis", err)
		}
	})
	return redisCache
}

func (a *App) initRouter() {
	r := chi.NewRouter()

	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: a.config.Server.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", middleware.UserHeader, "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID", "Retry-After"},
		MaxAge:         300,
	}))
	r.Use(middleware.RateLimit(a.config.Server.RateLimit))
	r.Use(middleware.Identity)
	r.Use(chimw.Timeout(requestTimeout))

	a.handlers.Register(r)
	r.Handle("/metrics", promhttp.Handler())

	a.router = r
}

// Run обслуживает запросы до отмены ctx, затем корректно всё закрывает.
func (a *App) Run(ctx context.Context) error {
	if a.worker != nil {
		// идущий прогон доживает до Stop, его ограничивают таймауты операций
		if err := a.worker.Start(context.WithoutCancel(ctx), a.config.Digest.At); err != nil {
			logger.Error("App: Дайджест не запущен", err)
		}
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("App: Сервер запущен",
			zap.String("addr", a.server.Addr),
			zap.String("mode", string(a.mode)),
			zap.Bool("offline", a.mode.Offline()))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		logger.Info("App: Получен сигнал остановки")
	case err, ok := <-errCh:
		if ok {
			serveErr = fmt.Errorf("http-сервер: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.config.Server.ShutdownTimeout)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		logger.Error("App: Ошибка остановки сервера", err)
	}
	a.Shutdown()
	return serveErr
}

func (a *App) Shutdown() {
	for i := len(a.shutdowns) - 1; i >= 0; i-- {
		a.shutdowns[i]()
	}
	a.shutdowns = nil
}

func (a *App) Handler() http.Handler {
	return a.server.Handler
}

func (a *App) Mode() service.RepoType {
	return a.mode
}
