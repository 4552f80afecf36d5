package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"taskFlow/internal/logger"
	"taskFlow/internal/metrics"
	"taskFlow/internal/models/performance"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	FallbackUnconfigured = "API Key not configured. Unable to generate insights."
	FallbackError        = "Could not retrieve insights at this time."
	FallbackEmpty        = "Keep pushing forward! Consistency is key."
)

// InsightWindow - сколько последних дней уходит генератору.
const InsightWindow = 7

type InsightGenerator interface {
	GenerateInsight(ctx context.Context, series []performance.SeriesPoint) (string, error)
}

type InsightCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

type InsightConfig struct {
	Timeout  time.Duration
	CacheTTL time.Duration
}

// InsightService никогда не возвращает ошибку: любой сбой превращается в фиксированный текст.
type InsightService struct {
	generator InsightGenerator
	cache     InsightCache
	cfg       InsightConfig
	group     singleflight.Group
}

// NewInsightService: generator == nil означает "не настроен", cache == nil - без кэша.
func NewInsightService(generator InsightGenerator, cache InsightCache, cfg InsightConfig) *InsightService {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = time.Hour
	}
	return &InsightService{
		generator: generator,
		cache:     cache,
		cfg:       cfg,
	}
}

func (s *InsightService) Insight(ctx context.Context, history []performance.DailyPerformance) string {
	if s.generator == nil {
		metrics.Insights.WithLabelValues("fallback").Inc()
		return FallbackUnconfigured
	}

	recent := history
	if len(recent) > InsightWindow {
		recent = recent[len(recent)-InsightWindow:]
	}
	series := performance.Series(recent)
	key := insightKey(series)

	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			logger.Warn("Service: Кэш инсайтов недоступен", zap.Error(err))
		} else if ok {
			metrics.Insights.WithLabelValues("cache").Inc()
			return cached
		}
	}

	// одинаковые одновременные запросы ждут одну генерацию; уход первого
	// клиента не отменяет её для остальных, предел задаёт cfg.Timeout
	flightCtx := context.WithoutCancel(ctx)
	res, _, _ := s.group.Do(key, func() (any, error) {
		return s.generate(flightCtx, key, series), nil
	})
	return res.(string)
}

func (s *InsightService) generate(ctx context.Context, key string, series []performance.SeriesPoint) string {
	genCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	start := time.Now()
	text, err := s.generator.GenerateInsight(genCtx, series)
	if err != nil {
		metrics.Insights.WithLabelValues("fallback").Inc()
		logger.Error("Service: Ошибка генерации инсайта", err, zap.Duration("ms", time.Since(start)))
		return FallbackError
	}

	text = strings.TrimSpace(text)
	if text == "" {
		metrics.Insights.WithLabelValues("fallback").Inc()
		return FallbackEmpty
	}

	metrics.Insights.WithLabelValues("generated").Inc()
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, text, s.cfg.CacheTTL); err != nil {
			logger.Warn("Service: Не удалось сохранить инсайт в кэш", zap.Error(err))
		}
	}
	return text
}

func insightKey(series []performance.SeriesPoint) string {
	raw, _ := json.Marshal(series)
	sum := sha256.Sum256(raw)
	return "insight:" + hex.EncodeToString(sum[:])
}
