// Package ai генерирует короткие комментарии к динамике выполнения через Gemini.
package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"taskFlow/internal/logger"
	"taskFlow/internal/models/performance"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

const DefaultModel = "gemini-2.5-flash"

var ErrNoAPIKey = errors.New("не задан ключ API")

type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini создаёт клиент. Пустой ключ - ErrNoAPIKey: вызывающий оставляет генератор ненастроенным.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrNoAPIKey
	}
	if model == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("создание клиента gemini: %w", err)
	}

	logger.Info("AI: Клиент Gemini готов", zap.String("model", model))
	return &Gemini{client: client, model: model}, nil
}

func (g *Gemini) GenerateInsight(ctx context.Context, series []performance.SeriesPoint) (string, error) {
	prompt, err := buildPrompt(series)
	if err != nil {
		return "", err
	}

	start := time.Now()
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("генерация инсайта: %w", err)
	}

	logger.Debug("AI: Инсайт получен", zap.Duration("ms", time.Since(start)))
	return resp.Text(), nil
}

func buildPrompt(series []performance.SeriesPoint) (string, error) {
	summary, err := json.Marshal(series)
	if err != nil {
		return "", fmt.Errorf("сериализация ряда: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are a productivity coach. Here is the task completion performance data for the last %d days:\n", len(series))
	b.Write(summary)
	fmt.Fprintf(&b, "\n\nThe average completion rate is %d%%.\n\n", performance.AverageRate(series))
	b.WriteString("Provide a concise, motivating, and specific 2-sentence insight about this trend.\n")
	b.WriteString("If the trend is going up, praise consistency. If down, suggest a small win.\n")
	b.WriteString("Keep it friendly and professional.\n")
	return b.String(), nil
}
