package ai

import (
	"context"
	"testing"

	"taskFlow/internal/models/performance"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPrompt(t *testing.T) {
	series := []performance.SeriesPoint{
		{Date: "2026-10-18", Rate: 50},
		{Date: "2026-10-19", Rate: 75},
	}

	prompt, err := buildPrompt(series)
	require.NoError(t, err)

	assert.Contains(t, prompt, `[{"date":"2026-10-18","rate":50},{"date":"2026-10-19","rate":75}]`)
	assert.Contains(t, prompt, "The average completion rate is 63%.")
	assert.Contains(t, prompt, "last 2 days")
	assert.Contains(t, prompt, "2-sentence insight")
}

func TestNewGemini_NoKey(t *testing.T) {
	_, err := NewGemini(context.Background(), "  ", "")
	assert.ErrorIs(t, err, ErrNoAPIKey)
}
