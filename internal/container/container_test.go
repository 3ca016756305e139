package container

import (
	"context"
	"testing"

	"github.com/StephenStolk/analyseX-sub001/adapters/llm"
	"github.com/StephenStolk/analyseX-sub001/adapters/llm/heuristic"
	"github.com/StephenStolk/analyseX-sub001/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadConfig(t *testing.T) *config.Config {
	t.Helper()
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("ANALYSEX_AI_API_KEY", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("ANALYSEX_DATABASE_URL", "")
	cfg, err := config.Load("")
	require.NoError(t, err)
	return cfg
}

func TestNewWithoutDatabaseOrKey(t *testing.T) {
	c, err := New(context.Background(), loadConfig(t))
	require.NoError(t, err)
	defer c.Close()

	assert.Nil(t, c.DB)
	assert.Nil(t, c.Reports)
	assert.IsType(t, &heuristic.Summarizer{}, c.Summarizer)
	require.NotNil(t, c.Service)
	assert.NotNil(t, c.Server())

	applied, err := c.Migrate(context.Background())
	require.NoError(t, err)
	assert.Empty(t, applied)
}

func TestNewSelectsLLMSummarizer(t *testing.T) {
	cfg := loadConfig(t)
	cfg.AI.APIKey = "sk-test"

	c, err := New(context.Background(), cfg)
	require.NoError(t, err)
	defer c.Close()
	assert.IsType(t, &llm.Summarizer{}, c.Summarizer)
}

func TestServiceConfigCarriesEngineSettings(t *testing.T) {
	cfg := loadConfig(t)
	cfg.Engine.ForecastHorizon = 9
	cfg.Engine.SeasonalPeriod = 4
	cfg.Engine.AnomalyThreshold = 3
	cfg.Engine.MaxClusters = 5

	sc := ServiceConfig(cfg)
	assert.Equal(t, 9, sc.Horizon)
	assert.Equal(t, 4, sc.Trend.SeasonPeriod)
	assert.Equal(t, 4, sc.Forecast.HoltWinters.Period)
	assert.Equal(t, 3.0, sc.AnomalyThreshold)
	assert.Equal(t, cfg.Engine.MaxConcurrentAnalyses, sc.MaxConcurrent)
	assert.Equal(t, 5, sc.Cluster.MaxK)
	assert.Equal(t, cfg.Engine.MaxGroupLevels, sc.MaxGroupLevels)
}
