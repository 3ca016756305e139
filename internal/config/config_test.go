package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/StephenStolk/analyseX-sub001/internal/errors"
	"github.com/StephenStolk/analyseX-sub001/internal/forecast"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearAIEnv(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("ANALYSEX_AI_API_KEY", "")
}

func TestLoadDefaults(t *testing.T) {
	clearAIEnv(t)
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 20, cfg.Engine.SampleSize)
	assert.Equal(t, 5, cfg.Engine.MaxCorrelationColumns)
	assert.Equal(t, 2.5, cfg.Engine.AnomalyThreshold)
	assert.Equal(t, 0.3, cfg.Engine.SmoothingAlpha)
	assert.Equal(t, 12, cfg.Engine.SeasonalPeriod)
	assert.Equal(t, 8, cfg.Engine.MaxClusters)
	assert.Equal(t, 10, cfg.Engine.MaxGroupLevels)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.False(t, cfg.AI.Enabled())

	fc := cfg.Engine.ForecastConfig()
	assert.Equal(t, 3, fc.MovingAverageWindow)
	assert.Equal(t, forecast.SeasonalityAdditive, fc.HoltWinters.Seasonality)

	sc := cfg.Engine.StatsConfig()
	assert.Equal(t, 5, sc.MaxColumns)
	assert.Equal(t, 0.7, sc.Correlation.Strong)

	assert.Equal(t, 20, cfg.Engine.DatasetOptions().SampleSize)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	clearAIEnv(t)
	t.Setenv("ANALYSEX_ENGINE_FORECAST_HORIZON", "12")
	t.Setenv("ANALYSEX_ENGINE_SEASONALITY", "multiplicative")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("DATABASE_URL", "postgres://localhost/analysex")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.Engine.ForecastHorizon)
	assert.Equal(t, forecast.SeasonalityMultiplicative, cfg.Engine.ForecastConfig().HoltWinters.Seasonality)
	assert.True(t, cfg.AI.Enabled())
	assert.Equal(t, "postgres://localhost/analysex", cfg.Database.URL)
}

func TestLoadYAMLFile(t *testing.T) {
	clearAIEnv(t)
	path := filepath.Join(t.TempDir(), "analysex.yaml")
	yaml := "engine:\n  smoothing_alpha: 0.5\n  top_pairs: 3\nserver:\n  port: 9090\n"
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0.5, cfg.Engine.SmoothingAlpha)
	assert.Equal(t, 3, cfg.Engine.TopPairs)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 5, cfg.Engine.MaxCorrelationColumns, "unset keys keep defaults")
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	clearAIEnv(t)
	t.Setenv("ANALYSEX_ENGINE_SMOOTHING_ALPHA", "1.5")

	_, err := Load("")
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}
