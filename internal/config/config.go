package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/StephenStolk/analyseX-sub001/adapters/stats/engine"
	"github.com/StephenStolk/analyseX-sub001/internal/dataset"
	"github.com/StephenStolk/analyseX-sub001/internal/errors"
	"github.com/StephenStolk/analyseX-sub001/internal/forecast"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces every environment variable, e.g. ANALYSEX_ENGINE_FORECAST_HORIZON
const EnvPrefix = "ANALYSEX"

// Config represents the complete application configuration
type Config struct {
	LogLevel string         `mapstructure:"log_level"`
	Engine   EngineConfig   `mapstructure:"engine"`
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	AI       AIConfig       `mapstructure:"ai"`
}

// EngineConfig holds the analysis thresholds and limits
type EngineConfig struct {
	SampleSize            int     `mapstructure:"sample_size"`
	CategoricalRatio      float64 `mapstructure:"categorical_ratio"`
	MaxCorrelationColumns int     `mapstructure:"max_correlation_columns"`
	TopPairs              int     `mapstructure:"top_pairs"`
	Workers               int     `mapstructure:"workers"`
	AnomalyThreshold      float64 `mapstructure:"anomaly_threshold"`
	ForecastHorizon       int     `mapstructure:"forecast_horizon"`
	MovingAverageWindow   int     `mapstructure:"moving_average_window"`
	SmoothingAlpha        float64 `mapstructure:"smoothing_alpha"`
	SeasonalPeriod        int     `mapstructure:"seasonal_period"`
	Seasonality           string  `mapstructure:"seasonality"`
	MaxConcurrentAnalyses int64   `mapstructure:"max_concurrent_analyses"`
	MaxClusters           int     `mapstructure:"max_clusters"`
	MaxGroupLevels        int     `mapstructure:"max_group_levels"`
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	MaxUploadMB     int64         `mapstructure:"max_upload_mb"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig holds the report store connection; an empty URL disables it
type DatabaseConfig struct {
	URL          string `mapstructure:"url"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
}

// AIConfig holds the narrative model settings; an empty key selects the template summarizer
type AIConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	Model       string        `mapstructure:"model"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Temperature float64       `mapstructure:"temperature"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// Enabled reports whether an LLM summarizer can be built
func (a AIConfig) Enabled() bool {
	return strings.TrimSpace(a.APIKey) != ""
}

// Load reads .env, an optional YAML file and ANALYSEX_* environment variables, in
// increasing order of precedence. An empty path searches ./configs and the working directory.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("analysex")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindings := map[string][]string{
		"log_level":    {"ANALYSEX_LOG_LEVEL", "LOG_LEVEL"},
		"database.url": {"ANALYSEX_DATABASE_URL", "DATABASE_URL"},
		"ai.api_key":   {"ANALYSEX_AI_API_KEY", "OPENAI_API_KEY"},
		"ai.model":     {"ANALYSEX_AI_MODEL", "LLM_MODEL"},
	}
	for key, envs := range bindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, errors.Wrapf(err, "failed to bind %s", key)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, errors.WithCode(errors.CodeConfigInvalid, fmt.Errorf("read config: %w", err))
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.WithCode(errors.CodeConfigInvalid, fmt.Errorf("decode config: %w", err))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "INFO")

	v.SetDefault("engine.sample_size", 20)
	v.SetDefault("engine.categorical_ratio", 0.5)
	v.SetDefault("engine.max_correlation_columns", 5)
	v.SetDefault("engine.top_pairs", 10)
	v.SetDefault("engine.workers", 4)
	v.SetDefault("engine.anomaly_threshold", 2.5)
	v.SetDefault("engine.forecast_horizon", 6)
	v.SetDefault("engine.moving_average_window", 3)
	v.SetDefault("engine.smoothing_alpha", 0.3)
	v.SetDefault("engine.seasonal_period", 12)
	v.SetDefault("engine.seasonality", string(forecast.SeasonalityAdditive))
	v.SetDefault("engine.max_concurrent_analyses", 4)
	v.SetDefault("engine.max_clusters", 8)
	v.SetDefault("engine.max_group_levels", 10)

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.max_upload_mb", 20)
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("database.url", "")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 2)

	v.SetDefault("ai.api_key", "")
	v.SetDefault("ai.base_url", "https://api.openai.com/v1")
	v.SetDefault("ai.model", "gpt-4.1-mini")
	v.SetDefault("ai.max_tokens", 800)
	v.SetDefault("ai.temperature", 0.2)
	v.SetDefault("ai.timeout", "30s")
}

// Validate rejects settings the engines cannot run with
func (c *Config) Validate() error {
	e := c.Engine
	switch {
	case e.SampleSize < 1:
		return errors.ConfigInvalid("engine.sample_size must be at least 1")
	case e.CategoricalRatio <= 0 || e.CategoricalRatio > 1:
		return errors.ConfigInvalid("engine.categorical_ratio must be in (0, 1]")
	case e.MaxCorrelationColumns < 2:
		return errors.ConfigInvalid("engine.max_correlation_columns must be at least 2")
	case e.TopPairs < 1:
		return errors.ConfigInvalid("engine.top_pairs must be at least 1")
	case e.AnomalyThreshold <= 0:
		return errors.ConfigInvalid("engine.anomaly_threshold must be positive")
	case e.ForecastHorizon < 1:
		return errors.ConfigInvalid("engine.forecast_horizon must be at least 1")
	case e.MovingAverageWindow < 1:
		return errors.ConfigInvalid("engine.moving_average_window must be at least 1")
	case e.SmoothingAlpha <= 0 || e.SmoothingAlpha >= 1:
		return errors.ConfigInvalid("engine.smoothing_alpha must be in (0, 1)")
	case e.SeasonalPeriod < 2:
		return errors.ConfigInvalid("engine.seasonal_period must be at least 2")
	case e.Seasonality != string(forecast.SeasonalityAdditive) && e.Seasonality != string(forecast.SeasonalityMultiplicative):
		return errors.ConfigInvalid("engine.seasonality must be additive or multiplicative")
	case e.MaxConcurrentAnalyses < 1:
		return errors.ConfigInvalid("engine.max_concurrent_analyses must be at least 1")
	case e.MaxClusters < 2:
		return errors.ConfigInvalid("engine.max_clusters must be at least 2")
	case e.MaxGroupLevels < 2:
		return errors.ConfigInvalid("engine.max_group_levels must be at least 2")
	case c.Server.Port < 1 || c.Server.Port > 65535:
		return errors.ConfigInvalid("server.port must be a valid TCP port")
	}
	return nil
}

// DatasetOptions returns the schema inference settings
func (e EngineConfig) DatasetOptions() dataset.Options {
	opts := dataset.DefaultOptions()
	opts.SampleSize = e.SampleSize
	opts.CategoricalRatio = e.CategoricalRatio
	return opts
}

// StatsConfig returns the correlation and regression settings
func (e EngineConfig) StatsConfig() engine.Config {
	cfg := engine.DefaultConfig()
	cfg.MaxColumns = e.MaxCorrelationColumns
	cfg.TopPairs = e.TopPairs
	cfg.Workers = e.Workers
	return cfg
}

// ForecastConfig returns the strategy parameters
func (e EngineConfig) ForecastConfig() forecast.Config {
	cfg := forecast.DefaultConfig()
	cfg.MovingAverageWindow = e.MovingAverageWindow
	cfg.SmoothingAlpha = e.SmoothingAlpha
	cfg.HoltWinters.Period = e.SeasonalPeriod
	cfg.HoltWinters.Seasonality = forecast.Seasonality(e.Seasonality)
	return cfg
}
