package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Simulation SimulationConfig `yaml:"simulation" mapstructure:"simulation"`
	Filter     FilterConfig     `yaml:"filter" mapstructure:"filter"`
	Dataset    DatasetConfig    `yaml:"dataset" mapstructure:"dataset"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
	Metrics    MetricsConfig    `yaml:"metrics" mapstructure:"metrics"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port        int   `yaml:"port" mapstructure:"port"`
	MaxUploadMB int64 `yaml:"max_upload_mb" mapstructure:"max_upload_mb"`
}

// SimulationConfig holds the defaults applied to runs that leave a
// parameter unset.
type SimulationConfig struct {
	RadiusKM    float64 `yaml:"radius_km" mapstructure:"radius_km"`
	Mode        string  `yaml:"mode" mapstructure:"mode"`
	Distance    string  `yaml:"distance" mapstructure:"distance"`
	Workers     int     `yaml:"workers" mapstructure:"workers"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// Timeout returns TimeoutSecs as a duration; zero disables the bound.
func (s SimulationConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSecs) * time.Second
}

// FilterConfig configures filter option lists.
type FilterConfig struct {
	Cascade bool `yaml:"cascade" mapstructure:"cascade"`
}

// DatasetConfig configures dataset loading.
type DatasetConfig struct {
	ReclassifyCustomers bool `yaml:"reclassify_customers" mapstructure:"reclassify_customers"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// MetricsConfig toggles the /metrics endpoint and run instrumentation.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("COVERAGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("server.port", 9595)
	v.SetDefault("server.max_upload_mb", 64)
	v.SetDefault("simulation.radius_km", 5.0)
	v.SetDefault("simulation.mode", "lenient")
	v.SetDefault("simulation.distance", "haversine")
	v.SetDefault("simulation.workers", 0)
	v.SetDefault("simulation.timeout_secs", 30)
	v.SetDefault("filter.cascade", true)
	v.SetDefault("dataset.reclassify_customers", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("metrics.enabled", true)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
