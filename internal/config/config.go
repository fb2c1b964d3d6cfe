// Package config loads application configuration from config.yaml and
// GEOVAR_-prefixed environment variables, with environment taking
// precedence.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ncc-airhealth/korea-geovariable/internal/db"
)

// Config holds the full application configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database" mapstructure:"database"`
	Queue    QueueConfig    `yaml:"queue" mapstructure:"queue"`
	Worker   WorkerConfig   `yaml:"worker" mapstructure:"worker"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Batch    BatchConfig    `yaml:"batch" mapstructure:"batch"`
	Loader   LoaderConfig   `yaml:"loader" mapstructure:"loader"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// DatabaseConfig configures the PostGIS connection the calculators use.
type DatabaseConfig struct {
	URL  string        `yaml:"url" mapstructure:"url"`
	Pool db.PoolConfig `yaml:"pool" mapstructure:"pool"`
}

// QueueConfig configures the job queue backend. Driver is postgres or
// sqlite; sqlite keeps the queue in a local file for batch runs.
type QueueConfig struct {
	Driver     string `yaml:"driver" mapstructure:"driver"`
	SQLitePath string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
}

// WorkerConfig configures the in-process job workers.
type WorkerConfig struct {
	Concurrency      int `yaml:"concurrency" mapstructure:"concurrency"`
	PollIntervalSecs int `yaml:"poll_interval_secs" mapstructure:"poll_interval_secs"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port   int    `yaml:"port" mapstructure:"port"`
	APIKey string `yaml:"api_key" mapstructure:"api_key"`
}

// BatchConfig configures batch calculation runs.
type BatchConfig struct {
	MaxConcurrent int    `yaml:"max_concurrent" mapstructure:"max_concurrent"`
	OutputDir     string `yaml:"output_dir" mapstructure:"output_dir"`
}

// LoaderConfig configures shapefile ingestion.
type LoaderConfig struct {
	SRID int `yaml:"srid" mapstructure:"srid"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("GEOVAR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("database.url", "")
	v.SetDefault("database.pool.max_conns", 10)
	v.SetDefault("database.pool.min_conns", 2)
	v.SetDefault("queue.driver", "postgres")
	v.SetDefault("queue.sqlite_path", "geovar_jobs.db")
	v.SetDefault("worker.concurrency", 4)
	v.SetDefault("worker.poll_interval_secs", 1)
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.api_key", "")
	v.SetDefault("batch.max_concurrent", 4)
	v.SetDefault("batch.output_dir", ".")
	v.SetDefault("loader.srid", 5179)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

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
