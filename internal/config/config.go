// Package config loads the YAML configuration that selects and
// parameterizes a storage.Adapter backend, trimmed from the teacher pack's
// much larger server/storage/commit-log/memtable/sstable/cache/gossip
// split down to what this module's backends actually take.
package config

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/trinitylake/trinitylake-go/storage"
	"github.com/trinitylake/trinitylake-go/storage/localfs"
	"github.com/trinitylake/trinitylake-go/storage/memorystore"
	"github.com/trinitylake/trinitylake-go/storage/s3"
)

// BackendKind names which storage.Adapter implementation to construct.
type BackendKind string

const (
	BackendMemory BackendKind = "memory"
	BackendLocal  BackendKind = "local"
	BackendS3     BackendKind = "s3"
)

// Config is the complete configuration for embedding the tree engine.
type Config struct {
	Lakehouse LakehouseConfig `yaml:"lakehouse"`
	Storage   StorageConfig   `yaml:"storage"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Logging   LoggingConfig   `yaml:"logging"`
	Ops       OpsConfig       `yaml:"ops"`
}

// LakehouseConfig names the lakehouse this engine instance serves.
type LakehouseConfig struct {
	Name string `yaml:"name"`
}

// StorageConfig selects and parameterizes one storage.Adapter backend.
type StorageConfig struct {
	Backend BackendKind `yaml:"backend"`
	Local   LocalConfig `yaml:"local"`
	S3      S3Config    `yaml:"s3"`
}

// LocalConfig parameterizes storage/localfs.
type LocalConfig struct {
	DataDir                 string  `yaml:"data_dir"`
	CircuitBreakerThreshold float64 `yaml:"circuit_breaker_threshold"`
}

// S3Config parameterizes storage/s3.
type S3Config struct {
	Bucket          string `yaml:"bucket"`
	Prefix          string `yaml:"prefix"`
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	UsePathStyle    bool   `yaml:"use_path_style"`
}

// MetricsConfig controls whether Prometheus collectors are registered.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// LoggingConfig controls the injected zap logger's level/encoding.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// OpsConfig controls the optional /metrics, /health, /ready HTTP server.
// Addr empty means the ops server is not started.
type OpsConfig struct {
	Addr string `yaml:"addr"`
}

// Load reads and validates configuration from a YAML file.
func Load(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	setDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func setDefaults(cfg *Config) {
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = BackendMemory
	}
	if cfg.Storage.Local.DataDir == "" {
		cfg.Storage.Local.DataDir = "/var/lib/trinitylake"
	}
	if cfg.Storage.Local.CircuitBreakerThreshold == 0 {
		cfg.Storage.Local.CircuitBreakerThreshold = 95.0
	}
	if cfg.Storage.S3.Region == "" {
		cfg.Storage.S3.Region = "us-east-1"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

// Validate checks the configuration for internal consistency.
func (c *Config) Validate() error {
	if c.Lakehouse.Name == "" {
		return fmt.Errorf("lakehouse.name is required")
	}
	switch c.Storage.Backend {
	case BackendMemory, BackendLocal, BackendS3:
	default:
		return fmt.Errorf("storage.backend must be one of memory, local, s3, got %q", c.Storage.Backend)
	}
	if c.Storage.Backend == BackendLocal && c.Storage.Local.DataDir == "" {
		return fmt.Errorf("storage.local.data_dir is required for the local backend")
	}
	if c.Storage.Backend == BackendS3 && c.Storage.S3.Bucket == "" {
		return fmt.Errorf("storage.s3.bucket is required for the s3 backend")
	}
	return nil
}

// Build constructs the storage.Adapter cfg.Storage selects, parameterized
// the way each backend's own Config expects. logger is passed through to
// backends that log (currently storage/localfs); a nil logger falls back
// to each backend's own zap.NewNop() default.
func Build(ctx context.Context, cfg *Config, logger *zap.Logger) (storage.Adapter, error) {
	switch cfg.Storage.Backend {
	case BackendMemory:
		return memorystore.New(), nil

	case BackendLocal:
		return localfs.New(
			cfg.Storage.Local.DataDir,
			localfs.WithLogger(logger),
			localfs.WithCircuitBreaker(cfg.Storage.Local.CircuitBreakerThreshold),
		)

	case BackendS3:
		return s3.New(ctx, s3.Config{
			Bucket:          cfg.Storage.S3.Bucket,
			Prefix:          cfg.Storage.S3.Prefix,
			Region:          cfg.Storage.S3.Region,
			Endpoint:        cfg.Storage.S3.Endpoint,
			AccessKeyID:     cfg.Storage.S3.AccessKeyID,
			SecretAccessKey: cfg.Storage.S3.SecretAccessKey,
			UsePathStyle:    cfg.Storage.S3.UsePathStyle,
		})

	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}
