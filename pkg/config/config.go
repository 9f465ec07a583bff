// Package config provides configuration management for LexDB.
//
// This package has no I/O dependencies (no file operations, no network
// calls). Loading from files, environment and flags happens in
// internal/ioconfig.
//
// # Configuration Sources
//
// Precedence (highest to lowest): CLI flags > env vars > config.yaml > defaults
//
// # Environment Variables
//
// Use the LEXDB_ prefix with underscores for nesting:
//
//	LEXDB_DATABASE_HOST=localhost
//	LEXDB_DATABASE_PORT=5432
//	LEXDB_PIPELINE_NUM_CLEANERS=8
//	LEXDB_LOG_LEVEL=debug
package config

import (
	"fmt"
	"net/url"
)

// Config represents the complete LexDB configuration.
type Config struct {
	// Database contains PostgreSQL connection settings.
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`

	// Pipeline contains batch sizes, worker counts and queue capacities
	// for the transform pipeline.
	Pipeline PipelineConfig `mapstructure:"pipeline" yaml:"pipeline"`

	// Embedding configures the embedding model endpoint.
	Embedding EmbeddingConfig `mapstructure:"embedding" yaml:"embedding"`

	// Cache configures the Redis embedding cache.
	Cache CacheConfig `mapstructure:"cache" yaml:"cache"`

	Log LogConfig `mapstructure:"log" yaml:"log"`
}

// DatabaseConfig contains PostgreSQL connection parameters.
type DatabaseConfig struct {
	// Host is the PostgreSQL server hostname or IP address.
	Host string `mapstructure:"host" yaml:"host"`

	// Port is the PostgreSQL server port number.
	Port int `mapstructure:"port" yaml:"port"`

	// User is the PostgreSQL database username.
	User string `mapstructure:"user" yaml:"user"`

	// Password is the PostgreSQL database password.
	Password string `mapstructure:"password" yaml:"password"`

	// Database is the PostgreSQL database name to connect to.
	Database string `mapstructure:"database" yaml:"database"`

	// SSLMode specifies the SSL connection mode.
	// Valid values: "disable", "require", "verify-ca", "verify-full"
	SSLMode string `mapstructure:"ssl_mode" yaml:"ssl_mode"`

	// MaxConnections caps the pgx pool size. The pipeline holds one
	// connection per writer plus one for the reader; the default leaves
	// headroom for ad-hoc queries.
	MaxConnections int `mapstructure:"max_connections" yaml:"max_connections"`
}

// DSN returns the PostgreSQL connection string for this configuration.
// The password is URL-escaped, so generated credentials with special
// characters work unchanged.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User,
		url.QueryEscape(d.Password),
		d.Host,
		d.Port,
		d.Database,
		d.SSLMode,
	)
}

// PipelineConfig contains settings for the transform pipeline.
type PipelineConfig struct {
	// DBFetchBatch is the number of raw rows the reader pulls per page.
	DBFetchBatch int `mapstructure:"db_fetch_batch" yaml:"db_fetch_batch"`

	// EmbeddingBatch is the sub-batch size sent to the embedding model.
	EmbeddingBatch int `mapstructure:"embedding_batch" yaml:"embedding_batch"`

	// DBWriteBatch is the number of records a writer buffers before
	// flushing to the database.
	DBWriteBatch int `mapstructure:"db_write_batch" yaml:"db_write_batch"`

	// NumCleaners is the number of concurrent cleaning workers.
	NumCleaners int `mapstructure:"num_cleaners" yaml:"num_cleaners"`

	// NumEmbedders is the number of concurrent embedding workers.
	// More than one only helps when the model server batches internally.
	NumEmbedders int `mapstructure:"num_embedders" yaml:"num_embedders"`

	// NumWriters is the number of concurrent database writers.
	NumWriters int `mapstructure:"num_writers" yaml:"num_writers"`

	// RawQueueSize, CleanedQueueSize and EmbeddedQueueSize bound the
	// three stage-coupling channels, in batches.
	RawQueueSize      int `mapstructure:"raw_queue_size" yaml:"raw_queue_size"`
	CleanedQueueSize  int `mapstructure:"cleaned_queue_size" yaml:"cleaned_queue_size"`
	EmbeddedQueueSize int `mapstructure:"embedded_queue_size" yaml:"embedded_queue_size"`

	// MinDefinitionLength is the quality gate's minimum definition
	// length in runes.
	MinDefinitionLength int `mapstructure:"min_definition_length" yaml:"min_definition_length"`

	// SkipDuplicates enables the per-writer (headword, language)
	// dedup set. The id-keyed upsert remains the authoritative dedup.
	SkipDuplicates bool `mapstructure:"skip_duplicates" yaml:"skip_duplicates"`

	// TrackProvenance persists transform steps to the transform log.
	TrackProvenance bool `mapstructure:"track_provenance" yaml:"track_provenance"`
}

// EmbeddingConfig contains embedding model service settings.
type EmbeddingConfig struct {
	// URL is the endpoint of the embedding HTTP service.
	URL string `mapstructure:"url" yaml:"url"`

	// Model is the model name passed to the service.
	Model string `mapstructure:"model" yaml:"model"`

	// Dimension is the expected vector dimension D. Every stored
	// embedding and every concept centroid has exactly this length.
	Dimension int `mapstructure:"dimension" yaml:"dimension"`

	// TimeoutSec bounds a single model call.
	TimeoutSec int `mapstructure:"timeout_sec" yaml:"timeout_sec"`
}

// CacheConfig contains Redis embedding cache settings.
type CacheConfig struct {
	// Enabled turns the cache on. When Redis is unreachable the
	// pipeline degrades to direct model calls with a single warning.
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Addr is the Redis host:port.
	Addr string `mapstructure:"addr" yaml:"addr"`

	// DB is the Redis logical database number.
	DB int `mapstructure:"db" yaml:"db"`

	// TTLSec is the expiry of cached vectors in seconds.
	TTLSec int `mapstructure:"ttl_sec" yaml:"ttl_sec"`

	// KeyVersion is baked into cache keys; bump it to invalidate all
	// cached vectors after a model change.
	KeyVersion string `mapstructure:"key_version" yaml:"key_version"`
}

// LogConfig provides typical settings for application logs.
type LogConfig struct {
	// Format can be 'json' or 'text'.
	Format string `mapstructure:"format" yaml:"format"`
	// Level of logging: 'error', 'warn', 'info', 'debug'
	Level string `mapstructure:"level" yaml:"level"`
	// Destination is 'stderr' or 'stdout'.
	Destination string `mapstructure:"destination" yaml:"destination"`
}

// New creates a Config with sensible default values.
// The returned config is always valid and ready to use.
func New() *Config {
	res := &Config{
		Database: DatabaseConfig{
			Host:           "localhost",
			Port:           5432,
			User:           "postgres",
			Password:       "postgres",
			Database:       "lexdb",
			SSLMode:        "disable",
			MaxConnections: 10,
		},
		Pipeline: PipelineConfig{
			DBFetchBatch:        5_000,
			EmbeddingBatch:      512,
			DBWriteBatch:        10_000,
			NumCleaners:         4,
			NumEmbedders:        1,
			NumWriters:          2,
			RawQueueSize:        10,
			CleanedQueueSize:    10,
			EmbeddedQueueSize:   5,
			MinDefinitionLength: 5,
			SkipDuplicates:      true,
		},
		Embedding: EmbeddingConfig{
			URL:        "http://localhost:8756/embed",
			Model:      "paraphrase-multilingual-MiniLM-L12-v2",
			Dimension:  384,
			TimeoutSec: 120,
		},
		Cache: CacheConfig{
			Enabled:    true,
			Addr:       "localhost:6379",
			DB:         0,
			TTLSec:     7 * 24 * 3600,
			KeyVersion: "v1",
		},
		Log: LogConfig{
			Format:      "text",
			Level:       "info",
			Destination: "stderr",
		},
	}

	return res
}

// Defaults is an alias for New, used by the loader to seed viper.
func Defaults() *Config {
	return New()
}

// MergeWithDefaults fills zero-valued fields with defaults, so a partial
// config file yields a usable configuration.
func (c *Config) MergeWithDefaults() {
	d := New()

	if c.Database.Host == "" {
		c.Database.Host = d.Database.Host
	}
	if c.Database.Port == 0 {
		c.Database.Port = d.Database.Port
	}
	if c.Database.User == "" {
		c.Database.User = d.Database.User
	}
	if c.Database.Database == "" {
		c.Database.Database = d.Database.Database
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = d.Database.SSLMode
	}
	if c.Database.MaxConnections == 0 {
		c.Database.MaxConnections = d.Database.MaxConnections
	}

	if c.Pipeline.DBFetchBatch == 0 {
		c.Pipeline.DBFetchBatch = d.Pipeline.DBFetchBatch
	}
	if c.Pipeline.EmbeddingBatch == 0 {
		c.Pipeline.EmbeddingBatch = d.Pipeline.EmbeddingBatch
	}
	if c.Pipeline.DBWriteBatch == 0 {
		c.Pipeline.DBWriteBatch = d.Pipeline.DBWriteBatch
	}
	if c.Pipeline.NumCleaners == 0 {
		c.Pipeline.NumCleaners = d.Pipeline.NumCleaners
	}
	if c.Pipeline.NumEmbedders == 0 {
		c.Pipeline.NumEmbedders = d.Pipeline.NumEmbedders
	}
	if c.Pipeline.NumWriters == 0 {
		c.Pipeline.NumWriters = d.Pipeline.NumWriters
	}
	if c.Pipeline.RawQueueSize == 0 {
		c.Pipeline.RawQueueSize = d.Pipeline.RawQueueSize
	}
	if c.Pipeline.CleanedQueueSize == 0 {
		c.Pipeline.CleanedQueueSize = d.Pipeline.CleanedQueueSize
	}
	if c.Pipeline.EmbeddedQueueSize == 0 {
		c.Pipeline.EmbeddedQueueSize = d.Pipeline.EmbeddedQueueSize
	}
	if c.Pipeline.MinDefinitionLength == 0 {
		c.Pipeline.MinDefinitionLength = d.Pipeline.MinDefinitionLength
	}

	if c.Embedding.URL == "" {
		c.Embedding.URL = d.Embedding.URL
	}
	if c.Embedding.Model == "" {
		c.Embedding.Model = d.Embedding.Model
	}
	if c.Embedding.Dimension == 0 {
		c.Embedding.Dimension = d.Embedding.Dimension
	}
	if c.Embedding.TimeoutSec == 0 {
		c.Embedding.TimeoutSec = d.Embedding.TimeoutSec
	}

	if c.Cache.Addr == "" {
		c.Cache.Addr = d.Cache.Addr
	}
	if c.Cache.TTLSec == 0 {
		c.Cache.TTLSec = d.Cache.TTLSec
	}
	if c.Cache.KeyVersion == "" {
		c.Cache.KeyVersion = d.Cache.KeyVersion
	}

	if c.Log.Format == "" {
		c.Log.Format = d.Log.Format
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Log.Destination == "" {
		c.Log.Destination = d.Log.Destination
	}
}

// Validate checks the configuration for values that cannot work.
func (c *Config) Validate() error {
	if c.Database.Host == "" {
		return requiredError("database.host")
	}
	if c.Database.Port <= 0 || c.Database.Port > 65535 {
		return rangeError("database.port", c.Database.Port)
	}
	if c.Database.Database == "" {
		return requiredError("database.database")
	}
	switch c.Database.SSLMode {
	case "disable", "require", "verify-ca", "verify-full":
	default:
		return valueError("database.ssl_mode", c.Database.SSLMode)
	}

	if c.Pipeline.DBFetchBatch <= 0 {
		return rangeError("pipeline.db_fetch_batch", c.Pipeline.DBFetchBatch)
	}
	if c.Pipeline.EmbeddingBatch <= 0 {
		return rangeError("pipeline.embedding_batch", c.Pipeline.EmbeddingBatch)
	}
	if c.Pipeline.DBWriteBatch <= 0 {
		return rangeError("pipeline.db_write_batch", c.Pipeline.DBWriteBatch)
	}
	if c.Pipeline.NumCleaners <= 0 {
		return rangeError("pipeline.num_cleaners", c.Pipeline.NumCleaners)
	}
	if c.Pipeline.NumEmbedders <= 0 {
		return rangeError("pipeline.num_embedders", c.Pipeline.NumEmbedders)
	}
	if c.Pipeline.NumWriters <= 0 {
		return rangeError("pipeline.num_writers", c.Pipeline.NumWriters)
	}

	if c.Embedding.Dimension <= 0 {
		return rangeError("embedding.dimension", c.Embedding.Dimension)
	}
	if c.Embedding.URL == "" {
		return requiredError("embedding.url")
	}

	return nil
}
