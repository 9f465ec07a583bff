// Package ioconfig loads configuration from files, environment and
// flags. This is an impure package that handles file system and flag
// operations.
package ioconfig

import (
	"fmt"
	"os"
	"strings"

	"github.com/lexgraph/lexdb/pkg/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// LoadResult contains the loaded configuration and metadata about the
// source.
type LoadResult struct {
	Config     *config.Config
	SourcePath string // path to config file used, or empty
	Source     string // "file", "defaults", or "defaults+env"
}

// Load reads configuration from a YAML file and returns a validated
// Config with source info. If configPath is empty the default location
// ~/.config/lexdb/config.yaml is tried.
//
// Precedence: flags > env vars > config file > defaults.
func Load(configPath string) (*LoadResult, error) {
	v := viper.New()

	v.SetConfigType("yaml")

	v.SetEnvPrefix("LEXDB")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Defaults go in before reading the file so AutomaticEnv knows
	// which keys to check for env vars.
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		defaultPath, err := GetDefaultConfigPath()
		if err == nil {
			if _, statErr := os.Stat(defaultPath); statErr == nil {
				v.SetConfigFile(defaultPath)
			}
		}
	}

	configFileRead := false
	usedConfigPath := ""

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			if configPath != "" {
				return nil, fmt.Errorf("config file not found: %s", configPath)
			}
		} else if configPath != "" || v.ConfigFileUsed() != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		configFileRead = true
		usedConfigPath = v.ConfigFileUsed()
	}

	var cfg config.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.MergeWithDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	source := "defaults"
	if configFileRead {
		source = "file"
	} else if hasEnvVars() {
		source = "defaults+env"
	}

	return &LoadResult{
		Config:     &cfg,
		SourcePath: usedConfigPath,
		Source:     source,
	}, nil
}

func setDefaults(v *viper.Viper) {
	d := config.Defaults()

	v.SetDefault("database.host", d.Database.Host)
	v.SetDefault("database.port", d.Database.Port)
	v.SetDefault("database.user", d.Database.User)
	v.SetDefault("database.password", d.Database.Password)
	v.SetDefault("database.database", d.Database.Database)
	v.SetDefault("database.ssl_mode", d.Database.SSLMode)
	v.SetDefault("database.max_connections", d.Database.MaxConnections)

	v.SetDefault("pipeline.db_fetch_batch", d.Pipeline.DBFetchBatch)
	v.SetDefault("pipeline.embedding_batch", d.Pipeline.EmbeddingBatch)
	v.SetDefault("pipeline.db_write_batch", d.Pipeline.DBWriteBatch)
	v.SetDefault("pipeline.num_cleaners", d.Pipeline.NumCleaners)
	v.SetDefault("pipeline.num_embedders", d.Pipeline.NumEmbedders)
	v.SetDefault("pipeline.num_writers", d.Pipeline.NumWriters)
	v.SetDefault("pipeline.raw_queue_size", d.Pipeline.RawQueueSize)
	v.SetDefault("pipeline.cleaned_queue_size", d.Pipeline.CleanedQueueSize)
	v.SetDefault("pipeline.embedded_queue_size", d.Pipeline.EmbeddedQueueSize)
	v.SetDefault(
		"pipeline.min_definition_length", d.Pipeline.MinDefinitionLength)
	v.SetDefault("pipeline.skip_duplicates", d.Pipeline.SkipDuplicates)
	v.SetDefault("pipeline.track_provenance", d.Pipeline.TrackProvenance)

	v.SetDefault("embedding.url", d.Embedding.URL)
	v.SetDefault("embedding.model", d.Embedding.Model)
	v.SetDefault("embedding.dimension", d.Embedding.Dimension)
	v.SetDefault("embedding.timeout_sec", d.Embedding.TimeoutSec)

	v.SetDefault("cache.enabled", d.Cache.Enabled)
	v.SetDefault("cache.addr", d.Cache.Addr)
	v.SetDefault("cache.db", d.Cache.DB)
	v.SetDefault("cache.ttl_sec", d.Cache.TTLSec)
	v.SetDefault("cache.key_version", d.Cache.KeyVersion)

	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.destination", d.Log.Destination)
}

// hasEnvVars checks if any LEXDB_* environment variables are set.
func hasEnvVars() bool {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, "LEXDB_") {
			return true
		}
	}
	return false
}

// BindFlags overrides config values with flags that were set on the
// command. CLI flags take precedence over config file values.
func BindFlags(cmd *cobra.Command, cfg *config.Config) (*config.Config, error) {
	v := viper.New()

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, fmt.Errorf("failed to bind flags: %w", err)
	}

	if v.IsSet("host") {
		cfg.Database.Host = v.GetString("host")
	}
	if v.IsSet("port") {
		cfg.Database.Port = v.GetInt("port")
	}
	if v.IsSet("user") {
		cfg.Database.User = v.GetString("user")
	}
	if v.IsSet("password") {
		cfg.Database.Password = v.GetString("password")
	}
	if v.IsSet("database") {
		cfg.Database.Database = v.GetString("database")
	}
	if v.IsSet("ssl-mode") {
		cfg.Database.SSLMode = v.GetString("ssl-mode")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration after flag binding: %w", err)
	}

	return cfg, nil
}
