package config

import (
	"errors"
	"fmt"

	"github.com/kjk/stockroom/codec"
	"github.com/spf13/viper"
)

const (
	// FileName is the name (without extension) of the optional config file
	FileName = "stockroom"

	keyDataDir    = "data_dir"
	keySource     = "source"
	keyCodec      = "codec"
	keyMaxItems   = "max_items"
	keySeedCount  = "seed_count"
	keyLogDir     = "log_dir"
	keyVerbose    = "verbose"
	keySummary    = "summary"
	defaultSource = "ListaItens"
)

// Config describes a single run
type Config struct {
	// directory with the source store and category stores
	DataDir string
	// name of the source store within DataDir
	// .gz, .zst or .br extension means it's compressed
	SourceName string
	// "text" or "binary", used for all stores
	Codec string
	// at most that many items are loaded from the source store
	MaxItems int
	// number of sample items written if the source store doesn't exist
	SeedCount int
	// if set, logs are also written to files in this directory
	LogDir  string
	Verbose bool
	// if true, writes summary.json to DataDir after the run
	Summary bool
}

// Default returns the configuration used when there's no config file
func Default() *Config {
	return &Config{
		DataDir:    ".",
		SourceName: defaultSource,
		Codec:      codec.Default.Name(),
		MaxItems:   500,
		SeedCount:  500,
		Summary:    true,
	}
}

// Validate returns an error if the config can't be used for a run
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is empty. For current directory, use '.'")
	}
	if c.SourceName == "" {
		return fmt.Errorf("source is empty")
	}
	if _, err := codec.ByName(c.Codec); err != nil {
		return err
	}
	if c.MaxItems < 0 || c.SeedCount < 0 {
		return fmt.Errorf("max_items (%d) and seed_count (%d) can't be negative", c.MaxItems, c.SeedCount)
	}
	return nil
}

// Load returns the default config overlaid with stockroom.yaml (or .json,
// .toml) from dir. A missing config file is not an error.
// Environment variables are not consulted.
func Load(dir string) (*Config, error) {
	def := Default()
	v := viper.New()
	v.SetDefault(keyDataDir, def.DataDir)
	v.SetDefault(keySource, def.SourceName)
	v.SetDefault(keyCodec, def.Codec)
	v.SetDefault(keyMaxItems, def.MaxItems)
	v.SetDefault(keySeedCount, def.SeedCount)
	v.SetDefault(keyLogDir, def.LogDir)
	v.SetDefault(keyVerbose, def.Verbose)
	v.SetDefault(keySummary, def.Summary)
	v.SetConfigName(FileName)
	v.AddConfigPath(dir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	c := &Config{
		DataDir:    v.GetString(keyDataDir),
		SourceName: v.GetString(keySource),
		Codec:      v.GetString(keyCodec),
		MaxItems:   v.GetInt(keyMaxItems),
		SeedCount:  v.GetInt(keySeedCount),
		LogDir:     v.GetString(keyLogDir),
		Verbose:    v.GetBool(keyVerbose),
		Summary:    v.GetBool(keySummary),
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return c, nil
}
