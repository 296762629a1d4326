// Package config loads the margin.toml configuration file. A missing
// file is not an error; every field has a usable default.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Study tunes flashcard sessions.
type Study struct {
	QueueSize           int `toml:"queue_size"`
	FetchTimeoutSeconds int `toml:"fetch_timeout_seconds"`
}

// LLM holds the definition provider connection settings. The API key
// may also come from the OPENAI_API_KEY environment variable.
type LLM struct {
	APIKey  string `toml:"api_key"`
	BaseURL string `toml:"base_url"`
	Model   string `toml:"model"`
}

// Import tunes the article fetch and the ingest pipeline.
type Import struct {
	FetchTimeoutSeconds int   `toml:"fetch_timeout_seconds"`
	MaxBodyBytes        int64 `toml:"max_body_bytes"`
	Workers             int   `toml:"workers"`
	BatchSize           int   `toml:"batch_size"`
}

// Config is the root of margin.toml.
type Config struct {
	DBPath   string `toml:"db_path"`
	Language string `toml:"language"`
	Study    Study  `toml:"study"`
	LLM      LLM    `toml:"llm"`
	Import   Import `toml:"import"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		DBPath: "margin.db",
		Study: Study{
			QueueSize:           10,
			FetchTimeoutSeconds: 15,
		},
		LLM: LLM{
			Model: "gpt-5-mini",
		},
		Import: Import{
			FetchTimeoutSeconds: 30,
			MaxBodyBytes:        10 * 1024 * 1024,
			Workers:             4,
			BatchSize:           25,
		},
	}
}

// Load reads the config at path, layering it over the defaults. A
// missing file yields the defaults; a malformed file is an error.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnv(&cfg)
			return cfg, nil
		}
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	applyEnv(&cfg)
	return cfg, cfg.validate()
}

func applyEnv(cfg *Config) {
	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
	}
}

func (c Config) validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("db_path must not be empty")
	}
	if c.Study.QueueSize <= 0 {
		return fmt.Errorf("study.queue_size must be positive")
	}
	if c.Import.MaxBodyBytes <= 0 {
		return fmt.Errorf("import.max_body_bytes must be positive")
	}
	return nil
}

// StudyFetchTimeout returns the definition fetch cap as a duration.
func (c Config) StudyFetchTimeout() time.Duration {
	return time.Duration(c.Study.FetchTimeoutSeconds) * time.Second
}

// ImportFetchTimeout returns the article fetch cap as a duration.
func (c Config) ImportFetchTimeout() time.Duration {
	return time.Duration(c.Import.FetchTimeoutSeconds) * time.Second
}

// WriteSample writes the annotated sample configuration to path,
// refusing to overwrite an existing file.
func WriteSample(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	return os.WriteFile(path, []byte(sampleConfig), 0o644)
}
