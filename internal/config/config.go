package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config stores all configuration for the engine.
type Config struct {
	InputFile    string `mapstructure:"INPUT_FILE"`
	OutputFile   string `mapstructure:"OUTPUT_FILE"`
	EvidenceFile string `mapstructure:"EVIDENCE_FILE"`
	CacheDir     string `mapstructure:"CACHE_DIR"`

	RateMS    int `mapstructure:"RATE_MS"`
	TimeoutMS int `mapstructure:"TIMEOUT_MS"`
	MaxPages  int `mapstructure:"MAX_PAGES"`
	Retries   int `mapstructure:"RETRIES"`
	BackoffMS int `mapstructure:"BACKOFF_MS"`

	Concurrency  int  `mapstructure:"CONCURRENCY"`
	UseSitemap   bool `mapstructure:"USE_SITEMAP"`
	StrictBlocks bool `mapstructure:"STRICT_BLOCKS"`
	HashEvidence bool `mapstructure:"HASH_EVIDENCE"`

	UserAgent    string `mapstructure:"USER_AGENT"`
	ExtraHeaders string `mapstructure:"EXTRA_HEADERS"` // "Key: Value|Key: Value"
	ExtraPaths   string `mapstructure:"EXTRA_PATHS"`   // ",/our-people,/it/contatti"

	MetricsAddr string `mapstructure:"METRICS_ADDR"`
	Quiet       bool   `mapstructure:"QUIET"`
	Verbose     bool   `mapstructure:"VERBOSE"`
}

// configKeys is every recognized option. Each one is bound explicitly:
// AutomaticEnv alone does not surface env-only keys through Unmarshal.
var configKeys = []string{
	"INPUT_FILE", "OUTPUT_FILE", "EVIDENCE_FILE", "CACHE_DIR",
	"RATE_MS", "TIMEOUT_MS", "MAX_PAGES", "RETRIES", "BACKOFF_MS",
	"CONCURRENCY", "USE_SITEMAP", "STRICT_BLOCKS", "HASH_EVIDENCE",
	"USER_AGENT", "EXTRA_HEADERS", "EXTRA_PATHS",
	"METRICS_ADDR", "QUIET", "VERBOSE",
}

// Load reads configuration from a .env file or environment variables.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")
	viper.AutomaticEnv()
	for _, key := range configKeys {
		_ = viper.BindEnv(key)
	}

	// The .env file is optional; environment variables alone are enough.
	_ = viper.ReadInConfig()

	viper.SetDefault("RATE_MS", 850)
	viper.SetDefault("TIMEOUT_MS", 12000)
	viper.SetDefault("MAX_PAGES", 16)
	viper.SetDefault("RETRIES", 3)
	viper.SetDefault("BACKOFF_MS", 600)
	viper.SetDefault("CONCURRENCY", 2)
	viper.SetDefault("USE_SITEMAP", true)
	viper.SetDefault("STRICT_BLOCKS", true)
	viper.SetDefault("HASH_EVIDENCE", false)
	viper.SetDefault("USER_AGENT", "MailsieveBot/1.0 (+https://github.com/midiakiasat/MAILSIEVE)")
	viper.SetDefault("EVIDENCE_FILE", "evidence.jsonl")

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// Floors keep a misconfigured run polite rather than failing it.
	if cfg.MaxPages < 3 {
		cfg.MaxPages = 3
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	if cfg.RateMS < 0 {
		cfg.RateMS = 0
	}
	if cfg.Retries < 0 {
		cfg.Retries = 0
	}

	return &cfg, nil
}

// Validate checks the settings that must be present before any domain is
// processed. These are the only errors that abort a run.
func (c *Config) Validate() error {
	if c.InputFile == "" {
		return fmt.Errorf("INPUT_FILE is required")
	}
	if c.OutputFile == "" {
		return fmt.Errorf("OUTPUT_FILE is required")
	}
	return nil
}

func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

func (c *Config) RateInterval() time.Duration {
	return time.Duration(c.RateMS) * time.Millisecond
}

func (c *Config) Backoff() time.Duration {
	return time.Duration(c.BackoffMS) * time.Millisecond
}

// Headers parses EXTRA_HEADERS ("Key: Value|Key: Value") into a map.
// Malformed entries are dropped.
func (c *Config) Headers() map[string]string {
	out := make(map[string]string)
	for _, pair := range strings.Split(c.ExtraHeaders, "|") {
		k, v, ok := strings.Cut(pair, ":")
		if !ok {
			continue
		}
		k, v = strings.TrimSpace(k), strings.TrimSpace(v)
		if k != "" && v != "" {
			out[k] = v
		}
	}
	return out
}

// Paths parses EXTRA_PATHS (comma-separated) into leading-slash paths.
func (c *Config) Paths() []string {
	var out []string
	for _, p := range strings.Split(c.ExtraPaths, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if !strings.HasPrefix(p, "/") {
			p = "/" + p
		}
		out = append(out, p)
	}
	return out
}
