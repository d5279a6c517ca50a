package stakingd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"stakeledger/config"
)

// Duration wraps time.Duration to support YAML unmarshalling.
type Duration struct {
	time.Duration
}

// UnmarshalYAML parses human readable duration strings.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	if value == nil {
		return nil
	}
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("duration must be string")
	}
	raw := strings.TrimSpace(value.Value)
	if raw == "" {
		d.Duration = 0
		return nil
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", raw, err)
	}
	d.Duration = parsed
	return nil
}

// Config captures the runtime configuration for stakingd.
type Config struct {
	ListenAddress string `yaml:"listen"`
	// ParamsPath points at the TOML protocol parameters.
	ParamsPath    string          `yaml:"params"`
	DataDir       string          `yaml:"data_dir"`
	StorageEngine string          `yaml:"storage_engine"`
	BlockTime     Duration        `yaml:"block_time"`
	Journal       JournalConfig   `yaml:"journal"`
	Admin         AdminConfig     `yaml:"admin"`
	RateLimit     RateLimitConfig `yaml:"rate_limit"`
	Keeper        KeeperConfig    `yaml:"keeper"`
	Log           LogConfig       `yaml:"log"`
	Telemetry     TelemetryConfig `yaml:"telemetry"`
}

// JournalConfig selects the SQL journal backend.
type JournalConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// AdminConfig secures the pause/resume routes with HMAC-signed JWTs.
type AdminConfig struct {
	JWTSecret    string   `yaml:"jwt_secret"`
	JWTSecretEnv string   `yaml:"jwt_secret_env"`
	Issuer       string   `yaml:"issuer"`
	Audience     string   `yaml:"audience"`
	ClockSkew    Duration `yaml:"clock_skew"`
}

// RateLimitConfig bounds requests per client.
type RateLimitConfig struct {
	RequestsPerMinute float64 `yaml:"requests_per_minute"`
	Burst             int     `yaml:"burst"`
}

// KeeperConfig drives the optional trigger/emit loop.
type KeeperConfig struct {
	Enabled  bool     `yaml:"enabled"`
	Interval Duration `yaml:"interval"`
	Address  string   `yaml:"address"`
}

// LogConfig tunes structured logging.
type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// TelemetryConfig enables OTLP export.
type TelemetryConfig struct {
	Enabled     bool    `yaml:"enabled"`
	Endpoint    string  `yaml:"endpoint"`
	Insecure    bool    `yaml:"insecure"`
	SampleRatio float64 `yaml:"sample_ratio"`
}

// LoadConfig reads configuration from the supplied path.
func LoadConfig(path string) (Config, error) {
	cfg := Config{}
	file, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()
	dec := yaml.NewDecoder(file)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("decode config: %w", err)
	}
	applyDefaults(&cfg)
	if err := cfg.Admin.normalise(); err != nil {
		return cfg, fmt.Errorf("admin security: %w", err)
	}
	if err := validateConfig(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.ListenAddress == "" {
		cfg.ListenAddress = ":7090"
	}
	if cfg.ParamsPath == "" {
		cfg.ParamsPath = "services/stakingd/params.toml"
	}
	cfg.StorageEngine = strings.ToLower(strings.TrimSpace(cfg.StorageEngine))
	if cfg.StorageEngine == "" {
		if strings.TrimSpace(cfg.DataDir) == "" {
			cfg.StorageEngine = "memory"
		} else {
			cfg.StorageEngine = "leveldb"
		}
	}
	if cfg.BlockTime.Duration == 0 {
		cfg.BlockTime.Duration = 5 * time.Second
	}
	if cfg.Journal.Driver == "" {
		cfg.Journal.Driver = "sqlite"
	}
	if cfg.Journal.DSN == "" && cfg.Journal.Driver == "sqlite" {
		cfg.Journal.DSN = "file::memory:?cache=shared"
	}
	if cfg.Admin.Issuer == "" {
		cfg.Admin.Issuer = "stakingd"
	}
	if cfg.Admin.ClockSkew.Duration == 0 {
		cfg.Admin.ClockSkew.Duration = 2 * time.Minute
	}
	if cfg.RateLimit.RequestsPerMinute == 0 {
		cfg.RateLimit.RequestsPerMinute = 600
	}
	if cfg.RateLimit.Burst == 0 {
		cfg.RateLimit.Burst = 60
	}
	if cfg.Keeper.Interval.Duration == 0 {
		cfg.Keeper.Interval.Duration = 30 * time.Second
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}

func (a *AdminConfig) normalise() error {
	a.JWTSecret = strings.TrimSpace(a.JWTSecret)
	if env := strings.TrimSpace(a.JWTSecretEnv); env != "" {
		value := strings.TrimSpace(os.Getenv(env))
		if value == "" {
			return fmt.Errorf("environment variable %s is empty", env)
		}
		a.JWTSecret = value
	}
	return nil
}

func validateConfig(cfg Config) error {
	switch cfg.StorageEngine {
	case "memory":
	case "leveldb", "bolt":
		if strings.TrimSpace(cfg.DataDir) == "" {
			return fmt.Errorf("data_dir required for storage engine %s", cfg.StorageEngine)
		}
	default:
		return fmt.Errorf("unknown storage engine %q", cfg.StorageEngine)
	}
	switch cfg.Journal.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unknown journal driver %q", cfg.Journal.Driver)
	}
	if strings.TrimSpace(cfg.Journal.DSN) == "" {
		return fmt.Errorf("journal dsn must be configured")
	}
	if len(cfg.Admin.JWTSecret) < 32 {
		return fmt.Errorf("admin jwt secret must be at least 32 bytes")
	}
	if cfg.RateLimit.RequestsPerMinute < 0 || cfg.RateLimit.Burst < 0 {
		return fmt.Errorf("rate limit must not be negative")
	}
	if cfg.BlockTime.Duration < time.Second {
		return fmt.Errorf("block_time must be at least 1s")
	}
	if cfg.Keeper.Enabled {
		if _, err := config.ParseAddress(cfg.Keeper.Address); err != nil {
			return fmt.Errorf("keeper address: %w", err)
		}
		if cfg.Keeper.Interval.Duration < time.Second {
			return fmt.Errorf("keeper interval must be at least 1s")
		}
	}
	if r := cfg.Telemetry.SampleRatio; r < 0 || r > 1 {
		return fmt.Errorf("telemetry sample_ratio must be within [0,1]")
	}
	return nil
}
