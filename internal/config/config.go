package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/matheus3301/inbox/internal/gateway"
	"github.com/matheus3301/inbox/internal/reveal"
)

// Config represents the global ~/.inbox/config.toml.
type Config struct {
	DefaultProfile string  `toml:"default_profile"`
	Gateway        Gateway `toml:"gateway"`
	Cache          Cache   `toml:"cache"`
	Reveal         Reveal  `toml:"reveal"`
	Inbox          Inbox   `toml:"inbox"`
}

// Gateway selects the text-generation backend.
type Gateway struct {
	// Provider is gemini, openai or canned.
	Provider string `toml:"provider"`
	Model    string `toml:"model"`
	// APIKeyEnv names the environment variable holding the API key.
	APIKeyEnv   string   `toml:"api_key_env,omitempty"`
	BaseURL     string   `toml:"base_url,omitempty"`
	Timeout     Duration `toml:"timeout"`
	CannedDelay Duration `toml:"canned_delay"`
}

// Cache selects the local cache backend.
type Cache struct {
	// Backend is sqlite, redis or memory.
	Backend     string   `toml:"backend"`
	RedisAddr   string   `toml:"redis_addr,omitempty"`
	RedisDB     int      `toml:"redis_db"`
	RedisPrefix string   `toml:"redis_prefix,omitempty"`
	RedisTTL    Duration `toml:"redis_ttl"`
}

// Reveal tunes answer animation in the console.
type Reveal struct {
	Granularity  string   `toml:"granularity"`
	PerChar      Duration `toml:"per_char"`
	PerParagraph Duration `toml:"per_paragraph"`
	Ceiling      Duration `toml:"ceiling"`
	MinStep      Duration `toml:"min_step"`
}

// Inbox configures the conversation store.
type Inbox struct {
	// SeedFile replaces the built-in seed conversations when set.
	SeedFile string `toml:"seed_file,omitempty"`
}

// Duration is a time.Duration written as a string such as "30s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Gateway: Gateway{
			Provider: "gemini",
			Model:    gateway.DefaultGeminiModel,
			Timeout:  Duration{30 * time.Second},
		},
		Cache: Cache{
			Backend:     "sqlite",
			RedisAddr:   "localhost:6379",
			RedisPrefix: "inbox:",
		},
		Reveal: Reveal{
			Granularity:  string(reveal.Character),
			PerChar:      Duration{reveal.DefaultPacing.PerChar},
			PerParagraph: Duration{reveal.DefaultPacing.PerParagraph},
			Ceiling:      Duration{reveal.DefaultPacing.Ceiling},
			MinStep:      Duration{reveal.DefaultPacing.MinStep},
		},
	}
}

// Load reads config from the given path on top of the defaults. Returns an
// error if the file is missing.
func Load(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault is Load, except that a missing file yields the defaults.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Save writes config to the given path, creating parent dirs as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	encErr := toml.NewEncoder(f).Encode(cfg)
	if closeErr := f.Close(); closeErr != nil && encErr == nil {
		return closeErr
	}
	return encErr
}

// Validate rejects unknown enum values and negative durations.
func (c *Config) Validate() error {
	switch c.Gateway.Provider {
	case "gemini", "openai", "canned":
	default:
		return fmt.Errorf("gateway.provider: unknown provider %q", c.Gateway.Provider)
	}
	switch c.Cache.Backend {
	case "sqlite", "redis", "memory":
	default:
		return fmt.Errorf("cache.backend: unknown backend %q", c.Cache.Backend)
	}
	if _, ok := reveal.ParseGranularity(c.Reveal.Granularity); !ok {
		return fmt.Errorf("reveal.granularity: unknown granularity %q", c.Reveal.Granularity)
	}
	for name, d := range map[string]Duration{
		"gateway.timeout":      c.Gateway.Timeout,
		"gateway.canned_delay": c.Gateway.CannedDelay,
		"cache.redis_ttl":      c.Cache.RedisTTL,
		"reveal.per_char":      c.Reveal.PerChar,
		"reveal.per_paragraph": c.Reveal.PerParagraph,
		"reveal.ceiling":       c.Reveal.Ceiling,
		"reveal.min_step":      c.Reveal.MinStep,
	} {
		if d.Duration < 0 {
			return fmt.Errorf("%s: negative duration %s", name, d)
		}
	}
	return nil
}

// KeyEnv is the environment variable the API key is read from.
func (g Gateway) KeyEnv() string {
	if g.APIKeyEnv != "" {
		return g.APIKeyEnv
	}
	switch g.Provider {
	case "openai":
		return "OPENAI_API_KEY"
	default:
		return "GEMINI_API_KEY"
	}
}

// ClientConfig resolves the gateway settings, reading the API key from the
// environment.
func (g Gateway) ClientConfig() gateway.Config {
	model := g.Model
	if g.Provider == "openai" && model == gateway.DefaultGeminiModel {
		model = gateway.DefaultOpenAIModel
	}
	return gateway.Config{
		Provider:    g.Provider,
		Model:       model,
		APIKey:      os.Getenv(g.KeyEnv()),
		BaseURL:     g.BaseURL,
		Timeout:     g.Timeout.Duration,
		CannedDelay: g.CannedDelay.Duration,
	}
}

// Pacing converts the reveal settings.
func (r Reveal) Pacing() reveal.Pacing {
	return reveal.Pacing{
		PerChar:      r.PerChar.Duration,
		PerParagraph: r.PerParagraph.Duration,
		Ceiling:      r.Ceiling.Duration,
		MinStep:      r.MinStep.Duration,
	}
}
