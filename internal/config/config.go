package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config aggregates runtime configuration for the server and CLI.
type Config struct {
	PokeAPI   PokeAPIConfig   `yaml:"pokeapi"`
	Cache     CacheConfig     `yaml:"cache"`
	Limits    LimitsConfig    `yaml:"limits"`
	HTTP      HTTPConfig      `yaml:"http"`
	Favorites FavoritesConfig `yaml:"favorites"`
	Log       LogConfig       `yaml:"log"`
}

// PokeAPIConfig controls the upstream client.
type PokeAPIConfig struct {
	BaseURL   string        `yaml:"baseUrl"`
	Timeout   time.Duration `yaml:"timeout"`
	UserAgent string        `yaml:"userAgent"`
	ListLimit int           `yaml:"listLimit"`
}

// CacheConfig controls the read-through cache. A zero CheckPeriod derives
// it from TTL.
type CacheConfig struct {
	TTL         time.Duration `yaml:"ttl"`
	CheckPeriod time.Duration `yaml:"checkPeriod"`
}

// LimitsConfig bounds accepted input.
type LimitsConfig struct {
	MaxNameLength int `yaml:"maxNameLength"`
	MinStat       int `yaml:"minStat"`
	MaxStat       int `yaml:"maxStat"`
}

// HTTPConfig controls the streamable HTTP transport.
type HTTPConfig struct {
	Address      string        `yaml:"address"`
	MCPPath      string        `yaml:"mcpPath"`
	APIKey       string        `yaml:"apiKey"`
	AuthHeader   string        `yaml:"authHeader"`
	RequireAuth  bool          `yaml:"requireAuth"`
	ReadTimeout  time.Duration `yaml:"readTimeout"`
	WriteTimeout time.Duration `yaml:"writeTimeout"`
}

// FavoritesConfig selects the favorites backend: "file", "valkey" or "memory".
type FavoritesConfig struct {
	Backend string       `yaml:"backend"`
	Path    string       `yaml:"path"`
	Valkey  ValkeyConfig `yaml:"valkey"`
}

type ValkeyConfig struct {
	Addr   string `yaml:"addr"`
	Prefix string `yaml:"prefix"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Load reads configuration from a YAML file and environment variables.
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadFile reads path on top of the defaults, then applies env overrides.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if err := hydrateFromFile(cfg, path); err != nil {
		return nil, err
	}
	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("POKEAPI_BASE_URL"); v != "" {
		cfg.PokeAPI.BaseURL = v
	}
	if v := os.Getenv("POKEAPI_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.PokeAPI.Timeout = parsed
		}
	}
	if v := os.Getenv("CACHE_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Cache.TTL = parsed
		}
	}
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("MCP_PATH"); v != "" {
		cfg.HTTP.MCPPath = v
	}
	if v := strings.TrimSpace(os.Getenv("MCP_API_KEY")); v != "" {
		cfg.HTTP.APIKey = v
	}
	if v := os.Getenv("FAVORITES_BACKEND"); v != "" {
		cfg.Favorites.Backend = strings.ToLower(v)
	}
	if v := os.Getenv("FAVORITES_PATH"); v != "" {
		cfg.Favorites.Path = v
	}
	if v := os.Getenv("VALKEY_ADDR"); v != "" {
		cfg.Favorites.Valkey.Addr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}

// Validate ensures required fields are present.
func (c *Config) Validate() error {
	if c.PokeAPI.BaseURL == "" {
		return errors.New("pokeapi.baseUrl is required")
	}
	if c.PokeAPI.Timeout <= 0 {
		return errors.New("pokeapi.timeout must be positive")
	}
	if c.Cache.TTL <= 0 {
		return errors.New("cache.ttl must be positive")
	}
	if c.Limits.MaxNameLength <= 0 {
		return errors.New("limits.maxNameLength must be positive")
	}
	if c.Limits.MinStat > c.Limits.MaxStat {
		return errors.New("limits.minStat must not exceed limits.maxStat")
	}
	if !strings.HasPrefix(c.HTTP.MCPPath, "/") {
		return errors.New("http.mcpPath must start with /")
	}
	switch c.Favorites.Backend {
	case "file":
		if c.Favorites.Path == "" {
			return errors.New("favorites.path is required for the file backend")
		}
	case "valkey":
		if c.Favorites.Valkey.Addr == "" {
			return errors.New("favorites.valkey.addr is required for the valkey backend")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown favorites backend %q", c.Favorites.Backend)
	}
	return nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		PokeAPI: PokeAPIConfig{
			BaseURL:   "https://pokeapi.co/api/v2",
			Timeout:   5 * time.Second,
			UserAgent: "Pokemon-MCP-Server/1.0",
			ListLimit: 1000,
		},
		Cache: CacheConfig{
			TTL: 24 * time.Hour,
		},
		Limits: LimitsConfig{
			MaxNameLength: 50,
			MinStat:       0,
			MaxStat:       255,
		},
		HTTP: HTTPConfig{
			Address:      ":8080",
			MCPPath:      "/mcp",
			AuthHeader:   "X-API-Key",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Favorites: FavoritesConfig{
			Backend: "file",
			Path:    "data",
			Valkey:  ValkeyConfig{Prefix: "pokedex"},
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}
