// Package config loads taxonscope settings from a TOML file and the
// environment.
//
// Precedence, lowest first: built-in defaults, the config file, environment
// variables, then command-line flags (applied by the CLI). A missing config
// file is not an error.
//
// # Example file
//
//	[api]
//	base_url = "https://api.gbif.org/v1"
//	timeout = "10s"
//	retry_attempts = 3
//
//	[traversal]
//	page_size = 100
//	max_children = 50
//	max_depth = 2
//	mode = "strict"
//
//	[occurrence]
//	page_size = 300
//	global_cap = 1000
//	pace = "1s"
//
//	[cache]
//	backend = "redis"
//	[cache.redis]
//	addr = "localhost:6379"
//
//	[[roots]]
//	name = "Animalia"
//	rank = "KINGDOM"
package config

import (
	"context"
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/taxonscope/pkg/cache"
	"github.com/matzehuels/taxonscope/pkg/errors"
	"github.com/matzehuels/taxonscope/pkg/httputil"
	"github.com/matzehuels/taxonscope/pkg/integrations"
	"github.com/matzehuels/taxonscope/pkg/integrations/gbif"
	"github.com/matzehuels/taxonscope/pkg/occurrence"
	"github.com/matzehuels/taxonscope/pkg/session"
	"github.com/matzehuels/taxonscope/pkg/taxon"
)

// AppName names the config directory.
const AppName = "taxonscope"

// Cache backends. Memoization is always in-process; "redis" additionally
// writes through to a shared Redis server.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Environment variables that override file values.
const (
	EnvAPIURL        = "GBIF_API_URL"
	EnvRedisAddr     = "TAXONSCOPE_REDIS_ADDR"
	EnvRedisPassword = "TAXONSCOPE_REDIS_PASSWORD"
	EnvRedisDB       = "TAXONSCOPE_REDIS_DB"
	EnvPace          = "TAXONSCOPE_PACE"
	EnvCacheScope    = "TAXONSCOPE_CACHE_SCOPE"
)

// Config is the complete taxonscope configuration.
type Config struct {
	API        APIConfig        `toml:"api"`
	Traversal  TraversalConfig  `toml:"traversal"`
	Occurrence OccurrenceConfig `toml:"occurrence"`
	Cache      CacheConfig      `toml:"cache"`
	Server     ServerConfig     `toml:"server"`
	Roots      []taxon.RootSpec `toml:"roots"`
}

// APIConfig configures the GBIF client.
type APIConfig struct {
	BaseURL       string        `toml:"base_url"`
	Timeout       time.Duration `toml:"timeout"`
	RetryAttempts int           `toml:"retry_attempts"`
	UserAgent     string        `toml:"user_agent"`
}

// TraversalConfig configures tree browsing.
type TraversalConfig struct {
	PageSize    int    `toml:"page_size"`
	MaxChildren int    `toml:"max_children"`
	MaxDepth    int    `toml:"max_depth"`
	MaxScanned  int    `toml:"max_scanned"`
	Mode        string `toml:"mode"`
}

// OccurrenceConfig configures occurrence collection.
type OccurrenceConfig struct {
	PageSize  int                 `toml:"page_size"`
	GlobalCap int                 `toml:"global_cap"`
	Pace      time.Duration       `toml:"pace"`
	Dedupe    bool                `toml:"dedupe"`
	Regions   []occurrence.Region `toml:"regions"`
}

// CacheConfig selects the session memo backend.
type CacheConfig struct {
	Backend string        `toml:"backend"`
	TTL     time.Duration `toml:"ttl"`
	// Scope names a key space shared by every process that sets it. Empty
	// gives each run a private, random scope.
	Scope string      `toml:"scope"`
	Redis RedisConfig `toml:"redis"`
}

// RedisConfig locates the shared Redis backend.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// DefaultRoots are the browse roots used when none are configured.
var DefaultRoots = []taxon.RootSpec{
	{Name: "Animalia", Rank: "KINGDOM"},
	{Name: "Plantae", Rank: "KINGDOM"},
	{Name: "Fungi", Rank: "KINGDOM"},
}

// Default returns the built-in configuration.
func Default() Config {
	var c Config
	return c.WithDefaults()
}

// WithDefaults returns a copy of c with zero values replaced by defaults.
func (c Config) WithDefaults() Config {
	cfg := c
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = gbif.DefaultBaseURL
	}
	if cfg.API.Timeout <= 0 {
		cfg.API.Timeout = integrations.DefaultTimeout
	}
	if cfg.API.RetryAttempts <= 0 {
		cfg.API.RetryAttempts = httputil.DefaultPolicy.Attempts
	}
	if cfg.API.UserAgent == "" {
		cfg.API.UserAgent = AppName
	}
	if cfg.Traversal.PageSize <= 0 {
		cfg.Traversal.PageSize = taxon.DefaultPageSize
	}
	if cfg.Traversal.MaxChildren <= 0 {
		cfg.Traversal.MaxChildren = taxon.DefaultMaxChildren
	}
	if cfg.Traversal.MaxDepth <= 0 {
		cfg.Traversal.MaxDepth = taxon.DefaultMaxDepth
	}
	if cfg.Traversal.Mode == "" {
		cfg.Traversal.Mode = taxon.ModeStrict.String()
	}
	if cfg.Occurrence.PageSize <= 0 {
		cfg.Occurrence.PageSize = occurrence.DefaultPageSize
	}
	if cfg.Occurrence.GlobalCap <= 0 {
		cfg.Occurrence.GlobalCap = occurrence.DefaultGlobalCap
	}
	if cfg.Occurrence.Pace <= 0 {
		cfg.Occurrence.Pace = httputil.DefaultPace
	}
	if len(cfg.Occurrence.Regions) == 0 {
		cfg.Occurrence.Regions = occurrence.Continents
	}
	if cfg.Cache.Backend == "" {
		cfg.Cache.Backend = BackendMemory
	}
	if cfg.Cache.TTL <= 0 {
		cfg.Cache.TTL = session.DefaultTTL
	}
	if cfg.Cache.Redis.Addr == "" {
		cfg.Cache.Redis.Addr = "localhost:6379"
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if len(cfg.Roots) == 0 {
		cfg.Roots = DefaultRoots
	}
	return cfg
}

// Validate checks the configuration for values no component can work with.
func (c Config) Validate() error {
	if err := errors.ValidateURL(c.API.BaseURL); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "api.base_url")
	}
	if _, err := taxon.ParseMode(c.Traversal.Mode); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidMode, err, "traversal.mode")
	}
	if c.Occurrence.PageSize > occurrence.DefaultPageSize {
		return errors.New(errors.ErrCodeInvalidConfig, "occurrence.page_size must be at most %d, got %d",
			occurrence.DefaultPageSize, c.Occurrence.PageSize)
	}
	for _, r := range c.Occurrence.Regions {
		if err := r.Validate(); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "occurrence.regions")
		}
	}
	switch c.Cache.Backend {
	case BackendMemory, BackendRedis:
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "cache.backend must be memory or redis, got %q", c.Cache.Backend)
	}
	if err := validateScope(c.Cache.Scope); err != nil {
		return err
	}
	for _, r := range c.Roots {
		if _, err := taxon.LookupRank(r.Rank); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidRank, err, "root %q", r.Name)
		}
	}
	return nil
}

func validateScope(scope string) error {
	for _, r := range scope {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
		default:
			return errors.New(errors.ErrCodeInvalidConfig, "cache.scope may only contain letters, digits, '-', '_' and '.', got %q", scope)
		}
	}
	return nil
}

// DefaultPath returns $XDG_CONFIG_HOME/taxonscope/config.toml, falling back
// to ~/.config/taxonscope/config.toml.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, AppName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", AppName, "config.toml"), nil
}

// Load reads the file at path (DefaultPath when empty), applies environment
// overrides and defaults, and validates the result.
func Load(path string) (Config, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return Config{}, err
		}
		path = p
	}

	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil && !stderrors.Is(err, fs.ErrNotExist) {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return Config{}, err
	}
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Parse decodes TOML text into a Config with defaults applied. It does not
// read the environment.
func Parse(data string) (Config, error) {
	var cfg Config
	if _, err := toml.Decode(data, &cfg); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config")
	}
	cfg = cfg.WithDefaults()
	return cfg, cfg.Validate()
}

// ApplyEnv overrides fields from environment variables read through getenv.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv(EnvAPIURL); v != "" {
		c.API.BaseURL = v
	}
	if v := getenv(EnvRedisAddr); v != "" {
		c.Cache.Redis.Addr = v
		if c.Cache.Backend == "" {
			c.Cache.Backend = BackendRedis
		}
	}
	if v := getenv(EnvRedisPassword); v != "" {
		c.Cache.Redis.Password = v
	}
	if v := getenv(EnvRedisDB); v != "" {
		db, err := strconv.Atoi(v)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "%s", EnvRedisDB)
		}
		c.Cache.Redis.DB = db
	}
	if v := getenv(EnvCacheScope); v != "" {
		c.Cache.Scope = v
	}
	if v := getenv(EnvPace); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "%s", EnvPace)
		}
		if d <= 0 {
			return errors.New(errors.ErrCodeInvalidConfig, "%s must be positive, got %s", EnvPace, v)
		}
		c.Occurrence.Pace = d
	}
	return nil
}

// Mode returns the parsed traversal mode. The config must be validated.
func (c Config) Mode() taxon.Mode {
	m, _ := taxon.ParseMode(c.Traversal.Mode)
	return m
}

// GBIFOptions returns client options for the configured API.
func (c Config) GBIFOptions() gbif.Options {
	return gbif.Options{
		BaseURL:   c.API.BaseURL,
		Timeout:   c.API.Timeout,
		Retry:     httputil.Policy{Attempts: c.API.RetryAttempts, Delay: httputil.DefaultPolicy.Delay},
		UserAgent: c.API.UserAgent,
	}
}

// OpenCache connects the configured memo backend. The memory backend needs
// no connection and returns a NullCache, leaving storage to the memo itself.
func (c Config) OpenCache(ctx context.Context) (cache.Cache, error) {
	if c.Cache.Backend != BackendRedis {
		return cache.NewNullCache(), nil
	}
	rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
		Addr:     c.Cache.Redis.Addr,
		Password: c.Cache.Redis.Password,
		DB:       c.Cache.Redis.DB,
	})
	if err != nil {
		return nil, err
	}
	return rc, nil
}

func (c Config) String() string {
	return fmt.Sprintf("api=%s mode=%s cache=%s", c.API.BaseURL, c.Traversal.Mode, c.Cache.Backend)
}
