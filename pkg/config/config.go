package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/multiverse/pkg/characters"
	"github.com/dmitrymomot/multiverse/pkg/logger"
	"github.com/dmitrymomot/multiverse/pkg/query"
)

// DefaultAPIBaseURL is the public character API.
const DefaultAPIBaseURL = "https://rickandmortyapi.com/api"

// Config is the full application configuration.
type Config struct {
	Server  ServerConfig
	API     APIConfig
	Cache   CacheConfig
	Session SessionConfig
	Log     logger.Config
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Address         string        `env:"ADDRESS" envDefault:":8080"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`
}

// APIConfig configures the upstream character API client.
type APIConfig struct {
	BaseURL   string        `env:"API_BASE_URL" envDefault:"https://rickandmortyapi.com/api"`
	Timeout   time.Duration `env:"API_TIMEOUT" envDefault:"5s"`
	UserAgent string        `env:"API_USER_AGENT" envDefault:"multiverse/1.0"`
}

// CacheConfig configures the shared upstream response cache.
// An empty RedisURL selects the in-memory backend; a zero TTL disables caching.
type CacheConfig struct {
	RedisURL   string        `env:"REDIS_URL"`
	TTL        time.Duration `env:"RESPONSE_CACHE_TTL" envDefault:"1m"`
	MaxEntries int           `env:"RESPONSE_CACHE_MAX_ENTRIES" envDefault:"1000"`
}

// SessionConfig configures browser sessions.
type SessionConfig struct {
	IdleTTL      time.Duration `env:"SESSION_IDLE_TTL" envDefault:"30m"`
	MaxSessions  int           `env:"MAX_SESSIONS" envDefault:"10000"`
	CookieName   string        `env:"SESSION_COOKIE_NAME" envDefault:"mv_sid"`
	CookieSecure bool          `env:"COOKIE_SECURE" envDefault:"false"`
	// CookieSecret signs the session cookie when it is at least 32 bytes long.
	CookieSecret string `env:"COOKIE_SECRET"`
}

// Load reads configuration in increasing precedence:
// field defaults, the optional YAML file at path, then the process environment.
// A .env file in the working directory is loaded into the environment first when present.
//
// The YAML file is a flat map keyed by the same names as the environment variables:
//
//	ADDRESS: ":9000"
//	API_TIMEOUT: 5s
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, errors.Join(ErrDotenv, err)
	}

	vars := map[string]string{}
	if path != "" {
		fileVars, err := readFile(path)
		if err != nil {
			return Config{}, err
		}
		vars = fileVars
	}

	for k, v := range env.ToMap(os.Environ()) {
		vars[k] = v
	}

	return Parse(vars)
}

// Parse builds a Config from an explicit variable set, applying defaults.
func Parse(vars map[string]string) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: vars}); err != nil {
		return Config{}, errors.Join(ErrParse, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints that tags cannot express.
func (c Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: API_BASE_URL %q", ErrInvalid, c.API.BaseURL)
	}
	if c.API.Timeout < 0 {
		return fmt.Errorf("%w: API_TIMEOUT must not be negative", ErrInvalid)
	}
	if budget := characters.ListBudget(c.API.Timeout, query.DefaultBackoff); c.Server.RequestTimeout > 0 && budget >= c.Server.RequestTimeout {
		return fmt.Errorf("%w: REQUEST_TIMEOUT %s does not cover the list retry budget %s of API_TIMEOUT %s",
			ErrInvalid, c.Server.RequestTimeout, budget, c.API.Timeout)
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("%w: RESPONSE_CACHE_TTL must not be negative", ErrInvalid)
	}
	if c.Session.IdleTTL <= 0 {
		return fmt.Errorf("%w: SESSION_IDLE_TTL must be positive", ErrInvalid)
	}
	if c.Session.CookieName == "" {
		return fmt.Errorf("%w: SESSION_COOKIE_NAME is empty", ErrInvalid)
	}
	if c.Session.CookieSecret != "" && len(c.Session.CookieSecret) < 32 {
		return fmt.Errorf("%w: COOKIE_SECRET must be at least 32 bytes", ErrInvalid)
	}
	return nil
}

func readFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Join(ErrReadFile, err)
	}

	raw := map[string]any{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Join(ErrReadFile, err)
	}

	vars := make(map[string]string, len(raw))
	for k, v := range raw {
		if v == nil {
			continue
		}
		vars[k] = fmt.Sprint(v)
	}
	return vars, nil
}
