package cache

import (
	"net"
	"os"
	"strconv"
	"time"
)

// Supported backend names.
const (
	// BackendRedis selects the Redis backend (the production default).
	BackendRedis = "redis"

	// BackendMemory selects the in-process backend for tests, demos and
	// single-node deployments.
	BackendMemory = "memory"
)

// Config holds cache configuration.
type Config struct {
	// Backend selects the cache implementation ("redis" or "memory").
	// Validity is checked on first use, not at load time.
	Backend string

	// Redis connection settings
	RedisHost     string
	RedisPort     int
	RedisDB       int
	RedisPassword string

	// MaxConnections caps the Redis connection pool size.
	MaxConnections int

	// Timeout bounds every backend operation, including dials.
	Timeout time.Duration

	// DefaultTTL applies to writes without an explicit TTL.
	// Zero means entries never expire.
	DefaultTTL time.Duration

	// KeyPrefix namespaces every stored key. Pattern deletes and Clear
	// only ever touch keys under this prefix.
	KeyPrefix string
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig() Config {
	return Config{
		Backend:        BackendRedis,
		RedisHost:      "localhost",
		RedisPort:      6379,
		RedisDB:        0,
		RedisPassword:  "",
		MaxConnections: 10,
		Timeout:        5 * time.Second,
		DefaultTTL:     300 * time.Second,
		KeyPrefix:      "app",
	}
}

// FromEnv builds a configuration from environment variables, falling back
// to defaults for unset values. Unparsable numeric values are configuration
// errors, not silent fallbacks.
//
// Recognized variables: CACHE_BACKEND, REDIS_HOST, REDIS_PORT, REDIS_DB,
// REDIS_PASSWORD, REDIS_MAX_CONNECTIONS, REDIS_TIMEOUT, CACHE_DEFAULT_TTL,
// CACHE_KEY_PREFIX.
func FromEnv() (Config, error) {
	cfg := DefaultConfig()

	cfg.Backend = getEnv("CACHE_BACKEND", cfg.Backend)
	cfg.RedisHost = getEnv("REDIS_HOST", cfg.RedisHost)
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", cfg.RedisPassword)
	cfg.KeyPrefix = getEnv("CACHE_KEY_PREFIX", cfg.KeyPrefix)

	var err error
	if cfg.RedisPort, err = getEnvInt("REDIS_PORT", cfg.RedisPort); err != nil {
		return Config{}, err
	}
	if cfg.RedisDB, err = getEnvInt("REDIS_DB", cfg.RedisDB); err != nil {
		return Config{}, err
	}
	if cfg.MaxConnections, err = getEnvInt("REDIS_MAX_CONNECTIONS", cfg.MaxConnections); err != nil {
		return Config{}, err
	}

	timeoutSecs, err := getEnvInt("REDIS_TIMEOUT", int(cfg.Timeout/time.Second))
	if err != nil {
		return Config{}, err
	}
	cfg.Timeout = time.Duration(timeoutSecs) * time.Second

	ttlSecs, err := getEnvInt("CACHE_DEFAULT_TTL", int(cfg.DefaultTTL/time.Second))
	if err != nil {
		return Config{}, err
	}
	cfg.DefaultTTL = time.Duration(ttlSecs) * time.Second

	return cfg, nil
}

// Validate checks the configuration for values that can never work.
// Backend name validity is deliberately not checked here; an unsupported
// backend surfaces as a configuration error on first cache access.
func (c Config) Validate() error {
	if c.RedisPort < 1 || c.RedisPort > 65535 {
		return newConfigError("REDIS_PORT", "must be between 1 and 65535 (got %d)", c.RedisPort)
	}

	if c.RedisDB < 0 {
		return newConfigError("REDIS_DB", "must be >= 0 (got %d)", c.RedisDB)
	}

	if c.MaxConnections < 1 {
		return newConfigError("REDIS_MAX_CONNECTIONS", "must be >= 1 (got %d)", c.MaxConnections)
	}

	if c.Timeout <= 0 {
		return newConfigError("REDIS_TIMEOUT", "must be > 0 (got %s)", c.Timeout)
	}

	if c.DefaultTTL < 0 {
		return newConfigError("CACHE_DEFAULT_TTL", "must be >= 0 (got %s)", c.DefaultTTL)
	}

	if c.KeyPrefix == "" {
		return newConfigError("CACHE_KEY_PREFIX", "must not be empty")
	}

	return nil
}

// RedisAddr returns the host:port address for the Redis client.
func (c Config) RedisAddr() string {
	return net.JoinHostPort(c.RedisHost, strconv.Itoa(c.RedisPort))
}

// getEnv reads a string environment variable with a fallback default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt reads an integer environment variable with a fallback default.
func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}

	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, newConfigError(key, "invalid integer %q", value)
	}
	return n, nil
}
