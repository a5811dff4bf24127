package configs

import (
	"fmt"
	"time"

	"github.com/hilthontt/parley/internal/infrastructure/env"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	HTTP        HTTPConfig        `koanf:"http"`
	Logger      LoggerConfig      `koanf:"logger"`
	Rooms       RoomsConfig       `koanf:"rooms"`
	Stream      StreamConfig      `koanf:"stream"`
	RateLimiter RateLimiterConfig `koanf:"rateLimiter"`
	Tracing     TracingConfig     `koanf:"tracing"`
}

type HTTPConfig struct {
	Host        string        `koanf:"host"`
	Port        uint16        `koanf:"port"`
	ReadTimeout time.Duration `koanf:"read_timeout"`
	// WriteTimeout must stay 0 (disabled): the events endpoint holds its
	// response open for the lifetime of the room.
	WriteTimeout time.Duration `koanf:"write_timeout"`
	IdleTimeout  time.Duration `koanf:"idle_timeout"`
}

type LoggerConfig struct {
	Backend  string `koanf:"backend"`
	Level    string `koanf:"level"`
	Encoding string `koanf:"encoding"`
	FilePath string `koanf:"file_path"`
}

type RoomsConfig struct {
	// CompletedTTL is how long a completed room stays queryable.
	CompletedTTL time.Duration `koanf:"completed_ttl"`
	// ActiveTTL bounds the life of rooms that never complete; 0 disables.
	ActiveTTL time.Duration `koanf:"active_ttl"`
	// ReapInterval is the reaper's scan period.
	ReapInterval time.Duration `koanf:"reap_interval"`
	Capacity     uint          `koanf:"capacity"`
	// MaxMembers caps each room's membership.
	MaxMembers int `koanf:"max_members"`
}

type StreamConfig struct {
	QueueSize int `koanf:"queue_size"`
}

type RateLimiterConfig struct {
	Enabled          bool          `koanf:"enabled"`
	MaxRatePerSecond int           `koanf:"maxRatePerSecond"`
	MaxBurst         int           `koanf:"maxBurst"`
	CacheTTL         time.Duration `koanf:"cacheTTL"`
	SourceHeaderKey  string        `koanf:"sourceHeaderKey"`
}

type TracingConfig struct {
	Endpoint    string `koanf:"endpoint"`
	Environment string `koanf:"environment"`
}

func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Load from YAML file if one was found; the service boots on defaults
	// otherwise.
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	applyDefaults(k)
	applyEnvOverrides(k)

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func applyDefaults(k *koanf.Koanf) {
	// HTTP defaults
	setDefault(k, "http.host", "0.0.0.0")
	setDefault(k, "http.port", 8080)
	setDefault(k, "http.read_timeout", 10*time.Second)
	setDefault(k, "http.write_timeout", time.Duration(0))
	setDefault(k, "http.idle_timeout", time.Minute)

	// Logger defaults
	setDefault(k, "logger.backend", "zap")
	setDefault(k, "logger.level", "info")
	setDefault(k, "logger.encoding", "json")
	setDefault(k, "logger.file_path", "")

	// Room lifecycle defaults
	setDefault(k, "rooms.completed_ttl", 10*time.Second)
	setDefault(k, "rooms.active_ttl", 5*time.Minute)
	setDefault(k, "rooms.reap_interval", time.Second)
	setDefault(k, "rooms.capacity", 10000)
	setDefault(k, "rooms.max_members", 20)

	// Stream defaults
	setDefault(k, "stream.queue_size", 64)

	// Rate limiter defaults
	setDefault(k, "rateLimiter.enabled", false)
	setDefault(k, "rateLimiter.maxRatePerSecond", 50)
	setDefault(k, "rateLimiter.maxBurst", 100)
	setDefault(k, "rateLimiter.cacheTTL", 5*time.Minute)
	setDefault(k, "rateLimiter.sourceHeaderKey", "X-Forwarded-For")

	// Tracing defaults (disabled unless an endpoint is configured)
	setDefault(k, "tracing.endpoint", "")
	setDefault(k, "tracing.environment", "development")
}

func applyEnvOverrides(k *koanf.Koanf) {
	if host := env.GetString("HTTP_HOST", ""); host != "" {
		k.Set("http.host", host)
	}
	if port := env.GetInt("HTTP_PORT", 0); port > 0 {
		k.Set("http.port", port)
	}
	if readTimeout := env.GetInt("HTTP_READ_TIMEOUT_SECONDS", 0); readTimeout > 0 {
		k.Set("http.read_timeout", time.Duration(readTimeout)*time.Second)
	}

	if backend := env.GetString("LOGGER_BACKEND", ""); backend != "" {
		k.Set("logger.backend", backend)
	}
	if level := env.GetString("LOGGER_LEVEL", ""); level != "" {
		k.Set("logger.level", level)
	}

	if ttl := env.GetInt("ROOM_COMPLETED_TTL_SECONDS", 0); ttl > 0 {
		k.Set("rooms.completed_ttl", time.Duration(ttl)*time.Second)
	}
	if ttl := env.GetInt("ROOM_ACTIVE_TTL_SECONDS", -1); ttl >= 0 {
		k.Set("rooms.active_ttl", time.Duration(ttl)*time.Second)
	}
	if interval := env.GetInt("ROOM_REAP_INTERVAL_SECONDS", 0); interval > 0 {
		k.Set("rooms.reap_interval", time.Duration(interval)*time.Second)
	}
	if capacity := env.GetInt("ROOM_CAPACITY", 0); capacity > 0 {
		k.Set("rooms.capacity", uint(capacity))
	}
	if maxMembers := env.GetInt("ROOM_MAX_MEMBERS", 0); maxMembers > 0 {
		k.Set("rooms.max_members", maxMembers)
	}

	if queueSize := env.GetInt("STREAM_QUEUE_SIZE", 0); queueSize > 0 {
		k.Set("stream.queue_size", queueSize)
	}

	if env.GetBool("RATE_LIMIT_ENABLED", false) {
		k.Set("rateLimiter.enabled", true)
	}
	if maxRate := env.GetInt("RATE_LIMIT_MAX_RATE_PER_SECOND", 0); maxRate > 0 {
		k.Set("rateLimiter.maxRatePerSecond", maxRate)
	}
	if maxBurst := env.GetInt("RATE_LIMIT_MAX_BURST", 0); maxBurst > 0 {
		k.Set("rateLimiter.maxBurst", maxBurst)
	}

	if endpoint := env.GetString("TRACING_ENDPOINT", ""); endpoint != "" {
		k.Set("tracing.endpoint", endpoint)
	}
}

// setDefault only sets the value if the key doesn't already exist
func setDefault(k *koanf.Koanf, key string, value interface{}) {
	if !k.Exists(key) {
		k.Set(key, value)
	}
}
