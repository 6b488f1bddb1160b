package global

import (
	"os"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// AppConfig holds every tunable of the service. Values are policy, not
// contracts; zero values are replaced by defaults in norm().
type AppConfig struct {
	HTTPAddr string `yaml:"http_addr"`
	NodeID   int64  `yaml:"node_id"`

	JWTSecret string        `yaml:"jwt_secret"`
	AuthTTL   time.Duration `yaml:"-"`

	PostgresDSN string `yaml:"postgres_dsn"`

	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`

	// Stream lifecycle
	HeartbeatInterval time.Duration `yaml:"-"`
	MaxStreamLifetime time.Duration `yaml:"-"`
	PresenceTTL       time.Duration `yaml:"-"`

	// Client reconnection policy
	ConnectTimeout       time.Duration `yaml:"-"`
	MaxReconnectAttempts int           `yaml:"max_reconnect_attempts"`
	BackoffBase          time.Duration `yaml:"-"`
	BackoffCap           time.Duration `yaml:"-"`
	DedupWindow          int           `yaml:"dedup_window"`

	// Raw duration strings from the YAML file ("30s", "4m"). Parsed into
	// the typed fields by LoadConfig.
	AuthTTLRaw           string `yaml:"auth_ttl"`
	HeartbeatIntervalRaw string `yaml:"heartbeat_interval"`
	MaxStreamLifetimeRaw string `yaml:"max_stream_lifetime"`
	PresenceTTLRaw       string `yaml:"presence_ttl"`
	ConnectTimeoutRaw    string `yaml:"connect_timeout"`
	BackoffBaseRaw       string `yaml:"backoff_base"`
	BackoffCapRaw        string `yaml:"backoff_cap"`
}

func (c *AppConfig) parseDurations() error {
	for _, f := range []struct {
		raw  string
		dst  *time.Duration
		name string
	}{
		{c.AuthTTLRaw, &c.AuthTTL, "auth_ttl"},
		{c.HeartbeatIntervalRaw, &c.HeartbeatInterval, "heartbeat_interval"},
		{c.MaxStreamLifetimeRaw, &c.MaxStreamLifetime, "max_stream_lifetime"},
		{c.PresenceTTLRaw, &c.PresenceTTL, "presence_ttl"},
		{c.ConnectTimeoutRaw, &c.ConnectTimeout, "connect_timeout"},
		{c.BackoffBaseRaw, &c.BackoffBase, "backoff_base"},
		{c.BackoffCapRaw, &c.BackoffCap, "backoff_cap"},
	} {
		if f.raw == "" {
			continue
		}
		d, err := time.ParseDuration(f.raw)
		if err != nil {
			return errors.Wrapf(err, "config: %s", f.name)
		}
		*f.dst = d
	}
	return nil
}

func (c *AppConfig) norm() {
	if c.HTTPAddr == "" {
		c.HTTPAddr = ":8080"
	}
	if c.NodeID <= 0 {
		c.NodeID = 1
	}
	if c.AuthTTL <= 0 {
		c.AuthTTL = 2 * time.Hour
	}
	if c.HeartbeatInterval <= 0 {
		c.HeartbeatInterval = 30 * time.Second
	}
	if c.MaxStreamLifetime <= 0 {
		c.MaxStreamLifetime = 4 * time.Minute
	}
	if c.PresenceTTL <= 0 {
		c.PresenceTTL = 2 * c.HeartbeatInterval
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = 10 * time.Second
	}
	if c.MaxReconnectAttempts <= 0 {
		c.MaxReconnectAttempts = 10
	}
	if c.BackoffBase <= 0 {
		c.BackoffBase = time.Second
	}
	if c.BackoffCap <= 0 {
		c.BackoffCap = 30 * time.Second
	}
	if c.DedupWindow <= 0 {
		c.DedupWindow = 256
	}
}

// LoadConfig reads the YAML config at path (a missing file is fine, defaults
// apply) and then applies environment overrides for deploy-time secrets.
func LoadConfig(path string) (*AppConfig, error) {
	cfg := &AppConfig{}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, err
			}
		} else if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, err
		}
	}
	if err := cfg.parseDurations(); err != nil {
		return nil, err
	}

	if v := os.Getenv("CHAT_HTTP_ADDR"); v != "" {
		cfg.HTTPAddr = v
	}
	if v := os.Getenv("CHAT_JWT_SECRET"); v != "" {
		cfg.JWTSecret = v
	}
	if v := os.Getenv("CHAT_POSTGRES_DSN"); v != "" {
		cfg.PostgresDSN = v
	}
	if v := os.Getenv("CHAT_REDIS_ADDR"); v != "" {
		cfg.RedisAddr = v
	}
	if v := os.Getenv("CHAT_REDIS_PASSWORD"); v != "" {
		cfg.RedisPassword = v
	}
	if v := os.Getenv("CHAT_NODE_ID"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.NodeID = n
		}
	}

	cfg.norm()
	return cfg, nil
}
