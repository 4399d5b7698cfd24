package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type HTTP struct {
	Addr      string `yaml:"addr"`
	StaticDir string `yaml:"staticDir"` // optional; serves the front-end bundle when set
}

type Logging struct {
	Env       string `yaml:"env"`       // dev|stage|prod
	Service   string `yaml:"service"`   // pizza-party
	Version   string `yaml:"version"`   // v0.1.0
	Backend   string `yaml:"backend"`   // std|zap
	AddSource bool   `yaml:"addSource"` // false|true
	Debug     bool   `yaml:"debug"`     // false|true
}

type Postgres struct {
	DSN string `yaml:"dsn"`
}

type Redis struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// Store selects the session-store backend. Rooms must survive a process
// restart in postgres and redis modes; memory is for dev and tests.
type Store struct {
	Backend  string   `yaml:"backend"` // postgres|redis|memory
	Postgres Postgres `yaml:"postgres"`
	Redis    Redis    `yaml:"redis"`
}

type Room struct {
	IDDigits int `yaml:"idDigits"` // width of generated room codes
}

type WS struct {
	PingPeriod string `yaml:"pingPeriod"` // e.g. "15s"
}

// PingEvery parses the configured ping period, falling back to 15s.
func (w WS) PingEvery() time.Duration {
	return parseDurationOr(15*time.Second, w.PingPeriod)
}

func parseDurationOr(def time.Duration, s string) time.Duration {
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d
	}
	return def
}

type Config struct {
	HTTP    HTTP    `yaml:"http"`
	Logging Logging `yaml:"logging"`
	Store   Store   `yaml:"store"`
	Room    Room    `yaml:"room"`
	WS      WS      `yaml:"ws"`
}

func LoadConfig() (*Config, error) {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "./config/config.yaml"
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.HTTP.Addr == "" {
		return errors.New("http.addr is required")
	}
	switch c.Store.Backend {
	case "":
		c.Store.Backend = "postgres"
	case "postgres", "redis", "memory":
	default:
		return fmt.Errorf("store.backend must be postgres, redis or memory, got %q", c.Store.Backend)
	}
	if c.Store.Backend == "postgres" && c.Store.Postgres.DSN == "" {
		return errors.New("store.postgres.dsn is required")
	}
	if c.Store.Backend == "redis" && c.Store.Redis.Addr == "" {
		return errors.New("store.redis.addr is required")
	}
	if c.Room.IDDigits <= 0 {
		c.Room.IDDigits = 2
	}
	if c.Logging.Service == "" {
		c.Logging.Service = "pizza-party"
	}
	if c.Logging.Env == "" {
		c.Logging.Env = "dev"
	}
	if c.Logging.Version == "" {
		c.Logging.Version = "v0.1.0"
	}
	if c.Logging.Backend == "" {
		c.Logging.Backend = "std"
	}
	return nil
}
