package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Transport kinds understood by the feed section.
const (
	TransportSSE       = "sse"
	TransportWebSocket = "websocket"
	TransportKafka     = "kafka"
)

// Account source kinds.
const (
	AccountNone  = "none"
	AccountRedis = "redis"
	AccountHTTP  = "http"
)

type Config struct {
	Environment string            `yaml:"environment" default:"development"`
	Server      ServerConfig      `yaml:"server"`
	Log         LogConfig         `yaml:"log"`
	Metrics     MetricsConfig     `yaml:"metrics"`
	Feed        FeedConfig        `yaml:"feed"`
	Store       StoreConfig       `yaml:"store"`
	Badges      map[string]string `yaml:"badges"`
	Account     AccountConfig     `yaml:"account"`
}

type ServerConfig struct {
	Port            int           `yaml:"port" default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" default:"0s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
	CORS            bool          `yaml:"cors" default:"true"`
}

type LogConfig struct {
	Level  string `yaml:"level" default:"info"`
	Format string `yaml:"format" default:"console"`
	Output string `yaml:"output" default:"stdout"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" default:"true"`
	Path    string `yaml:"path" default:"/metrics"`
}

type FeedConfig struct {
	Transport             string        `yaml:"transport" default:"sse"`
	URL                   string        `yaml:"url" default:"http://localhost:8000/api/analysis/stream/{scope}"`
	Scopes                []string      `yaml:"scopes" default:"[\"GLOBAL\"]"`
	BackoffMin            time.Duration `yaml:"backoff_min" default:"500ms"`
	BackoffMax            time.Duration `yaml:"backoff_max" default:"30s"`
	DialsPerMinute        int           `yaml:"dials_per_minute" default:"12"`
	PingInterval          time.Duration `yaml:"ping_interval" default:"20s"`
	ResubscribeOnComplete bool          `yaml:"resubscribe_on_complete"`
	Kafka                 KafkaConfig   `yaml:"kafka"`
}

type KafkaConfig struct {
	Brokers  []string `yaml:"brokers"`
	Topic    string   `yaml:"topic" default:"deskstream.analysis.{scope}"`
	GroupID  string   `yaml:"group_id" default:"deskstream"`
	MinBytes int      `yaml:"min_bytes" default:"1"`
	MaxBytes int      `yaml:"max_bytes" default:"1048576"`
}

type StoreConfig struct {
	LogCapacity int      `yaml:"log_capacity" default:"200"`
	SeedTickers []string `yaml:"seed_tickers" default:"[\"NVDA\",\"AAPL\",\"MSFT\",\"TSLA\",\"AMD\",\"GOOGL\",\"META\",\"AMZN\",\"NFLX\",\"PLTR\",\"COIN\",\"MARA\",\"MSTR\",\"SQ\",\"PYPL\",\"AVGO\",\"SMCI\",\"ARM\",\"ASML\",\"ORCL\"]"`
}

type AccountConfig struct {
	Source   string        `yaml:"source" default:"none"`
	Schedule string        `yaml:"schedule" default:"@every 10s"`
	Timeout  time.Duration `yaml:"timeout" default:"5s"`
	Redis    struct {
		Addr     string `yaml:"addr" default:"localhost:6379"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		Key      string `yaml:"key" default:"deskstream:account"`
	} `yaml:"redis"`
	HTTP struct {
		URL string `yaml:"url"`
	} `yaml:"http"`
}

// envOverrides lists everything that may be set from the environment
// (prefix DESK_). Empty values leave the file configuration untouched.
type envOverrides struct {
	Environment  string   `envconfig:"ENVIRONMENT"`
	Port         int      `envconfig:"PORT"`
	LogLevel     string   `envconfig:"LOG_LEVEL"`
	Transport    string   `envconfig:"FEED_TRANSPORT"`
	FeedURL      string   `envconfig:"FEED_URL"`
	Scopes       []string `envconfig:"FEED_SCOPES"`
	KafkaBrokers []string `envconfig:"KAFKA_BROKERS"`
	Account      string   `envconfig:"ACCOUNT_SOURCE"`
	RedisAddr    string   `envconfig:"REDIS_ADDR"`
	RedisPass    string   `envconfig:"REDIS_PASSWORD"`
	AccountURL   string   `envconfig:"ACCOUNT_URL"`
}

// Default returns a configuration populated only from struct defaults.
func Default() (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("config defaults: %w", err)
	}
	return &c, nil
}

// Load reads and parses a YAML configuration file on top of the defaults.
func Load(path string) (*Config, error) {
	c, err := parse(path)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// LoadWithEnv loads config from YAML (or defaults when path is empty),
// then .env, then environment overrides. Validation runs once at the end so
// the environment may complete a partial file.
func LoadWithEnv(path string) (*Config, error) {
	var (
		c   *Config
		err error
	)
	if path == "" {
		c, err = Default()
	} else {
		c, err = parse(path)
	}
	if err != nil {
		return nil, err
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var env envOverrides
	if err := envconfig.Process("DESK", &env); err != nil {
		return nil, fmt.Errorf("env overrides: %w", err)
	}
	c.apply(env)

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func parse(path string) (*Config, error) {
	c, err := Default()
	if err != nil {
		return nil, err
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return c, nil
}

func (c *Config) apply(env envOverrides) {
	if env.Environment != "" {
		c.Environment = env.Environment
	}
	if env.Port != 0 {
		c.Server.Port = env.Port
	}
	if env.LogLevel != "" {
		c.Log.Level = env.LogLevel
	}
	if env.Transport != "" {
		c.Feed.Transport = env.Transport
	}
	if env.FeedURL != "" {
		c.Feed.URL = env.FeedURL
	}
	if len(env.Scopes) > 0 {
		c.Feed.Scopes = env.Scopes
	}
	if len(env.KafkaBrokers) > 0 {
		c.Feed.Kafka.Brokers = env.KafkaBrokers
	}
	if env.Account != "" {
		c.Account.Source = env.Account
	}
	if env.RedisAddr != "" {
		c.Account.Redis.Addr = env.RedisAddr
	}
	if env.RedisPass != "" {
		c.Account.Redis.Password = env.RedisPass
	}
	if env.AccountURL != "" {
		c.Account.HTTP.URL = env.AccountURL
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	switch c.Feed.Transport {
	case TransportSSE, TransportWebSocket:
		if c.Feed.URL == "" {
			return fmt.Errorf("feed.url is required for transport '%s'", c.Feed.Transport)
		}
	case TransportKafka:
		if len(c.Feed.Kafka.Brokers) == 0 {
			return fmt.Errorf("feed.kafka.brokers cannot be empty")
		}
	default:
		return fmt.Errorf("feed.transport must be 'sse', 'websocket' or 'kafka', got '%s'", c.Feed.Transport)
	}
	if len(c.Feed.Scopes) == 0 {
		return fmt.Errorf("feed.scopes cannot be empty")
	}
	for _, s := range c.Feed.Scopes {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("feed.scopes contains an empty scope")
		}
	}
	if c.Feed.BackoffMin <= 0 || c.Feed.BackoffMax < c.Feed.BackoffMin {
		return fmt.Errorf("feed backoff range invalid: min=%s max=%s", c.Feed.BackoffMin, c.Feed.BackoffMax)
	}
	if c.Store.LogCapacity <= 0 {
		return fmt.Errorf("store.log_capacity must be positive")
	}
	switch c.Account.Source {
	case AccountNone, AccountRedis:
	case AccountHTTP:
		if c.Account.HTTP.URL == "" {
			return fmt.Errorf("account.http.url is required for source 'http'")
		}
	default:
		return fmt.Errorf("account.source must be 'none', 'redis' or 'http', got '%s'", c.Account.Source)
	}
	return nil
}
