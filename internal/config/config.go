package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Host           string        `yaml:"host"`
		Port           string        `yaml:"port"`
		RequestTimeout time.Duration `yaml:"request_timeout"`
	} `yaml:"server"`
	DB struct {
		Driver         string `yaml:"driver"` // sqlite3, mysql or pgx
		URL            string `yaml:"url"`
		MigrateRetries int    `yaml:"migrate_retries"`
	} `yaml:"db"`
	Redis struct {
		Addr string        `yaml:"addr"` // empty disables the user cache
		TTL  time.Duration `yaml:"ttl"`
	} `yaml:"redis"`
	Kafka struct {
		Brokers []string `yaml:"brokers"` // empty disables user events
		Topic   string   `yaml:"topic"`
	} `yaml:"kafka"`
	Auth struct {
		JWTSecret string `yaml:"jwt_secret"`
	} `yaml:"auth"`
	RateLimit struct {
		Rate      float64       `yaml:"rate"` // requests per second per client, 0 disables
		Burst     int           `yaml:"burst"`
		ExpiresIn time.Duration `yaml:"expires_in"`
	} `yaml:"rate_limit"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// Load reads the yaml file at path when path is not empty, applies
// environment overrides and fills in defaults.
func Load(path string) (*Config, error) {
	config := &Config{}
	if path != "" {
		file, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := config.applyEnv(); err != nil {
		return nil, err
	}
	config.applyDefaults()

	return config, nil
}

func (c *Config) applyEnv() error {
	setString(&c.Server.Host, "HOST")
	setString(&c.Server.Port, "PORT")
	setString(&c.DB.Driver, "DATABASE_DRIVER")
	setString(&c.DB.URL, "DATABASE_URL")
	setString(&c.Redis.Addr, "REDIS_ADDR")
	setString(&c.Kafka.Topic, "KAFKA_TOPIC")
	setString(&c.Auth.JWTSecret, "JWT_SECRET")
	setString(&c.Log.Level, "LOG_LEVEL")

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		c.Kafka.Brokers = splitList(brokers)
	}

	if v := os.Getenv("REQUEST_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid REQUEST_TIMEOUT %q: %w", v, err)
		}
		c.Server.RequestTimeout = d
	}

	if v := os.Getenv("RATE_LIMIT"); v != "" {
		rate, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid RATE_LIMIT %q: %w", v, err)
		}
		c.RateLimit.Rate = rate
	}

	return nil
}

func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Server.RequestTimeout == 0 {
		c.Server.RequestTimeout = 15 * time.Second
	}
	if c.DB.Driver == "" {
		c.DB.Driver = "sqlite3"
	}
	if c.DB.URL == "" && c.DB.Driver == "sqlite3" {
		c.DB.URL = "file:users.db?_journal_mode=WAL&_busy_timeout=5000"
	}
	if c.DB.MigrateRetries == 0 {
		c.DB.MigrateRetries = 3
	}
	if c.Redis.TTL == 0 {
		c.Redis.TTL = 10 * time.Minute
	}
	if c.Kafka.Topic == "" {
		c.Kafka.Topic = "user-topic"
	}
	if c.RateLimit.Burst == 0 {
		c.RateLimit.Burst = int(c.RateLimit.Rate*2) + 1
	}
	if c.RateLimit.ExpiresIn == 0 {
		c.RateLimit.ExpiresIn = 3 * time.Minute
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

func (c *Config) Addr() string {
	return c.Server.Host + ":" + c.Server.Port
}

// splitList splits a comma separated list, trimming spaces and dropping
// empty entries.
func splitList(v string) []string {
	var items []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func setString(dst *string, env string) {
	if v, ok := os.LookupEnv(env); ok && v != "" {
		*dst = v
	}
}
