package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"threatwatch/internal/domain"
)

type Config struct {
	Database DatabaseConfig      `yaml:"database"`
	Fetch    FetchConfig         `yaml:"fetch"`
	Feeds    []domain.FeedConfig `yaml:"feeds"`
	RabbitMQ *RabbitMQConfig     `yaml:"rabbitmq"`
	LogLevel string              `yaml:"log_level"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type FetchConfig struct {
	Delay       time.Duration `yaml:"delay"`
	MaxWorkers  int           `yaml:"max_workers"`
	FeedTimeout time.Duration `yaml:"feed_timeout"`
}

// RabbitMQConfig enables the optional new-article publisher. When the
// section is absent from the file, no publisher is started.
type RabbitMQConfig struct {
	URL        string `yaml:"url"`
	Exchange   string `yaml:"exchange"`
	RoutingKey string `yaml:"routing_key"`
	QueueName  string `yaml:"queue_name"`
}

// DefaultFeeds is the built-in list of well-known security sources,
// seeded on first startup when no feeds are configured.
var DefaultFeeds = []domain.FeedConfig{
	{Name: "Krebs on Security", URL: "https://krebsonsecurity.com/feed/", Type: "rss", Priority: 10},
	{Name: "Schneier on Security", URL: "https://www.schneier.com/feed/atom/", Type: "atom", Priority: 9},
	{Name: "US-CERT Advisories", URL: "https://www.cisa.gov/uscert/ncas/alerts.xml", Type: "rss", Priority: 10},
	{Name: "Microsoft Security Blog", URL: "https://www.microsoft.com/en-us/security/blog/feed/", Type: "rss", Priority: 8},
}

// Load reads the YAML config at path, expanding ${VAR} references from
// the environment (a .env file is honored when present). An empty path
// yields the built-in defaults.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}

		expanded := os.ExpandEnv(string(data))

		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.setDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.Database.Path == "" {
		c.Database.Path = "threat_intel.db"
	}
	if c.Fetch.Delay == 0 {
		c.Fetch.Delay = 1 * time.Second
	}
	if c.Fetch.MaxWorkers == 0 {
		c.Fetch.MaxWorkers = 3
	}
	if c.Fetch.FeedTimeout == 0 {
		c.Fetch.FeedTimeout = 30 * time.Second
	}
	if len(c.Feeds) == 0 {
		c.Feeds = DefaultFeeds
	}
	if c.RabbitMQ != nil {
		if c.RabbitMQ.Exchange == "" {
			c.RabbitMQ.Exchange = "threatwatch"
		}
		if c.RabbitMQ.RoutingKey == "" {
			c.RabbitMQ.RoutingKey = "articles"
		}
		if c.RabbitMQ.QueueName == "" {
			c.RabbitMQ.QueueName = "threatwatch_articles"
		}
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

func (c *Config) validate() error {
	for _, feed := range c.Feeds {
		if feed.Name == "" || feed.URL == "" {
			return fmt.Errorf("feed entry missing name or url: %+v", feed)
		}
		if feed.Type != "" && feed.Type != "rss" && feed.Type != "atom" {
			return fmt.Errorf("feed %q has unsupported type %q", feed.Name, feed.Type)
		}
	}
	if c.RabbitMQ != nil && c.RabbitMQ.URL == "" {
		return fmt.Errorf("rabbitmq section present but url missing")
	}
	return nil
}
