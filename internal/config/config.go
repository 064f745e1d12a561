package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"web-archiver/pkg/archive"
)

// Config is the service configuration, read from archiver.yaml with
// ARCHIVER_* environment overrides.
type Config struct {
	KafkaBrokers      []string      `mapstructure:"kafka_brokers"`
	FrontierTopic     string        `mapstructure:"frontier_topic"`
	EventsTopic       string        `mapstructure:"events_topic"`
	RedisAddress      string        `mapstructure:"redis_address"`
	CassandraHosts    []string      `mapstructure:"cassandra_hosts"`
	CassandraKeyspace string        `mapstructure:"cassandra_keyspace"`
	NumWorkers        int           `mapstructure:"num_workers"`
	SeedURLs          []string      `mapstructure:"seed_urls"`
	RobotsAgent       string        `mapstructure:"robots_agent"`
	Archive           ArchiveConfig `mapstructure:"archive"`
}

// ArchiveConfig maps onto archive.Options.
type ArchiveConfig struct {
	Timeout       time.Duration `mapstructure:"timeout"`
	SkipTLSVerify bool          `mapstructure:"skip_tls_verify"`
	UserAgent     string        `mapstructure:"user_agent"`
	StripFailed   bool          `mapstructure:"strip_failed"`
	Proxy         ProxyConfig   `mapstructure:"proxy"`
}

type ProxyConfig struct {
	Scheme   string `mapstructure:"scheme"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("archiver")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/web-archiver")

	v.SetEnvPrefix("ARCHIVER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("kafka_brokers", []string{"localhost:9092"})
	v.SetDefault("frontier_topic", "archive-requests")
	v.SetDefault("events_topic", "archive-events")
	v.SetDefault("redis_address", "localhost:6379")
	v.SetDefault("cassandra_hosts", []string{"localhost"})
	v.SetDefault("cassandra_keyspace", "archiver")
	v.SetDefault("num_workers", 4)
	v.SetDefault("robots_agent", "Archiver")
	v.SetDefault("archive.timeout", 30*time.Second)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		// no config file is fine, defaults and env apply
	}

	var cfg Config
	// Unknown keys are a config mistake, not something to ignore.
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) { dc.ErrorUnused = true }); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if cfg.NumWorkers <= 0 {
		return nil, fmt.Errorf("num_workers must be positive, got %d", cfg.NumWorkers)
	}
	if err := cfg.ArchiveOptions().Validate(); err != nil {
		return nil, fmt.Errorf("archive options: %w", err)
	}

	return &cfg, nil
}

// ArchiveOptions converts the archive section into library options.
func (c *Config) ArchiveOptions() archive.Options {
	opts := archive.Options{
		Timeout:       c.Archive.Timeout,
		SkipTLSVerify: c.Archive.SkipTLSVerify,
		UserAgent:     c.Archive.UserAgent,
		StripFailed:   c.Archive.StripFailed,
	}
	if p := c.Archive.Proxy; p.Host != "" || p.Scheme != "" {
		opts.Proxy = &archive.ProxyConfig{
			Scheme:   p.Scheme,
			Host:     p.Host,
			Port:     p.Port,
			Username: p.Username,
			Password: p.Password,
		}
	}
	return opts
}
