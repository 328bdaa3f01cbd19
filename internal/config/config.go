// Package config loads and validates crawler configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Crawler  CrawlerConfig  `mapstructure:"crawler"`
	Headless HeadlessConfig `mapstructure:"headless"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Schedule ScheduleConfig `mapstructure:"schedule"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// CrawlerConfig governs the crawl pipeline.
type CrawlerConfig struct {
	BaseURL         string  `mapstructure:"base_url"`
	UserAgent       string  `mapstructure:"user_agent"`
	FetchTimeoutSec int     `mapstructure:"fetch_timeout_seconds"`
	RecencyHours    int     `mapstructure:"recency_hours"`
	MaxLoadMore     int     `mapstructure:"max_load_more"`
	SettleMs        int     `mapstructure:"settle_ms"`
	HostQPS         float64 `mapstructure:"host_qps"`
	Timezone        string  `mapstructure:"timezone"`
}

// HeadlessConfig configures the headless rendering subsystem.
type HeadlessConfig struct {
	NavTimeoutSec int    `mapstructure:"nav_timeout_seconds"`
	ExecPath      string `mapstructure:"exec_path"`
}

// RedisConfig controls access to the article cache.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// ScheduleConfig drives the periodic crawl trigger.
type ScheduleConfig struct {
	Spec string `mapstructure:"spec"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool   `mapstructure:"development"`
	Level       string `mapstructure:"level"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("NEWSCRAWLER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("crawler.user_agent", "newsbrief-crawler/0.1")
	v.SetDefault("crawler.fetch_timeout_seconds", 10)
	v.SetDefault("crawler.recency_hours", 8)
	v.SetDefault("crawler.max_load_more", 10)
	v.SetDefault("crawler.settle_ms", 1000)
	v.SetDefault("crawler.host_qps", 0)
	v.SetDefault("crawler.timezone", "Asia/Seoul")
	v.SetDefault("headless.nav_timeout_seconds", 25)
	v.SetDefault("redis.db", 0)
	v.SetDefault("schedule.spec", "@every 8h")
	v.SetDefault("logging.development", true)
	v.SetDefault("logging.level", "info")
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Crawler.BaseURL == "" {
		return fmt.Errorf("crawler.base_url is required")
	}
	if c.Redis.Addr == "" {
		return fmt.Errorf("redis.addr is required")
	}
	if c.Crawler.FetchTimeoutSec <= 0 {
		return fmt.Errorf("crawler.fetch_timeout_seconds must be > 0")
	}
	if c.Crawler.RecencyHours <= 0 {
		return fmt.Errorf("crawler.recency_hours must be > 0")
	}
	if c.Crawler.MaxLoadMore < 0 {
		return fmt.Errorf("crawler.max_load_more must be >= 0")
	}
	if _, err := time.LoadLocation(c.Crawler.Timezone); err != nil {
		return fmt.Errorf("crawler.timezone: %w", err)
	}
	return nil
}

// FetchTimeout converts the configured per-article timeout into a duration.
func (c Config) FetchTimeout() time.Duration {
	return time.Duration(c.Crawler.FetchTimeoutSec) * time.Second
}

// RecencyWindow converts the configured recency gate into a duration.
func (c Config) RecencyWindow() time.Duration {
	return time.Duration(c.Crawler.RecencyHours) * time.Hour
}

// SettleDelay returns the pause after each pagination interaction.
func (c Config) SettleDelay() time.Duration {
	return time.Duration(c.Crawler.SettleMs) * time.Millisecond
}

// NavTimeout returns the headless navigation timeout.
func (c Config) NavTimeout() time.Duration {
	return time.Duration(c.Headless.NavTimeoutSec) * time.Second
}

// Location resolves the configured site timezone. Validate has already
// checked it parses.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Crawler.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}
