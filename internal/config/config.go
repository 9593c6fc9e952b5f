package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

const (
	DefaultServiceName = "Facebook Scraper API"
	DefaultPort        = "5000"
	DefaultHost        = "facebook-scraper3.p.rapidapi.com"
	DefaultSearchPath  = "/search/posts"
)

// DefaultKeywords are searched in this order unless the configuration says otherwise.
var DefaultKeywords = []string{
	"Phil Lyman",
	"Phil Lieman",
	"Recapture Investment Group",
	"Utah election fraud",
	"Diedre Henderson",
	"Sean Reyes",
	"Tim Ballard",
	"Just Phil Lyman",
}

var (
	ErrMissingAPIKey = errors.New("RAPID_API_KEY environment variable is required")
	ErrNoKeywords    = errors.New("at least one search keyword is required")
)

type Config struct {
	Service  ServiceConfig  `yaml:"service"`
	RapidAPI RapidAPIConfig `yaml:"rapid_api"`
	Scraper  ScraperConfig  `yaml:"scraper"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type ServiceConfig struct {
	Name string `yaml:"name"`
	Port string `yaml:"port"`
}

type RapidAPIConfig struct {
	// Key is only ever read from the environment.
	Key         string `yaml:"-"`
	Host        string `yaml:"host"`
	BaseURL     string `yaml:"base_url"`
	SearchPath  string `yaml:"search_path"`
	RecentPosts string `yaml:"recent_posts"`
	DateFilter  string `yaml:"date_filter"`
	Timeout     int    `yaml:"timeout"`
}

type ScraperConfig struct {
	Keywords             []string `yaml:"keywords"`
	DelayBetweenKeywords int      `yaml:"delay_between_keywords"`
	RateLimitBackoff     int      `yaml:"rate_limit_backoff"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when no file or environment overrides apply.
func Default() *Config {
	return &Config{
		Service: ServiceConfig{
			Name: DefaultServiceName,
			Port: DefaultPort,
		},
		RapidAPI: RapidAPIConfig{
			Host:        DefaultHost,
			SearchPath:  DefaultSearchPath,
			RecentPosts: "true",
			DateFilter:  "past_24h",
			Timeout:     60,
		},
		Scraper: ScraperConfig{
			Keywords:             append([]string(nil), DefaultKeywords...),
			DelayBetweenKeywords: 2,
			RateLimitBackoff:     10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file and the
// environment, in that order. An empty configFile skips the file.
func Load(configFile string) (*Config, error) {
	// .env file is optional
	_ = godotenv.Load()

	config := Default()

	if configFile != "" {
		data, err := os.ReadFile(configFile)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("config file not found: %s", configFile)
			}
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	config.applyEnv()

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) applyEnv() {
	c.RapidAPI.Key = strings.TrimSpace(os.Getenv("RAPID_API_KEY"))

	if host := os.Getenv("RAPID_API_HOST"); host != "" {
		c.RapidAPI.Host = host
	}
	if baseURL := os.Getenv("RAPID_API_BASE_URL"); baseURL != "" {
		c.RapidAPI.BaseURL = baseURL
	}
	if port := os.Getenv("PORT"); port != "" {
		c.Service.Port = port
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if keywords := os.Getenv("SCRAPER_KEYWORDS"); keywords != "" {
		c.Scraper.Keywords = splitKeywords(keywords)
	}
}

func splitKeywords(s string) []string {
	var keywords []string
	for _, k := range strings.Split(s, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keywords = append(keywords, k)
		}
	}
	return keywords
}

// Validate reports the first configuration problem that would stop the service from running.
func (c *Config) Validate() error {
	if c.RapidAPI.Key == "" {
		return ErrMissingAPIKey
	}
	if len(c.Scraper.Keywords) == 0 {
		return ErrNoKeywords
	}
	if c.Scraper.DelayBetweenKeywords < 0 {
		return fmt.Errorf("invalid delay_between_keywords: %d", c.Scraper.DelayBetweenKeywords)
	}
	if c.Scraper.RateLimitBackoff < 0 {
		return fmt.Errorf("invalid rate_limit_backoff: %d", c.Scraper.RateLimitBackoff)
	}
	if c.RapidAPI.Timeout < 0 {
		return fmt.Errorf("invalid timeout: %d", c.RapidAPI.Timeout)
	}
	if port, err := strconv.Atoi(c.Service.Port); err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("invalid port: %q", c.Service.Port)
	}
	return nil
}

// SearchURL is the full endpoint the search client calls.
func (c RapidAPIConfig) SearchURL() string {
	base := c.BaseURL
	if base == "" {
		base = "https://" + c.Host
	}
	return strings.TrimRight(base, "/") + c.SearchPath
}

func (c RapidAPIConfig) RequestTimeout() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

func (c ScraperConfig) Delay() time.Duration {
	return time.Duration(c.DelayBetweenKeywords) * time.Second
}

func (c ScraperConfig) Backoff() time.Duration {
	return time.Duration(c.RateLimitBackoff) * time.Second
}
