package config

import (
	"time"
)

// Version is set at build time via ldflags.
var Version = "dev"

// DefaultBaseURL is the content source all URLs resolve against.
const DefaultBaseURL = "https://grokipedia.com"

// DefaultSitemapIndexURL is the published sitemap index.
const DefaultSitemapIndexURL = "https://assets.grokipedia.com/sitemap/sitemap-index.xml"

// DefaultUserAgent identifies this client when none is configured.
const DefaultUserAgent = "grokipedia-go/0.1"

// Config is the root configuration.
type Config struct {
	Client  ClientConfig  `mapstructure:"client"  yaml:"client"`
	Fetcher FetcherConfig `mapstructure:"fetcher" yaml:"fetcher"`
	Sitemap SitemapConfig `mapstructure:"sitemap" yaml:"sitemap"`
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// ClientConfig controls page fetching policy.
type ClientConfig struct {
	BaseURL             string        `mapstructure:"base_url"              yaml:"base_url"`
	UserAgent           string        `mapstructure:"user_agent"            yaml:"user_agent"`
	Timeout             time.Duration `mapstructure:"timeout"               yaml:"timeout"`
	RespectRobots       bool          `mapstructure:"respect_robots"        yaml:"respect_robots"`
	AllowRobotsOverride bool          `mapstructure:"allow_robots_override" yaml:"allow_robots_override"`
}

// FetcherConfig controls the HTTP fetcher.
type FetcherConfig struct {
	FollowRedirects bool          `mapstructure:"follow_redirects"  yaml:"follow_redirects"`
	MaxRedirects    int           `mapstructure:"max_redirects"     yaml:"max_redirects"`
	MaxBodySize     int64         `mapstructure:"max_body_size"     yaml:"max_body_size"`
	TLSInsecure     bool          `mapstructure:"tls_insecure"      yaml:"tls_insecure"`
	IdleConnTimeout time.Duration `mapstructure:"idle_conn_timeout" yaml:"idle_conn_timeout"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"    yaml:"max_idle_conns"`
}

// SitemapConfig controls the manifest cache.
type SitemapConfig struct {
	IndexURL string `mapstructure:"index_url" yaml:"index_url"`
}

// StorageConfig controls where parsed pages are persisted.
type StorageConfig struct {
	Type            string `mapstructure:"type"             yaml:"type"`
	OutputPath      string `mapstructure:"output_path"      yaml:"output_path"`
	MongoURI        string `mapstructure:"mongo_uri"        yaml:"mongo_uri"`
	MongoDatabase   string `mapstructure:"mongo_database"   yaml:"mongo_database"`
	MongoCollection string `mapstructure:"mongo_collection" yaml:"mongo_collection"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Client: ClientConfig{
			BaseURL:       DefaultBaseURL,
			UserAgent:     DefaultUserAgent,
			Timeout:       10 * time.Second,
			RespectRobots: true,
		},
		Fetcher: FetcherConfig{
			FollowRedirects: true,
			MaxRedirects:    5,
			MaxBodySize:     10 << 20,
			IdleConnTimeout: 90 * time.Second,
			MaxIdleConns:    20,
		},
		Sitemap: SitemapConfig{
			IndexURL: DefaultSitemapIndexURL,
		},
		Storage: StorageConfig{
			Type:            "json",
			OutputPath:      "./output/pages.json",
			MongoDatabase:   "grokipedia",
			MongoCollection: "pages",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
