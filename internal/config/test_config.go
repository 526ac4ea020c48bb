package config

import "time"

// TestConfig returns a config suitable for testing
func TestConfig() *Config {
	cfg := defaultConfig()
	cfg.Source = SourceConfig{
		Kind:    SourceListing,
		BaseURL: "http://127.0.0.1",
		Listing: "/articles",
	}
	cfg.Fetch = FetchConfig{
		HTTPTimeout:  5 * time.Second,
		UserAgent:    "shelf-test/1.0",
		Concurrency:  4,
		AllowPrivate: true, // httptest servers listen on loopback
	}
	cfg.Cache = CacheConfig{
		Path:    "", // session-scoped temp file
		Timeout: 1 * time.Second,
	}
	cfg.Open.Command = "true"
	return cfg
}
