package config

import "time"

// TestConfig returns a config suitable for testing. Endpoints are expected to
// be replaced with httptest server URLs by the caller.
func TestConfig() *Config {
	return &Config{
		API: APIConfig{
			SearchURL:         "http://127.0.0.1:0/query",
			GraphQLURL:        "http://127.0.0.1:0/graphql",
			FilesURL:          "http://127.0.0.1:0/download",
			EntryURL:          "http://127.0.0.1:0/structure",
			HTTPTimeout:       5 * time.Second,
			UserAgent:         "pdbscope-test/1.0",
			RequestsPerSecond: 0, // unlimited
		},
		Search: SearchConfig{
			Debounce:   10 * time.Millisecond,
			ListHeight: 5,
		},
		Cache: CacheConfig{TTL: time.Hour},
		Log:   LogConfig{Level: "off"},
		UI:    UIConfig{Theme: "notty", Colors: defaultConfig().UI.Colors},
		Keys:  defaultConfig().Keys,
	}
}
