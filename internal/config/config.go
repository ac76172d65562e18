package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	API    APIConfig    `mapstructure:"api"`
	Search SearchConfig `mapstructure:"search"`
	Cache  CacheConfig  `mapstructure:"cache"`
	Log    LogConfig    `mapstructure:"log"`
	UI     UIConfig     `mapstructure:"ui"`
	Keys   KeyConfig    `mapstructure:"keys"`
}

// APIConfig holds the RCSB endpoints and transport settings.
type APIConfig struct {
	SearchURL         string        `mapstructure:"search_url"`
	GraphQLURL        string        `mapstructure:"graphql_url"`
	FilesURL          string        `mapstructure:"files_url"`
	EntryURL          string        `mapstructure:"entry_url"`
	HTTPTimeout       time.Duration `mapstructure:"http_timeout"`
	UserAgent         string        `mapstructure:"user_agent"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
}

type SearchConfig struct {
	Debounce   time.Duration `mapstructure:"debounce"`
	ListHeight int           `mapstructure:"list_height"`
}

// CacheConfig configures the on-disk entry metadata cache. An empty path
// keeps everything in memory for the session.
type CacheConfig struct {
	Path string        `mapstructure:"path"`
	TTL  time.Duration `mapstructure:"ttl"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

type UIConfig struct {
	// Theme is a glamour style name for the structure summary; empty picks
	// one from the terminal background.
	Theme  string   `mapstructure:"theme"`
	Colors UIColors `mapstructure:"colors"`
}

type UIColors struct {
	Primary    string `mapstructure:"primary"`
	Secondary  string `mapstructure:"secondary"`
	Accent     string `mapstructure:"accent"`
	Background string `mapstructure:"background"`
	Surface    string `mapstructure:"surface"`
	Text       string `mapstructure:"text"`
	Muted      string `mapstructure:"muted"`
	Error      string `mapstructure:"error"`
	Success    string `mapstructure:"success"`
}

type KeyConfig struct {
	Modifier string      `mapstructure:"modifier"`
	Bindings KeyBindings `mapstructure:"bindings"`
}

type KeyBindings struct {
	Quit    string `mapstructure:"quit"`
	Home    string `mapstructure:"home"`
	Explore string `mapstructure:"explore"`
	Search  string `mapstructure:"search"`
	Open    string `mapstructure:"open"`
	Reload  string `mapstructure:"reload"`
	Back    string `mapstructure:"back"`
	Help    string `mapstructure:"help"`
}

const (
	DefaultSearchURL  = "https://search.rcsb.org/rcsbsearch/v2/query"
	DefaultGraphQLURL = "https://data.rcsb.org/graphql"
	DefaultFilesURL   = "https://files.rcsb.org/download"
	DefaultEntryURL   = "https://www.rcsb.org/structure"
)

func defaultConfig() *Config {
	return &Config{
		API: APIConfig{
			SearchURL:         DefaultSearchURL,
			GraphQLURL:        DefaultGraphQLURL,
			FilesURL:          DefaultFilesURL,
			EntryURL:          DefaultEntryURL,
			HTTPTimeout:       20 * time.Second,
			UserAgent:         "pdbscope/1.0 (https://github.com/pders01/pdbscope)",
			RequestsPerSecond: 5,
		},
		Search: SearchConfig{
			Debounce:   500 * time.Millisecond,
			ListHeight: 8,
		},
		Cache: CacheConfig{
			Path: "",
			TTL:  24 * time.Hour,
		},
		Log: LogConfig{
			Level: "off",
			File:  "",
		},
		UI: UIConfig{
			Colors: UIColors{
				Primary:    "#FF6B6B",
				Secondary:  "#4ECDC4",
				Accent:     "#95E1D3",
				Background: "#1A1A2E",
				Surface:    "#16213E",
				Text:       "#EAEAEA",
				Muted:      "#94A3B8",
				Error:      "#F87171",
				Success:    "#4ADE80",
			},
		},
		Keys: KeyConfig{
			Modifier: "ctrl",
			Bindings: KeyBindings{
				Quit:    "q",
				Home:    "h",
				Explore: "e",
				Search:  "s",
				Open:    "o",
				Reload:  "r",
				Back:    "esc",
				Help:    "?",
			},
		},
	}
}

// Default returns the built-in configuration.
func Default() *Config {
	return defaultConfig()
}

func Load(configPath string) (*Config, error) {
	v := viper.New()

	cfg := defaultConfig()
	v.SetDefault("api", cfg.API)
	v.SetDefault("search", cfg.Search)
	v.SetDefault("cache", cfg.Cache)
	v.SetDefault("log", cfg.Log)
	v.SetDefault("ui", cfg.UI)
	v.SetDefault("keys", cfg.Keys)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		homeDir, _ := os.UserHomeDir()
		configDir := filepath.Join(homeDir, ".config", "pdbscope")

		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(configDir)
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("PDBSCOPE")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	expandPaths(&config)

	return &config, nil
}

// Validate rejects settings the search pipeline cannot run with.
func (c *Config) Validate() error {
	if c.API.SearchURL == "" || c.API.GraphQLURL == "" || c.API.FilesURL == "" {
		return fmt.Errorf("api endpoints must not be empty")
	}
	if c.API.HTTPTimeout <= 0 {
		return fmt.Errorf("api.http_timeout must be positive, got %s", c.API.HTTPTimeout)
	}
	if c.API.RequestsPerSecond < 0 {
		return fmt.Errorf("api.requests_per_second must not be negative")
	}
	if c.Search.Debounce < 0 {
		return fmt.Errorf("search.debounce must not be negative")
	}
	if c.Search.ListHeight < 1 {
		return fmt.Errorf("search.list_height must be at least 1")
	}
	return nil
}

// expandPath expands ~ to home directory and converts to absolute path
func expandPath(path string) string {
	if path == "" {
		return path
	}

	if len(path) >= 2 && path[:2] == "~/" {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path[2:])
	}

	if !filepath.IsAbs(path) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}

	return path
}

func expandPaths(cfg *Config) {
	cfg.Cache.Path = expandPath(cfg.Cache.Path)
	cfg.Log.File = expandPath(cfg.Log.File)
}

func Save(config *Config, path string) error {
	v := viper.New()

	// Durations as strings for TOML readability
	apiCfg := map[string]interface{}{
		"search_url":          config.API.SearchURL,
		"graphql_url":         config.API.GraphQLURL,
		"files_url":           config.API.FilesURL,
		"entry_url":           config.API.EntryURL,
		"http_timeout":        config.API.HTTPTimeout.String(),
		"user_agent":          config.API.UserAgent,
		"requests_per_second": config.API.RequestsPerSecond,
	}

	searchCfg := map[string]interface{}{
		"debounce":    config.Search.Debounce.String(),
		"list_height": config.Search.ListHeight,
	}

	cacheCfg := map[string]interface{}{
		"path": config.Cache.Path,
		"ttl":  config.Cache.TTL.String(),
	}

	logCfg := map[string]interface{}{
		"level": config.Log.Level,
		"file":  config.Log.File,
	}

	v.Set("api", apiCfg)
	v.Set("search", searchCfg)
	v.Set("cache", cacheCfg)
	v.Set("log", logCfg)
	v.Set("ui", config.UI)
	v.Set("keys", config.Keys)

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	return v.WriteConfigAs(path)
}

func GenerateDefaultConfig(path string) error {
	return Save(defaultConfig(), path)
}
