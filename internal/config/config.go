package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	API        APIConfig     `mapstructure:"api"`
	Images     ImagesConfig  `mapstructure:"images"`
	Rails      []RailConfig  `mapstructure:"rails"`
	CustomRail RailConfig    `mapstructure:"custom_rail"`
	Cache      CacheConfig   `mapstructure:"cache"`
	UI         UIConfig      `mapstructure:"ui"`
	Logging    LoggingConfig `mapstructure:"logging"`
}

// APIConfig holds catalog API configuration
type APIConfig struct {
	BaseURL           string        `mapstructure:"base_url"`    // e.g. http://127.0.0.1:8000/api/v1/
	TitlesPath        string        `mapstructure:"titles_path"` // relative to BaseURL
	GenresPath        string        `mapstructure:"genres_path"` // relative to BaseURL
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"` // 0 disables throttling
	Retries           int           `mapstructure:"retries"`             // extra attempts for genres/details only
	RetryDelay        time.Duration `mapstructure:"retry_delay"`
	PageSize          int           `mapstructure:"page_size"` // 0 lets the server decide
}

// ImagesConfig holds poster probing configuration
type ImagesConfig struct {
	ProbeTimeout time.Duration `mapstructure:"probe_timeout"`
	Concurrency  int           `mapstructure:"concurrency"`
	CacheSize    int           `mapstructure:"cache_size"`
	VerdictTTL   time.Duration `mapstructure:"verdict_ttl"`
	MaxBytes     int64         `mapstructure:"max_bytes"` // bytes read per probe
}

// RailConfig describes one homepage rail
type RailConfig struct {
	ID     string `mapstructure:"id"`
	Title  string `mapstructure:"title"`
	Genre  string `mapstructure:"genre"`
	SortBy string `mapstructure:"sort_by"`
	Quota  int    `mapstructure:"quota"` // items on initial load
	Batch  int    `mapstructure:"batch"` // items per "show more"
}

// CacheConfig holds local cache configuration
type CacheConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	Dir       string        `mapstructure:"dir"`
	DetailTTL time.Duration `mapstructure:"detail_ttl"`
}

// UIConfig holds UI configuration
type UIConfig struct {
	Theme     string `mapstructure:"theme"`
	ItemWidth int    `mapstructure:"item_width"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File       string `mapstructure:"file"`
	Level      string `mapstructure:"level"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

const defaultSortBy = "-imdb_score"

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:           "http://127.0.0.1:8000/api/v1/",
			TitlesPath:        "titles/",
			GenresPath:        "genres/",
			Timeout:           10 * time.Second,
			RequestsPerSecond: 20,
			Retries:           2,
			RetryDelay:        250 * time.Millisecond,
		},
		Images: ImagesConfig{
			ProbeTimeout: 5 * time.Second,
			Concurrency:  8,
			CacheSize:    1024,
			VerdictTTL:   24 * time.Hour,
			MaxBytes:     512 * 1024,
		},
		Rails: []RailConfig{
			{ID: "top-rated", Title: "Top rated", SortBy: defaultSortBy, Quota: 6, Batch: 6},
			{ID: "category-1", Title: "Action", Genre: "Action", SortBy: defaultSortBy, Quota: 6, Batch: 6},
			{ID: "category-2", Title: "Comedy", Genre: "Comedy", SortBy: defaultSortBy, Quota: 6, Batch: 6},
		},
		CustomRail: RailConfig{
			ID: "custom", Title: "Browse by genre", Genre: "Drama", SortBy: defaultSortBy, Quota: 6, Batch: 6,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       defaultCachePath(),
			DetailTTL: 7 * 24 * time.Hour,
		},
		UI: UIConfig{
			Theme:     "default",
			ItemWidth: 22,
		},
		Logging: LoggingConfig{
			File:       defaultLogPath(),
			Level:      "INFO",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// defaultLogPath returns the default log file path for the current OS
func defaultLogPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "marquee", "marquee.log")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "marquee", "marquee.log")
	}
}

// defaultConfigPath returns the default config directory for the current OS
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "marquee")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "marquee")
	}
}

// defaultCachePath returns the default cache directory path for the current OS
func defaultCachePath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "marquee", "cache")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "marquee", "cache")
	}
}

// newViper returns a viper instance with env overrides wired
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")

	// MARQUEE_API_BASE_URL overrides api.base_url
	v.SetEnvPrefix("MARQUEE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// LoadConfig loads configuration from the default search path and environment
func LoadConfig() (*Config, error) {
	v := newViper()
	v.SetConfigName("config")
	v.AddConfigPath(defaultConfigPath())
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}
	return decode(v)
}

// Load loads configuration from an explicit file path
func Load(path string) (*Config, error) {
	if path == "" {
		return LoadConfig()
	}
	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}
	return decode(v)
}

func decode(v *viper.Viper) (*Config, error) {
	cfg := DefaultConfig()

	// AutomaticEnv only applies to keys viper already knows about
	bindDefaults(v, cfg)

	// A rails list replaces the default rails instead of merging into them
	if v.IsSet("rails") {
		cfg.Rails = nil
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}
	cfg.applyRailDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func bindDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("api.base_url", cfg.API.BaseURL)
	v.SetDefault("api.titles_path", cfg.API.TitlesPath)
	v.SetDefault("api.genres_path", cfg.API.GenresPath)
	v.SetDefault("api.timeout", cfg.API.Timeout)
	v.SetDefault("api.requests_per_second", cfg.API.RequestsPerSecond)
	v.SetDefault("api.retries", cfg.API.Retries)
	v.SetDefault("api.retry_delay", cfg.API.RetryDelay)
	v.SetDefault("api.page_size", cfg.API.PageSize)

	v.SetDefault("images.probe_timeout", cfg.Images.ProbeTimeout)
	v.SetDefault("images.concurrency", cfg.Images.Concurrency)
	v.SetDefault("images.cache_size", cfg.Images.CacheSize)
	v.SetDefault("images.verdict_ttl", cfg.Images.VerdictTTL)
	v.SetDefault("images.max_bytes", cfg.Images.MaxBytes)

	v.SetDefault("cache.enabled", cfg.Cache.Enabled)
	v.SetDefault("cache.dir", cfg.Cache.Dir)
	v.SetDefault("cache.detail_ttl", cfg.Cache.DetailTTL)

	v.SetDefault("logging.file", cfg.Logging.File)
	v.SetDefault("logging.level", cfg.Logging.Level)
}

// applyRailDefaults fills zero fields left by a partial rails section
func (c *Config) applyRailDefaults() {
	for i := range c.Rails {
		fillRail(&c.Rails[i])
	}
	fillRail(&c.CustomRail)
	if c.CustomRail.ID == "" {
		c.CustomRail.ID = "custom"
	}
}

func fillRail(r *RailConfig) {
	if r.SortBy == "" {
		r.SortBy = defaultSortBy
	}
	if r.Batch == 0 {
		r.Batch = r.Quota
	}
	if r.Title == "" {
		r.Title = r.Genre
	}
}

// Validate rejects configurations the homepage cannot run with
func (c *Config) Validate() error {
	if strings.TrimSpace(c.API.BaseURL) == "" {
		return errors.New("api.base_url is required")
	}
	if c.Images.Concurrency < 1 {
		return fmt.Errorf("images.concurrency must be >= 1, got %d", c.Images.Concurrency)
	}

	seen := make(map[string]bool, len(c.Rails)+1)
	for _, r := range append(append([]RailConfig{}, c.Rails...), c.CustomRail) {
		if r.ID == "" {
			return errors.New("every rail needs an id")
		}
		if seen[r.ID] {
			return fmt.Errorf("duplicate rail id %q", r.ID)
		}
		seen[r.ID] = true
		if r.Quota < 1 {
			return fmt.Errorf("rail %q: quota must be >= 1, got %d", r.ID, r.Quota)
		}
		if r.Batch < 1 {
			return fmt.Errorf("rail %q: batch must be >= 1, got %d", r.ID, r.Batch)
		}
	}
	return nil
}

// SaveConfig saves the configuration to the default config path
func SaveConfig(cfg *Config) error {
	configPath := defaultConfigPath()

	// Ensure config directory exists
	if err := os.MkdirAll(configPath, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return SaveConfigAs(cfg, filepath.Join(configPath, "config.yaml"))
}

// SaveConfigAs writes the configuration to the given file
func SaveConfigAs(cfg *Config, configFile string) error {
	v := viper.New()

	// Set fields individually to ensure correct key names (snake_case)
	v.Set("api.base_url", cfg.API.BaseURL)
	v.Set("api.titles_path", cfg.API.TitlesPath)
	v.Set("api.genres_path", cfg.API.GenresPath)
	v.Set("api.timeout", cfg.API.Timeout.String())
	v.Set("api.requests_per_second", cfg.API.RequestsPerSecond)
	v.Set("api.retries", cfg.API.Retries)
	v.Set("api.retry_delay", cfg.API.RetryDelay.String())
	v.Set("api.page_size", cfg.API.PageSize)

	v.Set("images.probe_timeout", cfg.Images.ProbeTimeout.String())
	v.Set("images.concurrency", cfg.Images.Concurrency)
	v.Set("images.cache_size", cfg.Images.CacheSize)
	v.Set("images.verdict_ttl", cfg.Images.VerdictTTL.String())
	v.Set("images.max_bytes", cfg.Images.MaxBytes)

	rails := make([]map[string]any, len(cfg.Rails))
	for i, r := range cfg.Rails {
		rails[i] = railMap(r)
	}
	v.Set("rails", rails)
	v.Set("custom_rail", railMap(cfg.CustomRail))

	v.Set("cache.enabled", cfg.Cache.Enabled)
	v.Set("cache.dir", cfg.Cache.Dir)
	v.Set("cache.detail_ttl", cfg.Cache.DetailTTL.String())

	v.Set("ui.theme", cfg.UI.Theme)
	v.Set("ui.item_width", cfg.UI.ItemWidth)

	v.Set("logging.file", cfg.Logging.File)
	v.Set("logging.level", cfg.Logging.Level)
	v.Set("logging.max_size_mb", cfg.Logging.MaxSizeMB)
	v.Set("logging.max_backups", cfg.Logging.MaxBackups)
	v.Set("logging.max_age_days", cfg.Logging.MaxAgeDays)
	v.Set("logging.compress", cfg.Logging.Compress)

	if err := v.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func railMap(r RailConfig) map[string]any {
	return map[string]any{
		"id":      r.ID,
		"title":   r.Title,
		"genre":   r.Genre,
		"sort_by": r.SortBy,
		"quota":   r.Quota,
		"batch":   r.Batch,
	}
}

// TitlesURL returns the absolute list/detail endpoint
func (c APIConfig) TitlesURL() string {
	return joinURL(c.BaseURL, c.TitlesPath)
}

// GenresURL returns the absolute genre list endpoint
func (c APIConfig) GenresURL() string {
	return joinURL(c.BaseURL, c.GenresPath)
}

func joinURL(base, path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}

// ClearCache removes all cached data
func ClearCache(cfg *Config) error {
	if cfg.Cache.Dir == "" {
		return nil
	}
	if err := os.RemoveAll(cfg.Cache.Dir); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	return nil
}
