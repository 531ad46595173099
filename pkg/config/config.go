package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for a crawl run
type Config struct {
	// Target service endpoints
	Target TargetConfig `yaml:"target" json:"target"`

	// Search query composition
	Query QueryConfig `yaml:"query" json:"query"`

	// Crawl loop bounds and pacing
	Crawl CrawlConfig `yaml:"crawl" json:"crawl"`

	// Render surface (browser) settings
	Browser BrowserConfig `yaml:"browser" json:"browser"`

	// Session persistence
	Session SessionConfig `yaml:"session" json:"session"`

	// Output settings
	Output OutputConfig `yaml:"output" json:"output"`

	// Retry policy for render surface operations
	Retry RetryConfig `yaml:"retry" json:"retry"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// TargetConfig describes the service being crawled
type TargetConfig struct {
	BaseURL    string `yaml:"base_url" json:"base_url"`
	LoginPath  string `yaml:"login_path" json:"login_path"`
	SearchPath string `yaml:"search_path" json:"search_path"`
	// SearchMode is the feed tab ("live" for Latest, "top" for Top)
	SearchMode string `yaml:"search_mode" json:"search_mode"`
}

// QueryConfig holds the query terms and language filter
type QueryConfig struct {
	Keywords []string `yaml:"keywords" json:"keywords"`
	Language string   `yaml:"language" json:"language"`
}

// CrawlConfig holds crawl loop configuration
type CrawlConfig struct {
	TargetCount     int           `yaml:"target_count" json:"target_count"`
	RoundCap        int           `yaml:"round_cap" json:"round_cap"`
	ScrollPauseMin  time.Duration `yaml:"scroll_pause_min" json:"scroll_pause_min"`
	ScrollPauseMax  time.Duration `yaml:"scroll_pause_max" json:"scroll_pause_max"`
	NudgeDistance   int           `yaml:"nudge_distance" json:"nudge_distance"`
	LoginTimeout    time.Duration `yaml:"login_timeout" json:"login_timeout"`
	ResultsTimeout  time.Duration `yaml:"results_timeout" json:"results_timeout"`
	FallbackTimeout time.Duration `yaml:"fallback_timeout" json:"fallback_timeout"`
	DialogTimeout   time.Duration `yaml:"dialog_timeout" json:"dialog_timeout"`
	PollInterval    time.Duration `yaml:"poll_interval" json:"poll_interval"`
}

// BrowserConfig holds render surface configuration
type BrowserConfig struct {
	Headless     bool   `yaml:"headless" json:"headless"`
	Bin          string `yaml:"bin" json:"bin"`
	UserAgent    string `yaml:"user_agent" json:"user_agent"`
	Language     string `yaml:"language" json:"language"`
	WindowWidth  int    `yaml:"window_width" json:"window_width"`
	WindowHeight int    `yaml:"window_height" json:"window_height"`
}

// SessionConfig holds session store configuration
type SessionConfig struct {
	// Backend is one of file, keyring, encrypted
	Backend    string `yaml:"backend" json:"backend"`
	File       string `yaml:"file" json:"file"`
	AuthMarker string `yaml:"auth_marker" json:"auth_marker"`
}

// OutputConfig holds output configuration
type OutputConfig struct {
	Directory       string `yaml:"directory" json:"directory"`
	FilePrefix      string `yaml:"file_prefix" json:"file_prefix"`
	CSV             bool   `yaml:"csv" json:"csv"`
	SQLite          string `yaml:"sqlite" json:"sqlite"`
	DebugHTML       string `yaml:"debug_html" json:"debug_html"`
	DebugScreenshot string `yaml:"debug_screenshot" json:"debug_screenshot"`
}

// RetryConfig holds retry configuration for surface operations
type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts" json:"max_attempts"`
	BaseDelay   time.Duration `yaml:"base_delay" json:"base_delay"`
	MaxDelay    time.Duration `yaml:"max_delay" json:"max_delay"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Target: TargetConfig{
			BaseURL:    "https://x.com",
			LoginPath:  "/login",
			SearchPath: "/search",
			SearchMode: "live",
		},
		Query: QueryConfig{
			Keywords: []string{"paro", "nacional", "ecuador"},
			Language: "es",
		},
		Crawl: CrawlConfig{
			TargetCount:     500,
			RoundCap:        300,
			ScrollPauseMin:  1200 * time.Millisecond,
			ScrollPauseMax:  2200 * time.Millisecond,
			NudgeDistance:   400,
			LoginTimeout:    180 * time.Second,
			ResultsTimeout:  60 * time.Second,
			FallbackTimeout: 10 * time.Second,
			DialogTimeout:   5 * time.Second,
			PollInterval:    500 * time.Millisecond,
		},
		Browser: BrowserConfig{
			Headless:     true,
			UserAgent:    "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
			Language:     "en-US",
			WindowWidth:  1280,
			WindowHeight: 1000,
		},
		Session: SessionConfig{
			Backend:    "file",
			File:       "x_cookies.json",
			AuthMarker: "auth_token",
		},
		Output: OutputConfig{
			Directory:       ".",
			FilePrefix:      "x_tweets",
			CSV:             true,
			DebugHTML:       "debug_x_search_source.html",
			DebugScreenshot: "debug_x_search_screen.png",
		},
		Retry: RetryConfig{
			MaxAttempts: 3,
			BaseDelay:   time.Second,
			MaxDelay:    10 * time.Second,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// QueryString composes the keywords and language filter into the feed query
func (c *Config) QueryString() string {
	query := strings.Join(c.Query.Keywords, " ")
	if c.Query.Language != "" {
		query = strings.TrimSpace(query + " lang:" + c.Query.Language)
	}
	return query
}

// TargetDomain returns the host of the target base URL without a "www." prefix
func (c *Config) TargetDomain() string {
	u, err := url.Parse(c.Target.BaseURL)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}

// LoginURL returns the interactive login page
func (c *Config) LoginURL() string {
	return strings.TrimRight(c.Target.BaseURL, "/") + c.Target.LoginPath
}

// SearchURL returns the feed view for the configured query
func (c *Config) SearchURL() string {
	params := url.Values{}
	params.Set("q", c.QueryString())
	params.Set("src", "typed_query")
	if c.Target.SearchMode != "" {
		params.Set("f", c.Target.SearchMode)
	}
	return strings.TrimRight(c.Target.BaseURL, "/") + c.Target.SearchPath + "?" + params.Encode()
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if keywords := os.Getenv("FEEDHARVEST_KEYWORDS"); keywords != "" {
		c.Query.Keywords = strings.Fields(keywords)
	}
	if lang := os.Getenv("FEEDHARVEST_LANGUAGE"); lang != "" {
		c.Query.Language = lang
	}

	if target := os.Getenv("FEEDHARVEST_TARGET_COUNT"); target != "" {
		val, err := strconv.Atoi(target)
		if err != nil {
			return fmt.Errorf("invalid FEEDHARVEST_TARGET_COUNT: %w", err)
		}
		c.Crawl.TargetCount = val
	}
	if roundCap := os.Getenv("FEEDHARVEST_ROUND_CAP"); roundCap != "" {
		val, err := strconv.Atoi(roundCap)
		if err != nil {
			return fmt.Errorf("invalid FEEDHARVEST_ROUND_CAP: %w", err)
		}
		c.Crawl.RoundCap = val
	}

	if headless := os.Getenv("FEEDHARVEST_HEADLESS"); headless != "" {
		c.Browser.Headless = strings.ToLower(headless) == "true"
	}
	if bin := os.Getenv("FEEDHARVEST_BROWSER_BIN"); bin != "" {
		c.Browser.Bin = bin
	}

	if backend := os.Getenv("FEEDHARVEST_SESSION_BACKEND"); backend != "" {
		c.Session.Backend = backend
	}
	if sessionFile := os.Getenv("FEEDHARVEST_SESSION_FILE"); sessionFile != "" {
		c.Session.File = sessionFile
	}

	if outputDir := os.Getenv("FEEDHARVEST_OUTPUT_DIR"); outputDir != "" {
		c.Output.Directory = outputDir
	}
	if csv := os.Getenv("FEEDHARVEST_CSV"); csv != "" {
		c.Output.CSV = strings.ToLower(csv) == "true"
	}
	if sqlitePath := os.Getenv("FEEDHARVEST_SQLITE"); sqlitePath != "" {
		c.Output.SQLite = sqlitePath
	}

	if logLevel := os.Getenv("FEEDHARVEST_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	home := os.Getenv("HOME")
	locations := []string{
		".feedharvest.yaml",
		".feedharvest.yml",
		filepath.Join(home, ".config", "feedharvest", "config.yaml"),
		filepath.Join(home, ".config", "feedharvest", "config.yml"),
		filepath.Join(home, ".feedharvest.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	u, err := url.Parse(c.Target.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, errors.New("target base URL must be an absolute URL"))
	}

	if len(c.Query.Keywords) == 0 {
		errs = append(errs, errors.New("at least one query keyword is required"))
	}

	if c.Crawl.TargetCount <= 0 {
		errs = append(errs, errors.New("target count must be positive"))
	}
	if c.Crawl.RoundCap <= 0 {
		errs = append(errs, errors.New("round cap must be positive"))
	}
	if c.Crawl.ScrollPauseMin < 0 || c.Crawl.ScrollPauseMax < c.Crawl.ScrollPauseMin {
		errs = append(errs, errors.New("scroll pause bounds must satisfy 0 <= min <= max"))
	}
	if c.Crawl.LoginTimeout <= 0 || c.Crawl.ResultsTimeout <= 0 || c.Crawl.FallbackTimeout <= 0 {
		errs = append(errs, errors.New("wait timeouts must be positive"))
	}
	if c.Crawl.PollInterval <= 0 {
		errs = append(errs, errors.New("poll interval must be positive"))
	}

	validBackends := map[string]bool{
		"file": true, "keyring": true, "encrypted": true,
	}
	backend := strings.ToLower(strings.TrimSpace(c.Session.Backend))
	if !validBackends[backend] {
		errs = append(errs, errors.New("invalid session backend"))
	}
	if backend != "keyring" && c.Session.File == "" {
		errs = append(errs, errors.New("session file is required"))
	}
	if c.Session.AuthMarker == "" {
		errs = append(errs, errors.New("session auth marker is required"))
	}

	if c.Output.Directory == "" {
		errs = append(errs, errors.New("output directory is required"))
	}
	if c.Output.FilePrefix == "" {
		errs = append(errs, errors.New("output file prefix is required"))
	}

	if c.Retry.MaxAttempts <= 0 {
		errs = append(errs, errors.New("retry max attempts must be positive"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "disabled": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if keywords, ok := flags["keywords"].([]string); ok && len(keywords) > 0 {
		c.Query.Keywords = keywords
	}
	if lang, ok := flags["language"].(string); ok && lang != "" {
		c.Query.Language = lang
	}
	if target, ok := flags["target-count"].(int); ok && target > 0 {
		c.Crawl.TargetCount = target
	}
	if roundCap, ok := flags["round-cap"].(int); ok && roundCap > 0 {
		c.Crawl.RoundCap = roundCap
	}
	if headless, ok := flags["headless"].(bool); ok {
		c.Browser.Headless = headless
	}
	if csv, ok := flags["csv"].(bool); ok {
		c.Output.CSV = csv
	}
	if outputDir, ok := flags["output"].(string); ok && outputDir != "" {
		c.Output.Directory = outputDir
	}
	if sqlitePath, ok := flags["sqlite"].(string); ok && sqlitePath != "" {
		c.Output.SQLite = sqlitePath
	}
	if sessionFile, ok := flags["session-file"].(string); ok && sessionFile != "" {
		c.Session.File = sessionFile
	}
	if backend, ok := flags["session-backend"].(string); ok && backend != "" {
		c.Session.Backend = backend
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".feedharvest.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
