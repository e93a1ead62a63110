package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Config holds application configuration values
type Config struct {
	// Logging
	LogLevel string `yaml:"log_level"`
	JSONLog  bool   `yaml:"json_log"`

	// Browser
	Engine      string `yaml:"engine"`
	Headless    bool   `yaml:"headless"`
	ChromePath  string `yaml:"chrome_path"`
	UserAgent   string `yaml:"user_agent"`
	Proxy       string `yaml:"proxy"`
	SnapshotDir string `yaml:"snapshot_dir"`
	Session     string `yaml:"session"`

	// Scraping
	BaseURL            string        `yaml:"base_url"`
	Tab                string        `yaml:"tab"`
	MaxScrolls         int           `yaml:"max_scrolls"`
	ScrollPause        time.Duration `yaml:"scroll_pause"`
	ProfileWaitTimeout time.Duration `yaml:"profile_wait_timeout"`
	TabWaitTimeout     time.Duration `yaml:"tab_wait_timeout"`
	TabSettleDelay     time.Duration `yaml:"tab_settle_delay"`
	NavigationTimeout  time.Duration `yaml:"navigation_timeout"`
	DetailWaitTimeout  time.Duration `yaml:"detail_wait_timeout"`
	ItemDelay          time.Duration `yaml:"item_delay"`
	StateFallback      bool          `yaml:"state_fallback"`

	// Rate Limiting
	NavRateLimitRPS   float64 `yaml:"nav_rate_limit_rps"`
	NavRateLimitBurst int     `yaml:"nav_rate_limit_burst"`

	// Output
	OutputDir   string `yaml:"output_dir"`
	CSV         bool   `yaml:"csv"`
	Markdown    bool   `yaml:"markdown"`
	MetricsFile string `yaml:"metrics_file"`
}

// Default returns a Config populated with the default constants.
func Default() *Config {
	return &Config{
		LogLevel:           DefaultLogLevel,
		JSONLog:            DefaultJSONLog,
		Engine:             DefaultEngine,
		Headless:           DefaultHeadless,
		UserAgent:          DefaultUserAgent,
		BaseURL:            DefaultBaseURL,
		Tab:                DefaultTab,
		MaxScrolls:         DefaultMaxScrolls,
		ScrollPause:        DefaultScrollPause,
		ProfileWaitTimeout: DefaultProfileWaitTimeout,
		TabWaitTimeout:     DefaultTabWaitTimeout,
		TabSettleDelay:     DefaultTabSettleDelay,
		NavigationTimeout:  DefaultNavigationTimeout,
		DetailWaitTimeout:  DefaultDetailWaitTimeout,
		ItemDelay:          DefaultItemDelay,
		StateFallback:      DefaultStateFallback,
		NavRateLimitRPS:    DefaultNavRateLimitRPS,
		NavRateLimitBurst:  DefaultNavRateLimitBurst,
		OutputDir:          DefaultOutputDir,
	}
}

// Load builds a Config by combining defaults, an optional config file,
// a .env file, environment variables, and CLI flags (in that order).
// Caller should pass the executing *cobra.Command so flags can be read.
func Load(cmd *cobra.Command) (*Config, error) {
	cfg := Default()

	// .env never overrides variables already set in the environment
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	path := os.Getenv(EnvPrefix + "CONFIG")
	if cmd != nil {
		if f := cmd.Flags().Lookup("config"); f != nil && f.Changed {
			path = f.Value.String()
		}
	}
	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}

	if err := cfg.loadEnv(); err != nil {
		return nil, err
	}

	if cmd != nil {
		if err := cfg.applyFlags(cmd); err != nil {
			return nil, err
		}
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// loadFile merges a YAML config file into c. An empty path searches the
// default locations; finding none is not an error.
func (c *Config) loadFile(path string) error {
	if path == "" {
		path = findConfigFile()
		if path == "" {
			return nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func findConfigFile() string {
	locations := []string{".tokscrape.yaml", ".tokscrape.yml"}
	if home, err := os.UserHomeDir(); err == nil {
		locations = append(locations,
			filepath.Join(home, ".config", "tokscrape", "config.yaml"),
			filepath.Join(home, ".config", "tokscrape", "config.yml"),
		)
	}
	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}
	return ""
}

// loadEnv applies TOKSCRAPE_* overrides.
func (c *Config) loadEnv() error {
	str := map[string]*string{
		"LOG_LEVEL":    &c.LogLevel,
		"ENGINE":       &c.Engine,
		"CHROME_PATH":  &c.ChromePath,
		"USER_AGENT":   &c.UserAgent,
		"PROXY":        &c.Proxy,
		"SNAPSHOT_DIR": &c.SnapshotDir,
		"SESSION":      &c.Session,
		"BASE_URL":     &c.BaseURL,
		"TAB":          &c.Tab,
		"OUTPUT_DIR":   &c.OutputDir,
		"METRICS_FILE": &c.MetricsFile,
	}
	for name, dst := range str {
		if v := os.Getenv(EnvPrefix + name); v != "" {
			*dst = v
		}
	}

	bools := map[string]*bool{
		"JSON_LOG": &c.JSONLog,
		"HEADLESS": &c.Headless,
		"CSV":      &c.CSV,
		"MARKDOWN": &c.Markdown,

		"STATE_FALLBACK": &c.StateFallback,
	}
	for name, dst := range bools {
		if v := os.Getenv(EnvPrefix + name); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
			}
			*dst = b
		}
	}

	durations := map[string]*time.Duration{
		"SCROLL_PAUSE":         &c.ScrollPause,
		"PROFILE_WAIT_TIMEOUT": &c.ProfileWaitTimeout,
		"TAB_WAIT_TIMEOUT":     &c.TabWaitTimeout,
		"TAB_SETTLE_DELAY":     &c.TabSettleDelay,
		"NAVIGATION_TIMEOUT":   &c.NavigationTimeout,
		"DETAIL_WAIT_TIMEOUT":  &c.DetailWaitTimeout,
		"ITEM_DELAY":           &c.ItemDelay,
	}
	for name, dst := range durations {
		if v := os.Getenv(EnvPrefix + name); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
			}
			*dst = d
		}
	}

	if v := os.Getenv(EnvPrefix + "MAX_SCROLLS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sMAX_SCROLLS: %w", EnvPrefix, err)
		}
		c.MaxScrolls = n
	}
	if v := os.Getenv(EnvPrefix + "NAV_RATE_LIMIT_RPS"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%sNAV_RATE_LIMIT_RPS: %w", EnvPrefix, err)
		}
		c.NavRateLimitRPS = f
	}
	return nil
}

// applyFlags copies every flag the user set explicitly.
func (c *Config) applyFlags(cmd *cobra.Command) error {
	flags := cmd.Flags()
	changed := func(name string) bool {
		f := flags.Lookup(name)
		return f != nil && f.Changed
	}

	var err error
	setString := func(name string, dst *string) {
		if err == nil && changed(name) {
			*dst, err = flags.GetString(name)
		}
	}
	setBool := func(name string, dst *bool) {
		if err == nil && changed(name) {
			*dst, err = flags.GetBool(name)
		}
	}
	setDuration := func(name string, dst *time.Duration) {
		if err == nil && changed(name) {
			*dst, err = flags.GetDuration(name)
		}
	}

	setString("engine", &c.Engine)
	setString("chrome-path", &c.ChromePath)
	setString("user-agent", &c.UserAgent)
	setString("proxy", &c.Proxy)
	setString("snapshot-dir", &c.SnapshotDir)
	setString("session", &c.Session)
	setString("tab", &c.Tab)
	setString("output-dir", &c.OutputDir)
	setString("metrics-file", &c.MetricsFile)
	setBool("json", &c.JSONLog)
	setBool("headless", &c.Headless)
	setBool("csv", &c.CSV)
	setBool("markdown", &c.Markdown)
	setBool("state-fallback", &c.StateFallback)
	setDuration("timeout", &c.NavigationTimeout)
	setDuration("scroll-pause", &c.ScrollPause)
	setDuration("item-delay", &c.ItemDelay)
	if err == nil && changed("max-scrolls") {
		c.MaxScrolls, err = flags.GetInt("max-scrolls")
	}
	if err != nil {
		return err
	}

	if v, _ := flags.GetBool("verbose"); v {
		c.LogLevel = "debug"
	}
	if q, _ := flags.GetBool("quiet"); q {
		c.LogLevel = "error"
	}
	return nil
}
