package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // embedded zone database for scheduler.timezone

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"github.com/robfig/cron/v3"
)

// Storage backend identifiers accepted by storage.type
const (
	StorageBadger   = "badger"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
)

// Config represents the application configuration
type Config struct {
	Environment string          `toml:"environment"` // "development" or "production"
	Server      ServerConfig    `toml:"server"`
	Storage     StorageConfig   `toml:"storage"`
	Logging     LoggingConfig   `toml:"logging"`
	Naver       NaverConfig     `toml:"naver"`
	Analysis    AnalysisConfig  `toml:"analysis"`
	Scheduler   SchedulerConfig `toml:"scheduler"`
	WebSocket   WebSocketConfig `toml:"websocket"`
}

type ServerConfig struct {
	Port int    `toml:"port" validate:"min=1,max=65535"`
	Host string `toml:"host" validate:"required"`
}

// StorageConfig selects and configures the persistence backend
type StorageConfig struct {
	Type     string         `toml:"type" validate:"oneof=badger sqlite postgres"`
	Badger   BadgerConfig   `toml:"badger"`
	SQLite   SQLiteConfig   `toml:"sqlite"`
	Postgres PostgresConfig `toml:"postgres"`
}

type BadgerConfig struct {
	Path           string `toml:"path"`
	ResetOnStartup bool   `toml:"reset_on_startup"`
}

type SQLiteConfig struct {
	Path          string `toml:"path"`
	BusyTimeoutMS int    `toml:"busy_timeout_ms" validate:"min=0"`
	WALMode       bool   `toml:"wal_mode"`
	CacheSizeMB   int    `toml:"cache_size_mb" validate:"min=0"`
}

type PostgresConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port" validate:"min=0,max=65535"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	DBName   string `toml:"dbname"`
	SSLMode  string `toml:"sslmode"`
}

type LoggingConfig struct {
	Level      string   `toml:"level" validate:"oneof=trace debug info warn error"`
	Format     string   `toml:"format"`
	Output     []string `toml:"output"`
	TimeFormat string   `toml:"time_format"`
	Dir        string   `toml:"dir"` // empty = logs/ next to the executable
}

// NaverConfig tunes the Naver Finance scraper
type NaverConfig struct {
	BaseURL        string `toml:"base_url" validate:"omitempty,url"`
	MobileURL      string `toml:"mobile_url" validate:"omitempty,url"`
	ChartURL       string `toml:"chart_url" validate:"omitempty,url"`
	UserAgent      string `toml:"user_agent"`
	RequestTimeout string `toml:"request_timeout"`
	RateLimit      int    `toml:"rate_limit" validate:"min=0"` // requests per second, 0 disables throttling
	ChartCount     int    `toml:"chart_count" validate:"min=1,max=1000"`
}

// AnalysisConfig holds default weights and batch behaviour
type AnalysisConfig struct {
	TechWeight  float64 `toml:"tech_weight" validate:"min=0,max=100"`
	FundWeight  float64 `toml:"fund_weight" validate:"min=0,max=100"`
	MACDSignal  string  `toml:"macd_signal" validate:"oneof=proxy ema9"`
	SaveHistory bool    `toml:"save_history"`
	BatchMax    int     `toml:"batch_max" validate:"min=1"`
	BatchDelay  string  `toml:"batch_delay"`
	PresetsFile string  `toml:"presets_file"`
}

type SchedulerConfig struct {
	Enabled          bool   `toml:"enabled"`
	WatchlistRefresh string `toml:"watchlist_refresh"`
	Timezone         string `toml:"timezone"` // IANA name, schedules are evaluated in this zone
}

type WebSocketConfig struct {
	AllowedEvents     []string          `toml:"allowed_events"`     // empty means all events
	ThrottleIntervals map[string]string `toml:"throttle_intervals"` // event type -> minimum interval, e.g. "batch_progress" = "250ms"
}

// NewDefaultConfig creates a configuration with default values
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8000,
			Host: "localhost",
		},
		Storage: StorageConfig{
			Type: StorageBadger,
			Badger: BadgerConfig{
				Path: "./data/badger",
			},
			SQLite: SQLiteConfig{
				Path:          "./data/stockanalyzer.db",
				BusyTimeoutMS: 5000,
				WALMode:       true,
				CacheSizeMB:   16,
			},
			Postgres: PostgresConfig{
				Host:    "localhost",
				Port:    5432,
				User:    "postgres",
				DBName:  "stockanalyzer",
				SSLMode: "disable",
			},
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "text",
			Output:     []string{"stdout", "file"},
			TimeFormat: "15:04:05",
		},
		Naver: NaverConfig{
			RequestTimeout: "10s",
			RateLimit:      5,
			ChartCount:     120,
		},
		Analysis: AnalysisConfig{
			TechWeight:  40,
			FundWeight:  60,
			MACDSignal:  "proxy",
			SaveHistory: true,
			BatchMax:    20,
			BatchDelay:  "500ms",
		},
		Scheduler: SchedulerConfig{
			Enabled:          false, // opt-in
			WatchlistRefresh: "30 16 * * 1-5",
			Timezone:         "Asia/Seoul",
		},
	}
}

// LoadFromFile loads configuration from a single file
func LoadFromFile(path string) (*Config, error) {
	return LoadFromFiles(path)
}

// LoadFromFiles loads and merges configuration from multiple files.
// Priority: defaults -> file1 -> file2 -> ... -> env vars.
// CLI flags are applied separately with ApplyFlagOverrides.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		// Later files override earlier ones field by field
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies SA_* environment variables. The postgres
// section also honours the conventional DB_* names.
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("SA_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	// Server configuration
	if port := os.Getenv("SA_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("SA_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	// Storage configuration
	if storageType := os.Getenv("SA_STORAGE_TYPE"); storageType != "" {
		config.Storage.Type = strings.ToLower(storageType)
	}
	if badgerPath := os.Getenv("SA_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}
	if sqlitePath := os.Getenv("SA_SQLITE_PATH"); sqlitePath != "" {
		config.Storage.SQLite.Path = sqlitePath
	}
	if host := firstEnv("SA_DB_HOST", "DB_HOST"); host != "" {
		config.Storage.Postgres.Host = host
	}
	if port := firstEnv("SA_DB_PORT", "DB_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Storage.Postgres.Port = p
		}
	}
	if user := firstEnv("SA_DB_USER", "DB_USER"); user != "" {
		config.Storage.Postgres.User = user
	}
	if password := firstEnv("SA_DB_PASSWORD", "DB_PASSWORD"); password != "" {
		config.Storage.Postgres.Password = password
	}
	if name := firstEnv("SA_DB_NAME", "DB_NAME"); name != "" {
		config.Storage.Postgres.DBName = name
	}
	if sslMode := firstEnv("SA_DB_SSLMODE", "DB_SSLMODE"); sslMode != "" {
		config.Storage.Postgres.SSLMode = sslMode
	}

	// Logging configuration
	if level := os.Getenv("SA_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if format := os.Getenv("SA_LOG_FORMAT"); format != "" {
		config.Logging.Format = format
	}
	if output := os.Getenv("SA_LOG_OUTPUT"); output != "" {
		config.Logging.Output = splitList(output)
	}
	if dir := os.Getenv("SA_LOG_DIR"); dir != "" {
		config.Logging.Dir = dir
	}

	// Naver configuration
	if baseURL := os.Getenv("SA_NAVER_BASE_URL"); baseURL != "" {
		config.Naver.BaseURL = baseURL
	}
	if timeout := os.Getenv("SA_NAVER_TIMEOUT"); timeout != "" {
		config.Naver.RequestTimeout = timeout
	}
	if rateLimit := os.Getenv("SA_NAVER_RATE_LIMIT"); rateLimit != "" {
		if r, err := strconv.Atoi(rateLimit); err == nil {
			config.Naver.RateLimit = r
		}
	}

	// Analysis configuration
	if tech := os.Getenv("SA_TECH_WEIGHT"); tech != "" {
		if w, err := strconv.ParseFloat(tech, 64); err == nil {
			config.Analysis.TechWeight = w
		}
	}
	if fund := os.Getenv("SA_FUND_WEIGHT"); fund != "" {
		if w, err := strconv.ParseFloat(fund, 64); err == nil {
			config.Analysis.FundWeight = w
		}
	}
	if mode := os.Getenv("SA_MACD_SIGNAL"); mode != "" {
		config.Analysis.MACDSignal = mode
	}
	if save := os.Getenv("SA_SAVE_HISTORY"); save != "" {
		if b, err := strconv.ParseBool(save); err == nil {
			config.Analysis.SaveHistory = b
		}
	}
	if presets := os.Getenv("SA_PRESETS_FILE"); presets != "" {
		config.Analysis.PresetsFile = presets
	}

	// Scheduler configuration
	if enabled := os.Getenv("SA_SCHEDULER_ENABLED"); enabled != "" {
		if b, err := strconv.ParseBool(enabled); err == nil {
			config.Scheduler.Enabled = b
		}
	}
	if schedule := os.Getenv("SA_WATCHLIST_REFRESH"); schedule != "" {
		config.Scheduler.WatchlistRefresh = schedule
	}
	if tz := os.Getenv("SA_SCHEDULER_TIMEZONE"); tz != "" {
		config.Scheduler.Timezone = tz
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config
func ApplyFlagOverrides(config *Config, port int, host string) {
	// Command-line flags have highest priority
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return ""
}

// splitList splits a comma-separated value, dropping empty entries
func splitList(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

var validate = validator.New()

// Validate checks struct tags, durations, weights and the refresh schedule
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if _, err := time.ParseDuration(c.Naver.RequestTimeout); err != nil {
		return fmt.Errorf("invalid naver.request_timeout %q: %w", c.Naver.RequestTimeout, err)
	}
	if _, err := time.ParseDuration(c.Analysis.BatchDelay); err != nil {
		return fmt.Errorf("invalid analysis.batch_delay %q: %w", c.Analysis.BatchDelay, err)
	}
	if c.Analysis.TechWeight+c.Analysis.FundWeight <= 0 {
		return fmt.Errorf("analysis weights must not both be zero")
	}

	if c.Scheduler.Enabled {
		if err := ValidateJobSchedule(c.Scheduler.WatchlistRefresh); err != nil {
			return fmt.Errorf("invalid scheduler.watchlist_refresh: %w", err)
		}
		if c.Scheduler.Timezone != "" {
			if _, err := time.LoadLocation(c.Scheduler.Timezone); err != nil {
				return fmt.Errorf("invalid scheduler.timezone %q: %w", c.Scheduler.Timezone, err)
			}
		}
	}

	return nil
}

// ValidateJobSchedule validates a five-field cron expression and rejects
// schedules that fire more often than every 5 minutes
func ValidateJobSchedule(schedule string) error {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	if _, err := parser.Parse(schedule); err != nil {
		return fmt.Errorf("invalid cron expression: %w", err)
	}

	parts := strings.Fields(schedule)
	if len(parts) < 5 {
		return fmt.Errorf("invalid cron format: expected 5 fields")
	}

	minuteField := parts[0]

	if minuteField == "*" {
		return fmt.Errorf("schedule must have minimum 5-minute interval (every minute is not allowed)")
	}

	if strings.HasPrefix(minuteField, "*/") {
		interval, err := strconv.Atoi(strings.TrimPrefix(minuteField, "*/"))
		if err == nil && interval < 5 {
			return fmt.Errorf("schedule interval must be at least 5 minutes, got %d", interval)
		}
	}

	return nil
}

// Timeout returns the parsed Naver request timeout, or 10s when unset
func (c *NaverConfig) Timeout() time.Duration {
	d, err := time.ParseDuration(c.RequestTimeout)
	if err != nil || d <= 0 {
		return 10 * time.Second
	}
	return d
}

// Delay returns the pause between batch items
func (c *AnalysisConfig) Delay() time.Duration {
	d, err := time.ParseDuration(c.BatchDelay)
	if err != nil || d < 0 {
		return 0
	}
	return d
}

// Location returns the scheduler time zone, falling back to local time
func (c *SchedulerConfig) Location() *time.Location {
	if c.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}
