package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	SMTP       SMTPConfig       `yaml:"smtp"`
	JWT        JWTConfig        `yaml:"jwt"`
	Storage    StorageConfig    `yaml:"storage"`
	Log        LogConfig        `yaml:"log"`
	Scheduler  SchedulerConfig  `yaml:"scheduler"`
	Pricing    PricingConfig    `yaml:"pricing"`
	Settlement SettlementConfig `yaml:"settlement"`
	Pacing     PacingConfig     `yaml:"pacing"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DatabaseConfig contains PostgreSQL connection settings
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
}

// SMTPConfig contains email notifier settings
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

// JWTConfig contains operator access-token settings
type JWTConfig struct {
	Secret            string `yaml:"secret"`
	AccessTokenExpiry int    `yaml:"access_token_expiry_minutes"`
}

// StorageConfig contains evidence-file storage settings
type StorageConfig struct {
	UploadDir   string `yaml:"upload_dir"`
	BaseURL     string `yaml:"base_url"`
	MaxFileSize int64  `yaml:"max_file_size_mb"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// SchedulerConfig holds the cron expressions for scheduled jobs
type SchedulerConfig struct {
	MarkOverdueRents string `yaml:"mark_overdue_rents"`
}

// LevelPricing is the per-week / per-day price for one customer tier
type LevelPricing struct {
	WeekCents int64 `yaml:"week_cents"`
	DayCents  int64 `yaml:"day_cents"`
}

// PricingConfig maps customer levels to their tier pricing
type PricingConfig struct {
	Levels map[int]LevelPricing `yaml:"levels"`
}

// WeekPrice returns the weekly price for a level, falling back to level 1
func (p PricingConfig) WeekPrice(level int) int64 {
	if lp, ok := p.Levels[level]; ok {
		return lp.WeekCents
	}
	return p.Levels[1].WeekCents
}

// DayPrice returns the daily price for a level, falling back to level 1
func (p PricingConfig) DayPrice(level int) int64 {
	if lp, ok := p.Levels[level]; ok {
		return lp.DayCents
	}
	return p.Levels[1].DayCents
}

// MaintenanceBand is one age bracket of the settlement maintenance curve.
// MaxMonths = 0 means the band is open-ended.
type MaintenanceBand struct {
	MaxMonths int     `yaml:"max_months"`
	Percent   float64 `yaml:"percent"`
}

// SettlementConfig holds the partner revenue-share percentages.
// The maintenance curve is explicit configuration so the breakpoints are
// tested rather than re-derived from arithmetic scattered in code.
type SettlementConfig struct {
	MaintenanceBands  []MaintenanceBand `yaml:"maintenance_bands"`
	DefaultCommission float64           `yaml:"default_commission_percent"`
}

// PacingConfig holds the operator anti-idling guard settings
type PacingConfig struct {
	WindowSize         int `yaml:"window_size"`
	FieldThresholdMin  int `yaml:"field_threshold_minutes"`
	OfficeThresholdMin int `yaml:"office_threshold_minutes"`
}

// Load reads configuration from a YAML file
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.overrideWithEnv()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	if val := os.Getenv("DB_HOST"); val != "" {
		c.Database.Host = val
	}
	if val := os.Getenv("DB_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Database.Port)
	}
	if val := os.Getenv("DB_USER"); val != "" {
		c.Database.User = val
	}
	if val := os.Getenv("DB_PASSWORD"); val != "" {
		c.Database.Password = val
	}
	if val := os.Getenv("DB_NAME"); val != "" {
		c.Database.Database = val
	}
	if val := os.Getenv("DB_SSL_MODE"); val != "" {
		c.Database.SSLMode = val
	}

	if val := os.Getenv("SMTP_HOST"); val != "" {
		c.SMTP.Host = val
	}
	if val := os.Getenv("SMTP_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.SMTP.Port)
	}
	if val := os.Getenv("SMTP_USER"); val != "" {
		c.SMTP.User = val
	}
	if val := os.Getenv("SMTP_PASSWORD"); val != "" {
		c.SMTP.Password = val
	}
	if val := os.Getenv("SMTP_FROM"); val != "" {
		c.SMTP.From = val
	}

	if val := os.Getenv("JWT_SECRET"); val != "" {
		c.JWT.Secret = val
	}

	if val := os.Getenv("SERVER_HOST"); val != "" {
		c.Server.Host = val
	}
	if val := os.Getenv("SERVER_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.Port)
	}

	if val := os.Getenv("UPLOAD_DIR"); val != "" {
		c.Storage.UploadDir = val
	}

	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = val
	}
}

// applyDefaults fills settings that have a sensible default when the file
// omits them
func (c *Config) applyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Scheduler.MarkOverdueRents == "" {
		// nightly at 00:05 UTC (seconds field first)
		c.Scheduler.MarkOverdueRents = "0 5 0 * * *"
	}
	if len(c.Pricing.Levels) == 0 {
		c.Pricing.Levels = map[int]LevelPricing{
			1: {WeekCents: 25000, DayCents: 4000},
			2: {WeekCents: 22000, DayCents: 3500},
			3: {WeekCents: 20000, DayCents: 3000},
		}
	}
	if len(c.Settlement.MaintenanceBands) == 0 {
		c.Settlement.MaintenanceBands = []MaintenanceBand{
			{MaxMonths: 12, Percent: 5},
			{MaxMonths: 24, Percent: 10},
			{MaxMonths: 0, Percent: 15},
		}
	}
	if c.Settlement.DefaultCommission == 0 {
		c.Settlement.DefaultCommission = 10
	}
	if c.Pacing.WindowSize == 0 {
		c.Pacing.WindowSize = 5
	}
	if c.Pacing.FieldThresholdMin == 0 {
		c.Pacing.FieldThresholdMin = 35
	}
	if c.Pacing.OfficeThresholdMin == 0 {
		c.Pacing.OfficeThresholdMin = 25
	}
	if c.JWT.AccessTokenExpiry == 0 {
		c.JWT.AccessTokenExpiry = 60
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}
	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}

	if c.JWT.Secret == "" {
		return fmt.Errorf("jwt secret is required")
	}

	for level, lp := range c.Pricing.Levels {
		if lp.WeekCents <= 0 {
			return fmt.Errorf("pricing level %d has no weekly price", level)
		}
	}

	for _, band := range c.Settlement.MaintenanceBands {
		if band.Percent < 0 || band.Percent > 100 {
			return fmt.Errorf("maintenance percent out of range: %.2f", band.Percent)
		}
	}

	return nil
}

// ConnectionString builds the PostgreSQL connection string
func (d DatabaseConfig) ConnectionString() string {
	sslMode := d.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Database, sslMode)
}
