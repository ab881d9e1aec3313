package config

import (
	"errors"
	"fmt"
	"os"
	"time"
	_ "time/tzdata"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/simonvc/libromayor/internal/ledger"
)

// DefaultFile is the config file name looked up in the working directory.
const DefaultFile = "libromayor.yaml"

// Config represents the top-level libromayor.yaml configuration.
type Config struct {
	Business BusinessConfig `yaml:"business"`
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Books    BooksConfig    `yaml:"books"`
	Aging    AgingConfig    `yaml:"aging"`
	Calendar CalendarConfig `yaml:"calendar"`
	Fiscal   FiscalConfig   `yaml:"fiscal"`
	Log      LogConfig      `yaml:"log"`
}

// BusinessConfig identifies the business keeping the books.
type BusinessConfig struct {
	Name       string            `yaml:"name"`
	RFC        string            `yaml:"rfc"`
	EntityType ledger.ClientType `yaml:"entity_type"`
}

type ServerConfig struct {
	Addr           string        `yaml:"addr"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

type DatabaseConfig struct {
	Path      string `yaml:"path"`
	SeedChart bool   `yaml:"seed_chart"`
}

// BooksConfig holds the posting rules of the journal engine.
type BooksConfig struct {
	Currency              string `yaml:"currency"`
	DefaultCreditDays     int    `yaml:"default_credit_days"`
	ReceivableAccountCode string `yaml:"receivable_account_code"`
	SalesAccountCode      string `yaml:"sales_account_code"`
	PayableAccountCode    string `yaml:"payable_account_code"`

	// VoidReversesBalances posts compensating deltas when a reviewed
	// entry is voided.
	VoidReversesBalances bool `yaml:"void_reverses_balances"`
}

// AgingConfig sets the due-soon windows, in calendar days.
type AgingConfig struct {
	ReceivableDueSoonDays int `yaml:"receivable_due_soon_days"`
	PayableDueSoonDays    int `yaml:"payable_due_soon_days"`
}

type CalendarConfig struct {
	Timezone string   `yaml:"timezone"`
	Holidays []string `yaml:"holidays,omitempty"` // "YYYY-MM-DD"
}

// FiscalMode selects the fiscal validation backend.
type FiscalMode string

const (
	FiscalSimulated FiscalMode = "simulated"
	FiscalDisabled  FiscalMode = "disabled"
)

type FiscalConfig struct {
	Mode           FiscalMode `yaml:"mode"`
	VerifyOnCreate bool       `yaml:"verify_on_create"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json or console
}

// Load reads a libromayor.yaml file from disk. Keys missing from the file
// keep their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default("", "")
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault is Load, except that a missing file yields the defaults.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default("", ""), nil
	}
	return cfg, err
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new set of books.
func Default(businessName string, entityType ledger.ClientType) *Config {
	if entityType == "" {
		entityType = ledger.ClientLegalEntity
	}
	return &Config{
		Business: BusinessConfig{
			Name:       businessName,
			EntityType: entityType,
		},
		Server: ServerConfig{
			Addr:           ":8888",
			RequestTimeout: 30 * time.Second,
		},
		Database: DatabaseConfig{
			Path:      "libromayor.db",
			SeedChart: true,
		},
		Books: BooksConfig{
			Currency:              "MXN",
			DefaultCreditDays:     30,
			ReceivableAccountCode: "105.01",
			SalesAccountCode:      "401.01",
			PayableAccountCode:    "201.01",
			VoidReversesBalances:  true,
		},
		Aging: AgingConfig{
			ReceivableDueSoonDays: 5,
			PayableDueSoonDays:    3,
		},
		Calendar: CalendarConfig{
			Timezone: "America/Mexico_City",
		},
		Fiscal: FiscalConfig{
			Mode:           FiscalSimulated,
			VerifyOnCreate: true,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Validate checks values that would otherwise fail late at runtime.
func (c *Config) Validate() error {
	if c.Business.EntityType != ledger.ClientIndividual && c.Business.EntityType != ledger.ClientLegalEntity {
		return fmt.Errorf("config: business.entity_type must be %s or %s, got %q",
			ledger.ClientIndividual, ledger.ClientLegalEntity, c.Business.EntityType)
	}
	if c.Books.DefaultCreditDays < 0 {
		return fmt.Errorf("config: books.default_credit_days cannot be negative")
	}
	if c.Aging.ReceivableDueSoonDays < 0 || c.Aging.PayableDueSoonDays < 0 {
		return fmt.Errorf("config: aging thresholds cannot be negative")
	}
	switch c.Fiscal.Mode {
	case FiscalSimulated, FiscalDisabled:
	default:
		return fmt.Errorf("config: fiscal.mode must be %s or %s, got %q", FiscalSimulated, FiscalDisabled, c.Fiscal.Mode)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := c.Holidays(); err != nil {
		return err
	}
	return nil
}

// Location resolves calendar.timezone, defaulting to UTC when unset.
func (c *Config) Location() (*time.Location, error) {
	if c.Calendar.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Calendar.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config: calendar.timezone: %w", err)
	}
	return loc, nil
}

// Holidays parses the configured extra holidays.
func (c *Config) Holidays() ([]ledger.Date, error) {
	out := make([]ledger.Date, 0, len(c.Calendar.Holidays))
	for _, s := range c.Calendar.Holidays {
		d, err := ledger.ParseDate(s)
		if err != nil {
			return nil, fmt.Errorf("config: calendar.holidays: %w", err)
		}
		out = append(out, d)
	}
	return out, nil
}

// BusinessCalendar builds the business-day calendar from the config.
func (c *Config) BusinessCalendar() (*ledger.Calendar, error) {
	extra, err := c.Holidays()
	if err != nil {
		return nil, err
	}
	return ledger.NewCalendar(extra...), nil
}

// Logger builds a zap logger honoring log.level and log.format.
func (c *Config) Logger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("config: log.level: %w", err)
	}
	var zc zap.Config
	switch c.Log.Format {
	case "console":
		zc = zap.NewDevelopmentConfig()
	case "", "json":
		zc = zap.NewProductionConfig()
	default:
		return nil, fmt.Errorf("config: log.format must be json or console, got %q", c.Log.Format)
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}
