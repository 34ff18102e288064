package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the configuration for a forecasting run.
type Config struct {
	Symbol       string             `yaml:"symbol"`
	Start        Date               `yaml:"start"`
	End          Date               `yaml:"end"` // exclusive
	Provider     ProviderConfig     `yaml:"provider"`
	Model        ModelConfig        `yaml:"model"`
	Forecast     ForecastConfig     `yaml:"forecast"`
	Stationarity StationarityConfig `yaml:"stationarity"`
	Plot         PlotConfig         `yaml:"plot"`
	Log          LogConfig          `yaml:"log"`
}

// ProviderConfig selects and configures the market data source.
type ProviderConfig struct {
	Name         string        `yaml:"name"`
	BaseURL      string        `yaml:"base_url"`
	Timeout      time.Duration `yaml:"timeout"`
	MaxRetries   int           `yaml:"max_retries"`
	RetryBackoff time.Duration `yaml:"retry_backoff"`
	Adjusted     *bool         `yaml:"adjusted"`
	CSVPath      string        `yaml:"csv_path"`
	Alpaca       AlpacaConfig  `yaml:"alpaca"`
}

// IsAdjusted reports whether prices should be split and dividend adjusted.
func (p ProviderConfig) IsAdjusted() bool {
	return p.Adjusted == nil || *p.Adjusted
}

// AlpacaConfig holds Alpaca market data credentials.
type AlpacaConfig struct {
	APIKey    string `yaml:"api_key"`
	APISecret string `yaml:"api_secret"`
	Feed      string `yaml:"feed"`
}

// ModelConfig holds the ARIMA order as [p, d, q].
type ModelConfig struct {
	Order []int `yaml:"order"`
}

// P returns the autoregressive order.
func (m ModelConfig) P() int { return m.term(0) }

// D returns the differencing order.
func (m ModelConfig) D() int { return m.term(1) }

// Q returns the moving average order.
func (m ModelConfig) Q() int { return m.term(2) }

// term returns Order[i], falling back to DefaultOrder when Order does not
// hold exactly three terms. Validate rejects such orders.
func (m ModelConfig) term(i int) int {
	if len(m.Order) != len(DefaultOrder) {
		return DefaultOrder[i]
	}
	return m.Order[i]
}

// ForecastConfig holds forecast settings.
type ForecastConfig struct {
	Horizon    int     `yaml:"horizon"`
	Confidence float64 `yaml:"confidence"`
}

// StationarityConfig holds ADF test settings.
type StationarityConfig struct {
	MaxLag  int    `yaml:"max_lag"` // 0 selects the default lag bound
	AutoLag string `yaml:"autolag"`
}

// PlotConfig holds chart rendering settings.
type PlotConfig struct {
	Terminal  *bool  `yaml:"terminal"`
	Height    int    `yaml:"height"`
	Width     int    `yaml:"width"`
	OutputDir string `yaml:"output_dir"`
}

// TerminalEnabled reports whether charts are drawn to the terminal.
func (p PlotConfig) TerminalEnabled() bool {
	return p.Terminal == nil || *p.Terminal
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Date is a calendar date in YAML as YYYY-MM-DD.
type Date struct {
	time.Time
}

// DateLayout is the layout of dates in configuration files.
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD date as midnight UTC.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return Date{t}, nil
}

func mustDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Date) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := ParseDate(value.Value)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Date) MarshalYAML() (any, error) {
	return d.String(), nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// Load reads a YAML config file, expanding ${VAR} references from the environment.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

// LoadWithDefaults loads a config file and applies defaults for unset fields.
func LoadWithDefaults(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

// LoadAndValidate loads a config file, applies defaults and validates it.
func LoadAndValidate(path string) (*Config, error) {
	cfg, err := LoadWithDefaults(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}
