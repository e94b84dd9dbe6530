package config

import (
	"errors"
	"fmt"
	"time"
)

// Sample source types
const (
	SourceCSV         = "csv"
	SourceSQLite      = "sqlite"
	SourceTimescaleDB = "timescaledb"
)

// ConfigProvider defines the interface for configuration data sources
type ConfigProvider interface {
	LoadConfig() (*ConfigData, error)
}

// ConfigData represents the complete configuration structure
type ConfigData struct {
	HTTP   HTTPData   `yaml:"http" json:"http" envPrefix:"HTTP_"`
	Source SourceData `yaml:"source" json:"source" envPrefix:"SOURCE_"`
	Trend  TrendData  `yaml:"trend" json:"trend" envPrefix:"TREND_"`
	Chart  ChartData  `yaml:"chart" json:"chart"`
	Log    LogData    `yaml:"log" json:"log" envPrefix:"LOG_"`
}

// HTTPData holds the dashboard listener settings
type HTTPData struct {
	ListenAddr  string `yaml:"listen_addr" json:"listen_addr" env:"LISTEN_ADDR"`
	Port        int    `yaml:"port" json:"port" env:"PORT"`
	TLSCertPath string `yaml:"tls_cert_path,omitempty" json:"tls_cert_path,omitempty" env:"TLS_CERT_PATH"`
	TLSKeyPath  string `yaml:"tls_key_path,omitempty" json:"tls_key_path,omitempty" env:"TLS_KEY_PATH"`
}

// SourceData describes where samples are read from
type SourceData struct {
	Type             string        `yaml:"type" json:"type" env:"TYPE"`
	Path             string        `yaml:"path,omitempty" json:"path,omitempty" env:"PATH"`
	Table            string        `yaml:"table,omitempty" json:"table,omitempty" env:"TABLE"`
	ConnectionString string        `yaml:"connection_string,omitempty" json:"-" env:"CONNECTION_STRING"`
	CacheTTL         time.Duration `yaml:"cache_ttl,omitempty" json:"cache_ttl,omitempty" env:"CACHE_TTL"`
}

// TrendData holds the LOWESS settings
type TrendData struct {
	Frac       float64 `yaml:"frac" json:"frac" env:"FRAC"`
	Iterations int     `yaml:"iterations" json:"iterations" env:"ITERATIONS"`
}

// MaterialColor assigns a legend color to a substrate material
type MaterialColor struct {
	Name  string `yaml:"name" json:"name"`
	Color string `yaml:"color" json:"color"`
}

// ChartData holds the chart presentation settings
type ChartData struct {
	XRange    []float64       `yaml:"x_range" json:"x_range"`
	YRange    []float64       `yaml:"y_range" json:"y_range"`
	Height    int             `yaml:"height" json:"height"`
	Materials []MaterialColor `yaml:"materials" json:"materials"`
}

// LogData holds the optional log file settings
type LogData struct {
	Debug      bool   `yaml:"debug" json:"debug" env:"DEBUG"`
	File       string `yaml:"file,omitempty" json:"file,omitempty" env:"FILE"`
	MaxSizeMB  int    `yaml:"max_size_mb,omitempty" json:"max_size_mb,omitempty" env:"MAX_SIZE_MB"`
	MaxBackups int    `yaml:"max_backups,omitempty" json:"max_backups,omitempty" env:"MAX_BACKUPS"`
	MaxAgeDays int    `yaml:"max_age_days,omitempty" json:"max_age_days,omitempty" env:"MAX_AGE_DAYS"`
}

// DefaultMaterials is the palette of the sanctuary substrate materials
func DefaultMaterials() []MaterialColor {
	return []MaterialColor{
		{Name: "Marl", Color: "#636EFA"},
		{Name: "Granite", Color: "#EF553B"},
		{Name: "Basalt", Color: "#00CC96"},
		{Name: "Crushed Concrete", Color: "#AB63FA"},
		{Name: "Shell", Color: "#FFA15A"},
		{Name: "Reef Ball", Color: "#19D3F3"},
		{Name: "Consolidated Concrete", Color: "#FF6692"},
	}
}

// DefaultConfig returns the configuration used when no file is present
func DefaultConfig() *ConfigData {
	return &ConfigData{
		HTTP: HTTPData{
			ListenAddr: "0.0.0.0",
			Port:       8080,
		},
		Source: SourceData{
			Type:  SourceCSV,
			Path:  "data/2019-2023_oyster_densities.csv",
			Table: "oyster_densities",
		},
		Trend: TrendData{
			Frac:       0.25,
			Iterations: 3,
		},
		Chart: ChartData{
			XRange:    []float64{0, 30},
			YRange:    []float64{-500, 4700},
			Height:    450,
			Materials: DefaultMaterials(),
		},
		Log: LogData{
			MaxSizeMB:  100,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// Validate reports every problem found in the configuration
func (c *ConfigData) Validate() error {
	var errs []error

	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		errs = append(errs, fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port))
	}
	if (c.HTTP.TLSCertPath == "") != (c.HTTP.TLSKeyPath == "") {
		errs = append(errs, errors.New("http.tls_cert_path and http.tls_key_path must be set together"))
	}

	switch c.Source.Type {
	case SourceCSV, SourceSQLite:
		if c.Source.Path == "" {
			errs = append(errs, fmt.Errorf("source.path is required for %s sources", c.Source.Type))
		}
	case SourceTimescaleDB:
		if c.Source.ConnectionString == "" {
			errs = append(errs, errors.New("source.connection_string is required for timescaledb sources"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported source.type %q: use csv, sqlite or timescaledb", c.Source.Type))
	}
	if c.Source.CacheTTL < 0 {
		errs = append(errs, errors.New("source.cache_ttl must not be negative"))
	}

	if c.Trend.Frac <= 0 || c.Trend.Frac > 1 {
		errs = append(errs, fmt.Errorf("trend.frac must be in (0, 1], got %v", c.Trend.Frac))
	}
	if c.Trend.Iterations < 0 {
		errs = append(errs, fmt.Errorf("trend.iterations must not be negative, got %d", c.Trend.Iterations))
	}

	if err := validateRange("chart.x_range", c.Chart.XRange); err != nil {
		errs = append(errs, err)
	}
	if err := validateRange("chart.y_range", c.Chart.YRange); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

func validateRange(name string, r []float64) error {
	if len(r) != 2 {
		return fmt.Errorf("%s must have exactly two values, got %d", name, len(r))
	}
	if r[0] >= r[1] {
		return fmt.Errorf("%s lower bound %v must be below upper bound %v", name, r[0], r[1])
	}
	return nil
}
