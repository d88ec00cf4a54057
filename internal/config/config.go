package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	// Columns with a missing percentage strictly above this are dropped.
	MissingThreshold float64 `mapstructure:"missing_threshold" yaml:"missing_threshold"`
	SkewThreshold    float64 `mapstructure:"skew_threshold" yaml:"skew_threshold"`
	// 0 selects |min|+1 per column.
	SkewOffset float64 `mapstructure:"skew_offset" yaml:"skew_offset"`
	// Fit skewed columns concurrently.
	ParallelFit bool `mapstructure:"parallel_fit" yaml:"parallel_fit"`

	// Distribution plots
	PlotColumns int  `mapstructure:"plot_columns" yaml:"plot_columns"`
	PlotBins    int  `mapstructure:"plot_bins" yaml:"plot_bins"`
	PlotKDE     bool `mapstructure:"plot_kde" yaml:"plot_kde"`

	// Loading; 0 means unlimited.
	MaxRows int `mapstructure:"max_rows" yaml:"max_rows"`

	LogLevel string `mapstructure:"log_level" yaml:"log_level"`
	LogJSON  bool   `mapstructure:"log_json" yaml:"log_json"`
}

// Default returns the built-in settings used when no file or env value is present.
func Default() *Global {
	return &Global{
		MissingThreshold: 80,
		SkewThreshold:    0.8,
		ParallelFit:      true,
		PlotColumns:      3,
		PlotBins:         30,
		PlotKDE:          true,
		LogLevel:         "warn",
	}
}

// Dir returns ~/.datalens.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".datalens"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.datalens/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		dir, err := Dir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults. Command flags are applied by the caller.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("DATALENS")
	v.AutomaticEnv()

	d := Default()
	v.SetDefault("missing_threshold", d.MissingThreshold)
	v.SetDefault("skew_threshold", d.SkewThreshold)
	v.SetDefault("skew_offset", d.SkewOffset)
	v.SetDefault("parallel_fit", d.ParallelFit)
	v.SetDefault("plot_columns", d.PlotColumns)
	v.SetDefault("plot_bins", d.PlotBins)
	v.SetDefault("plot_kde", d.PlotKDE)
	v.SetDefault("max_rows", d.MaxRows)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_json", d.LogJSON)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate rejects values the commands cannot use.
func (c *Global) Validate() error {
	switch {
	case c.MissingThreshold < 0 || c.MissingThreshold > 100:
		return fmt.Errorf("missing_threshold must be within [0, 100], got %v", c.MissingThreshold)
	case c.SkewThreshold < 0:
		return fmt.Errorf("skew_threshold must be >= 0, got %v", c.SkewThreshold)
	case c.SkewOffset < 0:
		return fmt.Errorf("skew_offset must be >= 0, got %v", c.SkewOffset)
	case c.PlotColumns < 1:
		return fmt.Errorf("plot_columns must be >= 1, got %d", c.PlotColumns)
	case c.PlotBins < 1:
		return fmt.Errorf("plot_bins must be >= 1, got %d", c.PlotBins)
	case c.MaxRows < 0:
		return fmt.Errorf("max_rows must be >= 0, got %d", c.MaxRows)
	}
	return nil
}
