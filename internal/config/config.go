package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/happydash/internal/dataset"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	// Dataset source: a .csv/.tsv/.xlsx path or a postgres:// DSN.
	DataPath   string `mapstructure:"data_path" yaml:"data_path"`
	SheetName  string `mapstructure:"sheet_name" yaml:"sheet_name"`
	SheetIndex int    `mapstructure:"sheet_index" yaml:"sheet_index"`
	Table      string `mapstructure:"table" yaml:"table"`
	Delimiter  string `mapstructure:"delimiter" yaml:"delimiter"`
	Decimal    string `mapstructure:"decimal" yaml:"decimal"`
	MaxRows    int    `mapstructure:"max_rows" yaml:"max_rows"`

	// HTTP server
	ListenAddr         string   `mapstructure:"listen_addr" yaml:"listen_addr"`
	CORSOrigins        []string `mapstructure:"cors_origins" yaml:"cors_origins"`
	ReadTimeoutSec     int      `mapstructure:"read_timeout_sec" yaml:"read_timeout_sec"`
	ShutdownTimeoutSec int      `mapstructure:"shutdown_timeout_sec" yaml:"shutdown_timeout_sec"`

	LogLevel        string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat       string `mapstructure:"log_format" yaml:"log_format"`
	TopCorrelations int    `mapstructure:"top_correlations" yaml:"top_correlations"`
}

// Dir returns the directory holding config.yaml.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".happydash"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.happydash/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
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

// Load loads configuration from .env, env, config file and defaults.
// Precedence: env (HAPPYDASH_*) > config file > defaults. A .env file in the
// working directory only fills variables that are not already set.
func Load(cfgFile string) (*Global, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix("HAPPYDASH")
	v.AutomaticEnv()

	v.SetDefault("data_path", "final_data.csv")
	v.SetDefault("sheet_name", "")
	v.SetDefault("sheet_index", 1)
	v.SetDefault("table", "final_data")
	v.SetDefault("delimiter", "")
	v.SetDefault("decimal", ".")
	v.SetDefault("max_rows", 0)
	v.SetDefault("listen_addr", "127.0.0.1:8050")
	v.SetDefault("cors_origins", []string{"http://localhost:3000", "http://127.0.0.1:3000"})
	v.SetDefault("read_timeout_sec", 15)
	v.SetDefault("shutdown_timeout_sec", 10)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")
	v.SetDefault("top_correlations", 10)

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
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}

// DatasetOptions translates the loader settings.
func (c *Global) DatasetOptions() (dataset.Options, error) {
	opt := dataset.DefaultOptions()
	opt.SheetName = c.SheetName
	if c.SheetIndex > 0 {
		opt.SheetIndex = c.SheetIndex
	}
	if c.Table != "" {
		opt.Table = c.Table
	}
	opt.MaxRows = c.MaxRows
	switch strings.ToLower(c.Delimiter) {
	case "":
	case ",", "comma":
		opt.Delimiter = ','
	case ";", "semicolon":
		opt.Delimiter = ';'
	case "\t", "tab":
		opt.Delimiter = '\t'
	default:
		return opt, fmt.Errorf("unsupported delimiter: %s (use ','|';'|'tab')", c.Delimiter)
	}
	switch strings.ToLower(strings.TrimSpace(c.Decimal)) {
	case ".", "dot":
		opt.DecimalSeparator = '.'
	case ",", "comma":
		opt.DecimalSeparator = ','
	case "", "auto":
		opt.DecimalSeparator = 0
	default:
		return opt, fmt.Errorf("unsupported decimal: %s (use '.'|'comma'|'auto')", c.Decimal)
	}
	return opt, nil
}
