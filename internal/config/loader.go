package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".cityrank"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File represents the structure of the .cityrank configuration file.
// Every field is optional; zero values leave the corresponding Config
// field untouched.
type File struct {
	// BaseURL overrides the rankings site root.
	BaseURL string `yaml:"base_url,omitempty"`

	// Datasets replaces the harvest dataset list. Order is preserved
	// and determines campaign order.
	Datasets []Dataset `yaml:"datasets,omitempty"`

	// Years replaces the harvest year list.
	Years []string `yaml:"years,omitempty"`

	// DataDir overrides the batch artifact directory.
	DataDir string `yaml:"data_dir,omitempty"`

	// DBPath overrides the SQLite database path.
	DBPath string `yaml:"db_path,omitempty"`

	// Selectors override the page element selectors.
	Selectors SelectorsFile `yaml:"selectors,omitempty"`

	// Delays override the wait and pacing durations.
	Delays DelaysFile `yaml:"delays,omitempty"`

	// UserAgent overrides the browser user agent string.
	UserAgent string `yaml:"user_agent,omitempty"`
}

// SelectorsFile holds the page element selectors in the config file.
type SelectorsFile struct {
	// Table locates the rankings table.
	Table string `yaml:"table,omitempty"`

	// Next locates the pagination control.
	Next string `yaml:"next,omitempty"`
}

// Duration wraps time.Duration so config file values can use Go
// duration syntax (e.g. "20s", "1500ms"). yaml.v3 does not decode
// time.Duration from strings on its own.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// DelaysFile holds the wait and pacing durations in the config file.
type DelaysFile struct {
	// HeaderTimeout bounds the wait for the table header.
	HeaderTimeout Duration `yaml:"header_timeout,omitempty"`

	// RenderSettle is the pause after rows first render.
	RenderSettle Duration `yaml:"render_settle,omitempty"`

	// PageSettle is the pause after a pagination click.
	PageSettle Duration `yaml:"page_settle,omitempty"`

	// Politeness is the fixed delay between harvest units.
	Politeness Duration `yaml:"politeness,omitempty"`
}

// LoadConfigFile loads overrides from a YAML file. If the file does not
// exist it returns ErrConfigNotFound; callers decide whether that is
// fatal based on whether the path was explicitly requested.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}
	return &cf, nil
}

// ApplyTo merges the file's non-zero values into cfg. NewConfig bakes
// environment overrides into the defaults and the CLI applies flags
// after this, so the precedence is defaults < env < file < flags.
func (cf *File) ApplyTo(cfg *Config) {
	if cf.BaseURL != "" {
		cfg.BaseURL = cf.BaseURL
	}
	if len(cf.Datasets) > 0 {
		cfg.Datasets = cf.Datasets
	}
	if len(cf.Years) > 0 {
		cfg.Years = cf.Years
	}
	if cf.DataDir != "" {
		cfg.DataDir = cf.DataDir
	}
	if cf.DBPath != "" {
		cfg.DBPath = cf.DBPath
	}
	if cf.Selectors.Table != "" {
		cfg.TableSelector = cf.Selectors.Table
	}
	if cf.Selectors.Next != "" {
		cfg.NextSelector = cf.Selectors.Next
	}
	if cf.Delays.HeaderTimeout != 0 {
		cfg.HeaderTimeout = time.Duration(cf.Delays.HeaderTimeout)
	}
	if cf.Delays.RenderSettle != 0 {
		cfg.RenderSettle = time.Duration(cf.Delays.RenderSettle)
	}
	if cf.Delays.PageSettle != 0 {
		cfg.PageSettle = time.Duration(cf.Delays.PageSettle)
	}
	if cf.Delays.Politeness != 0 {
		cfg.PolitenessDelay = time.Duration(cf.Delays.Politeness)
	}
	if cf.UserAgent != "" {
		cfg.UserAgent = cf.UserAgent
	}
}

// FindConfigFile searches for the configuration file in the following order:
//  1. If configPath is specified, use it directly
//  2. Look for .cityrank in the current directory
//  3. Look for .cityrank in the user's home directory
//
// Returns the path if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	cwd, err := os.Getwd()
	if err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	home, err := os.UserHomeDir()
	if err == nil {
		homeConfig := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(homeConfig); err == nil {
			return homeConfig
		}
	}

	return ""
}
