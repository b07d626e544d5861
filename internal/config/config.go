package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values. The selectors and delays mirror the
// source site's current rankings markup; all of them can be overridden
// via the configuration file when the site changes.
const (
	// DefaultBaseURL is the root of the rankings site.
	DefaultBaseURL = "https://www.numbeo.com"

	// DefaultDataDir is where per-unit batch artifacts are written.
	// It is project-local on purpose: harvest outputs are meant to be
	// diffed between runs, which works best next to the working tree.
	DefaultDataDir = "data"

	// DefaultTableSelector locates the rankings table in the rendered
	// document.
	DefaultTableSelector = "table#t2"

	// DefaultNextSelector locates the pagination "next" control. The
	// control carries a "disabled" class token on the last page.
	DefaultNextSelector = "#t2_next"

	// DefaultHeaderTimeout bounds the wait for the table header to
	// render. The table is populated by JavaScript after page load, so
	// this must be generous; exceeding it fails the unit.
	DefaultHeaderTimeout = 20 * time.Second

	// DefaultRenderSettle is the pause after rows first appear, giving
	// asynchronous rendering time to finish filling the page.
	DefaultRenderSettle = 1500 * time.Millisecond

	// DefaultPageSettle is the pause after clicking the pagination
	// control before re-reading the table.
	DefaultPageSettle = 1 * time.Second

	// DefaultPolitenessDelay is the fixed delay between harvest units.
	// It keeps load on the source site low and reduces the chance of
	// anti-bot countermeasures triggering.
	DefaultPolitenessDelay = 2 * time.Second

	// DefaultUserAgent is a mainstream desktop browser string. The
	// source site serves reduced or blocked pages to obvious
	// automation user agents.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36"

	// AppName is the application name used for XDG directory paths.
	AppName = "cityrank"

	// DBFileName is the SQLite database file name inside the data
	// directory resolved by XDGDataDir.
	DBFileName = "cityrank.db"
)

// Environment variable names recognized as overrides. They sit between
// the configuration file and CLI flags in precedence.
const (
	EnvBaseURL   = "CITYRANK_BASE_URL"
	EnvDataDir   = "CITYRANK_DATA_DIR"
	EnvDBPath    = "CITYRANK_DB_PATH"
	EnvUserAgent = "CITYRANK_USER_AGENT"
)

// Dataset is one harvested dataset: a stable identifier used for file
// and table naming, and the slug it maps to in the source site's URLs.
type Dataset struct {
	// ID is the dataset identifier (snake_case). It names batch files
	// and the unified destination table.
	ID string `yaml:"id"`

	// Slug is the URL path segment for the dataset on the source site.
	Slug string `yaml:"slug"`
}

// YearCurrent is the year tag for the rolling "current" ranking page.
const YearCurrent = "current"

// DefaultDatasets returns the datasets harvested by default, in their
// fixed campaign order.
func DefaultDatasets() []Dataset {
	return []Dataset{
		{ID: "cost_of_living", Slug: "cost-of-living"},
		{ID: "quality_of_life", Slug: "quality-of-life"},
		{ID: "crime", Slug: "crime"},
		{ID: "property_prices", Slug: "property-investment"},
	}
}

// DefaultYears returns the year tags harvested by default, in their
// fixed campaign order.
func DefaultYears() []string {
	return []string{YearCurrent, "2023", "2024", "2025"}
}

// Config holds all configuration options for cityrank. It is populated
// from defaults, an optional YAML file, environment variables, and CLI
// flags, then passed through the application via dependency injection
// rather than global state.
type Config struct {
	// BaseURL is the root URL of the rankings site.
	BaseURL string

	// Datasets is the ordered list of datasets to harvest. Order is
	// part of the contract: units are processed and written in this
	// order, enabling deterministic re-runs.
	Datasets []Dataset

	// Years is the ordered list of year tags to harvest per dataset.
	Years []string

	// DataDir is the directory receiving per-unit CSV artifacts and
	// read back by the unifier.
	DataDir string

	// DBPath is the SQLite database file the unifier writes.
	DBPath string

	// TableSelector locates the rankings table in the rendered page.
	TableSelector string

	// NextSelector locates the pagination "next" control.
	NextSelector string

	// HeaderTimeout bounds the wait for the table header per page.
	HeaderTimeout time.Duration

	// RenderSettle is the pause after data rows appear before reading
	// cell text.
	RenderSettle time.Duration

	// PageSettle is the pause after a pagination click.
	PageSettle time.Duration

	// PolitenessDelay is the fixed delay between harvest units.
	PolitenessDelay time.Duration

	// UserAgent is the browser user agent used for all page loads.
	UserAgent string

	// Headless controls whether the browser runs without a visible
	// window. Disabled only for debugging scrape issues locally.
	Headless bool

	// Verbose enables debug-level log output.
	Verbose bool

	// MarkdownReport switches the run summary to Markdown format.
	MarkdownReport bool

	// ReportFile, when set, receives the run summary instead of stdout.
	ReportFile string
}

// NewConfig returns a Config populated with defaults and environment
// variable overrides.
func NewConfig() *Config {
	return &Config{
		BaseURL:         getEnv(EnvBaseURL, DefaultBaseURL),
		Datasets:        DefaultDatasets(),
		Years:           DefaultYears(),
		DataDir:         getEnv(EnvDataDir, DefaultDataDir),
		DBPath:          getEnv(EnvDBPath, filepath.Join(XDGDataDir(), DBFileName)),
		TableSelector:   DefaultTableSelector,
		NextSelector:    DefaultNextSelector,
		HeaderTimeout:   DefaultHeaderTimeout,
		RenderSettle:    DefaultRenderSettle,
		PageSettle:      DefaultPageSettle,
		PolitenessDelay: DefaultPolitenessDelay,
		UserAgent:       getEnv(EnvUserAgent, DefaultUserAgent),
		Headless:        true,
	}
}

// Validate checks the configuration for invalid values. It returns one
// of the package sentinel errors so callers can use errors.Is.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return ErrNoBaseURL
	}
	if len(c.Datasets) == 0 {
		return ErrNoDatasets
	}
	for _, d := range c.Datasets {
		if d.ID == "" || d.Slug == "" {
			return ErrInvalidDataset
		}
	}
	if len(c.Years) == 0 {
		return ErrNoYears
	}
	if c.HeaderTimeout <= 0 {
		return ErrInvalidHeaderTimeout
	}
	if c.RenderSettle < 0 || c.PageSettle < 0 {
		return ErrInvalidSettle
	}
	if c.PolitenessDelay < 0 {
		return ErrInvalidPolitenessDelay
	}
	return nil
}

// XDGDataDir returns the application data directory following the XDG
// Base Directory specification (~/.local/share/cityrank on Linux).
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// getEnv returns the environment variable value or the fallback when
// the variable is unset or empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
