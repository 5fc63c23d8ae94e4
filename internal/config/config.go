package config

import (
	"net/url"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// DefaultAPIBaseURL is where the phishing-detection backend listens when
	// started with its default settings.
	DefaultAPIBaseURL = "http://localhost:8000"

	// DefaultTimeout bounds each request to the scan API. The oracle itself
	// enforces no deadline, so without this a stuck backend would leave a
	// caller in the scanning state forever.
	DefaultTimeout = 30 * time.Second

	// DefaultBatchSize is the number of concurrent scans for list scanning.
	DefaultBatchSize = 4

	// DefaultURLDebounce is the quiet period after the last keystroke in the
	// URL field before a scan fires.
	DefaultURLDebounce = 500 * time.Millisecond

	// DefaultEmailDebounce is longer than the URL delay to leave room for typing.
	DefaultEmailDebounce = 800 * time.Millisecond

	// DefaultToastDuration is how long an auto-detection message replaces the
	// status line.
	DefaultToastDuration = 3 * time.Second

	// DefaultImageSettleDelay is the wait after page load before images are
	// submitted for visual analysis.
	DefaultImageSettleDelay = 2 * time.Second

	// DefaultMaxImages limits image submissions per page.
	DefaultMaxImages = 5

	// DefaultMaxBodySize limits fetched images and API responses.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// DefaultTorStartupTimeout is the maximum time to wait for the embedded
	// Tor daemon used for image fetches.
	DefaultTorStartupTimeout = 3 * time.Minute

	// AppName is the application name used for XDG directory paths.
	AppName = "phishguard"

	// DefaultUserAgent identifies PhishGuard in requests to the scan API and
	// in image fetches.
	DefaultUserAgent = "PhishGuard/1.0 (+https://github.com/nao1215/phishguard)"
)

// Config holds all configuration options for PhishGuard.
// It is populated from defaults, then the configuration file, then CLI flags,
// and passed down explicitly rather than kept in globals.
type Config struct {
	// APIBaseURL is the scheme and host of the scan oracle, without a trailing path.
	APIBaseURL string

	// Timeout bounds each HTTP request to the oracle and each image fetch.
	Timeout time.Duration

	// Headers are extra HTTP headers sent with every oracle request.
	Headers map[string]string

	// UserAgent is the User-Agent header for oracle requests and image fetches.
	UserAgent string

	// MaxBodySize caps how many bytes are read from a response.
	MaxBodySize int64

	// Verbose enables debug-level logging.
	Verbose bool

	// BatchSize is the number of concurrent scans for list scanning.
	BatchSize int

	// URLDebounce and EmailDebounce are the frontend typing delays.
	URLDebounce   time.Duration
	EmailDebounce time.Duration

	// ToastDuration is how long auto-detection messages stay visible.
	ToastDuration time.Duration

	// ImageSettleDelay is the wait before page images are scanned.
	ImageSettleDelay time.Duration

	// MaxImages is the number of page images submitted for analysis.
	MaxImages int

	// FetchProxyAddress routes image fetches through a SOCKS5 proxy ("host:port").
	// Empty means direct fetches unless UseTor is set.
	FetchProxyAddress string

	// UseTor starts an embedded Tor daemon and routes image fetches through it.
	UseTor bool

	// TorStartupTimeout bounds the embedded Tor bootstrap.
	TorStartupTimeout time.Duration

	// ConfigFilePath is the path to the configuration file.
	// If empty, .phishguard is searched in the current and home directories.
	ConfigFilePath string

	// JSONReport and MarkdownReport select the output format.
	// They are mutually exclusive; neither means plain text.
	JSONReport     bool
	MarkdownReport bool

	// ReportFile writes the report to a file instead of stdout.
	ReportFile string

	// DBDir is the directory holding the SQLite store.
	DBDir string

	// SaveToDB enables counters, settings and history persistence.
	SaveToDB bool
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		APIBaseURL:        DefaultAPIBaseURL,
		Timeout:           DefaultTimeout,
		UserAgent:         DefaultUserAgent,
		MaxBodySize:       DefaultMaxBodySize,
		BatchSize:         DefaultBatchSize,
		URLDebounce:       DefaultURLDebounce,
		EmailDebounce:     DefaultEmailDebounce,
		ToastDuration:     DefaultToastDuration,
		ImageSettleDelay:  DefaultImageSettleDelay,
		MaxImages:         DefaultMaxImages,
		TorStartupTimeout: DefaultTorStartupTimeout,
		DBDir:             XDGDataDir(),
		SaveToDB:          true,
	}
}

// XDGDataDir returns the XDG data directory for PhishGuard.
// On Linux: ~/.local/share/phishguard
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for PhishGuard.
// On Linux: ~/.config/phishguard
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns the first problem found as a sentinel error.
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidBaseURL
	}

	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	if c.URLDebounce < 0 || c.EmailDebounce < 0 || c.ToastDuration < 0 || c.ImageSettleDelay < 0 {
		return ErrInvalidDelay
	}

	if c.MaxImages < 0 {
		return ErrInvalidMaxImages
	}

	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	if c.UseTor && c.FetchProxyAddress != "" {
		return ErrConflictingProxy
	}

	return nil
}
