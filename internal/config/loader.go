package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".phishguard"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File represents the structure of the .phishguard configuration file.
type File struct {
	// API configures the scan oracle endpoint.
	API APIFile `yaml:"api,omitempty"`

	// Fetch configures how remote images are downloaded before analysis.
	Fetch FetchFile `yaml:"fetch,omitempty"`

	// Frontend holds the input router timings.
	Frontend FrontendFile `yaml:"frontend,omitempty"`

	// Content holds the page monitor limits.
	Content ContentFile `yaml:"content,omitempty"`
}

// APIFile is the api section of the configuration file.
type APIFile struct {
	BaseURL string            `yaml:"baseURL,omitempty"`
	Timeout time.Duration     `yaml:"timeout,omitempty"`
	Headers map[string]string `yaml:"headers,omitempty"`
}

// FetchFile is the fetch section of the configuration file.
type FetchFile struct {
	// Proxy is a SOCKS5 "host:port" used for image fetches.
	Proxy string `yaml:"proxy,omitempty"`

	// MaxBodySize caps fetched image size in bytes.
	MaxBodySize int64 `yaml:"maxBodySize,omitempty"`
}

// FrontendFile is the frontend section of the configuration file.
type FrontendFile struct {
	URLDebounce   time.Duration `yaml:"urlDebounce,omitempty"`
	EmailDebounce time.Duration `yaml:"emailDebounce,omitempty"`
	Toast         time.Duration `yaml:"toast,omitempty"`
}

// ContentFile is the content section of the configuration file.
type ContentFile struct {
	ImageSettleDelay time.Duration `yaml:"imageSettleDelay,omitempty"`
	MaxImages        int           `yaml:"maxImages,omitempty"`
}

// LoadConfigFile loads a YAML configuration file.
// If the file does not exist, it returns ErrConfigNotFound.
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

// Apply copies every non-zero value of the file onto cfg.
// Header maps are merged, with file values winning.
func (cf *File) Apply(cfg *Config) {
	if cf.API.BaseURL != "" {
		cfg.APIBaseURL = cf.API.BaseURL
	}
	if cf.API.Timeout > 0 {
		cfg.Timeout = cf.API.Timeout
	}
	if len(cf.API.Headers) > 0 {
		if cfg.Headers == nil {
			cfg.Headers = make(map[string]string, len(cf.API.Headers))
		}
		for k, v := range cf.API.Headers {
			cfg.Headers[k] = v
		}
	}
	if cf.Fetch.Proxy != "" {
		cfg.FetchProxyAddress = cf.Fetch.Proxy
	}
	if cf.Fetch.MaxBodySize > 0 {
		cfg.MaxBodySize = cf.Fetch.MaxBodySize
	}
	if cf.Frontend.URLDebounce > 0 {
		cfg.URLDebounce = cf.Frontend.URLDebounce
	}
	if cf.Frontend.EmailDebounce > 0 {
		cfg.EmailDebounce = cf.Frontend.EmailDebounce
	}
	if cf.Frontend.Toast > 0 {
		cfg.ToastDuration = cf.Frontend.Toast
	}
	if cf.Content.ImageSettleDelay > 0 {
		cfg.ImageSettleDelay = cf.Content.ImageSettleDelay
	}
	if cf.Content.MaxImages > 0 {
		cfg.MaxImages = cf.Content.MaxImages
	}
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .phishguard in the current directory
// 3. Look for .phishguard in the user's home directory
// 4. Look for config.yaml in the XDG config directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	candidates := make([]string, 0, 3)
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, DefaultConfigFile))
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, DefaultConfigFile))
	}
	candidates = append(candidates, filepath.Join(XDGConfigDir(), "config.yaml"))

	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	return ""
}
