// Package config provides configuration structures and utilities for PhishGuard.
// It defines the scan API endpoint, transport limits, frontend timing values
// and report preferences, plus the optional .phishguard YAML file.
package config
