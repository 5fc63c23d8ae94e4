package fetch

import "errors"

var (
	// ErrInvalidProxyAddress is returned when the proxy address format is invalid.
	// Expected format is "host:port".
	ErrInvalidProxyAddress = errors.New("invalid proxy address format: expected host:port")

	// ErrTorNotRunning is returned when a fetcher is requested from a stopped daemon.
	ErrTorNotRunning = errors.New("embedded Tor daemon is not running")

	// ErrUnsupportedScheme is returned for URLs that are not http or https.
	ErrUnsupportedScheme = errors.New("unsupported URL scheme: only http and https can be fetched")

	// ErrTooLarge is returned when a response exceeds the configured size limit.
	ErrTooLarge = errors.New("response exceeds maximum size")
)
