package fetch

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/net/proxy"
)

// DefaultMaxSize is used when a Fetcher is created with a non-positive limit.
const DefaultMaxSize int64 = 5 * 1024 * 1024

// Fetcher downloads remote resources into memory with a size cap.
type Fetcher struct {
	client    *http.Client
	userAgent string
	maxSize   int64
	proxyAddr string
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithUserAgent sets the User-Agent header of every fetch.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithMaxSize caps the number of bytes read from a response.
func WithMaxSize(n int64) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxSize = n
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client. Tests use it to point
// the fetcher at an httptest server.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) {
		f.client = c
	}
}

// NewDirect creates a Fetcher that connects without a proxy.
func NewDirect(timeout time.Duration, opts ...Option) *Fetcher {
	f := &Fetcher{
		client:  &http.Client{Timeout: timeout},
		maxSize: DefaultMaxSize,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// NewSOCKS5 creates a Fetcher that routes every connection through the
// SOCKS5 proxy at proxyAddress ("host:port"). The proxy is not contacted
// until the first fetch.
func NewSOCKS5(proxyAddress string, timeout time.Duration, opts ...Option) (*Fetcher, error) {
	if !isValidProxyAddress(proxyAddress) {
		return nil, ErrInvalidProxyAddress
	}

	dialer, err := proxy.SOCKS5("tcp", proxyAddress, nil, proxy.Direct)
	if err != nil {
		return nil, fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
	}

	transport := &http.Transport{
		DialContext:         contextDialer(dialer),
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     30 * time.Second,
	}

	f := NewDirect(timeout, opts...)
	f.client = &http.Client{Transport: transport, Timeout: timeout}
	f.proxyAddr = proxyAddress
	return f, nil
}

// contextDialer adapts a proxy.Dialer to http.Transport.DialContext.
// The SOCKS5 dialer from x/net supports contexts natively; other dialers
// fall back to a plain Dial that ignores cancellation.
func contextDialer(d proxy.Dialer) func(ctx context.Context, network, addr string) (net.Conn, error) {
	if cd, ok := d.(proxy.ContextDialer); ok {
		return cd.DialContext
	}
	return func(_ context.Context, network, addr string) (net.Conn, error) {
		return d.Dial(network, addr)
	}
}

// isValidProxyAddress checks if the address is in "host:port" format with a
// port between 1 and 65535.
func isValidProxyAddress(address string) bool {
	host, port, err := net.SplitHostPort(address)
	if err != nil || host == "" {
		return false
	}
	n, err := strconv.Atoi(port)
	return err == nil && n >= 1 && n <= 65535
}

// ProxyAddress returns the SOCKS5 proxy address, or "" for direct fetchers.
func (f *Fetcher) ProxyAddress() string {
	return f.proxyAddr
}

// Resource is a fetched response body.
type Resource struct {
	// URL is the final URL after redirects.
	URL string

	// ContentType is the response Content-Type header.
	ContentType string

	// Data is the response body.
	Data []byte
}

// Fetch downloads rawURL. Non-2xx responses, unsupported schemes and bodies
// larger than the limit are errors.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Resource, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, ErrUnsupportedScheme
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", u.Redacted(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("failed to fetch %s: unexpected status %d", u.Redacted(), resp.StatusCode)
	}
	if resp.ContentLength > f.maxSize {
		return nil, ErrTooLarge
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}
	if int64(len(data)) > f.maxSize {
		return nil, ErrTooLarge
	}

	return &Resource{
		URL:         resp.Request.URL.String(),
		ContentType: resp.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}
