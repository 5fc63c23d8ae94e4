package scanclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/nao1215/phishguard/internal/config"
	"github.com/nao1215/phishguard/internal/fetch"
	"github.com/nao1215/phishguard/internal/model"
)

// API endpoints relative to the base URL.
const (
	endpointURL     = "/scan/url"
	endpointEmail   = "/scan/email"
	endpointFile    = "/scan/file"
	endpointIPs     = "/admin/ips"
	endpointUnblock = "/admin/unblock/"
)

// ImageFileName is the multipart file name used when forwarding fetched images.
const ImageFileName = "image_scan.png"

// internalPrefixes are URL prefixes of pages the browser renders itself.
var internalPrefixes = []string{
	"chrome://",
	"chrome-extension://",
	"about:",
	"edge://",
}

// IsInternalURL reports whether rawURL is a browser-internal page that
// cannot be scanned.
func IsInternalURL(rawURL string) bool {
	for _, p := range internalPrefixes {
		if strings.HasPrefix(rawURL, p) {
			return true
		}
	}
	return false
}

// Recorder receives every completed URL scan. store.DB implements it.
type Recorder interface {
	Increment(ctx context.Context, status model.Status) (model.Counters, error)
}

// Fetcher downloads remote images before they are forwarded.
// fetch.Fetcher implements it.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (*fetch.Resource, error)
}

// Client calls the scan backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	fetcher    Fetcher
	recorder   Recorder
	logger     *slog.Logger
	maxBody    int64
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the client used for backend requests.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// WithFetcher replaces the fetcher used by ScanImage.
func WithFetcher(f Fetcher) Option {
	return func(cl *Client) {
		cl.fetcher = f
	}
}

// WithRecorder sets the counters store updated after each completed URL scan.
func WithRecorder(r Recorder) Option {
	return func(cl *Client) {
		cl.recorder = r
	}
}

// WithLogger sets the logger. Scan failures are logged at debug level.
func WithLogger(l *slog.Logger) Option {
	return func(cl *Client) {
		cl.logger = l
	}
}

// New creates a Client from cfg. Headers and the user agent from cfg are
// added to every backend request.
func New(cfg *config.Config, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(cfg.APIBaseURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &headerTransport{
				base:      http.DefaultTransport,
				headers:   cfg.Headers,
				userAgent: cfg.UserAgent,
			},
		},
		logger:  slog.New(slog.DiscardHandler),
		maxBody: cfg.MaxBodySize,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.fetcher == nil {
		c.fetcher = fetch.NewDirect(cfg.Timeout,
			fetch.WithUserAgent(cfg.UserAgent),
			fetch.WithMaxSize(cfg.MaxBodySize))
	}
	if c.maxBody <= 0 {
		c.maxBody = config.DefaultMaxBodySize
	}
	return c
}

// ScanURL asks the backend for a verdict on rawURL.
func (c *Client) ScanURL(ctx context.Context, rawURL string) model.ScanResult {
	if IsInternalURL(rawURL) {
		return model.SafeInternal()
	}
	result := c.postJSON(ctx, endpointURL, map[string]string{"url": rawURL})
	c.record(ctx, result.Status)
	return result
}

// ScanEmail asks the backend for a verdict on an email. Every field is sent
// even when empty; callers skip empty emails themselves.
func (c *Client) ScanEmail(ctx context.Context, email model.Email) model.ScanResult {
	return c.postJSON(ctx, endpointEmail, email)
}

// ScanFile uploads r as multipart field "file" named name.
func (c *Client) ScanFile(ctx context.Context, name string, r io.Reader) model.ScanResult {
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile("file", name)
	if err == nil {
		_, err = io.Copy(part, r)
	}
	if err == nil {
		err = w.Close()
	}
	if err != nil {
		return c.fail(&ScanError{Endpoint: endpointFile, Err: fmt.Errorf("failed to build upload: %w", err)})
	}
	return c.post(ctx, endpointFile, w.FormDataContentType(), body)
}

// FetchImage downloads imageURL through the configured fetcher.
func (c *Client) FetchImage(ctx context.Context, imageURL string) ([]byte, error) {
	res, err := c.fetcher.Fetch(ctx, imageURL)
	if err != nil {
		return nil, err
	}
	return res.Data, nil
}

// ScanImage downloads imageURL locally and uploads the bytes as
// ImageFileName, so the backend never has to reach the image host.
func (c *Client) ScanImage(ctx context.Context, imageURL string) model.ScanResult {
	data, err := c.FetchImage(ctx, imageURL)
	if err != nil {
		c.logger.Debug("image fetch failed", "url", imageURL, "error", err)
		return model.Failure("Unable to scan: image could not be fetched")
	}
	return c.ScanFile(ctx, ImageFileName, bytes.NewReader(data))
}

func (c *Client) postJSON(ctx context.Context, endpoint string, payload any) model.ScanResult {
	body, err := json.Marshal(payload)
	if err != nil {
		return c.fail(&ScanError{Endpoint: endpoint, Err: err})
	}
	return c.post(ctx, endpoint, "application/json", bytes.NewReader(body))
}

// post sends one request and converts the outcome into a verdict.
func (c *Client) post(ctx context.Context, endpoint, contentType string, body io.Reader) model.ScanResult {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, body)
	if err != nil {
		return c.fail(&ScanError{Endpoint: endpoint, Err: err})
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.fail(&ScanError{Endpoint: endpoint, Err: err})
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, c.maxBody))
		return c.fail(&ScanError{Endpoint: endpoint, StatusCode: resp.StatusCode, Err: ErrUnexpectedStatus})
	}

	var result model.ScanResult
	if err := json.NewDecoder(io.LimitReader(resp.Body, c.maxBody)).Decode(&result); err != nil {
		return c.fail(&ScanError{Endpoint: endpoint, StatusCode: resp.StatusCode,
			Err: fmt.Errorf("%w: %w", ErrMalformedResponse, err)})
	}
	if !result.Status.Valid() {
		return c.fail(&ScanError{Endpoint: endpoint, StatusCode: resp.StatusCode,
			Err: fmt.Errorf("%w: unknown status %q", ErrMalformedResponse, result.Status)})
	}
	result = result.Normalize()

	c.logger.Debug("scan completed",
		"endpoint", endpoint,
		"status", result.Status,
		"score", result.Score,
		"duration", time.Since(start))

	return result
}

// record counts a completed page scan. Email, file and image scans are
// never counted.
func (c *Client) record(ctx context.Context, status model.Status) {
	if c.recorder == nil || status == model.StatusError {
		return
	}
	if _, err := c.recorder.Increment(ctx, status); err != nil {
		c.logger.Warn("failed to update counters", "error", err)
	}
}

func (c *Client) fail(err *ScanError) model.ScanResult {
	c.logger.Debug("scan failed", "endpoint", err.Endpoint, "error", err)
	return model.Failure(err.Details())
}
