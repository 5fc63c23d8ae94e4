package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/nao1215/phishguard/internal/config"
	"github.com/nao1215/phishguard/internal/fetch"
	plog "github.com/nao1215/phishguard/internal/log"
	"github.com/nao1215/phishguard/internal/model"
	"github.com/nao1215/phishguard/internal/report"
	"github.com/nao1215/phishguard/internal/scanclient"
	"github.com/nao1215/phishguard/internal/store"
	"github.com/spf13/cobra"
)

// flagValue returns the string value of a local, persistent or inherited
// flag, or "" when the flag does not exist.
func flagValue(cmd *cobra.Command, name string) string {
	if f := cmd.Flag(name); f != nil {
		return f.Value.String()
	}
	return ""
}

// flagChanged reports whether the user set the flag.
func flagChanged(cmd *cobra.Command, name string) bool {
	f := cmd.Flag(name)
	return f != nil && f.Changed
}

// getVerboseFlag retrieves the verbose flag from the command or its parents.
func getVerboseFlag(cmd *cobra.Command) bool {
	return flagValue(cmd, flagVerbose) == "true"
}

// setupLogger creates the sanitizing text logger used by interactive commands.
func setupLogger(w io.Writer, verbose bool) *slog.Logger {
	return plog.NewSecureLogger(w, verbose)
}

// loadConfig builds the configuration from defaults, the configuration file
// and the persistent flags, in that order.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Verbose = getVerboseFlag(cmd)
	cfg.ConfigFilePath = flagValue(cmd, flagConfig)

	// An explicit path must exist; the default search may find nothing.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	if configPath != "" {
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		file.Apply(cfg)
		cfg.ConfigFilePath = configPath
	} else if explicitConfigPath {
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}

	if api := flagValue(cmd, flagAPI); api != "" {
		cfg.APIBaseURL = api
	}
	if dir := flagValue(cmd, flagDataDir); dir != "" {
		cfg.DBDir = dir
	}
	return cfg, nil
}

// addReportFlags registers the output format flags on fs.
func addReportFlags(cmd *cobra.Command, persistent bool) {
	fs := cmd.Flags()
	if persistent {
		fs = cmd.PersistentFlags()
	}
	fs.BoolP("json", "j", false, "Output JSON report (mutually exclusive with --markdown)")
	fs.BoolP("markdown", "m", false, "Output Markdown report (mutually exclusive with --json)")
	fs.StringP("output", "o", "", "Write report to specified file path (creates directories if needed)")
}

// readReportFlags copies the output format flags into cfg.
func readReportFlags(cmd *cobra.Command, cfg *config.Config) {
	cfg.JSONReport = flagValue(cmd, "json") == "true"
	cfg.MarkdownReport = flagValue(cmd, "markdown") == "true"
	cfg.ReportFile = flagValue(cmd, "output")
}

// reportFormat returns the report format selected in cfg.
func reportFormat(cfg *config.Config) report.Format {
	switch {
	case cfg.JSONReport:
		return report.FormatJSON
	case cfg.MarkdownReport:
		return report.FormatMarkdown
	default:
		return report.FormatText
	}
}

// writeReport outputs r to the report file or the command's stdout.
func writeReport(cmd *cobra.Command, cfg *config.Config, r *report.Report) error {
	output := cmd.OutOrStdout()
	if cfg.ReportFile != "" {
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		// Reports may contain visited URLs and email senders.
		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	}

	w, err := report.NewWriter(output, reportFormat(cfg))
	if err != nil {
		return err
	}
	_, err = w.Write(r)
	return err
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// addFetchFlags registers the image fetch routing flags.
func addFetchFlags(cmd *cobra.Command, persistent bool) {
	fs := cmd.Flags()
	if persistent {
		fs = cmd.PersistentFlags()
	}
	fs.Bool("tor", false, "Fetch remote images and pages through an embedded Tor daemon")
	fs.StringP("fetch-proxy", "x", "", "Fetch remote images and pages through a SOCKS5 proxy (host:port)")
	fs.Duration("tor-timeout", config.DefaultTorStartupTimeout, "Timeout for embedded Tor startup")
}

// readFetchFlags copies the fetch routing flags into cfg.
func readFetchFlags(cmd *cobra.Command, cfg *config.Config) error {
	cfg.UseTor = flagValue(cmd, "tor") == "true"
	if p := flagValue(cmd, "fetch-proxy"); p != "" {
		cfg.FetchProxyAddress = p
	}
	if flagChanged(cmd, "tor-timeout") {
		d, err := time.ParseDuration(flagValue(cmd, "tor-timeout"))
		if err != nil {
			return fmt.Errorf("invalid --tor-timeout: %w", err)
		}
		cfg.TorStartupTimeout = d
	}
	return nil
}

// session is the set of resources shared by a scanning command.
type session struct {
	cfg     *config.Config
	logger  *slog.Logger
	db      *store.DB
	fetcher *fetch.Fetcher
	client  *scanclient.Client
	closers []func()
}

// sessionOptions selects what a session opens.
type sessionOptions struct {
	// store opens the database and records counters and history.
	store bool

	// fetch builds a fetcher honoring --tor and --fetch-proxy.
	fetch bool
}

// newSession validates cfg and opens the resources named in opts.
func newSession(ctx context.Context, cmd *cobra.Command, cfg *config.Config, logger *slog.Logger, opts sessionOptions) (*session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}

	s := &session{cfg: cfg, logger: logger}
	clientOpts := []scanclient.Option{scanclient.WithLogger(logger)}

	if opts.store && cfg.SaveToDB {
		db, err := store.Open(cfg.DBDir, store.DefaultOptions())
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		s.db = db
		s.closers = append(s.closers, func() { _ = db.Close() }) //nolint:errcheck // best effort on exit
		clientOpts = append(clientOpts, scanclient.WithRecorder(db))
		logger.Debug("database opened", "path", db.Path())
	}

	if opts.fetch {
		f, err := s.openFetcher(ctx, cmd)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.fetcher = f
		clientOpts = append(clientOpts, scanclient.WithFetcher(f))
	}

	s.client = scanclient.New(cfg, clientOpts...)
	return s, nil
}

// openFetcher returns a direct, SOCKS5 or embedded Tor fetcher.
func (s *session) openFetcher(ctx context.Context, cmd *cobra.Command) (*fetch.Fetcher, error) {
	opts := []fetch.Option{
		fetch.WithUserAgent(s.cfg.UserAgent),
		fetch.WithMaxSize(s.cfg.MaxBodySize),
	}

	switch {
	case s.cfg.UseTor:
		fmt.Fprintln(cmd.ErrOrStderr(), "Starting embedded Tor daemon...")
		fmt.Fprintln(cmd.ErrOrStderr(), "This may take 1-3 minutes while Tor bootstraps and connects to the network.")

		tor := fetch.NewEmbeddedTor(fetch.WithStartupTimeout(s.cfg.TorStartupTimeout))
		if err := tor.Start(ctx); err != nil {
			return nil, fmt.Errorf("failed to start embedded Tor: %w", err)
		}
		s.closers = append(s.closers, func() {
			s.logger.Info("stopping embedded Tor daemon")
			if err := tor.Stop(); err != nil {
				s.logger.Error("failed to stop embedded Tor", "error", err)
			}
		})
		s.logger.Info("embedded Tor daemon started", "socksAddr", tor.SocksAddr())
		return tor.NewFetcher(s.cfg.Timeout, opts...)

	case s.cfg.FetchProxyAddress != "":
		f, err := fetch.NewSOCKS5(s.cfg.FetchProxyAddress, s.cfg.Timeout, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create fetch client: %w", err)
		}
		return f, nil

	default:
		return fetch.NewDirect(s.cfg.Timeout, opts...), nil
	}
}

// Close releases the session's resources in reverse order.
func (s *session) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}

// record stores a verdict in history when the database is open and
// returns it as a report entry.
func (s *session) record(ctx context.Context, kind store.Kind, target string, result model.ScanResult, digest string) report.Scan {
	scan := report.Scan{
		Kind:      string(kind),
		Target:    target,
		Result:    result,
		Digest:    digest,
		ScannedAt: time.Now(),
	}
	if s.db == nil {
		return scan
	}

	rec, err := s.db.AddHistory(ctx, store.Record{Kind: kind, Target: target, Result: result, Digest: digest})
	if err != nil {
		s.logger.Error("failed to save history", "target", target, "error", err)
		return scan
	}
	scan.ScannedAt = rec.Timestamp
	return scan
}

// capture wraps a scan client and keeps every verdict it returns, so that
// commands driving the page monitor or the input router can report them.
type capture struct {
	client *scanclient.Client

	mu    sync.Mutex
	scans []capturedScan
}

type capturedScan struct {
	kind   store.Kind
	target string
	result model.ScanResult
}

func (c *capture) add(kind store.Kind, target string, result model.ScanResult) model.ScanResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scans = append(c.scans, capturedScan{kind: kind, target: target, result: result})
	return result
}

func (c *capture) ScanURL(ctx context.Context, rawURL string) model.ScanResult {
	return c.add(store.KindURL, rawURL, c.client.ScanURL(ctx, rawURL))
}

func (c *capture) ScanEmail(ctx context.Context, email model.Email) model.ScanResult {
	return c.add(store.KindEmail, emailTarget(email), c.client.ScanEmail(ctx, email))
}

func (c *capture) ScanFile(ctx context.Context, name string, r io.Reader) model.ScanResult {
	return c.add(store.KindFile, name, c.client.ScanFile(ctx, name, r))
}

func (c *capture) ScanImage(ctx context.Context, imageURL string) model.ScanResult {
	return c.add(store.KindImage, imageURL, c.client.ScanImage(ctx, imageURL))
}

// flush records every captured verdict through s.
func (c *capture) flush(ctx context.Context, s *session) []report.Scan {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]report.Scan, 0, len(c.scans))
	for _, sc := range c.scans {
		out = append(out, s.record(ctx, sc.kind, sc.target, sc.result, ""))
	}
	c.scans = nil
	return out
}

// emailTarget names an email in history and reports.
func emailTarget(e model.Email) string {
	if e.Sender != "" {
		return e.Sender
	}
	if e.Subject != "" {
		return e.Subject
	}
	return "(no sender)"
}
