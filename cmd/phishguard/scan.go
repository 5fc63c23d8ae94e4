package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/nao1215/phishguard/internal/batch"
	"github.com/nao1215/phishguard/internal/config"
	"github.com/nao1215/phishguard/internal/content"
	"github.com/nao1215/phishguard/internal/event"
	"github.com/nao1215/phishguard/internal/media"
	"github.com/nao1215/phishguard/internal/model"
	"github.com/nao1215/phishguard/internal/report"
	"github.com/nao1215/phishguard/internal/store"
	"github.com/nao1215/phishguard/internal/ui"
	"github.com/spf13/cobra"
)

var (
	errNoTargets  = errors.New("no targets provided")
	errEmptyEmail = errors.New("sender or body is required")
)

// NewScanCmd creates the scan command and its subcommands.
func NewScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan URLs, emails, files, images or pages",
		Long: `Scan sends targets to the phishing-detection backend and prints its verdicts.

Every completed scan increments the local counters and is stored in the
scan history unless --no-save is given. Backend failures are reported as
an "error" verdict and never counted.

Examples:
  # Scan a single URL
  phishguard scan url http://example.com/login

  # Scan a list of URLs, 8 at a time, as Markdown
  phishguard scan url --list urls.txt --batch 8 --markdown

  # Scan an email read from stdin
  phishguard scan email --sender alerts@bank.test --subject "Verify" --body-file -

  # Scan a file attachment
  phishguard scan file invoice.pdf

  # Scan a remote image, fetching it through Tor
  phishguard scan image --tor https://cdn.example.com/logo.png

  # Run the page checks (banner, long links, images) on a live page
  phishguard scan page http://example.com/`,
	}

	cmd.PersistentFlags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each backend request")
	cmd.PersistentFlags().Bool("no-save", false,
		"Do not update counters or scan history")
	addReportFlags(cmd, true)

	cmd.AddCommand(newScanURLCmd())
	cmd.AddCommand(newScanEmailCmd())
	cmd.AddCommand(newScanFileCmd())
	cmd.AddCommand(newScanImageCmd())
	cmd.AddCommand(newScanPageCmd())

	return cmd
}

// buildScanConfig loads the configuration and applies the scan flags.
func buildScanConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	readReportFlags(cmd, cfg)

	if flagChanged(cmd, "timeout") {
		cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
		if err != nil {
			return nil, err
		}
	}
	if flagChanged(cmd, "batch") {
		cfg.BatchSize, err = cmd.Flags().GetInt("batch")
		if err != nil {
			return nil, err
		}
	}
	if flagValue(cmd, "no-save") == "true" {
		cfg.SaveToDB = false
	}
	if cmd.Flag("tor") != nil {
		if err := readFetchFlags(cmd, cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// startScan builds the configuration, logger and session for a scan subcommand.
func startScan(ctx context.Context, cmd *cobra.Command, fetch bool) (*session, error) {
	cfg, err := buildScanConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger := setupLogger(cmd.ErrOrStderr(), cfg.Verbose)
	return newSession(ctx, cmd, cfg, logger, sessionOptions{store: true, fetch: fetch})
}

func newScanURLCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "url [url...]",
		Short: "Scan one or more URLs",
		Long: `Scan URLs given as arguments or listed in a file (one per line, # for comments).
Browser-internal pages such as chrome:// and about: are reported safe
without contacting the backend.`,
		Args: cobra.ArbitraryArgs,
		RunE: runScanURLCmd,
	}
	cmd.Flags().StringP("list", "l", "", "File with one URL per line")
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize, "Number of concurrent scans")
	return cmd
}

func runScanURLCmd(cmd *cobra.Command, args []string) error {
	targets := append([]string(nil), args...)
	if list := flagValue(cmd, "list"); list != "" {
		f, err := os.Open(list) //nolint:gosec // user-provided list path is intentional
		if err != nil {
			return fmt.Errorf("failed to open list file: %w", err)
		}
		listed, err := batch.ReadTargets(f)
		f.Close()
		if err != nil {
			return err
		}
		targets = append(targets, listed...)
	}
	if len(targets) == 0 {
		return fmt.Errorf("%w (specify URLs as arguments or use --list)", errNoTargets)
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	s, err := startScan(ctx, cmd, false)
	if err != nil {
		return err
	}
	defer s.Close()

	r := report.New("PhishGuard URL Scan")
	results, err := batch.NewProcessor(s.client.ScanURL,
		batch.WithConcurrency(s.cfg.BatchSize),
		batch.WithLogger(s.logger),
	).Run(ctx, targets)
	if err != nil {
		return err
	}
	for _, res := range results {
		r.Scans = append(r.Scans, s.record(ctx, store.KindURL, res.Target, res.Result, ""))
	}
	return writeReport(cmd, s.cfg, r)
}

func newScanEmailCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "email",
		Short: "Scan email content",
		Long: `Scan an email's sender, subject and body. At least the sender or the body
must be given. All three fields are sent to the backend, empty or not.`,
		Args: cobra.NoArgs,
		RunE: runScanEmailCmd,
	}
	cmd.Flags().StringP("sender", "s", "", "Sender address")
	cmd.Flags().String("subject", "", "Subject line")
	cmd.Flags().String("body", "", "Message body")
	cmd.Flags().StringP("body-file", "f", "", "Read the body from a file (- for stdin)")
	return cmd
}

func runScanEmailCmd(cmd *cobra.Command, _ []string) error {
	email := model.Email{
		Sender:  flagValue(cmd, "sender"),
		Subject: flagValue(cmd, "subject"),
		Body:    flagValue(cmd, "body"),
	}
	if path := flagValue(cmd, "body-file"); path != "" {
		body, err := readInput(cmd, path)
		if err != nil {
			return err
		}
		email.Body = string(body)
	}
	if strings.TrimSpace(email.Sender) == "" && strings.TrimSpace(email.Body) == "" {
		return errEmptyEmail
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	s, err := startScan(ctx, cmd, false)
	if err != nil {
		return err
	}
	defer s.Close()

	r := report.New("PhishGuard Email Scan")
	result := s.client.ScanEmail(ctx, email)
	r.Scans = append(r.Scans, s.record(ctx, store.KindEmail, emailTarget(email), result, ""))
	return writeReport(cmd, s.cfg, r)
}

// readInput reads a file, or the command's stdin for "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path) //nolint:gosec // user-provided path is intentional
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

func newScanFileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "file <path>...",
		Short: "Scan files",
		Long: `Upload files to the backend for analysis. The SHA3-256 digest of each file
is stored with its history record. With --metadata the EXIF summary of
each file is added to the report; it is computed locally and never sent.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runScanFileCmd,
	}
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize, "Number of concurrent scans")
	cmd.Flags().Bool("metadata", false, "Include the local EXIF metadata summary")
	return cmd
}

func runScanFileCmd(cmd *cobra.Command, args []string) error {
	files := make(map[string][]byte, len(args))
	summaries := make(map[string]media.Summary, len(args))
	for _, path := range args {
		data, err := readInput(cmd, path)
		if err != nil {
			return err
		}
		files[path] = data
		summaries[path] = media.Inspect(filepath.Base(path), data)
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	s, err := startScan(ctx, cmd, false)
	if err != nil {
		return err
	}
	defer s.Close()

	scanFile := func(ctx context.Context, path string) model.ScanResult {
		return s.client.ScanFile(ctx, filepath.Base(path), bytes.NewReader(files[path]))
	}
	results, err := batch.NewProcessor(scanFile,
		batch.WithConcurrency(s.cfg.BatchSize),
		batch.WithLogger(s.logger),
	).Run(ctx, args)
	if err != nil {
		return err
	}

	r := report.New("PhishGuard File Scan")
	withMetadata := flagValue(cmd, "metadata") == "true"
	for _, res := range results {
		summary := summaries[res.Target]
		r.Scans = append(r.Scans, s.record(ctx, store.KindFile, summary.Name, res.Result, summary.Digest))
		if withMetadata {
			r.Media = append(r.Media, summary)
		}
	}
	return writeReport(cmd, s.cfg, r)
}

func newScanImageCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "image <url>...",
		Short: "Scan remote images",
		Long: `Download images locally and forward them to the backend for visual
analysis, so the backend never contacts the image host. Use --tor or
--fetch-proxy to route the download.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runScanImageCmd,
	}
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize, "Number of concurrent scans")
	addFetchFlags(cmd, false)
	return cmd
}

func runScanImageCmd(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	s, err := startScan(ctx, cmd, true)
	if err != nil {
		return err
	}
	defer s.Close()

	results, err := batch.NewProcessor(s.client.ScanImage,
		batch.WithConcurrency(s.cfg.BatchSize),
		batch.WithLogger(s.logger),
	).Run(ctx, args)
	if err != nil {
		return err
	}

	r := report.New("PhishGuard Image Scan")
	for _, res := range results {
		r.Scans = append(r.Scans, s.record(ctx, store.KindImage, res.Target, res.Result, ""))
	}
	return writeReport(cmd, s.cfg, r)
}

func newScanPageCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "page <url>",
		Short: "Run the page checks on a live page",
		Long: `Fetch a page and run the checks the extension runs on every page:
scan the page URL and show the warning banner for confident phishing
verdicts, scan unusually long or IP-literal links, and scan the first
large images. Every verdict is reported.`,
		Args: cobra.ExactArgs(1),
		RunE: runScanPageCmd,
	}
	addFetchFlags(cmd, false)
	return cmd
}

func runScanPageCmd(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	s, err := startScan(ctx, cmd, true)
	if err != nil {
		return err
	}
	defer s.Close()

	pageURL := args[0]
	res, err := s.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return fmt.Errorf("failed to fetch page: %w", err)
	}
	page, err := content.ParsePage(pageURL, bytes.NewReader(res.Data))
	if err != nil {
		return fmt.Errorf("failed to parse page: %w", err)
	}

	scanner := &capture{client: s.client}
	doc := ui.NewDocument("0px")
	monitorOpts := []content.Option{
		content.WithSettleDelay(0),
		content.WithMaxImages(s.cfg.MaxImages),
		content.WithLogger(s.logger),
	}
	if s.db != nil {
		monitorOpts = append(monitorOpts, content.WithSettings(s.db))
	}
	monitor := content.NewMonitor(page, scanner, doc, monitorOpts...)

	if _, err := monitor.Start(ctx); errors.Is(err, event.ErrSkipped) {
		fmt.Fprintln(cmd.ErrOrStderr(), "Auto scan is off; only flagged links are checked (enable with 'phishguard settings --auto-scan').")
	}
	for _, link := range page.Links {
		if _, err := monitor.HoverLink(ctx, link); err != nil && !errors.Is(err, event.ErrSkipped) {
			s.logger.Debug("link scan failed", "href", link, "error", err)
		}
	}
	monitor.Wait()

	if banner, ok := doc.Banner(); ok {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", banner.Title, banner.Text)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Monitoring %d form(s); %d link(s) and %d image(s) marked.\n",
		len(page.Forms), doc.MarkedLinks(), doc.MarkedImages())

	r := report.New("PhishGuard Page Scan")
	r.Scans = scanner.flush(ctx, s)
	return writeReport(cmd, s.cfg, r)
}
