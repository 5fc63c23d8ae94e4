package main

import (
	"github.com/nao1215/phishguard/internal/background"
	plog "github.com/nao1215/phishguard/internal/log"
	"github.com/nao1215/phishguard/internal/nativemsg"
	"github.com/spf13/cobra"
)

// NewHostCmd creates the host command.
func NewHostCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "host [origin]",
		Short: "Run as the browser extension's native messaging host",
		Long: `Host speaks the browser's native messaging protocol on stdin and stdout
and acts as the extension's background coordinator: it scans navigations,
context-menu links and downloads, answers scanUrl, scanImage and getStats
requests, and sends badge, notification and download-cancel commands back
to the extension.

The browser starts the host itself and passes the caller's origin as the
first argument. Logs are written to stderr as JSON.`,
		Args: cobra.ArbitraryArgs,
		RunE: runHostCmd,
	}
	cmd.Flags().Int("concurrency", nativemsg.DefaultConcurrency, "Number of messages handled at once")
	addFetchFlags(cmd, false)
	return cmd
}

func runHostCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := readFetchFlags(cmd, cfg); err != nil {
		return err
	}
	concurrency, err := cmd.Flags().GetInt("concurrency")
	if err != nil {
		return err
	}

	// stdout carries the protocol.
	logger := plog.NewSecureJSONLogger(cmd.ErrOrStderr(), cfg.Verbose)
	if len(args) > 0 {
		logger = logger.With("origin", args[0])
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	s, err := newSession(ctx, cmd, cfg, logger, sessionOptions{store: true, fetch: true})
	if err != nil {
		return err
	}
	defer s.Close()

	host := nativemsg.NewHost(cmd.InOrStdin(), cmd.OutOrStdout(),
		nativemsg.WithLogger(logger),
		nativemsg.WithConcurrency(concurrency),
	)
	coordinator := background.New(s.client, s.db,
		background.WithBadge(host),
		background.WithNotifier(host),
		background.WithDownloads(host),
		background.WithLogger(logger),
	)

	logger.Info("native messaging host started", "api", cfg.APIBaseURL)
	return host.Serve(ctx, coordinator)
}
