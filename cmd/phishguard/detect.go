package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/phishguard/internal/frontend"
	"github.com/nao1215/phishguard/internal/report"
	"github.com/nao1215/phishguard/internal/ui"
	"github.com/spf13/cobra"
)

// NewDetectCmd creates the detect command.
func NewDetectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "detect [text...]",
		Short: "Classify pasted text as a URL or email content",
		Long: `Detect applies the paste heuristic of the web frontend to text given as
arguments or read from stdin, and prints whether it would be scanned as a
URL or as email content. With --scan the text is scanned on that surface,
exactly as if it had been pasted into the page.

Examples:
  phishguard detect http://example.com/login
  pbpaste | phishguard detect --scan`,
		Args: cobra.ArbitraryArgs,
		RunE: runDetectCmd,
	}
	cmd.Flags().Bool("scan", false, "Scan the text on the detected surface")
	addReportFlags(cmd, false)
	return cmd
}

func runDetectCmd(cmd *cobra.Command, args []string) error {
	text := strings.Join(args, " ")
	if len(args) == 0 {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		text = string(data)
	}
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("%w (pass text as arguments or on stdin)", errNoTargets)
	}

	if flagValue(cmd, "scan") != "true" {
		kind, detected := frontend.Classify(text)
		how := "auto-detected"
		if !detected {
			how = "length fallback"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", kind, how)
		return nil
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	readReportFlags(cmd, cfg)
	logger := setupLogger(cmd.ErrOrStderr(), cfg.Verbose)

	s, err := newSession(ctx, cmd, cfg, logger, sessionOptions{store: true})
	if err != nil {
		return err
	}
	defer s.Close()

	scanner := &capture{client: s.client}
	router := frontend.NewRouter(scanner, &statusScreen{w: cmd.ErrOrStderr()},
		frontend.WithToastDuration(cfg.ToastDuration),
		frontend.WithLogger(logger),
	)
	defer router.Close()

	router.Paste(ctx, frontend.PasteEvent{Text: text})

	r := report.New("PhishGuard Paste Scan")
	r.Scans = scanner.flush(ctx, s)
	return writeReport(cmd, cfg, r)
}

// statusScreen shows the router's status line on a terminal. Verdicts are
// printed by the report writer instead.
type statusScreen struct {
	w io.Writer
}

func (s *statusScreen) SwitchTab(frontend.Surface) {}

func (s *statusScreen) ShowResult(ui.ResultView) {}

func (s *statusScreen) HideResult() {}

func (s *statusScreen) SetStatus(text string) {
	fmt.Fprintln(s.w, text)
}

var _ frontend.Screen = (*statusScreen)(nil)
