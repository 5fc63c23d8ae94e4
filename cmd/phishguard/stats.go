package main

import (
	"context"
	"fmt"

	"github.com/nao1215/phishguard/internal/config"
	"github.com/nao1215/phishguard/internal/report"
	"github.com/nao1215/phishguard/internal/store"
	"github.com/nao1215/phishguard/internal/ui"
	"github.com/spf13/cobra"
)

// openStore loads the configuration and opens the database.
func openStore(cmd *cobra.Command) (*config.Config, *store.DB, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	readReportFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("configuration error: %w", err)
	}

	db, err := store.Open(cfg.DBDir, store.DefaultOptions())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	return cfg, db, nil
}

// statsReport returns a report holding the counters and settings.
func statsReport(ctx context.Context, db *store.DB, title string) (*report.Report, error) {
	counters, err := db.Counters(ctx)
	if err != nil {
		return nil, err
	}
	settings, err := db.Settings(ctx)
	if err != nil {
		return nil, err
	}
	r := report.New(title)
	r.Stats = &report.Stats{Counters: counters, Settings: settings}
	return r, nil
}

// NewStatsCmd creates the stats command.
func NewStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show scan counters and the last verdict",
		Long: `Stats shows what the extension popup shows: the number of pages scanned,
the number of threats blocked, the current settings and the most recent
verdict.`,
		Args: cobra.NoArgs,
		RunE: runStatsCmd,
	}
	addReportFlags(cmd, false)
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	cfg, db, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := cmd.Context()
	r, err := statsReport(ctx, db, "PhishGuard Statistics")
	if err != nil {
		return err
	}

	last, err := db.ListHistory(ctx, "", 1)
	if err != nil {
		return err
	}
	if len(last) > 0 {
		rec := last[0]
		r.Scans = append(r.Scans, report.Scan{
			Kind:      string(rec.Kind),
			Target:    rec.Target,
			Result:    rec.Result,
			Digest:    rec.Digest,
			ScannedAt: rec.Timestamp,
		})
		if reportFormat(cfg) == report.FormatText && cfg.ReportFile == "" {
			h := ui.HeadlineOf(rec.Result)
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %s\n\n", h.Icon, h.Text, rec.Target)
		}
	}
	return writeReport(cmd, cfg, r)
}

// NewSettingsCmd creates the settings command.
func NewSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change the scan settings",
		Long: `Settings shows the auto-scan and notification toggles read by the native
messaging host before every automatic scan, and changes them when flags
are given.

Examples:
  phishguard settings
  phishguard settings --auto-scan=false
  phishguard settings --notifications=true`,
		Args: cobra.NoArgs,
		RunE: runSettingsCmd,
	}
	cmd.Flags().Bool("auto-scan", true, "Scan pages automatically on navigation")
	cmd.Flags().Bool("notifications", true, "Show alerts for phishing navigations")
	addReportFlags(cmd, false)
	return cmd
}

func runSettingsCmd(cmd *cobra.Command, _ []string) error {
	cfg, db, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := cmd.Context()
	if flagChanged(cmd, "auto-scan") || flagChanged(cmd, "notifications") {
		settings, err := db.Settings(ctx)
		if err != nil {
			return err
		}
		if flagChanged(cmd, "auto-scan") {
			settings.AutoScan, err = cmd.Flags().GetBool("auto-scan")
			if err != nil {
				return err
			}
		}
		if flagChanged(cmd, "notifications") {
			settings.ShowNotifications, err = cmd.Flags().GetBool("notifications")
			if err != nil {
				return err
			}
		}
		if err := db.SaveSettings(ctx, settings); err != nil {
			return err
		}
	}

	r, err := statsReport(ctx, db, "PhishGuard Settings")
	if err != nil {
		return err
	}
	return writeReport(cmd, cfg, r)
}
