package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Persistent flag names shared by every subcommand.
const (
	flagVerbose = "verbose"
	flagConfig  = "config"
	flagDataDir = "data-dir"
	flagAPI     = "api"
)

// NewRootCmd creates the root command for PhishGuard.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "phishguard",
		Short: "Phishing protection client for URLs, emails, files and images",
		Long: `PhishGuard asks a phishing-detection backend for verdicts on URLs, email
content, files and remote images, and turns them into reports, counters
and browser extension commands.

The backend is reached at http://localhost:8000 unless --api or the
configuration file says otherwise.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP(flagVerbose, "v", false, "Enable verbose logging")
	cmd.PersistentFlags().StringP(flagConfig, "c", "",
		"Configuration file path (default: .phishguard in current or home directory)")
	cmd.PersistentFlags().String(flagDataDir, "",
		"Directory of the PhishGuard database (default: XDG data directory)")
	cmd.PersistentFlags().String(flagAPI, "",
		"Base URL of the scan backend (overrides the configuration file)")

	cmd.AddCommand(NewScanCmd())
	cmd.AddCommand(NewDetectCmd())
	cmd.AddCommand(NewInspectCmd())
	cmd.AddCommand(NewHostCmd())
	cmd.AddCommand(NewAdminCmd())
	cmd.AddCommand(NewStatsCmd())
	cmd.AddCommand(NewSettingsCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
