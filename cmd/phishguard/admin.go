package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/nao1215/phishguard/internal/config"
	"github.com/nao1215/phishguard/internal/frontend"
	"github.com/nao1215/phishguard/internal/model"
	"github.com/nao1215/phishguard/internal/report"
	"github.com/nao1215/phishguard/internal/scanclient"
	"github.com/spf13/cobra"
)

// NewAdminCmd creates the admin command and its subcommands.
func NewAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Inspect and manage the backend's IP reputation table",
		Long: `Admin shows the IP addresses the backend tracks and lifts blocks.
A row is blocked while its blocked_until time lies in the future.

Examples:
  phishguard admin ips
  phishguard admin unblock 203.0.113.7`,
	}
	addReportFlags(cmd, true)
	cmd.AddCommand(newAdminIPsCmd())
	cmd.AddCommand(newAdminUnblockCmd())
	return cmd
}

// newAdminView builds the admin view against the configured backend.
func newAdminView(cmd *cobra.Command) (*frontend.AdminView, *config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	readReportFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd.ErrOrStderr(), cfg.Verbose)
	client := scanclient.New(cfg, scanclient.WithLogger(logger))
	return frontend.NewAdminView(client), cfg, nil
}

// writeIPReport outputs the IP table.
func writeIPReport(cmd *cobra.Command, cfg *config.Config, rows []frontend.IPRow) error {
	r := report.New("PhishGuard IP Reputation")
	r.IPs = make([]model.IPEntry, 0, len(rows))
	for _, row := range rows {
		r.IPs = append(r.IPs, row.Entry)
	}
	return writeReport(cmd, cfg, r)
}

func newAdminIPsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ips",
		Short: "List tracked IP addresses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			view, cfg, err := newAdminView(cmd)
			if err != nil {
				return err
			}
			rows, err := view.Load(cmd.Context())
			if err != nil {
				return err
			}
			return writeIPReport(cmd, cfg, rows)
		},
	}
}

func newAdminUnblockCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "unblock <ip>",
		Short: "Lift the block on an IP address",
		Long: `Unblock asks the backend to lift the block on an address and then reloads
the table once. Nothing changes locally until the reload shows it.`,
		Args: cobra.ExactArgs(1),
		RunE: runAdminUnblockCmd,
	}
	cmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func runAdminUnblockCmd(cmd *cobra.Command, args []string) error {
	ip := args[0]
	view, cfg, err := newAdminView(cmd)
	if err != nil {
		return err
	}

	if flagValue(cmd, "yes") != "true" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Unblock %s? [y/N]: ", ip)
		answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n') //nolint:errcheck // EOF means no
		answer = strings.ToLower(strings.TrimSpace(answer))
		if answer != "y" && answer != "yes" {
			fmt.Fprintln(cmd.ErrOrStderr(), "Cancelled.")
			return nil
		}
	}

	rows, err := view.Unblock(cmd.Context(), ip)
	if rows != nil {
		if werr := writeIPReport(cmd, cfg, rows); werr != nil {
			return werr
		}
	}
	return err
}
