package main

import (
	"fmt"

	"github.com/nao1215/phishguard/internal/report"
	"github.com/nao1215/phishguard/internal/store"
	"github.com/spf13/cobra"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show stored scan results",
		Long: `History lists stored verdicts, newest first.

Examples:
  # Show the last 20 scans
  phishguard history

  # Show every file scan as JSON
  phishguard history --kind file --limit 0 --json

  # Delete the history (counters are kept)
  phishguard history --clear`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}
	cmd.Flags().StringP("kind", "k", "", "Only show one surface: url, email, file or image")
	cmd.Flags().IntP("limit", "n", 20, "Maximum number of records (0 for all)")
	cmd.Flags().Bool("clear", false, "Delete all history records")
	addReportFlags(cmd, false)
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	kind := store.Kind(flagValue(cmd, "kind"))
	switch kind {
	case "", store.KindURL, store.KindEmail, store.KindFile, store.KindImage:
	default:
		return fmt.Errorf("invalid --kind %q (use url, email, file or image)", kind)
	}
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}

	cfg, db, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := cmd.Context()
	if flagValue(cmd, "clear") == "true" {
		n, err := db.ClearHistory(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %d history record(s).\n", n)
		return nil
	}

	records, err := db.ListHistory(ctx, kind, limit)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(cmd.ErrOrStderr(), "No scan history found.")
	}

	r := report.New("PhishGuard Scan History")
	for _, rec := range records {
		r.Scans = append(r.Scans, report.Scan{
			Kind:      string(rec.Kind),
			Target:    rec.Target,
			Result:    rec.Result,
			Digest:    rec.Digest,
			ScannedAt: rec.Timestamp,
		})
	}
	return writeReport(cmd, cfg, r)
}
