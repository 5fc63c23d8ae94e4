package main

import (
	"path/filepath"

	"github.com/nao1215/phishguard/internal/media"
	"github.com/nao1215/phishguard/internal/report"
	"github.com/spf13/cobra"
)

// NewInspectCmd creates the inspect command.
func NewInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <file>...",
		Short: "Show the local metadata summary of files",
		Long: `Inspect prints the content type, SHA3-256 digest and EXIF metadata
(location, device, software, author, time) of files. Nothing is sent to
the backend.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runInspectCmd,
	}
	addReportFlags(cmd, false)
	return cmd
}

func runInspectCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	readReportFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	r := report.New("PhishGuard File Metadata")
	for _, path := range args {
		data, err := readInput(cmd, path)
		if err != nil {
			return err
		}
		r.Media = append(r.Media, media.Inspect(filepath.Base(path), data))
	}
	return writeReport(cmd, cfg, r)
}
