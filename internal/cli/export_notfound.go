package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"course-enrol-sync/internal/export"
	"course-enrol-sync/internal/sftpclient"
	"course-enrol-sync/internal/sync"
)

// ExportNotFoundOptions holds flags for the export-notfound command.
type ExportNotFoundOptions struct {
	*RootOptions
	CourseName string
	OutDir     string
	Upload     bool
}

// NewExportNotFoundCommand creates the export-notfound command.
func NewExportNotFoundCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportNotFoundOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export-notfound <report.json>",
		Short: "Write the not-found CSV from a saved report",
		Long: `Read a report written by "enrolsync run --report" and write the users
that were not found as "{course name}_notfound.csv".

Example:
  enrolsync export-notfound ./report.json --name "CS101" --out ./exports`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExportNotFound(cmd, opts, args[0])
		},
	}
	cmd.Flags().StringVar(&opts.CourseName, "name", export.DefaultNotFoundCourseName, "course name used in the file name")
	cmd.Flags().StringVar(&opts.OutDir, "out", ".", "output directory")
	cmd.Flags().BoolVar(&opts.Upload, "sftp", false, "also upload the CSV over SFTP")
	return cmd
}

func runExportNotFound(cmd *cobra.Command, opts *ExportNotFoundOptions, reportPath string) error {
	raw, err := os.ReadFile(reportPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read report", err)
	}
	var report sync.Report
	if err := json.Unmarshal(raw, &report); err != nil {
		return WrapExitError(ExitCommandError, "failed to parse report", err)
	}

	var buf bytes.Buffer
	if err := export.WriteNotFoundCSV(&buf, report.NotFound); err != nil {
		return WrapExitError(ExitCommandError, "failed to render CSV", err)
	}
	name := export.NotFoundFileName(opts.CourseName)
	path := filepath.Join(opts.OutDir, name)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return WrapExitError(ExitCommandError, "failed to write CSV", err)
	}

	if opts.Upload {
		cfg, err := loadConfig(opts.RootOptions)
		if err != nil {
			return err
		}
		if err := sftpclient.Upload(cmd.Context(), sftpConfig(cfg), bytes.NewReader(buf.Bytes()), name); err != nil {
			return WrapExitError(ExitCommandError, "failed to upload CSV", err)
		}
	}

	if opts.Format == "json" {
		return writeJSON(cmd.OutOrStdout(), map[string]any{"path": path, "rows": len(report.NotFound)})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d rows to %s\n", len(report.NotFound), path)
	return nil
}
