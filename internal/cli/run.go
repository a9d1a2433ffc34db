package cli

import (
	"bytes"
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"course-enrol-sync/internal/config"
	"course-enrol-sync/internal/export"
	"course-enrol-sync/internal/sftpclient"
	"course-enrol-sync/internal/sync"
	"course-enrol-sync/internal/telemetry"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	FeedFile        string
	ReportPath      string
	NotFoundCSV     string
	CourseName      string
	Upload          bool
	ContinueOnError bool
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one reconciliation pass",
		Long: `Fetch the feed, create missing courses, enrol missing participants and
print the reconciliation report.

Only one pass runs at a time; a second invocation fails while the lock
file is held.

Example:
  enrolsync run --db ./enrolsync.db --feed-file ./feed.json
  enrolsync run --notfound-csv ./out --sftp --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPass(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.FeedFile, "feed-file", "", "read the feed from a local JSON file instead of ENROLSYNC_FEED_ENDPOINT")
	cmd.Flags().StringVar(&opts.ReportPath, "report", "", "also write the report as JSON to this path")
	cmd.Flags().StringVar(&opts.NotFoundCSV, "notfound-csv", "", "write the not-found CSV to this file or directory")
	cmd.Flags().StringVar(&opts.CourseName, "course-name", export.DefaultNotFoundCourseName, "course name used in the CSV file name")
	cmd.Flags().BoolVar(&opts.Upload, "sftp", false, "upload the not-found CSV over SFTP")
	cmd.Flags().BoolVar(&opts.ContinueOnError, "continue-on-error", false, "record failing courses and keep going (overrides ENROLSYNC_FAILURE_POLICY)")

	return cmd
}

func runPass(cmd *cobra.Command, opts *RunOptions) error {
	cfg, err := loadConfig(opts.RootOptions)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg, opts.Verbose)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	policy, err := sync.ParseFailurePolicy(cfg.FailurePolicy)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	if opts.ContinueOnError {
		policy = sync.PolicyContinue
	}

	source, err := feedSource(cfg, opts.FeedFile)
	if err != nil {
		return err
	}

	lock := flock.New(cfg.LockPath())
	locked, err := lock.TryLock()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to acquire lock", err)
	}
	if !locked {
		return NewExitError(ExitCommandError, "another pass is running (lock "+cfg.LockPath()+")")
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			logger.Warn("failed to release lock", zap.Error(err))
		}
	}()

	st, closeStore, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mp, shutdown, err := telemetry.NewMeterProvider(ctx, telemetry.MeterConfig{
		Endpoint: cfg.OTLPEndpoint,
		Insecure: cfg.OTLPInsecure,
	}, logger)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to configure metrics", err)
	}
	defer func() {
		if err := shutdown(context.WithoutCancel(ctx)); err != nil {
			logger.Warn("metrics shutdown", zap.Error(err))
		}
	}()
	metrics, err := telemetry.NewSyncMetrics(mp)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to create metrics", err)
	}

	engine := sync.NewEngine(st, sync.Options{
		CategoryID: cfg.CategoryID,
		Roles:      sync.NewRoleResolver(cfg.DefaultRoleID, cfg.RoleTokens),
		Policy:     policy,
	}, logger, metrics)

	logger.Info("starting pass", zap.String("feed", describeSource(source)), zap.String("policy", string(policy)))
	report, runErr := engine.Run(ctx, source)

	if opts.ReportPath != "" {
		if err := writeReportFile(opts.ReportPath, report); err != nil {
			return WrapExitError(ExitCommandError, "failed to write report", err)
		}
	}
	if err := printReport(cmd.OutOrStdout(), opts.Format, report); err != nil {
		return err
	}
	if err := deliverNotFound(ctx, cfg, opts, report, logger); err != nil {
		return err
	}

	if runErr != nil {
		return WrapExitError(ExitFailure, "reconciliation pass failed", runErr)
	}
	return nil
}

// deliverNotFound writes and uploads the not-found CSV when asked to and when
// there is something to report.
func deliverNotFound(ctx context.Context, cfg config.Config, opts *RunOptions, report *sync.Report, logger *zap.Logger) error {
	if opts.NotFoundCSV == "" && !opts.Upload {
		return nil
	}
	if len(report.NotFound) == 0 {
		logger.Info("no users missing, skipping not-found CSV")
		return nil
	}

	var buf bytes.Buffer
	if err := export.WriteNotFoundCSV(&buf, report.NotFound); err != nil {
		return WrapExitError(ExitCommandError, "failed to render not-found CSV", err)
	}
	name := export.NotFoundFileName(opts.CourseName)

	if opts.NotFoundCSV != "" {
		path := opts.NotFoundCSV
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			path = filepath.Join(path, name)
		}
		if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
			return WrapExitError(ExitCommandError, "failed to write not-found CSV", err)
		}
		logger.Info("not-found CSV written", zap.String("path", path), zap.Int("rows", len(report.NotFound)))
	}

	if opts.Upload {
		if err := sftpclient.Upload(ctx, sftpConfig(cfg), bytes.NewReader(buf.Bytes()), name); err != nil {
			return WrapExitError(ExitCommandError, "failed to upload not-found CSV", err)
		}
		logger.Info("not-found CSV uploaded", zap.String("host", cfg.SFTPHost), zap.String("name", name))
	}
	return nil
}

func writeReportFile(path string, report *sync.Report) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := writeJSON(f, report); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
