package cli

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"course-enrol-sync/internal/config"
	"course-enrol-sync/internal/logging"
	"course-enrol-sync/internal/platform/sqlite"
	"course-enrol-sync/internal/providers"
	"course-enrol-sync/internal/providers/filefeed"
	"course-enrol-sync/internal/providers/webfeed"
	"course-enrol-sync/internal/sftpclient"
)

// loadConfig reads the environment and applies global flag overrides.
func loadConfig(opts *RootOptions) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, WrapExitError(ExitCommandError, "failed to load configuration", err)
	}
	if opts.Database != "" {
		cfg.DBPath = opts.Database
	}
	return cfg, nil
}

func newLogger(cfg config.Config, verbose bool) (*zap.Logger, error) {
	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	logger, err := logging.New(level, cfg.LogFormat)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to configure logging", err)
	}
	return logger, nil
}

// feedSource picks the local file when given, else the configured endpoint.
func feedSource(cfg config.Config, feedFile string) (providers.FeedSource, error) {
	if feedFile != "" {
		return filefeed.Source{Path: feedFile}, nil
	}
	if strings.TrimSpace(cfg.FeedEndpoint) == "" {
		return nil, NewExitError(ExitCommandError, "no feed: set ENROLSYNC_FEED_ENDPOINT or pass --feed-file")
	}
	src := webfeed.New(cfg.FeedEndpoint, cfg.FeedTimeout)
	src.Token = cfg.FeedToken
	return src, nil
}

func openStore(cfg config.Config, logger *zap.Logger) (*sqlite.Store, func(), error) {
	st, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	logger.Debug("database ready", zap.String("path", cfg.DBPath))
	return st, func() {
		if err := st.Close(); err != nil {
			logger.Error("error closing database", zap.Error(err))
		}
	}, nil
}

func sftpConfig(cfg config.Config) sftpclient.Config {
	return sftpclient.Config{
		Host:                  cfg.SFTPHost,
		Port:                  cfg.SFTPPort,
		User:                  cfg.SFTPUser,
		Pass:                  cfg.SFTPPass,
		RemoteDir:             cfg.SFTPDir,
		KnownHostsFile:        cfg.SFTPKnownHosts,
		InsecureIgnoreHostKey: cfg.SFTPInsecureIgnoreHostKey,
	}
}

func describeSource(src providers.FeedSource) string {
	switch s := src.(type) {
	case filefeed.Source:
		return fmt.Sprintf("file %s", s.Path)
	case *webfeed.Source:
		return fmt.Sprintf("web %s", s.Endpoint)
	}
	return src.Name()
}
