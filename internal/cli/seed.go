package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"course-enrol-sync/internal/platform/sqlite"
)

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed <fixture.yaml>",
		Short: "Load categories, users and courses into the local database",
		Long: `Seed the SQLite stand-in with a YAML fixture:

  categories:
    - {id: 1, name: Miscellaneous}
  users: [alice, bob]
  courses:
    - shortname: CS101
      category: 1
      enrolments:
        - {username: alice, roleid: 5}`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd, rootOpts, args[0])
		},
	}
	return cmd
}

func runSeed(cmd *cobra.Command, opts *RootOptions, fixturePath string) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg, opts.Verbose)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	f, err := os.Open(fixturePath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open fixture", err)
	}
	defer f.Close()
	fixture, err := sqlite.LoadFixture(f)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid fixture", err)
	}

	st, closeStore, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	res, err := st.Seed(cmd.Context(), fixture)
	if err != nil {
		return WrapExitError(ExitFailure, "seed failed", err)
	}

	if opts.Format == "json" {
		return writeJSON(cmd.OutOrStdout(), res)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d categories, %d users, %d courses, %d enrolments\n",
		res.Categories, res.Users, res.Courses, res.Enrolments)
	return nil
}
