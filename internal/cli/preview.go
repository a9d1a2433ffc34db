package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"course-enrol-sync/internal/sync"
)

// PreviewOptions holds flags for the preview command.
type PreviewOptions struct {
	*RootOptions
	FeedFile string
}

// PreviewCourse is one row of the preview.
type PreviewCourse struct {
	ShortName    string `json:"shortname"`
	FullName     string `json:"name"`
	Status       string `json:"status"`
	CourseID     int64  `json:"courseId,omitempty"`
	Participants int    `json:"participants"`
	Reason       string `json:"reason,omitempty"`
}

// NewPreviewCommand creates the preview command.
func NewPreviewCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PreviewOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "List new and existing courses in the feed without changing anything",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPreview(cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.FeedFile, "feed-file", "", "read the feed from a local JSON file instead of ENROLSYNC_FEED_ENDPOINT")
	return cmd
}

func runPreview(cmd *cobra.Command, opts *PreviewOptions) error {
	cfg, err := loadConfig(opts.RootOptions)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg, opts.Verbose)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	source, err := feedSource(cfg, opts.FeedFile)
	if err != nil {
		return err
	}
	st, closeStore, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	courses, err := source.FetchCourses(cmd.Context())
	if err != nil {
		return WrapExitError(ExitFailure, "failed to fetch feed", err)
	}
	cls, err := sync.Classify(cmd.Context(), st, courses)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to classify feed", err)
	}

	rows := previewRows(cls)
	if opts.Format == "json" {
		return writeJSON(cmd.OutOrStdout(), rows)
	}
	return printPreview(cmd.OutOrStdout(), rows)
}

func previewRows(cls sync.Classification) []PreviewCourse {
	rows := make([]PreviewCourse, 0, len(cls.New)+len(cls.Existing)+len(cls.Rejected))
	for _, c := range cls.New {
		rows = append(rows, PreviewCourse{
			ShortName:    c.ShortName,
			FullName:     c.FullName,
			Status:       "new",
			Participants: len(c.Participants),
		})
	}
	for _, ec := range cls.Existing {
		rows = append(rows, PreviewCourse{
			ShortName:    ec.Feed.ShortName,
			FullName:     ec.Feed.FullName,
			Status:       "existing",
			CourseID:     ec.Platform.ID,
			Participants: len(ec.Feed.Participants),
		})
	}
	for _, v := range cls.Rejected {
		rows = append(rows, PreviewCourse{ShortName: v.ShortName, Status: "rejected", Reason: v.Reason})
	}
	return rows
}

func printPreview(w io.Writer, rows []PreviewCourse) error {
	var newCount, existingCount int
	table := tablewriter.NewWriter(w)
	table.Header("Shortname", "Name", "Status", "Course ID", "Participants")
	for _, r := range rows {
		id := ""
		if r.CourseID > 0 {
			id = strconv.FormatInt(r.CourseID, 10)
		}
		name := r.FullName
		if r.Status == "rejected" {
			name = r.Reason
		}
		switch r.Status {
		case "new":
			newCount++
		case "existing":
			existingCount++
		}
		if err := table.Append([]string{r.ShortName, name, r.Status, id, strconv.Itoa(r.Participants)}); err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return err
	}
	fmt.Fprintf(w, "%d new, %d existing\n", newCount, existingCount)
	return nil
}
