package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"course-enrol-sync/internal/sync"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // The pass stopped on a batch error
	ExitCommandError = 2 // Bad flags, config, database or lock
)

// ExitError carries the process exit code for an error.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printReport(w io.Writer, format string, r *sync.Report) error {
	if format == "json" {
		return writeJSON(w, r)
	}

	fmt.Fprintf(w, "Run %s (%s, policy %s)\n", r.RunID, r.Phase, r.Policy)
	fmt.Fprintf(w, "Courses created: %d\n", r.CoursesCreated)
	fmt.Fprintf(w, "Courses updated: %d\n", r.CoursesUpdated)
	fmt.Fprintf(w, "Enrolled: %d (already enrolled: %d)\n", r.Enrolled, r.AlreadyEnrolled)

	if len(r.Courses) > 0 {
		table := tablewriter.NewWriter(w)
		table.Header("Shortname", "Action", "Course ID", "Enrolled", "Already", "Not found")
		for _, c := range r.Courses {
			if err := table.Append([]string{
				c.ShortName,
				c.Action,
				strconv.FormatInt(c.CourseID, 10),
				strconv.Itoa(c.Enrolled),
				strconv.Itoa(c.AlreadyEnrolled),
				strconv.Itoa(c.NotFound),
			}); err != nil {
				return err
			}
		}
		if err := table.Render(); err != nil {
			return err
		}
	}

	fmt.Fprintf(w, "Users not found: %d\n", len(r.NotFound))
	for _, nf := range r.NotFound {
		if nf.RoleToken != "" {
			fmt.Fprintf(w, "  %s (%s)\n", nf.Username, nf.RoleToken)
		} else {
			fmt.Fprintf(w, "  %s\n", nf.Username)
		}
	}
	for _, rj := range r.Rejected {
		fmt.Fprintf(w, "Rejected: %s %s: %s\n", rj.ShortName, rj.Username, rj.Reason)
	}
	for _, f := range r.Failed {
		fmt.Fprintf(w, "Failed: %s (%s): %s\n", f.ShortName, f.Phase, f.Error)
	}
	return nil
}
