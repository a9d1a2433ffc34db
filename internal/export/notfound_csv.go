package export

import (
	"encoding/csv"
	"io"
	"strings"

	"course-enrol-sync/internal/domain"
)

// DefaultNotFoundCourseName names the attachment when no course name is given.
const DefaultNotFoundCourseName = "Users Not Found"

// Keep header order EXACT; downstream spreadsheets key on it.
var notFoundHeader = []string{"Username", "Fullname"}

// WriteNotFoundCSV writes one row per entry: the username and the role token
// it was listed with in the feed.
func WriteNotFoundCSV(w io.Writer, entries []domain.NotFoundEntry) error {
	cw := csv.NewWriter(w)
	cw.UseCRLF = true

	if err := cw.Write(notFoundHeader); err != nil {
		return err
	}
	for _, e := range entries {
		if err := cw.Write([]string{e.Username, e.RoleToken}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// NotFoundFileName returns "{coursename}_notfound.csv" with path separators and
// other characters unsafe in file names replaced.
func NotFoundFileName(courseName string) string {
	name := strings.TrimSpace(courseName)
	if name == "" {
		name = DefaultNotFoundCourseName
	}
	name = strings.Map(func(r rune) rune {
		switch {
		case r < 0x20 || r == 0x7f:
			return -1
		case strings.ContainsRune(`/\:*?"<>|`, r):
			return '_'
		}
		return r
	}, name)
	return name + "_notfound.csv"
}
