package sync

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"course-enrol-sync/internal/domain"
	"course-enrol-sync/internal/platform"
)

// MaxShortNameLength is the longest short name the platform accepts.
const MaxShortNameLength = 255

// ExistingCourse pairs a platform course with the feed record that matched it.
type ExistingCourse struct {
	Platform platform.Course
	Feed     domain.FeedCourse
}

// Classification is the partition of a feed. Every valid record is in exactly
// one of New or Existing; invalid records are in Rejected.
type Classification struct {
	New      []domain.FeedCourse
	Existing []ExistingCourse
	Rejected []*ValidationError
}

// Classify sanitizes each record's names and looks its short name up in the
// store. Feed order is preserved inside each group.
func Classify(ctx context.Context, store platform.Store, courses []domain.FeedCourse) (Classification, error) {
	var out Classification
	for _, raw := range courses {
		c := raw.Clean()
		if verr := validateShortName(raw.ShortName, c.ShortName); verr != nil {
			out.Rejected = append(out.Rejected, verr)
			continue
		}

		existing, found, err := store.CourseByShortName(ctx, c.ShortName)
		if err != nil {
			return out, &IntegrationError{Op: fmt.Sprintf("course lookup %q", c.ShortName), Err: err}
		}
		if found {
			out.Existing = append(out.Existing, ExistingCourse{Platform: existing, Feed: c})
		} else {
			out.New = append(out.New, c)
		}
	}
	return out, nil
}

func validateShortName(raw, clean string) *ValidationError {
	switch {
	case clean == "":
		return &ValidationError{ShortName: strings.TrimSpace(raw), Reason: "missing shortname"}
	case utf8.RuneCountInString(clean) > MaxShortNameLength:
		return &ValidationError{
			ShortName: clean,
			Reason:    fmt.Sprintf("shortname longer than %d characters", MaxShortNameLength),
		}
	}
	return nil
}
