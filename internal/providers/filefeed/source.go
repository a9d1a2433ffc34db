package filefeed

import (
	"context"
	"fmt"
	"os"

	"course-enrol-sync/internal/domain"
	"course-enrol-sync/internal/feed"
)

// Source reads the roster feed from a local JSON file.
type Source struct {
	Path string
}

func (s Source) Name() string { return "file" }

func (s Source) FetchCourses(ctx context.Context) ([]domain.FeedCourse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.Path == "" {
		return nil, fmt.Errorf("filefeed: missing path")
	}
	b, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("filefeed: read %s: %w", s.Path, err)
	}
	courses, err := feed.Parse(b)
	if err != nil {
		return nil, fmt.Errorf("filefeed: %s: %w", s.Path, err)
	}
	return courses, nil
}
