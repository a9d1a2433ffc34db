package providers

import (
	"context"

	"course-enrol-sync/internal/domain"
)

// FeedSource delivers the roster feed for one reconciliation pass.
type FeedSource interface {
	Name() string
	FetchCourses(ctx context.Context) ([]domain.FeedCourse, error)
}
