package webfeed

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"course-enrol-sync/internal/domain"
	"course-enrol-sync/internal/feed"
	"course-enrol-sync/internal/httpx"
)

// Source fetches the roster feed from an HTTP endpoint.
type Source struct {
	Endpoint string
	HTTP     *http.Client
	// Token, when set, is sent as a bearer token.
	Token string
}

func New(endpoint string, timeout time.Duration) *Source {
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &Source{
		Endpoint: endpoint,
		HTTP: &http.Client{
			Timeout: timeout,
		},
	}
}

func (s *Source) Name() string { return "web" }

func (s *Source) FetchCourses(ctx context.Context) ([]domain.FeedCourse, error) {
	endpoint := strings.TrimSpace(s.Endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("webfeed: missing endpoint")
	}
	u, err := url.Parse(endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("webfeed: invalid endpoint %q", endpoint)
	}

	header := http.Header{}
	if s.Token != "" {
		header.Set("Authorization", "Bearer "+s.Token)
	}

	body, err := httpx.Get(ctx, s.HTTP, u.String(), httpx.Options{Header: header})
	if err != nil {
		return nil, fmt.Errorf("webfeed: fetch failed: %w", err)
	}

	courses, err := feed.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("webfeed: %w", err)
	}
	return courses, nil
}
