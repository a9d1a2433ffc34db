package webfeed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"course-enrol-sync/internal/httpx"
)

func TestNew(t *testing.T) {
	s := New("https://feed.example.com/courses", 0)

	assert.Equal(t, "https://feed.example.com/courses", s.Endpoint)
	require.NotNil(t, s.HTTP)
	assert.Equal(t, 2*time.Minute, s.HTTP.Timeout)
	assert.Equal(t, "web", s.Name())
}

func TestFetchCourses(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"shortname":"CS101","participants":[{"username":"alice"}]}]`))
	}))
	defer srv.Close()

	s := New(srv.URL, time.Second)
	s.Token = "secret"

	courses, err := s.FetchCourses(context.Background())
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, "CS101", courses[0].ShortName)
	assert.Equal(t, "alice", courses[0].Participants[0].Username)
	assert.Equal(t, "Bearer secret", gotAuth)
}

func TestFetchCoursesHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := New(srv.URL, time.Second).FetchCourses(context.Background())

	var httpErr *httpx.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusBadGateway, httpErr.StatusCode)
}

func TestFetchCoursesMalformedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>oops</html>`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, time.Second).FetchCourses(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "json parse error")
}

func TestFetchCoursesInvalidEndpoint(t *testing.T) {
	tests := []struct {
		name     string
		endpoint string
	}{
		{name: "empty", endpoint: "  "},
		{name: "no scheme", endpoint: "feed.example.com/courses"},
		{name: "ftp scheme", endpoint: "ftp://feed.example.com/courses"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.endpoint, time.Second).FetchCourses(context.Background())
			require.Error(t, err)
			assert.Contains(t, err.Error(), "webfeed:")
		})
	}
}
