package sync

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"course-enrol-sync/internal/domain"
	"course-enrol-sync/internal/platform"
	"course-enrol-sync/internal/platform/sqlite"
)

type staticSource struct {
	courses []domain.FeedCourse
	err     error
}

func (s staticSource) Name() string { return "static" }

func (s staticSource) FetchCourses(context.Context) ([]domain.FeedCourse, error) {
	return s.courses, s.err
}

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.Open(filepath.Join(t.TempDir(), "enrol.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.CreateCategory(context.Background(), 1, "Miscellaneous"))
	return s
}

func newTestEngine(t *testing.T, store platform.Store, policy FailurePolicy) *Engine {
	t.Helper()
	return NewEngine(store, Options{
		CategoryID: 1,
		Roles:      NewRoleResolver(5, nil),
		Policy:     policy,
	}, zaptest.NewLogger(t), nil)
}

func participants(names ...string) []domain.FeedParticipant {
	out := make([]domain.FeedParticipant, 0, len(names))
	for _, n := range names {
		out = append(out, domain.FeedParticipant{Username: n})
	}
	return out
}

func TestScenarioANewCourseKnownUser(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	_, err := store.CreateUser(ctx, "alice")
	require.NoError(t, err)

	report, err := newTestEngine(t, store, PolicyAbort).Run(ctx, staticSource{courses: []domain.FeedCourse{
		{ShortName: "CS101", Participants: participants("alice")},
	}})
	require.NoError(t, err)

	assert.Equal(t, 1, report.CoursesCreated)
	assert.Equal(t, 0, report.CoursesUpdated)
	assert.Equal(t, 1, report.Enrolled)
	assert.Empty(t, report.NotFound)
	assert.Equal(t, PhaseReported, report.Phase)
	assert.Equal(t, "static", report.Source)
	assert.NotEmpty(t, report.RunID)

	course, found, err := store.CourseByShortName(ctx, "CS101")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "CS101", course.FullName)
	assert.Equal(t, int64(1), course.CategoryID)

	raw, err := json.Marshal(report)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))
	assert.Equal(t, float64(1), m["coursesCreated"])
	assert.Equal(t, []any{}, m["notFound"])
}

func TestScenarioAMixedCaseUsername(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	_, err := store.CreateUser(ctx, "Alice")
	require.NoError(t, err)

	report, err := newTestEngine(t, store, PolicyAbort).Process(ctx, []domain.FeedCourse{
		{ShortName: "CS101", Participants: participants("Alice")},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Enrolled)
	assert.Empty(t, report.NotFound)

	report, err = newTestEngine(t, store, PolicyAbort).Process(ctx, []domain.FeedCourse{
		{ShortName: "CS101", Participants: participants("ALICE")},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, report.Enrolled)
	assert.Equal(t, 1, report.AlreadyEnrolled)
}

func TestScenarioANewCourseUnknownUser(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	report, err := newTestEngine(t, store, PolicyAbort).Process(ctx, []domain.FeedCourse{
		{ShortName: "CS101", Participants: participants("alice")},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, report.CoursesCreated)
	assert.Equal(t, []domain.NotFoundEntry{{Username: "alice"}}, report.NotFound)
}

func TestScenarioBOnlyMissingParticipantsEnrolled(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	alice, err := store.CreateUser(ctx, "alice")
	require.NoError(t, err)
	bob, err := store.CreateUser(ctx, "bob")
	require.NoError(t, err)

	course, err := store.CreateCourse(ctx, platform.NewCourse{ShortName: "CS101", FullName: "Intro", CategoryID: 1})
	require.NoError(t, err)
	instanceID, err := store.ManualEnrolment(ctx, course.ID)
	require.NoError(t, err)
	require.NoError(t, store.Enrol(ctx, instanceID, alice.ID, 5))

	report, err := newTestEngine(t, store, PolicyAbort).Process(ctx, []domain.FeedCourse{
		{ShortName: "CS101", Participants: []domain.FeedParticipant{
			{Username: "alice", RoleToken: "professor"},
			{Username: "bob", RoleToken: "professor"},
		}},
	})
	require.NoError(t, err)

	assert.Equal(t, 0, report.CoursesCreated)
	assert.Equal(t, 1, report.CoursesUpdated)
	assert.Equal(t, 1, report.Enrolled)
	assert.Equal(t, 1, report.AlreadyEnrolled)

	enrolments, err := store.Enrolments(ctx, course.ID)
	require.NoError(t, err)
	assert.Equal(t, []platform.Enrolment{
		{CourseID: course.ID, UserID: alice.ID, RoleID: 5},
		{CourseID: course.ID, UserID: bob.ID, RoleID: ProfessorRoleID},
	}, enrolments, "alice keeps the existing role, bob gets the professor role")
}

func TestScenarioCNotFoundDeduplicatedAcrossCourses(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	report, err := newTestEngine(t, store, PolicyAbort).Process(ctx, []domain.FeedCourse{
		{ShortName: "CS101", Participants: participants("charlie")},
		{ShortName: "CS102", Participants: []domain.FeedParticipant{{Username: "charlie", RoleToken: "professor"}}},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, report.CoursesCreated)
	assert.Equal(t, []domain.NotFoundEntry{{Username: "charlie"}}, report.NotFound)
}

func TestRerunIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	for _, u := range []string{"alice", "bob"} {
		_, err := store.CreateUser(ctx, u)
		require.NoError(t, err)
	}
	feed := []domain.FeedCourse{
		{ShortName: "CS101", Participants: participants("alice", "bob", "zed")},
		{ShortName: "CS102", Participants: participants("bob")},
	}
	engine := newTestEngine(t, store, PolicyAbort)

	first, err := engine.Process(ctx, feed)
	require.NoError(t, err)
	assert.Equal(t, 2, first.CoursesCreated)
	assert.Equal(t, 3, first.Enrolled)

	second, err := engine.Process(ctx, feed)
	require.NoError(t, err)
	assert.Equal(t, 0, second.CoursesCreated)
	assert.Equal(t, 2, second.CoursesUpdated)
	assert.Equal(t, 0, second.Enrolled)
	assert.Equal(t, 3, second.AlreadyEnrolled)
	assert.Equal(t, []domain.NotFoundEntry{{Username: "zed"}}, second.NotFound)
	assert.NotEqual(t, first.RunID, second.RunID)
}

func TestDuplicateFeedRecordReconciledAsExisting(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	for _, u := range []string{"alice", "bob"} {
		_, err := store.CreateUser(ctx, u)
		require.NoError(t, err)
	}

	report, err := newTestEngine(t, store, PolicyAbort).Process(ctx, []domain.FeedCourse{
		{ShortName: "CS101", Participants: participants("alice")},
		{ShortName: "CS101", Participants: participants("alice", "bob")},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, report.CoursesCreated)
	assert.Equal(t, 1, report.CoursesUpdated)
	assert.Equal(t, 2, report.Enrolled)
	require.Len(t, report.Courses, 2)
	assert.Equal(t, ActionCreated, report.Courses[0].Action)
	assert.Equal(t, ActionUpdated, report.Courses[1].Action)
}

func TestMissingCategoryAbortsAndRollsBack(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	engine := NewEngine(store, Options{CategoryID: 42, Roles: NewRoleResolver(5, nil)}, zaptest.NewLogger(t), nil)
	report, err := engine.Process(ctx, []domain.FeedCourse{{ShortName: "CS101", Participants: participants("alice")}})
	require.Error(t, err)

	var berr *BatchError
	require.ErrorAs(t, err, &berr)
	assert.Equal(t, PhaseProcessingNew, berr.Phase)
	assert.Equal(t, "CS101", berr.ShortName)
	assert.Same(t, report, berr.Report)

	var cerr *ConfigurationError
	require.ErrorAs(t, err, &cerr)

	_, found, err := store.CourseByShortName(ctx, "CS101")
	require.NoError(t, err)
	assert.False(t, found)
}

func setupFailingExistingCourse(t *testing.T, store *sqlite.Store) {
	t.Helper()
	ctx := context.Background()
	broken, err := store.CreateCourse(ctx, platform.NewCourse{ShortName: "BROKEN", CategoryID: 1})
	require.NoError(t, err)
	require.NoError(t, store.SetEnrolmentEnabled(ctx, broken.ID, "manual", false))
	_, err = store.CreateUser(ctx, "alice")
	require.NoError(t, err)
}

func TestAbortPolicyKeepsPartialReport(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	setupFailingExistingCourse(t, store)

	report, err := newTestEngine(t, store, PolicyAbort).Process(ctx, []domain.FeedCourse{
		{ShortName: "BROKEN", Participants: participants("alice")},
		{ShortName: "NEW1", Participants: participants("alice")},
		{ShortName: "AFTER", Participants: participants("alice")},
	})

	var berr *BatchError
	require.ErrorAs(t, err, &berr)
	assert.Equal(t, PhaseProcessingExisting, berr.Phase)
	assert.Equal(t, "BROKEN", berr.ShortName)
	assert.ErrorIs(t, err, platform.ErrNoManualEnrolment)

	assert.Equal(t, 2, report.CoursesCreated)
	assert.Equal(t, 2, report.CoursesProcessed())
	assert.Equal(t, PhaseProcessingExisting, report.Phase)
}

func TestContinuePolicyCollectsFailures(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	setupFailingExistingCourse(t, store)

	report, err := newTestEngine(t, store, PolicyContinue).Process(ctx, []domain.FeedCourse{
		{ShortName: "BROKEN", Participants: participants("alice")},
		{ShortName: "NEW1", Participants: participants("alice")},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, report.CoursesCreated)
	assert.Equal(t, 0, report.CoursesUpdated)
	require.Len(t, report.Failed, 1)
	assert.Equal(t, "BROKEN", report.Failed[0].ShortName)
	assert.Equal(t, PhaseProcessingExisting, report.Failed[0].Phase)
	assert.Equal(t, PhaseReported, report.Phase)
}

func TestValidationAbortsBeforeMutation(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	report, err := newTestEngine(t, store, PolicyAbort).Process(ctx, []domain.FeedCourse{
		{ShortName: "CS101", Participants: participants("alice")},
		{ShortName: "  ", Participants: participants("bob")},
	})

	var berr *BatchError
	require.ErrorAs(t, err, &berr)
	assert.Equal(t, PhaseClassified, berr.Phase)
	assert.Equal(t, PhaseClassified, report.Phase)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "missing shortname", verr.Reason)

	assert.Equal(t, 0, report.CoursesProcessed())
	require.Len(t, report.Rejected, 1)

	_, found, err := store.CourseByShortName(ctx, "CS101")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestValidationContinueSkipsRecords(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	_, err := store.CreateUser(ctx, "alice")
	require.NoError(t, err)

	report, err := newTestEngine(t, store, PolicyContinue).Process(ctx, []domain.FeedCourse{
		{ShortName: "", Participants: participants("alice")},
		{ShortName: "CS101", Participants: participants("alice", "!!!")},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, report.CoursesCreated)
	assert.Equal(t, 1, report.Enrolled)
	require.Len(t, report.Rejected, 2)
	assert.Equal(t, Rejection{ShortName: "CS101", Username: "!!!", Reason: "missing or invalid username"}, report.Rejected[1])
}

func TestFetchFailure(t *testing.T) {
	store := newTestStore(t)
	boom := errors.New("connection refused")

	report, err := newTestEngine(t, store, PolicyContinue).Run(context.Background(), staticSource{err: boom})

	var berr *BatchError
	require.ErrorAs(t, err, &berr)
	assert.Equal(t, PhaseFetched, berr.Phase)
	var ierr *IntegrationError
	require.ErrorAs(t, err, &ierr)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, PhasePending, report.Phase)
}

func TestCancelledContextStopsPass(t *testing.T) {
	store := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestEngine(t, store, PolicyContinue).Process(ctx, []domain.FeedCourse{{ShortName: "CS101"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseFailurePolicy(t *testing.T) {
	testCases := []struct {
		in      string
		want    FailurePolicy
		wantErr bool
	}{
		{"", PolicyAbort, false},
		{"abort", PolicyAbort, false},
		{" Continue ", PolicyContinue, false},
		{"retry", "", true},
	}
	for _, tc := range testCases {
		got, err := ParseFailurePolicy(tc.in)
		if tc.wantErr {
			assert.Error(t, err, tc.in)
			continue
		}
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got)
	}
}
