package sync

import (
	"time"

	"github.com/google/uuid"

	"course-enrol-sync/internal/domain"
)

// Phase is a state of the pass state machine.
type Phase string

const (
	PhasePending            Phase = "pending"
	PhaseFetched            Phase = "fetched"
	PhaseClassified         Phase = "classified"
	PhaseProcessingNew      Phase = "processing-new"
	PhaseProcessingExisting Phase = "processing-existing"
	PhaseReported           Phase = "reported"
)

// Course actions in CourseOutcome.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
)

// Report is the result of a pass, complete or partial.
type Report struct {
	RunID      string        `json:"runId"`
	Source     string        `json:"source,omitempty"`
	Policy     FailurePolicy `json:"policy"`
	Phase      Phase         `json:"phase"`
	StartedAt  time.Time     `json:"startedAt"`
	FinishedAt time.Time     `json:"finishedAt"`

	CoursesCreated  int                    `json:"coursesCreated"`
	CoursesUpdated  int                    `json:"coursesUpdated"`
	Enrolled        int                    `json:"enrolled"`
	AlreadyEnrolled int                    `json:"alreadyEnrolled"`
	NotFound        []domain.NotFoundEntry `json:"notFound"`

	Courses  []CourseOutcome `json:"courses,omitempty"`
	Rejected []Rejection     `json:"rejected,omitempty"`
	Failed   []CourseFailure `json:"failed,omitempty"`
}

// CourseOutcome is the per-course line of a report.
type CourseOutcome struct {
	ShortName       string `json:"shortname"`
	CourseID        int64  `json:"courseId"`
	Action          string `json:"action"`
	Enrolled        int    `json:"enrolled"`
	AlreadyEnrolled int    `json:"alreadyEnrolled"`
	NotFound        int    `json:"notFound"`
}

// Rejection is a feed record or participant skipped by validation.
type Rejection struct {
	ShortName string `json:"shortname,omitempty"`
	Username  string `json:"username,omitempty"`
	Reason    string `json:"reason"`
}

// CourseFailure is a course that failed under the continue policy.
type CourseFailure struct {
	ShortName string `json:"shortname"`
	Phase     Phase  `json:"phase"`
	Error     string `json:"error"`
}

func newReport(now time.Time, policy FailurePolicy) *Report {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return &Report{
		RunID:     id.String(),
		Policy:    policy,
		Phase:     PhasePending,
		StartedAt: now,
		NotFound:  []domain.NotFoundEntry{},
	}
}

// CoursesProcessed is the number of courses created or reconciled.
func (r *Report) CoursesProcessed() int {
	return r.CoursesCreated + r.CoursesUpdated
}

func (r *Report) addOutcome(o CourseOutcome, notFound []domain.NotFoundEntry) {
	switch o.Action {
	case ActionCreated:
		r.CoursesCreated++
	case ActionUpdated:
		r.CoursesUpdated++
	}
	r.Enrolled += o.Enrolled
	r.AlreadyEnrolled += o.AlreadyEnrolled
	r.NotFound = MergeNotFound(r.NotFound, notFound)
	r.Courses = append(r.Courses, o)
}

func (r *Report) addRejected(v *ValidationError) {
	r.Rejected = append(r.Rejected, Rejection{ShortName: v.ShortName, Username: v.Username, Reason: v.Reason})
}
