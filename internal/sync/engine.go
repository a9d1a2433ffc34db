package sync

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"course-enrol-sync/internal/domain"
	"course-enrol-sync/internal/platform"
	"course-enrol-sync/internal/providers"
	"course-enrol-sync/internal/telemetry"
)

// FailurePolicy decides what a course-level error does to the rest of the pass.
type FailurePolicy string

const (
	// PolicyAbort stops the pass at the first failing course or invalid record.
	PolicyAbort FailurePolicy = "abort"
	// PolicyContinue records failures in the report and moves on.
	PolicyContinue FailurePolicy = "continue"
)

// ParseFailurePolicy accepts "abort" or "continue". Empty means abort.
func ParseFailurePolicy(s string) (FailurePolicy, error) {
	switch FailurePolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PolicyAbort:
		return PolicyAbort, nil
	case PolicyContinue:
		return PolicyContinue, nil
	}
	return "", fmt.Errorf("unknown failure policy %q (want abort or continue)", s)
}

// Defaults for courses created from the feed.
const (
	DefaultCourseSummary = "Course created automatically"
	DefaultCourseFormat  = "topics"
)

// Options configures an Engine.
type Options struct {
	// CategoryID is where new courses are placed.
	CategoryID int64
	Roles      RoleResolver
	Policy     FailurePolicy
}

// Engine runs reconciliation passes against a platform store.
// Passes must not overlap; callers serialize them.
type Engine struct {
	store      platform.Store
	opts       Options
	reconciler Reconciler
	logger     *zap.Logger
	metrics    *telemetry.SyncMetrics
	now        func() time.Time
}

// NewEngine builds an engine. logger and metrics may be nil.
func NewEngine(store platform.Store, opts Options, logger *zap.Logger, metrics *telemetry.SyncMetrics) *Engine {
	if opts.Policy == "" {
		opts.Policy = PolicyAbort
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		store:      store,
		opts:       opts,
		reconciler: Reconciler{Roles: opts.Roles},
		logger:     logger,
		metrics:    metrics,
		now:        time.Now,
	}
}

type coursePlan struct {
	feed         domain.FeedCourse
	course       platform.Course
	participants []domain.FeedParticipant
}

// Run fetches the feed from source and reconciles it.
// The report is returned even on failure; the error is always a *BatchError.
func (e *Engine) Run(ctx context.Context, source providers.FeedSource) (*Report, error) {
	report := newReport(e.now(), e.opts.Policy)
	report.Source = source.Name()
	log := e.logger.With(zap.String("run_id", report.RunID), zap.String("source", report.Source))

	courses, err := source.FetchCourses(ctx)
	if err != nil {
		return e.finish(ctx, log, report, &BatchError{
			Phase: PhaseFetched,
			Err:   &IntegrationError{Op: "fetch feed", Err: err},
		})
	}
	return e.process(ctx, log, report, courses)
}

// Process reconciles an already fetched feed.
func (e *Engine) Process(ctx context.Context, courses []domain.FeedCourse) (*Report, error) {
	report := newReport(e.now(), e.opts.Policy)
	return e.process(ctx, e.logger.With(zap.String("run_id", report.RunID)), report, courses)
}

func (e *Engine) process(ctx context.Context, log *zap.Logger, report *Report, courses []domain.FeedCourse) (*Report, error) {
	report.Phase = PhaseFetched
	log.Info("feed fetched", zap.Int("courses", len(courses)))

	cls, err := Classify(ctx, e.store, courses)
	if err != nil {
		return e.finish(ctx, log, report, &BatchError{Phase: PhaseClassified, Err: err})
	}
	newPlans, existingPlans, rejected := planCourses(cls)
	for _, v := range rejected {
		report.addRejected(v)
		log.Warn("feed record rejected", zap.Error(v))
	}
	if len(rejected) > 0 && e.opts.Policy == PolicyAbort {
		report.Phase = PhaseClassified
		return e.finish(ctx, log, report, &BatchError{Phase: PhaseClassified, ShortName: rejected[0].ShortName, Err: rejected[0]})
	}
	report.Phase = PhaseClassified
	log.Info("feed classified",
		zap.Int("new", len(newPlans)),
		zap.Int("existing", len(existingPlans)),
		zap.Int("rejected", len(rejected)),
	)

	stages := []struct {
		phase  Phase
		plans  []coursePlan
		create bool
	}{
		{PhaseProcessingNew, newPlans, true},
		{PhaseProcessingExisting, existingPlans, false},
	}
	for _, st := range stages {
		report.Phase = st.phase
		for _, p := range st.plans {
			if err := ctx.Err(); err != nil {
				return e.finish(ctx, log, report, &BatchError{Phase: st.phase, ShortName: p.feed.ShortName, Err: err})
			}
			err := e.processCourse(ctx, log, report, p, st.create)
			if err == nil {
				continue
			}
			if e.opts.Policy == PolicyContinue {
				report.Failed = append(report.Failed, CourseFailure{ShortName: p.feed.ShortName, Phase: st.phase, Error: err.Error()})
				log.Warn("course failed, continuing", zap.String("shortname", p.feed.ShortName), zap.Error(err))
				continue
			}
			return e.finish(ctx, log, report, &BatchError{Phase: st.phase, ShortName: p.feed.ShortName, Err: err})
		}
	}

	report.Phase = PhaseReported
	return e.finish(ctx, log, report, nil)
}

// processCourse runs one course as a single unit of work. Counts reach the
// report only when the unit succeeds.
func (e *Engine) processCourse(ctx context.Context, log *zap.Logger, report *Report, p coursePlan, create bool) error {
	var (
		outcome  CourseOutcome
		notFound []domain.NotFoundEntry
	)
	err := e.unit(ctx, func(s platform.Store) error {
		course, action := p.course, ActionUpdated
		if create {
			// Re-check: a duplicate feed record or another writer may have created it.
			existing, found, err := s.CourseByShortName(ctx, p.feed.ShortName)
			if err != nil {
				return &IntegrationError{Op: fmt.Sprintf("course lookup %q", p.feed.ShortName), Err: err}
			}
			if found {
				log.Info("course exists now, reconciling as existing", zap.String("shortname", p.feed.ShortName))
				course = existing
			} else {
				if course, err = e.createCourse(ctx, s, p.feed); err != nil {
					return err
				}
				action = ActionCreated
			}
		}

		res, err := e.reconciler.Reconcile(ctx, s, course, p.participants)
		if err != nil {
			return err
		}
		outcome = CourseOutcome{
			ShortName:       course.ShortName,
			CourseID:        course.ID,
			Action:          action,
			Enrolled:        res.Enrolled,
			AlreadyEnrolled: res.AlreadyEnrolled,
			NotFound:        len(res.NotFound),
		}
		notFound = res.NotFound
		return nil
	})
	if err != nil {
		return err
	}

	report.addOutcome(outcome, notFound)
	log.Info("course reconciled",
		zap.String("shortname", outcome.ShortName),
		zap.String("action", outcome.Action),
		zap.Int("enrolled", outcome.Enrolled),
		zap.Int("already_enrolled", outcome.AlreadyEnrolled),
		zap.Int("not_found", outcome.NotFound),
	)
	return nil
}

func (e *Engine) createCourse(ctx context.Context, s platform.Store, fc domain.FeedCourse) (platform.Course, error) {
	ok, err := s.CategoryExists(ctx, e.opts.CategoryID)
	if err != nil {
		return platform.Course{}, &IntegrationError{Op: "category lookup", Err: err}
	}
	if !ok {
		return platform.Course{}, &ConfigurationError{
			ShortName: fc.ShortName,
			Reason:    fmt.Sprintf("category %d does not exist", e.opts.CategoryID),
		}
	}

	fullName := fc.FullName
	if fullName == "" {
		fullName = fc.ShortName
	}
	course, err := s.CreateCourse(ctx, platform.NewCourse{
		ShortName:  fc.ShortName,
		FullName:   fullName,
		Summary:    DefaultCourseSummary,
		Format:     DefaultCourseFormat,
		CategoryID: e.opts.CategoryID,
		Visible:    true,
	})
	if err != nil {
		return platform.Course{}, &IntegrationError{Op: fmt.Sprintf("create course %q", fc.ShortName), Err: err}
	}
	return course, nil
}

// unit runs fn in a transaction when the store supports it.
func (e *Engine) unit(ctx context.Context, fn func(platform.Store) error) error {
	if tx, ok := e.store.(platform.Transactor); ok {
		return tx.InTx(ctx, fn)
	}
	return fn(e.store)
}

func (e *Engine) finish(ctx context.Context, log *zap.Logger, report *Report, berr *BatchError) (*Report, error) {
	report.FinishedAt = e.now()
	e.metrics.RecordPass(ctx, report.Source, report.FinishedAt.Sub(report.StartedAt), berr == nil, telemetry.PassCounts{
		CoursesCreated: report.CoursesCreated,
		CoursesUpdated: report.CoursesUpdated,
		Enrolments:     report.Enrolled,
		NotFound:       len(report.NotFound),
	})

	if berr != nil {
		berr.Report = report
		log.Error("pass stopped",
			zap.String("phase", string(berr.Phase)),
			zap.String("shortname", berr.ShortName),
			zap.Int("courses_processed", report.CoursesProcessed()),
			zap.Error(berr.Err),
		)
		return report, berr
	}

	log.Info("pass finished",
		zap.Int("courses_created", report.CoursesCreated),
		zap.Int("courses_updated", report.CoursesUpdated),
		zap.Int("enrolled", report.Enrolled),
		zap.Int("not_found", len(report.NotFound)),
		zap.Int("failed", len(report.Failed)),
	)
	return report, nil
}

// planCourses sanitizes participants and collects every validation failure.
func planCourses(cls Classification) (newPlans, existingPlans []coursePlan, rejected []*ValidationError) {
	rejected = append(rejected, cls.Rejected...)
	for _, fc := range cls.New {
		parts, bad := participantsFor(fc)
		rejected = append(rejected, bad...)
		newPlans = append(newPlans, coursePlan{feed: fc, participants: parts})
	}
	for _, ec := range cls.Existing {
		parts, bad := participantsFor(ec.Feed)
		rejected = append(rejected, bad...)
		existingPlans = append(existingPlans, coursePlan{feed: ec.Feed, course: ec.Platform, participants: parts})
	}
	return newPlans, existingPlans, rejected
}

func participantsFor(fc domain.FeedCourse) ([]domain.FeedParticipant, []*ValidationError) {
	cleaned := domain.CleanParticipants(fc.Participants)
	out := make([]domain.FeedParticipant, 0, len(cleaned))
	var bad []*ValidationError
	for i, p := range cleaned {
		if p.Username == "" {
			bad = append(bad, &ValidationError{
				ShortName: fc.ShortName,
				Username:  strings.TrimSpace(fc.Participants[i].Username),
				Reason:    "missing or invalid username",
			})
			continue
		}
		out = append(out, p)
	}
	return out, bad
}
