package sync

import (
	"context"
	"errors"
	"fmt"

	"course-enrol-sync/internal/domain"
	"course-enrol-sync/internal/platform"
)

// EnrolResult is the outcome of reconciling one course.
type EnrolResult struct {
	Enrolled        int
	AlreadyEnrolled int
	NotFound        []domain.NotFoundEntry
}

// Reconciler enrols the participants of a course that are not enrolled yet.
type Reconciler struct {
	Roles RoleResolver
}

// Reconcile diffs participants against the course's current enrolment.
// Participants already enrolled are skipped before any user lookup and keep
// their role. Usernames that match no account come back in NotFound, once
// each. participants must already be sanitized.
func (r Reconciler) Reconcile(ctx context.Context, store platform.Store, course platform.Course, participants []domain.FeedParticipant) (EnrolResult, error) {
	var res EnrolResult
	if course.ID <= 0 {
		return res, fmt.Errorf("%w: course %q has id %d", platform.ErrInvalidCourse, course.ShortName, course.ID)
	}
	if len(participants) == 0 {
		return res, nil
	}

	current, err := store.EnrolledUsernames(ctx, course.ID)
	if err != nil {
		return res, &IntegrationError{Op: "list enrolled users", Err: err}
	}
	enrolled := make(map[string]struct{}, len(current)+len(participants))
	for _, u := range current {
		enrolled[u] = struct{}{}
	}

	instanceID, err := store.ManualEnrolment(ctx, course.ID)
	if errors.Is(err, platform.ErrNoManualEnrolment) {
		return res, &ConfigurationError{ShortName: course.ShortName, Reason: "manual enrolment is not available", Err: err}
	}
	if err != nil {
		return res, &IntegrationError{Op: "manual enrolment lookup", Err: err}
	}

	seen := make(map[string]struct{}, len(participants))
	for _, p := range participants {
		if _, ok := seen[p.Username]; ok {
			continue
		}
		seen[p.Username] = struct{}{}
		if _, ok := enrolled[p.Username]; ok {
			res.AlreadyEnrolled++
			continue
		}

		user, found, err := store.UserByUsername(ctx, p.Username)
		if err != nil {
			return res, &IntegrationError{Op: fmt.Sprintf("user lookup %q", p.Username), Err: err}
		}
		if !found {
			res.NotFound = append(res.NotFound, domain.NotFoundEntry{Username: p.Username, RoleToken: p.RoleToken})
			continue
		}

		// Another writer may have enrolled the user since the list was read.
		already, err := store.IsEnrolled(ctx, course.ID, user.ID)
		if err != nil {
			return res, &IntegrationError{Op: fmt.Sprintf("enrolment check %q", p.Username), Err: err}
		}
		if already {
			res.AlreadyEnrolled++
			continue
		}

		if err := store.Enrol(ctx, instanceID, user.ID, r.Roles.Resolve(p.RoleToken)); err != nil {
			return res, &IntegrationError{Op: fmt.Sprintf("enrol %q", p.Username), Err: err}
		}
		res.Enrolled++
	}
	return res, nil
}
