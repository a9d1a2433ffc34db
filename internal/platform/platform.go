// Package platform describes the learning-management data the reconciliation
// engine reads and mutates. The engine depends only on Store; the host
// platform (or the SQLite stand-in in platform/sqlite) provides it.
package platform

import (
	"context"
	"errors"
)

var (
	// ErrNoManualEnrolment is returned when a course has no enabled manual enrolment instance.
	ErrNoManualEnrolment = errors.New("course has no manual enrolment instance")

	// ErrInvalidCourse is returned when a course handle has no usable id.
	ErrInvalidCourse = errors.New("invalid course")
)

// Course is a course owned by the platform, keyed by its unique short name.
type Course struct {
	ID         int64
	ShortName  string
	FullName   string
	CategoryID int64
}

// NewCourse holds what is needed to create a course.
type NewCourse struct {
	ShortName  string
	FullName   string
	Summary    string
	Format     string
	CategoryID int64
	Visible    bool
}

// User is a platform account.
type User struct {
	ID       int64
	Username string
}

// Enrolment associates a user with a course under a role.
type Enrolment struct {
	CourseID int64
	UserID   int64
	RoleID   int64
}

// Store is the data-access surface used by the reconciliation engine.
//
//go:generate mockgen -destination=mocks/mock_store.go -package=mocks -source=platform.go Store,Transactor
type Store interface {
	// CourseByShortName reports whether a course with exactly this short name exists.
	CourseByShortName(ctx context.Context, shortName string) (Course, bool, error)
	CategoryExists(ctx context.Context, categoryID int64) (bool, error)
	// CreateCourse creates the course together with its manual enrolment instance.
	CreateCourse(ctx context.Context, c NewCourse) (Course, error)
	EnrolledUsernames(ctx context.Context, courseID int64) ([]string, error)
	UserByUsername(ctx context.Context, username string) (User, bool, error)
	// ManualEnrolment returns the id of the course's enabled manual enrolment instance.
	ManualEnrolment(ctx context.Context, courseID int64) (int64, error)
	IsEnrolled(ctx context.Context, courseID, userID int64) (bool, error)
	Enrol(ctx context.Context, instanceID, userID, roleID int64) error
}

// Transactor is implemented by stores that can run a unit of work atomically.
// fn receives a Store bound to the transaction.
type Transactor interface {
	InTx(ctx context.Context, fn func(Store) error) error
}
