// Package sqlite is a SQLite-backed platform.Store. It models the subset of a
// learning-management database the reconciliation engine touches: categories,
// courses, users, enrolment instances and user enrolments.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"course-enrol-sync/internal/platform"
)

//go:embed schema.sql
var schemaSQL string

const currentSchemaVersion = 1

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store implements platform.Store and platform.Transactor.
type Store struct {
	db  *sql.DB
	q   querier
	now func() time.Time
}

var (
	_ platform.Store      = (*Store)(nil)
	_ platform.Transactor = (*Store)(nil)
)

// Open creates or opens the database at path and applies the schema.
// The connection runs in WAL mode with a single writer.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	// Per-connection settings go in the DSN so a reopened connection keeps them.
	dsn := filepath.Clean(path) + "?_foreign_keys=on&_busy_timeout=5000"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}
	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Store{db: db, q: db, now: time.Now}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return nil
}

// InTx runs fn inside a transaction. A Store already bound to a transaction
// runs fn directly.
func (s *Store) InTx(ctx context.Context, fn func(platform.Store) error) error {
	if s.db == nil {
		return fn(s)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(&Store{q: tx, now: s.now}); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (s *Store) CourseByShortName(ctx context.Context, shortName string) (platform.Course, bool, error) {
	var c platform.Course
	err := s.q.QueryRowContext(ctx, `
		SELECT id, shortname, fullname, category_id
		FROM courses
		WHERE shortname = ?
	`, shortName).Scan(&c.ID, &c.ShortName, &c.FullName, &c.CategoryID)
	if errors.Is(err, sql.ErrNoRows) {
		return platform.Course{}, false, nil
	}
	if err != nil {
		return platform.Course{}, false, fmt.Errorf("course by shortname %q: %w", shortName, err)
	}
	return c, true, nil
}

func (s *Store) CategoryExists(ctx context.Context, categoryID int64) (bool, error) {
	var n int
	if err := s.q.QueryRowContext(ctx, `SELECT COUNT(1) FROM course_categories WHERE id = ?`, categoryID).Scan(&n); err != nil {
		return false, fmt.Errorf("category exists %d: %w", categoryID, err)
	}
	return n > 0, nil
}

// CreateCourse inserts the course and its manual enrolment instance.
// A short name that is already taken is an error.
func (s *Store) CreateCourse(ctx context.Context, nc platform.NewCourse) (platform.Course, error) {
	if strings.TrimSpace(nc.ShortName) == "" {
		return platform.Course{}, fmt.Errorf("create course: shortname is required")
	}
	format := nc.Format
	if format == "" {
		format = "topics"
	}
	visible := 0
	if nc.Visible {
		visible = 1
	}

	res, err := s.q.ExecContext(ctx, `
		INSERT INTO courses (shortname, fullname, summary, format, category_id, visible, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, nc.ShortName, nc.FullName, nc.Summary, format, nc.CategoryID, visible, s.now().Unix())
	if err != nil {
		return platform.Course{}, fmt.Errorf("create course %q: %w", nc.ShortName, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return platform.Course{}, fmt.Errorf("create course %q: %w", nc.ShortName, err)
	}

	if _, err := s.q.ExecContext(ctx, `
		INSERT INTO enrol_instances (course_id, enrol, enabled) VALUES (?, 'manual', 1)
	`, id); err != nil {
		return platform.Course{}, fmt.Errorf("create manual enrolment for %q: %w", nc.ShortName, err)
	}

	return platform.Course{
		ID:         id,
		ShortName:  nc.ShortName,
		FullName:   nc.FullName,
		CategoryID: nc.CategoryID,
	}, nil
}

func (s *Store) EnrolledUsernames(ctx context.Context, courseID int64) ([]string, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT DISTINCT u.username
		FROM user_enrolments ue
		JOIN enrol_instances ei ON ei.id = ue.instance_id
		JOIN users u ON u.id = ue.user_id
		WHERE ei.course_id = ?
		ORDER BY u.username
	`, courseID)
	if err != nil {
		return nil, fmt.Errorf("enrolled usernames for course %d: %w", courseID, err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var username string
		if err := rows.Scan(&username); err != nil {
			return nil, fmt.Errorf("enrolled usernames for course %d: %w", courseID, err)
		}
		out = append(out, username)
	}
	return out, rows.Err()
}

func (s *Store) UserByUsername(ctx context.Context, username string) (platform.User, bool, error) {
	var u platform.User
	err := s.q.QueryRowContext(ctx, `SELECT id, username FROM users WHERE username = ?`, username).Scan(&u.ID, &u.Username)
	if errors.Is(err, sql.ErrNoRows) {
		return platform.User{}, false, nil
	}
	if err != nil {
		return platform.User{}, false, fmt.Errorf("user by username %q: %w", username, err)
	}
	return u, true, nil
}

func (s *Store) ManualEnrolment(ctx context.Context, courseID int64) (int64, error) {
	var id int64
	err := s.q.QueryRowContext(ctx, `
		SELECT id FROM enrol_instances
		WHERE course_id = ? AND enrol = 'manual' AND enabled = 1
		ORDER BY id
		LIMIT 1
	`, courseID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, platform.ErrNoManualEnrolment
	}
	if err != nil {
		return 0, fmt.Errorf("manual enrolment for course %d: %w", courseID, err)
	}
	return id, nil
}

func (s *Store) IsEnrolled(ctx context.Context, courseID, userID int64) (bool, error) {
	var n int
	err := s.q.QueryRowContext(ctx, `
		SELECT COUNT(1)
		FROM user_enrolments ue
		JOIN enrol_instances ei ON ei.id = ue.instance_id
		WHERE ei.course_id = ? AND ue.user_id = ?
	`, courseID, userID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("is enrolled course=%d user=%d: %w", courseID, userID, err)
	}
	return n > 0, nil
}

// Enrol adds the user to the enrolment instance. Enrolling twice is a no-op.
func (s *Store) Enrol(ctx context.Context, instanceID, userID, roleID int64) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO user_enrolments (instance_id, user_id, role_id, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(instance_id, user_id) DO NOTHING
	`, instanceID, userID, roleID, s.now().Unix())
	if err != nil {
		return fmt.Errorf("enrol user=%d instance=%d: %w", userID, instanceID, err)
	}
	return nil
}
