package sqlite

import (
	"context"
	"fmt"

	"course-enrol-sync/internal/domain"
	"course-enrol-sync/internal/platform"
)

// CreateCategory inserts or renames a course category.
func (s *Store) CreateCategory(ctx context.Context, id int64, name string) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO course_categories (id, name) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name
	`, id, name)
	if err != nil {
		return fmt.Errorf("create category %d: %w", id, err)
	}
	return nil
}

// CreateUser returns the user with this username, creating it if needed.
// Usernames are stored in the canonical form the sync engine looks up.
func (s *Store) CreateUser(ctx context.Context, username string) (platform.User, error) {
	raw := username
	username = domain.CleanUsername(username)
	if username == "" {
		return platform.User{}, fmt.Errorf("create user %q: missing or invalid username", raw)
	}
	if _, err := s.q.ExecContext(ctx, `
		INSERT INTO users (username) VALUES (?)
		ON CONFLICT(username) DO NOTHING
	`, username); err != nil {
		return platform.User{}, fmt.Errorf("create user %q: %w", username, err)
	}
	u, ok, err := s.UserByUsername(ctx, username)
	if err != nil {
		return platform.User{}, err
	}
	if !ok {
		return platform.User{}, fmt.Errorf("create user %q: not visible after insert", username)
	}
	return u, nil
}

// SetEnrolmentEnabled toggles every instance of the given enrolment method on a course.
func (s *Store) SetEnrolmentEnabled(ctx context.Context, courseID int64, method string, enabled bool) error {
	v := 0
	if enabled {
		v = 1
	}
	if _, err := s.q.ExecContext(ctx, `
		UPDATE enrol_instances SET enabled = ? WHERE course_id = ? AND enrol = ?
	`, v, courseID, method); err != nil {
		return fmt.Errorf("set enrolment %s course=%d: %w", method, courseID, err)
	}
	return nil
}

// Enrolments lists the enrolments of a course ordered by user id.
func (s *Store) Enrolments(ctx context.Context, courseID int64) ([]platform.Enrolment, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT ei.course_id, ue.user_id, ue.role_id
		FROM user_enrolments ue
		JOIN enrol_instances ei ON ei.id = ue.instance_id
		WHERE ei.course_id = ?
		ORDER BY ue.user_id
	`, courseID)
	if err != nil {
		return nil, fmt.Errorf("enrolments for course %d: %w", courseID, err)
	}
	defer rows.Close()

	var out []platform.Enrolment
	for rows.Next() {
		var e platform.Enrolment
		if err := rows.Scan(&e.CourseID, &e.UserID, &e.RoleID); err != nil {
			return nil, fmt.Errorf("enrolments for course %d: %w", courseID, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
