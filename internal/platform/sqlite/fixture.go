package sqlite

import (
	"context"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"course-enrol-sync/internal/platform"
)

// Fixture is a YAML seed document for a local store.
type Fixture struct {
	Categories []FixtureCategory `yaml:"categories"`
	Users      []string          `yaml:"users"`
	Courses    []FixtureCourse   `yaml:"courses"`
}

type FixtureCategory struct {
	ID   int64  `yaml:"id"`
	Name string `yaml:"name"`
}

type FixtureCourse struct {
	ShortName  string             `yaml:"shortname"`
	FullName   string             `yaml:"fullname"`
	CategoryID int64              `yaml:"category"`
	Enrolments []FixtureEnrolment `yaml:"enrolments"`
}

type FixtureEnrolment struct {
	Username string `yaml:"username"`
	RoleID   int64  `yaml:"roleid"`
}

// SeedResult counts what Seed touched.
type SeedResult struct {
	Categories int `json:"categories"`
	Users      int `json:"users"`
	Courses    int `json:"courses"`
	Enrolments int `json:"enrolments"`
}

// LoadFixture decodes a fixture, rejecting unknown keys.
func LoadFixture(r io.Reader) (Fixture, error) {
	var f Fixture
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return Fixture{}, fmt.Errorf("decode fixture: %w", err)
	}
	return f, nil
}

// Seed applies the fixture in one transaction. Existing rows are kept, so
// seeding twice is harmless.
func (s *Store) Seed(ctx context.Context, f Fixture) (SeedResult, error) {
	var res SeedResult
	err := s.InTx(ctx, func(ps platform.Store) error {
		res = SeedResult{}
		tx := ps.(*Store)

		for _, c := range f.Categories {
			if err := tx.CreateCategory(ctx, c.ID, c.Name); err != nil {
				return err
			}
			res.Categories++
		}
		for _, u := range f.Users {
			if _, err := tx.CreateUser(ctx, u); err != nil {
				return err
			}
			res.Users++
		}
		for _, fc := range f.Courses {
			course, found, err := tx.CourseByShortName(ctx, fc.ShortName)
			if err != nil {
				return err
			}
			if !found {
				fullName := fc.FullName
				if fullName == "" {
					fullName = fc.ShortName
				}
				course, err = tx.CreateCourse(ctx, platform.NewCourse{
					ShortName:  fc.ShortName,
					FullName:   fullName,
					CategoryID: fc.CategoryID,
					Visible:    true,
				})
				if err != nil {
					return err
				}
			}
			res.Courses++

			if len(fc.Enrolments) == 0 {
				continue
			}
			instanceID, err := tx.ManualEnrolment(ctx, course.ID)
			if err != nil {
				return fmt.Errorf("seed %q: %w", fc.ShortName, err)
			}
			for _, e := range fc.Enrolments {
				u, err := tx.CreateUser(ctx, e.Username)
				if err != nil {
					return err
				}
				if err := tx.Enrol(ctx, instanceID, u.ID, e.RoleID); err != nil {
					return err
				}
				res.Enrolments++
			}
		}
		return nil
	})
	return res, err
}
