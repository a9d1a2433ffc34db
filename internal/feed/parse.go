package feed

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"course-enrol-sync/internal/domain"
)

// Parse decodes a roster feed document: a JSON array of
// {shortname, name?, participants: [{username, roleid?}]}.
// Records are returned as received; validation happens during classification.
func Parse(data []byte) ([]domain.FeedCourse, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("feed: empty document")
	}

	var raw []rawCourse
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("feed: json parse error: %w body=%s", err, snippet(data, 300))
	}

	out := make([]domain.FeedCourse, 0, len(raw))
	for _, rc := range raw {
		c := domain.FeedCourse{
			ShortName:    string(rc.ShortName),
			FullName:     string(rc.Name),
			Participants: make([]domain.FeedParticipant, 0, len(rc.Participants)),
		}
		for _, rp := range rc.Participants {
			c.Participants = append(c.Participants, domain.FeedParticipant{
				Username:  string(rp.Username),
				RoleToken: string(rp.RoleID),
			})
		}
		out = append(out, c)
	}
	return out, nil
}

type rawCourse struct {
	ShortName    looseString      `json:"shortname"`
	Name         looseString      `json:"name"`
	Participants []rawParticipant `json:"participants"`
}

type rawParticipant struct {
	Username looseString `json:"username"`
	RoleID   looseString `json:"roleid"`
}

// looseString accepts JSON strings, numbers and booleans. Feeds produced by
// spreadsheets often send numeric ids ("roleid": 3, "shortname": 2024).
type looseString string

func (s *looseString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*s = ""
		return nil
	}
	if b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = looseString(v)
		return nil
	}
	if b[0] == '{' || b[0] == '[' {
		return fmt.Errorf("expected scalar, got %s", snippet(b, 40))
	}
	*s = looseString(string(b))
	return nil
}

func snippet(b []byte, max int) string {
	s := strings.TrimSpace(string(b))
	if len(s) <= max {
		return s
	}
	return s[:max] + "…"
}
