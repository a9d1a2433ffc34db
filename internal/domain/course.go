package domain

// FeedCourse is one course record of the external roster feed.
// It lives for a single reconciliation pass and is never mutated after parsing.
type FeedCourse struct {
	ShortName    string            `json:"shortname"`
	FullName     string            `json:"name,omitempty"`
	Participants []FeedParticipant `json:"participants"`
}

// FeedParticipant is a participant reference inside a FeedCourse.
// RoleToken is optional; an empty token resolves to the configured default role.
type FeedParticipant struct {
	Username  string `json:"username"`
	RoleToken string `json:"roleid,omitempty"`
}

// NotFoundEntry is a participant that could not be mapped to a user account.
// Username is the uniqueness key across a whole pass.
type NotFoundEntry struct {
	Username  string `json:"username"`
	RoleToken string `json:"roleid,omitempty"`
}

// Clean returns a copy of the course with its names sanitized.
// Participants are copied as-is; they are cleaned by CleanParticipants.
func (c FeedCourse) Clean() FeedCourse {
	out := FeedCourse{
		ShortName:    CleanText(c.ShortName),
		FullName:     CleanText(c.FullName),
		Participants: c.Participants,
	}
	if out.FullName == "" {
		out.FullName = out.ShortName
	}
	return out
}

// CleanParticipants sanitizes usernames and role tokens, preserving order.
func CleanParticipants(in []FeedParticipant) []FeedParticipant {
	out := make([]FeedParticipant, 0, len(in))
	for _, p := range in {
		out = append(out, FeedParticipant{
			Username:  CleanUsername(p.Username),
			RoleToken: CleanText(p.RoleToken),
		})
	}
	return out
}
