package sync

import "strings"

// ProfessorRoleID is the role the "professor" token maps to by default.
const ProfessorRoleID int64 = 3

// DefaultRoleTokens returns the built-in token table.
func DefaultRoleTokens() map[string]int64 {
	return map[string]int64{"professor": ProfessorRoleID}
}

// RoleResolver maps feed role tokens to platform role ids.
// Tokens match case-insensitively after trimming. Anything else, including an
// empty token, resolves to DefaultRoleID.
type RoleResolver struct {
	DefaultRoleID int64
	Tokens        map[string]int64
}

// NewRoleResolver normalizes the token keys. A nil table uses DefaultRoleTokens.
func NewRoleResolver(defaultRoleID int64, tokens map[string]int64) RoleResolver {
	if tokens == nil {
		tokens = DefaultRoleTokens()
	}
	norm := make(map[string]int64, len(tokens))
	for k, v := range tokens {
		k = normalizeToken(k)
		if k == "" {
			continue
		}
		norm[k] = v
	}
	return RoleResolver{DefaultRoleID: defaultRoleID, Tokens: norm}
}

// Resolve never fails.
func (r RoleResolver) Resolve(token string) int64 {
	t := normalizeToken(token)
	if t == "" {
		return r.DefaultRoleID
	}
	if id, ok := r.Tokens[t]; ok {
		return id
	}
	for k, id := range r.Tokens {
		if strings.EqualFold(strings.TrimSpace(k), t) {
			return id
		}
	}
	return r.DefaultRoleID
}

func normalizeToken(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
