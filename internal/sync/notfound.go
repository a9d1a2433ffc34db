package sync

import "course-enrol-sync/internal/domain"

// MergeNotFound appends batch to acc, dropping entries whose username is already
// present. Order of first appearance is kept. acc is not modified.
func MergeNotFound(acc, batch []domain.NotFoundEntry) []domain.NotFoundEntry {
	out := make([]domain.NotFoundEntry, 0, len(acc)+len(batch))
	seen := make(map[string]struct{}, len(acc)+len(batch))
	for _, list := range [][]domain.NotFoundEntry{acc, batch} {
		for _, e := range list {
			if _, ok := seen[e.Username]; ok {
				continue
			}
			seen[e.Username] = struct{}{}
			out = append(out, e)
		}
	}
	return out
}
