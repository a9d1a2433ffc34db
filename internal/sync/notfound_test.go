package sync

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"course-enrol-sync/internal/domain"
)

func TestMergeNotFound(t *testing.T) {
	acc := []domain.NotFoundEntry{{Username: "charlie"}, {Username: "dave", RoleToken: "professor"}}
	batch := []domain.NotFoundEntry{{Username: "erin"}, {Username: "charlie", RoleToken: "student"}, {Username: "erin"}}

	got := MergeNotFound(acc, batch)

	assert.Equal(t, []domain.NotFoundEntry{
		{Username: "charlie"},
		{Username: "dave", RoleToken: "professor"},
		{Username: "erin"},
	}, got)
	assert.Len(t, acc, 2, "accumulator must not be modified")
}

func TestMergeNotFoundEmpty(t *testing.T) {
	got := MergeNotFound(nil, nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
