package github

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeRuns(t *testing.T) {
	payload := `[
		{
			"databaseId": 9234567890,
			"number": 412,
			"displayTitle": "Fix flaky retry test",
			"headBranch": "main",
			"headSha": "0123456789abcdef0123456789abcdef01234567",
			"status": "completed",
			"conclusion": "failure",
			"createdAt": "2026-05-14T09:30:00Z",
			"url": "https://github.com/cli/cli/actions/runs/9234567890"
		},
		{
			"databaseId": 9234567891,
			"number": 413,
			"displayTitle": "Bump deps",
			"headBranch": "deps",
			"headSha": "fedcba9876543210fedcba9876543210fedcba98",
			"status": "in_progress",
			"conclusion": "",
			"createdAt": "2026-05-14T10:00:00Z",
			"url": "https://github.com/cli/cli/actions/runs/9234567891"
		}
	]`

	runs, err := decodeRuns([]byte(payload))
	require.NoError(t, err)
	require.Len(t, runs, 2)

	assert.Equal(t, int64(9234567890), runs[0].ID)
	assert.Equal(t, 412, runs[0].Number)
	assert.Equal(t, "Fix flaky retry test", runs[0].Title)
	assert.Equal(t, "main", runs[0].Branch)
	assert.Equal(t, "0123456", runs[0].ShortSHA())
	assert.Equal(t, "completed", runs[0].Status)
	assert.Equal(t, "failure", runs[0].Conclusion)
	assert.Equal(t, time.Date(2026, 5, 14, 9, 30, 0, 0, time.UTC), runs[0].CreatedAt.UTC())

	assert.Equal(t, "in_progress", runs[1].Status)
	assert.Empty(t, runs[1].Conclusion)
}

func TestDecodeRunsInvalid(t *testing.T) {
	_, err := decodeRuns([]byte(`{"not": "a list"}`))
	assert.Error(t, err)
}

func TestNewClientDefaults(t *testing.T) {
	c := NewClient(Options{Repo: "cli/cli"})
	assert.Equal(t, "cli/cli", c.Repo())
	assert.NotNil(t, c.listings)
	assert.Nil(t, c.logs)
}
