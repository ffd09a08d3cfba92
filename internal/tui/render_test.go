package tui

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/runlens/runlens/internal/github"
)

func TestListWindow(t *testing.T) {
	tests := []struct {
		name      string
		cursor    int
		total     int
		visible   int
		wantStart int
		wantEnd   int
	}{
		{"everything fits", 0, 3, 10, 0, 3},
		{"cursor at top", 0, 20, 5, 0, 5},
		{"cursor inside first window", 4, 20, 5, 0, 5},
		{"cursor past first window", 5, 20, 5, 1, 6},
		{"cursor at end", 19, 20, 5, 15, 20},
		{"empty list", 0, 0, 5, 0, 0},
		{"no visible rows", 3, 10, 0, 0, 0},
		{"single row window", 7, 10, 1, 7, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := listWindow(tt.cursor, tt.total, tt.visible)
			assert.Equal(t, tt.wantStart, start)
			assert.Equal(t, tt.wantEnd, end)
		})
	}
}

func TestListWindowCursorAlwaysVisible(t *testing.T) {
	for cursor := 0; cursor < 30; cursor++ {
		start, end := listWindow(cursor, 30, 7)
		assert.GreaterOrEqual(t, cursor, start)
		assert.Less(t, cursor, end)
		assert.Equal(t, 7, end-start)
	}
}

func TestFormatRunRow(t *testing.T) {
	run := github.Run{
		Number:    412,
		Title:     "Fix flaky retry test",
		Branch:    "main",
		SHA:       "0123456789abcdef0123456789abcdef01234567",
		CreatedAt: time.Date(2026, 5, 14, 9, 30, 0, 0, time.UTC),
	}

	row := formatRunRow(run)
	assert.Contains(t, row, "#412")
	assert.Contains(t, row, "main")
	assert.Contains(t, row, "0123456")
	assert.NotContains(t, row, "0123456789abcdef", "sha should be shortened")
	assert.True(t, strings.HasSuffix(row, "Fix flaky retry test"))
}

func TestFormatRunRowLongBranch(t *testing.T) {
	run := github.Run{
		Number: 1,
		Branch: "feature/very-long-branch-name-that-keeps-going",
		Title:  "title",
	}

	row := formatRunRow(run)
	assert.NotContains(t, row, "that-keeps-going")
	assert.Contains(t, row, "...")
}

func TestClipLines(t *testing.T) {
	in := "short\n" + strings.Repeat("x", 50) + "\nanother short one"

	out := clipLines(in, 20)
	lines := strings.Split(out, "\n")
	assert.Equal(t, "short", lines[0])
	assert.Equal(t, strings.Repeat("x", 17)+"...", lines[1])
	assert.Equal(t, "another short one", lines[2])
}

func TestClipLinesZeroWidth(t *testing.T) {
	in := "anything at all"
	assert.Equal(t, in, clipLines(in, 0))
}

func TestFitHeight(t *testing.T) {
	t.Run("pads short content", func(t *testing.T) {
		out := fitHeight("a\nb", 4)
		assert.Equal(t, "a\nb\n\n", out)
	})

	t.Run("truncates tall content", func(t *testing.T) {
		out := fitHeight("a\nb\nc\nd", 2)
		assert.Equal(t, "a\nb", out)
	})

	t.Run("exact fit", func(t *testing.T) {
		out := fitHeight("a\nb\nc", 3)
		assert.Equal(t, "a\nb\nc", out)
	})

	t.Run("zero height", func(t *testing.T) {
		assert.Equal(t, "", fitHeight("a\nb", 0))
	})
}

func TestStateIconPlain(t *testing.T) {
	tests := []struct {
		status     string
		conclusion string
		want       string
	}{
		{"queued", "", "○"},
		{"in_progress", "", "●"},
		{"completed", "success", "✓"},
		{"completed", "failure", "✗"},
		{"completed", "timed_out", "✗"},
		{"completed", "startup_failure", "✗"},
		{"completed", "cancelled", "⊘"},
		{"completed", "skipped", "◌"},
		{"completed", "neutral", "?"},
	}

	for _, tt := range tests {
		t.Run(tt.status+"/"+tt.conclusion, func(t *testing.T) {
			assert.Equal(t, tt.want, stateIconPlain(tt.status, tt.conclusion))
		})
	}
}

func TestStatusBarButtonsPerScreen(t *testing.T) {
	m := &Model{screen: screenWorkflows}
	assert.Equal(t, []string{"/", "r", "?", "q"}, m.statusBarButtons())

	m.screen = screenRuns
	assert.Equal(t, []string{"r", "esc", "?", "q"}, m.statusBarButtons())

	m.screen = screenJob
	assert.Contains(t, m.statusBarButtons(), "F")
	assert.Contains(t, m.statusBarButtons(), "c")
	assert.Contains(t, m.statusBarButtons(), "enter")
}

func TestStyleHotkeysPlainText(t *testing.T) {
	// Text without brackets passes through untouched.
	assert.Equal(t, "plain text", styleHotkeys("plain text"))

	// An unclosed bracket is kept literally.
	assert.Equal(t, "broken [q", styleHotkeys("broken [q"))
}
