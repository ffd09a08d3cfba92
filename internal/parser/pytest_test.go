package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fullReport is a complete pytest run the way it appears in a job log after
// checkout and install steps, with warnings, coverage and durations enabled.
const fullReport = `============================= test session starts ==============================
platform linux -- Python 3.11.9, pytest-8.2.0, pluggy-1.5.0
rootdir: /home/runner/work/aperture/aperture
plugins: cov-5.0.0, anyio-4.4.0
collected 24 items

tests/test_api.py ..................                                     [ 75%]
tests/test_cli.py ......                                                 [100%]

=============================== warnings summary ===============================
tests/test_api.py::test_fetch_retries
tests/test_api.py::test_fetch_timeout
  /opt/python/3.11.9/lib/python3.11/site-packages/urllib3/__init__.py:35: NotOpenSSLWarning: urllib3 v2 only supports OpenSSL 1.1.1+
    warnings.warn(

tests/test_cli.py::test_legacy_flag
  tests/test_cli.py:88: DeprecationWarning: --old is deprecated, use --new
    run_cli(["--old"])

-- Docs: https://docs.pytest.org/en/stable/how-to/capture-warnings.html
================================ tests coverage ================================
___________________ coverage: platform linux, python 3.11.9 ___________________

Name                   Stmts   Miss  Cover
------------------------------------------
aperture/__init__.py       4      0   100%
aperture/api.py          120     15    88%
aperture/cli.py           56      8    86%
------------------------------------------
TOTAL                    180     23    87%
============================= slowest 5 durations ==============================
2.32s call     tests/test_api.py::test_fetch_retries
0.51s setup    tests/test_api.py::test_fetch_retries
0.11s call     tests/test_cli.py::test_legacy_flag

(12 durations < 0.005s hidden.  Use -vv to show these durations.)
======================== 24 passed, 3 warnings in 4.56s ========================`

func findSection(sections []Section, title string) (Section, bool) {
	for _, s := range sections {
		if s.Title == title {
			return s, true
		}
	}
	return Section{}, false
}

func TestPytestParser_ImplementsParser(t *testing.T) {
	var _ Parser = &PytestParser{}
}

func TestPytestParser_Detect(t *testing.T) {
	parser := &PytestParser{}

	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{
			name:     "Session banner",
			input:    `============================= test session starts ==============================`,
			expected: true,
		},
		{
			name:     "Slowest durations banner",
			input:    `=========================== slowest 10 durations ===========================`,
			expected: true,
		},
		{
			name:     "Warnings banner",
			input:    `=============================== warnings summary ===============================`,
			expected: true,
		},
		{
			name:     "Coverage banner",
			input:    `================================ tests coverage ================================`,
			expected: true,
		},
		{
			name: "Banner behind runner prefix",
			input: `test	Run pytest	2026-05-14T09:12:33.1234567Z ============================= test session starts ==============================`,
			expected: true,
		},
		{
			name: "Go test output",
			input: `--- FAIL: TestExample (0.01s)
FAIL
FAIL	github.com/pkg/example	0.015s`,
			expected: false,
		},
		{
			name:     "Empty input",
			input:    "",
			expected: false,
		},
		{
			name:     "Binary garbage",
			input:    "\x00\x01\x02\xff\xfe",
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, parser.Detect(tt.input))
		})
	}
}

func TestPytestParser_FullReport(t *testing.T) {
	sections, err := Default(0).Parse(fullReport)
	require.NoError(t, err)
	require.Len(t, sections, 5)

	// Display order: extracted sections by descending weight, raw log last.
	titles := make([]string, len(sections))
	for i, s := range sections {
		titles[i] = s.Title
	}
	assert.Equal(t, []string{
		"Summary",
		"Slowest durations",
		"Warnings summary",
		"Test coverage",
		"Raw Log",
	}, titles)

	summary, ok := findSection(sections, "Summary")
	require.True(t, ok)
	assert.Equal(t, KindKeyValue, summary.Kind)
	require.Len(t, summary.Rows, 3)
	assert.Equal(t, []string{"passed", "24"}, summary.Rows[0].Cells)
	assert.Equal(t, []string{"warnings", "3"}, summary.Rows[1].Cells)
	assert.Equal(t, []string{"duration", "4.56s"}, summary.Rows[2].Cells)

	slow, ok := findSection(sections, "Slowest durations")
	require.True(t, ok)
	assert.Equal(t, KindTabular, slow.Kind)
	assert.Equal(t, []string{"Duration", "Phase", "Test"}, slow.Columns)
	require.Len(t, slow.Rows, 3)
	assert.Equal(t, []string{"2.32s", "call", "tests/test_api.py::test_fetch_retries"}, slow.Rows[0].Cells)

	raw, ok := findSection(sections, "Raw Log")
	require.True(t, ok)
	assert.Equal(t, KindTextBlock, raw.Kind)
	assert.Equal(t, fullReport, raw.Text())
}

func TestPytestParser_SlowestSorting(t *testing.T) {
	parser := &PytestParser{}

	// Entries out of order; equal durations keep their log order.
	input := `=========================== slowest 10 durations ===========================
0.11s call     tests/test_a.py::test_fast
2.32s call     tests/test_b.py::test_slow
0.51s setup    tests/test_b.py::test_slow
0.51s teardown tests/test_b.py::test_slow
============================ 4 passed in 3.50s =============================`

	sections := parser.Decompose(input)
	slow, ok := findSection(sections, "Slowest durations")
	require.True(t, ok)
	require.Len(t, slow.Rows, 4)

	assert.Equal(t, "2.32s", slow.Rows[0].Cells[0])
	assert.Equal(t, "setup", slow.Rows[1].Cells[1])
	assert.Equal(t, "teardown", slow.Rows[2].Cells[1])
	assert.Equal(t, "0.11s", slow.Rows[3].Cells[0])
}

func TestPytestParser_SlowestCap(t *testing.T) {
	parser := &PytestParser{MaxSlowRows: 2}

	input := `=========================== slowest 10 durations ===========================
0.11s call     tests/test_a.py::test_fast
2.32s call     tests/test_b.py::test_slow
0.51s setup    tests/test_b.py::test_slow
============================ 3 passed in 3.00s =============================`

	sections := parser.Decompose(input)
	slow, ok := findSection(sections, "Slowest durations")
	require.True(t, ok)
	require.Len(t, slow.Rows, 2)

	// The two largest survive the cap.
	assert.Equal(t, "2.32s", slow.Rows[0].Cells[0])
	assert.Equal(t, "0.51s", slow.Rows[1].Cells[0])
}

func TestPytestParser_SlowestHiddenFooterSkipped(t *testing.T) {
	parser := &PytestParser{}

	input := `=========================== slowest 10 durations ===========================
0.42s call     tests/test_a.py::test_only

(9 durations < 0.005s hidden.  Use -vv to show these durations.)
============================ 1 passed in 0.50s =============================`

	sections := parser.Decompose(input)
	slow, ok := findSection(sections, "Slowest durations")
	require.True(t, ok)
	require.Len(t, slow.Rows, 1)
	assert.Equal(t, "tests/test_a.py::test_only", slow.Rows[0].Cells[2])
}

func TestPytestParser_WarningsCollapse(t *testing.T) {
	parser := &PytestParser{}

	// The same message+location raised by three tests across two blocks
	// collapses into one row counting all occurrences.
	input := `=============================== warnings summary ===============================
tests/test_a.py::test_one
tests/test_a.py::test_two
  src/lib.py:12: DeprecationWarning: old is deprecated
    old()

tests/test_b.py::test_three
  src/lib.py:12: DeprecationWarning: old is deprecated
    old()

tests/test_b.py::test_four
  src/other.py:30: UserWarning: careful
    warnings.warn("careful")

-- Docs: https://docs.pytest.org/en/stable/how-to/capture-warnings.html
============================ 4 passed in 1.00s =============================`

	sections := parser.Decompose(input)
	warnings, ok := findSection(sections, "Warnings summary")
	require.True(t, ok)
	assert.Equal(t, []string{"Count", "Message", "Location"}, warnings.Columns)
	require.Len(t, warnings.Rows, 2)

	assert.Equal(t, []string{"3", "DeprecationWarning: old is deprecated", "src/lib.py:12"}, warnings.Rows[0].Cells)
	assert.Equal(t, []string{"1", "UserWarning: careful", "src/other.py:30"}, warnings.Rows[1].Cells)
}

func TestPytestParser_WarningsGroupedCounts(t *testing.T) {
	parser := &PytestParser{}

	input := `=============================== warnings summary ===============================
tests/test_api.py: 12 warnings
tests/test_cli.py: 3 warnings
  src/net.py:7: ResourceWarning: unclosed socket
    connect()

-- Docs: https://docs.pytest.org/en/stable/how-to/capture-warnings.html`

	sections := parser.Decompose(input)
	warnings, ok := findSection(sections, "Warnings summary")
	require.True(t, ok)
	require.Len(t, warnings.Rows, 1)
	assert.Equal(t, []string{"15", "ResourceWarning: unclosed socket", "src/net.py:7"}, warnings.Rows[0].Cells)
}

func TestPytestParser_EmptyWarnings(t *testing.T) {
	parser := &PytestParser{}

	// A present but empty block is still a section, with zero rows.
	input := `=============================== warnings summary ===============================
-- Docs: https://docs.pytest.org/en/stable/how-to/capture-warnings.html
============================ 2 passed in 0.30s =============================`

	sections := parser.Decompose(input)
	warnings, ok := findSection(sections, "Warnings summary")
	require.True(t, ok)
	assert.Empty(t, warnings.Rows)
}

func TestPytestParser_CoverageTotals(t *testing.T) {
	parser := &PytestParser{}

	sections := parser.Decompose(fullReport)
	coverage, ok := findSection(sections, "Test coverage")
	require.True(t, ok)
	assert.Equal(t, []string{"Name", "Stmts", "Miss", "Cover"}, coverage.Columns)
	require.Len(t, coverage.Rows, 4)

	// File rows keep their printed order and are not totals.
	assert.Equal(t, "aperture/__init__.py", coverage.Rows[0].Cells[0])
	assert.Equal(t, "aperture/api.py", coverage.Rows[1].Cells[0])
	assert.False(t, coverage.Rows[0].Total)

	// TOTAL is last, flagged, and never merged into the file rows.
	last := coverage.Rows[len(coverage.Rows)-1]
	assert.True(t, last.Total)
	assert.Equal(t, []string{"TOTAL", "180", "23", "87%"}, last.Cells)
}

func TestPytestParser_CoverageBannerWithoutTable(t *testing.T) {
	parser := &PytestParser{}

	// Banner present but no parsable table: the pass contributes nothing.
	input := `================================ tests coverage ================================
___________________ coverage: platform linux, python 3.11.9 ___________________
============================ 5 passed in 1.00s =============================`

	sections := parser.Decompose(input)
	_, ok := findSection(sections, "Test coverage")
	assert.False(t, ok)

	// Sibling passes still ran.
	_, ok = findSection(sections, "Summary")
	assert.True(t, ok)
	_, ok = findSection(sections, "Raw Log")
	assert.True(t, ok)
}

func TestPytestParser_OutcomeVariants(t *testing.T) {
	parser := &PytestParser{}

	tests := []struct {
		name     string
		input    string
		expected [][]string
	}{
		{
			name:  "Mixed outcome",
			input: `===== 2 failed, 3 passed, 1 warning in 1.52s =====`,
			expected: [][]string{
				{"failed", "2"},
				{"passed", "3"},
				{"warning", "1"},
				{"duration", "1.52s"},
			},
		},
		{
			name:  "Long run with wall clock",
			input: `==== 5 passed in 65.03s (0:01:05) ====`,
			expected: [][]string{
				{"passed", "5"},
				{"duration", "65.03s (0:01:05)"},
			},
		},
		{
			name:  "No tests ran",
			input: `=== no tests ran in 0.01s ===`,
			expected: [][]string{
				{"duration", "0.01s"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// A session banner makes the snippet detectable on its own.
			input := "============ test session starts ============\n" + tt.input
			sections := parser.Decompose(input)
			summary, ok := findSection(sections, "Summary")
			require.True(t, ok)
			require.Len(t, summary.Rows, len(tt.expected))
			for i, cells := range tt.expected {
				assert.Equal(t, cells, summary.Rows[i].Cells)
			}
		})
	}
}

func TestPytestParser_LastOutcomeWins(t *testing.T) {
	parser := &PytestParser{}

	input := `============ test session starts ============
===== 1 failed, 3 passed in 2.00s =====
rerun
===== 4 passed in 2.50s =====`

	sections := parser.Decompose(input)
	summary, ok := findSection(sections, "Summary")
	require.True(t, ok)
	require.Len(t, summary.Rows, 2)
	assert.Equal(t, []string{"passed", "4"}, summary.Rows[0].Cells)
}

func TestPytestParser_RealCILogFormat(t *testing.T) {
	parser := &PytestParser{}

	// Lines as delivered by `gh run view --log`: job, step, timestamp.
	input := `test	Run pytest	2026-05-14T09:12:33.1234567Z ============================= test session starts ==============================
test	Run pytest	2026-05-14T09:12:33.2234567Z collected 2 items
test	Run pytest	2026-05-14T09:12:35.1234567Z =========================== slowest 10 durations ===========================
test	Run pytest	2026-05-14T09:12:35.2234567Z 1.20s call     tests/test_x.py::test_a
test	Run pytest	2026-05-14T09:12:35.3234567Z 0.40s call     tests/test_x.py::test_b
test	Run pytest	2026-05-14T09:12:35.4234567Z ============================ 2 passed in 1.80s =============================`

	require.True(t, parser.Detect(input))

	sections := parser.Decompose(input)
	slow, ok := findSection(sections, "Slowest durations")
	require.True(t, ok)
	require.Len(t, slow.Rows, 2)
	assert.Equal(t, []string{"1.20s", "call", "tests/test_x.py::test_a"}, slow.Rows[0].Cells)

	// No runner prefixes survive into extracted cells.
	for _, row := range slow.Rows {
		for _, cell := range row.Cells {
			assert.NotContains(t, cell, "2026-05-14")
			assert.NotContains(t, cell, "\t")
		}
	}

	// The raw section keeps the prefixes untouched.
	raw, ok := findSection(sections, "Raw Log")
	require.True(t, ok)
	assert.Equal(t, input, raw.Text())
}

func TestPytestParser_TruncatedLog(t *testing.T) {
	parser := &PytestParser{}

	// Run cut off mid-line: whatever parsed still comes back.
	input := `============================= test session starts ==============================
collected 8 items

=========================== slowest 10 durations ===========================
1.20s call     tests/test_x.py::test_a
0.40s call     tests/te`

	require.True(t, parser.Detect(input))

	sections := parser.Decompose(input)
	require.Len(t, sections, 2)

	slow, ok := findSection(sections, "Slowest durations")
	require.True(t, ok)
	assert.Len(t, slow.Rows, 2)
}

func TestPytestParser_AlwaysAppendsRawSection(t *testing.T) {
	parser := &PytestParser{}

	inputs := []string{
		fullReport,
		"============ test session starts ============",
		"============ test session starts ============\n\x00\xff broken",
	}
	for _, input := range inputs {
		sections := parser.Decompose(input)
		require.NotEmpty(t, sections)
		raw := sections[len(sections)-1]
		assert.Equal(t, "Raw Log", raw.Title)
		assert.Equal(t, KindTextBlock, raw.Kind)
		assert.Equal(t, 0, raw.Order)
		assert.Equal(t, input, raw.Text())
	}
}

func TestPytestParser_ANSIColoredOutcome(t *testing.T) {
	parser := &PytestParser{}

	input := "============ test session starts ============\n" +
		"\x1b[32m===== \x1b[32m3 passed\x1b[0m\x1b[32m in 0.75s\x1b[0m\x1b[32m =====\x1b[0m"

	sections := parser.Decompose(input)
	summary, ok := findSection(sections, "Summary")
	require.True(t, ok)
	require.Len(t, summary.Rows, 2)
	assert.Equal(t, []string{"passed", "3"}, summary.Rows[0].Cells)
	assert.Equal(t, []string{"duration", "0.75s"}, summary.Rows[1].Cells)

	// Verbatim means verbatim: escapes stay in the raw section.
	raw, ok := findSection(sections, "Raw Log")
	require.True(t, ok)
	assert.Contains(t, raw.Text(), "\x1b[32m")
}

func TestPytestParser_SlowRowsDefault(t *testing.T) {
	parser := &PytestParser{}

	var b strings.Builder
	b.WriteString("=========================== slowest 50 durations ===========================\n")
	for i := 0; i < 25; i++ {
		b.WriteString("1.00s call     tests/test_many.py::test_case\n")
	}
	b.WriteString("============================ 25 passed in 30.00s =============================")

	sections := parser.Decompose(b.String())
	slow, ok := findSection(sections, "Slowest durations")
	require.True(t, ok)
	assert.Len(t, slow.Rows, defaultMaxSlowRows)
}
