package parser

import (
	"regexp"
	"strings"

	"github.com/charmbracelet/x/ansi"
)

var (
	// timestampPattern matches GitHub Actions runner timestamp prefixes.
	// Format: 2026-01-26T14:49:40.7760945Z (fraction optional in older runners)
	timestampPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(?:\.\d*)?Z\s*`)

	// jobPrefixPattern matches job/step prefixes from `gh run view --log`.
	// Format: "JobName\tStepName\t2026-01-26..."
	jobPrefixPattern = regexp.MustCompile(`^[^\t]+\t[^\t]+\t\d{4}-\d{2}-\d{2}T[^\s]+\s*`)
)

// StripTimestamps removes runner timestamp prefixes from each line.
// Input:  "2026-01-26T14:49:40.7760945Z ===== warnings summary ====="
// Output: "===== warnings summary ====="
func StripTimestamps(log string) string {
	lines := strings.Split(log, "\n")
	for i, line := range lines {
		lines[i] = timestampPattern.ReplaceAllString(line, "")
	}
	return strings.Join(lines, "\n")
}

// StripJobPrefix removes the job/step prefix from each line.
// Input:  "test\tRun pytest\t2026-01-26... content"
// Output: "content"
func StripJobPrefix(log string) string {
	lines := strings.Split(log, "\n")
	for i, line := range lines {
		lines[i] = jobPrefixPattern.ReplaceAllString(line, "")
	}
	return strings.Join(lines, "\n")
}

// StripANSI removes ANSI escape sequences from the log.
func StripANSI(log string) string {
	return ansi.Strip(log)
}

// Clean applies all cleanup operations to a log. Extraction passes work on
// cleaned text; the raw-log section always keeps the original.
func Clean(log string) string {
	log = StripJobPrefix(log)
	log = StripTimestamps(log)
	log = StripANSI(log)
	return log
}
