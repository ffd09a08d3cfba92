package parser

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// PytestParser extracts the pytest report blocks from a job log: the final
// outcome counts, the slowest-durations table, the warnings summary and the
// coverage table. Each block is optional; whatever is present becomes a
// section and the verbatim log is always appended last.
type PytestParser struct {
	// MaxSlowRows caps the slowest-tests section. Zero applies the default.
	MaxSlowRows int
}

const defaultMaxSlowRows = 10

const (
	orderSummary  = 40
	orderSlowest  = 30
	orderWarnings = 20
	orderCoverage = 10
)

const (
	titleSummary  = "Summary"
	titleSlowest  = "Slowest durations"
	titleWarnings = "Warnings summary"
	titleCoverage = "Test coverage"
)

var (
	// Session banner: ========= test session starts =========
	sessionStartPattern = regexp.MustCompile(`=+ test session starts =+`)

	// Block banner: ========= slowest 10 durations =========
	slowestHeaderPattern = regexp.MustCompile(`=+ slowest \d+ durations =+`)

	// Entry: "2.32s call     tests/test_api.py::test_big"
	slowestEntryPattern = regexp.MustCompile(`^(\d+(?:\.\d+)?)s\s+(setup|call|teardown)\s+(\S.*)$`)

	// Any banner/rule line ends the slowest block.
	slowestEndPattern = regexp.MustCompile(`={4,}`)

	// Block banner: ========= warnings summary =========
	warningsHeaderPattern = regexp.MustCompile(`=+ warnings summary =+`)

	// A following banner with text ends the warnings block.
	warningsEndPattern = regexp.MustCompile(`^=+\s+\w`)

	// Message: "path/to/file.py:35: DeprecationWarning: old_fn is deprecated"
	warningMessagePattern = regexp.MustCompile(`^(\S+?):(\d+):\s+(.+)$`)

	// Grouped occurrences: "tests/test_api.py: 12 warnings"
	warningGroupPattern = regexp.MustCompile(`^(\S+): (\d+) warnings?$`)

	// Block banner: ========= tests coverage =========
	coverageHeaderPattern = regexp.MustCompile(`=+ tests coverage =+`)

	// Table header: "Name    Stmts   Miss  Cover"
	coverageColumnsPattern = regexp.MustCompile(`^Name\s+.*Stmts\s+Miss\s+Cover`)

	// Table row: "aperture/core.py    120   15   88%" (trailing columns ignored)
	coverageRowPattern = regexp.MustCompile(`^(\S+)\s+(\d+)\s+(\d+)\s+(\d+(?:\.\d+)?%)`)

	dashRulePattern  = regexp.MustCompile(`^-{5,}$`)
	separatorPattern = regexp.MustCompile(`={10,}`)

	// Final outcome: "===== 2 failed, 3 passed, 1 warning in 1.52s ====="
	outcomePattern = regexp.MustCompile(`^=+ (.+ in \d+(?:\.\d+)?s(?: \([0-9:]+\))?) =+$`)

	// Same banner anywhere in the log, for detection.
	outcomeAnchorPattern = regexp.MustCompile(`(?m)^=+ .+ in \d+(?:\.\d+)?s(?: \([0-9:]+\))? =+$`)

	// One outcome token: "3 passed"
	outcomeTokenPattern = regexp.MustCompile(`(\d+) ([A-Za-z]+)`)
)

// Detect looks for pytest banners anywhere in the cleaned log. Empty or
// unrecognised input returns false.
func (p *PytestParser) Detect(raw string) bool {
	if raw == "" {
		return false
	}
	cleaned := Clean(raw)
	return sessionStartPattern.MatchString(cleaned) ||
		outcomeAnchorPattern.MatchString(cleaned) ||
		slowestHeaderPattern.MatchString(cleaned) ||
		warningsHeaderPattern.MatchString(cleaned) ||
		coverageHeaderPattern.MatchString(cleaned)
}

// Decompose runs the extraction passes over the cleaned log. Each pass is
// independent: a block that is absent or unparsable contributes nothing and
// never aborts the others. The unmodified input is always the last section.
func (p *PytestParser) Decompose(raw string) []Section {
	lines := strings.Split(Clean(raw), "\n")

	var sections []Section
	if sec, ok := summarySection(lines); ok {
		sections = append(sections, sec)
	}
	if sec, ok := p.slowestSection(lines); ok {
		sections = append(sections, sec)
	}
	if sec, ok := warningsSection(lines); ok {
		sections = append(sections, sec)
	}
	if sec, ok := coverageSection(lines); ok {
		sections = append(sections, sec)
	}
	return append(sections, NewTextBlock(RawLogTitle, raw, rawOrder))
}

// summarySection parses the final outcome line into label/value rows, e.g.
// "===== 2 failed, 3 passed in 1.52s =====" into failed=2, passed=3 and the
// duration. Reruns print several outcome lines; the last one wins.
func summarySection(lines []string) (Section, bool) {
	var m []string
	for i := len(lines) - 1; i >= 0; i-- {
		if m = outcomePattern.FindStringSubmatch(strings.TrimSpace(lines[i])); m != nil {
			break
		}
	}
	if m == nil {
		return Section{}, false
	}

	body := m[1]
	idx := strings.LastIndex(body, " in ")
	counts, duration := body[:idx], body[idx+len(" in "):]

	sec := NewKeyValue(titleSummary, orderSummary)
	for _, tok := range outcomeTokenPattern.FindAllStringSubmatch(counts, -1) {
		sec.Append(tok[2], tok[1])
	}
	sec.Append("duration", duration)
	return sec, true
}

// slowestSection parses the slowest-durations block into a table sorted by
// descending duration and capped at MaxSlowRows. The hidden-durations
// footer carries no duration and is skipped.
func (p *PytestParser) slowestSection(lines []string) (Section, bool) {
	start := indexMatching(lines, slowestHeaderPattern)
	if start < 0 {
		return Section{}, false
	}

	type slowEntry struct {
		seconds float64
		cells   []string
	}
	var entries []slowEntry
	for _, line := range lines[start+1:] {
		if slowestEndPattern.MatchString(line) {
			break
		}
		m := slowestEntryPattern.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		seconds, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		entries = append(entries, slowEntry{
			seconds: seconds,
			cells:   []string{m[1] + "s", m[2], strings.TrimSpace(m[3])},
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].seconds > entries[j].seconds
	})
	limit := p.MaxSlowRows
	if limit <= 0 {
		limit = defaultMaxSlowRows
	}
	if len(entries) > limit {
		entries = entries[:limit]
	}

	sec := NewTable(titleSlowest, orderSlowest, "Duration", "Phase", "Test")
	for _, e := range entries {
		sec.Append(e.cells...)
	}
	return sec, true
}

// warningsSection parses the warnings summary, collapsing repeats of the
// same message at the same location into one row with a total occurrence
// count. Occurrences are the test ids listed above each message; grouped
// "path: N warnings" lines contribute N at once.
func warningsSection(lines []string) (Section, bool) {
	start := indexMatching(lines, warningsHeaderPattern)
	if start < 0 {
		return Section{}, false
	}

	type warning struct {
		count    int
		message  string
		location string
	}
	byKey := make(map[string]*warning)
	var keys []string
	pending := 0

	for _, line := range lines[start+1:] {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			pending = 0
			continue
		}
		if strings.HasPrefix(trimmed, "-- Docs:") || warningsEndPattern.MatchString(line) {
			break
		}
		if m := warningMessagePattern.FindStringSubmatch(trimmed); m != nil {
			count := pending
			if count == 0 {
				count = 1
			}
			location := m[1] + ":" + m[2]
			key := location + "\x00" + m[3]
			if w, ok := byKey[key]; ok {
				w.count += count
			} else {
				byKey[key] = &warning{count: count, message: m[3], location: location}
				keys = append(keys, key)
			}
			pending = 0
			continue
		}
		if m := warningGroupPattern.FindStringSubmatch(trimmed); m != nil {
			if n, err := strconv.Atoi(m[2]); err == nil {
				pending += n
			}
			continue
		}
		if strings.Contains(trimmed, "::") {
			pending++
		}
		// anything else is quoted source context
	}

	sec := NewTable(titleWarnings, orderWarnings, "Count", "Message", "Location")
	for _, key := range keys {
		w := byKey[key]
		sec.Append(strconv.Itoa(w.count), w.message, w.location)
	}
	return sec, true
}

// coverageSection parses the coverage table. File rows keep their printed
// order; the TOTAL row is flagged and always placed last. A banner with no
// parsable table contributes nothing.
func coverageSection(lines []string) (Section, bool) {
	start := indexMatching(lines, coverageHeaderPattern)
	if start < 0 {
		return Section{}, false
	}

	var fileRows []Row
	var totalRow *Row
	sawColumns := false
	for _, line := range lines[start+1:] {
		if separatorPattern.MatchString(line) {
			break
		}
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || dashRulePattern.MatchString(trimmed) {
			continue
		}
		if coverageColumnsPattern.MatchString(trimmed) {
			sawColumns = true
			continue
		}
		m := coverageRowPattern.FindStringSubmatch(trimmed)
		if m == nil {
			continue
		}
		row := Row{Cells: []string{m[1], m[2], m[3], m[4]}}
		if m[1] == "TOTAL" {
			row.Total = true
			totalRow = &row
			continue
		}
		fileRows = append(fileRows, row)
	}

	if !sawColumns || (len(fileRows) == 0 && totalRow == nil) {
		return Section{}, false
	}
	sec := NewTable(titleCoverage, orderCoverage, "Name", "Stmts", "Miss", "Cover")
	sec.Rows = append(sec.Rows, fileRows...)
	if totalRow != nil {
		sec.Rows = append(sec.Rows, *totalRow)
	}
	return sec, true
}

func indexMatching(lines []string, re *regexp.Regexp) int {
	for i, line := range lines {
		if re.MatchString(line) {
			return i
		}
	}
	return -1
}
