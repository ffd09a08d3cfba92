// Package parser decomposes raw GitHub Actions job logs into displayable
// sections. Format support is pluggable: concrete parsers register with a
// Registry, which probes their detectors in priority order and hands the
// log to the first one that recognises it. An always-matching fallback
// guarantees that every log yields at least its raw text.
package parser

// Parser extracts sections from one raw job log.
type Parser interface {
	// Detect reports whether this parser recognises the log format. It is
	// pure and must never panic: truncated, empty or binary input is
	// ordinary input and simply returns false.
	Detect(raw string) bool

	// Decompose splits the log into sections. It is only called after
	// Detect has accepted the log and must tolerate partial or truncated
	// input, contributing whatever sections are extractable rather than
	// failing. The returned slice always includes a verbatim raw-log
	// text section.
	Decompose(raw string) []Section
}

// Descriptor identifies a registered parser.
type Descriptor struct {
	Name     string
	Priority int // lower values are probed first
}
