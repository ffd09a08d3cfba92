package parser

// RawLogTitle names the verbatim text section every parser emits last.
const RawLogTitle = "Raw Log"

// rawOrder pins the raw section below every extracted section.
const rawOrder = 0

// FallbackParser accepts any log and exposes it as a single raw text
// section. Registered behind every format parser, it guarantees the
// registry always resolves.
type FallbackParser struct{}

// Detect accepts everything.
func (p *FallbackParser) Detect(raw string) bool {
	return true
}

// Decompose returns the input as one verbatim section.
func (p *FallbackParser) Decompose(raw string) []Section {
	return []Section{NewTextBlock(RawLogTitle, raw, rawOrder)}
}
