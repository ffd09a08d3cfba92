package parser

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrDuplicateParser reports a parser name registered twice.
	ErrDuplicateParser = errors.New("parser already registered")

	// ErrNoParser reports that no registered parser recognised a log. It
	// can only happen in a registry missing an always-matching fallback.
	ErrNoParser = errors.New("no parser matched")
)

// Registry holds parsers in probe order. Register everything during
// startup; a populated Registry is read-only and safe for concurrent use.
type Registry struct {
	entries []registryEntry
}

type registryEntry struct {
	desc   Descriptor
	parser Parser
	seq    int // registration order, breaks priority ties
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a parser under the given descriptor. Parser names are
// unique; reusing one is a configuration mistake and returns
// ErrDuplicateParser.
func (r *Registry) Register(d Descriptor, p Parser) error {
	for _, e := range r.entries {
		if e.desc.Name == d.Name {
			return fmt.Errorf("%w: %q", ErrDuplicateParser, d.Name)
		}
	}
	r.entries = append(r.entries, registryEntry{desc: d, parser: p, seq: len(r.entries)})
	sort.Slice(r.entries, func(i, j int) bool {
		if r.entries[i].desc.Priority != r.entries[j].desc.Priority {
			return r.entries[i].desc.Priority < r.entries[j].desc.Priority
		}
		return r.entries[i].seq < r.entries[j].seq
	})
	return nil
}

// MustRegister is Register for startup wiring with hand-picked names; it
// panics on the errors Register would return.
func (r *Registry) MustRegister(d Descriptor, p Parser) {
	if err := r.Register(d, p); err != nil {
		panic(err)
	}
}

// Resolve returns the first parser whose Detect accepts the log, probing
// in ascending priority order with ties broken by registration order.
func (r *Registry) Resolve(raw string) (Parser, error) {
	for _, e := range r.entries {
		if e.parser.Detect(raw) {
			return e.parser, nil
		}
	}
	return nil, ErrNoParser
}

// Parse resolves a parser for the log and returns its sections ordered
// for display: higher Order first, so the raw log (Order 0) comes last.
func (r *Registry) Parse(raw string) ([]Section, error) {
	p, err := r.Resolve(raw)
	if err != nil {
		return nil, err
	}
	sections := p.Decompose(raw)
	sort.SliceStable(sections, func(i, j int) bool {
		return sections[i].Order > sections[j].Order
	})
	return sections, nil
}

// DescriptorOf returns the descriptor a parser instance was registered
// under, for display labels.
func (r *Registry) DescriptorOf(p Parser) (Descriptor, bool) {
	for _, e := range r.entries {
		if e.parser == p {
			return e.desc, true
		}
	}
	return Descriptor{}, false
}

// Len reports the number of registered parsers.
func (r *Registry) Len() int {
	return len(r.entries)
}

// Default builds the standard registry: the pytest parser probed first,
// the fallback last so unrecognised logs still yield their raw text.
// maxSlowRows caps the slowest-tests section; 0 applies the default.
func Default(maxSlowRows int) *Registry {
	r := NewRegistry()
	r.MustRegister(Descriptor{Name: "pytest", Priority: 10}, &PytestParser{MaxSlowRows: maxSlowRows})
	r.MustRegister(Descriptor{Name: "fallback", Priority: 100}, &FallbackParser{})
	return r
}
