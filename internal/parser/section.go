package parser

import "strings"

// Kind tags how a section's rows should be interpreted and rendered.
type Kind int

const (
	// KindTextBlock holds verbatim log lines, one row per line.
	KindTextBlock Kind = iota
	// KindTabular holds records with named columns.
	KindTabular
	// KindKeyValue holds label/value summary pairs.
	KindKeyValue
)

func (k Kind) String() string {
	switch k {
	case KindTextBlock:
		return "text-block"
	case KindTabular:
		return "tabular"
	case KindKeyValue:
		return "key-value"
	default:
		return "unknown"
	}
}

// Row is a single record in a section.
type Row struct {
	Cells []string
	Total bool // marks a totals row, e.g. the coverage TOTAL line
}

// Section is one named, orderable chunk of processed log output. Sections
// are created fresh per parse and treated as immutable by consumers.
type Section struct {
	Title   string
	Kind    Kind
	Columns []string // column labels for KindTabular, nil otherwise
	Rows    []Row    // never nil; a section with zero rows is legal
	Order   int      // display weight: higher renders first, raw log is 0
}

// NewTable returns an empty tabular section with the given column labels.
func NewTable(title string, order int, columns ...string) Section {
	return Section{
		Title:   title,
		Kind:    KindTabular,
		Columns: columns,
		Rows:    []Row{},
		Order:   order,
	}
}

// NewKeyValue returns an empty key/value summary section.
func NewKeyValue(title string, order int) Section {
	return Section{
		Title: title,
		Kind:  KindKeyValue,
		Rows:  []Row{},
		Order: order,
	}
}

// NewTextBlock returns a text section holding the text verbatim, one row
// per line. Text round-trips exactly through Text().
func NewTextBlock(title, text string, order int) Section {
	lines := strings.Split(text, "\n")
	rows := make([]Row, len(lines))
	for i, line := range lines {
		rows[i] = Row{Cells: []string{line}}
	}
	return Section{
		Title: title,
		Kind:  KindTextBlock,
		Rows:  rows,
		Order: order,
	}
}

// Append adds a row to the section.
func (s *Section) Append(cells ...string) {
	s.Rows = append(s.Rows, Row{Cells: cells})
}

// AppendTotal adds a row flagged as a totals row.
func (s *Section) AppendTotal(cells ...string) {
	s.Rows = append(s.Rows, Row{Cells: cells, Total: true})
}

// Lines returns the first cell of every row. For text-block sections this
// is the original text line by line.
func (s Section) Lines() []string {
	lines := make([]string, 0, len(s.Rows))
	for _, row := range s.Rows {
		if len(row.Cells) > 0 {
			lines = append(lines, row.Cells[0])
		} else {
			lines = append(lines, "")
		}
	}
	return lines
}

// Text reassembles a text-block section into the string it was built from.
func (s Section) Text() string {
	return strings.Join(s.Lines(), "\n")
}
