package report

import (
	"strings"
	"text/tabwriter"
)

// Row is one line of a report table. Header rows introduce a section.
type Row struct {
	Cells  []string `json:"cells"`
	Header bool     `json:"header,omitempty"`
}

// Table is an ordered list of rows.
type Table struct {
	Rows []Row `json:"rows"`
}

func (t *Table) header(cells ...string) {
	t.Rows = append(t.Rows, Row{Cells: cells, Header: true})
}

func (t *Table) row(cells ...string) {
	t.Rows = append(t.Rows, Row{Cells: cells})
}

// String renders the table as aligned plain text. Header rows are preceded by
// a blank line and underlined.
func (t Table) String() string {
	var b strings.Builder
	tw := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	for i, r := range t.Rows {
		if r.Header && i > 0 {
			tw.Write([]byte("\n"))
		}
		tw.Write([]byte(strings.Join(r.Cells, "\t") + "\n"))
		if r.Header {
			tw.Write([]byte(strings.Repeat("-", len(strings.Join(r.Cells, "  "))) + "\n"))
		}
	}
	tw.Flush()
	return b.String()
}
