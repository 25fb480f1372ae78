// Package table holds uploaded tabular batches as header + string rows and reads/writes them as CSV
package table

import (
	"bufio"
	"encoding/csv"
	"errors"
	"io"
	"slices"
	"strings"

	perr "predictkit/internal/platform/errors"
)

const bom = "\uFEFF"

// Table is an ordered set of rows sharing one header
// values are kept as raw strings; typing happens in preprocess
type Table struct {
	Header []string
	Rows   [][]string
}

// New builds a table and checks every row against the header width
func New(header []string, rows [][]string) (*Table, error) {
	t := &Table{Header: slices.Clone(header), Rows: rows}
	if err := t.check(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Table) check() error {
	if len(t.Header) == 0 {
		return perr.New(perr.ErrorCodeValidation, "table has no header")
	}
	seen := make(map[string]struct{}, len(t.Header))
	for _, h := range t.Header {
		if _, dup := seen[h]; dup {
			return perr.WithField(perr.Newf(perr.ErrorCodeValidation, "duplicate column %q", h), h)
		}
		seen[h] = struct{}{}
	}
	for i, r := range t.Rows {
		if len(r) != len(t.Header) {
			return perr.Newf(perr.ErrorCodeValidation, "row %d has %d fields, header has %d", i+1, len(r), len(t.Header))
		}
	}
	return nil
}

// ReadCSV parses a UTF-8, comma-delimited document with a header row
func ReadCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(bufio.NewReader(r))
	cr.FieldsPerRecord = 0 // first record fixes the width
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, perr.New(perr.ErrorCodeValidation, "csv is empty")
	}
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeValidation, "read csv header")
	}
	header = slices.Clone(header)
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], bom)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var rows [][]string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, perr.Wrap(err, perr.ErrorCodeValidation, "read csv")
		}
		rows = append(rows, rec)
	}
	return New(header, rows)
}

// WriteCSV writes the header and all rows
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return err
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return err
	}
	return cw.Error()
}

// Len returns the number of data rows
func (t *Table) Len() int { return len(t.Rows) }

// Index returns column name -> position
func (t *Table) Index() map[string]int {
	idx := make(map[string]int, len(t.Header))
	for i, h := range t.Header {
		idx[h] = i
	}
	return idx
}

// Has reports whether the header contains name
func (t *Table) Has(name string) bool { return slices.Contains(t.Header, name) }

// Missing returns the subset of cols absent from the header, in the order given
func (t *Table) Missing(cols []string) []string {
	idx := t.Index()
	var out []string
	for _, c := range cols {
		if _, ok := idx[c]; !ok {
			out = append(out, c)
		}
	}
	return out
}

// Column returns a copy of one column's values
func (t *Table) Column(name string) ([]string, bool) {
	i := slices.Index(t.Header, name)
	if i < 0 {
		return nil, false
	}
	out := make([]string, len(t.Rows))
	for r, row := range t.Rows {
		out[r] = row[i]
	}
	return out, true
}

// Project returns a new table with only cols, in that order
func (t *Table) Project(cols []string) (*Table, error) {
	if miss := t.Missing(cols); len(miss) > 0 {
		return nil, perr.SchemaMismatchf("missing required columns: %s", strings.Join(miss, ", "))
	}
	idx := t.Index()
	rows := make([][]string, len(t.Rows))
	for r, row := range t.Rows {
		out := make([]string, len(cols))
		for j, c := range cols {
			out[j] = row[idx[c]]
		}
		rows[r] = out
	}
	return &Table{Header: slices.Clone(cols), Rows: rows}, nil
}

// WithColumn returns a copy of t with vals as column name; an existing column of that name is replaced
// in place, otherwise the column is appended. The receiver is not modified
func (t *Table) WithColumn(name string, vals []string) (*Table, error) {
	if len(vals) != len(t.Rows) {
		return nil, perr.Internalf("column %q has %d values for %d rows", name, len(vals), len(t.Rows))
	}
	pos := slices.Index(t.Header, name)
	header := slices.Clone(t.Header)
	if pos < 0 {
		header = append(header, name)
	}
	rows := make([][]string, len(t.Rows))
	for r, row := range t.Rows {
		out := make([]string, len(header))
		copy(out, row)
		if pos < 0 {
			out[len(out)-1] = vals[r]
		} else {
			out[pos] = vals[r]
		}
		rows[r] = out
	}
	return &Table{Header: header, Rows: rows}, nil
}

// Head returns a table sharing the first n rows
func (t *Table) Head(n int) *Table {
	if n < 0 || n > len(t.Rows) {
		n = len(t.Rows)
	}
	return &Table{Header: t.Header, Rows: t.Rows[:n]}
}

// DropIncomplete returns a table without rows that have a blank value in any of cols
func (t *Table) DropIncomplete(cols []string) *Table {
	idx := t.Index()
	pos := make([]int, 0, len(cols))
	for _, c := range cols {
		if i, ok := idx[c]; ok {
			pos = append(pos, i)
		}
	}
	rows := make([][]string, 0, len(t.Rows))
next:
	for _, row := range t.Rows {
		for _, i := range pos {
			if strings.TrimSpace(row[i]) == "" {
				continue next
			}
		}
		rows = append(rows, row)
	}
	return &Table{Header: t.Header, Rows: rows}
}

// Records renders rows as column -> value maps for JSON transports
func (t *Table) Records() []map[string]string {
	out := make([]map[string]string, len(t.Rows))
	for r, row := range t.Rows {
		m := make(map[string]string, len(t.Header))
		for i, h := range t.Header {
			m[h] = row[i]
		}
		out[r] = m
	}
	return out
}

// FromRecords builds a table from maps; absent keys become blanks. header fixes the leading
// column order and any keys it does not name follow it, sorted
func FromRecords(header []string, recs []map[string]string) (*Table, error) {
	named := make(map[string]struct{}, len(header))
	for _, h := range header {
		named[h] = struct{}{}
	}
	var extra []string
	for _, m := range recs {
		for k := range m {
			if _, ok := named[k]; !ok {
				named[k] = struct{}{}
				extra = append(extra, k)
			}
		}
	}
	slices.Sort(extra)
	header = append(slices.Clone(header), extra...)

	rows := make([][]string, len(recs))
	for r, m := range recs {
		row := make([]string, len(header))
		for i, h := range header {
			row[i] = m[h]
		}
		rows[r] = row
	}
	return New(header, rows)
}
