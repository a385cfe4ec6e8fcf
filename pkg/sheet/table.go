// Package sheet holds spreadsheet worksheets as tables of cell values and
// resolves the integer index columns that link rows across worksheets.
package sheet

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/mentalhealthdb/mhdb/pkg/graph"
)

var (
	ErrSheetNotFound   = errors.New("sheet not found")
	ErrUnresolvedIndex = errors.New("unresolved index")
)

// IndexColumn is the column every lookup worksheet is keyed by
const IndexColumn = "index"

// LookupError reports an index key that has no row in the target sheet
type LookupError struct {
	Sheet string
	Key   string
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("%v: %q in sheet %s", ErrUnresolvedIndex, e.Key, e.Sheet)
}

func (e *LookupError) Unwrap() error {
	return ErrUnresolvedIndex
}

// CellError locates a failure at a cell of a worksheet. Row is the
// spreadsheet row number as a user sees it.
type CellError struct {
	Sheet  string
	Row    int
	Column string
	Err    error
}

func (e *CellError) Error() string {
	return fmt.Sprintf("sheet %s row %d column %s: %v", e.Sheet, e.Row, e.Column, e.Err)
}

func (e *CellError) Unwrap() error {
	return e.Err
}

// Table is one worksheet: a header row naming the columns followed by
// data rows. Row numbers are 0-based and exclude the header.
type Table struct {
	Name    string
	Columns []string
	Rows    [][]graph.Value

	columns map[string]int

	indexOnce sync.Once
	index     *Index
}

// NewTable builds a table from raw cell text. Every cell goes through
// ParseCell, so blanks and sentinels are Absent from here on.
func NewTable(name string, header []string, records [][]string) *Table {
	t := &Table{
		Name:    name,
		Columns: make([]string, len(header)),
		Rows:    make([][]graph.Value, 0, len(records)),
		columns: make(map[string]int, len(header)),
	}
	for i, col := range header {
		col = strings.TrimSpace(strings.TrimPrefix(col, "\ufeff"))
		t.Columns[i] = col
		if _, dup := t.columns[col]; !dup && col != "" {
			t.columns[col] = i
		}
	}
	for _, record := range records {
		if blankRecord(record) {
			continue
		}
		row := make([]graph.Value, len(header))
		for i := range row {
			if i < len(record) {
				row[i] = ParseCell(record[i])
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func blankRecord(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// ParseCell turns raw cell text into a Value. Blank cells and the
// markers spreadsheets use for missing data become Absent.
func ParseCell(s string) graph.Value {
	s = strings.TrimSpace(s)
	if graph.IsSentinel(s) || s == "None" || s == "#N/A" {
		return graph.Absent()
	}
	return graph.Text(s)
}

// Len returns the number of data rows
func (t *Table) Len() int {
	return len(t.Rows)
}

// HasColumn reports whether the header names column
func (t *Table) HasColumn(column string) bool {
	_, ok := t.columns[column]
	return ok
}

// Cell returns the value at row and column, Absent if either is missing
func (t *Table) Cell(row int, column string) graph.Value {
	i, ok := t.columns[column]
	if !ok || row < 0 || row >= len(t.Rows) {
		return graph.Absent()
	}
	return t.Rows[row][i]
}

// Text returns the trimmed cell text, "" when absent
func (t *Table) Text(row int, column string) string {
	v := t.Cell(row, column)
	if v.IsAbsent() {
		return ""
	}
	return v.String()
}

// Index returns the lookup over the table's index column. It is built on
// first use.
func (t *Table) Index() *Index {
	t.indexOnce.Do(func() {
		t.index = newIndex(t)
	})
	return t.index
}

// Resolve reads the cell at row and column as a comma-separated list of
// index keys into target and returns targetColumn of every matched row.
// The first key without a row fails the whole lookup.
func (t *Table) Resolve(row int, column string, target *Table, targetColumn string) ([]graph.Value, error) {
	keys := SplitList(t.Cell(row, column))
	if len(keys) == 0 {
		return nil, nil
	}

	index := target.Index()
	out := make([]graph.Value, 0, len(keys))
	for _, key := range keys {
		match, err := index.Lookup(key)
		if err != nil {
			return nil, &CellError{Sheet: t.Name, Row: SheetRow(row), Column: column, Err: err}
		}
		out = append(out, target.Cell(match, targetColumn))
	}
	return out, nil
}

// ResolveText is Resolve keeping only the present values as text
func (t *Table) ResolveText(row int, column string, target *Table, targetColumn string) ([]string, error) {
	values, err := t.Resolve(row, column, target, targetColumn)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if !v.IsAbsent() {
			out = append(out, v.String())
		}
	}
	return out, nil
}

// SheetRow converts a 0-based data row into the row number a spreadsheet
// shows, counting the header as row 1
func SheetRow(row int) int {
	return row + 2
}

// SplitList splits a comma-separated cell into its items, trimming each
// and dropping blank and sentinel items. A Sequence value yields its
// present items.
func SplitList(v graph.Value) []graph.Value {
	switch v.Kind() {
	case graph.KindAbsent:
		return nil
	case graph.KindSequence:
		var out []graph.Value
		for _, item := range v.Items() {
			out = append(out, SplitList(item)...)
		}
		return out
	case graph.KindNumber:
		if v.IsAbsent() {
			return nil
		}
		return []graph.Value{v}
	}

	var out []graph.Value
	for _, part := range strings.Split(v.String(), ",") {
		if item := ParseCell(part); !item.IsAbsent() {
			out = append(out, item)
		}
	}
	return out
}
