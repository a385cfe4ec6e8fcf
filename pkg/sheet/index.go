package sheet

import (
	"github.com/mentalhealthdb/mhdb/pkg/graph"
)

// Index maps the integer keys of a table's index column to row numbers
type Index struct {
	sheet string
	rows  map[int64]int
}

func newIndex(t *Table) *Index {
	idx := &Index{sheet: t.Name, rows: make(map[int64]int, len(t.Rows))}
	for row := range t.Rows {
		key, ok := t.Cell(row, IndexColumn).Int()
		if !ok {
			continue
		}
		// first row wins on duplicate keys
		if _, dup := idx.rows[key]; !dup {
			idx.rows[key] = row
		}
	}
	return idx
}

// Len returns the number of keyed rows
func (idx *Index) Len() int {
	return len(idx.rows)
}

// Lookup returns the row holding key. Keys such as "3" and "3.0" are
// equivalent.
func (idx *Index) Lookup(key graph.Value) (int, error) {
	n, ok := key.Int()
	if ok {
		if row, found := idx.rows[n]; found {
			return row, nil
		}
	}
	return 0, &LookupError{Sheet: idx.sheet, Key: key.String()}
}
