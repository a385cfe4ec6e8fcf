package sheet

import (
	"fmt"
)

// Workbook is a named set of worksheets
type Workbook struct {
	Name   string
	sheets map[string]*Table
	order  []string
}

// NewWorkbook creates a workbook holding tables
func NewWorkbook(name string, tables ...*Table) *Workbook {
	wb := &Workbook{Name: name, sheets: make(map[string]*Table)}
	for _, t := range tables {
		wb.Add(t)
	}
	return wb
}

// Add stores t, replacing a sheet of the same name
func (wb *Workbook) Add(t *Table) {
	if _, ok := wb.sheets[t.Name]; !ok {
		wb.order = append(wb.order, t.Name)
	}
	wb.sheets[t.Name] = t
}

// Sheet returns the named worksheet
func (wb *Workbook) Sheet(name string) (*Table, error) {
	t, ok := wb.sheets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s in workbook %s", ErrSheetNotFound, name, wb.Name)
	}
	return t, nil
}

// Has reports whether the workbook holds the named worksheet
func (wb *Workbook) Has(name string) bool {
	_, ok := wb.sheets[name]
	return ok
}

// Names returns the sheet names in load order
func (wb *Workbook) Names() []string {
	out := make([]string, len(wb.order))
	copy(out, wb.order)
	return out
}
