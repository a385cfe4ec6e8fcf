// Package ingest turns the worksheets of the mhdb workbooks into
// statements. Each workbook is handled by a pass; passes run one after
// the other against a shared store.
package ingest

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/mentalhealthdb/mhdb/pkg/graph"
	"github.com/mentalhealthdb/mhdb/pkg/rdf"
	"github.com/mentalhealthdb/mhdb/pkg/sheet"
)

var (
	ErrMissingWorkbook = errors.New("workbook not loaded")
	ErrUnknownPass     = errors.New("unknown pass")
)

// PassError reports the pass, and where known the worksheet row, that
// stopped a run
type PassError struct {
	Pass  string
	Sheet string
	Row   int
	Err   error
}

func (e *PassError) Error() string {
	if e.Sheet != "" {
		return fmt.Sprintf("pass %s: sheet %s row %d: %v", e.Pass, e.Sheet, e.Row, e.Err)
	}
	return fmt.Sprintf("pass %s: %v", e.Pass, e.Err)
}

func (e *PassError) Unwrap() error {
	return e.Err
}

func newPassError(pass string, err error) *PassError {
	pe := &PassError{Pass: pass, Err: err}
	var cerr *sheet.CellError
	if errors.As(err, &cerr) {
		pe.Sheet = cerr.Sheet
		pe.Row = cerr.Row
		pe.Err = fmt.Errorf("column %s: %w", cerr.Column, cerr.Err)
	}
	return pe
}

// Env is what a pass works with. LinkSet and Counter are fresh for every
// pass; the store and resolver are shared by the whole run.
type Env struct {
	Books    map[string]*sheet.Workbook
	Store    *graph.Store
	Resolver *rdf.Resolver
	Language string
	Links    *graph.LinkSet
	Counter  *graph.Counter
	Logger   zerolog.Logger
}

// Sheets fetches the named worksheets of a workbook. Every name must exist.
func (e *Env) Sheets(workbook string, names ...string) (map[string]*sheet.Table, error) {
	wb, ok := e.Books[workbook]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingWorkbook, workbook)
	}
	out := make(map[string]*sheet.Table, len(names))
	for _, name := range names {
		t, err := wb.Sheet(name)
		if err != nil {
			return nil, err
		}
		out[name] = t
	}
	return out, nil
}

// Text renders free text as a language-tagged literal
func (e *Env) Text(s string) string {
	return rdf.TagLiteral(s, e.Language)
}

// Class resolves a class-like label
func (e *Env) Class(label string) string {
	return e.Resolver.Class(label)
}

// Instance resolves an instance-like label
func (e *Env) Instance(label string) string {
	return e.Resolver.Instance(label)
}

// Pass converts one workbook
type Pass struct {
	Name string
	// Workbooks lists every workbook the pass reads, its own first
	Workbooks []string
	Run       func(ctx context.Context, env *Env) error
}

var registry = []Pass{
	{Name: "states", Workbooks: []string{"states"}, Run: ingestStates},
	{Name: "disorders", Workbooks: []string{"disorders"}, Run: ingestDisorders},
	{Name: "sensors", Workbooks: []string{"sensors"}, Run: ingestSensors},
	{Name: "resources", Workbooks: []string{"resources"}, Run: ingestResources},
	{Name: "projects", Workbooks: []string{"resources", "disorders"}, Run: ingestProjects},
	{Name: "assessments", Workbooks: []string{"assessments", "resources", "disorders"}, Run: ingestAssessments},
}

// Passes returns every registered pass in run order
func Passes() []Pass {
	out := make([]Pass, len(registry))
	copy(out, registry)
	return out
}

// Lookup returns the pass registered under name
func Lookup(name string) (Pass, bool) {
	for _, p := range registry {
		if p.Name == name {
			return p, true
		}
	}
	return Pass{}, false
}

// Select returns the named passes in run order. No names selects all.
func Select(names []string) ([]Pass, error) {
	if len(names) == 0 {
		return Passes(), nil
	}
	want := make(map[string]bool, len(names))
	for _, name := range names {
		if _, ok := Lookup(name); !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownPass, name)
		}
		want[name] = true
	}
	var out []Pass
	for _, p := range registry {
		if want[p.Name] {
			out = append(out, p)
		}
	}
	return out, nil
}

// Workbooks returns the distinct workbooks the passes read
func Workbooks(passes []Pass) []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range passes {
		for _, wb := range p.Workbooks {
			if !seen[wb] {
				seen[wb] = true
				out = append(out, wb)
			}
		}
	}
	return out
}
