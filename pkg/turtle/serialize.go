// Package turtle renders a statement store as a Turtle document.
package turtle

import (
	"strings"

	"github.com/mentalhealthdb/mhdb/pkg/graph"
)

// DefaultPrefix is the project's own namespace prefix
const DefaultPrefix = "mhdb"

// Writer renders stores as Turtle. The zero value uses DefaultPrefix.
type Writer struct {
	// Prefix is the default namespace prefix whose None and nan
	// identifiers are dropped at write time.
	Prefix string
}

// NewWriter creates a writer for the given default prefix
func NewWriter(prefix string) *Writer {
	return &Writer{Prefix: prefix}
}

// Serialize renders r with the default prefix
func Serialize(r graph.Reader) string {
	return (&Writer{}).Serialize(r)
}

// Serialize renders every subject of r as one statement block. Subjects,
// predicates and objects are sorted, so equal stores give equal output.
func (w *Writer) Serialize(r graph.Reader) string {
	var b strings.Builder
	first := true

	for _, subject := range r.Subjects() {
		pairs := w.pairs(r, subject)
		if len(pairs) == 0 {
			continue
		}
		if !first {
			b.WriteString("\n\n")
		}
		first = false

		b.WriteString(subject)
		b.WriteByte(' ')
		b.WriteString(strings.Join(pairs, " ;\n\t"))
		b.WriteString(" .")
	}

	return b.String()
}

func (w *Writer) pairs(r graph.Reader, subject string) []string {
	var pairs []string
	for _, predicate := range r.Predicates(subject) {
		for _, object := range r.Objects(subject, predicate) {
			if w.Filtered(object) {
				continue
			}
			pairs = append(pairs, predicate+" "+object)
		}
	}
	return pairs
}

// Filtered reports whether object is dropped at write time
func (w *Writer) Filtered(object string) bool {
	prefix := w.Prefix
	if prefix == "" {
		prefix = DefaultPrefix
	}
	object = strings.TrimSpace(object)
	switch object {
	case "", "None", prefix + ":None", prefix + ":nan":
		return true
	}
	return strings.EqualFold(object, "nan")
}
