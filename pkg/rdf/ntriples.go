package rdf

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// SerializeNTriples renders triples as N-Triples, one statement per line,
// in input order
func SerializeNTriples(triples []*Triple) string {
	var builder strings.Builder
	_ = WriteNTriples(&builder, triples)
	return builder.String()
}

// WriteNTriples streams triples to w as N-Triples
func WriteNTriples(w io.Writer, triples []*Triple) error {
	for _, triple := range triples {
		if _, err := fmt.Fprintf(w, "%s %s %s .\n",
			serializeTerm(triple.Subject),
			serializeTerm(triple.Predicate),
			serializeTerm(triple.Object)); err != nil {
			return err
		}
	}
	return nil
}

// SortTriples orders triples by their N-Triples rendering, which makes
// two parses of the same document directly comparable
func SortTriples(triples []*Triple) {
	sort.SliceStable(triples, func(i, j int) bool {
		return serializeTriple(triples[i]) < serializeTriple(triples[j])
	})
}

// FormatTerm renders a single term the way N-Triples writes it
func FormatTerm(term Term) string {
	return serializeTerm(term)
}

func serializeTriple(t *Triple) string {
	return serializeTerm(t.Subject) + " " + serializeTerm(t.Predicate) + " " + serializeTerm(t.Object)
}

func serializeTerm(term Term) string {
	switch t := term.(type) {
	case *NamedNode:
		return "<" + t.IRI + ">"
	case *BlankNode:
		return "_:" + t.ID
	case *Literal:
		return serializeLiteral(t)
	default:
		return ""
	}
}

func serializeLiteral(lit *Literal) string {
	escaped := escapeString(lit.Value)

	if lit.Language != "" {
		return fmt.Sprintf(`"%s"@%s`, escaped, strings.ToLower(lit.Language))
	}
	// xsd:string is implicit
	if lit.Datatype != nil && lit.Datatype.IRI != XSDString.IRI {
		return fmt.Sprintf(`"%s"^^<%s>`, escaped, lit.Datatype.IRI)
	}
	return fmt.Sprintf(`"%s"`, escaped)
}

// escapeString applies the N-Triples string escapes: the named escapes
// \t \b \n \r \f \" \\ and \uXXXX for remaining control characters
func escapeString(s string) string {
	var builder strings.Builder
	builder.Grow(len(s))

	for _, r := range s {
		switch r {
		case '\t':
			builder.WriteString(`\t`)
		case '\b':
			builder.WriteString(`\b`)
		case '\n':
			builder.WriteString(`\n`)
		case '\r':
			builder.WriteString(`\r`)
		case '\f':
			builder.WriteString(`\f`)
		case '"':
			builder.WriteString(`\"`)
		case '\\':
			builder.WriteString(`\\`)
		default:
			if r < 0x20 || r == 0x7F || r == 0xFFFE || r == 0xFFFF {
				fmt.Fprintf(&builder, `\u%04X`, r)
			} else {
				builder.WriteRune(r)
			}
		}
	}

	return builder.String()
}
