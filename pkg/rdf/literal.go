package rdf

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mentalhealthdb/mhdb/pkg/graph"
)

// DefaultLanguage is the language tag used when none is given
const DefaultLanguage = "en"

// Compact names of the datatypes the ingestion passes emit
const (
	DatatypeAnyURI             = "xsd:anyURI"
	DatatypeGYear              = "xsd:gYear"
	DatatypeNonNegativeInteger = "xsd:nonNegativeInteger"
	DatatypeDecimal            = "xsd:decimal"
	DatatypeString             = "xsd:string"
	DatatypeBoolean            = "xsd:boolean"
	DatatypeRDFSLiteral        = "rdfs:Literal"
)

// TagLiteral renders text as a triple-quoted, language-tagged literal.
// Double quotes become single quotes and backslashes are escaped, so the
// result can never terminate the literal early. Absent text yields "".
func TagLiteral(text, lang string) string {
	text = strings.TrimSpace(text)
	if graph.IsSentinel(text) {
		return ""
	}
	if lang == "" {
		lang = DefaultLanguage
	}
	text = strings.ToValidUTF8(text, "\uFFFD")
	text = strings.ReplaceAll(text, `\`, `\\`)
	text = strings.ReplaceAll(text, `"`, `'`)
	return `"""` + text + `"""@` + lang
}

// TypedLiteral renders `"lex"^^datatype` with the lexical value escaped
// for a short string literal. Absent lex yields "".
func TypedLiteral(lex, datatype string) string {
	lex = strings.TrimSpace(lex)
	if graph.IsSentinel(lex) {
		return ""
	}
	lex = strings.ToValidUTF8(lex, "\uFFFD")
	return `"` + escapeShortString(lex) + `"^^` + datatype
}

// AnyURI renders a link as an xsd:anyURI literal
func AnyURI(link string) string {
	return TypedLiteral(escapeIRI(strings.TrimSpace(link)), DatatypeAnyURI)
}

// Year renders an integral value as an xsd:gYear literal
func Year(v graph.Value) string {
	n, ok := v.Int()
	if !ok || n < 0 {
		return ""
	}
	return TypedLiteral(fmt.Sprintf("%04d", n), DatatypeGYear)
}

// NonNegativeInteger renders an integral value as xsd:nonNegativeInteger
func NonNegativeInteger(v graph.Value) string {
	n, ok := v.Int()
	if !ok || n < 0 {
		return ""
	}
	return TypedLiteral(strconv.FormatInt(n, 10), DatatypeNonNegativeInteger)
}

// Decimal renders a numeric value as xsd:decimal
func Decimal(v graph.Value) string {
	f, ok := v.Float()
	if !ok {
		return ""
	}
	return TypedLiteral(strconv.FormatFloat(f, 'f', -1, 64), DatatypeDecimal)
}

func escapeShortString(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
