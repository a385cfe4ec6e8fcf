package turtle

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/mentalhealthdb/mhdb/pkg/graph"
	"github.com/mentalhealthdb/mhdb/pkg/rdf"
)

// Metadata describes the ontology a document declares
type Metadata struct {
	BaseURI string
	Version string
	Label   string
	Comment string
	// Imports adds an owl:imports statement for every registered namespace
	Imports bool
}

// the header statements use these prefixes
var headerPrefixes = []rdf.Namespace{
	{Prefix: "owl", IRI: rdf.OWLNamespace},
	{Prefix: "rdf", IRI: rdf.RDFNamespace},
	{Prefix: "rdfs", IRI: rdf.RDFSNamespace},
}

// Header renders the prefix declarations, base, optional imports and the
// owl:Ontology statement that open every document
func Header(meta Metadata, ns *rdf.Namespaces) string {
	base := strings.TrimRight(strings.TrimSpace(meta.BaseURI), "#/")

	var b strings.Builder
	fmt.Fprintf(&b, "@prefix : <%s#> .\n", base)
	for _, n := range ns.All() {
		fmt.Fprintf(&b, "@prefix %s: <%s> .\n", n.Prefix, n.IRI)
	}
	for _, n := range headerPrefixes {
		if !ns.Has(n.Prefix) {
			fmt.Fprintf(&b, "@prefix %s: <%s> .\n", n.Prefix, n.IRI)
		}
	}
	fmt.Fprintf(&b, "@base <%s> .\n", base)

	if meta.Imports {
		var imports []string
		for _, n := range ns.All() {
			if n.Prefix == ns.Default().Prefix {
				continue
			}
			imports = append(imports, "<"+n.ImportIRI()+">")
		}
		if len(imports) > 0 {
			fmt.Fprintf(&b, "\n<> owl:imports %s .\n\n", strings.Join(imports, " ,\n\t"))
		}
	}

	lines := []string{fmt.Sprintf("<%s> rdf:type owl:Ontology", base)}
	if meta.Version != "" {
		lines = append(lines,
			fmt.Sprintf("owl:versionIRI <%s/%s>", base, meta.Version),
			"owl:versionInfo "+rdf.TypedLiteral(meta.Version, rdf.DatatypeRDFSLiteral))
	}
	if label := rdf.TypedLiteral(meta.Label, rdf.DatatypeRDFSLiteral); label != "" {
		lines = append(lines, "rdfs:label "+label)
	}
	if comment := rdf.TagLiteral(meta.Comment, rdf.DefaultLanguage); comment != "" {
		lines = append(lines, "rdfs:comment "+comment)
	}
	b.WriteString(strings.Join(lines, " ;\n    "))
	b.WriteString(" .\n\n")

	return b.String()
}

// Document renders a complete Turtle document: header, statements and a
// trailing newline
func Document(meta Metadata, ns *rdf.Namespaces, r graph.Reader) string {
	return Header(meta, ns) + NewWriter(ns.Default().Prefix).Serialize(r) + "\n"
}

// Write streams the document for r to w
func Write(w io.Writer, meta Metadata, ns *rdf.Namespaces, r graph.Reader) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(Document(meta, ns, r)); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to flush document: %w", err)
	}
	return nil
}

// Validate parses doc and returns the number of triples it holds
func Validate(doc string) (int, error) {
	triples, err := rdf.NewTurtleParser(doc).Parse()
	if err != nil {
		return 0, err
	}
	return len(triples), nil
}
