package ingest

import (
	"github.com/mentalhealthdb/mhdb/pkg/graph"
	"github.com/mentalhealthdb/mhdb/pkg/rdf"
	"github.com/mentalhealthdb/mhdb/pkg/sheet"
)

// Vocabulary terms in the project's own namespace. The empty prefix is
// bound to the ontology base, which is the default namespace.
const (
	typeOf          = "a"
	rdfsLabel       = "rdfs:label"
	rdfsComment     = "rdfs:comment"
	rdfsSubClassOf  = "rdfs:subClassOf"
	rdfsEquivClass  = "rdfs:equivalentClass"
	owlSameAs       = "owl:sameAs"
	hasWebsite      = ":hasWebsite"
	isReferencedBy  = ":isReferencedBy"
	hasAuthorList   = ":hasAuthorList"
	hasTitle        = ":hasTitle"
	hasAbbreviation = ":hasAbbreviation"
)

// shared worksheets every workbook carries
const (
	sheetClasses    = "Classes"
	sheetProperties = "Properties"
	sheetReferences = "references"
)

// equivalents resolves a comma list of equivalent classes. Each item goes
// through the resolver so unknown prefixes are dropped, not emitted.
func equivalents(env *Env, t *sheet.Table, row int, column string) []graph.Pair {
	var pairs []graph.Pair
	for _, item := range sheet.SplitList(t.Cell(row, column)) {
		pairs = append(pairs, graph.P(rdfsEquivClass, env.Instance(item.String())))
	}
	return pairs
}

// aliases adds an extra label for every comma separated alias
func aliases(env *Env, t *sheet.Table, row int, column string) []graph.Pair {
	var pairs []graph.Pair
	for _, item := range sheet.SplitList(t.Cell(row, column)) {
		pairs = append(pairs, graph.P(rdfsLabel, env.Text(item.String())))
	}
	return pairs
}

// parents links a row to the rows its index column points at, or to a
// fallback class when the column is empty
func parents(env *Env, t *sheet.Table, row int, column string, target *sheet.Table, targetColumn, fallback string) ([]graph.Pair, error) {
	if t.Cell(row, column).IsAbsent() {
		return []graph.Pair{graph.P(rdfsSubClassOf, fallback)}, nil
	}
	names, err := t.ResolveText(row, column, target, targetColumn)
	if err != nil {
		return nil, err
	}
	pairs := make([]graph.Pair, 0, len(names))
	for _, name := range names {
		pairs = append(pairs, graph.P(rdfsSubClassOf, env.Class(name)))
	}
	return pairs, nil
}

// linked resolves an index column to class IRIs under predicate
func linked(env *Env, t *sheet.Table, row int, column string, target *sheet.Table, targetColumn, predicate string, style rdf.Style) ([]graph.Pair, error) {
	names, err := t.ResolveText(row, column, target, targetColumn)
	if err != nil {
		return nil, err
	}
	pairs := make([]graph.Pair, 0, len(names))
	for _, name := range names {
		pairs = append(pairs, graph.P(predicate, env.Resolver.Resolve(name, style)))
	}
	return pairs, nil
}

// ingestClasses handles the Classes worksheet
func ingestClasses(env *Env, t *sheet.Table) {
	for row := range t.Rows {
		subject := env.Instance(t.Text(row, "ClassName"))
		pairs := []graph.Pair{
			graph.P(typeOf, "rdf:Class"),
			graph.P(rdfsLabel, env.Text(t.Text(row, "label"))),
			graph.P(rdfsComment, env.Text(t.Text(row, "definition"))),
			graph.P(owlSameAs, env.Instance(t.Text(row, "sameAs"))),
			graph.P(rdfsSubClassOf, env.Instance(t.Text(row, "subClassOf"))),
		}
		pairs = append(pairs, equivalents(env, t, row, "equivalentClasses")...)
		env.Store.MergeAll(subject, pairs...)
	}
}

// ingestProperties handles the Properties worksheet
func ingestProperties(env *Env, t *sheet.Table) {
	for row := range t.Rows {
		subject := env.Instance(t.Text(row, "property"))
		env.Store.MergeAll(subject,
			graph.P(typeOf, "rdf:Property"),
			graph.P(rdfsLabel, env.Text(t.Text(row, "label"))),
			graph.P("rdfs:domain", env.Instance(t.Text(row, "propertyDomain"))),
			graph.P("rdfs:range", env.Instance(t.Text(row, "propertyRange"))),
			graph.P(rdfsComment, env.Text(t.Text(row, "definition"))),
			graph.P(owlSameAs, env.Instance(t.Text(row, "sameAs"))),
			graph.P("owl:equivalentProperty", env.Instance(t.Text(row, "equivalentProperty"))),
			graph.P("rdfs:subPropertyOf", env.Instance(t.Text(row, "subPropertyOf"))),
		)
	}
}

// ingestReferences handles a references worksheet
func ingestReferences(env *Env, t *sheet.Table) {
	for row := range t.Rows {
		title := t.Text(row, "title")
		if title == "" {
			continue
		}
		env.Store.MergeAll(env.Instance(title),
			graph.P(typeOf, ":BibliographicResource"),
			graph.P(rdfsLabel, env.Text(title)),
			graph.P(hasTitle, env.Text(title)),
			graph.P(hasWebsite, rdf.AnyURI(t.Text(row, "link"))),
			graph.P(hasAuthorList, env.Text(t.Text(row, "authors"))),
			graph.P(":hasPublicationYear", rdf.Year(t.Cell(row, "year"))),
			graph.P(":hasPubMedID", rdf.NonNegativeInteger(t.Cell(row, "PubMedID"))),
		)
	}
}

// ingestShared runs the Classes and Properties rules of a workbook
func ingestShared(env *Env, tables map[string]*sheet.Table) {
	ingestClasses(env, tables[sheetClasses])
	ingestProperties(env, tables[sheetProperties])
}
