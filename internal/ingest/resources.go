package ingest

import (
	"context"

	"github.com/mentalhealthdb/mhdb/pkg/graph"
	"github.com/mentalhealthdb/mhdb/pkg/rdf"
	"github.com/mentalhealthdb/mhdb/pkg/sheet"
)

func ingestResources(ctx context.Context, env *Env) error {
	tables, err := env.Sheets("resources", sheetClasses, sheetProperties, "people", "languages", "licenses", sheetReferences)
	if err != nil {
		return err
	}
	ingestShared(env, tables)

	people := tables["people"]
	for row := range people.Rows {
		name := people.Text(row, "person")
		if name == "" {
			continue
		}
		pairs, err := parents(env, people, row, "indices_person", people, "person", ":PersonType")
		if err != nil {
			return err
		}
		pairs = append(pairs,
			graph.P(rdfsLabel, env.Text(name)),
			graph.P(rdfsComment, env.Text(people.Text(row, "definition"))),
			graph.P(hasWebsite, rdf.AnyURI(people.Text(row, "link_definition"))),
		)
		pairs = append(pairs, aliases(env, people, row, "aliases")...)
		pairs = append(pairs, equivalents(env, people, row, "equivalentClasses")...)
		env.Store.MergeAll(env.Class(name), pairs...)
	}

	for _, spec := range []struct{ sheet, field, parents, fallback string }{
		{"languages", "language", "index_language", ":Language"},
		{"licenses", "license", "indices_license", ":License"},
	} {
		if err := ingestTaxonomy(env, tables[spec.sheet], spec.field, spec.parents, spec.fallback); err != nil {
			return err
		}
	}

	ingestReferences(env, tables[sheetReferences])
	return ctx.Err()
}

// ingestTaxonomy handles a worksheet of classes whose parents are rows of
// the same worksheet
func ingestTaxonomy(env *Env, t *sheet.Table, field, parentColumn, fallback string) error {
	for row := range t.Rows {
		name := t.Text(row, field)
		if name == "" {
			continue
		}
		pairs, err := parents(env, t, row, parentColumn, t, field, fallback)
		if err != nil {
			return err
		}
		pairs = append(pairs, graph.P(rdfsLabel, env.Text(name)))
		pairs = append(pairs, equivalents(env, t, row, "equivalentClasses")...)
		env.Store.MergeAll(env.Class(name), pairs...)
	}
	return nil
}
