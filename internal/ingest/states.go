package ingest

import (
	"context"

	"github.com/mentalhealthdb/mhdb/pkg/graph"
	"github.com/mentalhealthdb/mhdb/pkg/rdf"
)

func ingestStates(ctx context.Context, env *Env) error {
	tables, err := env.Sheets("states", sheetClasses, sheetProperties, "states", "state_types")
	if err != nil {
		return err
	}
	ingestShared(env, tables)

	states, types := tables["states"], tables["state_types"]
	for row := range states.Rows {
		name := states.Text(row, "state")
		if name == "" {
			continue
		}
		pairs := []graph.Pair{
			graph.P(rdfsSubClassOf, "m3-lite:DomainOfInterest"),
			graph.P(rdfsLabel, env.Text(name)),
		}
		domains, err := linked(env, states, row, "indices_state_type", types, "state_type", ":hasDomainType", rdf.StylePascalCase)
		if err != nil {
			return err
		}
		categories, err := linked(env, states, row, "indices_state_category", states, "state", rdfsSubClassOf, rdf.StylePascalCase)
		if err != nil {
			return err
		}
		pairs = append(pairs, domains...)
		pairs = append(pairs, categories...)
		env.Store.MergeAll(env.Class(name), pairs...)
	}

	for row := range types.Rows {
		name := types.Text(row, "state_type")
		env.Store.MergeAll(env.Class(name),
			graph.P(rdfsSubClassOf, ":DomainType"),
			graph.P(rdfsLabel, env.Text(name)),
		)
	}
	return ctx.Err()
}
