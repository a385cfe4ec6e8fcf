package ingest

import (
	"github.com/mentalhealthdb/mhdb/pkg/graph"
	"github.com/mentalhealthdb/mhdb/pkg/rdf"
	"github.com/mentalhealthdb/mhdb/pkg/sheet"
)

// worksheets of the assessments workbook describing cognitive tasks
var taskSheets = []string{
	"tasks", "task_implementations", "task_conditions", "task_contrasts",
	"task_indicators", "task_assertions_indices",
}

// taskNodeColumn holds the Cognitive Atlas node id of a task sheet row
const taskNodeColumn = "cogatlas_node_id"

// taskNode is a row of a task worksheet addressed by node id
type taskNode struct {
	label string
	style rdf.Style
}

// taskRelation maps a Cognitive Atlas relation type to its predicate and
// the naming style of the relation's object
type taskRelation struct {
	predicate string
	style     rdf.Style
	// nodeStyle names the object in the style of the sheet it comes from
	nodeStyle bool
}

var taskRelations = map[string]taskRelation{
	"ASSERTS":           {predicate: ":assertsCognitiveAtlasConcept", style: rdf.StylePascalCase},
	"HASCITATION":       {predicate: ":hasBibliographicCitation", nodeStyle: true},
	"HASCONDITION":      {predicate: ":hasTaskCondition", nodeStyle: true},
	"HASCONTRAST":       {predicate: ":hasTaskContrast", style: rdf.StyleDefault},
	"HASIMPLEMENTATION": {predicate: ":hasTaskImplementation", style: rdf.StyleDefault},
	"HASINDICATOR":      {predicate: ":hasTaskIndicator", style: rdf.StyleDefault},
	"KINDOF":            {predicate: ":isKindOf", style: rdf.StylePascalCase},
	"MEASUREDBY":        {predicate: ":measuredBy", style: rdf.StyleDefault},
	"PARTOF":            {predicate: ":isPartOf", style: rdf.StylePascalCase},
}

func ingestTasks(env *Env, own, shared map[string]*sheet.Table) error {
	tasks := own["tasks"]
	for row := range tasks.Rows {
		name := tasks.Text(row, "name")
		if name == "" {
			continue
		}
		pairs := []graph.Pair{
			graph.P(rdfsSubClassOf, ":Task"),
			graph.P(rdfsLabel, env.Text(name)),
			graph.P(rdfsComment, env.Text(tasks.Text(row, "description"))),
		}
		pairs = append(pairs, aliases(env, tasks, row, "aliases")...)
		env.Store.MergeAll(env.Class(name), pairs...)
	}

	implementations := own["task_implementations"]
	for row := range implementations.Rows {
		name := implementations.Text(row, "implementation")
		if name == "" {
			continue
		}
		subject := env.Instance(name)
		pairs := []graph.Pair{
			graph.P(typeOf, ":TaskImplementation"),
			graph.P(rdfsLabel, env.Text(name)),
			graph.P(rdfsComment, env.Text(implementations.Text(row, "description"))),
			graph.P(hasWebsite, rdf.AnyURI(implementations.Text(row, "link"))),
		}
		owners, err := implementations.ResolveText(row, "indices_task", tasks, "name")
		if err != nil {
			return err
		}
		for _, owner := range owners {
			env.Store.Merge(env.Class(owner), ":hasTaskImplementation", subject)
		}
		projects, err := linked(env, implementations, row, "indices_project", shared["projects"], "project", ":hasProject", rdf.StyleDefault)
		if err != nil {
			return err
		}
		pairs = append(pairs, projects...)
		env.Store.MergeAll(subject, pairs...)
	}

	for _, s := range []struct{ sheet, field, class string }{
		{"task_conditions", "condition", ":TaskCondition"},
		{"task_contrasts", "contrast", ":TaskContrast"},
		{"task_indicators", "indicator", ":TaskIndicator"},
	} {
		t := own[s.sheet]
		for row := range t.Rows {
			name := t.Text(row, s.field)
			if name == "" {
				continue
			}
			env.Store.MergeAll(env.Instance(name),
				graph.P(typeOf, s.class),
				graph.P(rdfsLabel, env.Text(name)),
				graph.P(rdfsComment, env.Text(t.Text(row, "description"))),
			)
		}
	}

	ingestTaskAssertions(env, own)
	return nil
}

// taskNodes indexes every task worksheet row by node id. Earlier sheets
// win when two rows share an id.
func taskNodes(own map[string]*sheet.Table) map[int64]taskNode {
	nodes := make(map[int64]taskNode)
	for _, s := range []struct {
		sheet, field string
		style        rdf.Style
	}{
		{"tasks", "name", rdf.StylePascalCase},
		{"task_implementations", "implementation", rdf.StyleDefault},
		{"task_indicators", "indicator", rdf.StyleDefault},
		{"task_conditions", "condition", rdf.StyleDefault},
		{"task_contrasts", "contrast", rdf.StyleDefault},
	} {
		t := own[s.sheet]
		for row := range t.Rows {
			id, ok := t.Cell(row, taskNodeColumn).Int()
			label := t.Text(row, s.field)
			if !ok || label == "" {
				continue
			}
			if _, dup := nodes[id]; !dup {
				nodes[id] = taskNode{label: label, style: s.style}
			}
		}
	}
	return nodes
}

// ingestTaskAssertions links task sheet rows through the Cognitive Atlas
// relations listed in task_assertions_indices. Relations whose ends are
// not rows of the task sheets, or whose type has no predicate, are skipped.
func ingestTaskAssertions(env *Env, own map[string]*sheet.Table) {
	nodes := taskNodes(own)
	t := own["task_assertions_indices"]
	for row := range t.Rows {
		kind := t.Text(row, "cogatlas_reln_type")
		rel, ok := taskRelations[kind]
		if !ok {
			env.Logger.Debug().Str("relation", kind).Int("row", sheet.SheetRow(row)).Msg("skipping task relation")
			continue
		}
		start, okStart := t.Cell(row, "cogatlas_startNode").Int()
		end, okEnd := t.Cell(row, "cogatlas_endNode").Int()
		if !okStart || !okEnd {
			continue
		}
		from, okFrom := nodes[start]
		to, okTo := nodes[end]
		if !okFrom || !okTo || from.label == to.label {
			continue
		}

		style := rel.style
		if rel.nodeStyle {
			style = to.style
		}
		object := env.Resolver.Resolve(to.label, style)
		if kind == "ASSERTS" {
			env.Store.MergeAll(object,
				graph.P(rdfsSubClassOf, ":CognitiveAtlasConcept"),
				graph.P(rdfsLabel, env.Text(to.label)),
			)
		}
		env.Store.Merge(env.Resolver.Resolve(from.label, from.style), rel.predicate, object)
	}
}
