package ingest

import (
	"context"

	"github.com/mentalhealthdb/mhdb/pkg/graph"
	"github.com/mentalhealthdb/mhdb/pkg/rdf"
	"github.com/mentalhealthdb/mhdb/pkg/sheet"
)

// disorderQualifier is an index column of the disorders worksheet that
// both links the disorder and extends its label. Two disorders that
// differ only by a qualifier therefore get distinct IRIs.
type disorderQualifier struct {
	column    string
	sheet     string
	field     string
	predicate string
	label     string
	iri       string
}

var disorderQualifiers = []disorderQualifier{
	{"index_diagnostic_specifier", "diagnostic_specifiers", "diagnostic_specifier", ":hasDiagnosticSpecifier", "; specifier: ", " specifier "},
	{"index_diagnostic_inclusion_criterion", "diagnostic_criteria", "diagnostic_criterion", ":hasInclusionCriterion", "; inclusion: ", " inclusion "},
	{"index_diagnostic_inclusion_criterion2", "diagnostic_criteria", "diagnostic_criterion", ":hasInclusionCriterion", ", ", " "},
	{"index_diagnostic_exclusion_criterion", "diagnostic_criteria", "diagnostic_criterion", ":hasExclusionCriterion", "; exclusion: ", " exclusion "},
	{"index_diagnostic_exclusion_criterion2", "diagnostic_criteria", "diagnostic_criterion", ":hasExclusionCriterion", ", ", " "},
	{"index_severity", "severities", "severity", ":hasSeverity", "; severity: ", " severity "},
}

// categoryLevel is one level of the disorder category hierarchy
type categoryLevel struct {
	column string
	sheet  string
	field  string
}

// most specific first
var categoryLevels = []categoryLevel{
	{"index_disorder_subsubsubcategory", "disorder_subsubsubcategories", "disorder_subsubsubcategory"},
	{"index_disorder_subsubcategory", "disorder_subsubcategories", "disorder_subsubcategory"},
	{"index_disorder_subcategory", "disorder_subcategories", "disorder_subcategory"},
	{"index_disorder_category", "disorder_categories", "disorder_category"},
}

// icdCodes lists the code columns and the labels they add
var icdCodes = []struct {
	column    string
	predicate string
	short     string
}{
	{"ICD9CM", ":hasICD9Code", "ICD9"},
	{"ICD10CM", ":hasICD10Code", "ICD10"},
}

func ingestDisorders(ctx context.Context, env *Env) error {
	names := []string{
		sheetClasses, sheetProperties,
		"signs_symptoms", "examples_signs_symptoms",
		"severities", "diagnostic_specifiers", "diagnostic_criteria",
		"disorders", sheetReferences,
	}
	for _, level := range categoryLevels {
		names = append(names, level.sheet)
	}
	tables, err := env.Sheets("disorders", names...)
	if err != nil {
		return err
	}
	ingestShared(env, tables)

	steps := []func(*Env, map[string]*sheet.Table) error{
		ingestSignsSymptoms,
		ingestExampleSignsSymptoms,
		ingestSeverities,
		ingestDiagnosticClasses,
		ingestDisorderRows,
		ingestCategories,
	}
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := step(env, tables); err != nil {
			return err
		}
	}
	ingestReferences(env, tables[sheetReferences])
	return nil
}

func ingestSignsSymptoms(env *Env, tables map[string]*sheet.Table) error {
	t, refs := tables["signs_symptoms"], tables[sheetReferences]
	for row := range t.Rows {
		name := t.Text(row, "sign_symptom")
		if name == "" {
			continue
		}
		pairs := []graph.Pair{graph.P(rdfsLabel, env.Text(name))}
		cited, err := linked(env, t, row, "index_reference", refs, "title", isReferencedBy, rdf.StyleDefault)
		if err != nil {
			return err
		}
		pairs = append(pairs, cited...)
		if gender, ok := t.Cell(row, "index_gender").Int(); ok {
			switch gender {
			case 1:
				pairs = append(pairs, graph.P("schema:epidemiology", ":Female"))
			case 2:
				pairs = append(pairs, graph.P("schema:epidemiology", ":Male"))
			}
		}
		env.Store.MergeAll(env.Class(name), pairs...)
	}
	return nil
}

func ingestExampleSignsSymptoms(env *Env, tables map[string]*sheet.Table) error {
	t, signs := tables["examples_signs_symptoms"], tables["signs_symptoms"]
	for row := range t.Rows {
		name := t.Text(row, "example_sign_symptom")
		if name == "" {
			continue
		}
		pairs, err := linked(env, t, row, "indices_sign_symptom", signs, "sign_symptom", ":isExampleOf", rdf.StylePascalCase)
		if err != nil {
			return err
		}
		pairs = append(pairs, graph.P(rdfsLabel, env.Text(name)))
		env.Store.MergeAll(env.Instance(name), pairs...)
	}
	return nil
}

func ingestSeverities(env *Env, tables map[string]*sheet.Table) error {
	t := tables["severities"]
	for row := range t.Rows {
		name := t.Text(row, "severity")
		if name == "" {
			continue
		}
		parent := env.Instance(t.Text(row, "subClassOf"))
		if parent == "" {
			parent = ":DisorderSeverity"
		}
		pairs := []graph.Pair{
			graph.P(rdfsLabel, env.Text(name)),
			graph.P(rdfsComment, env.Text(t.Text(row, "definition"))),
			graph.P(rdfsSubClassOf, parent),
		}
		pairs = append(pairs, equivalents(env, t, row, "equivalentClasses")...)
		env.Store.MergeAll(env.Class(name), pairs...)
	}
	return nil
}

// ingestDiagnosticClasses handles the specifier and criterion worksheets
func ingestDiagnosticClasses(env *Env, tables map[string]*sheet.Table) error {
	for _, spec := range []struct{ sheet, field, parent string }{
		{"diagnostic_specifiers", "diagnostic_specifier", ":DiagnosticSpecifier"},
		{"diagnostic_criteria", "diagnostic_criterion", ":DiagnosticCriterion"},
	} {
		t := tables[spec.sheet]
		for row := range t.Rows {
			name := t.Text(row, spec.field)
			if name == "" {
				continue
			}
			pairs := []graph.Pair{
				graph.P(rdfsLabel, env.Text(name)),
				graph.P(rdfsSubClassOf, spec.parent),
			}
			pairs = append(pairs, equivalents(env, t, row, "equivalentClasses")...)
			env.Store.MergeAll(env.Class(name), pairs...)
		}
	}
	return nil
}

func ingestDisorderRows(env *Env, tables map[string]*sheet.Table) error {
	t := tables["disorders"]
	for row := range t.Rows {
		name := t.Text(row, "disorder")
		if name == "" {
			continue
		}
		label, iriLabel := name, name

		pairs := equivalents(env, t, row, "equivalentClasses")
		for _, code := range icdCodes {
			value := t.Text(row, code.column)
			if value == "" {
				continue
			}
			pairs = append(pairs, graph.P(code.predicate, env.Resolver.Compact(code.column, value)))
			label += "; " + code.column + ":" + value
			iriLabel += " " + code.short + " " + value
		}
		pairs = append(pairs, graph.P(":hasNote", env.Text(t.Text(row, "note"))))

		for _, q := range disorderQualifiers {
			values, err := t.ResolveText(row, q.column, tables[q.sheet], q.field)
			if err != nil {
				return err
			}
			for _, value := range values {
				pairs = append(pairs, graph.P(q.predicate, env.Class(value)))
				label += q.label + value
				iriLabel += q.iri + value
			}
		}

		parent, err := categoryChain(env, t, row, tables)
		if err != nil {
			return err
		}
		pairs = append(pairs,
			graph.P(rdfsSubClassOf, parent),
			graph.P(rdfsLabel, env.Text(label)),
		)
		env.Store.MergeAll(env.Class(iriLabel), pairs...)
	}
	return nil
}

// categoryChain returns the most specific category of a disorder row and
// links each category in its chain to its parent once per pass
func categoryChain(env *Env, t *sheet.Table, row int, tables map[string]*sheet.Table) (string, error) {
	var chain []string
	for _, level := range categoryLevels {
		if len(chain) == 0 && t.Cell(row, level.column).IsAbsent() {
			continue
		}
		values, err := t.ResolveText(row, level.column, tables[level.sheet], level.field)
		if err != nil {
			return "", err
		}
		if len(values) > 0 {
			if iri := env.Class(values[0]); iri != "" {
				chain = append(chain, iri)
			}
		}
	}
	if len(chain) == 0 {
		return ":Disorder", nil
	}
	for i := 0; i+1 < len(chain); i++ {
		if env.Links.Mark(chain[i]) {
			env.Store.Merge(chain[i], rdfsSubClassOf, chain[i+1])
		}
	}
	return chain[0], nil
}

// ingestCategories handles the four category worksheets
func ingestCategories(env *Env, tables map[string]*sheet.Table) error {
	for _, level := range categoryLevels {
		t := tables[level.sheet]
		for row := range t.Rows {
			name := t.Text(row, level.field)
			if name == "" {
				continue
			}
			pairs := []graph.Pair{
				graph.P(rdfsLabel, env.Text(name)),
				graph.P(rdfsSubClassOf, ":Disorder"),
			}
			pairs = append(pairs, equivalents(env, t, row, "equivalentClasses")...)
			for _, code := range icdCodes {
				pairs = append(pairs, graph.P(code.predicate, env.Resolver.Compact(code.column, t.Text(row, code.column))))
			}
			env.Store.MergeAll(env.Class(name), pairs...)
		}
	}
	return nil
}
