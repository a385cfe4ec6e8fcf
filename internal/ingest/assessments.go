package ingest

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/mentalhealthdb/mhdb/pkg/graph"
	"github.com/mentalhealthdb/mhdb/pkg/rdf"
	"github.com/mentalhealthdb/mhdb/pkg/sheet"
)

// quotedOption matches `2="often"` in a quoted response option list
var quotedOption = regexp.MustCompile(`[-+]?[0-9]+=".*?"`)

func ingestAssessments(ctx context.Context, env *Env) error {
	names := append([]string{sheetClasses, sheetProperties, "questionnaires", "questions", "response_types", sheetReferences}, taskSheets...)
	own, err := env.Sheets("assessments", names...)
	if err != nil {
		return err
	}
	shared, err := env.Sheets("resources", "people", "licenses", "languages", "projects")
	if err != nil {
		return err
	}
	levels := []string{"disorders"}
	for _, level := range categoryLevels[1:] {
		levels = append(levels, level.sheet)
	}
	disorders, err := env.Sheets("disorders", levels...)
	if err != nil {
		return err
	}
	ingestShared(env, own)

	if err := ingestQuestionnaires(env, own, shared, disorders); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := ingestQuestions(env, own); err != nil {
		return err
	}

	types := own["response_types"]
	for row := range types.Rows {
		name := types.Text(row, "response_type")
		if name == "" {
			continue
		}
		pairs := []graph.Pair{
			graph.P(rdfsSubClassOf, ":ResponseType"),
			graph.P(rdfsLabel, env.Text(name)),
			graph.P(rdfsComment, env.Text(types.Text(row, "definition"))),
		}
		pairs = append(pairs, equivalents(env, types, row, "equivalentClasses")...)
		env.Store.MergeAll(env.Class(name), pairs...)
	}

	if err := ingestTasks(env, own, shared); err != nil {
		return err
	}

	ingestReferences(env, own[sheetReferences])
	return ctx.Err()
}

// questionnaireLink is an index column of the questionnaires worksheet
type questionnaireLink struct {
	column    string
	tables    map[string]*sheet.Table
	sheet     string
	field     string
	predicate string
	style     rdf.Style
}

func ingestQuestionnaires(env *Env, own, shared, disorders map[string]*sheet.Table) error {
	t := own["questionnaires"]
	links := []questionnaireLink{
		{"use_with_assessments", own, "questionnaires", "title", ":useWith", rdf.StyleDefault},
		{"indices_respondent", shared, "people", "person", "schema:audienceType", rdf.StylePascalCase},
		{"indices_subject", shared, "people", "person", "schema:about", rdf.StylePascalCase},
		{"indices_disorder", disorders, "disorders", "disorder", "schema:about", rdf.StylePascalCase},
		{"indices_disorder_category", disorders, "disorder_categories", "disorder_category", "schema:about", rdf.StylePascalCase},
		{"indices_disorder_subcategory", disorders, "disorder_subcategories", "disorder_subcategory", "schema:about", rdf.StylePascalCase},
		{"indices_disorder_subsubcategory", disorders, "disorder_subsubcategories", "disorder_subsubcategory", "schema:about", rdf.StylePascalCase},
		{"indices_reference", own, sheetReferences, "title", isReferencedBy, rdf.StyleDefault},
		{"index_license", shared, "licenses", "license", ":hasLicense", rdf.StylePascalCase},
		{"index_language", shared, "languages", "language", ":hasLanguage", rdf.StylePascalCase},
		{"indices_language_not_in_mhdb", shared, "languages", "language", ":hasLanguage", rdf.StylePascalCase},
	}

	for row := range t.Rows {
		title := t.Text(row, "title")
		if title == "" {
			continue
		}
		pairs := []graph.Pair{
			graph.P(typeOf, ":Questionnaire"),
			graph.P(rdfsLabel, env.Text(title)),
			graph.P(hasTitle, env.Text(title)),
			graph.P(hasAbbreviation, env.Text(t.Text(row, "abbreviation"))),
			graph.P(rdfsComment, env.Text(t.Text(row, "description"))),
			graph.P(hasWebsite, rdf.AnyURI(t.Text(row, "link"))),
			graph.P(hasAuthorList, env.Text(t.Text(row, "authors"))),
			graph.P(":hasPublicationYear", rdf.Year(t.Cell(row, "year"))),
			graph.P(":hasNumberOfQuestions", rdf.NonNegativeInteger(t.Cell(row, "number_of_questions"))),
			graph.P(":takesMinutesToComplete", rdf.Decimal(t.Cell(row, "minutes_to_complete"))),
			graph.P("schema:requiredMinAge", rdf.Decimal(t.Cell(row, "age_min"))),
			graph.P("schema:requiredMaxAge", rdf.Decimal(t.Cell(row, "age_max"))),
		}
		for _, link := range links {
			more, err := linked(env, t, row, link.column, link.tables[link.sheet], link.field, link.predicate, link.style)
			if err != nil {
				return err
			}
			pairs = append(pairs, more...)
		}
		env.Store.MergeAll(env.Instance(title), pairs...)
	}
	return nil
}

// instruction is a pair of instruction columns: the question points at
// an instruction subject that carries the text
type instruction struct {
	column    string
	predicate string
	text      string
	// skip when equal to this column's value
	sameAs string
}

var instructions = []instruction{
	{"digital_instructions_preamble", ":hasInstructionsPreamble", ":hasInstructionsPreambleText", ""},
	{"digital_instructions", ":hasInstructions", ":hasInstructionsText", ""},
	{"paper_instructions_preamble", ":hasPaperInstructionsPreamble", ":hasPaperInstructionsPreambleText", "digital_instructions_preamble"},
	{"paper_instructions", ":hasPaperInstructions", ":hasPaperInstructionsText", "digital_instructions"},
}

func ingestQuestions(env *Env, own map[string]*sheet.Table) error {
	t, questionnaires, responseTypes := own["questions"], own["questionnaires"], own["response_types"]
	for row := range t.Rows {
		question := t.Text(row, "question")
		if question == "" {
			continue
		}
		titles, err := t.ResolveText(row, "index_questionnaire", questionnaires, "title")
		if err != nil {
			return err
		}
		if len(titles) == 0 {
			env.Logger.Debug().Int("row", sheet.SheetRow(row)).Msg("question without questionnaire")
			continue
		}
		title := strings.TrimSpace(titles[0])
		subject := env.Instance(fmt.Sprintf("%s_Q%d", title, env.Counter.Next(title)))

		pairs := []graph.Pair{
			graph.P(typeOf, ":Question"),
			graph.P(rdfsLabel, env.Text(question)),
			graph.P(":hasQuestionText", env.Text(question)),
			graph.P(isReferencedBy, env.Instance(title)),
		}
		for _, in := range instructions {
			text := t.Text(row, in.column)
			if text == "" || (in.sameAs != "" && text == t.Text(row, in.sameAs)) {
				continue
			}
			target := env.Instance(text)
			pairs = append(pairs, graph.P(in.predicate, target))
			env.Store.Merge(target, in.text, env.Text(text))
		}
		kinds, err := linked(env, t, row, "indices_response_type", responseTypes, "response_type", ":hasResponseType", rdf.StylePascalCase)
		if err != nil {
			return err
		}
		pairs = append(pairs, kinds...)
		env.Store.MergeAll(subject, pairs...)

		responseOptions(env, subject, t.Text(row, "response_options"))
	}
	return nil
}

// responseOptions stores a question's response options as an rdf:Seq.
// Options look like `0=never, 1=sometimes` or `0="never", 1="a, b"`.
func responseOptions(env *Env, question, raw string) {
	raw = strings.ReplaceAll(strings.Trim(raw, "-"), "\n", "")
	if strings.TrimSpace(raw) == "" {
		return
	}
	seq := env.Instance(raw)

	var options []string
	if strings.Contains(raw, `"`) {
		options = quotedOption.FindAllString(raw, -1)
	} else {
		options = strings.Split(raw, ",")
	}

	env.Store.Merge(question, ":hasResponseOptions", seq)
	env.Store.Merge(seq, typeOf, "rdf:Seq")
	for i, option := range options {
		_, text, found := strings.Cut(option, "=")
		if !found {
			text = option
		}
		text = strings.Trim(strings.TrimSpace(text), `"`)
		if graph.IsSentinel(text) {
			continue
		}
		response := env.Instance(text)
		env.Store.Merge(response, ":hasResponseOptionText", env.Text(text))
		env.Store.Merge(seq, fmt.Sprintf("rdf:_%d", i+1), response)
	}
}
