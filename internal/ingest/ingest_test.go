package ingest

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mentalhealthdb/mhdb/internal/config"
	"github.com/mentalhealthdb/mhdb/internal/metrics"
	"github.com/mentalhealthdb/mhdb/pkg/graph"
	"github.com/mentalhealthdb/mhdb/pkg/rdf"
	"github.com/mentalhealthdb/mhdb/pkg/sheet"
	"github.com/mentalhealthdb/mhdb/pkg/turtle"
)

var workbookSheets = map[string][]string{
	"states":      {"Classes", "Properties", "states", "state_types"},
	"disorders":   {"Classes", "Properties", "signs_symptoms", "examples_signs_symptoms", "severities", "diagnostic_specifiers", "diagnostic_criteria", "disorders", "disorder_categories", "disorder_subcategories", "disorder_subsubcategories", "disorder_subsubsubcategories", "references"},
	"sensors":     {"Classes", "Properties", "sensors", "measurands", "scales"},
	"resources":   {"Classes", "Properties", "people", "languages", "licenses", "references", "guide_types", "guides", "treatments", "project_types", "projects", "feature_types", "customizations", "privacy_and_data", "operating_systems", "costs", "organization_types", "groups"},
	"assessments": {"Classes", "Properties", "questionnaires", "questions", "response_types", "references", "tasks", "task_implementations", "task_conditions", "task_contrasts", "task_indicators", "task_assertions_indices"},
}

// emptyBooks returns every workbook with empty worksheets
func emptyBooks() map[string]*sheet.Workbook {
	books := make(map[string]*sheet.Workbook, len(workbookSheets))
	for name, sheets := range workbookSheets {
		wb := sheet.NewWorkbook(name)
		for _, s := range sheets {
			wb.Add(sheet.NewTable(s, nil, nil))
		}
		books[name] = wb
	}
	return books
}

func table(name string, header []string, rows ...[]string) *sheet.Table {
	return sheet.NewTable(name, header, rows)
}

func newTestRunner(t *testing.T, names ...string) *Runner {
	t.Helper()
	ns, err := config.Default().BuildNamespaces()
	require.NoError(t, err)
	passes, err := Select(names)
	require.NoError(t, err)
	return NewRunner(passes, rdf.NewResolver(ns, zerolog.Nop()), zerolog.Nop())
}

func TestDisordersScenario(t *testing.T) {
	books := emptyBooks()
	books["disorders"].Add(table("disorders",
		[]string{"index", "disorder", "equivalentClasses", "ICD9CM", "ICD10CM"},
		[]string{"1", "major depressive disorder", "health-lifesci:MajorDepressiveDisorder, schema:MedicalCondition", "296.20", ""},
		[]string{"2", "generalized anxiety disorder", "", "", ""},
		[]string{"3", "insomnia", "", "", "G47.00"},
	))

	runner := newTestRunner(t, "disorders")
	store := graph.New()
	require.NoError(t, runner.Run(context.Background(), books, store))

	assert.Equal(t, 3, store.SubjectCount())

	mdd := "mhdb:MajorDepressiveDisorderICD9296.20"
	assert.Equal(t,
		[]string{"health-lifesci:MajorDepressiveDisorder", "schema:MedicalCondition"},
		store.Objects(mdd, "rdfs:equivalentClass"))
	assert.True(t, store.Has(mdd, ":hasICD9Code", "ICD9CM:296.20"))
	assert.True(t, store.Has(mdd, "rdfs:label", `"""major depressive disorder; ICD9CM:296.20"""@en`))
	assert.True(t, store.Has(mdd, "rdfs:subClassOf", ":Disorder"))

	assert.True(t, store.Has("mhdb:GeneralizedAnxietyDisorder", "rdfs:subClassOf", ":Disorder"))
	assert.True(t, store.Has("mhdb:InsomniaICD10G47.00", ":hasICD10Code", "ICD10CM:G47.00"))

	cfg := config.Default()
	ns, err := cfg.BuildNamespaces()
	require.NoError(t, err)
	doc := turtle.Document(cfg.Metadata(), ns, store)
	_, err = turtle.Validate(doc)
	require.NoError(t, err)
}

func TestDisorderQualifiersAndCategories(t *testing.T) {
	books := emptyBooks()
	wb := books["disorders"]
	wb.Add(table("severities", []string{"index", "severity"}, []string{"1", "mild"}))
	wb.Add(table("disorder_categories", []string{"index", "disorder_category"}, []string{"1", "anxiety disorders"}))
	wb.Add(table("disorder_subcategories", []string{"index", "disorder_subcategory"}, []string{"1", "panic disorders"}))
	wb.Add(table("disorders",
		[]string{"index", "disorder", "index_severity", "index_disorder_subcategory", "index_disorder_category"},
		[]string{"1", "panic disorder", "1", "1", "1"},
		[]string{"2", "agoraphobia", "", "1", "1"},
	))

	runner := newTestRunner(t, "disorders")
	store := graph.New()
	require.NoError(t, runner.Run(context.Background(), books, store))

	pd := "mhdb:PanicDisorderSeverityMild"
	assert.True(t, store.Has(pd, ":hasSeverity", "mhdb:Mild"))
	assert.True(t, store.Has(pd, "rdfs:subClassOf", "mhdb:PanicDisorders"))
	assert.True(t, store.Has(pd, "rdfs:label", `"""panic disorder; severity: mild"""@en`))
	assert.True(t, store.Has("mhdb:Agoraphobia", "rdfs:subClassOf", "mhdb:PanicDisorders"))

	assert.Equal(t, []string{":Disorder", "mhdb:AnxietyDisorders"}, store.Objects("mhdb:PanicDisorders", "rdfs:subClassOf"))
	assert.Equal(t, []string{":Disorder"}, store.Objects("mhdb:AnxietyDisorders", "rdfs:subClassOf"))
	assert.True(t, store.Has("mhdb:Mild", "rdfs:subClassOf", ":DisorderSeverity"))
}

func TestUnresolvedIndexFailsPass(t *testing.T) {
	books := emptyBooks()
	books["disorders"].Add(table("disorders",
		[]string{"index", "disorder", "index_severity"},
		[]string{"1", "panic disorder", "7"},
	))

	err := newTestRunner(t, "disorders").Run(context.Background(), books, graph.New())
	require.Error(t, err)

	var perr *PassError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "disorders", perr.Pass)
	assert.Equal(t, "disorders", perr.Sheet)
	assert.Equal(t, 2, perr.Row)
	assert.ErrorIs(t, err, sheet.ErrUnresolvedIndex)
	assert.Equal(t, `pass disorders: sheet disorders row 2: column index_severity: unresolved index: "7" in sheet severities`, err.Error())
}

func TestMissingInputs(t *testing.T) {
	books := emptyBooks()
	delete(books, "states")
	err := newTestRunner(t, "states").Run(context.Background(), books, graph.New())
	assert.ErrorIs(t, err, ErrMissingWorkbook)

	books = emptyBooks()
	books["sensors"] = sheet.NewWorkbook("sensors", sheet.NewTable("Classes", nil, nil))
	err = newTestRunner(t, "sensors").Run(context.Background(), books, graph.New())
	assert.ErrorIs(t, err, sheet.ErrSheetNotFound)
	assert.Contains(t, err.Error(), "pass sensors: ")
}

func TestQuestionsAndQuestionnaires(t *testing.T) {
	books := emptyBooks()
	books["resources"].Add(table("people", []string{"index", "person"}, []string{"1", "patient"}))
	books["assessments"].Add(table("questionnaires",
		[]string{"index", "title", "number_of_questions", "year", "indices_respondent"},
		[]string{"1", "Patient Health Questionnaire", "9", "2001", "1"},
	))
	books["assessments"].Add(table("questions",
		[]string{"index", "question", "index_questionnaire", "response_options", "digital_instructions"},
		[]string{"1", "Little interest or pleasure in doing things", "1", "0=not at all, 1=several days", "Over the last 2 weeks"},
		[]string{"2", "Feeling down", "1", "", ""},
	))

	store := graph.New()
	require.NoError(t, newTestRunner(t, "assessments").Run(context.Background(), books, store))

	qn := "mhdb:Patient_Health_Questionnaire"
	assert.True(t, store.Has(qn, "a", ":Questionnaire"))
	assert.True(t, store.Has(qn, ":hasNumberOfQuestions", `"9"^^xsd:nonNegativeInteger`))
	assert.True(t, store.Has(qn, ":hasPublicationYear", `"2001"^^xsd:gYear`))
	assert.True(t, store.Has(qn, "schema:audienceType", "mhdb:Patient"))

	q1, q2 := qn+"_Q1", qn+"_Q2"
	assert.True(t, store.Has(q1, ":isReferencedBy", qn))
	assert.True(t, store.Has(q2, ":hasQuestionText", `"""Feeling down"""@en`))
	assert.True(t, store.Has(q1, ":hasInstructions", "mhdb:Over_the_last_2_weeks"))
	assert.True(t, store.Has("mhdb:Over_the_last_2_weeks", ":hasInstructionsText", `"""Over the last 2 weeks"""@en`))

	seq := "mhdb:0not_at_all_1several_days"
	assert.True(t, store.Has(q1, ":hasResponseOptions", seq))
	assert.True(t, store.Has(seq, "a", "rdf:Seq"))
	assert.True(t, store.Has(seq, "rdf:_1", "mhdb:not_at_all"))
	assert.True(t, store.Has(seq, "rdf:_2", "mhdb:several_days"))
	assert.True(t, store.Has("mhdb:several_days", ":hasResponseOptionText", `"""several days"""@en`))
}

func TestQuotedResponseOptions(t *testing.T) {
	ns, err := config.Default().BuildNamespaces()
	require.NoError(t, err)
	env := &Env{Store: graph.New(), Resolver: rdf.NewResolver(ns, zerolog.Nop()), Language: "en"}

	responseOptions(env, "mhdb:Q", `1="yes, often", 2="no"`)
	seqs := env.Store.Objects("mhdb:Q", ":hasResponseOptions")
	require.Len(t, seqs, 1)
	assert.Equal(t, []string{"mhdb:yes_often"}, env.Store.Objects(seqs[0], "rdf:_1"))
	assert.Equal(t, []string{"mhdb:no"}, env.Store.Objects(seqs[0], "rdf:_2"))
}

func TestSensorsPass(t *testing.T) {
	books := emptyBooks()
	books["sensors"].Add(table("sensors", []string{"index", "sensor", "aliases"}, []string{"1", "accelerometer", "g-sensor"}))
	books["sensors"].Add(table("measurands",
		[]string{"index", "measurand", "sensor_type", "indices_sensor"},
		[]string{"1", "motion", "motion sensor", "1"},
	))
	books["sensors"].Add(table("scales", []string{"index", "scale", "indices_scale"},
		[]string{"1", "ordinal scale", ""},
		[]string{"2", "likert scale", "1"},
	))

	store := graph.New()
	require.NoError(t, newTestRunner(t, "sensors").Run(context.Background(), books, store))

	assert.Equal(t, []string{":SensingDevice", "mhdb:MotionSensor"}, store.Objects("mhdb:Accelerometer", "rdfs:subClassOf"))
	assert.True(t, store.Has("mhdb:Accelerometer", "rdfs:label", `"""g-sensor"""@en`))
	assert.True(t, store.Has("mhdb:Motion", "rdfs:subClassOf", ":Measurand"))
	assert.True(t, store.Has("mhdb:MotionSensor", "rdfs:subClassOf", ":SensingDevice"))
	assert.True(t, store.Has("mhdb:OrdinalScale", "rdfs:subClassOf", ":Scale"))
	assert.Equal(t, []string{"mhdb:OrdinalScale"}, store.Objects("mhdb:LikertScale", "rdfs:subClassOf"))
}

func TestStatesPass(t *testing.T) {
	books := emptyBooks()
	books["states"].Add(table("states",
		[]string{"index", "state", "indices_state_type", "indices_state_category"},
		[]string{"1", "emotion", "1", ""},
		[]string{"2", "sadness", "1", "1"},
	))
	books["states"].Add(table("state_types", []string{"index", "state_type"}, []string{"1", "affective state"}))

	store := graph.New()
	require.NoError(t, newTestRunner(t, "states").Run(context.Background(), books, store))

	assert.True(t, store.Has("mhdb:Sadness", "rdfs:subClassOf", "mhdb:Emotion"))
	assert.True(t, store.Has("mhdb:Sadness", "rdfs:subClassOf", "m3-lite:DomainOfInterest"))
	assert.True(t, store.Has("mhdb:Emotion", ":hasDomainType", "mhdb:AffectiveState"))
	assert.True(t, store.Has("mhdb:AffectiveState", "rdfs:subClassOf", ":DomainType"))
}

func TestResourcesPassAndSharedSheets(t *testing.T) {
	books := emptyBooks()
	wb := books["resources"]
	wb.Add(table("Classes",
		[]string{"ClassName", "label", "equivalentClasses"},
		[]string{"Disorder", "disorder", "foo:Bar, schema:MedicalCondition"},
	))
	wb.Add(table("Properties",
		[]string{"property", "label", "propertyDomain"},
		[]string{"hasSeverity", "has severity", "Disorder"},
	))
	wb.Add(table("people", []string{"index", "person", "indices_person"},
		[]string{"1", "patient", ""},
		[]string{"2", "adolescent patient", "1"},
	))
	wb.Add(table("licenses", []string{"index", "license"}, []string{"1", "CC-BY"}))
	wb.Add(table("references",
		[]string{"index", "title", "link", "year", "PubMedID"},
		[]string{"1", "DSM-5", "https://www.psychiatry.org/dsm5", "2013", "23456"},
	))

	runner := newTestRunner(t, "resources")
	store := graph.New()
	require.NoError(t, runner.Run(context.Background(), books, store))

	assert.True(t, store.Has("mhdb:Disorder", "a", "rdf:Class"))
	assert.Equal(t, []string{"schema:MedicalCondition"}, store.Objects("mhdb:Disorder", "rdfs:equivalentClass"))
	assert.Equal(t, 1, runner.Resolver.Unknown()["foo"])
	assert.True(t, store.Has("mhdb:hasSeverity", "rdfs:domain", "mhdb:Disorder"))

	assert.True(t, store.Has("mhdb:Patient", "rdfs:subClassOf", ":PersonType"))
	assert.True(t, store.Has("mhdb:AdolescentPatient", "rdfs:subClassOf", "mhdb:Patient"))
	assert.True(t, store.Has("mhdb:CCBY", "rdfs:subClassOf", ":License"))

	assert.True(t, store.Has("mhdb:DSM-5", ":hasWebsite", `"https://www.psychiatry.org/dsm5"^^xsd:anyURI`))
	assert.True(t, store.Has("mhdb:DSM-5", ":hasPublicationYear", `"2013"^^xsd:gYear`))
	assert.True(t, store.Has("mhdb:DSM-5", ":hasPubMedID", `"23456"^^xsd:nonNegativeInteger`))
}

func TestRunnerMetricsAndCancel(t *testing.T) {
	books := emptyBooks()
	books["states"].Add(table("state_types", []string{"index", "state_type"}, []string{"1", "affective state"}))

	runner := newTestRunner(t, "states")
	runner.Metrics = metrics.New()
	store := graph.New()
	require.NoError(t, runner.Run(context.Background(), books, store))

	assert.Equal(t, float64(store.Len()), testutil.ToFloat64(runner.Metrics.TriplesAdded.WithLabelValues("states")))
	assert.Equal(t, float64(store.Len()), testutil.ToFloat64(runner.Metrics.StoreTriples))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := runner.Run(ctx, books, graph.New())
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestSelect(t *testing.T) {
	all, err := Select(nil)
	require.NoError(t, err)
	assert.Len(t, all, 6)

	some, err := Select([]string{"assessments", "states"})
	require.NoError(t, err)
	require.Len(t, some, 2)
	assert.Equal(t, "states", some[0].Name)
	assert.Equal(t, "assessments", some[1].Name)

	_, err = Select([]string{"nope"})
	assert.ErrorIs(t, err, ErrUnknownPass)

	assert.Equal(t, []string{"states", "disorders", "sensors", "resources", "assessments"}, Workbooks(Passes()))

	projects, err := Select([]string{"projects"})
	require.NoError(t, err)
	assert.Equal(t, []string{"resources", "disorders"}, Workbooks(projects))
}

func TestPassErrorMessage(t *testing.T) {
	err := newPassError("states", errors.New("boom"))
	assert.Equal(t, "pass states: boom", err.Error())
}

func requireValidDocument(t *testing.T, store *graph.Store) {
	t.Helper()
	cfg := config.Default()
	ns, err := cfg.BuildNamespaces()
	require.NoError(t, err)
	_, err = turtle.Validate(turtle.Document(cfg.Metadata(), ns, store))
	require.NoError(t, err)
}

func TestGuidesAndTreatments(t *testing.T) {
	books := emptyBooks()
	wb := books["resources"]
	wb.Add(table("guide_types", []string{"index", "guide_type", "subClassOf"}, []string{"1", "parenting guide", ""}))
	wb.Add(table("people", []string{"index", "person"}, []string{"1", "parent"}))
	wb.Add(table("languages", []string{"index", "language"}, []string{"1", "English"}))
	wb.Add(table("licenses", []string{"index", "license"}, []string{"1", "open license"}))
	wb.Add(table("treatments",
		[]string{"index", "treatment", "indices_treatment", "aliases", "link_definition"},
		[]string{"1", "psychotherapy", "", "talk therapy", "https://example.org/psychotherapy"},
		[]string{"2", "cognitive behavioral therapy", "1", "", ""},
	))
	wb.Add(table("guides",
		[]string{"index", "title", "link", "authors", "publisher", "pubdate", "indices_guide_type", "index_gender", "indices_audience", "index_subject_treatment", "index_language_in_mhdb", "index_license"},
		[]string{"1", "Helping your child", "https://example.org/guide", "Smith", "Child Mind Institute", "2019", "1", "1", "1", "2", "1", "1"},
	))

	store := graph.New()
	require.NoError(t, newTestRunner(t, "projects").Run(context.Background(), books, store))

	assert.True(t, store.Has("mhdb:ParentingGuide", "rdfs:subClassOf", ":ReferenceType"))

	guide := "mhdb:Helping_your_child"
	assert.True(t, store.Has(guide, "a", ":BibliographicResource"))
	assert.True(t, store.Has(guide, ":hasReferenceType", "mhdb:ParentingGuide"))
	assert.True(t, store.Has(guide, ":hasAudienceType", "mhdb:Parent"))
	assert.Equal(t, []string{":Female", "mhdb:CognitiveBehavioralTherapy"}, store.Objects(guide, ":isAbout"))
	assert.True(t, store.Has(guide, ":hasLanguage", "mhdb:English"))
	assert.True(t, store.Has(guide, ":hasLicense", "mhdb:OpenLicense"))
	assert.True(t, store.Has(guide, ":hasPublisher", "mhdb:Child_Mind_Institute"))
	assert.True(t, store.Has(guide, ":hasPublicationDate", `"""2019"""@en`))

	assert.True(t, store.Has("mhdb:Psychotherapy", "rdfs:subClassOf", ":Treatment"))
	assert.True(t, store.Has("mhdb:Psychotherapy", "rdfs:label", `"""talk therapy"""@en`))
	assert.True(t, store.Has("mhdb:Psychotherapy", ":hasWebsite", `"https://example.org/psychotherapy"^^xsd:anyURI`))
	assert.Equal(t, []string{"mhdb:Psychotherapy"}, store.Objects("mhdb:CognitiveBehavioralTherapy", "rdfs:subClassOf"))

	requireValidDocument(t, store)
}

func TestProjectsAndGroups(t *testing.T) {
	books := emptyBooks()
	wb := books["resources"]
	wb.Add(table("project_types", []string{"index", "project_type", "indices_project_type", "definition"},
		[]string{"1", "app", "", ""},
		[]string{"2", "mood tracker", "1", "Tracks mood"},
	))
	wb.Add(table("costs", []string{"index", "cost"}, []string{"1", "free"}))
	wb.Add(table("operating_systems", []string{"index", "operating_system"}, []string{"1", "android"}))
	wb.Add(table("privacy_and_data", []string{"index", "privacy_and_data", "index_privacy_and_data"}, []string{"1", "encryption", ""}))
	wb.Add(table("feature_types", []string{"index", "feature_type"}, []string{"1", "customization"}))
	wb.Add(table("customizations", []string{"index", "customization", "indices_customization", "index_feature_type"}, []string{"1", "themes", "", "1"}))
	wb.Add(table("organization_types", []string{"index", "organization_type"}, []string{"1", "nonprofit"}))
	wb.Add(table("groups",
		[]string{"index", "group", "organization", "member", "link", "abbreviation", "index_organization_type"},
		[]string{"1", "research lab", "Stanford", "Jane Doe", "", "", "1"},
		[]string{"2", "", "Mozilla", "", "https://mozilla.org", "MF", "1"},
	))
	wb.Add(table("people", []string{"index", "person"}, []string{"1", "patient"}))
	wb.Add(table("languages", []string{"index", "language"}, []string{"1", "English"}))
	wb.Add(table("references", []string{"index", "title"}, []string{"1", "Mood apps review"}))
	wb.Add(table("projects",
		[]string{"index", "project", "description", "indices_project_type", "indices_group", "indices_people_users", "indices_cost", "indices_operating_system", "indices_privacy_and_data", "indices_languages", "indices_compatible_projects", "indices_disorders", "indices_reference", "dead"},
		[]string{"1", "MoodKit", "A mood app", "2", "1, 2", "1", "1", "1", "1", "1", "2", "1", "1", "1"},
		[]string{"2", "Daylio", "", "1", "", "", "", "", "", "", "", "", "", ""},
	))
	books["disorders"].Add(table("disorders", []string{"index", "disorder"}, []string{"1", "depression"}))

	store := graph.New()
	require.NoError(t, newTestRunner(t, "projects").Run(context.Background(), books, store))

	assert.True(t, store.Has("mhdb:App", "rdfs:subClassOf", ":ProjectCategory"))
	assert.True(t, store.Has("mhdb:MoodTracker", "rdfs:subClassOf", "mhdb:App"))
	assert.True(t, store.Has("mhdb:MoodTracker", "rdfs:comment", `"""Tracks mood"""@en`))

	p := "mhdb:MoodKit"
	assert.True(t, store.Has(p, "a", ":Project"))
	assert.True(t, store.Has(p, ":hasProjectCategory", "mhdb:MoodTracker"))
	assert.Equal(t, []string{"mhdb:Mozilla", "mhdb:research_lab_Stanford"}, store.Objects(p, ":isMaintainedByGroup"))
	assert.True(t, store.Has(p, ":isUsedBy", "mhdb:Patient"))
	assert.True(t, store.Has(p, ":hasCostType", "mhdb:Free"))
	assert.True(t, store.Has(p, ":usesOperatingSystem", "mhdb:Android"))
	assert.True(t, store.Has(p, ":hasDataPrivacyFeature", "mhdb:Encryption"))
	assert.True(t, store.Has(p, ":hasLanguage", "mhdb:English"))
	assert.True(t, store.Has(p, ":hasCompatibleProject", "mhdb:Daylio"))
	assert.True(t, store.Has(p, ":isAbout", "mhdb:Depression"))
	assert.True(t, store.Has(p, ":isReferencedBy", "mhdb:Mood_apps_review"))
	assert.True(t, store.Has(p, ":isMoribund", `"true"^^xsd:boolean`))
	assert.Empty(t, store.Objects("mhdb:Daylio", ":isMoribund"))

	group := "mhdb:research_lab_Stanford"
	assert.True(t, store.Has(group, "a", ":Group"))
	assert.True(t, store.Has(group, ":isGroupMemberOf", "mhdb:Stanford"))
	assert.True(t, store.Has(group, ":hasMember", "mhdb:Jane_Doe"))
	assert.True(t, store.Has(group, ":hasOrganizationType", "mhdb:Nonprofit"))
	assert.True(t, store.Has("mhdb:Stanford", "a", ":Organization"))
	assert.True(t, store.Has("mhdb:Jane_Doe", "a", ":Person"))
	assert.True(t, store.Has("mhdb:Mozilla", "a", ":Organization"))
	assert.True(t, store.Has("mhdb:Mozilla", ":hasAbbreviation", `"""MF"""@en`))

	assert.True(t, store.Has("mhdb:Free", "a", ":CostType"))
	assert.True(t, store.Has("mhdb:Themes", "a", ":CustomizationFeature"))
	assert.True(t, store.Has("mhdb:Themes", ":hasFeatureType", "mhdb:Customization"))
	assert.True(t, store.Has("mhdb:Encryption", ":hasFeatureType", "mhdb:DataPrivacy"))

	requireValidDocument(t, store)
}

func TestProjectsUnresolvedGroup(t *testing.T) {
	books := emptyBooks()
	books["resources"].Add(table("projects", []string{"index", "project", "indices_group"}, []string{"1", "MoodKit", "4"}))

	err := newTestRunner(t, "projects").Run(context.Background(), books, graph.New())
	var perr *PassError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "projects", perr.Sheet)
	assert.ErrorIs(t, err, sheet.ErrUnresolvedIndex)
}

func TestTasksSection(t *testing.T) {
	books := emptyBooks()
	books["resources"].Add(table("projects", []string{"index", "project"}, []string{"1", "MoodKit"}))
	wb := books["assessments"]
	wb.Add(table("tasks", []string{"index", "name", "description", "aliases", "cogatlas_node_id"},
		[]string{"1", "stroop task", "Color naming", "color-word task", "101"},
		[]string{"2", "flanker task", "", "", "102"},
	))
	wb.Add(table("task_implementations", []string{"index", "implementation", "description", "link", "indices_task", "indices_project", "cogatlas_node_id"},
		[]string{"1", "PsyToolkit stroop", "", "https://example.org/stroop", "1", "1", "201"},
	))
	wb.Add(table("task_conditions", []string{"index", "condition", "description", "cogatlas_node_id"}, []string{"1", "incongruent", "", "301"}))
	wb.Add(table("task_contrasts", []string{"index", "contrast", "cogatlas_node_id"}, []string{"1", "incongruent minus congruent", "401"}))
	wb.Add(table("task_indicators", []string{"index", "indicator", "cogatlas_node_id"}, []string{"1", "response time", "501"}))
	wb.Add(table("task_assertions_indices", []string{"cogatlas_reln_type", "cogatlas_startNode", "cogatlas_endNode"},
		[]string{"HASCONDITION", "101", "301"},
		[]string{"HASCONTRAST", "101", "401"},
		[]string{"HASINDICATOR", "101", "501"},
		[]string{"HASIMPLEMENTATION", "101", "201"},
		[]string{"KINDOF", "102", "101"},
		[]string{"ASSERTS", "102", "501"},
		[]string{"ISA", "101", "102"},
		[]string{"HASCONDITION", "101", "999"},
		[]string{"PARTOF", "101", "101"},
	))

	store := graph.New()
	require.NoError(t, newTestRunner(t, "assessments").Run(context.Background(), books, store))

	stroop := "mhdb:StroopTask"
	assert.True(t, store.Has(stroop, "rdfs:subClassOf", ":Task"))
	assert.True(t, store.Has(stroop, "rdfs:label", `"""color-word task"""@en`))
	assert.True(t, store.Has(stroop, "rdfs:comment", `"""Color naming"""@en`))

	impl := "mhdb:PsyToolkit_stroop"
	assert.True(t, store.Has(impl, "a", ":TaskImplementation"))
	assert.True(t, store.Has(impl, ":hasProject", "mhdb:MoodKit"))
	assert.Equal(t, []string{impl}, store.Objects(stroop, ":hasTaskImplementation"))

	assert.True(t, store.Has("mhdb:incongruent", "a", ":TaskCondition"))
	assert.True(t, store.Has(stroop, ":hasTaskCondition", "mhdb:incongruent"))
	assert.True(t, store.Has(stroop, ":hasTaskContrast", "mhdb:incongruent_minus_congruent"))
	assert.True(t, store.Has(stroop, ":hasTaskIndicator", "mhdb:response_time"))
	assert.True(t, store.Has("mhdb:FlankerTask", ":isKindOf", stroop))

	assert.True(t, store.Has("mhdb:FlankerTask", ":assertsCognitiveAtlasConcept", "mhdb:ResponseTime"))
	assert.True(t, store.Has("mhdb:ResponseTime", "rdfs:subClassOf", ":CognitiveAtlasConcept"))

	assert.Empty(t, store.Objects(stroop, ":isPartOf"))
	assert.Len(t, store.Objects(stroop, ":hasTaskCondition"), 1)

	requireValidDocument(t, store)
}
