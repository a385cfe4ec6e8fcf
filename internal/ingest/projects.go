package ingest

import (
	"context"

	"github.com/mentalhealthdb/mhdb/pkg/graph"
	"github.com/mentalhealthdb/mhdb/pkg/rdf"
	"github.com/mentalhealthdb/mhdb/pkg/sheet"
)

// worksheets of the resources workbook read by the projects pass
var projectSheets = []string{
	"guide_types", "guides", "treatments",
	"project_types", "projects", "feature_types", "customizations", "privacy_and_data",
	"operating_systems", "costs", "organization_types", "groups",
	"people", "languages", "licenses", sheetReferences,
}

// vocabulary sheets: one label column, one type per row
var vocabularies = []struct{ sheet, field, class string }{
	{"feature_types", "feature_type", ":FeatureType"},
	{"customizations", "customization", ":CustomizationFeature"},
	{"privacy_and_data", "privacy_and_data", ":Feature"},
	{"operating_systems", "operating_system", ":OperatingSystem"},
	{"costs", "cost", ":CostType"},
	{"organization_types", "organization_type", ":OrganizationType"},
}

const (
	genderFemale = 1
	genderMale   = 2
)

func ingestProjects(ctx context.Context, env *Env) error {
	tables, err := env.Sheets("resources", projectSheets...)
	if err != nil {
		return err
	}
	disorders, err := env.Sheets("disorders", "disorders")
	if err != nil {
		return err
	}

	if err := ingestGuides(env, tables); err != nil {
		return err
	}

	treatments := tables["treatments"]
	for row := range treatments.Rows {
		name := treatments.Text(row, "treatment")
		if name == "" {
			continue
		}
		pairs, err := parents(env, treatments, row, "indices_treatment", treatments, "treatment", ":Treatment")
		if err != nil {
			return err
		}
		pairs = append(pairs,
			graph.P(rdfsLabel, env.Text(name)),
			graph.P(hasWebsite, rdf.AnyURI(treatments.Text(row, "link_definition"))),
		)
		pairs = append(pairs, aliases(env, treatments, row, "aliases")...)
		pairs = append(pairs, equivalents(env, treatments, row, "equivalentClasses")...)
		env.Store.MergeAll(env.Class(name), pairs...)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	types := tables["project_types"]
	for row := range types.Rows {
		name := types.Text(row, "project_type")
		if name == "" {
			continue
		}
		pairs, err := parents(env, types, row, "indices_project_type", types, "project_type", ":ProjectCategory")
		if err != nil {
			return err
		}
		pairs = append(pairs,
			graph.P(rdfsLabel, env.Text(name)),
			graph.P(rdfsComment, env.Text(types.Text(row, "definition"))),
		)
		pairs = append(pairs, aliases(env, types, row, "aliases")...)
		pairs = append(pairs, equivalents(env, types, row, "equivalentClasses")...)
		env.Store.MergeAll(env.Class(name), pairs...)
	}

	if err := ingestVocabularies(env, tables); err != nil {
		return err
	}
	if err := ingestGroups(env, tables); err != nil {
		return err
	}
	if err := ingestProjectRows(env, tables, disorders); err != nil {
		return err
	}
	return ctx.Err()
}

func ingestGuides(env *Env, tables map[string]*sheet.Table) error {
	guideTypes := tables["guide_types"]
	for row := range guideTypes.Rows {
		name := guideTypes.Text(row, "guide_type")
		if name == "" {
			continue
		}
		parent := env.Instance(guideTypes.Text(row, "subClassOf"))
		if parent == "" {
			parent = ":ReferenceType"
		}
		env.Store.MergeAll(env.Class(name),
			graph.P(rdfsLabel, env.Text(name)),
			graph.P(rdfsSubClassOf, parent),
		)
	}

	guides, people, treatments := tables["guides"], tables["people"], tables["treatments"]
	links := []struct {
		column    string
		target    *sheet.Table
		field     string
		predicate string
	}{
		{"indices_guide_type", guideTypes, "guide_type", ":hasReferenceType"},
		{"indices_audience", people, "person", ":hasAudienceType"},
		{"indices_subject_people", people, "person", ":isAbout"},
		{"index_subject_treatment", treatments, "treatment", ":isAbout"},
		{"index_language_in_mhdb", tables["languages"], "language", ":hasLanguage"},
		{"index_language_not_in_mhdb", tables["languages"], "language", ":hasLanguage"},
		{"index_license", tables["licenses"], "license", ":hasLicense"},
	}

	for row := range guides.Rows {
		title := guides.Text(row, "title")
		if title == "" {
			continue
		}
		pairs := []graph.Pair{
			graph.P(typeOf, ":BibliographicResource"),
			graph.P(rdfsLabel, env.Text(title)),
			graph.P(hasTitle, env.Text(title)),
			graph.P(hasWebsite, rdf.AnyURI(guides.Text(row, "link"))),
			graph.P(hasAuthorList, env.Text(guides.Text(row, "authors"))),
			graph.P(":hasPublisher", env.Instance(guides.Text(row, "publisher"))),
			graph.P(":hasPublicationDate", env.Text(guides.Text(row, "pubdate"))),
		}
		if gender, ok := guides.Cell(row, "index_gender").Int(); ok {
			switch gender {
			case genderFemale:
				pairs = append(pairs, graph.P(":isAbout", ":Female"))
			case genderMale:
				pairs = append(pairs, graph.P(":isAbout", ":Male"))
			}
		}
		for _, link := range links {
			more, err := linked(env, guides, row, link.column, link.target, link.field, link.predicate, rdf.StylePascalCase)
			if err != nil {
				return err
			}
			pairs = append(pairs, more...)
		}
		env.Store.MergeAll(env.Instance(title), pairs...)
	}
	return nil
}

// ingestVocabularies handles the small lookup sheets projects point at.
// Their rows are named like classes so links from projects land on them.
func ingestVocabularies(env *Env, tables map[string]*sheet.Table) error {
	for _, v := range vocabularies {
		t := tables[v.sheet]
		for row := range t.Rows {
			name := t.Text(row, v.field)
			if name == "" {
				continue
			}
			env.Store.MergeAll(env.Class(name),
				graph.P(typeOf, v.class),
				graph.P(rdfsLabel, env.Text(name)),
			)
		}
	}

	customizations := tables["customizations"]
	for row := range customizations.Rows {
		name := customizations.Text(row, "customization")
		if name == "" {
			continue
		}
		pairs, err := linked(env, customizations, row, "indices_customization", customizations, "customization", rdfsSubClassOf, rdf.StylePascalCase)
		if err != nil {
			return err
		}
		kinds, err := linked(env, customizations, row, "index_feature_type", tables["feature_types"], "feature_type", ":hasFeatureType", rdf.StylePascalCase)
		if err != nil {
			return err
		}
		env.Store.MergeAll(env.Class(name), append(pairs, kinds...)...)
	}

	privacy := tables["privacy_and_data"]
	dataPrivacy := env.Class("data privacy")
	for row := range privacy.Rows {
		name := privacy.Text(row, "privacy_and_data")
		if name == "" {
			continue
		}
		pairs, err := linked(env, privacy, row, "index_privacy_and_data", privacy, "privacy_and_data", rdfsSubClassOf, rdf.StylePascalCase)
		if err != nil {
			return err
		}
		pairs = append(pairs, graph.P(":hasFeatureType", dataPrivacy))
		env.Store.MergeAll(env.Class(name), pairs...)
	}
	return nil
}

// groupLabel names a groups row: the group, the organization, or both
// joined when the row has both
func groupLabel(group, organization string) string {
	switch {
	case group != "" && organization != "":
		return group + "_" + organization
	case group != "":
		return group
	default:
		return organization
	}
}

// ingestGroups handles the groups worksheet. A row needs a group or an
// organization; organizations and members are described once per pass.
func ingestGroups(env *Env, tables map[string]*sheet.Table) error {
	groups := tables["groups"]
	for row := range groups.Rows {
		group, organization := groups.Text(row, "group"), groups.Text(row, "organization")
		subject := env.Instance(groupLabel(group, organization))
		if subject == "" {
			continue
		}

		var pairs []graph.Pair
		if group != "" {
			pairs = append(pairs,
				graph.P(typeOf, ":Group"),
				graph.P(rdfsLabel, env.Text(group)),
			)
		}
		if organization != "" {
			org := env.Instance(organization)
			if env.Links.Mark("organization " + org) {
				env.Store.MergeAll(org,
					graph.P(typeOf, ":Organization"),
					graph.P(rdfsLabel, env.Text(organization)),
				)
			}
			if group != "" {
				pairs = append(pairs, graph.P(":isGroupMemberOf", org))
			}
		}

		pairs = append(pairs,
			graph.P(hasWebsite, rdf.AnyURI(groups.Text(row, "link"))),
			graph.P(hasAbbreviation, env.Text(groups.Text(row, "abbreviation"))),
		)
		if name := groups.Text(row, "member"); name != "" {
			member := env.Instance(name)
			if env.Links.Mark("member " + member) {
				env.Store.MergeAll(member,
					graph.P(typeOf, ":Person"),
					graph.P(":hasName", env.Text(name)),
				)
			}
			pairs = append(pairs, graph.P(":hasMember", member))
		}
		kinds, err := linked(env, groups, row, "index_organization_type", tables["organization_types"], "organization_type", ":hasOrganizationType", rdf.StylePascalCase)
		if err != nil {
			return err
		}
		pairs = append(pairs, kinds...)
		env.Store.MergeAll(subject, pairs...)
	}
	return nil
}

// projectLink is an index column of the projects worksheet
type projectLink struct {
	column    string
	target    *sheet.Table
	field     string
	predicate string
	style     rdf.Style
}

func ingestProjectRows(env *Env, tables, disorders map[string]*sheet.Table) error {
	projects, groups := tables["projects"], tables["groups"]
	links := []projectLink{
		{"indices_project_type", tables["project_types"], "project_type", ":hasProjectCategory", rdf.StylePascalCase},
		{"indices_people_users", tables["people"], "person", ":isUsedBy", rdf.StylePascalCase},
		{"indices_cost", tables["costs"], "cost", ":hasCostType", rdf.StylePascalCase},
		{"indices_operating_system", tables["operating_systems"], "operating_system", ":usesOperatingSystem", rdf.StylePascalCase},
		{"indices_privacy_and_data", tables["privacy_and_data"], "privacy_and_data", ":hasDataPrivacyFeature", rdf.StylePascalCase},
		{"indices_languages", tables["languages"], "language", ":hasLanguage", rdf.StylePascalCase},
		{"indices_compatible_projects", projects, "project", ":hasCompatibleProject", rdf.StyleDefault},
		{"indices_disorders", disorders["disorders"], "disorder", ":isAbout", rdf.StylePascalCase},
		{"indices_reference", tables[sheetReferences], "title", isReferencedBy, rdf.StyleDefault},
	}

	for row := range projects.Rows {
		name := projects.Text(row, "project")
		if name == "" {
			continue
		}
		pairs := []graph.Pair{
			graph.P(typeOf, ":Project"),
			graph.P(rdfsLabel, env.Text(name)),
			graph.P(rdfsComment, env.Text(projects.Text(row, "description"))),
			graph.P(hasAbbreviation, env.Text(projects.Text(row, "abbreviation"))),
			graph.P(hasWebsite, rdf.AnyURI(projects.Text(row, "link"))),
			graph.P(":hasWebsiteCopyrightYear", env.Text(projects.Text(row, "website_copyright_year"))),
			graph.P(":hasLatestReleaseDate", env.Text(projects.Text(row, "latest_release_date"))),
			graph.P(":hasCostDescription", env.Text(projects.Text(row, "cost_description"))),
			graph.P(":hasDataPrivacyWebsite", rdf.AnyURI(projects.Text(row, "data_privacy_link"))),
			graph.P(":hasDataPrivacyClaims", env.Text(projects.Text(row, "data_privacy_claims"))),
		}
		if dead, ok := projects.Cell(row, "dead").Float(); ok && dead > 0 {
			pairs = append(pairs, graph.P(":isMoribund", rdf.TypedLiteral("true", rdf.DatatypeBoolean)))
		}

		maintainers, err := maintainingGroups(env, projects, row, groups)
		if err != nil {
			return err
		}
		pairs = append(pairs, maintainers...)

		for _, link := range links {
			more, err := linked(env, projects, row, link.column, link.target, link.field, link.predicate, link.style)
			if err != nil {
				return err
			}
			pairs = append(pairs, more...)
		}
		env.Store.MergeAll(env.Instance(name), pairs...)
	}
	return nil
}

// maintainingGroups links a project to the groups rows it names, using
// the same subject the groups worksheet gives each row
func maintainingGroups(env *Env, projects *sheet.Table, row int, groups *sheet.Table) ([]graph.Pair, error) {
	names, err := projects.Resolve(row, "indices_group", groups, "group")
	if err != nil {
		return nil, err
	}
	orgs, err := projects.Resolve(row, "indices_group", groups, "organization")
	if err != nil {
		return nil, err
	}
	pairs := make([]graph.Pair, 0, len(names))
	for i := range names {
		label := groupLabel(presentText(names[i]), presentText(orgs[i]))
		pairs = append(pairs, graph.P(":isMaintainedByGroup", env.Instance(label)))
	}
	return pairs, nil
}

func presentText(v graph.Value) string {
	if v.IsAbsent() {
		return ""
	}
	return v.String()
}
