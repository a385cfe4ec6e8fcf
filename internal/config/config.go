// Package config loads the build configuration from YAML with
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/mentalhealthdb/mhdb/pkg/rdf"
	"github.com/mentalhealthdb/mhdb/pkg/turtle"
)

// SheetExportURL is the Google Sheets endpoint that serves a whole
// spreadsheet as xlsx
const SheetExportURL = "https://docs.google.com/spreadsheets/d/%s/export?format=xlsx"

// Config represents the complete build configuration
type Config struct {
	Ontology      OntologyConfig    `yaml:"ontology"`
	DefaultPrefix string            `yaml:"default_prefix" validate:"required"`
	Namespaces    []NamespaceConfig `yaml:"namespaces" validate:"required,min=1,dive"`
	Workbooks     []WorkbookConfig  `yaml:"workbooks" validate:"dive"`
	// Passes lists the ingestion passes to run, all of them when empty
	Passes   []string       `yaml:"passes"`
	Output   OutputConfig   `yaml:"output"`
	Snapshot SnapshotConfig `yaml:"snapshot"`
	Fetch    FetchConfig    `yaml:"fetch"`
	Tracing  TracingConfig  `yaml:"tracing"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// OntologyConfig describes the owl:Ontology statement of the document
type OntologyConfig struct {
	BaseURI  string `yaml:"base_uri" validate:"required,url"`
	Version  string `yaml:"version" validate:"required"`
	Label    string `yaml:"label"`
	Comment  string `yaml:"comment"`
	Imports  bool   `yaml:"imports"`
	Language string `yaml:"language" validate:"omitempty,bcp47_language_tag"`
}

// NamespaceConfig binds a prefix to a namespace IRI
type NamespaceConfig struct {
	Prefix string `yaml:"prefix" validate:"required"`
	IRI    string `yaml:"iri" validate:"required,uri"`
	// Import is the ontology URL to import instead of the namespace IRI
	Import string `yaml:"import" validate:"omitempty,url"`
}

// WorkbookConfig names a workbook and where it lives. SheetID is the
// Google Sheets document id used by fetch.
type WorkbookConfig struct {
	Name    string `yaml:"name" validate:"required"`
	Path    string `yaml:"path" validate:"required"`
	SheetID string `yaml:"sheet_id"`
}

// OutputConfig lists the files a build writes. Only Turtle is required.
type OutputConfig struct {
	Turtle   string `yaml:"turtle" validate:"required"`
	NTriples string `yaml:"ntriples"`
	JSONLD   string `yaml:"jsonld"`
	SQLite   string `yaml:"sqlite"`
	Metrics  string `yaml:"metrics"`
}

// SnapshotConfig configures the badger snapshot of the last build
type SnapshotConfig struct {
	Dir string `yaml:"dir"`
	// Seed starts a build from the previous snapshot
	Seed bool `yaml:"seed"`
}

// FetchConfig configures workbook downloads
type FetchConfig struct {
	BaseURL     string        `yaml:"base_url" validate:"required"`
	Timeout     time.Duration `yaml:"timeout"`
	Retries     int           `yaml:"retries" validate:"min=0,max=20"`
	Rate        float64       `yaml:"rate" validate:"min=0"`
	Concurrency int           `yaml:"concurrency" validate:"min=0,max=16"`
}

// TracingConfig configures per-pass tracing spans
type TracingConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Exporter string `yaml:"exporter" validate:"omitempty,oneof=stdout none"`
	File     string `yaml:"file"`
}

// LoggingConfig configures the zerolog logger
type LoggingConfig struct {
	Level  string `yaml:"level" validate:"omitempty,oneof=trace debug info warn error"`
	Format string `yaml:"format" validate:"omitempty,oneof=json console"`
}

// Default returns a Config describing the mental health database
func Default() *Config {
	return &Config{
		Ontology: OntologyConfig{
			BaseURI:  "http://www.purl.org/mentalhealth",
			Version:  "1.0.0",
			Label:    "Mental Health Database",
			Comment:  "The mental health database inter-relates information about mental health diagnoses, symptoms, assessment questionnaires, sensors and measures.",
			Imports:  true,
			Language: rdf.DefaultLanguage,
		},
		DefaultPrefix: turtle.DefaultPrefix,
		Namespaces: []NamespaceConfig{
			{Prefix: "dcterms", IRI: "http://purl.org/dc/terms/", Import: "http://dublincore.org/specifications/dublin-core/dcmi-terms/dublin_core_terms.ttl"},
			{Prefix: "health-lifesci", IRI: "http://health-lifesci.schema.org/", Import: "http://health-lifesci.schema.org/version/latest/health-lifesci.rdf"},
			{Prefix: "ICD9CM", IRI: "http://purl.bioontology.org/ontology/ICD9CM/"},
			{Prefix: "ICD10CM", IRI: "http://purl.bioontology.org/ontology/ICD10CM/"},
			{Prefix: "m3-lite", IRI: "http://purl.org/iot/vocab/m3-lite#", Import: "http://purl.org/iot/vocab/m3-lite"},
			{Prefix: "mhdb", IRI: "http://www.purl.org/mentalhealth#"},
			{Prefix: "owl", IRI: rdf.OWLNamespace},
			{Prefix: "rdf", IRI: rdf.RDFNamespace},
			{Prefix: "rdfs", IRI: rdf.RDFSNamespace},
			{Prefix: "schema", IRI: "http://schema.org/", Import: "http://schema.org/version/latest/schemaorg-current-http.rdf"},
			{Prefix: "xsd", IRI: rdf.XSDNamespace},
		},
		Workbooks: []WorkbookConfig{
			{Name: "states", Path: "data/states.xlsx"},
			{Name: "disorders", Path: "data/disorders.xlsx", SheetID: "13a0w3ouXq5sFCa0fBsg9xhWx67RGJJJqLjD_Oy1c3b0"},
			{Name: "sensors", Path: "data/sensors.xlsx"},
			{Name: "resources", Path: "data/resources.xlsx"},
			{Name: "assessments", Path: "data/assessments.xlsx"},
		},
		Output: OutputConfig{
			Turtle: "mhdb.ttl",
		},
		Fetch: FetchConfig{
			BaseURL:     SheetExportURL,
			Timeout:     60 * time.Second,
			Retries:     3,
			Rate:        1,
			Concurrency: 2,
		},
		Tracing: TracingConfig{
			Exporter: "stdout",
			File:     "mhdb-trace.json",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads the YAML file at path over the defaults, then applies
// environment overrides. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Logging.Level = getEnv("MHDB_LOG_LEVEL", c.Logging.Level)
	c.Logging.Format = getEnv("MHDB_LOG_FORMAT", c.Logging.Format)
	c.Output.Turtle = getEnv("MHDB_OUTPUT", c.Output.Turtle)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

// Validate checks struct constraints and the namespace registry
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}

	ns, err := c.BuildNamespaces()
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	for _, prefix := range []string{"rdf", "rdfs", "owl", "xsd"} {
		if !ns.Has(prefix) {
			return fmt.Errorf("invalid config: namespace %s is required", prefix)
		}
	}

	seen := make(map[string]bool, len(c.Workbooks))
	for _, wb := range c.Workbooks {
		if seen[wb.Name] {
			return fmt.Errorf("invalid config: workbook %s listed twice", wb.Name)
		}
		seen[wb.Name] = true
	}
	return nil
}

// BuildNamespaces creates the prefix registry in configured order
func (c *Config) BuildNamespaces() (*rdf.Namespaces, error) {
	list := make([]rdf.Namespace, 0, len(c.Namespaces))
	for _, n := range c.Namespaces {
		list = append(list, rdf.Namespace{Prefix: n.Prefix, IRI: n.IRI, Import: n.Import})
	}
	return rdf.NewNamespaces(c.DefaultPrefix, list...)
}

// Metadata returns the document header fields
func (c *Config) Metadata() turtle.Metadata {
	return turtle.Metadata{
		BaseURI: c.Ontology.BaseURI,
		Version: c.Ontology.Version,
		Label:   c.Ontology.Label,
		Comment: c.Ontology.Comment,
		Imports: c.Ontology.Imports,
	}
}

// WorkbookPaths maps workbook names to their paths
func (c *Config) WorkbookPaths() map[string]string {
	out := make(map[string]string, len(c.Workbooks))
	for _, wb := range c.Workbooks {
		out[wb.Name] = wb.Path
	}
	return out
}

// SheetURL returns the download URL for a Google Sheets document id
func (c *Config) SheetURL(sheetID string) string {
	return fmt.Sprintf(c.Fetch.BaseURL, sheetID)
}
