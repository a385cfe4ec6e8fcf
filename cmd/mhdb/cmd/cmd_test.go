package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCommand()
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

// writeProject lays out a CSV states workbook and a config pointing at it
func writeProject(t *testing.T) (dir, configPath string) {
	t.Helper()
	dir = t.TempDir()
	states := filepath.Join(dir, "states")
	writeFile(t, filepath.Join(states, "Classes.csv"),
		"ClassName,label,definition,sameAs,subClassOf,equivalentClasses\n"+
			"mhdb:State,state,A mental state,,,\n")
	writeFile(t, filepath.Join(states, "Properties.csv"),
		"property,label,propertyDomain,propertyRange,definition,sameAs,equivalentProperty,subPropertyOf\n"+
			"mhdb:hasDomainType,has domain type,,,,,,\n")
	writeFile(t, filepath.Join(states, "states.csv"),
		"index,state,indices_state_type,indices_state_category\n"+
			"1,calm,1,\n"+
			"2,very calm,1,1\n")
	writeFile(t, filepath.Join(states, "state_types.csv"),
		"index,state_type\n"+
			"1,emotional state\n")

	configPath = filepath.Join(dir, "mhdb.yaml")
	writeFile(t, configPath, fmt.Sprintf(`workbooks:
  - name: states
    path: %s
passes: [states]
output:
  turtle: %s
  ntriples: %s
  metrics: %s
snapshot:
  dir: %s
logging:
  level: error
`,
		states,
		filepath.Join(dir, "out", "mhdb.ttl"),
		filepath.Join(dir, "out", "mhdb.nt"),
		filepath.Join(dir, "out", "mhdb.prom"),
		filepath.Join(dir, "snapshot"),
	))
	return dir, configPath
}

func TestBuildCommand(t *testing.T) {
	dir, configPath := writeProject(t)

	if _, err := execute(t, "--config", configPath, "build"); err != nil {
		t.Fatalf("build failed: %v", err)
	}

	doc, err := os.ReadFile(filepath.Join(dir, "out", "mhdb.ttl"))
	if err != nil {
		t.Fatalf("failed to read document: %v", err)
	}
	for _, want := range []string{
		"owl:Ontology",
		"mhdb:VeryCalm",
		"mhdb:EmotionalState",
		"m3-lite:DomainOfInterest",
		`"""very calm"""@en`,
	} {
		if !strings.Contains(string(doc), want) {
			t.Errorf("expected document to contain %q, got:\n%s", want, doc)
		}
	}

	for _, name := range []string{"mhdb.nt", "mhdb.prom"} {
		if _, err := os.Stat(filepath.Join(dir, "out", name)); err != nil {
			t.Errorf("expected %s to be written: %v", name, err)
		}
	}

	prom, err := os.ReadFile(filepath.Join(dir, "out", "mhdb.prom"))
	if err != nil {
		t.Fatalf("failed to read metrics: %v", err)
	}
	if !strings.Contains(string(prom), `mhdb_triples_added_total{pass="states"}`) {
		t.Errorf("expected per-pass metrics, got:\n%s", prom)
	}
}

func TestBuildThenValidateAndExport(t *testing.T) {
	dir, configPath := writeProject(t)
	if _, err := execute(t, "--config", configPath, "build"); err != nil {
		t.Fatalf("build failed: %v", err)
	}

	out, err := execute(t, "validate", filepath.Join(dir, "out", "mhdb.ttl"))
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if !strings.Contains(out, "triples") {
		t.Errorf("expected triple count, got %q", out)
	}

	jsonld := filepath.Join(dir, "export", "mhdb.jsonld")
	turtlePath := filepath.Join(dir, "export", "mhdb.ttl")
	out, err = execute(t, "--config", configPath, "export", "--jsonld", jsonld, "--turtle", turtlePath)
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if !strings.Contains(out, "exported run") {
		t.Errorf("unexpected export output %q", out)
	}

	original, _ := os.ReadFile(filepath.Join(dir, "out", "mhdb.ttl"))
	exported, err := os.ReadFile(turtlePath)
	if err != nil {
		t.Fatalf("failed to read exported turtle: %v", err)
	}
	if !bytes.Equal(original, exported) {
		t.Errorf("exported document differs from the built one")
	}
	if _, err := os.Stat(jsonld); err != nil {
		t.Errorf("expected json-ld export: %v", err)
	}
}

func TestBuildFailsOnUnresolvedIndex(t *testing.T) {
	dir, configPath := writeProject(t)
	writeFile(t, filepath.Join(dir, "states", "states.csv"),
		"index,state,indices_state_type,indices_state_category\n"+
			"1,calm,9,\n")

	_, err := execute(t, "--config", configPath, "build")
	if err == nil {
		t.Fatal("expected build to fail")
	}
	for _, want := range []string{"pass states", "sheet states row 2", "indices_state_type"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected error to contain %q, got %v", want, err)
		}
	}
	if _, statErr := os.Stat(filepath.Join(dir, "out", "mhdb.ttl")); !os.IsNotExist(statErr) {
		t.Errorf("expected no document after a failed build")
	}
}

func TestBuildUnknownPass(t *testing.T) {
	_, configPath := writeProject(t)
	_, err := execute(t, "--config", configPath, "build", "--passes", "nope")
	if err == nil || !strings.Contains(err.Error(), "nope") {
		t.Fatalf("expected unknown pass error, got %v", err)
	}
}

func TestValidateCommandRejectsBrokenTurtle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.ttl")
	writeFile(t, path, "mhdb:Panic rdfs:label .\n")

	_, err := execute(t, "validate", path)
	if err == nil || !strings.Contains(err.Error(), "broken.ttl") {
		t.Fatalf("expected parse error naming the file, got %v", err)
	}

	if _, err := execute(t, "validate"); err == nil {
		t.Error("expected an error without arguments")
	}
}

func TestPassesCommand(t *testing.T) {
	out, err := execute(t, "passes")
	if err != nil {
		t.Fatalf("passes failed: %v", err)
	}
	for _, want := range []string{"PASS", "states", "disorders", "sensors", "projects", "resources, disorders", "assessments, resources, disorders"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestFetchWithoutSheetIDs(t *testing.T) {
	_, configPath := writeProject(t)
	out, err := execute(t, "--config", configPath, "fetch")
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if !strings.Contains(out, "no workbooks") {
		t.Errorf("unexpected output %q", out)
	}

	if _, err := execute(t, "--config", configPath, "fetch", "states"); err == nil {
		t.Error("expected an error for a workbook without a sheet id")
	}
}

func TestRootCommand(t *testing.T) {
	out, err := execute(t, "--help")
	if err != nil {
		t.Fatalf("help failed: %v", err)
	}
	if !strings.Contains(out, "Validating the generated document") {
		t.Errorf("unexpected help output:\n%s", out)
	}

	if _, err := execute(t, "--invalid-flag"); err == nil {
		t.Error("expected unknown flag error")
	}
}

func TestVersionCommand(t *testing.T) {
	origVersion, origCommit, origDate := Version, GitCommit, BuildDate
	defer func() {
		Version, GitCommit, BuildDate = origVersion, origCommit, origDate
	}()
	Version = "1.0.0"
	GitCommit = "abc123"
	BuildDate = "2024-01-27T12:00:00Z"

	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	for _, want := range []string{"Version:    1.0.0", "Git commit: abc123", "Build date: 2024-01-27T12:00:00Z", "Go version:"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, out)
		}
	}
}
