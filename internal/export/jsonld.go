package export

import (
	"encoding/json"
	"fmt"

	"github.com/piprate/json-gold/ld"

	"github.com/mentalhealthdb/mhdb/internal/fsutil"
	"github.com/mentalhealthdb/mhdb/pkg/rdf"
)

// Context builds a JSON-LD context mapping every registered prefix to
// its namespace IRI
func Context(ns *rdf.Namespaces) map[string]interface{} {
	ctx := make(map[string]interface{}, len(ns.All()))
	for _, n := range ns.All() {
		ctx[n.Prefix] = n.IRI
	}
	return map[string]interface{}{"@context": ctx}
}

// JSONLD converts triples to a compacted JSON-LD document
func JSONLD(triples []*rdf.Triple, ns *rdf.Namespaces) ([]byte, error) {
	proc := ld.NewJsonLdProcessor()

	opts := ld.NewJsonLdOptions("")
	opts.Format = "application/n-quads"
	expanded, err := proc.FromRDF(rdf.SerializeNTriples(triples), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to convert from rdf: %w", err)
	}

	compactOpts := ld.NewJsonLdOptions("")
	compactOpts.CompactArrays = true
	compacted, err := proc.Compact(expanded, Context(ns), compactOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to compact: %w", err)
	}

	out, err := json.MarshalIndent(compacted, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}

// WriteJSONLD writes the compacted JSON-LD document to path atomically
func WriteJSONLD(path string, triples []*rdf.Triple, ns *rdf.Namespaces) error {
	data, err := JSONLD(triples, ns)
	if err != nil {
		return err
	}
	return fsutil.WriteFileAtomic(path, data)
}
