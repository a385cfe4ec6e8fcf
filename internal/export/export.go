// Package export writes a rendered knowledge graph in formats other than
// Turtle. Every exporter starts from the Turtle document itself, so the
// exports always agree with the file that was validated.
package export

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/mentalhealthdb/mhdb/internal/fsutil"
	"github.com/mentalhealthdb/mhdb/pkg/rdf"
)

// Targets lists the output paths. An empty path skips that format.
type Targets struct {
	NTriples string
	JSONLD   string
	SQLite   string
}

// Empty reports whether no export was requested
func (t Targets) Empty() bool {
	return t.NTriples == "" && t.JSONLD == "" && t.SQLite == ""
}

// Parse reads a Turtle document into absolute statements in N-Triples order
func Parse(doc string) ([]*rdf.Triple, error) {
	triples, err := rdf.NewTurtleParser(doc).Parse()
	if err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}
	rdf.SortTriples(triples)
	return triples, nil
}

// WriteNTriples writes triples to path atomically
func WriteNTriples(path string, triples []*rdf.Triple) error {
	return fsutil.WriteAtomic(path, func(w io.Writer) error {
		return rdf.WriteNTriples(w, triples)
	})
}

// All writes every requested export of doc
func All(ctx context.Context, doc string, ns *rdf.Namespaces, targets Targets, logger zerolog.Logger) error {
	if targets.Empty() {
		return nil
	}
	triples, err := Parse(doc)
	if err != nil {
		return err
	}

	if targets.NTriples != "" {
		if err := WriteNTriples(targets.NTriples, triples); err != nil {
			return fmt.Errorf("ntriples export: %w", err)
		}
		logger.Info().Str("path", targets.NTriples).Int("triples", len(triples)).Msg("wrote n-triples")
	}

	if targets.JSONLD != "" {
		if err := WriteJSONLD(targets.JSONLD, triples, ns); err != nil {
			return fmt.Errorf("json-ld export: %w", err)
		}
		logger.Info().Str("path", targets.JSONLD).Msg("wrote json-ld")
	}

	if targets.SQLite != "" {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := WriteSQLite(ctx, targets.SQLite, triples, ns); err != nil {
			return fmt.Errorf("sqlite export: %w", err)
		}
		logger.Info().Str("path", targets.SQLite).Msg("wrote sqlite")
	}
	return nil
}
