package export

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	_ "modernc.org/sqlite"

	"github.com/mentalhealthdb/mhdb/pkg/rdf"
)

// SQLite is a relational dump of the graph, one row per statement
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens or creates the database at path and applies the schema
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &SQLite{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

func (s *SQLite) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS namespaces (
		prefix TEXT PRIMARY KEY,
		iri TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS triples (
		subject TEXT NOT NULL,
		predicate TEXT NOT NULL,
		object TEXT NOT NULL,
		object_kind TEXT NOT NULL,
		datatype TEXT,
		language TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_triples_subject ON triples(subject, predicate);
	CREATE INDEX IF NOT EXISTS idx_triples_predicate ON triples(predicate);
	CREATE INDEX IF NOT EXISTS idx_triples_object ON triples(object);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database
func (s *SQLite) Close() error {
	return s.db.Close()
}

// Replace swaps the stored graph for triples in a single transaction
func (s *SQLite) Replace(ctx context.Context, triples []*rdf.Triple, ns *rdf.Namespaces) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"triples", "namespaces"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	nsStmt, err := tx.PrepareContext(ctx, `INSERT INTO namespaces (prefix, iri) VALUES (?, ?)`)
	if err != nil {
		return err
	}
	defer nsStmt.Close()
	for _, n := range ns.All() {
		if _, err := nsStmt.ExecContext(ctx, n.Prefix, n.IRI); err != nil {
			return fmt.Errorf("failed to insert namespace %s: %w", n.Prefix, err)
		}
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO triples (subject, predicate, object, object_kind, datatype, language)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, t := range triples {
		obj := objectColumns(t.Object)
		if _, err := stmt.ExecContext(ctx,
			termValue(t.Subject), termValue(t.Predicate),
			obj.value, obj.kind, obj.datatype, obj.language,
		); err != nil {
			return fmt.Errorf("failed to insert %s: %w", t, err)
		}
	}

	return tx.Commit()
}

// Count returns the number of stored statements
func (s *SQLite) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM triples`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count triples: %w", err)
	}
	return n, nil
}

// Objects returns the objects stored for subject and predicate, both
// given as full IRIs
func (s *SQLite) Objects(ctx context.Context, subject, predicate string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT object FROM triples
		WHERE subject = ? AND predicate = ?
		ORDER BY object
	`, subject, predicate)
	if err != nil {
		return nil, fmt.Errorf("failed to query objects: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var obj string
		if err := rows.Scan(&obj); err != nil {
			return nil, fmt.Errorf("failed to scan object: %w", err)
		}
		out = append(out, obj)
	}
	return out, rows.Err()
}

// WriteSQLite writes triples to a fresh database at path
func WriteSQLite(ctx context.Context, path string, triples []*rdf.Triple, ns *rdf.Namespaces) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove previous database: %w", err)
	}
	db, err := OpenSQLite(path)
	if err != nil {
		return err
	}
	if err := db.Replace(ctx, triples, ns); err != nil {
		_ = db.Close()
		return err
	}
	return db.Close()
}

type objectRow struct {
	value    string
	kind     string
	datatype sql.NullString
	language sql.NullString
}

func objectColumns(term rdf.Term) objectRow {
	switch t := term.(type) {
	case *rdf.Literal:
		row := objectRow{value: t.Value, kind: "literal"}
		if t.Language != "" {
			row.language = sql.NullString{String: t.Language, Valid: true}
		} else if t.Datatype != nil {
			row.datatype = sql.NullString{String: t.Datatype.IRI, Valid: true}
		}
		return row
	case *rdf.BlankNode:
		return objectRow{value: "_:" + t.ID, kind: "bnode"}
	default:
		return objectRow{value: termValue(term), kind: "iri"}
	}
}

// termValue is the IRI of a named node or the label of a blank node
func termValue(term rdf.Term) string {
	switch t := term.(type) {
	case *rdf.NamedNode:
		return t.IRI
	case *rdf.BlankNode:
		return "_:" + t.ID
	case *rdf.Literal:
		return t.Value
	default:
		return ""
	}
}
