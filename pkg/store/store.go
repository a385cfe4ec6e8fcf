// Package store persists statement graphs in an ordered key-value store.
//
// Every term string is hashed to 128 bits. The id2str table maps hashes
// back to term text, and the spo table holds one empty-valued key per
// statement, so a prefix scan over a subject hash yields its statements.
package store

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/mentalhealthdb/mhdb/pkg/graph"
)

// TripleStore manages statements on top of a Storage
type TripleStore struct {
	storage Storage
	encoder KeyEncoder
}

// NewTripleStore creates a new triplestore
func NewTripleStore(storage Storage, encoder KeyEncoder) *TripleStore {
	return &TripleStore{
		storage: storage,
		encoder: encoder,
	}
}

// Close closes the triplestore
func (s *TripleStore) Close() error {
	return s.storage.Close()
}

// Clear removes every statement, term and metadata entry
func (s *TripleStore) Clear() error {
	return s.storage.DropAll()
}

// InsertTriples writes triples, splitting the work over as many
// transactions as the storage needs. It returns the number of
// transactions committed.
func (s *TripleStore) InsertTriples(triples []graph.Triple) (int, error) {
	txn, err := s.storage.Begin(true)
	if err != nil {
		return 0, err
	}
	defer func() { _ = txn.Rollback() }()

	commits := 0
	for _, t := range triples {
		err := s.insertTripleInTxn(txn, t)
		if errors.Is(err, ErrTxnTooBig) {
			if err := txn.Commit(); err != nil {
				return commits, fmt.Errorf("failed to commit batch: %w", err)
			}
			commits++
			if txn, err = s.storage.Begin(true); err != nil {
				return commits, err
			}
			err = s.insertTripleInTxn(txn, t)
		}
		if err != nil {
			return commits, fmt.Errorf("failed to insert %s %s %s: %w", t.Subject, t.Predicate, t.Object, err)
		}
	}

	if err := txn.Commit(); err != nil {
		return commits, fmt.Errorf("failed to commit batch: %w", err)
	}
	return commits + 1, nil
}

// insertTripleInTxn inserts a triple within an existing transaction
func (s *TripleStore) insertTripleInTxn(txn Transaction, t graph.Triple) error {
	subj := s.encoder.Hash(t.Subject)
	pred := s.encoder.Hash(t.Predicate)
	obj := s.encoder.Hash(t.Object)

	if err := s.storeString(txn, subj, t.Subject); err != nil {
		return err
	}
	if err := s.storeString(txn, pred, t.Predicate); err != nil {
		return err
	}
	if err := s.storeString(txn, obj, t.Object); err != nil {
		return err
	}

	return txn.Set(TableSPO, s.encoder.TripleKey(subj, pred, obj), []byte{})
}

// storeString stores a term in the id2str table unless it is already there
func (s *TripleStore) storeString(txn Transaction, hash Hash, str string) error {
	value := []byte(str)

	existing, err := txn.Get(TableID2Str, hash[:])
	if err == nil && bytes.Equal(existing, value) {
		return nil
	}
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}

	return txn.Set(TableID2Str, hash[:], value)
}

// Count returns the number of stored statements
func (s *TripleStore) Count() (int64, error) {
	txn, err := s.storage.Begin(false)
	if err != nil {
		return 0, err
	}
	defer func() { _ = txn.Rollback() }()

	it, err := txn.Scan(TableSPO, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = it.Close() }()

	var count int64
	for it.Next() {
		count++
	}
	return count, nil
}

// SetMeta stores a metadata entry
func (s *TripleStore) SetMeta(name string, value []byte) error {
	txn, err := s.storage.Begin(true)
	if err != nil {
		return err
	}
	defer func() { _ = txn.Rollback() }()

	if err := txn.Set(TableMeta, []byte(name), value); err != nil {
		return err
	}
	return txn.Commit()
}

// Meta returns a metadata entry, ErrNotFound if it was never set
func (s *TripleStore) Meta(name string) ([]byte, error) {
	txn, err := s.storage.Begin(false)
	if err != nil {
		return nil, err
	}
	defer func() { _ = txn.Rollback() }()

	return txn.Get(TableMeta, []byte(name))
}

// Sync flushes writes to disk
func (s *TripleStore) Sync() error {
	return s.storage.Sync()
}
