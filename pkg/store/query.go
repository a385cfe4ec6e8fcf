package store

import (
	"fmt"

	"github.com/mentalhealthdb/mhdb/pkg/graph"
)

// Pattern selects statements. An empty field matches anything.
type Pattern struct {
	Subject   string
	Predicate string
}

// Query returns the statements matching pattern in key order
func (s *TripleStore) Query(pattern Pattern) ([]graph.Triple, error) {
	txn, err := s.storage.Begin(false)
	if err != nil {
		return nil, err
	}
	defer func() { _ = txn.Rollback() }()

	it, err := txn.Scan(TableSPO, s.buildScanPrefix(pattern))
	if err != nil {
		return nil, err
	}
	defer func() { _ = it.Close() }()

	var wantPred *Hash
	if pattern.Predicate != "" && pattern.Subject == "" {
		h := s.encoder.Hash(pattern.Predicate)
		wantPred = &h
	}

	terms := make(map[Hash]string)
	var out []graph.Triple
	for it.Next() {
		subj, pred, obj, err := s.encoder.SplitTripleKey(it.Key())
		if err != nil {
			return nil, err
		}
		if wantPred != nil && pred != *wantPred {
			continue
		}

		var t graph.Triple
		if t.Subject, err = s.lookupString(txn, terms, subj); err != nil {
			return nil, err
		}
		if t.Predicate, err = s.lookupString(txn, terms, pred); err != nil {
			return nil, err
		}
		if t.Object, err = s.lookupString(txn, terms, obj); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// Graph reads every stored statement into a new in-memory store
func (s *TripleStore) Graph() (*graph.Store, error) {
	triples, err := s.Query(Pattern{})
	if err != nil {
		return nil, err
	}
	return graph.From(triples), nil
}

// buildScanPrefix narrows the spo scan to the bound leading positions
func (s *TripleStore) buildScanPrefix(pattern Pattern) []byte {
	if pattern.Subject == "" {
		return nil
	}
	subj := s.encoder.Hash(pattern.Subject)
	if pattern.Predicate == "" {
		return subj[:]
	}
	pred := s.encoder.Hash(pattern.Predicate)
	prefix := make([]byte, 0, 2*HashSize)
	prefix = append(prefix, subj[:]...)
	return append(prefix, pred[:]...)
}

func (s *TripleStore) lookupString(txn Transaction, cache map[Hash]string, hash Hash) (string, error) {
	if str, ok := cache[hash]; ok {
		return str, nil
	}
	value, err := txn.Get(TableID2Str, hash[:])
	if err != nil {
		return "", fmt.Errorf("failed to look up term %x: %w", hash, err)
	}
	str := string(value)
	cache[hash] = str
	return str, nil
}
