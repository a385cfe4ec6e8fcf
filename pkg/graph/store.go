// Package graph holds the statement store that every ingestion pass writes
// into: subject to predicate to a set of objects, with sentinel values
// dropped at insertion time.
package graph

import (
	"sort"
	"strings"
	"sync"
)

// Triple is a single subject, predicate, object statement
type Triple struct {
	Subject   string
	Predicate string
	Object    string
}

// Pair is a predicate and object waiting for a subject
type Pair struct {
	Predicate string
	Object    string
}

// P builds a Pair
func P(predicate, object string) Pair {
	return Pair{Predicate: predicate, Object: object}
}

// Stats counts what happened to merge calls on a store
type Stats struct {
	Inserted   int64 // new triples
	Duplicates int64 // triples that were already present
	Dropped    int64 // candidates rejected because of a sentinel
}

// Reader is the read side of a store, used by serializers
type Reader interface {
	Subjects() []string
	Predicates(subject string) []string
	Objects(subject, predicate string) []string
}

// Store accumulates statements for one conversion run.
// It is safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	subjects map[string]map[string]map[string]struct{}
	triples  int
	stats    Stats
}

// New returns an empty store
func New() *Store {
	return &Store{subjects: make(map[string]map[string]map[string]struct{})}
}

// From returns a store seeded with triples
func From(triples []Triple) *Store {
	s := New()
	for _, t := range triples {
		s.Merge(t.Subject, t.Predicate, t.Object)
	}
	return s
}

// Merge adds one triple. Surrounding whitespace is trimmed from every
// part; if any part is a sentinel the call is a no-op. The store is
// returned so calls can be chained.
func (s *Store) Merge(subject, predicate, object string) *Store {
	subject = strings.TrimSpace(subject)
	predicate = strings.TrimSpace(predicate)
	object = strings.TrimSpace(object)

	s.mu.Lock()
	defer s.mu.Unlock()

	if IsSentinel(subject) || IsSentinel(predicate) || IsSentinel(object) {
		s.stats.Dropped++
		return s
	}

	predicates, ok := s.subjects[subject]
	if !ok {
		predicates = make(map[string]map[string]struct{})
		s.subjects[subject] = predicates
	}
	objects, ok := predicates[predicate]
	if !ok {
		objects = make(map[string]struct{})
		predicates[predicate] = objects
	}
	if _, dup := objects[object]; dup {
		s.stats.Duplicates++
		return s
	}
	objects[object] = struct{}{}
	s.triples++
	s.stats.Inserted++
	return s
}

// MergeAll merges each pair under subject, left to right
func (s *Store) MergeAll(subject string, pairs ...Pair) *Store {
	for _, p := range pairs {
		s.Merge(subject, p.Predicate, p.Object)
	}
	return s
}

// Has reports whether the triple is present
func (s *Store) Has(subject, predicate, object string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.subjects[strings.TrimSpace(subject)][strings.TrimSpace(predicate)][strings.TrimSpace(object)]
	return ok
}

// Len returns the number of triples
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.triples
}

// SubjectCount returns the number of distinct subjects
func (s *Store) SubjectCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subjects)
}

// Stats returns merge counters
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}

// Subjects returns all subjects in sorted order
func (s *Store) Subjects() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedKeys(s.subjects)
}

// Predicates returns the predicates of subject in sorted order
func (s *Store) Predicates(subject string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedKeys(s.subjects[subject])
}

// Objects returns the objects under subject and predicate in sorted order
func (s *Store) Objects(subject, predicate string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedKeys(s.subjects[subject][predicate])
}

// Triples returns every triple, sorted by subject, predicate, object
func (s *Store) Triples() []Triple {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Triple, 0, s.triples)
	for _, subj := range sortedKeys(s.subjects) {
		preds := s.subjects[subj]
		for _, pred := range sortedKeys(preds) {
			for _, obj := range sortedKeys(preds[pred]) {
				out = append(out, Triple{Subject: subj, Predicate: pred, Object: obj})
			}
		}
	}
	return out
}

// Union merges every triple of other into s and returns s
func (s *Store) Union(other *Store) *Store {
	if other == nil || other == s {
		return s
	}
	for _, t := range other.Triples() {
		s.Merge(t.Subject, t.Predicate, t.Object)
	}
	return s
}

// Filter returns a new store holding the subjects for which keep returns true
func (s *Store) Filter(keep func(subject string) bool) *Store {
	out := New()
	for _, t := range s.Triples() {
		if keep(t.Subject) {
			out.Merge(t.Subject, t.Predicate, t.Object)
		}
	}
	return out
}

// Equal reports whether both stores hold the same set of triples
func (s *Store) Equal(other *Store) bool {
	a, b := s.Triples(), other.Triples()
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func sortedKeys[V any](m map[string]V) []string {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
