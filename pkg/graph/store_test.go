package graph

import (
	"math/rand"
	"sync"
	"testing"
)

var sentinels = []string{"", "   ", EmptyValue, "NaN", "NAN", "nan", " nan "}

func TestMergeDropsSentinels(t *testing.T) {
	for _, sentinel := range sentinels {
		s := New().Merge(":goose", ":chases", ":it")
		before := s.Triples()

		s.Merge(":goose", ":chases", sentinel)
		s.Merge(":goose", sentinel, ":it2")
		s.Merge(sentinel, ":chases", ":it3")

		after := s.Triples()
		if len(after) != len(before) {
			t.Fatalf("sentinel %q changed the store: %v", sentinel, after)
		}
		if s.SubjectCount() != 1 {
			t.Errorf("sentinel %q created a subject", sentinel)
		}
		if got := s.Stats().Dropped; got != 3 {
			t.Errorf("sentinel %q: expected 3 dropped, got %d", sentinel, got)
		}
	}
}

func TestMergeOnEmptyStoreWithSentinelCreatesNothing(t *testing.T) {
	s := New().Merge(":goose", ":chases", "")
	if s.SubjectCount() != 0 {
		t.Fatalf("expected no subjects, got %v", s.Subjects())
	}
	if s.Predicates(":goose") != nil {
		t.Errorf("expected no predicates for :goose")
	}
}

func TestMergeIdempotent(t *testing.T) {
	once := New().Merge(":goose", ":chases", ":it")
	twice := New().Merge(":goose", ":chases", ":it").Merge(":goose", ":chases", ":it")

	if !once.Equal(twice) {
		t.Fatalf("stores differ: %v vs %v", once.Triples(), twice.Triples())
	}
	if twice.Len() != 1 {
		t.Errorf("expected 1 triple, got %d", twice.Len())
	}
	if got := twice.Stats().Duplicates; got != 1 {
		t.Errorf("expected 1 duplicate, got %d", got)
	}
}

func TestMergeUnionsObjects(t *testing.T) {
	s := New().
		Merge(":goose", ":chases", ":it").
		Merge(":goose", ":chases", ":duck")

	objects := s.Objects(":goose", ":chases")
	if len(objects) != 2 || objects[0] != ":duck" || objects[1] != ":it" {
		t.Fatalf("expected both objects, got %v", objects)
	}
}

func TestMergeTrimsAllParts(t *testing.T) {
	s := New().Merge("  :goose ", "\t:chases", ":it \n")
	if !s.Has(":goose", ":chases", ":it") {
		t.Fatalf("trimmed triple missing: %v", s.Triples())
	}
	s.Merge(":goose", ":chases", ":it")
	if s.Len() != 1 {
		t.Errorf("expected trimmed duplicate to collapse, got %d triples", s.Len())
	}
}

func TestMergeOrderIndependent(t *testing.T) {
	triples := []Triple{
		{":a", ":p", ":x"},
		{":a", ":p", ":y"},
		{":a", ":q", ":x"},
		{":b", ":p", ":x"},
		{":b", ":p", ":x"},
		{":c", "rdfs:label", `"""c"""@en`},
		{":c", ":p", ""},
	}
	want := From(triples)

	r := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		shuffled := append([]Triple(nil), triples...)
		r.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		if got := From(shuffled); !got.Equal(want) {
			t.Fatalf("permutation %d differs: %v", i, got.Triples())
		}
	}
}

func TestMergeAll(t *testing.T) {
	s := New().MergeAll(":disorder",
		P("rdfs:label", `"""disorder"""@en`),
		P("rdfs:subClassOf", ":Disorder"),
		P(":hasNote", EmptyValue),
	)
	if s.Len() != 2 {
		t.Fatalf("expected 2 triples, got %d: %v", s.Len(), s.Triples())
	}
	preds := s.Predicates(":disorder")
	if len(preds) != 2 || preds[0] != "rdfs:label" || preds[1] != "rdfs:subClassOf" {
		t.Errorf("unexpected predicates %v", preds)
	}
}

func TestStoreInvariants(t *testing.T) {
	s := New().
		Merge(":a", ":p", ":x").
		Merge(":b", ":p", "nan").
		Merge(":a", ":q", "")

	for _, subj := range s.Subjects() {
		preds := s.Predicates(subj)
		if len(preds) == 0 {
			t.Errorf("subject %s has no predicates", subj)
		}
		for _, pred := range preds {
			if len(s.Objects(subj, pred)) == 0 {
				t.Errorf("predicate %s of %s has no objects", pred, subj)
			}
		}
	}
	if s.SubjectCount() != 1 {
		t.Errorf("expected only :a, got %v", s.Subjects())
	}
}

func TestUnionAndFilter(t *testing.T) {
	seed := New().Merge(":a", ":p", ":x")
	run := New().Merge(":b", ":p", ":y").Union(seed)

	if run.Len() != 2 {
		t.Fatalf("expected 2 triples after union, got %d", run.Len())
	}

	onlyA := run.Filter(func(subject string) bool { return subject == ":a" })
	if onlyA.SubjectCount() != 1 || !onlyA.Has(":a", ":p", ":x") {
		t.Errorf("unexpected filtered store: %v", onlyA.Triples())
	}
	if run.SubjectCount() != 2 {
		t.Errorf("filter modified the source store")
	}
}

func TestConcurrentMerge(t *testing.T) {
	s := New()
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				s.Merge(":goose", ":chases", ":it")
				s.Merge(":goose", ":honks", ":loudly")
			}
		}()
	}
	wg.Wait()

	if s.Len() != 2 {
		t.Fatalf("expected 2 triples, got %d", s.Len())
	}
	stats := s.Stats()
	if stats.Inserted != 2 || stats.Duplicates != 1598 {
		t.Errorf("unexpected stats %+v", stats)
	}
}
