package rdf

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrDuplicatePrefix = errors.New("prefix already registered")
	ErrUnknownPrefix   = errors.New("unknown prefix")
)

// Namespace binds a short prefix to a namespace IRI. Import is an optional
// ontology URL used for owl:imports instead of the namespace IRI.
type Namespace struct {
	Prefix string
	IRI    string
	Import string
}

// ImportIRI returns the IRI that owl:imports should reference
func (n Namespace) ImportIRI() string {
	if n.Import != "" {
		return n.Import
	}
	return n.IRI
}

// Namespaces is an ordered prefix registry. Registration order is kept
// because it is the order of the @prefix lines in the document header.
type Namespaces struct {
	list          []Namespace
	index         map[string]int
	defaultPrefix string
}

// NewNamespaces creates a registry whose default prefix names the
// project's own namespace. The default prefix must be among list.
func NewNamespaces(defaultPrefix string, list ...Namespace) (*Namespaces, error) {
	ns := &Namespaces{
		index:         make(map[string]int),
		defaultPrefix: defaultPrefix,
	}
	for _, n := range list {
		if err := ns.Add(n); err != nil {
			return nil, err
		}
	}
	if _, ok := ns.index[defaultPrefix]; !ok {
		return nil, fmt.Errorf("default prefix %q: %w", defaultPrefix, ErrUnknownPrefix)
	}
	return ns, nil
}

// Add registers a namespace. Re-adding an identical binding is a no-op.
func (ns *Namespaces) Add(n Namespace) error {
	n.Prefix = strings.TrimSpace(n.Prefix)
	n.IRI = strings.TrimSpace(n.IRI)
	if n.Prefix == "" || n.Prefix == "_" {
		return fmt.Errorf("prefix %q is reserved", n.Prefix)
	}
	if n.IRI == "" {
		return fmt.Errorf("prefix %q has no namespace IRI", n.Prefix)
	}
	if i, ok := ns.index[n.Prefix]; ok {
		if ns.list[i].IRI == n.IRI {
			return nil
		}
		return fmt.Errorf("%w: %s bound to %s", ErrDuplicatePrefix, n.Prefix, ns.list[i].IRI)
	}
	ns.index[n.Prefix] = len(ns.list)
	ns.list = append(ns.list, n)
	return nil
}

// Has reports whether prefix is registered. The empty prefix and the
// blank node prefix "_" are always considered registered.
func (ns *Namespaces) Has(prefix string) bool {
	if prefix == "" || prefix == "_" {
		return true
	}
	_, ok := ns.index[prefix]
	return ok
}

// Lookup returns the namespace bound to prefix
func (ns *Namespaces) Lookup(prefix string) (Namespace, bool) {
	i, ok := ns.index[prefix]
	if !ok {
		return Namespace{}, false
	}
	return ns.list[i], true
}

// Default returns the project's own namespace
func (ns *Namespaces) Default() Namespace {
	n, _ := ns.Lookup(ns.defaultPrefix)
	return n
}

// All returns the registered namespaces in registration order
func (ns *Namespaces) All() []Namespace {
	out := make([]Namespace, len(ns.list))
	copy(out, ns.list)
	return out
}

// Expand turns a compact IRI into a full one
func (ns *Namespaces) Expand(compact string) (string, bool) {
	prefix, local, ok := strings.Cut(compact, ":")
	if !ok {
		return "", false
	}
	n, found := ns.Lookup(prefix)
	if !found {
		return "", false
	}
	return n.IRI + local, true
}
