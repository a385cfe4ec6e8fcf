package graph

import "strings"

// LinkSet remembers keys that have already been linked to a parent.
// A LinkSet belongs to a single ingestion pass and is not shared.
type LinkSet struct {
	seen map[string]struct{}
}

// NewLinkSet returns an empty set
func NewLinkSet() *LinkSet {
	return &LinkSet{seen: make(map[string]struct{})}
}

// Seen reports whether key was marked
func (l *LinkSet) Seen(key string) bool {
	_, ok := l.seen[strings.TrimSpace(key)]
	return ok
}

// Mark records key and reports whether it was new
func (l *LinkSet) Mark(key string) bool {
	key = strings.TrimSpace(key)
	if _, ok := l.seen[key]; ok {
		return false
	}
	l.seen[key] = struct{}{}
	return true
}

// Len returns the number of marked keys
func (l *LinkSet) Len() int {
	return len(l.seen)
}

// Counter hands out running 1-based sequence numbers per key
type Counter struct {
	next map[string]int
}

// NewCounter returns a counter with no keys
func NewCounter() *Counter {
	return &Counter{next: make(map[string]int)}
}

// Next returns the next number for key, starting at 1
func (c *Counter) Next(key string) int {
	key = strings.TrimSpace(key)
	c.next[key]++
	return c.next[key]
}

// Peek returns the last number handed out for key, or 0
func (c *Counter) Peek(key string) int {
	return c.next[strings.TrimSpace(key)]
}
