package rdf

import (
	"sort"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/mentalhealthdb/mhdb/pkg/graph"
	"github.com/rs/zerolog"
)

// Style selects how a bare label is turned into a local name
type Style int

const (
	// StyleDefault keeps the label's words joined by underscores.
	// Used for instance-like entities: people, references, questionnaires.
	StyleDefault Style = iota
	// StylePascalCase capitalizes and concatenates words.
	// Used for class-like entities: disorders, categories, sensors, states.
	StylePascalCase
)

func (s Style) String() string {
	if s == StylePascalCase {
		return "PascalCase"
	}
	return "default"
}

// Resolver renders raw spreadsheet labels as Turtle IRI tokens
type Resolver struct {
	ns     *Namespaces
	logger zerolog.Logger

	mu      sync.Mutex
	unknown map[string]int
}

// NewResolver creates a resolver over a prefix registry
func NewResolver(ns *Namespaces, logger zerolog.Logger) *Resolver {
	return &Resolver{
		ns:      ns,
		logger:  logger,
		unknown: make(map[string]int),
	}
}

// Namespaces returns the registry the resolver checks prefixes against
func (r *Resolver) Namespaces() *Namespaces {
	return r.ns
}

// Resolve turns label into a compact IRI, a bracketed absolute IRI, or ""
// when the label is absent or carries an unknown prefix. An empty result
// is dropped by Store.Merge.
func (r *Resolver) Resolve(label string, style Style) string {
	label = strings.TrimSpace(label)
	if graph.IsSentinel(label) {
		return ""
	}
	if strings.HasPrefix(label, "<") && strings.HasSuffix(label, ">") {
		inner := strings.TrimSpace(label[1 : len(label)-1])
		if inner == "" {
			return ""
		}
		return "<" + escapeIRI(inner) + ">"
	}

	if strings.Contains(label, ":") && !strings.Contains(label, ": ") {
		if strings.HasSuffix(label, ":") {
			return r.Resolve(strings.TrimSuffix(label, ":"), style)
		}
		prefix, local, _ := strings.Cut(label, ":")
		if r.ns.Has(prefix) {
			if validLocalName(local) {
				return label
			}
			return prefix + ":" + LocalName(local, StyleDefault)
		}
		if strings.Contains(label, ":/") {
			return "<" + escapeIRI(label) + ">"
		}
		r.warnUnknown(prefix, label)
		return ""
	}

	local := LocalName(label, style)
	if local == "" {
		return ""
	}
	return r.ns.Default().Prefix + ":" + local
}

// Class resolves a class-like label
func (r *Resolver) Class(label string) string {
	return r.Resolve(label, StylePascalCase)
}

// Instance resolves an instance-like label
func (r *Resolver) Instance(label string) string {
	return r.Resolve(label, StyleDefault)
}

// Compact joins a registered prefix and a sanitized local name,
// e.g. Compact("ICD9CM", "296.20") is "ICD9CM:296.20".
func (r *Resolver) Compact(prefix, local string) string {
	if graph.IsSentinel(local) {
		return ""
	}
	if !r.ns.Has(prefix) {
		r.warnUnknown(prefix, prefix+":"+local)
		return ""
	}
	name := LocalName(local, StyleDefault)
	if name == "" {
		return ""
	}
	return prefix + ":" + name
}

// Unknown returns how often each unknown prefix was seen
func (r *Resolver) Unknown() map[string]int {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]int, len(r.unknown))
	for k, v := range r.unknown {
		out[k] = v
	}
	return out
}

// UnknownPrefixes returns the unknown prefixes seen, sorted
func (r *Resolver) UnknownPrefixes() []string {
	counts := r.Unknown()
	out := make([]string, 0, len(counts))
	for k := range counts {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (r *Resolver) warnUnknown(prefix, label string) {
	r.mu.Lock()
	r.unknown[prefix]++
	first := r.unknown[prefix] == 1
	r.mu.Unlock()

	ev := r.logger.Debug()
	if first {
		ev = r.logger.Warn()
	}
	ev.Str("prefix", prefix).Str("label", label).Msg("unknown prefix")
}

// LocalName sanitizes label into a Turtle local name.
//
// StyleDefault trims, turns spaces into underscores, collapses "_-_" to
// "-" and keeps letters, digits, '-', '.' and '_'. StylePascalCase splits
// on anything but letters and digits (a '.' between digits is kept) and
// upper-cases the first rune of every word.
func LocalName(label string, style Style) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return ""
	}

	var out string
	if style == StylePascalCase {
		out = pascalCase(label)
	} else {
		out = defaultCase(label)
	}

	out = strings.TrimLeft(out, "-.")
	out = strings.TrimRight(out, ".")
	return out
}

func defaultCase(label string) string {
	label = strings.ReplaceAll(label, " ", "_")
	label = strings.ReplaceAll(label, "_-_", "-")

	var b strings.Builder
	b.Grow(len(label))
	for _, r := range label {
		if isWordRune(r) || r == '-' || r == '.' || r == '_' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func pascalCase(label string) string {
	runes := []rune(label)
	var b strings.Builder
	b.Grow(len(label))

	startOfWord := true
	for i, r := range runes {
		switch {
		case isWordRune(r):
			if startOfWord {
				r = unicode.ToUpper(r)
				startOfWord = false
			}
			b.WriteRune(r)
		case r == '.' && i > 0 && i+1 < len(runes) && unicode.IsDigit(runes[i-1]) && unicode.IsDigit(runes[i+1]):
			b.WriteRune(r)
		default:
			startOfWord = true
		}
	}
	return b.String()
}

func isWordRune(r rune) bool {
	return (unicode.IsLetter(r) || unicode.IsDigit(r)) && isPN_CHARS(r)
}

// validLocalName reports whether s can follow "prefix:" unescaped
func validLocalName(s string) bool {
	if s == "" {
		return true
	}
	first, _ := utf8.DecodeRuneInString(s)
	if !isPN_CHARS_U(first) && first != ':' && !(first >= '0' && first <= '9') {
		return false
	}
	if strings.HasSuffix(s, ".") {
		return false
	}
	for _, r := range s {
		if !isPN_CHARS(r) && r != '.' && r != ':' {
			return false
		}
	}
	return true
}

// escapeIRI percent-encodes the characters an IRIREF may not contain
func escapeIRI(iri string) string {
	var b strings.Builder
	b.Grow(len(iri))
	for _, r := range iri {
		switch {
		case r <= 0x20, r == '<', r == '>', r == '"', r == '{', r == '}', r == '|', r == '^', r == '`', r == '\\':
			for _, c := range []byte(string(r)) {
				b.WriteString("%")
				b.WriteString(strings.ToUpper(hexByte(c)))
			}
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func hexByte(c byte) string {
	const digits = "0123456789abcdef"
	return string([]byte{digits[c>>4], digits[c&0x0f]})
}
