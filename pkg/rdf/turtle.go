package rdf

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ParseError reports where in a Turtle document parsing stopped
type ParseError struct {
	Line   int
	Column int
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d, column %d: %v", e.Line, e.Column, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// TurtleParser reads Turtle documents. It is used to check that a
// generated document parses and to load documents for export.
type TurtleParser struct {
	input            string
	pos              int
	length           int
	prefixes         map[string]string
	base             string
	blankNodeCounter int
	extraTriples     []*Triple // triples produced while parsing [ ] and ( ) terms
}

// NewTurtleParser creates a new Turtle parser
func NewTurtleParser(input string) *TurtleParser {
	return &TurtleParser{
		input:    input,
		length:   len(input),
		prefixes: make(map[string]string),
	}
}

// SetBaseURI sets the base URI for resolving relative IRIs
func (p *TurtleParser) SetBaseURI(baseURI string) {
	p.base = baseURI
}

// Prefixes returns the prefixes declared so far
func (p *TurtleParser) Prefixes() map[string]string {
	out := make(map[string]string, len(p.prefixes))
	for k, v := range p.prefixes {
		out[k] = v
	}
	return out
}

// Base returns the current base IRI
func (p *TurtleParser) Base() string {
	return p.base
}

// Parse parses the Turtle document and returns triples
func (p *TurtleParser) Parse() ([]*Triple, error) {
	var triples []*Triple

	for p.pos < p.length {
		p.skipWhitespaceAndComments()
		if p.pos >= p.length {
			break
		}

		var err error
		switch {
		case p.matchExactKeyword("@prefix"):
			err = p.parsePrefix(true)
		case p.matchKeyword("PREFIX"):
			err = p.parsePrefix(false)
		case p.matchExactKeyword("@base"):
			err = p.parseBase(true)
		case p.matchKeyword("BASE"):
			err = p.parseBase(false)
		default:
			var block []*Triple
			block, err = p.parseTripleBlock()
			triples = append(triples, block...)
		}
		if err != nil {
			return nil, p.errorAt(err)
		}
	}

	return triples, nil
}

func (p *TurtleParser) errorAt(err error) error {
	pos := p.pos
	if pos > p.length {
		pos = p.length
	}
	consumed := p.input[:pos]
	line := strings.Count(consumed, "\n") + 1
	col := pos - strings.LastIndex(consumed, "\n")
	return &ParseError{Line: line, Column: col, Err: err}
}

// skipWhitespaceAndComments skips whitespace and comments
func (p *TurtleParser) skipWhitespaceAndComments() {
	for p.pos < p.length {
		ch := p.input[p.pos]
		if ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' {
			p.pos++
			continue
		}
		if ch == '#' {
			for p.pos < p.length && p.input[p.pos] != '\n' {
				p.pos++
			}
			continue
		}
		break
	}
}

// matchKeyword checks if the current position matches a keyword (case-insensitive)
func (p *TurtleParser) matchKeyword(keyword string) bool {
	end := p.pos + len(keyword)
	if end > p.length || !strings.EqualFold(p.input[p.pos:end], keyword) {
		return false
	}
	// "base:x" is a prefixed name, not a directive
	if end < p.length && (isKeywordChar(p.input[end]) || p.input[end] == ':') {
		return false
	}
	p.pos = end
	return true
}

// matchExactKeyword checks if the current position matches a keyword (case-sensitive)
func (p *TurtleParser) matchExactKeyword(keyword string) bool {
	end := p.pos + len(keyword)
	if end > p.length || p.input[p.pos:end] != keyword {
		return false
	}
	if end < p.length && isKeywordChar(p.input[end]) {
		return false
	}
	p.pos = end
	return true
}

func isKeywordChar(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9')
}

// parsePrefix parses a PREFIX declaration
func (p *TurtleParser) parsePrefix(turtleStyle bool) error {
	p.skipWhitespaceAndComments()

	prefixStart := p.pos
	for p.pos < p.length && p.input[p.pos] != ':' {
		ch := p.input[p.pos]
		if ch == ' ' || ch == '\t' || ch == '\n' || ch == '<' {
			return fmt.Errorf("expected ':' after prefix name")
		}
		p.pos++
	}
	if p.pos >= p.length {
		return fmt.Errorf("expected ':' after prefix name")
	}
	prefix := p.input[prefixStart:p.pos]
	p.pos++ // skip ':'

	p.skipWhitespaceAndComments()
	iri, err := p.parseIRI()
	if err != nil {
		return fmt.Errorf("failed to parse prefix IRI: %w", err)
	}
	p.prefixes[prefix] = iri

	return p.endDirective(turtleStyle)
}

// parseBase parses a BASE declaration
func (p *TurtleParser) parseBase(turtleStyle bool) error {
	p.skipWhitespaceAndComments()

	baseIRI, err := p.parseIRI()
	if err != nil {
		return fmt.Errorf("failed to parse base IRI: %w", err)
	}
	p.base = baseIRI

	return p.endDirective(turtleStyle)
}

// endDirective consumes the '.' that ends @prefix and @base. SPARQL-style
// directives must not have one.
func (p *TurtleParser) endDirective(turtleStyle bool) error {
	p.skipWhitespaceAndComments()
	hasDot := p.pos < p.length && p.input[p.pos] == '.'
	switch {
	case turtleStyle && !hasDot:
		return fmt.Errorf("expected '.' after directive")
	case !turtleStyle && hasDot:
		return fmt.Errorf("SPARQL-style directive should not be followed by '.'")
	case hasDot:
		p.pos++
	}
	return nil
}

// parseTripleBlock parses a subject followed by a predicate-object list
func (p *TurtleParser) parseTripleBlock() ([]*Triple, error) {
	var triples []*Triple

	subject, err := p.parseTerm()
	if err != nil {
		return nil, fmt.Errorf("failed to parse subject: %w", err)
	}
	if _, ok := subject.(*Literal); ok {
		return nil, fmt.Errorf("literals cannot be used as subjects")
	}
	triples = append(triples, p.takeExtra()...)

	p.skipWhitespaceAndComments()
	// "[ :p :o ] ." is a complete statement on its own
	if _, isBlank := subject.(*BlankNode); isBlank && p.pos < p.length && p.input[p.pos] == '.' {
		p.pos++
		return triples, nil
	}

	list, err := p.parsePredicateObjectList(subject, '.')
	if err != nil {
		return nil, err
	}
	triples = append(triples, list...)

	p.skipWhitespaceAndComments()
	if p.pos >= p.length || p.input[p.pos] != '.' {
		return nil, fmt.Errorf("expected '.' at end of statement")
	}
	p.pos++
	return triples, nil
}

// parsePredicateObjectList parses "p o1, o2 ; q o3" up to (not including) end
func (p *TurtleParser) parsePredicateObjectList(subject Term, end byte) ([]*Triple, error) {
	var triples []*Triple

	for {
		p.skipWhitespaceAndComments()

		predicate, err := p.parseTerm()
		if err != nil {
			return nil, fmt.Errorf("failed to parse predicate: %w", err)
		}
		if _, ok := predicate.(*NamedNode); !ok {
			return nil, fmt.Errorf("predicate must be an IRI, got %s", predicate)
		}

		for {
			p.skipWhitespaceAndComments()

			object, err := p.parseTerm()
			if err != nil {
				return nil, fmt.Errorf("failed to parse object: %w", err)
			}
			triples = append(triples, p.takeExtra()...)
			triples = append(triples, NewTriple(subject, predicate, object))

			p.skipWhitespaceAndComments()
			if p.pos < p.length && p.input[p.pos] == ',' {
				p.pos++
				continue
			}
			break
		}

		if p.pos < p.length && p.input[p.pos] == ';' {
			// repeated semicolons are allowed, as is a trailing one
			for p.pos < p.length && p.input[p.pos] == ';' {
				p.pos++
				p.skipWhitespaceAndComments()
			}
			if p.pos < p.length && p.input[p.pos] == end {
				return triples, nil
			}
			continue
		}
		return triples, nil
	}
}

func (p *TurtleParser) takeExtra() []*Triple {
	extra := p.extraTriples
	p.extraTriples = nil
	return extra
}

// parseTerm parses an IRI, prefixed name, blank node, literal, collection
// or the keyword 'a'
func (p *TurtleParser) parseTerm() (Term, error) {
	p.skipWhitespaceAndComments()
	if p.pos >= p.length {
		return nil, fmt.Errorf("unexpected end of input")
	}

	ch := p.input[p.pos]
	switch {
	case ch == '<':
		iri, err := p.parseIRI()
		if err != nil {
			return nil, err
		}
		return NewNamedNode(iri), nil
	case ch == '_' && p.pos+1 < p.length && p.input[p.pos+1] == ':':
		return p.parseBlankNode()
	case ch == '[':
		return p.parseAnonymousBlankNode()
	case ch == '(':
		return p.parseCollection()
	case ch == '"' || ch == '\'':
		return p.parseLiteral()
	case isNumberStart(p.input[p.pos:]):
		return p.parseNumber()
	}

	if ch == 'a' {
		next, _ := utf8.DecodeRuneInString(p.input[p.pos+1:])
		if p.pos+1 >= p.length || !(isPN_CHARS(next) || next == ':' || next == '.') {
			p.pos++
			return RDFType, nil
		}
	}
	if p.matchExactKeyword("true") {
		return NewLiteralWithDatatype("true", XSDBoolean), nil
	}
	if p.matchExactKeyword("false") {
		return NewLiteralWithDatatype("false", XSDBoolean), nil
	}

	r, _ := p.peekRune()
	if isPN_CHARS_BASE(r) || ch == ':' {
		return p.parsePrefixedName()
	}

	return nil, fmt.Errorf("unexpected character %q", r)
}

func isNumberStart(s string) bool {
	if s == "" {
		return false
	}
	i := 0
	if s[0] == '+' || s[0] == '-' {
		i++
	}
	if i < len(s) && s[i] >= '0' && s[i] <= '9' {
		return true
	}
	return i+1 < len(s) && s[i] == '.' && s[i+1] >= '0' && s[i+1] <= '9'
}

func (p *TurtleParser) peekRune() (rune, int) {
	if p.pos >= p.length {
		return 0, 0
	}
	return utf8.DecodeRuneInString(p.input[p.pos:])
}

func isPN_CHARS_BASE(r rune) bool {
	return (r >= 'A' && r <= 'Z') ||
		(r >= 'a' && r <= 'z') ||
		(r >= 0x00C0 && r <= 0x00D6) ||
		(r >= 0x00D8 && r <= 0x00F6) ||
		(r >= 0x00F8 && r <= 0x02FF) ||
		(r >= 0x0370 && r <= 0x037D) ||
		(r >= 0x037F && r <= 0x1FFF) ||
		(r >= 0x200C && r <= 0x200D) ||
		(r >= 0x2070 && r <= 0x218F) ||
		(r >= 0x2C00 && r <= 0x2FEF) ||
		(r >= 0x3001 && r <= 0xD7FF) ||
		(r >= 0xF900 && r <= 0xFDCF) ||
		(r >= 0xFDF0 && r <= 0xFFFD) ||
		(r >= 0x10000 && r <= 0xEFFFF)
}

func isPN_CHARS_U(r rune) bool {
	return isPN_CHARS_BASE(r) || r == '_'
}

func isPN_CHARS(r rune) bool {
	return isPN_CHARS_U(r) ||
		r == '-' ||
		(r >= '0' && r <= '9') ||
		r == 0x00B7 ||
		(r >= 0x0300 && r <= 0x036F) ||
		(r >= 0x203F && r <= 0x2040)
}

func isHexDigit(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

// parseIRI parses <...> and resolves it against the base
func (p *TurtleParser) parseIRI() (string, error) {
	if p.pos >= p.length || p.input[p.pos] != '<' {
		return "", fmt.Errorf("expected '<' at start of IRI")
	}
	p.pos++ // skip '<'

	var result strings.Builder
	for p.pos < p.length && p.input[p.pos] != '>' {
		ch := p.input[p.pos]
		if ch == '\\' {
			escaped, err := p.processUnicodeEscape()
			if err != nil {
				return "", fmt.Errorf("invalid escape sequence in IRI: %w", err)
			}
			result.WriteString(escaped)
			continue
		}
		if ch == ' ' || ch == '<' || ch == '"' || ch == '{' || ch == '}' || ch == '|' || ch == '^' || ch == '`' || ch <= 0x1F {
			return "", fmt.Errorf("invalid character in IRI: %q", ch)
		}
		result.WriteByte(ch)
		p.pos++
	}
	if p.pos >= p.length {
		return "", fmt.Errorf("unclosed IRI")
	}
	p.pos++ // skip '>'

	iri := result.String()
	if !strings.Contains(iri, ":") {
		if p.base == "" {
			return "", fmt.Errorf("relative IRI <%s> without base", iri)
		}
		iri = resolveRelativeIRI(p.base, iri)
	}
	return iri, nil
}

// resolveRelativeIRI covers the reference forms a generated document uses:
// empty, fragment, absolute path and plain relative path.
func resolveRelativeIRI(base, relative string) string {
	if i := strings.IndexByte(base, '#'); i >= 0 {
		base = base[:i]
	}
	switch {
	case relative == "":
		return base
	case strings.HasPrefix(relative, "#"):
		return base + relative
	case strings.HasPrefix(relative, "/"):
		if scheme := strings.Index(base, "://"); scheme >= 0 {
			if slash := strings.IndexByte(base[scheme+3:], '/'); slash >= 0 {
				return base[:scheme+3+slash] + relative
			}
		}
		return base + relative
	default:
		if slash := strings.LastIndexByte(base, '/'); slash >= 0 {
			return base[:slash+1] + relative
		}
		return base + relative
	}
}

// processUnicodeEscape decodes \uXXXX or \UXXXXXXXX at the current position
func (p *TurtleParser) processUnicodeEscape() (string, error) {
	if p.pos+1 >= p.length || p.input[p.pos] != '\\' {
		return "", fmt.Errorf("expected unicode escape")
	}
	var digits int
	switch p.input[p.pos+1] {
	case 'u':
		digits = 4
	case 'U':
		digits = 8
	default:
		return "", fmt.Errorf("unexpected escape \\%c", p.input[p.pos+1])
	}
	start := p.pos + 2
	if start+digits > p.length {
		return "", fmt.Errorf("incomplete unicode escape")
	}
	hex := p.input[start : start+digits]
	for i := 0; i < len(hex); i++ {
		if !isHexDigit(hex[i]) {
			return "", fmt.Errorf("invalid unicode escape \\%c%s", p.input[p.pos+1], hex)
		}
	}
	code, err := strconv.ParseUint(hex, 16, 32)
	if err != nil || !utf8.ValidRune(rune(code)) {
		return "", fmt.Errorf("invalid code point %s", hex)
	}
	p.pos = start + digits
	return string(rune(code)), nil
}

// parseBlankNode parses _:label
func (p *TurtleParser) parseBlankNode() (Term, error) {
	p.pos += 2 // skip '_:'
	start := p.pos
	for p.pos < p.length {
		r, size := p.peekRune()
		if !isPN_CHARS(r) && r != '.' {
			break
		}
		p.pos += size
	}
	// a trailing '.' ends the statement
	for p.pos > start && p.input[p.pos-1] == '.' {
		p.pos--
	}
	if p.pos == start {
		return nil, fmt.Errorf("empty blank node label")
	}
	return NewBlankNode(p.input[start:p.pos]), nil
}

func (p *TurtleParser) newBlankNode() *BlankNode {
	p.blankNodeCounter++
	return NewBlankNode(fmt.Sprintf("b%d", p.blankNodeCounter))
}

// parseAnonymousBlankNode parses [] and [ p o ; ... ]
func (p *TurtleParser) parseAnonymousBlankNode() (Term, error) {
	p.pos++ // skip '['
	node := p.newBlankNode()

	p.skipWhitespaceAndComments()
	if p.pos < p.length && p.input[p.pos] == ']' {
		p.pos++
		return node, nil
	}

	outer := p.takeExtra()
	inner, err := p.parsePredicateObjectList(node, ']')
	if err != nil {
		return nil, err
	}
	p.skipWhitespaceAndComments()
	if p.pos >= p.length || p.input[p.pos] != ']' {
		return nil, fmt.Errorf("expected ']' to close blank node property list")
	}
	p.pos++
	p.extraTriples = append(outer, inner...)
	return node, nil
}

// parseCollection parses ( o1 o2 ... ) into an rdf:first/rdf:rest list
func (p *TurtleParser) parseCollection() (Term, error) {
	p.pos++ // skip '('

	var items []Term
	var extra []*Triple
	for {
		p.skipWhitespaceAndComments()
		if p.pos >= p.length {
			return nil, fmt.Errorf("unclosed collection")
		}
		if p.input[p.pos] == ')' {
			p.pos++
			break
		}
		item, err := p.parseTerm()
		if err != nil {
			return nil, fmt.Errorf("failed to parse collection item: %w", err)
		}
		extra = append(extra, p.takeExtra()...)
		items = append(items, item)
	}

	if len(items) == 0 {
		p.extraTriples = extra
		return RDFNil, nil
	}

	nodes := make([]*BlankNode, len(items))
	for i := range items {
		nodes[i] = p.newBlankNode()
	}
	for i, item := range items {
		extra = append(extra, NewTriple(nodes[i], RDFFirst, item))
		var rest Term = RDFNil
		if i+1 < len(nodes) {
			rest = nodes[i+1]
		}
		extra = append(extra, NewTriple(nodes[i], RDFRest, rest))
	}
	p.extraTriples = extra
	return nodes[0], nil
}

// parseLiteral parses a quoted literal with optional language tag or datatype
func (p *TurtleParser) parseLiteral() (Term, error) {
	var (
		value string
		err   error
	)
	if p.pos+3 <= p.length && (p.input[p.pos:p.pos+3] == `"""` || p.input[p.pos:p.pos+3] == `'''`) {
		value, err = p.parseLongString(p.input[p.pos : p.pos+3])
	} else {
		value, err = p.parseShortString()
	}
	if err != nil {
		return nil, err
	}
	return p.parseLiteralSuffix(value)
}

func (p *TurtleParser) parseShortString() (string, error) {
	quote := p.input[p.pos]
	p.pos++ // skip opening quote

	var value strings.Builder
	for p.pos < p.length {
		ch := p.input[p.pos]
		switch {
		case ch == quote:
			p.pos++
			return value.String(), nil
		case ch == '\n' || ch == '\r':
			return "", fmt.Errorf("line break in short string literal")
		case ch == '\\':
			if err := p.parseStringEscape(&value); err != nil {
				return "", err
			}
		default:
			value.WriteByte(ch)
			p.pos++
		}
	}
	return "", fmt.Errorf("unclosed string literal")
}

func (p *TurtleParser) parseLongString(delimiter string) (string, error) {
	p.pos += 3 // skip opening delimiter

	var value strings.Builder
	for p.pos < p.length {
		if strings.HasPrefix(p.input[p.pos:], delimiter) {
			// the closing delimiter is the last three quotes of a run
			run := p.pos
			for run+3 < p.length && p.input[run+3] == delimiter[0] {
				value.WriteByte(delimiter[0])
				run++
			}
			p.pos = run + 3
			return value.String(), nil
		}
		if p.input[p.pos] == '\\' {
			if err := p.parseStringEscape(&value); err != nil {
				return "", err
			}
			continue
		}
		value.WriteByte(p.input[p.pos])
		p.pos++
	}
	return "", fmt.Errorf("unclosed long string literal")
}

func (p *TurtleParser) parseStringEscape(value *strings.Builder) error {
	if p.pos+1 >= p.length {
		return fmt.Errorf("incomplete escape sequence")
	}
	next := p.input[p.pos+1]
	if next == 'u' || next == 'U' {
		escaped, err := p.processUnicodeEscape()
		if err != nil {
			return err
		}
		value.WriteString(escaped)
		return nil
	}

	switch next {
	case 'n':
		value.WriteByte('\n')
	case 't':
		value.WriteByte('\t')
	case 'r':
		value.WriteByte('\r')
	case 'b':
		value.WriteByte('\b')
	case 'f':
		value.WriteByte('\f')
	case '"', '\'', '\\':
		value.WriteByte(next)
	default:
		return fmt.Errorf("invalid escape sequence \\%c", next)
	}
	p.pos += 2
	return nil
}

func (p *TurtleParser) parseLiteralSuffix(value string) (Term, error) {
	if p.pos < p.length && p.input[p.pos] == '@' {
		p.pos++ // skip '@'
		start := p.pos
		for p.pos < p.length && (isKeywordChar(p.input[p.pos]) || p.input[p.pos] == '-') {
			p.pos++
		}
		lang := p.input[start:p.pos]
		primary, _, _ := strings.Cut(lang, "-")
		if primary == "" || len(primary) > 8 {
			return nil, fmt.Errorf("invalid language tag %q", lang)
		}
		return NewLiteralWithLanguage(value, lang), nil
	}

	if strings.HasPrefix(p.input[p.pos:], "^^") {
		p.pos += 2 // skip '^^'
		datatype, err := p.parseTerm()
		if err != nil {
			return nil, fmt.Errorf("failed to parse datatype: %w", err)
		}
		node, ok := datatype.(*NamedNode)
		if !ok {
			return nil, fmt.Errorf("datatype must be an IRI or prefixed name")
		}
		return NewLiteralWithDatatype(value, node), nil
	}

	return NewLiteral(value), nil
}

// parseNumber parses integer, decimal and double shorthand literals
func (p *TurtleParser) parseNumber() (Term, error) {
	start := p.pos
	if p.input[p.pos] == '+' || p.input[p.pos] == '-' {
		p.pos++
	}
	digits := func() int {
		n := 0
		for p.pos < p.length && p.input[p.pos] >= '0' && p.input[p.pos] <= '9' {
			p.pos++
			n++
		}
		return n
	}

	intDigits := digits()
	datatype := XSDInteger
	if p.pos+1 < p.length && p.input[p.pos] == '.' && p.input[p.pos+1] >= '0' && p.input[p.pos+1] <= '9' {
		p.pos++
		digits()
		datatype = XSDDecimal
	} else if intDigits == 0 {
		return nil, fmt.Errorf("expected digits in number")
	}
	if p.pos < p.length && (p.input[p.pos] == 'e' || p.input[p.pos] == 'E') {
		p.pos++
		if p.pos < p.length && (p.input[p.pos] == '+' || p.input[p.pos] == '-') {
			p.pos++
		}
		if digits() == 0 {
			return nil, fmt.Errorf("expected digits in exponent")
		}
		datatype = XSDDouble
	}

	return NewLiteralWithDatatype(p.input[start:p.pos], datatype), nil
}

// parsePrefixedName parses prefix:local and expands it
func (p *TurtleParser) parsePrefixedName() (Term, error) {
	start := p.pos

	if p.input[p.pos] != ':' {
		r, size := p.peekRune()
		if !isPN_CHARS_BASE(r) {
			return nil, fmt.Errorf("invalid prefix start character %q", r)
		}
		p.pos += size
		for p.pos < p.length && p.input[p.pos] != ':' {
			r, size := p.peekRune()
			if !isPN_CHARS(r) && r != '.' {
				break
			}
			p.pos += size
		}
	}
	if p.pos >= p.length || p.input[p.pos] != ':' {
		return nil, fmt.Errorf("expected ':' in prefixed name %q", p.input[start:p.pos])
	}
	prefix := p.input[start:p.pos]
	if strings.HasSuffix(prefix, ".") {
		return nil, fmt.Errorf("prefix %q cannot end with '.'", prefix)
	}
	p.pos++ // skip ':'

	var local strings.Builder
	first := true
	for p.pos < p.length {
		r, size := p.peekRune()

		if first {
			first = false
			if r == '-' || r == '.' {
				return nil, fmt.Errorf("local name cannot start with %q", r)
			}
		}

		switch {
		case r == '%':
			if p.pos+2 >= p.length || !isHexDigit(p.input[p.pos+1]) || !isHexDigit(p.input[p.pos+2]) {
				return nil, fmt.Errorf("invalid percent encoding in prefixed name")
			}
			local.WriteString(p.input[p.pos : p.pos+3])
			p.pos += 3
			continue
		case r == '\\':
			if p.pos+1 >= p.length || !strings.ContainsRune("_~.-!$&'()*+,;=/?#@%:", rune(p.input[p.pos+1])) {
				return nil, fmt.Errorf("invalid escape sequence in prefixed name")
			}
			local.WriteByte(p.input[p.pos+1])
			p.pos += 2
			continue
		case isPN_CHARS(r) || r == ':' || r == '.':
			local.WriteRune(r)
			p.pos += size
			continue
		}
		break
	}

	// trailing dots belong to the statement, not the name
	name := local.String()
	trimmed := strings.TrimRight(name, ".")
	p.pos -= len(name) - len(trimmed)

	ns, ok := p.prefixes[prefix]
	if !ok {
		return nil, fmt.Errorf("undefined prefix %q", prefix)
	}
	return NewNamedNode(ns + trimmed), nil
}
