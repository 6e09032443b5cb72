package composedql

import (
	"sort"
	"strings"
	"unicode/utf8"

	logging "github.com/ipfs/go-log/v2"
	"go.uber.org/zap"
)

var log = logging.Logger("composedql")

// ParserConfig controls parser behavior.
// If nil is passed, defaults are used.
type ParserConfig struct {
	// AllowMissing makes ParseValue, ParseFieldValue and their Try variants
	// treat a nil query or field as "no result" instead of INVALID_INPUT.
	AllowMissing bool

	// OnError receives every failure swallowed by TryParse and TryParseField.
	OnError func(*ParseError)

	// Logger overrides the package logger.
	Logger *zap.SugaredLogger
}

func (c *ParserConfig) logger() *zap.SugaredLogger {
	if c != nil && c.Logger != nil {
		return c.Logger
	}
	return &log.SugaredLogger
}

// Parse parses a composed query such as "name,~photos(url).filter(recent)".
// It returns nil when the query holds no fields.
func Parse(query string, config *ParserConfig) (Query, error) {
	p := newParser(query)
	q, err := p.parseScope(0, len(query), KindField)
	if err != nil {
		return nil, err
	}
	config.logger().Debugw("parsed query", "query", query, "fields", len(q))
	return q, nil
}

// ParseField parses exactly one field segment. It returns a nil Node when
// the segment holds no identifier.
func ParseField(segment string, config *ParserConfig) (Node, error) {
	return ParseFieldKind(segment, KindField, config)
}

// ParseFieldKind parses one field segment like ParseField, but gives a plain
// identifier the kind k. k must be KindField, KindArg or KindProperty. A
// resource sigil or an owned scope still decides the kind on its own.
// A property carries no source and cannot have a chain of its own.
func ParseFieldKind(segment string, k Kind, config *ParserConfig) (Node, error) {
	switch k {
	case KindField, KindArg, KindProperty:
	default:
		return nil, &ParseError{Code: ErrInvalidInput, Message: "invalid field kind", Got: string(k)}
	}
	p := newParser(segment)
	n, err := p.parseSingle(0, len(segment), k)
	if err != nil {
		return nil, err
	}
	config.logger().Debugw("parsed field", "segment", segment, "kind", k, "empty", n == nil)
	return n, nil
}

// ParseFieldScope parses one field segment and resolves scope as its
// parenthesized scope, exactly as "segment(scope)" would be parsed.
//
// Error positions are offsets into that combined text, built from the
// trimmed segment: for ("a", "x)(y") the stray ')' is reported at 1:4.
func ParseFieldScope(segment, scope string, config *ParserConfig) (Node, error) {
	segment = strings.TrimSpace(segment)
	p := newParser(segment + "(" + scope + ")")
	if err := p.checkBalance(len(segment)+1, len(p.input)-1); err != nil {
		return nil, err
	}
	n, err := p.parseSingle(0, len(p.input), KindField)
	if err != nil {
		return nil, err
	}
	config.logger().Debugw("parsed field", "segment", segment, "scope", scope, "empty", n == nil)
	return n, nil
}

// --- Positions ---

type parser struct {
	input      string
	lineStarts []int // byte offsets where each line starts
}

func newParser(input string) *parser {
	p := &parser{
		input:      input,
		lineStarts: []int{0},
	}
	for i := 0; i < len(input); i++ {
		if input[i] == '\n' {
			p.lineStarts = append(p.lineStarts, i+1)
		}
	}
	return p
}

// posAt converts a byte offset into a Pos with line and column.
func (p *parser) posAt(offset int) Pos {
	line := sort.Search(len(p.lineStarts), func(i int) bool {
		return p.lineStarts[i] > offset
	})
	col := offset - p.lineStarts[line-1] + 1
	return Pos{Offset: offset, Line: line, Column: col}
}

func (p *parser) errorAt(code, message string, offset int) *ParseError {
	e := &ParseError{Code: code, Message: message, Pos: p.posAt(offset)}
	if offset < len(p.input) {
		r, _ := utf8.DecodeRuneInString(p.input[offset:])
		e.Got = string(r)
	}
	return e
}

// text returns the trimmed input between lo and hi.
func (p *parser) text(lo, hi int) string {
	return strings.TrimSpace(p.input[lo:hi])
}

// checkBalance verifies that parentheses between lo and hi nest properly.
func (p *parser) checkBalance(lo, hi int) error {
	depth, balance, open, unmatched := 0, 0, lo, -1
	for i := lo; i < hi; i++ {
		switch p.input[i] {
		case '(':
			if depth == 0 {
				open = i
			}
			depth++
			balance++
		case ')':
			balance--
			if depth == 0 {
				if unmatched < 0 {
					unmatched = i
				}
				continue
			}
			depth--
		}
	}
	if err := p.balanceError(balance, open, unmatched); err != nil {
		return err
	}
	if unmatched >= 0 {
		return p.errorAt(ErrIncompleteParse, "parse could not be completed", unmatched)
	}
	return nil
}

// balanceError fails with MALFORMED_SCOPE only when the '(' and ')' counts
// differ. A ')' that closes nothing in otherwise equal counts is left to the
// caller to report as INCOMPLETE_PARSE.
func (p *parser) balanceError(balance, open, unmatched int) error {
	switch {
	case balance < 0:
		return p.errorAt(ErrMalformedScope, "invalid parentheses", unmatched)
	case balance > 0:
		return p.errorAt(ErrMalformedScope, "invalid parentheses", open)
	}
	return nil
}

// --- Scope splitter ---

// link is one dot-separated element of a field segment together with the
// parenthesized scope it owns.
type link struct {
	lo, hi           int // identifier
	scopeLo, scopeHi int // scope content, without the parentheses
	scoped           bool
}

// segment is one comma-separated field of a scope level.
type segment struct {
	lo, hi int
	links  []link
}

type scanState int

const (
	inField    scanState = iota // reading an identifier at depth 0
	inScope                     // inside a parenthesized scope
	afterScope                  // a scope was sealed; only '.', ',' or blanks may follow
)

// scanner splits one scope level into segments in a single pass.
// Nested scopes are recorded by range and resolved later by the composer.
type scanner struct {
	p         *parser
	lo, hi    int
	pos       int
	depth     int // structural depth, never below zero
	balance   int // '(' count minus ')' count
	state     scanState
	open      int // offset of the '(' that opened the current scope
	segLo     int
	nameLo    int
	cur       link
	links     []link
	segments  []segment
	leftover  int // first stray offset, -1 if none
	unmatched int // first ')' that closed nothing, -1 if none
}

func newScanner(p *parser, lo, hi int) *scanner {
	return &scanner{p: p, lo: lo, hi: hi, segLo: lo, nameLo: lo, leftover: -1, unmatched: -1}
}

func (s *scanner) scan() ([]segment, error) {
	for s.pos = s.lo; s.pos < s.hi; s.pos++ {
		switch c := s.p.input[s.pos]; c {
		case '(':
			s.balance++
			s.depth++
			if s.depth == 1 {
				s.openScope()
			}
		case ')':
			s.balance--
			if s.depth == 0 {
				if s.unmatched < 0 {
					s.unmatched = s.pos
				}
				s.stray()
				continue
			}
			s.depth--
			if s.depth == 0 {
				s.sealScope()
			}
		case ',':
			if s.depth == 0 {
				s.endSegment()
			}
		case '.':
			if s.depth == 0 {
				s.endLink()
			}
		default:
			if s.depth == 0 && s.state == afterScope && !isBlank(c) {
				s.stray()
			}
		}
	}
	if err := s.p.balanceError(s.balance, s.open, s.unmatched); err != nil {
		return nil, err
	}
	if s.leftover >= 0 {
		return nil, s.p.errorAt(ErrIncompleteParse, "parse could not be completed", s.leftover)
	}
	s.endSegment()
	return s.segments, nil
}

func (s *scanner) openScope() {
	if s.state == afterScope {
		s.stray()
	} else {
		s.cur.lo, s.cur.hi = s.nameLo, s.pos
	}
	s.open = s.pos
	s.cur.scopeLo = s.pos + 1
	s.state = inScope
}

func (s *scanner) sealScope() {
	s.cur.scopeHi = s.pos
	s.cur.scoped = true
	s.state = afterScope
}

func (s *scanner) endLink() {
	s.flushLink()
	s.nameLo = s.pos + 1
}

func (s *scanner) flushLink() {
	if s.state == inField {
		s.cur.lo, s.cur.hi = s.nameLo, s.pos
	}
	s.links = append(s.links, s.cur)
	s.cur = link{}
	s.state = inField
}

func (s *scanner) endSegment() {
	s.flushLink()
	if s.p.text(s.segLo, s.pos) != "" {
		s.segments = append(s.segments, segment{lo: s.segLo, hi: s.pos, links: s.links})
	}
	s.links = nil
	s.segLo = s.pos + 1
	s.nameLo = s.pos + 1
}

func (s *scanner) stray() {
	if s.leftover < 0 {
		s.leftover = s.pos
	}
}

func isBlank(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f'
}

// --- Composer ---

// parseScope parses the input between lo and hi as a comma-separated field
// list. base is the kind given to plain identifiers at this level.
func (p *parser) parseScope(lo, hi int, base Kind) (Query, error) {
	segments, err := newScanner(p, lo, hi).scan()
	if err != nil {
		return nil, err
	}
	var q Query
	for _, seg := range segments {
		n, err := p.compose(seg, base)
		if err != nil {
			return nil, err
		}
		if n != nil {
			q = append(q, n)
		}
	}
	return q, nil
}

// parseSingle parses the input between lo and hi as exactly one field.
func (p *parser) parseSingle(lo, hi int, base Kind) (Node, error) {
	segments, err := newScanner(p, lo, hi).scan()
	if err != nil {
		return nil, err
	}
	switch len(segments) {
	case 0:
		return nil, nil
	case 1:
		return p.compose(segments[0], base)
	}
	return nil, &ParseError{
		Code:    ErrInvalidInput,
		Message: "invalid field: more than one field",
		Pos:     p.posAt(segments[0].hi),
	}
}

// compose builds the node for one segment. Scopes are resolved only once
// the whole segment is known, so every node is final when it is created.
func (p *parser) compose(seg segment, base Kind) (Node, error) {
	head := seg.links[0]
	name := p.text(head.lo, head.hi)
	if name == "" {
		return nil, nil
	}
	source := p.text(seg.lo, seg.hi)

	if strings.HasPrefix(name, "~") {
		r := &Resource{Name: strings.TrimSpace(name[1:]), Source: source}
		if r.Name == "" {
			return nil, nil
		}
		if head.scoped {
			fields, err := p.parseScope(head.scopeLo, head.scopeHi, KindField)
			if err != nil {
				return nil, err
			}
			r.Fields, r.Scoped = fields, true
		}
		chain, err := p.chain(seg.links[1:])
		if err != nil {
			return nil, err
		}
		r.Properties = chain
		return r, nil
	}

	var args Query
	if head.scoped {
		var err error
		if args, err = p.parseScope(head.scopeLo, head.scopeHi, KindArg); err != nil {
			return nil, err
		}
	}
	chain, err := p.chain(seg.links[1:])
	if err != nil {
		return nil, err
	}

	switch {
	case head.scoped:
		return &Function{Name: name, Source: source, Args: args, Properties: chain}, nil
	case base == KindArg:
		return &Arg{Name: name, Source: source, Properties: chain}, nil
	case base == KindProperty:
		if len(chain) > 0 {
			return nil, &ParseError{
				Code:    ErrInvalidInput,
				Message: "invalid field: a property cannot have properties",
				Pos:     p.posAt(head.hi),
			}
		}
		return &Property{Name: name}, nil
	default:
		return &Field{Name: name, Source: source, Properties: chain}, nil
	}
}

// chain builds the dotted links following a base identifier. A link that
// owns a scope becomes a function whose arguments are the parsed scope.
func (p *parser) chain(links []link) ([]Node, error) {
	var out []Node
	for _, l := range links {
		name := p.text(l.lo, l.hi)
		if name == "" {
			continue
		}
		if !l.scoped {
			out = append(out, &Property{Name: name})
			continue
		}
		args, err := p.parseScope(l.scopeLo, l.scopeHi, KindArg)
		if err != nil {
			return nil, err
		}
		out = append(out, &Function{Name: name, Args: args})
	}
	return out, nil
}
