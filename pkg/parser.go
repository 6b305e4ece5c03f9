package sd2

import (
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

type scopeKind int

const (
	scopeDocument scopeKind = iota
	scopeElement
	scopeElementNoBody
	scopeNamespace
	scopeBody
)

// ReaderConfig configures a Reader. The zero value is a usable
// default: no recovery, no error callback, and the built-in temporal
// registry with KeepRaw for unknown constructors.
type ReaderConfig struct {
	// StreamValues is reserved for a future chunked-value event mode
	// and currently has no effect; see the design notes on the
	// unresolved streamValues question.
	StreamValues bool

	// AllowRecovery, when true, routes errors to OnError and resumes
	// parsing at the next resynchronization point instead of ending
	// the stream.
	AllowRecovery bool

	// OnError receives every error record raised while AllowRecovery
	// is true. Ignored in strict mode.
	OnError func(*ErrorRecord)

	// ConstructorRegistry is consulted on every completed constructor
	// value. A nil registry defaults to NewTemporalRegistry(); pass an
	// explicit empty registry (NewConstructorRegistry()) to disable
	// resolution entirely.
	ConstructorRegistry *ConstructorRegistry

	// UnknownConstructorPolicy controls behavior when a constructor
	// name has no registered handler.
	UnknownConstructorPolicy UnknownConstructorPolicy
}

// Reader is the streaming parser: bounded-lookahead recursive descent
// over a Lexer's token stream, producing a flat Event stream. A
// Reader is not safe to share across goroutines; distinct Readers
// over distinct sources are independent.
type Reader struct {
	lexer    *Lexer
	config   ReaderConfig
	registry *ConstructorRegistry

	tokBuf []Token
	scopes []scopeKind

	started  bool
	ended    bool
	lastLoc  Location
	fatalErr error

	annotationPhase    bool
	pendingAnnotations []Annotation
}

// NewReader builds a Reader pulling tokens from a lexer over source.
func NewReader(source Source, config ReaderConfig) *Reader {
	registry := config.ConstructorRegistry
	if registry == nil {
		registry = NewTemporalRegistry()
	}
	return &Reader{
		lexer:           NewLexer(source),
		config:          config,
		registry:        registry,
		annotationPhase: true,
	}
}

// Err returns the fatal error that ended the stream in strict mode,
// or nil if the stream ended normally or recovery is enabled.
func (r *Reader) Err() error {
	return r.fatalErr
}

// Next returns the next event. After EndDocument is returned, every
// subsequent call keeps returning EndDocument.
func (r *Reader) Next() Event {
	if r.ended {
		return &EndDocumentEvent{Loc: r.lastLoc}
	}
	if !r.started {
		r.started = true
		r.pushScope(scopeDocument)
		loc := r.peekTok().Loc
		r.lastLoc = loc
		return &StartDocumentEvent{Loc: loc}
	}

	for {
		ev, err := r.step()
		if err != nil {
			rec, ok := AsErrorRecord(err)
			if !ok {
				rec = &ErrorRecord{Code: E1000, Message: err.Error(), Loc: r.peekTok().Loc}
			}
			if !r.config.AllowRecovery {
				r.fatalErr = err
				r.ended = true
				r.lastLoc = rec.Loc
				return &EndDocumentEvent{Loc: rec.Loc}
			}
			logrus.WithFields(logrus.Fields{
				"code":   rec.Code,
				"line":   rec.Loc.Line,
				"column": rec.Loc.Column,
			}).Warn(rec.Message)
			if r.config.OnError != nil {
				r.config.OnError(rec)
			}
			r.recover()
			continue
		}
		if ev == nil {
			continue
		}
		r.lastLoc = ev.Location()
		if _, isEnd := ev.(*EndDocumentEvent); isEnd {
			r.ended = true
		}
		return ev
	}
}

// --- token buffer ---

func (r *Reader) ensureTok(n int) {
	for len(r.tokBuf) <= n {
		r.tokBuf = append(r.tokBuf, r.lexer.Next())
	}
}

func (r *Reader) peekTok() Token { return r.peekTokAt(0) }

func (r *Reader) peekTokAt(n int) Token {
	r.ensureTok(n)
	return r.tokBuf[n]
}

func (r *Reader) nextTok() Token {
	r.ensureTok(0)
	tok := r.tokBuf[0]
	r.tokBuf = r.tokBuf[1:]
	return tok
}

func (r *Reader) peekAheadSkippingNewlines() Token {
	i := 0
	for r.peekTokAt(i).Kind == TokenNewline {
		i++
	}
	return r.peekTokAt(i)
}

// --- scope stack ---

func (r *Reader) pushScope(s scopeKind) { r.scopes = append(r.scopes, s) }

func (r *Reader) popScope() scopeKind {
	if len(r.scopes) == 0 {
		return scopeDocument
	}
	s := r.scopes[len(r.scopes)-1]
	r.scopes = r.scopes[:len(r.scopes)-1]
	return s
}

func (r *Reader) currentScope() scopeKind {
	if len(r.scopes) == 0 {
		return scopeDocument
	}
	return r.scopes[len(r.scopes)-1]
}

// --- recovery ---

func (r *Reader) recover() {
	r.pendingAnnotations = nil
	for {
		tok := r.peekTok()
		switch tok.Kind {
		case TokenEOF:
			return
		case TokenNewline, TokenRBrace, TokenRBrack, TokenRParen:
			r.nextTok()
			return
		default:
			r.nextTok()
		}
	}
}

// --- top-level dispatch ---

func (r *Reader) step() (Event, error) {
	for r.peekTok().Kind == TokenNewline {
		r.nextTok()
	}

	tok := r.peekTok()

	if tok.Kind == TokenError {
		r.nextTok()
		return nil, newError(tok.Code, tok.Loc, "%s", tok.Text)
	}

	if tok.Kind == TokenPipe {
		r.nextTok()
		return nil, newError(E1004, tok.Loc, "'|' outside of qualifier continuation")
	}

	if tok.Kind == TokenHash {
		return r.parseHashConstruct()
	}

	if tok.Kind == TokenEOF {
		if r.currentScope() == scopeElementNoBody {
			r.popScope()
			return &EndElementEvent{Loc: tok.Loc}, nil
		}
		return &EndDocumentEvent{Loc: tok.Loc}, nil
	}

	switch r.currentScope() {
	case scopeBody:
		return r.parseBodyItem()
	case scopeElementNoBody:
		r.popScope()
		return &EndElementEvent{Loc: tok.Loc}, nil
	default:
		return r.parseElementHeader()
	}
}

func (r *Reader) parseHashConstruct() (Event, error) {
	hashTok := r.nextTok() // '#'

	isDoc := false
	if r.peekTok().Kind == TokenBang {
		r.nextTok()
		isDoc = true
	}

	if isDoc && !r.annotationPhase {
		return nil, newError(E1000, hashTok.Loc, "document annotation not allowed after the first construct")
	}

	if r.peekTok().Kind != TokenLBrack {
		return nil, newError(E1000, hashTok.Loc, "expected '[' after '#'")
	}
	r.nextTok()

	name, _, _, err := r.parseQualifiedName()
	if err != nil {
		return nil, err
	}

	var argText string
	hasArgs := false
	if r.peekTok().Kind == TokenLParen {
		hasArgs = true
		argText, err = r.captureBalancedParens()
		if err != nil {
			return nil, err
		}
	}

	if r.peekTok().Kind != TokenRBrack {
		return nil, newError(E1000, r.peekTok().Loc, "expected ']' to close annotation")
	}
	r.nextTok()

	if isDoc {
		return &DocumentAnnotationEvent{Name: name, Args: argText, HasArgs: hasArgs, Loc: hashTok.Loc}, nil
	}

	r.pendingAnnotations = append(r.pendingAnnotations, Annotation{Name: name, Args: argText, HasArgs: hasArgs, Loc: hashTok.Loc})
	r.annotationPhase = false
	return nil, nil
}

func (r *Reader) captureBalancedParens() (string, error) {
	openLoc := r.peekTok().Loc
	r.nextTok() // '('
	depth := 1
	var sb strings.Builder
	for {
		tok := r.peekTok()
		if tok.Kind == TokenEOF {
			return "", newError(E1000, openLoc, "unterminated annotation arguments")
		}
		if tok.Kind == TokenLParen {
			depth++
		}
		if tok.Kind == TokenRParen {
			depth--
			if depth == 0 {
				r.nextTok()
				return sb.String(), nil
			}
		}
		sb.WriteString(tok.Text)
		r.nextTok()
	}
}

// --- element headers ---

func (r *Reader) parseElementHeader() (Event, error) {
	annotations := r.pendingAnnotations
	r.pendingAnnotations = nil
	r.annotationPhase = false

	kwTok := r.peekTok()
	if kwTok.Kind == TokenError {
		r.nextTok()
		return nil, newError(kwTok.Code, kwTok.Loc, "%s", kwTok.Text)
	}
	if kwTok.Kind != TokenIdent {
		return nil, newError(E1000, kwTok.Loc, "expected element keyword")
	}
	r.nextTok()

	var id string
	hasID := false
	if r.peekTok().Kind == TokenIdent || r.peekTok().Kind == TokenBacktickIdent {
		idTok := r.nextTok()
		id = idTok.Text
		hasID = true
	}

	var typeExpr TypeExpr
	hasType := false
	if r.peekTok().Kind == TokenColon {
		r.nextTok()
		hasType = true
		te, err := r.parseTypeExpr()
		if err != nil {
			return nil, err
		}
		typeExpr = te
	}

	qualifiers, err := r.parseQualifiers()
	if err != nil {
		return nil, err
	}

	loc := kwTok.Loc
	ev := &StartElementEvent{
		Keyword:     kwTok.Text,
		ID:          id,
		HasID:       hasID,
		Type:        typeExpr,
		HasType:     hasType,
		Annotations: annotations,
		Qualifiers:  qualifiers,
		Loc:         loc,
	}

	switch r.peekTok().Kind {
	case TokenLBrace:
		r.nextTok()
		r.pushScope(scopeElement)
		r.pushScope(scopeBody)
		return ev, nil
	case TokenNewline:
		if ahead := r.peekAheadSkippingNewlines(); ahead.Kind == TokenLBrace {
			return nil, newError(E1001, r.peekTok().Loc, "element body '{' must open on the same line as the header")
		}
		r.pushScope(scopeElementNoBody)
		return ev, nil
	default:
		r.pushScope(scopeElementNoBody)
		return ev, nil
	}
}

func (r *Reader) parseTypeExpr() (TypeExpr, error) {
	name, _, _, err := r.parseQualifiedName()
	if err != nil {
		return TypeExpr{}, err
	}
	te := TypeExpr{Name: name}

	if r.peekTok().Kind == TokenLt {
		r.nextTok()
		for {
			arg, err := r.parseTypeExpr()
			if err != nil {
				return TypeExpr{}, err
			}
			te.Args = append(te.Args, arg)
			if r.peekTok().Kind == TokenComma {
				r.nextTok()
				continue
			}
			break
		}
		if r.peekTok().Kind != TokenGt {
			return TypeExpr{}, newError(E5001, r.peekTok().Loc, "missing '>' to close type arguments")
		}
		r.nextTok()
	}
	return te, nil
}

func (r *Reader) parseQualifiers() ([]Qualifier, error) {
	var quals []Qualifier
	for r.peekTok().Kind == TokenIdent {
		nameTok := r.nextTok()

		var args []QualifiedName
		for r.peekTok().Kind == TokenIdent || r.peekTok().Kind == TokenBacktickIdent {
			name, _, _, err := r.parseQualifiedName()
			if err != nil {
				return nil, err
			}
			args = append(args, name)
			if r.peekTok().Kind == TokenComma {
				r.nextTok()
				continue
			}
			break
		}

		if len(args) == 0 {
			return nil, newError(E2101, nameTok.Loc, "qualifier %q requires at least one argument", nameTok.Text)
		}
		quals = append(quals, Qualifier{Name: nameTok.Text, Args: args, Loc: nameTok.Loc})

		if r.peekTok().Kind == TokenNewline && r.peekTokAt(1).Kind == TokenPipe {
			pipeTok := r.peekTokAt(1)
			if pipeTok.Loc.Column != 1 {
				return nil, newError(E1002, pipeTok.Loc, "qualifier continuation '|' must be in column 1")
			}
			r.nextTok() // NEWLINE
			r.nextTok() // '|'
			continue
		}
	}
	return quals, nil
}

// --- qualified names ---

func (r *Reader) parseQualifiedName() (QualifiedName, Token, Token, error) {
	tok := r.peekTok()
	if tok.Kind != TokenIdent && tok.Kind != TokenBacktickIdent {
		return QualifiedName{}, Token{}, Token{}, newError(E1000, tok.Loc, "expected identifier")
	}
	r.nextTok()
	first, last := tok, tok
	parts := []string{tok.Text}

	for r.peekTok().Kind == TokenDot {
		r.nextTok()
		next := r.peekTok()
		if next.Kind != TokenIdent && next.Kind != TokenBacktickIdent {
			return QualifiedName{}, Token{}, Token{}, newError(E1000, next.Loc, "expected identifier after '.'")
		}
		r.nextTok()
		parts = append(parts, next.Text)
		last = next
	}
	return QualifiedName{Parts: parts}, first, last, nil
}

func isReservedLiteral(s string) bool {
	return s == "true" || s == "false" || s == "null"
}

func tokensAdjacent(prev, next Token) bool {
	width := len([]rune(prev.Text))
	if prev.Kind == TokenBacktickIdent {
		width += 2 // the backticks are not part of Text
	}
	return prev.Loc.Line == next.Loc.Line && prev.Loc.Column+width == next.Loc.Column
}

// --- body items ---

func (r *Reader) parseBodyItem() (Event, error) {
	tok := r.peekTok()

	if tok.Kind == TokenRBrace {
		r.nextTok()
		r.popScope() // BODY
		enclosing := r.popScope()
		if enclosing == scopeNamespace {
			return &EndNamespaceEvent{Loc: tok.Loc}, nil
		}
		return &EndElementEvent{Loc: tok.Loc}, nil
	}

	if tok.Kind == TokenDot {
		return r.parseNamespaceHeader(tok)
	}

	if tok.Kind == TokenBacktickIdent {
		nameTok := r.nextTok()
		if r.peekTok().Kind != TokenEquals {
			return nil, newError(E1000, r.peekTok().Loc, "expected '=' after backtick identifier")
		}
		r.nextTok()
		val, err := r.parseAttributeValue()
		if err != nil {
			return nil, err
		}
		if err := r.expectAttributeTerminator(); err != nil {
			return nil, err
		}
		return &AttributeEvent{Name: nameTok.Text, Value: val, Loc: nameTok.Loc}, nil
	}

	if tok.Kind == TokenIdent {
		if r.peekTokAt(1).Kind == TokenEquals {
			nameTok := r.nextTok()
			r.nextTok() // '='
			val, err := r.parseAttributeValue()
			if err != nil {
				return nil, err
			}
			if err := r.expectAttributeTerminator(); err != nil {
				return nil, err
			}
			return &AttributeEvent{Name: nameTok.Text, Value: val, Loc: nameTok.Loc}, nil
		}
		return r.parseElementHeader()
	}

	return nil, newError(E1000, tok.Loc, "unexpected token %s in element body", tok.Kind)
}

func (r *Reader) parseNamespaceHeader(dotTok Token) (Event, error) {
	r.nextTok() // '.'
	nameTok := r.peekTok()
	if nameTok.Kind != TokenIdent {
		return nil, newError(E1000, nameTok.Loc, "expected identifier after '.'")
	}
	r.nextTok()

	if r.peekTok().Kind == TokenNewline {
		if ahead := r.peekAheadSkippingNewlines(); ahead.Kind == TokenLBrace {
			return nil, newError(E1001, r.peekTok().Loc, "namespace body '{' must open on the same line")
		}
		return nil, newError(E1000, r.peekTok().Loc, "expected '{' to open namespace body")
	}
	if r.peekTok().Kind != TokenLBrace {
		return nil, newError(E1000, r.peekTok().Loc, "expected '{' to open namespace body")
	}
	r.nextTok()
	r.pushScope(scopeNamespace)
	r.pushScope(scopeBody)
	return &StartNamespaceEvent{Name: nameTok.Text, Loc: dotTok.Loc}, nil
}

func (r *Reader) expectAttributeTerminator() error {
	tok := r.peekTok()
	if tok.Kind == TokenNewline {
		r.nextTok()
		return nil
	}
	if tok.Kind == TokenRBrace {
		return nil
	}
	return newError(E1000, tok.Loc, "expected newline after attribute value")
}

// --- attribute values ---

func (r *Reader) parseAttributeValue() (Value, error) {
	tok := r.peekTok()
	switch tok.Kind {
	case TokenError:
		r.nextTok()
		return nil, newError(tok.Code, tok.Loc, "%s", tok.Text)

	case TokenString:
		r.nextTok()
		return &StringValue{Text: tok.Text, Loc: tok.Loc}, nil

	case TokenInt:
		r.nextTok()
		n, err := parseIntLiteral(tok.Text)
		if err != nil {
			return nil, newError(E1000, tok.Loc, "malformed integer literal %q", tok.Text)
		}
		return &IntValue{Value: n, Loc: tok.Loc}, nil

	case TokenFloat:
		r.nextTok()
		f, err := parseFloatLiteral(tok.Text)
		if err != nil {
			return nil, newError(E1000, tok.Loc, "malformed float literal %q", tok.Text)
		}
		return &FloatValue{Value: f, Loc: tok.Loc}, nil

	case TokenBool:
		r.nextTok()
		return r.checkReservedAdjacentForeign(tok, &BoolValue{Value: tok.Text == "true", Loc: tok.Loc})

	case TokenNull:
		r.nextTok()
		return r.checkReservedAdjacentForeign(tok, &NullValue{Loc: tok.Loc})

	case TokenForeign:
		r.nextTok()
		return &ForeignValue{Content: tok.Text, Loc: tok.Loc}, nil

	case TokenLBrack:
		return r.parseListValue()

	case TokenLBrace:
		return r.parseMapValue()

	case TokenLParen:
		return r.parseTupleValue()

	case TokenIdent, TokenBacktickIdent:
		return r.parseNameOrConstructorValue()

	default:
		return nil, newError(E1000, tok.Loc, "unexpected token %s in value position", tok.Kind)
	}
}

func (r *Reader) checkReservedAdjacentForeign(tok Token, v Value) (Value, error) {
	if r.peekTok().Kind == TokenForeign && tokensAdjacent(tok, r.peekTok()) {
		return nil, newError(E4004, r.peekTok().Loc, "reserved word cannot precede a foreign-code constructor")
	}
	return v, nil
}

func (r *Reader) parseNameOrConstructorValue() (Value, error) {
	name, first, last, err := r.parseQualifiedName()
	if err != nil {
		return nil, err
	}

	isReservedWord := len(name.Parts) == 1 && first.Kind == TokenBacktickIdent && isReservedLiteral(name.Parts[0])
	next := r.peekTok()

	if next.Kind == TokenForeign {
		if !tokensAdjacent(last, next) {
			return nil, newError(E4003, next.Loc, "whitespace between constructor name and '@'")
		}
		if isReservedWord {
			return nil, newError(E4004, next.Loc, "reserved word cannot precede a foreign-code constructor")
		}
		r.nextTok()
		return &ForeignValue{Content: next.Text, Tag: name, HasTag: true, Loc: first.Loc}, nil
	}

	if next.Kind == TokenLBrace {
		return r.parseConstructorNamedValue(name, first.Loc)
	}
	if next.Kind == TokenNewline && r.peekTokAt(1).Kind == TokenLBrace {
		return nil, newError(E1001, next.Loc, "named-constructor body '{' must open on the same line as the name")
	}

	if next.Kind == TokenLParen {
		return r.parseConstructorTupleValue(name, first.Loc)
	}
	if next.Kind == TokenNewline && r.peekTokAt(1).Kind == TokenLParen {
		return nil, newError(E1005, next.Loc, "tuple-constructor '(' must open on the same line as the name")
	}

	return &QualifiedNameValue{Name: name, Loc: first.Loc}, nil
}

func (r *Reader) parseConstructorNamedValue(name QualifiedName, loc Location) (Value, error) {
	r.nextTok() // '{'
	var entries []MapEntry
	seen := map[string]bool{}

	for {
		for r.peekTok().Kind == TokenNewline {
			r.nextTok()
		}
		if r.peekTok().Kind == TokenRBrace {
			r.nextTok()
			break
		}
		if r.peekTok().Kind == TokenEOF {
			return nil, newError(E1000, r.peekTok().Loc, "unterminated named-constructor body")
		}

		keyTok := r.peekTok()
		if keyTok.Kind != TokenIdent && keyTok.Kind != TokenBacktickIdent {
			return nil, newError(E1000, keyTok.Loc, "expected attribute name in constructor body")
		}
		r.nextTok()
		if r.peekTok().Kind != TokenEquals {
			return nil, newError(E1000, r.peekTok().Loc, "expected '=' after attribute name")
		}
		r.nextTok()

		val, err := r.parseAttributeValue()
		if err != nil {
			return nil, err
		}
		if seen[keyTok.Text] {
			return nil, newError(E2003, keyTok.Loc, "duplicate key %q", keyTok.Text)
		}
		seen[keyTok.Text] = true
		entries = append(entries, MapEntry{Key: keyTok.Text, Value: val})

		if r.peekTok().Kind == TokenNewline {
			r.nextTok()
			continue
		}
		if r.peekTok().Kind == TokenRBrace {
			r.nextTok()
			break
		}
		return nil, newError(E1000, r.peekTok().Loc, "expected newline after constructor attribute")
	}

	raw := &ConstructorNamedValue{Name: name, Entries: entries, Loc: loc}
	return r.resolveConstructor(name, nil, entries, loc, raw)
}

func (r *Reader) parseConstructorTupleValue(name QualifiedName, loc Location) (Value, error) {
	r.nextTok() // '('
	args, err := r.parseParenthesizedValues()
	if err != nil {
		return nil, err
	}
	raw := &ConstructorTupleValue{Name: name, Args: args, Loc: loc}
	return r.resolveConstructor(name, args, nil, loc, raw)
}

func (r *Reader) parseTupleValue() (Value, error) {
	loc := r.peekTok().Loc
	r.nextTok() // '('
	items, err := r.parseParenthesizedValues()
	if err != nil {
		return nil, err
	}
	return &TupleValue{Items: items, Loc: loc}, nil
}

// parseParenthesizedValues parses a comma-separated, optionally
// trailing-comma list of values up to the closing ')'. The opening
// '(' has already been consumed.
func (r *Reader) parseParenthesizedValues() ([]Value, error) {
	var items []Value
	for r.peekTok().Kind == TokenNewline {
		r.nextTok()
	}
	if r.peekTok().Kind != TokenRParen {
		for {
			v, err := r.parseAttributeValue()
			if err != nil {
				return nil, err
			}
			items = append(items, v)
			for r.peekTok().Kind == TokenNewline {
				r.nextTok()
			}
			if r.peekTok().Kind == TokenComma {
				r.nextTok()
				for r.peekTok().Kind == TokenNewline {
					r.nextTok()
				}
				if r.peekTok().Kind == TokenRParen {
					break
				}
				continue
			}
			break
		}
	}
	if r.peekTok().Kind != TokenRParen {
		return nil, newError(E1000, r.peekTok().Loc, "expected ')' to close tuple")
	}
	r.nextTok()
	return items, nil
}

func (r *Reader) parseListValue() (Value, error) {
	loc := r.peekTok().Loc
	r.nextTok() // '['
	var items []Value

	for r.peekTok().Kind == TokenNewline {
		r.nextTok()
	}
	if r.peekTok().Kind != TokenRBrack {
		for {
			v, err := r.parseAttributeValue()
			if err != nil {
				return nil, err
			}
			items = append(items, v)
			for r.peekTok().Kind == TokenNewline {
				r.nextTok()
			}
			if r.peekTok().Kind == TokenComma {
				r.nextTok()
				for r.peekTok().Kind == TokenNewline {
					r.nextTok()
				}
				if r.peekTok().Kind == TokenRBrack {
					break
				}
				continue
			}
			break
		}
	}
	for r.peekTok().Kind == TokenNewline {
		r.nextTok()
	}
	if r.peekTok().Kind != TokenRBrack {
		return nil, newError(E1000, r.peekTok().Loc, "expected ']' to close list")
	}
	r.nextTok()
	return &ListValue{Items: items, Loc: loc}, nil
}

func (r *Reader) parseMapValue() (Value, error) {
	loc := r.peekTok().Loc
	r.nextTok() // '{'
	var entries []MapEntry
	seen := map[string]bool{}

	for r.peekTok().Kind == TokenNewline {
		r.nextTok()
	}
	for r.peekTok().Kind != TokenRBrace {
		if r.peekTok().Kind == TokenEOF {
			return nil, newError(E1000, r.peekTok().Loc, "unterminated map literal")
		}

		key, keyLoc, err := r.parseMapKey()
		if err != nil {
			return nil, err
		}
		if r.peekTok().Kind != TokenEquals {
			return nil, newError(E1000, r.peekTok().Loc, "expected '=' after map key")
		}
		r.nextTok()

		val, err := r.parseAttributeValue()
		if err != nil {
			return nil, err
		}
		if seen[key] {
			return nil, newError(E2003, keyLoc, "duplicate key %q", key)
		}
		seen[key] = true
		entries = append(entries, MapEntry{Key: key, Value: val})

		for r.peekTok().Kind == TokenNewline {
			r.nextTok()
		}
		if r.peekTok().Kind == TokenComma {
			r.nextTok()
			for r.peekTok().Kind == TokenNewline {
				r.nextTok()
			}
			continue
		}
		break
	}

	for r.peekTok().Kind == TokenNewline {
		r.nextTok()
	}
	if r.peekTok().Kind != TokenRBrace {
		return nil, newError(E1000, r.peekTok().Loc, "expected '}' to close map")
	}
	r.nextTok()
	return &MapValue{Entries: entries, Loc: loc}, nil
}

func (r *Reader) parseMapKey() (string, Location, error) {
	tok := r.peekTok()
	switch tok.Kind {
	case TokenIdent, TokenBacktickIdent, TokenString:
		r.nextTok()
		return tok.Text, tok.Loc, nil
	case TokenLBrack:
		r.nextTok()
		inner := r.peekTok()
		switch inner.Kind {
		case TokenString, TokenInt, TokenFloat, TokenBool, TokenNull:
			r.nextTok()
		default:
			return "", inner.Loc, newError(E1000, inner.Loc, "expected a primitive inside '[...]' map key")
		}
		if r.peekTok().Kind != TokenRBrack {
			return "", r.peekTok().Loc, newError(E1000, r.peekTok().Loc, "expected ']' to close bracketed map key")
		}
		r.nextTok()
		return inner.Text, inner.Loc, nil
	default:
		return "", tok.Loc, newError(E1000, tok.Loc, "invalid map key")
	}
}

// --- constructor resolution ---

func (r *Reader) resolveConstructor(name QualifiedName, args []Value, entries []MapEntry, loc Location, raw Value) (Value, error) {
	if r.registry == nil {
		return raw, nil
	}
	typeTag, handler, ok := r.registry.handlerFor(name)
	if !ok {
		if r.config.UnknownConstructorPolicy == ErrorOnUnknown {
			return nil, newError(E5001, loc, "unknown constructor %q", name.String())
		}
		return raw, nil
	}

	call := ConstructorCall{Name: name, Args: args, Attrs: entries, Loc: loc}
	ctx := &ResolutionContext{reader: r, callLoc: loc}
	payload, err := handler(call, ctx)
	if err != nil {
		return nil, err
	}
	return &ObjectValue{TypeTag: typeTag, Payload: payload, Loc: loc}, nil
}

// resolveValue resolves v if it is an unresolved constructor form;
// every other variant, including an already-resolved ObjectValue, is
// returned unchanged. This makes resolution idempotent:
// resolveValue(resolveValue(v)) == resolveValue(v).
func (r *Reader) resolveValue(v Value) Value {
	switch val := v.(type) {
	case *ConstructorNamedValue:
		resolved, err := r.resolveConstructor(val.Name, nil, val.Entries, val.Loc, val)
		if err != nil {
			return val
		}
		return resolved
	case *ConstructorTupleValue:
		resolved, err := r.resolveConstructor(val.Name, val.Args, nil, val.Loc, val)
		if err != nil {
			return val
		}
		return resolved
	default:
		return v
	}
}

// --- literal parsing ---

func parseIntLiteral(text string) (int64, error) {
	s := strings.ReplaceAll(text, "_", "")
	neg := false
	switch {
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	case strings.HasPrefix(s, "-"):
		neg = true
		s = s[1:]
	}

	var base int
	switch {
	case strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X"):
		base = 16
		s = s[2:]
	case strings.HasPrefix(s, "0b") || strings.HasPrefix(s, "0B"):
		base = 2
		s = s[2:]
	default:
		base = 10
	}

	if base == 10 {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, err
		}
		if neg {
			n = -n
		}
		return n, nil
	}

	u, err := strconv.ParseUint(s, base, 64)
	if err != nil {
		return 0, err
	}
	n := int64(u)
	if neg {
		n = -n
	}
	return n, nil
}

func parseFloatLiteral(text string) (float64, error) {
	s := strings.ReplaceAll(text, "_", "")
	return strconv.ParseFloat(s, 64)
}
