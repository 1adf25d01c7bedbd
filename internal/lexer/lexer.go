// Package lexer converts Nitro source text into a stream of located
// tokens, per spec.md §4.1. It is grounded on the teacher's byte-at-a-time
// scanner (opal-lang-opal/runtime/lexer/lexer.go): readChar/peekChar
// advancing (line, column) on every rune, ASCII fast-path classification,
// and a unicode fallback for non-ASCII bytes.
package lexer

import (
	"strings"
	"unicode/utf8"

	"github.com/Mirrrek/nitrogen/internal/diag"
	"github.com/Mirrrek/nitrogen/internal/source"
	"github.com/Mirrrek/nitrogen/internal/token"
)

// ASCII classification tables, mirroring the teacher's fast-path lookup
// tables in lexer/lexer.go's init().
var (
	isDigitASCII [128]bool
	isAlnumASCII [128]bool
)

func init() {
	for i := 0; i < 128; i++ {
		ch := byte(i)
		isDigitASCII[i] = ch >= '0' && ch <= '9'
		isAlnumASCII[i] = isDigitASCII[i] ||
			(ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
	}
}

// Lexer scans a complete source string into tokens.
type Lexer struct {
	filename string
	input    string
	pos      int // byte offset of ch
	readPos  int // byte offset just past ch
	ch       rune

	line   int
	column int

	sink diag.Sink
}

// New creates a Lexer over src. Diagnostics (warnings) are emitted to sink;
// sink may be nil to discard them.
func New(filename, src string, sink diag.Sink) *Lexer {
	l := &Lexer{filename: filename, input: src, line: 1, column: 0, sink: sink}
	l.advance()
	return l
}

func (l *Lexer) loc() source.Location {
	return source.Location{File: l.filename, Line: l.line, Column: l.column}
}

func (l *Lexer) warn(loc source.Location, format string, args ...any) {
	if l.sink == nil {
		return
	}
	l.sink.Emit(diag.Diagnostic{
		Severity: diag.Warning,
		Message:  diag.Plainf(format, args...),
		Location: &loc,
		Source:   l.input,
	})
}

func (l *Lexer) advance() {
	l.pos = l.readPos
	if l.readPos >= len(l.input) {
		l.ch = 0
		return
	}
	r, size := utf8.DecodeRuneInString(l.input[l.readPos:])
	if r == utf8.RuneError && size <= 1 {
		r = rune(l.input[l.readPos])
		size = 1
	}
	l.ch = r
	l.readPos += size
	if r == '\n' {
		l.line++
		l.column = 0
	} else {
		l.column++
	}
}

func (l *Lexer) peek() rune {
	if l.readPos >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPos:])
	return r
}

func (l *Lexer) rest() string { return l.input[l.pos:] }

// Tokenize lexes the whole input and returns every token up to and
// including a trailing EOF, or the first InputError encountered.
func Tokenize(filename, src string, sink diag.Sink) ([]token.Token, error) {
	l := New(filename, src, sink)
	var tokens []token.Token
	for {
		tok, err := l.Next()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Type == token.EOF {
			return tokens, nil
		}
	}
}

// Next produces the next token, skipping whitespace and comments first.
func (l *Lexer) Next() (token.Token, error) {
	for {
		progressed, err := l.skipTrivia()
		if err != nil {
			return token.Token{}, err
		}
		if !progressed {
			break
		}
	}

	loc := l.loc()

	if l.ch == 0 {
		return token.Token{Type: token.EOF, Pos: loc}, nil
	}

	if l.ch < 0x20 {
		return token.Token{}, diag.NewInputError(loc, l.input, "Unexpected control character")
	}

	if tok, ok := l.lexSymbol(loc); ok {
		return tok, nil
	}
	if tok, ok, consumed := l.lexNumber(loc); consumed {
		return tok, ok
	}
	if tok, matched, err := l.lexString(loc); matched {
		return tok, err
	}
	if tok, matched, err := l.lexIdentifierOrKeyword(loc); matched {
		return tok, err
	}

	return token.Token{}, diag.NewInputError(loc, l.input, "Unexpected character")
}

// skipTrivia consumes one run of whitespace, a newline, or a comment, and
// reports whether it consumed anything.
func (l *Lexer) skipTrivia() (bool, error) {
	switch {
	case l.ch == ' ' || l.ch == '\t':
		for l.ch == ' ' || l.ch == '\t' {
			l.advance()
		}
		return true, nil

	case l.ch == '\r' && l.peek() == '\n':
		l.advance()
		l.advance()
		return true, nil

	case l.ch == '\n':
		l.advance()
		return true, nil

	case l.ch == '/' && l.peek() == '/':
		for l.ch != '\n' && l.ch != 0 {
			l.advance()
		}
		if l.ch == '\n' {
			l.advance()
		}
		return true, nil

	case l.ch == '/' && l.peek() == '*':
		startLoc := l.loc()
		l.advance()
		l.advance()
		for {
			if l.ch == 0 {
				return false, diag.NewInputError(startLoc, l.input, "Unterminated block comment")
			}
			if l.ch == '*' && l.peek() == '/' {
				l.advance()
				l.advance()
				break
			}
			l.advance()
		}
		return true, nil
	}
	return false, nil
}

// lexSymbol tries every entry of token.Symbols, longest first (the table
// is already ordered that way), against the remaining input.
func (l *Lexer) lexSymbol(loc source.Location) (token.Token, bool) {
	rest := l.rest()
	for _, sym := range token.Symbols {
		if strings.HasPrefix(rest, sym) {
			for range sym {
				l.advance()
			}
			return token.Token{Type: token.Symbol, Pos: loc, Text: sym}, true
		}
	}
	return token.Token{}, false
}

func isHexDigit(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}
func isBinDigit(b byte) bool { return b == '0' || b == '1' }
func isOctDigit(b byte) bool { return b >= '0' && b <= '7' }
func isDecDigit(b byte) bool { return b >= '0' && b <= '9' }

func scanRun(s string, pred func(byte) bool) int {
	n := 0
	for n < len(s) && pred(s[n]) {
		n++
	}
	return n
}

// lexNumber implements spec.md §4.1 rules 7-8: prefixed integers, then a
// plain decimal run, which is reinterpreted as a float if immediately
// followed by '.' and at least one more decimal digit.
func (l *Lexer) lexNumber(loc source.Location) (token.Token, error, bool) {
	rest := l.rest()
	if len(rest) == 0 || !isDecDigit(rest[0]) {
		return token.Token{}, nil, false
	}

	if len(rest) >= 2 && rest[0] == '0' && rest[1] == 'x' {
		n := scanRun(rest[2:], isHexDigit)
		if n > 0 {
			text := rest[:2+n]
			return l.emitInt(loc, text, text[2:], 16)
		}
	}
	if len(rest) >= 2 && rest[0] == '0' && rest[1] == 'b' {
		n := scanRun(rest[2:], isBinDigit)
		if n > 0 {
			text := rest[:2+n]
			return l.emitInt(loc, text, text[2:], 2)
		}
	}
	if len(rest) >= 2 && rest[0] == '0' && rest[1] == 'o' {
		n := scanRun(rest[2:], isOctDigit)
		if n > 0 {
			text := rest[:2+n]
			return l.emitInt(loc, text, text[2:], 8)
		}
	}

	intLen := scanRun(rest, isDecDigit)
	if intLen == 0 {
		return token.Token{}, nil, false
	}

	if intLen < len(rest) && rest[intLen] == '.' {
		fracStart := intLen + 1
		fracLen := 0
		if fracStart < len(rest) {
			fracLen = scanRun(rest[fracStart:], isDecDigit)
		}
		if fracLen > 0 {
			text := rest[:fracStart+fracLen]
			return l.emitFloat(loc, text)
		}
	}

	text := rest[:intLen]
	return l.emitInt(loc, text, text, 10)
}

func (l *Lexer) emitInt(loc source.Location, fullText, digits string, base int) (token.Token, error, bool) {
	for range fullText {
		l.advance()
	}
	value, err := parseIntBase(digits, base)
	if err != nil {
		return token.Token{}, diag.NewInputError(loc, l.input, "Invalid integer literal %q", fullText), true
	}
	return token.Token{Type: token.IntegerLiteral, Pos: loc, Text: fullText, IntValue: value}, nil, true
}

func (l *Lexer) emitFloat(loc source.Location, text string) (token.Token, error, bool) {
	for range text {
		l.advance()
	}
	value, err := parseFloatDecimal(text)
	if err != nil {
		return token.Token{}, diag.NewInputError(loc, l.input, "Invalid float literal %q", text), true
	}
	return token.Token{Type: token.FloatLiteral, Pos: loc, Text: text, FloatValue: value}, nil, true
}

func parseIntBase(digits string, base int) (int64, error) {
	var v int64
	for i := 0; i < len(digits); i++ {
		d, err := digitValue(digits[i])
		if err != nil {
			return 0, err
		}
		v = v*int64(base) + int64(d)
	}
	return v, nil
}

func digitValue(b byte) (int, error) {
	switch {
	case b >= '0' && b <= '9':
		return int(b - '0'), nil
	case b >= 'a' && b <= 'f':
		return int(b-'a') + 10, nil
	case b >= 'A' && b <= 'F':
		return int(b-'A') + 10, nil
	default:
		return 0, diag.NewInternalError("bad digit %q", b)
	}
}

func parseFloatDecimal(text string) (float64, error) {
	dot := strings.IndexByte(text, '.')
	intPart, fracPart := text[:dot], text[dot+1:]
	v, err := parseIntBase(intPart, 10)
	if err != nil {
		return 0, err
	}
	result := float64(v)
	scale := 0.1
	for i := 0; i < len(fracPart); i++ {
		d, err := digitValue(fracPart[i])
		if err != nil {
			return 0, err
		}
		result += float64(d) * scale
		scale /= 10
	}
	return result, nil
}

// lexString implements spec.md §4.1 rule 9: the inner text is stored raw,
// verbatim between the quotes, with escape decoding deferred (§9 open
// question, replicated as-is).
func (l *Lexer) lexString(loc source.Location) (token.Token, bool, error) {
	if l.ch != '\'' && l.ch != '"' {
		return token.Token{}, false, nil
	}
	quote := l.ch
	l.advance()
	innerStart := l.pos

	for {
		if l.ch == 0 {
			return token.Token{}, true, diag.NewInputError(loc, l.input, "Unterminated string literal")
		}
		if l.ch == '\\' {
			l.advance()
			if l.ch == 0 {
				return token.Token{}, true, diag.NewInputError(loc, l.input, "Unterminated string literal")
			}
			l.advance()
			continue
		}
		if l.ch == quote {
			break
		}
		l.advance()
	}

	inner := l.input[innerStart:l.pos]
	l.advance() // past closing quote

	if quote == '"' && !strings.ContainsRune(inner, '\'') {
		l.warn(loc, "Double quotes are cringe")
	}

	return token.Token{Type: token.StringLiteral, Pos: loc, StringValue: inner}, true, nil
}

func isIdentPart(r rune) bool {
	if r < 128 {
		return isAlnumASCII[r]
	}
	return true
}

// lexIdentifierOrKeyword implements spec.md §4.1 rule 10, plus the
// W-Snake warning.
func (l *Lexer) lexIdentifierOrKeyword(loc source.Location) (token.Token, bool, error) {
	if !isIdentPart(l.ch) {
		return token.Token{}, false, nil
	}
	start := l.pos
	for isIdentPart(l.ch) {
		l.advance()
	}
	text := l.input[start:l.pos]

	if token.Keywords[text] {
		return token.Token{Type: token.Keyword, Pos: loc, Text: text}, true, nil
	}

	if isSnakeCase(text) {
		l.warn(loc, "Snake case is cringe")
	}
	return token.Token{Type: token.Identifier, Pos: loc, Text: text}, true, nil
}

// isSnakeCase reports an underscore surrounded on both sides by lowercase
// ASCII letters at a non-edge position (W-Snake, spec.md §4.1).
func isSnakeCase(s string) bool {
	for i := 1; i < len(s)-1; i++ {
		if s[i] != '_' {
			continue
		}
		if isLowerASCII(s[i-1]) && isLowerASCII(s[i+1]) {
			return true
		}
	}
	return false
}

func isLowerASCII(b byte) bool { return b >= 'a' && b <= 'z' }
