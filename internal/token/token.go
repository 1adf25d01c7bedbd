// Package token defines the lexical token types produced by the lexer and
// consumed by the parser.
package token

import (
	"fmt"

	"github.com/Mirrrek/nitrogen/internal/source"
)

// Type is the token discriminant.
type Type int

const (
	Illegal Type = iota
	EOF

	Symbol
	Keyword
	Identifier
	IntegerLiteral
	FloatLiteral
	StringLiteral
)

func (t Type) String() string {
	switch t {
	case Illegal:
		return "illegal"
	case EOF:
		return "end of file"
	case Symbol:
		return "symbol"
	case Keyword:
		return "keyword"
	case Identifier:
		return "identifier"
	case IntegerLiteral:
		return "integer literal"
	case FloatLiteral:
		return "float literal"
	case StringLiteral:
		return "string literal"
	default:
		return "unknown"
	}
}

// Symbols is the fixed ordered set of recognized symbols. The lexer tries
// them longest-first so that, e.g., "==" is matched before "=".
var Symbols = []string{
	"==", "!=", "<=", ">=", "++", "--",
	",", ";", "=", "+", "-", "*", "/", "%", "|", "&",
	"<", ">", "(", ")", "{", "}",
}

// Keywords is the fixed set of reserved identifiers.
var Keywords = map[string]bool{
	"const":  true,
	"if":     true,
	"else":   true,
	"while":  true,
	"do":     true,
	"for":    true,
	"break":  true,
	"return": true,
}

// Token is a single lexed unit. Only the fields relevant to Type are
// meaningful; this mirrors a flat tagged struct rather than a polymorphic
// payload, matching the teacher's token representation.
type Token struct {
	Type Type
	Pos  source.Location

	// Symbol / Keyword / Identifier store their text here.
	Text string

	IntValue    int64
	FloatValue  float64
	StringValue string
}

func (t Token) String() string {
	switch t.Type {
	case IntegerLiteral:
		return fmt.Sprintf("integer %d", t.IntValue)
	case FloatLiteral:
		return fmt.Sprintf("float %g", t.FloatValue)
	case StringLiteral:
		return fmt.Sprintf("string %q", t.StringValue)
	case Symbol, Keyword, Identifier:
		return fmt.Sprintf("%s %q", t.Type, t.Text)
	case EOF:
		return "end of file"
	default:
		return t.Type.String()
	}
}

// Is reports whether this token is a symbol or keyword with the given text.
func (t Token) Is(typ Type, text string) bool {
	return t.Type == typ && t.Text == text
}
