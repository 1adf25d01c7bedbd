// Package compiler wires the lexer, parser, and code generator into a
// single entry point, mirroring the stage orchestration of the teacher's
// CLI driver (opal-lang-opal/cli/main.go's lex -> parse -> plan pipeline).
package compiler

import (
	"github.com/Mirrrek/nitrogen/internal/codegen"
	"github.com/Mirrrek/nitrogen/internal/diag"
	"github.com/Mirrrek/nitrogen/internal/lexer"
	"github.com/Mirrrek/nitrogen/internal/parser"
)

// Compile runs the full lex -> parse -> generate pipeline over src. sink
// receives lexer/generator warnings (e.g. W-Snake, W-Shadow) as they're
// produced; it may be nil to discard them. The first stage to fail
// returns its error immediately; later stages never run.
func Compile(filename, src string, sink diag.Sink) ([]byte, error) {
	tokens, err := lexer.Tokenize(filename, src, sink)
	if err != nil {
		return nil, err
	}

	stmts, err := parser.Parse(filename, src, tokens)
	if err != nil {
		return nil, err
	}

	return codegen.Generate(filename, src, stmts, sink)
}
