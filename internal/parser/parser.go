// Package parser builds the Nitro AST from a token stream, per spec.md
// §4.2: recursive descent for statements with a commit-on-progress
// backtracking rule, and Pratt precedence climbing for expressions.
//
// The reference algorithm describes a generic pattern-matching engine
// (ordered literal/placeholder specs). This implementation instead uses
// the alternate architecture spec.md §9 explicitly endorses: explicit
// predictive dispatch on the first (or first few) tokens, committing hard
// once a production is uniquely identified — chosen because it is the
// idiomatic Go shape, and because it reproduces the same "Unexpected
// token" diagnostics at the same positions as the generic matcher would.
// Error construction is grounded on opal-lang-opal/runtime/parser/errors.go.
package parser

import (
	"github.com/Mirrrek/nitrogen/internal/ast"
	"github.com/Mirrrek/nitrogen/internal/diag"
	"github.com/Mirrrek/nitrogen/internal/token"
)

// Parser holds the token stream and cursor.
type Parser struct {
	filename string
	source   string
	tokens   []token.Token
	pos      int
}

// Parse builds the program's top-level statement list.
func Parse(filename, src string, tokens []token.Token) ([]ast.Statement, error) {
	p := &Parser{filename: filename, source: src, tokens: tokens}
	stmts, err := p.parseStatements()
	if err != nil {
		return nil, err
	}
	if p.current().Type != token.EOF {
		return nil, p.errUnexpected("a statement")
	}
	return stmts, nil
}

func (p *Parser) current() token.Token {
	if p.pos >= len(p.tokens) {
		return token.Token{Type: token.EOF}
	}
	return p.tokens[p.pos]
}

func (p *Parser) peekAt(n int) token.Token {
	idx := p.pos + n
	if idx >= len(p.tokens) {
		return token.Token{Type: token.EOF}
	}
	return p.tokens[idx]
}

func (p *Parser) advance() token.Token {
	tok := p.current()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

func (p *Parser) expectSymbol(text string) bool {
	if p.current().Is(token.Symbol, text) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) expectKeyword(text string) bool {
	if p.current().Is(token.Keyword, text) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) errUnexpected(expected string) error {
	got := p.current()
	return diag.NewInputError(got.Pos, p.source, "Unexpected token: expected %s, got %s", expected, got)
}

func (p *Parser) errInvalidStatement() error {
	got := p.current()
	return diag.NewInputError(got.Pos, p.source, "Invalid statement")
}

// ---- statements -----------------------------------------------------------

func canStartStatement(tok token.Token) bool {
	switch tok.Type {
	case token.Symbol:
		return tok.Text == "{"
	case token.Keyword:
		switch tok.Text {
		case "if", "while", "do", "for", "break", "return", "const":
			return true
		}
		return false
	case token.Identifier:
		return true
	default:
		return false
	}
}

// parseStatements greedily consumes statements until the next token cannot
// start one; it never errors on its own (spec.md §4.2).
func (p *Parser) parseStatements() ([]ast.Statement, error) {
	var stmts []ast.Statement
	for canStartStatement(p.current()) {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	return stmts, nil
}

func (p *Parser) parseStatement() (ast.Statement, error) {
	tok := p.current()

	switch {
	case tok.Type == token.Symbol && tok.Text == "{":
		return p.parseScope()
	case tok.Type == token.Keyword && tok.Text == "if":
		return p.parseIf()
	case tok.Type == token.Keyword && tok.Text == "while":
		return p.parseWhile()
	case tok.Type == token.Keyword && tok.Text == "do":
		return p.parseDoWhile()
	case tok.Type == token.Keyword && tok.Text == "for":
		return p.parseFor()
	case tok.Type == token.Keyword && tok.Text == "break":
		return p.parseBreak()
	case tok.Type == token.Keyword && tok.Text == "return":
		return p.parseReturn()
	case tok.Type == token.Keyword && tok.Text == "const":
		return p.parsePrimitiveStatement(token.Symbol, ";", false)
	case tok.Type == token.Identifier:
		return p.parsePrimitiveStatement(token.Symbol, ";", true)
	default:
		return nil, p.errInvalidStatement()
	}
}

func (p *Parser) parseScope() (ast.Statement, error) {
	pos := p.current().Pos
	p.advance() // '{'
	stmts, err := p.parseStatements()
	if err != nil {
		return nil, err
	}
	if !p.expectSymbol("}") {
		return nil, p.errUnexpected("'}'")
	}
	return &ast.Scope{Pos: pos, Statements: stmts}, nil
}

// parsePrimitiveStatement implements spec.md §4.2 rule 1 (a-f), plus the
// "ident ident (" lookahead that distinguishes a function declaration
// (rule 7) when allowFunctionDecl is set. termType/termText is the token
// that terminates the matched form; for top-level and scope statements
// this is ';', but the for-loop's init/action placeholders inherit ';' and
// ')' respectively from the surrounding `for (...)` pattern.
func (p *Parser) parsePrimitiveStatement(termType token.Type, termText string, allowFunctionDecl bool) (ast.Statement, error) {
	isConst := false
	if p.current().Is(token.Keyword, "const") {
		isConst = true
		p.advance()
	}

	first := p.current()
	if first.Type != token.Identifier {
		return nil, p.errUnexpected("identifier")
	}

	if p.peekAt(1).Type == token.Identifier {
		typeTok := p.advance()
		nameTok := p.advance()
		cur := p.current()

		switch {
		case allowFunctionDecl && !isConst && cur.Is(token.Symbol, "("):
			return p.parseFunctionDeclaration(typeTok, nameTok)

		case cur.Is(token.Symbol, "="):
			p.advance()
			value, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			if !p.expectTerm(termType, termText) {
				return nil, p.errUnexpected(describeTerm(termType, termText))
			}
			return &ast.DeclarationWithAssignment{
				Pos: typeTok.Pos, Type: typeTok.Text, Name: nameTok.Text,
				Const: isConst, Assignment: value,
			}, nil

		case cur.Type == termType && (termText == "" || cur.Text == termText):
			if !isConst {
				p.advance()
				return &ast.Declaration{Pos: typeTok.Pos, Type: typeTok.Text, Name: nameTok.Text, Const: false}, nil
			}
			return nil, diag.NewInputError(cur.Pos, p.source, "Cannot declare a constant without an assignment")

		default:
			return nil, p.errUnexpected(describeTerm(termType, termText) + ", '=' or '('")
		}
	}

	if isConst {
		return nil, p.errUnexpected("identifier")
	}

	nameTok := p.advance()
	cur := p.current()

	switch {
	case cur.Is(token.Symbol, "="):
		p.advance()
		value, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if !p.expectTerm(termType, termText) {
			return nil, p.errUnexpected(describeTerm(termType, termText))
		}
		return &ast.Assignment{Pos: nameTok.Pos, Name: nameTok.Text, Assignment: value}, nil

	case cur.Is(token.Symbol, "++"):
		p.advance()
		if !p.expectTerm(termType, termText) {
			return nil, p.errUnexpected(describeTerm(termType, termText))
		}
		return &ast.IncrementStatement{Pos: nameTok.Pos, Name: nameTok.Text}, nil

	case cur.Is(token.Symbol, "--"):
		p.advance()
		if !p.expectTerm(termType, termText) {
			return nil, p.errUnexpected(describeTerm(termType, termText))
		}
		return &ast.DecrementStatement{Pos: nameTok.Pos, Name: nameTok.Text}, nil

	case cur.Is(token.Symbol, "("):
		p.advance()
		args, err := p.parseArguments()
		if err != nil {
			return nil, err
		}
		if !p.expectSymbol(")") {
			return nil, p.errUnexpected("')'")
		}
		if !p.expectTerm(termType, termText) {
			return nil, p.errUnexpected(describeTerm(termType, termText))
		}
		return &ast.FunctionCallStatement{Pos: nameTok.Pos, Name: nameTok.Text, Arguments: args}, nil

	default:
		return nil, p.errUnexpected("'=', '++', '--' or '('")
	}
}

func (p *Parser) expectTerm(termType token.Type, termText string) bool {
	cur := p.current()
	if cur.Type == termType && (termText == "" || cur.Text == termText) {
		p.advance()
		return true
	}
	return false
}

func describeTerm(termType token.Type, termText string) string {
	if termType == token.Symbol {
		return "'" + termText + "'"
	}
	return termType.String()
}

func (p *Parser) parseFunctionDeclaration(returnType, name token.Token) (ast.Statement, error) {
	p.advance() // '('
	params, err := p.parseParameters()
	if err != nil {
		return nil, err
	}
	if !p.expectSymbol(")") {
		return nil, p.errUnexpected("')'")
	}
	if !p.expectSymbol("{") {
		return nil, p.errUnexpected("'{'")
	}
	stmts, err := p.parseStatements()
	if err != nil {
		return nil, err
	}
	if !p.expectSymbol("}") {
		return nil, p.errUnexpected("'}'")
	}
	return &ast.FunctionDeclaration{
		Pos: returnType.Pos, Name: name.Text, Parameters: params,
		ReturnType: returnType.Text, Statements: stmts,
	}, nil
}

func (p *Parser) parseParameters() ([]ast.Parameter, error) {
	var params []ast.Parameter
	if p.current().Type != token.Identifier {
		return params, nil
	}
	for {
		typeTok := p.current()
		if typeTok.Type != token.Identifier {
			return nil, p.errUnexpected("parameter type")
		}
		p.advance()
		nameTok := p.current()
		if nameTok.Type != token.Identifier {
			return nil, diag.NewInputError(nameTok.Pos, p.source, "Invalid parameter")
		}
		p.advance()
		params = append(params, ast.Parameter{Type: typeTok.Text, Name: nameTok.Text})

		if p.expectSymbol(",") {
			continue
		}
		break
	}
	return params, nil
}

func (p *Parser) parseArguments() ([]ast.Expression, error) {
	var args []ast.Expression
	if !canStartExpression(p.current()) {
		return args, nil
	}
	for {
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		args = append(args, expr)
		if p.expectSymbol(",") {
			continue
		}
		break
	}
	return args, nil
}

func (p *Parser) parseIf() (ast.Statement, error) {
	pos := p.current().Pos
	p.advance() // 'if'

	block, err := p.parseIfBlock()
	if err != nil {
		return nil, err
	}
	blocks := []ast.IfBlock{block}

	var elseBlock []ast.Statement
	hasElse := false

	for p.current().Is(token.Keyword, "else") {
		if p.peekAt(1).Is(token.Keyword, "if") {
			p.advance() // 'else'
			p.advance() // 'if'
			block, err := p.parseIfBlock()
			if err != nil {
				return nil, err
			}
			blocks = append(blocks, block)
			continue
		}

		p.advance() // 'else'
		if !p.expectSymbol("{") {
			return nil, p.errUnexpected("'{'")
		}
		stmts, err := p.parseStatements()
		if err != nil {
			return nil, err
		}
		if !p.expectSymbol("}") {
			return nil, p.errUnexpected("'}'")
		}
		elseBlock = stmts
		hasElse = true
		break
	}

	return &ast.If{Pos: pos, Blocks: blocks, ElseBlock: elseBlock, HasElse: hasElse}, nil
}

func (p *Parser) parseIfBlock() (ast.IfBlock, error) {
	if !p.expectSymbol("(") {
		return ast.IfBlock{}, p.errUnexpected("'('")
	}
	cond, err := p.parseExpression()
	if err != nil {
		return ast.IfBlock{}, err
	}
	if !p.expectSymbol(")") {
		return ast.IfBlock{}, p.errUnexpected("')'")
	}
	if !p.expectSymbol("{") {
		return ast.IfBlock{}, p.errUnexpected("'{'")
	}
	stmts, err := p.parseStatements()
	if err != nil {
		return ast.IfBlock{}, err
	}
	if !p.expectSymbol("}") {
		return ast.IfBlock{}, p.errUnexpected("'}'")
	}
	return ast.IfBlock{Condition: cond, Statements: stmts}, nil
}

func (p *Parser) parseWhile() (ast.Statement, error) {
	pos := p.current().Pos
	p.advance() // 'while'
	if !p.expectSymbol("(") {
		return nil, p.errUnexpected("'('")
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if !p.expectSymbol(")") {
		return nil, p.errUnexpected("')'")
	}
	if !p.expectSymbol("{") {
		return nil, p.errUnexpected("'{'")
	}
	stmts, err := p.parseStatements()
	if err != nil {
		return nil, err
	}
	if !p.expectSymbol("}") {
		return nil, p.errUnexpected("'}'")
	}
	return &ast.While{Pos: pos, Condition: cond, Statements: stmts, DoWhile: false}, nil
}

func (p *Parser) parseDoWhile() (ast.Statement, error) {
	pos := p.current().Pos
	p.advance() // 'do'
	if !p.expectSymbol("{") {
		return nil, p.errUnexpected("'{'")
	}
	stmts, err := p.parseStatements()
	if err != nil {
		return nil, err
	}
	if !p.expectSymbol("}") {
		return nil, p.errUnexpected("'}'")
	}
	if !p.expectKeyword("while") {
		return nil, p.errUnexpected("'while'")
	}
	if !p.expectSymbol("(") {
		return nil, p.errUnexpected("'('")
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if !p.expectSymbol(")") {
		return nil, p.errUnexpected("')'")
	}
	if !p.expectSymbol(";") {
		return nil, p.errUnexpected("';'")
	}
	return &ast.While{Pos: pos, Condition: cond, Statements: stmts, DoWhile: true}, nil
}

func (p *Parser) parseFor() (ast.Statement, error) {
	pos := p.current().Pos
	p.advance() // 'for'
	if !p.expectSymbol("(") {
		return nil, p.errUnexpected("'('")
	}

	init, err := p.parsePrimitiveStatement(token.Symbol, ";", false)
	if err != nil {
		return nil, err
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if !p.expectSymbol(";") {
		return nil, p.errUnexpected("';'")
	}
	action, err := p.parsePrimitiveStatement(token.Symbol, ")", false)
	if err != nil {
		return nil, err
	}
	if !p.expectSymbol("{") {
		return nil, p.errUnexpected("'{'")
	}
	stmts, err := p.parseStatements()
	if err != nil {
		return nil, err
	}
	if !p.expectSymbol("}") {
		return nil, p.errUnexpected("'}'")
	}
	return &ast.For{Pos: pos, Initialization: init, Condition: cond, Action: action, Statements: stmts}, nil
}

func (p *Parser) parseBreak() (ast.Statement, error) {
	pos := p.current().Pos
	p.advance() // 'break'
	if !p.expectSymbol(";") {
		return nil, p.errUnexpected("';'")
	}
	return &ast.Break{Pos: pos}, nil
}

func (p *Parser) parseReturn() (ast.Statement, error) {
	pos := p.current().Pos
	p.advance() // 'return'
	if p.expectSymbol(";") {
		return &ast.Return{Pos: pos}, nil
	}
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if !p.expectSymbol(";") {
		return nil, p.errUnexpected("';'")
	}
	return &ast.Return{Pos: pos, Expression: expr}, nil
}

// ---- expressions ------------------------------------------------------

// precedence returns the binding power and operator tag for a binary
// operator token, per spec.md §4.2's table.
func precedence(tok token.Token) (int, ast.BinaryOp, bool) {
	if tok.Type != token.Symbol {
		return 0, "", false
	}
	switch tok.Text {
	case "==":
		return 0, ast.OpEquality, true
	case "!=":
		return 0, ast.OpInequality, true
	case "<":
		return 0, ast.OpLessThan, true
	case "<=":
		return 0, ast.OpLessThanOrEqual, true
	case ">":
		return 0, ast.OpGreaterThan, true
	case ">=":
		return 0, ast.OpGreaterThanOrEqual, true
	case "|":
		return 1, ast.OpBitwiseOr, true
	case "&":
		return 2, ast.OpBitwiseAnd, true
	case "+":
		return 3, ast.OpAddition, true
	case "-":
		return 3, ast.OpSubtraction, true
	case "*":
		return 4, ast.OpMultiplication, true
	case "/":
		return 4, ast.OpDivision, true
	case "%":
		return 4, ast.OpModulo, true
	default:
		return 0, "", false
	}
}

func (p *Parser) parseExpression() (ast.Expression, error) {
	return p.parseBinary(0)
}

// parseBinary implements Pratt precedence climbing. All operators are
// left-associative, so the recursive call uses prec+1 (spec.md §4.2); a
// right-associative operator would recurse at prec instead.
func (p *Parser) parseBinary(minPrec int) (ast.Expression, error) {
	left, err := p.parsePrimitiveExpression()
	if err != nil {
		return nil, err
	}

	for {
		prec, op, ok := precedence(p.current())
		if !ok || prec < minPrec {
			break
		}
		p.advance()
		right, err := p.parseBinary(prec + 1)
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Pos: left.Position(), Op: op, Left: left, Right: right}
	}
	return left, nil
}

func canStartExpression(tok token.Token) bool {
	switch tok.Type {
	case token.IntegerLiteral, token.FloatLiteral, token.StringLiteral, token.Identifier:
		return true
	case token.Symbol:
		return tok.Text == "-" || tok.Text == "("
	default:
		return false
	}
}

// parsePrimitiveExpression implements spec.md §4.2's primitive expression
// list, in order: signed int, signed float, string, function call,
// post-increment, post-decrement, variable, sub-expression.
func (p *Parser) parsePrimitiveExpression() (ast.Expression, error) {
	tok := p.current()

	if tok.Is(token.Symbol, "-") {
		next := p.peekAt(1)
		switch next.Type {
		case token.IntegerLiteral:
			p.advance()
			lit := p.advance()
			return &ast.IntegerLiteral{Pos: tok.Pos, Value: -lit.IntValue}, nil
		case token.FloatLiteral:
			p.advance()
			lit := p.advance()
			return &ast.FloatLiteral{Pos: tok.Pos, Value: -lit.FloatValue}, nil
		default:
			return nil, p.errUnexpected("integer or float literal")
		}
	}

	switch tok.Type {
	case token.IntegerLiteral:
		p.advance()
		return &ast.IntegerLiteral{Pos: tok.Pos, Value: tok.IntValue}, nil

	case token.FloatLiteral:
		p.advance()
		return &ast.FloatLiteral{Pos: tok.Pos, Value: tok.FloatValue}, nil

	case token.StringLiteral:
		p.advance()
		return &ast.StringLiteral{Pos: tok.Pos, Value: tok.StringValue}, nil

	case token.Identifier:
		next := p.peekAt(1)
		switch {
		case next.Is(token.Symbol, "("):
			p.advance()
			p.advance()
			args, err := p.parseArguments()
			if err != nil {
				return nil, err
			}
			if !p.expectSymbol(")") {
				return nil, p.errUnexpected("')'")
			}
			return &ast.FunctionCall{Pos: tok.Pos, Name: tok.Text, Arguments: args}, nil

		case next.Is(token.Symbol, "++"):
			p.advance()
			p.advance()
			return &ast.Increment{Pos: tok.Pos, Name: tok.Text}, nil

		case next.Is(token.Symbol, "--"):
			p.advance()
			p.advance()
			return &ast.Decrement{Pos: tok.Pos, Name: tok.Text}, nil

		default:
			p.advance()
			return &ast.Variable{Pos: tok.Pos, Name: tok.Text}, nil
		}

	case token.Symbol:
		if tok.Text == "(" {
			pos := tok.Pos
			p.advance()
			inner, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			if !p.expectSymbol(")") {
				return nil, p.errUnexpected("')'")
			}
			return &ast.SubExpression{Pos: pos, Inner: inner}, nil
		}
	}

	return nil, diag.NewInputError(tok.Pos, p.source, "Invalid expression")
}
