package codegen

import (
	"log/slog"

	"github.com/Mirrrek/nitrogen/internal/ast"
	"github.com/Mirrrek/nitrogen/internal/diag"
	"github.com/Mirrrek/nitrogen/internal/source"
)

// The three jump instruction shapes spec.md §4.3 wires through the marker
// mechanism. Each mnemonic's reserved width is exactly its fixed text plus
// a 6-character dot-padded offset plus the trailing newline (21, 22, and
// 11 bytes respectively) — the sizes spec.md's own use(...) calls declare.
const (
	jmpIfTrueMnemonic  = ") JMP IF TRUE "
	jmpIfFalseMnemonic = ") JMP IF FALSE "
	jmpMnemonic        = "JMP "

	jmpIfTrueSize  = len(jmpIfTrueMnemonic) + offsetWidth + 1
	jmpIfFalseSize = len(jmpIfFalseMnemonic) + offsetWidth + 1
	jmpSize        = len(jmpMnemonic) + offsetWidth + 1
)

func formatJmpIfTrue(target int) string  { return jmpIfTrueMnemonic + formatOffset(target) + "\n" }
func formatJmpIfFalse(target int) string { return jmpIfFalseMnemonic + formatOffset(target) + "\n" }
func formatJmp(target int) string        { return jmpMnemonic + formatOffset(target) + "\n" }

// Generator walks a parsed statement list and produces the linear IR.
type Generator struct {
	filename   string
	source     string
	sink       diag.Sink
	buf        *Buffer
	scope      *scope
	nextOffset int
}

// Generate runs the full generation pass: statement walk, then marker
// resolution. A marker-resolution failure is an internal bug in the
// generator itself (spec.md §7); it is logged and an empty buffer is
// returned rather than failing the compile. An InputError, by contrast,
// means the source used a construct this generator doesn't support, or is
// otherwise invalid, and is returned to the caller as-is.
func Generate(filename, src string, stmts []ast.Statement, sink diag.Sink) ([]byte, error) {
	g := &Generator{
		filename: filename,
		source:   src,
		sink:     sink,
		buf:      &Buffer{},
		scope:    newScope(nil),
	}

	for _, s := range stmts {
		if err := g.genStatement(s); err != nil {
			return nil, err
		}
	}

	out, err := g.buf.Resolve()
	if err != nil {
		slog.Error("codegen: internal error resolving markers", "error", err)
		return []byte{}, nil
	}
	return out, nil
}

func (g *Generator) pushScope() { g.scope = newScope(g.scope) }
func (g *Generator) popScope()  { g.scope = g.scope.parent }

// emitJmpIfTrue reserves a forward "jump if true" instruction whose target
// isn't known yet, returning the marker that must later be set.
func (g *Generator) emitJmpIfTrue() *Marker {
	m := NewMarker()
	g.buf.Use(m, jmpIfTrueSize, formatJmpIfTrue)
	return m
}

// emitJmpIfFalse reserves a forward "jump if false" instruction whose
// target isn't known yet.
func (g *Generator) emitJmpIfFalse() *Marker {
	m := NewMarker()
	g.buf.Use(m, jmpIfFalseSize, formatJmpIfFalse)
	return m
}

// emitJmpForward reserves a forward unconditional jump whose target isn't
// known yet.
func (g *Generator) emitJmpForward() *Marker {
	m := NewMarker()
	g.buf.Use(m, jmpSize, formatJmp)
	return m
}

// emitJmpBack writes an unconditional jump to a target already written
// earlier in the buffer; no marker is needed since the offset is known.
func (g *Generator) emitJmpBack(target int) {
	g.buf.WriteString(formatJmp(target))
}

// emitJmpIfTrueBack writes a conditional "jump if true" to a target
// already written earlier in the buffer (a do-while's back-edge).
func (g *Generator) emitJmpIfTrueBack(target int) {
	g.buf.WriteString(formatJmpIfTrue(target))
}

// ---- statements ---------------------------------------------------------

func (g *Generator) genStatement(s ast.Statement) error {
	switch v := s.(type) {
	case *ast.Declaration:
		return g.genDeclaration(v)
	case *ast.DeclarationWithAssignment:
		return g.genDeclarationWithAssignment(v)
	case *ast.Assignment:
		return g.genAssignment(v)
	case *ast.IncrementStatement:
		return g.genIncDecStatement(v.Pos, v.Name, "++")
	case *ast.DecrementStatement:
		return g.genIncDecStatement(v.Pos, v.Name, "--")
	case *ast.FunctionCallStatement:
		return diag.NewInputError(v.Pos, g.source, "function calls are not implemented")
	case *ast.Scope:
		return g.genScope(v)
	case *ast.If:
		return g.genIf(v)
	case *ast.While:
		return g.genWhile(v)
	case *ast.For:
		return g.genFor(v)
	case *ast.Break:
		return diag.NewInputError(v.Pos, g.source, "break is not implemented")
	case *ast.FunctionDeclaration:
		return diag.NewInputError(v.Pos, g.source, "function declarations are not implemented")
	case *ast.Return:
		return diag.NewInputError(v.Pos, g.source, "return is not implemented")
	default:
		return diag.NewInternalError("unhandled statement type %T", s)
	}
}

func (g *Generator) declareVariable(pos source.Location, typ, name string, isConst bool) error {
	size, ok := primitiveTypeSizes[typ]
	if !ok {
		return diag.NewInputError(pos, g.source, "Unknown type %q", typ)
	}
	if g.scope.declaredHere(name) {
		return diag.NewInputError(pos, g.source, "%q is already declared in this scope", name)
	}
	if g.scope.shadows(name) && g.sink != nil {
		loc := pos
		g.sink.Emit(diag.Diagnostic{
			Severity: diag.Warning,
			Message:  diag.Plainf("W-Shadow: %q shadows a variable from an enclosing scope", name),
			Location: &loc,
			Source:   g.source,
		})
	}
	offset := g.nextOffset
	g.nextOffset += size
	g.scope.declare(name, typ, isConst, offset)
	return nil
}

func (g *Generator) genDeclaration(v *ast.Declaration) error {
	if err := g.declareVariable(v.Pos, v.Type, v.Name, v.Const); err != nil {
		return err
	}
	g.buf.Writef("< DECLARE %s %s\n", v.Type, v.Name)
	return nil
}

func (g *Generator) genDeclarationWithAssignment(v *ast.DeclarationWithAssignment) error {
	if err := g.declareVariable(v.Pos, v.Type, v.Name, v.Const); err != nil {
		return err
	}
	g.buf.Writef("< DECLARE %s %s\n", v.Type, v.Name)
	if err := g.genExpression(v.Assignment); err != nil {
		return err
	}
	variable, _ := g.scope.lookup(v.Name)
	g.buf.Writef("> STACK[%d]\n", variable.offset)
	return nil
}

func (g *Generator) genAssignment(v *ast.Assignment) error {
	variable, ok := g.scope.lookup(v.Name)
	if !ok {
		return diag.NewInputError(v.Pos, g.source, "%q is not declared", v.Name)
	}
	if variable.const_ {
		return diag.NewInputError(v.Pos, g.source, "cannot assign to constant %q", v.Name)
	}
	if err := g.genExpression(v.Assignment); err != nil {
		return err
	}
	g.buf.Writef("> STACK[%d]\n", variable.offset)
	return nil
}

func (g *Generator) genIncDecStatement(pos source.Location, name string, op string) error {
	variable, ok := g.scope.lookup(name)
	if !ok {
		return diag.NewInputError(pos, g.source, "%q is not declared", name)
	}
	if variable.const_ {
		return diag.NewInputError(pos, g.source, "cannot modify constant %q", name)
	}
	g.buf.Writef("STACK[%d]%s\n", variable.offset, op)
	return nil
}

// genScope implements the standalone `{ ... }` scope statement: a fresh
// variable scope wrapped in comment markers (spec.md §4.3).
func (g *Generator) genScope(v *ast.Scope) error {
	return g.genBracedStatements(v.Statements)
}

// genBracedStatements pushes a fresh scope and wraps stmts in the
// "; BEGIN SCOPE\n" / "; END SCOPE\n" markers spec.md §4.3 assigns to the
// scope statement and to if/else-if/else bodies.
func (g *Generator) genBracedStatements(stmts []ast.Statement) error {
	g.pushScope()
	defer g.popScope()
	g.buf.WriteString("; BEGIN SCOPE\n")
	for _, stmt := range stmts {
		if err := g.genStatement(stmt); err != nil {
			return err
		}
	}
	g.buf.WriteString("; END SCOPE\n")
	return nil
}

// genBodyStatements pushes a fresh scope around a while/do-while body
// without the comment-marker wrapping genBracedStatements adds — spec.md
// §4.3 only documents the brace wrap for if/else bodies.
func (g *Generator) genBodyStatements(stmts []ast.Statement) error {
	g.pushScope()
	defer g.popScope()
	for _, stmt := range stmts {
		if err := g.genStatement(stmt); err != nil {
			return err
		}
	}
	return nil
}

// ---- control flow ---------------------------------------------------------

// genIf implements spec.md §4.3's if-chain: each block's condition is
// tested in turn with a "jump if true" into that block's body; falling
// through every test jumps to the else entry; each body, once taken,
// jumps to the shared exit after the else block.
func (g *Generator) genIf(v *ast.If) error {
	ifEnter := make([]*Marker, len(v.Blocks))

	for i, block := range v.Blocks {
		if err := g.genExpression(block.Condition); err != nil {
			return err
		}
		ifEnter[i] = g.emitJmpIfTrue()
	}

	elseEnter := g.emitJmpForward()

	var ifExits []*Marker
	for i, block := range v.Blocks {
		ifEnter[i].Set(g.buf.Len())
		if err := g.genBracedStatements(block.Statements); err != nil {
			return err
		}
		ifExits = append(ifExits, g.emitJmpForward())
	}

	elseEnter.Set(g.buf.Len())
	if v.HasElse {
		if err := g.genBracedStatements(v.ElseBlock); err != nil {
			return err
		}
	}

	end := g.buf.Len()
	for _, m := range ifExits {
		m.Set(end)
	}
	return nil
}

func (g *Generator) genWhile(v *ast.While) error {
	if v.DoWhile {
		loopEnter := g.buf.Len()
		if err := g.genBodyStatements(v.Statements); err != nil {
			return err
		}
		if err := g.genExpression(v.Condition); err != nil {
			return err
		}
		g.emitJmpIfTrueBack(loopEnter)
		return nil
	}

	loopEnter := g.buf.Len()
	if err := g.genExpression(v.Condition); err != nil {
		return err
	}
	loopExit := g.emitJmpIfFalse()

	if err := g.genBodyStatements(v.Statements); err != nil {
		return err
	}

	g.emitJmpBack(loopEnter)
	loopExit.Set(g.buf.Len())
	return nil
}

func (g *Generator) genFor(v *ast.For) error {
	g.pushScope()
	defer g.popScope()

	if v.Initialization != nil {
		if err := g.genStatement(v.Initialization); err != nil {
			return err
		}
	}

	toCondition := g.emitJmpForward()

	actionMarker := g.buf.Len()
	if v.Action != nil {
		if err := g.genStatement(v.Action); err != nil {
			return err
		}
	}

	toCondition.Set(g.buf.Len())
	var loopExit *Marker
	if v.Condition != nil {
		if err := g.genExpression(v.Condition); err != nil {
			return err
		}
		loopExit = g.emitJmpIfFalse()
	}

	for _, stmt := range v.Statements {
		if err := g.genStatement(stmt); err != nil {
			return err
		}
	}

	g.emitJmpBack(actionMarker)
	if loopExit != nil {
		loopExit.Set(g.buf.Len())
	}
	return nil
}

// ---- expressions ------------------------------------------------------

func (g *Generator) genExpression(e ast.Expression) error {
	switch v := e.(type) {
	case *ast.IntegerLiteral:
		g.buf.Writef("< LITERAL INT %d\n", v.Value)
		return nil
	case *ast.FloatLiteral:
		g.buf.Writef("< LITERAL FLOAT %g\n", v.Value)
		return nil
	case *ast.StringLiteral:
		g.buf.Writef("< LITERAL STRING %q\n", v.Value)
		return nil
	case *ast.Variable:
		variable, ok := g.scope.lookup(v.Name)
		if !ok {
			return diag.NewInputError(v.Pos, g.source, "%q is not declared", v.Name)
		}
		g.buf.Writef("< STACK[%d]\n", variable.offset)
		return nil
	case *ast.Increment:
		variable, ok := g.scope.lookup(v.Name)
		if !ok {
			return diag.NewInputError(v.Pos, g.source, "%q is not declared", v.Name)
		}
		g.buf.Writef("STACK[%d]++\n", variable.offset)
		return nil
	case *ast.Decrement:
		variable, ok := g.scope.lookup(v.Name)
		if !ok {
			return diag.NewInputError(v.Pos, g.source, "%q is not declared", v.Name)
		}
		g.buf.Writef("STACK[%d]--\n", variable.offset)
		return nil
	case *ast.SubExpression:
		return g.genExpression(v.Inner)
	case *ast.FunctionCall:
		return diag.NewInputError(v.Pos, g.source, "function calls are not implemented")
	case *ast.Binary:
		return g.genBinary(v)
	default:
		return diag.NewInternalError("unhandled expression type %T", e)
	}
}

func (g *Generator) genBinary(v *ast.Binary) error {
	g.buf.WriteString("; EVAL A\n")
	if err := g.genExpression(v.Left); err != nil {
		return err
	}
	g.buf.WriteString("; EVAL B\n")
	if err := g.genExpression(v.Right); err != nil {
		return err
	}
	g.buf.Writef("< A %s B\n", string(v.Op))
	return nil
}
