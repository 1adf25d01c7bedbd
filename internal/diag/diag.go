// Package diag implements the diagnostic sink contract from spec.md §6: a
// severity, a message (plain text or a sequence of emphasized chunks), and
// an optional source location that lets the sink quote the offending line
// with a caret.
package diag

import (
	"fmt"
	"strings"

	"github.com/Mirrrek/nitrogen/internal/source"
)

// Severity classifies a diagnostic.
type Severity int

const (
	Info Severity = iota
	Warning
	Error
)

func (s Severity) String() string {
	switch s {
	case Info:
		return "INFO"
	case Warning:
		return "WARN"
	case Error:
		return "ERROR"
	default:
		return "???"
	}
}

// Chunk is one piece of a structured message; Bold chunks are meant to be
// rendered emphasized by a terminal-aware sink.
type Chunk struct {
	Text string
	Bold bool
}

// Message is either a plain string or a sequence of chunks.
type Message struct {
	Plain  string
	Chunks []Chunk
}

// Text renders a Message as a plain string, concatenating chunks if present.
func (m Message) Text() string {
	if len(m.Chunks) == 0 {
		return m.Plain
	}
	var b strings.Builder
	for _, c := range m.Chunks {
		b.WriteString(c.Text)
	}
	return b.String()
}

// Plain wraps a plain-string message.
func Plain(s string) Message { return Message{Plain: s} }

// Plainf formats a plain-string message.
func Plainf(format string, args ...any) Message {
	return Message{Plain: fmt.Sprintf(format, args...)}
}

// Diagnostic is a single item delivered to a Sink.
type Diagnostic struct {
	Severity Severity
	Message  Message
	Location *source.Location
	Source   string // full source text, for snippet rendering; may be empty
}

// Sink accepts diagnostics. The CLI driver's implementation writes to
// stderr with source snippets; tests typically collect into a slice.
type Sink interface {
	Emit(d Diagnostic)
}

// CollectingSink accumulates diagnostics in memory, for use by the
// compiler's internal stages and by tests.
type CollectingSink struct {
	Diagnostics []Diagnostic
}

func (s *CollectingSink) Emit(d Diagnostic) {
	s.Diagnostics = append(s.Diagnostics, d)
}

// HasErrors reports whether any diagnostic at Error severity was collected.
func (s *CollectingSink) HasErrors() bool {
	for _, d := range s.Diagnostics {
		if d.Severity == Error {
			return true
		}
	}
	return false
}

// Snippet renders a Rust/Clang-style source excerpt with a caret under the
// offending column, grounded on the teacher's ParseError.createCodeSnippet.
func Snippet(source_ string, loc source.Location) string {
	if source_ == "" || loc.Line <= 0 {
		return ""
	}
	lines := strings.Split(source_, "\n")
	if loc.Line > len(lines) {
		return ""
	}
	lineContent := lines[loc.Line-1]

	var b strings.Builder
	fmt.Fprintf(&b, "  --> %s\n", loc)
	b.WriteString("   |\n")
	fmt.Fprintf(&b, "%3d | %s\n", loc.Line, lineContent)
	b.WriteString("    | ")
	if loc.Column > 0 && loc.Column <= len(lineContent)+1 {
		b.WriteString(strings.Repeat(" ", loc.Column-1) + "^")
	}
	return b.String()
}

// Format renders a diagnostic as a single human-readable block, including
// a snippet when both Location and Source are available.
func Format(d Diagnostic) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s\n", d.Severity, d.Message.Text())
	if d.Location != nil {
		if snippet := Snippet(d.Source, *d.Location); snippet != "" {
			b.WriteString(snippet)
			b.WriteByte('\n')
		} else {
			fmt.Fprintf(&b, "  --> %s\n", *d.Location)
		}
	}
	return b.String()
}

// InputError is a user error at a known source location: malformed input
// that aborts the current pipeline stage (spec.md §7).
type InputError struct {
	Message  Message
	Location source.Location
	Source   string
}

func (e *InputError) Error() string {
	return Format(Diagnostic{Severity: Error, Message: e.Message, Location: &e.Location, Source: e.Source})
}

// NewInputError constructs an InputError with a plain-string message.
func NewInputError(loc source.Location, src string, format string, args ...any) *InputError {
	return &InputError{Message: Plainf(format, args...), Location: loc, Source: src}
}

// InternalError represents an invariant violation inside the generator
// (e.g. an unset marker). When marker resolution reports one, it is logged,
// not propagated as a user error; the caller substitutes an empty buffer and
// continues (spec.md §7). An InternalError from an unhandled AST node type
// is returned to the caller like any other error.
type InternalError struct {
	Message string
}

func (e *InternalError) Error() string { return "internal error: " + e.Message }

// NewInternalError constructs an InternalError.
func NewInternalError(format string, args ...any) *InternalError {
	return &InternalError{Message: fmt.Sprintf(format, args...)}
}
