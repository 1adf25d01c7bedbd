// Package codegen walks the Nitro AST and emits the linear textual
// intermediate representation described by spec.md §4.3: a flat sequence
// of instruction lines ("< " loads, "> " stores, increments/decrements and
// jumps) and "; " comment lines, with forward control-flow jumps resolved
// in a second pass once their target offsets are known.
package codegen

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/Mirrrek/nitrogen/internal/diag"
)

// offsetWidth is the fixed width of a textual jump target, dot-padded on
// the left (e.g. "...123"). Every jump instruction carries one.
const offsetWidth = 6

func formatOffset(n int) string {
	s := strconv.Itoa(n)
	if len(s) >= offsetWidth {
		return s[len(s)-offsetWidth:]
	}
	return strings.Repeat(".", offsetWidth-len(s)) + s
}

// Marker stands for a buffer offset that isn't known yet at the point a
// jump instruction referencing it is written. It is set() once the
// generator reaches the instruction's target, and consumed by the patches
// recorded via Buffer.Use() during Buffer.Resolve().
type Marker struct {
	value int
	isSet bool
}

// NewMarker returns an unset marker.
func NewMarker() *Marker { return &Marker{} }

// Set records this marker's resolved offset. A marker may only be set once.
func (m *Marker) Set(value int) {
	m.value = value
	m.isSet = true
}

type patch struct {
	offset    int
	size      int
	marker    *Marker
	transform func(value int) string
}

// Buffer accumulates the generated IR text and the list of not-yet-resolved
// jump fields within it.
type Buffer struct {
	buf     []byte
	patches []patch
}

// Len returns the buffer's current length, used as a jump target for
// instructions already written (backward jumps need no patch: the offset
// is known immediately).
func (b *Buffer) Len() int { return len(b.buf) }

// WriteString appends literal text.
func (b *Buffer) WriteString(s string) { b.buf = append(b.buf, s...) }

// Writef appends a formatted string.
func (b *Buffer) Writef(format string, args ...any) {
	b.buf = append(b.buf, fmt.Sprintf(format, args...)...)
}

// Use reserves size bytes at the current buffer position. Once the
// marker is set and the buffer is resolved, transform(marker.value) fills
// that reservation; its output must be exactly size bytes.
func (b *Buffer) Use(m *Marker, size int, transform func(value int) string) {
	offset := len(b.buf)
	b.buf = append(b.buf, bytes.Repeat([]byte{'.'}, size)...)
	b.patches = append(b.patches, patch{offset: offset, size: size, marker: m, transform: transform})
}

// Resolve applies every recorded patch and returns the final IR bytes. A
// marker left unset, or a transform that doesn't produce exactly the
// reserved width, is an internal error: the generator has a bug, not the
// user's source (spec.md §7). Callers should log this and substitute an
// empty buffer rather than fail the whole compile.
func (b *Buffer) Resolve() ([]byte, error) {
	for _, p := range b.patches {
		if !p.marker.isSet {
			return nil, diag.NewInternalError("marker used at offset %d was never set", p.offset)
		}
		text := p.transform(p.marker.value)
		if len(text) != p.size {
			return nil, diag.NewInternalError("marker transform at offset %d produced %d bytes, want %d", p.offset, len(text), p.size)
		}
		copy(b.buf[p.offset:p.offset+p.size], text)
	}
	return b.buf, nil
}
