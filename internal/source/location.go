// Package source holds the position type shared by tokens, AST nodes, and
// diagnostics.
package source

import "fmt"

// Location identifies a single point in a source file. Line and Column are
// 1-based; Column resets to 1 immediately after a newline.
type Location struct {
	File   string
	Line   int
	Column int
}

func (l Location) String() string {
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}
