package sd2

import "fmt"

// Location pinpoints a position in an SD2 source: a 1-based line, a
// 1-based column, and a 0-based byte offset. Every token, event, value
// and error carries one. A Location is a plain value and is never
// mutated after it is produced.
type Location struct {
	Line   int
	Column int
	Offset int
}

// String renders the location in "line:column" form, matching the
// shorthand used in error messages throughout the parser.
func (l Location) String() string {
	return fmt.Sprintf("%d:%d", l.Line, l.Column)
}

// startLocation is the location of the first rune of a freshly opened
// source: line 1, column 1, offset 0.
func startLocation() Location {
	return Location{Line: 1, Column: 1, Offset: 0}
}
