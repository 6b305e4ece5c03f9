package sd2

import "strings"

// QualifiedName is an ordered, dotted sequence of identifiers, e.g.
// db.postgresql or dark.primary. It always holds at least one part.
type QualifiedName struct {
	Parts []string
}

// NewQualifiedName builds a QualifiedName from its dotted parts.
func NewQualifiedName(parts ...string) QualifiedName {
	return QualifiedName{Parts: parts}
}

// String renders the dotted form, e.g. "db.postgresql".
func (q QualifiedName) String() string {
	return strings.Join(q.Parts, ".")
}

// Equal reports whether two qualified names have the same parts in the
// same order, compared case-sensitively component by component.
func (q QualifiedName) Equal(other QualifiedName) bool {
	if len(q.Parts) != len(other.Parts) {
		return false
	}
	for i, p := range q.Parts {
		if p != other.Parts[i] {
			return false
		}
	}
	return true
}

// TypeExpr is a qualified name plus an ordered sequence of nested type
// arguments, e.g. List<Map<String, Int>>.
type TypeExpr struct {
	Name QualifiedName
	Args []TypeExpr
}

// Qualifier is a header modifier: a simple identifier name plus one or
// more required qualified-name arguments, e.g. `unique id` or
// `from a.b, c.d`.
type Qualifier struct {
	Name string
	Args []QualifiedName
	Loc  Location
}

// Annotation is a document- or element-level annotation: a qualified
// name plus the opaque, balanced-bracket argument text captured from
// the originating parenthesized region, if any.
type Annotation struct {
	Name QualifiedName
	Args string
	HasArgs bool
	Loc  Location
}
