package sd2

// Event is the tagged union of the parser's flat document event
// stream. Every variant carries the location of the token that
// introduced it. Consumers treat the stream as an iterator terminated
// by EndDocumentEvent.
type Event interface {
	Location() Location

	isEvent()
}

// StartDocumentEvent is always the first event produced by a Reader.
type StartDocumentEvent struct {
	Loc Location
}

func (e *StartDocumentEvent) Location() Location { return e.Loc }
func (*StartDocumentEvent) isEvent()             {}

// EndDocumentEvent is always the last event produced by a Reader.
// Once returned, subsequent calls to Reader.Next keep returning it.
type EndDocumentEvent struct {
	Loc Location
}

func (e *EndDocumentEvent) Location() Location { return e.Loc }
func (*EndDocumentEvent) isEvent()             {}

// DocumentAnnotationEvent is a top-level `#![...]` annotation.
type DocumentAnnotationEvent struct {
	Name    QualifiedName
	Args    string
	HasArgs bool
	Loc     Location
}

func (e *DocumentAnnotationEvent) Location() Location { return e.Loc }
func (*DocumentAnnotationEvent) isEvent()             {}

// StartElementEvent opens an element: `[annotations] keyword [id]
// [: type] [qualifiers] [body]`.
type StartElementEvent struct {
	Keyword     string
	ID          string
	HasID       bool
	Type        TypeExpr
	HasType     bool
	Annotations []Annotation
	Qualifiers  []Qualifier
	Loc         Location
}

func (e *StartElementEvent) Location() Location { return e.Loc }
func (*StartElementEvent) isEvent()             {}

// EndElementEvent closes the most recently opened, still-unclosed
// element.
type EndElementEvent struct {
	Loc Location
}

func (e *EndElementEvent) Location() Location { return e.Loc }
func (*EndElementEvent) isEvent()             {}

// StartNamespaceEvent opens a `.name { ... }` secondary scope inside an
// element body.
type StartNamespaceEvent struct {
	Name string
	Loc  Location
}

func (e *StartNamespaceEvent) Location() Location { return e.Loc }
func (*StartNamespaceEvent) isEvent()             {}

// EndNamespaceEvent closes the most recently opened, still-unclosed
// namespace.
type EndNamespaceEvent struct {
	Loc Location
}

func (e *EndNamespaceEvent) Location() Location { return e.Loc }
func (*EndNamespaceEvent) isEvent()             {}

// AttributeEvent carries a fully materialized value tree for a single
// `name = value` body item.
type AttributeEvent struct {
	Name  string
	Value Value
	Loc   Location
}

func (e *AttributeEvent) Location() Location { return e.Loc }
func (*AttributeEvent) isEvent()             {}
