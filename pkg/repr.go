package sd2

import (
	"fmt"
	"strings"

	"github.com/alecthomas/repr"
)

// Repr renders v as a single-line debug string, used by sd2dump and by
// tests that want a human-readable failure message instead of a raw
// struct dump.
func Repr(v Value) string {
	switch val := v.(type) {
	case *StringValue:
		return repr.String(val.Text)
	case *IntValue:
		return fmt.Sprintf("%d", val.Value)
	case *FloatValue:
		return fmt.Sprintf("%v", val.Value)
	case *BoolValue:
		return fmt.Sprintf("%v", val.Value)
	case *NullValue:
		return "null"
	case *QualifiedNameValue:
		return val.Name.String()
	case *ListValue:
		parts := make([]string, len(val.Items))
		for i, item := range val.Items {
			parts[i] = Repr(item)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case *TupleValue:
		parts := make([]string, len(val.Items))
		for i, item := range val.Items {
			parts[i] = Repr(item)
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case *MapValue:
		return "{" + reprEntries(val.Entries) + "}"
	case *ConstructorNamedValue:
		return val.Name.String() + " {" + reprEntries(val.Entries) + "}"
	case *ConstructorTupleValue:
		parts := make([]string, len(val.Args))
		for i, arg := range val.Args {
			parts[i] = Repr(arg)
		}
		return val.Name.String() + "(" + strings.Join(parts, ", ") + ")"
	case *ForeignValue:
		if val.HasTag {
			return val.Tag.String() + "@" + repr.String(val.Content)
		}
		return "@" + repr.String(val.Content)
	case *ObjectValue:
		return val.TypeTag.String() + repr.String(val.Payload)
	default:
		return repr.String(v)
	}
}

func reprEntries(entries []MapEntry) string {
	parts := make([]string, len(entries))
	for i, e := range entries {
		parts[i] = fmt.Sprintf("%s=%s", e.Key, Repr(e.Value))
	}
	return strings.Join(parts, ", ")
}

// ReprEvent renders ev as a single-line debug string mirroring the
// shape sd2dump prints per line of its event trace.
func ReprEvent(ev Event) string {
	switch e := ev.(type) {
	case *StartDocumentEvent:
		return "StartDocument"
	case *EndDocumentEvent:
		return "EndDocument"
	case *DocumentAnnotationEvent:
		return fmt.Sprintf("DocumentAnnotation(%s)", e.Name.String())
	case *StartElementEvent:
		id := ""
		if e.HasID {
			id = " " + e.ID
		}
		return fmt.Sprintf("StartElement(%s%s)", e.Keyword, id)
	case *EndElementEvent:
		return "EndElement"
	case *StartNamespaceEvent:
		return fmt.Sprintf("StartNamespace(.%s)", e.Name)
	case *EndNamespaceEvent:
		return "EndNamespace"
	case *AttributeEvent:
		return fmt.Sprintf("Attribute(%s = %s)", e.Name, Repr(e.Value))
	default:
		return repr.String(ev)
	}
}
