package sd2

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstructorRegistryKeepRawByDefault(t *testing.T) {
	reg := NewConstructorRegistry()
	src := "widget Button {\n  shape = Circle(5)\n}\n"
	r := NewReader(NewStringSource(src), ReaderConfig{ConstructorRegistry: reg})

	r.Next()
	r.Next()
	attr := r.Next().(*AttributeEvent)
	_, ok := attr.Value.(*ConstructorTupleValue)
	assert.True(t, ok)
}

func TestConstructorRegistryErrorOnUnknown(t *testing.T) {
	reg := NewConstructorRegistry()
	src := "widget Button {\n  shape = Circle(5)\n}\n"

	var got *ErrorRecord
	r := NewReader(NewStringSource(src), ReaderConfig{
		ConstructorRegistry:      reg,
		UnknownConstructorPolicy: ErrorOnUnknown,
		AllowRecovery:            true,
		OnError:                  func(rec *ErrorRecord) { got = rec },
	})
	for {
		if _, ok := r.Next().(*EndDocumentEvent); ok {
			break
		}
	}
	assert.NotNil(t, got)
	assert.Equal(t, E5001, got.Code)
}

func TestConstructorRegistryRegisteredHandler(t *testing.T) {
	reg := NewConstructorRegistry()
	reg.Register(NewQualifiedName("Point"), NewQualifiedName("geo", "point"),
		func(call ConstructorCall, ctx *ResolutionContext) (interface{}, error) {
			x := call.Args[0].(*IntValue).Value
			y := call.Args[1].(*IntValue).Value
			return [2]int64{x, y}, nil
		})

	src := "data P {\n  point = Point(10, 20)\n}\n"
	r := NewReader(NewStringSource(src), ReaderConfig{ConstructorRegistry: reg})
	r.Next()
	r.Next()
	attr := r.Next().(*AttributeEvent)
	obj := attr.Value.(*ObjectValue)
	assert.Equal(t, NewQualifiedName("geo", "point"), obj.TypeTag)
	assert.Equal(t, [2]int64{10, 20}, obj.Payload)
}

func TestConstructorRegistryResolutionIsIdempotent(t *testing.T) {
	reg := NewTemporalRegistry()
	src := "job cleanup {\n  start = instant(\"2024-03-15T14:30:00Z\")\n}\n"
	r := NewReader(NewStringSource(src), ReaderConfig{ConstructorRegistry: reg})
	r.Next()
	r.Next()
	attr := r.Next().(*AttributeEvent)

	once := r.resolveValue(attr.Value)
	twice := r.resolveValue(once)
	assert.Equal(t, once, twice)
}

func TestResolutionContextErrorDefaultsToCallLocation(t *testing.T) {
	reg := NewConstructorRegistry()
	loc := Location{Line: 3, Column: 4}
	reg.Register(NewQualifiedName("Bad"), NewQualifiedName("x", "bad"),
		func(call ConstructorCall, ctx *ResolutionContext) (interface{}, error) {
			return nil, ctx.Error(E1000, "broken")
		})

	r := NewReader(NewStringSource(""), ReaderConfig{ConstructorRegistry: reg})
	_, err := r.resolveConstructor(NewQualifiedName("Bad"), nil, nil, loc, nil)
	assert.Error(t, err)
	rec, ok := AsErrorRecord(err)
	assert.True(t, ok)
	assert.Equal(t, loc, rec.Loc)
}
