package sorter

import (
	"fmt"
	"reflect"
	"unsafe"

	"golang.org/x/exp/constraints"
)

// Number is the set of element types accepted by Sort.
type Number interface {
	constraints.Integer | constraints.Float
}

// Kind classifies the bit layout of an element type.
type Kind uint8

const (
	Unsupported Kind = iota
	Unsigned
	Signed
	Float
)

// Shape describes an element type by its kind and width in bytes.
type Shape struct {
	Kind  Kind
	Width int
}

// ShapeOf reports the shape of T.
func ShapeOf[T Number]() Shape {
	var zero T
	width := int(unsafe.Sizeof(zero))
	switch reflect.TypeOf(zero).Kind() {
	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uint, reflect.Uintptr:
		return Shape{Kind: Unsigned, Width: width}
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64, reflect.Int:
		return Shape{Kind: Signed, Width: width}
	case reflect.Float32, reflect.Float64:
		return Shape{Kind: Float, Width: width}
	}
	return Shape{Width: width}
}

// Radixable reports whether the radix path handles this shape:
// u8, u16, u32, i8, i16, i32 and f32.
func (sh Shape) Radixable() bool {
	switch sh.Kind {
	case Unsigned, Signed:
		return sh.Width == 1 || sh.Width == 2 || sh.Width == 4
	case Float:
		return sh.Width == 4
	}
	return false
}

func (sh Shape) String() string {
	var prefix string
	switch sh.Kind {
	case Unsigned:
		prefix = "u"
	case Signed:
		prefix = "i"
	case Float:
		prefix = "f"
	default:
		return "unsupported"
	}
	return fmt.Sprintf("%s%d", prefix, sh.Width*8)
}
