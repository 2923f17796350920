package ingestor

import (
	"fmt"
	"math"
	"strconv"

	"github.com/thomcc/radix-sorter/iputils"
	"github.com/thomcc/radix-sorter/sorter"
	"golang.org/x/exp/constraints"
)

// ElementType is the element type a column is parsed into.
type ElementType uint8

const (
	Unknown ElementType = iota
	U8
	U16
	U32
	I8
	I16
	I32
	F32
	F64
	I64
	U64
	IPv4
)

var elementTypeNames = map[ElementType]string{
	U8:   "u8",
	U16:  "u16",
	U32:  "u32",
	I8:   "i8",
	I16:  "i16",
	I32:  "i32",
	F32:  "f32",
	F64:  "f64",
	I64:  "i64",
	U64:  "u64",
	IPv4: "ipv4",
}

func (t ElementType) String() string {
	if name, ok := elementTypeNames[t]; ok {
		return name
	}
	return "unknown"
}

// ParseElementType maps a type name such as "i16" or "ipv4" to its ElementType.
func ParseElementType(s string) (ElementType, error) {
	for t, name := range elementTypeNames {
		if name == s {
			return t, nil
		}
	}
	return Unknown, fmt.Errorf("unknown element type %q (want one of u8, u16, u32, i8, i16, i32, f32, f64, i64, u64, ipv4)", s)
}

// Column is a named sequence of values of a single element type.
type Column struct {
	Name string
	Type ElementType
	data any
}

// NewColumn returns an empty column of the given type.
func NewColumn(name string, t ElementType, capacity int) (*Column, error) {
	c := &Column{Name: name, Type: t}
	switch t {
	case U8:
		c.data = make([]uint8, 0, capacity)
	case U16:
		c.data = make([]uint16, 0, capacity)
	case U32, IPv4:
		c.data = make([]uint32, 0, capacity)
	case U64:
		c.data = make([]uint64, 0, capacity)
	case I8:
		c.data = make([]int8, 0, capacity)
	case I16:
		c.data = make([]int16, 0, capacity)
	case I32:
		c.data = make([]int32, 0, capacity)
	case I64:
		c.data = make([]int64, 0, capacity)
	case F32:
		c.data = make([]float32, 0, capacity)
	case F64:
		c.data = make([]float64, 0, capacity)
	default:
		return nil, fmt.Errorf("column %q: unsupported element type %v", name, t)
	}
	return c, nil
}

// Data returns the typed slice backing the column, e.g. []int16 for i16.
func (c *Column) Data() any {
	return c.data
}

func (c *Column) Len() int {
	switch d := c.data.(type) {
	case []uint8:
		return len(d)
	case []uint16:
		return len(d)
	case []uint32:
		return len(d)
	case []uint64:
		return len(d)
	case []int8:
		return len(d)
	case []int16:
		return len(d)
	case []int32:
		return len(d)
	case []int64:
		return len(d)
	case []float32:
		return len(d)
	case []float64:
		return len(d)
	}
	return 0
}

// Shape returns the sorter shape of the column's elements.
func (c *Column) Shape() sorter.Shape {
	switch c.data.(type) {
	case []uint8:
		return sorter.ShapeOf[uint8]()
	case []uint16:
		return sorter.ShapeOf[uint16]()
	case []uint32:
		return sorter.ShapeOf[uint32]()
	case []uint64:
		return sorter.ShapeOf[uint64]()
	case []int8:
		return sorter.ShapeOf[int8]()
	case []int16:
		return sorter.ShapeOf[int16]()
	case []int32:
		return sorter.ShapeOf[int32]()
	case []int64:
		return sorter.ShapeOf[int64]()
	case []float32:
		return sorter.ShapeOf[float32]()
	case []float64:
		return sorter.ShapeOf[float64]()
	}
	return sorter.Shape{}
}

// Sort computes the ascending permutation of the column with s.
func (c *Column) Sort(s *sorter.Sorter, forceRadix bool) []uint32 {
	switch d := c.data.(type) {
	case []uint8:
		return sorter.Sort(s, d, forceRadix)
	case []uint16:
		return sorter.Sort(s, d, forceRadix)
	case []uint32:
		return sorter.Sort(s, d, forceRadix)
	case []uint64:
		return sorter.Sort(s, d, forceRadix)
	case []int8:
		return sorter.Sort(s, d, forceRadix)
	case []int16:
		return sorter.Sort(s, d, forceRadix)
	case []int32:
		return sorter.Sort(s, d, forceRadix)
	case []int64:
		return sorter.Sort(s, d, forceRadix)
	case []float32:
		return sorter.Sort(s, d, forceRadix)
	case []float64:
		return sorter.Sort(s, d, forceRadix)
	}
	return []uint32{}
}

// Float returns element i as a float64. Values of 64-bit integer columns
// beyond 2^53 lose precision.
func (c *Column) Float(i int) float64 {
	switch d := c.data.(type) {
	case []uint8:
		return float64(d[i])
	case []uint16:
		return float64(d[i])
	case []uint32:
		return float64(d[i])
	case []uint64:
		return float64(d[i])
	case []int8:
		return float64(d[i])
	case []int16:
		return float64(d[i])
	case []int32:
		return float64(d[i])
	case []int64:
		return float64(d[i])
	case []float32:
		return float64(d[i])
	case []float64:
		return d[i]
	}
	panic(fmt.Sprintf("column %q has no data", c.Name))
}

// Format renders element i the way it would appear in an input file.
func (c *Column) Format(i int) string {
	switch d := c.data.(type) {
	case []uint32:
		if c.Type == IPv4 {
			return iputils.Uint32ToIP(d[i]).String()
		}
		return strconv.FormatUint(uint64(d[i]), 10)
	case []uint64:
		return strconv.FormatUint(d[i], 10)
	case []int64:
		return strconv.FormatInt(d[i], 10)
	case []float32:
		return strconv.FormatFloat(float64(d[i]), 'g', -1, 32)
	case []float64:
		return strconv.FormatFloat(d[i], 'g', -1, 64)
	}
	return strconv.FormatInt(int64(c.Float(i)), 10)
}

// AppendToken parses tok as the column's element type and appends it.
func (c *Column) AppendToken(tok string) error {
	var err error
	switch d := c.data.(type) {
	case []uint8:
		c.data, err = appendUnsigned(d, tok, 8)
	case []uint16:
		c.data, err = appendUnsigned(d, tok, 16)
	case []uint32:
		if c.Type == IPv4 {
			var v uint32
			if v, err = iputils.ParseIPv4(tok); err == nil {
				c.data = append(d, v)
			}
		} else {
			c.data, err = appendUnsigned(d, tok, 32)
		}
	case []uint64:
		c.data, err = appendUnsigned(d, tok, 64)
	case []int8:
		c.data, err = appendSigned(d, tok, 8)
	case []int16:
		c.data, err = appendSigned(d, tok, 16)
	case []int32:
		c.data, err = appendSigned(d, tok, 32)
	case []int64:
		c.data, err = appendSigned(d, tok, 64)
	case []float32:
		c.data, err = appendFloat(d, tok, 32)
	case []float64:
		c.data, err = appendFloat(d, tok, 64)
	default:
		err = fmt.Errorf("column %q has no data", c.Name)
	}
	return err
}

// AppendFloat appends v if it is exactly representable in the column's
// element type and reports whether it was.
func (c *Column) AppendFloat(v float64) bool {
	switch d := c.data.(type) {
	case []uint8:
		return appendIntegral(d, v, 0, math.MaxUint8, &c.data)
	case []uint16:
		return appendIntegral(d, v, 0, math.MaxUint16, &c.data)
	case []uint32:
		return appendIntegral(d, v, 0, math.MaxUint32, &c.data)
	case []uint64:
		// 2^64 itself is representable as float64 but not as uint64
		return appendIntegral(d, v, 0, math.Nextafter(1<<64, 0), &c.data)
	case []int8:
		return appendIntegral(d, v, math.MinInt8, math.MaxInt8, &c.data)
	case []int16:
		return appendIntegral(d, v, math.MinInt16, math.MaxInt16, &c.data)
	case []int32:
		return appendIntegral(d, v, math.MinInt32, math.MaxInt32, &c.data)
	case []int64:
		return appendIntegral(d, v, math.MinInt64, math.Nextafter(1<<63, 0), &c.data)
	case []float32:
		if !math.IsNaN(v) && !math.IsInf(v, 0) && math.Abs(v) > math.MaxFloat32 {
			return false
		}
		c.data = append(d, float32(v))
		return true
	case []float64:
		c.data = append(d, v)
		return true
	}
	return false
}

// ColumnFromFloats builds a column of type t from values, skipping those
// that the type cannot represent. It returns the number skipped.
func ColumnFromFloats(name string, t ElementType, values []float64) (*Column, int, error) {
	c, err := NewColumn(name, t, len(values))
	if err != nil {
		return nil, 0, err
	}
	skipped := 0
	for _, v := range values {
		if !c.AppendFloat(v) {
			skipped++
		}
	}
	return c, skipped, nil
}

func appendUnsigned[T constraints.Unsigned](d []T, tok string, bits int) ([]T, error) {
	v, err := strconv.ParseUint(tok, 10, bits)
	if err != nil {
		return d, err
	}
	return append(d, T(v)), nil
}

func appendSigned[T constraints.Signed](d []T, tok string, bits int) ([]T, error) {
	v, err := strconv.ParseInt(tok, 10, bits)
	if err != nil {
		return d, err
	}
	return append(d, T(v)), nil
}

func appendFloat[T constraints.Float](d []T, tok string, bits int) ([]T, error) {
	v, err := strconv.ParseFloat(tok, bits)
	if err != nil {
		return d, err
	}
	return append(d, T(v)), nil
}

func appendIntegral[T constraints.Integer](d []T, v, lo, hi float64, out *any) bool {
	if math.IsNaN(v) || v != math.Trunc(v) || v < lo || v > hi {
		return false
	}
	*out = append(d, T(v))
	return true
}

// Equal reports whether elements i and j hold the same value. NaN is not
// equal to itself.
func (c *Column) Equal(i, j int) bool {
	switch d := c.data.(type) {
	case []uint8:
		return d[i] == d[j]
	case []uint16:
		return d[i] == d[j]
	case []uint32:
		return d[i] == d[j]
	case []uint64:
		return d[i] == d[j]
	case []int8:
		return d[i] == d[j]
	case []int16:
		return d[i] == d[j]
	case []int32:
		return d[i] == d[j]
	case []int64:
		return d[i] == d[j]
	case []float32:
		return d[i] == d[j]
	case []float64:
		return d[i] == d[j]
	}
	return false
}

// IsNaN reports whether element i is a floating point NaN.
func (c *Column) IsNaN(i int) bool {
	switch d := c.data.(type) {
	case []float32:
		return d[i] != d[i]
	case []float64:
		return d[i] != d[i]
	}
	return false
}

// Select returns a new column holding the elements for which keep returns
// true, along with the number dropped.
func (c *Column) Select(keep func(v float64) bool) (*Column, int) {
	out := &Column{Name: c.Name, Type: c.Type}
	var dropped int
	switch d := c.data.(type) {
	case []uint8:
		out.data, dropped = selectValues(d, keep)
	case []uint16:
		out.data, dropped = selectValues(d, keep)
	case []uint32:
		out.data, dropped = selectValues(d, keep)
	case []uint64:
		out.data, dropped = selectValues(d, keep)
	case []int8:
		out.data, dropped = selectValues(d, keep)
	case []int16:
		out.data, dropped = selectValues(d, keep)
	case []int32:
		out.data, dropped = selectValues(d, keep)
	case []int64:
		out.data, dropped = selectValues(d, keep)
	case []float32:
		out.data, dropped = selectValues(d, keep)
	case []float64:
		out.data, dropped = selectValues(d, keep)
	}
	return out, dropped
}

func selectValues[T sorter.Number](d []T, keep func(v float64) bool) ([]T, int) {
	out := make([]T, 0, len(d))
	for _, v := range d {
		if keep(float64(v)) {
			out = append(out, v)
		}
	}
	return out, len(d) - len(out)
}
