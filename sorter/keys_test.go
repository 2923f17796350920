package sorter

import (
	"errors"
	"math"
	"math/rand"
	"testing"
)

func TestFlipSignedInt8Exhaustive(t *testing.T) {
	prev := int64(-1)
	for v := math.MinInt8; v <= math.MaxInt8; v++ {
		bits := uint32(uint8(int8(v)))
		key := FlipSigned(bits, 1)
		if int64(key) <= prev {
			t.Fatalf("key for %d is %#x, not above previous %#x", v, key, prev)
		}
		prev = int64(key)
		if back := UnflipSigned(key, 1); back != bits {
			t.Fatalf("round trip of %d: got %#x, want %#x", v, back, bits)
		}
	}
	if prev != 0xFF {
		t.Errorf("largest int8 key %#x, want 0xff", prev)
	}
}

func TestFlipSignedInt16Exhaustive(t *testing.T) {
	prev := int64(-1)
	for v := math.MinInt16; v <= math.MaxInt16; v++ {
		bits := uint32(uint16(int16(v)))
		key := FlipSigned(bits, 2)
		if int64(key) <= prev {
			t.Fatalf("key for %d is %#x, not above previous %#x", v, key, prev)
		}
		prev = int64(key)
		if back := UnflipSigned(key, 2); back != bits {
			t.Fatalf("round trip of %d: got %#x, want %#x", v, back, bits)
		}
	}
}

func TestFlipSignedInt32RoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	edges := []uint32{0, 1, 0x7FFFFFFF, 0x80000000, 0xFFFFFFFF}
	for i := 0; i < 100000; i++ {
		edges = append(edges, rng.Uint32())
	}
	for _, bits := range edges {
		if back := UnflipSigned(FlipSigned(bits, 4), 4); back != bits {
			t.Fatalf("round trip of %#x gave %#x", bits, back)
		}
	}
	if FlipSigned(uint32(0x80000000), 4) != 0 {
		t.Error("MinInt32 should map to key 0")
	}
	if FlipSigned(uint32(0x7FFFFFFF), 4) != 0xFFFFFFFF {
		t.Error("MaxInt32 should map to the largest key")
	}
}

func TestFlipFloatOrdering(t *testing.T) {
	ordered := []float32{
		float32(math.Inf(-1)),
		-math.MaxFloat32,
		-1e10,
		-1,
		-math.SmallestNonzeroFloat32,
		float32(math.Copysign(0, -1)),
		0,
		math.SmallestNonzeroFloat32,
		1,
		1e10,
		math.MaxFloat32,
		float32(math.Inf(1)),
	}

	for i := 1; i < len(ordered); i++ {
		a := FlipFloat(math.Float32bits(ordered[i-1]))
		b := FlipFloat(math.Float32bits(ordered[i]))
		if a >= b {
			t.Errorf("key(%v)=%#x not below key(%v)=%#x", ordered[i-1], a, ordered[i], b)
		}
	}
}

func TestFlipFloatRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	patterns := []uint32{
		0x00000000, 0x80000000, 0x7F800000, 0xFF800000,
		0x7FC00000, 0xFFC00000, 0x7F800001, 0xFFFFFFFF, 0x00000001,
	}
	for i := 0; i < 100000; i++ {
		patterns = append(patterns, rng.Uint32())
	}
	for _, bits := range patterns {
		if back := UnflipFloat(FlipFloat(bits)); back != bits {
			t.Fatalf("round trip of %#x gave %#x", bits, back)
		}
	}
}

func TestLoadKeysSigned(t *testing.T) {
	data := []int16{math.MinInt16, -1, 0, 1, math.MaxInt16}
	keys := make([]uint32, len(data))
	loadKeys(keys, data, ShapeOf[int16]())

	want := []uint32{0x0000, 0x7FFF, 0x8000, 0x8001, 0xFFFF}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("key[%d] = %#x, want %#x", i, keys[i], want[i])
		}
	}
}

func TestDecodeKey(t *testing.T) {
	i8 := []int8{-128, -5, 0, 127}
	keys := make([]uint32, len(i8))
	loadKeys(keys, i8, ShapeOf[int8]())
	for i, k := range keys {
		got, err := DecodeKey(ShapeOf[int8](), k)
		if err != nil {
			t.Fatal(err)
		}
		if got != float64(i8[i]) {
			t.Errorf("DecodeKey(%#x) = %v, want %d", k, got, i8[i])
		}
	}

	f32 := []float32{-2.5, 0, 1.5}
	keys = make([]uint32, len(f32))
	loadKeys(keys, f32, ShapeOf[float32]())
	for i, k := range keys {
		got, err := DecodeKey(ShapeOf[float32](), k)
		if err != nil {
			t.Fatal(err)
		}
		if got != float64(f32[i]) {
			t.Errorf("DecodeKey(%#x) = %v, want %v", k, got, f32[i])
		}
	}
}

func TestDecodeBucket(t *testing.T) {
	tests := []struct {
		shape Shape
		b     byte
		want  float64
	}{
		{ShapeOf[uint8](), 7, 7},
		{ShapeOf[uint16](), 1, 256},
		{ShapeOf[int8](), 0, -128},
		{ShapeOf[int8](), 0x80, 0},
		{ShapeOf[int32](), 0x80, 0},
		{ShapeOf[int32](), 0x7F, -16777216},
		{ShapeOf[float32](), 0x80, 0},
	}
	for _, tt := range tests {
		got, err := DecodeBucket(tt.shape, tt.b)
		if err != nil {
			t.Fatalf("DecodeBucket(%s, %#x): %v", tt.shape, tt.b, err)
		}
		if got != tt.want {
			t.Errorf("DecodeBucket(%s, %#x) = %v, want %v", tt.shape, tt.b, got, tt.want)
		}
	}

	if _, err := DecodeBucket(ShapeOf[float64](), 0); !errors.Is(err, ErrUnsupportedWidth) {
		t.Errorf("expected ErrUnsupportedWidth for f64, got %v", err)
	}
}

func TestShapeOf(t *testing.T) {
	type celsius float32
	type level int8

	tests := []struct {
		got       Shape
		name      string
		radixable bool
	}{
		{ShapeOf[uint8](), "u8", true},
		{ShapeOf[uint16](), "u16", true},
		{ShapeOf[uint32](), "u32", true},
		{ShapeOf[uint64](), "u64", false},
		{ShapeOf[int8](), "i8", true},
		{ShapeOf[int16](), "i16", true},
		{ShapeOf[int32](), "i32", true},
		{ShapeOf[int64](), "i64", false},
		{ShapeOf[float32](), "f32", true},
		{ShapeOf[float64](), "f64", false},
		{ShapeOf[celsius](), "f32", true},
		{ShapeOf[level](), "i8", true},
	}
	for _, tt := range tests {
		if tt.got.String() != tt.name {
			t.Errorf("shape %v named %q, want %q", tt.got, tt.got.String(), tt.name)
		}
		if tt.got.Radixable() != tt.radixable {
			t.Errorf("%s Radixable() = %v, want %v", tt.name, tt.got.Radixable(), tt.radixable)
		}
	}
}
