package arena

import "testing"

func TestNewValueTracksByteSize(t *testing.T) {
	a := New()
	type payload struct {
		x, y int64
	}
	before := a.LiveBytes()
	p := NewValue[payload](a)
	if p == nil {
		t.Fatal("NewValue returned nil")
	}
	if a.LiveBytes() <= before {
		t.Fatal("LiveBytes did not increase after NewValue")
	}
}

func TestMakeSliceZeroLengthNoAlloc(t *testing.T) {
	a := New()
	if s := MakeSlice[int](a, 0); s != nil {
		t.Fatalf("MakeSlice(0) = %v, want nil", s)
	}
}

func TestMakeSliceTracksByteSize(t *testing.T) {
	a := New()
	before := a.LiveBytes()
	s := MakeSlice[int64](a, 10)
	if len(s) != 10 || cap(s) != 10 {
		t.Fatalf("len/cap = %d/%d, want 10/10", len(s), cap(s))
	}
	if a.LiveBytes() <= before {
		t.Fatal("LiveBytes did not increase after MakeSlice")
	}
}

func TestAllocBytesCopiesIndependently(t *testing.T) {
	a := New()
	src := []byte("hello")
	dst := AllocBytes(a, src)
	if string(dst) != "hello" {
		t.Fatalf("AllocBytes = %q, want hello", dst)
	}
	src[0] = 'X'
	if dst[0] == 'X' {
		t.Fatal("AllocBytes aliased the source buffer instead of copying")
	}
}

func TestFreeMarksArenaAndResetsBytes(t *testing.T) {
	a := New()
	MakeSlice[int64](a, 4)
	if a.Freed() {
		t.Fatal("fresh arena reports Freed() == true")
	}
	a.Free()
	if !a.Freed() {
		t.Fatal("Free() did not mark the arena as freed")
	}
	if a.LiveBytes() != 0 {
		t.Fatalf("LiveBytes after Free = %d, want 0", a.LiveBytes())
	}
}
