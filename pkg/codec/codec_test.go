package codec

import "testing"

func TestWriterReaderRoundtrip(t *testing.T) {
	buf := make([]byte, 32)
	w := NewWriter(buf)

	if !w.PutU8(0x12) {
		t.Fatalf("PutU8 failed")
	}
	if !w.PutU16(0xBEEF) {
		t.Fatalf("PutU16 failed")
	}
	if !w.PutU32(0xDEADBEEF) {
		t.Fatalf("PutU32 failed")
	}
	if !w.PutU64(0x0102030405060708) {
		t.Fatalf("PutU64 failed")
	}
	if !w.PutBytes([]byte("spdm")) {
		t.Fatalf("PutBytes failed")
	}

	r := NewReader(w.UsedSlice())

	if v, ok := r.ReadU8(); !ok || v != 0x12 {
		t.Fatalf("ReadU8 = %v, %v", v, ok)
	}
	if v, ok := r.ReadU16(); !ok || v != 0xBEEF {
		t.Fatalf("ReadU16 = %v, %v", v, ok)
	}
	if v, ok := r.ReadU32(); !ok || v != 0xDEADBEEF {
		t.Fatalf("ReadU32 = %v, %v", v, ok)
	}
	if v, ok := r.ReadU64(); !ok || v != 0x0102030405060708 {
		t.Fatalf("ReadU64 = %v, %v", v, ok)
	}
	if v, ok := r.ReadBytes(4); !ok || string(v) != "spdm" {
		t.Fatalf("ReadBytes = %v, %v", v, ok)
	}
	if r.Len() != 0 {
		t.Fatalf("expected Reader exhausted, Len() = %d", r.Len())
	}
}

func TestReaderOutOfBoundsNeverPanics(t *testing.T) {
	r := NewReader([]byte{0x01, 0x02})

	if v, ok := r.ReadU32(); ok {
		t.Fatalf("expected ReadU32 to fail on short buffer, got %v", v)
	}
	// cursor must not have advanced on a failed read
	if v, ok := r.ReadU8(); !ok || v != 0x01 {
		t.Fatalf("cursor advanced despite failed read: got %v, %v", v, ok)
	}
	if _, ok := r.ReadBytes(100); ok {
		t.Fatalf("expected ReadBytes to fail past end")
	}
	if _, ok := r.ReadBytes(-1); ok {
		t.Fatalf("expected negative ReadBytes to fail")
	}
}

func TestWriterOverflowLeavesBufferUntouched(t *testing.T) {
	buf := make([]byte, 2)
	w := NewWriter(buf)

	if !w.PutU8(0xAA) {
		t.Fatalf("first PutU8 should succeed")
	}
	if w.PutU32(1) {
		t.Fatalf("expected PutU32 to fail: only 1 byte remains")
	}
	if w.Used() != 1 {
		t.Fatalf("Used() = %d, want 1 (overflowing write must not partially commit)", w.Used())
	}
}

func TestPeekU8DoesNotConsume(t *testing.T) {
	r := NewReader([]byte{0x42})
	v, ok := r.PeekU8()
	if !ok || v != 0x42 {
		t.Fatalf("PeekU8 = %v, %v", v, ok)
	}
	if r.Len() != 1 {
		t.Fatalf("PeekU8 must not consume, Len() = %d", r.Len())
	}
}
