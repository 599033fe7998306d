package savestate

import (
	"bytes"
	"errors"
	"testing"
)

func TestRoundTrip(t *testing.T) {
	var buf bytes.Buffer

	w, err := NewWriter(&buf)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	w.Tag("Test::ContextSave")
	w.Field(uint32(0x12345678))
	w.Field(uint8(0x42))
	w.Bytes([]byte{1, 2, 3, 4})
	if err := w.Err(); err != nil {
		t.Fatalf("write: %v", err)
	}

	r, err := NewReader(&buf)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	if r.Legacy() {
		t.Fatal("expected non-legacy stream")
	}

	r.Tag("Test::ContextSave")
	var u32 uint32
	var u8 uint8
	r.Field(&u32)
	r.Field(&u8)
	raw := make([]byte, 4)
	r.Bytes(raw)
	if err := r.Err(); err != nil {
		t.Fatalf("read: %v", err)
	}

	if u32 != 0x12345678 || u8 != 0x42 {
		t.Errorf("got u32=%#x u8=%#x", u32, u8)
	}
	if !bytes.Equal(raw, []byte{1, 2, 3, 4}) {
		t.Errorf("got bytes %v", raw)
	}
}

func TestTagMismatchFailsAtomically(t *testing.T) {
	var buf bytes.Buffer
	w, _ := NewWriter(&buf)
	w.Tag("Wrong::Tag")
	w.Field(uint32(1))

	r, err := NewReader(&buf)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	r.Tag("Expected::Tag")
	var v uint32
	r.Field(&v)
	if !errors.Is(r.Err(), ErrTagMismatch) {
		t.Fatalf("expected ErrTagMismatch, got %v", r.Err())
	}
	if v != 0 {
		t.Errorf("field should not have been populated after tag mismatch, got %d", v)
	}
}

func TestLegacyMagicRecognized(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString(MagicLegacy)
	r, err := NewReader(&buf)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	if !r.Legacy() {
		t.Fatal("expected legacy stream to be recognized")
	}
}

func TestBadMagicRejected(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("XXXX")
	if _, err := NewReader(&buf); !errors.Is(err, ErrBadMagic) {
		t.Fatalf("expected ErrBadMagic, got %v", err)
	}
}
