// Package savestate implements the self-tagged binary context stream shared
// by every serializable component of the emulator core: a magic version
// string followed by a sequence of segments, each prefixed by the ASCII tag
// of the component that wrote it.
package savestate

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// MagicCurrent is the 4-byte magic written at the start of every stream
// produced by this package.
const MagicCurrent = "LSS3"

// MagicLegacy is recognized on load for streams written by the prior
// on-disk format. Streams are never written with it.
const MagicLegacy = "LSS2"

// ErrTagMismatch is returned when a segment's tag does not match the tag
// expected by the reader at the current stream position.
var ErrTagMismatch = errors.New("savestate: tag mismatch")

// ErrBadMagic is returned when the stream does not begin with a recognized
// magic value.
var ErrBadMagic = errors.New("savestate: unrecognized magic")

// Writer appends tagged segments to an underlying io.Writer.
type Writer struct {
	w   io.Writer
	err error
}

// NewWriter creates a Writer and immediately writes the current magic.
func NewWriter(w io.Writer) (*Writer, error) {
	sw := &Writer{w: w}
	sw.err = binary.Write(w, binary.LittleEndian, []byte(MagicCurrent))
	if sw.err != nil {
		return nil, fmt.Errorf("savestate: write magic: %w", sw.err)
	}
	return sw, nil
}

// Tag writes a segment's ASCII tag string verbatim, with no length prefix;
// the reader must request the identical tag to consume it.
func (w *Writer) Tag(tag string) {
	if w.err != nil {
		return
	}
	w.err = binary.Write(w.w, binary.LittleEndian, []byte(tag))
}

// Field writes a fixed-width little-endian value. v must be a fixed-size
// type accepted by encoding/binary (uint8, uint16, uint32, int32, bool, or
// a struct/array composed of those).
func (w *Writer) Field(v any) {
	if w.err != nil {
		return
	}
	w.err = binary.Write(w.w, binary.LittleEndian, v)
}

// Bytes writes a raw byte slice with no length prefix.
func (w *Writer) Bytes(b []byte) {
	if w.err != nil {
		return
	}
	_, w.err = w.w.Write(b)
}

// Err returns the first error encountered by any Tag/Field/Bytes call.
func (w *Writer) Err() error {
	return w.err
}

// Reader consumes tagged segments from an underlying io.Reader.
type Reader struct {
	r      io.Reader
	err    error
	legacy bool
}

// NewReader reads and validates the stream magic.
func NewReader(r io.Reader) (*Reader, error) {
	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, fmt.Errorf("savestate: read magic: %w", err)
	}
	sr := &Reader{r: r}
	switch string(magic[:]) {
	case MagicCurrent:
	case MagicLegacy:
		sr.legacy = true
	default:
		return nil, ErrBadMagic
	}
	return sr, nil
}

// Legacy reports whether the stream was opened with the legacy LSS2 magic.
func (r *Reader) Legacy() bool {
	return r.legacy
}

// Tag consumes exactly len(tag) bytes and compares them against tag. On
// mismatch ErrTagMismatch is recorded and all subsequent reads are no-ops,
// so the caller can check Err once after a whole segment sequence.
func (r *Reader) Tag(tag string) {
	if r.err != nil {
		return
	}
	buf := make([]byte, len(tag))
	if _, err := io.ReadFull(r.r, buf); err != nil {
		r.err = fmt.Errorf("savestate: read tag %q: %w", tag, err)
		return
	}
	if string(buf) != tag {
		r.err = fmt.Errorf("%w: expected %q, got %q", ErrTagMismatch, tag, buf)
	}
}

// Field reads a fixed-width little-endian value into v, a pointer to a
// fixed-size type accepted by encoding/binary.
func (r *Reader) Field(v any) {
	if r.err != nil {
		return
	}
	r.err = binary.Read(r.r, binary.LittleEndian, v)
}

// Bytes reads exactly len(b) bytes into b.
func (r *Reader) Bytes(b []byte) {
	if r.err != nil {
		return
	}
	_, r.err = io.ReadFull(r.r, b)
}

// Err returns the first error encountered by any Tag/Field/Bytes call.
func (r *Reader) Err() error {
	return r.err
}
