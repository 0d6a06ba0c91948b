package codec

import (
	"encoding/binary"

	"github.com/wippyai/sharedmod/errors"
)

// Compact length prefix modes, stored in the two low bits.
const (
	compactModeSingle = 0b00 // value <= 63, one byte
	compactModeTwo    = 0b01 // value <= 2^14-1, two bytes
	compactModeFour   = 0b10 // value <= 2^30-1, four bytes

	maxSingle = 1<<6 - 1
	maxTwo    = 1<<14 - 1
	maxFour   = 1<<30 - 1
)

// Writer accumulates an encoded value.
// The zero value is ready for use.
type Writer struct {
	buf []byte
}

// NewWriter creates an empty Writer
func NewWriter() *Writer {
	return &Writer{}
}

// Bytes returns the encoded output
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Byte appends a single raw byte
func (w *Writer) Byte(b byte) {
	w.buf = append(w.buf, b)
}

// U32 appends a fixed-width little-endian u32
func (w *Writer) U32(v uint32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, v)
}

// U64 appends a fixed-width little-endian u64
func (w *Writer) U64(v uint64) {
	w.buf = binary.LittleEndian.AppendUint64(w.buf, v)
}

// Compact appends a compact unsigned integer.
// Values above 2^30-1 do not occur on this boundary and panic.
func (w *Writer) Compact(v uint32) {
	switch {
	case v <= maxSingle:
		w.buf = append(w.buf, byte(v)<<2)
	case v <= maxTwo:
		w.buf = binary.LittleEndian.AppendUint16(w.buf, uint16(v)<<2|compactModeTwo)
	case v <= maxFour:
		w.buf = binary.LittleEndian.AppendUint32(w.buf, v<<2|compactModeFour)
	default:
		panic("codec: compact value out of range")
	}
}

// Blob appends a length-prefixed byte vector
func (w *Writer) Blob(b []byte) {
	w.Compact(uint32(len(b)))
	w.buf = append(w.buf, b...)
}

// Reader consumes an encoded value.
type Reader struct {
	buf []byte
	off int
}

// NewReader creates a Reader over buf. The Reader does not copy buf.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Remaining returns the number of unread bytes
func (r *Reader) Remaining() int {
	return len(r.buf) - r.off
}

// Done fails unless the input is fully consumed
func (r *Reader) Done() error {
	if n := r.Remaining(); n != 0 {
		return errors.New(errors.PhaseDecode, errors.KindInvalidData).
			Detail("%d trailing bytes after value", n).
			Build()
	}
	return nil
}

func (r *Reader) take(n int) ([]byte, error) {
	if r.Remaining() < n {
		return nil, errTruncated()
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b, nil
}

// Byte reads a single raw byte
func (r *Reader) Byte() (byte, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// U32 reads a fixed-width little-endian u32
func (r *Reader) U32() (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// U64 reads a fixed-width little-endian u64
func (r *Reader) U64() (uint64, error) {
	b, err := r.take(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// Compact reads a compact unsigned integer, rejecting non-minimal encodings
func (r *Reader) Compact() (uint32, error) {
	first, err := r.Byte()
	if err != nil {
		return 0, err
	}
	switch first & 0b11 {
	case compactModeSingle:
		return uint32(first) >> 2, nil
	case compactModeTwo:
		second, err := r.Byte()
		if err != nil {
			return 0, err
		}
		v := (uint32(first) | uint32(second)<<8) >> 2
		if v <= maxSingle {
			return 0, errNonMinimal(v)
		}
		return v, nil
	case compactModeFour:
		rest, err := r.take(3)
		if err != nil {
			return 0, err
		}
		v := (uint32(first) | uint32(rest[0])<<8 | uint32(rest[1])<<16 | uint32(rest[2])<<24) >> 2
		if v <= maxTwo {
			return 0, errNonMinimal(v)
		}
		return v, nil
	default:
		// Big-integer mode. Blobs that large never cross this boundary.
		return 0, errors.New(errors.PhaseDecode, errors.KindInvalidData).
			Detail("compact big-integer mode not supported").
			Build()
	}
}

// Blob reads a length-prefixed byte vector as a fresh copy
func (r *Reader) Blob() ([]byte, error) {
	n, err := r.Compact()
	if err != nil {
		return nil, err
	}
	b, err := r.take(int(n))
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, b)
	return out, nil
}

func errTruncated() error {
	return errors.New(errors.PhaseDecode, errors.KindInvalidData).
		Detail("unexpected end of input").
		Build()
}

func errNonMinimal(v uint32) error {
	return errors.New(errors.PhaseDecode, errors.KindInvalidData).
		Detail("non-minimal compact encoding of %d", v).
		Build()
}
