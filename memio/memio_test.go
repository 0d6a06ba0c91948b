package memio

import (
	"bytes"
	stderrors "errors"
	"testing"

	"github.com/wippyai/sharedmod/errors"
)

// sliceMemory is a fixed-size linear memory whose Read returns views, like
// a real engine memory does.
type sliceMemory []byte

func (m sliceMemory) Read(offset, count uint32) ([]byte, bool) {
	if uint64(offset)+uint64(count) > uint64(len(m)) {
		return nil, false
	}
	return m[offset : offset+count], true
}

func (m sliceMemory) Write(offset uint32, data []byte) bool {
	if uint64(offset)+uint64(len(data)) > uint64(len(m)) {
		return false
	}
	copy(m[offset:], data)
	return true
}

func (m sliceMemory) Size() uint32 {
	return uint32(len(m))
}

func TestMarshaller_ReadWrite(t *testing.T) {
	mem := make(sliceMemory, 16)
	m := NewMarshaller(mem)

	if err := m.Write(4, []byte("abcd")); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	got, err := m.Read(4, 4)
	if err != nil {
		t.Fatalf("Read error: %v", err)
	}
	if !bytes.Equal(got, []byte("abcd")) {
		t.Errorf("Read = %q, want abcd", got)
	}
}

func TestMarshaller_ReadCopies(t *testing.T) {
	mem := make(sliceMemory, 8)
	copy(mem, "original")
	m := NewMarshaller(mem)

	got, err := m.Read(0, 8)
	if err != nil {
		t.Fatalf("Read error: %v", err)
	}
	mem[0] = 'X'
	if !bytes.Equal(got, []byte("original")) {
		t.Error("Read must copy, not alias guest memory")
	}
}

func TestMarshaller_OutOfBounds(t *testing.T) {
	mem := make(sliceMemory, 8)
	m := NewMarshaller(mem)
	boundsErr := &errors.Error{Phase: errors.PhaseMarshal, Kind: errors.KindOutOfBounds}

	if _, err := m.Read(6, 4); !stderrors.Is(err, boundsErr) {
		t.Errorf("Read past end = %v, want bounds error", err)
	}
	if err := m.Write(7, []byte("ab")); !stderrors.Is(err, boundsErr) {
		t.Errorf("Write past end = %v, want bounds error", err)
	}
	// Offset near uint32 max must not wrap.
	if _, err := m.Read(0xFFFFFFFF, 2); !stderrors.Is(err, boundsErr) {
		t.Errorf("Read with wrapping range = %v, want bounds error", err)
	}
}

func TestMarshaller_ZeroLength(t *testing.T) {
	mem := make(sliceMemory, 4)
	m := NewMarshaller(mem)

	got, err := m.Read(4, 0)
	if err != nil {
		t.Fatalf("zero-length read at end: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("zero-length read = %d bytes", len(got))
	}
	if err := m.Write(4, nil); err != nil {
		t.Fatalf("zero-length write at end: %v", err)
	}
}

func TestScratch_ReplaceNeverAppend(t *testing.T) {
	var s Scratch
	if s.Size() != 0 {
		t.Errorf("zero value size = %d, want 0", s.Size())
	}

	s.Set([]byte("first"))
	if s.Size() != 5 {
		t.Errorf("size = %d, want 5", s.Size())
	}

	s.Set([]byte("2nd"))
	if s.Size() != 3 {
		t.Errorf("size after replace = %d, want 3", s.Size())
	}
	if !bytes.Equal(s.Bytes(), []byte("2nd")) {
		t.Errorf("contents = %q, want 2nd", s.Bytes())
	}
}

func TestScratch_SetCopies(t *testing.T) {
	var s Scratch
	src := []byte("abc")
	s.Set(src)
	src[0] = 'z'
	if !bytes.Equal(s.Bytes(), []byte("abc")) {
		t.Error("Set must copy its input")
	}
}

func TestScratch_CopyOut(t *testing.T) {
	mem := make(sliceMemory, 8)
	m := NewMarshaller(mem)

	var s Scratch
	s.Set([]byte("data"))
	if err := s.CopyOut(m, 2); err != nil {
		t.Fatalf("CopyOut error: %v", err)
	}
	if !bytes.Equal([]byte(mem[2:6]), []byte("data")) {
		t.Errorf("guest memory = %q", mem[2:6])
	}

	if err := s.CopyOut(m, 6); err == nil {
		t.Error("expected bounds error for destination past end")
	}
}
