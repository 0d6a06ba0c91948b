package codec

import (
	"bytes"
	"testing"
)

func TestCompact_Boundaries(t *testing.T) {
	tests := []struct {
		value uint32
		size  int
	}{
		{0, 1},
		{63, 1},
		{64, 2},
		{1<<14 - 1, 2},
		{1 << 14, 4},
		{1<<30 - 1, 4},
	}

	for _, tt := range tests {
		w := NewWriter()
		w.Compact(tt.value)
		if len(w.Bytes()) != tt.size {
			t.Errorf("Compact(%d) = %d bytes, want %d", tt.value, len(w.Bytes()), tt.size)
		}

		r := NewReader(w.Bytes())
		got, err := r.Compact()
		if err != nil {
			t.Fatalf("Compact decode error for %d: %v", tt.value, err)
		}
		if got != tt.value {
			t.Errorf("Compact round-trip = %d, want %d", got, tt.value)
		}
		if err := r.Done(); err != nil {
			t.Errorf("Done error for %d: %v", tt.value, err)
		}
	}
}

func TestCompact_OutOfRangePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for value >= 2^30")
		}
	}()
	NewWriter().Compact(1 << 30)
}

func TestCompact_RejectsNonMinimal(t *testing.T) {
	// 5 encoded in two-byte mode instead of one.
	nonMinimal := []byte{5<<2 | 0b01, 0}
	if _, err := NewReader(nonMinimal).Compact(); err == nil {
		t.Error("expected non-minimal encoding to be rejected")
	}

	// 100 encoded in four-byte mode instead of two.
	nonMinimal = []byte{byte((100<<2)&0xff) | 0b10, 100 >> 6, 0, 0}
	if _, err := NewReader(nonMinimal).Compact(); err == nil {
		t.Error("expected non-minimal four-byte encoding to be rejected")
	}
}

func TestCompact_RejectsBigIntegerMode(t *testing.T) {
	if _, err := NewReader([]byte{0b11, 1, 2, 3, 4}).Compact(); err == nil {
		t.Error("expected big-integer mode to be rejected")
	}
}

func TestBlob_RoundTrip(t *testing.T) {
	w := NewWriter()
	w.Blob([]byte("hello"))
	w.Blob(nil)

	r := NewReader(w.Bytes())
	first, err := r.Blob()
	if err != nil {
		t.Fatalf("Blob error: %v", err)
	}
	if !bytes.Equal(first, []byte("hello")) {
		t.Errorf("first blob = %q", first)
	}
	second, err := r.Blob()
	if err != nil {
		t.Fatalf("Blob error: %v", err)
	}
	if len(second) != 0 {
		t.Errorf("second blob = %q, want empty", second)
	}
	if err := r.Done(); err != nil {
		t.Errorf("Done error: %v", err)
	}
}

func TestBlob_CopiesInput(t *testing.T) {
	w := NewWriter()
	w.Blob([]byte("abc"))
	raw := w.Bytes()

	r := NewReader(raw)
	blob, err := r.Blob()
	if err != nil {
		t.Fatalf("Blob error: %v", err)
	}
	raw[1] = 'z'
	if !bytes.Equal(blob, []byte("abc")) {
		t.Error("decoded blob must not alias the input buffer")
	}
}

func TestReader_Truncated(t *testing.T) {
	tests := []struct {
		name string
		buf  []byte
		read func(*Reader) error
	}{
		{"byte", nil, func(r *Reader) error { _, err := r.Byte(); return err }},
		{"u32", []byte{1, 2}, func(r *Reader) error { _, err := r.U32(); return err }},
		{"u64", []byte{1, 2, 3, 4}, func(r *Reader) error { _, err := r.U64(); return err }},
		{"blob body", []byte{4 << 2, 1}, func(r *Reader) error { _, err := r.Blob(); return err }},
		{"compact two", []byte{0b01}, func(r *Reader) error { _, err := r.Compact(); return err }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.read(NewReader(tt.buf)); err == nil {
				t.Error("expected truncation error")
			}
		})
	}
}
