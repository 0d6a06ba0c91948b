package memio

// Scratch is the single mutable byte slot owned by the active invocation
// context. Producing operations replace its contents, never append. It
// holds only the most recent producer's output.
//
// The zero value is an empty buffer.
type Scratch struct {
	buf []byte
}

// Set replaces the buffer contents with a copy of b
func (s *Scratch) Set(b []byte) {
	s.buf = make([]byte, len(b))
	copy(s.buf, b)
}

// Size returns the current buffer length. No side effect.
func (s *Scratch) Size() uint32 {
	return uint32(len(s.buf))
}

// Bytes returns the buffer contents. The result must not be mutated.
func (s *Scratch) Bytes() []byte {
	return s.buf
}

// CopyOut writes the whole buffer to guest memory at outPtr
func (s *Scratch) CopyOut(m *Marshaller, outPtr uint32) error {
	return m.Write(outPtr, s.buf)
}
