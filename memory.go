package sharedmod

// Memory represents the bounded linear memory of a guest instance.
//
// Read may return a view aliasing the underlying memory; callers that hand
// bytes to anything outside the current host call must copy first. The
// memio package is the only sanctioned path for that.
type Memory interface {
	// Read returns count bytes at offset, or false if the range exceeds
	// the memory size.
	Read(offset, count uint32) ([]byte, bool)

	// Write copies data into memory at offset, or returns false if the
	// range exceeds the memory size.
	Write(offset uint32, data []byte) bool

	// Size returns the current memory size in bytes.
	Size() uint32
}
