package memio

import (
	sharedmod "github.com/wippyai/sharedmod"
	"github.com/wippyai/sharedmod/errors"
)

// Marshaller bridges host byte buffers and one guest's linear memory with
// bounds enforcement. All cross-boundary byte transfer goes through here.
type Marshaller struct {
	mem sharedmod.Memory
}

// NewMarshaller creates a Marshaller over the given guest memory
func NewMarshaller(mem sharedmod.Memory) *Marshaller {
	return &Marshaller{mem: mem}
}

// Read copies count bytes at offset out of guest memory.
// The underlying memory may return a view; Read always copies, so the
// result stays valid after the guest resumes.
func (m *Marshaller) Read(offset, count uint32) ([]byte, error) {
	view, ok := m.mem.Read(offset, count)
	if !ok {
		return nil, errors.OutOfBounds(errors.PhaseMarshal, offset, count, m.mem.Size())
	}
	out := make([]byte, count)
	copy(out, view)
	return out, nil
}

// Write copies data into guest memory at offset
func (m *Marshaller) Write(offset uint32, data []byte) error {
	if !m.mem.Write(offset, data) {
		return errors.OutOfBounds(errors.PhaseMarshal, offset, uint32(len(data)), m.mem.Size())
	}
	return nil
}
