package runtime

import (
	"sort"

	"github.com/wippyai/sharedmod/codec"
)

// Storage is a shared module's persistent key/value store. Keys and values
// are opaque byte blobs; there is no delete. Durable across invocations of
// the same runtime, not across processes.
type Storage struct {
	m map[string][]byte
}

// NewStorage creates an empty store
func NewStorage() *Storage {
	return &Storage{m: make(map[string][]byte)}
}

// Read returns the value for key. The result must not be mutated.
func (s *Storage) Read(key []byte) ([]byte, bool) {
	v, ok := s.m[string(key)]
	return v, ok
}

// Write stores a copy of val under key, replacing any previous value
func (s *Storage) Write(key, val []byte) {
	s.m[string(key)] = append([]byte(nil), val...)
}

// Len returns the number of stored keys
func (s *Storage) Len() int {
	return len(s.m)
}

// Accumulator maps module identifiers to single message slots, inbound and
// outbound separately. One slot holds one blob; a second outbound write to
// an occupied slot within one invocation is a conflict, reported as a
// status, and the slot keeps the newer blob.
type Accumulator struct {
	inbound  map[uint32][]byte
	outbound map[uint32][]byte
}

// NewAccumulator creates an empty accumulator
func NewAccumulator() *Accumulator {
	return &Accumulator{
		inbound:  make(map[uint32][]byte),
		outbound: make(map[uint32][]byte),
	}
}

// Deliver writes blob into the outbound slot for recipient, reporting
// whether the slot was occupied
func (a *Accumulator) Deliver(recipient uint32, blob []byte) bool {
	_, occupied := a.outbound[recipient]
	a.outbound[recipient] = append([]byte(nil), blob...)
	return occupied
}

// PutInbound writes blob into the inbound slot for sender, reporting
// whether the slot was occupied
func (a *Accumulator) PutInbound(sender uint32, blob []byte) bool {
	_, occupied := a.inbound[sender]
	a.inbound[sender] = append([]byte(nil), blob...)
	return occupied
}

// InboundGroups returns the inbound slots in ascending sender order
func (a *Accumulator) InboundGroups() []codec.InboundGroup {
	senders := make([]uint32, 0, len(a.inbound))
	for s := range a.inbound {
		senders = append(senders, s)
	}
	sort.Slice(senders, func(i, j int) bool { return senders[i] < senders[j] })

	groups := make([]codec.InboundGroup, 0, len(senders))
	for _, s := range senders {
		groups = append(groups, codec.InboundGroup{Sender: s, Blob: a.inbound[s]})
	}
	return groups
}

// Outbound returns a snapshot of the outbound slots
func (a *Accumulator) Outbound() map[uint32][]byte {
	out := make(map[uint32][]byte, len(a.outbound))
	for k, v := range a.outbound {
		out[k] = append([]byte(nil), v...)
	}
	return out
}

// TakeOutbound drains the outbound slots, returning their contents
func (a *Accumulator) TakeOutbound() map[uint32][]byte {
	out := a.outbound
	a.outbound = make(map[uint32][]byte)
	return out
}
