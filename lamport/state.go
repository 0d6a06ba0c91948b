package lamport

import (
	"github.com/wippyai/sharedmod/codec"
)

// StorageReader is the read side of a runtime's persistent store.
type StorageReader interface {
	Read(key []byte) ([]byte, bool)
}

// Snapshot is a host-side view of the module's persisted protocol state.
type Snapshot struct {
	Timestamp uint64
	Queue     []codec.TargetedMessage
}

// State decodes a runtime's storage into a protocol snapshot, for
// inspection by the simulator and tests. Absent keys read as the initial
// state: clock zero, empty queue.
func State(s StorageReader) (Snapshot, error) {
	var snap Snapshot

	if val, ok := s.Read([]byte(KeyTimestamp)); ok {
		at, err := decodeTimestamp(val)
		if err != nil {
			return Snapshot{}, err
		}
		snap.Timestamp = at
	}

	if val, ok := s.Read([]byte(KeyQueue)); ok {
		queue, err := codec.DecodeQueue(val)
		if err != nil {
			return Snapshot{}, err
		}
		snap.Queue = queue
	}
	return snap, nil
}
