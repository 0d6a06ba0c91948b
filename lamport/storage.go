package lamport

import (
	"github.com/wippyai/sharedmod/codec"
)

// Persistent storage keys. Both hold opaque binary values: the clock as a
// little-endian u64, the queue as an encoded targeted-message vector.
const (
	KeyTimestamp = ":current_timestamp"
	KeyQueue     = ":stack"
)

func readTimestamp(env Env) (uint64, error) {
	val, ok, err := env.StorageRead([]byte(KeyTimestamp))
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	return decodeTimestamp(val)
}

func decodeTimestamp(val []byte) (uint64, error) {
	r := codec.NewReader(val)
	at, err := r.U64()
	if err != nil {
		return 0, err
	}
	if err := r.Done(); err != nil {
		return 0, err
	}
	return at, nil
}

// nextTimestamp increments the persisted clock and returns the new value
func nextTimestamp(env Env) (uint64, error) {
	at, err := readTimestamp(env)
	if err != nil {
		return 0, err
	}
	at++

	w := codec.NewWriter()
	w.U64(at)
	if err := env.StorageWrite([]byte(KeyTimestamp), w.Bytes()); err != nil {
		return 0, err
	}
	return at, nil
}

// loadQueue reads the pending queue, empty when the key was never written
func loadQueue(env Env) ([]codec.TargetedMessage, error) {
	val, ok, err := env.StorageRead([]byte(KeyQueue))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return codec.DecodeQueue(val)
}

func storeQueue(env Env, queue []codec.TargetedMessage) error {
	return env.StorageWrite([]byte(KeyQueue), codec.EncodeQueue(queue))
}

// takeQueue drains the pending queue: read, then persist it empty. Storage
// has no delete, so drained means an empty encoded vector.
func takeQueue(env Env) ([]codec.TargetedMessage, error) {
	queue, err := loadQueue(env)
	if err != nil {
		return nil, err
	}
	if len(queue) == 0 {
		return nil, nil
	}
	if err := storeQueue(env, nil); err != nil {
		return nil, err
	}
	return queue, nil
}
