package lamport

import (
	"github.com/wippyai/sharedmod/codec"
	"github.com/wippyai/sharedmod/errors"
)

// Env is the guest program's view of the shared-module host ABI. The native
// Guest backs it with pointer-based host calls; tests back it with memory.
type Env interface {
	// ScratchRead returns the current scratch buffer contents.
	ScratchRead() ([]byte, error)

	// Send delivers blob to recipient's outbound slot. A non-zero status
	// reports that the slot was occupied; the slot keeps blob either way.
	Send(recipient uint32, blob []byte) (status uint32, err error)

	// Poll returns the raw encoded inbound accumulator.
	Poll() ([]byte, error)

	// StorageRead returns the value for key, or ok=false when absent.
	StorageRead(key []byte) (val []byte, ok bool, err error)

	// StorageWrite stores val under key.
	StorageWrite(key, val []byte) error
}

// Handle is the module's entry point: it decodes one request from the
// scratch buffer and applies it. The time slice is accepted for ABI parity
// and unused; metering is external.
func Handle(env Env, timeSlice uint32) error {
	blob, err := env.ScratchRead()
	if err != nil {
		return err
	}
	req, err := codec.DecodeRequest(blob)
	if err != nil {
		return err
	}
	_, err = Apply(env, req)
	return err
}

// Apply executes one decoded request against env. Only Poll produces
// results; they are assembled for the caller and not written back to the
// guest boundary.
func Apply(env Env, req codec.Request) ([]codec.PollResult, error) {
	switch r := req.(type) {
	case codec.Enqueue:
		return nil, enqueue(env, r.Recipient, r.Payload)
	case codec.Poll:
		return poll(env)
	case codec.FanOut:
		return nil, fanOut(env)
	}
	return nil, errors.New(errors.PhaseDispatch, errors.KindInvalidData).
		Detail("unhandled request type %T", req).
		Build()
}

// enqueue stamps payload with the next clock value and appends it to the
// pending queue, read-modify-write on both keys.
func enqueue(env Env, recipient uint32, payload []byte) error {
	at, err := nextTimestamp(env)
	if err != nil {
		return err
	}
	queue, err := loadQueue(env)
	if err != nil {
		return err
	}
	queue = append(queue, codec.TargetedMessage{
		Recipient: recipient,
		Message:   codec.TimestampedMessage{At: at, Payload: payload},
	})
	return storeQueue(env, queue)
}

func poll(env Env) ([]codec.PollResult, error) {
	raw, err := env.Poll()
	if err != nil {
		return nil, err
	}
	groups, err := codec.DecodeInbound(raw)
	if err != nil {
		return nil, err
	}

	results := make([]codec.PollResult, 0, len(groups))
	for _, g := range groups {
		msgs, err := codec.DecodeMessages(g.Blob)
		if err != nil {
			return nil, err
		}
		results = append(results, codec.PollResult{Sender: g.Sender, Messages: msgs})
	}
	return results, nil
}

// fanOut drains the queue and issues one send per recipient, grouped in the
// order recipients first appear. A send's conflict status is not an error;
// the accumulator keeps the newer blob.
func fanOut(env Env) error {
	queue, err := takeQueue(env)
	if err != nil {
		return err
	}
	if len(queue) == 0 {
		return nil
	}

	order := make([]uint32, 0, len(queue))
	grouped := make(map[uint32][]codec.TimestampedMessage)
	for _, m := range queue {
		if _, seen := grouped[m.Recipient]; !seen {
			order = append(order, m.Recipient)
		}
		grouped[m.Recipient] = append(grouped[m.Recipient], m.Message)
	}

	for _, recipient := range order {
		if _, err := env.Send(recipient, codec.EncodeMessages(grouped[recipient])); err != nil {
			return err
		}
	}
	return nil
}
