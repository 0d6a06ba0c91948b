package codec

import (
	"github.com/wippyai/sharedmod/errors"
)

// Request tag bytes.
const (
	tagEnqueue byte = 0
	tagPoll    byte = 1
	tagFanOut  byte = 2
)

// Request is a tagged shared-module request decoded from the scratch buffer
// at invocation entry.
type Request interface {
	isRequest()
	encode(w *Writer)
}

// Enqueue asks the module to stamp and queue a message for a recipient.
// The recipient is not validated for existence at enqueue time.
type Enqueue struct {
	Recipient uint32
	Payload   []byte
}

// Poll asks the module to assemble all inbound doppelganger messages.
type Poll struct{}

// FanOut asks the module to drain the pending queue and send one grouped
// blob per recipient.
type FanOut struct{}

func (Enqueue) isRequest() {}
func (Poll) isRequest()    {}
func (FanOut) isRequest()  {}

func (e Enqueue) encode(w *Writer) {
	w.Byte(tagEnqueue)
	w.U32(e.Recipient)
	w.Blob(e.Payload)
}

func (Poll) encode(w *Writer) {
	w.Byte(tagPoll)
}

func (FanOut) encode(w *Writer) {
	w.Byte(tagFanOut)
}

// EncodeRequest encodes a request for transport through the scratch buffer
func EncodeRequest(req Request) []byte {
	w := NewWriter()
	req.encode(w)
	return w.Bytes()
}

// DecodeRequest decodes a request, rejecting unknown tags and trailing bytes
func DecodeRequest(blob []byte) (Request, error) {
	r := NewReader(blob)
	tag, err := r.Byte()
	if err != nil {
		return nil, errors.DecodeFailed("request", err)
	}

	var req Request
	switch tag {
	case tagEnqueue:
		recipient, err := r.U32()
		if err != nil {
			return nil, errors.DecodeFailed("request", err)
		}
		payload, err := r.Blob()
		if err != nil {
			return nil, errors.DecodeFailed("request", err)
		}
		req = Enqueue{Recipient: recipient, Payload: payload}
	case tagPoll:
		req = Poll{}
	case tagFanOut:
		req = FanOut{}
	default:
		return nil, errors.New(errors.PhaseDecode, errors.KindInvalidData).
			Detail("unknown request tag %d", tag).
			Build()
	}

	if err := r.Done(); err != nil {
		return nil, errors.DecodeFailed("request", err)
	}
	return req, nil
}

// TimestampedMessage is a payload stamped with the sender's logical clock.
type TimestampedMessage struct {
	At      uint64
	Payload []byte
}

func (m TimestampedMessage) encode(w *Writer) {
	w.U64(m.At)
	w.Blob(m.Payload)
}

func decodeTimestampedMessage(r *Reader) (TimestampedMessage, error) {
	at, err := r.U64()
	if err != nil {
		return TimestampedMessage{}, err
	}
	payload, err := r.Blob()
	if err != nil {
		return TimestampedMessage{}, err
	}
	return TimestampedMessage{At: at, Payload: payload}, nil
}

// EncodeMessages encodes an ordered vector of timestamped messages.
// This is the blob a doppelganger receives for one fan-out group.
func EncodeMessages(msgs []TimestampedMessage) []byte {
	w := NewWriter()
	w.Compact(uint32(len(msgs)))
	for _, m := range msgs {
		m.encode(w)
	}
	return w.Bytes()
}

// DecodeMessages decodes a vector of timestamped messages
func DecodeMessages(blob []byte) ([]TimestampedMessage, error) {
	r := NewReader(blob)
	n, err := r.Compact()
	if err != nil {
		return nil, errors.DecodeFailed("messages", err)
	}
	msgs := make([]TimestampedMessage, 0, n)
	for i := uint32(0); i < n; i++ {
		m, err := decodeTimestampedMessage(r)
		if err != nil {
			return nil, errors.DecodeFailed("messages", err)
		}
		msgs = append(msgs, m)
	}
	if err := r.Done(); err != nil {
		return nil, errors.DecodeFailed("messages", err)
	}
	return msgs, nil
}

// TargetedMessage is a stamped message addressed to a recipient module,
// created on Enqueue and consumed on FanOut.
type TargetedMessage struct {
	Recipient uint32
	Message   TimestampedMessage
}

func (m TargetedMessage) encode(w *Writer) {
	w.U32(m.Recipient)
	m.Message.encode(w)
}

// EncodeQueue encodes the pending queue for persistent storage
func EncodeQueue(queue []TargetedMessage) []byte {
	w := NewWriter()
	w.Compact(uint32(len(queue)))
	for _, m := range queue {
		m.encode(w)
	}
	return w.Bytes()
}

// DecodeQueue decodes the pending queue from persistent storage
func DecodeQueue(blob []byte) ([]TargetedMessage, error) {
	r := NewReader(blob)
	n, err := r.Compact()
	if err != nil {
		return nil, errors.DecodeFailed("queue", err)
	}
	queue := make([]TargetedMessage, 0, n)
	for i := uint32(0); i < n; i++ {
		recipient, err := r.U32()
		if err != nil {
			return nil, errors.DecodeFailed("queue", err)
		}
		msg, err := decodeTimestampedMessage(r)
		if err != nil {
			return nil, errors.DecodeFailed("queue", err)
		}
		queue = append(queue, TargetedMessage{Recipient: recipient, Message: msg})
	}
	if err := r.Done(); err != nil {
		return nil, errors.DecodeFailed("queue", err)
	}
	return queue, nil
}

// InboundGroup is one inbound accumulator slot: the raw grouped blob one
// doppelganger sent over the channel.
type InboundGroup struct {
	Sender uint32
	Blob   []byte
}

// EncodeInbound encodes the inbound accumulator as an ordered vector of
// (sender, blob) pairs. Callers must pass groups in ascending sender order;
// map iteration order must never leak into the encoding.
func EncodeInbound(groups []InboundGroup) []byte {
	w := NewWriter()
	w.Compact(uint32(len(groups)))
	for _, g := range groups {
		w.U32(g.Sender)
		w.Blob(g.Blob)
	}
	return w.Bytes()
}

// DecodeInbound decodes the poll blob back into (sender, blob) pairs
func DecodeInbound(blob []byte) ([]InboundGroup, error) {
	r := NewReader(blob)
	n, err := r.Compact()
	if err != nil {
		return nil, errors.DecodeFailed("inbound", err)
	}
	groups := make([]InboundGroup, 0, n)
	for i := uint32(0); i < n; i++ {
		sender, err := r.U32()
		if err != nil {
			return nil, errors.DecodeFailed("inbound", err)
		}
		b, err := r.Blob()
		if err != nil {
			return nil, errors.DecodeFailed("inbound", err)
		}
		groups = append(groups, InboundGroup{Sender: sender, Blob: b})
	}
	if err := r.Done(); err != nil {
		return nil, errors.DecodeFailed("inbound", err)
	}
	return groups, nil
}

// PollResult is the assembled inbound state for one sender: its grouped
// blob decoded into individual timestamped messages.
type PollResult struct {
	Sender   uint32
	Messages []TimestampedMessage
}
