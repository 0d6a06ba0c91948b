package codec

import (
	"bytes"
	"testing"
)

func TestRequest_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		req  Request
	}{
		{"enqueue", Enqueue{Recipient: 1, Payload: []byte("foo")}},
		{"enqueue empty payload", Enqueue{Recipient: 0, Payload: nil}},
		{"poll", Poll{}},
		{"fanout", FanOut{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blob := EncodeRequest(tt.req)
			got, err := DecodeRequest(blob)
			if err != nil {
				t.Fatalf("DecodeRequest error: %v", err)
			}
			switch want := tt.req.(type) {
			case Enqueue:
				e, ok := got.(Enqueue)
				if !ok {
					t.Fatalf("decoded %T, want Enqueue", got)
				}
				if e.Recipient != want.Recipient || !bytes.Equal(e.Payload, want.Payload) {
					t.Errorf("decoded %+v, want %+v", e, want)
				}
			case Poll:
				if _, ok := got.(Poll); !ok {
					t.Fatalf("decoded %T, want Poll", got)
				}
			case FanOut:
				if _, ok := got.(FanOut); !ok {
					t.Fatalf("decoded %T, want FanOut", got)
				}
			}
		})
	}
}

func TestDecodeRequest_UnknownTag(t *testing.T) {
	if _, err := DecodeRequest([]byte{9}); err == nil {
		t.Error("expected error for unknown tag")
	}
}

func TestDecodeRequest_TrailingBytes(t *testing.T) {
	blob := append(EncodeRequest(Poll{}), 0xFF)
	if _, err := DecodeRequest(blob); err == nil {
		t.Error("expected error for trailing bytes")
	}
}

func TestDecodeRequest_Empty(t *testing.T) {
	if _, err := DecodeRequest(nil); err == nil {
		t.Error("expected error for empty blob")
	}
}

func TestEnqueue_WireLayout(t *testing.T) {
	blob := EncodeRequest(Enqueue{Recipient: 1, Payload: []byte("foo")})
	// tag, recipient u32 LE, compact len 3, payload
	want := []byte{0, 1, 0, 0, 0, 3 << 2, 'f', 'o', 'o'}
	if !bytes.Equal(blob, want) {
		t.Errorf("layout = %x, want %x", blob, want)
	}
}

func TestMessages_RoundTrip(t *testing.T) {
	msgs := []TimestampedMessage{
		{At: 1, Payload: []byte("foo")},
		{At: 2, Payload: []byte("")},
		{At: 1 << 40, Payload: []byte("z")},
	}
	decoded, err := DecodeMessages(EncodeMessages(msgs))
	if err != nil {
		t.Fatalf("DecodeMessages error: %v", err)
	}
	if len(decoded) != len(msgs) {
		t.Fatalf("decoded %d messages, want %d", len(decoded), len(msgs))
	}
	for i := range msgs {
		if decoded[i].At != msgs[i].At || !bytes.Equal(decoded[i].Payload, msgs[i].Payload) {
			t.Errorf("message %d = %+v, want %+v", i, decoded[i], msgs[i])
		}
	}
}

func TestQueue_RoundTrip_PreservesOrder(t *testing.T) {
	queue := []TargetedMessage{
		{Recipient: 2, Message: TimestampedMessage{At: 1, Payload: []byte("x")}},
		{Recipient: 1, Message: TimestampedMessage{At: 2, Payload: []byte("y")}},
		{Recipient: 2, Message: TimestampedMessage{At: 3, Payload: []byte("z")}},
	}
	decoded, err := DecodeQueue(EncodeQueue(queue))
	if err != nil {
		t.Fatalf("DecodeQueue error: %v", err)
	}
	if len(decoded) != 3 {
		t.Fatalf("decoded %d entries, want 3", len(decoded))
	}
	for i := range queue {
		if decoded[i].Recipient != queue[i].Recipient ||
			decoded[i].Message.At != queue[i].Message.At ||
			!bytes.Equal(decoded[i].Message.Payload, queue[i].Message.Payload) {
			t.Errorf("entry %d = %+v, want %+v", i, decoded[i], queue[i])
		}
	}
}

func TestQueue_EmptyEncodesToOneByte(t *testing.T) {
	blob := EncodeQueue(nil)
	if !bytes.Equal(blob, []byte{0}) {
		t.Errorf("empty queue = %x, want 00", blob)
	}
	decoded, err := DecodeQueue(blob)
	if err != nil {
		t.Fatalf("DecodeQueue error: %v", err)
	}
	if len(decoded) != 0 {
		t.Errorf("decoded %d entries, want 0", len(decoded))
	}
}

func TestInbound_RoundTrip(t *testing.T) {
	groups := []InboundGroup{
		{Sender: 0, Blob: EncodeMessages([]TimestampedMessage{{At: 0, Payload: []byte("bar")}})},
		{Sender: 3, Blob: []byte{1, 2, 3}},
	}
	decoded, err := DecodeInbound(EncodeInbound(groups))
	if err != nil {
		t.Fatalf("DecodeInbound error: %v", err)
	}
	if len(decoded) != 2 {
		t.Fatalf("decoded %d groups, want 2", len(decoded))
	}
	for i := range groups {
		if decoded[i].Sender != groups[i].Sender || !bytes.Equal(decoded[i].Blob, groups[i].Blob) {
			t.Errorf("group %d = %+v, want %+v", i, decoded[i], groups[i])
		}
	}
}
