package gateway

import (
	"context"

	"github.com/tetratelabs/wazero/api"

	sharedmod "github.com/wippyai/sharedmod"
	"github.com/wippyai/sharedmod/codec"
	"github.com/wippyai/sharedmod/engine"
	"github.com/wippyai/sharedmod/memio"
)

// Storage is a shared module's persistent key/value store. Read/write only,
// no delete; values are durable across invocations of the same runtime.
type Storage interface {
	Read(key []byte) ([]byte, bool)
	Write(key, val []byte)
}

// Mailbox is a shared module's message accumulator.
type Mailbox interface {
	// Deliver writes blob into the outbound slot for recipient and reports
	// whether the slot was already occupied. The slot keeps the new blob
	// either way.
	Deliver(recipient uint32, blob []byte) (occupied bool)

	// InboundGroups returns the inbound slots in ascending sender order.
	InboundGroups() []codec.InboundGroup
}

// SharedEnv binds one shared-module instantiation to its runtime's state.
// The scratch buffer is call-scoped: the runtime seeds it with the request
// blob before every invocation.
type SharedEnv struct {
	Scratch *memio.Scratch
	Storage Storage
	Mailbox Mailbox
}

// Shared builds the host module for a shared module guest:
//
//	scratch_buf_size() -> u32
//	scratch_buf_read(out_ptr: u32)
//	send(recipient: u32, blob_ptr: u32, blob_len: u32) -> u32
//	poll()
//	storage_read(key_ptr: u32, key_len: u32) -> u32
//	storage_write(key_ptr: u32, key_len: u32, val_ptr: u32, val_len: u32)
//
// send returns 0 on success and 1 when the recipient's outbound slot was
// occupied; that is the only recoverable status on this boundary. A
// storage_read miss returns 1 and leaves the scratch buffer untouched.
func Shared(env *SharedEnv) *engine.HostModule {
	i32 := api.ValueTypeI32
	return &engine.HostModule{
		Name: Namespace,
		Funcs: []engine.HostFunc{
			{
				Field:   "scratch_buf_size",
				Results: []api.ValueType{i32},
				Call: func(ctx context.Context, mem sharedmod.Memory, stack []uint64) error {
					stack[0] = uint64(env.Scratch.Size())
					return nil
				},
			},
			{
				Field:  "scratch_buf_read",
				Params: []api.ValueType{i32},
				Call: func(ctx context.Context, mem sharedmod.Memory, stack []uint64) error {
					return env.Scratch.CopyOut(memio.NewMarshaller(mem), uint32(stack[0]))
				},
			},
			{
				Field:   "send",
				Params:  []api.ValueType{i32, i32, i32},
				Results: []api.ValueType{i32},
				Call: func(ctx context.Context, mem sharedmod.Memory, stack []uint64) error {
					recipient := uint32(stack[0])
					blob, err := memio.NewMarshaller(mem).Read(uint32(stack[1]), uint32(stack[2]))
					if err != nil {
						return err
					}
					if env.Mailbox.Deliver(recipient, blob) {
						stack[0] = 1
					} else {
						stack[0] = 0
					}
					return nil
				},
			},
			{
				Field: "poll",
				Call: func(ctx context.Context, mem sharedmod.Memory, stack []uint64) error {
					env.Scratch.Set(codec.EncodeInbound(env.Mailbox.InboundGroups()))
					return nil
				},
			},
			{
				Field:   "storage_read",
				Params:  []api.ValueType{i32, i32},
				Results: []api.ValueType{i32},
				Call: func(ctx context.Context, mem sharedmod.Memory, stack []uint64) error {
					key, err := memio.NewMarshaller(mem).Read(uint32(stack[0]), uint32(stack[1]))
					if err != nil {
						return err
					}
					val, ok := env.Storage.Read(key)
					if !ok {
						stack[0] = 1
						return nil
					}
					env.Scratch.Set(val)
					stack[0] = 0
					return nil
				},
			},
			{
				Field:  "storage_write",
				Params: []api.ValueType{i32, i32, i32, i32},
				Call: func(ctx context.Context, mem sharedmod.Memory, stack []uint64) error {
					m := memio.NewMarshaller(mem)
					key, err := m.Read(uint32(stack[0]), uint32(stack[1]))
					if err != nil {
						return err
					}
					val, err := m.Read(uint32(stack[2]), uint32(stack[3]))
					if err != nil {
						return err
					}
					env.Storage.Write(key, val)
					return nil
				},
			},
		},
	}
}
