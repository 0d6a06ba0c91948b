package lamport

import (
	"github.com/wippyai/sharedmod/engine"
	"github.com/wippyai/sharedmod/errors"
	"github.com/wippyai/sharedmod/runtime"
)

// Guest runs the protocol as a native guest program. It links the full
// shared-module ABI and reaches the host only through pointers into its own
// linear memory, including the size-then-copy scratch handshake.
type Guest struct{}

func (Guest) Imports() []engine.ImportDecl {
	return []engine.ImportDecl{
		{Field: "scratch_buf_size", Params: 0, Results: 1},
		{Field: "scratch_buf_read", Params: 1, Results: 0},
		{Field: "send", Params: 3, Results: 1},
		{Field: "poll", Params: 0, Results: 0},
		{Field: "storage_read", Params: 2, Results: 1},
		{Field: "storage_write", Params: 4, Results: 0},
	}
}

func (Guest) Exports() []string {
	return []string{runtime.EntryPoint}
}

func (Guest) Invoke(env *engine.GuestEnv, export string, args ...uint64) error {
	if export != runtime.EntryPoint {
		return errors.MissingExport(export)
	}
	var timeSlice uint32
	if len(args) > 0 {
		timeSlice = uint32(args[0])
	}
	return Handle(&abiEnv{env: env}, timeSlice)
}

// abiEnv adapts the guest execution context to the Env contract.
type abiEnv struct {
	env *engine.GuestEnv
}

// scratchOut performs the variable-length result handshake: query the size,
// allocate, copy out.
func (a *abiEnv) scratchOut() ([]byte, error) {
	size, err := a.env.CallHost("scratch_buf_size")
	if err != nil {
		return nil, err
	}
	if size == 0 {
		return nil, nil
	}
	ptr, err := a.env.Alloc(uint32(size))
	if err != nil {
		return nil, err
	}
	if _, err := a.env.CallHost("scratch_buf_read", uint64(ptr)); err != nil {
		return nil, err
	}
	return a.env.Read(ptr, uint32(size))
}

// place copies data into guest memory and returns its address and length
func (a *abiEnv) place(data []byte) (uint32, uint32, error) {
	ptr, err := a.env.Alloc(uint32(len(data)))
	if err != nil {
		return 0, 0, err
	}
	if err := a.env.Write(ptr, data); err != nil {
		return 0, 0, err
	}
	return ptr, uint32(len(data)), nil
}

func (a *abiEnv) ScratchRead() ([]byte, error) {
	return a.scratchOut()
}

func (a *abiEnv) Send(recipient uint32, blob []byte) (uint32, error) {
	ptr, n, err := a.place(blob)
	if err != nil {
		return 0, err
	}
	status, err := a.env.CallHost("send", uint64(recipient), uint64(ptr), uint64(n))
	return uint32(status), err
}

func (a *abiEnv) Poll() ([]byte, error) {
	if _, err := a.env.CallHost("poll"); err != nil {
		return nil, err
	}
	return a.scratchOut()
}

func (a *abiEnv) StorageRead(key []byte) ([]byte, bool, error) {
	ptr, n, err := a.place(key)
	if err != nil {
		return nil, false, err
	}
	status, err := a.env.CallHost("storage_read", uint64(ptr), uint64(n))
	if err != nil {
		return nil, false, err
	}
	if status != 0 {
		return nil, false, nil
	}
	val, err := a.scratchOut()
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

func (a *abiEnv) StorageWrite(key, val []byte) error {
	kptr, klen, err := a.place(key)
	if err != nil {
		return err
	}
	vptr, vlen, err := a.place(val)
	if err != nil {
		return err
	}
	_, err = a.env.CallHost("storage_write", uint64(kptr), uint64(klen), uint64(vptr), uint64(vlen))
	return err
}
