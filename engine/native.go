package engine

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	sharedmod "github.com/wippyai/sharedmod"
	"github.com/wippyai/sharedmod/errors"
)

// DefaultMemorySize is the linear memory given to a native guest, one
// wasm page.
const DefaultMemorySize = 64 * 1024

// Reserve the low bytes so 0 never becomes a valid guest pointer.
const allocBase = 16

// ImportDecl declares one host function a guest program links against:
// field name plus parameter and result counts. All values on this ABI are
// 32-bit integers, so counts fully describe a signature.
type ImportDecl struct {
	Field   string
	Params  int
	Results int
}

// GuestProgram is a guest written in Go, run by the NativeEngine against
// the same ABI a WebAssembly guest would use: its only way to reach the
// host is CallHost with pointers into its own linear memory.
type GuestProgram interface {
	// Imports lists the host functions the program links against.
	Imports() []ImportDecl

	// Exports lists the entry points the program provides.
	Exports() []string

	// Invoke runs an exported entry point.
	Invoke(env *GuestEnv, export string, args ...uint64) error
}

// NativeEngine runs Go guest programs.
type NativeEngine struct {
	memorySize uint32
}

// NewNativeEngine creates a native engine with default memory size
func NewNativeEngine() *NativeEngine {
	return &NativeEngine{memorySize: DefaultMemorySize}
}

// Module wraps a guest program as a loadable Module
func (e *NativeEngine) Module(p GuestProgram) Module {
	return &nativeModule{program: p, memorySize: e.memorySize}
}

type nativeModule struct {
	program    GuestProgram
	memorySize uint32
}

func (m *nativeModule) Instantiate(ctx context.Context, host *HostModule) (Instance, error) {
	resolved := make(map[string]*HostFunc)
	for _, decl := range m.program.Imports() {
		f := host.Lookup(decl.Field)
		if f == nil {
			return nil, errors.MissingImport(host.Name, decl.Field)
		}
		if len(f.Params) != decl.Params || len(f.Results) != decl.Results {
			return nil, errors.SignatureMismatch(host.Name, decl.Field,
				fmt.Sprintf("requested %d params %d results, host exports %d params %d results",
					decl.Params, decl.Results, len(f.Params), len(f.Results)))
		}
		resolved[decl.Field] = f
	}

	exports := make(map[string]bool)
	for _, name := range m.program.Exports() {
		exports[name] = true
	}

	Logger().Debug("native guest instantiated",
		zap.String("namespace", host.Name),
		zap.Int("imports", len(resolved)))

	return &nativeInstance{
		program: m.program,
		exports: exports,
		env: &GuestEnv{
			mem:  make(byteMemory, m.memorySize),
			brk:  allocBase,
			host: resolved,
		},
	}, nil
}

type nativeInstance struct {
	program GuestProgram
	exports map[string]bool
	env     *GuestEnv
}

func (i *nativeInstance) Memory() sharedmod.Memory {
	return i.env.mem
}

func (i *nativeInstance) Invoke(ctx context.Context, export string, args ...uint64) error {
	if !i.exports[export] {
		return errors.MissingExport(export)
	}

	// Guest allocations are call-scoped; each entry starts fresh.
	i.env.brk = allocBase
	i.env.ctx = ctx
	defer func() { i.env.ctx = nil }()

	return i.program.Invoke(i.env, export, args...)
}

func (i *nativeInstance) Close(ctx context.Context) error {
	return nil
}

// GuestEnv is a native guest's execution context: its linear memory, a bump
// allocator over it, and the resolved host imports.
type GuestEnv struct {
	mem  byteMemory
	brk  uint32
	host map[string]*HostFunc
	ctx  context.Context
}

// Alloc reserves n bytes of guest memory and returns their address.
// Allocations live until the current entry point returns.
func (e *GuestEnv) Alloc(n uint32) (uint32, error) {
	if uint64(e.brk)+uint64(n) > uint64(len(e.mem)) {
		return 0, errors.New(errors.PhaseInvoke, errors.KindInvalidInput).
			Detail("guest memory exhausted: %d bytes requested, %d free", n, uint32(len(e.mem))-e.brk).
			Build()
	}
	ptr := e.brk
	e.brk += n
	return ptr, nil
}

// Read copies n bytes of the program's own memory at ptr
func (e *GuestEnv) Read(ptr, n uint32) ([]byte, error) {
	view, ok := e.mem.Read(ptr, n)
	if !ok {
		return nil, errors.OutOfBounds(errors.PhaseInvoke, ptr, n, e.mem.Size())
	}
	out := make([]byte, n)
	copy(out, view)
	return out, nil
}

// Write copies data into the program's own memory at ptr
func (e *GuestEnv) Write(ptr uint32, data []byte) error {
	if !e.mem.Write(ptr, data) {
		return errors.OutOfBounds(errors.PhaseInvoke, ptr, uint32(len(data)), e.mem.Size())
	}
	return nil
}

// CallHost invokes a resolved host import. Returns the first result, or 0
// for a void function. A host error aborts the guest call and propagates.
func (e *GuestEnv) CallHost(field string, args ...uint64) (uint64, error) {
	f, ok := e.host[field]
	if !ok {
		// Imports are resolved at instantiation; reaching here means the
		// program called something it never declared.
		return 0, errors.MissingImport("env", field)
	}

	n := len(args)
	if len(f.Results) > n {
		n = len(f.Results)
	}
	stack := make([]uint64, n)
	copy(stack, args)

	if err := f.Call(e.ctx, e.mem, stack); err != nil {
		return 0, errors.Trap(field, err)
	}
	if len(f.Results) > 0 {
		return stack[0], nil
	}
	return 0, nil
}

// byteMemory is a fixed-size guest linear memory.
type byteMemory []byte

func (m byteMemory) Read(offset, count uint32) ([]byte, bool) {
	if uint64(offset)+uint64(count) > uint64(len(m)) {
		return nil, false
	}
	return m[offset : offset+count], true
}

func (m byteMemory) Write(offset uint32, data []byte) bool {
	if uint64(offset)+uint64(len(data)) > uint64(len(m)) {
		return false
	}
	copy(m[offset:], data)
	return true
}

func (m byteMemory) Size() uint32 {
	return uint32(len(m))
}
