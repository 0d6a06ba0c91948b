package engine

import (
	"context"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	sharedmod "github.com/wippyai/sharedmod"
	"github.com/wippyai/sharedmod/errors"
)

// WazeroEngine runs WebAssembly guests on wazero.
//
// Each loaded module owns an isolated wazero runtime, so two guests never
// share a namespace and each instantiation binds its own host module.
// Compiled code is shared through a compilation cache.
type WazeroEngine struct {
	cache    wazero.CompilationCache
	runtimes []wazero.Runtime
}

// NewWazeroEngine creates a wazero-backed engine
func NewWazeroEngine(ctx context.Context) (*WazeroEngine, error) {
	return &WazeroEngine{cache: wazero.NewCompilationCache()}, nil
}

// Load compiles a WebAssembly binary into a Module
func (e *WazeroEngine) Load(ctx context.Context, wasmBytes []byte) (Module, error) {
	cfg := wazero.NewRuntimeConfig().WithCompilationCache(e.cache)
	rt := wazero.NewRuntimeWithConfig(ctx, cfg)

	compiled, err := rt.CompileModule(ctx, wasmBytes)
	if err != nil {
		_ = rt.Close(ctx)
		return nil, errors.Load("compile guest module", err)
	}

	e.runtimes = append(e.runtimes, rt)
	return &wazeroModule{runtime: rt, compiled: compiled}, nil
}

// Close releases all runtimes created by Load
func (e *WazeroEngine) Close(ctx context.Context) error {
	var first error
	for _, rt := range e.runtimes {
		if err := rt.Close(ctx); err != nil && first == nil {
			first = err
		}
	}
	e.runtimes = nil
	return first
}

type wazeroModule struct {
	runtime  wazero.Runtime
	compiled wazero.CompiledModule
}

func (m *wazeroModule) Instantiate(ctx context.Context, host *HostModule) (Instance, error) {
	inst := &wazeroInstance{}

	builder := m.runtime.NewHostModuleBuilder(host.Name)
	for i := range host.Funcs {
		f := &host.Funcs[i]
		builder.NewFunctionBuilder().
			WithGoModuleFunction(api.GoModuleFunc(func(ctx context.Context, mod api.Module, stack []uint64) {
				if err := f.Call(ctx, wazeroMemory{mod.Memory()}, stack); err != nil {
					// wazero surfaces host panics as call errors; keep the
					// structured error in a side slot so Invoke can return
					// the first fatal error untranslated.
					inst.hostErr = errors.Trap(f.Field, err)
					panic(inst.hostErr)
				}
			}), f.Params, f.Results).
			Export(f.Field)
	}
	hostMod, err := builder.Instantiate(ctx)
	if err != nil {
		return nil, errors.Instantiation(err)
	}

	mod, err := m.runtime.InstantiateModule(ctx, m.compiled, wazero.NewModuleConfig())
	if err != nil {
		_ = hostMod.Close(ctx)
		return nil, errors.Instantiation(err)
	}
	if mod.Memory() == nil {
		_ = mod.Close(ctx)
		_ = hostMod.Close(ctx)
		return nil, errors.MissingExport("memory")
	}

	Logger().Debug("guest instantiated",
		zap.String("namespace", host.Name),
		zap.Int("host_funcs", len(host.Funcs)))

	inst.mod = mod
	inst.hostMod = hostMod
	return inst, nil
}

type wazeroInstance struct {
	mod     api.Module
	hostMod api.Module
	hostErr error
}

func (i *wazeroInstance) Memory() sharedmod.Memory {
	return wazeroMemory{i.mod.Memory()}
}

func (i *wazeroInstance) Invoke(ctx context.Context, export string, args ...uint64) error {
	fn := i.mod.ExportedFunction(export)
	if fn == nil {
		return errors.MissingExport(export)
	}

	i.hostErr = nil
	_, err := fn.Call(ctx, args...)
	if i.hostErr != nil {
		err, i.hostErr = i.hostErr, nil
		return err
	}
	if err != nil {
		return errors.Wrap(errors.PhaseInvoke, errors.KindTrap, err, export)
	}
	return nil
}

func (i *wazeroInstance) Close(ctx context.Context) error {
	if err := i.mod.Close(ctx); err != nil {
		return err
	}
	return i.hostMod.Close(ctx)
}

// wazeroMemory adapts api.Memory to the root Memory interface.
// Reads return views into guest memory; the marshaller copies.
type wazeroMemory struct {
	mem api.Memory
}

func (m wazeroMemory) Read(offset, count uint32) ([]byte, bool) {
	return m.mem.Read(offset, count)
}

func (m wazeroMemory) Write(offset uint32, data []byte) bool {
	return m.mem.Write(offset, data)
}

func (m wazeroMemory) Size() uint32 {
	return m.mem.Size()
}
