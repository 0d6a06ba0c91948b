package engine

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/tetratelabs/wazero/api"

	sharedmod "github.com/wippyai/sharedmod"
	"github.com/wippyai/sharedmod/errors"
)

// echoProgram reads a blob the host placed behind `peek`, writes it to its
// own memory, and hands it back through `give`.
type echoProgram struct {
	fail bool
}

func (p *echoProgram) Imports() []ImportDecl {
	return []ImportDecl{
		{Field: "peek_size", Params: 0, Results: 1},
		{Field: "peek", Params: 1, Results: 0},
		{Field: "give", Params: 2, Results: 1},
	}
}

func (p *echoProgram) Exports() []string {
	return []string{"run"}
}

func (p *echoProgram) Invoke(env *GuestEnv, export string, args ...uint64) error {
	size, err := env.CallHost("peek_size")
	if err != nil {
		return err
	}
	ptr, err := env.Alloc(uint32(size))
	if err != nil {
		return err
	}
	if _, err := env.CallHost("peek", uint64(ptr)); err != nil {
		return err
	}
	if p.fail {
		_, err := env.CallHost("give", uint64(^uint32(0)), size)
		return err
	}
	_, err = env.CallHost("give", uint64(ptr), size)
	return err
}

// echoHost exposes the three functions echoProgram links against.
type echoHost struct {
	payload []byte
	got     []byte
}

func (h *echoHost) module() *HostModule {
	i32 := api.ValueTypeI32
	return &HostModule{
		Name: "env",
		Funcs: []HostFunc{
			{
				Field: "peek_size", Results: []api.ValueType{i32},
				Call: func(ctx context.Context, mem sharedmod.Memory, stack []uint64) error {
					stack[0] = uint64(len(h.payload))
					return nil
				},
			},
			{
				Field: "peek", Params: []api.ValueType{i32},
				Call: func(ctx context.Context, mem sharedmod.Memory, stack []uint64) error {
					if !mem.Write(uint32(stack[0]), h.payload) {
						return errors.OutOfBounds(errors.PhaseMarshal, uint32(stack[0]), uint32(len(h.payload)), mem.Size())
					}
					return nil
				},
			},
			{
				Field: "give", Params: []api.ValueType{i32, i32}, Results: []api.ValueType{i32},
				Call: func(ctx context.Context, mem sharedmod.Memory, stack []uint64) error {
					view, ok := mem.Read(uint32(stack[0]), uint32(stack[1]))
					if !ok {
						return errors.OutOfBounds(errors.PhaseMarshal, uint32(stack[0]), uint32(stack[1]), mem.Size())
					}
					h.got = append([]byte(nil), view...)
					stack[0] = 0
					return nil
				},
			},
		},
	}
}

func TestNative_RoundTrip(t *testing.T) {
	ctx := context.Background()
	host := &echoHost{payload: []byte("across the boundary")}

	mod := NewNativeEngine().Module(&echoProgram{})
	inst, err := mod.Instantiate(ctx, host.module())
	if err != nil {
		t.Fatalf("Instantiate error: %v", err)
	}
	defer inst.Close(ctx)

	if err := inst.Invoke(ctx, "run"); err != nil {
		t.Fatalf("Invoke error: %v", err)
	}
	if string(host.got) != "across the boundary" {
		t.Errorf("host received %q", host.got)
	}
}

func TestNative_MissingImportFailsInstantiation(t *testing.T) {
	ctx := context.Background()
	host := &echoHost{}
	hm := host.module()
	hm.Funcs = hm.Funcs[:2] // drop "give"

	_, err := NewNativeEngine().Module(&echoProgram{}).Instantiate(ctx, hm)
	want := &errors.Error{Phase: errors.PhaseLink, Kind: errors.KindMissingImport}
	if !stderrors.Is(err, want) {
		t.Errorf("Instantiate = %v, want missing import link error", err)
	}
}

func TestNative_SignatureMismatchFailsInstantiation(t *testing.T) {
	ctx := context.Background()
	host := &echoHost{}
	hm := host.module()
	hm.Funcs[2].Params = []api.ValueType{api.ValueTypeI32} // wrong arity for "give"

	_, err := NewNativeEngine().Module(&echoProgram{}).Instantiate(ctx, hm)
	want := &errors.Error{Phase: errors.PhaseLink, Kind: errors.KindSignatureMismatch}
	if !stderrors.Is(err, want) {
		t.Errorf("Instantiate = %v, want signature mismatch link error", err)
	}
}

func TestNative_MissingExport(t *testing.T) {
	ctx := context.Background()
	host := &echoHost{}

	inst, err := NewNativeEngine().Module(&echoProgram{}).Instantiate(ctx, host.module())
	if err != nil {
		t.Fatalf("Instantiate error: %v", err)
	}

	err = inst.Invoke(ctx, "nonexistent")
	want := &errors.Error{Phase: errors.PhaseInvoke, Kind: errors.KindMissingExport}
	if !stderrors.Is(err, want) {
		t.Errorf("Invoke = %v, want missing export error", err)
	}
}

func TestNative_HostErrorAbortsCall(t *testing.T) {
	ctx := context.Background()
	host := &echoHost{payload: []byte("x")}

	inst, err := NewNativeEngine().Module(&echoProgram{fail: true}).Instantiate(ctx, host.module())
	if err != nil {
		t.Fatalf("Instantiate error: %v", err)
	}

	err = inst.Invoke(ctx, "run")
	if err == nil {
		t.Fatal("expected host bounds error to propagate")
	}
	want := &errors.Error{Phase: errors.PhaseMarshal, Kind: errors.KindOutOfBounds}
	if !stderrors.Is(err, want) {
		t.Errorf("Invoke = %v, want wrapped bounds error", err)
	}
	if len(host.got) != 0 {
		t.Error("failed give must not record a payload")
	}
}

func TestGuestEnv_AllocResetsPerInvoke(t *testing.T) {
	ctx := context.Background()
	host := &echoHost{payload: make([]byte, 40000)}

	inst, err := NewNativeEngine().Module(&echoProgram{}).Instantiate(ctx, host.module())
	if err != nil {
		t.Fatalf("Instantiate error: %v", err)
	}

	// Two invocations each allocate ~40KB out of 64KB; without the per-call
	// reset the second would exhaust guest memory.
	for i := 0; i < 2; i++ {
		if err := inst.Invoke(ctx, "run"); err != nil {
			t.Fatalf("Invoke %d error: %v", i, err)
		}
	}
}

func TestGuestEnv_AllocExhaustion(t *testing.T) {
	env := &GuestEnv{mem: make(byteMemory, 64), brk: allocBase}

	if _, err := env.Alloc(32); err != nil {
		t.Fatalf("Alloc error: %v", err)
	}
	if _, err := env.Alloc(64); err == nil {
		t.Error("expected exhaustion error")
	}
}

func TestGuestEnv_NullPointerNeverAllocated(t *testing.T) {
	env := &GuestEnv{mem: make(byteMemory, 64), brk: allocBase}
	ptr, err := env.Alloc(1)
	if err != nil {
		t.Fatalf("Alloc error: %v", err)
	}
	if ptr == 0 {
		t.Error("address 0 must never be handed out")
	}
}
