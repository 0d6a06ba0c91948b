package lamport

import (
	"github.com/wippyai/sharedmod/codec"
	"github.com/wippyai/sharedmod/driver"
	"github.com/wippyai/sharedmod/engine"
	"github.com/wippyai/sharedmod/errors"
)

// Step is one shared-module call a Validator issues during block validation.
type Step struct {
	Handle    uint32
	TimeSlice uint32
	Request   codec.Request
}

// Validator is a parachain guest program that replays a fixed call sequence
// from its validate_block export. It stands in for a real state-transition
// program: the simulator and tests use it to drive shared modules through
// the dispatch path.
type Validator struct {
	Steps []Step
}

func (*Validator) Imports() []engine.ImportDecl {
	return []engine.ImportDecl{
		{Field: "call_shared_module", Params: 4, Results: 0},
	}
}

func (*Validator) Exports() []string {
	return []string{driver.ValidateEntryPoint}
}

func (v *Validator) Invoke(env *engine.GuestEnv, export string, args ...uint64) error {
	if export != driver.ValidateEntryPoint {
		return errors.MissingExport(export)
	}
	for _, step := range v.Steps {
		blob := codec.EncodeRequest(step.Request)
		ptr, err := env.Alloc(uint32(len(blob)))
		if err != nil {
			return err
		}
		if err := env.Write(ptr, blob); err != nil {
			return err
		}
		_, err = env.CallHost("call_shared_module",
			uint64(step.Handle), uint64(step.TimeSlice), uint64(ptr), uint64(len(blob)))
		if err != nil {
			return err
		}
	}
	return nil
}
