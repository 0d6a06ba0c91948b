// Package sharedmod simulates the boundary between an untrusted guest
// computation (a parachain validation program) and a set of isolated,
// host-mediated shared modules it may call into during one execution.
//
// The guest and the shared modules never share address space. Everything
// crossing the boundary is a byte blob copied through a bounds-checked
// marshaller, and variable-length results travel through a call-scoped
// scratch buffer. Shared modules exchange asynchronous messages with their
// counterparts on other guests ("doppelgangers") via a host-relayed channel
// with Lamport-style timestamp ordering.
//
// # Architecture Overview
//
// The library is organized into packages with distinct responsibilities:
//
//	sharedmod/        Root package with the guest Memory abstraction
//	├── errors/       Structured error types (phase + kind)
//	├── codec/        Deterministic binary codec and wire records
//	├── engine/       Guest execution engines (wazero, native Go)
//	├── memio/        Memory marshaller and scratch buffer
//	├── gateway/      Host function gateways (parachain, shared module)
//	├── runtime/      Shared module runtime: storage, accumulator, invoke
//	├── driver/       Handle registry, dispatch, block validation
//	└── lamport/      Message queue / logical clock guest program
//
// # Quick Start
//
// Run a block validation over wazero-loaded guests:
//
//	eng, _ := engine.NewWazeroEngine(ctx)
//	defer eng.Close(ctx)
//
//	clockMod, _ := eng.Load(ctx, clockWasm)
//	clock := runtime.New(clockMod, runtime.WithName("lamport-clock"))
//
//	d := driver.New()
//	d.Register(clock)
//
//	para, _ := eng.Load(ctx, parachainWasm)
//	if err := d.ValidateBlock(ctx, para); err != nil {
//	    log.Fatal(err)
//	}
//
// # Concurrency Model
//
// The whole call chain is single-threaded and fully synchronous: control
// transfers guest -> host -> guest within one call stack. One guest
// invocation drives at most one shared module invocation at a time, and
// that exclusivity is the concurrency control: Storage and Accumulator are
// touched only while their runtime's Invoke is active, so no locking is
// used. The cached guest instance inside a runtime is NOT safe to share
// across concurrent invocations.
package sharedmod
