// Package engine provides the guest execution engines.
//
// The rest of the host treats a guest as an opaque capability set: load a
// module, instantiate it against a host module, read and write its bounded
// linear memory, invoke a named export. Those capabilities are the Module
// and Instance interfaces; nothing outside this package knows how guest
// code actually runs.
//
// # Engines
//
// Two engines implement the interfaces:
//
//	WazeroEngine  - runs WebAssembly guests on wazero. Each loaded module
//	                gets its own isolated wazero runtime; import names and
//	                signatures resolve at instantiation.
//	NativeEngine  - runs guest programs written in Go against the same ABI,
//	                with a byte-slice linear memory and a bump allocator.
//	                Declared imports are checked against the host module at
//	                instantiation, preserving link-error semantics. Used by
//	                tests and the CLI simulator, which cannot ship wasm
//	                fixtures.
//
// # Host Modules
//
// A HostModule is a closed enumeration of host functions with fixed
// core-wasm signatures. Unresolved imports and signature mismatches fail
// instantiation, before any guest code runs. A host function either
// completes or returns an error that aborts the in-flight guest call; there
// is no recovery path inside the guest.
//
// # Thread Safety
//
// Instances are not safe for concurrent use. The simulation is
// single-threaded by design; see the root package documentation.
package engine
