// Package runtime implements the shared module runtime: the host-side owner
// of one isolated extension unit.
//
// A SharedModule owns its persistent key/value Storage and its message
// Accumulator, and lazily instantiates its guest on first use, caching the
// instance for the lifetime of the runtime. Each Invoke seeds the
// call-scoped scratch buffer with the request blob and transfers control to
// the guest's exported handle entry point; the shared-module gateway then
// services storage, poll and send requests against this runtime's state.
//
// State mutated before a fault stays mutated: there is no rollback.
package runtime
