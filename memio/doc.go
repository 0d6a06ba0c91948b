// Package memio moves bytes across the guest isolation boundary.
//
// Marshaller is the only sanctioned byte path between host and guest linear
// memory: it bounds-checks every range and always hands the host a fresh
// copy, never a view of guest memory.
//
// Scratch is the call-scoped buffer used to return variable-length results
// to a guest that cannot pre-announce result sizes. Producers replace its
// contents wholesale; the guest reads it back with a size query followed by
// a copy-out before the next producing call.
package memio
