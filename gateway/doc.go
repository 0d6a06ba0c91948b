// Package gateway builds the host modules guests link against.
//
// A gateway is a closed enumeration of host functions with fixed core-wasm
// signatures; name and signature resolution happens when the guest is
// instantiated, so an unknown import or a wrong signature never reaches a
// call. At call time fixed-width integer arguments are read straight off
// the stack, byte-range arguments are materialized through the memory
// marshaller, and any variable-length result travels back through the
// scratch buffer.
//
// Two gateways exist:
//
//	Parachain  - what a parachain validation guest sees: a single
//	             call_shared_module entry forwarding to the Driver.
//	Shared     - what a shared module guest sees: the scratch buffer
//	             handshake, send/poll messaging, and persistent storage.
package gateway
