// Package driver owns the set of registered shared module runtimes for one
// parachain validation and routes calls between them.
//
// The Driver is the Dispatcher behind the parachain gateway: a guest's
// call_shared_module lands in Dispatch, which resolves the handle against
// the registration order and forwards the blob to the addressed runtime
// unchanged. ValidateBlock runs a parachain guest end to end, and Relay
// moves drained outbound message slots into the addressed runtimes' inbound
// slots between invocations.
package driver
