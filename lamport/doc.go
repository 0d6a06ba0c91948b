// Package lamport implements the message queue / logical clock protocol as
// a shared module guest program.
//
// The program decodes a tagged request from the scratch buffer at entry.
// Enqueue stamps a payload with the next value of a persisted logical clock
// and appends it to the persisted pending queue. FanOut drains the queue
// and sends one grouped blob per recipient, in the order recipients first
// appear in the queue. Poll assembles the inbound accumulator into per-sender
// message groups.
//
// Guest adapts the program to the native execution engine, reaching the host
// only through pointer-based calls into its own linear memory, the same way
// a WebAssembly build of the program would. Validator is the matching
// parachain guest: it replays a fixed sequence of shared-module calls from
// its validate_block export.
package lamport
