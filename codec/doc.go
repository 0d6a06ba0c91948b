// Package codec implements the deterministic binary encoding used on the
// shared-module boundary.
//
// The format is compact and little-endian:
//
//	u32, u64        fixed-width little-endian
//	length prefix   compact unsigned integer (1/2/4 bytes by value range,
//	                mode in the two low bits)
//	byte vector     compact length prefix + raw bytes
//	vector<T>       compact count + elements in order
//	record          fields in declaration order
//	tagged union    one tag byte + the selected variant's fields
//
// Encoding is canonical: a value has exactly one encoding, and decoders
// reject non-minimal length prefixes and trailing input. No forward or
// backward compatibility is attempted; a blob either decodes exactly or
// fails with a decode error.
package codec
