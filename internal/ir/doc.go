// Package ir provides the value types shared by the query-parameter parser,
// the SQL compiler and the result reader.
//
// ir imports nothing internal. Every other internal package may import it.
//
// Key constraints:
//   - No float types. Numbers are int64 and query operands stay textual.
//   - Canonical JSON (RFC 8785) is the only encoding used for fingerprints
//     and golden snapshots.
package ir
