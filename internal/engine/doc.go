// Package engine runs query-parameter filters against the content store.
//
// One request is an ordered list of (key, value) pairs. Each pair is
// compiled by the dsl.Parser into a Filter; the Filters are AND-ed into a
// single queryir.Select, validated, compiled to SQL by querysql and executed
// against the store. Rows come back as ir.IRObject values.
//
// Every planned query carries an ID from an IDGenerator (UUIDv7 in
// production, fixed IDs in tests) and a fingerprint of its compiled SQL and
// arguments.
package engine
