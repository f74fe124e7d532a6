// Package value provides the attribute value types used by entities.
//
// Value is a sealed union: Null, String, Int, Float, Bool, Array and Object.
// Every attribute held by a model.Entity is one of these, which keeps deep
// copies, deep equality and JSON renderings total and deterministic.
//
// Key constraints:
//   - integral numbers are Int, other finite numbers Float; NaN and Inf are rejected
//   - Float renders in ECMAScript number form (RFC 8785 section 3.2.2.3)
//   - Object keys render in RFC 8785 order (UTF-16 code units)
//   - MarshalCanonical is the only encoding used for fingerprints
package value
