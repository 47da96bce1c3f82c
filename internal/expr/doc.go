// Package expr owns expression parsing and arithmetic evaluation.
//
// Ownership boundary:
// - two-operand expression lexical shape
// - operator dispatch and numeric-domain errors
//
// expr does not own framing or transport concerns; it evaluates one
// already-completed line at a time.
package expr
