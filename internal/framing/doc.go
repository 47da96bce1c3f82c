// Package framing owns byte-to-line reassembly.
//
// Ownership boundary:
// - bounded line buffer state machine
// - terminator recognition and blank-line suppression
//
// framing does no I/O and no expression parsing; echo and response
// writing belong to the session that drives Ingest.
package framing
