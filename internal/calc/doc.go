// Package calc owns the interactive evaluator runtime.
//
// Ownership boundary:
// - per-connection session loop (byte pump -> line queue -> evaluator)
// - response and banner wire format
// - service lifecycle (listeners, admin surface, shutdown)
//
// Line reassembly lives in internal/framing and expression semantics in
// internal/expr; calc wires them to transports and owns every policy that
// spans the two (echo, queue backpressure, result formatting).
package calc
