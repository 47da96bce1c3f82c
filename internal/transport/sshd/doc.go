// Package sshd owns the SSH serving boundary.
//
// Ownership boundary:
// - listener and handshake lifecycle
// - host key loading/generation
// - session-channel plumbing to a stream handler
//
// sshd knows nothing about expressions; the handler it is given owns all
// calculator semantics.
package sshd
