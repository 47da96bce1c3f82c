package framing

// DefaultCapacity bounds one line including its reserved terminator slot.
const DefaultCapacity = 32

// Outcome reports what Ingest did with one byte.
type Outcome int

const (
	// OutcomeAccepted means the byte was appended to the current line.
	OutcomeAccepted Outcome = iota
	// OutcomeDropped means the buffer was full and the byte was discarded.
	OutcomeDropped
	// OutcomeBlank means a terminator arrived on an empty buffer and was
	// suppressed (CR+LF pairs, blank lines).
	OutcomeBlank
	// OutcomeLine means a terminator completed the buffered line.
	OutcomeLine
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAccepted:
		return "accepted"
	case OutcomeDropped:
		return "dropped"
	case OutcomeBlank:
		return "blank"
	case OutcomeLine:
		return "line"
	default:
		return "unknown"
	}
}

// Framer accumulates transport bytes into discrete lines. One slot of the
// buffer is reserved for a terminator, so a Framer with capacity N holds at
// most N-1 payload bytes per line. The zero value is not usable; construct
// with NewFramer.
type Framer struct {
	buf []byte
}

// NewFramer returns a Framer holding at most capacity-1 bytes per line.
// Capacities below 2 fall back to DefaultCapacity.
func NewFramer(capacity int) *Framer {
	if capacity < 2 {
		capacity = DefaultCapacity
	}
	return &Framer{buf: make([]byte, 0, capacity-1)}
}

// Ingest consumes exactly one byte and returns the completed line when the
// byte terminated one. The buffered region never contains a terminator, and
// the buffer resets to empty the moment a line is returned. Bytes past
// capacity are discarded silently: the oversized line completes truncated at
// the next terminator instead of signaling an error.
func (f *Framer) Ingest(b byte) (string, Outcome) {
	if b == '\n' || b == '\r' {
		if len(f.buf) == 0 {
			return "", OutcomeBlank
		}
		line := string(f.buf)
		f.buf = f.buf[:0]
		return line, OutcomeLine
	}

	if len(f.buf) >= cap(f.buf) {
		return "", OutcomeDropped
	}

	f.buf = append(f.buf, b)
	return "", OutcomeAccepted
}

// Len reports the number of buffered payload bytes.
func (f *Framer) Len() int {
	return len(f.buf)
}

// Reset discards any buffered bytes.
func (f *Framer) Reset() {
	f.buf = f.buf[:0]
}
