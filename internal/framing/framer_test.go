package framing

import (
	"strings"
	"testing"
)

func feed(t *testing.T, f *Framer, input string) []string {
	t.Helper()
	var lines []string
	for i := 0; i < len(input); i++ {
		line, outcome := f.Ingest(input[i])
		if outcome == OutcomeLine {
			lines = append(lines, line)
		}
	}
	return lines
}

func TestIngestCRLFPairProducesSingleLine(t *testing.T) {
	f := NewFramer(DefaultCapacity)

	lines := feed(t, f, "12\r\n")
	if len(lines) != 1 || lines[0] != "12" {
		t.Fatalf("expected single line %q, got %v", "12", lines)
	}
	if f.Len() != 0 {
		t.Fatalf("expected empty buffer after line, got %d bytes", f.Len())
	}
}

func TestIngestSuppressesBlankLines(t *testing.T) {
	f := NewFramer(DefaultCapacity)

	lines := feed(t, f, "\r\n\n\r2 + 3\n")
	if len(lines) != 1 || lines[0] != "2 + 3" {
		t.Fatalf("expected blank terminators suppressed, got %v", lines)
	}
}

func TestIngestDropsBytesPastCapacity(t *testing.T) {
	f := NewFramer(8) // 7 payload bytes

	dropped := 0
	for i := 0; i < 12; i++ {
		if _, outcome := f.Ingest('a'); outcome == OutcomeDropped {
			dropped++
		}
	}
	if dropped != 5 {
		t.Fatalf("expected 5 dropped bytes, got %d", dropped)
	}

	line, outcome := f.Ingest('\n')
	if outcome != OutcomeLine {
		t.Fatalf("expected completed line, got %v", outcome)
	}
	if line != strings.Repeat("a", 7) {
		t.Fatalf("expected truncated 7-byte line, got %q", line)
	}
}

func TestIngestResetsBetweenLines(t *testing.T) {
	f := NewFramer(DefaultCapacity)

	lines := feed(t, f, "first\rsecond\r")
	if len(lines) != 2 || lines[0] != "first" || lines[1] != "second" {
		t.Fatalf("unexpected lines: %v", lines)
	}
}

func TestIngestAcceptsAfterOverflowReset(t *testing.T) {
	f := NewFramer(4) // 3 payload bytes

	feed(t, f, "abcdef\n")
	lines := feed(t, f, "1+2\n")
	if len(lines) != 1 || lines[0] != "1+2" {
		t.Fatalf("expected framer usable after overflow, got %v", lines)
	}
}

func TestNewFramerTinyCapacityFallsBack(t *testing.T) {
	f := NewFramer(0)

	for i := 0; i < DefaultCapacity-1; i++ {
		if _, outcome := f.Ingest('x'); outcome != OutcomeAccepted {
			t.Fatalf("byte %d not accepted", i)
		}
	}
	if _, outcome := f.Ingest('x'); outcome != OutcomeDropped {
		t.Fatalf("expected drop at default capacity")
	}
}

func TestResetDiscardsBufferedBytes(t *testing.T) {
	f := NewFramer(DefaultCapacity)

	feed(t, f, "junk")
	f.Reset()
	if f.Len() != 0 {
		t.Fatalf("expected empty buffer after reset, got %d", f.Len())
	}
	if lines := feed(t, f, "\n"); len(lines) != 0 {
		t.Fatalf("expected suppressed terminator after reset, got %v", lines)
	}
}
