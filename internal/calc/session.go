package calc

import (
	"context"
	"errors"
	"io"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/danmuck/calcctl/internal/expr"
	"github.com/danmuck/calcctl/internal/framing"
	"github.com/danmuck/calcctl/internal/observability"
)

// Banner and response lines on the interactive wire. Every outbound line,
// echo terminators included, ends with CR LF for raw-terminal compatibility.
const (
	BannerLine1 = "calcctl line calculator"
	BannerLine2 = "Enter an expression with 2 operands (e.g., 2 + 3):"

	msgResultPrefix = "Result: "
	msgDivByZero    = "Division by zero!"
	msgInvalidExpr  = "Invalid expression!"
)

// SessionConfig shapes one interactive session.
type SessionConfig struct {
	// Transport labels logs and metrics: "tcp", "ssh", or "stdio".
	Transport string
	// MaxLineLen bounds one input line including the reserved terminator
	// slot; bytes past the bound are discarded silently.
	MaxLineLen int
	// QueueDepth bounds completed lines awaiting evaluation. The byte pump
	// never blocks on a full queue: the completed line is dropped and
	// counted instead.
	QueueDepth int
	// Echo writes every accepted byte back immediately, plus CR LF when a
	// line completes. Raw transports (tcp, ssh) want this on; cooked-mode
	// stdio wants it off.
	Echo bool
	// Banner writes the two startup lines before any input is consumed.
	Banner bool
}

// Session defaults matching the serial-console heritage: 32-byte lines,
// 10-line queue, echo and banner on.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		Transport:  "tcp",
		MaxLineLen: framing.DefaultCapacity,
		QueueDepth: 10,
		Echo:       true,
		Banner:     true,
	}
}

func (c SessionConfig) withDefaults() SessionConfig {
	out := c
	if out.Transport == "" {
		out.Transport = "tcp"
	}
	if out.MaxLineLen < 2 {
		out.MaxLineLen = framing.DefaultCapacity
	}
	if out.QueueDepth <= 0 {
		out.QueueDepth = 10
	}
	return out
}

// Session runs one interactive evaluator over a byte stream. The byte pump
// and the evaluator loop are decoupled by a bounded line queue, so byte
// arrival timing never depends on evaluation timing. Evaluation itself is
// stateless between lines; the Framer is the only per-session input state.
type Session struct {
	id     string
	remote string
	cfg    SessionConfig
	rw     io.ReadWriter
	logger zerolog.Logger

	writeMu sync.Mutex

	startedAt    time.Time
	lines        atomic.Uint64
	invalid      atomic.Uint64
	divZero      atomic.Uint64
	droppedBytes atomic.Uint64
	droppedLines atomic.Uint64
}

// NewSession constructs a session over rw. remote is free-form peer identity
// for logs and the admin snapshot ("stdio" for the local transport).
func NewSession(rw io.ReadWriter, remote string, cfg SessionConfig) *Session {
	cfg = cfg.withDefaults()
	id := uuid.NewString()
	return &Session{
		id:     id,
		remote: remote,
		cfg:    cfg,
		rw:     rw,
		logger: log.With().
			Str("session", id).
			Str("transport", cfg.Transport).
			Str("remote", remote).
			Logger(),
		startedAt: time.Now(),
	}
}

func (s *Session) ID() string {
	return s.id
}

// Run serves the session until the reader is exhausted or ctx is done.
// A clean peer EOF returns nil; evaluation failures never end the session.
func (s *Session) Run(ctx context.Context) error {
	observability.SessionOpened(s.cfg.Transport)
	defer observability.SessionClosed(s.cfg.Transport)

	s.logger.Info().Msg("session open")
	defer func() {
		s.logger.Info().
			Uint64("lines", s.lines.Load()).
			Uint64("invalid", s.invalid.Load()).
			Uint64("div_zero", s.divZero.Load()).
			Uint64("dropped_bytes", s.droppedBytes.Load()).
			Uint64("dropped_lines", s.droppedLines.Load()).
			Msg("session closed")
	}()

	if s.cfg.Banner {
		if err := s.writeLine(BannerLine1); err != nil {
			return err
		}
		if err := s.writeLine(BannerLine2); err != nil {
			return err
		}
	}

	queue := make(chan string, s.cfg.QueueDepth)
	pumpErr := make(chan error, 1)
	go func() {
		pumpErr <- s.pump(ctx, queue)
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-queue:
			if !ok {
				return <-pumpErr
			}
			s.serveLine(line)
		}
	}
}

// pump reads the transport in arbitrary chunks and feeds the framer one byte
// at a time. Completed lines go to queue with a non-blocking send; when the
// queue is full the line is dropped and counted, never blocking ingestion.
// pump closes queue on return.
func (s *Session) pump(ctx context.Context, queue chan<- string) error {
	defer close(queue)

	framer := framing.NewFramer(s.cfg.MaxLineLen)
	buf := make([]byte, 256)
	for {
		n, readErr := s.rw.Read(buf)
		for _, b := range buf[:n] {
			s.ingest(framer, b, queue)
		}
		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				return nil
			}
			if ctx.Err() != nil {
				// Listener shutdown closes the transport under us.
				return nil
			}
			return readErr
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}

func (s *Session) ingest(framer *framing.Framer, b byte, queue chan<- string) {
	line, outcome := framer.Ingest(b)
	switch outcome {
	case framing.OutcomeAccepted:
		if s.cfg.Echo {
			s.write([]byte{b})
		}
	case framing.OutcomeDropped:
		s.droppedBytes.Add(1)
		observability.RecordBytesDropped(s.cfg.Transport, 1)
	case framing.OutcomeBlank:
		// CR+LF pair or blank line; nothing to do.
	case framing.OutcomeLine:
		if s.cfg.Echo {
			s.write([]byte{'\r', '\n'})
		}
		s.lines.Add(1)
		observability.RecordLine(s.cfg.Transport)
		select {
		case queue <- line:
		default:
			s.droppedLines.Add(1)
			observability.RecordLineDropped(s.cfg.Transport)
			s.logger.Warn().Str("line", line).Msg("line queue full, dropped")
		}
	}
}

// serveLine evaluates one line exactly once and writes the matching response.
func (s *Session) serveLine(line string) {
	start := time.Now()
	value, err := expr.Evaluate(line)
	elapsed := time.Since(start)

	switch {
	case err == nil:
		observability.RecordEvalResult(s.cfg.Transport, observability.OutcomeResult, elapsed)
		s.logger.Debug().Str("line", line).Int32("result", value).Msg("evaluated")
		_ = s.writeLine(msgResultPrefix + strconv.FormatInt(int64(value), 10))
	case errors.Is(err, expr.ErrDivisionByZero):
		s.divZero.Add(1)
		observability.RecordEvalResult(s.cfg.Transport, observability.OutcomeDivByZero, elapsed)
		s.logger.Debug().Str("line", line).Msg("division by zero")
		_ = s.writeLine(msgDivByZero)
	default:
		s.invalid.Add(1)
		observability.RecordEvalResult(s.cfg.Transport, observability.OutcomeInvalid, elapsed)
		s.logger.Debug().Str("line", line).Msg("invalid expression")
		_ = s.writeLine(msgInvalidExpr)
	}
}

func (s *Session) writeLine(text string) error {
	return s.write(append([]byte(text), '\r', '\n'))
}

// write serializes echo bytes from the pump and responses from the
// evaluator loop onto the shared transport.
func (s *Session) write(p []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	_, err := s.rw.Write(p)
	return err
}

// Stats snapshots the session counters for the admin surface.
func (s *Session) Stats() SessionStats {
	return SessionStats{
		ID:           s.id,
		Transport:    s.cfg.Transport,
		Remote:       s.remote,
		StartedAt:    s.startedAt,
		Lines:        s.lines.Load(),
		Invalid:      s.invalid.Load(),
		DivZero:      s.divZero.Load(),
		DroppedBytes: s.droppedBytes.Load(),
		DroppedLines: s.droppedLines.Load(),
	}
}
