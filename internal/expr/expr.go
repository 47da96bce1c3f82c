package expr

import "errors"

var (
	ErrInvalidExpression = errors.New("expr: invalid expression")
	ErrDivisionByZero    = errors.New("expr: division by zero")
)

// Evaluate parses line as `operand1 op operand2` and applies op.
//
// Operands are signed decimal integers with optional surrounding whitespace;
// literals beyond the int32 range saturate at the bounds. The scan is a single
// left-to-right pass: first operand, one operator byte, second operand, then
// nothing but whitespace may remain. Any shape violation yields
// ErrInvalidExpression; a zero divisor under `/` or `%` yields ErrDivisionByZero.
//
// Addition, subtraction, and multiplication wrap on two's-complement int32
// overflow. Division and remainder truncate toward zero, so the remainder
// carries the dividend's sign: Evaluate("-7 % 2") == -1.
func Evaluate(line string) (int32, error) {
	s := scanner{input: line}

	operand1, ok := s.scanInt()
	if !ok {
		return 0, ErrInvalidExpression
	}

	s.skipSpace()
	op := s.nextByte()

	// A missing operator leaves nothing for the second operand; the scan
	// below fails with zero progress rather than reading past the input.
	operand2, ok := s.scanInt()
	if !ok {
		return 0, ErrInvalidExpression
	}

	s.skipSpace()
	if !s.done() {
		return 0, ErrInvalidExpression
	}

	return apply(operand1, op, operand2)
}

func apply(operand1 int32, op byte, operand2 int32) (int32, error) {
	switch op {
	case '+':
		return operand1 + operand2, nil
	case '-':
		return operand1 - operand2, nil
	case '*':
		return operand1 * operand2, nil
	case '/':
		if operand2 == 0 {
			return 0, ErrDivisionByZero
		}
		return operand1 / operand2, nil
	case '%':
		if operand2 == 0 {
			return 0, ErrDivisionByZero
		}
		return operand1 % operand2, nil
	default:
		return 0, ErrInvalidExpression
	}
}

// scanner is a cursor over one expression line.
type scanner struct {
	input string
	pos   int
}

func (s *scanner) done() bool {
	return s.pos >= len(s.input)
}

// nextByte consumes and returns one byte, or 0 at end of input.
func (s *scanner) nextByte() byte {
	if s.done() {
		return 0
	}
	b := s.input[s.pos]
	s.pos++
	return b
}

func (s *scanner) skipSpace() {
	for !s.done() && isSpace(s.input[s.pos]) {
		s.pos++
	}
}

// scanInt consumes the longest signed decimal integer prefix at the cursor,
// skipping leading whitespace. It reports false when no digits were consumed;
// the cursor position is meaningless after a failed scan. Magnitudes beyond
// the int32 range saturate at MinInt32/MaxInt32 while still consuming every
// digit, matching strtol clamping.
func (s *scanner) scanInt() (int32, bool) {
	s.skipSpace()

	negative := false
	if !s.done() {
		switch s.input[s.pos] {
		case '-':
			negative = true
			s.pos++
		case '+':
			s.pos++
		}
	}

	const saturated = int64(1) << 32

	var magnitude int64
	digits := 0
	for !s.done() {
		b := s.input[s.pos]
		if b < '0' || b > '9' {
			break
		}
		if magnitude < saturated {
			magnitude = magnitude*10 + int64(b-'0')
		}
		digits++
		s.pos++
	}
	if digits == 0 {
		return 0, false
	}

	if negative {
		if magnitude > -int64(minInt32) {
			return minInt32, true
		}
		return int32(-magnitude), true
	}
	if magnitude > int64(maxInt32) {
		return maxInt32, true
	}
	return int32(magnitude), true
}

const (
	minInt32 = int32(-1 << 31)
	maxInt32 = int32(1<<31 - 1)
)

// isSpace matches C isspace over the ASCII range.
func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}
