package expr

import (
	"errors"
	"testing"
)

func TestEvaluateArithmetic(t *testing.T) {
	cases := []struct {
		line string
		want int32
	}{
		{"2 + 3", 5},
		{"2+3", 5},
		{"  2   +   3 ", 5},
		{"10 - 4", 6},
		{"3 * -4", -12},
		{"-3 * -4", 12},
		{"0 / 5", 0},
		{"10 / 3", 3},
		{"10 % 3", 1},
		{"+4 + +5", 9},
		{"-12 - -5", -7},
		{"1000000 * 1000", 1000000000},
	}
	for _, tc := range cases {
		got, err := Evaluate(tc.line)
		if err != nil {
			t.Fatalf("Evaluate(%q): %v", tc.line, err)
		}
		if got != tc.want {
			t.Fatalf("Evaluate(%q) = %d, want %d", tc.line, got, tc.want)
		}
	}
}

func TestEvaluateTruncatesTowardZero(t *testing.T) {
	cases := []struct {
		line string
		want int32
	}{
		{"-7 / 2", -3},
		{"7 / -2", -3},
		{"-7 / -2", 3},
		{"-7 % 2", -1},
		{"7 % -2", 1},
		{"-7 % -2", -1},
	}
	for _, tc := range cases {
		got, err := Evaluate(tc.line)
		if err != nil {
			t.Fatalf("Evaluate(%q): %v", tc.line, err)
		}
		if got != tc.want {
			t.Fatalf("Evaluate(%q) = %d, want %d", tc.line, got, tc.want)
		}
	}
}

func TestEvaluateDivisionByZero(t *testing.T) {
	for _, line := range []string{"5 / 0", "5 % 0", "-5 / 0", "0 % 0"} {
		if _, err := Evaluate(line); !errors.Is(err, ErrDivisionByZero) {
			t.Fatalf("Evaluate(%q): expected ErrDivisionByZero, got %v", line, err)
		}
	}
}

func TestEvaluateInvalidExpressions(t *testing.T) {
	for _, line := range []string{
		"",
		"   ",
		"abc",
		"five plus three",
		"2",
		"2 +",
		"2 + ",
		"2 ? 3",
		"2 + 3 xyz",
		"2 3",
		"* 2 3",
	} {
		if _, err := Evaluate(line); !errors.Is(err, ErrInvalidExpression) {
			t.Fatalf("Evaluate(%q): expected ErrInvalidExpression, got %v", line, err)
		}
	}
}

func TestEvaluateWrapsOnInt32Overflow(t *testing.T) {
	got, err := Evaluate("2147483647 + 1")
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if got != minInt32 {
		t.Fatalf("expected wrap to %d, got %d", minInt32, got)
	}
}

func TestEvaluateSaturatesOversizedLiterals(t *testing.T) {
	got, err := Evaluate("99999999999 - 0")
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if got != maxInt32 {
		t.Fatalf("expected saturation to %d, got %d", maxInt32, got)
	}

	got, err = Evaluate("-99999999999 - 0")
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if got != minInt32 {
		t.Fatalf("expected saturation to %d, got %d", minInt32, got)
	}
}

func TestEvaluateIsIdempotent(t *testing.T) {
	const line = "10 / 3"
	first, err1 := Evaluate(line)
	second, err2 := Evaluate(line)
	if err1 != nil || err2 != nil {
		t.Fatalf("evaluate: %v / %v", err1, err2)
	}
	if first != second {
		t.Fatalf("re-evaluation diverged: %d vs %d", first, second)
	}
}
