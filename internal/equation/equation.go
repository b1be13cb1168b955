// Package equation decides whether a string like "0+4=4" is a true
// arithmetic identity.
//
// The grammar is deliberately small:
//
//	equation = side "=" side
//	side     = number { ("+" | "-") number }
//	number   = digit { digit }
//
// Sides are folded left to right over int64. There is no unary minus, so
// "-1+2=1" is rejected as malformed. A number longer than one digit may not
// start with 0: "01+3=4" is malformed too.
package equation

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	ErrNoEquals             = errors.New("equation: missing '='")
	ErrMultipleEquals       = errors.New("equation: more than one '='")
	ErrUnsupportedCharacter = errors.New("equation: unsupported character")
	ErrOverflow             = errors.New("equation: value out of range")
)

// SyntaxError reports a malformed side. Side is "left" or "right" when the
// error comes from Check, and empty from Evaluate.
type SyntaxError struct {
	Side string
	Pos  int
	Msg  string
}

func (e *SyntaxError) Error() string {
	if e.Side == "" {
		return fmt.Sprintf("equation: %s at %d", e.Msg, e.Pos)
	}
	return fmt.Sprintf("equation: %s side: %s at %d", e.Side, e.Msg, e.Pos)
}

// InequalityError means the equation parsed but the sides differ.
type InequalityError struct {
	Left, Right int64
}

func (e *InequalityError) Error() string {
	return fmt.Sprintf("equation: %d does not equal %d", e.Left, e.Right)
}

// Check returns nil when s is a well-formed, true equation.
func Check(s string) error {
	for i, r := range s {
		if !isDigit(r) && r != '+' && r != '-' && r != '=' {
			return fmt.Errorf("%w %q at %d", ErrUnsupportedCharacter, r, i)
		}
	}
	switch strings.Count(s, "=") {
	case 0:
		return ErrNoEquals
	case 1:
	default:
		return ErrMultipleEquals
	}

	left, right, _ := strings.Cut(s, "=")
	lv, err := evaluate(left, "left")
	if err != nil {
		return err
	}
	rv, err := evaluate(right, "right")
	if err != nil {
		return err
	}
	if lv != rv {
		return &InequalityError{Left: lv, Right: rv}
	}
	return nil
}

// Valid reports whether s is a true equation.
func Valid(s string) bool { return Check(s) == nil }

// Evaluate folds a single side (no '=') left to right.
func Evaluate(expr string) (int64, error) {
	for i, r := range expr {
		if !isDigit(r) && r != '+' && r != '-' {
			return 0, fmt.Errorf("%w %q at %d", ErrUnsupportedCharacter, r, i)
		}
	}
	return evaluate(expr, "")
}

func evaluate(expr, side string) (int64, error) {
	if expr == "" {
		return 0, &SyntaxError{Side: side, Pos: 0, Msg: "empty expression"}
	}

	var (
		total   int64
		op      byte = '+'
		i       int
		operand bool // true once at least one number has been read
	)
	for i < len(expr) {
		start := i
		for i < len(expr) && isDigit(rune(expr[i])) {
			i++
		}
		if start == i {
			if !operand {
				return 0, &SyntaxError{Side: side, Pos: i, Msg: "expected number"}
			}
			return 0, &SyntaxError{Side: side, Pos: i, Msg: "adjacent operators"}
		}
		if i-start > 1 && expr[start] == '0' {
			return 0, &SyntaxError{Side: side, Pos: start, Msg: "leading zero"}
		}
		n, err := parseNumber(expr[start:i])
		if err != nil {
			return 0, err
		}
		if total, err = apply(total, op, n); err != nil {
			return 0, err
		}
		operand = true

		if i == len(expr) {
			break
		}
		op = expr[i]
		i++
		if i == len(expr) {
			return 0, &SyntaxError{Side: side, Pos: i - 1, Msg: "trailing operator"}
		}
	}
	return total, nil
}

func parseNumber(digits string) (int64, error) {
	var n int64
	for i := 0; i < len(digits); i++ {
		d := int64(digits[i] - '0')
		if n > (math.MaxInt64-d)/10 {
			return 0, ErrOverflow
		}
		n = n*10 + d
	}
	return n, nil
}

func apply(total int64, op byte, n int64) (int64, error) {
	switch op {
	case '+':
		if total > math.MaxInt64-n {
			return 0, ErrOverflow
		}
		return total + n, nil
	default:
		if total < math.MinInt64+n {
			return 0, ErrOverflow
		}
		return total - n, nil
	}
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }
