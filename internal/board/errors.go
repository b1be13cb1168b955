package board

import "fmt"

// StickCountMismatchError means sticks were added or removed overall.
type StickCountMismatchError struct {
	Current, Baseline int
}

func (e *StickCountMismatchError) Error() string {
	return fmt.Sprintf("board: stick count %d does not match original %d", e.Current, e.Baseline)
}

// InvalidPatternError identifies the first cell whose sticks form no character.
type InvalidPatternError struct {
	Cell int
}

func (e *InvalidPatternError) Error() string {
	return fmt.Sprintf("board: cell %d does not form a valid character", e.Cell)
}

// ArithmeticInvalidError means the board decoded to Equation but it is not
// a true equation. Cause carries the equation package's reason, which may
// be a syntax error or an inequality.
type ArithmeticInvalidError struct {
	Equation string
	Cause    error
}

func (e *ArithmeticInvalidError) Error() string {
	return fmt.Sprintf("board: %q is not a valid equation: %v", e.Equation, e.Cause)
}

func (e *ArithmeticInvalidError) Unwrap() error { return e.Cause }
