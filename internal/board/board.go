// internal/board/board.go
//
// Board evaluator: owns the mutable stick state of one puzzle.
// Responsibilities:
//   - Build one cell per non-whitespace character of an equation.
//   - Toggle single sticks and report current/baseline stick counts.
//   - Verify a board: conservation first, then decoding, then arithmetic.
//
// A Board is not safe for concurrent use; callers that share one across
// goroutines must serialize access (see internal/game).

package board

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/robalobadob/matchstick/internal/equation"
	"github.com/robalobadob/matchstick/internal/segment"
)

var (
	ErrEmptyEquation        = errors.New("board: empty equation")
	ErrUnsupportedCharacter = errors.New("board: unsupported character")
	ErrCellOutOfRange       = errors.New("board: cell index out of range")
	ErrStickOutOfRange      = errors.New("board: stick index out of range")
)

// Cell is one character slot on the board.
type Cell struct {
	Kind   segment.Kind `json:"kind"`
	Char   rune         `json:"char"`   // character the cell was built from
	Sticks []bool       `json:"sticks"` // indexed by segment position; len == Kind.Arity()
}

func (c Cell) clone() Cell {
	c.Sticks = append([]bool(nil), c.Sticks...)
	return c
}

func (c Cell) lit() int {
	n := 0
	for _, on := range c.Sticks {
		if on {
			n++
		}
	}
	return n
}

// Board is an ordered row of cells plus the stick count captured when it
// was built. Cell order is reading order and never changes.
type Board struct {
	cells    []Cell
	baseline int
}

// New builds a board from an equation such as "6+4=4". Whitespace is
// ignored; any character other than 0-9, '+', '-', '=' is rejected.
func New(eq string) (*Board, error) {
	b := &Board{}
	for i, r := range eq {
		if unicode.IsSpace(r) {
			continue
		}
		k, sticks, ok := segment.Pattern(r)
		if !ok {
			return nil, fmt.Errorf("%w %q at %d", ErrUnsupportedCharacter, r, i)
		}
		b.cells = append(b.cells, Cell{Kind: k, Char: r, Sticks: sticks})
	}
	if len(b.cells) == 0 {
		return nil, ErrEmptyEquation
	}
	b.baseline = b.StickCount()
	return b, nil
}

// Len returns the number of cells.
func (b *Board) Len() int { return len(b.cells) }

// Cells returns a copy of the cells for display.
func (b *Board) Cells() []Cell {
	out := make([]Cell, len(b.cells))
	for i, c := range b.cells {
		out[i] = c.clone()
	}
	return out
}

// Toggle flips one stick. Out-of-range indices leave the board unchanged.
func (b *Board) Toggle(cell, stick int) error {
	if cell < 0 || cell >= len(b.cells) {
		return fmt.Errorf("%w: %d", ErrCellOutOfRange, cell)
	}
	c := &b.cells[cell]
	if stick < 0 || stick >= len(c.Sticks) {
		return fmt.Errorf("%w: cell %d has %d sticks, got %d", ErrStickOutOfRange, cell, len(c.Sticks), stick)
	}
	c.Sticks[stick] = !c.Sticks[stick]
	return nil
}

// StickCount sums the active sticks across all cells. It is recomputed on
// every call so it always reflects the latest toggles.
func (b *Board) StickCount() int {
	n := 0
	for _, c := range b.cells {
		n += c.lit()
	}
	return n
}

// Baseline is the stick count the board started with.
func (b *Board) Baseline() int { return b.baseline }

// Original returns the equation the board was built from, without whitespace.
func (b *Board) Original() string {
	var sb strings.Builder
	for _, c := range b.cells {
		sb.WriteRune(c.Char)
	}
	return sb.String()
}

// Snapshot decodes every cell, writing segment.Placeholder for cells that
// do not form a character.
func (b *Board) Snapshot() string {
	var sb strings.Builder
	for _, c := range b.cells {
		if r, ok := segment.Decode(c.Sticks, c.Kind); ok {
			sb.WriteRune(r)
		} else {
			sb.WriteRune(segment.Placeholder)
		}
	}
	return sb.String()
}

// Verify reports whether the board is solved. The checks run in order and
// stop at the first failure:
//
//  1. stick count equals the baseline (*StickCountMismatchError)
//  2. every cell decodes to a character (*InvalidPatternError)
//  3. the decoded string is a true equation (*ArithmeticInvalidError)
//
// On success the reconstructed equation is returned with a nil error.
func (b *Board) Verify() (string, error) {
	if cur := b.StickCount(); cur != b.baseline {
		return "", &StickCountMismatchError{Current: cur, Baseline: b.baseline}
	}

	var sb strings.Builder
	for i, c := range b.cells {
		r, ok := segment.Decode(c.Sticks, c.Kind)
		if !ok {
			return "", &InvalidPatternError{Cell: i}
		}
		sb.WriteRune(r)
	}
	eq := sb.String()

	if err := equation.Check(eq); err != nil {
		return eq, &ArithmeticInvalidError{Equation: eq, Cause: err}
	}
	return eq, nil
}

// Clone returns an independent copy of the board.
func (b *Board) Clone() *Board {
	return &Board{cells: b.Cells(), baseline: b.baseline}
}
