// internal/catalog/catalog.go
//
// Built-in puzzle catalog.
// Responsibilities:
//   - Parse the embedded puzzles.txt (equation|moves|hint) once (sync.Once).
//   - Expose the list for the daily challenge and matchctl.
//   - Pick a random entry for offline play.
//
// Lines are validated on load: the equation must build a board, must not
// already be true, and moves must be within 1..solver.MaxMoves.

package catalog

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"sync"

	"github.com/robalobadob/matchstick/assets"
	"github.com/robalobadob/matchstick/internal/board"
	"github.com/robalobadob/matchstick/internal/equation"
	"github.com/robalobadob/matchstick/internal/puzzle"
	"github.com/robalobadob/matchstick/internal/solver"
)

var ErrIndexOutOfRange = errors.New("catalog: index out of range")

var (
	loadOnce sync.Once
	puzzles  []puzzle.Puzzle
	loadErr  error
)

func load() {
	lines, err := assets.PuzzleLines()
	if err != nil {
		loadErr = fmt.Errorf("catalog: read: %w", err)
		return
	}
	puzzles, loadErr = Parse(lines)
	if loadErr == nil && len(puzzles) == 0 {
		loadErr = errors.New("catalog: no puzzles")
	}
}

// Init loads the catalog and reports any load error. Other accessors call
// it implicitly.
func Init() error {
	loadOnce.Do(load)
	return loadErr
}

// Parse converts equation|moves|hint lines into puzzles.
func Parse(lines []string) ([]puzzle.Puzzle, error) {
	out := make([]puzzle.Puzzle, 0, len(lines))
	for i, line := range lines {
		parts := strings.SplitN(line, "|", 3)
		if len(parts) != 3 {
			return nil, fmt.Errorf("catalog: line %d: want equation|moves|hint", i+1)
		}
		b, err := board.New(parts[0])
		if err != nil {
			return nil, fmt.Errorf("catalog: line %d: %w", i+1, err)
		}
		eq := b.Original()
		if equation.Valid(eq) {
			return nil, fmt.Errorf("catalog: line %d: %q is already true", i+1, eq)
		}
		moves, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil || moves < 1 || moves > solver.MaxMoves {
			return nil, fmt.Errorf("catalog: line %d: moves must be 1..%d", i+1, solver.MaxMoves)
		}
		out = append(out, puzzle.Puzzle{Equation: eq, TargetMoves: moves, Hint: strings.TrimSpace(parts[2])})
	}
	return out, nil
}

// All returns a copy of every catalog puzzle.
func All() []puzzle.Puzzle {
	loadOnce.Do(load)
	return append([]puzzle.Puzzle(nil), puzzles...)
}

// Len returns the number of puzzles.
func Len() int {
	loadOnce.Do(load)
	return len(puzzles)
}

// At returns puzzle i.
func At(i int) (puzzle.Puzzle, error) {
	loadOnce.Do(load)
	if i < 0 || i >= len(puzzles) {
		return puzzle.Puzzle{}, fmt.Errorf("%w: %d", ErrIndexOutOfRange, i)
	}
	return puzzles[i], nil
}

// Random returns a uniformly chosen puzzle, or the fallback puzzle if the
// catalog is empty.
func Random() puzzle.Puzzle {
	loadOnce.Do(load)
	if len(puzzles) == 0 {
		return puzzle.Fallback("")
	}
	n, _ := rand.Int(rand.Reader, big.NewInt(int64(len(puzzles))))
	return puzzles[n.Int64()]
}
