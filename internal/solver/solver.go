// internal/solver/solver.go
//
// Bounded move search over board states.
// Responsibilities:
//   - Enumerate single-stick moves (one active stick off, one inactive stick on).
//   - Breadth-first search up to MaxMoves, returning every distinct solved
//     equation reachable in the minimal number of moves.
//
// Used to vet generated puzzles, reveal answers on give-up, and by matchctl.

package solver

import (
	"context"
	"errors"
	"sort"

	"github.com/robalobadob/matchstick/internal/board"
)

// MaxMoves bounds the search depth. Two-move boards already branch into
// roughly 10^5 states for a five-character equation.
const MaxMoves = 2

var ErrNegativeMoves = errors.New("solver: moves must not be negative")

// Stick addresses one stick slot on a board.
type Stick struct {
	Cell  int `json:"cell"`
	Stick int `json:"stick"`
}

// Move relocates the stick at From to the empty slot To.
type Move struct {
	From Stick `json:"from"`
	To   Stick `json:"to"`
}

// Solution is one solved equation and the moves that reach it.
type Solution struct {
	Equation string `json:"equation"`
	Moves    int    `json:"moves"`
	Steps    []Move `json:"steps"`
}

type node struct {
	b     *board.Board
	steps []Move
}

// Solve builds a board from eq and searches it. See SolveBoard.
func Solve(ctx context.Context, eq string, maxMoves int) ([]Solution, error) {
	b, err := board.New(eq)
	if err != nil {
		return nil, err
	}
	return SolveBoard(ctx, b, maxMoves)
}

// SolveBoard searches from b's current state. maxMoves above MaxMoves is
// clamped. A board that already verifies yields a single zero-move
// solution. No solution within the bound yields an empty result and a nil
// error. The input board is not modified.
func SolveBoard(ctx context.Context, b *board.Board, maxMoves int) ([]Solution, error) {
	if maxMoves < 0 {
		return nil, ErrNegativeMoves
	}
	if maxMoves > MaxMoves {
		maxMoves = MaxMoves
	}

	start := b.Clone()
	frontier := []node{{b: start}}
	seen := map[string]struct{}{stateKey(start): {}}

	for depth := 0; ; depth++ {
		if found := solved(frontier, depth); len(found) > 0 {
			return found, nil
		}
		if depth == maxMoves {
			return nil, nil
		}

		var next []node
		for _, n := range frontier {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			on, off := slots(n.b)
			for _, from := range on {
				for _, to := range off {
					c := n.b.Clone()
					// Indices come from the board itself, so Toggle cannot fail.
					_ = c.Toggle(from.Cell, from.Stick)
					_ = c.Toggle(to.Cell, to.Stick)
					k := stateKey(c)
					if _, dup := seen[k]; dup {
						continue
					}
					seen[k] = struct{}{}
					steps := append(append([]Move(nil), n.steps...), Move{From: from, To: to})
					next = append(next, node{b: c, steps: steps})
				}
			}
		}
		if len(next) == 0 {
			return nil, nil
		}
		frontier = next
	}
}

// solved collects the verified equations in frontier, one per distinct
// equation, sorted for stable output.
func solved(frontier []node, depth int) []Solution {
	byEq := map[string]Solution{}
	for _, n := range frontier {
		eq, err := n.b.Verify()
		if err != nil {
			continue
		}
		if _, ok := byEq[eq]; !ok {
			byEq[eq] = Solution{Equation: eq, Moves: depth, Steps: n.steps}
		}
	}
	out := make([]Solution, 0, len(byEq))
	for _, s := range byEq {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Equation < out[j].Equation })
	return out
}

// slots splits a board's stick slots into active and inactive.
func slots(b *board.Board) (on, off []Stick) {
	for ci, c := range b.Cells() {
		for p, lit := range c.Sticks {
			if lit {
				on = append(on, Stick{Cell: ci, Stick: p})
			} else {
				off = append(off, Stick{Cell: ci, Stick: p})
			}
		}
	}
	return on, off
}

func stateKey(b *board.Board) string {
	var buf []byte
	for _, c := range b.Cells() {
		for _, lit := range c.Sticks {
			if lit {
				buf = append(buf, '1')
			} else {
				buf = append(buf, '0')
			}
		}
		buf = append(buf, '|')
	}
	return string(buf)
}
