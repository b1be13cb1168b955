// internal/game/engine.go
//
// Core game engine for a single matchstick session.
// Responsibilities:
//   - Create new games from a vetted puzzle.
//   - Apply stick toggles and verify requests, counting both.
//   - Track state transitions: playing → won (solved) / lost (gave up).
//
// Notes:
//   - Every exported method takes the game's mutex, so one *Game may be
//     shared by concurrent handlers.
//   - randomID() is a compact hex identifier for correlating server state.
package game

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/robalobadob/matchstick/internal/board"
	"github.com/robalobadob/matchstick/internal/puzzle"
	"github.com/robalobadob/matchstick/internal/solver"
)

// New constructs a game for pz. The puzzle's equation must build a board.
func New(pz puzzle.Puzzle) (*Game, error) {
	b, err := board.New(pz.Equation)
	if err != nil {
		return nil, fmt.Errorf("new game: %w", err)
	}
	return &Game{
		ID:        randomID(),
		Puzzle:    pz,
		Board:     b,
		Status:    StatusPlaying,
		StartedAt: time.Now().UTC(),
	}, nil
}

// Toggle flips one stick and returns the updated view.
func (g *Game) Toggle(cell, stick int) (View, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.Status != StatusPlaying {
		return g.view(), ErrFinished
	}
	if err := g.Board.Toggle(cell, stick); err != nil {
		return g.view(), err
	}
	g.Toggles++
	return g.view(), nil
}

// Check verifies the board. A solved board moves the game to won.
// Verification failures are reported in the result, never as an error.
func (g *Game) Check() (CheckResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.Status != StatusPlaying {
		return g.result(nil, ""), ErrFinished
	}
	g.Checks++

	eq, err := g.Board.Verify()
	if err == nil {
		g.finish(StatusWon)
	}
	return g.result(err, eq), nil
}

func (g *Game) result(err error, eq string) CheckResult {
	res := CheckResult{
		Solved:   err == nil && eq != "",
		Equation: eq,
		Cell:     -1,
		Current:  g.Board.StickCount(),
		Baseline: g.Board.Baseline(),
		Status:   g.Status,
	}
	var (
		mismatch *board.StickCountMismatchError
		pattern  *board.InvalidPatternError
		arith    *board.ArithmeticInvalidError
	)
	switch {
	case errors.As(err, &mismatch):
		res.Reason = ReasonStickCount
	case errors.As(err, &pattern):
		res.Reason = ReasonPattern
		res.Cell = pattern.Cell
	case errors.As(err, &arith):
		res.Reason = ReasonArithmetic
	}
	return res
}

// GiveUp marks the game lost and returns the solutions to the original
// puzzle within its target moves.
func (g *Game) GiveUp(ctx context.Context) ([]solver.Solution, error) {
	g.mu.Lock()
	if g.Status != StatusPlaying {
		g.mu.Unlock()
		return nil, ErrFinished
	}
	g.finish(StatusLost)
	pz := g.Puzzle
	g.mu.Unlock()

	moves := pz.TargetMoves
	if moves < 1 {
		moves = 1
	}
	return solver.Solve(ctx, pz.Equation, moves)
}

// State returns a snapshot view of the game.
func (g *Game) State() View {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.view()
}

// Snapshot renders the board with '?' for undecodable cells.
func (g *Game) Snapshot() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.Board.Snapshot()
}

// Elapsed is the time from start to finish, or to now while playing.
func (g *Game) Elapsed() time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.FinishedAt != nil {
		return g.FinishedAt.Sub(g.StartedAt)
	}
	return time.Since(g.StartedAt)
}

func (g *Game) finish(s Status) {
	now := time.Now().UTC()
	g.Status = s
	g.FinishedAt = &now
}

func (g *Game) view() View {
	cells := g.Board.Cells()
	out := make([]CellView, len(cells))
	for i, c := range cells {
		out[i] = CellView{Kind: c.Kind.String(), Char: string(c.Char), Sticks: c.Sticks}
	}
	return View{
		ID:          g.ID,
		Cells:       out,
		Current:     g.Board.StickCount(),
		Baseline:    g.Board.Baseline(),
		TargetMoves: g.Puzzle.TargetMoves,
		Degraded:    g.Puzzle.Error,
		Status:      g.Status,
		Checks:      g.Checks,
		Toggles:     g.Toggles,
		Daily:       g.Daily,
		Snapshot:    g.Board.Snapshot(),
	}
}

// randomID returns a compact 16‑hex‑char identifier.
// Collisions are extremely unlikely given crypto/rand entropy.
func randomID() string {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
