// internal/game/types.go
//
// Core type definitions for matchstick game sessions.
// Defines:
//   - Status: playing/won/lost.
//   - Game: state for a single in-progress or finished session.
//   - CheckResult / View: what handlers send back to the player.

package game

import (
	"errors"
	"sync"
	"time"

	"github.com/robalobadob/matchstick/internal/board"
	"github.com/robalobadob/matchstick/internal/puzzle"
)

// Status is the coarse lifecycle of a game.
type Status string

const (
	StatusPlaying Status = "playing"
	StatusWon     Status = "won"
	StatusLost    Status = "lost"
)

// Check failure reasons, in the order Verify checks them.
const (
	ReasonStickCount = "stick_count_mismatch"
	ReasonPattern    = "invalid_pattern"
	ReasonArithmetic = "arithmetic_invalid"
)

var ErrFinished = errors.New("game finished")

// Game holds the state of a single matchstick session. The mutex guards
// every field; use the methods rather than touching fields directly once a
// game is shared.
type Game struct {
	mu sync.Mutex

	ID         string        `json:"id"`
	Puzzle     puzzle.Puzzle `json:"puzzle"`
	Board      *board.Board  `json:"board"`
	Checks     int           `json:"checks"`  // verify requests so far
	Toggles    int           `json:"toggles"` // successful stick toggles
	Status     Status        `json:"status"`
	Daily      string        `json:"daily,omitempty"` // YYYY-MM-DD for daily-challenge games
	DailyIndex int           `json:"dailyIndex,omitempty"`
	StartedAt  time.Time     `json:"startedAt"`
	FinishedAt *time.Time    `json:"finishedAt,omitempty"`
}

// CheckResult is the outcome of one verify request. Cell is only meaningful
// for ReasonPattern and is -1 otherwise.
type CheckResult struct {
	Solved   bool   `json:"solved"`
	Reason   string `json:"reason,omitempty"`
	Equation string `json:"equation,omitempty"`
	Cell     int    `json:"cell"`
	Current  int    `json:"current"`
	Baseline int    `json:"baseline"`
	Status   Status `json:"state"`
}

// CellView is one cell as the display layer needs it.
type CellView struct {
	Kind   string `json:"kind"`
	Char   string `json:"char"`
	Sticks []bool `json:"sticks"`
}

// View is a read-only snapshot of a game for clients. It never carries a
// solution.
type View struct {
	ID          string     `json:"gameId"`
	Cells       []CellView `json:"cells"`
	Current     int        `json:"current"`
	Baseline    int        `json:"baseline"`
	TargetMoves int        `json:"targetMoves"`
	Degraded    string     `json:"degraded,omitempty"`
	Status      Status     `json:"state"`
	Checks      int        `json:"checks"`
	Toggles     int        `json:"toggles"`
	Daily       string     `json:"daily,omitempty"`
	Snapshot    string     `json:"snapshot"`
}
