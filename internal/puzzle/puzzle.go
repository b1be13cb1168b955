// internal/puzzle/puzzle.go
//
// Puzzle records and the collaborator ports behind them.
// Responsibilities:
//   - Puzzle: the immutable equation/moves/hint record handed to a board.
//   - Fallback: the built-in puzzle used whenever generation is degraded.
//   - Generator / Hinter: ports implemented by the AI client (internal/llm).
//   - Reason: maps collaborator errors to the short degraded-mode reasons
//     shown to players.

package puzzle

import (
	"context"
	"errors"
)

// Fallback puzzle constants.
const (
	FallbackEquation = "6+4=4"
	FallbackMoves    = 1
	FallbackHint     = "Try turning the 6 into a 0."
)

// Degraded-mode reasons.
const (
	ReasonNoCredentials    = "API Key Not Found"
	ReasonPermissionDenied = "API Key Permission Denied"
	ReasonUnavailable      = "API Connection Failed"
	ReasonUpstream         = "API Request Failed"
	ReasonInvalidPuzzle    = "Generated Puzzle Unusable"
	ReasonUnknown          = "Puzzle Generation Failed"
)

var (
	ErrNoCredentials    = errors.New("puzzle: no credentials configured")
	ErrPermissionDenied = errors.New("puzzle: credentials rejected (403)")
	ErrUnavailable      = errors.New("puzzle: service unreachable")
	ErrUpstream         = errors.New("puzzle: upstream failure")
	ErrInvalidPuzzle    = errors.New("puzzle: unusable puzzle")
)

// Puzzle is one playable equation. A non-empty Error marks a puzzle that
// was substituted because generation failed.
type Puzzle struct {
	Equation    string `json:"originalEquation"`
	TargetMoves int    `json:"targetMoves"`
	Hint        string `json:"hint"`
	Error       string `json:"error,omitempty"`
}

// Degraded reports whether the puzzle is a fallback.
func (p Puzzle) Degraded() bool { return p.Error != "" }

// Fallback returns the built-in puzzle tagged with reason.
func Fallback(reason string) Puzzle {
	return Puzzle{
		Equation:    FallbackEquation,
		TargetMoves: FallbackMoves,
		Hint:        FallbackHint,
		Error:       reason,
	}
}

// HintRequest carries the original equation and the player's current board,
// rendered with '?' for cells that do not form a character.
type HintRequest struct {
	Original string
	Current  string
}

// Generator supplies new puzzles.
type Generator interface {
	Generate(ctx context.Context) (Puzzle, error)
}

// Hinter supplies a short progressive hint for a board in progress.
type Hinter interface {
	Hint(ctx context.Context, req HintRequest) (string, error)
}

// Reason maps err to a player-facing degraded-mode reason. The reason is
// always one of the fixed Reason constants; details belong in the log.
func Reason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNoCredentials):
		return ReasonNoCredentials
	case errors.Is(err, ErrPermissionDenied):
		return ReasonPermissionDenied
	case errors.Is(err, ErrUnavailable):
		return ReasonUnavailable
	case errors.Is(err, ErrUpstream):
		return ReasonUpstream
	case errors.Is(err, ErrInvalidPuzzle):
		return ReasonInvalidPuzzle
	default:
		return ReasonUnknown
	}
}
