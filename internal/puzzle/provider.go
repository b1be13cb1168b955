package puzzle

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/robalobadob/matchstick/internal/board"
	"github.com/robalobadob/matchstick/internal/equation"
	"github.com/robalobadob/matchstick/internal/solver"
)

// Hint sources.
const (
	SourceAI    = "ai"
	SourceLocal = "local"
)

const defaultHint = "Move one stick to make the equation true."

// Hint is the text shown to a player and where it came from.
type Hint struct {
	Text   string `json:"hint"`
	Source string `json:"source"`
}

// Provider puts the degraded-mode policy in front of the collaborators:
// Next and Hint always produce something playable.
type Provider struct {
	gen    Generator
	hinter Hinter
	logger zerolog.Logger
}

// NewProvider wires the collaborators. Either may be nil, in which case
// that path always degrades.
func NewProvider(gen Generator, hinter Hinter, logger zerolog.Logger) *Provider {
	return &Provider{gen: gen, hinter: hinter, logger: logger.With().Str("component", "puzzle").Logger()}
}

// Next returns a generated puzzle, or the fallback puzzle tagged with the
// reason generation could not be used.
func (p *Provider) Next(ctx context.Context) Puzzle {
	if p.gen == nil {
		return Fallback(ReasonNoCredentials)
	}
	pz, err := p.gen.Generate(ctx)
	if err != nil {
		p.logger.Warn().Err(err).Msg("generate failed, using fallback")
		return Fallback(Reason(err))
	}
	pz, err = Vet(ctx, pz)
	if err != nil {
		p.logger.Warn().Err(err).Str("equation", pz.Equation).Msg("generated puzzle rejected, using fallback")
		return Fallback(Reason(err))
	}
	return pz
}

// Hint asks the hint collaborator about current. Degraded puzzles and any
// collaborator failure fall back to the puzzle's own hint.
func (p *Provider) Hint(ctx context.Context, pz Puzzle, current string) Hint {
	local := Hint{Text: pz.Hint, Source: SourceLocal}
	if local.Text == "" {
		local.Text = defaultHint
	}
	if pz.Degraded() || p.hinter == nil {
		return local
	}
	text, err := p.hinter.Hint(ctx, HintRequest{Original: pz.Equation, Current: current})
	if err != nil {
		p.logger.Warn().Err(err).Msg("hint failed, using puzzle hint")
		return local
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return local
	}
	return Hint{Text: text, Source: SourceAI}
}

// Vet normalizes a generated puzzle and checks it is playable: the equation
// builds a board, is not already true, and is solvable within TargetMoves
// (clamped to 1..solver.MaxMoves).
func Vet(ctx context.Context, pz Puzzle) (Puzzle, error) {
	b, err := board.New(pz.Equation)
	if err != nil {
		return pz, fmt.Errorf("%w: %w", ErrInvalidPuzzle, err)
	}
	pz.Equation = b.Original()
	pz.Error = ""
	if equation.Valid(pz.Equation) {
		return pz, fmt.Errorf("%w: %q is already true", ErrInvalidPuzzle, pz.Equation)
	}
	if pz.TargetMoves < 1 {
		pz.TargetMoves = 1
	}
	if pz.TargetMoves > solver.MaxMoves {
		pz.TargetMoves = solver.MaxMoves
	}
	sols, err := solver.SolveBoard(ctx, b, pz.TargetMoves)
	if err != nil {
		return pz, err
	}
	if len(sols) == 0 {
		return pz, fmt.Errorf("%w: %q has no solution in %d move(s)", ErrInvalidPuzzle, pz.Equation, pz.TargetMoves)
	}
	if strings.TrimSpace(pz.Hint) == "" {
		pz.Hint = defaultHint
	}
	return pz, nil
}
