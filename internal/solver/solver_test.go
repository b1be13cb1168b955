package solver_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/matchstick/internal/board"
	"github.com/robalobadob/matchstick/internal/segment"
	"github.com/robalobadob/matchstick/internal/solver"
)

func equations(sols []solver.Solution) []string {
	out := make([]string, len(sols))
	for i, s := range sols {
		out[i] = s.Equation
	}
	return out
}

func TestSolveOneMove(t *testing.T) {
	cases := map[string]string{
		"6+4=4": "0+4=4",
		"3+9=6": "3+5=8",
		"4+9=3": "4+5=9",
		"3-4=9": "9-4=5",
		"3+5=4": "9-5=4",
	}
	for in, want := range cases {
		t.Run(in, func(t *testing.T) {
			sols, err := solver.Solve(context.Background(), in, 1)
			require.NoError(t, err)
			require.NotEmpty(t, sols)
			assert.Contains(t, equations(sols), want)
			for _, s := range sols {
				assert.Equal(t, 1, s.Moves)
				assert.Len(t, s.Steps, 1)
			}
		})
	}
}

func TestSolveStepsReplay(t *testing.T) {
	sols, err := solver.Solve(context.Background(), "6+4=4", 1)
	require.NoError(t, err)

	for _, s := range sols {
		b, err := board.New("6+4=4")
		require.NoError(t, err)
		for _, m := range s.Steps {
			require.NoError(t, b.Toggle(m.From.Cell, m.From.Stick))
			require.NoError(t, b.Toggle(m.To.Cell, m.To.Stick))
		}
		eq, err := b.Verify()
		require.NoError(t, err)
		assert.Equal(t, s.Equation, eq)
	}
}

func TestSolveAlreadySolved(t *testing.T) {
	sols, err := solver.Solve(context.Background(), "0+4=4", 2)
	require.NoError(t, err)
	require.Len(t, sols, 1)
	assert.Equal(t, "0+4=4", sols[0].Equation)
	assert.Equal(t, 0, sols[0].Moves)
	assert.Empty(t, sols[0].Steps)
}

func TestSolveZeroMovesUnsolved(t *testing.T) {
	sols, err := solver.Solve(context.Background(), "6+4=4", 0)
	require.NoError(t, err)
	assert.Empty(t, sols)
}

func TestSolveDoesNotMutateBoard(t *testing.T) {
	b, err := board.New("6+4=4")
	require.NoError(t, err)
	require.NoError(t, b.Toggle(0, segment.Middle))

	_, err = solver.SolveBoard(context.Background(), b, 1)
	require.NoError(t, err)
	assert.Equal(t, 17, b.StickCount())
}

func TestSolveErrors(t *testing.T) {
	_, err := solver.Solve(context.Background(), "6*4=24", 1)
	assert.ErrorIs(t, err, board.ErrUnsupportedCharacter)

	_, err = solver.Solve(context.Background(), "6+4=4", -1)
	assert.ErrorIs(t, err, solver.ErrNegativeMoves)
}

func TestSolveCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := solver.Solve(ctx, "6+4=4", 2)
	assert.ErrorIs(t, err, context.Canceled)
}
