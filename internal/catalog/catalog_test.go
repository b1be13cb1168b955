package catalog_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/matchstick/internal/catalog"
	"github.com/robalobadob/matchstick/internal/puzzle"
	"github.com/robalobadob/matchstick/internal/solver"
)

func TestEmbeddedCatalogLoads(t *testing.T) {
	require.NoError(t, catalog.Init())
	require.Greater(t, catalog.Len(), 0)

	first, err := catalog.At(0)
	require.NoError(t, err)
	assert.Equal(t, puzzle.FallbackEquation, first.Equation)
	assert.Equal(t, 1, first.TargetMoves)
}

func TestEveryPuzzleIsSolvable(t *testing.T) {
	for _, pz := range catalog.All() {
		t.Run(pz.Equation, func(t *testing.T) {
			sols, err := solver.Solve(context.Background(), pz.Equation, pz.TargetMoves)
			require.NoError(t, err)
			assert.NotEmpty(t, sols, "no solution within %d move(s)", pz.TargetMoves)
			assert.NotEmpty(t, pz.Hint)
		})
	}
}

func TestAtOutOfRange(t *testing.T) {
	_, err := catalog.At(-1)
	assert.ErrorIs(t, err, catalog.ErrIndexOutOfRange)
	_, err = catalog.At(catalog.Len())
	assert.ErrorIs(t, err, catalog.ErrIndexOutOfRange)
}

func TestAllReturnsCopy(t *testing.T) {
	all := catalog.All()
	all[0].Equation = "changed"
	first, err := catalog.At(0)
	require.NoError(t, err)
	assert.NotEqual(t, "changed", first.Equation)
}

func TestRandomIsFromCatalog(t *testing.T) {
	all := catalog.All()
	for i := 0; i < 10; i++ {
		assert.Contains(t, all, catalog.Random())
	}
}

func TestParse(t *testing.T) {
	got, err := catalog.Parse([]string{" 6 + 4 = 4 |1| hint "})
	require.NoError(t, err)
	assert.Equal(t, []puzzle.Puzzle{{Equation: "6+4=4", TargetMoves: 1, Hint: "hint"}}, got)

	bad := [][]string{
		{"6+4=4|1"},
		{"6*4=4|1|h"},
		{"0+4=4|1|h"},
		{"6+4=4|0|h"},
		{"6+4=4|3|h"},
		{"6+4=4|x|h"},
	}
	for _, lines := range bad {
		_, err := catalog.Parse(lines)
		assert.Error(t, err, lines[0])
	}
}
