package board_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/robalobadob/matchstick/internal/board"
	"github.com/robalobadob/matchstick/internal/equation"
	"github.com/robalobadob/matchstick/internal/segment"
)

// BoardSuite exercises a fresh "6+4=4" board per test.
type BoardSuite struct {
	suite.Suite
	b *board.Board
}

func (s *BoardSuite) SetupTest() {
	b, err := board.New("6+4=4")
	s.Require().NoError(err)
	s.b = b
}

func TestBoardSuite(t *testing.T) {
	suite.Run(t, new(BoardSuite))
}

// TestBaseline: 6 + plus(2) + 4 + equals(2) + 4.
func (s *BoardSuite) TestBaseline() {
	want := len(segment.Encode('6')) + len(segment.Encode('+')) + len(segment.Encode('4')) +
		len(segment.Encode('=')) + len(segment.Encode('4'))
	s.Equal(18, want)
	s.Equal(want, s.b.Baseline())
	s.Equal(want, s.b.StickCount())
	s.Equal(5, s.b.Len())
	s.Equal("6+4=4", s.b.Original())
}

func (s *BoardSuite) TestCellsLayout() {
	cells := s.b.Cells()
	kinds := []segment.Kind{segment.Digit, segment.Plus, segment.Digit, segment.Equals, segment.Digit}
	for i, c := range cells {
		s.Equal(kinds[i], c.Kind, "cell %d", i)
		s.Len(c.Sticks, c.Kind.Arity(), "cell %d", i)
	}

	// Cells returns copies.
	cells[0].Sticks[segment.Top] = false
	s.Equal(18, s.b.StickCount())
}

// TestToggleConservation: each toggle moves the count by exactly one and a
// double toggle restores it.
func (s *BoardSuite) TestToggleConservation() {
	for ci, c := range s.b.Cells() {
		for p := range c.Sticks {
			before := s.b.StickCount()
			s.Require().NoError(s.b.Toggle(ci, p))
			after := s.b.StickCount()
			s.Equal(1, abs(after-before), "cell %d stick %d", ci, p)
			s.Require().NoError(s.b.Toggle(ci, p))
			s.Equal(before, s.b.StickCount(), "cell %d stick %d", ci, p)
		}
	}
}

func (s *BoardSuite) TestToggleOutOfRange() {
	s.ErrorIs(s.b.Toggle(-1, 0), board.ErrCellOutOfRange)
	s.ErrorIs(s.b.Toggle(5, 0), board.ErrCellOutOfRange)
	s.ErrorIs(s.b.Toggle(0, 7), board.ErrStickOutOfRange)
	s.ErrorIs(s.b.Toggle(1, 2), board.ErrStickOutOfRange)
	s.ErrorIs(s.b.Toggle(2, -1), board.ErrStickOutOfRange)
	s.Equal(18, s.b.StickCount())
}

// TestVerifySolved: move the 6's middle stick to its top-right → 0+4=4.
func (s *BoardSuite) TestVerifySolved() {
	s.Require().NoError(s.b.Toggle(0, segment.Middle))
	s.Require().NoError(s.b.Toggle(0, segment.TopRight))

	eq, err := s.b.Verify()
	s.Require().NoError(err)
	s.Equal("0+4=4", eq)
}

func (s *BoardSuite) TestVerifyUnsolvedOriginal() {
	eq, err := s.b.Verify()
	var ae *board.ArithmeticInvalidError
	s.Require().True(errors.As(err, &ae))
	s.Equal("6+4=4", ae.Equation)
	s.Equal("6+4=4", eq)

	var ineq *equation.InequalityError
	s.True(errors.As(err, &ineq))
}

// TestVerifyCountFirst: a count mismatch wins even when a cell is also
// undecodable.
func (s *BoardSuite) TestVerifyCountFirst() {
	s.Require().NoError(s.b.Toggle(0, segment.Top))

	_, err := s.b.Verify()
	var me *board.StickCountMismatchError
	s.Require().True(errors.As(err, &me))
	s.Equal(17, me.Current)
	s.Equal(18, me.Baseline)

	var pe *board.InvalidPatternError
	s.False(errors.As(err, &pe))
}

func (s *BoardSuite) TestVerifyInvalidPattern() {
	s.Require().NoError(s.b.Toggle(0, segment.Top))
	s.Require().NoError(s.b.Toggle(2, segment.Top))

	_, err := s.b.Verify()
	var pe *board.InvalidPatternError
	s.Require().True(errors.As(err, &pe))
	s.Equal(0, pe.Cell)
}

// TestPlusVerticalOnlyIsInvalid: dropping the plus's horizontal stick
// leaves an unrecognized operator, not a minus.
func (s *BoardSuite) TestPlusVerticalOnlyIsInvalid() {
	s.Require().NoError(s.b.Toggle(1, segment.PlusHorizontal))
	s.Require().NoError(s.b.Toggle(0, segment.TopRight))

	_, err := s.b.Verify()
	var pe *board.InvalidPatternError
	s.Require().True(errors.As(err, &pe))
	s.Equal(1, pe.Cell)
}

func (s *BoardSuite) TestSnapshot() {
	s.Equal("6+4=4", s.b.Snapshot())
	s.Require().NoError(s.b.Toggle(0, segment.Top))
	s.Require().NoError(s.b.Toggle(3, segment.EqualsTop))
	s.Equal("?+4-4", s.b.Snapshot())
}

func (s *BoardSuite) TestClone() {
	c := s.b.Clone()
	s.Require().NoError(c.Toggle(0, segment.Top))
	s.Equal(18, s.b.StickCount())
	s.Equal(17, c.StickCount())
}

func (s *BoardSuite) TestJSON() {
	s.Require().NoError(s.b.Toggle(0, segment.Middle))
	raw, err := json.Marshal(s.b)
	s.Require().NoError(err)

	var back board.Board
	s.Require().NoError(json.Unmarshal(raw, &back))
	s.Equal(s.b.Cells(), back.Cells())
	s.Equal(18, back.Baseline())
	s.Equal(17, back.StickCount())
}

func TestNewErrors(t *testing.T) {
	_, err := board.New("")
	require.ErrorIs(t, err, board.ErrEmptyEquation)

	_, err = board.New(" \t ")
	require.ErrorIs(t, err, board.ErrEmptyEquation)

	_, err = board.New("2*3=6")
	require.ErrorIs(t, err, board.ErrUnsupportedCharacter)
}

func TestNewStripsWhitespace(t *testing.T) {
	b, err := board.New(" 6 + 4 = 4 ")
	require.NoError(t, err)
	require.Equal(t, 5, b.Len())
	require.Equal(t, "6+4=4", b.Original())
}

// TestPlusBecomesMinus: 3+5=4 → move the plus's vertical stick to the
// 3's top-left → 9-5=4.
func TestPlusBecomesMinus(t *testing.T) {
	b, err := board.New("3+5=4")
	require.NoError(t, err)
	require.NoError(t, b.Toggle(1, segment.PlusVertical))
	require.NoError(t, b.Toggle(0, segment.TopLeft))

	eq, err := b.Verify()
	require.NoError(t, err)
	require.Equal(t, "9-5=4", eq)
}

// TestMinusCannotGrow: a minus cell has a single slot, so it can never
// become a plus or an equals sign.
func TestMinusCannotGrow(t *testing.T) {
	b, err := board.New("1-1=2")
	require.NoError(t, err)
	require.ErrorIs(t, b.Toggle(1, 1), board.ErrStickOutOfRange)
}

func TestMalformedIsArithmeticInvalid(t *testing.T) {
	// Halve the equals sign into a minus and give its stick to the 1 → 7.
	b, err := board.New("1=1")
	require.NoError(t, err)
	require.NoError(t, b.Toggle(1, segment.EqualsBottom))
	require.NoError(t, b.Toggle(0, segment.Top))

	eq, err := b.Verify()
	var ae *board.ArithmeticInvalidError
	require.True(t, errors.As(err, &ae))
	require.Equal(t, "7-1", eq)
	require.ErrorIs(t, err, equation.ErrNoEquals)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
