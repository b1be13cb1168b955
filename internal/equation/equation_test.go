package equation_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/matchstick/internal/equation"
)

func TestValid(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"6+4=4", false},
		{"0+4=4", true},
		{"6-2=4", true},
		{"1=2-1", true},
		{"==", false},
		{"1==2", false},
		{"1+=2", false},
		{"12+30=42", true},
		{"9-3-1=5", true},
		{"3=3", true},
		{"10-11=0", false},
		{"-1+2=1", false},
		{"1+2=-3", false},
		{"1+2", false},
		{"=1", false},
		{"1=", false},
		{"1*2=2", false},
		{"1 + 1=2", false},
		{"2**2=4", false},
		{"", false},
		{"01+3=4", false},
		{"00+4=4", false},
		{"08=8", false},
		{"0+4=04", false},
		{"10-10=0", true},
		{"0=0", true},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, equation.Valid(tc.in))
		})
	}
}

func TestCheckErrorKinds(t *testing.T) {
	require.ErrorIs(t, equation.Check("12"), equation.ErrNoEquals)
	require.ErrorIs(t, equation.Check("1=1=1"), equation.ErrMultipleEquals)
	require.ErrorIs(t, equation.Check("1x=1"), equation.ErrUnsupportedCharacter)
	require.ErrorIs(t, equation.Check("(1)=1"), equation.ErrUnsupportedCharacter)

	var ineq *equation.InequalityError
	require.True(t, errors.As(equation.Check("6+4=4"), &ineq))
	assert.Equal(t, int64(10), ineq.Left)
	assert.Equal(t, int64(4), ineq.Right)

	var syn *equation.SyntaxError
	require.True(t, errors.As(equation.Check("1+=2"), &syn))
	assert.Equal(t, "left", syn.Side)
	assert.Equal(t, "trailing operator", syn.Msg)

	require.True(t, errors.As(equation.Check("1=2--1"), &syn))
	assert.Equal(t, "right", syn.Side)
	assert.Equal(t, "adjacent operators", syn.Msg)

	require.True(t, errors.As(equation.Check("-1+2=1"), &syn))
	assert.Equal(t, "expected number", syn.Msg)

	require.True(t, errors.As(equation.Check("1=01"), &syn))
	assert.Equal(t, "right", syn.Side)
	assert.Equal(t, "leading zero", syn.Msg)

	require.True(t, errors.As(equation.Check("=5"), &syn))
	assert.Equal(t, "empty expression", syn.Msg)
}

func TestEvaluate(t *testing.T) {
	v, err := equation.Evaluate("10-3+5")
	require.NoError(t, err)
	assert.Equal(t, int64(12), v)

	v, err = equation.Evaluate("10+0")
	require.NoError(t, err)
	assert.Equal(t, int64(10), v)

	var syn *equation.SyntaxError
	_, err = equation.Evaluate("007")
	require.True(t, errors.As(err, &syn))
	assert.Equal(t, "leading zero", syn.Msg)
	assert.Equal(t, 0, syn.Pos)

	_, err = equation.Evaluate("1=1")
	assert.ErrorIs(t, err, equation.ErrUnsupportedCharacter)
}

func TestEvaluateOverflow(t *testing.T) {
	_, err := equation.Evaluate("99999999999999999999")
	assert.ErrorIs(t, err, equation.ErrOverflow)

	_, err = equation.Evaluate("9223372036854775807+1")
	assert.ErrorIs(t, err, equation.ErrOverflow)

	v, err := equation.Evaluate("9223372036854775807")
	require.NoError(t, err)
	assert.Equal(t, int64(9223372036854775807), v)
}
