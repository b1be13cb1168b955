// internal/segment/segment.go
//
// Segment codec for matchstick characters.
// Responsibilities:
//   - Describe the stick layout of every cell kind (digit, minus, plus, equals).
//   - Encode a character into its canonical set of active stick positions.
//   - Decode a cell's stick state back into a character, or report it unrecognized.
//
// Digit layout (seven-segment):
//
//	 --0--
//	|     |
//	1     2
//	|     |
//	 --3--
//	|     |
//	4     5
//	|     |
//	 --6--
//
// Operator cells carry their own small layouts and never share positions with digits.

package segment

import "sort"

// Kind identifies the layout a cell uses.
type Kind int

const (
	Digit  Kind = iota // seven positions, decoded through the digit table
	Minus              // [bar]
	Plus               // [vertical, horizontal]
	Equals             // [top, bottom]
)

// Digit stick positions.
const (
	Top = iota
	TopLeft
	TopRight
	Middle
	BottomLeft
	BottomRight
	Bottom
)

// Operator stick positions.
const (
	MinusBar = 0

	PlusVertical   = 0
	PlusHorizontal = 1

	EqualsTop    = 0
	EqualsBottom = 1
)

// Placeholder stands in for a cell that does not decode to any character.
const Placeholder = '?'

// digitTable is the shared digit segment map, kept in ascending character
// order so that Decode resolves any future collision to the first match.
// A digit cell lit only in the middle reads as a minus sign.
var digitTable = []struct {
	char rune
	on   []int
}{
	{'-', []int{Middle}},
	{'0', []int{Top, TopLeft, TopRight, BottomLeft, BottomRight, Bottom}},
	{'1', []int{TopRight, BottomRight}},
	{'2', []int{Top, TopRight, Middle, BottomLeft, Bottom}},
	{'3', []int{Top, TopRight, Middle, BottomRight, Bottom}},
	{'4', []int{TopLeft, TopRight, Middle, BottomRight}},
	{'5', []int{Top, TopLeft, Middle, BottomRight, Bottom}},
	{'6', []int{Top, TopLeft, Middle, BottomLeft, BottomRight, Bottom}},
	{'7', []int{Top, TopRight, BottomRight}},
	{'8', []int{Top, TopLeft, TopRight, Middle, BottomLeft, BottomRight, Bottom}},
	{'9', []int{Top, TopLeft, TopRight, Middle, BottomRight, Bottom}},
}

// Arity returns the number of stick positions a cell of kind k owns.
func (k Kind) Arity() int {
	switch k {
	case Digit:
		return 7
	case Minus:
		return 1
	case Plus, Equals:
		return 2
	default:
		return 0
	}
}

// IsOperator reports whether k is one of the operator layouts.
func (k Kind) IsOperator() bool { return k == Minus || k == Plus || k == Equals }

func (k Kind) String() string {
	switch k {
	case Digit:
		return "digit"
	case Minus:
		return "minus"
	case Plus:
		return "plus"
	case Equals:
		return "equals"
	default:
		return "unknown"
	}
}

// KindOf returns the cell kind used to display c.
// ok is false for characters outside 0-9, '+', '-', '='.
func KindOf(c rune) (k Kind, ok bool) {
	switch {
	case c >= '0' && c <= '9':
		return Digit, true
	case c == '-':
		return Minus, true
	case c == '+':
		return Plus, true
	case c == '=':
		return Equals, true
	}
	return 0, false
}

// Encode returns the sorted canonical stick positions for c.
// Unknown characters yield an empty set; use KindOf to validate input.
func Encode(c rune) []int {
	k, ok := KindOf(c)
	if !ok {
		return []int{}
	}
	if k != Digit {
		// Operators start with every slot of their own layout lit.
		out := make([]int, k.Arity())
		for i := range out {
			out[i] = i
		}
		return out
	}
	for _, e := range digitTable {
		if e.char == c {
			out := append([]int(nil), e.on...)
			sort.Ints(out)
			return out
		}
	}
	return []int{}
}

// Pattern returns the kind of c and its canonical stick state as a
// fixed-arity slice. ok is false for unsupported characters.
func Pattern(c rune) (k Kind, sticks []bool, ok bool) {
	k, ok = KindOf(c)
	if !ok {
		return 0, nil, false
	}
	sticks = make([]bool, k.Arity())
	for _, p := range Encode(c) {
		sticks[p] = true
	}
	return k, sticks, true
}

// Decode reads a cell's stick state as a character.
// ok is false when the state matches no character for that kind, or when
// the slice length does not match the kind's arity.
func Decode(sticks []bool, k Kind) (c rune, ok bool) {
	if len(sticks) != k.Arity() {
		return 0, false
	}
	switch k {
	case Digit:
		return decodeDigit(sticks)
	case Minus:
		if sticks[MinusBar] {
			return '-', true
		}
	case Plus:
		switch {
		case sticks[PlusVertical] && sticks[PlusHorizontal]:
			return '+', true
		case sticks[PlusHorizontal]:
			return '-', true
		}
	case Equals:
		switch {
		case sticks[EqualsTop] && sticks[EqualsBottom]:
			return '=', true
		case sticks[EqualsTop] || sticks[EqualsBottom]:
			return '-', true
		}
	}
	return 0, false
}

func decodeDigit(sticks []bool) (rune, bool) {
	lit := 0
	for _, on := range sticks {
		if on {
			lit++
		}
	}
	for _, e := range digitTable {
		if len(e.on) != lit {
			continue
		}
		match := true
		for _, p := range e.on {
			if !sticks[p] {
				match = false
				break
			}
		}
		if match {
			return e.char, true
		}
	}
	return 0, false
}
