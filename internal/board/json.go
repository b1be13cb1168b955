package board

import (
	"encoding/json"
	"fmt"
	"unicode/utf8"

	"github.com/robalobadob/matchstick/internal/segment"
)

type wireCell struct {
	Char   string `json:"char"`
	Sticks []bool `json:"sticks"`
}

type wireBoard struct {
	Cells    []wireCell `json:"cells"`
	Baseline int        `json:"baseline"`
}

// MarshalJSON stores cells and the baseline so a board can live outside
// the process (see store.NewRedisStore). Kinds are derived from chars.
func (b *Board) MarshalJSON() ([]byte, error) {
	w := wireBoard{Cells: make([]wireCell, len(b.cells)), Baseline: b.baseline}
	for i, c := range b.cells {
		w.Cells[i] = wireCell{Char: string(c.Char), Sticks: c.Sticks}
	}
	return json.Marshal(w)
}

func (b *Board) UnmarshalJSON(data []byte) error {
	var w wireBoard
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if len(w.Cells) == 0 {
		return ErrEmptyEquation
	}
	cells := make([]Cell, len(w.Cells))
	for i, wc := range w.Cells {
		r, size := utf8.DecodeRuneInString(wc.Char)
		if size == 0 || size != len(wc.Char) {
			return fmt.Errorf("%w: cell %d char %q", ErrUnsupportedCharacter, i, wc.Char)
		}
		k, ok := segment.KindOf(r)
		if !ok {
			return fmt.Errorf("%w: cell %d char %q", ErrUnsupportedCharacter, i, wc.Char)
		}
		if len(wc.Sticks) != k.Arity() {
			return fmt.Errorf("board: cell %d has %d sticks, want %d", i, len(wc.Sticks), k.Arity())
		}
		cells[i] = Cell{Kind: k, Char: r, Sticks: append([]bool(nil), wc.Sticks...)}
	}
	b.cells = cells
	b.baseline = w.Baseline
	return nil
}
