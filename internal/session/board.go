package session

import "github.com/Lavizord/gridbattle/internal/models"

// BoardKind tells the player's own board from the one they fire at.
type BoardKind int

const (
	OwnBoard BoardKind = iota
	OpponentBoard
)

func (k BoardKind) String() string {
	if k == OwnBoard {
		return "own"
	}
	return "opponent"
}

// Mark is what a cell shows. It is display state only; the server decides
// hits and misses.
type Mark int

const (
	MarkNone Mark = iota
	MarkShip
	MarkPending
	MarkHit
	MarkMiss
)

// Symbol is the one-character face of a mark.
func (m Mark) Symbol() string {
	switch m {
	case MarkShip:
		return "S"
	case MarkPending:
		return "?"
	case MarkHit:
		return "X"
	case MarkMiss:
		return "O"
	}
	return ""
}

type RenderedCell struct {
	X           int
	Y           int
	Mark        Mark
	Interactive bool
}

type board struct {
	marks    [models.BoardSize][models.BoardSize]Mark
	disabled bool
}

func (b *board) at(p models.Position) Mark {
	return b.marks[p.X()][p.Y()]
}

func (b *board) set(p models.Position, m Mark) {
	b.marks[p.X()][p.Y()] = m
}

func (b *board) reset() {
	*b = board{}
}

// render lists every cell once, row by row.
func (b *board) render() []RenderedCell {
	cells := make([]RenderedCell, 0, models.BoardSize*models.BoardSize)
	for x := 0; x < models.BoardSize; x++ {
		for y := 0; y < models.BoardSize; y++ {
			cells = append(cells, RenderedCell{X: x, Y: y, Mark: b.marks[x][y], Interactive: !b.disabled})
		}
	}
	return cells
}
