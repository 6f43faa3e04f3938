package models

import "fmt"

const (
	BoardSize = 5
	ShipCells = 4
)

type Cell int

const (
	CellEmpty Cell = iota
	CellShip
	CellHit
	CellMiss
)

// Position is a board coordinate, x is the row and y the column. It travels
// on the wire as a two element array, [x, y].
type Position [2]int

func NewPosition(x, y int) Position {
	return Position{x, y}
}

func (p Position) X() int { return p[0] }
func (p Position) Y() int { return p[1] }

func (p Position) InBounds() bool {
	return p[0] >= 0 && p[0] < BoardSize && p[1] >= 0 && p[1] < BoardSize
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p[0], p[1])
}

type Board [BoardSize][BoardSize]Cell

func (b *Board) At(p Position) Cell {
	return b[p.X()][p.Y()]
}

// ValidPlacement reports whether positions are exactly ShipCells distinct,
// in-bounds, empty cells.
func (b *Board) ValidPlacement(positions []Position) bool {
	if len(positions) != ShipCells {
		return false
	}
	seen := make(map[Position]bool, len(positions))
	for _, p := range positions {
		if !p.InBounds() || seen[p] || b.At(p) != CellEmpty {
			return false
		}
		seen[p] = true
	}
	return true
}

func (b *Board) PlaceShips(positions []Position) error {
	if !b.ValidPlacement(positions) {
		return ErrInvalidPlacement
	}
	for _, p := range positions {
		b[p.X()][p.Y()] = CellShip
	}
	return nil
}

// Fire marks the target as hit or miss. Cells already fired on are rejected.
func (b *Board) Fire(p Position) (bool, error) {
	if !p.InBounds() {
		return false, ErrOutOfBounds
	}
	switch b.At(p) {
	case CellShip:
		b[p.X()][p.Y()] = CellHit
		return true, nil
	case CellEmpty:
		b[p.X()][p.Y()] = CellMiss
		return false, nil
	}
	return false, ErrAlreadyFired
}

func (b *Board) AllShipsSunk() bool {
	for _, row := range b {
		for _, cell := range row {
			if cell == CellShip {
				return false
			}
		}
	}
	return true
}
