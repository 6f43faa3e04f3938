// Package terminal shows a session on a text terminal and turns typed
// commands into session calls.
package terminal

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"sync"
	"text/tabwriter"

	"github.com/Lavizord/gridbattle/internal/models"
	"github.com/Lavizord/gridbattle/internal/session"
)

// View writes every change to out as it happens.
type View struct {
	mu       sync.Mutex
	out      io.Writer
	boards   map[session.BoardKind][]session.RenderedCell
	activate func(kind session.BoardKind, x, y int)
}

func NewView(out io.Writer) *View {
	return &View{out: out, boards: make(map[session.BoardKind][]session.RenderedCell)}
}

func (v *View) Render(kind session.BoardKind, cells []session.RenderedCell) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.boards[kind] = cells
	fmt.Fprintf(v.out, "%s board\n%s", kind, FormatBoard(cells))
}

func (v *View) SetStatus(text string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	fmt.Fprintf(v.out, "status: %s\n", text)
}

func (v *View) SetStartVisible(visible bool) {
	if !visible {
		return
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	fmt.Fprintln(v.out, "type 'start' to begin the game")
}

func (v *View) Alert(text string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	fmt.Fprintf(v.out, "! %s\n", text)
}

func (v *View) OnCellActivated(fn func(kind session.BoardKind, x, y int)) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.activate = fn
}

// Activate reports a chosen cell to the registered callback. Cells that are
// not interactive are ignored.
func (v *View) Activate(kind session.BoardKind, x, y int) bool {
	v.mu.Lock()
	fn := v.activate
	interactive := false
	for _, c := range v.boards[kind] {
		if c.X == x && c.Y == y {
			interactive = c.Interactive
		}
	}
	v.mu.Unlock()

	if fn == nil || !interactive {
		return false
	}
	fn(kind, x, y)
	return true
}

// Show prints both boards again.
func (v *View) Show() {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, kind := range []session.BoardKind{session.OwnBoard, session.OpponentBoard} {
		if cells, ok := v.boards[kind]; ok {
			fmt.Fprintf(v.out, "%s board\n%s", kind, FormatBoard(cells))
		}
	}
}

// FormatBoard lays cells out as a grid with row and column numbers.
func FormatBoard(cells []session.RenderedCell) string {
	var grid [models.BoardSize][models.BoardSize]string
	for _, c := range cells {
		if c.X < 0 || c.X >= models.BoardSize || c.Y < 0 || c.Y >= models.BoardSize {
			continue
		}
		grid[c.X][c.Y] = c.Mark.Symbol()
	}

	var buffer bytes.Buffer
	tabWriter := tabwriter.NewWriter(&buffer, 3, 0, 1, ' ', 0)

	// Column numbers on the first line
	fmt.Fprint(tabWriter, "\t")
	for column := 0; column < models.BoardSize; column++ {
		fmt.Fprint(tabWriter, strconv.Itoa(column)+"\t")
	}
	fmt.Fprint(tabWriter, "\n")

	for row := 0; row < models.BoardSize; row++ {
		fmt.Fprint(tabWriter, strconv.Itoa(row)+"\t")
		for column := 0; column < models.BoardSize; column++ {
			symbol := grid[row][column]
			if symbol == "" {
				symbol = "~"
			}
			fmt.Fprint(tabWriter, symbol+"\t")
		}
		fmt.Fprint(tabWriter, "\n")
	}
	tabWriter.Flush()
	return buffer.String()
}
