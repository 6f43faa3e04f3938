package terminal

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Lavizord/gridbattle/internal/session"
)

// Commands is the part of a session the prompt drives directly. Board cells
// go through the View instead.
type Commands interface {
	Register(ctx context.Context, username string) error
	Login(ctx context.Context, username string) error
	CreateRoom(ctx context.Context) error
	JoinRoom(ctx context.Context, roomID int64) error
	StartGame(ctx context.Context) error
}

const helpText = `commands:
  register <name>   create an account and log in
  login <name>      log in
  create            create a room and enter it
  join <roomId>     enter an existing room
  start             start the game once the opponent joined
  place <x> <y>     mark a ship cell on your board
  fire <x> <y>      fire at the opponent board
  board             print both boards
  help              this text
  quit              leave
`

type Loop struct {
	commands Commands
	view     *View
	out      io.Writer
}

func NewLoop(commands Commands, view *View, out io.Writer) *Loop {
	return &Loop{commands: commands, view: view, out: out}
}

// Run reads one command per line until quit, end of input or ctx is done. A
// done ctx ends Run even while it waits for input.
func (l *Loop) Run(ctx context.Context, in io.Reader) error {
	fmt.Fprint(l.out, helpText)

	lines := make(chan string)
	scanErr := make(chan error, 1)
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-stop:
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					return err
				default:
					return ctx.Err()
				}
			}
			if !l.Exec(ctx, line) {
				return nil
			}
		}
	}
}

// Exec runs one command line. It returns false when the player quits.
func (l *Loop) Exec(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return true
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	var err error
	switch cmd {
	case "quit", "exit":
		return false
	case "help":
		fmt.Fprint(l.out, helpText)
	case "board":
		l.view.Show()
	case "register", "login":
		if len(args) != 1 {
			err = fmt.Errorf("usage: %s <name>", cmd)
			break
		}
		if cmd == "register" {
			err = l.commands.Register(ctx, args[0])
		} else {
			err = l.commands.Login(ctx, args[0])
		}
	case "create":
		err = l.commands.CreateRoom(ctx)
	case "join":
		var roomID int64
		if len(args) == 1 {
			roomID, err = strconv.ParseInt(args[0], 10, 64)
		}
		if len(args) != 1 || err != nil {
			err = fmt.Errorf("usage: join <roomId>")
			break
		}
		err = l.commands.JoinRoom(ctx, roomID)
	case "start":
		err = l.commands.StartGame(ctx)
	case "place", "fire":
		kind := session.OwnBoard
		if cmd == "fire" {
			kind = session.OpponentBoard
		}
		x, y, perr := parseCell(args)
		if perr != nil {
			err = fmt.Errorf("usage: %s <x> <y>", cmd)
			break
		}
		if !l.view.Activate(kind, x, y) {
			err = fmt.Errorf("cell (%d,%d) is not available", x, y)
		}
	default:
		err = fmt.Errorf("unknown command %q, type help", cmd)
	}
	if err != nil {
		fmt.Fprintf(l.out, "%v\n", err)
	}
	return true
}

func parseCell(args []string) (int, int, error) {
	if len(args) != 2 {
		return 0, 0, fmt.Errorf("want two coordinates")
	}
	x, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, 0, err
	}
	y, err := strconv.Atoi(args[1])
	if err != nil {
		return 0, 0, err
	}
	return x, y, nil
}
