package terminal

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/Lavizord/gridbattle/internal/session"
)

func cells(interactive bool, marks map[[2]int]session.Mark) []session.RenderedCell {
	var out []session.RenderedCell
	for x := 0; x < 5; x++ {
		for y := 0; y < 5; y++ {
			out = append(out, session.RenderedCell{X: x, Y: y, Mark: marks[[2]int{x, y}], Interactive: interactive})
		}
	}
	return out
}

func TestFormatBoard(t *testing.T) {
	got := FormatBoard(cells(true, map[[2]int]session.Mark{
		{0, 0}: session.MarkShip,
		{1, 2}: session.MarkHit,
		{4, 4}: session.MarkMiss,
		{3, 1}: session.MarkPending,
	}))
	want := []string{
		"   0  1  2  3  4",
		"0  S  ~  ~  ~  ~",
		"1  ~  ~  X  ~  ~",
		"2  ~  ~  ~  ~  ~",
		"3  ~  ?  ~  ~  ~",
		"4  ~  ~  ~  ~  O",
	}
	lines := strings.Split(strings.TrimSuffix(got, "\n"), "\n")
	if len(lines) != len(want) {
		t.Fatalf("board =\n%s", got)
	}
	for i := range want {
		if line := strings.TrimRight(lines[i], " "); line != want[i] {
			t.Fatalf("line %d = %q, want %q", i, line, want[i])
		}
	}
}

func TestActivateRespectsInteractivity(t *testing.T) {
	view := NewView(&bytes.Buffer{})
	var got [][3]int
	view.OnCellActivated(func(kind session.BoardKind, x, y int) {
		got = append(got, [3]int{int(kind), x, y})
	})

	if view.Activate(session.OwnBoard, 0, 0) {
		t.Fatal("activated a board that was never rendered")
	}
	view.Render(session.OwnBoard, cells(true, nil))
	view.Render(session.OpponentBoard, cells(false, nil))

	if !view.Activate(session.OwnBoard, 2, 3) {
		t.Fatal("own cell not activated")
	}
	if view.Activate(session.OpponentBoard, 2, 3) {
		t.Fatal("disabled opponent cell activated")
	}
	if len(got) != 1 || got[0] != [3]int{int(session.OwnBoard), 2, 3} {
		t.Fatalf("activations = %v", got)
	}
}

type fakeCommands struct {
	calls []string
	err   error
}

func (f *fakeCommands) record(call string) error {
	f.calls = append(f.calls, call)
	return f.err
}

func (f *fakeCommands) Register(ctx context.Context, username string) error {
	return f.record("register " + username)
}

func (f *fakeCommands) Login(ctx context.Context, username string) error {
	return f.record("login " + username)
}

func (f *fakeCommands) CreateRoom(ctx context.Context) error { return f.record("create") }

func (f *fakeCommands) JoinRoom(ctx context.Context, roomID int64) error {
	if roomID != 12 {
		return f.record("join ?")
	}
	return f.record("join 12")
}

func (f *fakeCommands) StartGame(ctx context.Context) error { return f.record("start") }

func TestLoopDispatch(t *testing.T) {
	var out bytes.Buffer
	view := NewView(&out)
	var fired [][2]int
	view.OnCellActivated(func(kind session.BoardKind, x, y int) {
		if kind == session.OpponentBoard {
			fired = append(fired, [2]int{x, y})
		}
	})
	view.Render(session.OpponentBoard, cells(true, nil))

	commands := &fakeCommands{}
	input := strings.Join([]string{
		"register alice",
		"",
		"LOGIN alice",
		"create",
		"join 12",
		"join twelve",
		"start",
		"fire 1 4",
		"fire 1",
		"dance",
		"quit",
		"create",
	}, "\n")
	if err := NewLoop(commands, view, &out).Run(context.Background(), strings.NewReader(input)); err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := []string{"register alice", "login alice", "create", "join 12", "start"}
	if strings.Join(commands.calls, ",") != strings.Join(want, ",") {
		t.Fatalf("calls = %v, want %v", commands.calls, want)
	}
	if len(fired) != 1 || fired[0] != [2]int{1, 4} {
		t.Fatalf("fired = %v", fired)
	}
	for _, msg := range []string{"usage: join <roomId>", "usage: fire <x> <y>", `unknown command "dance"`} {
		if !strings.Contains(out.String(), msg) {
			t.Fatalf("output missing %q:\n%s", msg, out.String())
		}
	}
}

func TestLoopReportsErrors(t *testing.T) {
	var out bytes.Buffer
	commands := &fakeCommands{err: errors.New("not available in the current state")}
	loop := NewLoop(commands, NewView(&out), &out)
	if !loop.Exec(context.Background(), "start") {
		t.Fatal("start ended the loop")
	}
	if !strings.Contains(out.String(), "not available in the current state") {
		t.Fatalf("output = %q", out.String())
	}
	if loop.Exec(context.Background(), "exit") {
		t.Fatal("exit did not end the loop")
	}
}

func TestLoopStopsWhileWaitingForInput(t *testing.T) {
	reader, writer := io.Pipe()
	defer writer.Close()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- NewLoop(&fakeCommands{}, NewView(io.Discard), io.Discard).Run(ctx, reader)
	}()
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Run err = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run kept waiting for input after cancel")
	}
}
