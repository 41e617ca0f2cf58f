package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/kapu/chess-coach-client-go/internal/board"
	"github.com/kapu/chess-coach-client-go/internal/dispatch"
	"github.com/kapu/chess-coach-client-go/internal/msgcat"
	"github.com/kapu/chess-coach-client-go/internal/syncer"
	"github.com/kapu/chess-coach-client-go/internal/viewstate"
	"github.com/kapu/chess-coach-client-go/pkg/coachdto"
)

const testStartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

type blockingAuthority struct {
	entered chan struct{}
	release chan struct{}
}

func (b *blockingAuthority) State(ctx context.Context) (*coachdto.StateResponse, error) {
	return &coachdto.StateResponse{State: testGameState(testStartFEN)}, nil
}

func (b *blockingAuthority) NewGame(ctx context.Context, req coachdto.NewGameRequest) (*coachdto.StateResponse, error) {
	return &coachdto.StateResponse{State: testGameState(testStartFEN)}, nil
}

func (b *blockingAuthority) Move(ctx context.Context, req coachdto.MoveRequest) (*coachdto.MoveResponse, error) {
	close(b.entered)
	<-b.release
	return &coachdto.MoveResponse{State: testGameState(testStartFEN)}, nil
}

func (b *blockingAuthority) Undo(ctx context.Context) (*coachdto.StateResponse, error) {
	return &coachdto.StateResponse{State: testGameState(testStartFEN)}, nil
}

func testGameState(fen string) *coachdto.GameState {
	return &coachdto.GameState{FEN: fen, SideToMove: "white"}
}

func newTestApp(t *testing.T, api dispatch.Authority) (*cliApp, *bytes.Buffer) {
	t.Helper()
	cat, err := msgcat.New()
	if err != nil {
		t.Fatalf("msgcat: %v", err)
	}
	view := viewstate.New()
	view.Replace(testGameState(testStartFEN), nil)
	dispatcher := dispatch.New(api, view, cat, nil)
	machine := board.NewMachine(view, dispatcher.Pending, nil)

	out := &bytes.Buffer{}
	app := &cliApp{
		cat:        cat,
		view:       view,
		dispatcher: dispatcher,
		machine:    machine,
		sync:       syncer.New(view, dispatcher.Pending, 4, nil),
		out:        out,
	}
	return app, out
}

func TestDragWhilePendingReportsBusyNotIllegal(t *testing.T) {
	api := &blockingAuthority{entered: make(chan struct{}), release: make(chan struct{})}
	app, out := newTestApp(t, api)

	done := make(chan error, 1)
	go func() {
		done <- app.dispatcher.SubmitMove(context.Background(), "e2", "e4", 0)
	}()
	<-api.entered

	app.cmdDrag(context.Background(), []string{"d2", "d4"})

	busy := app.cat.MustRender("notice.busy", nil)
	illegal := app.cat.MustRender("notice.illegal", nil)
	if !strings.Contains(out.String(), busy) {
		t.Fatalf("busy notice missing:\n%s", out.String())
	}
	if strings.Contains(out.String(), illegal) {
		t.Fatalf("legal move reported as illegal while pending:\n%s", out.String())
	}

	close(api.release)
	if err := <-done; err != nil {
		t.Fatalf("in-flight move failed: %v", err)
	}
}

func TestDragIllegalMoveReportsIllegal(t *testing.T) {
	api := &blockingAuthority{entered: make(chan struct{}), release: make(chan struct{})}
	app, out := newTestApp(t, api)

	app.cmdDrag(context.Background(), []string{"e2", "e5"})

	illegal := app.cat.MustRender("notice.illegal", nil)
	if !strings.Contains(out.String(), illegal) {
		t.Fatalf("illegal notice missing:\n%s", out.String())
	}
}

func TestDragAfterGameOverReportsGameOver(t *testing.T) {
	api := &blockingAuthority{entered: make(chan struct{}), release: make(chan struct{})}
	app, out := newTestApp(t, api)

	over := testGameState(testStartFEN)
	over.GameOver = true
	over.Result = "1-0"
	app.view.Replace(over, nil)

	app.cmdDrag(context.Background(), []string{"e2", "e4"})

	illegal := app.cat.MustRender("notice.illegal", nil)
	if strings.Contains(out.String(), illegal) {
		t.Fatalf("finished game reported as illegal move:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "1-0") {
		t.Fatalf("game-over notice missing:\n%s", out.String())
	}
}
