package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/chzyer/readline"
	"go.uber.org/zap"

	"github.com/kapu/chess-coach-client-go/internal/archive"
	"github.com/kapu/chess-coach-client-go/internal/board"
	"github.com/kapu/chess-coach-client-go/internal/coachapi"
	appcfg "github.com/kapu/chess-coach-client-go/internal/config"
	"github.com/kapu/chess-coach-client-go/internal/dispatch"
	"github.com/kapu/chess-coach-client-go/internal/display"
	"github.com/kapu/chess-coach-client-go/internal/msgcat"
	"github.com/kapu/chess-coach-client-go/internal/obslog"
	"github.com/kapu/chess-coach-client-go/internal/render"
	"github.com/kapu/chess-coach-client-go/internal/statecache"
	"github.com/kapu/chess-coach-client-go/internal/syncer"
	"github.com/kapu/chess-coach-client-go/internal/viewstate"
)

func main() {
	cfg, err := appcfg.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if err := obslog.InitFromEnv(); err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	logger := obslog.L()
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	cat, err := msgcat.New()
	if err != nil {
		log.Fatalf("message catalog error: %v", err)
	}

	client := coachapi.NewClient(cfg.CoachBaseURL,
		coachapi.WithTimeout(time.Duration(cfg.HTTPTimeoutSec)*time.Second),
	)

	view := viewstate.New()
	dispatcher := dispatch.New(client, view, cat, logger)
	machine := board.NewMachine(view, dispatcher.Pending, logger)
	sync := syncer.New(view, dispatcher.Pending, cfg.PushQueueSize, logger)

	// Optional game archive: Postgres when configured, in-memory otherwise.
	repo := buildArchive(cfg, logger)
	defer repo.Close()
	dispatcher.AttachRecorder(repo)

	var cache *statecache.Cache
	if cfg.RedisURL != "" {
		cache, err = statecache.New(cfg.RedisURL)
		if err != nil {
			logger.Warn("state cache disabled", zap.Error(err))
		} else {
			defer cache.Close()
			dispatcher.AttachCacher(cache)
		}
	}

	// Warm the display from the cached snapshot, then fetch the real thing.
	if cache != nil {
		if resp, err := cache.LoadState(ctx); err == nil && resp != nil {
			view.Replace(resp.State, resp.AgentOutput)
		}
	}
	if err := dispatcher.Refresh(ctx); err != nil {
		logger.Info("no remote state yet", zap.Error(err))
	}

	var push *coachapi.PushSocket
	if cfg.CoachWSURL != "" {
		push = coachapi.NewPushSocket(cfg.CoachWSURL, 5, time.Second)
		push.OnPush(sync.Enqueue)
		push.OnStateChange(func(state coachapi.WSState) {
			logger.Info("push socket state", zap.String("state", string(state)))
		})
		if err := push.Connect(ctx); err != nil {
			logger.Warn("push connect failed, continuing without push", zap.Error(err))
		}
	}
	go sync.Run(ctx)

	app := &cliApp{
		cfg:        cfg,
		cat:        cat,
		view:       view,
		dispatcher: dispatcher,
		machine:    machine,
		sync:       sync,
		repo:       repo,
		logger:     logger,
		out:        os.Stdout,
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          display.Prompt("coach"),
		HistoryFile:     ".coach_history",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		log.Fatalf("readline init error: %v", err)
	}
	defer rl.Close()

	fmt.Printf("%sChess Coach Client%s\n", display.Cyan, display.Reset)
	fmt.Printf("%sAPI: %s%s\n", display.Cyan, cfg.CoachBaseURL, display.Reset)
	fmt.Printf("Type 'help' for commands\n\n")
	app.redraw()

	for {
		select {
		case <-ctx.Done():
			goto shutdown
		default:
		}

		line, err := rl.Readline()
		if err == io.EOF || err == readline.ErrInterrupt {
			break
		}
		if err != nil {
			continue
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" || line == "q" {
			break
		}
		app.execute(ctx, line)
	}

shutdown:
	cancel()
	if push != nil {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), 3*time.Second)
		push.Close(closeCtx)
		closeCancel()
	}
	logger.Info("shutdown complete")
}

func buildArchive(cfg *appcfg.AppConfig, logger *zap.Logger) archive.Repository {
	if cfg.DatabaseURL != "" {
		repo, err := archive.NewRepository(cfg.DatabaseURL)
		if err == nil {
			return repo
		}
		logger.Warn("postgres archive unavailable, using memory", zap.Error(err))
	}
	return archive.NewMemoryRepository()
}

type cliApp struct {
	cfg        *appcfg.AppConfig
	cat        *msgcat.Catalog
	view       *viewstate.Holder
	dispatcher *dispatch.Dispatcher
	machine    *board.Machine
	sync       *syncer.Syncer
	repo       archive.Repository
	logger     *zap.Logger
	out        io.Writer
}

func (a *cliApp) execute(ctx context.Context, line string) {
	fields := strings.Fields(line)
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	switch cmd {
	case "help", "h":
		a.printHelp()
	case "new", "n":
		a.cmdNew(ctx, args)
	case "press", "p", "click":
		a.cmdPress(ctx, args)
	case "drag", "d":
		a.cmdDrag(ctx, args)
	case "move", "m":
		// shorthand for a drag gesture typed as one command
		a.cmdDrag(ctx, args)
	case "undo", "u":
		a.cmdUndo(ctx)
	case "report":
		a.cmdReport(args)
	case "refresh", "r":
		a.sync.Drain()
		if err := a.dispatcher.Refresh(ctx); err != nil {
			a.printError(err)
		}
		a.redraw()
	case "board", "b":
		a.sync.Drain()
		a.redraw()
	case "state", "s":
		a.sync.Drain()
		display.WriteStateSummary(a.out, a.view.Current())
		display.WriteAgentOutput(a.out, a.view.AgentOutput())
	case "export", "e":
		a.cmdExport(ctx)
	case "history":
		a.cmdHistory(ctx)
	default:
		fmt.Fprintf(a.out, "%sunknown command: %s%s\n", display.Red, cmd, display.Reset)
	}
}

func (a *cliApp) cmdNew(ctx context.Context, args []string) {
	side := a.cfg.DefaultSide
	difficulty := a.cfg.DefaultDifficulty
	if len(args) > 0 {
		side = strings.ToLower(args[0])
	}
	if len(args) > 1 {
		difficulty = strings.ToLower(args[1])
	}
	if err := a.dispatcher.StartNewGame(ctx, side, difficulty, a.cfg.CoachVerbosity); err != nil {
		a.printError(err)
		a.redraw()
		return
	}
	a.machine.SetPlayerSide(side)
	a.redraw()
	display.WriteAgentOutput(a.out, a.view.AgentOutput())
}

// cmdPress mirrors the click-to-move gesture: first press selects, second
// press on a highlighted target submits.
func (a *cliApp) cmdPress(ctx context.Context, args []string) {
	if len(args) != 1 {
		fmt.Fprintf(a.out, "usage: press <square>\n")
		return
	}
	a.sync.Drain()
	intent := a.machine.Press(strings.ToLower(args[0]))
	if intent != nil {
		a.submit(ctx, intent)
		return
	}
	a.redraw()
}

func (a *cliApp) cmdDrag(ctx context.Context, args []string) {
	if len(args) != 2 {
		fmt.Fprintf(a.out, "usage: drag <from> <to>\n")
		return
	}
	a.sync.Drain()
	intent := a.machine.DragDrop(strings.ToLower(args[0]), strings.ToLower(args[1]))
	if intent == nil {
		a.view.SetNotice(a.refusalNotice())
		a.redraw()
		return
	}
	a.submit(ctx, intent)
}

func (a *cliApp) submit(ctx context.Context, intent *board.MoveIntent) {
	// Show the optimistic snapshot immediately, then the reconciled one.
	done := make(chan error, 1)
	go func() {
		done <- a.dispatcher.SubmitMove(ctx, intent.Origin, intent.Destination, intent.ThinkTimeMs)
	}()

	time.Sleep(50 * time.Millisecond)
	a.redraw()

	if err := <-done; err != nil {
		a.logger.Debug("move rejected", zap.Error(err))
	}
	a.sync.Drain()
	a.redraw()
	display.WriteAgentOutput(a.out, a.view.AgentOutput())
}

func (a *cliApp) cmdUndo(ctx context.Context) {
	if err := a.dispatcher.UndoLastMove(ctx); err != nil {
		a.printError(err)
	}
	a.redraw()
}

func (a *cliApp) cmdReport(args []string) {
	if len(args) != 1 {
		fmt.Fprintf(a.out, "usage: report calm|tilted|tired|focused\n")
		return
	}
	a.dispatcher.SetSelfReport(strings.ToLower(args[0]))
	fmt.Fprintf(a.out, "%sself-report set: %s%s\n", display.Green, args[0], display.Reset)
}

func (a *cliApp) cmdExport(ctx context.Context) {
	fen := a.view.DisplayedFEN()
	if fen == "" {
		fmt.Fprintln(a.out, display.Gray+"nothing to export"+display.Reset)
		return
	}
	opts := render.Options{}
	if _, targets := a.machine.Selection(); len(targets) > 0 {
		opts.Targets = targets
	}
	if state := a.view.Current(); state != nil && len(state.MoveList) > 0 {
		opts.LastMove = render.HighlightUCI(state.MoveList[len(state.MoveList)-1])
	}
	data, err := render.SnapshotPNG(ctx, fen, opts)
	if err != nil {
		a.printError(err)
		return
	}
	if err := os.MkdirAll(a.cfg.ExportDir, 0o755); err != nil {
		a.printError(err)
		return
	}
	name := filepath.Join(a.cfg.ExportDir, fmt.Sprintf("board-%s.png", time.Now().Format("20060102-150405")))
	if err := os.WriteFile(name, data, 0o644); err != nil {
		a.printError(err)
		return
	}
	fmt.Fprintf(a.out, "%ssaved %s%s\n", display.Green, name, display.Reset)
}

func (a *cliApp) cmdHistory(ctx context.Context) {
	games, err := a.repo.RecentGames(ctx, 10)
	if err != nil {
		a.printError(err)
		return
	}
	if len(games) == 0 {
		fmt.Fprintln(a.out, display.Gray+"no finished games yet"+display.Reset)
		return
	}
	for _, g := range games {
		fmt.Fprintf(a.out, "%s  %s as %s vs %s bot, %d moves, %s\n",
			g.EndedAt.Format("2006-01-02 15:04"),
			g.Result, g.Side, g.Difficulty, len(g.MovesUCI),
			g.Duration.Round(time.Second))
	}
}

func (a *cliApp) redraw() {
	fen := a.view.DisplayedFEN()
	if fen == "" {
		fmt.Fprintln(a.out, display.Gray+"no game in progress, try 'new'"+display.Reset)
		return
	}
	origin, targets := a.machine.Selection()
	display.WriteBoard(a.out, fen, a.dispatcher.Side() == "black", display.BoardMarks{
		Selected: origin,
		Targets:  targets,
	})
	display.WriteStateSummary(a.out, a.view.Current())
	if status := a.view.Status(); status != "" {
		fmt.Fprintf(a.out, "%s%s%s\n", display.Gray, status, display.Reset)
	}
	if notice := a.view.TakeNotice(); notice != "" {
		fmt.Fprintf(a.out, "%s%s%s\n", display.Yellow, notice, display.Reset)
	}
}

// refusalNotice picks the message for a refused gesture: a disabled board
// (round-trip in flight, or no game / game over) is not an illegal move.
func (a *cliApp) refusalNotice() string {
	if a.machine.Phase() == board.PhaseDisabled {
		if a.dispatcher.Pending() {
			return a.cat.MustRender("notice.busy", nil)
		}
		if state := a.view.Current(); state == nil {
			return a.cat.MustRender("notice.no_game", nil)
		}
		return a.cat.MustRender("status.game_over", map[string]string{
			"Result": a.view.Current().Result,
		})
	}
	return a.cat.MustRender("notice.illegal", nil)
}

func (a *cliApp) printError(err error) {
	if coachapi.IsReject(err) {
		fmt.Fprintf(a.out, "%srejected: %s%s\n", display.Red, err.Error(), display.Reset)
		return
	}
	fmt.Fprintf(a.out, "%s%s%s\n", display.Red, err.Error(), display.Reset)
}

func (a *cliApp) printHelp() {
	fmt.Fprint(a.out, `commands:
  new [side] [difficulty]   start a game (side: white|black, difficulty: easy|medium|hard)
  press <square>            select a piece / complete a move on a highlighted target
  drag <from> <to>          move in one gesture (same legality as press)
  undo                      request an undo from the backend
  report <mood>             set self-report sent with moves (calm|tilted|tired|focused)
  refresh                   re-fetch authoritative state
  board                     redraw the board
  state                     show clocks, captures and coach output
  export                    save the displayed position as PNG
  history                   list recently finished games
  quit                      exit
`)
}
