package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kapu/chess-coach-client-go/internal/coachapi"
	"github.com/kapu/chess-coach-client-go/internal/domain"
	"github.com/kapu/chess-coach-client-go/internal/msgcat"
	"github.com/kapu/chess-coach-client-go/internal/oracle"
	"github.com/kapu/chess-coach-client-go/internal/viewstate"
	"github.com/kapu/chess-coach-client-go/pkg/coachdto"
)

var (
	ErrBusy     = errors.New("a move round-trip is already in flight")
	ErrNoGame   = errors.New("no game in progress")
	ErrGameOver = errors.New("game is over")
)

// Authority is the request/response path of the remote game authority.
// *coachapi.Client satisfies it; tests substitute a fake.
type Authority interface {
	State(ctx context.Context) (*coachdto.StateResponse, error)
	NewGame(ctx context.Context, req coachdto.NewGameRequest) (*coachdto.StateResponse, error)
	Move(ctx context.Context, req coachdto.MoveRequest) (*coachdto.MoveResponse, error)
	Undo(ctx context.Context) (*coachdto.StateResponse, error)
}

// Recorder archives finished games. Optional.
type Recorder interface {
	SaveFinishedGame(ctx context.Context, rec *domain.GameRecord) error
}

// Cacher persists the last authoritative response for warm starts. Optional.
type Cacher interface {
	SaveState(ctx context.Context, resp *coachdto.StateResponse) error
}

// Dispatcher owns the pending-move marker and is, together with the sync
// channel, the only writer of the view holder. All operations are
// single-flight: a second submission while one is outstanding is refused
// before any state changes.
type Dispatcher struct {
	api     Authority
	view    *viewstate.Holder
	cat     *msgcat.Catalog
	archive Recorder
	cache   Cacher
	logger  *zap.Logger

	gate chan struct{} // pending-move marker: held entry == round-trip in flight

	side        string
	difficulty  string
	selfReport  string
	sessionUUID string
	gameStart   time.Time

	now func() time.Time
}

func New(api Authority, view *viewstate.Holder, cat *msgcat.Catalog, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		api:    api,
		view:   view,
		cat:    cat,
		logger: logger,
		gate:   make(chan struct{}, 1),
		side:   "white",
		now:    time.Now,
	}
}

// AttachRecorder wires the optional game archive.
func (d *Dispatcher) AttachRecorder(r Recorder) { d.archive = r }

// AttachCacher wires the optional state cache.
func (d *Dispatcher) AttachCacher(c Cacher) { d.cache = c }

// Pending reports whether a remote round-trip is in flight.
func (d *Dispatcher) Pending() bool {
	return len(d.gate) > 0
}

// Side is the user's assigned side for the current game.
func (d *Dispatcher) Side() string { return d.side }

// SetSelfReport records the sticky self-reported mood sent with each move.
func (d *Dispatcher) SetSelfReport(report string) {
	d.selfReport = report
}

func (d *Dispatcher) acquire() bool {
	select {
	case d.gate <- struct{}{}:
		return true
	default:
		return false
	}
}

func (d *Dispatcher) release() {
	select {
	case <-d.gate:
	default:
	}
}

// SubmitMove validates origin→destination locally, applies it optimistically,
// and reconciles against the authoritative response. On rejection or
// transport failure the pre-move snapshot is restored exactly.
func (d *Dispatcher) SubmitMove(ctx context.Context, origin, destination string, thinkTimeMs int) error {
	if !d.acquire() {
		d.view.SetNotice(d.cat.MustRender("notice.busy", nil))
		return ErrBusy
	}
	defer d.release()

	state := d.view.Current()
	if state == nil {
		d.view.SetNotice(d.cat.MustRender("notice.no_game", nil))
		return ErrNoGame
	}
	if state.GameOver {
		return ErrGameOver
	}

	// Local validation first: an illegal gesture never reaches the network
	// and never changes state.
	res, err := oracle.Apply(state.FEN, origin, destination, "")
	if err != nil {
		d.view.SetNotice(d.cat.MustRender("notice.illegal", nil))
		return fmt.Errorf("local validation: %w", err)
	}

	preMoveFEN := state.FEN
	d.view.ApplyOptimisticFEN(res.FEN)
	d.view.SetStatus(d.cat.MustRender("status.sent", nil))
	d.logger.Debug("move dispatched",
		zap.String("uci", res.UCI),
		zap.String("san", res.SAN),
		zap.Int("think_time_ms", thinkTimeMs),
	)

	resp, err := d.api.Move(ctx, coachdto.MoveRequest{
		UCIMove:     res.UCI,
		ThinkTimeMs: thinkTimeMs,
		SelfReport:  d.selfReport,
	})
	if err != nil {
		d.view.ApplyOptimisticFEN(preMoveFEN)
		d.view.SetStatus(d.cat.MustRender("status.idle", nil))
		if coachapi.IsReject(err) {
			d.view.SetNotice(d.cat.MustRender("notice.rejected", map[string]string{"Reason": err.Error()}))
		} else {
			d.view.SetNotice(d.cat.MustRender("notice.transport", nil))
		}
		d.logger.Warn("move failed", zap.String("uci", res.UCI), zap.Error(err))
		return err
	}

	// The authoritative response reflects both our move and any engine reply;
	// it supersedes the optimistic snapshot unconditionally.
	d.view.Replace(resp.State, resp.AgentOutput)
	d.afterAuthoritative(ctx, &coachdto.StateResponse{State: resp.State, AgentOutput: resp.AgentOutput})
	return nil
}

// StartNewGame replaces the whole game state on success and assigns the
// user's side for this session.
func (d *Dispatcher) StartNewGame(ctx context.Context, side, difficulty string, verbosity int) error {
	if !d.acquire() {
		d.view.SetNotice(d.cat.MustRender("notice.busy", nil))
		return ErrBusy
	}
	defer d.release()

	d.view.SetStatus(d.cat.MustRender("status.new_game", map[string]string{
		"Side":       side,
		"Difficulty": difficulty,
	}))
	resp, err := d.api.NewGame(ctx, coachdto.NewGameRequest{
		Side:           side,
		BotDifficulty:  difficulty,
		CoachVerbosity: verbosity,
	})
	if err != nil {
		d.view.SetStatus("")
		d.view.SetNotice(errNotice(d.cat, err))
		return err
	}

	d.side = side
	d.difficulty = difficulty
	d.sessionUUID = uuid.NewString()
	d.gameStart = d.now()
	d.view.Replace(resp.State, resp.AgentOutput)
	d.afterAuthoritative(ctx, resp)
	return nil
}

// UndoLastMove replaces the whole game state on success. Refused while the
// pending-move marker is set.
func (d *Dispatcher) UndoLastMove(ctx context.Context) error {
	if !d.acquire() {
		d.view.SetNotice(d.cat.MustRender("notice.undo_busy", nil))
		return ErrBusy
	}
	defer d.release()

	d.view.SetStatus(d.cat.MustRender("status.undoing", nil))
	resp, err := d.api.Undo(ctx)
	if err != nil {
		d.view.SetStatus("")
		d.view.SetNotice(errNotice(d.cat, err))
		return err
	}
	d.view.Replace(resp.State, resp.AgentOutput)
	d.afterAuthoritative(ctx, resp)
	return nil
}

// Refresh pulls the current authoritative state, e.g. at startup.
func (d *Dispatcher) Refresh(ctx context.Context) error {
	if !d.acquire() {
		return ErrBusy
	}
	defer d.release()

	resp, err := d.api.State(ctx)
	if err != nil {
		return err
	}
	d.view.Replace(resp.State, resp.AgentOutput)
	d.afterAuthoritative(ctx, resp)
	return nil
}

func (d *Dispatcher) afterAuthoritative(ctx context.Context, resp *coachdto.StateResponse) {
	state := resp.State
	if state.GameOver {
		d.view.SetStatus(d.cat.MustRender("status.game_over", map[string]string{"Result": state.Result}))
		d.recordFinishedGame(ctx, state)
	} else {
		d.view.SetStatus(d.cat.MustRender("status.idle", nil))
	}
	if d.cache != nil {
		if err := d.cache.SaveState(ctx, resp); err != nil {
			d.logger.Warn("state cache save failed", zap.Error(err))
		}
	}
}

func (d *Dispatcher) recordFinishedGame(ctx context.Context, state *coachdto.GameState) {
	if d.archive == nil || d.sessionUUID == "" {
		return
	}
	rec := &domain.GameRecord{
		SessionUUID:  d.sessionUUID,
		Side:         d.side,
		Difficulty:   d.difficulty,
		Result:       state.Result,
		MovesUCI:     append([]string(nil), state.MoveList...),
		ThinkTimesMs: append([]int(nil), state.Signals.ThinkTimesMs...),
		StartedAt:    d.gameStart,
		EndedAt:      d.now(),
		Duration:     d.now().Sub(d.gameStart),
	}
	if err := d.archive.SaveFinishedGame(ctx, rec); err != nil {
		d.logger.Warn("archive save failed", zap.String("session_uuid", rec.SessionUUID), zap.Error(err))
	}
}

func errNotice(cat *msgcat.Catalog, err error) string {
	if coachapi.IsReject(err) {
		return cat.MustRender("notice.rejected", map[string]string{"Reason": err.Error()})
	}
	return cat.MustRender("notice.transport", nil)
}
