package syncer

import (
	"context"

	"go.uber.org/zap"

	"github.com/kapu/chess-coach-client-go/internal/viewstate"
	"github.com/kapu/chess-coach-client-go/pkg/coachdto"
)

// Syncer normalizes push frames into the same wholesale-replace applied by
// the dispatcher. Frames queue into a bounded channel and are processed one
// at a time, so ordering holds regardless of how the transport delivers them.
//
// A frame arriving while a move round-trip is pending is dropped, not
// deferred: the response to that move is authoritative and replaying a stale
// frame afterwards would reintroduce the race the gate exists to prevent.
type Syncer struct {
	view    *viewstate.Holder
	pending func() bool // the dispatcher's pending-move marker
	queue   chan *coachdto.PushEvent
	logger  *zap.Logger
}

func New(view *viewstate.Holder, pending func() bool, queueSize int, logger *zap.Logger) *Syncer {
	if queueSize <= 0 {
		queueSize = 16
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Syncer{
		view:    view,
		pending: pending,
		queue:   make(chan *coachdto.PushEvent, queueSize),
		logger:  logger,
	}
}

// Enqueue accepts a parsed push frame. When the queue is full the frame is
// dropped; the request/response path alone guarantees convergence.
func (s *Syncer) Enqueue(ev *coachdto.PushEvent) {
	if ev == nil || ev.Type != "update" {
		return
	}
	select {
	case s.queue <- ev:
	default:
		s.logger.Debug("push queue full, frame dropped")
	}
}

// Run processes queued frames until ctx is done.
func (s *Syncer) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-s.queue:
			s.apply(ev)
		}
	}
}

// Drain applies everything currently queued, for callers that drive the
// syncer manually instead of running the loop.
func (s *Syncer) Drain() {
	for {
		select {
		case ev := <-s.queue:
			s.apply(ev)
		default:
			return
		}
	}
}

func (s *Syncer) apply(ev *coachdto.PushEvent) {
	if s.pending != nil && s.pending() {
		// an optimistic snapshot is on screen; the move's own response wins
		s.logger.Debug("push ignored while move pending")
		return
	}
	if ev.State == nil {
		if ev.AgentOutput != nil {
			if cur := s.view.Current(); cur != nil {
				s.view.Replace(cur, ev.AgentOutput)
			}
		}
		return
	}
	s.view.Replace(ev.State, ev.AgentOutput)
	s.logger.Debug("push update applied", zap.Int("moves", len(ev.State.MoveList)))
}
