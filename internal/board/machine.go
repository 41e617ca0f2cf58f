package board

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kapu/chess-coach-client-go/internal/oracle"
	"github.com/kapu/chess-coach-client-go/internal/viewstate"
)

// Phase is the interaction state of the board.
type Phase string

const (
	PhaseIdle     Phase = "IDLE"
	PhaseSelected Phase = "SELECTED"
	PhaseDisabled Phase = "DISABLED"
)

// MoveIntent is the validated gesture outcome handed to the dispatcher.
// Click-to-move and drag-drop emit identical intents for the same pair.
type MoveIntent struct {
	Origin      string
	Destination string
	ThinkTimeMs int
}

// Machine owns selection state and legal-target highlighting. It reads the
// view holder and never writes it; selection resets on every snapshot change.
type Machine struct {
	mu sync.Mutex

	view *viewstate.Holder
	busy func() bool // pending-move probe, set by the dispatcher wiring

	side       string // player's assigned side, "white" or "black"
	origin     string
	targets    []string
	selectedAt time.Time

	now    func() time.Time
	logger *zap.Logger
}

func NewMachine(view *viewstate.Holder, busy func() bool, logger *zap.Logger) *Machine {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Machine{
		view:   view,
		busy:   busy,
		side:   "white",
		now:    time.Now,
		logger: logger,
	}
	view.OnSnapshotChange(m.clearSelection)
	return m
}

// SetPlayerSide is called when a new game assigns the user a side.
func (m *Machine) SetPlayerSide(side string) {
	m.mu.Lock()
	m.side = side
	m.origin = ""
	m.targets = nil
	m.mu.Unlock()
}

// Phase derives the current interaction state.
func (m *Machine) Phase() Phase {
	if m.disabled() {
		return PhaseDisabled
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.origin != "" {
		return PhaseSelected
	}
	return PhaseIdle
}

// Selection returns the selected origin and its legal targets, empty when idle.
func (m *Machine) Selection() (string, []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.origin, append([]string(nil), m.targets...)
}

// Press handles a click/tap gesture at a square. It returns a MoveIntent when
// the gesture completes a move, nil otherwise.
func (m *Machine) Press(square string) *MoveIntent {
	if m.disabled() {
		return nil
	}
	state := m.view.Current()
	if state == nil {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Gesture on a legal target completes the move; selection does not
	// persist across the pending round-trip.
	if m.origin != "" {
		if square == m.origin {
			m.origin = ""
			m.targets = nil
			return nil
		}
		if m.isTarget(square) {
			intent := &MoveIntent{
				Origin:      m.origin,
				Destination: square,
				ThinkTimeMs: m.thinkTimeMs(),
			}
			m.origin = ""
			m.targets = nil
			return intent
		}
	}

	own, err := oracle.OwnPiece(state.FEN, square, m.side)
	if err != nil || !own {
		// empty square or opponent piece: no-op, selection unchanged
		return nil
	}
	targets, err := oracle.LegalTargets(state.FEN, square)
	if err != nil {
		m.logger.Warn("legal targets failed", zap.String("square", square), zap.Error(err))
		return nil
	}
	m.origin = square
	m.targets = targets
	m.selectedAt = m.now()
	return nil
}

// DragDrop handles a completed drag from one square to another. It shares the
// click path's legality check and emits an identical intent for the same pair.
func (m *Machine) DragDrop(from, to string) *MoveIntent {
	if m.disabled() {
		return nil
	}
	state := m.view.Current()
	if state == nil {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	own, err := oracle.OwnPiece(state.FEN, from, m.side)
	if err != nil || !own {
		return nil
	}
	targets, err := oracle.LegalTargets(state.FEN, from)
	if err != nil {
		return nil
	}
	legal := false
	for _, t := range targets {
		if t == to {
			legal = true
			break
		}
	}
	if !legal {
		return nil
	}
	think := 0
	if m.origin == from {
		think = m.thinkTimeMs()
	}
	m.origin = ""
	m.targets = nil
	return &MoveIntent{Origin: from, Destination: to, ThinkTimeMs: think}
}

func (m *Machine) disabled() bool {
	if m.busy != nil && m.busy() {
		return true
	}
	if state := m.view.Current(); state != nil && state.GameOver {
		return true
	}
	return false
}

func (m *Machine) isTarget(square string) bool {
	for _, t := range m.targets {
		if t == square {
			return true
		}
	}
	return false
}

func (m *Machine) thinkTimeMs() int {
	if m.selectedAt.IsZero() {
		return 0
	}
	return int(m.now().Sub(m.selectedAt) / time.Millisecond)
}

func (m *Machine) clearSelection() {
	m.mu.Lock()
	m.origin = ""
	m.targets = nil
	m.mu.Unlock()
}
