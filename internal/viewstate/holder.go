package viewstate

import (
	"sync"

	"github.com/kapu/chess-coach-client-go/pkg/coachdto"
)

// Holder is the single writable snapshot the rest of the client reads.
// Only the dispatcher and the sync channel write it; the board machine and
// the presentation layer read it and subscribe to snapshot changes.
//
// The displayed FEN may lead the mirrored GameState during the optimistic
// window; everything else is only ever replaced wholesale.
type Holder struct {
	mu sync.RWMutex

	state  *coachdto.GameState
	agent  *coachdto.AgentOutput
	fen    string // displayed position, may lead state.FEN while optimistic
	status string
	notice string

	subs      []subEntry
	subNextID int
}

type subEntry struct {
	id int
	fn func()
}

func New() *Holder {
	return &Holder{}
}

// Current returns a deep copy of the mirrored game state, or nil before the
// first authoritative update.
func (h *Holder) Current() *coachdto.GameState {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.state.Clone()
}

// DisplayedFEN is the position the board shows right now.
func (h *Holder) DisplayedFEN() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.fen
}

// AgentOutput returns the last coaching bundle, nil when none arrived yet.
func (h *Holder) AgentOutput() *coachdto.AgentOutput {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.agent
}

// Replace swaps in an authoritative state wholesale and re-aligns the
// displayed position with it, ending any optimistic window.
func (h *Holder) Replace(state *coachdto.GameState, agent *coachdto.AgentOutput) {
	if state == nil {
		return
	}
	h.mu.Lock()
	h.state = state.Clone()
	h.fen = state.FEN
	if agent != nil {
		h.agent = agent
	}
	h.mu.Unlock()
	h.notifySnapshotChanged()
}

// ApplyOptimisticFEN updates only the displayed position, leaving the
// mirrored GameState untouched until the next Replace.
func (h *Holder) ApplyOptimisticFEN(fen string) {
	if fen == "" {
		return
	}
	h.mu.Lock()
	h.fen = fen
	h.mu.Unlock()
	h.notifySnapshotChanged()
}

// SetStatus records the short transient phase string shown to the user.
func (h *Holder) SetStatus(s string) {
	h.mu.Lock()
	h.status = s
	h.mu.Unlock()
}

func (h *Holder) Status() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.status
}

// SetNotice records a one-shot user-visible failure notice.
func (h *Holder) SetNotice(s string) {
	h.mu.Lock()
	h.notice = s
	h.mu.Unlock()
}

// TakeNotice returns and clears the pending notice.
func (h *Holder) TakeNotice() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := h.notice
	h.notice = ""
	return n
}

// OnSnapshotChange registers a callback fired after every displayed-position
// change (optimistic or authoritative). Returns an id for removal.
func (h *Holder) OnSnapshotChange(fn func()) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.subNextID++
	id := h.subNextID
	h.subs = append(h.subs, subEntry{id: id, fn: fn})
	return id
}

func (h *Holder) RemoveSnapshotCallback(id int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, s := range h.subs {
		if s.id == id {
			h.subs = append(h.subs[:i], h.subs[i+1:]...)
			break
		}
	}
}

func (h *Holder) notifySnapshotChanged() {
	h.mu.RLock()
	subs := make([]subEntry, len(h.subs))
	copy(subs, h.subs)
	h.mu.RUnlock()
	for _, s := range subs {
		if s.fn != nil {
			s.fn()
		}
	}
}
