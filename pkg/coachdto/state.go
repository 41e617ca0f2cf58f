package coachdto

// ClockState mirrors the backend clock readings in milliseconds.
type ClockState struct {
	WhiteMs int `json:"white_ms" validate:"gte=0"`
	BlackMs int `json:"black_ms" validate:"gte=0"`
}

// SignalState carries the behavioral signals the backend tracks per session.
type SignalState struct {
	ThinkTimesMs      []int  `json:"think_times_ms"`
	BlunderStreak     int    `json:"blunder_streak" validate:"gte=0"`
	UndoAttempts      int    `json:"undo_attempts" validate:"gte=0"`
	RapidAfterBlunder bool   `json:"rapid_after_blunder"`
	SelfReport        string `json:"self_report,omitempty"`
}

// GameState is the authoritative server-owned game snapshot. The client only
// ever replaces its mirror wholesale, never patches individual fields.
type GameState struct {
	FEN            string              `json:"fen" validate:"required"`
	SideToMove     string              `json:"side_to_move" validate:"required,oneof=white black"`
	MoveList       []string            `json:"move_list"`
	CapturedPieces map[string][]string `json:"captured_pieces"`
	Clocks         ClockState          `json:"clocks"`
	Signals        SignalState         `json:"signals"`
	GameOver       bool                `json:"game_over"`
	Result         string              `json:"result,omitempty"`
}

// Clone returns a deep copy so callers can hold a snapshot without aliasing
// the holder's current state.
func (s *GameState) Clone() *GameState {
	if s == nil {
		return nil
	}
	cp := *s
	cp.MoveList = append([]string(nil), s.MoveList...)
	cp.Signals.ThinkTimesMs = append([]int(nil), s.Signals.ThinkTimesMs...)
	if s.CapturedPieces != nil {
		cp.CapturedPieces = make(map[string][]string, len(s.CapturedPieces))
		for k, v := range s.CapturedPieces {
			cp.CapturedPieces[k] = append([]string(nil), v...)
		}
	}
	return &cp
}
