package coachdto

// CoachOutput is the per-move coaching bundle.
type CoachOutput struct {
	MoveQuality string   `json:"move_quality"`
	Bullets     []string `json:"bullets"`
	PV          string   `json:"pv,omitempty"`
}

// MentalOutput is the mental-state read derived from behavioral signals.
type MentalOutput struct {
	ObservedSignals []string `json:"observed_signals"`
	Inference       string   `json:"inference"`
	MicroResetTip   string   `json:"micro_reset_tip"`
}

// PositionOutput is the positional assessment bundle.
type PositionOutput struct {
	Eval    string              `json:"eval"`
	Why     []string            `json:"why"`
	Threats []string            `json:"threats"`
	Plans   map[string][]string `json:"plans"`
}

// AgentOutput is opaque to the client beyond pass-through display.
type AgentOutput struct {
	Coach    CoachOutput    `json:"coach"`
	Mental   MentalOutput   `json:"mental"`
	Position PositionOutput `json:"position"`
	RawText  string         `json:"raw_text,omitempty"`
}
