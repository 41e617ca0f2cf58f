package coachdto

type NewGameRequest struct {
	Side           string `json:"side" validate:"oneof=white black"`
	BotDifficulty  string `json:"bot_difficulty" validate:"oneof=easy medium hard"`
	CoachVerbosity int    `json:"coach_verbosity" validate:"gte=1,lte=3"`
}

type MoveRequest struct {
	UCIMove     string `json:"uci_move" validate:"required,min=4,max=5"`
	ThinkTimeMs int    `json:"think_time_ms,omitempty"`
	SelfReport  string `json:"self_report,omitempty" validate:"omitempty,oneof=calm tilted tired focused"`
}

type UndoRequest struct{}
