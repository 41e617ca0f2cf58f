package coachdto

// StateResponse is returned by state, new_game and undo calls.
type StateResponse struct {
	State       *GameState   `json:"state" validate:"required"`
	AgentOutput *AgentOutput `json:"agent_output,omitempty"`
}

// MoveResponse additionally carries the engine's reply move, when one was made.
type MoveResponse struct {
	State       *GameState   `json:"state" validate:"required"`
	AgentOutput *AgentOutput `json:"agent_output,omitempty"`
	BotMove     string       `json:"bot_move,omitempty"`
}

// PushEvent is one frame on the push subscription. Only "update" frames are
// meaningful; anything else is dropped at the sync boundary.
type PushEvent struct {
	Type        string       `json:"type" validate:"required,eq=update"`
	State       *GameState   `json:"state,omitempty"`
	AgentOutput *AgentOutput `json:"agent_output,omitempty"`
}
