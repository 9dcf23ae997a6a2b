package websocket

import (
	"encoding/json"

	"github.com/rocketscienceinc/tictactoe-variants/internal/entity"
)

const (
	actionGameNew     = "game:new"
	actionGameState   = "game:state"
	actionGameTurn    = "game:turn"
	actionGamePowerUp = "game:power-up"
	actionGameRestart = "game:restart"
	actionGameLeave   = "game:leave"
	actionGameUpdate  = "game:update"
	actionError       = "error"

	reasonBadRequest = "bad_request"
	reasonNoGame     = "no_game"
)

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Payload is what clients send. GameID falls back to the connection's current game.
type Payload struct {
	Variant entity.Variant `json:"variant,omitempty"`
	GameID  string         `json:"game_id,omitempty"`
	Cell    *int           `json:"cell,omitempty"`
	Kind    string         `json:"kind,omitempty"`
}

type ResponsePayload struct {
	Game    *entity.GameView `json:"game,omitempty"`
	Error   string           `json:"error,omitempty"`
	Message string           `json:"message,omitempty"`
}

func newMessage(action string, payload ResponsePayload) Message {
	data, err := json.Marshal(payload)
	if err != nil {
		panic(err)
	}

	return Message{Action: action, Payload: data}
}
