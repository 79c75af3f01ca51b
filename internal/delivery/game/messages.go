package game

import (
	"encoding/json"
	"time"

	"chessgame/internal/domain/game"
)

type MessageType string

const (
	MessageTypeMove  MessageType = "move"
	MessageTypeState MessageType = "state"
	MessageTypeError MessageType = "error"
)

// Message is the websocket envelope in both directions.
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func newMessage(t MessageType, payload any) (Message, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Message{}, err
	}
	return Message{Type: t, Payload: raw}, nil
}

// GameView is what clients see of a game over HTTP and websocket.
type GameView struct {
	ID            string           `json:"id"`
	Board         game.Board       `json:"board"`
	CurrentPlayer game.Color       `json:"current_player"`
	Status        game.Status      `json:"status"`
	InCheck       bool             `json:"in_check"`
	LastMove      *game.MoveRecord `json:"last_move,omitempty"`
	FEN           string           `json:"fen,omitempty"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

type CreateGameRequest struct {
	FEN string `json:"fen"`
}

type CreateGameResponse struct {
	GameID string `json:"game_id"`
}

type GameListResponse struct {
	GameIDs []string `json:"game_ids"`
}

type FENResponse struct {
	FEN string `json:"fen"`
}

// MoveRequest uses pointers so a missing square is told apart from (0,0).
type MoveRequest struct {
	From *game.Square `json:"from"`
	To   *game.Square `json:"to"`
}

type LegalDestinationsResponse struct {
	From         game.Square   `json:"from"`
	Destinations []game.Square `json:"destinations"`
}

type MoveRejection struct {
	Reason string `json:"reason"`
}
