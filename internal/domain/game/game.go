package game

import (
	"fmt"
	"time"
)

type Status uint8

const (
	StatusOngoing Status = iota
	StatusCheck
	StatusCheckmate
	// StatusStalemate is part of the model but never assigned: positions
	// without legal moves and without check stay ongoing.
	StatusStalemate
)

var statusNames = map[Status]string{
	StatusOngoing:   "ongoing",
	StatusCheck:     "check",
	StatusCheckmate: "checkmate",
	StatusStalemate: "stalemate",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("status(%d)", uint8(s))
}

func (s Status) IsTerminal() bool {
	return s == StatusCheckmate || s == StatusStalemate
}

func (s Status) MarshalText() ([]byte, error) {
	if _, ok := statusNames[s]; !ok {
		return nil, fmt.Errorf("unknown status %d", uint8(s))
	}
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(text []byte) error {
	for st, name := range statusNames {
		if name == string(text) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown status %q", text)
}

type Game struct {
	ID            string      `json:"id" bson:"_id"`
	Board         Board       `json:"board" bson:"board"`
	CurrentPlayer Color       `json:"current_player" bson:"current_player"`
	Status        Status      `json:"status" bson:"status"`
	LastMove      *MoveRecord `json:"last_move,omitempty" bson:"last_move,omitempty"`
	CreatedAt     time.Time   `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at" bson:"updated_at"`
}

func New(board Board, currentPlayer Color) Game {
	return Game{
		Board:         board,
		CurrentPlayer: currentPlayer,
		Status:        StatusOngoing,
	}
}

// Clone returns a fully independent copy.
func (g Game) Clone() Game {
	if g.LastMove != nil {
		lm := *g.LastMove
		g.LastMove = &lm
	}
	return g
}

func (g *Game) SwitchPlayer() {
	g.CurrentPlayer = g.CurrentPlayer.Opponent()
}
