package game

import "fmt"

type Color uint8

const (
	White Color = iota
	Black
)

func (c Color) Opponent() Color {
	if c == White {
		return Black
	}
	return White
}

func (c Color) String() string {
	switch c {
	case White:
		return "white"
	case Black:
		return "black"
	default:
		return fmt.Sprintf("color(%d)", uint8(c))
	}
}

func (c Color) MarshalText() ([]byte, error) {
	if c != White && c != Black {
		return nil, fmt.Errorf("unknown color %d", uint8(c))
	}
	return []byte(c.String()), nil
}

func (c *Color) UnmarshalText(text []byte) error {
	switch string(text) {
	case "white":
		*c = White
	case "black":
		*c = Black
	default:
		return fmt.Errorf("unknown color %q", text)
	}
	return nil
}

// PieceType zero value marks an empty square.
type PieceType uint8

const (
	NoPieceType PieceType = iota
	King
	Queen
	Rook
	Bishop
	Knight
	Pawn
)

var pieceTypeNames = map[PieceType]string{
	NoPieceType: "none",
	King:        "king",
	Queen:       "queen",
	Rook:        "rook",
	Bishop:      "bishop",
	Knight:      "knight",
	Pawn:        "pawn",
}

func (p PieceType) String() string {
	if name, ok := pieceTypeNames[p]; ok {
		return name
	}
	return fmt.Sprintf("piece(%d)", uint8(p))
}

func (p PieceType) MarshalText() ([]byte, error) {
	if _, ok := pieceTypeNames[p]; !ok {
		return nil, fmt.Errorf("unknown piece type %d", uint8(p))
	}
	return []byte(p.String()), nil
}

func (p *PieceType) UnmarshalText(text []byte) error {
	for t, name := range pieceTypeNames {
		if name == string(text) {
			*p = t
			return nil
		}
	}
	return fmt.Errorf("unknown piece type %q", text)
}

// Piece is what occupies a square. HasMoved is only consulted for castling.
type Piece struct {
	Color    Color     `json:"color" bson:"color"`
	Type     PieceType `json:"type" bson:"type"`
	HasMoved bool      `json:"has_moved" bson:"has_moved"`
}

func NewPiece(color Color, pieceType PieceType) Piece {
	return Piece{Color: color, Type: pieceType}
}

func (p Piece) IsEmpty() bool {
	return p.Type == NoPieceType
}

var symbols = map[Color]map[PieceType]string{
	White: {King: "♔", Queen: "♕", Rook: "♖", Bishop: "♗", Knight: "♘", Pawn: "♙"},
	Black: {King: "♚", Queen: "♛", Rook: "♜", Bishop: "♝", Knight: "♞", Pawn: "♟"},
}

// Symbol returns the unicode glyph of the piece, "." for an empty square.
func (p Piece) Symbol() string {
	if s, ok := symbols[p.Color][p.Type]; ok {
		return s
	}
	return "."
}

func (p Piece) String() string {
	if p.IsEmpty() {
		return "empty"
	}
	return p.Color.String() + " " + p.Type.String()
}
