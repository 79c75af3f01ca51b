package game

import (
	"encoding/json"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
)

const Size = 8

// Square addresses the board by row and column. Row 0 is Black's home
// rank, row 7 is White's.
type Square struct {
	Row int `json:"row" bson:"row"`
	Col int `json:"col" bson:"col"`
}

func Sq(row, col int) Square {
	return Square{Row: row, Col: col}
}

func (s Square) InBounds() bool {
	return s.Row >= 0 && s.Row < Size && s.Col >= 0 && s.Col < Size
}

func (s Square) String() string {
	return fmt.Sprintf("(%d,%d)", s.Row, s.Col)
}

// Board is a plain 8x8 value. Assigning a Board copies every square, so a
// copy never shares state with the original.
//
// Place, Relocate and Clear trust the caller: squares must be in bounds.
type Board struct {
	squares [Size][Size]Piece
}

func (b *Board) Place(sq Square, p Piece) {
	b.squares[sq.Row][sq.Col] = p
}

func (b *Board) Get(sq Square) (Piece, bool) {
	if !sq.InBounds() {
		return Piece{}, false
	}
	p := b.squares[sq.Row][sq.Col]
	return p, !p.IsEmpty()
}

// Relocate moves whatever occupies from onto to, replacing any occupant.
func (b *Board) Relocate(from, to Square) {
	b.squares[to.Row][to.Col] = b.squares[from.Row][from.Col]
	b.squares[from.Row][from.Col] = Piece{}
}

func (b *Board) Clear(sq Square) {
	b.squares[sq.Row][sq.Col] = Piece{}
}

// Each calls fn for every occupied square in row-major order.
func (b *Board) Each(fn func(sq Square, p Piece)) {
	for row := 0; row < Size; row++ {
		for col := 0; col < Size; col++ {
			if p := b.squares[row][col]; !p.IsEmpty() {
				fn(Sq(row, col), p)
			}
		}
	}
}

// StandardBoard returns the initial setup with Black on rows 0-1.
func StandardBoard() Board {
	var b Board
	backRank := [Size]PieceType{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}
	for col, t := range backRank {
		b.Place(Sq(0, col), NewPiece(Black, t))
		b.Place(Sq(1, col), NewPiece(Black, Pawn))
		b.Place(Sq(6, col), NewPiece(White, Pawn))
		b.Place(Sq(7, col), NewPiece(White, t))
	}
	return b
}

func (b Board) String() string {
	var sb strings.Builder
	for row := 0; row < Size; row++ {
		for col := 0; col < Size; col++ {
			if col > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(b.squares[row][col].Symbol())
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// rows is the wire form shared by JSON and BSON: nil for an empty square.
func (b Board) rows() [][]*Piece {
	out := make([][]*Piece, Size)
	for row := range out {
		out[row] = make([]*Piece, Size)
		for col := 0; col < Size; col++ {
			if p := b.squares[row][col]; !p.IsEmpty() {
				out[row][col] = &p
			}
		}
	}
	return out
}

func (b *Board) setRows(rows [][]*Piece) error {
	if len(rows) != Size {
		return fmt.Errorf("board must have %d rows, got %d", Size, len(rows))
	}
	var next Board
	for row, cells := range rows {
		if len(cells) != Size {
			return fmt.Errorf("board row %d must have %d squares, got %d", row, Size, len(cells))
		}
		for col, p := range cells {
			if p != nil {
				next.squares[row][col] = *p
			}
		}
	}
	*b = next
	return nil
}

func (b Board) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.rows())
}

func (b *Board) UnmarshalJSON(data []byte) error {
	var rows [][]*Piece
	if err := json.Unmarshal(data, &rows); err != nil {
		return err
	}
	return b.setRows(rows)
}

type boardDocument struct {
	Squares [][]*Piece `bson:"squares"`
}

func (b Board) MarshalBSON() ([]byte, error) {
	return bson.Marshal(boardDocument{Squares: b.rows()})
}

func (b *Board) UnmarshalBSON(data []byte) error {
	var doc boardDocument
	if err := bson.Unmarshal(data, &doc); err != nil {
		return err
	}
	return b.setRows(doc.Squares)
}
