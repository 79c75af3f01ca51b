// Package notation converts games to and from Forsyth-Edwards Notation.
package notation

import (
	"fmt"
	"strings"

	"github.com/notnil/chess"

	"chessgame/internal/domain/game"
	errs "chessgame/internal/errors"
)

// Decode builds a game from a FEN record. Castling rights become the
// has-moved flags of kings and rooks, and an en passant target becomes the
// two-square pawn advance that produced it. Status is left to the caller.
func Decode(fen string) (game.Game, error) {
	opt, err := chess.FEN(strings.TrimSpace(fen))
	if err != nil {
		return game.Game{}, fmt.Errorf("%w: %v", errs.ErrInvalidFEN, err)
	}
	pos := chess.NewGame(opt).Position()

	var board game.Board
	for sq, p := range pos.Board().SquareMap() {
		board.Place(toSquare(sq), game.NewPiece(toColor(p.Color()), toPieceType(p.Type())))
	}
	markMoved(&board, pos.CastleRights())

	g := game.New(board, toColor(pos.Turn()))
	if ep := pos.EnPassantSquare(); ep != chess.NoSquare {
		last, err := passedPawn(&g, toSquare(ep))
		if err != nil {
			return game.Game{}, err
		}
		g.LastMove = last
	}
	return g, nil
}

// passedPawn rebuilds the double pawn advance that left target behind. The
// target must sit on the passed rank of the side that just moved, with that
// side's pawn right behind it and both squares it crossed empty.
func passedPawn(g *game.Game, target game.Square) (*game.MoveRecord, error) {
	mover := g.CurrentPlayer.Opponent()
	dir, passedRow := 1, 2
	if mover == game.White {
		dir, passedRow = -1, game.Size-3
	}
	from := game.Sq(target.Row-dir, target.Col)
	to := game.Sq(target.Row+dir, target.Col)

	pawn, ok := g.Board.Get(to)
	_, targetTaken := g.Board.Get(target)
	_, fromTaken := g.Board.Get(from)
	if target.Row != passedRow || !ok || pawn.Type != game.Pawn || pawn.Color != mover || targetTaken || fromTaken {
		return nil, fmt.Errorf("%w: en passant target %s does not follow a %s double pawn advance",
			errs.ErrInvalidFEN, fromSquare(target), mover)
	}
	return &game.MoveRecord{Piece: pawn, From: from, To: to}, nil
}

// Encode writes g as FEN. Move clocks are not tracked and always read "0 1".
func Encode(g game.Game) (string, error) {
	squares := make(map[chess.Square]chess.Piece)
	g.Board.Each(func(sq game.Square, p game.Piece) {
		squares[fromSquare(sq)] = chess.NewPiece(fromPieceType(p.Type), fromColor(p.Color))
	})

	turn := "w"
	if g.CurrentPlayer == game.Black {
		turn = "b"
	}
	fen := strings.Join([]string{
		chess.NewBoard(squares).String(),
		turn,
		castlingField(&g.Board),
		enPassantField(g),
		"0",
		"1",
	}, " ")

	if _, err := chess.FEN(fen); err != nil {
		return "", fmt.Errorf("%w: %v", errs.ErrInvalidFEN, err)
	}
	return fen, nil
}

func homeRow(c game.Color) int {
	if c == game.White {
		return game.Size - 1
	}
	return 0
}

func markMoved(b *game.Board, rights chess.CastleRights) {
	for _, c := range []game.Color{game.White, game.Black} {
		kingSide := rights.CanCastle(fromColor(c), chess.KingSide)
		queenSide := rights.CanCastle(fromColor(c), chess.QueenSide)
		row := homeRow(c)

		b.Each(func(sq game.Square, p game.Piece) {
			if p.Color != c {
				return
			}
			switch p.Type {
			case game.King:
				p.HasMoved = !(kingSide || queenSide) || sq != game.Sq(row, 4)
			case game.Rook:
				unmoved := (kingSide && sq == game.Sq(row, game.Size-1)) || (queenSide && sq == game.Sq(row, 0))
				p.HasMoved = !unmoved
			case game.Pawn:
				pawnHome := 1
				if c == game.White {
					pawnHome = game.Size - 2
				}
				p.HasMoved = sq.Row != pawnHome
			default:
				return
			}
			b.Place(sq, p)
		})
	}
}

func castlingField(b *game.Board) string {
	var sb strings.Builder
	for _, c := range []game.Color{game.White, game.Black} {
		row := homeRow(c)
		king, ok := b.Get(game.Sq(row, 4))
		if !ok || king.Type != game.King || king.Color != c || king.HasMoved {
			continue
		}
		sides := []struct {
			col    int
			letter byte
		}{{game.Size - 1, 'K'}, {0, 'Q'}}
		for _, side := range sides {
			rook, ok := b.Get(game.Sq(row, side.col))
			if !ok || rook.Type != game.Rook || rook.Color != c || rook.HasMoved {
				continue
			}
			letter := side.letter
			if c == game.Black {
				letter += 'a' - 'A'
			}
			sb.WriteByte(letter)
		}
	}
	if sb.Len() == 0 {
		return "-"
	}
	return sb.String()
}

func enPassantField(g game.Game) string {
	last := g.LastMove
	if last == nil || !last.IsDoublePawnAdvance() || last.Piece.Color == g.CurrentPlayer {
		return "-"
	}
	passed := game.Sq((last.From.Row+last.To.Row)/2, last.To.Col)
	return fromSquare(passed).String()
}

func toSquare(sq chess.Square) game.Square {
	return game.Sq(game.Size-1-int(sq.Rank()), int(sq.File()))
}

func fromSquare(sq game.Square) chess.Square {
	return chess.Square((game.Size-1-sq.Row)*game.Size + sq.Col)
}

func toColor(c chess.Color) game.Color {
	if c == chess.Black {
		return game.Black
	}
	return game.White
}

func fromColor(c game.Color) chess.Color {
	if c == game.Black {
		return chess.Black
	}
	return chess.White
}

func toPieceType(t chess.PieceType) game.PieceType {
	switch t {
	case chess.King:
		return game.King
	case chess.Queen:
		return game.Queen
	case chess.Rook:
		return game.Rook
	case chess.Bishop:
		return game.Bishop
	case chess.Knight:
		return game.Knight
	case chess.Pawn:
		return game.Pawn
	}
	return game.NoPieceType
}

func fromPieceType(t game.PieceType) chess.PieceType {
	switch t {
	case game.King:
		return chess.King
	case game.Queen:
		return chess.Queen
	case game.Rook:
		return chess.Rook
	case game.Bishop:
		return chess.Bishop
	case game.Knight:
		return chess.Knight
	case game.Pawn:
		return chess.Pawn
	}
	return chess.NoPieceType
}
