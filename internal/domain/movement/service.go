// Package movement is the chess rules engine: move legality, check and
// checkmate detection. Apply is the only method that mutates the game it
// is given; hypothetical moves are played on copies.
package movement

import "chessgame/internal/domain/game"

type Verdict uint8

const (
	Illegal Verdict = iota
	Legal
)

func (v Verdict) String() string {
	if v == Legal {
		return "legal"
	}
	return "illegal"
}

// Service holds no state and is safe to share. Callers must still not
// mutate a Game while it is being validated.
type Service struct{}

func NewService() *Service {
	return &Service{}
}

// Validate decides whether the side to move may play from->to.
// Out-of-bounds squares are simply Illegal.
func (s *Service) Validate(g *game.Game, from, to game.Square) Verdict {
	if !from.InBounds() || !to.InBounds() {
		return Illegal
	}
	b := &g.Board

	piece, ok := b.Get(from)
	if !ok || piece.Color != g.CurrentPlayer {
		return Illegal
	}
	if target, occupied := b.Get(to); occupied && target.Color == piece.Color {
		return Illegal
	}
	if !canMove(b, piece, from, to) && !s.isEnPassant(g, piece, from, to) {
		return Illegal
	}

	if piece.Type == game.King && abs(to.Col-from.Col) == 2 {
		// no castling out of or through check
		if s.IsInCheck(b, piece.Color) {
			return Illegal
		}
		passed := game.Sq(from.Row, from.Col+sign(to.Col-from.Col))
		if s.leavesKingInCheck(g, from, passed) {
			return Illegal
		}
	}
	if s.leavesKingInCheck(g, from, to) {
		return Illegal
	}
	return Legal
}

func (s *Service) IsValidMove(g *game.Game, from, to game.Square) bool {
	return s.Validate(g, from, to) == Legal
}

// IsCheckmate is true when the side to move is in check and no legal move
// gets its king out. Without check it is always false, even with no legal
// moves: stalemate is not detected.
func (s *Service) IsCheckmate(g *game.Game) bool {
	color := g.CurrentPlayer
	if !s.IsInCheck(&g.Board, color) {
		return false
	}
	escaped := false
	s.eachLegalMove(g, func(from, to game.Square) bool {
		sim := s.Simulate(g, from, to)
		escaped = !s.IsInCheck(&sim.Board, color)
		return !escaped
	})
	return !escaped
}

// Status classifies the position for the side to move.
func (s *Service) Status(g *game.Game) game.Status {
	switch {
	case s.IsCheckmate(g):
		return game.StatusCheckmate
	case s.IsInCheck(&g.Board, g.CurrentPlayer):
		return game.StatusCheck
	default:
		return game.StatusOngoing
	}
}

// LegalDestinations lists, in row-major order, every square the piece on
// from may legally move to.
func (s *Service) LegalDestinations(g *game.Game, from game.Square) []game.Square {
	var out []game.Square
	if !from.InBounds() {
		return out
	}
	for row := 0; row < game.Size; row++ {
		for col := 0; col < game.Size; col++ {
			to := game.Sq(row, col)
			if s.IsValidMove(g, from, to) {
				out = append(out, to)
			}
		}
	}
	return out
}

// LegalMoves lists every legal move for the side to move.
func (s *Service) LegalMoves(g *game.Game) []game.Move {
	var out []game.Move
	s.eachLegalMove(g, func(from, to game.Square) bool {
		out = append(out, game.Move{From: from, To: to})
		return true
	})
	return out
}

// eachLegalMove stops early when fn returns false.
func (s *Service) eachLegalMove(g *game.Game, fn func(from, to game.Square) bool) {
	for fromRow := 0; fromRow < game.Size; fromRow++ {
		for fromCol := 0; fromCol < game.Size; fromCol++ {
			from := game.Sq(fromRow, fromCol)
			p, ok := g.Board.Get(from)
			if !ok || p.Color != g.CurrentPlayer {
				continue
			}
			for toRow := 0; toRow < game.Size; toRow++ {
				for toCol := 0; toCol < game.Size; toCol++ {
					to := game.Sq(toRow, toCol)
					if s.IsValidMove(g, from, to) && !fn(from, to) {
						return
					}
				}
			}
		}
	}
}

func (s *Service) leavesKingInCheck(g *game.Game, from, to game.Square) bool {
	sim := s.Simulate(g, from, to)
	return s.IsInCheck(&sim.Board, g.CurrentPlayer)
}
