package movement

import "chessgame/internal/domain/game"

// Simulate returns an independent copy of g with from->to applied. g is
// left untouched.
func (s *Service) Simulate(g *game.Game, from, to game.Square) game.Game {
	sim := g.Clone()
	s.Apply(&sim, from, to)
	return sim
}

// Apply plays from->to on g without checking legality: relocation with
// capture by replacement, en passant removal, the castling rook, the
// has-moved flags, last move and side to move. Callers validate first.
func (s *Service) Apply(g *game.Game, from, to game.Square) {
	piece, ok := g.Board.Get(from)
	if !ok {
		return
	}
	enPassant := s.isEnPassant(g, piece, from, to)
	castling := piece.Type == game.King && from.Row == to.Row && abs(to.Col-from.Col) == 2

	piece.HasMoved = true
	g.Board.Place(from, piece)
	if enPassant {
		g.Board.Clear(game.Sq(from.Row, to.Col))
	}
	g.Board.Relocate(from, to)

	if castling {
		rookFrom, rookTo := game.Sq(from.Row, game.Size-1), game.Sq(from.Row, to.Col-1)
		if to.Col < from.Col {
			rookFrom, rookTo = game.Sq(from.Row, 0), game.Sq(from.Row, to.Col+1)
		}
		if rook, ok := g.Board.Get(rookFrom); ok && rook.Type == game.Rook {
			rook.HasMoved = true
			g.Board.Place(rookFrom, rook)
			g.Board.Relocate(rookFrom, rookTo)
		}
	}

	g.LastMove = &game.MoveRecord{Piece: piece, From: from, To: to}
	g.SwitchPlayer()
}

// isEnPassant: a pawn stepping diagonally onto an empty square right after
// an opposing pawn's two-row advance landed beside it on the target column
// and that pawn is still there.
func (s *Service) isEnPassant(g *game.Game, p game.Piece, from, to game.Square) bool {
	if p.Type != game.Pawn {
		return false
	}
	if abs(to.Col-from.Col) != 1 || to.Row-from.Row != pawnDirection(p.Color) {
		return false
	}
	if _, occupied := g.Board.Get(to); occupied {
		return false
	}
	last := g.LastMove
	if last == nil || !last.IsDoublePawnAdvance() || last.Piece.Color == p.Color {
		return false
	}
	if last.To.Row != from.Row || last.To.Col != to.Col {
		return false
	}
	victim, ok := g.Board.Get(last.To)
	return ok && victim.Type == game.Pawn && victim.Color != p.Color
}
