package movement

import "chessgame/internal/domain/game"

// IsInCheck reports whether color's king is attacked by any opposing
// piece's raw movement pattern. A board without that king is not in check.
func (s *Service) IsInCheck(b *game.Board, color game.Color) bool {
	king, found := findKing(b, color)
	if !found {
		return false
	}
	attacked := false
	b.Each(func(sq game.Square, p game.Piece) {
		if !attacked && p.Color != color && canMove(b, p, sq, king) {
			attacked = true
		}
	})
	return attacked
}

func findKing(b *game.Board, color game.Color) (game.Square, bool) {
	var (
		king  game.Square
		found bool
	)
	b.Each(func(sq game.Square, p game.Piece) {
		if !found && p.Type == game.King && p.Color == color {
			king, found = sq, true
		}
	})
	return king, found
}
