package movement

import "chessgame/internal/domain/game"

// canMove reports whether p's raw movement pattern allows from->to on b.
// It ignores turn order, self-capture and check safety, and must never
// call back into Validate: check detection is built on it.
func canMove(b *game.Board, p game.Piece, from, to game.Square) bool {
	dr, dc := to.Row-from.Row, to.Col-from.Col
	adr, adc := abs(dr), abs(dc)

	switch p.Type {
	case game.Pawn:
		return canMovePawn(b, p, from, to)
	case game.Knight:
		return (adr == 2 && adc == 1) || (adr == 1 && adc == 2)
	case game.Bishop:
		return adr == adc && adr != 0 && isPathClear(b, from, to)
	case game.Rook:
		return (dr == 0) != (dc == 0) && isPathClear(b, from, to)
	case game.Queen:
		straight := (dr == 0) != (dc == 0)
		diagonal := adr == adc && adr != 0
		return (straight || diagonal) && isPathClear(b, from, to)
	case game.King:
		if adr <= 1 && adc <= 1 {
			return adr+adc != 0
		}
		return canCastle(b, p, from, to)
	case game.NoPieceType:
		return false
	}
	return false
}

func pawnDirection(c game.Color) int {
	if c == game.White {
		return -1
	}
	return 1
}

func pawnHomeRow(c game.Color) int {
	if c == game.White {
		return 6
	}
	return 1
}

func canMovePawn(b *game.Board, p game.Piece, from, to game.Square) bool {
	dir := pawnDirection(p.Color)
	dr, dc := to.Row-from.Row, to.Col-from.Col
	target, occupied := b.Get(to)

	switch {
	case dc == 0 && dr == dir:
		return !occupied
	case dc == 0 && dr == 2*dir && from.Row == pawnHomeRow(p.Color):
		_, blocked := b.Get(game.Sq(from.Row+dir, from.Col))
		return !occupied && !blocked
	case abs(dc) == 1 && dr == dir:
		return occupied && target.Color != p.Color
	}
	return false
}

// canCastle is the king's two-column pattern: king and the rook on that
// side unmoved, every square strictly between them empty. Attack checks
// belong to Validate.
func canCastle(b *game.Board, king game.Piece, from, to game.Square) bool {
	if to.Row != from.Row || abs(to.Col-from.Col) != 2 || king.HasMoved {
		return false
	}
	rookCol, step := game.Size-1, 1
	if to.Col < from.Col {
		rookCol, step = 0, -1
	}
	rook, ok := b.Get(game.Sq(from.Row, rookCol))
	if !ok || rook.Type != game.Rook || rook.Color != king.Color || rook.HasMoved {
		return false
	}
	for col := from.Col + step; col != rookCol; col += step {
		if _, occupied := b.Get(game.Sq(from.Row, col)); occupied {
			return false
		}
	}
	return true
}

// isPathClear checks the squares strictly between from and to along a
// straight or diagonal line.
func isPathClear(b *game.Board, from, to game.Square) bool {
	stepRow, stepCol := sign(to.Row-from.Row), sign(to.Col-from.Col)
	cur := game.Sq(from.Row+stepRow, from.Col+stepCol)
	for cur != to {
		if _, occupied := b.Get(cur); occupied {
			return false
		}
		cur = game.Sq(cur.Row+stepRow, cur.Col+stepCol)
	}
	return true
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func sign(x int) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}
