package movement_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"chessgame/internal/domain/game"
	"chessgame/internal/domain/movement"
)

type placement struct {
	sq    game.Square
	piece game.Piece
}

func at(row, col int, c game.Color, t game.PieceType) placement {
	return placement{sq: game.Sq(row, col), piece: game.NewPiece(c, t)}
}

func moved(p placement) placement {
	p.piece.HasMoved = true
	return p
}

func setup(current game.Color, pieces ...placement) *game.Game {
	var b game.Board
	for _, p := range pieces {
		b.Place(p.sq, p.piece)
	}
	g := game.New(b, current)
	return &g
}

func TestValidateRejectsOffBoardSquares(t *testing.T) {
	svc := movement.NewService()
	g := game.New(game.StandardBoard(), game.White)

	tests := []struct {
		name     string
		from, to game.Square
	}{
		{"negative from row", game.Sq(-1, 4), game.Sq(5, 4)},
		{"from col too large", game.Sq(6, 8), game.Sq(5, 7)},
		{"negative to col", game.Sq(6, 0), game.Sq(5, -1)},
		{"to row too large", game.Sq(6, 4), game.Sq(8, 4)},
		{"both far away", game.Sq(100, 100), game.Sq(-100, -100)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := svc.Validate(&g, tt.from, tt.to); got != movement.Illegal {
				t.Fatalf("Validate(%v, %v) = %v, want illegal", tt.from, tt.to, got)
			}
		})
	}
}

func TestValidatePieceRules(t *testing.T) {
	tests := []struct {
		name     string
		game     *game.Game
		from, to game.Square
		want     bool
	}{
		{
			name: "white pawn single step",
			game: setup(game.White, at(6, 0, game.White, game.Pawn)),
			from: game.Sq(6, 0), to: game.Sq(5, 0), want: true,
		},
		{
			name: "white pawn double step from home row",
			game: setup(game.White, at(6, 0, game.White, game.Pawn)),
			from: game.Sq(6, 0), to: game.Sq(4, 0), want: true,
		},
		{
			name: "double step blocked on the intermediate square",
			game: setup(game.White, at(6, 0, game.White, game.Pawn), at(5, 0, game.Black, game.Knight)),
			from: game.Sq(6, 0), to: game.Sq(4, 0), want: false,
		},
		{
			name: "double step blocked on the destination",
			game: setup(game.White, at(6, 0, game.White, game.Pawn), at(4, 0, game.White, game.Knight)),
			from: game.Sq(6, 0), to: game.Sq(4, 0), want: false,
		},
		{
			name: "double step away from the home row",
			game: setup(game.White, at(5, 0, game.White, game.Pawn)),
			from: game.Sq(5, 0), to: game.Sq(3, 0), want: false,
		},
		{
			name: "black pawn double step",
			game: setup(game.Black, at(1, 3, game.Black, game.Pawn)),
			from: game.Sq(1, 3), to: game.Sq(3, 3), want: true,
		},
		{
			name: "black pawn cannot move backwards",
			game: setup(game.Black, at(3, 3, game.Black, game.Pawn)),
			from: game.Sq(3, 3), to: game.Sq(2, 3), want: false,
		},
		{
			name: "pawn captures diagonally",
			game: setup(game.White, at(6, 0, game.White, game.Pawn), at(5, 1, game.Black, game.Pawn)),
			from: game.Sq(6, 0), to: game.Sq(5, 1), want: true,
		},
		{
			name: "pawn cannot capture forward",
			game: setup(game.White, at(6, 0, game.White, game.Pawn), at(5, 0, game.Black, game.Pawn)),
			from: game.Sq(6, 0), to: game.Sq(5, 0), want: false,
		},
		{
			name: "pawn cannot step diagonally onto an empty square",
			game: setup(game.White, at(6, 0, game.White, game.Pawn)),
			from: game.Sq(6, 0), to: game.Sq(5, 1), want: false,
		},
		{
			name: "rook moves along the rank",
			game: setup(game.White, at(7, 0, game.White, game.Rook)),
			from: game.Sq(7, 0), to: game.Sq(7, 5), want: true,
		},
		{
			name: "rook blocked by own piece",
			game: setup(game.White, at(7, 0, game.White, game.Rook), at(7, 2, game.White, game.Pawn)),
			from: game.Sq(7, 0), to: game.Sq(7, 5), want: false,
		},
		{
			name: "rook blocked by enemy piece",
			game: setup(game.White, at(7, 0, game.White, game.Rook), at(4, 0, game.Black, game.Pawn)),
			from: game.Sq(7, 0), to: game.Sq(2, 0), want: false,
		},
		{
			name: "rook captures the first enemy on its line",
			game: setup(game.White, at(7, 0, game.White, game.Rook), at(4, 0, game.Black, game.Pawn)),
			from: game.Sq(7, 0), to: game.Sq(4, 0), want: true,
		},
		{
			name: "rook cannot move diagonally",
			game: setup(game.White, at(7, 0, game.White, game.Rook)),
			from: game.Sq(7, 0), to: game.Sq(6, 1), want: false,
		},
		{
			name: "knight jumps over pieces",
			game: setup(game.White,
				at(7, 1, game.White, game.Knight),
				at(6, 1, game.White, game.Pawn),
				at(5, 1, game.White, game.Pawn)),
			from: game.Sq(7, 1), to: game.Sq(5, 2), want: true,
		},
		{
			name: "knight cannot move straight",
			game: setup(game.White, at(7, 1, game.White, game.Knight)),
			from: game.Sq(7, 1), to: game.Sq(5, 1), want: false,
		},
		{
			name: "bishop moves diagonally",
			game: setup(game.White, at(7, 2, game.White, game.Bishop)),
			from: game.Sq(7, 2), to: game.Sq(4, 5), want: true,
		},
		{
			name: "bishop blocked on the diagonal",
			game: setup(game.White, at(7, 2, game.White, game.Bishop), at(5, 4, game.Black, game.Pawn)),
			from: game.Sq(7, 2), to: game.Sq(4, 5), want: false,
		},
		{
			name: "queen moves like a rook",
			game: setup(game.White, at(7, 3, game.White, game.Queen)),
			from: game.Sq(7, 3), to: game.Sq(1, 3), want: true,
		},
		{
			name: "queen moves like a bishop",
			game: setup(game.White, at(7, 3, game.White, game.Queen)),
			from: game.Sq(7, 3), to: game.Sq(4, 0), want: true,
		},
		{
			name: "queen cannot move like a knight",
			game: setup(game.White, at(7, 3, game.White, game.Queen)),
			from: game.Sq(7, 3), to: game.Sq(5, 4), want: false,
		},
		{
			name: "king steps one square",
			game: setup(game.White, at(7, 4, game.White, game.King)),
			from: game.Sq(7, 4), to: game.Sq(6, 4), want: true,
		},
		{
			name: "king cannot step two squares forward",
			game: setup(game.White, at(7, 4, game.White, game.King)),
			from: game.Sq(7, 4), to: game.Sq(5, 4), want: false,
		},
		{
			name: "empty source square",
			game: setup(game.White, at(7, 4, game.White, game.King)),
			from: game.Sq(4, 4), to: game.Sq(3, 4), want: false,
		},
		{
			name: "moving the opponent's piece",
			game: setup(game.White, at(1, 4, game.Black, game.Pawn)),
			from: game.Sq(1, 4), to: game.Sq(2, 4), want: false,
		},
		{
			name: "capturing an own piece",
			game: setup(game.White, at(7, 0, game.White, game.Rook), at(7, 3, game.White, game.Queen)),
			from: game.Sq(7, 0), to: game.Sq(7, 3), want: false,
		},
	}

	svc := movement.NewService()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := svc.IsValidMove(tt.game, tt.from, tt.to); got != tt.want {
				t.Fatalf("IsValidMove(%v, %v) = %v, want %v\n%s", tt.from, tt.to, got, tt.want, tt.game.Board)
			}
		})
	}
}

func TestValidateRejectsSelfCheck(t *testing.T) {
	svc := movement.NewService()

	t.Run("king already attacked along the rank", func(t *testing.T) {
		g := setup(game.White,
			at(7, 4, game.White, game.King),
			at(7, 0, game.White, game.Rook),
			at(7, 7, game.Black, game.Rook))
		if svc.IsValidMove(g, game.Sq(7, 0), game.Sq(6, 0)) {
			t.Fatal("rook move that leaves the king attacked was accepted")
		}
	})

	t.Run("pinned rook", func(t *testing.T) {
		g := setup(game.White,
			at(7, 4, game.White, game.King),
			at(7, 5, game.White, game.Rook),
			at(7, 7, game.Black, game.Rook))
		if svc.IsValidMove(g, game.Sq(7, 5), game.Sq(6, 5)) {
			t.Fatal("pinned rook was allowed to leave the pin line")
		}
		if !svc.IsValidMove(g, game.Sq(7, 5), game.Sq(7, 7)) {
			t.Fatal("pinned rook should be able to capture the pinning rook")
		}
	})

	t.Run("king cannot step into an attacked square", func(t *testing.T) {
		g := setup(game.White,
			at(7, 4, game.White, game.King),
			at(0, 3, game.Black, game.Rook))
		if svc.IsValidMove(g, game.Sq(7, 4), game.Sq(7, 3)) {
			t.Fatal("king stepped onto a file covered by a rook")
		}
		if !svc.IsValidMove(g, game.Sq(7, 4), game.Sq(7, 5)) {
			t.Fatal("king should be able to step away from the attacked file")
		}
	})
}

func castlingBoard(extra ...placement) *game.Game {
	pieces := []placement{
		at(7, 4, game.White, game.King),
		at(7, 0, game.White, game.Rook),
		at(7, 7, game.White, game.Rook),
		at(0, 4, game.Black, game.King),
	}
	return setup(game.White, append(pieces, extra...)...)
}

func TestValidateCastling(t *testing.T) {
	kingSide, queenSide := game.Sq(7, 6), game.Sq(7, 2)

	tests := []struct {
		name string
		game *game.Game
		to   game.Square
		want bool
	}{
		{"kingside with a clear path", castlingBoard(), kingSide, true},
		{"queenside with a clear path", castlingBoard(), queenSide, true},
		{"own bishop between king and rook", castlingBoard(at(7, 5, game.White, game.Bishop)), kingSide, false},
		{"own knight next to the queenside rook", castlingBoard(at(7, 1, game.White, game.Knight)), queenSide, false},
		{"enemy piece between king and rook", castlingBoard(at(7, 6, game.Black, game.Knight)), kingSide, false},
		{"out of check", castlingBoard(at(2, 4, game.Black, game.Rook)), kingSide, false},
		{"through an attacked square", castlingBoard(at(2, 5, game.Black, game.Rook)), kingSide, false},
		{"into an attacked square", castlingBoard(at(2, 6, game.Black, game.Rook)), kingSide, false},
		{"queenside rook's neighbour attacked", castlingBoard(at(2, 1, game.Black, game.Rook)), queenSide, true},
	}

	svc := movement.NewService()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := svc.IsValidMove(tt.game, game.Sq(7, 4), tt.to); got != tt.want {
				t.Fatalf("castle to %v = %v, want %v\n%s", tt.to, got, tt.want, tt.game.Board)
			}
		})
	}

	t.Run("king has moved", func(t *testing.T) {
		g := setup(game.White,
			moved(at(7, 4, game.White, game.King)),
			at(7, 7, game.White, game.Rook))
		if svc.IsValidMove(g, game.Sq(7, 4), kingSide) {
			t.Fatal("castled with a king that has moved")
		}
	})

	t.Run("rook has moved", func(t *testing.T) {
		g := setup(game.White,
			at(7, 4, game.White, game.King),
			moved(at(7, 7, game.White, game.Rook)))
		if svc.IsValidMove(g, game.Sq(7, 4), kingSide) {
			t.Fatal("castled with a rook that has moved")
		}
	})

	t.Run("apply moves the rook too", func(t *testing.T) {
		g := castlingBoard()
		svc.Apply(g, game.Sq(7, 4), kingSide)

		king, _ := g.Board.Get(kingSide)
		rook, ok := g.Board.Get(game.Sq(7, 5))
		if !ok || rook.Type != game.Rook || !rook.HasMoved {
			t.Fatalf("expected a moved rook on (7,5), got %v\n%s", rook, g.Board)
		}
		if king.Type != game.King || !king.HasMoved {
			t.Fatalf("expected a moved king on %v, got %v", kingSide, king)
		}
		if _, ok := g.Board.Get(game.Sq(7, 7)); ok {
			t.Fatal("corner rook was left behind")
		}
	})

	t.Run("apply queenside", func(t *testing.T) {
		g := castlingBoard()
		svc.Apply(g, game.Sq(7, 4), queenSide)

		if rook, ok := g.Board.Get(game.Sq(7, 3)); !ok || rook.Type != game.Rook {
			t.Fatalf("expected rook on (7,3)\n%s", g.Board)
		}
		if _, ok := g.Board.Get(game.Sq(7, 0)); ok {
			t.Fatal("corner rook was left behind")
		}
	})
}

func TestEnPassant(t *testing.T) {
	svc := movement.NewService()
	newPosition := func() *game.Game {
		g := setup(game.Black,
			at(7, 4, game.White, game.King),
			at(0, 4, game.Black, game.King),
			moved(at(3, 4, game.White, game.Pawn)),
			at(1, 5, game.Black, game.Pawn))
		svc.Apply(g, game.Sq(1, 5), game.Sq(3, 5))
		return g
	}

	t.Run("capture right after the double advance", func(t *testing.T) {
		g := newPosition()
		if !svc.IsValidMove(g, game.Sq(3, 4), game.Sq(2, 5)) {
			t.Fatalf("en passant capture rejected\n%s", g.Board)
		}
		svc.Apply(g, game.Sq(3, 4), game.Sq(2, 5))
		if _, ok := g.Board.Get(game.Sq(3, 5)); ok {
			t.Fatalf("captured pawn still on (3,5)\n%s", g.Board)
		}
		if p, ok := g.Board.Get(game.Sq(2, 5)); !ok || p.Color != game.White || p.Type != game.Pawn {
			t.Fatalf("white pawn not on (2,5)\n%s", g.Board)
		}
	})

	t.Run("not on the other diagonal", func(t *testing.T) {
		g := newPosition()
		if svc.IsValidMove(g, game.Sq(3, 4), game.Sq(2, 3)) {
			t.Fatal("diagonal step onto an empty square accepted")
		}
	})

	t.Run("only immediately after the advance", func(t *testing.T) {
		g := newPosition()
		svc.Apply(g, game.Sq(7, 4), game.Sq(7, 3))
		svc.Apply(g, game.Sq(0, 4), game.Sq(0, 3))
		if svc.IsValidMove(g, game.Sq(3, 4), game.Sq(2, 5)) {
			t.Fatal("en passant accepted a move too late")
		}
	})

	t.Run("not after a single step", func(t *testing.T) {
		g := setup(game.Black,
			moved(at(3, 4, game.White, game.Pawn)),
			moved(at(2, 5, game.Black, game.Pawn)))
		svc.Apply(g, game.Sq(2, 5), game.Sq(3, 5))
		if svc.IsValidMove(g, game.Sq(3, 4), game.Sq(2, 5)) {
			t.Fatal("en passant accepted after a one-row pawn move")
		}
	})

	t.Run("not when the advanced pawn is gone", func(t *testing.T) {
		g := setup(game.White,
			at(7, 4, game.White, game.King),
			at(0, 4, game.Black, game.King),
			at(6, 3, game.White, game.Pawn),
			at(6, 4, game.White, game.Knight))
		g.LastMove = &game.MoveRecord{
			Piece: moved(at(4, 4, game.Black, game.Pawn)).piece,
			From:  game.Sq(4, 4),
			To:    game.Sq(6, 4),
		}
		if svc.IsValidMove(g, game.Sq(6, 3), game.Sq(5, 4)) {
			t.Fatalf("en passant accepted without a pawn to capture\n%s", g.Board)
		}
	})
}

func TestIsInCheck(t *testing.T) {
	svc := movement.NewService()

	tests := []struct {
		name string
		game *game.Game
		want bool
	}{
		{"rook on the same rank", setup(game.White, at(7, 4, game.White, game.King), at(7, 7, game.Black, game.Rook)), true},
		{"rook blocked", setup(game.White, at(7, 4, game.White, game.King), at(7, 6, game.White, game.Knight), at(7, 7, game.Black, game.Rook)), false},
		{"knight", setup(game.White, at(7, 4, game.White, game.King), at(5, 5, game.Black, game.Knight)), true},
		{"pawn diagonal", setup(game.White, at(7, 4, game.White, game.King), at(6, 3, game.Black, game.Pawn)), true},
		{"pawn straight ahead does not attack", setup(game.White, at(7, 4, game.White, game.King), at(6, 4, game.Black, game.Pawn)), false},
		{"bishop on the long diagonal", setup(game.White, at(7, 0, game.White, game.King), at(0, 7, game.Black, game.Bishop)), true},
		{"adjacent king", setup(game.White, at(7, 4, game.White, game.King), at(6, 5, game.Black, game.King)), true},
		{"own pieces never attack", setup(game.White, at(7, 4, game.White, game.King), at(7, 7, game.White, game.Rook)), false},
		{"no king", setup(game.White, at(7, 7, game.Black, game.Rook)), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := svc.IsInCheck(&tt.game.Board, game.White); got != tt.want {
				t.Fatalf("IsInCheck = %v, want %v\n%s", got, tt.want, tt.game.Board)
			}
		})
	}
}

func TestIsCheckmate(t *testing.T) {
	svc := movement.NewService()

	t.Run("lone king can step out of check", func(t *testing.T) {
		g := setup(game.White, at(7, 4, game.White, game.King), at(7, 7, game.Black, game.Rook))
		if !svc.IsInCheck(&g.Board, game.White) {
			t.Fatal("expected check")
		}
		if svc.IsCheckmate(g) {
			t.Fatal("king can step to row 6, not checkmate")
		}

		g.Board.Clear(game.Sq(7, 4))
		g.Board.Place(game.Sq(6, 4), game.NewPiece(game.White, game.King))
		if svc.IsInCheck(&g.Board, game.White) {
			t.Fatal("king on (6,4) should not be in check")
		}
		if svc.IsCheckmate(g) {
			t.Fatal("no check means no checkmate")
		}
	})

	t.Run("back rank mate", func(t *testing.T) {
		g := setup(game.White,
			at(7, 6, game.White, game.King),
			at(6, 5, game.White, game.Pawn),
			at(6, 6, game.White, game.Pawn),
			at(6, 7, game.White, game.Pawn),
			at(7, 0, game.Black, game.Rook),
			at(0, 4, game.Black, game.King))
		if !svc.IsCheckmate(g) {
			t.Fatalf("expected checkmate\n%s", g.Board)
		}
		if got := svc.Status(g); got != game.StatusCheckmate {
			t.Fatalf("Status = %v, want checkmate", got)
		}
	})

	t.Run("back rank check that can be blocked", func(t *testing.T) {
		g := setup(game.White,
			at(7, 6, game.White, game.King),
			at(6, 5, game.White, game.Pawn),
			at(6, 6, game.White, game.Pawn),
			at(6, 7, game.White, game.Pawn),
			at(5, 3, game.White, game.Rook),
			at(7, 0, game.Black, game.Rook),
			at(0, 4, game.Black, game.King))
		if svc.IsCheckmate(g) {
			t.Fatalf("rook can interpose on (7,3)\n%s", g.Board)
		}
		if got := svc.Status(g); got != game.StatusCheck {
			t.Fatalf("Status = %v, want check", got)
		}
	})

	t.Run("fool's mate from the initial position", func(t *testing.T) {
		g := game.New(game.StandardBoard(), game.White)
		plies := []game.Move{
			{From: game.Sq(6, 5), To: game.Sq(5, 5)},
			{From: game.Sq(1, 4), To: game.Sq(3, 4)},
			{From: game.Sq(6, 6), To: game.Sq(4, 6)},
			{From: game.Sq(0, 3), To: game.Sq(4, 7)},
		}
		for _, m := range plies {
			if !svc.IsValidMove(&g, m.From, m.To) {
				t.Fatalf("%v -> %v rejected\n%s", m.From, m.To, g.Board)
			}
			svc.Apply(&g, m.From, m.To)
		}
		if !svc.IsCheckmate(&g) {
			t.Fatalf("expected checkmate\n%s", g.Board)
		}
	})

	t.Run("no legal moves without check is not checkmate", func(t *testing.T) {
		g := setup(game.White,
			at(7, 7, game.White, game.King),
			at(5, 6, game.Black, game.Queen),
			at(0, 0, game.Black, game.King))
		if len(svc.LegalMoves(g)) != 0 {
			t.Fatalf("expected a stalemate position\n%s", g.Board)
		}
		if svc.IsCheckmate(g) {
			t.Fatal("stalemate reported as checkmate")
		}
		if got := svc.Status(g); got != game.StatusOngoing {
			t.Fatalf("Status = %v, want ongoing", got)
		}
	})
}

func TestSimulateLeavesOriginalUntouched(t *testing.T) {
	svc := movement.NewService()
	g := setup(game.Black,
		at(7, 4, game.White, game.King),
		at(0, 4, game.Black, game.King),
		moved(at(3, 4, game.White, game.Pawn)),
		at(1, 5, game.Black, game.Pawn))
	svc.Apply(g, game.Sq(1, 5), game.Sq(3, 5))

	boardBefore := g.Board
	lastBefore := g.LastMove
	lastValue := *g.LastMove

	sim := svc.Simulate(g, game.Sq(3, 4), game.Sq(2, 5))

	if g.Board != boardBefore {
		t.Fatalf("original board changed\n%s", g.Board)
	}
	if g.LastMove != lastBefore || *g.LastMove != lastValue {
		t.Fatal("original last move changed")
	}
	if g.CurrentPlayer != game.White {
		t.Fatalf("original side to move changed to %v", g.CurrentPlayer)
	}
	if sim.LastMove == g.LastMove {
		t.Fatal("simulation shares the last move record")
	}
	if sim.CurrentPlayer != game.Black {
		t.Fatalf("simulation side to move = %v, want black", sim.CurrentPlayer)
	}
	if _, ok := sim.Board.Get(game.Sq(3, 5)); ok {
		t.Fatal("simulation did not remove the en passant victim")
	}
}

func TestLegalDestinations(t *testing.T) {
	svc := movement.NewService()
	g := game.New(game.StandardBoard(), game.White)

	tests := []struct {
		name string
		from game.Square
		want []game.Square
	}{
		{"knight from b1", game.Sq(7, 1), []game.Square{game.Sq(5, 0), game.Sq(5, 2)}},
		{"pawn from e2", game.Sq(6, 4), []game.Square{game.Sq(4, 4), game.Sq(5, 4)}},
		{"blocked rook", game.Sq(7, 0), nil},
		{"black piece on white's turn", game.Sq(1, 4), nil},
		{"off the board", game.Sq(9, 9), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := svc.LegalDestinations(&g, tt.from)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("LegalDestinations(%v) mismatch (-want +got):\n%s", tt.from, diff)
			}
		})
	}

	if n := len(svc.LegalMoves(&g)); n != 20 {
		t.Fatalf("initial position has %d legal moves, want 20", n)
	}
}
