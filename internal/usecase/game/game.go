package game

import (
	"context"
	"fmt"
	"sync"

	"chessgame/internal/domain/game"
	"chessgame/internal/domain/movement"
	"chessgame/internal/domain/notation"
	errs "chessgame/internal/errors"
)

const (
	ReasonGameOver    = "game is over"
	ReasonInvalidMove = "invalid move"
)

type GameStore interface {
	// Save persists g and returns its id, assigning a new one when g.ID is empty.
	Save(ctx context.Context, g game.Game) (string, error)
	FindByID(ctx context.Context, id string) (game.Game, error)
	ListGameIDs(ctx context.Context) ([]string, error)
}

type MoveResult uint8

const (
	Rejected MoveResult = iota
	Applied
)

func (r MoveResult) String() string {
	if r == Applied {
		return "applied"
	}
	return "rejected"
}

// MoveOutcome is the answer to a move request. Game is the stored game after
// the move when Applied, and the unchanged game when Rejected.
type MoveOutcome struct {
	Result MoveResult
	Reason string
	Game   game.Game
}

// MoveListener receives the stored game after an applied move.
type MoveListener func(play game.Game)

type GameUseCase struct {
	store     GameStore
	engine    *movement.Service
	locks     *keyedMutex
	listeners []MoveListener
}

func NewGameUseCase(store GameStore, engine *movement.Service) *GameUseCase {
	return &GameUseCase{
		store:  store,
		engine: engine,
		locks:  newKeyedMutex(),
	}
}

// StartGame saves a new game in the standard initial position, White to move.
func (g *GameUseCase) StartGame(ctx context.Context) (string, error) {
	return g.store.Save(ctx, game.New(game.StandardBoard(), game.White))
}

func (g *GameUseCase) StartGameFromFEN(ctx context.Context, fen string) (string, error) {
	play, err := notation.Decode(fen)
	if err != nil {
		return "", err
	}
	play.Status = g.engine.Status(&play)
	return g.store.Save(ctx, play)
}

// OnMoveApplied registers fn for every applied move. Listeners run while the
// game is still locked, so one game's moves reach them in the order applied.
// Register listeners before the first move is made.
func (g *GameUseCase) OnMoveApplied(fn MoveListener) {
	g.listeners = append(g.listeners, fn)
}

// MovePiece validates and applies one move. Moves on the same game are
// serialised; an illegal move is a Rejected outcome, not an error.
func (g *GameUseCase) MovePiece(ctx context.Context, id string, from, to game.Square) (MoveOutcome, error) {
	unlock := g.locks.Lock(id)
	defer unlock()

	play, err := g.store.FindByID(ctx, id)
	if err != nil {
		return MoveOutcome{}, err
	}

	if play.Status.IsTerminal() {
		return MoveOutcome{Result: Rejected, Reason: ReasonGameOver, Game: play}, nil
	}
	if g.engine.Validate(&play, from, to) != movement.Legal {
		return MoveOutcome{Result: Rejected, Reason: ReasonInvalidMove, Game: play}, nil
	}

	g.engine.Apply(&play, from, to)
	play.Status = g.engine.Status(&play)

	if _, err = g.store.Save(ctx, play); err != nil {
		return MoveOutcome{}, fmt.Errorf("save game %s: %w", id, err)
	}
	saved, err := g.store.FindByID(ctx, id)
	if err != nil {
		return MoveOutcome{}, err
	}
	for _, notify := range g.listeners {
		notify(saved)
	}
	return MoveOutcome{Result: Applied, Game: saved}, nil
}

func (g *GameUseCase) GetGame(ctx context.Context, id string) (game.Game, error) {
	return g.store.FindByID(ctx, id)
}

func (g *GameUseCase) ListGameIDs(ctx context.Context) ([]string, error) {
	return g.store.ListGameIDs(ctx)
}

func (g *GameUseCase) ExportFEN(ctx context.Context, id string) (string, error) {
	play, err := g.store.FindByID(ctx, id)
	if err != nil {
		return "", err
	}
	return notation.Encode(play)
}

func (g *GameUseCase) LegalDestinations(ctx context.Context, id string, from game.Square) ([]game.Square, error) {
	if !from.InBounds() {
		return nil, errs.ErrInvalidSquare
	}
	play, err := g.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if play.Status.IsTerminal() {
		return nil, nil
	}
	return g.engine.LegalDestinations(&play, from), nil
}

// InCheck reports whether the side to move in play is in check.
func (g *GameUseCase) InCheck(play game.Game) bool {
	return g.engine.IsInCheck(&play.Board, play.CurrentPlayer)
}

// keyedMutex hands out one mutex per game id and forgets it once unused.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedEntry
}

type keyedEntry struct {
	sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*keyedEntry)}
}

func (k *keyedMutex) Lock(key string) (unlock func()) {
	k.mu.Lock()
	e, ok := k.locks[key]
	if !ok {
		e = &keyedEntry{}
		k.locks[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.Lock()
	return func() {
		e.Unlock()
		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
