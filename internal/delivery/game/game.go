package game

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"chessgame/internal/domain/game"
	"chessgame/internal/domain/notation"
	errs "chessgame/internal/errors"
	"chessgame/internal/httpresponse"
	gameuc "chessgame/internal/usecase/game"
	"chessgame/internal/utils"
)

type GameHandler struct {
	log    *zap.SugaredLogger
	gameUC *gameuc.GameUseCase
	hub    *Hub
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func NewGameHandler(log *zap.SugaredLogger, gameUC *gameuc.GameUseCase, hub *Hub) *GameHandler {
	h := &GameHandler{
		log:    log,
		gameUC: gameUC,
		hub:    hub,
	}
	gameUC.OnMoveApplied(h.broadcastState)
	return h
}

func (g *GameHandler) Routes(r chi.Router) {
	r.Post("/games", g.HandleNewGame)
	r.Get("/games", g.HandleListGames)
	r.Get("/games/{id}", g.HandleGetGame)
	r.Get("/games/{id}/fen", g.HandleGetFEN)
	r.Get("/games/{id}/legal", g.HandleLegalDestinations)
	r.Post("/games/{id}/moves", g.HandleMove)
	r.Get("/games/{id}/ws", g.HandleWatch)
}

func (g *GameHandler) HandleNewGame(w http.ResponseWriter, r *http.Request) {
	var req CreateGameRequest
	if err := utils.DecodeJSONRequest(r, &req); err != nil && !errors.Is(err, utils.ErrEmptyBody) {
		g.log.Warnw("bad new game request", "error", err)
		httpresponse.WriteError(w, http.StatusBadRequest, httpresponse.MALFORMEDJSON_errorDesc)
		return
	}

	var (
		id  string
		err error
	)
	if req.FEN != "" {
		id, err = g.gameUC.StartGameFromFEN(r.Context(), req.FEN)
	} else {
		id, err = g.gameUC.StartGame(r.Context())
	}
	if err != nil {
		g.writeError(w, err)
		return
	}

	g.log.Infow("game created", "game_id", id, "from_fen", req.FEN != "")
	httpresponse.WriteResponseWithStatus(w, http.StatusCreated, CreateGameResponse{GameID: id})
}

func (g *GameHandler) HandleListGames(w http.ResponseWriter, r *http.Request) {
	ids, err := g.gameUC.ListGameIDs(r.Context())
	if err != nil {
		g.writeError(w, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, GameListResponse{GameIDs: ids})
}

func (g *GameHandler) HandleGetGame(w http.ResponseWriter, r *http.Request) {
	play, err := g.gameUC.GetGame(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		g.writeError(w, err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, g.view(play))
}

func (g *GameHandler) HandleGetFEN(w http.ResponseWriter, r *http.Request) {
	fen, err := g.gameUC.ExportFEN(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		g.writeError(w, err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, FENResponse{FEN: fen})
}

func (g *GameHandler) HandleLegalDestinations(w http.ResponseWriter, r *http.Request) {
	row, rowErr := strconv.Atoi(r.URL.Query().Get("row"))
	col, colErr := strconv.Atoi(r.URL.Query().Get("col"))
	if rowErr != nil || colErr != nil {
		httpresponse.WriteError(w, http.StatusBadRequest, "row and col must be integers")
		return
	}

	from := game.Sq(row, col)
	dests, err := g.gameUC.LegalDestinations(r.Context(), chi.URLParam(r, "id"), from)
	if err != nil {
		g.writeError(w, err)
		return
	}
	if dests == nil {
		dests = []game.Square{}
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, LegalDestinationsResponse{From: from, Destinations: dests})
}

func (g *GameHandler) HandleMove(w http.ResponseWriter, r *http.Request) {
	var req MoveRequest
	if err := utils.DecodeJSONRequest(r, &req); err != nil {
		g.log.Warnw("bad move request", "error", err)
		httpresponse.WriteError(w, http.StatusBadRequest, httpresponse.MALFORMEDJSON_errorDesc)
		return
	}
	if req.From == nil || req.To == nil {
		httpresponse.WriteError(w, http.StatusBadRequest, "from and to are required")
		return
	}

	out, err := g.move(r.Context(), chi.URLParam(r, "id"), *req.From, *req.To)
	if err != nil {
		g.writeError(w, err)
		return
	}
	if out.Result != gameuc.Applied {
		httpresponse.WriteResponseWithStatus(w, http.StatusUnprocessableEntity, MoveRejection{Reason: out.Reason})
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, g.view(out.Game))
}

// HandleWatch upgrades to a websocket that receives the game state on join
// and after every applied move, and accepts moves from the client.
func (g *GameHandler) HandleWatch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := g.gameUC.GetGame(r.Context(), id); err != nil {
		g.writeError(w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.log.Warnw("websocket upgrade failed", "game_id", id, "error", err)
		return
	}
	ctx := context.WithoutCancel(r.Context())
	wt := newWatcher(conn)

	// hold the watcher while joining so no broadcast overtakes the first state
	wt.mu.Lock()
	g.hub.join(id, wt)
	err = g.sendState(ctx, wt, id)
	wt.mu.Unlock()

	defer func() {
		g.hub.leave(id, wt)
		_ = conn.Close()
	}()
	if err != nil {
		g.log.Warnw("failed to send initial state", "game_id", id, "error", err)
		return
	}
	g.log.Infow("websocket watcher joined", "game_id", id, "watchers", g.hub.Watchers(id))

	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				g.log.Warnw("websocket read failed", "game_id", id, "error", err)
			}
			return
		}
		if reason := g.handleMessage(ctx, id, msg); reason != "" {
			g.replyError(wt, reason)
		}
	}
}

// handleMessage returns a reason when the message could not be honoured.
func (g *GameHandler) handleMessage(ctx context.Context, id string, msg Message) string {
	switch msg.Type {
	case MessageTypeMove:
		var req MoveRequest
		if err := json.Unmarshal(msg.Payload, &req); err != nil || req.From == nil || req.To == nil {
			return httpresponse.MALFORMEDJSON_errorDesc
		}
		out, err := g.move(ctx, id, *req.From, *req.To)
		if err != nil {
			if errors.Is(err, errs.ErrGameNotFound) {
				return err.Error()
			}
			g.log.Errorw("websocket move failed", "game_id", id, "error", err)
			return errs.ErrInternal.Error()
		}
		return out.Reason
	default:
		return "unknown message type: " + string(msg.Type)
	}
}

// move runs the use case. Watchers get the new state from broadcastState.
func (g *GameHandler) move(ctx context.Context, id string, from, to game.Square) (gameuc.MoveOutcome, error) {
	out, err := g.gameUC.MovePiece(ctx, id, from, to)
	if err != nil {
		return out, err
	}
	if out.Result != gameuc.Applied {
		g.log.Infow("move rejected", "game_id", id, "from", from.String(), "to", to.String(), "reason", out.Reason)
		return out, nil
	}
	g.log.Infow("move applied", "game_id", id, "from", from.String(), "to", to.String(), "status", out.Game.Status.String())
	return out, nil
}

// broadcastState runs under the game's move lock.
func (g *GameHandler) broadcastState(play game.Game) {
	msg, err := newMessage(MessageTypeState, g.view(play))
	if err != nil {
		g.log.Errorw("failed to encode state", "game_id", play.ID, "error", err)
		return
	}
	g.hub.Broadcast(play.ID, msg)
}

// sendState expects wt.mu to be held.
func (g *GameHandler) sendState(ctx context.Context, wt *watcher, id string) error {
	play, err := g.gameUC.GetGame(ctx, id)
	if err != nil {
		return err
	}
	msg, err := newMessage(MessageTypeState, g.view(play))
	if err != nil {
		return err
	}
	return wt.send(msg)
}

func (g *GameHandler) replyError(wt *watcher, reason string) {
	msg, err := newMessage(MessageTypeError, MoveRejection{Reason: reason})
	if err != nil {
		return
	}
	if err = wt.Send(msg); err != nil {
		g.log.Warnw("failed to send websocket error", "error", err)
	}
}

func (g *GameHandler) view(play game.Game) GameView {
	fen, err := notation.Encode(play)
	if err != nil {
		g.log.Warnw("game has no FEN form", "game_id", play.ID, "error", err)
	}
	return GameView{
		ID:            play.ID,
		Board:         play.Board,
		CurrentPlayer: play.CurrentPlayer,
		Status:        play.Status,
		InCheck:       g.gameUC.InCheck(play),
		LastMove:      play.LastMove,
		FEN:           fen,
		UpdatedAt:     play.UpdatedAt,
	}
}

func (g *GameHandler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errs.ErrGameNotFound):
		httpresponse.WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, errs.ErrInvalidFEN), errors.Is(err, errs.ErrInvalidSquare):
		httpresponse.WriteError(w, http.StatusBadRequest, err.Error())
	default:
		g.log.Errorw("request failed", "error", err)
		httpresponse.WriteError(w, http.StatusInternalServerError, errs.ErrInternal.Error())
	}
}
