package game

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const writeWait = 5 * time.Second

// watcher serialises writes to one websocket connection.
type watcher struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func newWatcher(conn *websocket.Conn) *watcher {
	return &watcher{conn: conn}
}

// send expects w.mu to be held.
func (w *watcher) send(msg Message) error {
	if err := w.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return w.conn.WriteJSON(msg)
}

func (w *watcher) Send(msg Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.send(msg)
}

// Hub tracks the websocket watchers of every game.
type Hub struct {
	log      *zap.SugaredLogger
	mu       sync.RWMutex
	watchers map[string]map[*watcher]struct{}
}

func NewHub(log *zap.SugaredLogger) *Hub {
	return &Hub{
		log:      log,
		watchers: make(map[string]map[*watcher]struct{}),
	}
}

func (h *Hub) join(gameID string, w *watcher) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.watchers[gameID]
	if !ok {
		set = make(map[*watcher]struct{})
		h.watchers[gameID] = set
	}
	set[w] = struct{}{}
}

func (h *Hub) leave(gameID string, w *watcher) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set := h.watchers[gameID]
	delete(set, w)
	if len(set) == 0 {
		delete(h.watchers, gameID)
	}
}

func (h *Hub) Watchers(gameID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.watchers[gameID])
}

// Broadcast sends msg to every watcher of gameID. Watchers that fail to
// receive it are dropped and closed.
func (h *Hub) Broadcast(gameID string, msg Message) {
	h.mu.RLock()
	targets := make([]*watcher, 0, len(h.watchers[gameID]))
	for w := range h.watchers[gameID] {
		targets = append(targets, w)
	}
	h.mu.RUnlock()

	for _, w := range targets {
		if err := w.Send(msg); err != nil {
			h.log.Warnw("dropping websocket watcher", "game_id", gameID, "error", err)
			h.leave(gameID, w)
			_ = w.conn.Close()
		}
	}
}
