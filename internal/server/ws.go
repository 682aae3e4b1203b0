package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"lig4/engine/internal/match"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

const writeWait = 10 * time.Second

// wsClient spectates one match.
type wsClient struct {
	conn    *websocket.Conn
	matchID string

	mu     sync.Mutex
	send   chan []byte
	closed bool
}

type message struct {
	Type      string            `json:"type"`
	Match     match.View        `json:"match"`
	Move      *match.MoveRecord `json:"move,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

func stateMessage(kind string, v match.View, rec *match.MoveRecord) message {
	return message{Type: kind, Match: v, Move: rec, Timestamp: time.Now().UTC()}
}

func (s *Server) handleWS(c *gin.Context) {
	matchID := c.Query("matchId")
	if matchID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "matchId required"})
		return
	}
	if _, ok := s.manager.GetMatch(matchID); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": match.ErrMatchNotFound.Error()})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Debugw("websocket upgrade failed", "match", matchID, "error", err)
		return
	}
	client := &wsClient{
		conn:    conn,
		matchID: matchID,
		send:    make(chan []byte, 16),
	}
	go client.writePump()
	s.register(client)
	go s.readPump(client)
}

// register queues the init message under the watcher lock, so no state
// message for the match can overtake it.
func (s *Server) register(c *wsClient) {
	s.connMu.Lock()
	defer s.connMu.Unlock()

	v, ok := s.manager.GetMatch(c.matchID)
	if !ok {
		c.close()
		return
	}
	c.sendJSON(stateMessage("init", v, nil))
	if v.Status == match.StatusFinished {
		c.close()
		return
	}
	if s.watchers[c.matchID] == nil {
		s.watchers[c.matchID] = make(map[*wsClient]struct{})
	}
	s.watchers[c.matchID][c] = struct{}{}
}

func (s *Server) unregister(c *wsClient) {
	s.connMu.Lock()
	if set, ok := s.watchers[c.matchID]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(s.watchers, c.matchID)
		}
	}
	s.connMu.Unlock()
	c.close()
}

func (s *Server) broadcast(matchID string, msg message) {
	s.connMu.RLock()
	defer s.connMu.RUnlock()
	for c := range s.watchers[matchID] {
		c.sendJSON(msg)
	}
}

func (s *Server) closeWatchers(matchID string) {
	s.connMu.Lock()
	set := s.watchers[matchID]
	delete(s.watchers, matchID)
	s.connMu.Unlock()
	for c := range set {
		c.close()
	}
}

// readPump only watches for the peer going away; spectators send nothing.
func (s *Server) readPump(c *wsClient) {
	defer s.unregister(c)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *wsClient) writePump() {
	defer c.conn.Close()
	for msg := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "match finished"))
}

func (c *wsClient) sendJSON(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

func (c *wsClient) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}
