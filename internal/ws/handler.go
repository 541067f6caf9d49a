package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/puttparty/backend/internal/config"
	"github.com/puttparty/backend/internal/game"
	"github.com/puttparty/backend/internal/middleware"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 65536
	sendBuffer     = 256
)

// Client represents a connected WebSocket client
type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	id        string
	role      string
	gameToken string
	send      chan []byte
}

func (c *Client) isHost() bool { return c.role == middleware.RoleHost }

// Hub maintains the set of active clients
type Hub struct {
	manager    *game.Manager
	clients    map[string]*Client            // clientID -> Client
	gameRooms  map[string]map[string]*Client // gameToken -> clientID -> Client
	register   chan *Client
	unregister chan *Client
	done       chan struct{} // closed when Run returns
	mu         sync.RWMutex
}

// NewHub creates a new Hub
func NewHub(m *game.Manager) *Hub {
	return &Hub{
		manager:    m,
		clients:    make(map[string]*Client),
		gameRooms:  make(map[string]map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Message types
type WSMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// OutMessage is a server to client message.
type OutMessage struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// Run processes registrations until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			return
		case client := <-h.register:
			if old := h.addClient(client); old != nil {
				log.Printf("[WS] Host of game %s reconnecting - closing old connection", client.gameToken)
				old.conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "replaced by new connection"),
					time.Now().Add(5*time.Second))
				old.conn.Close()
			}
			log.Printf("[WS] %s %s connected to game %s", client.role, client.id, client.gameToken)

			if h.manager != nil {
				if s, err := h.manager.GetSession(client.gameToken); err == nil {
					h.sendTo(client, OutMessage{Type: "frame", Data: s.LastFrame()})
					if loops := s.ActiveLoops(); len(loops) > 0 {
						h.sendTo(client, OutMessage{Type: "sound", Data: loops})
					}
				}
			}

		case client := <-h.unregister:
			if h.removeClient(client) {
				log.Printf("[WS] %s %s disconnected from game %s", client.role, client.id, client.gameToken)
			}
		}
	}
}

// leave unregisters through Run, or directly once Run has returned.
func (h *Hub) leave(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
		h.removeClient(c)
	}
}

// addClient registers a client and returns the connection it replaced, if any.
func (h *Hub) addClient(client *Client) *Client {
	h.mu.Lock()
	defer h.mu.Unlock()

	var replaced *Client
	if old, exists := h.clients[client.id]; exists {
		h.dropLocked(old)
		replaced = old
	}
	h.clients[client.id] = client
	if _, exists := h.gameRooms[client.gameToken]; !exists {
		h.gameRooms[client.gameToken] = make(map[string]*Client)
	}
	h.gameRooms[client.gameToken][client.id] = client
	return replaced
}

// removeClient unregisters a client unless it was already replaced or dropped.
func (h *Hub) removeClient(client *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if cur, ok := h.clients[client.id]; !ok || cur != client {
		return false
	}
	h.dropLocked(client)
	return true
}

func (h *Hub) dropLocked(client *Client) {
	delete(h.clients, client.id)
	if room, exists := h.gameRooms[client.gameToken]; exists {
		delete(room, client.id)
		if len(room) == 0 {
			delete(h.gameRooms, client.gameToken)
		}
	}
	close(client.send)
}

// CloseGame disconnects every client of a game after their queued messages.
func (h *Hub) CloseGame(gameToken string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, client := range h.gameRooms[gameToken] {
		h.dropLocked(client)
	}
}

// RoomSize returns the number of clients connected to a game.
func (h *Hub) RoomSize(gameToken string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.gameRooms[gameToken])
}

// BroadcastToGame sends a message to all clients in a game
func (h *Hub) BroadcastToGame(gameToken string, message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("Error marshaling message: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.gameRooms[gameToken] {
		h.deliver(client, data)
	}
}

// SendToHost sends a message to the host of a game
func (h *Hub) SendToHost(gameToken string, message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("Error marshaling message: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	if client, exists := h.clients[hostClientID(gameToken)]; exists {
		h.deliver(client, data)
	}
}

func (h *Hub) sendTo(client *Client, message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if cur, ok := h.clients[client.id]; ok && cur == client {
		h.deliver(client, data)
	}
}

// deliver must be called with h.mu held.
func (h *Hub) deliver(client *Client, data []byte) {
	select {
	case client.send <- data:
	default:
		// Client's buffer is full
		log.Printf("[WS] Send buffer full for %s in game %s, dropping message", client.id, client.gameToken)
	}
}

// BroadcastFrame fans one session frame out to the game's clients. Body
// commands go to the host only.
func (h *Hub) BroadcastFrame(gameToken string, f game.Frame) {
	h.BroadcastToGame(gameToken, OutMessage{Type: "frame", Data: f})
	if len(f.Sounds) > 0 {
		h.BroadcastToGame(gameToken, OutMessage{Type: "sound", Data: f.Sounds})
	}
	if len(f.Commands) > 0 {
		h.SendToHost(gameToken, OutMessage{Type: "body_command", Data: f.Commands})
	}
}

// BroadcastEvent relays a game event. Clients are disconnected once the
// session leaves to the main menu or is cancelled.
func (h *Hub) BroadcastEvent(gameToken string, e game.Event) {
	h.BroadcastToGame(gameToken, OutMessage{Type: "game_event", Data: e})
	if e.Type == game.EventSessionCancelled || (e.Type == game.EventSceneRequested && e.Scene == game.MainMenuScene) {
		h.CloseGame(gameToken)
	}
}

func hostClientID(gameToken string) string {
	return "host:" + gameToken
}

// HandleWebSocket upgrades an authenticated request. The route must run
// middleware.SessionAuth first.
func HandleWebSocket(h *Hub, cfg *config.Config) gin.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return middleware.AllowWebSocketOrigin(cfg, r.Header.Get("Origin"))
		},
	}

	return func(c *gin.Context) {
		gameToken := c.Param("token")
		role := c.GetString(middleware.ContextRole)

		if _, err := h.manager.GetSession(gameToken); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "game not found"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("[WS] Upgrade error: %v", err)
			return
		}

		id := "spectator:" + uuid.NewString()
		if role == middleware.RoleHost {
			id = hostClientID(gameToken)
		}
		client := &Client{
			hub:       h,
			conn:      conn,
			id:        id,
			role:      role,
			gameToken: gameToken,
			send:      make(chan []byte, sendBuffer),
		}

		select {
		case h.register <- client:
		case <-h.done:
			conn.Close()
			return
		}

		go client.writePump()
		go client.readPump()
	}
}

// writePump writes messages to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Channel closed: connection replaced or game over.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("[WS] Write error for %s: %v", c.id, err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Printf("[WS] Ping error for %s: %v", c.id, err)
				return
			}
		}
	}
}

// readPump reads client messages until the connection closes.
func (c *Client) readPump() {
	defer func() {
		c.hub.leave(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[WS] Unexpected close for %s: %v", c.id, err)
			}
			break
		}

		var msg WSMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			c.sendError("Invalid message")
			continue
		}

		c.handleMessage(msg)
	}
}

// handleMessage applies one host message to the session.
func (c *Client) handleMessage(msg WSMessage) {
	if !c.isHost() {
		c.sendError("Spectators are read-only")
		return
	}
	s, err := c.hub.manager.GetSession(c.gameToken)
	if err != nil {
		c.sendError("Game not found")
		return
	}
	c.hub.manager.Touch(c.gameToken)

	switch msg.Type {
	case "input":
		var in game.Input
		if err := json.Unmarshal(msg.Data, &in); err != nil {
			c.sendError("Invalid input data")
			return
		}
		s.QueueInput(in)

	case "telemetry":
		var reports []game.Telemetry
		if err := json.Unmarshal(msg.Data, &reports); err != nil {
			c.sendError("Invalid telemetry data")
			return
		}
		for _, t := range reports {
			if err := s.ApplyTelemetry(t); err != nil {
				c.sendError(err.Error())
				return
			}
		}

	case "trigger":
		var ev game.TriggerEvent
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			c.sendError("Invalid trigger data")
			return
		}
		if err := s.QueueTrigger(ev); err != nil {
			c.sendError(err.Error())
		}

	case "collision":
		var report game.CollisionReport
		if err := json.Unmarshal(msg.Data, &report); err != nil {
			c.sendError("Invalid collision data")
			return
		}
		if err := s.QueueCollision(report); err != nil {
			c.sendError(err.Error())
		}

	case "pause":
		var data struct {
			Paused bool `json:"paused"`
		}
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("Invalid pause data")
			return
		}
		s.SetPaused(data.Paused)

	case "exit":
		s.RequestExit()

	default:
		c.sendError("Unknown message type")
	}
}

// sendError sends an error message to the client
func (c *Client) sendError(message string) {
	data, _ := json.Marshal(map[string]interface{}{
		"type":    "error",
		"message": message,
	})
	c.hub.mu.RLock()
	defer c.hub.mu.RUnlock()
	if cur, ok := c.hub.clients[c.id]; ok && cur == c {
		c.hub.deliver(c, data)
	}
}
