package network

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"

	"github.com/KrokodileDandy/quarantine-server/internal/platform/metrics"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second
	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second
	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
	// Maximum message size allowed from peer.
	maxMessageSize = 512
)

// SnapshotFunc supplies the current state snapshot for REQUEST_STATE
// viewer commands.
type SnapshotFunc func() any

// ViewerCommand is an incoming request from the front end. Gameplay
// mutation goes through the HTTP API; the socket only answers read
// requests.
type ViewerCommand struct {
	Type string `json:"type"` // "REQUEST_STATE"
}

// Client represents an active WebSocket connection.
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	send     chan []byte
	snapshot SnapshotFunc
}

// NewClient creates a new WebSocket client.
func NewClient(hub *Hub, conn *websocket.Conn, snapshot SnapshotFunc) *Client {
	return &Client{
		hub:      hub,
		conn:     conn,
		send:     make(chan []byte, hub.tuning.ClientSendBuffer),
		snapshot: snapshot,
	}
}

// Register adds the client to the hub.
func (c *Client) Register() {
	c.hub.register <- c
}

// ReadPump pumps viewer commands from the websocket connection.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.unregister <- c
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
				metrics.Get().RecordWSError()
				c.hub.logger.Error("unexpected websocket close: %v", err)
			}
			return
		}

		var cmd ViewerCommand
		if err := json.Unmarshal(message, &cmd); err != nil {
			continue
		}
		if cmd.Type == "REQUEST_STATE" && c.snapshot != nil {
			if payload, err := json.Marshal(map[string]any{"type": "STATE", "state": c.snapshot()}); err == nil {
				select {
				case c.send <- payload:
					metrics.Get().RecordWSMessage()
				default:
				}
			}
		}
	}
}

// WritePump pumps messages from the hub to the websocket connection.
func (c *Client) WritePump() {
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
				// The hub closed the channel.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				metrics.Get().RecordWSError()
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
