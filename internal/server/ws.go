package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/abhinaya/internal/engine"
	"github.com/ayusman/abhinaya/internal/log"
)

const (
	feedBuffer   = 32
	writeTimeout = 2 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// FeedMessage is one websocket message: the commands of a single tick.
type FeedMessage struct {
	Commands  []engine.Command `json:"commands"`
	Timestamp int64            `json:"timestamp"`
}

type feedClient struct {
	conn *websocket.Conn
	send chan []byte
}

// CommandFeed broadcasts emitted commands to websocket clients. Publish
// never blocks; a client that falls behind loses messages.
type CommandFeed struct {
	mu      sync.RWMutex
	clients map[*feedClient]struct{}
	closed  bool
}

// NewCommandFeed creates an empty feed.
func NewCommandFeed() *CommandFeed {
	return &CommandFeed{clients: make(map[*feedClient]struct{})}
}

// ServeHTTP upgrades the request and keeps the client subscribed until it
// disconnects.
func (f *CommandFeed) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("websocket upgrade failed", "error", err)
		return
	}

	c := &feedClient{conn: conn, send: make(chan []byte, feedBuffer)}
	if !f.add(c) {
		conn.Close()
		return
	}
	defer f.remove(c)

	go c.writeLoop()

	// Reads only detect the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Publish sends cmds to every client.
func (f *CommandFeed) Publish(cmds []engine.Command) {
	msg, err := json.Marshal(FeedMessage{Commands: cmds, Timestamp: time.Now().UnixMilli()})
	if err != nil {
		log.Warn("failed to encode feed message", "error", err)
		return
	}

	f.mu.RLock()
	defer f.mu.RUnlock()
	for c := range f.clients {
		select {
		case c.send <- msg:
		default:
		}
	}
}

// Clients returns the number of connected clients.
func (f *CommandFeed) Clients() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.clients)
}

// Close disconnects every client and rejects new ones.
func (f *CommandFeed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.closed = true
	for c := range f.clients {
		close(c.send)
		delete(f.clients, c)
	}
}

func (f *CommandFeed) add(c *feedClient) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return false
	}
	f.clients[c] = struct{}{}
	return true
}

func (f *CommandFeed) remove(c *feedClient) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.clients[c]; ok {
		delete(f.clients, c)
		close(c.send)
	}
}

// writeLoop drains send until it is closed, then closes the connection.
func (c *feedClient) writeLoop() {
	defer c.conn.Close()

	for msg := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}
