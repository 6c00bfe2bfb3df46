// Package events pushes live-update notifications to connected frontend
// clients over websockets.
package events

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Message is one notification pushed to clients.
type Message struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data,omitempty"`
}

// Client represents a single connected frontend client.
type Client struct {
	Conn *websocket.Conn
	Send chan []byte
}

// Broadcaster manages all connected clients and fans messages out to them.
type Broadcaster struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	mu         sync.RWMutex
}

// NewBroadcaster creates a broadcaster instance.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 16),
	}
}

// Run starts the broadcaster's main loop. This should be run as a goroutine.
func (b *Broadcaster) Run() {
	for {
		select {
		case client := <-b.register:
			b.mu.Lock()
			b.clients[client] = true
			b.mu.Unlock()
			log.Printf("Live-update client registered (%d connected)", b.ClientCount())

		case client := <-b.unregister:
			b.mu.Lock()
			if _, ok := b.clients[client]; ok {
				delete(b.clients, client)
				close(client.Send)
			}
			b.mu.Unlock()
			log.Printf("Live-update client unregistered (%d connected)", b.ClientCount())

		case payload := <-b.broadcast:
			b.mu.RLock()
			for client := range b.clients {
				select {
				case client.Send <- payload:
				default:
					// Client not draining; drop the message for it.
				}
			}
			b.mu.RUnlock()
		}
	}
}

// Register queues a client for registration.
func (b *Broadcaster) Register(client *Client) {
	b.register <- client
}

// Unregister queues a client for unregistration.
func (b *Broadcaster) Unregister(client *Client) {
	b.unregister <- client
}

// ClientCount reports the number of connected clients.
func (b *Broadcaster) ClientCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}

// Publish fans a message out to every connected client.
func (b *Broadcaster) Publish(msg Message) {
	payload, err := json.Marshal(msg)
	if err != nil {
		log.Printf("ERROR: Failed to marshal broadcast message: %v", err)
		return
	}

	select {
	case b.broadcast <- payload:
	default:
		log.Printf("Broadcast queue full, dropping %s message", msg.Type)
	}
}

// PublishThemeChange notifies clients of a theme state write.
func (b *Broadcaster) PublishThemeChange(mode string, hue int) {
	b.Publish(Message{Type: "theme", Data: map[string]any{"mode": mode, "hue": hue}})
}

// PublishRenderPass notifies clients that a diagram render pass settled so
// they can re-fetch fragments.
func (b *Broadcaster) PublishRenderPass(passID string, rendered, failed int) {
	b.Publish(Message{Type: "renderPass", Data: map[string]any{
		"passId":   passID,
		"rendered": rendered,
		"failed":   failed,
	}})
}

// PublishContentReplaced notifies clients that fragments were rebuilt.
func (b *Broadcaster) PublishContentReplaced() {
	b.Publish(Message{Type: "content"})
}

// WritePump drains the client's send channel onto its connection. Runs until
// the channel closes or a write fails.
func (c *Client) WritePump() {
	defer c.Conn.Close()

	for payload := range c.Send {
		c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := c.Conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}
	c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// ReadPump discards inbound frames so pings and close handshakes are
// processed, unregistering on disconnect.
func (c *Client) ReadPump(b *Broadcaster) {
	defer func() {
		b.Unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(512)
	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			return
		}
	}
}
