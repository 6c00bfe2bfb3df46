package api

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/yuma-shin/y-shin.net/config"
	"github.com/yuma-shin/y-shin.net/events"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     originAllowed,
}

// originAllowed enforces the shared origin allowlist on upgrade requests.
// Browsers do not apply CORS to websocket handshakes, so the check happens
// here. Requests without an Origin header (non-browser clients) are allowed.
func originAllowed(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range config.AllowedOrigins {
		if origin == allowed {
			return true
		}
	}
	return false
}

// WSHandler upgrades connections onto the live-update broadcaster.
type WSHandler struct {
	broadcaster *events.Broadcaster
}

// NewWSHandler creates the websocket handler.
func NewWSHandler(broadcaster *events.Broadcaster) *WSHandler {
	return &WSHandler{broadcaster: broadcaster}
}

// Connect upgrades the request and registers the client.
func (h *WSHandler) Connect(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Websocket upgrade failed: %v", err)
		return
	}

	client := &events.Client{Conn: conn, Send: make(chan []byte, 16)}
	h.broadcaster.Register(client)

	go client.WritePump()
	go client.ReadPump(h.broadcaster)
}
