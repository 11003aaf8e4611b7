/*
Package api
File: hub.go
Description:
    The WebSocket Hub is the core of the real-time communication layer.

    It maintains a registry of all active clients and fans every game event
    out to them. It is also the inbound path for the latency-sensitive warp
    controls: clients send {"type":"warp_input","value":-100..100} and
    {"type":"warp_out"} over the socket instead of POSTing every frame.

    Architecture:
    - Hub: The single manager. It implements game.Notifier.
    - Client: Represents one browser connection, with its own inbound limiter.
    - ServeWs: The HTTP handler that upgrades a standard GET request to a WebSocket.
*/

package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/everforgeworks/outrider/internal/game"
)

const (
	writeWait      = 10 * time.Second
	sendBufferSize = 256
	// Inbound commands per second per client; a 60 Hz slider fits comfortably.
	clientRate  = 120
	clientBurst = 30
)

// Message defines the standard JSON envelope for all real-time communication.
// Every message sent over the socket will follow this structure.
type Message struct {
	Type    string `json:"type"`    // Event Type (e.g., "mining", "warp_frame")
	Payload any    `json:"payload"` // The actual data
	Sender  string `json:"sender"`  // Origin: "system" for game events, "hub" for replies
}

// Inbound is a command sent by a client.
type Inbound struct {
	Type  string `json:"type"`
	Value int    `json:"value"`
}

// CommandFunc handles one inbound command and returns an optional reply.
type CommandFunc func(in Inbound) *Message

// Client represents a single connected browser tab.
// It acts as a middleman between the websocket connection and the Hub.
type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	send    chan []byte   // Buffered channel for outbound messages
	limiter *rate.Limiter // Inbound command budget
}

type direct struct {
	client *Client
	data   []byte
}

// Hub maintains the set of active clients and broadcasts messages to them.
type Hub struct {
	// Registered clients. Only the Run loop touches this map.
	clients map[*Client]bool

	// Outbound messages for everyone. Buffered so Publish never blocks the game.
	Broadcast chan []byte

	// Replies for a single client.
	direct chan direct

	register   chan *Client
	unregister chan *Client
	quit       chan struct{} // Closed when Run returns

	commands CommandFunc
}

// NewHub creates a new Hub instance.
// This should be called once in main.go and run as a goroutine.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		Broadcast:  make(chan []byte, sendBufferSize),
		direct:     make(chan direct, sendBufferSize),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		quit:       make(chan struct{}),
	}
}

// HandleCommands installs the inbound command handler. Call before Run.
func (h *Hub) HandleCommands(fn CommandFunc) {
	h.commands = fn
}

// Run is the main event loop for the Hub.
// It blocks until ctx ends, so it must be run in a goroutine: `go hub.Run(ctx)`
func (h *Hub) Run(ctx context.Context) {
	defer close(h.quit)
	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			return

		case client := <-h.register:
			h.clients[client] = true
			log.Println("WS: New Connection Registered")

		case client := <-h.unregister:
			// A player disconnected. Clean up resources to prevent leaks.
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}

		case d := <-h.direct:
			if _, ok := h.clients[d.client]; ok {
				h.deliver(d.client, d.data)
			}

		case message := <-h.Broadcast:
			for client := range h.clients {
				h.deliver(client, message)
			}
		}
	}
}

// deliver queues data for one client, dropping a client whose buffer is full.
func (h *Hub) deliver(client *Client, data []byte) {
	select {
	case client.send <- data:
	default:
		log.Println("WS: Dropping slow client")
		close(client.send)
		delete(h.clients, client)
	}
}

// Publish implements game.Notifier. It never blocks: when the broadcast
// buffer is full the event is dropped.
func (h *Hub) Publish(e game.Event) {
	data, err := json.Marshal(Message{Type: string(e.Type), Payload: e, Sender: "system"})
	if err != nil {
		log.Printf("WS: marshal %s event: %v", e.Type, err)
		return
	}
	select {
	case h.Broadcast <- data:
	default:
		log.Printf("WS: broadcast buffer full, dropped %s event", e.Type)
	}
}

// upgrader configures the WebSocket handshake.
// CheckOrigin returns true to allow connections from any host (CORS permissive for development).
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// ServeWs handles the HTTP request that initiates a WebSocket connection.
func ServeWs(hub *Hub, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("WS Upgrade Error:", err)
		return
	}

	client := &Client{
		hub:     hub,
		conn:    conn,
		send:    make(chan []byte, sendBufferSize),
		limiter: rate.NewLimiter(rate.Limit(clientRate), clientBurst),
	}
	select {
	case client.hub.register <- client:
	case <-client.hub.quit:
		conn.Close()
		return
	}

	// Start the read/write pumps in their own goroutines.
	// This ensures one slow client doesn't block the entire server.
	go client.writePump()
	go client.readPump()
}

// readPump decodes inbound commands and dispatches them to the command handler.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.quit:
		}
		c.conn.Close()
	}()
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WS Error: %v", err)
			}
			break
		}

		var in Inbound
		if err := json.Unmarshal(data, &in); err != nil {
			c.reply(&Message{Type: "error", Payload: "malformed command", Sender: "hub"})
			continue
		}
		if !c.limiter.Allow() {
			c.reply(&Message{Type: "error", Payload: "rate limited", Sender: "hub"})
			continue
		}
		if c.hub.commands != nil {
			c.reply(c.hub.commands(in))
		}
	}
}

func (c *Client) reply(msg *Message) {
	if msg == nil {
		return
	}
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("WS: marshal reply: %v", err)
		return
	}
	select {
	case c.hub.direct <- direct{client: c, data: data}:
	case <-c.hub.quit:
	}
}

// writePump pumps messages from the hub to the websocket connection.
func (c *Client) writePump() {
	defer func() {
		c.conn.Close()
	}()

	// Range over the channel. This loop exits when c.send is closed.
	for message := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		w, err := c.conn.NextWriter(websocket.TextMessage)
		if err != nil {
			return
		}
		w.Write(message)

		if err := w.Close(); err != nil {
			return
		}
	}
}
