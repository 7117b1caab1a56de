package realtime

import (
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

// Client is one connected websocket subscribed to a single channel.
type Client struct {
	UserID  string
	Channel string
	Conn    *websocket.Conn
	Send    chan []byte
}

func NewClient(userID, channel string, conn *websocket.Conn) *Client {
	return &Client{
		UserID:  userID,
		Channel: channel,
		Conn:    conn,
		Send:    make(chan []byte, 16),
	}
}

// Hub fans published events out to the sockets subscribed to each channel.
type Hub struct {
	mu       sync.Mutex
	channels map[string]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{channels: make(map[string]map[*Client]struct{})}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	subs, ok := h.channels[c.Channel]
	if !ok {
		subs = make(map[*Client]struct{})
		h.channels[c.Channel] = subs
	}
	subs[c] = struct{}{}
	log.Printf("Client %s subscribed to %s", c.UserID, c.Channel)
}

func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	subs, ok := h.channels[c.Channel]
	if !ok {
		return
	}
	if _, exists := subs[c]; !exists {
		return
	}
	delete(subs, c)
	close(c.Send)
	if len(subs) == 0 {
		delete(h.channels, c.Channel)
	}
	log.Printf("Client %s left %s", c.UserID, c.Channel)
}

// Broadcast delivers msg to every socket on the channel. Slow consumers are
// skipped rather than blocking the relay.
func (h *Hub) Broadcast(channel string, msg []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.channels[channel] {
		select {
		case c.Send <- msg:
		default:
			log.Printf("Dropping message for slow client %s on %s", c.UserID, channel)
		}
	}
}

// ReadPump drains the socket until the peer goes away; inbound frames carry
// nothing the server acts on.
func (c *Client) ReadPump(h *Hub) {
	defer func() {
		h.Unregister(c)
		c.Conn.Close()
	}()
	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Client) WritePump() {
	defer c.Conn.Close()
	for msg := range c.Send {
		if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			log.Printf("Write error for client %s: %v", c.UserID, err)
			return
		}
	}
}
