package realtime

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Cross-origin access is decided by the gateway in front of us.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WSHandler upgrades authorized clients and parks them on the hub. The
// signed token from the channel auth endpoint is the sole admission ticket.
type WSHandler struct {
	Hub    *Hub
	Secret []byte
}

func NewWSHandler(hub *Hub, secret []byte) *WSHandler {
	return &WSHandler{Hub: hub, Secret: secret}
}

func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	claims, err := VerifyChannelToken(h.Secret, r.URL.Query().Get("token"))
	if err != nil {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Upgrade failed for user %s: %v", claims.UserID, err)
		return
	}

	client := NewClient(claims.UserID, claims.Channel, conn)
	h.Hub.Register(client)
	go client.ReadPump(h.Hub)
	go client.WritePump()
}
