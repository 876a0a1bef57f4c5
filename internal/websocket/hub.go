// A websocket hub that fans job progress updates out to every connected
// admin dashboard. Each client gets a buffered send channel; slow clients
// are dropped rather than allowed to stall the hub.

package websocket

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Sessions are cookie-authenticated, same-origin checks are left to the
	// reverse proxy in typical self-hosted deployments.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub maintains the set of active clients and broadcasts messages to them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 16),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run processes register/unregister/broadcast events. It must be started
// in its own goroutine before the hub is used.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Client is not keeping up, drop it.
					delete(h.clients, client)
					close(client.send)
				}
			}
		}
	}
}

// BroadcastJSON marshals v and sends it to every connected client.
func (h *Hub) BroadcastJSON(v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("Failed to marshal websocket broadcast: %v", err)
		return
	}
	h.broadcast <- data
}

// ServeWs upgrades an HTTP request to a websocket connection and registers
// the new client with the hub.
func (h *Hub) ServeWs(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Failed to upgrade websocket connection: %v", err)
		return
	}
	client := &Client{hub: h, conn: conn, send: make(chan []byte, 64)}
	h.register <- client

	go client.writePump()
	go client.readPump()
}
