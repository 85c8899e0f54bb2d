package websocket

import (
	"encoding/json"
	"sync"

	"github.com/gofiber/websocket/v2"

	"todo-api/internal/models"
)

// Event is a todo change pushed to the owner's open connections.
type Event struct {
	Action string       `json:"action"`
	Todo   *models.Todo `json:"todo,omitempty"`
}

// Conn is the part of a WebSocket connection the hub writes through.
// *websocket.Conn satisfies it.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Client is one WebSocket connection of an authenticated user.
type Client struct {
	UserID int
	Conn   Conn
	Mu     sync.Mutex
}

type message struct {
	userID int
	data   []byte
}

// Hub fans todo events out to the owning user's connections only, so one
// user never sees another user's changes.
type Hub struct {
	clients    map[int]map[*Client]bool
	broadcast  chan message
	Register   chan *Client
	Unregister chan *Client
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[int]map[*Client]bool),
		broadcast:  make(chan message),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
	}
}

// Publish queues an event for every connection of userID.
func (h *Hub) Publish(userID int, action string, todo *models.Todo) {
	data, err := json.Marshal(Event{Action: action, Todo: todo})
	if err != nil {
		return
	}
	h.broadcast <- message{userID: userID, data: data}
}

// Run owns the client map; all register, unregister and broadcast
// traffic goes through this loop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			if h.clients[client.UserID] == nil {
				h.clients[client.UserID] = make(map[*Client]bool)
			}
			h.clients[client.UserID][client] = true
		case client := <-h.Unregister:
			if conns, ok := h.clients[client.UserID]; ok {
				if _, ok := conns[client]; ok {
					delete(conns, client)
					client.Conn.Close()
					if len(conns) == 0 {
						delete(h.clients, client.UserID)
					}
				}
			}
		case msg := <-h.broadcast:
			for client := range h.clients[msg.userID] {
				client.Mu.Lock()
				err := client.Conn.WriteMessage(websocket.TextMessage, msg.data)
				client.Mu.Unlock()
				if err != nil {
					go func(c *Client) { h.Unregister <- c }(client)
				}
			}
		}
	}
}
