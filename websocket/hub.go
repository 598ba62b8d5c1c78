package websocket

import (
	"log"
	"sync"

	"github.com/codewithedgar/bothost/models"
	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
)

type Client struct {
	UserID uuid.UUID
	Conn   *websocket.Conn
}

// Hub fans new community messages out to every connected client. There is a
// single room; membership is just an authenticated connection.
type Hub struct {
	clients    map[*websocket.Conn]uuid.UUID
	mu         sync.RWMutex
	register   chan *Client
	unregister chan *Client
	broadcast  chan *models.Message
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*websocket.Conn]uuid.UUID),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *models.Message, 64),
	}
}

func (h *Hub) Register(c *Client)   { h.register <- c }
func (h *Hub) Unregister(c *Client) { h.unregister <- c }

// Broadcast never blocks the HTTP request that posted the message.
func (h *Hub) Broadcast(msg *models.Message) {
	select {
	case h.broadcast <- msg:
	default:
		log.Println("Community broadcast queue full, dropping message")
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.Conn] = client.UserID
			h.mu.Unlock()
			log.Printf("Community client connected: %s", client.UserID)
		case client := <-h.unregister:
			h.mu.Lock()
			delete(h.clients, client.Conn)
			h.mu.Unlock()
			log.Printf("Community client disconnected: %s", client.UserID)
		case message := <-h.broadcast:
			h.mu.RLock()
			var dead []*websocket.Conn
			for conn, userID := range h.clients {
				if userID == message.UserID {
					continue
				}
				if err := conn.WriteJSON(message); err != nil {
					log.Printf("Error sending message to client %s: %v", userID, err)
					dead = append(dead, conn)
				}
			}
			h.mu.RUnlock()

			if len(dead) > 0 {
				h.mu.Lock()
				for _, conn := range dead {
					conn.Close()
					delete(h.clients, conn)
				}
				h.mu.Unlock()
			}
		}
	}
}
