package api

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/aresgrid/ares-engine/pkg/models"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // observers connect from local dashboards
	},
}

// Hub fans engine deltas out to passive websocket observers. The
// engine produces on one side, the hub's Run loop consumes on the
// other; a second channel carries new-client ids back so the engine
// can target initializer snapshots. Observers only ever receive.
type Hub struct {
	clients map[string]*websocket.Conn
	mutex   sync.Mutex

	outbound   chan models.Message
	newClients chan string
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*websocket.Conn),
		outbound:   make(chan models.Message, 256),
		newClients: make(chan string, 64),
	}
}

// Run drains the outbound queue and writes each frame to every
// connected client — or to a single client for targeted frames. A
// write deadline keeps one blocked observer from stalling the rest.
func (h *Hub) Run() {
	for msg := range h.outbound {
		payload, err := json.Marshal(msg)
		if err != nil {
			log.Printf("[Hub] failed to marshal %s frame: %v", msg.Type, err)
			continue
		}

		h.mutex.Lock()
		if msg.ClientID != "" {
			if conn, ok := h.clients[msg.ClientID]; ok {
				h.write(msg.ClientID, conn, payload)
			}
		} else {
			for id, conn := range h.clients {
				h.write(id, conn, payload)
			}
		}
		h.mutex.Unlock()
	}
}

// write sends one frame, dropping the client on failure. Callers hold
// the mutex.
func (h *Hub) write(id string, conn *websocket.Conn, payload []byte) {
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		log.Printf("[Hub] write to %s failed: %v", id, err)
		conn.Close()
		delete(h.clients, id)
	}
}

// Broadcast queues a frame for all observers. When the queue is full
// the frame is dropped, so the engine never blocks on a slow consumer.
// Snapshots go only to newly connected observers; an observer that
// missed frames gets a fresh snapshot by reconnecting.
func (h *Hub) Broadcast(msg models.Message) {
	select {
	case h.outbound <- msg:
	default:
		log.Printf("[Hub] outbound queue full, dropping %s frame", msg.Type)
	}
}

// SendTo queues a frame for one observer.
func (h *Hub) SendTo(clientID string, msg models.Message) {
	msg.ClientID = clientID
	h.Broadcast(msg)
}

// DrainNewClients returns the ids of observers that connected since
// the last call. Non-blocking; the engine calls this once per tick.
func (h *Hub) DrainNewClients() []string {
	var ids []string
	for {
		select {
		case id := <-h.newClients:
			ids = append(ids, id)
		default:
			return ids
		}
	}
}

// Subscribe upgrades an incoming connection, assigns it an observer
// id, and queues the id so the engine delivers an initializer snapshot
// on its next tick.
func (h *Hub) Subscribe(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[Hub] websocket upgrade failed: %v", err)
		return
	}

	id := uuid.NewString()

	h.mutex.Lock()
	h.clients[id] = conn
	total := len(h.clients)
	h.mutex.Unlock()

	log.Printf("[Hub] observer %s connected (%d total)", id, total)

	select {
	case h.newClients <- id:
	default:
		log.Printf("[Hub] new-client queue full, observer %s gets no snapshot", id)
	}

	// observers never send anything meaningful, but reading is the only
	// way to notice a disconnect
	go func() {
		defer func() {
			h.mutex.Lock()
			delete(h.clients, id)
			remaining := len(h.clients)
			h.mutex.Unlock()
			conn.Close()
			log.Printf("[Hub] observer %s disconnected (%d total)", id, remaining)
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					log.Printf("[Hub] observer %s read error: %v", id, err)
				}
				return
			}
		}
	}()
}
