package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// DefaultFrameRate is how often game frames are pushed to clients.
const DefaultFrameRate = 30

const writeWait = time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// command is a control message sent by the browser.
type command struct {
	Type   string `json:"type"`
	Target string `json:"target,omitempty"`
}

// GameSocket pushes game frames to every connected client and accepts
// control commands from them.
type GameSocket struct {
	game     Game
	interval time.Duration
	clients  map[*websocket.Conn]bool
	mu       sync.RWMutex

	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// NewGameSocket creates a GameSocket and starts broadcasting.
func NewGameSocket(g Game, frameRate int) *GameSocket {
	if frameRate <= 0 {
		frameRate = DefaultFrameRate
	}
	h := &GameSocket{
		game:     g,
		interval: time.Second / time.Duration(frameRate),
		clients:  make(map[*websocket.Conn]bool),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go h.broadcast()
	return h
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *GameSocket) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	defer h.remove(conn)

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			break
		}
		h.handleCommand(msg)
	}
}

// Clients returns the number of connected clients.
func (h *GameSocket) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *GameSocket) handleCommand(msg []byte) {
	var cmd command
	if err := json.Unmarshal(msg, &cmd); err != nil {
		log.Printf("websocket: ignoring malformed command: %v", err)
		return
	}

	now := time.Now()
	switch cmd.Type {
	case "toggle":
		h.game.Toggle(now)
	case "action":
		h.game.ManualAction(now)
	case "restart":
		h.game.Restart(now)
	case "target":
		if err := h.game.SwitchTarget(cmd.Target); err != nil {
			log.Printf("websocket: switch target %q: %v", cmd.Target, err)
		}
	default:
		log.Printf("websocket: unknown command %q", cmd.Type)
	}
}

func (h *GameSocket) remove(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
}

// broadcast sends one frame per interval to all connected clients.
func (h *GameSocket) broadcast() {
	defer close(h.done)

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-h.stop:
			return
		case <-ticker.C:
		}

		// Frames consume hit feedback, so skip them while nobody is watching.
		if h.Clients() == 0 {
			continue
		}

		msg, err := json.Marshal(h.game.Frame(time.Now()))
		if err != nil {
			log.Printf("websocket: encode frame: %v", err)
			continue
		}

		h.mu.RLock()
		var dead []*websocket.Conn
		for conn := range h.clients {
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				dead = append(dead, conn)
			}
		}
		h.mu.RUnlock()

		for _, conn := range dead {
			h.remove(conn)
			conn.Close()
		}
	}
}

// Close stops broadcasting and disconnects all clients.
func (h *GameSocket) Close() {
	h.closeOnce.Do(func() {
		close(h.stop)
		<-h.done

		h.mu.Lock()
		for conn := range h.clients {
			conn.Close()
			delete(h.clients, conn)
		}
		h.mu.Unlock()
	})
}
