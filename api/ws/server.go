// Package ws streams the market event feed to websocket subscribers.
package ws

import (
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"tycho/service"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(*http.Request) bool { return true },
}

const (
	writeWait  = 5 * time.Second
	subBuffer  = 1024
	pingPeriod = 30 * time.Second
)

// Server publishes the service's event batches to connected clients.
type Server struct {
	hub *hub[[]service.Event]
}

func NewServer(svc *service.MarketService) *Server {
	s := &Server{hub: newHub[[]service.Event]()}
	svc.Notify(s.hub.Broadcast)
	return s
}

// ServeHTTP upgrades the connection and streams event batches until
// the client goes away.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ws] upgrade failed: %v", err)
		return
	}
	clientID := uuid.NewString()
	log.Printf("[ws] client %s connected", clientID)

	sub := s.hub.Subscribe(subBuffer)
	defer func() {
		s.hub.Unsubscribe(sub)
		_ = conn.Close()
		log.Printf("[ws] client %s disconnected", clientID)
	}()

	// Reader goroutine: we never expect inbound frames, but reading is
	// what surfaces close and ping/pong handling.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case batch, ok := <-sub.Recv():
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(batch); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
