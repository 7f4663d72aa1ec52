package server

import (
	"sync"

	"github.com/gorilla/websocket"
)

// player is one connected client. Writes to the conn are serialized by the
// mutex; a nil conn (disconnected) swallows writes.
type player struct {
	Id          string
	DisplayName string

	conn *websocket.Conn
	mu   sync.Mutex
}

func newPlayer(playerId, displayName string, conn *websocket.Conn) *player {
	return &player{
		Id:          playerId,
		DisplayName: displayName,
		conn:        conn,
	}
}

func (p *player) setConn(conn *websocket.Conn) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn != nil && p.conn != conn {
		p.conn.Close()
	}
	p.conn = conn
}

// owns reports whether conn is still the player's live connection.
func (p *player) owns(conn *websocket.Conn) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.conn == conn
}

func (p *player) writeJson(msg interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn == nil {
		return nil
	}
	return p.conn.WriteJSON(msg)
}

func (p *player) close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn != nil {
		p.conn.Close()
		p.conn = nil
	}
}
