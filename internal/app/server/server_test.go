package server

import (
	"testing"

	"github.com/codeduel-vn/codeduel/internal/domains/entities"
	"github.com/codeduel-vn/codeduel/internal/matchmaking"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
)

func newTestServer() *server {
	return &server{queue: matchmaking.NewQueue(matchmaking.DefaultConfig())}
}

func queueEntry(playerId string) entities.QueueEntry {
	return entities.QueueEntry{PlayerId: playerId, Rating: 1200, MatchType: "ranked"}
}

func TestStaleReadLoopDoesNotTearDownReconnectedPlayer(t *testing.T) {
	s := newTestServer()
	p := s.registerPlayer("a", nil)

	// Reconnect replaces the conn; the first read loop still holds the
	// one it was started with.
	liveConn := &websocket.Conn{}
	s.registerPlayer("a", liveConn)
	s.queue.Join(queueEntry("a"))

	s.handlePlayerDisconnect(p, nil)

	assert.True(t, s.queue.Waiting("a"), "stale loop evicted the live queue entry")
	assert.True(t, p.owns(liveConn), "stale loop closed the live conn")
	_, registered := s.players.Load("a")
	assert.True(t, registered, "stale loop dropped the registry entry")
}

func TestDisconnectOnOwnedConnTearsDown(t *testing.T) {
	s := newTestServer()
	p := s.registerPlayer("a", nil)
	s.queue.Join(queueEntry("a"))

	s.handlePlayerDisconnect(p, nil)

	assert.False(t, s.queue.Waiting("a"))
	_, registered := s.players.Load("a")
	assert.False(t, registered)
}

func TestDisconnectInMatchKeepsRegistryEntry(t *testing.T) {
	s := newTestServer()
	p := s.registerPlayer("a", nil)
	s.inMatch.Store("a", "m1")

	s.handlePlayerDisconnect(p, nil)

	_, registered := s.players.Load("a")
	assert.True(t, registered, "in-match player must survive for reconnect")
}

func TestJoinRacingPairingIsEvicted(t *testing.T) {
	s := newTestServer()
	p := s.registerPlayer("a", nil)

	// Enqueued with no busy mark: nothing to evict.
	s.queue.Join(queueEntry("a"))
	assert.False(t, s.evictIfPaired(p))
	assert.True(t, s.queue.Waiting("a"))

	// A pairing triggered by another player's join settled between the
	// in-match guard and the enqueue.
	s.inMatch.Store("a", "m1")
	assert.True(t, s.evictIfPaired(p))
	assert.False(t, s.queue.Waiting("a"), "paired player left sitting in the queue")
}

func TestUnpairRestoresQueueAndClearsBusyMarks(t *testing.T) {
	s := newTestServer()
	pairing := matchmaking.Pairing{A: queueEntry("a"), B: queueEntry("b")}
	s.inMatch.Store("a", "m1")
	s.inMatch.Store("b", "m1")

	s.unpair(pairing)

	assert.True(t, s.queue.Waiting("a"))
	assert.True(t, s.queue.Waiting("b"))
	_, busyA := s.inMatch.Load("a")
	_, busyB := s.inMatch.Load("b")
	assert.False(t, busyA)
	assert.False(t, busyB)
}
