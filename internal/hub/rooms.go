package hub

import (
	"sync"

	"github.com/google/uuid"
)

// roomCache is the per-connection authorization cache derived from the
// conversation_members facts in storage. It is mutated only by explicit
// hydrate/grant/revoke calls, never from client claims, and keeps a reverse
// index conversation → connections for fan-out resolution.
type roomCache struct {
	mu             sync.RWMutex
	byConversation map[uuid.UUID]map[*Conn]struct{}
}

func newRoomCache() *roomCache {
	return &roomCache{byConversation: make(map[uuid.UUID]map[*Conn]struct{})}
}

// hydrate replaces the connection's authorization set wholesale. Called once
// at bootstrap.
func (rc *roomCache) hydrate(c *Conn, conversationIDs []uuid.UUID) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	for id := range c.rooms {
		rc.detach(c, id)
	}
	c.rooms = make(map[uuid.UUID]struct{}, len(conversationIDs))
	for _, id := range conversationIDs {
		c.rooms[id] = struct{}{}
		rc.attach(c, id)
	}
}

// grant authorizes every given connection for the conversation. The caller
// passes all live connections of the affected user so that a user with two
// open devices sees consistent authorization on both.
func (rc *roomCache) grant(conns []*Conn, conversationID uuid.UUID) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	for _, c := range conns {
		c.rooms[conversationID] = struct{}{}
		rc.attach(c, conversationID)
	}
}

// revoke removes the conversation from every given connection.
func (rc *roomCache) revoke(conns []*Conn, conversationID uuid.UUID) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	for _, c := range conns {
		delete(c.rooms, conversationID)
		rc.detach(c, conversationID)
	}
}

// drop removes the connection from every conversation set. Part of teardown.
func (rc *roomCache) drop(c *Conn) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	for id := range c.rooms {
		rc.detach(c, id)
	}
	c.rooms = make(map[uuid.UUID]struct{})
}

func (rc *roomCache) isAuthorized(c *Conn, conversationID uuid.UUID) bool {
	rc.mu.RLock()
	defer rc.mu.RUnlock()
	_, ok := c.rooms[conversationID]
	return ok
}

// connsIn snapshots the connections currently enrolled for a conversation.
func (rc *roomCache) connsIn(conversationID uuid.UUID) []*Conn {
	rc.mu.RLock()
	defer rc.mu.RUnlock()
	set := rc.byConversation[conversationID]
	conns := make([]*Conn, 0, len(set))
	for c := range set {
		conns = append(conns, c)
	}
	return conns
}

// attach/detach maintain the reverse index; callers hold rc.mu.

func (rc *roomCache) attach(c *Conn, conversationID uuid.UUID) {
	set := rc.byConversation[conversationID]
	if set == nil {
		set = make(map[*Conn]struct{})
		rc.byConversation[conversationID] = set
	}
	set[c] = struct{}{}
}

func (rc *roomCache) detach(c *Conn, conversationID uuid.UUID) {
	if set, ok := rc.byConversation[conversationID]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(rc.byConversation, conversationID)
		}
	}
}
