package hub

import (
	"sync"

	"github.com/Yarikttyui/pinkmessik/internal/dto"

	"github.com/google/uuid"
)

// callParticipant is one user inside one call: the set of their connections
// that joined, plus the media flags the rest of the call sees.
type callParticipant struct {
	conns         map[uuid.UUID]*Conn // keyed by connection id
	muted         bool
	screenSharing bool
}

// callRelay keeps the ad hoc per-conversation call rosters. A roster entry
// exists iff its connection set is non-empty; the per-conversation map is
// discarded when the last participant leaves. All mutations of one
// conversation's roster are serialized by the relay lock.
type callRelay struct {
	mu      sync.Mutex
	rosters map[uuid.UUID]map[uuid.UUID]*callParticipant // conversation → user → entry
}

func newCallRelay() *callRelay {
	return &callRelay{rosters: make(map[uuid.UUID]map[uuid.UUID]*callParticipant)}
}

// join adds the connection to the user's roster entry, creating the entry on
// first join. Returns the participant snapshot as of the moment of joining
// (the first joiner sees an empty call) and whether this was the user's
// first connection in it — only then is a user-joined broadcast due.
func (cr *callRelay) join(conversationID uuid.UUID, c *Conn) (snapshot []dto.CallParticipant, firstJoin bool) {
	cr.mu.Lock()
	defer cr.mu.Unlock()

	roster := cr.rosters[conversationID]
	if roster == nil {
		roster = make(map[uuid.UUID]*callParticipant)
		cr.rosters[conversationID] = roster
	}

	snapshot = make([]dto.CallParticipant, 0, len(roster))
	for userID, p := range roster {
		snapshot = append(snapshot, dto.CallParticipant{
			UserID:        userID,
			Muted:         p.muted,
			ScreenSharing: p.screenSharing,
		})
	}

	entry := roster[c.user]
	if entry == nil {
		entry = &callParticipant{conns: make(map[uuid.UUID]*Conn)}
		roster[c.user] = entry
		firstJoin = true
	}
	entry.conns[c.id] = c
	c.calls[conversationID] = struct{}{}

	return snapshot, firstJoin
}

// signalConns resolves the connections an opaque signal should be relayed to.
// Both parties must be in the roster and the sending connection must itself
// have joined the call; otherwise nil (silent rejection).
func (cr *callRelay) signalConns(conversationID uuid.UUID, from *Conn, targetUserID uuid.UUID) []*Conn {
	cr.mu.Lock()
	defer cr.mu.Unlock()

	if _, ok := from.calls[conversationID]; !ok {
		return nil
	}
	roster := cr.rosters[conversationID]
	if roster == nil {
		return nil
	}
	if _, ok := roster[from.user]; !ok {
		return nil
	}
	target, ok := roster[targetUserID]
	if !ok {
		return nil
	}
	conns := make([]*Conn, 0, len(target.conns))
	for _, c := range target.conns {
		conns = append(conns, c)
	}
	return conns
}

// setState updates the entry's media flags. Nil fields are left untouched.
// Returns the resulting state and whether the update applied.
func (cr *callRelay) setState(conversationID uuid.UUID, c *Conn, muted, screenSharing *bool) (dto.CallState, bool) {
	cr.mu.Lock()
	defer cr.mu.Unlock()

	if _, ok := c.calls[conversationID]; !ok {
		return dto.CallState{}, false
	}
	roster := cr.rosters[conversationID]
	if roster == nil {
		return dto.CallState{}, false
	}
	entry, ok := roster[c.user]
	if !ok {
		return dto.CallState{}, false
	}
	if muted != nil {
		entry.muted = *muted
	}
	if screenSharing != nil {
		entry.screenSharing = *screenSharing
	}
	return dto.CallState{
		ConversationID: conversationID,
		UserID:         c.user,
		Muted:          entry.muted,
		ScreenSharing:  entry.screenSharing,
	}, true
}

// leave removes one connection from the user's entry. Returns true when the
// entry died with it, i.e. when a user-left broadcast is due.
func (cr *callRelay) leave(conversationID uuid.UUID, c *Conn) bool {
	cr.mu.Lock()
	defer cr.mu.Unlock()
	return cr.leaveLocked(conversationID, c)
}

// leaveAll pulls the connection out of every call it is part of. Returns the
// conversation ids where the user fully left. Part of the disconnect teardown.
func (cr *callRelay) leaveAll(c *Conn) []uuid.UUID {
	cr.mu.Lock()
	defer cr.mu.Unlock()

	var left []uuid.UUID
	for conversationID := range c.calls {
		if cr.leaveLocked(conversationID, c) {
			left = append(left, conversationID)
		}
	}
	return left
}

// forceLeave evicts every connection of the user from the call at once. Used
// on membership revocation so a removed member never lingers in a roster.
func (cr *callRelay) forceLeave(conversationID, userID uuid.UUID) bool {
	cr.mu.Lock()
	defer cr.mu.Unlock()

	roster := cr.rosters[conversationID]
	if roster == nil {
		return false
	}
	entry, ok := roster[userID]
	if !ok {
		return false
	}
	for _, c := range entry.conns {
		delete(c.calls, conversationID)
	}
	delete(roster, userID)
	if len(roster) == 0 {
		delete(cr.rosters, conversationID)
	}
	return true
}

// participantConns snapshots the connections of every participant except the
// given user. Broadcast targets for join/leave/state events.
func (cr *callRelay) participantConns(conversationID, exceptUser uuid.UUID) []*Conn {
	cr.mu.Lock()
	defer cr.mu.Unlock()

	roster := cr.rosters[conversationID]
	var conns []*Conn
	for userID, p := range roster {
		if userID == exceptUser {
			continue
		}
		for _, c := range p.conns {
			conns = append(conns, c)
		}
	}
	return conns
}

func (cr *callRelay) leaveLocked(conversationID uuid.UUID, c *Conn) bool {
	delete(c.calls, conversationID)

	roster := cr.rosters[conversationID]
	if roster == nil {
		return false
	}
	entry, ok := roster[c.user]
	if !ok {
		if len(roster) == 0 {
			delete(cr.rosters, conversationID)
		}
		return false
	}
	delete(entry.conns, c.id)
	if len(entry.conns) > 0 {
		return false
	}
	delete(roster, c.user)
	if len(roster) == 0 {
		delete(cr.rosters, conversationID)
	}
	return true
}
