package hub

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type typingKey struct {
	conversation uuid.UUID
	user         uuid.UUID
}

type typingRecord struct {
	timer    *time.Timer
	deadline time.Time
}

// typingCoordinator holds the ephemeral (conversation, user) typing flags.
// A record exists iff the user is considered typing; broadcasts happen only
// on the create and delete edges, never on timer refresh.
type typingCoordinator struct {
	mu      sync.Mutex
	ttl     time.Duration
	records map[typingKey]*typingRecord

	// expired is invoked (outside the lock) when a record dies by timeout.
	expired func(conversationID, userID uuid.UUID)
}

func newTypingCoordinator(ttl time.Duration) *typingCoordinator {
	return &typingCoordinator{
		ttl:     ttl,
		records: make(map[typingKey]*typingRecord),
	}
}

// start arms or refreshes the flag. Returns true only when the record was
// created, i.e. when a broadcast is due.
func (t *typingCoordinator) start(conversationID, userID uuid.UUID) bool {
	key := typingKey{conversation: conversationID, user: userID}
	t.mu.Lock()
	defer t.mu.Unlock()
	if rec, ok := t.records[key]; ok {
		rec.deadline = time.Now().Add(t.ttl)
		rec.timer.Reset(t.ttl)
		return false
	}
	rec := &typingRecord{deadline: time.Now().Add(t.ttl)}
	rec.timer = time.AfterFunc(t.ttl, func() { t.expire(key) })
	t.records[key] = rec
	return true
}

// stop deletes the flag. Returns true only when a record actually existed,
// i.e. when a broadcast is due. Stopping an absent record is a no-op.
func (t *typingCoordinator) stop(conversationID, userID uuid.UUID) bool {
	key := typingKey{conversation: conversationID, user: userID}
	t.mu.Lock()
	defer t.mu.Unlock()
	rec, ok := t.records[key]
	if !ok {
		return false
	}
	rec.timer.Stop()
	delete(t.records, key)
	return true
}

// stopAllFor clears every record of one user and returns the conversation ids
// whose flags were dropped. Part of the disconnect teardown.
func (t *typingCoordinator) stopAllFor(userID uuid.UUID) []uuid.UUID {
	t.mu.Lock()
	defer t.mu.Unlock()
	var cleared []uuid.UUID
	for key, rec := range t.records {
		if key.user != userID {
			continue
		}
		rec.timer.Stop()
		delete(t.records, key)
		cleared = append(cleared, key.conversation)
	}
	return cleared
}

// expire runs in the timer goroutine. A start() racing the fired timer moves
// the deadline forward; in that case the timer is re-armed instead of the
// record dying.
func (t *typingCoordinator) expire(key typingKey) {
	t.mu.Lock()
	rec, ok := t.records[key]
	if !ok {
		t.mu.Unlock()
		return
	}
	if remaining := time.Until(rec.deadline); remaining > 0 {
		rec.timer.Reset(remaining)
		t.mu.Unlock()
		return
	}
	delete(t.records, key)
	t.mu.Unlock()

	if t.expired != nil {
		t.expired(key.conversation, key.user)
	}
}
