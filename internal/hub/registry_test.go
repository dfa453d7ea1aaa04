package hub

import (
	"encoding/json"
	"testing"

	"github.com/Yarikttyui/pinkmessik/internal/dto"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodePresence(t *testing.T, env Envelope) dto.PresenceUpdate {
	t.Helper()
	var p dto.PresenceUpdate
	require.NoError(t, json.Unmarshal(env.Payload, &p))
	return p
}

func TestPresenceEdgeOnlyOnFirstAndLastConnection(t *testing.T) {
	store := newFakeStorage()
	h := newTestHub(t, store, Options{})

	observer := connect(t, h, uuid.New())
	drain(t, observer)

	userA := uuid.New()
	d1 := connect(t, h, userA)
	d2 := connect(t, h, userA)
	d3 := connect(t, h, userA)

	online := eventsOfType(drain(t, observer), EventPresenceUpdate)
	require.Len(t, online, 1, "three devices must produce exactly one online edge")
	p := decodePresence(t, online[0])
	assert.Equal(t, userA, p.UserID)
	assert.Equal(t, "online", p.Status)
	assert.Nil(t, p.LastSeen)

	// Intermediate disconnects fire nothing.
	h.Teardown(d1)
	h.Teardown(d2)
	assert.Empty(t, eventsOfType(drain(t, observer), EventPresenceUpdate))

	// The last disconnect fires exactly one offline edge with lastSeen.
	h.Teardown(d3)
	offline := eventsOfType(drain(t, observer), EventPresenceUpdate)
	require.Len(t, offline, 1)
	p = decodePresence(t, offline[0])
	assert.Equal(t, "offline", p.Status)
	require.NotNil(t, p.LastSeen)

	store.mu.Lock()
	_, persisted := store.lastSeen[userA]
	store.mu.Unlock()
	assert.True(t, persisted, "offline edge must persist last seen")
}

func TestDeregisterIsIdempotent(t *testing.T) {
	store := newFakeStorage()
	h := newTestHub(t, store, Options{})

	userA := uuid.New()
	c := connect(t, h, userA)

	assert.True(t, h.registry.deregister(c))
	assert.False(t, h.registry.deregister(c), "second deregister must be a no-op")
	assert.Empty(t, h.registry.connectionsOf(userA))
}

func TestTeardownTwiceIsSafe(t *testing.T) {
	store := newFakeStorage()
	h := newTestHub(t, store, Options{})

	observer := connect(t, h, uuid.New())
	drain(t, observer)

	c := connect(t, h, uuid.New())
	h.Teardown(c)
	h.Teardown(c)

	presence := eventsOfType(drain(t, observer), EventPresenceUpdate)
	assert.Len(t, presence, 2, "one online and one offline edge expected, no duplicates")
}

func TestClosedConnectionRejectsFrames(t *testing.T) {
	store := newFakeStorage()
	h := newTestHub(t, store, Options{})

	c := connect(t, h, uuid.New())
	h.Teardown(c)

	assert.False(t, c.push([]byte(`{}`)), "a torn down connection must reject frames")
}
