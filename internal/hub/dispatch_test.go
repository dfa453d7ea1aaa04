package hub

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeliverToConversationTargetsMembersOnly(t *testing.T) {
	store := newFakeStorage()
	h := newTestHub(t, store, Options{})

	conv := uuid.New()
	userA, userB, outsider := uuid.New(), uuid.New(), uuid.New()
	store.addMember(userA, conv)
	store.addMember(userB, conv)

	a := connect(t, h, userA)
	b := connect(t, h, userB)
	o := connect(t, h, outsider)
	drain(t, a)
	drain(t, b)
	drain(t, o)

	h.DeliverToConversation(conv, "message:created", map[string]any{"content": "hi"})

	assert.Len(t, eventsOfType(drain(t, a), "message:created"), 1)
	assert.Len(t, eventsOfType(drain(t, b), "message:created"), 1)
	assert.Empty(t, drain(t, o), "non-members must never see conversation events")
}

func TestNoDeliveryAfterRevocation(t *testing.T) {
	store := newFakeStorage()
	h := newTestHub(t, store, Options{})

	conv := uuid.New()
	userA, userB := uuid.New(), uuid.New()
	store.addMember(userA, conv)
	store.addMember(userB, conv)

	a := connect(t, h, userA)
	b := connect(t, h, userB)
	require.NoError(t, h.RevokeMembership(context.Background(), conv, userB))
	drain(t, a)
	drain(t, b)

	h.DeliverToConversation(conv, "message:created", map[string]any{"content": "secret"})

	assert.Len(t, eventsOfType(drain(t, a), "message:created"), 1)
	assert.Empty(t, eventsOfType(drain(t, b), "message:created"),
		"a past member must not receive events scoped to the conversation")
}

func TestDeliverToUsersHitsEveryConnection(t *testing.T) {
	store := newFakeStorage()
	h := newTestHub(t, store, Options{})

	userA := uuid.New()
	d1 := connect(t, h, userA)
	d2 := connect(t, h, userA)
	other := connect(t, h, uuid.New())
	drain(t, d1)
	drain(t, d2)
	drain(t, other)

	h.DeliverToUsers([]uuid.UUID{userA}, "folders:update", map[string]any{"folders": []any{}})

	assert.Len(t, eventsOfType(drain(t, d1), "folders:update"), 1)
	assert.Len(t, eventsOfType(drain(t, d2), "folders:update"), 1)
	assert.Empty(t, eventsOfType(drain(t, other), "folders:update"))
}

func TestDeliveryPreservesPerConnectionOrder(t *testing.T) {
	store := newFakeStorage()
	h := newTestHub(t, store, Options{})

	conv := uuid.New()
	userA := uuid.New()
	store.addMember(userA, conv)
	a := connect(t, h, userA)
	drain(t, a)

	for i := 0; i < 10; i++ {
		h.DeliverToConversation(conv, "message:created", map[string]int{"seq": i})
	}

	frames := eventsOfType(drain(t, a), "message:created")
	require.Len(t, frames, 10)
	for i, f := range frames {
		var payload struct {
			Seq int `json:"seq"`
		}
		require.NoError(t, json.Unmarshal(f.Payload, &payload))
		assert.Equal(t, i, payload.Seq, "events issued for one connection must arrive in order")
	}
}

func TestRawPayloadPassthrough(t *testing.T) {
	store := newFakeStorage()
	h := newTestHub(t, store, Options{})

	conv := uuid.New()
	userA := uuid.New()
	store.addMember(userA, conv)
	a := connect(t, h, userA)
	drain(t, a)

	raw := json.RawMessage(`{"id":"m1","content":"verbatim"}`)
	h.DeliverToConversation(conv, "message:updated", raw)

	frames := eventsOfType(drain(t, a), "message:updated")
	require.Len(t, frames, 1)
	assert.JSONEq(t, string(raw), string(frames[0].Payload))
}
