package hub

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/Yarikttyui/pinkmessik/internal/dto"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envelope(t *testing.T, cmdType string, payload any) Envelope {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	return Envelope{Type: cmdType, Payload: raw}
}

func TestHandleCommandRoutesTyping(t *testing.T) {
	h, conv, a, b := typingSetup(t, time.Minute)

	h.HandleCommand(a, envelope(t, CmdTypingStart, map[string]string{
		"conversationId": conv.String(),
	}))

	updates := eventsOfType(drain(t, b), EventTypingUpdate)
	require.Len(t, updates, 1)
	assert.True(t, decodeTyping(t, updates[0]).IsTyping)
}

func TestHandleCommandAcksFailedMarkRead(t *testing.T) {
	store := newFakeStorage()
	h := newTestHub(t, store, Options{})

	conv := uuid.New()
	userA := uuid.New()
	store.addMember(userA, conv)
	a := connect(t, h, userA)
	drain(t, a)

	store.failMarkRead = true
	h.HandleCommand(a, envelope(t, CmdConversationRead, map[string]string{
		"conversationId": conv.String(),
	}))

	acks := eventsOfType(drain(t, a), EventAck)
	require.Len(t, acks, 1)
	var ack dto.Ack
	require.NoError(t, json.Unmarshal(acks[0].Payload, &ack))
	assert.Equal(t, CmdConversationRead, ack.Op)
	assert.False(t, ack.OK)
}

func TestHandleCommandIgnoresUnknownAndMalformed(t *testing.T) {
	store := newFakeStorage()
	h := newTestHub(t, store, Options{})

	a := connect(t, h, uuid.New())
	drain(t, a)

	h.HandleCommand(a, Envelope{Type: "nonsense", Payload: json.RawMessage(`{}`)})
	h.HandleCommand(a, Envelope{Type: CmdTypingStart, Payload: json.RawMessage(`not json`)})

	assert.Empty(t, drain(t, a))
}

func TestHandleCommandRoutesCallFlow(t *testing.T) {
	store := newFakeStorage()
	h := newTestHub(t, store, Options{})

	conv := uuid.New()
	userA, userB := uuid.New(), uuid.New()
	store.addMember(userA, conv)
	store.addMember(userB, conv)
	a := connect(t, h, userA)
	b := connect(t, h, userB)
	drain(t, a)
	drain(t, b)

	h.HandleCommand(a, envelope(t, CmdCallJoin, map[string]string{"conversationId": conv.String()}))
	h.HandleCommand(b, envelope(t, CmdCallJoin, map[string]string{"conversationId": conv.String()}))
	drain(t, a)
	drain(t, b)

	h.HandleCommand(a, Envelope{Type: CmdCallSignal, Payload: json.RawMessage(fmt.Sprintf(
		`{"conversationId":%q,"targetUserId":%q,"data":{"type":"offer"}}`, conv.String(), userB.String(),
	))})

	sigs := eventsOfType(drain(t, b), EventCallSignal)
	require.Len(t, sigs, 1)

	h.HandleCommand(a, envelope(t, CmdCallLeave, map[string]string{"conversationId": conv.String()}))
	left := eventsOfType(drain(t, b), EventCallUserLeft)
	require.Len(t, left, 1)
}
