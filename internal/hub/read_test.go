package hub

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkReadRefreshesOnlyTheCaller(t *testing.T) {
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

	require.NoError(t, h.MarkRead(context.Background(), a, conv))

	store.mu.Lock()
	_, marked := store.lastRead[userA][conv]
	store.mu.Unlock()
	assert.True(t, marked, "bookmark must move in storage")

	assert.Len(t, eventsOfType(drain(t, a), EventConversationList), 1,
		"the caller gets a refreshed snapshot")
	assert.Empty(t, drain(t, b),
		"one member reading must not touch other members")
}

func TestMarkReadRequiresMembership(t *testing.T) {
	store := newFakeStorage()
	h := newTestHub(t, store, Options{})

	conv := uuid.New()
	outsider := connect(t, h, uuid.New())
	drain(t, outsider)

	require.NoError(t, h.MarkRead(context.Background(), outsider, conv))

	store.mu.Lock()
	_, marked := store.lastRead[outsider.UserID()][conv]
	store.mu.Unlock()
	assert.False(t, marked, "unauthorized mark-read must not mutate storage")
	assert.Empty(t, drain(t, outsider))
}

func TestMarkReadStorageFailureCommitsNothing(t *testing.T) {
	store := newFakeStorage()
	h := newTestHub(t, store, Options{})

	conv := uuid.New()
	userA := uuid.New()
	store.addMember(userA, conv)
	a := connect(t, h, userA)
	drain(t, a)

	store.failMarkRead = true
	err := h.MarkRead(context.Background(), a, conv)
	require.Error(t, err)
	assert.Empty(t, eventsOfType(drain(t, a), EventConversationList),
		"no snapshot push after a failed storage write")
}
