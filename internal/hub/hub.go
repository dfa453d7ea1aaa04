package hub

import (
	"context"
	"fmt"
	"time"

	"github.com/Yarikttyui/pinkmessik/internal/dto"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Hub is the live coordination layer of the messenger: it owns the session
// registry, the per-connection room cache, the typing flags and the call
// rosters, and fans events out to exactly the sockets that may see them.
// Durable truth stays in storage; the hub only caches what it needs for
// low-latency routing.
type Hub struct {
	storage  Storage
	registry *sessionRegistry
	rooms    *roomCache
	typing   *typingCoordinator
	calls    *callRelay

	opts Options
}

type Options struct {
	TypingTTL    time.Duration
	WriteQueue   int
	PingInterval time.Duration
}

func (o *Options) withDefaults() {
	if o.TypingTTL <= 0 {
		o.TypingTTL = 5 * time.Second
	}
	if o.WriteQueue <= 0 {
		o.WriteQueue = 32
	}
	if o.PingInterval <= 0 {
		o.PingInterval = 25 * time.Second
	}
}

func New(storage Storage, opts Options) *Hub {
	opts.withDefaults()
	h := &Hub{
		storage:  storage,
		registry: newSessionRegistry(),
		rooms:    newRoomCache(),
		typing:   newTypingCoordinator(opts.TypingTTL),
		calls:    newCallRelay(),
		opts:     opts,
	}
	h.typing.expired = func(conversationID, userID uuid.UUID) {
		h.deliverToConversationExcept(conversationID, userID, EventTypingUpdate, dto.TypingUpdate{
			ConversationID: conversationID,
			UserID:         userID,
			IsTyping:       false,
		})
	}
	return h
}

// Teardown is the single ordered exit path for a connection, invoked once no
// matter how the transport died. Once it runs the handle is dead and further
// inbound events are rejected.
func (h *Hub) Teardown(c *Conn) {
	c.teardown.Do(func() {
		c.markClosed()

		for _, conversationID := range h.calls.leaveAll(c) {
			h.deliverToConns(h.calls.participantConns(conversationID, c.user), EventCallUserLeft, dto.CallUserEvent{
				ConversationID: conversationID,
				UserID:         c.user,
			})
		}

		for _, conversationID := range h.typing.stopAllFor(c.user) {
			h.deliverToConversationExcept(conversationID, c.user, EventTypingUpdate, dto.TypingUpdate{
				ConversationID: conversationID,
				UserID:         c.user,
				IsTyping:       false,
			})
		}

		h.rooms.drop(c)

		if h.registry.deregister(c) {
			h.presenceOffline(context.Background(), c.user, time.Now().UTC())
		}
		connectionsOpen.Dec()

		log.Debug().Str("conn_id", c.id.String()).Str("user_id", c.user.String()).Msg("connection torn down")
	})
}

// GrantMembership enrolls every live connection of the user for the
// conversation and pushes them a refreshed list snapshot. Called by the CRUD
// layer after an add-member or conversation-created mutation.
func (h *Hub) GrantMembership(ctx context.Context, conversationID, userID uuid.UUID) error {
	conns := h.registry.connectionsOf(userID)
	h.rooms.grant(conns, conversationID)
	if len(conns) == 0 {
		return nil
	}
	return h.RefreshConversationList(ctx, userID)
}

// RevokeMembership removes the conversation from every live connection of
// the user and, within the same operation, forces the user out of any active
// call in that conversation. A removed member must never linger in a roster.
func (h *Hub) RevokeMembership(ctx context.Context, conversationID, userID uuid.UUID) error {
	conns := h.registry.connectionsOf(userID)
	h.rooms.revoke(conns, conversationID)

	if h.calls.forceLeave(conversationID, userID) {
		h.deliverToConns(h.calls.participantConns(conversationID, userID), EventCallUserLeft, dto.CallUserEvent{
			ConversationID: conversationID,
			UserID:         userID,
		})
	}

	if len(conns) == 0 {
		return nil
	}
	return h.RefreshConversationList(ctx, userID)
}

// RefreshConversationList recomputes each user's conversation list from
// storage and pushes it to that user's own connections only.
func (h *Hub) RefreshConversationList(ctx context.Context, userIDs ...uuid.UUID) error {
	for _, userID := range userIDs {
		if len(h.registry.connectionsOf(userID)) == 0 {
			continue
		}
		summaries, err := h.storage.RecomputeUnread(ctx, userID)
		if err != nil {
			return fmt.Errorf("recompute unread for %s: %w", userID, err)
		}
		h.DeliverToUsers([]uuid.UUID{userID}, EventConversationList, summaries)
	}
	return nil
}

// RefreshConversation recomputes and pushes the list for every current member
// of the conversation (storage truth, not the cache).
func (h *Hub) RefreshConversation(ctx context.Context, conversationID uuid.UUID) error {
	members, err := h.storage.MembersOf(ctx, conversationID)
	if err != nil {
		return fmt.Errorf("members of %s: %w", conversationID, err)
	}
	return h.RefreshConversationList(ctx, members...)
}

// IsAuthorized reports whether the connection may receive events for the
// conversation.
func (h *Hub) IsAuthorized(c *Conn, conversationID uuid.UUID) bool {
	return h.rooms.isAuthorized(c, conversationID)
}

// CloseAll tears down every live connection. Shutdown path.
func (h *Hub) CloseAll() {
	for _, c := range h.registry.all() {
		h.Teardown(c)
		if c.ws != nil {
			_ = c.ws.Close()
		}
	}
}
