package hub

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Bootstrap turns an authenticated upgrade into a live connection: membership
// is hydrated from storage first, then the connection is registered (possibly
// firing the online edge) and handed its initial snapshot. Any failure before
// registration leaves no partial state behind.
func (h *Hub) Bootstrap(ctx context.Context, userID uuid.UUID, ws *websocket.Conn) (*Conn, error) {
	conversationIDs, err := h.storage.MembershipOf(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("hydrate membership for %s: %w", userID, err)
	}

	c := newConn(userID, ws, h.opts.WriteQueue)
	h.rooms.hydrate(c, conversationIDs)

	if h.registry.register(c) {
		h.presenceOnline(userID)
	}
	connectionsOpen.Inc()

	summaries, err := h.storage.RecomputeUnread(ctx, userID)
	if err != nil {
		// The connection is already live; a failed snapshot is not fatal,
		// the client re-fetches through the REST layer.
		log.Error().Err(err).Str("user_id", userID.String()).Msg("failed to build initial snapshot")
	} else if err := c.Send(EventConversationList, summaries); err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("failed to push initial snapshot")
	}

	log.Debug().
		Str("conn_id", c.id.String()).
		Str("user_id", userID.String()).
		Int("conversations", len(conversationIDs)).
		Msg("connection bootstrapped")
	return c, nil
}
