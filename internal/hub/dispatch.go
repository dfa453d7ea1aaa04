package hub

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// --------------------------------------------------------------------
// Fan-out dispatcher. Targets are resolved through the registry and the
// room cache, never by re-querying storage. Delivery to a connection that
// is gone is silently dropped; reconnect/bootstrap is the recovery path.
// --------------------------------------------------------------------

// DeliverToConversation pushes one event to every connection currently
// enrolled for the conversation. Each connection's own authorization is
// re-checked so a stale entry on one device cannot ride along after another
// device has already been revoked.
func (h *Hub) DeliverToConversation(conversationID uuid.UUID, eventType string, payload any) {
	h.deliverToConversationExcept(conversationID, uuid.Nil, eventType, payload)
}

func (h *Hub) deliverToConversationExcept(conversationID, exceptUser uuid.UUID, eventType string, payload any) {
	frame, err := encodeEvent(eventType, payload)
	if err != nil {
		log.Error().Err(err).Str("event", eventType).Msg("failed to encode event")
		return
	}
	for _, c := range h.rooms.connsIn(conversationID) {
		if c.user == exceptUser {
			continue
		}
		if !h.rooms.isAuthorized(c, conversationID) {
			continue
		}
		if c.push(frame) {
			eventsDelivered.WithLabelValues(eventType).Inc()
		}
	}
}

// DeliverToUsers pushes one event to every live connection of the given
// users. The direct path for personal snapshots and profile updates.
func (h *Hub) DeliverToUsers(userIDs []uuid.UUID, eventType string, payload any) {
	frame, err := encodeEvent(eventType, payload)
	if err != nil {
		log.Error().Err(err).Str("event", eventType).Msg("failed to encode event")
		return
	}
	for _, userID := range userIDs {
		for _, c := range h.registry.connectionsOf(userID) {
			if c.push(frame) {
				eventsDelivered.WithLabelValues(eventType).Inc()
			}
		}
	}
}

// broadcastAll pushes one event to every connection system-wide. Presence is
// global, not conversation-scoped.
func (h *Hub) broadcastAll(eventType string, payload any) {
	frame, err := encodeEvent(eventType, payload)
	if err != nil {
		log.Error().Err(err).Str("event", eventType).Msg("failed to encode event")
		return
	}
	for _, c := range h.registry.all() {
		if c.push(frame) {
			eventsDelivered.WithLabelValues(eventType).Inc()
		}
	}
}

// deliverToConns pushes a pre-resolved target set (call broadcasts).
func (h *Hub) deliverToConns(conns []*Conn, eventType string, payload any) {
	frame, err := encodeEvent(eventType, payload)
	if err != nil {
		log.Error().Err(err).Str("event", eventType).Msg("failed to encode event")
		return
	}
	for _, c := range conns {
		if c.push(frame) {
			eventsDelivered.WithLabelValues(eventType).Inc()
		}
	}
}
