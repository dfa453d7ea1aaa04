package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/Yarikttyui/pinkmessik/internal/hub"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

// The CRUD layer talks to the hub over this loopback surface after each
// successful storage mutation: event fan-out, membership invalidation and
// list refreshes. The hub routes, it does not validate business rules.

type eventBody struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type refreshBody struct {
	UserIDs []uuid.UUID `json:"userIds"`
}

// RegisterInternalRoutes mounts the ingest API on the given (already
// key-guarded) subrouter.
func RegisterInternalRoutes(r *mux.Router, h *hub.Hub) {
	r.HandleFunc("/conversations/{id}/events", conversationEventsHandler(h)).Methods("POST")
	r.HandleFunc("/conversations/{id}/members/{userId}", grantMemberHandler(h)).Methods("POST")
	r.HandleFunc("/conversations/{id}/members/{userId}", revokeMemberHandler(h)).Methods("DELETE")
	r.HandleFunc("/conversations/{id}/refresh", refreshConversationHandler(h)).Methods("POST")
	r.HandleFunc("/users/{id}/events", userEventsHandler(h)).Methods("POST")
}

// conversationEventsHandler fans a message:*/conversation:* event out to the
// conversation's authorized connections.
func conversationEventsHandler(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conversationID, ok := pathUUID(w, r, "id")
		if !ok {
			return
		}
		var body eventBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Type == "" {
			http.Error(w, "invalid event body", http.StatusBadRequest)
			return
		}
		h.DeliverToConversation(conversationID, body.Type, body.Payload)
		w.WriteHeader(http.StatusNoContent)
	}
}

func grantMemberHandler(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conversationID, ok := pathUUID(w, r, "id")
		if !ok {
			return
		}
		userID, ok := pathUUID(w, r, "userId")
		if !ok {
			return
		}
		if err := h.GrantMembership(r.Context(), conversationID, userID); err != nil {
			log.Error().Err(err).Str("conversation_id", conversationID.String()).Msg("grant membership failed")
			http.Error(w, "refresh failed", http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func revokeMemberHandler(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conversationID, ok := pathUUID(w, r, "id")
		if !ok {
			return
		}
		userID, ok := pathUUID(w, r, "userId")
		if !ok {
			return
		}
		if err := h.RevokeMembership(r.Context(), conversationID, userID); err != nil {
			log.Error().Err(err).Str("conversation_id", conversationID.String()).Msg("revoke membership failed")
			http.Error(w, "refresh failed", http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// refreshConversationHandler recomputes and pushes conversation-list
// snapshots: to the listed users, or to every current member when the body
// names none.
func refreshConversationHandler(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conversationID, ok := pathUUID(w, r, "id")
		if !ok {
			return
		}
		var body refreshBody
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&body)
		}

		var err error
		if len(body.UserIDs) > 0 {
			err = h.RefreshConversationList(r.Context(), body.UserIDs...)
		} else {
			err = h.RefreshConversation(r.Context(), conversationID)
		}
		if err != nil {
			log.Error().Err(err).Str("conversation_id", conversationID.String()).Msg("conversation refresh failed")
			http.Error(w, "refresh failed", http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// userEventsHandler pushes a direct event (folders:update, profile changes)
// to every live connection of one user.
func userEventsHandler(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := pathUUID(w, r, "id")
		if !ok {
			return
		}
		var body eventBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Type == "" {
			http.Error(w, "invalid event body", http.StatusBadRequest)
			return
		}
		h.DeliverToUsers([]uuid.UUID{userID}, body.Type, body.Payload)
		w.WriteHeader(http.StatusNoContent)
	}
}

func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		http.Error(w, "invalid "+name, http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}
