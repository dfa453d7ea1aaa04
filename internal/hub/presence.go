package hub

import (
	"context"
	"time"

	"github.com/Yarikttyui/pinkmessik/internal/dto"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Presence derives from registry edges only: the aggregate session going
// 0→1 fires online, 1→0 fires offline. Additional devices of an already
// online user never flicker presence.

func (h *Hub) presenceOnline(userID uuid.UUID) {
	h.broadcastAll(EventPresenceUpdate, dto.PresenceUpdate{
		UserID: userID,
		Status: "online",
	})
}

func (h *Hub) presenceOffline(ctx context.Context, userID uuid.UUID, lastSeen time.Time) {
	if err := h.storage.SetLastSeen(ctx, userID, lastSeen); err != nil {
		// Presence still goes out; the persisted timestamp heals on the
		// next offline edge.
		log.Error().Err(err).Str("user_id", userID.String()).Msg("failed to persist last seen")
	}
	h.broadcastAll(EventPresenceUpdate, dto.PresenceUpdate{
		UserID:   userID,
		Status:   "offline",
		LastSeen: &lastSeen,
	})
}
