package hub

import (
	"net/http"

	"github.com/Yarikttyui/pinkmessik/pkg/log"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(*http.Request) bool { return true },
}

// Handler upgrades HTTP → WS, runs the session bootstrap and starts the
// connection's read/write loops. An invalid token terminates the attempt
// before any hub state is touched.
func Handler(h *Hub, whoAmI func(*http.Request) (uuid.UUID, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, err := whoAmI(r)
		if err != nil {
			http.Error(w, "unauthenticated", http.StatusUnauthorized)
			return
		}

		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Logger.Warn().Err(err).Msg("ws upgrade failed")
			return
		}

		conn, err := h.Bootstrap(r.Context(), uid, ws)
		if err != nil {
			log.Logger.Error().Err(err).Str("user_id", uid.String()).Msg("bootstrap failed")
			_ = ws.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "bootstrap failed"))
			_ = ws.Close()
			return
		}

		go conn.writeLoop(h.opts.PingInterval)
		go conn.readLoop(h)
	}
}
