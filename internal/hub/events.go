package hub

import "encoding/json"

// Outbound event types pushed to clients.
const (
	EventConversationList = "conversation:list"
	EventPresenceUpdate   = "presence:update"
	EventTypingUpdate     = "typing:update"
	EventCallParticipants = "call:participants"
	EventCallUserJoined   = "call:user-joined"
	EventCallUserLeft     = "call:user-left"
	EventCallState        = "call:state"
	EventCallSignal       = "call:signal"
	EventAck              = "ack"
)

// Inbound command types accepted on the socket.
const (
	CmdConversationRead = "conversation:read"
	CmdTypingStart      = "typing:start"
	CmdTypingStop       = "typing:stop"
	CmdCallJoin         = "call:join"
	CmdCallSignal       = "call:signal"
	CmdCallState        = "call:state"
	CmdCallLeave        = "call:leave"
)

// Envelope is the wire frame in both directions: a type tag plus a payload.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// encodeEvent marshals one outbound frame. Fan-out marshals once and reuses
// the bytes for every target connection.
func encodeEvent(eventType string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Type: eventType, Payload: raw})
}
