// Package protocol defines the WebSocket wire format shared by the signaling
// server and its clients.
package protocol

import (
	"encoding/json"
	"fmt"
)

// Message is the envelope for every client-to-server and server-to-client
// frame. Data is kept raw so relayed payloads pass through untouched.
type Message struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Inbound event names.
const (
	EventJoinRoom     = "join-room"
	EventOffer        = "offer"
	EventAnswer       = "answer"
	EventICECandidate = "ice-candidate"
	EventChatMessage  = "chat-message"
	EventToggleAudio  = "toggle-audio"
	EventToggleVideo  = "toggle-video"
	EventPing         = "ping"
)

// Outbound event names. Relayed signals and chat reuse their inbound names.
const (
	EventUserJoined      = "user-joined"
	EventRoomUsers       = "room-users"
	EventUserAudioToggle = "user-audio-toggle"
	EventUserVideoToggle = "user-video-toggle"
	EventUserLeft        = "user-left"
	EventPong            = "pong"
)

// DefaultUserType is the role assumed when a join omits one.
const DefaultUserType = "patient"

// NewMessage encodes data as the payload of a new envelope. A nil data
// produces an envelope without payload.
func NewMessage(event string, data any) (*Message, error) {
	msg := &Message{Event: event}
	if data == nil {
		return msg, nil
	}
	b, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", event, err)
	}
	msg.Data = b
	return msg, nil
}

// Decode unmarshals the payload into v.
func (m *Message) Decode(v any) error {
	if len(m.Data) == 0 {
		return fmt.Errorf("%s: empty payload", m.Event)
	}
	return json.Unmarshal(m.Data, v)
}
