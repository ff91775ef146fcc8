package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// JoinRoom is the join-room payload. Older browser clients send it
// positionally, so the array form ["room", "role"] and a
// bare "room" string are accepted as well as the object form.
type JoinRoom struct {
	RoomID   string `json:"roomId" validate:"required,max=256"`
	UserType string `json:"userType" validate:"max=64"`
}

func (j *JoinRoom) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return fmt.Errorf("join-room: empty payload")
	}

	switch b[0] {
	case '"':
		return json.Unmarshal(b, &j.RoomID)
	case '[':
		var args []string
		if err := json.Unmarshal(b, &args); err != nil {
			return fmt.Errorf("join-room: %w", err)
		}
		if len(args) > 0 {
			j.RoomID = args[0]
		}
		if len(args) > 1 {
			j.UserType = args[1]
		}
		return nil
	default:
		type plain JoinRoom
		var p plain
		if err := json.Unmarshal(b, &p); err != nil {
			return err
		}
		*j = JoinRoom(p)
		return nil
	}
}

// Role returns the requested user type, falling back to DefaultUserType.
func (j JoinRoom) Role() string {
	if j.UserType == "" {
		return DefaultUserType
	}
	return j.UserType
}

// SignalTarget is the routing part of offer, answer and ice-candidate.
type SignalTarget struct {
	Target string `json:"target" validate:"required"`
}

// SignalField maps a relayed signaling event to the name of the field that
// carries its opaque payload.
var SignalField = map[string]string{
	EventOffer:        "offer",
	EventAnswer:       "answer",
	EventICECandidate: "candidate",
}

// ChatMessage is the inbound chat-message payload.
type ChatMessage struct {
	Message string `json:"message" validate:"required"`
}

// UserJoined is broadcast to the room when a participant joins.
type UserJoined struct {
	UserID     string `json:"userId"`
	UserType   string `json:"userType"`
	TotalUsers int    `json:"totalUsers"`
}

// RoomUser is one entry of the room-users reply.
type RoomUser struct {
	ID       string    `json:"id"`
	Type     string    `json:"type"`
	JoinedAt time.Time `json:"joinedAt"`
}

// ChatBroadcast is the outbound chat-message payload.
type ChatBroadcast struct {
	Message    string    `json:"message"`
	Sender     string    `json:"sender"`
	SenderType string    `json:"senderType"`
	Timestamp  time.Time `json:"timestamp"`
}

// MediaToggle is the outbound user-audio-toggle / user-video-toggle payload.
type MediaToggle struct {
	UserID  string `json:"userId"`
	Enabled bool   `json:"enabled"`
}

// UserLeft is broadcast to the room when a participant leaves.
type UserLeft struct {
	UserID     string `json:"userId"`
	TotalUsers int    `json:"totalUsers"`
}

// Stats is the operational snapshot served on /stats.
type Stats struct {
	TotalRooms       int           `json:"totalRooms"`
	TotalConnections int           `json:"totalConnections"`
	Rooms            []RoomSummary `json:"rooms"`
}

// RoomSummary describes one room in Stats.
type RoomSummary struct {
	ID        string    `json:"id"`
	UserCount int       `json:"userCount"`
	CreatedAt time.Time `json:"createdAt"`
}
