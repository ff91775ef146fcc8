package signaling

import "fmt"

// State is the lifecycle position of one connection.
type State int

const (
	// StateAnonymous is a connected participant that has not joined a room.
	StateAnonymous State = iota
	// StateJoined is a participant recorded in a room.
	StateJoined
	// StateGone is terminal; the connection has disconnected.
	StateGone
)

func (s State) String() string {
	switch s {
	case StateAnonymous:
		return "anonymous"
	case StateJoined:
		return "joined"
	case StateGone:
		return "gone"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Session is the per-connection identity and state record. It is a value:
// transitions return a new Session instead of mutating the old one.
type Session struct {
	ID     string
	State  State
	RoomID string
	Role   string
}

// NewSession returns the initial Anonymous session for a connection.
func NewSession(id string) Session {
	return Session{ID: id, State: StateAnonymous}
}

func (s Session) joined(roomID, role string) Session {
	s.State = StateJoined
	s.RoomID = roomID
	s.Role = role
	return s
}

func (s Session) gone() Session {
	s.State = StateGone
	s.RoomID = ""
	return s
}
