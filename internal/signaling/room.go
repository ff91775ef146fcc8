package signaling

import "time"

// Participant is one connected endpoint recorded in a room.
type Participant struct {
	ID       string
	RoomID   string
	Role     string
	JoinedAt time.Time
}

// Room represents a named group of participants in one call.
type Room struct {
	// ID is the caller-supplied room identifier.
	ID string

	// Participants maps participant IDs to their membership record.
	Participants map[string]*Participant

	// CreatedAt is when the first participant joined.
	CreatedAt time.Time

	// EmptySince is when membership last dropped to zero. Zero while occupied.
	EmptySince time.Time
}

func newRoom(id string, now time.Time) *Room {
	return &Room{
		ID:           id,
		Participants: make(map[string]*Participant),
		CreatedAt:    now,
	}
}

// stale reports whether the room has been empty for longer than maxAge.
func (r *Room) stale(maxAge time.Duration, now time.Time) bool {
	if len(r.Participants) > 0 {
		return false
	}
	cutoff := now.Add(-maxAge)
	return r.CreatedAt.Before(cutoff) && r.EmptySince.Before(cutoff)
}
