package signaling

import (
	"sort"
	"sync"
	"time"

	"github.com/samber/lo"
)

// JoinResult describes the outcome of Registry.Join.
type JoinResult struct {
	RoomID string

	// Total is the member count after the join.
	Total int

	// Existing lists the members present before this join, excluding the joiner.
	Existing []Participant

	// Previous is set when the join moved the participant out of another room.
	Previous *LeaveResult
}

// LeaveResult describes the room a participant was removed from.
type LeaveResult struct {
	RoomID    string
	Remaining int
}

// RoomStat is a read-only view of one room.
type RoomStat struct {
	RoomID      string
	MemberCount int
	CreatedAt   time.Time
}

// Registry is the single source of truth for room membership.
// All mutations are serialized by mu; readers get point-in-time copies.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*Room

	// memberOf indexes each joined participant to its room.
	memberOf map[string]string
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		rooms:    make(map[string]*Room),
		memberOf: make(map[string]string),
	}
}

// Join adds participantID to roomID, creating the room if needed. Joining the
// room the participant is already in only updates its role.
func (r *Registry) Join(roomID, participantID, role string, now time.Time) JoinResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	var previous *LeaveResult
	if current, ok := r.memberOf[participantID]; ok && current != roomID {
		left := r.removeLocked(participantID, now)
		previous = &left
	}

	room, ok := r.rooms[roomID]
	if !ok {
		room = newRoom(roomID, now)
		r.rooms[roomID] = room
	}

	existing := make([]Participant, 0, len(room.Participants))
	for id, p := range room.Participants {
		if id != participantID {
			existing = append(existing, *p)
		}
	}
	sortByJoinTime(existing)

	if p, ok := room.Participants[participantID]; ok {
		p.Role = role
	} else {
		room.Participants[participantID] = &Participant{
			ID:       participantID,
			RoomID:   roomID,
			Role:     role,
			JoinedAt: now,
		}
		room.EmptySince = time.Time{}
	}
	r.memberOf[participantID] = roomID

	return JoinResult{
		RoomID:   roomID,
		Total:    len(room.Participants),
		Existing: existing,
		Previous: previous,
	}
}

// Leave removes participantID from whatever room it is in. It reports false
// when the participant was not recorded in any room.
func (r *Registry) Leave(participantID string, now time.Time) (LeaveResult, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.memberOf[participantID]; !ok {
		return LeaveResult{}, false
	}
	return r.removeLocked(participantID, now), true
}

// removeLocked drops the participant from its room. Empty rooms are kept
// until SweepStale removes them. Caller holds mu.
func (r *Registry) removeLocked(participantID string, now time.Time) LeaveResult {
	roomID := r.memberOf[participantID]
	delete(r.memberOf, participantID)

	room, ok := r.rooms[roomID]
	if !ok {
		return LeaveResult{RoomID: roomID}
	}
	delete(room.Participants, participantID)
	if len(room.Participants) == 0 {
		room.EmptySince = now
	}
	return LeaveResult{RoomID: roomID, Remaining: len(room.Participants)}
}

// RoomOf returns the room the participant is recorded in.
func (r *Registry) RoomOf(participantID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	roomID, ok := r.memberOf[participantID]
	return roomID, ok
}

// Members returns a snapshot of the room's membership.
func (r *Registry) Members(roomID string) []Participant {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room, ok := r.rooms[roomID]
	if !ok {
		return nil
	}
	members := make([]Participant, 0, len(room.Participants))
	for _, p := range room.Participants {
		members = append(members, *p)
	}
	sortByJoinTime(members)
	return members
}

// RoomStats returns a snapshot of every room, oldest first.
func (r *Registry) RoomStats() []RoomStat {
	r.mu.RLock()
	rooms := lo.Values(r.rooms)
	stats := lo.Map(rooms, func(room *Room, _ int) RoomStat {
		return RoomStat{
			RoomID:      room.ID,
			MemberCount: len(room.Participants),
			CreatedAt:   room.CreatedAt,
		}
	})
	r.mu.RUnlock()

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].CreatedAt.Equal(stats[j].CreatedAt) {
			return stats[i].RoomID < stats[j].RoomID
		}
		return stats[i].CreatedAt.Before(stats[j].CreatedAt)
	})
	return stats
}

// SweepStale deletes rooms that are empty and have been idle longer than
// maxAge. It returns the IDs of the deleted rooms.
func (r *Registry) SweepStale(maxAge time.Duration, now time.Time) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var removed []string
	for id, room := range r.rooms {
		if room.stale(maxAge, now) {
			delete(r.rooms, id)
			removed = append(removed, id)
		}
	}
	sort.Strings(removed)
	return removed
}

func sortByJoinTime(ps []Participant) {
	sort.Slice(ps, func(i, j int) bool {
		if ps[i].JoinedAt.Equal(ps[j].JoinedAt) {
			return ps[i].ID < ps[j].ID
		}
		return ps[i].JoinedAt.Before(ps[j].JoinedAt)
	})
}
