package signaling

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRegistry_JoinReportsTotalsAndExisting(t *testing.T) {
	r := NewRegistry()

	res := r.Join("r1", "a", "doctor", t0)
	require.Equal(t, 1, res.Total)
	require.Empty(t, res.Existing)
	require.Nil(t, res.Previous)

	res = r.Join("r1", "b", "patient", t0.Add(time.Second))
	require.Equal(t, 2, res.Total)
	require.Equal(t, []Participant{{ID: "a", RoomID: "r1", Role: "doctor", JoinedAt: t0}}, res.Existing)

	res = r.Join("r1", "c", "patient", t0.Add(2*time.Second))
	require.Equal(t, 3, res.Total)
	require.Len(t, res.Existing, 2)
	require.Equal(t, "a", res.Existing[0].ID)
	require.Equal(t, "b", res.Existing[1].ID)
}

func TestRegistry_JoinIsIdempotentPerParticipant(t *testing.T) {
	r := NewRegistry()
	r.Join("r1", "a", "patient", t0)
	r.Join("r1", "b", "patient", t0)

	res := r.Join("r1", "a", "doctor", t0.Add(time.Minute))
	require.Equal(t, 2, res.Total)
	require.Len(t, res.Existing, 1)
	require.Equal(t, "b", res.Existing[0].ID)

	members := r.Members("r1")
	require.Len(t, members, 2)
	for _, m := range members {
		if m.ID == "a" {
			require.Equal(t, "doctor", m.Role)
			require.Equal(t, t0, m.JoinedAt)
		}
	}
}

func TestRegistry_JoinAnotherRoomMoves(t *testing.T) {
	r := NewRegistry()
	r.Join("r1", "a", "patient", t0)
	r.Join("r1", "b", "patient", t0)

	res := r.Join("r2", "a", "patient", t0)
	require.Equal(t, &LeaveResult{RoomID: "r1", Remaining: 1}, res.Previous)
	require.Equal(t, 1, res.Total)

	require.Len(t, r.Members("r1"), 1)
	require.Len(t, r.Members("r2"), 1)
	room, ok := r.RoomOf("a")
	require.True(t, ok)
	require.Equal(t, "r2", room)
}

func TestRegistry_LeaveTwiceIsNoop(t *testing.T) {
	r := NewRegistry()
	r.Join("r1", "a", "patient", t0)
	r.Join("r1", "b", "patient", t0)
	r.Join("r2", "c", "patient", t0)

	left, ok := r.Leave("a", t0)
	require.True(t, ok)
	require.Equal(t, LeaveResult{RoomID: "r1", Remaining: 1}, left)

	_, ok = r.Leave("a", t0)
	require.False(t, ok)
	_, ok = r.Leave("never-joined", t0)
	require.False(t, ok)

	require.Len(t, r.Members("r1"), 1)
	require.Len(t, r.Members("r2"), 1)
}

func TestRegistry_LastLeaveKeepsRoomUntilSweep(t *testing.T) {
	r := NewRegistry()
	grace := 30 * time.Minute
	r.Join("r1", "a", "patient", t0)

	left, ok := r.Leave("a", t0.Add(time.Minute))
	require.True(t, ok)
	require.Equal(t, 0, left.Remaining)
	require.Equal(t, []RoomStat{{RoomID: "r1", MemberCount: 0, CreatedAt: t0}}, r.RoomStats())

	// Within the grace period nothing is removed.
	require.Empty(t, r.SweepStale(grace, t0.Add(20*time.Minute)))
	require.Len(t, r.RoomStats(), 1)

	require.Equal(t, []string{"r1"}, r.SweepStale(grace, t0.Add(time.Minute+grace+time.Second)))
	require.Empty(t, r.RoomStats())
}

func TestRegistry_SweepSparesOccupiedAndRecentlyEmptied(t *testing.T) {
	r := NewRegistry()
	grace := 30 * time.Minute

	// Old room, still occupied.
	r.Join("busy", "a", "patient", t0)
	// Old room that emptied a moment ago.
	r.Join("recent", "b", "patient", t0)
	r.Leave("b", t0.Add(2*time.Hour))
	// Old room that emptied long ago.
	r.Join("old", "c", "patient", t0)
	r.Leave("c", t0.Add(time.Minute))

	removed := r.SweepStale(grace, t0.Add(2*time.Hour+time.Minute))
	require.Equal(t, []string{"old"}, removed)

	ids := make([]string, 0)
	for _, s := range r.RoomStats() {
		ids = append(ids, s.RoomID)
	}
	require.ElementsMatch(t, []string{"busy", "recent"}, ids)
}

func TestRegistry_RejoinClearsEmptyMark(t *testing.T) {
	r := NewRegistry()
	grace := 30 * time.Minute
	r.Join("r1", "a", "patient", t0)
	r.Leave("a", t0.Add(time.Minute))
	r.Join("r1", "b", "doctor", t0.Add(10*time.Minute))

	require.Empty(t, r.SweepStale(grace, t0.Add(5*time.Hour)))
	require.Len(t, r.Members("r1"), 1)
}

func TestRegistry_RoomStatsOrderedByCreation(t *testing.T) {
	r := NewRegistry()
	r.Join("second", "b", "patient", t0.Add(time.Second))
	r.Join("first", "a", "patient", t0)
	r.Join("second", "c", "patient", t0.Add(2*time.Second))

	require.Equal(t, []RoomStat{
		{RoomID: "first", MemberCount: 1, CreatedAt: t0},
		{RoomID: "second", MemberCount: 2, CreatedAt: t0.Add(time.Second)},
	}, r.RoomStats())
}

func TestRegistry_ConcurrentJoinLeave(t *testing.T) {
	r := NewRegistry()
	const rooms = 4
	const perRoom = 50

	var wg sync.WaitGroup
	for i := 0; i < rooms*perRoom; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			roomID := fmt.Sprintf("room-%d", i%rooms)
			id := fmt.Sprintf("p-%d", i)
			r.Join(roomID, id, "patient", t0)
			_ = r.Members(roomID)
			_ = r.RoomStats()
			if (i/rooms)%2 == 0 {
				r.Leave(id, t0)
				r.Leave(id, t0)
			}
		}(i)
	}
	wg.Wait()

	total := 0
	for _, s := range r.RoomStats() {
		require.Equal(t, perRoom/2, s.MemberCount, s.RoomID)
		total += s.MemberCount
	}
	require.Equal(t, rooms*perRoom/2, total)
}
