package sigclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/woundlink/callcore/internal/server"
	"github.com/woundlink/callcore/internal/signaling"
)

func newSignalingServer(t *testing.T) *httptest.Server {
	t.Helper()
	hub := signaling.NewHub(signaling.DefaultOptions(), discardLogger())
	srv := httptest.NewServer(server.NewHandler(hub, []string{"https://app.example"}, discardLogger()))
	t.Cleanup(srv.Close)
	return srv
}

func connect(t *testing.T, srv *httptest.Server) (*Client, *Handler) {
	t.Helper()
	c := New("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", "https://app.example", discardLogger())
	require.NoError(t, c.Connect(context.Background()))
	t.Cleanup(c.Close)
	h := NewHandler(discardLogger())
	go h.Run(c.Incoming())
	return c, h
}

func recv[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v, ok := <-ch:
		require.True(t, ok, "channel closed")
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
	var zero T
	return zero
}

func TestClient_CallFlow(t *testing.T) {
	srv := newSignalingServer(t)

	doctor, doctorEvents := connect(t, srv)
	require.NoError(t, doctor.Join("wound-7", "doctor"))
	assert.Empty(t, recv(t, doctorEvents.RoomUsers))

	patient, patientEvents := connect(t, srv)
	require.NoError(t, patient.Join("wound-7", ""))
	present := recv(t, patientEvents.RoomUsers)
	require.Len(t, present, 1)

	joined := recv(t, doctorEvents.UserJoined)
	assert.Equal(t, "patient", joined.UserType)

	require.NoError(t, doctor.Send("offer", map[string]any{"target": joined.UserID, "offer": map[string]string{"sdp": "v=0"}}))
	offer := recv(t, patientEvents.Signals)
	assert.Equal(t, present[0].ID, offer.Sender)
	assert.JSONEq(t, `{"sdp":"v=0"}`, string(offer.Payload))

	require.NoError(t, patient.Send("ping", nil))
	recv(t, patientEvents.Pong)

	patient.Close()
	left := recv(t, doctorEvents.UserLeft)
	assert.Equal(t, joined.UserID, left.UserID)
	assert.ErrorIs(t, patient.Send("ping", nil), ErrClosed)
}

func TestClient_ForeignOriginRejected(t *testing.T) {
	srv := newSignalingServer(t)

	c := New("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", "https://evil.example", discardLogger())
	err := c.Connect(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 403")
}

func TestFetchStats(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/stats" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"totalRooms":1,"totalConnections":2,"rooms":[{"id":"r1","userCount":2,"createdAt":"2026-03-01T09:00:00Z"}]}`))
	}))
	defer srv.Close()

	stats, err := FetchStats(context.Background(), srv.URL+"/stats")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalRooms)
	assert.Equal(t, 2, stats.TotalConnections)
	require.Len(t, stats.Rooms, 1)
	assert.Equal(t, "r1", stats.Rooms[0].ID)

	_, err = FetchStats(context.Background(), srv.URL+"/missing")
	assert.ErrorContains(t, err, "unexpected status")
}

func TestLookup_IPLiteral(t *testing.T) {
	ip, err := Lookup(context.Background(), "127.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", ip)
}
