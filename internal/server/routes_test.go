package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/woundlink/callcore/internal/protocol"
	"github.com/woundlink/callcore/internal/signaling"
)

func newTestServer(t *testing.T, origins ...string) (*signaling.Hub, *httptest.Server) {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	hub := signaling.NewHub(signaling.DefaultOptions(), log)
	srv := httptest.NewServer(NewHandler(hub, origins, log))
	t.Cleanup(srv.Close)
	return hub, srv
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func dialWithOrigin(srv *httptest.Server, origin string) (*websocket.Conn, *http.Response, error) {
	header := http.Header{}
	if origin != "" {
		header.Set("Origin", origin)
	}
	return websocket.DefaultDialer.Dial(wsURL(srv), header)
}

func TestUpgrader_CheckOrigin(t *testing.T) {
	up := NewUpgrader([]string{"https://app.example"})
	req := httptest.NewRequest(http.MethodGet, "/ws", nil)

	assert.True(t, up.CheckOrigin(req), "missing origin")

	req.Header.Set("Origin", "https://app.example")
	assert.True(t, up.CheckOrigin(req))

	req.Header.Set("Origin", "https://evil.example")
	assert.False(t, up.CheckOrigin(req))

	wildcard := NewUpgrader([]string{"*"})
	assert.True(t, wildcard.CheckOrigin(req))
}

func TestServeWs_RejectsForeignOrigin(t *testing.T) {
	_, srv := newTestServer(t, "https://app.example")

	_, resp, err := dialWithOrigin(srv, "https://evil.example")
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestServeWs_AcceptsAllowedOrigin(t *testing.T) {
	hub, srv := newTestServer(t, "https://app.example")

	conn, _, err := dialWithOrigin(srv, "https://app.example")
	require.NoError(t, err)
	defer conn.Close()

	msg, err := protocol.NewMessage(protocol.EventPing, nil)
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(msg))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var reply protocol.Message
	require.NoError(t, conn.ReadJSON(&reply))
	assert.Equal(t, protocol.EventPong, reply.Event)
	assert.Equal(t, 1, hub.Stats().TotalConnections)
}

func TestHealth(t *testing.T) {
	_, srv := newTestServer(t, "*")

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "healthy")
}

func TestStats(t *testing.T) {
	_, srv := newTestServer(t, "*")

	conn, _, err := dialWithOrigin(srv, "")
	require.NoError(t, err)
	defer conn.Close()

	join, err := protocol.NewMessage(protocol.EventJoinRoom, protocol.JoinRoom{RoomID: "wound-42", UserType: "doctor"})
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(join))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var users protocol.Message
	require.NoError(t, conn.ReadJSON(&users))
	require.Equal(t, protocol.EventRoomUsers, users.Event)

	resp, err := http.Get(srv.URL + "/stats")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var stats protocol.Stats
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stats))
	assert.Equal(t, 1, stats.TotalRooms)
	assert.Equal(t, 1, stats.TotalConnections)
	require.Len(t, stats.Rooms, 1)
	assert.Equal(t, "wound-42", stats.Rooms[0].ID)
	assert.Equal(t, 1, stats.Rooms[0].UserCount)
}
