package probe

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/woundlink/callcore/internal/server"
	"github.com/woundlink/callcore/internal/signaling"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestEcho_AnswersPing(t *testing.T) {
	sent := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	ping, err := Encode(MessageTypePing, PingPayload{Seq: 7, SentAt: sent.UnixNano()})
	require.NoError(t, err)

	received := sent.Add(15 * time.Millisecond)
	reply, err := echo(ping, received)
	require.NoError(t, err)

	pong, err := decodePong(reply)
	require.NoError(t, err)
	assert.Equal(t, uint32(7), pong.Seq)
	assert.Equal(t, sent.UnixNano(), pong.SentAt)
	assert.Equal(t, received.UnixNano(), pong.ReceivedAt)
}

func TestEcho_RejectsOtherFrames(t *testing.T) {
	pong, err := Encode(MessageTypePong, PongPayload{Seq: 1})
	require.NoError(t, err)

	_, err = echo(pong, time.Now())
	require.ErrorIs(t, err, ErrUnexpectedSignal)

	_, err = echo([]byte{0xc1}, time.Now())
	require.Error(t, err)

	_, err = decodePong(mustEncode(t, MessageTypePing, PingPayload{Seq: 1}))
	require.ErrorIs(t, err, ErrUnexpectedSignal)
}

func mustEncode(t *testing.T, typ string, payload any) []byte {
	t.Helper()
	b, err := Encode(typ, payload)
	require.NoError(t, err)
	return b
}

func TestProbeError(t *testing.T) {
	err := NewPeerError(roleCaller, "join", ErrSignalingClosed)
	assert.Equal(t, "probe-caller: join: signaling connection closed", err.Error())
	assert.True(t, errors.Is(err, ErrSignalingClosed))

	wrapped := WrapError("connect", ErrConnectionFailed, "ICE failed")
	assert.Equal(t, "connect: connection failed (ICE failed)", wrapped.Error())

	var pe *ProbeError
	require.ErrorAs(t, error(wrapped), &pe)
	assert.Equal(t, "connect", pe.Op)
}

func TestOptionsDefaults(t *testing.T) {
	o := Options{}.withDefaults()
	assert.True(t, strings.HasPrefix(o.RoomID, "probe-"))
	assert.Equal(t, DefaultPings, o.Pings)
	assert.Equal(t, DefaultTimeout, o.Timeout)

	o = Options{RoomID: "fixed", Pings: 2, Timeout: time.Second}.withDefaults()
	assert.Equal(t, "fixed", o.RoomID)
	assert.Equal(t, 2, o.Pings)
}

func TestResultRTTStats(t *testing.T) {
	r := &Result{RTTs: []time.Duration{3 * time.Millisecond, time.Millisecond, 5 * time.Millisecond}}
	assert.Equal(t, time.Millisecond, r.MinRTT())
	assert.Equal(t, 5*time.Millisecond, r.MaxRTT())
	assert.Equal(t, 3*time.Millisecond, r.MeanRTT())

	empty := &Result{}
	assert.Zero(t, empty.MeanRTT())
}

func TestRun_SignalingRejected(t *testing.T) {
	hub := signaling.NewHub(signaling.DefaultOptions(), discardLogger())
	srv := httptest.NewServer(server.NewHandler(hub, []string{"https://app.example"}, discardLogger()))
	defer srv.Close()

	_, err := Run(context.Background(), Options{
		WebSocketURL: "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws",
		Origin:       "https://evil.example",
		Timeout:      5 * time.Second,
	}, discardLogger())

	var pe *ProbeError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, roleCallee, pe.Peer)
	assert.Equal(t, "connect signaling", pe.Op)
}
