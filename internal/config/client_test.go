package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadClient_Precedence(t *testing.T) {
	t.Setenv("CALLCTL_SERVER", "https://env.example")
	t.Setenv("CALLCTL_ORIGIN", "https://app.example")
	t.Setenv("STUN_SERVER", "")

	cfg, err := LoadClient(ClientOptions{})
	require.NoError(t, err)
	assert.Equal(t, "https://env.example", cfg.ServerURL)
	assert.Equal(t, "https://app.example", cfg.Origin)
	assert.Equal(t, DefaultSTUN, cfg.STUNServer)

	cfg, err = LoadClient(ClientOptions{ServerURL: "http://flag.example:9000/", STUNServer: "stun:custom:3478"})
	require.NoError(t, err)
	assert.Equal(t, "http://flag.example:9000", cfg.ServerURL)
	assert.Equal(t, []string{"stun:custom:3478"}, cfg.ICEServers())
}

func TestLoadClient_Defaults(t *testing.T) {
	t.Setenv("CALLCTL_SERVER", "")
	t.Setenv("CALLCTL_ORIGIN", "")

	cfg, err := LoadClient(ClientOptions{})
	require.NoError(t, err)
	assert.Equal(t, DefaultServerURL, cfg.ServerURL)
	assert.Empty(t, cfg.Origin)
}

func TestLoadClient_InvalidServer(t *testing.T) {
	for _, server := range []string{"ftp://host", "http://", "://bad"} {
		_, err := LoadClient(ClientOptions{ServerURL: server})
		assert.Error(t, err, server)
	}
}

func TestClient_URLs(t *testing.T) {
	cases := []struct {
		server string
		ws     string
		stats  string
	}{
		{"http://localhost:8080", "ws://localhost:8080/ws", "http://localhost:8080/stats"},
		{"https://calls.example", "wss://calls.example/ws", "https://calls.example/stats"},
		{"https://calls.example/signal", "wss://calls.example/signal/ws", "https://calls.example/signal/stats"},
	}
	for _, tc := range cases {
		cfg, err := LoadClient(ClientOptions{ServerURL: tc.server})
		require.NoError(t, err)
		assert.Equal(t, tc.ws, cfg.WebSocketURL())
		assert.Equal(t, tc.stats, cfg.StatsURL())
	}
}

func TestClient_ICEServersDisabled(t *testing.T) {
	cfg, err := LoadClient(ClientOptions{STUNServer: "none"})
	require.NoError(t, err)
	assert.Nil(t, cfg.ICEServers())
}
