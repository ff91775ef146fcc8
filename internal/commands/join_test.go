package commands

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/woundlink/callcore/internal/protocol"
)

func TestParseInput(t *testing.T) {
	tests := []struct {
		line  string
		event string
		data  any
	}{
		{"hello doctor", protocol.EventChatMessage, protocol.ChatMessage{Message: "hello doctor"}},
		{"  spaced  ", protocol.EventChatMessage, protocol.ChatMessage{Message: "spaced"}},
		{"/ping", protocol.EventPing, nil},
		{"/audio on", protocol.EventToggleAudio, true},
		{"/video off", protocol.EventToggleVideo, false},
		{"", "", nil},
	}
	for _, tt := range tests {
		event, data, err := parseInput(tt.line)
		require.NoError(t, err, tt.line)
		assert.Equal(t, tt.event, event, tt.line)
		assert.Equal(t, tt.data, data, tt.line)
	}
}

func TestParseInput_Errors(t *testing.T) {
	_, _, err := parseInput("/quit")
	assert.ErrorIs(t, err, errQuit)

	for _, line := range []string{"/audio", "/video maybe", "/dance"} {
		_, _, err := parseInput(line)
		assert.Error(t, err, line)
		assert.NotErrorIs(t, err, errQuit, line)
	}
}

func TestReadLines(t *testing.T) {
	out := make(chan string, 4)
	readLines(strings.NewReader("one\ntwo\n"), out)

	var got []string
	for l := range out {
		got = append(got, l)
	}
	assert.Equal(t, []string{"one", "two"}, got)
}

func TestRootHasCommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"stats", "watch", "join", "probe"} {
		assert.True(t, names[want], want)
	}
}
