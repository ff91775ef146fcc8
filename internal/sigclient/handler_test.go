package sigclient

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/woundlink/callcore/internal/protocol"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func frame(t *testing.T, event string, data any) *protocol.Message {
	t.Helper()
	msg, err := protocol.NewMessage(event, data)
	require.NoError(t, err)
	return msg
}

func TestHandler_RoutesEvents(t *testing.T) {
	h := NewHandler(discardLogger())
	in := make(chan *protocol.Message, 16)

	in <- frame(t, protocol.EventRoomUsers, []protocol.RoomUser{{ID: "d1", Type: "doctor"}})
	in <- frame(t, protocol.EventUserJoined, protocol.UserJoined{UserID: "p1", UserType: "patient", TotalUsers: 2})
	in <- frame(t, protocol.EventOffer, map[string]any{"offer": map[string]string{"sdp": "v=0"}, "sender": "p1"})
	in <- frame(t, protocol.EventICECandidate, map[string]any{"candidate": "c1", "sender": "p1"})
	in <- frame(t, protocol.EventChatMessage, protocol.ChatBroadcast{Message: "hi", Sender: "p1"})
	in <- frame(t, protocol.EventUserVideoToggle, protocol.MediaToggle{UserID: "p1", Enabled: false})
	in <- frame(t, protocol.EventPong, nil)
	in <- frame(t, protocol.EventUserLeft, protocol.UserLeft{UserID: "p1", TotalUsers: 1})
	in <- frame(t, "something-new", nil)
	in <- &protocol.Message{Event: protocol.EventUserJoined, Data: []byte(`"oops"`)}
	close(in)

	h.Run(in)

	users := <-h.RoomUsers
	require.Len(t, users, 1)
	assert.Equal(t, "doctor", users[0].Type)

	joined := <-h.UserJoined
	assert.Equal(t, "p1", joined.UserID)
	assert.Equal(t, 2, joined.TotalUsers)

	offer := <-h.Signals
	assert.Equal(t, protocol.EventOffer, offer.Event)
	assert.Equal(t, "p1", offer.Sender)
	assert.JSONEq(t, `{"sdp":"v=0"}`, string(offer.Payload))

	cand := <-h.Signals
	assert.Equal(t, protocol.EventICECandidate, cand.Event)
	assert.JSONEq(t, `"c1"`, string(cand.Payload))

	chat := <-h.Chat
	assert.Equal(t, "hi", chat.Message)

	media := <-h.Media
	assert.Equal(t, "video", media.Kind)
	assert.False(t, media.Enabled)

	_, ok := <-h.Pong
	assert.True(t, ok)

	left := <-h.UserLeft
	assert.Equal(t, 1, left.TotalUsers)

	// The malformed user-joined was dropped and every channel is closed.
	_, ok = <-h.UserJoined
	assert.False(t, ok)
	_, ok = <-h.Signals
	assert.False(t, ok)
}

func TestHandler_DropsWhenChannelFull(t *testing.T) {
	h := NewHandler(discardLogger())
	in := make(chan *protocol.Message, handlerBuffer+5)
	for range handlerBuffer + 5 {
		in <- frame(t, protocol.EventPong, nil)
	}
	close(in)

	h.Run(in)

	count := 0
	for range h.Pong {
		count++
	}
	assert.Equal(t, handlerBuffer, count)
}
