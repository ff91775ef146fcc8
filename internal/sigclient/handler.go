package sigclient

import (
	"encoding/json"
	"log/slog"

	"github.com/woundlink/callcore/internal/protocol"
)

// Signal is a relayed offer, answer or ice-candidate.
type Signal struct {
	Event  string
	Sender string
	// Payload is the value of the event's carrier field ("offer",
	// "answer" or "candidate"), untouched.
	Payload json.RawMessage
}

// MediaEvent is a peer's audio or video toggle.
type MediaEvent struct {
	Kind string // "audio" or "video"
	protocol.MediaToggle
}

const handlerBuffer = 32

// Handler routes incoming server frames to typed channels.
//
// Channels are buffered. A frame arriving while its channel is full is
// dropped and logged, so a consumer that ignores, say, Chat never stalls
// signal delivery.
type Handler struct {
	RoomUsers  chan []protocol.RoomUser
	UserJoined chan protocol.UserJoined
	UserLeft   chan protocol.UserLeft
	Signals    chan Signal
	Chat       chan protocol.ChatBroadcast
	Media      chan MediaEvent
	Pong       chan struct{}

	log *slog.Logger
}

// NewHandler creates a handler with empty channels.
func NewHandler(log *slog.Logger) *Handler {
	return &Handler{
		RoomUsers:  make(chan []protocol.RoomUser, handlerBuffer),
		UserJoined: make(chan protocol.UserJoined, handlerBuffer),
		UserLeft:   make(chan protocol.UserLeft, handlerBuffer),
		Signals:    make(chan Signal, handlerBuffer),
		Chat:       make(chan protocol.ChatBroadcast, handlerBuffer),
		Media:      make(chan MediaEvent, handlerBuffer),
		Pong:       make(chan struct{}, handlerBuffer),
		log:        log,
	}
}

// Run dispatches frames from in until it is closed, then closes every
// handler channel.
func (h *Handler) Run(in <-chan *protocol.Message) {
	defer h.close()
	for msg := range in {
		h.route(msg)
	}
}

func (h *Handler) route(msg *protocol.Message) {
	switch msg.Event {
	case protocol.EventRoomUsers:
		var users []protocol.RoomUser
		if h.decode(msg, &users) {
			deliver(h, h.RoomUsers, users, msg.Event)
		}

	case protocol.EventUserJoined:
		var v protocol.UserJoined
		if h.decode(msg, &v) {
			deliver(h, h.UserJoined, v, msg.Event)
		}

	case protocol.EventUserLeft:
		var v protocol.UserLeft
		if h.decode(msg, &v) {
			deliver(h, h.UserLeft, v, msg.Event)
		}

	case protocol.EventOffer, protocol.EventAnswer, protocol.EventICECandidate:
		h.handleSignal(msg)

	case protocol.EventChatMessage:
		var v protocol.ChatBroadcast
		if h.decode(msg, &v) {
			deliver(h, h.Chat, v, msg.Event)
		}

	case protocol.EventUserAudioToggle, protocol.EventUserVideoToggle:
		kind := "audio"
		if msg.Event == protocol.EventUserVideoToggle {
			kind = "video"
		}
		var v protocol.MediaToggle
		if h.decode(msg, &v) {
			deliver(h, h.Media, MediaEvent{Kind: kind, MediaToggle: v}, msg.Event)
		}

	case protocol.EventPong:
		deliver(h, h.Pong, struct{}{}, msg.Event)

	default:
		h.log.Debug("Ignoring server event", "event", msg.Event)
	}
}

func (h *Handler) handleSignal(msg *protocol.Message) {
	var fields map[string]json.RawMessage
	if !h.decode(msg, &fields) {
		return
	}
	sig := Signal{Event: msg.Event, Payload: fields[protocol.SignalField[msg.Event]]}
	if raw, ok := fields["sender"]; ok {
		json.Unmarshal(raw, &sig.Sender)
	}
	deliver(h, h.Signals, sig, msg.Event)
}

func (h *Handler) decode(msg *protocol.Message, v any) bool {
	if err := msg.Decode(v); err != nil {
		h.log.Warn("Malformed server event", "event", msg.Event, "error", err)
		return false
	}
	return true
}

func deliver[T any](h *Handler, ch chan T, v T, event string) {
	select {
	case ch <- v:
	default:
		h.log.Warn("Handler channel full, dropping event", "event", event)
	}
}

func (h *Handler) close() {
	close(h.RoomUsers)
	close(h.UserJoined)
	close(h.UserLeft)
	close(h.Signals)
	close(h.Chat)
	close(h.Media)
	close(h.Pong)
}
