package signaling

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"

	"github.com/woundlink/callcore/internal/protocol"
)

// Router decodes inbound events and drives each connection's state machine:
//
//	Anonymous --join-room--> Joined(room) --join-room--> Joined(other)
//	    |                        |
//	    +------disconnect--------+----> Gone
//
// Every handler acts on the sender's recorded Session. The client-supplied
// room ID is only trusted by join-room itself.
type Router struct {
	rooms    *Registry
	out      Delivery
	validate *validator.Validate
	log      *slog.Logger
	now      func() time.Time

	// sameRoomRelay restricts offer/answer/ice-candidate to targets that
	// share the sender's room.
	sameRoomRelay bool
}

// RouterOption customizes a Router.
type RouterOption func(*Router)

// WithClock overrides the time source used for join and chat timestamps.
func WithClock(now func() time.Time) RouterOption {
	return func(r *Router) { r.now = now }
}

// WithSameRoomRelay toggles the same-room check on signaling relays.
func WithSameRoomRelay(enabled bool) RouterOption {
	return func(r *Router) { r.sameRoomRelay = enabled }
}

// NewRouter creates a Router. Same-room relay checks are on by default.
func NewRouter(rooms *Registry, out Delivery, log *slog.Logger, opts ...RouterOption) *Router {
	r := &Router{
		rooms:         rooms,
		out:           out,
		validate:      validator.New(),
		log:           log,
		now:           time.Now,
		sameRoomRelay: true,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Handle processes one inbound event and returns the sender's next Session.
// Events that cannot be processed are logged and dropped; the Session is
// returned unchanged.
func (r *Router) Handle(s Session, msg *protocol.Message) Session {
	next, err := r.dispatch(s, msg)
	if err != nil {
		r.log.Warn("Dropping event", "participant", s.ID, "event", msg.Event, "state", s.State, "err", err)
		return s
	}
	return next
}

func (r *Router) dispatch(s Session, msg *protocol.Message) (Session, error) {
	if s.State == StateGone {
		return s, ErrSessionGone
	}

	switch msg.Event {
	case protocol.EventPing:
		r.out.SendTo(s.ID, &protocol.Message{Event: protocol.EventPong})
		return s, nil
	case protocol.EventJoinRoom:
		return r.handleJoin(s, msg)
	case protocol.EventOffer, protocol.EventAnswer, protocol.EventICECandidate:
		return s, r.handleSignal(s, msg)
	case protocol.EventChatMessage:
		return s, r.handleChat(s, msg)
	case protocol.EventToggleAudio:
		return s, r.handleToggle(s, msg, protocol.EventUserAudioToggle)
	case protocol.EventToggleVideo:
		return s, r.handleToggle(s, msg, protocol.EventUserVideoToggle)
	default:
		return s, fmt.Errorf("%w: %q", ErrUnknownEvent, msg.Event)
	}
}

// Disconnect removes the participant from its room, tells the remaining
// members, and moves the Session to Gone. Calling it on a Gone session is a
// no-op.
func (r *Router) Disconnect(s Session) Session {
	if s.State == StateGone {
		return s
	}

	left, ok := r.rooms.Leave(s.ID, r.now())
	if ok {
		r.broadcastLeft(left, s.ID)
		if left.Remaining == 0 {
			r.log.Debug("Room is empty, awaiting sweep", "room", left.RoomID)
		}
	}
	r.log.Info("Participant disconnected", "participant", s.ID, "room", left.RoomID)
	return s.gone()
}

func (r *Router) handleJoin(s Session, msg *protocol.Message) (Session, error) {
	var req protocol.JoinRoom
	if err := r.decode(msg, &req); err != nil {
		return s, err
	}

	role := req.Role()
	res := r.rooms.Join(req.RoomID, s.ID, role, r.now())
	if res.Previous != nil {
		r.broadcastLeft(*res.Previous, s.ID)
	}

	r.out.BroadcastToRoomExcept(res.RoomID, s.ID, r.message(protocol.EventUserJoined, protocol.UserJoined{
		UserID:     s.ID,
		UserType:   role,
		TotalUsers: res.Total,
	}))

	users := lo.Map(res.Existing, func(p Participant, _ int) protocol.RoomUser {
		return protocol.RoomUser{ID: p.ID, Type: p.Role, JoinedAt: p.JoinedAt}
	})
	r.out.SendTo(s.ID, r.message(protocol.EventRoomUsers, users))

	r.log.Info("Participant joined", "participant", s.ID, "room", res.RoomID, "role", role, "total", res.Total)
	return s.joined(res.RoomID, role), nil
}

// handleSignal relays an opaque offer, answer or ICE candidate. All payload
// fields except target are forwarded untouched, with sender added.
func (r *Router) handleSignal(s Session, msg *protocol.Message) error {
	if s.State != StateJoined {
		return ErrNotJoined
	}

	var fields map[string]json.RawMessage
	if err := msg.Decode(&fields); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}

	var target protocol.SignalTarget
	if raw, ok := fields["target"]; ok {
		if err := json.Unmarshal(raw, &target.Target); err != nil {
			return fmt.Errorf("%w: target: %v", ErrMalformedEvent, err)
		}
	}
	if err := r.validate.Struct(target); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	field := protocol.SignalField[msg.Event]
	if _, ok := fields[field]; !ok {
		return fmt.Errorf("%w: missing %s", ErrMalformedEvent, field)
	}

	if r.sameRoomRelay {
		targetRoom, ok := r.rooms.RoomOf(target.Target)
		if !ok {
			r.log.Debug("Relay target not in any room", "participant", s.ID, "target", target.Target, "event", msg.Event)
			return nil
		}
		if targetRoom != s.RoomID {
			return fmt.Errorf("%w: target %s", ErrCrossRoom, target.Target)
		}
	}

	delete(fields, "target")
	sender, _ := json.Marshal(s.ID)
	fields["sender"] = sender

	r.out.SendTo(target.Target, r.message(msg.Event, fields))
	r.log.Debug("Relayed signal", "event", msg.Event, "participant", s.ID, "target", target.Target, "room", s.RoomID)
	return nil
}

func (r *Router) handleChat(s Session, msg *protocol.Message) error {
	if s.State != StateJoined {
		return ErrNotJoined
	}

	var req protocol.ChatMessage
	if err := r.decode(msg, &req); err != nil {
		return err
	}

	r.out.BroadcastToRoomExcept(s.RoomID, s.ID, r.message(protocol.EventChatMessage, protocol.ChatBroadcast{
		Message:    req.Message,
		Sender:     s.ID,
		SenderType: s.Role,
		Timestamp:  r.now().UTC(),
	}))
	return nil
}

func (r *Router) handleToggle(s Session, msg *protocol.Message, outEvent string) error {
	if s.State != StateJoined {
		return ErrNotJoined
	}

	var enabled *bool
	if err := msg.Decode(&enabled); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if enabled == nil {
		return fmt.Errorf("%w: enabled flag is required", ErrMalformedEvent)
	}

	r.out.BroadcastToRoomExcept(s.RoomID, s.ID, r.message(outEvent, protocol.MediaToggle{
		UserID:  s.ID,
		Enabled: *enabled,
	}))
	return nil
}

func (r *Router) broadcastLeft(left LeaveResult, participantID string) {
	r.out.BroadcastToRoomExcept(left.RoomID, participantID, r.message(protocol.EventUserLeft, protocol.UserLeft{
		UserID:     participantID,
		TotalUsers: left.Remaining,
	}))
}

// decode unmarshals and validates an inbound payload.
func (r *Router) decode(msg *protocol.Message, v any) error {
	if err := msg.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if err := r.validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	return nil
}

func (r *Router) message(event string, data any) *protocol.Message {
	msg, err := protocol.NewMessage(event, data)
	if err != nil {
		r.log.Error("Failed to encode outbound event", "event", event, "err", err)
		return &protocol.Message{Event: event}
	}
	return msg
}
