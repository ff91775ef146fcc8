package signaling

import "errors"

// Reasons an inbound event is dropped. None of them close the connection.
var (
	ErrMalformedEvent = errors.New("malformed event")
	ErrUnknownEvent   = errors.New("unknown event")
	ErrNotJoined      = errors.New("participant has not joined a room")
	ErrSessionGone    = errors.New("session is gone")
	ErrCrossRoom      = errors.New("target is not in the sender's room")
)
