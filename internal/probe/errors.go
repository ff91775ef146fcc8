package probe

import (
	"errors"
	"fmt"
)

var (
	ErrTimeout          = errors.New("timeout")
	ErrPeerLeft         = errors.New("peer left the room")
	ErrSignalingClosed  = errors.New("signaling connection closed")
	ErrUnexpectedSignal = errors.New("unexpected signal")
	ErrConnectionFailed = errors.New("connection failed")
	ErrChannelClosed    = errors.New("data channel closed")
)

// ProbeError records which probe step failed and on which peer.
type ProbeError struct {
	Op      string
	Peer    string
	Err     error
	Details string
}

func (e *ProbeError) Error() string {
	op := e.Op
	if e.Peer != "" {
		op = e.Peer + ": " + op
	}
	if e.Details != "" {
		return fmt.Sprintf("%s: %v (%s)", op, e.Err, e.Details)
	}
	return fmt.Sprintf("%s: %v", op, e.Err)
}

func (e *ProbeError) Unwrap() error {
	return e.Err
}

func NewError(op string, err error) *ProbeError {
	return &ProbeError{Op: op, Err: err}
}

func NewPeerError(peer, op string, err error) *ProbeError {
	return &ProbeError{Op: op, Peer: peer, Err: err}
}

func WrapError(op string, err error, details string) *ProbeError {
	return &ProbeError{Op: op, Err: err, Details: details}
}
