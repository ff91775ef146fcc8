// Package probe runs an end-to-end check of the signaling server: two
// in-process WebRTC peers join a fresh room, negotiate a data channel through
// the server and exchange timed pings over it.
package probe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	pion "github.com/pion/webrtc/v4"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/woundlink/callcore/internal/protocol"
)

const (
	DefaultPings   = 5
	DefaultTimeout = 30 * time.Second

	channelLabel = "probe"
)

// Options configures a probe run.
type Options struct {
	WebSocketURL string
	Origin       string
	ICEServers   []string

	// RoomID defaults to a fresh "probe-<uuid>" room.
	RoomID string

	Pings   int
	Timeout time.Duration
}

func (o Options) withDefaults() Options {
	if o.RoomID == "" {
		o.RoomID = "probe-" + uuid.NewString()
	}
	if o.Pings <= 0 {
		o.Pings = DefaultPings
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	return o
}

// Result is the outcome of a successful probe.
type Result struct {
	RoomID   string
	CallerID string
	CalleeID string

	// Join is the time until both peers were in the room.
	Join time.Duration
	// Connect is the time from sending the offer to the data channel opening.
	Connect time.Duration
	// RTTs holds one round trip per ping, in send order.
	RTTs []time.Duration

	CandidatesSent int
}

// MinRTT returns the fastest round trip.
func (r *Result) MinRTT() time.Duration { return lo.Min(r.RTTs) }

// MaxRTT returns the slowest round trip.
func (r *Result) MaxRTT() time.Duration { return lo.Max(r.RTTs) }

// MeanRTT returns the average round trip.
func (r *Result) MeanRTT() time.Duration { return lo.Mean(r.RTTs) }

// Run executes one probe against the server at opts.WebSocketURL.
func Run(ctx context.Context, opts Options, log *slog.Logger) (*Result, error) {
	opts = opts.withDefaults()
	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	start := time.Now()
	res := &Result{RoomID: opts.RoomID}

	callee, err := newPeer(ctx, roleCallee, opts, log)
	if err != nil {
		return nil, err
	}
	defer callee.close()
	if err := callee.client.Join(opts.RoomID, roleCallee); err != nil {
		return nil, NewPeerError(roleCallee, "join", err)
	}
	if _, err := await(ctx, callee.events.RoomUsers, roleCallee, "join"); err != nil {
		return nil, err
	}

	caller, err := newPeer(ctx, roleCaller, opts, log)
	if err != nil {
		return nil, err
	}
	defer caller.close()
	if err := caller.client.Join(opts.RoomID, roleCaller); err != nil {
		return nil, NewPeerError(roleCaller, "join", err)
	}
	present, err := await(ctx, caller.events.RoomUsers, roleCaller, "join")
	if err != nil {
		return nil, err
	}
	calleeUser, ok := lo.Find(present, func(u protocol.RoomUser) bool { return u.Type == roleCallee })
	if !ok {
		return nil, &ProbeError{Op: "join", Peer: roleCaller, Err: ErrUnexpectedSignal, Details: fmt.Sprintf("room %s has no callee", opts.RoomID)}
	}
	joined, err := await(ctx, callee.events.UserJoined, roleCallee, "await caller")
	if err != nil {
		return nil, err
	}
	res.CalleeID = calleeUser.ID
	res.CallerID = joined.UserID
	caller.setRemoteID(calleeUser.ID)
	callee.setRemoteID(joined.UserID)
	res.Join = time.Since(start)
	log.Debug("Probe peers joined", "room", opts.RoomID, "caller", res.CallerID, "callee", res.CalleeID)

	callee.pc.OnDataChannel(func(dc *pion.DataChannel) {
		dc.OnMessage(func(m pion.DataChannelMessage) {
			reply, err := echo(m.Data, time.Now())
			if err != nil {
				log.Warn("Callee dropped probe message", "error", err)
				return
			}
			if err := dc.Send(reply); err != nil {
				log.Debug("Callee failed to reply", "error", err)
			}
		})
	})

	ordered := true
	dc, err := caller.pc.CreateDataChannel(channelLabel, &pion.DataChannelInit{Ordered: &ordered})
	if err != nil {
		return nil, NewPeerError(roleCaller, "create data channel", err)
	}
	opened := make(chan struct{})
	var openOnce sync.Once
	dc.OnOpen(func() { openOnce.Do(func() { close(opened) }) })
	pongs := make(chan PongPayload, opts.Pings)
	dc.OnMessage(func(m pion.DataChannelMessage) {
		pong, err := decodePong(m.Data)
		if err != nil {
			log.Warn("Caller dropped probe message", "error", err)
			return
		}
		select {
		case pongs <- pong:
		default:
		}
	})

	failed := make(chan pion.ICEConnectionState, 1)
	caller.pc.OnICEConnectionStateChange(func(state pion.ICEConnectionState) {
		log.Debug("Caller ICE state", "state", state.String())
		if state == pion.ICEConnectionStateFailed || state == pion.ICEConnectionStateClosed {
			select {
			case failed <- state:
			default:
			}
		}
	})

	g, gctx := errgroup.WithContext(ctx)
	loops, stopLoops := context.WithCancel(gctx)
	g.Go(func() error { return callee.serveSignals(loops) })
	g.Go(func() error { return caller.serveSignals(loops) })
	g.Go(func() error {
		defer stopLoops()

		offer, err := caller.createOffer()
		if err != nil {
			return err
		}
		offeredAt := time.Now()
		if err := caller.sendSignal(protocol.EventOffer, offer); err != nil {
			return err
		}

		select {
		case <-opened:
			res.Connect = time.Since(offeredAt)
		case state := <-failed:
			return WrapError("connect", ErrConnectionFailed, "ICE "+state.String())
		case <-gctx.Done():
			return contextError(ctx, "connect")
		}

		for seq := uint32(1); seq <= uint32(opts.Pings); seq++ {
			rtt, err := ping(gctx, dc, pongs, seq)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return contextError(ctx, "ping")
				}
				return err
			}
			res.RTTs = append(res.RTTs, rtt)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	res.CandidatesSent = caller.candidatesSent() + callee.candidatesSent()
	return res, nil
}

func ping(ctx context.Context, dc *pion.DataChannel, pongs <-chan PongPayload, seq uint32) (time.Duration, error) {
	sent := time.Now()
	data, err := Encode(MessageTypePing, PingPayload{Seq: seq, SentAt: sent.UnixNano()})
	if err != nil {
		return 0, NewError("encode ping", err)
	}
	if err := dc.Send(data); err != nil {
		return 0, WrapError("ping", ErrChannelClosed, err.Error())
	}
	for {
		select {
		case pong := <-pongs:
			if pong.Seq == seq {
				return time.Since(sent), nil
			}
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
}

// echo answers a ping frame with the matching pong.
func echo(data []byte, now time.Time) ([]byte, error) {
	msg, err := Decode(data)
	if err != nil {
		return nil, err
	}
	if msg.Type != MessageTypePing {
		return nil, fmt.Errorf("%w: %s", ErrUnexpectedSignal, msg.Type)
	}
	var p PingPayload
	if err := msg.DecodePayload(&p); err != nil {
		return nil, err
	}
	return Encode(MessageTypePong, PongPayload{Seq: p.Seq, SentAt: p.SentAt, ReceivedAt: now.UnixNano()})
}

func decodePong(data []byte) (PongPayload, error) {
	msg, err := Decode(data)
	if err != nil {
		return PongPayload{}, err
	}
	if msg.Type != MessageTypePong {
		return PongPayload{}, fmt.Errorf("%w: %s", ErrUnexpectedSignal, msg.Type)
	}
	var p PongPayload
	err = msg.DecodePayload(&p)
	return p, err
}

func await[T any](ctx context.Context, ch <-chan T, peer, op string) (T, error) {
	var zero T
	select {
	case v, ok := <-ch:
		if !ok {
			return zero, NewPeerError(peer, op, ErrSignalingClosed)
		}
		return v, nil
	case <-ctx.Done():
		return zero, &ProbeError{Op: op, Peer: peer, Err: ErrTimeout, Details: ctx.Err().Error()}
	}
}

// contextError reports why the probe context ended: ErrTimeout for the
// deadline, the cancellation otherwise.
func contextError(ctx context.Context, op string) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return WrapError(op, ErrTimeout, "no progress before deadline")
	}
	if ctx.Err() != nil {
		return NewError(op, ctx.Err())
	}
	return NewError(op, context.Canceled)
}
