package probe

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	pion "github.com/pion/webrtc/v4"

	"github.com/woundlink/callcore/internal/protocol"
	"github.com/woundlink/callcore/internal/sigclient"
)

const (
	roleCaller = "probe-caller"
	roleCallee = "probe-callee"
)

// peer is one side of the probe call: a pion peer connection signaled
// through its own websocket session.
type peer struct {
	role   string
	client *sigclient.Client
	events *sigclient.Handler
	pc     *pion.PeerConnection
	log    *slog.Logger

	mu        sync.Mutex
	remoteID  string
	remoteSet bool
	pending   []pion.ICECandidateInit
	sent      int
}

func newPeerConnection(iceServers []string) (*pion.PeerConnection, error) {
	var cfg pion.Configuration
	if len(iceServers) > 0 {
		cfg.ICEServers = []pion.ICEServer{{URLs: iceServers}}
	}
	return pion.NewPeerConnection(cfg)
}

func newPeer(ctx context.Context, role string, opts Options, log *slog.Logger) (*peer, error) {
	log = log.With("peer", role)

	pc, err := newPeerConnection(opts.ICEServers)
	if err != nil {
		return nil, NewPeerError(role, "create peer connection", err)
	}

	client := sigclient.New(opts.WebSocketURL, opts.Origin, log)
	if err := client.Connect(ctx); err != nil {
		pc.Close()
		return nil, NewPeerError(role, "connect signaling", err)
	}

	p := &peer{
		role:   role,
		client: client,
		events: sigclient.NewHandler(log),
		pc:     pc,
		log:    log,
	}
	go p.events.Run(client.Incoming())

	pc.OnICECandidate(func(c *pion.ICECandidate) {
		if c == nil {
			return
		}
		if err := p.sendSignal(protocol.EventICECandidate, c.ToJSON()); err != nil {
			p.log.Debug("Failed to send ICE candidate", "error", err)
		}
	})
	return p, nil
}

func (p *peer) setRemoteID(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.remoteID = id
}

func (p *peer) target() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.remoteID
}

func (p *peer) candidatesSent() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sent
}

// sendSignal relays value to the remote peer under the event's carrier
// field.
func (p *peer) sendSignal(event string, value any) error {
	target := p.target()
	if target == "" {
		return NewPeerError(p.role, "send "+event, ErrUnexpectedSignal)
	}
	payload := map[string]any{"target": target}
	payload[protocol.SignalField[event]] = value
	if err := p.client.Send(event, payload); err != nil {
		return NewPeerError(p.role, "send "+event, err)
	}
	if event == protocol.EventICECandidate {
		p.mu.Lock()
		p.sent++
		p.mu.Unlock()
	}
	return nil
}

// setRemoteDescription applies desc and then flushes candidates that
// arrived before it.
func (p *peer) setRemoteDescription(desc pion.SessionDescription) error {
	if err := p.pc.SetRemoteDescription(desc); err != nil {
		return NewPeerError(p.role, "set remote description", err)
	}

	p.mu.Lock()
	p.remoteSet = true
	pending := p.pending
	p.pending = nil
	p.mu.Unlock()

	for _, c := range pending {
		if err := p.pc.AddICECandidate(c); err != nil {
			return NewPeerError(p.role, "add ICE candidate", err)
		}
	}
	return nil
}

func (p *peer) addCandidate(raw json.RawMessage) error {
	var ice pion.ICECandidateInit
	if err := json.Unmarshal(raw, &ice); err != nil {
		return NewPeerError(p.role, "parse ICE candidate", err)
	}

	p.mu.Lock()
	if !p.remoteSet {
		p.pending = append(p.pending, ice)
		p.mu.Unlock()
		return nil
	}
	p.mu.Unlock()

	if err := p.pc.AddICECandidate(ice); err != nil {
		return NewPeerError(p.role, "add ICE candidate", err)
	}
	return nil
}

func (p *peer) createOffer() (*pion.SessionDescription, error) {
	offer, err := p.pc.CreateOffer(nil)
	if err != nil {
		return nil, NewPeerError(p.role, "create offer", err)
	}
	if err := p.pc.SetLocalDescription(offer); err != nil {
		return nil, NewPeerError(p.role, "set local description", err)
	}
	return p.pc.LocalDescription(), nil
}

func (p *peer) createAnswer() (*pion.SessionDescription, error) {
	answer, err := p.pc.CreateAnswer(nil)
	if err != nil {
		return nil, NewPeerError(p.role, "create answer", err)
	}
	if err := p.pc.SetLocalDescription(answer); err != nil {
		return nil, NewPeerError(p.role, "set local description", err)
	}
	return p.pc.LocalDescription(), nil
}

func (p *peer) handleSignal(sig sigclient.Signal) error {
	switch {
	case sig.Event == protocol.EventOffer && p.role == roleCallee:
		var desc pion.SessionDescription
		if err := json.Unmarshal(sig.Payload, &desc); err != nil {
			return NewPeerError(p.role, "parse offer", err)
		}
		p.setRemoteID(sig.Sender)
		if err := p.setRemoteDescription(desc); err != nil {
			return err
		}
		answer, err := p.createAnswer()
		if err != nil {
			return err
		}
		return p.sendSignal(protocol.EventAnswer, answer)

	case sig.Event == protocol.EventAnswer && p.role == roleCaller:
		var desc pion.SessionDescription
		if err := json.Unmarshal(sig.Payload, &desc); err != nil {
			return NewPeerError(p.role, "parse answer", err)
		}
		return p.setRemoteDescription(desc)

	case sig.Event == protocol.EventICECandidate:
		return p.addCandidate(sig.Payload)
	}
	return &ProbeError{Op: "handle signal", Peer: p.role, Err: ErrUnexpectedSignal, Details: sig.Event}
}

// serveSignals applies relayed signals until ctx is done. It fails when the
// remote peer leaves or the signaling connection drops.
func (p *peer) serveSignals(ctx context.Context) error {
	leaves := p.events.UserLeft
	for {
		select {
		case <-ctx.Done():
			return nil
		case sig, ok := <-p.events.Signals:
			if !ok {
				return NewPeerError(p.role, "receive signal", ErrSignalingClosed)
			}
			if err := p.handleSignal(sig); err != nil {
				return err
			}
		case left, ok := <-leaves:
			if !ok {
				leaves = nil
				continue
			}
			if left.UserID == p.target() {
				return NewPeerError(p.role, "receive signal", ErrPeerLeft)
			}
		}
	}
}

func (p *peer) close() {
	p.client.Close()
	if err := p.pc.Close(); err != nil {
		p.log.Debug("Failed to close peer connection", "error", err)
	}
}
