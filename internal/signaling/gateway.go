package signaling

import (
	"log/slog"
	"sync"

	"github.com/woundlink/callcore/internal/protocol"
)

// Gateway tracks live connections and delivers outbound messages to them.
type Gateway struct {
	mu      sync.RWMutex
	clients map[string]*Client
	rooms   *Registry
	log     *slog.Logger
}

// NewGateway creates a Gateway that resolves room membership through rooms.
func NewGateway(rooms *Registry, log *slog.Logger) *Gateway {
	return &Gateway{
		clients: make(map[string]*Client),
		rooms:   rooms,
		log:     log,
	}
}

func (g *Gateway) register(c *Client) {
	g.mu.Lock()
	g.clients[c.id] = c
	g.mu.Unlock()
}

// unregister forgets the client and closes its send channel, which stops
// its write pump. Safe to call more than once.
func (g *Gateway) unregister(c *Client) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if current, ok := g.clients[c.id]; ok && current == c {
		delete(g.clients, c.id)
		close(c.send)
	}
}

// SendTo queues msg for one participant. Unknown participants and full
// buffers are logged and skipped.
func (g *Gateway) SendTo(participantID string, msg *protocol.Message) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	g.deliverLocked(participantID, msg)
}

// BroadcastToRoomExcept queues msg for every member of roomID other than
// senderID, using a single membership snapshot.
func (g *Gateway) BroadcastToRoomExcept(roomID, senderID string, msg *protocol.Message) {
	members := g.rooms.Members(roomID)

	g.mu.RLock()
	defer g.mu.RUnlock()
	for _, p := range members {
		if p.ID == senderID {
			continue
		}
		g.deliverLocked(p.ID, msg)
	}
}

// ConnectionCount returns the number of live connections.
func (g *Gateway) ConnectionCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.clients)
}

// deliverLocked never blocks: a client that cannot keep up loses the message.
// Caller holds mu for reading, which keeps unregister from closing the
// channel underneath the send.
func (g *Gateway) deliverLocked(participantID string, msg *protocol.Message) {
	c, ok := g.clients[participantID]
	if !ok {
		g.log.Debug("Delivery skipped, participant not connected", "participant", participantID, "event", msg.Event)
		return
	}
	select {
	case c.send <- msg:
	default:
		g.log.Warn("Delivery dropped, send buffer full", "participant", participantID, "event", msg.Event)
	}
}
