package signaling

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/samber/lo"

	"github.com/woundlink/callcore/internal/protocol"
)

// Options configures a Hub.
type Options struct {
	// RoomGrace is how long an empty room survives before the janitor
	// deletes it.
	RoomGrace time.Duration

	// SweepInterval is the janitor period.
	SweepInterval time.Duration

	// SameRoomRelay restricts signaling relays to members of the same room.
	SameRoomRelay bool

	// SendBuffer is the per-connection outbound queue length.
	SendBuffer int
}

// DefaultOptions returns the production defaults.
func DefaultOptions() Options {
	return Options{
		RoomGrace:     30 * time.Minute,
		SweepInterval: 5 * time.Minute,
		SameRoomRelay: true,
		SendBuffer:    256,
	}
}

// Hub is the central brain of the signaling server. It owns the room
// registry and wires connections to the router.
type Hub struct {
	rooms   *Registry
	gateway *Gateway
	router  *Router
	janitor *Janitor
	opts    Options
	log     *slog.Logger
}

// NewHub creates a Hub instance.
func NewHub(opts Options, log *slog.Logger) *Hub {
	rooms := NewRegistry()
	gateway := NewGateway(rooms, log)
	return &Hub{
		rooms:   rooms,
		gateway: gateway,
		router:  NewRouter(rooms, gateway, log, WithSameRoomRelay(opts.SameRoomRelay)),
		janitor: NewJanitor(rooms, opts.RoomGrace, opts.SweepInterval, log),
		opts:    opts,
		log:     log,
	}
}

// Run runs the janitor until ctx is canceled.
func (h *Hub) Run(ctx context.Context) error {
	return h.janitor.Run(ctx)
}

// Attach assigns a participant ID to an upgraded connection, registers it
// and starts its read and write pumps.
func (h *Hub) Attach(conn *websocket.Conn) *Client {
	client := &Client{
		hub:  h,
		conn: conn,
		id:   uuid.NewString(),
		send: make(chan *protocol.Message, h.opts.SendBuffer),
	}
	h.gateway.register(client)
	h.log.Info("Client registered", "participant", client.id, "remote", conn.RemoteAddr().String())

	go client.writePump()
	go client.readPump()
	return client
}

// Stats returns the operational snapshot of rooms and connections.
func (h *Hub) Stats() protocol.Stats {
	rooms := h.rooms.RoomStats()
	return protocol.Stats{
		TotalRooms:       len(rooms),
		TotalConnections: h.gateway.ConnectionCount(),
		Rooms: lo.Map(rooms, func(r RoomStat, _ int) protocol.RoomSummary {
			return protocol.RoomSummary{ID: r.RoomID, UserCount: r.MemberCount, CreatedAt: r.CreatedAt}
		}),
	}
}

// Sweep runs one janitor sweep immediately.
func (h *Hub) Sweep() []string {
	return h.janitor.Sweep()
}
