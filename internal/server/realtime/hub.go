// Package realtime relays playback-position events between connected
// clients. The hub never inspects the payload: whatever arrives in a
// sync_playback event is rebroadcast opaquely to every other client.
package realtime

import (
	"context"
	"encoding/json"

	"github.com/avolkovs/tabshare/internal/logging"
)

// Message is the wire envelope for hub traffic.
type Message struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Inbound event name and its outbound counterpart.
const (
	EventSyncPlayback     = "sync_playback"
	EventPlaybackPosition = "playback_position"
)

type broadcast struct {
	sender  *Client
	payload []byte
}

// Hub tracks connected clients and fans broadcasts out to them. All state is
// owned by the Run goroutine; registration and broadcasting go through
// channels.
type Hub struct {
	logger     logging.Logger
	register   chan *Client
	unregister chan *Client
	broadcasts chan broadcast
	// closed when Run returns; senders select on it so nothing blocks on a
	// hub that has stopped draining its channels
	done chan struct{}
}

func NewHub(logger logging.Logger) *Hub {
	return &Hub{
		logger:     logger.With("module", "realtime_hub"),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcasts: make(chan broadcast),
		done:       make(chan struct{}),
	}
}

// Run owns the client set until ctx is cancelled. A broadcast goes to every
// client except its sender; a client whose send queue is full is dropped
// rather than allowed to stall the hub.
func (h *Hub) Run(ctx context.Context) {
	clients := make(map[*Client]struct{})

	closeClient := func(c *Client) {
		if _, ok := clients[c]; ok {
			delete(clients, c)
			close(c.send)
		}
	}

	for {
		select {
		case <-ctx.Done():
			for c := range clients {
				closeClient(c)
			}
			close(h.done)
			return

		case c := <-h.register:
			clients[c] = struct{}{}
			h.logger.Info(ctx, "client connected", "clients", len(clients))

		case c := <-h.unregister:
			closeClient(c)
			h.logger.Info(ctx, "client disconnected", "clients", len(clients))

		case b := <-h.broadcasts:
			for c := range clients {
				if c == b.sender {
					continue
				}
				select {
				case c.send <- b.payload:
				default:
					h.logger.Warn(ctx, "dropping slow client")
					closeClient(c)
				}
			}
		}
	}
}
