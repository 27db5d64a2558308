// File: server/hub.go
package server

import (
	"github.com/lguibr/gridwar/actorkit"
	"github.com/lguibr/gridwar/board"
	"github.com/lguibr/gridwar/broadcast"
	"github.com/lguibr/gridwar/config"
	"github.com/lguibr/gridwar/game"
	"github.com/lguibr/gridwar/protocol"
	"github.com/lguibr/gridwar/session"
	"github.com/lguibr/gridwar/spawn"
)

// Hub is the single running game this server instance serves: one
// Core, one Registry, one Scheduler, and every connection's Handler
// and outbound Address keyed by clientId. It plays the role the
// teacher's room manager plays across many concurrent rooms, simplified
// down to the one shared world this platform's wire spec describes —
// there is no matchmaking here, every connection joins the same game.
//
// Hub is not internally synchronized; the caller (Listener) takes one
// exclusive lock around every Accept/Inbound/Close/Tick call, matching
// the coarse-locking model.
type Hub struct {
	core      *game.Core
	registry  *session.Registry
	scheduler *broadcast.Scheduler
	board     *board.Board
	cfg       config.Config

	handlers  map[string]*Handler
	addresses map[string]*actorkit.Address
}

// NewHub builds the one game this server instance runs, over board b.
func NewHub(b *board.Board, cfg config.Config, entities []game.Entity) *Hub {
	clearRadius := cfg.BoardSpawnClearRadius
	if clearRadius <= 0 {
		clearRadius = cfg.SpawnClearRadius
	}
	alloc := spawn.New(b, clearRadius)
	core := game.NewCore(b, alloc, entities)
	registry := session.NewRegistry()
	scheduler := broadcast.NewScheduler(core, registry, cfg.SlowConsumerDropLimit)

	return &Hub{
		core:      core,
		registry:  registry,
		scheduler: scheduler,
		board:     b,
		cfg:       cfg,
		handlers:  make(map[string]*Handler),
		addresses: make(map[string]*actorkit.Address),
	}
}

// Accept registers a new connection's outbound address and sends its
// initial greeting.
func (h *Hub) Accept(clientId string) *actorkit.Address {
	addr := actorkit.NewAddress(clientId, h.sendBufferSize())
	addr.Open()
	h.addresses[clientId] = addr

	handler := NewHandler(clientId, h.core, h.registry, h.scheduler, h.board, h.cfg)
	h.handlers[clientId] = handler

	addr.TrySend(handler.Greet())
	return addr
}

func (h *Hub) sendBufferSize() int {
	if h.cfg.SendBufferSize <= 0 {
		return 8
	}
	return h.cfg.SendBufferSize
}

// Inbound routes one frame from clientId through its Handler, writes
// any responses to its address, and — on a join that completes
// immediately — subscribes it to the broadcast scheduler and notifies
// every other joined connection with PLAYER_JOINED. Returns true if
// the connection should now be closed.
func (h *Hub) Inbound(clientId string, raw []byte) bool {
	handler, ok := h.handlers[clientId]
	if !ok {
		return true
	}
	wasJoined := handler.State() == session.StateJoined

	responses, closeConn := handler.HandleFrame(raw)
	addr := h.addresses[clientId]
	for _, r := range responses {
		if addr != nil {
			addr.TrySend(r)
		}
	}

	if !wasJoined && handler.State() == session.StateJoined {
		h.scheduler.Subscribe(clientId, addr)
		h.broadcastPlayerJoined(clientId, handler)
	}

	if closeConn {
		h.Close(clientId)
	}
	return closeConn
}

func (h *Hub) broadcastPlayerJoined(originClientId string, handler *Handler) {
	player, ok := h.core.Player(handler.conn.PlayerID)
	if !ok {
		return
	}
	frame := encodePlayerJoined(originClientId, player.PlayerID, player.PlayerName, player.X, player.Y)
	for clientId, addr := range h.addresses {
		if clientId == originClientId {
			continue
		}
		addr.TrySend(frame)
	}
}

// Close tears down a connection: starts its disconnect grace and
// removes it from the address/handler tables and the scheduler.
func (h *Hub) Close(clientId string) {
	if handler, ok := h.handlers[clientId]; ok {
		handler.Disconnect()
	}
	if addr, ok := h.addresses[clientId]; ok {
		addr.Close()
	}
	h.scheduler.Unsubscribe(clientId)
	delete(h.handlers, clientId)
	delete(h.addresses, clientId)
}

// Tick runs one broadcast cycle and turns its result into outbound
// PLAYER_JOINED (for queued joins that just got placed) and
// PLAYER_LEFT (for grace-expired evictions) frames, plus SLOW_CONSUMER
// closes. STATE_UPDATE itself is already delivered by Scheduler.RunTick
// via each subscriber's address.
func (h *Hub) Tick() {
	result := h.scheduler.RunTick()

	for _, placement := range result.Placed {
		handler, ok := h.handlers[placement.ClientID]
		if !ok {
			continue
		}
		handler.conn.State = session.StateJoined
		handler.conn.PlayerID = placement.Player.PlayerID
		h.registry.UpdatePosition(placement.Player.PlayerID, placement.Player.X, placement.Player.Y)

		if addr, ok := h.addresses[placement.ClientID]; ok {
			addr.TrySend(encodeJoinResponse(placement.ClientID, placement.Player.PlayerID, h.board, h.core.Snapshot(), false))
			h.scheduler.Subscribe(placement.ClientID, addr)
		}
		h.broadcastPlayerJoined(placement.ClientID, handler)
	}

	if len(result.Evicted) > 0 {
		for _, playerId := range result.Evicted {
			frame := encodePlayerLeft(playerId)
			for _, addr := range h.addresses {
				addr.TrySend(frame)
			}
		}
	}

	for _, clientId := range result.SlowConsumers {
		if addr, ok := h.addresses[clientId]; ok {
			addr.TrySend(encodeError(protocol.CodeSlowConsumer, "send buffer exceeded high-water mark"))
		}
		h.Close(clientId)
	}
}
