// File: server/handler.go
package server

import (
	"github.com/lguibr/gridwar/board"
	"github.com/lguibr/gridwar/broadcast"
	"github.com/lguibr/gridwar/config"
	"github.com/lguibr/gridwar/game"
	"github.com/lguibr/gridwar/protocol"
	"github.com/lguibr/gridwar/session"
)

// Handler drives one connection's protocol state machine. It holds no
// socket itself — HandleFrame is a pure function of (state, bytes) to
// (outbound frames, close?) plus side effects on the shared Core,
// Registry and Scheduler, all of which the caller must serialize with
// the single exclusive Game-instance lock (Listener takes that lock
// around every Hub call, and Hub is what calls into Handler).
type Handler struct {
	conn      *session.Connection
	core      *game.Core
	registry  *session.Registry
	scheduler *broadcast.Scheduler
	board     *board.Board
	cfg       config.Config
}

// NewHandler starts a fresh connection in StateAccepted.
func NewHandler(clientId string, core *game.Core, registry *session.Registry, scheduler *broadcast.Scheduler, b *board.Board, cfg config.Config) *Handler {
	return &Handler{
		conn:      session.NewConnection(clientId),
		core:      core,
		registry:  registry,
		scheduler: scheduler,
		board:     b,
		cfg:       cfg,
	}
}

// State exposes the connection's current lifecycle state.
func (h *Handler) State() session.ConnState { return h.conn.State }

// Greet transitions accepted -> awaitingJoin and returns the initial
// CONNECT{clientId} frame a freshly opened socket always gets.
func (h *Handler) Greet() []byte {
	h.conn.State = session.StateAwaitingJoin
	return encodeGreeting(h.conn.ClientID)
}

// HandleFrame parses and routes one inbound frame. Malformed frames
// never transition state: they log nothing here (the caller's I/O
// layer does that) and produce a single ERROR reply with the
// connection left open.
func (h *Handler) HandleFrame(raw []byte) (responses [][]byte, closeConn bool) {
	msg, perr := protocol.Parse(raw)
	if perr != nil {
		return [][]byte{encodeError(protocol.CodeUnexpected, perr.Error())}, false
	}

	switch classify(h.conn.State, msg.Type) {
	case actionClose:
		h.conn.State = session.StateClosed
		return nil, true
	case actionPong:
		return [][]byte{encodePong()}, false
	case actionIgnoreDuplicate:
		return nil, false
	case actionErrorNotJoined:
		return [][]byte{encodeError(protocol.CodeNotJoined, "not joined")}, false
	case actionErrorAlreadyJoined:
		return [][]byte{encodeError(protocol.CodeAlreadyJoined, "already joined")}, false
	case actionErrorUnexpected:
		return [][]byte{encodeError(protocol.CodeUnexpected, "unexpected message type "+string(msg.Type))}, false
	case actionProcess:
		return h.process(*msg)
	default:
		return [][]byte{encodeError(protocol.CodeUnexpected, "unrouted")}, false
	}
}

func (h *Handler) process(msg protocol.Message) ([][]byte, bool) {
	switch msg.Type {
	case protocol.TypeConnect:
		return h.processJoin(msg), false
	case protocol.TypeMove:
		return h.processMove(msg), false
	case protocol.TypeRestart:
		return h.processRestart(), false
	case protocol.TypeSetPlayerName:
		return h.processRename(msg), false
	default:
		return [][]byte{encodeError(protocol.CodeUnexpected, "unroutable processed type")}, false
	}
}

func (h *Handler) processJoin(msg protocol.Message) [][]byte {
	name, _ := msg.Payload["playerName"].(string)
	requestedId, _ := msg.Payload["playerId"].(string)

	if requestedId != "" {
		if rec, ok := h.registry.Reconnect(h.conn.ClientID, requestedId, h.core.Tick()); ok {
			playerName := rec.PlayerName
			if name != "" {
				playerName = name
			}
			player, placed := h.core.Reconnect(rec.PlayerID, playerName, rec.X, rec.Y)
			if placed {
				h.registry.UpdatePosition(player.PlayerID, player.X, player.Y)
				h.conn.State = session.StateJoined
				h.conn.PlayerID = player.PlayerID
				return [][]byte{encodeJoinResponse(h.conn.ClientID, player.PlayerID, h.board, h.core.Snapshot(), true)}
			}
			h.conn.State = session.StateWaiting
			h.scheduler.Enqueue(broadcast.PendingJoin{ClientID: h.conn.ClientID, PlayerID: rec.PlayerID, PlayerName: playerName})
			return [][]byte{encodeWaitingResponse(h.conn.ClientID, h.cfg.SpawnWaitMessage)}
		}
	}

	newId := h.registry.NewPlayerID()
	if name == "" {
		name = h.registry.DefaultName()
	}
	player, placed := h.core.Join(newId, name)
	if placed {
		h.registry.Register(h.conn.ClientID, newId, player.X, player.Y, name)
		h.conn.State = session.StateJoined
		h.conn.PlayerID = newId
		return [][]byte{encodeJoinResponse(h.conn.ClientID, newId, h.board, h.core.Snapshot(), false)}
	}

	h.conn.State = session.StateWaiting
	h.scheduler.Enqueue(broadcast.PendingJoin{ClientID: h.conn.ClientID, PlayerID: newId, PlayerName: name})
	return [][]byte{encodeWaitingResponse(h.conn.ClientID, h.cfg.SpawnWaitMessage)}
}

func (h *Handler) processMove(msg protocol.Message) [][]byte {
	dx, _ := msg.Payload["dx"].(float64)
	dy, _ := msg.Payload["dy"].(float64)

	x, y, ok, reason := h.core.ApplyMove(h.conn.PlayerID, int(dx), int(dy))
	if !ok {
		return [][]byte{encodeMoveFailed(reason)}
	}
	h.registry.UpdatePosition(h.conn.PlayerID, x, y)
	return nil
}

func (h *Handler) processRestart() [][]byte {
	if !h.core.CanRestart(h.conn.PlayerID) {
		return [][]byte{encodeError(protocol.CodeUnexpected, "restart not permitted")}
	}
	h.core.Restart()
	return nil
}

func (h *Handler) processRename(msg protocol.Message) [][]byte {
	name, _ := msg.Payload["playerName"].(string)
	if name == "" {
		return [][]byte{encodeError(protocol.CodeUnexpected, "playerName required")}
	}
	h.core.Rename(h.conn.PlayerID, name)
	h.registry.Rename(h.conn.PlayerID, name)
	return nil
}

// Disconnect marks the connection closed and starts disconnect grace
// for its bound player, if it ever joined. Called on unexpected socket
// close as well as a graceful DISCONNECT.
func (h *Handler) Disconnect() {
	h.conn.State = session.StateClosed
	if h.conn.PlayerID != "" {
		h.core.SetConnected(h.conn.PlayerID, false)
	}
	h.registry.Disconnect(h.conn.ClientID, h.core.Tick(), h.cfg.DisconnectGraceTicks)
	h.scheduler.Dequeue(h.conn.ClientID)
}
