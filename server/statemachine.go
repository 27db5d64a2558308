// File: server/statemachine.go
package server

import (
	"github.com/lguibr/gridwar/protocol"
	"github.com/lguibr/gridwar/session"
)

// action is the routing decision for one (state, message type) pair,
// the pure core of the table in §4.7. DISCONNECT and PING are handled
// identically in every state, so they're classified before the
// per-state switch rather than repeated in it.
type action int

const (
	actionProcess action = iota
	actionIgnoreDuplicate
	actionErrorNotJoined
	actionErrorAlreadyJoined
	actionClose
	actionPong
	actionErrorUnexpected
)

// classify is the state-machine table as a pure function. SET_PLAYER_NAME
// is treated like MOVE/RESTART: rejected with NOT_JOINED before join,
// processed once joined. Any type not named in the table's explicit
// columns — including a client sending a server-to-client-only type
// like STATE_UPDATE — falls through to the "other" column.
func classify(state session.ConnState, t protocol.Type) action {
	switch t {
	case protocol.TypeDisconnect:
		return actionClose
	case protocol.TypePing:
		return actionPong
	}

	switch state {
	case session.StateAwaitingJoin:
		switch t {
		case protocol.TypeConnect:
			return actionProcess
		case protocol.TypeMove, protocol.TypeRestart, protocol.TypeSetPlayerName:
			return actionErrorNotJoined
		default:
			return actionErrorUnexpected
		}
	case session.StateWaiting:
		switch t {
		case protocol.TypeConnect:
			return actionIgnoreDuplicate
		case protocol.TypeMove, protocol.TypeRestart, protocol.TypeSetPlayerName:
			return actionErrorNotJoined
		default:
			return actionErrorUnexpected
		}
	case session.StateJoined:
		switch t {
		case protocol.TypeConnect:
			return actionErrorAlreadyJoined
		case protocol.TypeMove, protocol.TypeRestart, protocol.TypeSetPlayerName:
			return actionProcess
		default:
			return actionErrorUnexpected
		}
	default:
		return actionErrorUnexpected
	}
}
