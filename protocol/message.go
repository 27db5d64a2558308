// File: protocol/message.go
package protocol

import "time"

// Type is the closed set of recognized wire message types.
type Type string

const (
	TypeConnect       Type = "CONNECT"
	TypeDisconnect    Type = "DISCONNECT"
	TypeMove          Type = "MOVE"
	TypeMoveFailed    Type = "MOVE_FAILED"
	TypeRestart       Type = "RESTART"
	TypeStateUpdate   Type = "STATE_UPDATE"
	TypePlayerJoined  Type = "PLAYER_JOINED"
	TypePlayerLeft    Type = "PLAYER_LEFT"
	TypeSetPlayerName Type = "SET_PLAYER_NAME"
	TypeError         Type = "ERROR"
	TypePing          Type = "PING"
	TypePong          Type = "PONG"
)

var knownTypes = map[Type]bool{
	TypeConnect: true, TypeDisconnect: true, TypeMove: true, TypeMoveFailed: true,
	TypeRestart: true, TypeStateUpdate: true, TypePlayerJoined: true, TypePlayerLeft: true,
	TypeSetPlayerName: true, TypeError: true, TypePing: true, TypePong: true,
}

// Message is the one shape every wire frame takes: a tagged type, a
// freeform payload whose shape depends on Type, a sender timestamp,
// and an optional client id.
type Message struct {
	Type      Type                   `json:"type"`
	Payload   map[string]interface{} `json:"payload"`
	Timestamp int64                  `json:"timestamp"`
	ClientID  string                 `json:"clientId,omitempty"`
}

// NowMillis is overridable in tests; production callers use the real
// wall clock.
var NowMillis = func() int64 { return time.Now().UnixMilli() }
