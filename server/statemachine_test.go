// File: server/statemachine_test.go
package server

import (
	"testing"

	"github.com/lguibr/gridwar/protocol"
	"github.com/lguibr/gridwar/session"
	"github.com/stretchr/testify/assert"
)

func TestClassifyAwaitingJoin(t *testing.T) {
	assert.Equal(t, actionProcess, classify(session.StateAwaitingJoin, protocol.TypeConnect))
	assert.Equal(t, actionErrorNotJoined, classify(session.StateAwaitingJoin, protocol.TypeMove))
	assert.Equal(t, actionErrorNotJoined, classify(session.StateAwaitingJoin, protocol.TypeRestart))
	assert.Equal(t, actionClose, classify(session.StateAwaitingJoin, protocol.TypeDisconnect))
	assert.Equal(t, actionPong, classify(session.StateAwaitingJoin, protocol.TypePing))
	assert.Equal(t, actionErrorUnexpected, classify(session.StateAwaitingJoin, protocol.TypeStateUpdate))
}

func TestClassifyWaiting(t *testing.T) {
	assert.Equal(t, actionIgnoreDuplicate, classify(session.StateWaiting, protocol.TypeConnect))
	assert.Equal(t, actionErrorNotJoined, classify(session.StateWaiting, protocol.TypeMove))
	assert.Equal(t, actionClose, classify(session.StateWaiting, protocol.TypeDisconnect))
	assert.Equal(t, actionPong, classify(session.StateWaiting, protocol.TypePing))
}

func TestClassifyJoined(t *testing.T) {
	assert.Equal(t, actionErrorAlreadyJoined, classify(session.StateJoined, protocol.TypeConnect))
	assert.Equal(t, actionProcess, classify(session.StateJoined, protocol.TypeMove))
	assert.Equal(t, actionProcess, classify(session.StateJoined, protocol.TypeRestart))
	assert.Equal(t, actionProcess, classify(session.StateJoined, protocol.TypeSetPlayerName))
	assert.Equal(t, actionClose, classify(session.StateJoined, protocol.TypeDisconnect))
	assert.Equal(t, actionPong, classify(session.StateJoined, protocol.TypePing))
	assert.Equal(t, actionErrorUnexpected, classify(session.StateJoined, protocol.TypePlayerJoined))
}
