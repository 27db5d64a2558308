// File: server/hub_test.go
package server_test

import (
	"encoding/json"
	"testing"

	"github.com/lguibr/gridwar/board"
	"github.com/lguibr/gridwar/config"
	"github.com/lguibr/gridwar/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBoard(spawns []board.Point) *board.Board {
	grid := make([]board.Kind, 10*10)
	return board.New(10, 10, grid, spawns, 0)
}

func recvFrame(t *testing.T, ch <-chan interface{}) map[string]interface{} {
	t.Helper()
	select {
	case raw := <-ch:
		var out map[string]interface{}
		require.NoError(t, json.Unmarshal(raw.([]byte), &out))
		return out
	default:
		t.Fatal("expected a buffered frame, found none")
		return nil
	}
}

func connectFrame(playerName string) []byte {
	b, _ := json.Marshal(map[string]interface{}{
		"type":    "CONNECT",
		"payload": map[string]interface{}{"playerName": playerName},
	})
	return b
}

func TestAcceptSendsGreeting(t *testing.T) {
	h := server.NewHub(newTestBoard([]board.Point{{1, 1}}), config.Fast(), nil)
	addr := h.Accept("c1")

	frame := recvFrame(t, addr.Channel)
	assert.Equal(t, "CONNECT", frame["type"])
	assert.Equal(t, "c1", frame["clientId"])
}

func TestJoinFlowPlacesPlayerAndNotifiesOthers(t *testing.T) {
	h := server.NewHub(newTestBoard([]board.Point{{1, 1}, {8, 8}}), config.Fast(), nil)
	addr1 := h.Accept("c1")
	recvFrame(t, addr1.Channel) // greeting

	addr2 := h.Accept("c2")
	recvFrame(t, addr2.Channel) // greeting

	closed := h.Inbound("c1", connectFrame("Alice"))
	assert.False(t, closed)

	joinResp := recvFrame(t, addr1.Channel)
	assert.Equal(t, "CONNECT", joinResp["type"])
	assert.Equal(t, false, joinResp["payload"].(map[string]interface{})["isReconnection"])

	closed = h.Inbound("c2", connectFrame("Bob"))
	assert.False(t, closed)
	recvFrame(t, addr2.Channel) // PLAYER_JOINED about c1, queued before c2 joined

	// c1 should have received a PLAYER_JOINED about c2.
	playerJoined := recvFrame(t, addr1.Channel)
	assert.Equal(t, "PLAYER_JOINED", playerJoined["type"])
	assert.Equal(t, "c2", playerJoined["payload"].(map[string]interface{})["clientId"])
}

func TestMoveBeforeJoinReturnsNotJoinedError(t *testing.T) {
	h := server.NewHub(newTestBoard([]board.Point{{1, 1}}), config.Fast(), nil)
	addr := h.Accept("c1")
	recvFrame(t, addr.Channel) // greeting

	moveFrame, _ := json.Marshal(map[string]interface{}{
		"type":    "MOVE",
		"payload": map[string]interface{}{"dx": 1, "dy": 0},
	})
	h.Inbound("c1", moveFrame)

	errFrame := recvFrame(t, addr.Channel)
	assert.Equal(t, "ERROR", errFrame["type"])
	assert.Equal(t, "NOT_JOINED", errFrame["payload"].(map[string]interface{})["code"])
}

func TestDisconnectFreesSpawnForImmediateRejoinByAnotherClient(t *testing.T) {
	// A disconnected player isn't "live", so its cell is free to a new
	// joiner even before the grace period evicts the old identity.
	h := server.NewHub(newTestBoard([]board.Point{{1, 1}}), config.Fast(), nil)
	addr1 := h.Accept("c1")
	recvFrame(t, addr1.Channel)
	h.Inbound("c1", connectFrame("Alice"))
	recvFrame(t, addr1.Channel)

	disconnectFrame, _ := json.Marshal(map[string]interface{}{"type": "DISCONNECT", "payload": map[string]interface{}{}})
	closed := h.Inbound("c1", disconnectFrame)
	assert.True(t, closed)

	addr2 := h.Accept("c2")
	recvFrame(t, addr2.Channel)
	h.Inbound("c2", connectFrame("Bob"))

	joined := recvFrame(t, addr2.Channel)
	assert.Equal(t, "CONNECT", joined["type"])
	assert.Equal(t, false, joined["payload"].(map[string]interface{})["isReconnection"])
}

func TestTickEvictsGraceExpiredAndBroadcastsPlayerLeft(t *testing.T) {
	h := server.NewHub(newTestBoard([]board.Point{{1, 1}, {5, 5}}), config.Fast(), nil)
	addr1 := h.Accept("c1")
	recvFrame(t, addr1.Channel)
	h.Inbound("c1", connectFrame("Alice"))
	recvFrame(t, addr1.Channel)

	addr2 := h.Accept("c2")
	recvFrame(t, addr2.Channel)
	h.Inbound("c2", connectFrame("Bob"))
	recvFrame(t, addr2.Channel) // c2's own join response

	disconnectFrame, _ := json.Marshal(map[string]interface{}{"type": "DISCONNECT", "payload": map[string]interface{}{}})
	h.Inbound("c1", disconnectFrame)

	for i := 0; i < config.Fast().DisconnectGraceTicks+1; i++ {
		h.Tick()
	}

	// Drain c2's buffer looking for a PLAYER_LEFT about p1.
	foundLeft := false
	for {
		select {
		case raw := <-addr2.Channel:
			var frame map[string]interface{}
			require.NoError(t, json.Unmarshal(raw.([]byte), &frame))
			if frame["type"] == "PLAYER_LEFT" {
				foundLeft = true
			}
		default:
			assert.True(t, foundLeft, "expected a PLAYER_LEFT frame among c2's buffered messages")
			return
		}
	}
}
