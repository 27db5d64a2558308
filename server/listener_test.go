// File: server/listener_test.go
package server_test

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/lguibr/gridwar/board"
	"github.com/lguibr/gridwar/config"
	"github.com/lguibr/gridwar/server"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/websocket"
)

func TestListenerEndToEndJoinAndMove(t *testing.T) {
	grid := make([]board.Kind, 10*10)
	b := board.New(10, 10, grid, []board.Point{{1, 1}}, 0)
	l := server.NewListener(b, config.Fast(), nil)
	go l.RunTicker()
	defer l.Stop()

	ts := httptest.NewServer(l.Handler())
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http")
	ws, err := websocket.Dial(wsURL, "", ts.URL)
	require.NoError(t, err)
	defer ws.Close()

	var greeting []byte
	require.NoError(t, websocket.Message.Receive(ws, &greeting))
	var greetMsg map[string]interface{}
	require.NoError(t, json.Unmarshal(greeting, &greetMsg))
	require.Equal(t, "CONNECT", greetMsg["type"])

	join, _ := json.Marshal(map[string]interface{}{
		"type":    "CONNECT",
		"payload": map[string]interface{}{"playerName": "Alice"},
	})
	require.NoError(t, websocket.Message.Send(ws, join))

	var joinResp []byte
	require.NoError(t, websocket.Message.Receive(ws, &joinResp))
	var joinRespMsg map[string]interface{}
	require.NoError(t, json.Unmarshal(joinResp, &joinRespMsg))
	require.Equal(t, "CONNECT", joinRespMsg["type"])
	require.Equal(t, false, joinRespMsg["payload"].(map[string]interface{})["isReconnection"])

	move, _ := json.Marshal(map[string]interface{}{
		"type":    "MOVE",
		"payload": map[string]interface{}{"dx": 1, "dy": 0},
	})
	require.NoError(t, websocket.Message.Send(ws, move))

	ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	var tickFrame []byte
	require.NoError(t, websocket.Message.Receive(ws, &tickFrame))
	var tickMsg map[string]interface{}
	require.NoError(t, json.Unmarshal(tickFrame, &tickMsg))
	require.Equal(t, "STATE_UPDATE", tickMsg["type"])
}
