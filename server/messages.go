// File: server/messages.go
package server

import (
	"github.com/lguibr/gridwar/board"
	"github.com/lguibr/gridwar/game"
	"github.com/lguibr/gridwar/protocol"
)

// boardView is the wire shape of gameState.board: width, height, and a
// flattened row-major grid of cell kinds (0=empty, 1=wall).
type boardView struct {
	Width  int   `json:"width"`
	Height int   `json:"height"`
	Grid   []int `json:"grid"`
}

func newBoardView(b *board.Board) boardView {
	kinds := b.Grid()
	grid := make([]int, len(kinds))
	for i, k := range kinds {
		grid[i] = int(k)
	}
	return boardView{Width: b.Width(), Height: b.Height(), Grid: grid}
}

// gameStateView is the wire shape of the gameState field carried by
// CONNECT (join resp). STATE_UPDATE does not use it: the scheduler
// sends tick, score, players and entities as a flat payload.
type gameStateView struct {
	Board    boardView     `json:"board"`
	Players  []game.Player `json:"players"`
	Entities []game.Entity `json:"entities"`
	Score    int           `json:"score"`
}

func newGameStateView(b *board.Board, snap game.Snapshot) gameStateView {
	return gameStateView{
		Board:    newBoardView(b),
		Players:  snap.Players,
		Entities: snap.Entities,
		Score:    snap.Score,
	}
}

func encodeGreeting(clientId string) []byte {
	frame, _ := protocol.Encode(protocol.Message{
		Type:     protocol.TypeConnect,
		ClientID: clientId,
		Payload:  map[string]interface{}{"clientId": clientId},
	})
	return frame
}

func encodeJoinResponse(clientId, playerId string, b *board.Board, snap game.Snapshot, isReconnection bool) []byte {
	frame, _ := protocol.Encode(protocol.Message{
		Type:     protocol.TypeConnect,
		ClientID: clientId,
		Payload: map[string]interface{}{
			"clientId":       clientId,
			"playerId":       playerId,
			"gameState":      newGameStateView(b, snap),
			"isReconnection": isReconnection,
		},
	})
	return frame
}

// encodeWaitingResponse reuses CONNECT rather than minting a new wire
// type for the "no spawn yet" case: it's a greeting variant carrying a
// waiting flag and the operator-configured message text.
func encodeWaitingResponse(clientId, waitMessage string) []byte {
	frame, _ := protocol.Encode(protocol.Message{
		Type:     protocol.TypeConnect,
		ClientID: clientId,
		Payload: map[string]interface{}{
			"clientId": clientId,
			"waiting":  true,
			"message":  waitMessage,
		},
	})
	return frame
}

func encodePlayerJoined(clientId, playerId, playerName string, x, y int) []byte {
	frame, _ := protocol.Encode(protocol.Message{
		Type: protocol.TypePlayerJoined,
		Payload: map[string]interface{}{
			"clientId":   clientId,
			"playerId":   playerId,
			"playerName": playerName,
			"x":          x,
			"y":          y,
		},
	})
	return frame
}

func encodePlayerLeft(playerId string) []byte {
	frame, _ := protocol.Encode(protocol.Message{
		Type:    protocol.TypePlayerLeft,
		Payload: map[string]interface{}{"playerId": playerId},
	})
	return frame
}

func encodeMoveFailed(reason protocol.MoveFailReason) []byte {
	frame, _ := protocol.Encode(protocol.Message{
		Type:    protocol.TypeMoveFailed,
		Payload: map[string]interface{}{"reason": string(reason)},
	})
	return frame
}

func encodeError(code protocol.Code, message string) []byte {
	frame, _ := protocol.Encode(protocol.Message{
		Type: protocol.TypeError,
		Payload: map[string]interface{}{
			"code":    string(code),
			"message": message,
		},
	})
	return frame
}

func encodePong() []byte {
	frame, _ := protocol.Encode(protocol.Message{Type: protocol.TypePong})
	return frame
}
