// File: game/core_test.go
package game_test

import (
	"testing"

	"github.com/lguibr/gridwar/board"
	"github.com/lguibr/gridwar/game"
	"github.com/lguibr/gridwar/protocol"
	"github.com/lguibr/gridwar/spawn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCore(t *testing.T, spawns []board.Point) *game.Core {
	t.Helper()
	grid := make([]board.Kind, 20*20)
	b := board.New(20, 20, grid, spawns, 0)
	alloc := spawn.New(b, 3)
	return game.NewCore(b, alloc, nil)
}

func TestJoinPlacesAtFirstAvailableSpawn(t *testing.T) {
	c := newTestCore(t, []board.Point{{1, 1}, {18, 18}})
	p, ok := c.Join("p1", "Alice")
	require.True(t, ok)
	assert.Equal(t, 1, p.X)
	assert.Equal(t, 1, p.Y)
}

func TestJoinFailsWhenNoSpawnAvailable(t *testing.T) {
	c := newTestCore(t, []board.Point{{1, 1}})
	_, ok := c.Join("p1", "Alice")
	require.True(t, ok)

	_, ok = c.Join("p2", "Bob")
	assert.False(t, ok)
}

func TestApplyMoveAcceptsValidStep(t *testing.T) {
	c := newTestCore(t, []board.Point{{5, 5}})
	c.Join("p1", "Alice")

	x, y, ok, reason := c.ApplyMove("p1", 1, 0)
	require.True(t, ok)
	assert.Equal(t, 6, x)
	assert.Equal(t, 5, y)
	assert.Empty(t, reason)
}

func TestApplyMoveRejectsOutOfBounds(t *testing.T) {
	c := newTestCore(t, []board.Point{{0, 0}})
	c.Join("p1", "Alice")

	x, y, ok, reason := c.ApplyMove("p1", -1, 0)
	assert.False(t, ok)
	assert.Equal(t, 0, x)
	assert.Equal(t, 0, y)
	assert.Equal(t, protocol.ReasonOutOfBounds, reason)
}

func TestApplyMoveRejectsWall(t *testing.T) {
	grid := make([]board.Kind, 10*10)
	grid[0*10+1] = board.Wall
	b := board.New(10, 10, grid, []board.Point{{0, 0}}, 0)
	alloc := spawn.New(b, 1)
	c := game.NewCore(b, alloc, nil)
	c.Join("p1", "Alice")

	_, _, ok, reason := c.ApplyMove("p1", 1, 0)
	assert.False(t, ok)
	assert.Equal(t, protocol.ReasonWall, reason)
}

func TestApplyMoveRejectsPlayerCollision(t *testing.T) {
	c := newTestCore(t, []board.Point{{0, 0}, {4, 0}})
	c.Join("p1", "Alice")
	c.Join("p2", "Bob") // (4,0): just outside p1's clear radius
	c.ApplyMove("p2", -1, 0)
	c.ApplyMove("p2", -1, 0)
	c.ApplyMove("p2", -1, 0) // p2 now at (1,0), beside p1

	_, _, ok, reason := c.ApplyMove("p1", 1, 0)
	assert.False(t, ok)
	assert.Equal(t, protocol.ReasonPlayerCollision, reason)
}

func TestApplyMoveRejectsSolidEntityCollision(t *testing.T) {
	grid := make([]board.Kind, 10*10)
	b := board.New(10, 10, grid, []board.Point{{0, 0}}, 0)
	alloc := spawn.New(b, 1)
	c := game.NewCore(b, alloc, []game.Entity{{EntityID: "rock", X: 1, Y: 0, Solid: true}})
	c.Join("p1", "Alice")

	x, y, ok, reason := c.ApplyMove("p1", 1, 0)
	assert.False(t, ok)
	assert.Equal(t, 0, x)
	assert.Equal(t, 0, y)
	assert.Equal(t, protocol.ReasonEntityCollision, reason)

	snap := c.Snapshot()
	require.Len(t, snap.Entities, 1, "a blocked solid entity is not consumed")
}

func TestApplyMovePicksUpNonSolidEntityAndIncrementsScore(t *testing.T) {
	grid := make([]board.Kind, 10*10)
	b := board.New(10, 10, grid, []board.Point{{0, 0}}, 0)
	alloc := spawn.New(b, 1)
	c := game.NewCore(b, alloc, []game.Entity{{EntityID: "coin", X: 1, Y: 0, Glyph: "$"}})
	c.Join("p1", "Alice")

	x, y, ok, reason := c.ApplyMove("p1", 1, 0)
	require.True(t, ok)
	assert.Equal(t, 1, x)
	assert.Equal(t, 0, y)
	assert.Empty(t, reason)

	snap := c.Snapshot()
	assert.Equal(t, 1, snap.Score)
	assert.Empty(t, snap.Entities, "the picked-up entity is consumed")
}

func TestReconnectRestoresLastPosition(t *testing.T) {
	c := newTestCore(t, []board.Point{{2, 2}})
	c.Join("p1", "Alice")
	c.SetConnected("p1", false)

	p, ok := c.Reconnect("p1", "Alice", 2, 2)
	require.True(t, ok)
	assert.Equal(t, 2, p.X)
	assert.Equal(t, 2, p.Y)
	assert.True(t, p.Connected)
}

func TestReconnectFallsBackWhenOldCellTaken(t *testing.T) {
	c := newTestCore(t, []board.Point{{2, 2}, {10, 10}})
	c.Join("p1", "Alice")
	c.SetConnected("p1", false)
	c.Join("p2", "Bob") // takes (2,2)

	p, ok := c.Reconnect("p1", "Alice", 2, 2)
	require.True(t, ok)
	assert.NotEqual(t, 2, p.X)
}

func TestRestartResetsScoreAndRepositionsPlayers(t *testing.T) {
	c := newTestCore(t, []board.Point{{0, 0}, {9, 9}})
	c.Join("p1", "Alice")
	c.ApplyMove("p1", 1, 0)

	c.Restart()
	snap := c.Snapshot()
	assert.Equal(t, 0, snap.Score)
	require.Len(t, snap.Players, 1)
	assert.Equal(t, 0, snap.Players[0].X)
	assert.Equal(t, 0, snap.Players[0].Y)
}

func TestEvictRemovesPlayerEntirely(t *testing.T) {
	c := newTestCore(t, []board.Point{{0, 0}})
	c.Join("p1", "Alice")
	c.Evict("p1")

	_, ok := c.Player("p1")
	assert.False(t, ok)
}

func TestSnapshotPlayerOrderIsDeterministic(t *testing.T) {
	c := newTestCore(t, []board.Point{{0, 0}, {5, 0}, {10, 0}})
	c.Join("zeta", "Z")
	c.Join("alpha", "A")

	snap := c.Snapshot()
	require.Len(t, snap.Players, 2)
	assert.Equal(t, "alpha", snap.Players[0].PlayerID)
	assert.Equal(t, "zeta", snap.Players[1].PlayerID)
}

func TestAnyJoinedClientRestartPolicy(t *testing.T) {
	c := newTestCore(t, []board.Point{{0, 0}})
	c.Join("p1", "Alice")

	assert.True(t, c.CanRestart("p1"))
	assert.False(t, c.CanRestart("ghost"))
}
