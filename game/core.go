// File: game/core.go
package game

import (
	"sort"

	"github.com/lguibr/gridwar/board"
	"github.com/lguibr/gridwar/protocol"
	"github.com/lguibr/gridwar/spawn"
)

// Core owns the canonical world state: the board (immutable), every
// player ever joined this instance (live or grace-held), the optional
// entity list, the tick counter and score. It is the only mutator of
// any of that state. Concurrency is not Core's concern — spec ties one
// exclusive lock to a whole Game instance, and that lock lives one
// layer up (the per-connection/session wiring), taken for the
// duration of one inbound message, one tick, or one grace eviction.
type Core struct {
	board     *board.Board
	allocator *spawn.Allocator
	players   map[string]*Player
	entities  []*Entity
	score     int
	tick      int
	policy    RestartPolicy
}

// NewCore builds a fresh Core over board b, using alloc for spawn
// selection and the given initial entity set (nil for boards without
// a map-loader-supplied entity list).
func NewCore(b *board.Board, alloc *spawn.Allocator, entities []Entity) *Core {
	c := &Core{
		board:     b,
		allocator: alloc,
		players:   make(map[string]*Player),
		policy:    AnyJoinedClient,
	}
	for i := range entities {
		e := entities[i]
		c.entities = append(c.entities, &e)
	}
	return c
}

// SetRestartPolicy overrides the default AnyJoinedClient policy.
func (c *Core) SetRestartPolicy(p RestartPolicy) { c.policy = p }

// Tick returns the current tick counter.
func (c *Core) Tick() int { return c.tick }

// AdvanceTick increments and returns the new tick counter; called once
// per broadcast cycle, before taking the snapshot.
func (c *Core) AdvanceTick() int {
	c.tick++
	return c.tick
}

// livePositions returns the board coordinates of every connected
// player, optionally excluding one playerId (used when re-checking a
// player's own current cell isn't self-blocking).
func (c *Core) livePositions(exclude string) []board.Point {
	out := make([]board.Point, 0, len(c.players))
	for id, p := range c.players {
		if id == exclude || !p.Connected {
			continue
		}
		out = append(out, board.Point{X: p.X, Y: p.Y})
	}
	return out
}

// Join places a brand-new player by running the spawn allocator
// against current live occupancy. ok=false means no spawn is free
// right now; the caller must enqueue the join request and retry it
// (via Retry) once something frees up.
func (c *Core) Join(playerID, name string) (*Player, bool) {
	p, ok := c.allocator.Next(c.livePositions(""))
	if !ok {
		return nil, false
	}
	player := &Player{PlayerID: playerID, X: p.X, Y: p.Y, PlayerName: name, Connected: true}
	c.players[playerID] = player
	return player, true
}

// Reconnect restores a previously known player at its cached (x,y) if
// that cell is still free of other live players; otherwise it falls
// back to a fresh spawn allocation, same as Join. Either way the
// player is (re)marked Connected and returned.
func (c *Core) Reconnect(playerID, name string, lastX, lastY int) (*Player, bool) {
	last := board.Point{X: lastX, Y: lastY}
	free := c.board.InBounds(lastX, lastY) && !c.board.IsWall(lastX, lastY)
	for _, o := range c.livePositions(playerID) {
		if o == last {
			free = false
		}
	}
	if free {
		player := &Player{PlayerID: playerID, X: lastX, Y: lastY, PlayerName: name, Connected: true}
		c.players[playerID] = player
		return player, true
	}
	return c.Join(playerID, name)
}

// Retry re-attempts Join for a queued request; identical to Join, kept
// as a distinct name so callers (the wait queue drain) read clearly.
func (c *Core) Retry(playerID, name string) (*Player, bool) {
	return c.Join(playerID, name)
}

// entityPickupScore is the fixed award for moving onto a non-solid
// entity; the entity is then consumed (removed from the world).
const entityPickupScore = 1

// ApplyMove validates and applies one MOVE. On rejection the player's
// position is unchanged and reason explains why; the connection is
// never affected by a rejected move.
func (c *Core) ApplyMove(playerID string, dx, dy int) (x, y int, ok bool, reason protocol.MoveFailReason) {
	p, found := c.players[playerID]
	if !found || !p.Connected {
		return 0, 0, false, protocol.ReasonOutOfBounds
	}
	nx, ny := p.X+dx, p.Y+dy
	if !c.board.InBounds(nx, ny) {
		return p.X, p.Y, false, protocol.ReasonOutOfBounds
	}
	if c.board.IsWall(nx, ny) {
		return p.X, p.Y, false, protocol.ReasonWall
	}
	for id, other := range c.players {
		if id == playerID || !other.Connected {
			continue
		}
		if other.X == nx && other.Y == ny {
			return p.X, p.Y, false, protocol.ReasonPlayerCollision
		}
	}
	if idx, solid := c.entityAt(nx, ny); idx >= 0 {
		if solid {
			return p.X, p.Y, false, protocol.ReasonEntityCollision
		}
		c.consumeEntity(idx)
		c.score += entityPickupScore
	}
	p.X, p.Y = nx, ny
	return nx, ny, true, ""
}

// entityAt returns the index of the entity occupying (x,y), or -1 if
// none does, along with whether it's solid.
func (c *Core) entityAt(x, y int) (idx int, solid bool) {
	for i, e := range c.entities {
		if e.X == x && e.Y == y {
			return i, e.Solid
		}
	}
	return -1, false
}

// consumeEntity removes the entity at idx from the world, e.g. on
// pick-up.
func (c *Core) consumeEntity(idx int) {
	c.entities = append(c.entities[:idx], c.entities[idx+1:]...)
}

// Rename updates a player's display name (SET_PLAYER_NAME).
func (c *Core) Rename(playerID, name string) {
	if p, ok := c.players[playerID]; ok {
		p.PlayerName = name
	}
}

// SetConnected flips a player's live/grace-held flag. The session
// layer calls this with false on socket close and true on a
// successful Reconnect that reused the existing Core record instead of
// minting a new one.
func (c *Core) SetConnected(playerID string, connected bool) {
	if p, ok := c.players[playerID]; ok {
		p.Connected = connected
	}
}

// CanRestart reports whether requesterPlayerID is allowed to trigger
// a RESTART under the active policy.
func (c *Core) CanRestart(requesterPlayerID string) bool {
	return c.policy(requesterPlayerID, c)
}

// Restart re-allocates every known player's position (consuming
// spawns in player-id order, so the result is deterministic) and
// zeroes score. Connections
// are never dropped; a player who was grace-held stays grace-held at
// its new position until evicted or reconnected.
func (c *Core) Restart() {
	c.score = 0
	occupied := make([]board.Point, 0, len(c.players))
	ids := make([]string, 0, len(c.players))
	for id := range c.players {
		ids = append(ids, id)
	}
	sort.Strings(ids) // deterministic iteration for reproducible tests
	for _, id := range ids {
		p := c.players[id]
		spot, ok := c.allocator.Next(occupied)
		if !ok {
			continue
		}
		p.X, p.Y = spot.X, spot.Y
		occupied = append(occupied, spot)
	}
}

// Evict permanently removes a grace-expired player, freeing its cell.
func (c *Core) Evict(playerID string) {
	delete(c.players, playerID)
}

// Player returns the live-or-grace-held record for playerID.
func (c *Core) Player(playerID string) (*Player, bool) {
	p, ok := c.players[playerID]
	return p, ok
}

// Snapshot takes a consistent copy of the world for one broadcast
// tick. Player order is sorted by id for deterministic diffing on the
// client's incremental renderer.
func (c *Core) Snapshot() Snapshot {
	ids := make([]string, 0, len(c.players))
	for id := range c.players {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	players := make([]Player, 0, len(ids))
	for _, id := range ids {
		players = append(players, c.players[id].snapshot())
	}

	entities := make([]Entity, 0, len(c.entities))
	for _, e := range c.entities {
		entities = append(entities, e.snapshot())
	}

	return Snapshot{Tick: c.tick, Score: c.score, Players: players, Entities: entities}
}

// Board exposes the immutable board for callers that need dimensions
// for bounds checks outside Core.
func (c *Core) Board() *board.Board { return c.board }
