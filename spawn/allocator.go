// File: spawn/allocator.go
package spawn

import "github.com/lguibr/gridwar/board"

// DefaultClearRadius is the Manhattan radius used when a caller
// doesn't override it (spec: spawnPoints.clearRadius default 3).
const DefaultClearRadius = 3

// Allocator selects spawn points from a Board's ordered spawn list,
// skipping any point occupied (within ClearRadius) by a live player.
// It never rejects a join outright — when nothing is available the
// caller enqueues the joiner and re-asks later (see Queue).
type Allocator struct {
	board       *board.Board
	clearRadius int
}

// New creates an Allocator for b with the given clear radius; radius
// <= 0 uses DefaultClearRadius.
func New(b *board.Board, clearRadius int) *Allocator {
	if clearRadius <= 0 {
		clearRadius = DefaultClearRadius
	}
	return &Allocator{board: b, clearRadius: clearRadius}
}

// Available reports whether a spawn at p is free: the cell itself is
// Empty and no point in occupied lies within the clear radius. Walls
// inside the radius never disqualify a spawn — only other players do.
func (a *Allocator) Available(p board.Point, occupied []board.Point) bool {
	if a.board.IsWall(p.X, p.Y) {
		return false
	}
	if k, ok := a.board.GetCell(p.X, p.Y); !ok || k != board.Empty {
		return false
	}
	for _, o := range occupied {
		if p.Manhattan(o) <= a.clearRadius {
			return false
		}
	}
	return true
}

// Allocate returns the next unoccupied spawn in list order, or false
// if none of the board's declared spawns are currently available. It
// does not fall back to the center/spiral search — callers that want
// that fallback (for boards with zero declared spawns) call Fallback.
func (a *Allocator) Allocate(occupied []board.Point) (board.Point, bool) {
	for _, s := range a.board.Spawns() {
		if a.Available(s, occupied) {
			return s, true
		}
	}
	return board.Point{}, false
}

// Fallback is used when the board has no declared spawn points at
// all: it tries the exact center first, then spirals out from it
// deterministically until it finds a point that passes Available, or
// it has covered the whole board.
func (a *Allocator) Fallback(occupied []board.Point) (board.Point, bool) {
	cx, cy := a.board.Width()/2, a.board.Height()/2
	center := board.Point{X: cx, Y: cy}
	if a.Available(center, occupied) {
		return center, true
	}
	for _, p := range spiral(cx, cy, a.board.Width()+a.board.Height()) {
		if !a.board.InBounds(p.X, p.Y) {
			continue
		}
		if a.Available(p, occupied) {
			return p, true
		}
	}
	return board.Point{}, false
}

// Next tries the declared spawn list first, then the center/spiral
// fallback if the board has no declared spawns.
func (a *Allocator) Next(occupied []board.Point) (board.Point, bool) {
	if len(a.board.Spawns()) == 0 {
		return a.Fallback(occupied)
	}
	return a.Allocate(occupied)
}

// spiral enumerates a deterministic square spiral of points centered
// on (cx,cy), growing outward ring by ring up to the given max radius.
func spiral(cx, cy, maxRadius int) []board.Point {
	pts := make([]board.Point, 0, (2*maxRadius+1)*(2*maxRadius+1))
	for r := 1; r <= maxRadius; r++ {
		for x := cx - r; x <= cx+r; x++ {
			pts = append(pts, board.Point{X: x, Y: cy - r}, board.Point{X: x, Y: cy + r})
		}
		for y := cy - r + 1; y <= cy+r-1; y++ {
			pts = append(pts, board.Point{X: cx - r, Y: y}, board.Point{X: cx + r, Y: y})
		}
	}
	return pts
}
