// File: board/board.go
package board

import "fmt"

// DefaultMaxSpawns caps the retained spawn list when a loader doesn't
// override it (spec: spawnPoints.maxCount default 25).
const DefaultMaxSpawns = 25

// Board is an immutable grid plus its ordered spawn list. Once built it
// is never mutated, so it's safely shared across every connection,
// actor, and tick that reads it.
type Board struct {
	width, height int
	grid          []Kind // row-major, length width*height
	spawns        []Point
}

// New builds a Board from a row-major grid and the loader's spawn list
// (deriving spawns from marked cells is the loader's job; a nil list
// gives a board with no spawns). maxSpawns caps the retained list,
// keeping the first N in the order given. Panics if any grid cell or spawn falls outside
// width*height, or a supplied spawn doesn't land on an Empty cell —
// those are loader bugs, not runtime conditions.
func New(width, height int, grid []Kind, spawns []Point, maxSpawns int) *Board {
	if width <= 0 || height <= 0 {
		panic("board: width and height must be positive")
	}
	if len(grid) != width*height {
		panic(fmt.Sprintf("board: grid has %d cells, want %d", len(grid), width*height))
	}
	if maxSpawns <= 0 {
		maxSpawns = DefaultMaxSpawns
	}

	b := &Board{width: width, height: height, grid: append([]Kind(nil), grid...)}

	if len(spawns) > maxSpawns {
		spawns = spawns[:maxSpawns]
	}
	for _, s := range spawns {
		if !b.InBounds(s.X, s.Y) {
			panic(fmt.Sprintf("board: spawn %v out of bounds", s))
		}
		if b.getCellUnchecked(s.X, s.Y) != Empty {
			panic(fmt.Sprintf("board: spawn %v is not an empty cell", s))
		}
	}
	b.spawns = append([]Point(nil), spawns...)
	return b
}

func (b *Board) Width() int  { return b.width }
func (b *Board) Height() int { return b.height }

// InBounds reports whether (x,y) is a valid coordinate on this board.
func (b *Board) InBounds(x, y int) bool {
	return x >= 0 && x < b.width && y >= 0 && y < b.height
}

func (b *Board) index(x, y int) int { return y*b.width + x }

func (b *Board) getCellUnchecked(x, y int) Kind {
	return b.grid[b.index(x, y)]
}

// GetCell returns the cell kind at (x,y), or (Empty, false) if out of
// bounds — callers that need to distinguish "empty" from "out of
// bounds" must check InBounds first.
func (b *Board) GetCell(x, y int) (Kind, bool) {
	if !b.InBounds(x, y) {
		return Empty, false
	}
	return b.getCellUnchecked(x, y), true
}

// IsWall reports whether (x,y) is a wall cell. Out-of-bounds is not a
// wall by this predicate alone; callers must also check InBounds.
func (b *Board) IsWall(x, y int) bool {
	k, ok := b.GetCell(x, y)
	return ok && k == Wall
}

// Spawns returns the board's ordered spawn list. The slice is a copy;
// callers may not mutate the board through it.
func (b *Board) Spawns() []Point {
	out := make([]Point, len(b.spawns))
	copy(out, b.spawns)
	return out
}

// Grid returns a row-major copy of the cell kinds, for snapshot
// encoding.
func (b *Board) Grid() []Kind {
	out := make([]Kind, len(b.grid))
	copy(out, b.grid)
	return out
}
