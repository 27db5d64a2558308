// File: boardfile/load.go
package boardfile

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/lguibr/gridwar/board"
	"github.com/lguibr/gridwar/game"
)

// document is the on-disk shape: {"width","height","rows":["..."],
// "spawns":[[x,y],...],"entities":[...]}. Only width, height and rows
// are required; spawns are derived from 'S' cells in rows when absent
// and entities default to none.
type document struct {
	Width     int         `json:"width"`
	Height    int         `json:"height"`
	Rows      []string    `json:"rows"`
	Spawns    [][2]int    `json:"spawns"`
	Entities  []entityDoc `json:"entities"`
	MaxSpawns int         `json:"maxSpawns"`
}

type entityDoc struct {
	EntityID       string `json:"entityId"`
	X              int    `json:"x"`
	Y              int    `json:"y"`
	EntityType     string `json:"entityType"`
	Glyph          string `json:"glyph"`
	Color          string `json:"color"`
	AnimationFrame int    `json:"animationFrame"`
	Solid          bool   `json:"solid"`
}

// Cell glyphs recognized in a row string.
const (
	wallGlyph  = '#'
	emptyGlyph = '.'
	spawnGlyph = 'S' // empty cell, also registered as a spawn point
)

// Load reads and parses a board file from path.
func Load(path string) (*board.Board, []game.Entity, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("boardfile: open %s: %w", path, err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse decodes a board document from r and builds the immutable
// board plus any entity list it declares.
func Parse(r io.Reader) (*board.Board, []game.Entity, error) {
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, nil, fmt.Errorf("boardfile: decode: %w", err)
	}
	if doc.Width <= 0 || doc.Height <= 0 {
		return nil, nil, fmt.Errorf("boardfile: width and height must be positive")
	}
	if len(doc.Rows) != doc.Height {
		return nil, nil, fmt.Errorf("boardfile: have %d rows, want %d", len(doc.Rows), doc.Height)
	}

	grid := make([]board.Kind, doc.Width*doc.Height)
	var derivedSpawns []board.Point
	for y, row := range doc.Rows {
		if len(row) != doc.Width {
			return nil, nil, fmt.Errorf("boardfile: row %d has %d cells, want %d", y, len(row), doc.Width)
		}
		for x, ch := range row {
			idx := y*doc.Width + x
			switch byte(ch) {
			case wallGlyph:
				grid[idx] = board.Wall
			case emptyGlyph:
				grid[idx] = board.Empty
			case spawnGlyph:
				grid[idx] = board.Empty
				derivedSpawns = append(derivedSpawns, board.Point{X: x, Y: y})
			default:
				return nil, nil, fmt.Errorf("boardfile: row %d: unrecognized glyph %q", y, ch)
			}
		}
	}

	spawns := derivedSpawns
	if len(doc.Spawns) > 0 {
		spawns = make([]board.Point, len(doc.Spawns))
		for i, s := range doc.Spawns {
			spawns[i] = board.Point{X: s[0], Y: s[1]}
		}
	}

	b := board.New(doc.Width, doc.Height, grid, spawns, doc.MaxSpawns)

	entities := make([]game.Entity, len(doc.Entities))
	for i, e := range doc.Entities {
		entities[i] = game.Entity{
			EntityID:       e.EntityID,
			X:              e.X,
			Y:              e.Y,
			EntityType:     e.EntityType,
			Glyph:          e.Glyph,
			Color:          e.Color,
			AnimationFrame: e.AnimationFrame,
			Solid:          e.Solid,
		}
	}
	return b, entities, nil
}
