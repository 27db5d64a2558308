// File: render/driver.go
package render

import (
	"fmt"

	"github.com/lguibr/gridwar/board"
	"github.com/lguibr/gridwar/config"
	"github.com/lguibr/gridwar/game"
)

const (
	playerGlyph = "@"
	localColor  = "cyan"
	remoteColor = "white"
	wallGlyph   = "#"
	emptyGlyph  = " "
)

// Driver consumes successive game.Snapshots and paints only what
// changed between them. The first Apply always does a full paint;
// later ones diff against the remembered snapshot and fall back to a
// full repaint above fallbackThreshold diffed primitives, or if any
// incremental cell write targets an out-of-bounds coordinate.
type Driver struct {
	painter            Painter
	b                  *board.Board
	localPlayerID      string
	fallbackThreshold  int
	statusBarThreshold int

	prev *game.Snapshot
}

// NewDriver builds a Driver painting to painter against the given
// immutable board. localPlayerID marks which player gets the
// highlight color on the grid and whose position the status line shows.
func NewDriver(painter Painter, b *board.Board, localPlayerID string, cfg config.Config) *Driver {
	return &Driver{
		painter:            painter,
		b:                  b,
		localPlayerID:      localPlayerID,
		fallbackThreshold:  cfg.FallbackThreshold,
		statusBarThreshold: cfg.StatusBarThreshold,
	}
}

// Apply paints next, incrementally when possible.
func (d *Driver) Apply(next game.Snapshot) {
	if d.prev == nil {
		if d.renderFull(next) {
			snap := next
			d.prev = &snap
		}
		return
	}

	diff := computeDiff(*d.prev, next)
	if diff.count() > d.fallbackThreshold || !d.applyDiff(diff, next) {
		if !d.renderFull(next) {
			d.prev = nil
			return
		}
	}

	snap := next
	d.prev = &snap
}

func (d *Driver) applyDiff(diff diffResult, next game.Snapshot) bool {
	for _, m := range diff.moved {
		if !d.clearCell(m.old.X, m.old.Y, next) || !d.paintPlayer(m.new) {
			return false
		}
	}
	for _, p := range diff.joined {
		if !d.paintPlayer(p) {
			return false
		}
	}
	for _, p := range diff.left {
		if !d.clearCell(p.X, p.Y, next) {
			return false
		}
	}
	for _, m := range diff.entMoved {
		if !d.clearCell(m.old.X, m.old.Y, next) || !d.paintEntity(m.new) {
			return false
		}
	}
	for _, e := range diff.entSpawned {
		if !d.paintEntity(e) {
			return false
		}
	}
	for _, e := range diff.entDespawned {
		if !d.clearCell(e.X, e.Y, next) {
			return false
		}
	}
	for _, a := range diff.entAnimated {
		if !d.paintEntity(a.new) {
			return false
		}
	}
	d.paintStatus(next)
	return true
}

// renderFull repaints the whole board, then every entity and player on
// top. Returns false if any position named by next falls outside the
// board, in which case the caller discards the remembered snapshot.
func (d *Driver) renderFull(next game.Snapshot) bool {
	d.painter.ClearScreen()
	for y := 0; y < d.b.Height(); y++ {
		for x := 0; x < d.b.Width(); x++ {
			glyph, color := d.boardGlyph(x, y)
			d.painter.DrawCell(x, y, glyph, color)
		}
	}
	for _, e := range next.Entities {
		if !d.paintEntity(e) {
			return false
		}
	}
	for _, p := range next.Players {
		if !d.paintPlayer(p) {
			return false
		}
	}
	d.paintStatus(next)
	return true
}

// clearCell repaints (x,y) to whatever the board/entity layer shows
// there — an entity glyph if one currently occupies the cell in next,
// otherwise the underlying board glyph.
func (d *Driver) clearCell(x, y int, next game.Snapshot) bool {
	if !d.b.InBounds(x, y) {
		return false
	}
	for _, e := range next.Entities {
		if e.X == x && e.Y == y {
			d.painter.DrawCell(x, y, e.Glyph, e.Color)
			return true
		}
	}
	glyph, color := d.boardGlyph(x, y)
	d.painter.DrawCell(x, y, glyph, color)
	return true
}

func (d *Driver) paintPlayer(p game.Player) bool {
	if !d.b.InBounds(p.X, p.Y) {
		return false
	}
	color := remoteColor
	if p.PlayerID == d.localPlayerID {
		color = localColor
	}
	d.painter.DrawCell(p.X, p.Y, playerGlyph, color)
	return true
}

func (d *Driver) paintEntity(e game.Entity) bool {
	if !d.b.InBounds(e.X, e.Y) {
		return false
	}
	d.painter.DrawCell(e.X, e.Y, e.Glyph, e.Color)
	return true
}

func (d *Driver) boardGlyph(x, y int) (string, string) {
	k, ok := d.b.GetCell(x, y)
	if !ok || k == board.Wall {
		return wallGlyph, ""
	}
	return emptyGlyph, ""
}

// paintStatus redraws the status area: one line on wide boards, two on
// narrow ones (statusBarThreshold is the board-width cutoff).
func (d *Driver) paintStatus(next game.Snapshot) {
	pos := fmt.Sprintf("score=%d", next.Score)
	if local, ok := findPlayer(next.Players, d.localPlayerID); ok {
		pos = fmt.Sprintf("pos=(%d,%d) score=%d", local.X, local.Y, next.Score)
	}
	help := "move: arrow keys/WASD  quit: q"

	if d.b.Width() < d.statusBarThreshold {
		d.painter.DrawStatus([]string{pos, help})
		return
	}
	d.painter.DrawStatus([]string{pos + " | " + help})
}

func findPlayer(players []game.Player, id string) (game.Player, bool) {
	for _, p := range players {
		if p.PlayerID == id {
			return p, true
		}
	}
	return game.Player{}, false
}
