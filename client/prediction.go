// File: client/prediction.go
package client

import "github.com/lguibr/gridwar/board"

// Predictor holds the client's locally predicted position. Input goes
// straight here on every keypress, before the intent even reaches the
// server — the render loop always draws Predictor's position, never
// waits on a round trip. This is deliberately NOT rollback/replay: no
// move history is kept, no move is ever re-applied. Reconcile just
// snaps to the server's last-observed position in one step.
type Predictor struct {
	x, y   int
	seeded bool
	b      *board.Board
}

// NewPredictor returns a Predictor with no position yet; Seed must be
// called once the join response's initial position is known.
func NewPredictor() *Predictor {
	return &Predictor{}
}

// Seed sets the predicted position from a server-provided value —
// the join response's placement, or Reconcile's correction.
func (p *Predictor) Seed(x, y int) {
	p.x, p.y = x, y
	p.seeded = true
}

// Position returns the current predicted coordinates.
func (p *Predictor) Position() (x, y int) { return p.x, p.y }

// SetBoard supplies the board ApplyLocalMove checks against. Unset
// (nil) until the join response delivers it, in which case
// ApplyLocalMove applies every move unchecked.
func (p *Predictor) SetBoard(b *board.Board) { p.b = b }

// ApplyLocalMove advances the prediction by (dx, dy) immediately,
// independent of whether the server will accept the equivalent MOVE —
// except it refuses to predict into a wall or off the board, the one
// piece of world knowledge the client already has locally. The server
// is still the sole source of truth; a rejected move the client didn't
// catch here is corrected away at the next Reconcile.
func (p *Predictor) ApplyLocalMove(dx, dy int) (x, y int, ok bool) {
	nx, ny := p.x+dx, p.y+dy
	if p.b != nil && (!p.b.InBounds(nx, ny) || p.b.IsWall(nx, ny)) {
		return p.x, p.y, false
	}
	p.x, p.y = nx, ny
	return p.x, p.y, true
}

// Reconcile snaps the prediction to the server-observed position in a
// single step. Returns true if this changed anything — i.e. the
// prediction had diverged from the server.
func (p *Predictor) Reconcile(serverX, serverY int) (corrected bool) {
	if p.seeded && p.x == serverX && p.y == serverY {
		return false
	}
	p.x, p.y = serverX, serverY
	p.seeded = true
	return true
}
