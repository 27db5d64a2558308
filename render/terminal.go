// File: render/terminal.go
package render

import (
	"fmt"
	"os"

	"github.com/lguibr/asciiring/helpers"
)

// ansiColor maps the small set of color names the server's entity and
// player palette uses to their foreground ANSI SGR codes.
var ansiColor = map[string]string{
	"red":     "31",
	"green":   "32",
	"yellow":  "33",
	"blue":    "34",
	"magenta": "35",
	"cyan":    "36",
	"white":   "37",
}

// TerminalPainter paints to the real terminal with ANSI cursor
// positioning, the way the teacher's render/ascii.go colors pixels
// with raw escape codes rather than a curses-style library.
type TerminalPainter struct {
	out        *os.File
	statusRow  int // 1-indexed row of the first status line, one blank row below the board
}

// NewTerminalPainter paints to stdout. boardHeight positions the
// status lines just below the grid.
func NewTerminalPainter(boardHeight int) *TerminalPainter {
	return &TerminalPainter{out: os.Stdout, statusRow: boardHeight + 2}
}

func (p *TerminalPainter) ClearScreen() {
	helpers.ClearScreen()
}

func (p *TerminalPainter) DrawCell(x, y int, glyph, color string) {
	code, ok := ansiColor[color]
	if !ok {
		fmt.Fprintf(p.out, "\033[%d;%dH%s", y+1, x+1, glyph)
		return
	}
	fmt.Fprintf(p.out, "\033[%d;%dH\033[%sm%s\033[0m", y+1, x+1, code, glyph)
}

func (p *TerminalPainter) DrawStatus(lines []string) {
	for i, line := range lines {
		fmt.Fprintf(p.out, "\033[%d;1H\033[2K%s", p.statusRow+i, line)
	}
}
