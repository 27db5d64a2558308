// File: cmd/client/main.go
package main

import (
	"fmt"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/lguibr/gridwar/board"
	"github.com/lguibr/gridwar/client"
	"github.com/lguibr/gridwar/config"
	"github.com/lguibr/gridwar/game"
	"github.com/lguibr/gridwar/protocol"
	"github.com/lguibr/gridwar/render"
	"golang.org/x/sys/unix"
)

const (
	defaultURL    = "ws://localhost:8080/subscribe"
	defaultOrigin = "http://localhost/"
)

func setRawMode(fd uintptr) (*unix.Termios, error) {
	saved, err := unix.IoctlGetTermios(int(fd), unix.TCGETS)
	if err != nil {
		return nil, err
	}
	settings := *saved
	settings.Iflag &^= unix.BRKINT | unix.ICRNL | unix.INPCK | unix.ISTRIP | unix.IXON
	settings.Oflag &^= unix.OPOST
	settings.Lflag &^= unix.ECHO | unix.ICANON | unix.IEXTEN | unix.ISIG
	settings.Cflag &^= unix.CSIZE | unix.PARENB
	settings.Cflag |= unix.CS8
	settings.Oflag |= unix.ONLCR
	if err := unix.IoctlSetTermios(int(fd), unix.TCSETS, &settings); err != nil {
		return nil, err
	}
	return saved, nil
}

// app ties the wire callbacks to the predictor, reconciler and
// renderer driver. The driver and board aren't known until the join
// response's gameState arrives, so they're built lazily.
type app struct {
	mu            sync.Mutex
	cfg           config.Config
	transport     *client.Transport
	predictor     *client.Predictor
	reconciler    *client.Reconciler
	driver        *render.Driver
	b             *board.Board
	localPlayerID string
	playerName    string
}

func newApp(cfg config.Config, playerName string) *app {
	return &app{cfg: cfg, predictor: client.NewPredictor(), playerName: playerName}
}

func (a *app) onConnectMessage(raw []byte) {
	v, err := client.DecodeConnect(raw)
	if err != nil {
		fmt.Fprintln(os.Stderr, "malformed CONNECT frame:", err)
		return
	}

	if v.Waiting {
		fmt.Printf("\r%s\n", v.Message)
		return
	}
	if !v.IsJoinResponse() {
		// Bare greeting: send the join request, carrying any playerId we
		// remember from a previous session for reconnection.
		a.sendJoinRequest()
		return
	}

	requestedID := a.transport.PlayerID() // the id our join request carried, if any
	a.mu.Lock()
	a.localPlayerID = v.PlayerID
	a.transport.SetPlayerID(v.PlayerID)
	a.b = buildBoard(v.GameState.Board)
	a.driver = render.NewDriver(render.NewTerminalPainter(a.b.Height()), a.b, v.PlayerID, a.cfg)
	a.predictor.SetBoard(a.b)
	a.mu.Unlock()

	restartResult := client.DetectServerRestart(requestedID, v.PlayerID, v.IsReconnection)
	if restartResult.Restarted {
		fmt.Printf("\rserver restarted: %s is now %s\n", restartResult.OldPlayerID, restartResult.NewPlayerID)
	}

	if local, ok := findPlayerView(v.GameState.Players, v.PlayerID); ok {
		a.predictor.Seed(local.X, local.Y)
		a.reconciler.Observe(local.X, local.Y)
	}
	a.applySnapshot(snapshotFromGameState(v.GameState))
}

func (a *app) sendJoinRequest() {
	payload := map[string]interface{}{"playerName": a.playerName}
	if id := a.transport.PlayerID(); id != "" {
		payload["playerId"] = id
	}
	frame, err := protocol.Encode(protocol.Message{Type: protocol.TypeConnect, Payload: payload})
	if err != nil {
		return
	}
	_ = a.transport.Send(frame)
}

func (a *app) onStateUpdate(raw []byte) {
	v, err := client.DecodeStateUpdate(raw)
	if err != nil {
		return
	}
	if local, ok := findPlayerView(v.Players, a.localPlayerID); ok {
		a.reconciler.Observe(local.X, local.Y)
	}
	a.applySnapshot(game.Snapshot{
		Tick:     v.Tick,
		Score:    v.Score,
		Players:  toGamePlayers(v.Players),
		Entities: toGameEntities(v.Entities),
	})
}

func (a *app) applySnapshot(snap game.Snapshot) {
	a.mu.Lock()
	d := a.driver
	a.mu.Unlock()
	if d != nil {
		d.Apply(snap)
	}
}

func (a *app) onReconcile(serverX, serverY int) {
	a.predictor.Reconcile(serverX, serverY)
}

func (a *app) sendMove(dx, dy int) {
	a.predictor.ApplyLocalMove(dx, dy)
	// Still forwarded even when the local prediction refused it: the
	// server remains the sole source of truth, and a stale client-side
	// board (e.g. mid-reconnect) must not silently swallow input.
	frame, err := protocol.Encode(protocol.Message{
		Type:    protocol.TypeMove,
		Payload: map[string]interface{}{"dx": dx, "dy": dy},
	})
	if err != nil {
		return
	}
	_ = a.transport.Send(frame)
}

func buildBoard(v client.BoardView) *board.Board {
	grid := make([]board.Kind, len(v.Grid))
	for i, k := range v.Grid {
		grid[i] = board.Kind(k)
	}
	return board.New(v.Width, v.Height, grid, nil, 0)
}

func snapshotFromGameState(v client.GameStateView) game.Snapshot {
	return game.Snapshot{
		Score:    v.Score,
		Players:  toGamePlayers(v.Players),
		Entities: toGameEntities(v.Entities),
	}
}

func toGamePlayers(in []client.PlayerView) []game.Player {
	out := make([]game.Player, len(in))
	for i, p := range in {
		out[i] = game.Player{PlayerID: p.PlayerID, X: p.X, Y: p.Y, PlayerName: p.PlayerName, Connected: p.Connected}
	}
	return out
}

func toGameEntities(in []client.EntityView) []game.Entity {
	out := make([]game.Entity, len(in))
	for i, e := range in {
		out[i] = game.Entity{EntityID: e.EntityID, X: e.X, Y: e.Y, EntityType: e.EntityType, Glyph: e.Glyph, Color: e.Color, AnimationFrame: e.AnimationFrame}
	}
	return out
}

func findPlayerView(players []client.PlayerView, id string) (client.PlayerView, bool) {
	for _, p := range players {
		if p.PlayerID == id {
			return p, true
		}
	}
	return client.PlayerView{}, false
}

func main() {
	cfg := config.Default()

	url := os.Getenv("SERVER_URL")
	if url == "" {
		url = defaultURL
	}
	origin := os.Getenv("ORIGIN")
	if origin == "" {
		origin = defaultOrigin
	}
	playerName := os.Getenv("PLAYER_NAME")

	a := newApp(cfg, playerName)
	a.reconciler = client.NewReconciler(cfg.PredictionReconciliationPeriod, a.onReconcile)

	callbacks := client.Callbacks{
		OnConnect:        func() { fmt.Println("connected, awaiting greeting...") },
		OnConnectMessage: a.onConnectMessage,
		OnStateUpdate:    a.onStateUpdate,
		OnError: func(raw []byte) {
			if v, err := client.DecodeError(raw); err == nil {
				fmt.Fprintf(os.Stderr, "\rserver error %s: %s\n", v.Code, v.Message)
			}
		},
		OnDisconnect: func(err error) { fmt.Fprintln(os.Stderr, "\rdisconnected:", err) },
		OnReconnecting: func(attempt int, delay time.Duration) {
			fmt.Fprintf(os.Stderr, "\rreconnecting (attempt %d) in %v...\n", attempt, delay)
		},
		OnReconnected: func() { fmt.Println("\rreconnected") },
	}

	a.transport = client.NewTransport(url, origin, cfg, callbacks)
	if err := a.transport.Connect(); err != nil {
		fmt.Fprintln(os.Stderr, "failed to connect:", err)
		os.Exit(1)
	}
	a.reconciler.Start()

	saved, err := setRawMode(os.Stdin.Fd())
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to set raw terminal mode:", err)
		os.Exit(1)
	}
	restore := func() { _ = unix.IoctlSetTermios(int(os.Stdin.Fd()), unix.TCSETS, saved) }
	defer restore()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	go func() {
		<-interrupt
		restore()
		os.Exit(0)
	}()

	readKeys(a, restore)
}

// readKeys runs the blocking stdin loop, mapping WASD and arrow-key
// escape sequences to MOVE intents until q/Q/Ctrl-C quits.
func readKeys(a *app, restore func()) {
	buf := make([]byte, 1)
	for {
		if _, err := os.Stdin.Read(buf); err != nil {
			return
		}
		switch buf[0] {
		case 'w', 'W':
			a.sendMove(0, -1)
		case 's', 'S':
			a.sendMove(0, 1)
		case 'a', 'A':
			a.sendMove(-1, 0)
		case 'd', 'D':
			a.sendMove(1, 0)
		case 0x1b: // ESC, start of an arrow-key sequence: ESC '[' letter
			rest := make([]byte, 2)
			if _, err := os.Stdin.Read(rest); err != nil {
				return
			}
			if rest[0] != '[' {
				continue
			}
			switch rest[1] {
			case 'A':
				a.sendMove(0, -1)
			case 'B':
				a.sendMove(0, 1)
			case 'C':
				a.sendMove(1, 0)
			case 'D':
				a.sendMove(-1, 0)
			}
		case 'q', 'Q', 3: // 3 = Ctrl-C
			restore()
			os.Exit(0)
		}
	}
}
