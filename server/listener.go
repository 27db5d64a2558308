// File: server/listener.go
package server

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lguibr/gridwar/actorkit"
	"github.com/lguibr/gridwar/board"
	"github.com/lguibr/gridwar/config"
	"github.com/lguibr/gridwar/game"
	"golang.org/x/net/websocket"
)

// Listener is the I/O shell around Hub: it accepts websocket.Conns,
// runs one read loop and one write loop per connection as independent
// units of execution, and drives the fixed-cadence broadcast tick on
// its own goroutine — mirroring the parallel-threaded design the spec
// calls for. Every call into Hub is serialized by mu, the single
// exclusive lock the coarse concurrency model asks for.
type Listener struct {
	hub           *Hub
	mu            sync.Mutex
	cfg           config.Config
	nextClientSeq int64
	stop          chan struct{}
}

// NewListener builds a Listener over a freshly constructed Hub for
// board b and the given optional entity set.
func NewListener(b *board.Board, cfg config.Config, entities []game.Entity) *Listener {
	return &Listener{
		hub:  NewHub(b, cfg, entities),
		cfg:  cfg,
		stop: make(chan struct{}),
	}
}

// Handler returns the golang.org/x/net/websocket.Handler to register
// on an HTTP mux, e.g. http.Handle("/ws", listener.Handler()).
func (l *Listener) Handler() websocket.Handler {
	return websocket.Handler(l.serve)
}

// RunTicker starts the broadcast scheduler's fixed-cadence tick loop
// on the caller's goroutine; it blocks until Stop is called.
func (l *Listener) RunTicker() {
	ticker := time.NewTicker(l.cfg.BroadcastInterval())
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.mu.Lock()
			l.hub.Tick()
			l.mu.Unlock()
		case <-l.stop:
			return
		}
	}
}

// Stop ends the ticker loop started by RunTicker.
func (l *Listener) Stop() { close(l.stop) }

func (l *Listener) serve(ws *websocket.Conn) {
	clientId := fmt.Sprintf("client-%d", atomic.AddInt64(&l.nextClientSeq, 1))

	l.mu.Lock()
	addr := l.hub.Accept(clientId)
	l.mu.Unlock()

	writeDone := make(chan struct{})
	go l.writeLoop(ws, addr, writeDone)

	l.readLoop(ws, clientId)

	close(writeDone)
	l.mu.Lock()
	l.hub.Close(clientId)
	l.mu.Unlock()
	_ = ws.Close()
}

func (l *Listener) readLoop(ws *websocket.Conn, clientId string) {
	for {
		var raw []byte
		if err := websocket.Message.Receive(ws, &raw); err != nil {
			l.mu.Lock()
			l.hub.Close(clientId)
			l.mu.Unlock()
			return
		}

		l.mu.Lock()
		closeConn := l.hub.Inbound(clientId, raw)
		l.mu.Unlock()
		if closeConn {
			return
		}
	}
}

// writeLoop drains addr's buffered outbound frames onto the socket
// until either done fires (readLoop exited) or a socket write fails. This is the "independent unit of execution" the spec's
// parallel-threaded design calls for per connection.
func (l *Listener) writeLoop(ws *websocket.Conn, addr *actorkit.Address, done chan struct{}) {
	for {
		select {
		case msg := <-addr.Channel:
			raw, ok := msg.([]byte)
			if !ok {
				continue
			}
			if err := websocket.Message.Send(ws, raw); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
