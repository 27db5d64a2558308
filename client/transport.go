// File: client/transport.go
package client

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/lguibr/gridwar/config"
	"golang.org/x/net/websocket"
)

// ErrNotConnected is returned by Send when the socket is closing or
// closed and auto-reconnect isn't armed to queue the message instead.
var ErrNotConnected = errors.New("client: not connected")

// connState is Transport's own small state machine, independent of
// the server-side protocol Connection state: connecting, open,
// closing, closed.
type connState int

const (
	stateConnecting connState = iota
	stateOpen
	stateClosing
	stateClosed
)

// wsConn is the narrow interface Transport actually needs from a
// websocket connection, so tests can substitute a fake without a real
// socket. dialWebsocket adapts a *websocket.Conn to it.
type wsConn interface {
	Send(data []byte) error
	Receive() ([]byte, error)
	Close() error
}

type realConn struct{ ws *websocket.Conn }

func (r realConn) Send(data []byte) error { return websocket.Message.Send(r.ws, data) }
func (r realConn) Receive() ([]byte, error) {
	var data []byte
	err := websocket.Message.Receive(r.ws, &data)
	return data, err
}
func (r realConn) Close() error { return r.ws.Close() }

func dialWebsocket(url, origin string) (wsConn, error) {
	ws, err := websocket.Dial(url, "", origin)
	if err != nil {
		return nil, err
	}
	return realConn{ws}, nil
}

// Callbacks is the event surface spec §4.8 asks for. Any field left
// nil is simply not invoked.
type Callbacks struct {
	OnConnect        func()
	OnConnectMessage func(raw []byte) // server CONNECT frame: greeting or join response
	OnStateUpdate    func(raw []byte)
	OnPlayerJoined   func(raw []byte)
	OnPlayerLeft     func(raw []byte)
	OnError          func(raw []byte)
	OnDisconnect     func(err error)
	OnReconnecting   func(attempt int, delay time.Duration)
	OnReconnected    func()
	OnServerRestart  func(result RestartResult)
}

// Transport is the client's outbound connection: dial, auto-reconnect
// with exponential backoff, and three send modes depending on socket
// state (spec §4.8).
type Transport struct {
	url, origin string
	cfg         config.Config
	dial        func(url, origin string) (wsConn, error)
	callbacks   Callbacks

	mu         sync.Mutex
	conn       wsConn
	state      connState
	sendQueue  [][]byte
	attempt    int
	userClosed bool
	playerID   string // carried over across reconnects
}

// NewTransport builds a Transport against url, ready to Connect.
func NewTransport(url, origin string, cfg config.Config, callbacks Callbacks) *Transport {
	return &Transport{
		url:       url,
		origin:    origin,
		cfg:       cfg,
		dial:      dialWebsocket,
		callbacks: callbacks,
		state:     stateConnecting,
	}
}

// PlayerID returns the last known playerId, carried over on reconnect.
func (t *Transport) PlayerID() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.playerID
}

// SetPlayerID records the identity to present on the next (re)connect.
func (t *Transport) SetPlayerID(id string) {
	t.mu.Lock()
	t.playerID = id
	t.mu.Unlock()
}

// Connect dials the server, flushes any queued sends, and starts the
// read loop on its own goroutine.
func (t *Transport) Connect() error {
	t.mu.Lock()
	t.state = stateConnecting
	t.mu.Unlock()

	conn, err := t.dial(t.url, t.origin)
	if err != nil {
		return err
	}

	t.mu.Lock()
	t.conn = conn
	t.state = stateOpen
	t.attempt = 0
	queued := t.sendQueue
	t.sendQueue = nil
	t.mu.Unlock()

	for _, raw := range queued {
		_ = conn.Send(raw)
	}

	if t.callbacks.OnConnect != nil {
		t.callbacks.OnConnect()
	}

	go t.readLoop(conn)
	return nil
}

// Send implements the three modes: open writes through; connecting
// queues locally; closing/closed queues only if auto-reconnect is
// armed, otherwise fails with ErrNotConnected.
func (t *Transport) Send(raw []byte) error {
	t.mu.Lock()
	state := t.state
	conn := t.conn
	reconnectArmed := t.cfg.ReconnectionEnabled && !t.userClosed

	switch state {
	case stateOpen:
		t.mu.Unlock()
		return conn.Send(raw)
	case stateConnecting:
		t.sendQueue = append(t.sendQueue, raw)
		t.mu.Unlock()
		return nil
	default: // closing, closed
		if reconnectArmed {
			t.sendQueue = append(t.sendQueue, raw)
			t.mu.Unlock()
			return nil
		}
		t.mu.Unlock()
		return ErrNotConnected
	}
}

// Disconnect is the user-initiated graceful close; it disarms
// reconnect, matching the spec's "unless user-initiated disconnect()"
// carve-out from the reconnect policy.
func (t *Transport) Disconnect() {
	t.mu.Lock()
	t.userClosed = true
	t.state = stateClosing
	conn := t.conn
	t.mu.Unlock()
	if conn != nil {
		_ = conn.Close()
	}
	t.mu.Lock()
	t.state = stateClosed
	t.mu.Unlock()
}

func (t *Transport) readLoop(conn wsConn) {
	for {
		raw, err := conn.Receive()
		if err != nil {
			t.handleClose(err)
			return
		}
		t.dispatch(raw)
	}
}

func (t *Transport) dispatch(raw []byte) {
	typ, ok := peekType(raw)
	if !ok {
		return
	}
	switch typ {
	case "CONNECT":
		if t.callbacks.OnServerRestart != nil {
			if v, err := DecodeConnect(raw); err == nil && v.IsJoinResponse() {
				if r := DetectServerRestart(t.PlayerID(), v.PlayerID, v.IsReconnection); r.Restarted {
					t.callbacks.OnServerRestart(r)
				}
			}
		}
		if t.callbacks.OnConnectMessage != nil {
			t.callbacks.OnConnectMessage(raw)
		}
	case "STATE_UPDATE":
		if t.callbacks.OnStateUpdate != nil {
			t.callbacks.OnStateUpdate(raw)
		}
	case "PLAYER_JOINED":
		if t.callbacks.OnPlayerJoined != nil {
			t.callbacks.OnPlayerJoined(raw)
		}
	case "PLAYER_LEFT":
		if t.callbacks.OnPlayerLeft != nil {
			t.callbacks.OnPlayerLeft(raw)
		}
	case "ERROR":
		if t.callbacks.OnError != nil {
			t.callbacks.OnError(raw)
		}
	}
}

func (t *Transport) handleClose(err error) {
	t.mu.Lock()
	wasUserClosed := t.userClosed
	t.state = stateClosed
	t.mu.Unlock()

	if wasUserClosed {
		return
	}
	if t.callbacks.OnDisconnect != nil {
		t.callbacks.OnDisconnect(err)
	}
	t.scheduleReconnect()
}

// scheduleReconnect implements the retryDelay*2^(attempt-1) backoff
// capped at 30s and bounded by maxAttempts.
func (t *Transport) scheduleReconnect() {
	t.mu.Lock()
	if !t.cfg.ReconnectionEnabled || t.userClosed {
		t.mu.Unlock()
		return
	}
	t.attempt++
	attempt := t.attempt
	t.mu.Unlock()

	if attempt > t.cfg.ReconnectionMaxAttempts {
		return
	}
	delay := BackoffDelay(attempt, t.cfg.ReconnectionRetryDelay)
	if t.callbacks.OnReconnecting != nil {
		t.callbacks.OnReconnecting(attempt, delay)
	}

	time.AfterFunc(delay, func() {
		if err := t.Connect(); err != nil {
			t.scheduleReconnect()
			return
		}
		if t.callbacks.OnReconnected != nil {
			t.callbacks.OnReconnected()
		}
	})
}

// peekType extracts just the "type" field from a raw frame without
// fully decoding the payload.
func peekType(raw []byte) (string, bool) {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil || probe.Type == "" {
		return "", false
	}
	return probe.Type, true
}
