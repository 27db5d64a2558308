// File: actorkit/engine.go
package actorkit

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// ErrTimeout is returned by Ask when no Reply arrives before the
// deadline.
var ErrTimeout = errors.New("actorkit: ask timed out")

// Engine owns every actor's mailbox and routes messages between them.
// It is the only place that understands PIDs as live processes; every
// other package treats a PID as an opaque id.
type Engine struct {
	pidCounter uint64
	actors     map[string]*process
	mu         sync.RWMutex
	stopping   atomic.Bool

	pending   map[string]chan interface{}
	pendingMu sync.Mutex
	askSeq    uint64
}

// NewEngine creates an empty engine.
func NewEngine() *Engine {
	return &Engine{
		actors:  make(map[string]*process),
		pending: make(map[string]chan interface{}),
	}
}

func (e *Engine) nextPID() *PID {
	id := atomic.AddUint64(&e.pidCounter, 1)
	return &PID{ID: fmt.Sprintf("actor-%d", id)}
}

// Spawn starts a new actor and returns its PID, or nil if the engine
// is shutting down.
func (e *Engine) Spawn(props *Props) *PID {
	if e.stopping.Load() {
		return nil
	}
	pid := e.nextPID()
	proc := newProcess(e, pid, props)

	e.mu.Lock()
	e.actors[pid.ID] = proc
	e.mu.Unlock()

	go proc.run()
	e.Send(pid, Started{}, nil)
	return pid
}

// Send delivers a fire-and-forget message. It is a no-op if pid is
// unknown (already stopped) or the engine is shutting down and the
// message isn't part of the shutdown sequence itself.
func (e *Engine) Send(pid *PID, message interface{}, sender *PID) {
	if pid == nil {
		return
	}
	_, isStopping := message.(Stopping)
	if e.stopping.Load() && !isStopping {
		return
	}
	e.mu.RLock()
	proc, ok := e.actors[pid.ID]
	e.mu.RUnlock()
	if ok {
		proc.send(&messageEnvelope{Sender: sender, Message: message})
	}
}

// Ask sends a message and blocks until the actor calls ctx.Reply, the
// timeout elapses (ErrTimeout), or the actor turns out to not exist.
func (e *Engine) Ask(pid *PID, message interface{}, timeout time.Duration) (interface{}, error) {
	if pid == nil {
		return nil, fmt.Errorf("actorkit: ask to nil pid")
	}
	e.mu.RLock()
	proc, ok := e.actors[pid.ID]
	e.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("actorkit: actor %s not found", pid.ID)
	}

	reqID := fmt.Sprintf("ask-%d", atomic.AddUint64(&e.askSeq, 1))
	replyCh := make(chan interface{}, 1)

	e.pendingMu.Lock()
	e.pending[reqID] = replyCh
	e.pendingMu.Unlock()
	defer func() {
		e.pendingMu.Lock()
		delete(e.pending, reqID)
		e.pendingMu.Unlock()
	}()

	proc.send(&messageEnvelope{Message: message, RequestID: reqID})

	select {
	case resp := <-replyCh:
		if err, ok := resp.(error); ok {
			return nil, err
		}
		return resp, nil
	case <-time.After(timeout):
		return nil, ErrTimeout
	}
}

func (e *Engine) reply(reqID string, response interface{}) {
	e.pendingMu.Lock()
	ch, ok := e.pending[reqID]
	e.pendingMu.Unlock()
	if !ok {
		return
	}
	select {
	case ch <- response:
	default:
	}
}

// Stop asks an actor to shut down and forces its loop to exit even if
// its mailbox is backed up.
func (e *Engine) Stop(pid *PID) {
	if pid == nil {
		return
	}
	e.mu.RLock()
	proc, ok := e.actors[pid.ID]
	e.mu.RUnlock()
	if !ok {
		return
	}
	e.Send(pid, Stopping{}, nil)
	select {
	case <-proc.stopCh:
	default:
		close(proc.stopCh)
	}
}

func (e *Engine) remove(pid *PID) {
	e.mu.Lock()
	delete(e.actors, pid.ID)
	e.mu.Unlock()
}

// Shutdown stops every actor and waits up to timeout for them to
// drain, then forces the remaining ones out of the table.
func (e *Engine) Shutdown(timeout time.Duration) {
	if !e.stopping.CompareAndSwap(false, true) {
		return
	}

	e.mu.RLock()
	pids := make([]*PID, 0, len(e.actors))
	for _, proc := range e.actors {
		pids = append(pids, proc.pid)
	}
	e.mu.RUnlock()

	for _, pid := range pids {
		e.Stop(pid)
	}

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		e.mu.RLock()
		remaining := len(e.actors)
		e.mu.RUnlock()
		if remaining == 0 {
			return
		}
		time.Sleep(25 * time.Millisecond)
	}

	e.mu.Lock()
	e.actors = make(map[string]*process)
	e.mu.Unlock()
}
