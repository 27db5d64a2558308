// File: client/reconciler.go
package client

import (
	"sync"
	"time"
)

// Reconciler fires a callback on a fixed period, handing it the most
// recently observed server position for the local player so it can
// call Predictor.Reconcile. It owns no game state itself — it's just
// the ticker plumbing around the reconciliationInterval config key.
type Reconciler struct {
	period time.Duration
	onTick func(serverX, serverY int)

	mu      sync.Mutex
	x, y    int
	known   bool
	stop    chan struct{}
	stopped bool
}

// NewReconciler builds a Reconciler that calls onTick every period
// once Start is called. onTick is only ever invoked after at least one
// Observe call has recorded a server position.
func NewReconciler(period time.Duration, onTick func(serverX, serverY int)) *Reconciler {
	return &Reconciler{period: period, onTick: onTick, stop: make(chan struct{})}
}

// Observe records the local player's latest known server-side
// position, taken from a STATE_UPDATE or the CONNECT join response.
func (r *Reconciler) Observe(x, y int) {
	r.mu.Lock()
	r.x, r.y = x, y
	r.known = true
	r.mu.Unlock()
}

// Start runs the reconciliation ticker until Stop is called.
func (r *Reconciler) Start() {
	ticker := time.NewTicker(r.period)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				r.fire()
			case <-r.stop:
				return
			}
		}
	}()
}

func (r *Reconciler) fire() {
	r.mu.Lock()
	x, y, known := r.x, r.y, r.known
	r.mu.Unlock()
	if !known {
		return
	}
	r.onTick(x, y)
}

// Stop ends the ticker goroutine. Safe to call once.
func (r *Reconciler) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		return
	}
	r.stopped = true
	close(r.stop)
}
