// File: actorkit/process.go
package actorkit

import (
	"fmt"
	"runtime/debug"
)

const defaultMailboxSize = 1024

// process is the running instance of an actor: its state, its inbox,
// and the goroutine draining it.
type process struct {
	engine  *Engine
	pid     *PID
	actor   Actor
	mailbox chan *messageEnvelope
	props   *Props
	stopCh  chan struct{}
	stopped bool
}

func newProcess(engine *Engine, pid *PID, props *Props) *process {
	return &process{
		engine:  engine,
		pid:     pid,
		props:   props,
		mailbox: make(chan *messageEnvelope, defaultMailboxSize),
		stopCh:  make(chan struct{}),
	}
}

// send enqueues a message without blocking; a full mailbox drops it.
func (p *process) send(envelope *messageEnvelope) {
	select {
	case p.mailbox <- envelope:
	default:
		fmt.Printf("actorkit: %s mailbox full, dropping message type %T\n", p.pid.ID, envelope.Message)
	}
}

func (p *process) run() {
	defer func() {
		p.stopped = true
		p.invokeReceive(Stopped{}, nil, "")
		p.engine.remove(p.pid)
	}()

	defer func() {
		if r := recover(); r != nil {
			fmt.Printf("actorkit: %s panicked: %v\n%s\n", p.pid.ID, r, string(debug.Stack()))
			p.stopped = true
		}
	}()

	p.actor = p.props.Produce()
	if p.actor == nil {
		panic(fmt.Sprintf("actorkit: %s producer returned nil actor", p.pid.ID))
	}

	for {
		select {
		case <-p.stopCh:
			return

		case envelope := <-p.mailbox:
			if p.stopped {
				continue
			}
			switch msg := envelope.Message.(type) {
			case Stopping:
				p.stopped = true
				p.invokeReceive(msg, envelope.Sender, envelope.RequestID)
				close(p.stopCh)
			default:
				p.invokeReceive(envelope.Message, envelope.Sender, envelope.RequestID)
			}
		}
	}
}

func (p *process) invokeReceive(msg interface{}, sender *PID, reqID string) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Printf("actorkit: %s panic in Receive: %v\n%s\n", p.pid.ID, r, string(debug.Stack()))
		}
	}()
	ctx := &context{engine: p.engine, self: p.pid, sender: sender, message: msg, reqID: reqID}
	p.actor.Receive(ctx)
}
