// File: actorkit/actor.go
package actorkit

// Actor processes messages delivered to its mailbox one at a time.
// Receive must not block on another actor's mailbox.
type Actor interface {
	Receive(ctx Context)
}

// Producer constructs a fresh Actor instance. The engine calls it once
// per Spawn so each actor starts with independent state.
type Producer func() Actor

// Props bundles what the engine needs to spawn an actor.
type Props struct {
	Produce Producer
}

// NewProps wraps a Producer for Engine.Spawn.
func NewProps(p Producer) *Props {
	return &Props{Produce: p}
}

// System messages delivered to every actor's Receive at the matching
// lifecycle point.
type (
	Started  struct{}
	Stopping struct{}
	Stopped  struct{}
)
