// File: actorkit/pid.go
package actorkit

// PID identifies a running actor. Components hold PIDs, never pointers
// to the actor itself, so ownership stays in the engine's id table.
type PID struct {
	ID string
}

func (p *PID) String() string {
	if p == nil {
		return "<nil-pid>"
	}
	return p.ID
}
