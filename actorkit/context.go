// File: actorkit/context.go
package actorkit

// Context is the view an actor gets of the message it is currently
// handling: who it's from, what it is, and how to reply if it was an
// Ask.
type Context interface {
	Self() *PID
	Sender() *PID
	Message() interface{}

	// RequestID is non-empty when the message was sent via Engine.Ask;
	// Reply must be called exactly once in that case.
	RequestID() string
	Reply(response interface{})
}

type messageEnvelope struct {
	Sender    *PID
	Message   interface{}
	RequestID string
}

type context struct {
	engine  *Engine
	self    *PID
	sender  *PID
	message interface{}
	reqID   string
}

func (c *context) Self() *PID             { return c.self }
func (c *context) Sender() *PID           { return c.sender }
func (c *context) Message() interface{}   { return c.message }
func (c *context) RequestID() string      { return c.reqID }

func (c *context) Reply(response interface{}) {
	if c.reqID == "" {
		return
	}
	c.engine.reply(c.reqID, response)
}
