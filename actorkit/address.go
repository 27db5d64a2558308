// File: actorkit/address.go
package actorkit

// Address is a bounded, closeable outbound queue. It backs an actor's
// mailbox, and is reused directly by the broadcast scheduler as each
// connection's send buffer so the same open/close/high-water-mark
// semantics apply to both.
type Address struct {
	Id      string
	Size    int
	IsOpen  bool
	Channel chan interface{}
}

// NewAddress creates a closed address with the given buffer size.
func NewAddress(id string, size int) *Address {
	return &Address{
		Id:      id,
		Size:    size,
		Channel: make(chan interface{}, size),
	}
}

// TrySend enqueues msg without blocking. It reports false if the
// address is closed or the buffer is full (the high-water mark).
func (a *Address) TrySend(msg interface{}) bool {
	if !a.IsOpen {
		return false
	}
	select {
	case a.Channel <- msg:
		return true
	default:
		return false
	}
}

// Len reports how many messages are currently buffered.
func (a *Address) Len() int {
	return len(a.Channel)
}

func (a *Address) Open() { a.IsOpen = true }

func (a *Address) Close() {
	a.IsOpen = false
}
