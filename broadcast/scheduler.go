// File: broadcast/scheduler.go
package broadcast

import (
	"github.com/lguibr/gridwar/actorkit"
	"github.com/lguibr/gridwar/game"
	"github.com/lguibr/gridwar/protocol"
	"github.com/lguibr/gridwar/session"
	"github.com/lguibr/gridwar/spawn"
)

// PendingJoin is one entry in the spawn wait queue: a join that
// parsed fine but found no free spawn at the time, waiting for the
// allocator to free one up on a later tick.
type PendingJoin struct {
	ClientID   string
	PlayerID   string
	PlayerName string
}

// TickResult is everything that happened during one RunTick call. The
// caller (the per-connection wiring one layer up) turns this into
// actual outbound frames: PLAYER_JOINED for each Placed entry,
// PLAYER_LEFT for each Evicted id, and a connection close with
// SLOW_CONSUMER for each SlowConsumer id.
type TickResult struct {
	Tick          int
	Evicted       []string
	Placed        []PlacedJoin
	SlowConsumers []string
}

// PlacedJoin is a wait-queue entry that found a spawn this tick.
type PlacedJoin struct {
	ClientID string
	Player   *game.Player
}

// Scheduler runs the fixed-cadence broadcast tick (spec §4.6): advance
// the tick, evict disconnect-grace expirations, re-drain the wait
// queue, snapshot the world, and fan a STATE_UPDATE out to every
// subscribed connection, dropping it (never the event messages) for
// any connection whose send buffer is over the high-water mark.
type Scheduler struct {
	core     *game.Core
	registry *session.Registry
	waiting  spawn.Queue[PendingJoin]

	subscribers map[string]*actorkit.Address
	dropStreak  map[string]int
	dropLimit   int
}

// NewScheduler builds a Scheduler over core and registry. dropLimit is
// the number of consecutive dropped STATE_UPDATE sends (buffer full)
// before a connection is reported as a slow consumer.
func NewScheduler(core *game.Core, registry *session.Registry, dropLimit int) *Scheduler {
	return &Scheduler{
		core:        core,
		registry:    registry,
		subscribers: make(map[string]*actorkit.Address),
		dropStreak:  make(map[string]int),
		dropLimit:   dropLimit,
	}
}

// Subscribe registers a joined connection's outbound address to
// receive STATE_UPDATE frames on every tick.
func (s *Scheduler) Subscribe(clientId string, addr *actorkit.Address) {
	s.subscribers[clientId] = addr
	s.dropStreak[clientId] = 0
}

// Unsubscribe removes a connection, e.g. after it closes.
func (s *Scheduler) Unsubscribe(clientId string) {
	delete(s.subscribers, clientId)
	delete(s.dropStreak, clientId)
}

// Enqueue adds a join request that found no spawn to the FIFO wait
// queue, to be retried on every subsequent tick until it succeeds or
// the connection closes (see Dequeue).
func (s *Scheduler) Enqueue(j PendingJoin) {
	s.waiting.Push(j)
}

// Dequeue removes a waiting join for a connection that closed before
// a spawn freed up.
func (s *Scheduler) Dequeue(clientId string) {
	s.waiting.Remove(func(j PendingJoin) bool { return j.ClientID == clientId })
}

// RunTick executes one full broadcast cycle.
func (s *Scheduler) RunTick() TickResult {
	tick := s.core.AdvanceTick()

	evicted := s.registry.EvictExpired(tick)
	for _, id := range evicted {
		s.core.Evict(id)
	}

	placed := s.drainWaitQueue()

	snapshot := s.core.Snapshot()
	frame, err := protocol.Encode(protocol.Message{
		Type: protocol.TypeStateUpdate,
		Payload: map[string]interface{}{
			"tick":     snapshot.Tick,
			"score":    snapshot.Score,
			"players":  snapshot.Players,
			"entities": snapshot.Entities,
		},
	})

	var slow []string
	if err == nil {
		slow = s.fanOut(frame)
	}

	return TickResult{Tick: tick, Evicted: evicted, Placed: placed, SlowConsumers: slow}
}

// drainWaitQueue retries every pending join in arrival order, removing
// and returning the ones that found a spawn this tick. Entries that
// still can't be placed stay queued for the next tick, in their
// original relative order.
func (s *Scheduler) drainWaitQueue() []PlacedJoin {
	var placed []PlacedJoin
	pending := s.waiting.Snapshot()
	s.waiting = spawn.Queue[PendingJoin]{}

	for _, j := range pending {
		player, ok := s.core.Retry(j.PlayerID, j.PlayerName)
		if ok {
			placed = append(placed, PlacedJoin{ClientID: j.ClientID, Player: player})
		} else {
			s.waiting.Push(j)
		}
	}
	return placed
}

// fanOut delivers frame to every subscriber, tracking consecutive
// buffer-full drops. A subscriber that crosses dropLimit is reported
// as a slow consumer and unsubscribed; the caller is responsible for
// actually closing that connection with SLOW_CONSUMER.
func (s *Scheduler) fanOut(frame []byte) []string {
	var slow []string
	for id, addr := range s.subscribers {
		if addr.TrySend(frame) {
			s.dropStreak[id] = 0
			continue
		}
		s.dropStreak[id]++
		if s.dropStreak[id] >= s.dropLimit {
			slow = append(slow, id)
		}
	}
	for _, id := range slow {
		s.Unsubscribe(id)
	}
	return slow
}
