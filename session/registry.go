// File: session/registry.go
package session

import "fmt"

// PlayerRecord is the session registry's view of one player: enough
// to rebind a reconnecting socket without asking Game core anything.
// Game core owns the authoritative x,y once a player is placed; the
// registry's copy here is the "last known position", kept in lockstep
// by whoever calls UpdatePosition after a validated move.
type PlayerRecord struct {
	PlayerID   string
	ClientID   string // empty while disconnected
	X, Y       int
	PlayerName string
}

type disconnectedEntry struct {
	record        PlayerRecord
	expiresAtTick int
}

// Registry maps clientId<->playerId and tracks the disconnect-grace
// table. It is not internally synchronized: callers hold the single
// exclusive Game-instance lock for the duration of any call, the same
// lock that guards player mutation and spawn occupancy.
type Registry struct {
	players       map[string]*PlayerRecord // playerId -> record, live only
	clientToID    map[string]string        // clientId -> playerId, live only
	disconnected  map[string]*disconnectedEntry
	nextPlayerSeq int
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		players:      make(map[string]*PlayerRecord),
		clientToID:   make(map[string]string),
		disconnected: make(map[string]*disconnectedEntry),
	}
}

// NewPlayerID mints the next opaque, unique-for-this-instance id.
func (r *Registry) NewPlayerID() string {
	r.nextPlayerSeq++
	return fmt.Sprintf("player-%d", r.nextPlayerSeq)
}

// DefaultName returns the "Player <n>" fallback display name for a
// freshly minted player id's sequence number.
func (r *Registry) DefaultName() string {
	return fmt.Sprintf("Player %d", r.nextPlayerSeq)
}

// Reconnect looks up requestedPlayerId in the disconnect-grace table.
// On a hit it removes the entry, rebinds the record to clientId, and
// returns it with ok=true. A miss (expired, evicted, or
// never existed — including the post-restart case where the id is
// simply unknown to this process) returns ok=false; the caller must
// treat the request as a fresh join instead.
func (r *Registry) Reconnect(clientId, requestedPlayerId string, currentTick int) (*PlayerRecord, bool) {
	if requestedPlayerId == "" {
		return nil, false
	}
	entry, found := r.disconnected[requestedPlayerId]
	if !found || entry.expiresAtTick < currentTick {
		return nil, false
	}
	delete(r.disconnected, requestedPlayerId)

	rec := entry.record
	rec.ClientID = clientId
	r.players[rec.PlayerID] = &rec
	r.clientToID[clientId] = rec.PlayerID
	return &rec, true
}

// Register creates a brand-new live player record and binds it to
// clientId. Used for first-time joins and for post-restart "reconnect"
// requests whose id was not found in the grace table.
func (r *Registry) Register(clientId, playerId string, x, y int, name string) *PlayerRecord {
	rec := &PlayerRecord{PlayerID: playerId, ClientID: clientId, X: x, Y: y, PlayerName: name}
	r.players[playerId] = rec
	r.clientToID[clientId] = playerId
	return rec
}

// PlayerByClient resolves a live connection's bound player, if any.
func (r *Registry) PlayerByClient(clientId string) (*PlayerRecord, bool) {
	id, ok := r.clientToID[clientId]
	if !ok {
		return nil, false
	}
	rec, ok := r.players[id]
	return rec, ok
}

// UpdatePosition keeps the registry's cached coordinates current after
// a validated move, so a later disconnect snapshots the right spot.
func (r *Registry) UpdatePosition(playerId string, x, y int) {
	if rec, ok := r.players[playerId]; ok {
		rec.X, rec.Y = x, y
	}
}

// Rename updates the cached display name, used by SET_PLAYER_NAME.
func (r *Registry) Rename(playerId, name string) {
	if rec, ok := r.players[playerId]; ok {
		rec.PlayerName = name
	}
}

// Disconnect unbinds clientId's player from its live connection and
// moves it into the disconnect-grace table. Returns the playerId and
// true if clientId was bound to anything.
func (r *Registry) Disconnect(clientId string, currentTick, graceTicks int) (string, bool) {
	id, ok := r.clientToID[clientId]
	if !ok {
		return "", false
	}
	delete(r.clientToID, clientId)
	rec, ok := r.players[id]
	if !ok {
		return id, true
	}
	delete(r.players, id)

	disconnectedCopy := *rec
	disconnectedCopy.ClientID = ""
	r.disconnected[id] = &disconnectedEntry{
		record:        disconnectedCopy,
		expiresAtTick: currentTick + graceTicks,
	}
	return id, true
}

// EvictExpired permanently removes every disconnect-grace entry whose
// grace has elapsed as of currentTick, freeing their cells for good.
// Called once per broadcast tick. Returns the removed playerIds.
func (r *Registry) EvictExpired(currentTick int) []string {
	var evicted []string
	for id, entry := range r.disconnected {
		if entry.expiresAtTick < currentTick {
			delete(r.disconnected, id)
			evicted = append(evicted, id)
		}
	}
	return evicted
}

