package main

import (
	"math/rand/v2"
	"sort"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// Phase is the stage of a room's round. It is always derived from elapsed
// time since room creation, never stored, so every observer — including a
// client that just reconnected — converges on the same value.
type Phase string

const (
	PhaseWaiting Phase = "waiting"
	PhaseActive  Phase = "active"
	PhaseEnded   Phase = "ended"
)

// derivePhase maps elapsed time onto the linear Waiting → Active → Ended
// progression. Pure function; both thresholds are fixed per room.
func derivePhase(elapsed, waitLen, activeLen time.Duration) Phase {
	switch {
	case elapsed < waitLen:
		return PhaseWaiting
	case elapsed < waitLen+activeLen:
		return PhaseActive
	default:
		return PhaseEnded
	}
}

// Egg is one collectible. Position is fixed at room creation; ClaimedBy is
// write-once — set by the first successful claim and never cleared.
type Egg struct {
	ID        int     `json:"id"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	ClaimedBy string  `json:"claimedBy,omitempty"`
}

// Player is the authoritative per-session state. Owned by its Room; the
// position is overwritten only by that session's own move intents.
type Player struct {
	ID     string  `json:"id"`
	Nick   string  `json:"nick"`
	Avatar int     `json:"avatar"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Score  int     `json:"score"`
}

// Room is one independent instance of the shared world. A single mutex
// guards players and eggs together, so the claim check-and-set plus score
// increment form one critical section. A room never takes another room's
// lock, so cross-room operations run in parallel.
type Room struct {
	id        string
	cfg       *Config
	clock     clockwork.Clock
	createdAt time.Time

	mu       sync.Mutex
	clients  map[string]*Client
	eggs     []Egg
	finished bool
}

// NewRoom allocates the full egg pool up front; this cost is paid once per
// room, not per player.
func NewRoom(id string, cfg *Config, clock clockwork.Clock) *Room {
	eggs := make([]Egg, cfg.EggCount)
	for i := range eggs {
		eggs[i] = Egg{
			ID: i,
			X:  rand.Float64() * cfg.WorldWidth,
			Y:  rand.Float64() * cfg.WorldHeight,
		}
	}
	return &Room{
		id:        id,
		cfg:       cfg,
		clock:     clock,
		createdAt: clock.Now(),
		clients:   make(map[string]*Client),
		eggs:      eggs,
	}
}

func (r *Room) ID() string { return r.id }

// Join inserts the session at a randomized spawn position. Returns a copy
// of the created player for the join broadcast.
func (r *Room) Join(c *Client, nick string, avatar int) (Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// A join can race the teardown tick on a room fetched just before its
	// round ended; reject instead of stranding the session in a dead room.
	if r.finished {
		return Player{}, ErrRoundOver
	}
	if len(r.clients) >= r.cfg.MaxPlayers {
		return Player{}, ErrRoomFull
	}

	p := &Player{
		ID:     c.sessionID,
		Nick:   nick,
		Avatar: avatar,
		X:      rand.Float64() * r.cfg.SpawnWidth,
		Y:      rand.Float64() * r.cfg.SpawnHeight,
	}
	c.player = p
	r.clients[c.sessionID] = c

	log.Debug().Str("room", r.id).Str("session", c.sessionID).Str("nick", nick).Msg("player joined")
	return *p, nil
}

// Leave removes the session. empty reports whether the room is now
// playerless and should be torn down, independent of phase.
func (r *Room) Leave(sessionID string) (removed bool, empty bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.clients[sessionID]; !ok {
		return false, len(r.clients) == 0
	}
	delete(r.clients, sessionID)
	log.Debug().Str("room", r.id).Str("session", sessionID).Msg("player left")
	return true, len(r.clients) == 0
}

// ApplyMove overwrites the session's position unconditionally. Movement
// validation is out of scope; the position is authoritative because only
// the owning session writes it.
func (r *Room) ApplyMove(sessionID string, x, y float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.clients[sessionID]
	if !ok {
		return ErrUnknownSession
	}
	c.player.X = x
	c.player.Y = y
	return nil
}

// Claim is the arbiter: at most one session is ever awarded a given egg.
// The lookup, the claimed check, the write, and the score increment all
// happen under the room lock, so two near-simultaneous claims for the same
// egg resolve to exactly one award.
func (r *Room) Claim(sessionID string, eggID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.clients[sessionID]
	if !ok {
		return ErrUnknownSession
	}
	if r.phaseLocked() != PhaseActive {
		return ErrClaimInactive
	}
	if eggID < 0 || eggID >= len(r.eggs) {
		return ErrUnknownEgg
	}
	egg := &r.eggs[eggID]
	if egg.ClaimedBy != "" {
		return ErrAlreadyClaimed
	}
	egg.ClaimedBy = sessionID
	c.player.Score++

	log.Debug().Str("room", r.id).Str("session", sessionID).Int("egg", eggID).Msg("egg claimed")
	return nil
}

// Snapshot returns copies of all players (ordered by id) and all eggs, for
// the initial-state sync of a newly joined client.
func (r *Room) Snapshot() ([]Player, []Egg) {
	r.mu.Lock()
	defer r.mu.Unlock()

	players := make([]Player, 0, len(r.clients))
	for _, c := range r.clients {
		players = append(players, *c.player)
	}
	sort.Slice(players, func(i, j int) bool { return players[i].ID < players[j].ID })

	eggs := make([]Egg, len(r.eggs))
	copy(eggs, r.eggs)
	return players, eggs
}

// Scoreboard returns player copies sorted by score, best first.
func (r *Room) Scoreboard() []Player {
	players, _ := r.Snapshot()
	sort.SliceStable(players, func(i, j int) bool { return players[i].Score > players[j].Score })
	return players
}

func (r *Room) Phase() Phase {
	return derivePhase(r.clock.Since(r.createdAt), r.cfg.WaitLen, r.cfg.ActiveLen)
}

// SecondsRemaining counts down to the end of the round across both the
// waiting and active phases, floored at zero.
func (r *Room) SecondsRemaining() int {
	left := r.cfg.RoundLen() - r.clock.Since(r.createdAt)
	if left < 0 {
		left = 0
	}
	return int(left / time.Second)
}

// phaseLocked is Phase for callers already holding r.mu. The derivation
// reads only immutable fields, but claim decisions must see the phase as
// of the critical section.
func (r *Room) phaseLocked() Phase {
	return derivePhase(r.clock.Since(r.createdAt), r.cfg.WaitLen, r.cfg.ActiveLen)
}

// FinishRound marks the room's round as over. The first caller gets the
// final scoreboard and ok=true; later calls are no-ops so roundOver is
// broadcast exactly once.
func (r *Room) FinishRound() ([]Player, bool) {
	r.mu.Lock()
	if r.finished {
		r.mu.Unlock()
		return nil, false
	}
	r.finished = true
	r.mu.Unlock()
	return r.Scoreboard(), true
}

func (r *Room) PlayerCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients)
}

// Broadcast fans a frame out to every session except excludeID (empty
// string excludes nobody). Sends are non-blocking: a session whose send
// buffer is full misses the delta rather than stalling the room.
func (r *Room) Broadcast(excludeID string, frame []byte) {
	if frame == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, c := range r.clients {
		if id == excludeID {
			continue
		}
		select {
		case c.send <- frame:
		default:
		}
	}
}

func (r *Room) CloseAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.clients {
		c.Close()
	}
}
