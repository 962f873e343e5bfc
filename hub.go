package main

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

const maxNickLen = 20

// Hub owns the process-wide room table and the periodic phase tick. Room
// mutation itself is serialized by each room's own lock; the hub lock only
// guards the table, so check-then-insert on a first join is atomic and two
// concurrent joins to a new id can never produce two rooms.
type Hub struct {
	cfg   *Config
	clock clockwork.Clock

	mu    sync.Mutex
	rooms map[string]*Room
}

func NewHub(cfg *Config, clock clockwork.Clock) *Hub {
	return &Hub{
		cfg:   cfg,
		clock: clock,
		rooms: make(map[string]*Room),
	}
}

// Run drives the once-per-second phase tick for every live room until the
// context is cancelled.
func (h *Hub) Run(ctx context.Context) {
	ticker := h.clock.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case <-ticker.Chan():
			h.tick()
		}
	}
}

// getOrCreate returns the live room for id, constructing one when absent.
// A room whose round has ended is replaced rather than returned: once a
// round is over the id always yields a brand-new room with a fresh pool
// and a fresh clock.
func (h *Hub) getOrCreate(id string) *Room {
	h.mu.Lock()
	defer h.mu.Unlock()

	if room, ok := h.rooms[id]; ok && room.Phase() != PhaseEnded {
		return room
	}
	room := NewRoom(id, h.cfg, h.clock)
	h.rooms[id] = room
	log.Info().Str("room", id).Int("eggs", h.cfg.EggCount).Msg("room created")
	return room
}

// removeRoom drops the room from the table if it is still the one
// registered under its id. Safe to call when absent or already replaced.
func (h *Hub) removeRoom(room *Room) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if current, ok := h.rooms[room.id]; ok && current == room {
		delete(h.rooms, room.id)
		log.Info().Str("room", room.id).Msg("room destroyed")
	}
}

func (h *Hub) RoomCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms)
}

func (h *Hub) PlayerCount() int {
	h.mu.Lock()
	rooms := make([]*Room, 0, len(h.rooms))
	for _, room := range h.rooms {
		rooms = append(rooms, room)
	}
	h.mu.Unlock()

	total := 0
	for _, room := range rooms {
		total += room.PlayerCount()
	}
	return total
}

// Join binds the connection to a room and a player, sends the full-state
// snapshot to the joiner and the join delta to everyone else. A non-nil
// error means the session stays unjoined and the caller should close.
func (h *Hub) Join(c *Client, in joinRoomIntent) error {
	nick := strings.TrimSpace(in.Nick)
	if nick == "" {
		return ErrNickRequired
	}
	if runes := []rune(nick); len(runes) > maxNickLen {
		nick = string(runes[:maxNickLen])
	}
	avatar := in.Avatar
	if avatar < 0 {
		avatar = 0
	}
	roomID := in.RoomID
	if roomID == "" {
		roomID = h.cfg.DefaultRoomID
	}

	room := h.getOrCreate(roomID)
	player, err := room.Join(c, nick, avatar)
	if err != nil {
		return err
	}
	c.room = room

	players, eggs := room.Snapshot()
	c.Send(encodeEvent("init", initEvent{
		SelfID:           c.sessionID,
		Players:          players,
		Eggs:             eggs,
		Phase:            room.Phase(),
		SecondsRemaining: room.SecondsRemaining(),
	}))
	room.Broadcast(c.sessionID, encodeEvent("playerJoined", playerJoinedEvent{Player: player}))

	log.Info().Str("room", roomID).Str("session", c.sessionID).Str("nick", nick).Msg("session joined")
	return nil
}

// Leave is the single disconnect path, graceful or abrupt. Unjoined
// sessions pass through unchanged.
func (h *Hub) Leave(c *Client) {
	room := c.room
	if room == nil {
		return
	}
	removed, empty := room.Leave(c.sessionID)
	if removed {
		room.Broadcast(c.sessionID, encodeEvent("playerLeft", playerLeftEvent{ID: c.sessionID}))
	}
	if empty {
		// Empty rooms go away immediately; phase expiry is not awaited.
		h.removeRoom(room)
	}
}

// Move applies a position update and fans the delta out to the other
// sessions. Intents from sessions no longer tracked are dropped.
func (h *Hub) Move(c *Client, in moveIntent) {
	if err := c.room.ApplyMove(c.sessionID, in.X, in.Y); err != nil {
		return
	}
	c.room.Broadcast(c.sessionID, encodeEvent("playerMoved", playerMovedEvent{
		ID: c.sessionID,
		X:  in.X,
		Y:  in.Y,
	}))
}

// Claim runs the claim arbiter. An award is broadcast to every session in
// the room, the claimant included, so all observers converge on the same
// truth; a rejection goes back to the requester alone.
func (h *Hub) Claim(c *Client, in claimIntent) {
	switch err := c.room.Claim(c.sessionID, in.EggID); err {
	case nil:
		c.room.Broadcast("", encodeEvent("claimed", claimedEvent{
			EggID:    in.EggID,
			PlayerID: c.sessionID,
		}))
	case ErrUnknownSession:
		// Session raced its own disconnect; nothing to answer.
	default:
		c.Send(encodeEvent("error", errorEvent{Code: errorCode(err)}))
	}
}

// tick recomputes the phase for every live room and broadcasts remaining
// time. The tick that first observes Ended broadcasts the terminal
// roundOver instead and tears the room down.
func (h *Hub) tick() {
	h.mu.Lock()
	rooms := make([]*Room, 0, len(h.rooms))
	for _, room := range h.rooms {
		rooms = append(rooms, room)
	}
	h.mu.Unlock()

	for _, room := range rooms {
		phase := room.Phase()
		if phase != PhaseEnded {
			room.Broadcast("", encodeEvent("tick", tickEvent{
				Phase:            phase,
				SecondsRemaining: room.SecondsRemaining(),
			}))
			continue
		}

		if scoreboard, first := room.FinishRound(); first {
			room.Broadcast("", encodeEvent("roundOver", roundOverEvent{Players: scoreboard}))
			log.Info().Str("room", room.id).Int("players", len(scoreboard)).Msg("round over")
		}
		h.removeRoom(room)
		room.CloseAll()
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	rooms := h.rooms
	h.rooms = make(map[string]*Room)
	h.mu.Unlock()

	for _, room := range rooms {
		room.CloseAll()
	}
}
