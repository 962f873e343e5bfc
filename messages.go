package main

import (
	"encoding/json"

	"github.com/rs/zerolog/log"
)

// Envelope is the single frame format in both directions: a type tag plus a
// type-specific payload.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Client → server intents.

type joinRoomIntent struct {
	RoomID string `json:"roomId"`
	Nick   string `json:"nick"`
	Avatar int    `json:"avatar"`
}

type moveIntent struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type claimIntent struct {
	EggID int `json:"eggId"`
}

// Server → client events.

type initEvent struct {
	SelfID           string   `json:"selfId"`
	Players          []Player `json:"players"`
	Eggs             []Egg    `json:"eggs"`
	Phase            Phase    `json:"phase"`
	SecondsRemaining int      `json:"secondsRemaining"`
}

type playerJoinedEvent struct {
	Player Player `json:"player"`
}

type playerLeftEvent struct {
	ID string `json:"id"`
}

type playerMovedEvent struct {
	ID string  `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

type claimedEvent struct {
	EggID    int    `json:"eggId"`
	PlayerID string `json:"playerId"`
}

type tickEvent struct {
	Phase            Phase `json:"phase"`
	SecondsRemaining int   `json:"secondsRemaining"`
}

type roundOverEvent struct {
	Players []Player `json:"players"`
}

type errorEvent struct {
	Code string `json:"code"`
}

// encodeEvent marshals a typed event into a wire frame. Payloads here are
// plain structs of primitives, so a marshal failure is a programming error;
// it is logged and the frame dropped rather than crashing the room.
func encodeEvent(typ string, data any) []byte {
	var raw json.RawMessage
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			log.Error().Err(err).Str("type", typ).Msg("encode event")
			return nil
		}
		raw = b
	}
	frame, err := json.Marshal(Envelope{Type: typ, Data: raw})
	if err != nil {
		log.Error().Err(err).Str("type", typ).Msg("encode envelope")
		return nil
	}
	return frame
}
