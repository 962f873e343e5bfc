package main

import "errors"

var (
	ErrRoomFull       = errors.New("room is full")
	ErrNickRequired   = errors.New("nick must not be empty")
	ErrUnknownSession = errors.New("unknown session")
	ErrUnknownEgg     = errors.New("unknown egg")
	ErrAlreadyClaimed = errors.New("egg already claimed")
	ErrClaimInactive  = errors.New("claims only accepted during the active phase")
	ErrRoundOver      = errors.New("round already over")
)

// errorCode maps a claim/join rejection to its wire code. Unknown-session
// errors never reach the wire: stray intents are dropped, not answered.
func errorCode(err error) string {
	switch {
	case errors.Is(err, ErrRoomFull):
		return "roomFull"
	case errors.Is(err, ErrNickRequired):
		return "nickRequired"
	case errors.Is(err, ErrUnknownEgg):
		return "unknownEgg"
	case errors.Is(err, ErrAlreadyClaimed):
		return "alreadyClaimed"
	case errors.Is(err, ErrClaimInactive):
		return "claimInactive"
	case errors.Is(err, ErrRoundOver):
		return "roundOver"
	default:
		return "internal"
	}
}
