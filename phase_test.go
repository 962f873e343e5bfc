package main

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDerivePhase(t *testing.T) {
	waitLen := 120 * time.Second
	activeLen := 480 * time.Second

	tests := []struct {
		elapsed time.Duration
		want    Phase
	}{
		{0, PhaseWaiting},
		{119 * time.Second, PhaseWaiting},
		{120 * time.Second, PhaseActive},
		{121 * time.Second, PhaseActive},
		{599 * time.Second, PhaseActive},
		{600 * time.Second, PhaseEnded},
		{601 * time.Second, PhaseEnded},
		{24 * time.Hour, PhaseEnded},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, derivePhase(tt.elapsed, waitLen, activeLen),
			"elapsed=%s", tt.elapsed)
	}
}

func TestDerivePhase_Deterministic(t *testing.T) {
	// Same elapsed time, same phase, regardless of call order or repetition.
	for _, elapsed := range []time.Duration{0, time.Minute, 10 * time.Minute} {
		first := derivePhase(elapsed, 120*time.Second, 480*time.Second)
		for i := 0; i < 3; i++ {
			assert.Equal(t, first, derivePhase(elapsed, 120*time.Second, 480*time.Second))
		}
	}
}

func TestRoom_PhaseFollowsClock(t *testing.T) {
	cfg := testConfig()
	clock := clockwork.NewFakeClock()
	room := NewRoom("phase-room", cfg, clock)

	assert.Equal(t, PhaseWaiting, room.Phase())

	clock.Advance(119 * time.Second)
	assert.Equal(t, PhaseWaiting, room.Phase())

	clock.Advance(1 * time.Second) // elapsed = 120s
	assert.Equal(t, PhaseActive, room.Phase())

	clock.Advance(480 * time.Second) // elapsed = 600s
	assert.Equal(t, PhaseEnded, room.Phase())

	// The phase is derived, not stored: asking again changes nothing.
	assert.Equal(t, PhaseEnded, room.Phase())
}

func TestRoom_SecondsRemaining(t *testing.T) {
	cfg := testConfig()
	clock := clockwork.NewFakeClock()
	room := NewRoom("phase-room", cfg, clock)

	require.Equal(t, 600, room.SecondsRemaining())

	clock.Advance(10 * time.Second)
	assert.Equal(t, 590, room.SecondsRemaining())

	clock.Advance(590 * time.Second)
	assert.Equal(t, 0, room.SecondsRemaining())

	// Floored at zero past the end.
	clock.Advance(time.Hour)
	assert.Equal(t, 0, room.SecondsRemaining())
}

func TestRoom_RejoinReconstructsPhase(t *testing.T) {
	// A client that joins mid-round sees the same derived phase as everyone
	// else; nothing is replayed and nothing is accepted from the client.
	cfg := testConfig()
	clock := clockwork.NewFakeClock()
	room := NewRoom("phase-room", cfg, clock)
	clock.Advance(cfg.WaitLen + 30*time.Second)

	late := newTestClient("s-late")
	_, err := room.Join(late, "latecomer", 0)
	require.NoError(t, err)

	assert.Equal(t, PhaseActive, room.Phase())
	assert.Equal(t, int((cfg.ActiveLen-30*time.Second)/time.Second), room.SecondsRemaining())
}
