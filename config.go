package main

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Addr            string
	DefaultRoomID   string
	MaxPlayers      int
	WaitLen         time.Duration
	ActiveLen       time.Duration
	EggCount        int
	WorldWidth      float64
	WorldHeight     float64
	SpawnWidth      float64
	SpawnHeight     float64
	MaxMessageSize  int64
	RateLimitPerIP  float64
	RateLimitBurst  int
	ShutdownTimeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Addr:            envStr("HUNT_ADDR", ":4001"),
		DefaultRoomID:   envStr("HUNT_DEFAULT_ROOM", "lobby"),
		MaxPlayers:      envInt("HUNT_MAX_PLAYERS", 20),
		WaitLen:         time.Duration(envInt("HUNT_WAIT_SECONDS", 120)) * time.Second,
		ActiveLen:       time.Duration(envInt("HUNT_ACTIVE_SECONDS", 480)) * time.Second,
		EggCount:        envInt("HUNT_EGG_COUNT", 1000),
		WorldWidth:      envFloat("HUNT_WORLD_WIDTH", 8000),
		WorldHeight:     envFloat("HUNT_WORLD_HEIGHT", 5000),
		SpawnWidth:      envFloat("HUNT_SPAWN_WIDTH", 5000),
		SpawnHeight:     envFloat("HUNT_SPAWN_HEIGHT", 3000),
		MaxMessageSize:  int64(envInt("HUNT_MAX_MESSAGE_SIZE", 4096)),
		RateLimitPerIP:  float64(envInt("HUNT_RATE_LIMIT_PER_IP", 20)),
		RateLimitBurst:  envInt("HUNT_RATE_LIMIT_BURST", 40),
		ShutdownTimeout: time.Duration(envInt("HUNT_SHUTDOWN_TIMEOUT", 10)) * time.Second,
	}
}

// RoundLen is the total lifetime budget of a room: lobby wait plus active play.
func (c *Config) RoundLen() time.Duration {
	return c.WaitLen + c.ActiveLen
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
