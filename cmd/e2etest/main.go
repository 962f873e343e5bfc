// E2E test: connects two WebSocket clients to a live egg hunt server and
// races them for the same egg.
// Run the server with HUNT_WAIT_SECONDS=0 so claims are accepted right away:
//
//	HUNT_WAIT_SECONDS=0 go run . &
//	go run ./cmd/e2etest -server ws://localhost:4001/ws
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/gorilla/websocket"
)

var (
	serverURL = flag.String("server", "ws://localhost:4001/ws", "server WebSocket URL")
	roomID    = flag.String("room", "e2e-test-room", "room to join")
	eggID     = flag.Int("egg", 0, "egg both clients race for")
)

type envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

func main() {
	flag.Parse()
	log.SetFlags(log.Ltime | log.Lmicroseconds)

	log.Println(">> Connecting hunter A...")
	connA := dialAndJoin("Alice", 0)
	defer connA.Close()
	initA := waitFor(connA, "init")
	var selfA struct {
		SelfID string `json:"selfId"`
	}
	mustUnmarshal(initA, &selfA)
	log.Printf("   A connected as %s ✓", selfA.SelfID)

	log.Println(">> Connecting hunter B...")
	connB := dialAndJoin("Bob", 1)
	defer connB.Close()
	initB := waitFor(connB, "init")
	var selfB struct {
		SelfID string `json:"selfId"`
	}
	mustUnmarshal(initB, &selfB)
	log.Printf("   B connected as %s ✓", selfB.SelfID)

	log.Println(">> A waiting for B's join broadcast...")
	waitFor(connA, "playerJoined")
	log.Println("   playerJoined received ✓")

	log.Println(">> A moving, B watching...")
	send(connA, "move", map[string]any{"x": 123.0, "y": 456.0})
	moved := waitFor(connB, "playerMoved")
	var mv struct {
		ID string  `json:"id"`
		X  float64 `json:"x"`
	}
	mustUnmarshal(moved, &mv)
	if mv.ID != selfA.SelfID || mv.X != 123.0 {
		log.Fatalf("unexpected playerMoved: %s", moved)
	}
	log.Println("   playerMoved received ✓")

	log.Printf(">> Both racing for egg %d...", *eggID)
	send(connA, "claim", map[string]any{"eggId": *eggID})
	send(connB, "claim", map[string]any{"eggId": *eggID})

	var winA, winB struct {
		EggID    int    `json:"eggId"`
		PlayerID string `json:"playerId"`
	}
	mustUnmarshal(waitFor(connA, "claimed"), &winA)
	mustUnmarshal(waitFor(connB, "claimed"), &winB)
	if winA.PlayerID != winB.PlayerID || winA.EggID != *eggID {
		log.Fatalf("award diverged: A saw %+v, B saw %+v", winA, winB)
	}
	log.Printf("   exactly one winner (%s), both observers agree ✓", winA.PlayerID)

	fmt.Println()
	log.Println("═══════════════════════════════")
	log.Println("  E2E TEST PASSED ✓")
	log.Println("═══════════════════════════════")
}

func dialAndJoin(nick string, avatar int) *websocket.Conn {
	conn, _, err := websocket.DefaultDialer.Dial(*serverURL, nil)
	if err != nil {
		log.Fatalf("dial: %v", err)
	}
	send(conn, "joinRoom", map[string]any{"roomId": *roomID, "nick": nick, "avatar": avatar})
	return conn
}

func send(conn *websocket.Conn, typ string, data any) {
	raw, err := json.Marshal(data)
	if err != nil {
		log.Fatalf("marshal %s: %v", typ, err)
	}
	if err := conn.WriteJSON(envelope{Type: typ, Data: raw}); err != nil {
		log.Fatalf("send %s: %v", typ, err)
	}
}

// waitFor reads frames until one of the wanted type arrives, skipping
// ticks and unrelated deltas.
func waitFor(conn *websocket.Conn, typ string) json.RawMessage {
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		var env envelope
		if err := conn.ReadJSON(&env); err != nil {
			log.Fatalf("waiting for %q: %v", typ, err)
		}
		if env.Type == "roomFull" {
			log.Fatalf("join rejected: room full")
		}
		if env.Type == typ {
			return env.Data
		}
	}
}

func mustUnmarshal(raw json.RawMessage, v any) {
	if err := json.Unmarshal(raw, v); err != nil {
		log.Fatalf("unmarshal: %v", err)
	}
}
