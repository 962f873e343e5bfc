package main

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	sendBufferSize = 256
)

// Client binds one websocket connection to a (room, session) pair. The
// session id is minted server-side at upgrade time and stays stable for
// the connection's lifetime; the binding happens on the first joinRoom
// frame.
type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	sessionID string
	ip        string
	send      chan []byte
	done      chan struct{}

	// Set by ReadPump on a successful join; nil until then. player is
	// owned by the room and only read or written under the room lock.
	room   *Room
	player *Player

	closeOnce sync.Once
}

func NewClient(hub *Hub, conn *websocket.Conn, ip string) *Client {
	return &Client{
		hub:       hub,
		conn:      conn,
		sessionID: uuid.NewString(),
		ip:        ip,
		send:      make(chan []byte, sendBufferSize),
		done:      make(chan struct{}),
	}
}

// Send queues a frame without blocking; a full buffer drops the frame
// rather than stalling the caller. The send channel is never closed, so a
// frame racing a teardown is dropped, never a panic.
func (c *Client) Send(frame []byte) {
	if frame == nil {
		return
	}
	select {
	case c.send <- frame:
	default:
	}
}

// Close signals the write side to finish, exactly once. WritePump drains
// whatever is still buffered, emits a close frame, and closes the
// connection.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

// ReadPump decodes inbound intents and dispatches them. Any exit —
// graceful close, network drop, read deadline — funnels through the same
// deferred leave, so an abrupt disconnect needs no goodbye message.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Leave(c)
		c.Close()
	}()

	c.conn.SetReadLimit(c.hub.cfg.MaxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug().Err(err).Str("session", c.sessionID).Msg("read error")
			}
			return
		}

		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			log.Debug().Err(err).Str("session", c.sessionID).Msg("malformed frame dropped")
			continue
		}

		if c.room == nil {
			// The join handshake is the only frame accepted before binding.
			if env.Type != "joinRoom" {
				continue
			}
			var in joinRoomIntent
			if err := json.Unmarshal(env.Data, &in); err != nil {
				continue
			}
			if err := c.hub.Join(c, in); err != nil {
				c.sendRejection(err)
				return
			}
			continue
		}

		switch env.Type {
		case "move":
			var in moveIntent
			if err := json.Unmarshal(env.Data, &in); err != nil {
				continue
			}
			c.hub.Move(c, in)
		case "claim":
			var in claimIntent
			if err := json.Unmarshal(env.Data, &in); err != nil {
				continue
			}
			c.hub.Claim(c, in)
		case "joinRoom":
			// Already bound; a second join is a client bug, not an error.
		default:
			log.Debug().Str("session", c.sessionID).Str("type", env.Type).Msg("unknown intent dropped")
		}
	}
}

// sendRejection reports a failed join. A full room gets the dedicated
// roomFull frame so clients can offer another room to retry.
func (c *Client) sendRejection(err error) {
	if err == ErrRoomFull {
		c.Send(encodeEvent("roomFull", nil))
		return
	}
	c.Send(encodeEvent("error", errorEvent{Code: errorCode(err)}))
}

// WritePump owns all writes on the connection, including keepalive pings,
// and is the only place the connection is closed from the write side.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case frame := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-c.done:
			// Flush what is already queued, then say goodbye.
			for {
				select {
				case frame := <-c.send:
					_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
					if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
						return
					}
				default:
					_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
					_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
					return
				}
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
