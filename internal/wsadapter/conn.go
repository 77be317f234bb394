// Package wsadapter is the reference transport that realizes spec.md §6's
// bidirectional client channel over a real net/http + gorilla/websocket
// server. It is the only package in this repository that imports
// gorilla/websocket; internal/chip8 and internal/scheduler only ever see the
// internal/sink contracts. Grounded on
// lirlia-100day_challenge_backend/day44_go_virtual_router/go_router's
// gorilla/websocket usage pattern.
package wsadapter

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/chip8lab/chippy/internal/chip8"
	"github.com/chip8lab/chippy/internal/sink"
)

const (
	keyStateUp   = 0
	keyStateDown = 1
)

// Conn wraps one WebSocket connection and implements sink.Input and
// sink.Output against it. A Conn is single-session: it is created fresh for
// every accepted /ws upgrade.
type Conn struct {
	ws      *websocket.Conn
	machine *chip8.Machine

	writeMu sync.Mutex

	keyCh   chan uint8
	speedMu sync.Mutex
	speed   int
	hasSped bool
}

// NewConn wraps ws and machine; ReadLoop then applies the connection's
// control/key messages to machine. The returned Conn implements sink.Input and
// sink.Output.
func NewConn(ws *websocket.Conn, machine *chip8.Machine) *Conn {
	return &Conn{
		ws:      ws,
		machine: machine,
		keyCh:   make(chan uint8, 4),
	}
}

// ReadLoop blocks reading client messages until the connection closes or
// errors, dispatching binary key frames and JSON control messages per
// spec.md §6. It should run in its own goroutine for the lifetime of the
// connection.
func (c *Conn) ReadLoop() {
	for {
		msgType, data, err := c.ws.ReadMessage()
		if err != nil {
			return
		}
		switch msgType {
		case websocket.BinaryMessage:
			c.handleBinary(data)
		case websocket.TextMessage:
			c.handleText(data)
		}
	}
}

func (c *Conn) handleBinary(data []byte) {
	if len(data) < 2 {
		return
	}
	state, keyIndex := data[0], data[1]
	if keyIndex > 0xF {
		return
	}
	c.machine.SetKey(int(keyIndex), state == keyStateDown)
}

type controlMessage struct {
	Type  string `json:"type"`
	TPS   *int   `json:"tps"`
	Value *int   `json:"value"`
}

func (c *Conn) handleText(data []byte) {
	var msg controlMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		log.Printf("wsadapter: ignoring malformed control message: %v", err)
		return
	}
	switch msg.Type {
	case "set_speed":
		tps := 1
		if msg.TPS != nil {
			tps = *msg.TPS
		}
		if tps < 1 {
			tps = 1
		}
		c.speedMu.Lock()
		c.speed, c.hasSped = tps, true
		c.speedMu.Unlock()
	case "key_event_fx0a":
		if msg.Value == nil || *msg.Value < 0 || *msg.Value > 0xF {
			return
		}
		select {
		case c.keyCh <- uint8(*msg.Value):
		default:
			// The queue already holds four unconsumed satisfiers; this
			// value is dropped.
		}
	default:
		log.Printf("wsadapter: ignoring unhandled message type %q", msg.Type)
	}
}

// DequeueKey implements sink.Input.
func (c *Conn) DequeueKey(ctx context.Context, timeout time.Duration) (uint8, bool) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case k := <-c.keyCh:
		return k, true
	case <-timer.C:
		return 0, false
	case <-ctx.Done():
		return 0, false
	}
}

// TakeSpeed implements sink.Input.
func (c *Conn) TakeSpeed() (int, bool) {
	c.speedMu.Lock()
	defer c.speedMu.Unlock()
	if !c.hasSped {
		return 0, false
	}
	c.hasSped = false
	return c.speed, true
}

// Frame implements sink.Output.
func (c *Conn) Frame(pixels []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.ws.WriteMessage(websocket.BinaryMessage, pixels)
}

type soundMessage struct {
	Type  string `json:"type"`
	State string `json:"state"`
}

// Sound implements sink.Output.
func (c *Conn) Sound(on bool) error {
	state := "off"
	if on {
		state = "on"
	}
	return c.writeJSON(soundMessage{Type: "sound", State: state})
}

type needKeyMessage struct {
	Type string `json:"type"`
	Vx   uint8  `json:"vx"`
}

// NeedKey implements sink.Output.
func (c *Conn) NeedKey(vx uint8) error {
	return c.writeJSON(needKeyMessage{Type: "need_key", Vx: vx})
}

type statusMessage struct {
	Type  string `json:"type"`
	State string `json:"state"`
}

// Status implements sink.Output.
func (c *Conn) Status(s sink.Status) error {
	return c.writeJSON(statusMessage{Type: "status", State: s.String()})
}

func (c *Conn) writeJSON(v any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.ws.WriteJSON(v)
}
