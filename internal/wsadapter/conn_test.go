package wsadapter

import (
	"context"
	"testing"
	"time"

	"github.com/chip8lab/chippy/internal/chip8"
)

// These tests exercise the parts of Conn that never touch the underlying
// *websocket.Conn (handleBinary, handleText, DequeueKey, TakeSpeed), so a nil
// ws is safe to construct with.

func TestHandleBinarySetsKeypadState(t *testing.T) {
	m := chip8.NewMachine()
	c := NewConn(nil, m)

	c.handleBinary([]byte{keyStateDown, 0x5})
	if !m.KeyPressed(5) {
		t.Error("key 5 should be pressed after a down frame")
	}

	c.handleBinary([]byte{keyStateUp, 0x5})
	if m.KeyPressed(5) {
		t.Error("key 5 should be released after an up frame")
	}
}

func TestHandleBinaryIgnoresShortOrOutOfRangeFrames(t *testing.T) {
	m := chip8.NewMachine()
	c := NewConn(nil, m)

	c.handleBinary([]byte{keyStateDown}) // too short
	c.handleBinary([]byte{keyStateDown, 0x10}) // key index out of range

	for i := 0; i < 16; i++ {
		if m.KeyPressed(i) {
			t.Errorf("key %d should not have been touched by a malformed frame", i)
		}
	}
}

func TestHandleTextSetSpeed(t *testing.T) {
	m := chip8.NewMachine()
	c := NewConn(nil, m)

	c.handleText([]byte(`{"type":"set_speed","tps":900}`))

	tps, ok := c.TakeSpeed()
	if !ok || tps != 900 {
		t.Fatalf("expected TakeSpeed to report (900, true), got (%d, %v)", tps, ok)
	}

	// A second call with nothing new queued reports ok=false.
	if _, ok := c.TakeSpeed(); ok {
		t.Error("TakeSpeed should only report a speed once per set_speed message")
	}
}

func TestHandleTextSetSpeedClampsBelowOne(t *testing.T) {
	m := chip8.NewMachine()
	c := NewConn(nil, m)

	c.handleText([]byte(`{"type":"set_speed","tps":0}`))

	tps, ok := c.TakeSpeed()
	if !ok || tps != 1 {
		t.Fatalf("expected tps clamped to 1, got (%d, %v)", tps, ok)
	}
}

func TestHandleTextKeyEventFx0A(t *testing.T) {
	m := chip8.NewMachine()
	c := NewConn(nil, m)

	c.handleText([]byte(`{"type":"key_event_fx0a","value":11}`))

	ctx := context.Background()
	key, ok := c.DequeueKey(ctx, time.Second)
	if !ok || key != 11 {
		t.Fatalf("expected DequeueKey to yield (11, true), got (%d, %v)", key, ok)
	}
}

func TestHandleTextKeyEventFx0AIgnoresOutOfRange(t *testing.T) {
	m := chip8.NewMachine()
	c := NewConn(nil, m)

	c.handleText([]byte(`{"type":"key_event_fx0a","value":20}`))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, ok := c.DequeueKey(ctx, 20*time.Millisecond); ok {
		t.Error("an out-of-range key_event_fx0a value should never reach the key queue")
	}
}

func TestHandleTextMalformedJSONIsIgnored(t *testing.T) {
	m := chip8.NewMachine()
	c := NewConn(nil, m)

	c.handleText([]byte(`not json`))

	if _, ok := c.TakeSpeed(); ok {
		t.Error("malformed input should never produce a speed change")
	}
}

func TestDequeueKeyTimesOutWhenEmpty(t *testing.T) {
	m := chip8.NewMachine()
	c := NewConn(nil, m)

	ctx := context.Background()
	start := time.Now()
	_, ok := c.DequeueKey(ctx, 20*time.Millisecond)
	if ok {
		t.Error("DequeueKey should report ok=false when no key was queued")
	}
	if time.Since(start) < 15*time.Millisecond {
		t.Error("DequeueKey should have waited roughly the full timeout")
	}
}

func TestDequeueKeyRespectsCancellation(t *testing.T) {
	m := chip8.NewMachine()
	c := NewConn(nil, m)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(5 * time.Millisecond)
		cancel()
	}()

	_, ok := c.DequeueKey(ctx, time.Second)
	if ok {
		t.Error("DequeueKey should report ok=false on cancellation")
	}
}
