package wsadapter

import (
	"bytes"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/chip8lab/chippy/internal/chip8"
)

func TestHandleLoadROMSuccess(t *testing.T) {
	s := NewServer(chip8.DefaultQuirks(), 700)
	rom := []byte{0x00, 0xE0, 0x12, 0x00}

	req := httptest.NewRequest(http.MethodPost, "/rom", bytes.NewReader(rom))
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp loadResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if resp.Status != "loaded" || resp.Size != len(rom) {
		t.Errorf("unexpected response: %+v", resp)
	}
	if s.currentMachine() == nil {
		t.Error("LoadROM via /rom should populate the current machine")
	}
}

func TestHandleLoadROMEmpty(t *testing.T) {
	s := NewServer(chip8.DefaultQuirks(), 700)

	req := httptest.NewRequest(http.MethodPost, "/rom", bytes.NewReader(nil))
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	var resp loadResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Reason != "ROM_EMPTY" {
		t.Errorf("expected reason ROM_EMPTY, got %q", resp.Reason)
	}
}

func TestHandleLoadROMTooLarge(t *testing.T) {
	s := NewServer(chip8.DefaultQuirks(), 700)
	rom := make([]byte, chip8.MaxROMSize+1)

	req := httptest.NewRequest(http.MethodPost, "/rom", bytes.NewReader(rom))
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	var resp loadResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Reason != "ROM_TOO_LARGE" {
		t.Errorf("expected reason ROM_TOO_LARGE, got %q", resp.Reason)
	}
}

func TestHandleLoadROMRejectsNonPost(t *testing.T) {
	s := NewServer(chip8.DefaultQuirks(), 700)

	req := httptest.NewRequest(http.MethodGet, "/rom", nil)
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", w.Code)
	}
}

func TestHandleWebSocketWithoutROMLoadedConflicts(t *testing.T) {
	s := NewServer(chip8.DefaultQuirks(), 700)

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("expected 409 when no ROM is loaded, got %d", w.Code)
	}
}

func TestHandleDebugFrameWithoutROMLoadedConflicts(t *testing.T) {
	s := NewServer(chip8.DefaultQuirks(), 700)

	req := httptest.NewRequest(http.MethodGet, "/debug/frame.png", nil)
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("expected 409 when no ROM is loaded, got %d", w.Code)
	}
}

func TestHandleDebugFrameReturnsValidPNG(t *testing.T) {
	s := NewServer(chip8.DefaultQuirks(), 700)
	if _, err := s.LoadROM([]byte{0x00, 0xE0}); err != nil {
		t.Fatalf("LoadROM failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/debug/frame.png", nil)
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)

	if w.Header().Get("Content-Type") != "image/png" {
		t.Errorf("expected image/png content type, got %q", w.Header().Get("Content-Type"))
	}
	if _, err := png.Decode(w.Body); err != nil {
		t.Errorf("response body should be a valid PNG: %v", err)
	}
}
