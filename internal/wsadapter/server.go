package wsadapter

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/chip8lab/chippy/internal/chip8"
	"github.com/chip8lab/chippy/internal/scheduler"
	"github.com/chip8lab/chippy/internal/snapshot"
)

var upgrader = websocket.Upgrader{
	// Allow all origins: this is a reference/demo adapter, not a
	// production-hardened deployment.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Server is the reference HTTP/WebSocket adapter around one emulation
// session. Loading a new ROM (POST /rom) always builds a fresh
// chip8.Machine - matching original_source/main.py's "chip = chip_8.Chip8()"
// on every /load - rather than resetting fields in place, so no quirk
// override or stale timer state leaks across sessions.
type Server struct {
	mu      sync.Mutex
	machine *chip8.Machine
	quirks  chip8.Quirks
	tps     int

	mux *http.ServeMux
}

// NewServer constructs a Server with no ROM loaded yet; callers typically
// POST /rom once before the first client connects, or call LoadROM directly
// with the ROM bytes.
func NewServer(quirks chip8.Quirks, defaultTPS int) *Server {
	s := &Server{
		quirks: quirks,
		tps:    defaultTPS,
	}
	s.mux = http.NewServeMux()
	s.mux.HandleFunc("/rom", s.handleLoadROM)
	s.mux.HandleFunc("/ws", s.handleWebSocket)
	s.mux.HandleFunc("/debug/frame.png", s.handleDebugFrame)
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// LoadROM loads rom into a fresh Machine, replacing any current session.
func (s *Server) LoadROM(rom []byte) (int, error) {
	m := chip8.NewMachine(chip8.WithQuirks(s.quirks))
	if err := m.LoadROM(rom); err != nil {
		return 0, err
	}
	s.mu.Lock()
	s.machine = m
	s.mu.Unlock()
	return len(rom), nil
}

type loadResponse struct {
	Status string `json:"status"`
	Size   int    `json:"size,omitempty"`
	Reason string `json:"reason,omitempty"`
}

func (s *Server) handleLoadROM(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	rom, err := io.ReadAll(io.LimitReader(r.Body, chip8.MaxROMSize+1))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(loadResponse{Status: "error", Reason: "READ_ERROR"})
		return
	}

	size, err := s.LoadROM(rom)
	switch err {
	case nil:
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(loadResponse{Status: "loaded", Size: size})
	case chip8.ErrROMEmpty:
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(loadResponse{Status: "error", Reason: "ROM_EMPTY"})
	case chip8.ErrROMTooLarge:
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(loadResponse{Status: "error", Reason: "ROM_TOO_LARGE"})
	default:
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(loadResponse{Status: "error", Reason: "INTERNAL"})
	}
}

func (s *Server) currentMachine() *chip8.Machine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.machine
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	m := s.currentMachine()
	if m == nil {
		http.Error(w, "no ROM loaded", http.StatusConflict)
		return
	}

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("wsadapter: upgrade error: %v", err)
		return
	}
	defer ws.Close()

	conn := NewConn(ws, m)
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	go func() {
		conn.ReadLoop()
		cancel()
	}()

	sched := scheduler.New(m, conn, conn, s.tps)
	if err := sched.Run(ctx); err != nil {
		log.Printf("wsadapter: scheduler exited: %v", err)
	}
}

func (s *Server) handleDebugFrame(w http.ResponseWriter, r *http.Request) {
	m := s.currentMachine()
	if m == nil {
		http.Error(w, "no ROM loaded", http.StatusConflict)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	status := snapshot.Status{
		TPS:     s.tps,
		DT:      m.DT,
		ST:      m.ST,
		Sound:   m.SoundOn(),
		Message: "",
	}
	if err := snapshot.Encode(w, m.Screen[:], status); err != nil {
		log.Printf("wsadapter: snapshot encode error: %v", err)
	}
}
