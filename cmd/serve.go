package cmd

import (
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/chip8lab/chippy/internal/chip8"
	"github.com/chip8lab/chippy/internal/wsadapter"
)

var (
	serveROMPath string
	serveAddr    string
	serveTPS     int

	quirkDisplayWait        bool
	quirkClipping           bool
	quirkShifting           bool
	quirkLoadStoreIncrement bool
	quirkLogicResetsVF      bool
	quirkHaltOnSentinel     bool
)

// serveCmd starts the reference HTTP/WebSocket adapter: POST /rom to load a
// ROM, GET /ws for the bidirectional client channel, GET /debug/frame.png
// for a one-shot PNG snapshot.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "serve the chippy interpreter over HTTP/WebSocket",
	Args:  cobra.NoArgs,
	Run:   runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveROMPath, "rom", "", "path to a .ch8 ROM to load at startup")
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "address to listen on")
	serveCmd.Flags().IntVar(&serveTPS, "tps", 700, "target CHIP-8 instructions per second")

	d := chip8.DefaultQuirks()
	serveCmd.Flags().BoolVar(&quirkDisplayWait, "quirk-display-wait", d.DisplayWait, "Dxyn yields to the next 60Hz frame boundary")
	serveCmd.Flags().BoolVar(&quirkClipping, "quirk-clipping", d.Clipping, "sprite pixels past the edge are dropped instead of wrapped")
	serveCmd.Flags().BoolVar(&quirkShifting, "quirk-shifting", d.Shifting, "8xy6/8xyE read from Vy instead of Vx")
	serveCmd.Flags().BoolVar(&quirkLoadStoreIncrement, "quirk-load-store-increment", d.LoadStoreIncrement, "Fx55/Fx65 advance I by x+1")
	serveCmd.Flags().BoolVar(&quirkLogicResetsVF, "quirk-logic-resets-vf", d.LogicResetsVF, "8xy1/8xy2/8xy3 clear VF")
	serveCmd.Flags().BoolVar(&quirkHaltOnSentinel, "quirk-halt-sentinel", d.HaltOnSentinel, "loader appends the 0xFFFF halt sentinel after the ROM")
}

func quirksFromFlags() chip8.Quirks {
	return chip8.Quirks{
		DisplayWait:        quirkDisplayWait,
		Clipping:           quirkClipping,
		Shifting:           quirkShifting,
		LoadStoreIncrement: quirkLoadStoreIncrement,
		LogicResetsVF:      quirkLogicResetsVF,
		HaltOnSentinel:     quirkHaltOnSentinel,
	}
}

func runServe(cmd *cobra.Command, args []string) {
	srv := wsadapter.NewServer(quirksFromFlags(), serveTPS)

	if serveROMPath != "" {
		rom, err := os.ReadFile(serveROMPath)
		if err != nil {
			fmt.Printf("error reading rom: %v\n", err)
			os.Exit(1)
		}
		if _, err := srv.LoadROM(rom); err != nil {
			fmt.Printf("error loading rom: %v\n", err)
			os.Exit(1)
		}
	}

	fmt.Printf("chippy listening on %s (tps=%d)\n", serveAddr, serveTPS)
	if err := http.ListenAndServe(serveAddr, srv); err != nil {
		fmt.Printf("server error: %v\n", err)
		os.Exit(1)
	}
}
