package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/chip8lab/chippy/internal/chip8"
	"github.com/chip8lab/chippy/internal/snapshot"
)

var (
	debugFrameROMPath string
	debugFrameSteps   int
	debugFrameOut     string
)

// debugFrameCmd runs a ROM headless for a fixed number of instructions (no
// scheduler, no real-time timers) and writes a PNG snapshot - a quick way to
// eyeball a ROM's display output without a browser or WebSocket client.
var debugFrameCmd = &cobra.Command{
	Use:   "debug-frame",
	Short: "run a ROM headless for N steps and write a PNG snapshot of the framebuffer",
	Args:  cobra.NoArgs,
	Run:   runDebugFrame,
}

func init() {
	debugFrameCmd.Flags().StringVar(&debugFrameROMPath, "rom", "", "path to a .ch8 ROM")
	debugFrameCmd.Flags().IntVar(&debugFrameSteps, "steps", 1000, "number of instructions to execute before snapshotting")
	debugFrameCmd.Flags().StringVar(&debugFrameOut, "out", "frame.png", "output PNG path")
	debugFrameCmd.MarkFlagRequired("rom")
}

func runDebugFrame(cmd *cobra.Command, args []string) {
	rom, err := os.ReadFile(debugFrameROMPath)
	if err != nil {
		fmt.Printf("error reading rom: %v\n", err)
		os.Exit(1)
	}

	m := chip8.NewMachine()
	if err := m.LoadROM(rom); err != nil {
		fmt.Printf("error loading rom: %v\n", err)
		os.Exit(1)
	}

	for i := 0; i < debugFrameSteps; i++ {
		result := m.Step()
		switch result.Outcome {
		case chip8.Halted:
			fmt.Println("machine halted")
			i = debugFrameSteps
		case chip8.Crashed:
			fmt.Printf("machine crashed: %v\n", result.Err)
			os.Exit(1)
		case chip8.NeedKey:
			fmt.Println("machine is waiting for a key; stopping early")
			i = debugFrameSteps
		}
	}

	f, err := os.Create(debugFrameOut)
	if err != nil {
		fmt.Printf("error creating output file: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	status := snapshot.Status{DT: m.DT, ST: m.ST, Sound: m.SoundOn(), Message: fmt.Sprintf("%d steps", debugFrameSteps)}
	if err := snapshot.Encode(f, m.Screen[:], status); err != nil {
		fmt.Printf("error encoding snapshot: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("wrote %s\n", debugFrameOut)
}
