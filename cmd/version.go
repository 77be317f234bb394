package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/chip8lab/chippy/internal/chip8"
)

var versionVerbose bool

// versionCmd returns the caller's installed chippy version.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Retrieve the currently installed chippy version",
	Long:  "Run `chippy version` to get your current chippy version",
	Args:  cobra.NoArgs,
	Run:   runVersion,
}

func init() {
	versionCmd.Flags().BoolVar(&versionVerbose, "verbose", false, "also print the boot-time defaults (tps, quirk flags)")
}

func runVersion(cmd *cobra.Command, args []string) {
	if len(args) != 0 {
		fmt.Println("The version command does not take any arguments")
		os.Exit(1)
	}
	fmt.Println(currentReleaseVersion)
	if versionVerbose {
		d := chip8.DefaultQuirks()
		fmt.Printf("default tps: 700\n")
		fmt.Printf("default quirks: display-wait=%t clipping=%t shifting=%t load-store-increment=%t logic-resets-vf=%t halt-sentinel=%t\n",
			d.DisplayWait, d.Clipping, d.Shifting, d.LoadStoreIncrement, d.LogicResetsVF, d.HaltOnSentinel)
	}
}
