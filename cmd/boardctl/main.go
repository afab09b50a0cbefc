// Command boardctl inspects iNES ROM images and board state and applies
// IPS patches to PRG images, consolidating the teacher's many
// single-purpose cmd/<tool>/main.go debug binaries into one
// subcommand-based tool (DESIGN.md, SPEC_FULL.md §10).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "boardctl:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "boardctl",
		Short:         "Inspect and patch NES cartridge board images",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newInfoCmd(),
		newDumpBanksCmd(),
		newPatchCmd(),
		newIPSCreateCmd(),
	)
	return root
}
