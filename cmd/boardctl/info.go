package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/andrewthecodertx/board-core/pkg/cartridge"
)

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <rom>",
		Short: "Print iNES header fields and the resolved board tag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rom, err := cartridge.LoadFromFile(args[0])
			if err != nil {
				return err
			}
			b, bindErr := rom.Bind(noopBus{}, 1, 1)

			fmt.Printf("mapper id:   %d\n", rom.MapperID)
			fmt.Printf("PRG-ROM:     %d KiB\n", len(rom.PRGROM)/1024)
			fmt.Printf("CHR-ROM:     %d KiB\n", len(rom.CHRROM)/1024)
			fmt.Printf("mirroring:   %v\n", rom.Mirroring)
			fmt.Printf("battery RAM: %v\n", rom.HasSaveRAM)
			fmt.Printf("trainer:     %v\n", rom.HasTrainer)
			if bindErr != nil {
				fmt.Printf("board:       unresolved (%v)\n", bindErr)
				return nil
			}
			fmt.Printf("board:       %s (%s)\n", b.Descriptor.Tag, b.Descriptor.Name)
			return nil
		},
	}
}
