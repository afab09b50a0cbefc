package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/andrewthecodertx/board-core/pkg/board"
	"github.com/andrewthecodertx/board-core/pkg/cartridge"
)

func newDumpBanksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dump-banks <rom>",
		Short: "Print the resolved PRG/CHR/nametable bank layout after reset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rom, err := cartridge.LoadFromFile(args[0])
			if err != nil {
				return err
			}
			b, err := rom.Bind(noopBus{}, 1, 1)
			if err != nil {
				return err
			}
			dumpSlots("PRG", b.PRGBanks[:])
			dumpSlots("CHR0", b.CHRBanks0[:])
			if b.Descriptor.InitCHR1 != nil {
				dumpSlots("CHR1", b.CHRBanks1[:])
			}
			dumpSlots("NT", b.NTBanks[:])
			fmt.Printf("mirroring: %v\n", b.Mirroring)
			return nil
		},
	}
}

func dumpSlots(label string, banks []board.Bank) {
	for i, bk := range banks {
		if bk.Size == 0 {
			continue
		}
		fmt.Printf("%-4s[%d] addr=%#06x size=%#06x bank=%d type=%v\n",
			label, i, bk.Address, bk.Size, bk.BankIndex, bk.Type)
	}
}
