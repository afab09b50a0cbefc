// Package nrom implements the NROM board: no bank switching at all,
// grounded on the teacher's pkg/cartridge/mapper0.go. PRG-ROM is one or
// two fixed 16 KiB windows (a single-bank cartridge mirrors into both,
// which falls out of resolveBankIndex's negative-wrap rule for free);
// CHR is a fixed 8 KiB ROM or RAM window.
package nrom

import "github.com/andrewthecodertx/board-core/pkg/board"

func init() {
	board.Register(&board.Descriptor{
		Tag:           "NROM",
		Name:          "NROM",
		MapperName:    "iNES Mapper 0",
		MaxPRGROMSize: 32 * 1024,
		MaxCHRROMSize: 8 * 1024,
		InitPRG: []board.Bank{
			{BankIndex: 0, Size: 0x4000, Address: 0x8000, Type: board.ChipAuto, Perm: board.PermRead},
			{BankIndex: -1, Size: 0x4000, Address: 0xC000, Type: board.ChipAuto, Perm: board.PermRead},
		},
		InitCHR0: []board.Bank{
			{BankIndex: 0, Size: 0x2000, Address: 0x0000, Type: board.ChipAuto, Perm: board.PermReadWrite},
		},
	})
}
