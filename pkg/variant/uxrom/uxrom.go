// Package uxrom implements the UxROM board: a single switchable 16 KiB
// PRG window at $8000 with the last bank fixed at $C000, and fixed CHR-
// RAM, grounded on the teacher's pkg/cartridge/mapper2.go.
package uxrom

import "github.com/andrewthecodertx/board-core/pkg/board"

func selectPRG(b *board.Board, addr uint16, value uint8, cycle uint32) {
	b.PRGBanks[0].BankIndex = int32(value)
	b.SyncPRG()
}

func init() {
	board.Register(&board.Descriptor{
		Tag:           "UxROM",
		Name:          "UxROM",
		MapperName:    "iNES Mapper 2",
		MaxPRGROMSize: 256 * 1024,
		MaxCHRROMSize: 0, // CHR-RAM only
		InitPRG: []board.Bank{
			{BankIndex: 0, Size: 0x4000, Address: 0x8000, Type: board.ChipROM, Perm: board.PermRead},
			{BankIndex: -1, Size: 0x4000, Address: 0xC000, Type: board.ChipROM, Perm: board.PermRead},
		},
		InitCHR0: []board.Bank{
			{BankIndex: 0, Size: 0x2000, Address: 0x0000, Type: board.ChipAuto, Perm: board.PermReadWrite},
		},
		WriteHandlers: []board.HandlerEntry{
			{Fn: selectPRG, Base: 0x8000, Size: 0x8000},
		},
	})
}
