// Package cnrom implements the CNROM board: fixed PRG-ROM (mirrored if
// only 16 KiB is present) with a switchable 8 KiB CHR-ROM bank, grounded
// on the teacher's pkg/cartridge/mapper3.go.
package cnrom

import "github.com/andrewthecodertx/board-core/pkg/board"

func selectCHR(b *board.Board, addr uint16, value uint8, cycle uint32) {
	b.CHRBanks0[0].BankIndex = int32(value)
	b.SyncCHR()
}

func init() {
	board.Register(&board.Descriptor{
		Tag:           "CNROM",
		Name:          "CNROM",
		MapperName:    "iNES Mapper 3",
		MaxPRGROMSize: 32 * 1024,
		MaxCHRROMSize: 32 * 1024,
		InitPRG: []board.Bank{
			{BankIndex: 0, Size: 0x4000, Address: 0x8000, Type: board.ChipAuto, Perm: board.PermRead},
			{BankIndex: -1, Size: 0x4000, Address: 0xC000, Type: board.ChipAuto, Perm: board.PermRead},
		},
		InitCHR0: []board.Bank{
			{BankIndex: 0, Size: 0x2000, Address: 0x0000, Type: board.ChipAuto, Perm: board.PermReadWrite},
		},
		WriteHandlers: []board.HandlerEntry{
			{Fn: selectCHR, Base: 0x8000, Size: 0x8000},
		},
	})
}
