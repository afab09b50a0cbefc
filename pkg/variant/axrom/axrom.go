// Package axrom implements the AxROM board: a single switchable 32 KiB
// PRG window with mapper-controlled single-screen mirroring and fixed
// CHR-RAM, grounded on the teacher's pkg/cartridge/mapper7.go.
package axrom

import "github.com/andrewthecodertx/board-core/pkg/board"

func selectPRGAndMirroring(b *board.Board, addr uint16, value uint8, cycle uint32) {
	b.PRGBanks[0].BankIndex = int32(value & 0x07)
	if value&0x10 != 0 {
		b.Mirroring = board.MirrorSingleHigh
	} else {
		b.Mirroring = board.MirrorSingleLow
	}
	b.SyncPRG()
	b.SyncNametables()
}

func init() {
	board.Register(&board.Descriptor{
		Tag:           "AxROM",
		Name:          "AxROM",
		MapperName:    "iNES Mapper 7",
		MaxPRGROMSize: 256 * 1024,
		MaxCHRROMSize: 0,
		InitPRG: []board.Bank{
			{BankIndex: 0, Size: 0x8000, Address: 0x8000, Type: board.ChipROM, Perm: board.PermRead},
		},
		InitCHR0: []board.Bank{
			{BankIndex: 0, Size: 0x2000, Address: 0x0000, Type: board.ChipAuto, Perm: board.PermReadWrite},
		},
		WriteHandlers: []board.HandlerEntry{
			{Fn: selectPRGAndMirroring, Base: 0x8000, Size: 0x8000},
		},
	})
}
