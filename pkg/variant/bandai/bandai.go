// Package bandai implements the Bandai FCG board (iNES mapper 16): eight
// independently switchable 1 KiB CHR banks, a switchable 16 KiB PRG
// window with the last bank fixed, mapper-selected mirroring, and a
// free-running 16-bit M2-clocked IRQ counter (spec.md §11), all driven
// through single-byte registers at $6000-$600C — the FCG sub-family's
// layout, distinct from LZ93D50's $8000-mapped registers. No example
// repo's mapper table covers this family directly; the register layout
// is grounded on original_source/boards/bandai.c's board_bandai_fcg, and
// the IRQ counter reuses pkg/timer/m2 exactly as MMC3 reuses
// pkg/timer/a12.
package bandai

import "github.com/andrewthecodertx/board-core/pkg/board"

func writeCHRBank(b *board.Board, addr uint16, value uint8, cycle uint32) {
	b.CHRBanks0[addr&0x07].BankIndex = int32(value)
	b.SyncCHR()
}

func writePRGBank(b *board.Board, addr uint16, value uint8, cycle uint32) {
	b.PRGBanks[0].BankIndex = int32(value & 0x0F)
	b.SyncPRG()
}

var mirroringTable = []board.Mirroring{
	board.MirrorVertical, board.MirrorHorizontal,
	board.MirrorSingleLow, board.MirrorSingleHigh,
}

func writeMirroring(b *board.Board, addr uint16, value uint8, cycle uint32) {
	b.Mirroring = mirroringTable[value&0x03]
	b.SyncNametables()
}

// writeIRQControl reloads the counter from its latch and sets the IRQ
// enable bit (original_source/boards/bandai.c's case 0x0a). The counter
// itself is free-running: startCounter enables it on init and reset, and
// no register write stops it.
func writeIRQControl(b *board.Board, addr uint16, value uint8, cycle uint32) {
	b.M2.ForceReload(cycle)
	b.M2.SetIRQEnabled(value&0x01 != 0, cycle)
}

func startCounter(b *board.Board) {
	if b.M2 != nil {
		b.M2.SetCounterEnabled(true, 0)
	}
}

func writeIRQCounterLo(b *board.Board, addr uint16, value uint8, cycle uint32) {
	b.M2.SetReloadLo(value, cycle)
}

func writeIRQCounterHi(b *board.Board, addr uint16, value uint8, cycle uint32) {
	b.M2.SetReloadHi(value, cycle)
}

func init() {
	board.Register(&board.Descriptor{
		Tag:           "BANDAI-FCG",
		Name:          "Bandai FCG",
		MapperName:    "iNES Mapper 16",
		MaxPRGROMSize: 256 * 1024,
		MaxCHRROMSize: 256 * 1024,
		InitPRG: []board.Bank{
			{BankIndex: 0, Size: 0x4000, Address: 0x8000, Type: board.ChipROM, Perm: board.PermRead},
			{BankIndex: -1, Size: 0x4000, Address: 0xC000, Type: board.ChipROM, Perm: board.PermRead},
		},
		InitCHR0: []board.Bank{
			{BankIndex: 0, Size: 0x400, Address: 0x0000, Type: board.ChipAuto, Perm: board.PermReadWrite},
			{BankIndex: 1, Size: 0x400, Address: 0x0400, Type: board.ChipAuto, Perm: board.PermReadWrite},
			{BankIndex: 2, Size: 0x400, Address: 0x0800, Type: board.ChipAuto, Perm: board.PermReadWrite},
			{BankIndex: 3, Size: 0x400, Address: 0x0C00, Type: board.ChipAuto, Perm: board.PermReadWrite},
			{BankIndex: 4, Size: 0x400, Address: 0x1000, Type: board.ChipAuto, Perm: board.PermReadWrite},
			{BankIndex: 5, Size: 0x400, Address: 0x1400, Type: board.ChipAuto, Perm: board.PermReadWrite},
			{BankIndex: 6, Size: 0x400, Address: 0x1800, Type: board.ChipAuto, Perm: board.PermReadWrite},
			{BankIndex: 7, Size: 0x400, Address: 0x1C00, Type: board.ChipAuto, Perm: board.PermReadWrite},
		},
		Flags: board.FlagUsesM2Timer,
		Funcs: board.Funcs{
			Init:  func(b *board.Board) error { startCounter(b); return nil },
			Reset: func(b *board.Board, hard bool) { startCounter(b) },
		},
		WriteHandlers: []board.HandlerEntry{
			{Fn: writeCHRBank, Base: 0x6000, Size: 0x0008},
			{Fn: writePRGBank, Base: 0x6008, Size: 0x0001},
			{Fn: writeMirroring, Base: 0x6009, Size: 0x0001},
			{Fn: writeIRQControl, Base: 0x600A, Size: 0x0001},
			{Fn: writeIRQCounterLo, Base: 0x600B, Size: 0x0001},
			{Fn: writeIRQCounterHi, Base: 0x600C, Size: 0x1FF4}, // through $7FFF, the FCG's 8 KiB register window
		},
	})
}
