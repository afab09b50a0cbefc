// Package sunsoft3 implements the Sunsoft-3 board (iNES mapper 67): four
// switchable 2 KiB CHR windows, a single switchable 16 KiB PRG window
// with the last bank fixed, mapper-selected mirroring, and a 16-bit
// M2-clocked IRQ counter loaded one byte at a time through a toggling
// latch, grounded on original_source/boards/sunsoft3.c.
package sunsoft3

import "github.com/andrewthecodertx/board-core/pkg/board"

type variantState struct {
	irqToggle bool // false = next write is high byte, true = low byte
}

func newVariantState() any { return &variantState{} }
func state(b *board.Board) *variantState { return b.VariantState.(*variantState) }

func writeCHRBank(b *board.Board, addr uint16, value uint8, cycle uint32) {
	slot := (addr >> 12) & 0x03 // $8xxx->0, $9xxx->1, $Axxx->2, $Bxxx->3
	b.CHRBanks0[slot].BankIndex = int32(value)
	b.SyncCHR()
}

// writeIRQCounter loads the 16-bit counter one byte at a time through a
// toggling latch that starts pointing at the high byte
// (original_source/boards/sunsoft3.c's irq_counter_load_toggle, 0 on reset).
func writeIRQCounter(b *board.Board, addr uint16, value uint8, cycle uint32) {
	s := state(b)
	if !s.irqToggle {
		b.M2.SetCounterHi(value, cycle)
	} else {
		b.M2.SetCounterLo(value, cycle)
	}
	s.irqToggle = !s.irqToggle
}

func writeIRQControl(b *board.Board, addr uint16, value uint8, cycle uint32) {
	s := state(b)
	s.irqToggle = false
	b.M2.Ack(cycle)
	enabled := value&0x10 != 0
	b.M2.SetIRQEnabled(enabled, cycle)
	b.M2.SetCounterEnabled(enabled, cycle)
}

var mirroringTable = []board.Mirroring{
	board.MirrorVertical, board.MirrorHorizontal,
	board.MirrorSingleLow, board.MirrorSingleHigh,
}

func writeMirroring(b *board.Board, addr uint16, value uint8, cycle uint32) {
	b.Mirroring = mirroringTable[value&0x03]
	b.SyncNametables()
}

func writePRGBank(b *board.Board, addr uint16, value uint8, cycle uint32) {
	b.PRGBanks[0].BankIndex = int32(value & 0x0F)
	b.SyncPRG()
}

func init() {
	board.Register(&board.Descriptor{
		Tag:             "SUNSOFT-3",
		Name:            "Sunsoft-3",
		MapperName:      "iNES Mapper 67",
		MaxPRGROMSize:   256 * 1024,
		MaxCHRROMSize:   256 * 1024,
		NewVariantState: newVariantState,
		InitPRG: []board.Bank{
			{BankIndex: 0, Size: 0x4000, Address: 0x8000, Type: board.ChipROM, Perm: board.PermRead},
			{BankIndex: -1, Size: 0x4000, Address: 0xC000, Type: board.ChipROM, Perm: board.PermRead},
		},
		InitCHR0: []board.Bank{
			{BankIndex: 0, Size: 0x800, Address: 0x0000, Type: board.ChipAuto, Perm: board.PermReadWrite},
			{BankIndex: 1, Size: 0x800, Address: 0x0800, Type: board.ChipAuto, Perm: board.PermReadWrite},
			{BankIndex: 2, Size: 0x800, Address: 0x1000, Type: board.ChipAuto, Perm: board.PermReadWrite},
			{BankIndex: 3, Size: 0x800, Address: 0x1800, Type: board.ChipAuto, Perm: board.PermReadWrite},
		},
		Flags: board.FlagUsesM2Timer,
		WriteHandlers: []board.HandlerEntry{
			{Fn: writeCHRBank, Base: 0x8800, Size: 0x0100},
			{Fn: writeCHRBank, Base: 0x9800, Size: 0x0100},
			{Fn: writeCHRBank, Base: 0xA800, Size: 0x0100},
			{Fn: writeCHRBank, Base: 0xB800, Size: 0x0100},
			{Fn: writeIRQCounter, Base: 0xC800, Size: 0x0100},
			{Fn: writeIRQControl, Base: 0xD800, Size: 0x0100},
			{Fn: writeMirroring, Base: 0xE800, Size: 0x0100},
			{Fn: writePRGBank, Base: 0xF800, Size: 0x0100},
		},
	})
}
