// Package vrc4 implements the Konami VRC4 board (iNES mappers 21/23/25
// depending on address-line wiring; this package models the common
// core): two switchable 8 KiB PRG windows with the other two fixed, CHR
// banks written as two 4-bit nibbles that must be normalized into one
// 8-bit index, and an M2-clocked IRQ that can count either CPU cycles or
// whole scanlines via the timer's prescaler, grounded on
// original_source/boards/vrc4.c.
package vrc4

import (
	"github.com/andrewthecodertx/board-core/pkg/board"
	"github.com/andrewthecodertx/board-core/pkg/timer/m2"
)

// variantState holds the low/high CHR nibble halves until both arrive;
// VRC4 boards split every CHR bank register across two register
// addresses; here they are adjacent, the low nibble at the even address
// and the high nibble at the next one (spec.md §11's "CHR bitpair
// normalization").
type variantState struct {
	chrLo [8]uint8
	chrHi [8]uint8
}

func newVariantState() any { return &variantState{} }
func state(b *board.Board) *variantState { return b.VariantState.(*variantState) }

func writePRGBank0(b *board.Board, addr uint16, value uint8, cycle uint32) {
	b.PRGBanks[0].BankIndex = int32(value & 0x1F)
	b.SyncPRG()
}

func writePRGBank1(b *board.Board, addr uint16, value uint8, cycle uint32) {
	b.PRGBanks[1].BankIndex = int32(value & 0x1F)
	b.SyncPRG()
}

func writeMirroring(b *board.Board, addr uint16, value uint8, cycle uint32) {
	var table = []board.Mirroring{
		board.MirrorVertical, board.MirrorHorizontal,
		board.MirrorSingleLow, board.MirrorSingleHigh,
	}
	b.Mirroring = table[value&0x03]
	b.SyncNametables()
}

// chrNibble returns a handler for CHR register slot's low or high nibble.
func chrNibble(slot int, high bool) board.WriteHandlerFunc {
	return func(b *board.Board, addr uint16, value uint8, cycle uint32) {
		s := state(b)
		if high {
			s.chrHi[slot] = value & 0x0F
		} else {
			s.chrLo[slot] = value & 0x0F
		}
		b.CHRBanks0[slot].BankIndex = int32(s.chrHi[slot])<<4 | int32(s.chrLo[slot])
		b.SyncCHR()
	}
}

func writeIRQReloadLo(b *board.Board, addr uint16, value uint8, cycle uint32) {
	b.M2.SetReloadLo(value&0x0F, cycle)
}

func writeIRQReloadHi(b *board.Board, addr uint16, value uint8, cycle uint32) {
	b.M2.SetReloadHi(value&0x0F, cycle)
}

// writeIRQControl selects CPU-cycle counting vs. scanline counting (via
// the M2 timer's prescaler, a fixed 114-CPU-cycle period standing in for one
// PPU scanline) and enables/reloads the counter.
func writeIRQControl(b *board.Board, addr uint16, value uint8, cycle uint32) {
	scanlineMode := value&0x04 != 0
	var flags m2.Flag
	if scanlineMode {
		flags = m2.FlagPrescaler | m2.FlagPrescalerReload
	}
	b.M2.SetFlags(flags, cycle)
	if scanlineMode {
		b.M2.SetPrescalerSize(7, cycle) // counter width for the scanline divider
		b.M2.SetPrescalerReload(113, cycle) // ~114-CPU-cycle scanline period
	}
	enabled := value&0x02 != 0
	if enabled {
		b.M2.ForceReload(cycle)
	}
	b.M2.SetIRQEnabled(enabled, cycle)
	b.M2.SetCounterEnabled(enabled, cycle)
}

func ackIRQ(b *board.Board, addr uint16, value uint8, cycle uint32) {
	b.M2.Ack(cycle)
	// Bit 0 of the last control write re-arms auto-repeat; VRC4 games
	// almost always leave this set, so the ack handler always re-enables
	// counting. The bit itself is not tracked, and the counter is not
	// reloaded here.
	b.M2.SetCounterEnabled(true, cycle)
}

func init() {
	board.Register(&board.Descriptor{
		Tag:             "VRC4",
		Name:            "Konami VRC4",
		MapperName:      "iNES Mapper 21/23/25",
		MaxPRGROMSize:   512 * 1024,
		MaxCHRROMSize:   256 * 1024,
		NewVariantState: newVariantState,
		InitPRG: []board.Bank{
			{BankIndex: 0, Size: 0x2000, Address: 0x8000, Type: board.ChipROM, Perm: board.PermRead},
			{BankIndex: -2, Size: 0x2000, Address: 0xA000, Type: board.ChipROM, Perm: board.PermRead},
			{BankIndex: 1, Size: 0x2000, Address: 0xC000, Type: board.ChipROM, Perm: board.PermRead},
			{BankIndex: -1, Size: 0x2000, Address: 0xE000, Type: board.ChipROM, Perm: board.PermRead},
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
		WriteHandlers: []board.HandlerEntry{
			{Fn: writePRGBank0, Base: 0x8000, Size: 0x1000},
			{Fn: writeMirroring, Base: 0x9000, Size: 0x1000},
			{Fn: writePRGBank1, Base: 0xC000, Size: 0x1000},
			{Fn: chrNibble(0, false), Base: 0xD000, Size: 0x1},
			{Fn: chrNibble(0, true), Base: 0xD001, Size: 0x1},
			{Fn: chrNibble(1, false), Base: 0xD002, Size: 0x1},
			{Fn: chrNibble(1, true), Base: 0xD003, Size: 0x1},
			{Fn: chrNibble(2, false), Base: 0xD004, Size: 0x1},
			{Fn: chrNibble(2, true), Base: 0xD005, Size: 0x1},
			{Fn: chrNibble(3, false), Base: 0xD006, Size: 0x1},
			{Fn: chrNibble(3, true), Base: 0xD007, Size: 0x1},
			{Fn: chrNibble(4, false), Base: 0xE000, Size: 0x1},
			{Fn: chrNibble(4, true), Base: 0xE001, Size: 0x1},
			{Fn: chrNibble(5, false), Base: 0xE002, Size: 0x1},
			{Fn: chrNibble(5, true), Base: 0xE003, Size: 0x1},
			{Fn: chrNibble(6, false), Base: 0xE004, Size: 0x1},
			{Fn: chrNibble(6, true), Base: 0xE005, Size: 0x1},
			{Fn: chrNibble(7, false), Base: 0xE006, Size: 0x1},
			{Fn: chrNibble(7, true), Base: 0xE007, Size: 0x1},
			{Fn: writeIRQReloadLo, Base: 0xF000, Size: 0x1},
			{Fn: writeIRQReloadHi, Base: 0xF001, Size: 0x1},
			{Fn: writeIRQControl, Base: 0xF002, Size: 0x1},
			{Fn: ackIRQ, Base: 0xF003, Size: 0x1},
		},
	})
}
